package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MessageUnauthorized は認可に失敗したときのエラーメッセージ。
const MessageUnauthorized = "Unauthorized access"

// bearerPrefix はAuthorizationヘッダーのスキーム部分。
const bearerPrefix = "Bearer "

// Authorize は提示されたAuthorizationヘッダーの値が期待値と完全に一致するかを返す。
// どちらかが空なら常に false を返す。大文字小文字の違いや前後の空白も不一致として扱う。
// 比較は一定時間で行い、一致した文字数が応答時間から推測されないようにする。
func Authorize(presented, expected string) bool {
	if presented == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}

// AuthorizeBearer はヘッダーの値が "Bearer <token>" と完全一致するかを返す。
// tokenが空の場合は "Bearer " を期待値にせず、常に false を返す。
func AuthorizeBearer(header, token string) bool {
	if token == "" {
		return false
	}
	return Authorize(header, bearerPrefix+token)
}

// BearerAuth はAuthorizationヘッダーが "Bearer <token>" と完全一致する場合のみ
// 後続のハンドラを実行するGinミドルウェアを返す。
// 不一致の場合は403を返して処理を中断する。onDeniedがnilでなければ中断の前に呼び出す。
// tokenが空なら全てのリクエストを拒否する。
func BearerAuth(token string, onDenied func(c *gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !AuthorizeBearer(c.GetHeader("Authorization"), token) {
			if onDenied != nil {
				onDenied(c)
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": MessageUnauthorized,
			})
			return
		}
		c.Next()
	}
}
