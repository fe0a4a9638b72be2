package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/txgate/pkg/event"
	"github.com/nao1215/txgate/pkg/middleware"
)

// handleFirebaseConfig は認可済みのフロントエンドにFirebase接続設定を返すハンドラを返す。
// このルートには外側のゲートを付けないため、ハンドラ自身でトークンを照合する。
func (s *Server) handleFirebaseConfig() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !middleware.AuthorizeBearer(c.GetHeader("Authorization"), s.cfg.AuthToken) {
			s.recordDenied(c)
			c.JSON(http.StatusForbidden, gin.H{"error": middleware.MessageUnauthorized})
			return
		}

		s.record(c, "firebase-config", event.AggregateTypeFirebaseConfig, event.TypeFirebaseConfigDisclosed,
			event.FirebaseConfigDisclosedData{
				ClientIP: c.ClientIP(),
				Origin:   c.GetHeader("Origin"),
			})
		c.JSON(http.StatusOK, s.cfg.Firebase)
	}
}
