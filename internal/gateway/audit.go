package gateway

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/txgate/internal/audit"
	"github.com/nao1215/txgate/pkg/event"
)

// record は監査イベントを追記する。
// 記録の失敗はログに残すだけで、レスポンスには影響させない。
func (s *Server) record(c *gin.Context, aggregateID string, aggregateType event.AggregateType, eventType event.Type, data any) {
	ev, err := event.New(aggregateID, aggregateType, eventType, data)
	if err != nil {
		log.Printf("[Audit] %s イベントの生成に失敗: %v", eventType, err)
		return
	}

	// クライアントが切断しても記録は続ける
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), s.cfg.StoreTimeout)
	defer cancel()

	if err := s.audit.Record(ctx, ev); err != nil {
		log.Printf("[Audit] %s イベントの記録に失敗: %v", eventType, err)
	}
}

// recordDenied はアクセスゲートが拒否したリクエストを記録する。
// 提示されたトークンの値は記録しない。
func (s *Server) recordDenied(c *gin.Context) {
	s.record(c, c.Request.URL.Path, event.AggregateTypeAccessGate, event.TypeAccessDenied, event.AccessDeniedData{
		Method:        c.Request.Method,
		Path:          c.Request.URL.Path,
		ClientIP:      c.ClientIP(),
		HeaderPresent: c.GetHeader("Authorization") != "",
	})
}

// handleListAuditEvents は監査イベントを日時指定で返すハンドラを返す。
// クエリパラメータ: since（RFC3339、省略時は先頭から）、limit（省略時は既定件数）。
func (s *Server) handleListAuditEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		var since time.Time
		if v := c.Query("since"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "since must be an RFC3339 timestamp"})
				return
			}
			since = t
		}

		limit := audit.DefaultLimit
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 || n > audit.MaxLimit {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "limit must be an integer between 1 and " + strconv.Itoa(audit.MaxLimit),
				})
				return
			}
			limit = n
		}

		ctx, cancel := s.storeContext(c)
		defer cancel()

		events, err := s.audit.Since(ctx, since, limit)
		if err != nil {
			log.Printf("[Audit] 監査イベントの取得に失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, events)
	}
}
