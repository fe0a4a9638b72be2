package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/txgate/internal/store"
	"github.com/nao1215/txgate/pkg/event"
)

const (
	msgUserIDRequired     = "User ID is required"
	msgAllFieldsRequired  = "All fields are required"
	msgDeleteIDsRequired  = "User ID and Transaction ID are required"
	msgTransactionDeleted = "Transaction deleted successfully"
)

// createTransactionRequest は取引作成のリクエストボディ。
// amountの0は未指定と区別できないため、未指定として扱う。
type createTransactionRequest struct {
	UserID      string  `json:"userId" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Type        string  `json:"type" binding:"required"`
}

// handleListTransactions は所有者の取引一覧を返すハンドラを返す。
func (s *Server) handleListTransactions() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("userId")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgUserIDRequired})
			return
		}

		ctx, cancel := s.storeContext(c)
		defer cancel()

		txs, err := s.store.ListTransactions(ctx, userID)
		if err != nil {
			respondStoreError(c, "取引一覧の取得", err)
			return
		}
		c.JSON(http.StatusOK, txs)
	}
}

// handleCreateTransaction は取引を作成し、採番されたIDを返すハンドラを返す。
func (s *Server) handleCreateTransaction() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgAllFieldsRequired})
			return
		}

		ctx, cancel := s.storeContext(c)
		defer cancel()

		id, err := s.store.AddTransaction(ctx, req.UserID, store.Transaction{
			Description: req.Description,
			Amount:      req.Amount,
			Type:        req.Type,
			Timestamp:   s.now().UTC(),
		})
		if err != nil {
			respondStoreError(c, "取引の追加", err)
			return
		}

		s.record(c, id, event.AggregateTypeTransaction, event.TypeTransactionCreated, event.TransactionCreatedData{
			UserID: req.UserID,
			Amount: req.Amount,
			Type:   req.Type,
		})
		c.JSON(http.StatusOK, gin.H{"id": id})
	}
}

// handleDeleteTransaction は取引を削除するハンドラを返す。
// 存在しない取引の削除も成功として応答する。
func (s *Server) handleDeleteTransaction() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		userID := c.Query("userId")
		if id == "" || userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgDeleteIDsRequired})
			return
		}

		ctx, cancel := s.storeContext(c)
		defer cancel()

		if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
			respondStoreError(c, "取引の削除", err)
			return
		}

		s.record(c, id, event.AggregateTypeTransaction, event.TypeTransactionDeleted, event.TransactionDeletedData{
			UserID: userID,
		})
		c.JSON(http.StatusOK, gin.H{"message": msgTransactionDeleted})
	}
}
