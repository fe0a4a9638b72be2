// Package storetest は store.TransactionStore の実装が満たすべき振る舞いを
// 共通のテストとして提供する。各アダプタのテストから呼び出す。
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/nao1215/txgate/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory はテストごとに空のストアを生成する関数。
type Factory func(t *testing.T) store.TransactionStore

// Run は取引ストアの共通テストを実行する。
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("追加した取引が一覧に含まれる", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		ts := time.Now().UTC().Truncate(time.Millisecond)

		id, err := s.AddTransaction(ctx, "user-1", store.Transaction{
			Description: "coffee",
			Amount:      4.5,
			Type:        "expense",
			Timestamp:   ts,
		})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		txs, err := s.ListTransactions(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, id, txs[0].ID)
		assert.Equal(t, "coffee", txs[0].Description)
		assert.InDelta(t, 4.5, txs[0].Amount, 1e-9)
		assert.Equal(t, "expense", txs[0].Type)
		assert.True(t, txs[0].Timestamp.Equal(ts), "timestamp: got %v, want %v", txs[0].Timestamp, ts)
	})

	t.Run("取引が無い場合は空のスライスを返す", func(t *testing.T) {
		s := newStore(t)

		txs, err := s.ListTransactions(context.Background(), "nobody")
		require.NoError(t, err)
		assert.NotNil(t, txs)
		assert.Empty(t, txs)
	})

	t.Run("一覧はタイムスタンプの降順になる", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		// 挿入順とタイムスタンプ順をわざとずらす
		offsets := []time.Duration{3 * time.Hour, 1 * time.Hour, 5 * time.Hour, 2 * time.Hour}
		for i, off := range offsets {
			_, err := s.AddTransaction(ctx, "user-1", store.Transaction{
				Description: string(rune('a' + i)),
				Amount:      float64(i + 1),
				Type:        "expense",
				Timestamp:   base.Add(off),
			})
			require.NoError(t, err)
		}

		txs, err := s.ListTransactions(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, txs, len(offsets))
		for i := 1; i < len(txs); i++ {
			assert.True(t, txs[i-1].Timestamp.After(txs[i].Timestamp),
				"index %d: %v は %v より後であるべき", i, txs[i-1].Timestamp, txs[i].Timestamp)
		}
		assert.Equal(t, "c", txs[0].Description)
		assert.Equal(t, "b", txs[len(txs)-1].Description)
	})

	t.Run("他ユーザーの取引は含まれない", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.AddTransaction(ctx, "user-1", store.Transaction{Description: "mine", Amount: 1, Type: "income", Timestamp: time.Now().UTC()})
		require.NoError(t, err)
		_, err = s.AddTransaction(ctx, "user-2", store.Transaction{Description: "theirs", Amount: 2, Type: "income", Timestamp: time.Now().UTC()})
		require.NoError(t, err)

		txs, err := s.ListTransactions(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, "mine", txs[0].Description)
	})

	t.Run("削除した取引は一覧から消える", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		keep, err := s.AddTransaction(ctx, "user-1", store.Transaction{Description: "keep", Amount: 1, Type: "expense", Timestamp: time.Now().UTC()})
		require.NoError(t, err)
		drop, err := s.AddTransaction(ctx, "user-1", store.Transaction{Description: "drop", Amount: 2, Type: "expense", Timestamp: time.Now().UTC()})
		require.NoError(t, err)

		require.NoError(t, s.DeleteTransaction(ctx, "user-1", drop))

		txs, err := s.ListTransactions(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, keep, txs[0].ID)
	})

	t.Run("存在しないIDの削除も成功する", func(t *testing.T) {
		s := newStore(t)

		err := s.DeleteTransaction(context.Background(), "user-1", "does-not-exist")
		assert.NoError(t, err)
	})

	t.Run("他ユーザーのIDを指定しても削除されない", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.AddTransaction(ctx, "user-1", store.Transaction{Description: "owned", Amount: 1, Type: "expense", Timestamp: time.Now().UTC()})
		require.NoError(t, err)

		require.NoError(t, s.DeleteTransaction(ctx, "user-2", id))

		txs, err := s.ListTransactions(ctx, "user-1")
		require.NoError(t, err)
		assert.Len(t, txs, 1)
	})
}
