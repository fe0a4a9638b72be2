package firestore

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/nao1215/txgate/internal/store"
	"github.com/nao1215/txgate/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStore_Contract はFirestoreエミュレータに対して共通テストを実行する。
// FIRESTORE_EMULATOR_HOSTが未設定の環境ではスキップする。
func TestStore_Contract(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST が未設定のためスキップ")
	}

	storetest.Run(t, func(t *testing.T) store.TransactionStore {
		t.Helper()
		s, err := Open(context.Background(), "txgate-test")
		require.NoError(t, err)
		// テストごとにルートコレクションを分けて互いのデータを見えなくする
		s.root = "users-" + uuid.NewString()
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestStore_RejectsSlashInIDs(t *testing.T) {
	t.Parallel()

	// パスを組み立てる前に弾くため、クライアントは不要
	s := &Store{root: usersCollection}
	ctx := context.Background()

	t.Run("所有者IDにスラッシュを含む一覧取得", func(t *testing.T) {
		t.Parallel()
		_, err := s.ListTransactions(ctx, "user/other")
		assert.ErrorIs(t, err, store.ErrInvalidID)
	})

	t.Run("所有者IDにスラッシュを含む追加", func(t *testing.T) {
		t.Parallel()
		_, err := s.AddTransaction(ctx, "../user", store.Transaction{})
		assert.ErrorIs(t, err, store.ErrInvalidID)
	})

	t.Run("取引IDにスラッシュを含む削除", func(t *testing.T) {
		t.Parallel()
		err := s.DeleteTransaction(ctx, "user-1", "tx/nested")
		assert.ErrorIs(t, err, store.ErrInvalidID)
	})
}
