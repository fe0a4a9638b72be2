// Package sqlite はSQLiteを使った取引ストアの実装を提供する。
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/txgate/internal/store"
	"github.com/nao1215/txgate/pkg/migration"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var _ store.TransactionStore = (*Store)(nil)

// Store はSQLiteに取引を保存する store.TransactionStore の実装。
type Store struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// Open はファイルパスを指定してSQLiteデータベースを開き、マイグレーションを適用する。
// SQLiteは書き込みを直列化するため、接続は1本に制限する。
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
		path,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("データベースへの疎通確認に失敗: %w", err)
	}

	s, err := New(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New は既に開かれた接続を使ってストアを生成する。
// テストではインメモリDBを渡す。
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if err := migration.Run(ctx, db, migrationsFS, "migrations"); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	return &Store{db: db}, nil
}

// ListTransactions は所有者の取引を作成日時の降順で返す。
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]store.Transaction, error) {
	const query = `
		SELECT id, description, amount, type, timestamp_ns
		FROM transactions
		WHERE user_id = ?
		ORDER BY timestamp_ns DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("取引一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	txs := []store.Transaction{}
	for rows.Next() {
		var (
			tx store.Transaction
			ns int64
		)
		if err := rows.Scan(&tx.ID, &tx.Description, &tx.Amount, &tx.Type, &ns); err != nil {
			return nil, fmt.Errorf("取引の読み取りに失敗: %w", err)
		}
		tx.Timestamp = time.Unix(0, ns).UTC()
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("取引一覧の走査に失敗: %w", err)
	}
	return txs, nil
}

// AddTransaction は取引を追加し、UUIDで採番したIDを返す。
func (s *Store) AddTransaction(ctx context.Context, userID string, tx store.Transaction) (string, error) {
	const query = `
		INSERT INTO transactions (id, user_id, description, amount, type, timestamp_ns)
		VALUES (?, ?, ?, ?, ?, ?)`

	id := uuid.New().String()
	if _, err := s.db.ExecContext(ctx, query,
		id, userID, tx.Description, tx.Amount, tx.Type, tx.Timestamp.UTC().UnixNano(),
	); err != nil {
		return "", fmt.Errorf("取引の追加に失敗: %w", err)
	}
	return id, nil
}

// DeleteTransaction は取引を削除する。該当行が無くてもエラーにしない。
func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM transactions WHERE user_id = ? AND id = ?`
	if _, err := s.db.ExecContext(ctx, query, userID, id); err != nil {
		return fmt.Errorf("取引の削除に失敗: %w", err)
	}
	return nil
}

// Close はデータベース接続を閉じる。
func (s *Store) Close() error {
	return s.db.Close()
}
