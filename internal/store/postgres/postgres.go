// Package postgres はPostgreSQLを使った取引ストアの実装を提供する。
// 接続にはpgxのdatabase/sqlドライバを、スキーマ管理にはgooseを使う。
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/nao1215/txgate/internal/store"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var _ store.TransactionStore = (*Store)(nil)

// gooseUpContext はテストで差し替えるための goose.UpContext の継ぎ目。
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Store はPostgreSQLに取引を保存する store.TransactionStore の実装。
type Store struct {
	db *sql.DB
}

// Open はDSNで接続し、マイグレーションを適用したストアを返す。
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("データベースへの疎通確認に失敗: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db), nil
}

// New は既に開かれた接続からストアを生成する。マイグレーションは行わない。
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// RunMigrations は埋め込みのマイグレーションをgooseで適用する。
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("gooseのダイアレクト設定に失敗: %w", err)
	}
	if err := gooseUpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("マイグレーションの適用に失敗: %w", err)
	}
	return nil
}

// ListTransactions は所有者の取引を作成日時の降順で返す。
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]store.Transaction, error) {
	const query = `
		SELECT id, description, amount, type, "timestamp"
		FROM transactions
		WHERE user_id = $1
		ORDER BY "timestamp" DESC, seq DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("取引一覧の取得に失敗: %w", err)
	}
	defer rows.Close()

	txs := []store.Transaction{}
	for rows.Next() {
		var tx store.Transaction
		if err := rows.Scan(&tx.ID, &tx.Description, &tx.Amount, &tx.Type, &tx.Timestamp); err != nil {
			return nil, fmt.Errorf("取引の読み取りに失敗: %w", err)
		}
		tx.Timestamp = tx.Timestamp.UTC()
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
		INSERT INTO transactions (id, user_id, description, amount, type, "timestamp")
		VALUES ($1, $2, $3, $4, $5, $6)`

	id := uuid.New().String()
	if _, err := s.db.ExecContext(ctx, query,
		id, userID, tx.Description, tx.Amount, tx.Type, tx.Timestamp.UTC(),
	); err != nil {
		return "", fmt.Errorf("取引の追加に失敗: %w", err)
	}
	return id, nil
}

// DeleteTransaction は取引を削除する。削除件数は確認しない。
func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM transactions WHERE user_id = $1 AND id = $2`
	if _, err := s.db.ExecContext(ctx, query, userID, id); err != nil {
		return fmt.Errorf("取引の削除に失敗: %w", err)
	}
	return nil
}

// Close は接続プールを閉じる。
func (s *Store) Close() error {
	return s.db.Close()
}
