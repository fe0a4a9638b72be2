// Package store はゲートウェイが転送先として扱う取引ストアのポートを定義する。
//
// 具体的な実装（SQLite・PostgreSQL・Firestore）はサブパッケージにあり、
// ゲートウェイはこのパッケージのインターフェースだけに依存する。
// ストア自身の整合性保証（ドキュメント単位の原子性など）以上のことは前提にしない。
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured はストアが初期化されていない状態で呼び出された場合に返される。
var ErrNotConfigured = errors.New("取引ストアが設定されていません")

// ErrInvalidID はストアのキーとして使えない所有者IDや取引IDが渡された場合に返される。
var ErrInvalidID = errors.New("IDに使用できない文字が含まれています")

// Transaction はユーザーに所属する1件の取引記録。
// 作成後に更新されることはなく、IDで削除されるだけである。
type Transaction struct {
	// ID はストアが採番する識別子。
	ID string `json:"id"`
	// Description は取引の説明。
	Description string `json:"description"`
	// Amount は取引金額。
	Amount float64 `json:"amount"`
	// Type は取引の種類。値の集合は定めず自由な文字列として扱う。
	Type string `json:"type"`
	// Timestamp はゲートウェイが作成時に付与する日時（UTC）。
	Timestamp time.Time `json:"timestamp"`
}

// TransactionStore は所有者IDで分割された取引コレクションを操作する。
// 実装は並行呼び出しに対して安全でなければならない。
type TransactionStore interface {
	// ListTransactions は所有者の取引をTimestampの降順で返す。
	// 同一Timestampの場合は後から追加したものを先に返す。
	ListTransactions(ctx context.Context, userID string) ([]Transaction, error)

	// AddTransaction は取引を追加し、採番したIDを返す。
	// tx.ID は無視される。
	AddTransaction(ctx context.Context, userID string, tx Transaction) (string, error)

	// DeleteTransaction は取引を無条件に削除する。
	// 存在しないIDの削除も成功として扱う（冪等な削除）。
	DeleteTransaction(ctx context.Context, userID, id string) error

	// Close はストアが保持する接続を解放する。
	Close() error
}
