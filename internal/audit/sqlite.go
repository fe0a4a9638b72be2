package audit

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nao1215/txgate/pkg/event"
	"github.com/nao1215/txgate/pkg/migration"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var _ Recorder = (*SQLiteLog)(nil)

// SQLiteLog はSQLiteファイルに監査イベントを追記する Recorder の実装。
type SQLiteLog struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// OpenSQLite はファイルパスを指定して監査ログを開き、マイグレーションを適用する。
func OpenSQLite(ctx context.Context, path string) (*SQLiteLog, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("監査ログの接続に失敗: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("監査ログへの疎通確認に失敗: %w", err)
	}

	l, err := NewSQLite(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// NewSQLite は既に開かれた接続を使って監査ログを生成する。
func NewSQLite(ctx context.Context, db *sql.DB) (*SQLiteLog, error) {
	if err := migration.Run(ctx, db, migrationsFS, "migrations"); err != nil {
		return nil, fmt.Errorf("監査ログのスキーマ初期化に失敗: %w", err)
	}
	return &SQLiteLog{db: db}, nil
}

// Record はイベントを追記する。
func (l *SQLiteLog) Record(ctx context.Context, ev *event.Event) error {
	const query = `
		INSERT INTO events (id, aggregate_id, aggregate_type, event_type, data, created_at_ns)
		VALUES (?, ?, ?, ?, ?, ?)`

	if _, err := l.db.ExecContext(ctx, query,
		ev.ID,
		ev.AggregateID,
		string(ev.AggregateType),
		string(ev.EventType),
		string(ev.Data),
		ev.CreatedAt.UTC().UnixNano(),
	); err != nil {
		return fmt.Errorf("監査イベント %s の追記に失敗: %w", ev.EventType, err)
	}
	return nil
}

// Since は since 以降（since を含む）のイベントを作成日時の昇順で返す。
// limit が0以下の場合は DefaultLimit、MaxLimit を超える場合は MaxLimit に丸める。
func (l *SQLiteLog) Since(ctx context.Context, since time.Time, limit int) ([]event.Event, error) {
	const query = `
		SELECT id, aggregate_id, aggregate_type, event_type, data, created_at_ns
		FROM events
		WHERE created_at_ns >= ?
		ORDER BY created_at_ns ASC, rowid ASC
		LIMIT ?`

	rows, err := l.db.QueryContext(ctx, query, since.UTC().UnixNano(), clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("監査イベントの取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := []event.Event{}
	for rows.Next() {
		var (
			ev            event.Event
			aggregateType string
			eventType     string
			data          string
			ns            int64
		)
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &aggregateType, &eventType, &data, &ns); err != nil {
			return nil, fmt.Errorf("監査イベントの読み取りに失敗: %w", err)
		}
		ev.AggregateType = event.AggregateType(aggregateType)
		ev.EventType = event.Type(eventType)
		ev.Data = json.RawMessage(data)
		ev.CreatedAt = time.Unix(0, ns).UTC()
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("監査イベントの走査に失敗: %w", err)
	}
	return events, nil
}

// Close はデータベース接続を閉じる。
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}

// clampLimit は取得件数を有効な範囲に収める。
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
