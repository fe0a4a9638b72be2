package audit

import (
	"context"
	"time"

	"github.com/nao1215/txgate/pkg/event"
)

const (
	// DefaultLimit は件数指定が無い場合に Since が返す最大件数。
	DefaultLimit = 100
	// MaxLimit は Since に指定できる件数の上限。
	MaxLimit = 1000
)

// Recorder は監査イベントの追記と参照を行う。
// 実装は並行呼び出しに対して安全でなければならない。
type Recorder interface {
	// Record はイベントを1件追記する。
	Record(ctx context.Context, ev *event.Event) error
	// Since は since 以降に作成されたイベントを作成日時の昇順で最大 limit 件返す。
	Since(ctx context.Context, since time.Time, limit int) ([]event.Event, error)
	// Close は保持している接続を解放する。
	Close() error
}

// Nop は何も記録しない Recorder。監査ログを無効化した構成で使う。
type Nop struct{}

var _ Recorder = Nop{}

// Record は何もせずに成功を返す。
func (Nop) Record(context.Context, *event.Event) error { return nil }

// Since は常に空のスライスを返す。
func (Nop) Since(context.Context, time.Time, int) ([]event.Event, error) {
	return []event.Event{}, nil
}

// Close は何もしない。
func (Nop) Close() error { return nil }
