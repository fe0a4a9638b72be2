package audit

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/txgate/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryLog(t *testing.T) *SQLiteLog {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	l, err := NewSQLite(context.Background(), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

// mustEvent はCreatedAtを固定したイベントを生成する。
func mustEvent(t *testing.T, aggregateID string, typ event.Type, at time.Time, data any) *event.Event {
	t.Helper()
	ev, err := event.New(aggregateID, event.AggregateTypeTransaction, typ, data)
	require.NoError(t, err)
	ev.CreatedAt = at
	return ev
}

func TestSQLiteLog_RecordAndSince(t *testing.T) {
	ctx := context.Background()
	l := newMemoryLog(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	created := mustEvent(t, "tx-1", event.TypeTransactionCreated, base,
		event.TransactionCreatedData{UserID: "user-1", Amount: 500, Type: "income"})
	deleted := mustEvent(t, "tx-1", event.TypeTransactionDeleted, base.Add(time.Minute),
		event.TransactionDeletedData{UserID: "user-1"})
	require.NoError(t, l.Record(ctx, deleted))
	require.NoError(t, l.Record(ctx, created))

	events, err := l.Since(ctx, time.Time{}, 0)

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, created.ID, events[0].ID, "作成日時の昇順で返るべき")
	assert.Equal(t, event.TypeTransactionCreated, events[0].EventType)
	assert.Equal(t, event.AggregateTypeTransaction, events[0].AggregateType)
	assert.True(t, base.Equal(events[0].CreatedAt))
	assert.Equal(t, deleted.ID, events[1].ID)

	data, err := event.DecodeData[event.TransactionCreatedData](&events[0])
	require.NoError(t, err)
	assert.Equal(t, "user-1", data.UserID)
	assert.InDelta(t, 500, data.Amount, 0)
}

func TestSQLiteLog_SinceFilter(t *testing.T) {
	ctx := context.Background()
	l := newMemoryLog(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := range 3 {
		ev := mustEvent(t, "tx", event.TypeTransactionCreated, base.Add(time.Duration(i)*time.Hour),
			event.TransactionCreatedData{UserID: "user-1"})
		require.NoError(t, l.Record(ctx, ev))
	}

	t.Run("境界の日時を含む", func(t *testing.T) {
		events, err := l.Since(ctx, base.Add(time.Hour), 0)
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("未来の日時では空のスライス", func(t *testing.T) {
		events, err := l.Since(ctx, base.Add(24*time.Hour), 0)
		require.NoError(t, err)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})

	t.Run("件数を制限できる", func(t *testing.T) {
		events, err := l.Since(ctx, time.Time{}, 1)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.True(t, base.Equal(events[0].CreatedAt))
	})
}

func TestSQLiteLog_DuplicateIDIsRejected(t *testing.T) {
	ctx := context.Background()
	l := newMemoryLog(t)
	ev := mustEvent(t, "tx-1", event.TypeTransactionDeleted, time.Now().UTC(), event.TransactionDeletedData{UserID: "u"})

	require.NoError(t, l.Record(ctx, ev))
	assert.Error(t, l.Record(ctx, ev))
}

func TestOpenSQLite_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "audit.db")

	l, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	ev := mustEvent(t, "tx-1", event.TypeTransactionCreated, time.Now().UTC(), event.TransactionCreatedData{UserID: "u"})
	require.NoError(t, l.Record(ctx, ev))
	require.NoError(t, l.Close())

	// 再オープンしてもマイグレーションは重複適用されず、データが残っている
	l, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	events, err := l.Since(ctx, time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ev.ID, events[0].ID)
}

func TestClampLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "0は既定値", limit: 0, want: DefaultLimit},
		{name: "負数は既定値", limit: -5, want: DefaultLimit},
		{name: "範囲内はそのまま", limit: 20, want: 20},
		{name: "上限を超えると上限", limit: MaxLimit + 1, want: MaxLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, clampLimit(tt.limit))
		})
	}
}

func TestNop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var r Recorder = Nop{}

	require.NoError(t, r.Record(ctx, &event.Event{}))
	events, err := r.Since(ctx, time.Time{}, 10)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
	assert.NoError(t, r.Close())
}
