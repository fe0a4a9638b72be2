package event

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTypeConstants は永続化される定数の値が変わっていないことを検証する。
// 監査ログに保存済みの値と一致しなくなるため、値の変更は互換性を壊す。
func TestTypeConstants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "AggregateTypeTransaction", got: string(AggregateTypeTransaction), want: "Transaction"},
		{name: "AggregateTypeFirebaseConfig", got: string(AggregateTypeFirebaseConfig), want: "FirebaseConfig"},
		{name: "AggregateTypeAccessGate", got: string(AggregateTypeAccessGate), want: "AccessGate"},
		{name: "TypeTransactionCreated", got: string(TypeTransactionCreated), want: "TransactionCreated"},
		{name: "TypeTransactionDeleted", got: string(TypeTransactionDeleted), want: "TransactionDeleted"},
		{name: "TypeFirebaseConfigDisclosed", got: string(TypeFirebaseConfigDisclosed), want: "FirebaseConfigDisclosed"},
		{name: "TypeAccessDenied", got: string(TypeAccessDenied), want: "AccessDenied"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"の値が正しいこと", func(t *testing.T) {
			t.Parallel()
			if tt.got != tt.want {
				t.Errorf("値 = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

// TestEventJSONSerialization はEvent構造体のJSONフィールド名を検証する。
func TestEventJSONSerialization(t *testing.T) {
	t.Parallel()

	original := Event{
		ID:            "test-id-123",
		AggregateID:   "tx-456",
		AggregateType: AggregateTypeTransaction,
		EventType:     TypeTransactionDeleted,
		Data:          json.RawMessage(`{"user_id":"user-1"}`),
		CreatedAt:     time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
	}

	jsonBytes, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("json.Marshal()でエラーが発生: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		t.Fatalf("json.Unmarshal()でエラーが発生: %v", err)
	}

	expectedKeys := []string{"id", "aggregate_id", "aggregate_type", "event_type", "data", "created_at"}
	for _, key := range expectedKeys {
		if _, ok := raw[key]; !ok {
			t.Errorf("JSONに期待するキー %q が存在しない", key)
		}
	}
	if len(raw) != len(expectedKeys) {
		t.Errorf("JSONのキー数 = %d, want %d", len(raw), len(expectedKeys))
	}
}
