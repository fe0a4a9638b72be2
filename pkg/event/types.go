package event

import (
	"encoding/json"
	"time"
)

// AggregateType は監査イベントの対象となるリソースの種類を表す。
type AggregateType string

const (
	// AggregateTypeTransaction は取引リソースを表す。
	AggregateTypeTransaction AggregateType = "Transaction"
	// AggregateTypeFirebaseConfig はFirebaseクライアント設定リソースを表す。
	AggregateTypeFirebaseConfig AggregateType = "FirebaseConfig"
	// AggregateTypeAccessGate はアクセスゲート自体を表す。
	AggregateTypeAccessGate AggregateType = "AccessGate"
)

// Type はイベントの種類を表す。
type Type string

const (
	// TypeTransactionCreated は取引が作成されたことを表す。
	TypeTransactionCreated Type = "TransactionCreated"
	// TypeTransactionDeleted は取引の削除が要求され、ストアが成功を返したことを表す。
	TypeTransactionDeleted Type = "TransactionDeleted"
	// TypeFirebaseConfigDisclosed はFirebase設定が呼び出し元に返されたことを表す。
	TypeFirebaseConfigDisclosed Type = "FirebaseConfigDisclosed"
	// TypeAccessDenied はアクセスゲートがリクエストを拒否したことを表す。
	TypeAccessDenied Type = "AccessDenied"
)

// Event は監査ログに追記される不変のイベントレコードを表す。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// AggregateID は対象リソースの識別子。取引IDやリクエストパスが入る。
	AggregateID string `json:"aggregate_id"`
	// AggregateType は対象リソースの種類。
	AggregateType AggregateType `json:"aggregate_type"`
	// EventType はイベントの種類。
	EventType Type `json:"event_type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// CreatedAt はイベントが作成された日時。
	CreatedAt time.Time `json:"created_at"`
}

// TransactionCreatedData はTransactionCreatedイベントのデータ。
type TransactionCreatedData struct {
	// UserID は取引の所有者ID。
	UserID string `json:"user_id"`
	// Amount は取引金額。
	Amount float64 `json:"amount"`
	// Type は取引の種類。
	Type string `json:"type"`
}

// TransactionDeletedData はTransactionDeletedイベントのデータ。
type TransactionDeletedData struct {
	// UserID は取引の所有者ID。
	UserID string `json:"user_id"`
}

// FirebaseConfigDisclosedData はFirebaseConfigDisclosedイベントのデータ。
type FirebaseConfigDisclosedData struct {
	// ClientIP は設定を受け取ったクライアントのIPアドレス。
	ClientIP string `json:"client_ip"`
	// Origin はリクエストのOriginヘッダー。
	Origin string `json:"origin,omitempty"`
}

// AccessDeniedData はAccessDeniedイベントのデータ。
// 提示された認可ヘッダーの値そのものは記録しない。
type AccessDeniedData struct {
	// Method はHTTPメソッド。
	Method string `json:"method"`
	// Path はリクエストパス。
	Path string `json:"path"`
	// ClientIP はクライアントのIPアドレス。
	ClientIP string `json:"client_ip"`
	// HeaderPresent はAuthorizationヘッダーが付与されていたかどうか。
	HeaderPresent bool `json:"header_present"`
}
