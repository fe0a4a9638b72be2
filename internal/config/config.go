// Package config は環境変数（と任意のYAMLファイル）からゲートウェイの設定を読み込む。
//
// 読み込んだ Config はプロセスの生存期間中は不変として扱い、
// 各コンポーネントにはポインタで注入する。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Resource はゲートウェイが公開するリソース（ルート群）の種類を表す。
type Resource string

const (
	// ResourceTransactions はユーザーごとの取引CRUDを表す。
	ResourceTransactions Resource = "transactions"
	// ResourceFirebaseConfig はFirebase接続設定の配布エンドポイントを表す。
	ResourceFirebaseConfig Resource = "firebase-config"
	// ResourceAudit は監査ログの参照エンドポイントを表す。
	ResourceAudit Resource = "audit"
)

// StoreDriver は取引ストアの実装を表す。
type StoreDriver string

const (
	// StoreDriverSQLite はローカルのSQLiteファイルを使う。
	StoreDriverSQLite StoreDriver = "sqlite"
	// StoreDriverPostgres はPostgreSQLを使う。
	StoreDriverPostgres StoreDriver = "postgres"
	// StoreDriverFirestore はCloud Firestoreを使う。
	StoreDriverFirestore StoreDriver = "firestore"
)

// ErrMissingAuthToken はAUTH_TOKENとSECURE_TOKENのどちらも設定されていない場合に返される。
var ErrMissingAuthToken = errors.New("AUTH_TOKEN または SECURE_TOKEN が設定されていません")

// FirebaseConfig は認可済みフロントエンドへ配布するFirebase接続設定。
// JSONのキー名はFirebase Web SDKの initializeApp に合わせている。
type FirebaseConfig struct {
	APIKey            string `json:"apiKey"`
	AuthDomain        string `json:"authDomain"`
	ProjectID         string `json:"projectId"`
	StorageBucket     string `json:"storageBucket"`
	MessagingSenderID string `json:"messagingSenderId"`
	AppID             string `json:"appId"`
}

// Config はゲートウェイ全体の設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string
	// AuthToken はBearerトークンとして照合する共有シークレット。
	AuthToken string
	// Firebase は /firebase-config で配布する設定。
	Firebase FirebaseConfig
	// Resources は有効化するリソースの集合。
	Resources []Resource
	// AllowedOrigins はCORSで許可するオリジン。"*" は全オリジンを許可する。
	AllowedOrigins []string
	// StoreDriver は取引ストアの実装。
	StoreDriver StoreDriver
	// SQLitePath はSQLiteストアのファイルパス。
	SQLitePath string
	// DatabaseDSN はPostgreSQLの接続文字列。
	DatabaseDSN string
	// FirestoreProjectID はFirestoreのプロジェクトID。
	FirestoreProjectID string
	// StoreTimeout はストア呼び出し1回あたりのタイムアウト。
	StoreTimeout time.Duration
	// AuditDBPath は監査ログ用SQLiteのファイルパス。空の場合は監査ログを無効化する。
	AuditDBPath string
}

// Enabled は指定したリソースが有効かどうかを返す。
func (c *Config) Enabled(r Resource) bool {
	for _, v := range c.Resources {
		if v == r {
			return true
		}
	}
	return false
}

// Load は環境変数から設定を読み込み、検証済みの Config を返す。
// CONFIG_FILE が指定されている場合は先にYAMLファイルを適用し、環境変数で上書きする。
// トークンはYAMLには書かせず、環境変数からのみ読み込む。
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.AuthToken = firstEnv("AUTH_TOKEN", "SECURE_TOKEN")
	if cfg.AuthToken == "" {
		return nil, ErrMissingAuthToken
	}

	cfg.Firebase = FirebaseConfig{
		APIKey:            firstEnv("FIREBASE_API_KEY", "API_KEY"),
		AuthDomain:        firstEnv("FIREBASE_AUTH_DOMAIN", "AUTH_DOMAIN"),
		ProjectID:         firstEnv("FIREBASE_PROJECT_ID", "PROJECT_ID"),
		StorageBucket:     firstEnv("FIREBASE_STORAGE_BUCKET", "STORAGE_BUCKET"),
		MessagingSenderID: firstEnv("FIREBASE_MESSAGING_SENDER_ID", "MESSAGING_SENDER_ID"),
		AppID:             firstEnv("FIREBASE_APP_ID", "APP_ID"),
	}

	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		cfg.Port = v
	}
	if v, ok := os.LookupEnv("GATEWAY_RESOURCES"); ok && v != "" {
		resources, err := parseResources(splitList(v))
		if err != nil {
			return nil, err
		}
		cfg.Resources = resources
	}
	if v, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		cfg.AllowedOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv("STORE_DRIVER"); ok && v != "" {
		cfg.StoreDriver = StoreDriver(strings.ToLower(strings.TrimSpace(v)))
	}
	if v, ok := os.LookupEnv("SQLITE_PATH"); ok && v != "" {
		cfg.SQLitePath = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok && v != "" {
		cfg.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("FIRESTORE_PROJECT_ID"); ok && v != "" {
		cfg.FirestoreProjectID = v
	}
	if v, ok := os.LookupEnv("STORE_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("STORE_TIMEOUT の値 %q が不正です: %w", v, err)
		}
		cfg.StoreTimeout = d
	}
	if v, ok := os.LookupEnv("AUDIT_DB_PATH"); ok {
		cfg.AuditDBPath = v
	}

	if cfg.FirestoreProjectID == "" {
		cfg.FirestoreProjectID = cfg.Firebase.ProjectID
	}
	if cfg.AllowedOrigins == nil {
		cfg.AllowedOrigins = defaultOrigins(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaults は環境変数が無い場合の既定値を返す。
func defaults() *Config {
	return &Config{
		Port:         "5000",
		Resources:    []Resource{ResourceTransactions, ResourceFirebaseConfig},
		StoreDriver:  StoreDriverSQLite,
		SQLitePath:   "txgate.db",
		StoreTimeout: 10 * time.Second,
	}
}

// defaultOrigins はALLOWED_ORIGINSが未指定の場合の許可オリジンを決める。
// 設定配布を行わない構成では全オリジンを許可し、配布する構成では何も許可しない。
func defaultOrigins(cfg *Config) []string {
	if cfg.Enabled(ResourceFirebaseConfig) {
		return []string{}
	}
	return []string{"*"}
}

// validate は組み合わせとして矛盾がないかを検証する。
func (c *Config) validate() error {
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("ストアのタイムアウトは正の値である必要があります: %s", c.StoreTimeout)
	}
	// マイグレーションの適用履歴がファイル単位のため、同じファイルは共有できない
	if c.AuditDBPath != "" && c.StoreDriver == StoreDriverSQLite && c.AuditDBPath == c.SQLitePath {
		return errors.New("AUDIT_DB_PATH と SQLITE_PATH には別のファイルを指定してください")
	}
	if c.Enabled(ResourceAudit) && c.AuditDBPath == "" {
		return errors.New("audit リソースを有効にするには AUDIT_DB_PATH が必要です")
	}
	if !c.Enabled(ResourceTransactions) {
		return nil
	}
	switch c.StoreDriver {
	case StoreDriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH が空です")
		}
	case StoreDriverPostgres:
		if c.DatabaseDSN == "" {
			return errors.New("STORE_DRIVER=postgres には DATABASE_DSN が必要です")
		}
	case StoreDriverFirestore:
		if c.FirestoreProjectID == "" {
			return errors.New("STORE_DRIVER=firestore には FIRESTORE_PROJECT_ID または FIREBASE_PROJECT_ID が必要です")
		}
	default:
		return fmt.Errorf("未知のストアドライバです: %q", c.StoreDriver)
	}
	return nil
}

// parseResources はリソース名を検証して Resource のスライスに変換する。
func parseResources(names []string) ([]Resource, error) {
	resources := make([]Resource, 0, len(names))
	for _, name := range names {
		r := Resource(strings.ToLower(name))
		switch r {
		case ResourceTransactions, ResourceFirebaseConfig, ResourceAudit:
			resources = append(resources, r)
		default:
			return nil, fmt.Errorf("未知のリソースです: %q", name)
		}
	}
	return resources, nil
}

// firstEnv は指定した順に環境変数を探し、最初に見つかった空でない値を返す。
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// splitList はカンマ区切りの文字列を分割し、空要素を除いて返す。
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
