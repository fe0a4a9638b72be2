package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/txgate/pkg/event"
)

// Client はゲートウェイ用のHTTPクライアント。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL はゲートウェイのベースURL。
	baseURL string
	// token はAuthorizationヘッダーに付与する共有トークン。
	token string
}

// APIError はゲートウェイが2xx以外を返したときのエラー。
type APIError struct {
	// StatusCode はHTTPステータスコード。
	StatusCode int
	// Message はエラーエンベロープのerrorフィールド。取り出せなければボディそのもの。
	Message string
}

// Error はエラーメッセージを返す。
func (e *APIError) Error() string {
	return fmt.Sprintf("HTTPエラー: status=%d, error=%s", e.StatusCode, e.Message)
}

// Transaction はゲートウェイが返す取引。
type Transaction struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewTransaction は取引作成のリクエスト。
type NewTransaction struct {
	UserID      string  `json:"userId"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
}

// FirebaseConfig はゲートウェイが配布するFirebase接続設定。
type FirebaseConfig struct {
	APIKey            string `json:"apiKey"`
	AuthDomain        string `json:"authDomain"`
	ProjectID         string `json:"projectId"`
	StorageBucket     string `json:"storageBucket"`
	MessagingSenderID string `json:"messagingSenderId"`
	AppID             string `json:"appId"`
}

// New は新しいゲートウェイクライアントを生成する。
// baseURLにはゲートウェイのベースURL（例: "http://localhost:5000"）を指定する。
// tokenが空の場合はAuthorizationヘッダーを付与しない。
func New(baseURL, token string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// ListTransactions は所有者の取引を新しい順に取得する。
func (c *Client) ListTransactions(ctx context.Context, userID string) ([]Transaction, error) {
	q := url.Values{"userId": {userID}}
	var txs []Transaction
	if err := c.doJSON(ctx, http.MethodGet, "/api/transactions?"+q.Encode(), nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// CreateTransaction は取引を作成し、採番されたIDを返す。
func (c *Client) CreateTransaction(ctx context.Context, tx NewTransaction) (string, error) {
	var result struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/transactions", tx, &result); err != nil {
		return "", err
	}
	return result.ID, nil
}

// DeleteTransaction は取引を削除する。存在しない取引の削除も成功する。
func (c *Client) DeleteTransaction(ctx context.Context, userID, id string) error {
	q := url.Values{"userId": {userID}}
	path := "/api/transactions/" + url.PathEscape(id) + "?" + q.Encode()
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// FirebaseConfig はFirebase接続設定を取得する。
func (c *Client) FirebaseConfig(ctx context.Context) (*FirebaseConfig, error) {
	var cfg FirebaseConfig
	if err := c.doJSON(ctx, http.MethodGet, "/firebase-config", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// AuditEvents はsince以降の監査イベントを取得する。
// sinceがゼロ値なら先頭から、limitが0以下ならゲートウェイの既定件数で取得する。
func (c *Client) AuditEvents(ctx context.Context, since time.Time, limit int) ([]event.Event, error) {
	q := url.Values{}
	if !since.IsZero() {
		q.Set("since", since.UTC().Format(time.RFC3339))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/audit"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var events []event.Event
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Health はヘルスチェックを行う。200以外ならエラーを返す。
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	return nil
}

// doJSON はJSON形式のHTTPリクエストを実行する共通処理。
func (c *Client) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
		}
	}
	return nil
}

// decodeAPIError はエラーレスポンスを APIError に変換する。
func decodeAPIError(resp *http.Response) error {
	respBody, _ := io.ReadAll(resp.Body)
	var envelope struct {
		Error string `json:"error"`
	}
	msg := string(respBody)
	if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error != "" {
		msg = envelope.Error
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
