package gateway

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/nao1215/txgate/pkg/event"
)

// TestFirebaseConfig は設定配布エンドポイントを検証する。
func TestFirebaseConfig(t *testing.T) {
	t.Parallel()

	t.Run("正しいトークンで6項目だけが返ること", func(t *testing.T) {
		t.Parallel()

		rec := &spyRecorder{}
		s := newTestServer(t, testConfig(), newSpyStore(), rec)

		w := doRequest(t, s, http.MethodGet, "/firebase-config", "", testAuthHeader)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		want := map[string]string{
			"apiKey":            "api-key",
			"authDomain":        "example.firebaseapp.com",
			"projectId":         "example",
			"storageBucket":     "example.appspot.com",
			"messagingSenderId": "1234567890",
			"appId":             "1:1234567890:web:abcdef",
		}
		if len(body) != len(want) {
			t.Errorf("項目数 = %d, want %d (body=%v)", len(body), len(want), body)
		}
		for k, v := range want {
			if body[k] != v {
				t.Errorf("%s = %q, want %q", k, body[k], v)
			}
		}

		types := rec.eventTypes()
		if len(types) != 1 || types[0] != event.TypeFirebaseConfigDisclosed {
			t.Errorf("監査イベント = %v, want [%s]", types, event.TypeFirebaseConfigDisclosed)
		}
	})

	t.Run("未設定の項目も空文字列としてキーが返ること", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.Firebase.StorageBucket = ""
		s := newTestServer(t, cfg, newSpyStore(), nil)

		w := doRequest(t, s, http.MethodGet, "/firebase-config", "", testAuthHeader)

		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if v, ok := body["storageBucket"]; !ok || v != "" {
			t.Errorf("storageBucket = %v (存在=%v), want 空文字列", v, ok)
		}
	})

	t.Run("トークンが空の設定では常に拒否されること", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.AuthToken = ""
		s := newTestServer(t, cfg, newSpyStore(), nil)

		w := doRequest(t, s, http.MethodGet, "/firebase-config", "", "Bearer ")

		if w.Code != http.StatusForbidden {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusForbidden)
		}
	})
}
