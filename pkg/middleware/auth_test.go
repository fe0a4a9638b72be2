package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// TestAuthorize は完全一致の判定を検証する。
func TestAuthorize(t *testing.T) {
	t.Parallel()

	const expected = "Bearer s3cret"

	tests := []struct {
		name      string
		presented string
		expected  string
		want      bool
	}{
		{name: "完全一致で許可されること", presented: "Bearer s3cret", expected: expected, want: true},
		{name: "ヘッダーが空なら拒否されること", presented: "", expected: expected, want: false},
		{name: "トークンのみでは拒否されること", presented: "s3cret", expected: expected, want: false},
		{name: "スキーム名の大文字小文字が違えば拒否されること", presented: "bearer s3cret", expected: expected, want: false},
		{name: "末尾の空白があれば拒否されること", presented: "Bearer s3cret ", expected: expected, want: false},
		{name: "前方一致では拒否されること", presented: "Bearer s3c", expected: expected, want: false},
		{name: "余分な文字が続けば拒否されること", presented: "Bearer s3cretX", expected: expected, want: false},
		{name: "期待値が空なら常に拒否されること", presented: "", expected: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Authorize(tt.presented, tt.expected); got != tt.want {
				t.Errorf("Authorize(%q, %q) = %v, want %v", tt.presented, tt.expected, got, tt.want)
			}
		})
	}
}

// TestAuthorizeBearer はトークンからの期待値の組み立てを検証する。
func TestAuthorizeBearer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		token  string
		want   bool
	}{
		{name: "完全一致で許可されること", header: "Bearer s3cret", token: "s3cret", want: true},
		{name: "トークンが違えば拒否されること", header: "Bearer other", token: "s3cret", want: false},
		{name: "トークンが空ならスキームだけのヘッダーも拒否されること", header: "Bearer ", token: "", want: false},
		{name: "トークンが空ならヘッダーが空でも拒否されること", header: "", token: "", want: false},
		{name: "トークンが空なら任意のヘッダーが拒否されること", header: "Bearer anything", token: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := AuthorizeBearer(tt.header, tt.token); got != tt.want {
				t.Errorf("AuthorizeBearer(%q, %q) = %v, want %v", tt.header, tt.token, got, tt.want)
			}
		})
	}
}

// TestBearerAuth はBearerAuthミドルウェアを検証する。
func TestBearerAuth(t *testing.T) {
	t.Parallel()

	newRouter := func(onDenied func(*gin.Context), called *bool) *gin.Engine {
		router := gin.New()
		router.Use(BearerAuth("s3cret", onDenied))
		router.GET("/protected", func(c *gin.Context) {
			*called = true
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		return router
	}

	t.Run("正しいトークンでハンドラが実行されること", func(t *testing.T) {
		t.Parallel()

		called := false
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer s3cret")
		w := httptest.NewRecorder()

		newRouter(nil, &called).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if !called {
			t.Error("ハンドラが呼ばれるべき")
		}
	})

	t.Run("Authorizationヘッダーが無い場合403が返りハンドラが呼ばれないこと", func(t *testing.T) {
		t.Parallel()

		called := false
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		w := httptest.NewRecorder()

		newRouter(nil, &called).ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusForbidden)
		}
		if called {
			t.Error("ハンドラが呼ばれるべきではない")
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if body["error"] != MessageUnauthorized {
			t.Errorf("error = %q, want %q", body["error"], MessageUnauthorized)
		}
	})

	t.Run("誤ったトークンでonDeniedが1回呼ばれること", func(t *testing.T) {
		t.Parallel()

		called := false
		denied := 0
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer wrong")
		w := httptest.NewRecorder()

		newRouter(func(*gin.Context) { denied++ }, &called).ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusForbidden)
		}
		if denied != 1 {
			t.Errorf("onDenied呼び出し回数 = %d, want 1", denied)
		}
		if called {
			t.Error("ハンドラが呼ばれるべきではない")
		}
	})

	t.Run("正しいトークンではonDeniedが呼ばれないこと", func(t *testing.T) {
		t.Parallel()

		called := false
		denied := 0
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer s3cret")
		w := httptest.NewRecorder()

		newRouter(func(*gin.Context) { denied++ }, &called).ServeHTTP(w, req)

		if denied != 0 {
			t.Errorf("onDenied呼び出し回数 = %d, want 0", denied)
		}
	})

	t.Run("トークンが空の設定ではスキームだけのヘッダーも403になること", func(t *testing.T) {
		t.Parallel()

		called := false
		denied := 0
		router := gin.New()
		router.Use(BearerAuth("", func(*gin.Context) { denied++ }))
		router.GET("/protected", func(c *gin.Context) {
			called = true
			c.String(http.StatusOK, "passed")
		})

		for _, header := range []string{"Bearer ", "", "Bearer"} {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != http.StatusForbidden {
				t.Errorf("header=%q: ステータスコード = %d, want %d", header, w.Code, http.StatusForbidden)
			}
		}
		if called {
			t.Error("ハンドラが呼ばれるべきではない")
		}
		if denied != 3 {
			t.Errorf("onDenied呼び出し回数 = %d, want 3", denied)
		}
	})
}
