package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/txgate/internal/audit"
	"github.com/nao1215/txgate/internal/config"
	"github.com/nao1215/txgate/internal/store"
	"github.com/nao1215/txgate/pkg/middleware"
)

// shutdownTimeout は停止シグナル受信後に処理中のリクエストを待つ最大時間。
const shutdownTimeout = 10 * time.Second

// Server はゲートウェイの HTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg は起動時に読み込んだ設定。以後変更しない。
	cfg *config.Config
	// store は取引の転送先ストア。transactionsが無効な場合はnil。
	store store.TransactionStore
	// audit は監査ログ。
	audit audit.Recorder
	// now は取引に付与する日時を返す。テストで差し替える。
	now func() time.Time
}

// NewServer は新しいゲートウェイサーバーを生成する。
// recorderがnilの場合は監査ログを記録しない。
func NewServer(cfg *config.Config, txStore store.TransactionStore, recorder audit.Recorder) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("設定がnilです")
	}
	if cfg.Enabled(config.ResourceTransactions) && txStore == nil {
		return nil, fmt.Errorf("transactionsリソースを有効にするには取引ストアが必要です: %w", store.ErrNotConfigured)
	}
	if recorder == nil {
		recorder = audit.Nop{}
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	s := &Server{
		router: router,
		cfg:    cfg,
		store:  txStore,
		audit:  recorder,
		now:    time.Now,
	}
	s.setupRoutes()

	return s, nil
}

// Handler はルーティング済みの http.Handler を返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run は設定されたポートでHTTPサーバーを起動し、ctxがキャンセルされるまで処理を続ける。
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.cfg.Port)
	if err != nil {
		return fmt.Errorf("ポート %s のリッスンに失敗: %w", s.cfg.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve は指定したリスナーでリクエストを受け付ける。
// ctxがキャンセルされると新規受付を止め、処理中のリクエストを最大10秒待ってから戻る。
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.cfg.StoreTimeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Gateway] %s でリクエストの受付を開始します", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTPサーバーが停止しました: %w", err)
	case <-ctx.Done():
	}

	log.Printf("[Gateway] 停止シグナルを受信しました。処理中のリクエストを待機します")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTPサーバーの停止に失敗: %w", err)
	}
	return nil
}

// setupRoutes は有効なリソースに応じてルーティングを設定する。
func (s *Server) setupRoutes() {
	gate := middleware.BearerAuth(s.cfg.AuthToken, s.recordDenied)

	if s.cfg.Enabled(config.ResourceTransactions) {
		txs := s.router.Group("/api/transactions", gate)
		{
			txs.GET("", s.handleListTransactions())
			txs.POST("", s.handleCreateTransaction())
			txs.DELETE("/:id", s.handleDeleteTransaction())
			// IDが空のパスも400で応答するために受け付ける
			txs.DELETE("/", s.handleDeleteTransaction())
		}
	}

	if s.cfg.Enabled(config.ResourceFirebaseConfig) {
		// 認可はハンドラ自身が行う
		s.router.GET("/firebase-config", s.handleFirebaseConfig())
	}

	if s.cfg.Enabled(config.ResourceAudit) {
		s.router.GET("/api/audit", gate, s.handleListAuditEvents())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
}

// storeContext はストア呼び出し1回分のタイムアウト付きコンテキストを返す。
func (s *Server) storeContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.cfg.StoreTimeout)
}

// respondStoreError はストアのエラーをエラーエンベロープに変換して返す。
// ストアのキーに使えないIDはクライアントの誤りとして400にする。
func respondStoreError(c *gin.Context, op string, err error) {
	if errors.Is(err, store.ErrInvalidID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[Gateway] %s に失敗: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
