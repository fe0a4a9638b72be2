// ゲートウェイサービスのエントリポイント。
// 共有トークンで保護された取引CRUDとFirebase接続設定の配布を担当する。
// 外部からアクセス可能な唯一のサービスであり、セキュリティの境界線となる。
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/txgate/internal/audit"
	"github.com/nao1215/txgate/internal/config"
	"github.com/nao1215/txgate/internal/gateway"
	"github.com/nao1215/txgate/internal/store"
	"github.com/nao1215/txgate/internal/store/firestore"
	"github.com/nao1215/txgate/internal/store/postgres"
	"github.com/nao1215/txgate/internal/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("[Gateway] %v", err)
	}
}

// run は設定の読み込みからサーバー停止までを行う。
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	txStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if txStore != nil {
		defer closeWithLog("取引ストア", txStore.Close)
	}

	recorder, err := openAudit(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeWithLog("監査ログ", recorder.Close)

	server, err := gateway.NewServer(cfg, txStore, recorder)
	if err != nil {
		return fmt.Errorf("Gatewayサーバーの初期化に失敗: %w", err)
	}

	log.Printf("[Gateway] Gatewayサービスを起動します: :%s (resources=%v, store=%s)", cfg.Port, cfg.Resources, cfg.StoreDriver)
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("Gatewayサービスの実行に失敗: %w", err)
	}
	log.Printf("[Gateway] Gatewayサービスを停止しました")
	return nil
}

// openStore は設定されたドライバの取引ストアを開く。
// transactionsリソースが無効な場合はnilを返す。
func openStore(ctx context.Context, cfg *config.Config) (store.TransactionStore, error) {
	if !cfg.Enabled(config.ResourceTransactions) {
		return nil, nil
	}

	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("SQLiteストアのオープンに失敗: %w", err)
		}
		log.Printf("[Gateway] SQLiteストアを使用します: %s", cfg.SQLitePath)
		return s, nil
	case config.StoreDriverPostgres:
		s, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("PostgreSQLストアのオープンに失敗: %w", err)
		}
		log.Printf("[Gateway] PostgreSQLストアを使用します")
		return s, nil
	case config.StoreDriverFirestore:
		s, err := firestore.Open(ctx, cfg.FirestoreProjectID)
		if err != nil {
			return nil, fmt.Errorf("Firestoreストアのオープンに失敗: %w", err)
		}
		log.Printf("[Gateway] Firestoreストアを使用します: project=%s", cfg.FirestoreProjectID)
		return s, nil
	default:
		return nil, fmt.Errorf("未知のストアドライバです: %q: %w", cfg.StoreDriver, store.ErrNotConfigured)
	}
}

// openAudit は監査ログを開く。パスが未設定なら記録しない Recorder を返す。
func openAudit(ctx context.Context, cfg *config.Config) (audit.Recorder, error) {
	if cfg.AuditDBPath == "" {
		return audit.Nop{}, nil
	}
	l, err := audit.OpenSQLite(ctx, cfg.AuditDBPath)
	if err != nil {
		return nil, fmt.Errorf("監査ログのオープンに失敗: %w", err)
	}
	log.Printf("[Gateway] 監査ログを記録します: %s", cfg.AuditDBPath)
	return l, nil
}

// closeWithLog はリソースを閉じ、失敗した場合はログに残す。
func closeWithLog(name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.Printf("[Gateway] %sのクローズに失敗: %v", name, err)
	}
}
