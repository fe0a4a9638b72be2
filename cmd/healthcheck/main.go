// コンテナのHEALTHCHECKから呼び出すヘルスチェックコマンド。
// 同じコンテナ内のゲートウェイの /health を呼び、成功なら0、失敗なら1で終了する。
package main

import (
	"context"
	"log"
	"net"
	"os"
	"time"

	"github.com/nao1215/txgate/pkg/httpclient"
)

func main() {
	os.Exit(check())
}

func check() int {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client := httpclient.New(baseURL(), "")
	if err := client.Health(ctx); err != nil {
		log.Printf("[Healthcheck] %v", err)
		return 1
	}
	return 0
}

// baseURL はチェック先のURLを決める。
// HEALTHCHECK_URL が無ければ PORT を使ってループバックに接続する。
func baseURL() string {
	if v := os.Getenv("HEALTHCHECK_URL"); v != "" {
		return v
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	return "http://" + net.JoinHostPort("127.0.0.1", port)
}
