// Package httpclient はゲートウェイのHTTP APIを呼び出すクライアントを提供する。
//
// 取引のCRUD、Firebase接続設定の取得、監査ログの参照、ヘルスチェックを
// 型付きのメソッドとして提供する。共有トークンは生成時に渡し、
// すべての保護されたリクエストにBearerトークンとして付与する。
//
// ヘルスチェックCLI（cmd/healthcheck）やE2Eテストから使用する。
package httpclient
