// Package gateway はゲートウェイサービスの内部実装を提供する。
//
// 共有トークンによる認可、取引CRUDのストアへの転送、
// Firebase接続設定の配布を担当する。外部からアクセス可能な唯一の入口であり、
// セキュリティの境界線として機能する。認可を通過しないリクエストは
// ストアに一切到達しない。
//
// 公開するルートは設定の Resources で選択する。/health は常に公開する。
package gateway
