// Package audit はゲートウェイを通過した操作の監査ログを提供する。
//
// 記録するイベントは pkg/event で定義される。
// ログは追記のみで運用し、記録済みのイベントを更新・削除する操作は持たない。
//
// 主な機能:
//   - イベントの追記（Record）
//   - 日時指定によるイベント取得（Since）
//
// 監査ログを使わない構成では Nop を使う。
package audit
