// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// 共有トークンによるBearer認可、パニックリカバリ、
// CORS設定など、ゲートウェイの全ルートで共通して使用するミドルウェアを含む。
package middleware
