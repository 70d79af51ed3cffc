// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// セッションクッキーからのIdentity解決、認証必須チェック、リクエストID付与、
// Prometheusメトリクス収集、パニックリカバリ、CORS設定を含む。
package middleware
