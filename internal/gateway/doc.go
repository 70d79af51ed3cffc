// Package gateway はセッションGatewayサービスの内部実装を提供する。
//
// セッションクッキーの発行・破棄、ページアクセスの認可判定、
// 認可済みリクエストの上流APIへの転送を担当する。
// 外部からアクセス可能な唯一のサービスであり、セキュリティの境界線として
// 機能する。ユーザー・イベント・OTPなどの永続化はすべて上流API側にあり、
// このサービスが持つ状態は不変の設定とルートテーブルだけになる。
package gateway
