// Package session はセッショントークンの検証とIdentityの導出を提供する。
//
// 上流APIがログイン時に発行するJWTを共有秘密鍵で検証し、
// リクエストスコープの認証状態（Identity）に変換する。
// トークン以外の状態は一切持たず、すべてクッキー値から毎回導出する。
package session
