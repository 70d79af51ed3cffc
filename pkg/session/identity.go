package session

import (
	"strings"
	"time"
)

// Identity は1リクエストの間だけ有効な認証状態を表す。
// リクエスト間で共有されることはなく、毎回クッキーから再導出される。
type Identity struct {
	// Email は認証済みユーザーのメールアドレス。
	Email string
	// Admin は管理者権限を持つかどうか。
	Admin bool
	// Token は検証済みの生のセッショントークン。
	// 上流APIへのBearer資格情報としてそのまま転送する。
	Token string
}

// Resolve はクッキー値からIdentityを導出する純粋関数。
// クッキーが無い場合は匿名（ok=false）を返す。
// 検証に失敗したトークンもクッキー無しと同じ匿名になる。
// 失敗理由を呼び出し側に区別させないことで、署名検証の失敗詳細が
// クライアントに漏れないようにしている。
func Resolve(secret, cookieValue string, now time.Time) (Identity, bool) {
	value := strings.TrimSpace(cookieValue)
	if value == "" {
		return Identity{}, false
	}

	claims, err := Verify(secret, value, now)
	if err != nil {
		return Identity{}, false
	}

	return Identity{
		Email: claims.Email,
		Admin: claims.IsAdmin(),
		Token: value,
	}, true
}
