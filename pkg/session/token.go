package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName はセッションクッキーの正規名。
const CookieName = "session"

// Claims はセッショントークンのクレーム（ペイロード）を表す。
// 上流APIがログイン時に発行するJWTと互換の構造を持つ。
type Claims struct {
	jwt.RegisteredClaims
	// Email は認証済みユーザーのメールアドレス。
	Email string `json:"email"`
	// Admin はユーザーの権限レベル。上流APIは数値で発行する。
	Admin float64 `json:"admin"`
}

// IsAdmin は管理者権限を持つかどうかを返す。
// Adminクレームは数値であり、0以外はすべて管理者とみなす。
func (c *Claims) IsAdmin() bool {
	return c.Admin != 0
}

// Sign はHS256署名付きセッショントークンを生成する。
// トークンの発行者は上流APIだが、同じ秘密鍵・同じ方式で
// 署名されたトークンであれば互換に検証できる。
func Sign(secret, email string, admin float64, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email: email,
		Admin: admin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("セッショントークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// Verify はセッショントークンを検証しクレームを返す。
// 構造不正・署名不一致・有効期限切れのいずれの場合もエラーを返す。
// 検証時刻はnowで与え、同じ入力に対して常に同じ結果を返す。
func Verify(secret, tokenString string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("セッショントークンの検証に失敗: %w", err)
	}
	return claims, nil
}
