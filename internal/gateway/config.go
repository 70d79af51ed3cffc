package gateway

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config はGatewayサービスの設定。
// プロセス起動時に一度だけ環境変数から読み込み、以後は変更しない。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string `env:"PORT" envDefault:"8080"`
	// JWTSecret はセッショントークン検証用の秘密鍵。上流APIと共有する。
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-key"`
	// UpstreamURL は上流APIのベースURL。
	UpstreamURL string `env:"UPSTREAM_API_URL" envDefault:"http://localhost:3000"`
	// FrontendURL はCORSで許可するフロントエンドのオリジン。
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	// UpstreamTimeout は上流API呼び出し1回に許す上限時間。
	// 上流の応答を待ってリクエストを無期限に塞がないための境界になる。
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`
}

// LoadConfig は環境変数から設定を読み込む。
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}
	return cfg, nil
}
