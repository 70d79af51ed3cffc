// セッションGatewayサービスのエントリポイント。
// セッションクッキーの検証、ページアクセスの認可判定、
// 上流APIへのリクエスト転送を担当する。
// 外部からアクセス可能な唯一のサービスであり、セキュリティの境界線となる。
package main

import (
	"log"

	"github.com/nao1215/webinarhub/internal/gateway"
)

func main() {
	cfg, err := gateway.LoadConfig()
	if err != nil {
		log.Fatalf("Gatewayサーバーの設定読み込みに失敗: %v", err)
	}

	server := gateway.NewServer(cfg)

	log.Printf("Gatewayサービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("Gatewayサービスの起動に失敗: %v", err)
	}
}
