package gateway

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nao1215/webinarhub/internal/upstream"
	"github.com/nao1215/webinarhub/pkg/middleware"
)

// Server はセッションGatewayサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg は起動時に確定した設定。以後変更されない。
	cfg Config
	// upstream は上流APIへのクライアント。
	upstream *upstream.Client
}

// NewServer は新しいGatewayサーバーを生成する。
func NewServer(cfg Config) *Server {
	registry := prometheus.NewRegistry()

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics(registry))
	router.Use(middleware.CORS([]string{cfg.FrontendURL}))
	router.Use(middleware.Session(cfg.JWTSecret))

	s := &Server{
		router:   router,
		cfg:      cfg,
		upstream: upstream.New(cfg.UpstreamURL, cfg.UpstreamTimeout),
	}
	s.setupRoutes(registry)

	return s
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.cfg.Port))
}

// setupRoutes はAPIルーティングとページガードを設定する。
func (s *Server) setupRoutes(registry *prometheus.Registry) {
	// 認証不要のAPIエンドポイント
	api := s.router.Group("/api")
	{
		api.POST("/login", s.handleLogin())
		api.POST("/logout", s.handleLogout())
		api.POST("/register", s.handleRegister())
		api.POST("/send-otp", s.handleSendOTP())
		// 証明書の取得だけは公開されたパススルー操作
		api.POST("/get-cert", s.handleGetCert())
	}

	// 認証必須のパススルー操作
	protected := s.router.Group("/api")
	protected.Use(middleware.RequireSession())
	{
		protected.POST("/user-info", s.handleUserInfo())
		protected.POST("/search-user", s.handleSearchUser())
		protected.POST("/get-event-info", s.handleGetEventInfo())
		protected.POST("/get-event-part", s.handleGetEventPart())
		protected.POST("/del-event", s.handleDelEvent())
	}

	// committee役割を追加で要求するページ
	s.router.GET("/webinar/:id/cert-editor", s.handleCertEditorPage())

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gateway"})
	})

	// メトリクス
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// 上記に一致しないパスはすべてページとして扱い、静的なルートテーブルでガードする
	s.router.NoRoute(s.handlePage())
}
