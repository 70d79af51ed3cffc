package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/webinarhub/internal/upstream"
	"github.com/nao1215/webinarhub/pkg/middleware"
	"github.com/nao1215/webinarhub/pkg/session"
)

// loginResponse は上流APIのログイン応答のうちGatewayが利用する部分。
// 残りのフィールド（dataやmessageなど）は解釈せずに捨てる。
type loginResponse struct {
	// Token は上流APIが発行したセッショントークン。
	Token string `json:"token"`
}

// handleLogin はログインを上流APIに転送し、成功時にセッションクッキーを発行する
// ハンドラを返す。資格情報の検証は上流APIの責務で、Gatewayは結果のトークンを
// クッキーに載せ替えるだけになる。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid request body")
			return
		}

		res, err := s.upstream.Call(c.Request.Context(), upstream.Operation{
			Method: http.MethodPost,
			Path:   "/api/login",
			Body:   body,
		}, identityOf(c))
		if err != nil {
			s.failUpstream(c, "login", err)
			return
		}
		if !res.OK() {
			// ログイン拒否はJSONのmessageフィールドを持つ。本文だけを返す。
			c.String(http.StatusUnauthorized, upstream.ErrorMessage(res.Body))
			return
		}

		var payload loginResponse
		if err := json.Unmarshal(res.Body, &payload); err != nil || payload.Token == "" {
			log.Printf("ログイン応答のパースに失敗: request_id=%s, error=%v", middleware.GetRequestID(c), err)
			c.String(http.StatusInternalServerError, "Internal Server Error")
			return
		}

		setSessionCookie(c, payload.Token)
		c.String(http.StatusOK, "ok")
	}
}

// handleLogout はセッションクッキーを破棄するハンドラを返す。
// Identityの有無は確認しない。何度呼んでも同じ結果になる。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		clearSessionCookie(c)
		c.String(http.StatusOK, "Logged out")
	}
}

// handleRegister は登録を上流APIに転送するハンドラを返す。
// 登録が成功してもセッションは発行しない。OTP確認とログインは別の操作になる。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid request body")
			return
		}

		res, err := s.upstream.Call(c.Request.Context(), upstream.Operation{
			Method: http.MethodPost,
			Path:   "/api/register",
			Body:   body,
		}, identityOf(c))
		if err != nil {
			s.failUpstream(c, "register", err)
			return
		}
		if !res.OK() {
			c.String(http.StatusUnauthorized, string(res.Body))
			return
		}

		c.String(http.StatusOK, "ok")
	}
}

// sendOTPRequest はOTP送信リクエストのJSON構造。
type sendOTPRequest struct {
	// Email はOTP送信先のメールアドレス。
	Email string `json:"email"`
}

// handleSendOTP は登録用OTPの発行を上流APIに依頼するハンドラを返す。
func (s *Server) handleSendOTP() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
			c.String(http.StatusBadRequest, "Email is required")
			return
		}

		query := url.Values{}
		query.Set("email", req.Email)

		res, err := s.upstream.Call(c.Request.Context(), upstream.Operation{
			Method: http.MethodGet,
			Path:   "/api/gen-otp-for-register",
			Query:  query,
		}, identityOf(c))
		if err != nil {
			s.failUpstream(c, "send-otp", err)
			return
		}
		if !res.OK() {
			c.String(res.StatusCode, "Failed to generate OTP Code: %s", res.Body)
			return
		}

		c.String(http.StatusOK, "OTP sent successfully")
	}
}

// handleUserInfo はログイン中ユーザーの情報取得を転送するハンドラを返す。
func (s *Server) handleUserInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.relay(c, "user-info", "Failed to get user info", upstream.Operation{
			Method:       http.MethodGet,
			Path:         "/api/protected/user-info",
			RequiresAuth: true,
		})
	}
}

// searchUserRequest はユーザー検索リクエストのJSON構造。
// ポインタ型のフィールドは「未指定」と「ゼロ値」を区別するためのもの。
// 未指定の項目はクエリパラメータとして送信されない。
type searchUserRequest struct {
	// Limit は取得件数の上限。
	Limit *int `json:"limit"`
	// Offset は取得開始位置。0は有効な値として送信される。
	Offset *int `json:"offset"`
	// Search は検索文字列。空文字の場合は送信しない。
	Search string `json:"search"`
	// Sort はソート指定。空文字の場合は送信しない。
	Sort string `json:"sort"`
}

// handleSearchUser はユーザー検索を転送するハンドラを返す。
// リクエストボディで指定された項目だけをクエリパラメータに変換する。
func (s *Server) handleSearchUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req searchUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, "Invalid request body")
			return
		}

		query := url.Values{}
		if req.Limit != nil {
			query.Set("limit", strconv.Itoa(*req.Limit))
		}
		if req.Offset != nil {
			query.Set("offset", strconv.Itoa(*req.Offset))
		}
		if req.Search != "" {
			query.Set("search", req.Search)
		}
		if req.Sort != "" {
			query.Set("sort", req.Sort)
		}

		s.relay(c, "search-user", "Failed to get search user", upstream.Operation{
			Method:       http.MethodGet,
			Path:         "/api/protected/user-search",
			Query:        query,
			RequiresAuth: true,
		})
	}
}

// eventIDRequest はイベントIDを指定するリクエストのJSON構造。
type eventIDRequest struct {
	// ID は対象イベントのID。未指定は無効な値として扱う。
	ID *int `json:"id"`
}

// eventID はリクエストボディからイベントIDを取り出す。
// 未指定・負数はok=falseになる。
func eventID(c *gin.Context) (int, bool) {
	var req eventIDRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == nil || *req.ID < 0 {
		return 0, false
	}
	return *req.ID, true
}

// handleGetEventInfo はイベント情報の取得を転送するハンドラを返す。
func (s *Server) handleGetEventInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := eventID(c)
		if !ok {
			c.String(http.StatusBadRequest, "Invalid id is given")
			return
		}

		query := url.Values{}
		query.Set("id", strconv.Itoa(id))

		s.relay(c, "get-event-info", "Failed to get all of the webinar", upstream.Operation{
			Method:       http.MethodGet,
			Path:         "/api/protected/event-info-of",
			Query:        query,
			RequiresAuth: true,
		})
	}
}

// handleGetEventPart はイベント参加者一覧の取得を転送するハンドラを返す。
func (s *Server) handleGetEventPart() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := eventID(c)
		if !ok {
			c.String(http.StatusBadRequest, "Invalid event id is given")
			return
		}

		query := url.Values{}
		query.Set("event_id", strconv.Itoa(id))

		s.relay(c, "get-event-part", "Failed to get event part data", upstream.Operation{
			Method:       http.MethodGet,
			Path:         "/api/protected/event-participate-of-event",
			Query:        query,
			RequiresAuth: true,
		})
	}
}

// handleDelEvent はイベント削除を転送するハンドラを返す。
// リクエストボディはそのまま上流APIに渡す。
func (s *Server) handleDelEvent() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid request body")
			return
		}

		s.relay(c, "del-event", "Failed to delete webinar", upstream.Operation{
			Method:       http.MethodPost,
			Path:         "/api/protected/event-del",
			Body:         body,
			RequiresAuth: true,
		})
	}
}

// getCertRequest は証明書取得リクエストのJSON構造。
type getCertRequest struct {
	// B64 は証明書を指す不透明な識別子。
	B64 string `json:"b64"`
}

// handleGetCert は発行済み証明書の取得を転送するハンドラを返す。
// 証明書は識別子を知っている者に公開されるため、認証を要求しない。
func (s *Server) handleGetCert() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req getCertRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.B64 == "" {
			c.String(http.StatusBadRequest, "Invalid base64 is given")
			return
		}

		s.relay(c, "get-cert", "Failed to get certificate", upstream.Operation{
			Method: http.MethodGet,
			Path:   "/api/certificate/" + url.PathEscape(req.B64),
			Accept: "text/html",
		})
	}
}

// relay は上流APIを呼び出し、応答をそのままクライアントに返す共通処理。
// 各エンドポイント固有なのは操作の組み立てとエラーメッセージの文脈だけで、
// 転送・エラー変換のロジックはすべてここに集約する。
//
// 上流が非2xxを返した場合は上流のステータスを保ったまま、
// 文脈を付けたエラーテキストとして返す。Gateway自身のステータスに
// 置き換えることはない。2xxの場合はボディ・ステータス・Content-Typeを
// そのまま転送する。応答エンベロープの解釈は呼び出し側に任せる。
func (s *Server) relay(c *gin.Context, name, errContext string, op upstream.Operation) {
	res, err := s.upstream.Call(c.Request.Context(), op, identityOf(c))
	if err != nil {
		s.failUpstream(c, name, err)
		return
	}
	if !res.OK() {
		c.String(res.StatusCode, "%s: %s", errContext, res.Body)
		return
	}
	c.Data(res.StatusCode, res.ContentType, res.Body)
}

// failUpstream は上流API呼び出しの失敗を正規化された応答に変換する。
// 資格情報が無い場合は401、それ以外の通信障害は一般化した500を返す。
// 障害の詳細は運用者向けにログへ残し、クライアントには返さない。
func (s *Server) failUpstream(c *gin.Context, name string, err error) {
	if errors.Is(err, upstream.ErrUnauthenticated) {
		c.String(http.StatusUnauthorized, "Authentication token not found")
		return
	}
	log.Printf("上流API呼び出しに失敗: op=%s, request_id=%s, error=%v", name, middleware.GetRequestID(c), err)
	c.String(http.StatusInternalServerError, "Internal Server Error")
}

// identityOf はGinコンテキストからIdentityを取り出す。匿名の場合はゼロ値を返す。
func identityOf(c *gin.Context) session.Identity {
	identity, _ := middleware.GetIdentity(c)
	return identity
}
