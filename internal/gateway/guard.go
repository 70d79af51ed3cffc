package gateway

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/webinarhub/internal/upstream"
	"github.com/nao1215/webinarhub/pkg/middleware"
	"github.com/nao1215/webinarhub/pkg/session"
)

// requiredLevel はルートが要求する認証レベル。
type requiredLevel int

const (
	// levelPublic は認証不要のルート。
	levelPublic requiredLevel = iota
	// levelAuthenticated はログイン済みユーザーのみのルート。
	levelAuthenticated
	// levelAdmin は管理者のみのルート。
	levelAdmin
)

// routeRule はパス（またはプレフィックス）と要求レベルの対応。
type routeRule struct {
	// path はルートのパス。
	path string
	// prefix が真の場合はpath配下のすべてを対象にする。
	prefix bool
	// level はこのルートが要求する認証レベル。
	level requiredLevel
}

// pageRules はページルートの静的な認可テーブル。
// プロセス起動時に定まり、以後読み取り専用になる。
// テーブルに一致しないパスはすべてログイン必須として扱う。
var pageRules = []routeRule{
	{path: "/login", level: levelPublic},
	{path: "/land", level: levelPublic},
	{path: "/register", level: levelPublic},
	{path: "/cert-view", level: levelPublic},
	{path: "/admin", prefix: true, level: levelAdmin},
}

// levelOf はパスに対する要求レベルを返す。
// 複数のルールが一致する場合は最長のパスを持つルールを採用する。
func levelOf(path string) requiredLevel {
	matched := -1
	level := levelAuthenticated
	for _, rule := range pageRules {
		if len(rule.path) <= matched {
			continue
		}
		if rule.prefix {
			if path == rule.path || strings.HasPrefix(path, rule.path+"/") {
				matched = len(rule.path)
				level = rule.level
			}
		} else if path == rule.path {
			matched = len(rule.path)
			level = rule.level
		}
	}
	return level
}

// guardDecision はページガードの判定結果。
type guardDecision int

const (
	// decisionAllow はアクセスを許可する。
	decisionAllow guardDecision = iota
	// decisionRedirectLogin はログインページへ誘導する。
	decisionRedirectLogin
	// decisionRedirectDashboard はダッシュボードへ送り返す。
	decisionRedirectDashboard
)

// decide はIdentityとパスからページアクセスの可否を判定する。
// 匿名のIdentityがlevelPublic以外のルートで許可されることはない。
func decide(identity session.Identity, authenticated bool, path string) guardDecision {
	// ログイン済みユーザーがログインページに来た場合だけの逆方向ゲート
	if path == "/login" && authenticated {
		return decisionRedirectDashboard
	}

	switch levelOf(path) {
	case levelPublic:
		return decisionAllow
	case levelAdmin:
		if !authenticated {
			return decisionRedirectLogin
		}
		if !identity.Admin {
			return decisionRedirectDashboard
		}
		return decisionAllow
	default:
		if !authenticated {
			return decisionRedirectLogin
		}
		return decisionAllow
	}
}

// handlePage はページリクエストをガードするハンドラを返す。
// ページの描画は別レイヤの責務であり、Gatewayは認可判定と
// リダイレクトだけを行う。許可されたリクエストには200を返す。
func (s *Server) handlePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, authenticated := middleware.GetIdentity(c)

		switch decide(identity, authenticated, c.Request.URL.Path) {
		case decisionRedirectLogin:
			c.Redirect(http.StatusSeeOther, "/login")
		case decisionRedirectDashboard:
			c.Redirect(http.StatusSeeOther, "/dashboard")
		default:
			c.Status(http.StatusOK)
		}
	}
}

// participantRecord は上流APIが返すイベント参加記録のうちガードが利用する部分。
type participantRecord struct {
	// Success は参加記録が存在したかどうか。
	Success bool `json:"success"`
	// Data は参加記録本体。
	Data struct {
		// EventPRole はイベント内での役割（normal / committee）。
		EventPRole string `json:"EventPRole"`
	} `json:"data"`
}

// handleCertEditorPage は証明書エディタページのガードを返す。
// 粗いガード（ログイン必須）の後に、対象イベントでのcommittee役割を
// 追加で要求する。管理者は参加記録が無くてもアクセスできる。
func (s *Server) handleCertEditorPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, authenticated := middleware.GetIdentity(c)
		if !authenticated {
			c.Redirect(http.StatusSeeOther, "/login")
			return
		}

		if !identity.Admin && !s.isCommittee(c, identity, c.Param("id")) {
			c.Redirect(http.StatusSeeOther, "/dashboard")
			return
		}

		c.Status(http.StatusOK)
	}
}

// isCommittee は対象イベントの参加記録を上流APIから取得し、
// 役割がcommitteeかどうかを返す。取得に失敗した場合は
// 「参加していない」ものとして扱い、認可エラーには変換しない。
func (s *Server) isCommittee(c *gin.Context, identity session.Identity, eventID string) bool {
	query := url.Values{}
	query.Set("event_id", eventID)

	res, err := s.upstream.Call(c.Request.Context(), upstream.Operation{
		Method:       http.MethodGet,
		Path:         "/api/protected/event-participate-info-of",
		Query:        query,
		RequiresAuth: true,
	}, identity)
	if err != nil || !res.OK() {
		return false
	}

	var record participantRecord
	if err := json.Unmarshal(res.Body, &record); err != nil || !record.Success {
		return false
	}
	return record.Data.EventPRole == "committee"
}
