package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/webinarhub/pkg/session"
)

// ErrUnauthenticated は認証必須の操作に資格情報が無いことを表す。
// この場合ネットワーク呼び出しは一切行われない。
var ErrUnauthenticated = errors.New("セッションが存在しません")

// Operation は上流APIへの1回の呼び出し内容を表す。
// インバウンドリクエストごとに組み立てられ、保持されることはない。
type Operation struct {
	// Method はHTTPメソッド。
	Method string
	// Path は上流APIのパス（例: "/api/protected/user-info"）。
	Path string
	// Query はクエリパラメータ。値が設定されたものだけが送信され、
	// 未指定の項目は空文字としても送られない。
	Query url.Values
	// Body はJSONリクエストボディ。nilの場合はボディ無し。
	Body []byte
	// Accept はAcceptヘッダー。空の場合は送信しない。
	Accept string
	// RequiresAuth はBearer資格情報を必要とするかどうか。
	RequiresAuth bool
}

// Result は上流APIの応答を正規化した値。トランスポートに依存しない。
type Result struct {
	// StatusCode は上流APIが返したHTTPステータスコード。
	StatusCode int
	// Body は上流APIの応答ボディそのまま。
	Body []byte
	// ContentType は応答のContent-Type。上流が省略した場合はapplication/json。
	ContentType string
}

// OK は2xx応答かどうかを返す。
func (r Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client は上流APIへのHTTPクライアント。タイムアウトの設定を持つ。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は上流APIのベースURL。
	baseURL string
}

// New は新しい上流APIクライアントを生成する。
// timeoutは1回の呼び出しに許す上限時間。リトライは行わない。
// リトライが必要ならそれは呼び出し側の責務になる。
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// Call は上流APIを1回呼び出し、応答を正規化して返す。
//
// op.RequiresAuthが真でidentityが匿名の場合はErrUnauthenticatedを返し、
// ネットワーク呼び出しは行わない。認証済みの場合は生のセッショントークンを
// Bearer資格情報として転送する。トークンの再検証は行わない。検証の権威は上流API側にある。
//
// 上流が非2xxを返してもエラーにはせず、ステータスとボディをそのままResultで返す。
// エラーを返すのは通信自体が失敗した場合（ネットワーク障害・タイムアウト・
// コンテキストのキャンセル）だけ。
func (c *Client) Call(ctx context.Context, op Operation, identity session.Identity) (Result, error) {
	if op.RequiresAuth && identity.Token == "" {
		return Result{}, ErrUnauthenticated
	}

	u := c.baseURL + op.Path
	if len(op.Query) > 0 {
		u += "?" + op.Query.Encode()
	}

	var bodyReader io.Reader
	if op.Body != nil {
		bodyReader = bytes.NewReader(op.Body)
	}

	req, err := http.NewRequestWithContext(ctx, op.Method, u, bodyReader)
	if err != nil {
		return Result{}, fmt.Errorf("上流APIリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if op.Accept != "" {
		req.Header.Set("Accept", op.Accept)
	}
	if op.RequiresAuth {
		req.Header.Set("Authorization", "Bearer "+identity.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("上流APIとの通信に失敗: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("上流API応答の読み取りに失敗: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}

	return Result{
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: contentType,
	}, nil
}

// ErrorMessage は上流APIのエラーボディからユーザー向けメッセージを取り出す。
// ログイン系のエラーはJSONの message フィールドを持ち、
// それ以外はプレーンテキストが返るため、両方の形式を扱う。
func ErrorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return string(body)
}
