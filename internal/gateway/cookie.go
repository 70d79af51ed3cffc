package gateway

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/webinarhub/pkg/session"
)

// sessionCookieMaxAge はセッションクッキーの有効期間。
const sessionCookieMaxAge = 24 * time.Hour

// setSessionCookie は上流APIが発行したセッショントークンをHttpOnlyクッキーとして設定する。
func setSessionCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionCookieMaxAge.Seconds()),
	})
}

// clearSessionCookie はセッションクッキーを無条件に破棄する。
// エポック時刻で失効させる。既にクッキーが無くても結果は変わらない。
func clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
