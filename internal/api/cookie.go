package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// authCookieName 会话 Cookie 名。Token 只经 Cookie 传输，不进响应体。
const authCookieName = "auth_token"

// baseAuthCookie 构造签发与清除共用的 Cookie 骨架。
// 两条路径必须使用完全相同的 path 与标志，否则浏览器不会删除 Cookie。
func (h *HTTPHandler) baseAuthCookie() *http.Cookie {
	return &http.Cookie{
		Name:     authCookieName,
		Path:     "/",
		Domain:   h.cfg.CookieDomain,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: parseSameSite(h.cfg.CookieSameSite),
	}
}

// setAuthCookie 签发会话 Cookie，有效期对齐 Token 过期时间。
func (h *HTTPHandler) setAuthCookie(c *gin.Context, token string, expiresAt time.Time) {
	cookie := h.baseAuthCookie()
	cookie.Value = token
	cookie.MaxAge = int(time.Until(expiresAt).Seconds())
	http.SetCookie(c.Writer, cookie)
}

// clearAuthCookie 清除会话 Cookie。
func (h *HTTPHandler) clearAuthCookie(c *gin.Context) {
	cookie := h.baseAuthCookie()
	cookie.Value = ""
	cookie.MaxAge = -1
	http.SetCookie(c.Writer, cookie)
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteNoneMode
	}
}
