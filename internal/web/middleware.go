package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prafullx/webstudio/internal/htmx"
	"github.com/prafullx/webstudio/internal/session"
	"github.com/prafullx/webstudio/internal/shell"
)

const pageKey = "page"

// securityHeaders sets the headers every response carries. Scripts come from
// the page itself and the htmx CDN.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		h.Set("Content-Security-Policy",
			"default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; frame-ancestors 'none'")
		c.Next()
	}
}

// maxFormBody caps form-encoded request bodies.
func maxFormBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.GetHeader("Content-Type"), "application/x-www-form-urlencoded") {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// withPage resolves the visitor's page from the session cookie, starting a new
// session when the cookie is missing or stale.
func (s *Server) withPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		var page *shell.Page
		if id, err := c.Cookie(session.CookieName); err == nil {
			page, _ = s.sessions.Get(id)
		}
		if page == nil {
			var id string
			id, page = s.sessions.Create()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(session.CookieName, id, 0, "/", "", c.Request.TLS != nil, true)
		}
		c.Set(pageKey, page)
		c.Next()
	}
}

func pageFrom(c *gin.Context) *shell.Page {
	return c.MustGet(pageKey).(*shell.Page)
}

// isHTMX reports whether the request came from htmx and expects a fragment.
func isHTMX(c *gin.Context) bool {
	return htmx.IsRequest(c.Request)
}
