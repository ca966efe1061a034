// Package web serves the portfolio page and the HTMX fragments that drive its
// gallery, services panel and contact form.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prafullx/webstudio/internal/clock"
	"github.com/prafullx/webstudio/internal/content"
	"github.com/prafullx/webstudio/internal/session"
	"github.com/prafullx/webstudio/internal/visits"
)

//go:embed templates/*.html
var templateFS embed.FS

// StatsSource reports visit aggregates for the stats endpoint.
type StatsSource interface {
	Stats(ctx context.Context, now time.Time) (*visits.Stats, error)
}

// Options wires a Server.
type Options struct {
	Site     *content.Site
	Sessions *session.Store
	// Tracker and Stats are optional.
	Tracker      *visits.Tracker
	Stats        StatsSource
	StaticDir    string
	MaxFormBytes int64
	Clock        clock.Clock
	Logger       *slog.Logger
}

// Server is the gin engine plus the state it serves.
type Server struct {
	engine   *gin.Engine
	site     *content.Site
	sessions *session.Store
	stats    StatsSource
	clock    clock.Clock
	log      *slog.Logger
	pick     func(n int) int
}

// New builds the engine, parses the templates and registers every route.
func New(opts Options) (*Server, error) {
	if opts.Site == nil || opts.Sessions == nil {
		return nil, fmt.Errorf("web: site and sessions are required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxFormBytes <= 0 {
		opts.MaxFormBytes = 64 * 1024
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}

	s := &Server{
		engine:   gin.Default(),
		site:     opts.Site,
		sessions: opts.Sessions,
		stats:    opts.Stats,
		clock:    opts.Clock,
		log:      opts.Logger,
		pick:     rand.IntN,
	}
	s.engine.SetHTMLTemplate(tmpl)
	s.engine.Use(securityHeaders(), maxFormBody(opts.MaxFormBytes))
	if opts.Tracker != nil {
		s.engine.Use(opts.Tracker.Middleware())
	}
	if opts.StaticDir != "" {
		s.engine.Static("/static", opts.StaticDir)
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() {
	r := s.engine

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.stats != nil {
		r.GET("/api/stats", s.handleStats)
	}

	page := r.Group("/", s.withPage())
	page.GET("/", s.handleIndex)
	page.GET("/loading", s.handleLoading)

	page.GET("/portfolio", s.handleGallery)
	page.POST("/portfolio/projects/:id", s.handleOpenProject)
	page.DELETE("/portfolio/projects/selected", s.handleDismissProject)

	page.POST("/services/:id/toggle", s.handleToggleService)

	page.GET("/contact", s.handleContactForm)
	page.POST("/contact", s.handleContactSubmit)
	page.POST("/contact/fields", s.handleContactFields)

	page.GET("/easter-egg", s.handleEasterEgg)
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	// trustedURL marks links from the site content file, which may use
	// schemes such as tel: that the escaper would otherwise reject.
	"trustedURL": func(s string) template.URL { return template.URL(s) },
	"first": func(n int, s []string) []string {
		if len(s) > n {
			return s[:n]
		}
		return s
	},
}
