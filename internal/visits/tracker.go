package visits

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prafullx/webstudio/internal/clock"
	"github.com/prafullx/webstudio/internal/htmx"
)

// DefaultSkip lists path prefixes that are never tracked.
var DefaultSkip = []string{"/static/", "/images/", "/favicon", "/healthz", "/api/"}

// Tracker records visits in the background from a gin middleware.
type Tracker struct {
	store *Store
	salt  string
	clock clock.Clock
	log   *slog.Logger
	skip  []string

	wg sync.WaitGroup
}

// NewTracker returns a tracker writing to store. An empty salt is replaced by
// a random per-process one, so hashes cannot be correlated across restarts.
func NewTracker(store *Store, salt string, clk clock.Clock, logger *slog.Logger) *Tracker {
	if salt == "" {
		salt = randomSalt()
	}
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{store: store, salt: salt, clock: clk, log: logger, skip: DefaultSkip}
}

func randomSalt() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("visits: read random salt: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// HashIP returns the salted, truncated SHA-256 of ip.
func (t *Tracker) HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + t.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// Middleware records every tracked GET request. Static assets, fragments
// requested by HTMX and visitors sending DNT: 1 are skipped.
func (t *Tracker) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != "GET" || t.skipped(path) ||
			c.GetHeader("DNT") == "1" || htmx.IsRequest(c.Request) {
			c.Next()
			return
		}

		v := Visit{
			HashedIP:  t.HashIP(c.ClientIP()),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      path,
			At:        t.clock.Now(),
		}
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := t.store.Record(ctx, v); err != nil {
				t.log.Error("recording visit", "error", err)
			}
		}()
		c.Next()
	}
}

func (t *Tracker) skipped(path string) bool {
	for _, prefix := range t.skip {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Wait blocks until every background insert has finished.
func (t *Tracker) Wait() { t.wg.Wait() }

// Purge removes visits older than retention.
func (t *Tracker) Purge(ctx context.Context, retention time.Duration) {
	n, err := t.store.Cleanup(ctx, t.clock.Now().Add(-retention))
	if err != nil {
		t.log.Error("purging old visits", "error", err)
		return
	}
	if n > 0 {
		t.log.Info("purged old visits", "count", n)
	}
}
