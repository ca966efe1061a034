package visits

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prafullx/webstudio/internal/clock"
)

var now = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	record := func(ip, path string, at time.Time) {
		require.NoError(t, s.Record(ctx, Visit{HashedIP: ip, Path: path, At: at}))
	}
	record("aaa", "/", now)
	record("aaa", "/", now.Add(-time.Hour))
	record("bbb", "/privacy", now.Add(-48*time.Hour))
	record("ccc", "/", now.Add(-30*24*time.Hour))

	stats, err := s.Stats(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalVisits)
	assert.EqualValues(t, 3, stats.UniqueVisitors)
	assert.EqualValues(t, 2, stats.VisitsToday)
	assert.EqualValues(t, 3, stats.VisitsThisWeek)
	require.Len(t, stats.TopPaths, 2)
	assert.Equal(t, PathCount{Path: "/", Views: 3}, stats.TopPaths[0])
}

func TestStatsEmpty(t *testing.T) {
	stats, err := openStore(t).Stats(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalVisits)
	assert.NotNil(t, stats.TopPaths)
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	require.NoError(t, s.Record(ctx, Visit{HashedIP: "a", Path: "/", At: now.AddDate(-2, 0, 0)}))
	require.NoError(t, s.Record(ctx, Visit{HashedIP: "b", Path: "/", At: now}))

	n, err := s.Cleanup(ctx, now.AddDate(-1, 0, 0))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	stats, err := s.Stats(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalVisits)
}

func TestHashIP(t *testing.T) {
	tr := NewTracker(nil, "salt", nil, nil)
	h := tr.HashIP("203.0.113.7")
	assert.Len(t, h, 16)
	assert.Equal(t, h, tr.HashIP("203.0.113.7"))
	assert.NotEqual(t, h, tr.HashIP("203.0.113.8"))
	assert.NotEqual(t, h, NewTracker(nil, "other", nil, nil).HashIP("203.0.113.7"))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := openStore(t)
	tr := NewTracker(s, "salt", clock.NewFake(now), nil)

	r := gin.New()
	r.Use(tr.Middleware())
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/", ok)
	r.GET("/static/app.css", ok)
	r.POST("/contact", ok)

	do := func(method, path string, headers map[string]string) {
		req := httptest.NewRequest(method, path, nil)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	do(http.MethodGet, "/", nil)
	do(http.MethodGet, "/", map[string]string{"DNT": "1"})
	do(http.MethodGet, "/", map[string]string{"HX-Request": "true"})
	do(http.MethodGet, "/", map[string]string{"HX-Request": "True"})
	do(http.MethodGet, "/static/app.css", nil)
	do(http.MethodPost, "/contact", nil)
	tr.Wait()

	stats, err := s.Stats(context.Background(), now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalVisits)

	tr.Purge(context.Background(), time.Nanosecond)
	stats, err = s.Stats(context.Background(), now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalVisits, "visit at now is not older than retention")
}
