package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prafullx/webstudio/internal/clock"
	"github.com/prafullx/webstudio/internal/contact"
	"github.com/prafullx/webstudio/internal/content"
	"github.com/prafullx/webstudio/internal/shell"
)

func newStore(t *testing.T) (*Store, *clock.Fake) {
	t.Helper()
	return newStoreWith(t, Options{TTL: time.Minute})
}

func newStoreWith(t *testing.T, opts Options) (*Store, *clock.Fake) {
	t.Helper()
	site, err := content.Default()
	require.NoError(t, err)
	clk := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	opts.Clock = clk
	s := NewStore(func() *shell.Page {
		return shell.NewPage(site, shell.Options{Clock: clk})
	}, opts)
	t.Cleanup(s.Close)
	return s, clk
}

func TestCreateAndGet(t *testing.T) {
	s, _ := newStore(t)
	id, p := s.Create()
	require.NotEmpty(t, id)

	got, ok := s.Get(id)
	require.True(t, ok)
	assert.Same(t, p, got)

	_, ok = s.Get("unknown")
	assert.False(t, ok)

	other, _ := s.Create()
	assert.NotEqual(t, id, other)
	assert.Equal(t, 2, s.Len())
}

func TestSweepEvictsIdlePages(t *testing.T) {
	s, clk := newStore(t)
	idle, idlePage := s.Create()
	active, _ := s.Create()

	clk.Advance(30 * time.Second)
	_, ok := s.Get(active)
	require.True(t, ok)

	clk.Advance(45 * time.Second)
	assert.Equal(t, 1, s.Sweep())

	_, ok = s.Get(idle)
	assert.False(t, ok)
	_, ok = s.Get(active)
	assert.True(t, ok)

	assert.ErrorIs(t, idlePage.Contact.Set(contact.FieldName, "late"), contact.ErrClosed)
}

func TestEvictionTearsDownTimers(t *testing.T) {
	s, clk := newStore(t)
	_, p := s.Create()
	assert.Equal(t, 1, clk.Pending(), "loading gate")

	clk.Advance(2 * time.Minute)
	assert.False(t, p.Loading())

	require.NoError(t, p.Contact.Update(contact.Form{Name: "Ann", Email: "a@b.co", Subject: "Hi", Message: "Hello"}))
	require.NoError(t, p.Contact.Submit())
	assert.Equal(t, 1, clk.Pending())

	assert.Equal(t, 1, s.Sweep())
	assert.Zero(t, s.Len())
	assert.Zero(t, clk.Pending())

	clk.Advance(time.Minute)
	assert.Equal(t, contact.Submitting, p.Contact.Phase())
}

func TestCreateAtCapacityEvictsLeastRecent(t *testing.T) {
	s, clk := newStoreWith(t, Options{TTL: time.Hour, MaxSessions: 2})
	first, firstPage := s.Create()
	clk.Advance(time.Second)
	second, _ := s.Create()
	clk.Advance(time.Second)
	_, ok := s.Get(first)
	require.True(t, ok)

	clk.Advance(time.Second)
	third, _ := s.Create()
	assert.Equal(t, 2, s.Len())

	_, ok = s.Get(second)
	assert.False(t, ok, "least recently seen page is evicted")
	_, ok = s.Get(first)
	assert.True(t, ok)
	_, ok = s.Get(third)
	assert.True(t, ok)

	for range 10 {
		s.Create()
	}
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 2, clk.Pending(), "evicted pages stop their loading gates")
	assert.ErrorIs(t, firstPage.Contact.Set(contact.FieldName, "x"), contact.ErrClosed)
}

func TestRunClosesOnCancel(t *testing.T) {
	s, _ := newStore(t)
	s.Create()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	assert.Zero(t, s.Len())
}
