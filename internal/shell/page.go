// Package shell composes one visitor's page: the gallery filter and
// selection, the services panel, the contact form and the start-up loading
// gate.
package shell

import (
	"log/slog"
	"sync"
	"time"

	"github.com/prafullx/webstudio/internal/clock"
	"github.com/prafullx/webstudio/internal/contact"
	"github.com/prafullx/webstudio/internal/content"
	"github.com/prafullx/webstudio/internal/gallery"
)

const DefaultLoadDelay = 2 * time.Second

// Options configures a Page.
type Options struct {
	LoadDelay time.Duration
	Contact   contact.Options
	Sender    contact.Sender
	Clock     clock.Clock
	Logger    *slog.Logger
}

// Page is the state behind one rendered page. Each component is owned by the
// page and mutated only through its own methods.
type Page struct {
	Site     *content.Site
	Filter   *gallery.CategoryFilter
	Selected *gallery.Selection
	Services *gallery.Panel
	Contact  *contact.Machine

	mu      sync.Mutex
	loading bool
	gate    clock.Timer
	closed  bool
}

// NewPage builds a page and starts its loading gate.
func NewPage(site *content.Site, opts Options) *Page {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.LoadDelay <= 0 {
		opts.LoadDelay = DefaultLoadDelay
	}
	if opts.Contact.Logger == nil {
		opts.Contact.Logger = opts.Logger
	}
	c := site.Catalog()
	p := &Page{
		Site:     site,
		Filter:   gallery.NewCategoryFilter(c),
		Selected: gallery.NewSelection(c),
		Services: gallery.NewPanel(),
		Contact:  contact.New(opts.Sender, opts.Clock, opts.Contact),
		loading:  true,
	}
	p.mu.Lock()
	p.gate = opts.Clock.AfterFunc(opts.LoadDelay, p.finishLoading)
	p.mu.Unlock()
	return p
}

func (p *Page) finishLoading() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.loading = false
	p.gate = nil
}

// Loading reports whether the loading gate is still up.
func (p *Page) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Close tears the page down and suppresses every pending timer.
func (p *Page) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.gate != nil {
		p.gate.Stop()
		p.gate = nil
	}
	p.mu.Unlock()
	p.Contact.Close()
}
