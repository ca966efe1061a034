// Package gallery owns the per-visitor gallery state: the selected category,
// the project open in the detail overlay, and the expanded service card.
//
// Each type is mutated only through its own methods. HTTP handlers for one
// visitor can overlap, so every type guards its value with a mutex.
package gallery

import (
	"sync"

	"github.com/prafullx/webstudio/internal/catalog"
)

// CategoryFilter owns the category selection for one visitor.
type CategoryFilter struct {
	catalog *catalog.Catalog

	mu       sync.Mutex
	selected string
}

// NewCategoryFilter starts with every project visible.
func NewCategoryFilter(c *catalog.Catalog) *CategoryFilter {
	return &CategoryFilter{catalog: c, selected: catalog.All}
}

// Select replaces the current category. Unknown categories are accepted and
// simply show nothing.
func (f *CategoryFilter) Select(category string) {
	f.mu.Lock()
	f.selected = category
	f.mu.Unlock()
}

// Selected returns the current category.
func (f *CategoryFilter) Selected() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected
}

// Visible returns the catalog filtered by the current category.
func (f *CategoryFilter) Visible() []catalog.Project {
	return catalog.Filter(f.catalog.Projects(), f.Selected())
}

// Categories lists the filter buttons, All first.
func (f *CategoryFilter) Categories() []string {
	return f.catalog.Categories()
}

// Selection tracks the single project open for detail viewing.
type Selection struct {
	catalog *catalog.Catalog

	mu  sync.Mutex
	id  int
	set bool
}

// NewSelection starts with nothing open.
func NewSelection(c *catalog.Catalog) *Selection {
	return &Selection{catalog: c}
}

// Select opens id. The last call wins; the id need not exist.
func (s *Selection) Select(id int) {
	s.mu.Lock()
	s.id, s.set = id, true
	s.mu.Unlock()
}

// Dismiss closes the overlay.
func (s *Selection) Dismiss() {
	s.mu.Lock()
	s.id, s.set = 0, false
	s.mu.Unlock()
}

// ID returns the selected id, if any.
func (s *Selection) ID() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.set
}

// Detail resolves the selection against the catalog. An id missing from the
// catalog means there is nothing to show.
func (s *Selection) Detail() (catalog.Project, bool) {
	id, ok := s.ID()
	if !ok {
		return catalog.Project{}, false
	}
	return s.catalog.Lookup(id)
}

// Open reports whether the detail overlay should be shown.
func (s *Selection) Open() bool {
	_, ok := s.Detail()
	return ok
}

// Panel tracks which service card is expanded. At most one is.
type Panel struct {
	mu       sync.Mutex
	expanded int
	set      bool
}

// NewPanel starts with every card collapsed.
func NewPanel() *Panel { return &Panel{} }

// Toggle expands id, or collapses it when it is already the expanded card.
func (p *Panel) Toggle(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.set && p.expanded == id {
		p.expanded, p.set = 0, false
		return
	}
	p.expanded, p.set = id, true
}

// Expanded returns the expanded card id, if any.
func (p *Panel) Expanded() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.expanded, p.set
}

// IsExpanded reports whether id is the expanded card.
func (p *Panel) IsExpanded(id int) bool {
	got, ok := p.Expanded()
	return ok && got == id
}
