// Package catalog holds the fixed, ordered list of portfolio projects and the
// category filter applied to it.
package catalog

import (
	"errors"
	"fmt"
	"slices"
)

// All is the category selection that matches every project.
const All = "All"

// VideoEditing is the category whose primary link points at a showreel
// rather than a live site.
const VideoEditing = "Video Editing"

var (
	ErrDuplicateID   = errors.New("catalog: duplicate project id")
	ErrEmptyCategory = errors.New("catalog: project has no category")
)

// Project is one immutable gallery entry.
type Project struct {
	ID          int      `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Category    string   `yaml:"category" json:"category"`
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tags" json:"tags"`
	// Image is an opaque asset reference resolved by the page.
	Image string `yaml:"image" json:"image"`
	// LiveURL and SourceURL are optional; empty means absent.
	LiveURL   string `yaml:"live_url" json:"live_url,omitempty"`
	SourceURL string `yaml:"source_url" json:"source_url,omitempty"`
}

// HasLive reports whether the project links to a live build or showreel.
func (p Project) HasLive() bool { return p.LiveURL != "" }

// HasSource reports whether the project links to its source.
func (p Project) HasSource() bool { return p.SourceURL != "" }

// LinkLabel is the caption for the primary link.
func (p Project) LinkLabel() string {
	if p.Category == VideoEditing {
		return "View Portfolio"
	}
	return "View Live"
}

// Catalog is an immutable ordered set of projects.
type Catalog struct {
	projects   []Project
	byID       map[int]int
	categories []string
}

// New validates projects and returns a catalog that preserves their order.
func New(projects []Project) (*Catalog, error) {
	c := &Catalog{
		projects:   make([]Project, 0, len(projects)),
		byID:       make(map[int]int, len(projects)),
		categories: []string{All},
	}
	for _, p := range projects {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, p.ID)
		}
		if p.Category == "" {
			return nil, fmt.Errorf("%w: %d", ErrEmptyCategory, p.ID)
		}
		p.Tags = slices.Clone(p.Tags)
		c.byID[p.ID] = len(c.projects)
		c.projects = append(c.projects, p)
		if !slices.Contains(c.categories, p.Category) {
			c.categories = append(c.categories, p.Category)
		}
	}
	return c, nil
}

// Projects returns the catalog in its original order.
func (c *Catalog) Projects() []Project {
	return slices.Clone(c.projects)
}

// Len returns the number of projects.
func (c *Catalog) Len() int { return len(c.projects) }

// Categories returns All followed by each distinct category in order of first
// appearance.
func (c *Catalog) Categories() []string {
	return slices.Clone(c.categories)
}

// HasCategory reports whether category is part of the closed set.
func (c *Catalog) HasCategory(category string) bool {
	return slices.Contains(c.categories, category)
}

// Lookup finds a project by id. A miss is not an error.
func (c *Catalog) Lookup(id int) (Project, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Project{}, false
	}
	return c.projects[i], true
}

// Filter returns the projects whose category equals category, in their
// original order. All returns projects unchanged; an unknown category yields
// an empty result.
func Filter(projects []Project, category string) []Project {
	if category == All {
		return projects
	}
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
