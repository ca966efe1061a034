// Package content loads the static copy of the site: hero, about, projects,
// services, contact details and footer links.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/prafullx/webstudio/internal/catalog"
)

//go:embed content.yaml
var defaultYAML []byte

type Hero struct {
	Greeting       string   `yaml:"greeting"`
	Roles          []string `yaml:"roles"`
	Intro          string   `yaml:"intro"`
	FloatingSkills []string `yaml:"floating_skills"`
	FunFacts       []string `yaml:"fun_facts"`
}

type Skill struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
}

type Milestone struct {
	Year        string `yaml:"year"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type About struct {
	Bio      []string    `yaml:"bio"`
	Skills   []Skill     `yaml:"skills"`
	Timeline []Milestone `yaml:"timeline"`
}

// Service is one card of the services panel.
type Service struct {
	ID       int      `yaml:"id"`
	Title    string   `yaml:"title"`
	Short    string   `yaml:"short"`
	Full     string   `yaml:"full"`
	Features []string `yaml:"features"`
}

// Link is a labelled external reference. Href may be empty.
type Link struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
	Href  string `yaml:"href"`
}

type Contact struct {
	Intro      string   `yaml:"intro"`
	Info       []Link   `yaml:"info"`
	EasterEggs []string `yaml:"easter_eggs"`
}

// Site is the whole content document.
type Site struct {
	Brand    string            `yaml:"brand"`
	Hero     Hero              `yaml:"hero"`
	About    About             `yaml:"about"`
	Projects []catalog.Project `yaml:"projects"`
	Services []Service         `yaml:"services"`
	Contact  Contact           `yaml:"contact"`
	Socials  []Link            `yaml:"socials"`

	catalog *catalog.Catalog
}

// Catalog returns the project catalog built from Projects.
func (s *Site) Catalog() *catalog.Catalog { return s.catalog }

// Service finds a service card by id.
func (s *Site) Service(id int) (Service, bool) {
	for _, svc := range s.Services {
		if svc.ID == id {
			return svc, true
		}
	}
	return Service{}, false
}

// Default returns the embedded site content.
func Default() (*Site, error) {
	return Parse(defaultYAML)
}

// Load reads content from path, or the embedded default when path is empty.
func Load(path string) (*Site, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML content document.
func Parse(data []byte) (*Site, error) {
	s := &Site{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("content: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	c, err := catalog.New(s.Projects)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	s.catalog = c
	return s, nil
}

// Validate checks the parts of the document the catalog does not.
func (s *Site) Validate() error {
	var errs []error
	for _, sk := range s.About.Skills {
		if sk.Level < 0 || sk.Level > 100 {
			errs = append(errs, fmt.Errorf("skill %q: level %d outside 0..100", sk.Name, sk.Level))
		}
	}
	seen := make(map[int]bool, len(s.Services))
	for _, svc := range s.Services {
		if seen[svc.ID] {
			errs = append(errs, fmt.Errorf("service id %d repeated", svc.ID))
		}
		seen[svc.ID] = true
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	return nil
}
