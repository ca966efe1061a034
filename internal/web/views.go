package web

import (
	"github.com/prafullx/webstudio/internal/catalog"
	"github.com/prafullx/webstudio/internal/contact"
	"github.com/prafullx/webstudio/internal/content"
	"github.com/prafullx/webstudio/internal/shell"
)

type serviceView struct {
	content.Service
	Expanded bool
}

type contactView struct {
	Form       contact.Form
	Phase      string
	Busy       bool
	Submitting bool
	Submitted  bool
	Failed     bool
	Errors     map[string]string
	Failure    string
}

// pageView is everything a template needs. Fragments receive the same value
// as the full page.
type pageView struct {
	Site       *content.Site
	Loading    bool
	Categories []string
	Category   string
	Projects   []catalog.Project
	Detail     *catalog.Project
	Services   []serviceView
	Contact    contactView
	EasterEgg  string
	Year       int
}

func (s *Server) view(p *shell.Page) pageView {
	v := pageView{
		Site:       s.site,
		Loading:    p.Loading(),
		Categories: p.Filter.Categories(),
		Category:   p.Filter.Selected(),
		Projects:   p.Filter.Visible(),
		Contact:    newContactView(p.Contact.Snapshot()),
		Year:       s.clock.Now().Year(),
	}
	if d, ok := p.Selected.Detail(); ok {
		v.Detail = &d
	}
	for _, svc := range s.site.Services {
		v.Services = append(v.Services, serviceView{Service: svc, Expanded: p.Services.IsExpanded(svc.ID)})
	}
	return v
}

func newContactView(snap contact.Snapshot) contactView {
	cv := contactView{
		Form:       snap.Form,
		Phase:      snap.Phase.String(),
		Busy:       snap.Busy(),
		Submitting: snap.Phase == contact.Submitting,
		Submitted:  snap.Phase == contact.Submitted,
		Failed:     snap.Phase == contact.Failed,
		Errors:     make(map[string]string, len(snap.Errors)),
		Failure:    snap.Failure,
	}
	for f, msg := range snap.Errors {
		cv.Errors[string(f)] = msg
	}
	return cv
}
