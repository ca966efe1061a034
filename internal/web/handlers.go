package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prafullx/webstudio/internal/contact"
)

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", s.view(pageFrom(c)))
}

func (s *Server) handleLoading(c *gin.Context) {
	c.HTML(http.StatusOK, "loading", s.view(pageFrom(c)))
}

// respond renders fragment for htmx requests. Plain form posts are redirected
// back to the section anchor so the page works without JavaScript.
func (s *Server) respond(c *gin.Context, fragment, anchor string) {
	if !isHTMX(c) {
		c.Redirect(http.StatusSeeOther, "/#"+anchor)
		return
	}
	c.HTML(http.StatusOK, fragment, s.view(pageFrom(c)))
}

func (s *Server) handleGallery(c *gin.Context) {
	if category, ok := c.GetQuery("category"); ok {
		pageFrom(c).Filter.Select(category)
	}
	s.respond(c, "gallery", "portfolio")
}

func (s *Server) handleOpenProject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid project id")
		return
	}
	pageFrom(c).Selected.Select(id)
	s.respond(c, "modal", "portfolio")
}

func (s *Server) handleDismissProject(c *gin.Context) {
	pageFrom(c).Selected.Dismiss()
	s.respond(c, "modal", "portfolio")
}

func (s *Server) handleToggleService(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid service id")
		return
	}
	if _, ok := s.site.Service(id); !ok {
		c.String(http.StatusNotFound, "unknown service")
		return
	}
	pageFrom(c).Services.Toggle(id)
	s.respond(c, "services", "services")
}

func (s *Server) handleContactForm(c *gin.Context) {
	c.HTML(http.StatusOK, "contact-form", s.view(pageFrom(c)))
}

// handleContactFields mirrors keystrokes into the form state.
func (s *Server) handleContactFields(c *gin.Context) {
	var form contact.Form
	if err := c.ShouldBind(&form); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if err := pageFrom(c).Contact.Update(form); err != nil && !errors.Is(err, contact.ErrInFlight) {
		s.log.Warn("contact field update", "error", err)
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleContactSubmit(c *gin.Context) {
	var form contact.Form
	if err := c.ShouldBind(&form); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	m := pageFrom(c).Contact
	err := m.Update(form)
	if err == nil {
		err = m.Submit()
	}
	var verr *contact.ValidationError
	switch {
	case err == nil, errors.As(err, &verr), errors.Is(err, contact.ErrInFlight):
	default:
		s.log.Error("contact submit", "error", err)
	}
	s.respond(c, "contact-form", "contact")
}

func (s *Server) handleEasterEgg(c *gin.Context) {
	v := s.view(pageFrom(c))
	if eggs := s.site.Contact.EasterEggs; len(eggs) > 0 {
		v.EasterEgg = eggs[s.pick(len(eggs))]
	}
	c.HTML(http.StatusOK, "easter-egg", v)
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.stats.Stats(c.Request.Context(), s.clock.Now())
	if err != nil {
		s.log.Error("loading visit stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
