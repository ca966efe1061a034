// Package htmx holds the request conventions shared by the handlers and the
// visit tracker.
package htmx

import (
	"net/http"
	"strings"
)

// RequestHeader is set by htmx on every request it issues.
const RequestHeader = "HX-Request"

// IsRequest reports whether r was issued by htmx and expects a fragment.
func IsRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.EqualFold(r.Header.Get(RequestHeader), "true")
}
