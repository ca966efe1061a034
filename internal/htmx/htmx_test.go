package htmx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRequest(t *testing.T) {
	assert.False(t, IsRequest(nil))

	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "missing", value: "", want: false},
		{name: "lower case", value: "true", want: true},
		{name: "mixed case", value: "True", want: true},
		{name: "other value", value: "1", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.value != "" {
				r.Header.Set(RequestHeader, tt.value)
			}
			assert.Equal(t, tt.want, IsRequest(r))
		})
	}
}
