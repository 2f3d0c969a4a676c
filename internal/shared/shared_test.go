package shared

import (
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestNewID(t *testing.T) {
	id := NewID("rule_")
	if !strings.HasPrefix(id, "rule_") {
		t.Errorf("id = %q, want a rule_ prefix", id)
	}
	if len(id) != len("rule_")+32 {
		t.Errorf("len(id) = %d, want prefix plus 32 hex chars", len(id))
	}

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewID("x_")
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestAPIErrorHelpers(t *testing.T) {
	tests := []struct {
		name string
		err  *echo.HTTPError
		want int
	}{
		{"bad request", BadRequest("invalid_request", "bad body"), http.StatusBadRequest},
		{"not found", NotFound("rule_not_found", "no such rule"), http.StatusNotFound},
		{"conflict", Conflict("stream_active", "already streaming"), http.StatusConflict},
		{"service unavailable", ServiceUnavailable("queue_full", "try later"), http.StatusServiceUnavailable},
		{"internal", InternalError("create_failed", "oops"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.want {
				t.Errorf("Code = %d, want %d", tt.err.Code, tt.want)
			}
			apiErr, ok := tt.err.Message.(*APIError)
			if !ok {
				t.Fatalf("Message has type %T, want *APIError", tt.err.Message)
			}
			if apiErr.Code == "" || apiErr.Message == "" {
				t.Errorf("APIError = %+v, want code and message set", apiErr)
			}
		})
	}
}

func TestAPIErrorDetails(t *testing.T) {
	apiErr := NewAPIError("invalid_request", "bad field").WithDetails(map[string]string{"field": "fps"})
	if apiErr.Details == nil {
		t.Error("Details not attached")
	}
}
