package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{NotFound("Session"), http.StatusNotFound},
		{AccessDenied(), http.StatusForbidden},
		{Conflict("duplicate"), http.StatusConflict},
		{errors.New("db connection lost"), http.StatusInternalServerError},
		{nil, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := Status(tt.err); got != tt.want {
			t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestKindOfWrapped(t *testing.T) {
	wrapped := fmt.Errorf("marking failed: %w", NotFound("Student"))
	if KindOf(wrapped) != KindNotFound {
		t.Errorf("KindOf(wrapped) = %v, want KindNotFound", KindOf(wrapped))
	}
	if Status(wrapped) != http.StatusNotFound {
		t.Errorf("Status(wrapped) = %d, want 404", Status(wrapped))
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("Class")
	if err.Error() != "Class not found" {
		t.Errorf("message = %q", err.Error())
	}
}
