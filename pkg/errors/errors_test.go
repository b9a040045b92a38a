package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestConstructorStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code string
		http int
	}{
		{"not found", NotFound("Booking"), CodeNotFound, http.StatusNotFound},
		{"invalid state", InvalidState("already cancelled"), CodeInvalidState, http.StatusConflict},
		{"invalid range", InvalidRange("start after end"), CodeInvalidRange, http.StatusBadRequest},
		{"past time", PastTime("in the past"), CodePastTime, http.StatusBadRequest},
		{"conflict", Conflict("slot taken"), CodeConflict, http.StatusConflict},
		{"validation", Validation("bad payload", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("too slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("database"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.StatusCode() != tt.http {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.http)
			}
		})
	}
}

func TestNotFoundWithID_Details(t *testing.T) {
	err := NotFoundWithID("Booking", "abc123")
	if err.Details["id"] != "abc123" || err.Details["resource"] != "Booking" {
		t.Errorf("unexpected details: %+v", err.Details)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("database failed", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable through errors.Is")
	}
}

func TestAsAppError_PassThrough(t *testing.T) {
	original := Conflict("slot taken")
	got := AsAppError(original)
	if got != original {
		t.Error("AsAppError must return the same *AppError")
	}
}

func TestAsAppError_WrapsUnknown(t *testing.T) {
	got := AsAppError(errors.New("boom"))
	if got.Code != CodeInternal {
		t.Errorf("unknown errors must map to %s, got %s", CodeInternal, got.Code)
	}
}

func TestIsAppError(t *testing.T) {
	if !IsAppError(NotFound("Room")) {
		t.Error("expected true for *AppError")
	}
	if IsAppError(errors.New("plain")) {
		t.Error("expected false for plain error")
	}
}
