package http

import (
	"net/http/httptest"
	"testing"
)

func TestExtractSkipLimit(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantSkip  int64
		wantLimit int
		wantErr   bool
	}{
		{"defaults", "/bookings", 0, 10, false},
		{"explicit", "/bookings?skip=20&limit=5", 20, 5, false},
		{"limit clamped to maximum", "/bookings?limit=5000", 0, 100, false},
		{"negative skip clamped", "/bookings?skip=-5", 0, 10, false},
		{"invalid skip", "/bookings?skip=abc", 0, 0, true},
		{"invalid limit", "/bookings?limit=abc", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			skip, limit, err := ExtractSkipLimit(r)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if skip != tt.wantSkip || limit != tt.wantLimit {
				t.Errorf("got skip=%d limit=%d, want skip=%d limit=%d", skip, limit, tt.wantSkip, tt.wantLimit)
			}
		})
	}
}
