package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Boardroom  ", "Boardroom"},
		{"Huddle   A", "Huddle A"},
		{"multi\t\twhitespace\n run", "multi whitespace run"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := TrimAndNormalize(tt.in); got != tt.want {
			t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePurpose_StripsControlChars(t *testing.T) {
	got := NormalizePurpose("Sprint\x00 planning\x1b session")
	if got != "Sprint planning session" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Errorf("got %q", got)
	}
}
