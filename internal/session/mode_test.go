package session

import (
	"strings"
	"testing"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		flag     bool
		wantMode Mode
		wantURL  string
	}{
		{
			name:     "session mode with id",
			raw:      "https://app.example/library?mode=session&sess=abc",
			wantMode: Mode{Session: true, ID: "abc"},
			wantURL:  "https://app.example/library?mode=session&sess=abc",
		},
		{
			name:     "free mode is stripped",
			raw:      "https://app.example/library?mode=free&x=1",
			wantMode: Mode{},
			wantURL:  "https://app.example/library?x=1",
		},
		{
			name:     "document flag enables session",
			raw:      "https://app.example/library?sess=xyz",
			flag:     true,
			wantMode: Mode{Session: true, ID: "xyz"},
			wantURL:  "https://app.example/library?sess=xyz",
		},
		{
			name:     "session without id is inactive",
			raw:      "https://app.example/library?mode=session",
			wantMode: Mode{Session: true},
			wantURL:  "https://app.example/library?mode=session",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, loc, err := ParseLocation(tt.raw, tt.flag)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mode != tt.wantMode {
				t.Errorf("expected mode %+v, got %+v", tt.wantMode, mode)
			}
			if loc != tt.wantURL {
				t.Errorf("expected url %q, got %q", tt.wantURL, loc)
			}
		})
	}
}

func TestModeActive(t *testing.T) {
	if (Mode{Session: true}).Active() {
		t.Error("expected mode without id to be inactive")
	}
	if (Mode{ID: "x"}).Active() {
		t.Error("expected free mode to be inactive")
	}
	if !active.Active() {
		t.Error("expected session mode with id to be active")
	}
}

func TestModeURL(t *testing.T) {
	if got := (Mode{}).URL("/profile"); got != "/profile" {
		t.Errorf("expected free mode to keep path, got %q", got)
	}
	got := active.URL("/profile")
	if !strings.HasPrefix(got, "/profile?") || !strings.Contains(got, "mode=session") || !strings.Contains(got, "sess=s1") {
		t.Errorf("expected session params on url, got %q", got)
	}
}

func TestPathEscapesID(t *testing.T) {
	if got := Path("a/b"); got != "/v1/sessions/a%2Fb" {
		t.Errorf("unexpected path %q", got)
	}
}
