package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/keydrill/internal/model"
)

func TestRenderStatusFormats(t *testing.T) {
	snap := model.SessionSnapshot{
		Remaining: 17 * time.Second,
		WPM:       72.4,
		Accuracy:  0.978,
	}
	out := renderStatus(snap)
	if out == "" {
		t.Fatalf("expected status output")
	}
	if !containsAll(out, []string{"17s left", "72.4 WPM", "97.8%"}) {
		t.Fatalf("status missing expected segments: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
