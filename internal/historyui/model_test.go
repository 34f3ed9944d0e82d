package historyui

import (
	"testing"

	"github.com/verte-zerg/keydrill/internal/model"
)

func TestBuildKeyTableOrdersSlowestFirst(t *testing.T) {
	keys := []model.KeyStat{
		{Char: "a", Attempts: 5, Errors: 0, LatencySumMs: 500, LatencyCount: 5},  // 100ms
		{Char: "q", Attempts: 4, Errors: 2, LatencySumMs: 1600, LatencyCount: 4}, // 400ms
		{Char: "\n", Attempts: 1, Errors: 0, LatencySumMs: 0, LatencyCount: 0},   // untimed
	}
	tbl := buildKeyTable(keys, 80, 10)
	rows := tbl.Rows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "q" || rows[0][1] != "400" {
		t.Fatalf("expected slowest key first, got %v", rows[0])
	}
	if rows[1][0] != "a" {
		t.Fatalf("expected a second, got %v", rows[1])
	}
	// Untimed keys sink to the bottom with a latency placeholder.
	if rows[2][0] != "↵" || rows[2][1] != "-" {
		t.Fatalf("unexpected untimed row: %v", rows[2])
	}
	if rows[0][2] != "50.0%" {
		t.Fatalf("unexpected accuracy column: %v", rows[0])
	}
}

func TestKeyLabelWhitespace(t *testing.T) {
	cases := map[string]string{" ": "␣", "\n": "↵", "\t": "⇥", "k": "k"}
	for in, want := range cases {
		if got := keyLabel(in); got != want {
			t.Fatalf("keyLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
