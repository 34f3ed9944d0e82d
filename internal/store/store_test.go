package store

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/keydrill/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := Open(filepath.Join(dir, "keydrill.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func testRecord(i int) model.HistoryRecord {
	start := time.Unix(0, 0).UTC().Add(time.Duration(i) * time.Minute)
	return model.HistoryRecord{
		StartedAt:         start,
		FinishedAt:        start.Add(30 * time.Second),
		DurationSeconds:   30,
		Elapsed:           30 * time.Second,
		FinalWPM:          40 + float64(i),
		AvgWPM:            38 + float64(i),
		PeakWPM:           55 + float64(i),
		Accuracy:          0.95,
		CorrectChars:      100 + i,
		WrongAttempts:     5,
		TotalAttempts:     105 + i,
		RequireCorrection: i%2 == 0,
		Mode:              model.ModeNormal,
		Source:            model.SourceWords,
		MaxWordLength:     7,
	}
}

func TestInsertAndListSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	samples := []model.TimingSample{
		{Elapsed: 3 * time.Second, CorrectChars: 10},
		{Elapsed: 6 * time.Second, CorrectChars: 25},
	}
	id, err := st.InsertSession(ctx, testRecord(0), samples, nil)
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	if _, err := st.InsertSession(ctx, testRecord(1), nil, nil); err != nil {
		t.Fatalf("insert session: %v", err)
	}

	entries, err := st.ListSessions(ctx, model.HistoryFilter{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(entries))
	}
	first := entries[0]
	if first.ID != id {
		t.Fatalf("expected oldest session first, got id %d", first.ID)
	}
	want := testRecord(0)
	if !first.StartedAt.Equal(want.StartedAt) || first.Elapsed != want.Elapsed {
		t.Fatalf("round-trip mismatch: %+v", first)
	}
	if first.FinalWPM != want.FinalWPM || first.Accuracy != want.Accuracy {
		t.Fatalf("round-trip mismatch: %+v", first)
	}
	if !first.RequireCorrection || first.Source != model.SourceWords {
		t.Fatalf("round-trip mismatch: %+v", first)
	}

	got, err := st.ListSamples(ctx, id)
	if err != nil {
		t.Fatalf("list samples: %v", err)
	}
	if len(got) != 2 || got[1].CorrectChars != 25 || got[1].Elapsed != 6*time.Second {
		t.Fatalf("unexpected samples: %+v", got)
	}
}

func TestListSessionsFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		rec := testRecord(i)
		if i == 4 {
			rec.Source = model.SourceBuiltin
		}
		if _, err := st.InsertSession(ctx, rec, nil, nil); err != nil {
			t.Fatalf("insert session: %v", err)
		}
	}

	entries, err := st.ListSessions(ctx, model.HistoryFilter{Source: string(model.SourceBuiltin)})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 builtin session, got %d", len(entries))
	}

	since := time.Unix(0, 0).UTC().Add(3 * time.Minute)
	entries, err = st.ListSessions(ctx, model.HistoryFilter{Since: &since})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 sessions since cutoff, got %d", len(entries))
	}

	entries, err = st.ListSessions(ctx, model.HistoryFilter{Last: 3})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected last 3 sessions, got %d", len(entries))
	}
	if entries[0].CorrectChars != 102 {
		t.Fatalf("expected window to keep newest sessions, got %+v", entries[0])
	}
}

func TestExportCSV(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if _, err := st.InsertSession(ctx, testRecord(0), nil, nil); err != nil {
		t.Fatalf("insert session: %v", err)
	}

	var buf bytes.Buffer
	if err := st.ExportCSV(ctx, &buf, model.HistoryFilter{}); err != nil {
		t.Fatalf("export csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "timestamp,duration_seconds,") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	row := strings.Split(lines[1], ",")
	if row[1] != "30" {
		t.Fatalf("unexpected duration column: %q", row[1])
	}
	if row[3] != "40.00" {
		t.Fatalf("unexpected final wpm column: %q", row[3])
	}
}

func TestListKeyStatsAggregates(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	first := []model.KeyStat{
		{Char: "a", Attempts: 4, Errors: 1, LatencySumMs: 800, LatencyCount: 4},
		{Char: "b", Attempts: 2, Errors: 0, LatencySumMs: 300, LatencyCount: 2},
	}
	second := []model.KeyStat{
		{Char: "a", Attempts: 6, Errors: 2, LatencySumMs: 1200, LatencyCount: 6},
	}
	if _, err := st.InsertSession(ctx, testRecord(0), nil, first); err != nil {
		t.Fatalf("insert session: %v", err)
	}
	if _, err := st.InsertSession(ctx, testRecord(1), nil, second); err != nil {
		t.Fatalf("insert session: %v", err)
	}

	stats, err := st.ListKeyStats(ctx, model.HistoryFilter{})
	if err != nil {
		t.Fatalf("list key stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 keys, got %d: %+v", len(stats), stats)
	}
	a := stats[0]
	if a.Char != "a" || a.Attempts != 10 || a.Errors != 3 {
		t.Fatalf("unexpected aggregate for a: %+v", a)
	}
	if a.LatencySumMs != 2000 || a.LatencyCount != 10 {
		t.Fatalf("unexpected latency aggregate for a: %+v", a)
	}
	if stats[1].Char != "b" || stats[1].Attempts != 2 {
		t.Fatalf("unexpected aggregate for b: %+v", stats[1])
	}
}

func TestListKeyStatsHonorsLastFilter(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		keys := []model.KeyStat{
			{Char: "a", Attempts: 1 << i, Errors: 0, LatencySumMs: 100, LatencyCount: 1},
		}
		if _, err := st.InsertSession(ctx, testRecord(i), nil, keys); err != nil {
			t.Fatalf("insert session: %v", err)
		}
	}

	stats, err := st.ListKeyStats(ctx, model.HistoryFilter{Last: 2})
	if err != nil {
		t.Fatalf("list key stats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected 1 key, got %d", len(stats))
	}
	// Only the two newest sessions (attempts 2 and 4) are in the window.
	if stats[0].Attempts != 6 {
		t.Fatalf("expected attempts from the 2 newest sessions, got %+v", stats[0])
	}
}
