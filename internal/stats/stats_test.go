package stats

import (
	"bytes"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/keydrill/internal/model"
)

func entry(wpm, acc float64) model.HistoryEntry {
	return model.HistoryEntry{
		HistoryRecord: model.HistoryRecord{
			FinalWPM: wpm,
			Accuracy: acc,
			Elapsed:  30 * time.Second,
		},
	}
}

func TestSummarize(t *testing.T) {
	entries := []model.HistoryEntry{entry(40, 0.9), entry(60, 1.0)}
	s := Summarize(entries)
	if s.Sessions != 2 {
		t.Fatalf("expected 2 sessions, got %d", s.Sessions)
	}
	if math.Abs(s.AvgWPM-50) > 1e-9 {
		t.Fatalf("expected avg 50 WPM, got %v", s.AvgWPM)
	}
	if math.Abs(s.BestWPM-60) > 1e-9 {
		t.Fatalf("expected best 60 WPM, got %v", s.BestWPM)
	}
	if math.Abs(s.AvgAccuracy-0.95) > 1e-9 {
		t.Fatalf("expected avg accuracy 0.95, got %v", s.AvgAccuracy)
	}
	if s.TotalTyping != time.Minute {
		t.Fatalf("expected 1m typing, got %v", s.TotalTyping)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Sessions != 0 || s.AvgWPM != 0 {
		t.Fatalf("unexpected empty summary: %+v", s)
	}
}

func TestWPMOverTime(t *testing.T) {
	samples := []model.TimingSample{
		{Elapsed: 30 * time.Second, CorrectChars: 25},
		{Elapsed: 60 * time.Second, CorrectChars: 100},
	}
	got := WPMOverTime(samples)
	want := []float64{10, 20}
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("value %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestMovingAverage(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	got := MovingAverage(values, 2)
	want := []float64{1, 1.5, 2.5, 3.5}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	// Window of 1 copies the input.
	if got := MovingAverage(values, 1); !reflect.DeepEqual(got, values) {
		t.Fatalf("expected copy, got %v", got)
	}
}

func TestSparkline(t *testing.T) {
	out := Sparkline([]float64{0, 5, 10})
	if len(out) != 3 {
		t.Fatalf("expected 3 chars, got %d", len(out))
	}
	if out[0] != sparkChars[0] || out[2] != sparkChars[len(sparkChars)-1] {
		t.Fatalf("unexpected sparkline %q", out)
	}
	flat := Sparkline([]float64{2, 2, 2})
	if flat != strings.Repeat(string(sparkChars[len(sparkChars)/2]), 3) {
		t.Fatalf("unexpected flat sparkline %q", flat)
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, []model.HistoryEntry{entry(40, 0.9)}); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Summary", "Sessions: 1", "Avg WPM: 40.00", "Avg Accuracy: 90.00%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestRenderCurves(t *testing.T) {
	entries := []model.HistoryEntry{entry(40, 0.9), entry(45, 0.92), entry(50, 0.95)}
	var buf bytes.Buffer
	if err := RenderCurves(&buf, entries, 2); err != nil {
		t.Fatalf("render curves: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Learning Curves") {
		t.Fatalf("expected plot title in output")
	}
	if !strings.Contains(out, "WPM: min=") || !strings.Contains(out, "Accuracy: min=") {
		t.Fatalf("expected per-series ranges in output:\n%s", out)
	}
}
