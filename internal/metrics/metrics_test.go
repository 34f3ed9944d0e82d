package metrics

import (
	"math"
	"testing"
	"time"
)

func TestWPMFormula(t *testing.T) {
	// 25 correct chars in 30s -> (25/5)/(0.5 min) = 10 WPM.
	got := WPM(25, 30*time.Second)
	if math.Abs(got-10.0) > 1e-9 {
		t.Fatalf("expected 10 WPM, got %v", got)
	}
}

func TestWPMZeroElapsed(t *testing.T) {
	if got := WPM(25, 0); got != 0 {
		t.Fatalf("expected 0 WPM at zero elapsed, got %v", got)
	}
	if got := WPM(25, -time.Second); got != 0 {
		t.Fatalf("expected 0 WPM at negative elapsed, got %v", got)
	}
}

func TestWPMCap(t *testing.T) {
	if got := WPM(10000, time.Second); got != MaxWPM {
		t.Fatalf("expected capped WPM %v, got %v", MaxWPM, got)
	}
}

func TestAccuracyPenalizesCorrectedMistakes(t *testing.T) {
	// Equal correct counts, but the corrected run spent an extra attempt.
	clean := Accuracy(2, 2)
	corrected := Accuracy(2, 3)
	if corrected >= clean {
		t.Fatalf("expected corrected accuracy %v < clean %v", corrected, clean)
	}
	if math.Abs(corrected-2.0/3.0) > 1e-9 {
		t.Fatalf("expected accuracy 2/3, got %v", corrected)
	}
}

func TestAccuracyNoAttempts(t *testing.T) {
	if got := Accuracy(0, 0); got != 1 {
		t.Fatalf("expected accuracy 1 with no attempts, got %v", got)
	}
}

func TestRecordSampleDeduplicatesSameTick(t *testing.T) {
	tr := NewTracker()
	tr.RecordSample(3*time.Second, 10)
	tr.RecordSample(3*time.Second, 12)
	tr.RecordSample(2*time.Second, 15)
	if got := len(tr.Series()); got != 1 {
		t.Fatalf("expected 1 sample, got %d", got)
	}
	tr.RecordSample(4*time.Second, 20)
	series := tr.Series()
	if len(series) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(series))
	}
	if series[1].CorrectChars != 20 {
		t.Fatalf("expected last sample 20 chars, got %d", series[1].CorrectChars)
	}
}

func TestRecordSampleInitialDelay(t *testing.T) {
	tr := NewTracker()
	tr.RecordSample(500*time.Millisecond, 40)
	if got := len(tr.Series()); got != 0 {
		t.Fatalf("expected samples inside initial delay dropped, got %d", got)
	}
}

func TestRecordFinalBypassesInitialDelay(t *testing.T) {
	// A session over in under 2s still gets its end-of-session sample.
	tr := NewTracker()
	tr.RecordSample(time.Second, 8)
	if got := len(tr.Series()); got != 0 {
		t.Fatalf("expected cadence sample dropped, got %d", got)
	}
	tr.RecordFinal(time.Second, 8)
	series := tr.Series()
	if len(series) != 1 {
		t.Fatalf("expected final sample recorded, got %d samples", len(series))
	}
	if series[0].CorrectChars != 8 {
		t.Fatalf("expected final sample 8 chars, got %d", series[0].CorrectChars)
	}
	if tr.AverageWPM() == 0 {
		t.Fatalf("expected non-zero average WPM from final sample")
	}
}

func TestRecordFinalStillDeduplicates(t *testing.T) {
	tr := NewTracker()
	tr.RecordSample(3*time.Second, 10)
	tr.RecordFinal(3*time.Second, 10)
	if got := len(tr.Series()); got != 1 {
		t.Fatalf("expected same-tick final sample deduplicated, got %d", got)
	}
}

func TestSeriesIsCopy(t *testing.T) {
	tr := NewTracker()
	tr.RecordSample(3*time.Second, 10)
	series := tr.Series()
	series[0].CorrectChars = 999
	if tr.Series()[0].CorrectChars != 10 {
		t.Fatalf("mutating a returned series must not affect the tracker")
	}
}

func TestAverageAndPeakWPM(t *testing.T) {
	tr := NewTracker()
	tr.RecordSample(30*time.Second, 25)  // 10 WPM
	tr.RecordSample(60*time.Second, 100) // 20 WPM
	avg := tr.AverageWPM()
	if math.Abs(avg-15.0) > 1e-9 {
		t.Fatalf("expected average 15 WPM, got %v", avg)
	}
	peak := tr.PeakWPM()
	if math.Abs(peak-20.0) > 1e-9 {
		t.Fatalf("expected peak 20 WPM, got %v", peak)
	}
}

func TestEmptyTrackerAggregates(t *testing.T) {
	tr := NewTracker()
	if tr.AverageWPM() != 0 || tr.PeakWPM() != 0 {
		t.Fatalf("expected zero aggregates for empty tracker")
	}
}
