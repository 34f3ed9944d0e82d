// Package metrics derives WPM, accuracy, and the timing series.
package metrics

import (
	"time"

	"github.com/verte-zerg/keydrill/internal/model"
)

const (
	charsPerWord = 5.0
	// MaxWPM caps reported speed so sub-second bursts do not distort
	// the series.
	MaxWPM = 500.0
	// initialSampleDelay suppresses graph samples before enough time
	// has passed for WPM to be meaningful.
	initialSampleDelay = 2 * time.Second
)

// WPM computes words per minute using the 5-characters-per-word
// convention. Returns 0 when no time has elapsed.
func WPM(correctChars int, elapsed time.Duration) float64 {
	seconds := elapsed.Seconds()
	if seconds <= 0 {
		return 0
	}
	wpm := (float64(correctChars) / charsPerWord) / (seconds / 60.0)
	if wpm > MaxWPM {
		return MaxWPM
	}
	return wpm
}

// Accuracy is the share of attempts that produced a correct character.
// Attempts are monotonic, so corrected mistakes stay penalized.
func Accuracy(correctChars, totalAttempts int) float64 {
	if totalAttempts <= 0 {
		return 1
	}
	return float64(correctChars) / float64(totalAttempts)
}

// Tracker accumulates the append-only timing series for the live graph.
type Tracker struct {
	samples []model.TimingSample
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// RecordSample appends a sample when elapsed strictly exceeds the last
// recorded sample, deduplicating same-tick calls. Samples inside the
// initial delay window are dropped.
func (t *Tracker) RecordSample(elapsed time.Duration, correctChars int) {
	if elapsed < initialSampleDelay {
		return
	}
	if n := len(t.samples); n > 0 && elapsed <= t.samples[n-1].Elapsed {
		return
	}
	t.samples = append(t.samples, model.TimingSample{
		Elapsed:      elapsed,
		CorrectChars: correctChars,
	})
}

// RecordFinal appends the session-end sample. The end of a session is
// always worth a point, so only the strict-growth dedup applies, not the
// initial delay window.
func (t *Tracker) RecordFinal(elapsed time.Duration, correctChars int) {
	if n := len(t.samples); n > 0 && elapsed <= t.samples[n-1].Elapsed {
		return
	}
	t.samples = append(t.samples, model.TimingSample{
		Elapsed:      elapsed,
		CorrectChars: correctChars,
	})
}

// Series returns a copy of the recorded samples, ordered by elapsed time.
func (t *Tracker) Series() []model.TimingSample {
	out := make([]model.TimingSample, len(t.samples))
	copy(out, t.samples)
	return out
}

// WPMSeries projects the samples into cumulative WPM values for plotting.
func (t *Tracker) WPMSeries() []float64 {
	out := make([]float64, 0, len(t.samples))
	for _, s := range t.samples {
		out = append(out, WPM(s.CorrectChars, s.Elapsed))
	}
	return out
}

// AverageWPM is the mean over the sample series, 0 when empty.
func (t *Tracker) AverageWPM() float64 {
	values := t.WPMSeries()
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// PeakWPM is the maximum over the sample series, 0 when empty.
func (t *Tracker) PeakWPM() float64 {
	peak := 0.0
	for _, v := range t.WPMSeries() {
		if v > peak {
			peak = v
		}
	}
	return peak
}
