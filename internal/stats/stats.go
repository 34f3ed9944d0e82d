// Package stats contains history aggregation and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/keydrill/internal/metrics"
	"github.com/verte-zerg/keydrill/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates stored sessions for the overview screen.
type Summary struct {
	Sessions    int
	AvgWPM      float64
	BestWPM     float64
	AvgAccuracy float64
	TotalTyping time.Duration
}

// Summarize folds history entries into a Summary.
func Summarize(entries []model.HistoryEntry) Summary {
	out := Summary{Sessions: len(entries)}
	if len(entries) == 0 {
		return out
	}
	for _, e := range entries {
		out.AvgWPM += e.FinalWPM
		out.AvgAccuracy += e.Accuracy
		out.TotalTyping += e.Elapsed
		if e.FinalWPM > out.BestWPM {
			out.BestWPM = e.FinalWPM
		}
	}
	count := float64(len(entries))
	out.AvgWPM /= count
	out.AvgAccuracy /= count
	return out
}

// WPMOverTime projects a stored timing series into WPM values for plotting.
func WPMOverTime(samples []model.TimingSample) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		out = append(out, metrics.WPM(s.CorrectChars, s.Elapsed))
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints the overview block for stored sessions.
func RenderSummary(w io.Writer, entries []model.HistoryEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	summary := Summarize(entries)
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions: %d\n", summary.Sessions); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg WPM: %.2f\n", summary.AvgWPM); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best WPM: %.2f\n", summary.BestWPM); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg Accuracy: %.2f%%\n", summary.AvgAccuracy*100); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Time Typing: %s\n", summary.TotalTyping.Round(time.Second)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// RenderCurves prints WPM and accuracy learning curves across sessions.
func RenderCurves(w io.Writer, entries []model.HistoryEntry, window int) error {
	return RenderCurvesWithSize(w, entries, window, 0, 10, false)
}

// RenderCurvesWithSize prints learning curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, entries []model.HistoryEntry, window, totalWidth, height int, useColor bool) error {
	if len(entries) == 0 {
		return nil
	}
	wpms := make([]float64, len(entries))
	accs := make([]float64, len(entries))
	for i, e := range entries {
		wpms[i] = e.FinalWPM
		accs[i] = e.Accuracy * 100
	}
	wpms = MovingAverage(wpms, window)
	accs = MovingAverage(accs, window)

	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Learning Curves", []Series{
		{Name: "WPM", Values: wpms},
		{Name: "Accuracy", Values: accs},
	}, width, height, useColor)
}
