// Package session orchestrates one typing session lifecycle.
package session

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/verte-zerg/keydrill/internal/clock"
	"github.com/verte-zerg/keydrill/internal/engine"
	"github.com/verte-zerg/keydrill/internal/metrics"
	"github.com/verte-zerg/keydrill/internal/model"
	"github.com/verte-zerg/keydrill/internal/textsource"
)

// State is the session lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateFinished
)

// Misuse and construction errors. Events outside the Running state are
// caller bugs and are surfaced, not swallowed.
var (
	ErrNotRunning      = errors.New("session: event delivered outside running state")
	ErrAlreadyRunning  = errors.New("session: already running")
	ErrNotFinished     = errors.New("session: reset requires a finished session")
	ErrEmptyText       = errors.New("session: text source produced no text")
	ErrInvalidDuration = errors.New("session: duration must be positive")
)

// Controller drives the match engine, metrics tracker, and session
// clock through Idle -> Running -> Finished. It is owned by a single
// event loop; no method blocks.
type Controller struct {
	cfg    model.Config
	source textsource.Source
	clk    clock.Clock

	state        State
	sessionClock *clock.SessionClock
	eng          *engine.Engine
	tracker      *metrics.Tracker
	mode         model.Mode
	target       []rune

	// Per-key response timing: the engine owns attempt/error counters,
	// the controller owns the clock, so latency lives here.
	keyLatency map[rune]*keyLatency
	keyStartAt time.Duration

	startedAt    time.Time
	finalElapsed time.Duration
	record       model.HistoryRecord
	hasRecord    bool
}

type keyLatency struct {
	sumMs int64
	count int64
}

// New builds a controller in the Idle state.
func New(cfg model.Config, source textsource.Source, clk clock.Clock) *Controller {
	return &Controller{cfg: cfg, source: source, clk: clk}
}

// State returns the current lifecycle phase.
func (c *Controller) State() State {
	return c.state
}

// Mode returns the text mode of the current session.
func (c *Controller) Mode() model.Mode {
	return c.mode
}

// Start pulls fresh text from the source and transitions Idle -> Running.
func (c *Controller) Start() error {
	if c.state == StateRunning {
		return ErrAlreadyRunning
	}
	if c.cfg.DurationSeconds <= 0 {
		return ErrInvalidDuration
	}
	text, err := c.source.Next()
	if err != nil {
		return fmt.Errorf("failed to pull text: %w", err)
	}
	text.Segments = dropEmptySegments(text.Segments)
	runes := text.Runes()
	if len(runes) == 0 {
		return ErrEmptyText
	}

	c.mode = text.Mode
	c.target = runes
	c.eng = engine.New(text, c.cfg.RequireCorrection)
	c.tracker = metrics.NewTracker()
	c.keyLatency = map[rune]*keyLatency{}
	c.keyStartAt = 0
	c.sessionClock = clock.NewSession(c.clk)
	c.sessionClock.Start()
	c.startedAt = c.clk.Now()
	c.hasRecord = false
	c.state = StateRunning
	return nil
}

// OnChar delivers one typed character.
func (c *Controller) OnChar(r rune) error {
	if c.state != StateRunning {
		return ErrNotRunning
	}
	cursorBefore := c.eng.Cursor()
	elapsed := c.sessionClock.Elapsed()
	if cursorBefore < len(c.target) {
		// Every attempt on the expected key records its response time,
		// measured from when the cursor arrived at the key.
		agg := c.keyLatency[c.target[cursorBefore]]
		if agg == nil {
			agg = &keyLatency{}
			c.keyLatency[c.target[cursorBefore]] = agg
		}
		agg.sumMs += (elapsed - c.keyStartAt).Milliseconds()
		agg.count++
	}
	c.eng.OnChar(r)
	if c.eng.Cursor() != cursorBefore {
		c.keyStartAt = elapsed
	}
	c.sample()
	c.checkDone()
	return nil
}

// OnBackspace delivers a backspace keystroke.
func (c *Controller) OnBackspace() error {
	if c.state != StateRunning {
		return ErrNotRunning
	}
	cursorBefore := c.eng.Cursor()
	c.eng.OnBackspace()
	if c.eng.Cursor() != cursorBefore {
		// Timing restarts for the key the cursor returned to.
		c.keyStartAt = c.sessionClock.Elapsed()
	}
	c.sample()
	c.checkDone()
	return nil
}

// Tick checks for expiry on the periodic timer, so a session ends even
// with no further typing, and records a cadence sample.
func (c *Controller) Tick() error {
	if c.state != StateRunning {
		return ErrNotRunning
	}
	c.sample()
	c.checkDone()
	return nil
}

// Reset transitions Finished -> Idle, discarding engine and tracker
// state. The next Start pulls fresh text.
func (c *Controller) Reset() error {
	if c.state != StateFinished {
		return ErrNotFinished
	}
	c.eng = nil
	c.tracker = nil
	c.sessionClock = nil
	c.target = nil
	c.keyLatency = nil
	c.hasRecord = false
	c.state = StateIdle
	return nil
}

// Snapshot returns the read-only view for the rendering layer. It is
// derived, never stored, so repeated calls without intervening events
// yield identical results.
func (c *Controller) Snapshot() model.SessionSnapshot {
	if c.eng == nil {
		return model.SessionSnapshot{}
	}
	elapsed := c.elapsed()
	remaining := c.budget() - elapsed
	if remaining < 0 {
		remaining = 0
	}
	correct := c.eng.CorrectChars()
	return model.SessionSnapshot{
		Target:        c.eng.Target(),
		States:        c.eng.States(),
		Cursor:        c.eng.Cursor(),
		Elapsed:       elapsed,
		Remaining:     remaining,
		WPM:           metrics.WPM(correct, elapsed),
		Accuracy:      metrics.Accuracy(correct, c.eng.TotalAttempts()),
		CorrectChars:  correct,
		WrongAttempts: c.eng.WrongAttempts(),
		Finished:      c.state == StateFinished,
	}
}

// Series returns the timing samples recorded so far.
func (c *Controller) Series() []model.TimingSample {
	if c.tracker == nil {
		return nil
	}
	return c.tracker.Series()
}

// WPMSeries returns the per-sample WPM values for graphing.
func (c *Controller) WPMSeries() []float64 {
	if c.tracker == nil {
		return nil
	}
	return c.tracker.WPMSeries()
}

// Record returns the history record of the finished session.
func (c *Controller) Record() (model.HistoryRecord, bool) {
	return c.record, c.hasRecord
}

// KeyStats merges the engine's per-key counters with the recorded
// response latencies, sorted by character.
func (c *Controller) KeyStats() []model.KeyStat {
	if c.eng == nil {
		return nil
	}
	counts := c.eng.KeyCounts()
	out := make([]model.KeyStat, 0, len(counts))
	for r, cnt := range counts {
		stat := model.KeyStat{
			Char:     string(r),
			Attempts: cnt.Attempts,
			Errors:   cnt.Errors,
		}
		if agg := c.keyLatency[r]; agg != nil {
			stat.LatencySumMs = agg.sumMs
			stat.LatencyCount = agg.count
		}
		out = append(out, stat)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Char < out[j].Char
	})
	return out
}

func (c *Controller) budget() time.Duration {
	return time.Duration(c.cfg.DurationSeconds) * time.Second
}

func (c *Controller) elapsed() time.Duration {
	if c.state == StateFinished {
		return c.finalElapsed
	}
	return c.sessionClock.Elapsed()
}

func (c *Controller) sample() {
	c.tracker.RecordSample(c.sessionClock.Elapsed(), c.eng.CorrectChars())
}

func (c *Controller) checkDone() {
	if !c.eng.IsComplete() && !c.sessionClock.Expired(c.budget()) {
		return
	}
	elapsed := c.sessionClock.Elapsed()
	if elapsed > c.budget() {
		elapsed = c.budget()
	}
	c.finalElapsed = elapsed
	// The end-of-session sample skips the initial delay window, so even
	// a session over in under two seconds keeps a non-empty series.
	c.tracker.RecordFinal(elapsed, c.eng.CorrectChars())

	correct := c.eng.CorrectChars()
	c.record = model.HistoryRecord{
		StartedAt:         c.startedAt,
		FinishedAt:        c.clk.Now(),
		DurationSeconds:   c.cfg.DurationSeconds,
		Elapsed:           elapsed,
		FinalWPM:          metrics.WPM(correct, elapsed),
		AvgWPM:            c.tracker.AverageWPM(),
		PeakWPM:           c.tracker.PeakWPM(),
		Accuracy:          metrics.Accuracy(correct, c.eng.TotalAttempts()),
		CorrectChars:      correct,
		WrongAttempts:     c.eng.WrongAttempts(),
		TotalAttempts:     c.eng.TotalAttempts(),
		RequireCorrection: c.cfg.RequireCorrection,
		Mode:              c.mode,
		Source:            c.source.Kind(),
		MaxWordLength:     c.cfg.MaxWordLength,
	}
	c.hasRecord = true
	c.state = StateFinished
}

func dropEmptySegments(segments []model.Segment) []model.Segment {
	out := make([]model.Segment, 0, len(segments))
	for _, seg := range segments {
		if seg.Text == "" && seg.Kind == model.SegmentWord {
			continue
		}
		out = append(out, seg)
	}
	return out
}
