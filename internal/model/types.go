// Package model defines shared data structures.
package model

import (
	"strings"
	"time"
)

// Mode selects how target text is matched.
type Mode string

const (
	// ModeNormal matches whitespace-delimited words.
	ModeNormal Mode = "normal"
	// ModeCode matches source lines, preserving indentation and newlines.
	ModeCode Mode = "code"
)

// SourceKind identifies where target text came from.
type SourceKind string

const (
	SourceBuiltin SourceKind = "builtin"
	SourceWords   SourceKind = "words"
	SourceDict    SourceKind = "dict"
	SourceFile    SourceKind = "file"
)

// CharState is the status of a single target position.
type CharState uint8

const (
	StateUntyped CharState = iota
	StateCorrect
	StateWrong
	StateCorrectedCorrect
	StateSkippedWhitespace
)

// SegmentKind distinguishes word and line segments.
type SegmentKind uint8

const (
	SegmentWord SegmentKind = iota
	SegmentLine
)

// Segment is one word or one line of target text.
type Segment struct {
	Kind SegmentKind
	Text string
}

// TargetText is the immutable text a session types against.
type TargetText struct {
	Segments []Segment
	Mode     Mode
}

// Runes flattens segments into the rune sequence the engine matches.
// Word segments are joined with spaces, line segments with newlines.
func (t TargetText) Runes() []rune {
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		parts = append(parts, seg.Text)
	}
	sep := " "
	if t.Mode == ModeCode {
		sep = "\n"
	}
	return []rune(strings.Join(parts, sep))
}

// Config defines practice settings.
type Config struct {
	DurationSeconds   int
	RequireCorrection bool
	Source            SourceKind
	MaxWordLength     int
	Lang              string
	CodeFile          string
}

// KeyCounts accumulates attempt and error counters for one target key.
type KeyCounts struct {
	Attempts int
	Errors   int
}

// KeyStat is the per-key record of a session: counters plus response
// latency, keyed by the target character.
type KeyStat struct {
	Char         string
	Attempts     int
	Errors       int
	LatencySumMs int64
	LatencyCount int64
}

// Accuracy returns the fraction of attempts on this key that matched.
func (k KeyStat) Accuracy() float64 {
	if k.Attempts <= 0 {
		return 1
	}
	return float64(k.Attempts-k.Errors) / float64(k.Attempts)
}

// AvgLatencyMs returns the mean response time in milliseconds, or 0
// without timing data.
func (k KeyStat) AvgLatencyMs() float64 {
	if k.LatencyCount <= 0 {
		return 0
	}
	return float64(k.LatencySumMs) / float64(k.LatencyCount)
}

// TimingSample pairs elapsed session time with cumulative correct chars.
type TimingSample struct {
	Elapsed      time.Duration
	CorrectChars int
}

// SessionSnapshot is the read-only view the rendering layer pulls each frame.
type SessionSnapshot struct {
	Target        []rune
	States        []CharState
	Cursor        int
	Elapsed       time.Duration
	Remaining     time.Duration
	WPM           float64
	Accuracy      float64
	CorrectChars  int
	WrongAttempts int
	Finished      bool
}

// HistoryRecord captures a completed typing session for persistence.
type HistoryRecord struct {
	StartedAt         time.Time
	FinishedAt        time.Time
	DurationSeconds   int
	Elapsed           time.Duration
	FinalWPM          float64
	AvgWPM            float64
	PeakWPM           float64
	Accuracy          float64
	CorrectChars      int
	WrongAttempts     int
	TotalAttempts     int
	RequireCorrection bool
	Mode              Mode
	Source            SourceKind
	MaxWordLength     int
}

// HistoryFilter selects sessions for reporting.
type HistoryFilter struct {
	Source string
	Since  *time.Time
	Last   int
}

// HistoryEntry is a stored session with its database id.
type HistoryEntry struct {
	ID int64
	HistoryRecord
}
