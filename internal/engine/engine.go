// Package engine implements the character matching state machine.
package engine

import "github.com/verte-zerg/keydrill/internal/model"

// Engine compares typed input against target text one position at a time.
// It owns the per-position CharState array for the session and nothing
// else; timing and persistence live with its callers.
type Engine struct {
	target            []rune
	states            []model.CharState
	cursor            int
	mode              model.Mode
	requireCorrection bool

	correctChars   int
	wrongAttempts  int
	totalAttempts  int
	wrongRemaining int

	keyCounts map[rune]model.KeyCounts
}

// New builds an engine over the flattened target text. In code mode the
// cursor auto-advances over leading indentation, marking those positions
// SkippedWhitespace with no typing cost.
func New(target model.TargetText, requireCorrection bool) *Engine {
	runes := target.Runes()
	e := &Engine{
		target:            runes,
		states:            make([]model.CharState, len(runes)),
		mode:              target.Mode,
		requireCorrection: requireCorrection,
		keyCounts:         map[rune]model.KeyCounts{},
	}
	e.skipIndent()
	return e
}

// OnChar processes one typed character. A match advances the cursor; a
// mismatch marks the position Wrong and, in correction mode, blocks until
// the same position is retyped correctly.
func (e *Engine) OnChar(r rune) {
	if e.cursor >= len(e.target) {
		// Session should already be finished.
		return
	}
	e.totalAttempts++
	counts := e.keyCounts[e.target[e.cursor]]
	counts.Attempts++
	if r != e.target[e.cursor] {
		counts.Errors++
	}
	e.keyCounts[e.target[e.cursor]] = counts
	if r == e.target[e.cursor] {
		if e.states[e.cursor] == model.StateWrong {
			e.states[e.cursor] = model.StateCorrectedCorrect
			e.wrongRemaining--
		} else {
			e.states[e.cursor] = model.StateCorrect
		}
		e.correctChars++
		e.cursor++
		e.skipIndent()
		return
	}
	e.wrongAttempts++
	if e.states[e.cursor] != model.StateWrong {
		e.states[e.cursor] = model.StateWrong
		e.wrongRemaining++
	}
	if !e.requireCorrection {
		e.cursor++
		e.skipIndent()
	}
}

// OnBackspace moves the cursor back one position and returns that
// position to the comparison pool. No-op at position zero. Auto-skipped
// indentation is stepped over without clearing it.
func (e *Engine) OnBackspace() {
	pos := e.cursor
	for pos > 0 && e.states[pos-1] == model.StateSkippedWhitespace {
		pos--
	}
	if pos == 0 {
		return
	}
	pos--
	switch e.states[pos] {
	case model.StateCorrect, model.StateCorrectedCorrect:
		e.correctChars--
	case model.StateWrong:
		e.wrongRemaining--
	}
	e.states[pos] = model.StateUntyped
	e.cursor = pos
}

// IsComplete reports whether the cursor passed the final position. In
// correction mode it additionally requires that no Wrong states remain.
func (e *Engine) IsComplete() bool {
	if e.cursor < len(e.target) {
		return false
	}
	if e.requireCorrection {
		return e.wrongRemaining == 0
	}
	return true
}

// Cursor returns the current position index.
func (e *Engine) Cursor() int {
	return e.cursor
}

// Len returns the target length in runes.
func (e *Engine) Len() int {
	return len(e.target)
}

// Target returns a copy of the target runes.
func (e *Engine) Target() []rune {
	out := make([]rune, len(e.target))
	copy(out, e.target)
	return out
}

// States returns a copy of the per-position states.
func (e *Engine) States() []model.CharState {
	out := make([]model.CharState, len(e.states))
	copy(out, e.states)
	return out
}

// CorrectChars counts positions currently Correct or CorrectedCorrect.
func (e *Engine) CorrectChars() int {
	return e.correctChars
}

// WrongAttempts counts every mismatched keystroke, monotonically.
func (e *Engine) WrongAttempts() int {
	return e.wrongAttempts
}

// TotalAttempts counts every keystroke that wrote a state, monotonically.
// Backspace is not an attempt.
func (e *Engine) TotalAttempts() int {
	return e.totalAttempts
}

// KeyCounts returns a copy of the per-target-key attempt and error
// counters. Counters are keyed by the expected character, not the typed
// one, so a slow or error-prone key is the one the text demanded.
func (e *Engine) KeyCounts() map[rune]model.KeyCounts {
	out := make(map[rune]model.KeyCounts, len(e.keyCounts))
	for r, c := range e.keyCounts {
		out[r] = c
	}
	return out
}

// skipIndent marks leading line whitespace as skipped and advances past
// it. Only applies in code mode.
func (e *Engine) skipIndent() {
	if e.mode != model.ModeCode {
		return
	}
	for e.cursor < len(e.target) && e.indentAt(e.cursor) {
		e.states[e.cursor] = model.StateSkippedWhitespace
		e.cursor++
	}
}

// indentAt reports whether position i sits in a leading whitespace run.
func (e *Engine) indentAt(i int) bool {
	r := e.target[i]
	if r != ' ' && r != '\t' {
		return false
	}
	if i == 0 {
		return true
	}
	return e.target[i-1] == '\n' || e.states[i-1] == model.StateSkippedWhitespace
}
