package engine

import (
	"testing"

	"github.com/verte-zerg/keydrill/internal/model"
)

func wordTarget(text string) model.TargetText {
	return model.TargetText{
		Segments: []model.Segment{{Kind: model.SegmentWord, Text: text}},
		Mode:     model.ModeNormal,
	}
}

func codeTarget(lines ...string) model.TargetText {
	segs := make([]model.Segment, 0, len(lines))
	for _, line := range lines {
		segs = append(segs, model.Segment{Kind: model.SegmentLine, Text: line})
	}
	return model.TargetText{Segments: segs, Mode: model.ModeCode}
}

func typeString(e *Engine, s string) {
	for _, r := range s {
		e.OnChar(r)
	}
}

func TestNormalModeScenario(t *testing.T) {
	// Target "hi": 'h' correct, 'x' wrong but advances, backspace resets,
	// 'i' correct. Accuracy penalizes the corrected mistake.
	e := New(wordTarget("hi"), false)

	e.OnChar('h')
	if e.Cursor() != 1 {
		t.Fatalf("expected cursor 1 after correct char, got %d", e.Cursor())
	}
	e.OnChar('x')
	if e.Cursor() != 2 {
		t.Fatalf("expected cursor 2 after wrong char in normal mode, got %d", e.Cursor())
	}
	if got := e.States()[1]; got != model.StateWrong {
		t.Fatalf("expected position 1 wrong, got %v", got)
	}
	e.OnBackspace()
	if e.Cursor() != 1 {
		t.Fatalf("expected cursor 1 after backspace, got %d", e.Cursor())
	}
	if got := e.States()[1]; got != model.StateUntyped {
		t.Fatalf("expected position 1 reset to untyped, got %v", got)
	}
	e.OnChar('i')
	if !e.IsComplete() {
		t.Fatalf("expected session complete")
	}
	if e.CorrectChars() != 2 {
		t.Fatalf("expected 2 correct chars, got %d", e.CorrectChars())
	}
	if e.TotalAttempts() != 3 {
		t.Fatalf("expected 3 total attempts, got %d", e.TotalAttempts())
	}
	if e.WrongAttempts() != 1 {
		t.Fatalf("expected 1 wrong attempt, got %d", e.WrongAttempts())
	}
}

func TestRequireCorrectionBlocksCursor(t *testing.T) {
	e := New(wordTarget("hi"), true)

	e.OnChar('h')
	e.OnChar('x')
	if e.Cursor() != 1 {
		t.Fatalf("expected cursor held at 1 on mismatch, got %d", e.Cursor())
	}
	if got := e.States()[1]; got != model.StateWrong {
		t.Fatalf("expected position 1 wrong, got %v", got)
	}
	// Retyping in place clears the error without backspace.
	e.OnChar('i')
	if got := e.States()[1]; got != model.StateCorrectedCorrect {
		t.Fatalf("expected position 1 corrected, got %v", got)
	}
	if e.Cursor() != 2 {
		t.Fatalf("expected cursor 2 after correction, got %d", e.Cursor())
	}
	if !e.IsComplete() {
		t.Fatalf("expected session complete")
	}
	if e.TotalAttempts() != 3 || e.WrongAttempts() != 1 {
		t.Fatalf("unexpected attempt counts: total=%d wrong=%d", e.TotalAttempts(), e.WrongAttempts())
	}
}

func TestRequireCorrectionRepeatedMismatch(t *testing.T) {
	e := New(wordTarget("ab"), true)
	e.OnChar('x')
	e.OnChar('y')
	e.OnChar('z')
	if e.Cursor() != 0 {
		t.Fatalf("expected cursor pinned at 0, got %d", e.Cursor())
	}
	if e.WrongAttempts() != 3 {
		t.Fatalf("expected 3 wrong attempts, got %d", e.WrongAttempts())
	}
	e.OnChar('a')
	e.OnChar('b')
	if !e.IsComplete() {
		t.Fatalf("expected session complete")
	}
}

func TestRequireCorrectionBackspaceAtBlockedPosition(t *testing.T) {
	e := New(wordTarget("hi"), true)
	e.OnChar('h')
	e.OnChar('x')
	// Cursor blocked at 1; backspace retreats to 0 and reopens it.
	e.OnBackspace()
	if e.Cursor() != 0 {
		t.Fatalf("expected cursor 0 after backspace, got %d", e.Cursor())
	}
	if got := e.States()[0]; got != model.StateUntyped {
		t.Fatalf("expected position 0 reset, got %v", got)
	}
	// Position 1 keeps its wrong mark until retyped.
	if got := e.States()[1]; got != model.StateWrong {
		t.Fatalf("expected position 1 still wrong, got %v", got)
	}
	e.OnChar('h')
	e.OnChar('i')
	if !e.IsComplete() {
		t.Fatalf("expected session complete")
	}
	if got := e.States()[1]; got != model.StateCorrectedCorrect {
		t.Fatalf("expected position 1 corrected, got %v", got)
	}
}

func TestCursorNeverExceedsTarget(t *testing.T) {
	e := New(wordTarget("cat dog"), false)
	typeString(e, "catdog ")
	if !e.IsComplete() {
		t.Fatalf("expected completion with wrong marks present")
	}
	if e.Cursor() != e.Len() {
		t.Fatalf("expected cursor at end, got %d", e.Cursor())
	}
	// Keystrokes past the end are defensive no-ops.
	before := e.TotalAttempts()
	e.OnChar('x')
	if e.TotalAttempts() != before {
		t.Fatalf("expected no attempt recorded past end")
	}
	if e.Cursor() != e.Len() {
		t.Fatalf("cursor moved past target length")
	}
}

func TestBackspaceAtZeroIsNoop(t *testing.T) {
	e := New(wordTarget("a"), false)
	e.OnBackspace()
	if e.Cursor() != 0 {
		t.Fatalf("expected cursor 0, got %d", e.Cursor())
	}
}

func TestBackspaceOverCorrectDecrementsCount(t *testing.T) {
	e := New(wordTarget("ab"), false)
	e.OnChar('a')
	if e.CorrectChars() != 1 {
		t.Fatalf("expected 1 correct char, got %d", e.CorrectChars())
	}
	e.OnBackspace()
	if e.CorrectChars() != 0 {
		t.Fatalf("expected correct count reset, got %d", e.CorrectChars())
	}
	// Attempts stay monotonic.
	if e.TotalAttempts() != 1 {
		t.Fatalf("expected 1 attempt, got %d", e.TotalAttempts())
	}
}

func TestEmptyTargetStartsComplete(t *testing.T) {
	e := New(model.TargetText{Mode: model.ModeNormal}, false)
	if !e.IsComplete() {
		t.Fatalf("expected empty target to start complete")
	}
}

func TestCodeModeSkipsLeadingIndent(t *testing.T) {
	e := New(codeTarget("if x {", "\treturn"), false)
	typeString(e, "if x {")
	e.OnChar('\n')
	// Tab after the newline is auto-skipped.
	states := e.States()
	tabPos := len("if x {") + 1
	if states[tabPos] != model.StateSkippedWhitespace {
		t.Fatalf("expected indentation skipped, got %v", states[tabPos])
	}
	if e.Cursor() != tabPos+1 {
		t.Fatalf("expected cursor past indent, got %d", e.Cursor())
	}
	typeString(e, "return")
	if !e.IsComplete() {
		t.Fatalf("expected session complete")
	}
	// Skipped whitespace never counts toward correct chars.
	want := len("if x {") + 1 + len("return")
	if e.CorrectChars() != want {
		t.Fatalf("expected %d correct chars, got %d", want, e.CorrectChars())
	}
}

func TestCodeModeInitialIndentSkipped(t *testing.T) {
	e := New(codeTarget("  x := 1"), false)
	if e.Cursor() != 2 {
		t.Fatalf("expected cursor past initial indent, got %d", e.Cursor())
	}
	states := e.States()
	if states[0] != model.StateSkippedWhitespace || states[1] != model.StateSkippedWhitespace {
		t.Fatalf("expected initial indent skipped, got %v %v", states[0], states[1])
	}
}

func TestCodeModeNewlineMismatch(t *testing.T) {
	e := New(codeTarget("a", "b"), false)
	e.OnChar('a')
	e.OnChar('x')
	if got := e.States()[1]; got != model.StateWrong {
		t.Fatalf("expected newline position wrong, got %v", got)
	}
}

func TestCodeModeBackspaceStepsOverIndent(t *testing.T) {
	e := New(codeTarget("a", "  b"), false)
	e.OnChar('a')
	e.OnChar('\n')
	e.OnChar('b')
	if !e.IsComplete() {
		t.Fatalf("expected session complete")
	}
	e.OnBackspace() // back over 'b'
	e.OnBackspace() // over the skipped indent, onto the newline
	if got := e.Target()[e.Cursor()]; got != '\n' {
		t.Fatalf("expected cursor on newline, got %q", got)
	}
	// Indent stays skipped and is re-crossed on retype.
	e.OnChar('\n')
	e.OnChar('b')
	if !e.IsComplete() {
		t.Fatalf("expected session complete after retype")
	}
}

func TestMidwordSpacesNotSkippedInCodeMode(t *testing.T) {
	e := New(codeTarget("x := 1"), false)
	e.OnChar('x')
	if e.Cursor() != 1 {
		t.Fatalf("expected cursor 1, got %d", e.Cursor())
	}
	// The space after 'x' must be typed, not skipped.
	e.OnChar(' ')
	if got := e.States()[1]; got != model.StateCorrect {
		t.Fatalf("expected typed space correct, got %v", got)
	}
}

func TestKeyCountsPerTargetKey(t *testing.T) {
	// Counters attach to the expected character: mistyping 'x' where 'i'
	// was demanded charges 'i', not 'x'.
	e := New(wordTarget("hi"), false)

	e.OnChar('h')
	e.OnChar('x')
	e.OnBackspace()
	e.OnChar('i')

	counts := e.KeyCounts()
	if got := counts['h']; got.Attempts != 1 || got.Errors != 0 {
		t.Fatalf("unexpected counts for 'h': %+v", got)
	}
	if got := counts['i']; got.Attempts != 2 || got.Errors != 1 {
		t.Fatalf("unexpected counts for 'i': %+v", got)
	}
	if _, ok := counts['x']; ok {
		t.Fatalf("typed-but-never-expected key must not be counted")
	}
}

func TestKeyCountsBlockedPosition(t *testing.T) {
	// In correction mode every retry of the blocked position is another
	// attempt on the same key.
	e := New(wordTarget("a"), true)

	e.OnChar('z')
	e.OnChar('z')
	e.OnChar('a')

	got := e.KeyCounts()['a']
	if got.Attempts != 3 || got.Errors != 2 {
		t.Fatalf("expected 3 attempts / 2 errors on 'a', got %+v", got)
	}
}

func TestKeyCountsCopyIsolated(t *testing.T) {
	e := New(wordTarget("a"), false)
	e.OnChar('a')

	counts := e.KeyCounts()
	counts['a'] = model.KeyCounts{Attempts: 99}
	if got := e.KeyCounts()['a']; got.Attempts != 1 {
		t.Fatalf("expected engine counters unaffected by caller writes, got %+v", got)
	}
}
