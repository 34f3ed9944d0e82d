package textsource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/keydrill/internal/model"
)

func TestWordSourceMinLength(t *testing.T) {
	src := NewWordSource([]string{"cat", "dog", "bird"}, model.SourceWords)
	text, err := src.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if text.Mode != model.ModeNormal {
		t.Fatalf("expected normal mode, got %v", text.Mode)
	}
	if got := len(text.Runes()); got < minTextLength {
		t.Fatalf("expected at least %d chars, got %d", minTextLength, got)
	}
	pool := map[string]bool{"cat": true, "dog": true, "bird": true}
	for _, seg := range text.Segments {
		if seg.Kind != model.SegmentWord {
			t.Fatalf("expected word segments, got %v", seg.Kind)
		}
		if !pool[seg.Text] {
			t.Fatalf("unexpected word %q", seg.Text)
		}
	}
}

func TestWordSourceFreshTextPerSession(t *testing.T) {
	src := NewWordSource([]string{"alpha", "beta", "gamma", "delta"}, model.SourceWords)
	first, err := src.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	second, err := src.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if string(first.Runes()) == string(second.Runes()) {
		t.Fatalf("expected different texts across sessions")
	}
}

func TestBuiltinSource(t *testing.T) {
	src := NewBuiltin()
	if src.Kind() != model.SourceBuiltin {
		t.Fatalf("unexpected kind %v", src.Kind())
	}
	text, err := src.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got := len(text.Runes()); got < minTextLength {
		t.Fatalf("expected at least %d chars, got %d", minTextLength, got)
	}
	for _, seg := range text.Segments {
		if seg.Text == "" {
			t.Fatalf("builtin source produced empty segment")
		}
	}
}

func TestEmbeddedSourceRespectsMaxWordLength(t *testing.T) {
	src, err := NewEmbedded(5)
	if err != nil {
		t.Fatalf("embedded source: %v", err)
	}
	text, err := src.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	for _, seg := range text.Segments {
		if len(seg.Text) > 5 {
			t.Fatalf("word %q exceeds max length", seg.Text)
		}
	}
}

func TestFileSourcePreservesIndent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snippet.go")
	content := "func main() {\n\tfmt.Println(\"hi\")\n}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	src, err := NewFile(path)
	if err != nil {
		t.Fatalf("file source: %v", err)
	}
	if src.Kind() != model.SourceFile {
		t.Fatalf("unexpected kind %v", src.Kind())
	}
	text, err := src.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if text.Mode != model.ModeCode {
		t.Fatalf("expected code mode, got %v", text.Mode)
	}
	if len(text.Segments) != 3 {
		t.Fatalf("expected 3 line segments, got %d", len(text.Segments))
	}
	if text.Segments[1].Text != "\tfmt.Println(\"hi\")" {
		t.Fatalf("indentation not preserved: %q", text.Segments[1].Text)
	}
	runes := string(text.Runes())
	if runes != "func main() {\n\tfmt.Println(\"hi\")\n}" {
		t.Fatalf("unexpected flattened text: %q", runes)
	}
}

func TestFileSourceEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.go")
	if err := os.WriteFile(path, []byte("\n\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := NewFile(path); err == nil {
		t.Fatalf("expected error for empty code file")
	}
}
