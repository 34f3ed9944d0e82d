package textsource

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/verte-zerg/keydrill/internal/model"
)

// maxCodeLines bounds one practice window so a large file is typed in
// digestible chunks.
const maxCodeLines = 25

// FileSource serves line segments cut from a source-code file.
type FileSource struct {
	lines []string
	rnd   *rand.Rand
}

// NewFile loads a source file for code-mode practice. Leading whitespace
// and explicit line breaks are preserved; trailing whitespace is trimmed
// per line and blank edges of the window are dropped.
func NewFile(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read code file: %w", err)
	}
	raw := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	lines = trimBlankEdges(lines)
	if len(lines) == 0 {
		return nil, fmt.Errorf("code file %s has no content", path)
	}
	return &FileSource{
		lines: lines,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Kind implements Source.
func (s *FileSource) Kind() model.SourceKind {
	return model.SourceFile
}

// Next cuts a random window of up to maxCodeLines lines.
func (s *FileSource) Next() (model.TargetText, error) {
	window := s.lines
	if len(window) > maxCodeLines {
		start := s.rnd.Intn(len(s.lines) - maxCodeLines + 1)
		window = s.lines[start : start+maxCodeLines]
	}
	window = trimBlankEdges(window)
	segments := make([]model.Segment, 0, len(window))
	for _, line := range window {
		segments = append(segments, model.Segment{Kind: model.SegmentLine, Text: line})
	}
	return model.TargetText{Segments: segments, Mode: model.ModeCode}, nil
}

func trimBlankEdges(lines []string) []string {
	start := 0
	for start < len(lines) && lines[start] == "" {
		start++
	}
	end := len(lines)
	for end > start && lines[end-1] == "" {
		end--
	}
	return lines[start:end]
}
