// Package textsource supplies target text for typing sessions.
package textsource

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/keydrill/internal/model"
)

// minTextLength is the minimum target length in characters, so fast
// typers do not run out of text before the timer expires.
const minTextLength = 500

// Source produces target text for one session. Next is called at every
// session start, including restarts, and returns a fresh text.
type Source interface {
	Kind() model.SourceKind
	Next() (model.TargetText, error)
}

// WordSource assembles random-word targets from a fixed word pool.
type WordSource struct {
	words []string
	kind  model.SourceKind
	rnd   *rand.Rand
}

// NewWordSource wraps a word pool as a Source. The pool must be
// non-empty and pre-filtered.
func NewWordSource(words []string, kind model.SourceKind) *WordSource {
	return &WordSource{
		words: words,
		kind:  kind,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Kind implements Source.
func (s *WordSource) Kind() model.SourceKind {
	return s.kind
}

// Next picks random words until the target reaches minTextLength.
func (s *WordSource) Next() (model.TargetText, error) {
	segments := []model.Segment{}
	total := 0
	for total < minTextLength {
		word := s.words[s.rnd.Intn(len(s.words))]
		if len(segments) > 0 {
			total++ // joining space
		}
		segments = append(segments, model.Segment{Kind: model.SegmentWord, Text: word})
		total += len(word)
	}
	return model.TargetText{Segments: segments, Mode: model.ModeNormal}, nil
}
