package textsource

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/keydrill/internal/model"
)

var builtinSamples = []string{
	"The quick brown fox jumps over the lazy dog. This pangram contains every letter of the alphabet at least once.",
	"In a hole in the ground there lived a hobbit. Not a nasty, dirty, wet hole filled with the ends of worms and an oozy smell.",
	"To be or not to be, that is the question. Whether 'tis nobler in the mind to suffer the slings and arrows of outrageous fortune.",
	"It was the best of times, it was the worst of times, it was the age of wisdom, it was the age of foolishness and doubt.",
	"All human beings are born free and equal in dignity and rights. They are endowed with reason and conscience.",
	"The only way to do great work is to love what you do. If you haven't found it yet, keep looking and don't settle.",
	"Two things are infinite: the universe and human stupidity; and I'm not sure about the universe and its vast mysteries.",
	"In the midst of winter, I found there was, within me, an invincible summer that could not be defeated by any force.",
}

// BuiltinSource serves the embedded sample texts.
type BuiltinSource struct {
	rnd *rand.Rand
}

// NewBuiltin returns a source over the embedded sample corpus.
func NewBuiltin() *BuiltinSource {
	return &BuiltinSource{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Kind implements Source.
func (s *BuiltinSource) Kind() model.SourceKind {
	return model.SourceBuiltin
}

// Next concatenates random samples until the target reaches minTextLength.
// Each sample contributes its words as individual segments.
func (s *BuiltinSource) Next() (model.TargetText, error) {
	segments := []model.Segment{}
	total := 0
	for total < minTextLength {
		sample := builtinSamples[s.rnd.Intn(len(builtinSamples))]
		for _, word := range splitWords(sample) {
			if len(segments) > 0 {
				total++
			}
			segments = append(segments, model.Segment{Kind: model.SegmentWord, Text: word})
			total += len(word)
		}
	}
	return model.TargetText{Segments: segments, Mode: model.ModeNormal}, nil
}

func splitWords(text string) []string {
	words := []string{}
	start := -1
	for i, r := range text {
		if r == ' ' {
			if start >= 0 {
				words = append(words, text[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, text[start:])
	}
	return words
}
