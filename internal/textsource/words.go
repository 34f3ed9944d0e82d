package textsource

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/verte-zerg/keydrill/internal/model"
	"github.com/verte-zerg/keydrill/internal/wordlist"
)

//go:embed data/en.txt
var embeddedEnglish string

// NewEmbedded returns a word source over the embedded English frequency
// list, filtered to practice words up to maxWordLength characters.
func NewEmbedded(maxWordLength int) (*WordSource, error) {
	words, err := wordlist.ReadWords(strings.NewReader(embeddedEnglish))
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded word list: %w", err)
	}
	words = wordlist.Filter(words, wordlist.PracticeFilter(maxWordLength))
	if len(words) == 0 {
		return nil, fmt.Errorf("no embedded words within length %d", maxWordLength)
	}
	return NewWordSource(words, model.SourceWords), nil
}

// NewFromFile returns a word source over a downloaded word list file.
func NewFromFile(path string, maxWordLength int) (*WordSource, error) {
	words, err := wordlist.LoadWords(path)
	if err != nil {
		return nil, err
	}
	words = wordlist.Filter(words, wordlist.PracticeFilter(maxWordLength))
	if len(words) == 0 {
		return nil, fmt.Errorf("no words within length %d in %s", maxWordLength, path)
	}
	return NewWordSource(words, model.SourceWords), nil
}

// NewDictionary returns a word source over a system dictionary file
// such as /usr/share/dict/words.
func NewDictionary(path string, maxWordLength int) (*WordSource, error) {
	words, err := wordlist.LoadWords(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionary %s: %w", path, err)
	}
	words = wordlist.Filter(words, wordlist.PracticeFilter(maxWordLength))
	if len(words) == 0 {
		return nil, fmt.Errorf("no dictionary words within length %d", maxWordLength)
	}
	src := NewWordSource(words, model.SourceDict)
	return src, nil
}
