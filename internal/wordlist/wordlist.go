// Package wordlist loads and filters word lists.
package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// MinWordLength is the shortest word a practice list keeps.
const MinWordLength = 3

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	return ReadWords(file)
}

// ReadWords reads one word per line from r, skipping blank lines.
func ReadWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// Filter returns the words kept by fn, preserving order.
func Filter(words []string, fn FilterFunc) []string {
	out := make([]string, 0, len(words))
	for _, word := range words {
		if fn(word) {
			out = append(out, word)
		}
	}
	return out
}

// PracticeFilter keeps lowercase ASCII words between MinWordLength and
// maxLen characters. Proper nouns and punctuation-bearing entries are
// dropped, matching dictionary-file practice behavior.
func PracticeFilter(maxLen int) FilterFunc {
	return func(word string) bool {
		if len(word) < MinWordLength || len(word) > maxLen {
			return false
		}
		for i := 0; i < len(word); i++ {
			ch := word[i]
			if ch < 'a' || ch > 'z' {
				return false
			}
		}
		return true
	}
}
