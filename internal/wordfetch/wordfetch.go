// Package wordfetch downloads per-language word lists for practice.
package wordfetch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Word lists come from the FrequencyWords corpus, one "word count" pair
// per line, most frequent first.
const listURLTemplate = "https://raw.githubusercontent.com/hermitdave/FrequencyWords/master/content/2018/%s/%s_50k.txt"

const defaultWordLimit = 10000

// Result describes a downloaded or cached word list.
type Result struct {
	Lang   string
	Path   string
	Words  int
	Cached bool
}

// Download fetches the word list for lang into destDir. An existing list
// is reused unless force is set.
func Download(ctx context.Context, lang, destDir string, limit int, force bool) (Result, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return Result{}, fmt.Errorf("language is required")
	}
	if destDir == "" {
		return Result{}, fmt.Errorf("destination directory is required")
	}
	if limit <= 0 {
		limit = defaultWordLimit
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create word list dir: %w", err)
	}

	destPath := filepath.Join(destDir, lang+".txt")
	if !force {
		if _, err := os.Stat(destPath); err == nil {
			return Result{Lang: lang, Path: destPath, Cached: true}, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return Result{}, fmt.Errorf("failed to stat cached list: %w", err)
		}
	}

	url := fmt.Sprintf(listURLTemplate, lang, lang)
	resp, err := httpRequest(ctx, url)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusNotFound {
		return Result{}, fmt.Errorf("no word list available for language %q", lang)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("unexpected word list status: %s", resp.Status)
	}

	words, err := ParseFrequencyList(resp.Body, limit)
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse word list for %q: %w", lang, err)
	}

	tmpFile, err := os.CreateTemp(destDir, lang+"-*.txt")
	if err != nil {
		return Result{}, fmt.Errorf("failed to create temp list: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	for _, w := range words {
		if _, err := writer.WriteString(w + "\n"); err != nil {
			return Result{}, fmt.Errorf("failed to write word list: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return Result{}, fmt.Errorf("failed to flush word list: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return Result{}, fmt.Errorf("failed to close temp list: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return Result{}, fmt.Errorf("failed to move list into place: %w", err)
	}

	return Result{Lang: lang, Path: destPath, Words: len(words)}, nil
}

// ParseFrequencyList reads "word count" lines and returns up to limit
// practice-suitable words, keeping corpus frequency order.
func ParseFrequencyList(r io.Reader, limit int) ([]string, error) {
	scanner := bufio.NewScanner(r)
	words := make([]string, 0, limit)
	seen := make(map[string]struct{})
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		word := strings.ToLower(fields[0])
		if !isPracticeWord(word) {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
		if limit > 0 && len(words) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read list: %w", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("list contained no usable words")
	}
	return words, nil
}

// ListDownloaded returns the language codes with a list in dir.
func ListDownloaded(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read word list dir: %w", err)
	}
	langs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".txt") {
			continue
		}
		langs = append(langs, strings.TrimSuffix(name, ".txt"))
	}
	sort.Strings(langs)
	return langs, nil
}

func isPracticeWord(word string) bool {
	length := utf8.RuneCountInString(word)
	if length < 2 || length > 20 {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func httpRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
