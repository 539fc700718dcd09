// Package history keeps a transcript of resolved utterances in the state
// directory, one JSON record per line. It exists for recall ("what did I
// ask earlier") and never feeds back into resolution, which stays
// stateless.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/heyvox/vox/internal/appdirs"
)

const logFileName = "transcript.jsonl"

const maxLineBytes = 256 * 1024

type Entry struct {
	Utterance string            `json:"utterance"`
	Intent    string            `json:"intent"`
	Params    map[string]string `json:"params,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

type Match struct {
	Utterance string  `json:"utterance"`
	Intent    string  `json:"intent"`
	Score     float64 `json:"score"`
	Timestamp string  `json:"timestamp,omitempty"`
}

// Log is an append-only transcript bounded to maxEntries records.
type Log struct {
	path       string
	maxEntries int
}

// Open resolves the transcript under the app state dir, creating the
// directory when needed.
func Open(maxEntries int) (*Log, error) {
	if _, err := appdirs.EnsureStateDir(); err != nil {
		return nil, err
	}
	path, err := appdirs.StateFilePath(logFileName)
	if err != nil {
		return nil, err
	}
	return OpenAt(path, maxEntries), nil
}

// OpenAt uses an explicit file path instead of the state dir.
func OpenAt(path string, maxEntries int) *Log {
	if maxEntries <= 0 {
		maxEntries = 500
	}
	return &Log{path: path, maxEntries: maxEntries}
}

// Append records one resolved utterance. Utterances that look like they
// carry credentials are silently skipped rather than written to disk.
func (l *Log) Append(entry Entry) error {
	if strings.TrimSpace(entry.Utterance) == "" {
		return nil
	}
	if isSensitiveUtterance(entry.Utterance) {
		return nil
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	entries, err := l.load()
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	if len(entries) > l.maxEntries {
		entries = entries[len(entries)-l.maxEntries:]
	}
	return l.write(entries)
}

// Recent returns up to n entries, newest first.
func (l *Log) Recent(n int) ([]Entry, error) {
	entries, err := l.load()
	if err != nil {
		return nil, err
	}
	if n <= 0 || n > len(entries) {
		n = len(entries)
	}
	out := make([]Entry, 0, n)
	for i := len(entries) - 1; i >= len(entries)-n; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

// Search scores transcript entries against a free-form query and returns
// the best matches, best first.
func (l *Log) Search(query string, limit int) ([]Match, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if limit <= 0 {
		limit = 8
	}

	entries, err := l.load()
	if err != nil {
		return nil, err
	}
	tokens := splitTokens(query)

	matches := make([]Match, 0, len(entries))
	for i, entry := range entries {
		utterance := strings.ToLower(entry.Utterance)
		score := scoreUtterance(query, tokens, utterance, len(entries)-1-i)
		if score <= 0 {
			continue
		}
		matches = append(matches, Match{
			Utterance: entry.Utterance,
			Intent:    entry.Intent,
			Score:     score,
			Timestamp: entry.Timestamp.Format(time.RFC3339),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].Timestamp > matches[j].Timestamp
		}
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (l *Log) load() ([]Entry, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open transcript: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			// A corrupt line loses one record, not the whole transcript.
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read transcript: %w", err)
	}
	return entries, nil
}

func (l *Log) write(entries []Entry) error {
	var builder strings.Builder
	for _, entry := range entries {
		line, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("could not serialize transcript entry: %w", err)
		}
		builder.Write(line)
		builder.WriteByte('\n')
	}

	dir := filepath.Dir(l.path)
	tempFile, err := os.CreateTemp(dir, ".vox-transcript-*")
	if err != nil {
		return fmt.Errorf("could not create temp transcript: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := func() { _ = os.Remove(tempPath) }

	if _, err := tempFile.WriteString(builder.String()); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not write temp transcript: %w", err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not secure transcript permissions: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		cleanup()
		return fmt.Errorf("could not close temp transcript: %w", err)
	}
	if err := os.Rename(tempPath, l.path); err != nil {
		cleanup()
		return fmt.Errorf("could not replace transcript: %w", err)
	}
	return nil
}

func scoreUtterance(query string, tokens []string, utterance string, recencyIndex int) float64 {
	if utterance == "" {
		return 0
	}
	score := 0.0

	if strings.Contains(utterance, query) {
		score += 12
	}
	if strings.HasPrefix(utterance, query) {
		score += 8
	}

	matched := 0
	for _, token := range tokens {
		if tokenIndex(utterance, token) >= 0 {
			matched++
			score += 4
		}
	}
	if len(tokens) > 0 && matched == 0 {
		return 0
	}

	if recencyIndex < 10 {
		score += 2
	} else if recencyIndex < 100 {
		score += 1
	}
	return score
}

var stopwords = map[string]struct{}{
	"the": {}, "for": {}, "and": {}, "with": {}, "what": {}, "when": {},
	"please": {}, "you": {}, "did": {}, "ask": {}, "about": {}, "that": {},
}

func splitTokens(query string) []string {
	parts := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := map[string]struct{}{}
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.ToLower(part)
		if len(token) < 3 {
			continue
		}
		if _, blocked := stopwords[token]; blocked {
			continue
		}
		if _, exists := seen[token]; exists {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

func tokenIndex(text string, token string) int {
	if token == "" {
		return -1
	}
	start := 0
	for start <= len(text)-len(token) {
		idx := strings.Index(text[start:], token)
		if idx < 0 {
			return -1
		}
		idx += start
		beforeOK := idx == 0 || !isTokenChar(rune(text[idx-1]))
		afterPos := idx + len(token)
		afterOK := afterPos >= len(text) || !isTokenChar(rune(text[afterPos]))
		if beforeOK && afterOK {
			return idx
		}
		start = idx + 1
	}
	return -1
}

func isTokenChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isSensitiveUtterance(utterance string) bool {
	low := strings.ToLower(utterance)
	patterns := []string{
		"password",
		"passphrase",
		"token=",
		"secret",
		"api key",
		"api_key",
		"private key",
	}
	for _, pattern := range patterns {
		if strings.Contains(low, pattern) {
			return true
		}
	}
	return false
}
