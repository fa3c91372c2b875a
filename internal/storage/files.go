package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	maxEntries     = 500
	transcriptFile = "transcript.txt"
)

// Transcript is a capped log of channel lines kept in a data directory.
// Entries are held newest first; the file stores them oldest first.
type Transcript struct {
	path string

	mu      sync.Mutex
	entries []string
}

// OpenTranscript loads the transcript from dataDir, starting empty if the
// file does not exist yet
func OpenTranscript(dataDir string) (*Transcript, error) {
	path := filepath.Join(dataDir, transcriptFile)
	lines, err := readLines(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return &Transcript{path: path, entries: reverse(lines)}, nil
}

// Add prepends an entry and saves the transcript
func (t *Transcript) Add(entry string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = AddEntry(t.entries, entry)
	return writeLines(t.path, reverse(t.entries))
}

// Latest returns up to n entries, newest first
func (t *Transcript) Latest(n int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n > len(t.entries) {
		n = len(t.entries)
	}
	return append([]string(nil), t.entries[:n]...)
}

// Search returns the entries containing term, case-insensitively
func (t *Transcript) Search(term string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var matches []string
	termLower := strings.ToLower(term)
	for _, entry := range t.entries {
		if strings.Contains(strings.ToLower(entry), termLower) {
			matches = append(matches, entry)
		}
	}
	return matches
}

// AddEntry prepends a new entry (keeping newest first), dropping the oldest
// beyond maxEntries
func AddEntry(entries []string, entry string) []string {
	entries = append([]string{entry}, entries...)
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}
	return entries
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func writeLines(path string, lines []string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintln(file, line); err != nil {
			return err
		}
	}
	return nil
}

func reverse(s []string) []string {
	result := make([]string, len(s))
	for i, v := range s {
		result[len(s)-1-i] = v
	}
	return result
}
