// Package report collects per-file word counts and renders the quality log.
package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/starford/recast/internal/models"
)

// Defaults for the quality log.
const (
	DefaultMinWords = 600
	DefaultLogFile  = "rewrite_log.txt"
	ThinMarker      = " ⚠ THIN"
)

// Reporter accumulates log entries in processing order.
type Reporter struct {
	minWords int
	entries  []models.LogEntry
}

// New creates a Reporter that flags entries below minWords.
func New(minWords int) *Reporter {
	return &Reporter{minWords: minWords}
}

// Add records the word count of file and returns the entry.
func (r *Reporter) Add(file string, wordCount int) models.LogEntry {
	e := models.LogEntry{
		File:      file,
		WordCount: wordCount,
		Flagged:   wordCount < r.minWords,
	}
	r.entries = append(r.entries, e)
	return e
}

// Entries returns a copy of the recorded entries.
func (r *Reporter) Entries() []models.LogEntry {
	out := make([]models.LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Thin returns how many entries are flagged.
func (r *Reporter) Thin() int {
	n := 0
	for _, e := range r.entries {
		if e.Flagged {
			n++
		}
	}
	return n
}

// WriteTo writes one line per entry: "<file>: <N> words", plus the thin
// marker for flagged entries.
func (r *Reporter) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, e := range r.entries {
		n, err := io.WriteString(w, Line(e))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Bytes renders the whole log.
func (r *Reporter) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = r.WriteTo(&buf)
	return buf.Bytes()
}

// Line formats a single entry including the trailing newline.
func Line(e models.LogEntry) string {
	marker := ""
	if e.Flagged {
		marker = ThinMarker
	}
	return fmt.Sprintf("%s: %d words%s\n", e.File, e.WordCount, marker)
}
