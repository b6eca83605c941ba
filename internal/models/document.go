// Package models defines the domain types for recast.
package models

import "time"

// Document is a Markdown file split into front-matter and body.
type Document struct {
	Name        string
	Frontmatter *Frontmatter
	Body        string
}

// Title returns the front-matter title, or empty string if unset.
func (d *Document) Title() string {
	if d.Frontmatter == nil {
		return ""
	}
	t, _ := d.Frontmatter.Get("title")
	return t
}

// LogEntry is the quality record of one rewritten file.
type LogEntry struct {
	File      string `json:"file"`
	WordCount int    `json:"word_count"`
	Flagged   bool   `json:"flagged"`
}

// FileMetadata is a lightweight representation returned by list operations.
type FileMetadata struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}
