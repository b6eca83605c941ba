// Package testutil provides shared test helpers: in-memory sources, a fake
// generator, temporary directories and history databases.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/recast/internal/history"
	"github.com/starford/recast/internal/storage"
)

// MemSource is an in-memory storage.Source.
type MemSource struct {
	name     string
	Content  []byte
	Writes   int
	ReadErr  error
	WriteErr error
}

var _ storage.Source = (*MemSource)(nil)

// NewMemSource returns a source holding content.
func NewMemSource(name, content string) *MemSource {
	return &MemSource{name: name, Content: []byte(content)}
}

func (m *MemSource) Name() string { return m.name }

func (m *MemSource) Read() ([]byte, error) {
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return append([]byte(nil), m.Content...), nil
}

func (m *MemSource) Write(content []byte) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Content = append([]byte(nil), content...)
	m.Writes++
	return nil
}

// FakeGenerator records prompts and answers through Fn. With Fn unset every
// prompt is answered with Reply.
type FakeGenerator struct {
	Reply   string
	Fn      func(call int, prompt string) (string, error)
	Prompts []string
}

func (g *FakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.Prompts = append(g.Prompts, prompt)
	if g.Fn != nil {
		return g.Fn(len(g.Prompts), prompt)
	}
	return g.Reply, nil
}

// TestHistory creates a temporary history database that is closed on cleanup.
func TestHistory(t *testing.T) (*history.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := history.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db, path
}

// TestDir creates a temporary directory populated with files.
func TestDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
