package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/starford/recast/internal/models"
)

// DefaultPattern selects Markdown files.
const DefaultPattern = "*.md"

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the source directory
}

var _ Provider = (*FS)(nil)

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute source directory.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a relative path against the root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("storage: empty path")
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes root: %s", rel)
	}
	return abs, nil
}

// List returns metadata for regular files directly under root whose name
// matches pattern. Symlinks count when their target is a regular file.
// Subdirectories are not descended into. Order is the directory listing order.
func (f *FS) List(pattern string) ([]models.FileMetadata, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("storage: invalid pattern %q", pattern)
	}
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []models.FileMetadata
	for _, d := range entries {
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			continue
		}
		ok, err := doublestar.Match(pattern, d.Name())
		if err != nil {
			return nil, fmt.Errorf("storage: match %s: %w", d.Name(), err)
		}
		if !ok {
			continue
		}
		info, err := os.Stat(filepath.Join(f.root, d.Name()))
		if err != nil {
			if d.Type()&fs.ModeSymlink != 0 && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("storage: stat %s: %w", d.Name(), err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		out = append(out, models.FileMetadata{
			Name:      d.Name(),
			Size:      info.Size(),
			UpdatedAt: info.ModTime(),
		})
	}
	return out, nil
}

// Sources wraps every listed file as a Source.
func (f *FS) Sources(pattern string) ([]Source, error) {
	metas, err := f.List(pattern)
	if err != nil {
		return nil, err
	}
	out := make([]Source, len(metas))
	for i, m := range metas {
		out[i] = &fileSource{fs: f, name: m.Name}
	}
	return out, nil
}

// Read returns the raw bytes of a file under root.
func (f *FS) Read(name string) ([]byte, error) {
	abs, err := f.safePath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
// A symlink is written through to its target and left in place.
func (f *FS) Write(name string, content []byte) error {
	abs, err := f.safePath(name)
	if err != nil {
		return err
	}
	if target, err := filepath.EvalSymlinks(abs); err == nil {
		abs = target
	}
	dir := filepath.Dir(abs)

	tmp, err := os.CreateTemp(dir, ".recast-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if info, err := os.Stat(abs); err == nil {
		_ = os.Chmod(tmpName, info.Mode().Perm())
	} else {
		_ = os.Chmod(tmpName, 0o644)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

type fileSource struct {
	fs   *FS
	name string
}

func (s *fileSource) Name() string { return s.name }
func (s *fileSource) Read() ([]byte, error) { return s.fs.Read(s.name) }
func (s *fileSource) Write(content []byte) error { return s.fs.Write(s.name, content) }
