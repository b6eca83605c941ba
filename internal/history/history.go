package history

import "time"

// Store defines the run history operations.
// Consumers should depend on this interface rather than the concrete *DB type.
type Store interface {
	Record(run Run) error
	Recent(limit int) ([]Run, error)
	Rewrites(runID string) ([]Rewrite, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// Run is one completed invocation.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Files      int
	Thin       int
	Rewrites   []Rewrite
}

// Rewrite is one file of a run.
type Rewrite struct {
	File           string
	WordCount      int
	Flagged        bool
	ChecksumBefore string
	ChecksumAfter  string
}
