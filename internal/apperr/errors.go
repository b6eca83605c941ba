// Package apperr holds the sentinel errors shared across the pipeline.
package apperr

import "errors"

var (
	ErrMalformedFrontmatter = errors.New("malformed front-matter")
	ErrMissingCredential    = errors.New("generation credential not set")
	ErrEmptyCompletion      = errors.New("completion has no choices")
)
