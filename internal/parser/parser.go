// Package parser splits Markdown documents into front-matter and body.
package parser

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/recast/internal/apperr"
	"github.com/starford/recast/internal/models"
)

var frontmatterRe = regexp.MustCompile(`(?s)^---\n(.*?)\n---\n(.*)$`)

// Parse splits data and fills in the title default. name is the file name the
// data was read from.
func Parse(name string, data []byte) (*models.Document, error) {
	fm, body, err := Split(data)
	if err != nil {
		return nil, err
	}

	// A sequence or mapping title is the author's value and stays put.
	if !fm.Has("title") {
		fm.Prepend("title", TitleFromName(name))
	} else if t, ok := fm.Get("title"); ok && t == "" {
		fm.Set("title", TitleFromName(name))
	}

	return &models.Document{
		Name:        name,
		Frontmatter: fm,
		Body:        body,
	}, nil
}

// Split separates a leading `---` delimited YAML block from the body.
// Content without such a block is returned whole as body with an empty
// mapping. A block that is present but not a valid YAML mapping is an error.
// CRLF line endings are read as LF.
func Split(data []byte) (*models.Frontmatter, string, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	m := frontmatterRe.FindStringSubmatch(text)
	if m == nil {
		return models.NewFrontmatter(), text, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(m[1]), &node); err != nil {
		return nil, "", fmt.Errorf("%w: %w", apperr.ErrMalformedFrontmatter, err)
	}
	fm, err := models.FrontmatterFromNode(&node)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", apperr.ErrMalformedFrontmatter, err)
	}
	return fm, m[2], nil
}

// TitleFromName derives a title from a file name: extension dropped, dashes
// turned into spaces.
func TitleFromName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(base, "-", " ")
}
