package assembler

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/starford/recast/internal/models"
)

// Serialize renders front-matter as YAML without the `---` delimiters.
//
// Contract:
//   - every string-valued scalar, at any depth, is double-quoted;
//   - all other scalars (dates, numbers, booleans, null) keep their default
//     plain formatting;
//   - keys are emitted plain (quoted only where YAML requires it) in their
//     original order;
//   - comments are dropped.
//
// An empty mapping serializes to an empty slice.
func Serialize(fm *models.Frontmatter) ([]byte, error) {
	if fm == nil || fm.Len() == 0 {
		return []byte{}, nil
	}

	node := quoteStrings(fm.Node(), false)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// quoteStrings returns a copy of n with string values double-quoted.
func quoteStrings(n *yaml.Node, isKey bool) *yaml.Node {
	out := *n
	out.HeadComment, out.LineComment, out.FootComment = "", "", ""

	switch n.Kind {
	case yaml.ScalarNode:
		switch {
		case isKey:
			out.Style = 0
		case n.ShortTag() == "!!str":
			out.Style = yaml.DoubleQuotedStyle
		}
	case yaml.MappingNode:
		out.Style = 0
		out.Content = make([]*yaml.Node, len(n.Content))
		for i, c := range n.Content {
			out.Content[i] = quoteStrings(c, i%2 == 0)
		}
	case yaml.SequenceNode, yaml.DocumentNode:
		out.Content = make([]*yaml.Node, len(n.Content))
		for i, c := range n.Content {
			out.Content[i] = quoteStrings(c, false)
		}
	}
	return &out
}
