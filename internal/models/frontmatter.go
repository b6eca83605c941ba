package models

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Frontmatter is an ordered YAML mapping. It wraps a yaml.Node so that key
// order and value tags (dates, numbers, nested maps) survive a round trip.
type Frontmatter struct {
	node *yaml.Node
}

// NewFrontmatter returns an empty mapping.
func NewFrontmatter() *Frontmatter {
	return &Frontmatter{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

// FrontmatterFromNode wraps a decoded YAML node. A document node is unwrapped;
// an empty document yields an empty mapping. Anything other than a mapping is
// rejected.
func FrontmatterFromNode(n *yaml.Node) (*Frontmatter, error) {
	if n == nil || n.Kind == 0 {
		return NewFrontmatter(), nil
	}
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return NewFrontmatter(), nil
		}
		n = n.Content[0]
	}
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null" {
		return NewFrontmatter(), nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("front-matter is a %s, not a mapping", kindName(n.Kind))
	}
	return &Frontmatter{node: n}, nil
}

// Node returns the underlying mapping node.
func (f *Frontmatter) Node() *yaml.Node {
	return f.node
}

// Len returns the number of keys.
func (f *Frontmatter) Len() int {
	return len(f.node.Content) / 2
}

// Keys returns the keys in insertion order.
func (f *Frontmatter) Keys() []string {
	keys := make([]string, 0, f.Len())
	for i := 0; i+1 < len(f.node.Content); i += 2 {
		keys = append(keys, f.node.Content[i].Value)
	}
	return keys
}

// Has reports whether key is present, whatever its value.
func (f *Frontmatter) Has(key string) bool {
	_, ok := f.value(key)
	return ok
}

// Get returns the value of a scalar key. Null scalars read as empty string.
// ok is false when the key is absent or holds a mapping or sequence.
func (f *Frontmatter) Get(key string) (string, bool) {
	v, ok := f.value(key)
	if !ok || v.Kind != yaml.ScalarNode {
		return "", false
	}
	if v.ShortTag() == "!!null" {
		return "", true
	}
	return v.Value, true
}

// Empty reports whether key is absent or holds a falsy value: null, false,
// zero, an empty string or an empty collection.
func (f *Frontmatter) Empty(key string) bool {
	v, ok := f.value(key)
	if !ok {
		return true
	}
	switch v.Kind {
	case yaml.ScalarNode:
		return falsyScalar(v)
	case yaml.MappingNode, yaml.SequenceNode:
		return len(v.Content) == 0
	case yaml.AliasNode:
		return false
	}
	return true
}

// Set stores a string value. An existing key keeps its position.
func (f *Frontmatter) Set(key, value string) {
	for i := 0; i+1 < len(f.node.Content); i += 2 {
		if f.node.Content[i].Value == key {
			f.node.Content[i+1] = stringNode(value)
			return
		}
	}
	f.node.Content = append(f.node.Content, keyNode(key), stringNode(value))
}

// Prepend stores a string value as the first key. An existing key is moved.
func (f *Frontmatter) Prepend(key, value string) {
	rest := make([]*yaml.Node, 0, len(f.node.Content)+2)
	rest = append(rest, keyNode(key), stringNode(value))
	for i := 0; i+1 < len(f.node.Content); i += 2 {
		if f.node.Content[i].Value == key {
			continue
		}
		rest = append(rest, f.node.Content[i], f.node.Content[i+1])
	}
	f.node.Content = rest
}

func (f *Frontmatter) value(key string) (*yaml.Node, bool) {
	for i := 0; i+1 < len(f.node.Content); i += 2 {
		if f.node.Content[i].Value == key {
			return f.node.Content[i+1], true
		}
	}
	return nil, false
}

func keyNode(key string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
}

func stringNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.MappingNode:
		return "mapping"
	case yaml.DocumentNode:
		return "document"
	}
	return "node"
}

func falsyScalar(v *yaml.Node) bool {
	switch v.ShortTag() {
	case "!!null":
		return true
	case "!!bool":
		var b bool
		return v.Decode(&b) == nil && !b
	case "!!int":
		var i int64
		return v.Decode(&i) == nil && i == 0
	case "!!float":
		var f float64
		return v.Decode(&f) == nil && f == 0
	}
	return v.Value == ""
}
