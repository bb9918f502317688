package template

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is one parsed template file. The yaml tree keeps intrinsic tags
// like !Ref verbatim and records 1-based line/column per node; everything
// offset-based is derived from the line-start table built at parse time.
type Document struct {
	Path   string
	Source string
	Root   *yaml.Node

	lineStarts []int
}

// Parse builds a Document from raw template text. A failure here means the
// root document cannot be analyzed at all.
func Parse(source []byte, path string) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(source, &root); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	doc := &Document{
		Path:       path,
		Source:     string(source),
		lineStarts: lineStartOffsets(string(source)),
	}
	if len(root.Content) > 0 {
		doc.Root = root.Content[0]
	}
	return doc, nil
}

// Section returns the value node of a top-level section (Parameters,
// Resources, ...) or nil if the section is absent.
func (d *Document) Section(name string) *yaml.Node {
	for _, e := range Entries(d.Root) {
		if e.Key == name {
			return e.Value
		}
	}
	return nil
}

// Entry is one key/value pair of a mapping node.
type Entry struct {
	Key     string
	KeyNode *yaml.Node
	Value   *yaml.Node
}

// Entries returns the pairs of a mapping node. Non-mapping or nil nodes yield
// no entries, so missing or malformed sections read as empty.
func Entries(node *yaml.Node) []Entry {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	entries := make([]Entry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		entries = append(entries, Entry{
			Key:     node.Content[i].Value,
			KeyNode: node.Content[i],
			Value:   node.Content[i+1],
		})
	}
	return entries
}

// StringValue returns the literal string value of a node, or "" and false for
// anything that is not a plain string scalar (including tagged scalars, whose
// value is computed rather than literal).
func StringValue(node *yaml.Node) (string, bool) {
	if node == nil || node.Kind != yaml.ScalarNode || node.Tag != "!!str" {
		return "", false
	}
	return node.Value, true
}
