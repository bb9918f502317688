// Package schema validates the top-level skeleton of a template against an
// embedded CUE definition. Violations are warnings: a template with a broken
// skeleton is still analyzed for references, the shape check just explains
// why some sections read as empty.
package schema

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/cfn-community/cfn-dev-tools/internal/analysis"
	"github.com/cfn-community/cfn-dev-tools/internal/template"
)

//go:embed template.cue
var templateSchema string

type Schema struct {
	tmpl cue.Value
}

func Load() (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(templateSchema, cue.Filename("template.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling template schema: %w", err)
	}
	tmpl := v.LookupPath(cue.ParsePath("#Template"))
	if err := tmpl.Err(); err != nil {
		return nil, fmt.Errorf("looking up #Template: %w", err)
	}
	return &Schema{tmpl: tmpl}, nil
}

// Check unifies the document's skeleton with the schema and reports every
// conflict as a warning positioned at the offending key.
func (s *Schema) Check(doc *template.Document) []analysis.Diagnostic {
	value := plainValue(doc.Root)
	if value == nil {
		return nil
	}

	unified := s.tmpl.Unify(s.tmpl.Context().Encode(value))
	err := unified.Validate(cue.Concrete(false))
	if err == nil {
		return nil
	}

	var diags []analysis.Diagnostic
	for _, e := range errors.Errors(err) {
		format, args := e.Msg()
		message := fmt.Sprintf(format, args...)
		path := e.Path()
		if len(path) > 0 {
			message = fmt.Sprintf("%s: %s", strings.Join(path, "."), message)
		}
		pos, length := keyPosition(doc, path)
		diags = append(diags, analysis.Diagnostic{
			Level:   analysis.LevelWarning,
			Message: message,
			Range: analysis.Range{
				Start: pos,
				End:   template.Position{Line: pos.Line, Column: pos.Column + length},
			},
			File: doc.Path,
		})
	}
	return diags
}

// keyPosition walks the error path through the document and returns the
// position and text length of the deepest matching map key.
func keyPosition(doc *template.Document, path []string) (template.Position, int) {
	node := doc.Root
	var keyNode *yaml.Node
	for _, component := range path {
		found := false
		for _, e := range template.Entries(node) {
			if e.Key == component {
				keyNode = e.KeyNode
				node = e.Value
				found = true
				break
			}
		}
		if !found {
			break
		}
	}
	if keyNode == nil {
		return template.Position{}, 1
	}
	return doc.PositionAt(doc.OffsetOf(keyNode)), len(keyNode.Value)
}

// plainValue strips the yaml tree down to tag-free Go values for CUE
// encoding. Intrinsic-tagged scalars become their raw text and intrinsic
// containers become opaque maps, so a computed value never conflicts with the
// structural schema.
func plainValue(node *yaml.Node) any {
	if node == nil {
		return nil
	}
	tagged := strings.HasPrefix(node.Tag, "!") && !strings.HasPrefix(node.Tag, "!!")
	switch node.Kind {
	case yaml.MappingNode:
		if tagged {
			return map[string]any{}
		}
		m := make(map[string]any)
		for _, e := range template.Entries(node) {
			m[e.Key] = plainValue(e.Value)
		}
		return m
	case yaml.SequenceNode:
		if tagged {
			return map[string]any{}
		}
		out := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			out = append(out, plainValue(child))
		}
		return out
	case yaml.ScalarNode:
		return scalarValue(node)
	}
	return nil
}

func scalarValue(node *yaml.Node) any {
	switch node.Tag {
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		var i int64
		if err := node.Decode(&i); err == nil {
			return i
		}
	case "!!float":
		var f float64
		if err := node.Decode(&f); err == nil {
			return f
		}
	case "!!null":
		return map[string]any{}
	}
	return node.Value
}
