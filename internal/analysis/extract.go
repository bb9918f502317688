package analysis

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cfn-community/cfn-dev-tools/internal/template"
)

type RefKind int

const (
	KindRef RefKind = iota
	KindSub
	KindGetAtt
	KindIf
	KindFindInMap
	KindDependsOn
)

func (k RefKind) String() string {
	switch k {
	case KindRef:
		return "Ref"
	case KindSub:
		return "Sub"
	case KindGetAtt:
		return "GetAtt"
	case KindIf:
		return "If"
	case KindFindInMap:
		return "FindInMap"
	case KindDependsOn:
		return "DependsOn"
	}
	return "Unknown"
}

// Reference is one intrinsic-function usage. Offset is the absolute offset of
// the first character of Name in the original source text, not of the
// enclosing node.
type Reference struct {
	Kind   RefKind
	Name   string
	Offset int
}

// Placeholders inside a !Sub scalar. No nesting, non-greedy inner text.
var subPlaceholder = regexp.MustCompile(`\$\{([^}]*)\}`)

// extract walks a subtree depth-first and emits one Reference per intrinsic
// usage. inherited carries tag context downward for nodes that have none of
// their own: the first element of an !If or !FindInMap sequence names a
// condition or mapping table, and the values under a bare DependsOn key are
// resource names.
func (a *Analyzer) extract(doc *template.Document, node *yaml.Node, inherited string) []Reference {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case yaml.SequenceNode:
		ctx := inherited
		if node.Tag == template.TagIf || node.Tag == template.TagFindInMap {
			ctx = node.Tag
		}
		// If and FindInMap treat sequence position specially: only the first
		// element is a name, the rest are values.
		positional := ctx == template.TagIf || ctx == template.TagFindInMap
		var refs []Reference
		for i, child := range node.Content {
			childCtx := ctx
			if positional && i > 0 {
				childCtx = ""
			}
			refs = append(refs, a.extract(doc, child, childCtx)...)
		}
		return refs

	case yaml.MappingNode:
		var refs []Reference
		for _, e := range template.Entries(node) {
			ctx := inherited
			if e.Key == template.KeyDependsOn {
				ctx = template.KeyDependsOn
			}
			refs = append(refs, a.extract(doc, e.Value, ctx)...)
		}
		return refs

	case yaml.ScalarNode:
		return a.extractScalar(doc, node, inherited)
	}
	return nil
}

func (a *Analyzer) extractScalar(doc *template.Document, node *yaml.Node, inherited string) []Reference {
	start := doc.OffsetOf(node)

	switch node.Tag {
	case template.TagRef:
		if a.isPseudoParameter(node.Value) {
			return nil
		}
		return []Reference{{
			Kind:   KindRef,
			Name:   node.Value,
			Offset: start + template.TagValueSkip(template.TagRef),
		}}
	case template.TagGetAtt:
		return []Reference{{
			Kind:   KindGetAtt,
			Name:   node.Value,
			Offset: start + template.TagValueSkip(template.TagGetAtt),
		}}
	case template.TagSub:
		return a.extractSubPlaceholders(node, start)
	}

	// Bare scalars reference a name directly, no character skip.
	switch inherited {
	case template.TagIf:
		return []Reference{{Kind: KindIf, Name: node.Value, Offset: start}}
	case template.TagFindInMap:
		return []Reference{{Kind: KindFindInMap, Name: node.Value, Offset: start}}
	case template.KeyDependsOn:
		return []Reference{{Kind: KindDependsOn, Name: node.Value, Offset: start}}
	}
	return nil
}

// extractSubPlaceholders emits one Reference per ${...} placeholder of a !Sub
// scalar. The name starts at node start + tag skip + quote offset + the
// match's index within the raw value + 2 for the opening "${". A scalar with
// no placeholders yields nothing.
func (a *Analyzer) extractSubPlaceholders(node *yaml.Node, start int) []Reference {
	base := start + template.TagValueSkip(template.TagSub) + template.QuoteOffset(node.Style)
	var refs []Reference
	for _, m := range subPlaceholder.FindAllStringSubmatchIndex(node.Value, -1) {
		name := node.Value[m[2]:m[3]]
		// ${!...} is a literal escape, and pseudo-parameters never resolve
		// against local names.
		if strings.HasPrefix(name, "!") || a.isPseudoParameter(name) {
			continue
		}
		refs = append(refs, Reference{
			Kind:   KindSub,
			Name:   name,
			Offset: base + m[0] + 2,
		})
	}
	return refs
}

func (a *Analyzer) isPseudoParameter(name string) bool {
	for _, prefix := range a.opts.PseudoParameterPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
