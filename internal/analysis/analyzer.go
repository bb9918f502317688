package analysis

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cfn-community/cfn-dev-tools/internal/template"
)

// Options control which resource types count as child stacks and which name
// prefixes mark pseudo-parameters.
type Options struct {
	ChildStackTypes         []string
	PseudoParameterPrefixes []string
}

func DefaultOptions() Options {
	return Options{
		ChildStackTypes:         []string{"AWS::CloudFormation::Stack"},
		PseudoParameterPrefixes: []string{"AWS::"},
	}
}

// Analyzer runs one full analysis pass per document. It holds no per-document
// state: every pass builds and discards its own working set, so analyses of
// different documents are independent and reentrant.
type Analyzer struct {
	opts Options
}

func NewAnalyzer(opts Options) *Analyzer {
	if len(opts.ChildStackTypes) == 0 {
		opts.ChildStackTypes = DefaultOptions().ChildStackTypes
	}
	if len(opts.PseudoParameterPrefixes) == 0 {
		opts.PseudoParameterPrefixes = DefaultOptions().PseudoParameterPrefixes
	}
	return &Analyzer{opts: opts}
}

func (a *Analyzer) isChildStackType(typeName string) bool {
	for _, t := range a.opts.ChildStackTypes {
		if typeName == t {
			return true
		}
	}
	return false
}

// Analyze parses source and analyzes it. A parse failure of the root document
// is returned as an error; it is the only unrecoverable condition of a pass.
func (a *Analyzer) Analyze(source []byte, path string) ([]Diagnostic, error) {
	doc, err := template.Parse(source, path)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeDocument(doc), nil
}

// AnalyzeDocument runs the full pass over an already-parsed document:
// referenceable collection (including child-template loading), reference
// extraction over Resources and Outputs, resolution, and sub-stack parameter
// matching. The result is the complete diagnostic list for the document.
func (a *Analyzer) AnalyzeDocument(doc *template.Document) []Diagnostic {
	p := &pass{
		a:         a,
		doc:       doc,
		refs:      newReferenceables(),
		children:  make(map[string]*childDefinitions),
		childErrs: make(map[string]error),
	}

	p.collect()

	refs := a.extract(doc, doc.Section("Resources"), "")
	refs = append(refs, a.extract(doc, doc.Section("Outputs"), "")...)
	for _, ref := range refs {
		p.resolveReference(ref)
	}

	for _, s := range p.subStacks {
		p.matchSubStackParameters(s)
	}

	return p.diags
}

// pass is the working state of one analysis pass. Nothing in it survives the
// pass.
type pass struct {
	a         *Analyzer
	doc       *template.Document
	refs      Referenceables
	children  map[string]*childDefinitions
	childErrs map[string]error
	subStacks []subStack
	diags     []Diagnostic
}

// resolveReference checks one reference against the applicable name set.
// GetAtt resolves only against sub-stack outputs; every other kind resolves
// against the union of the local sections.
func (p *pass) resolveReference(ref Reference) {
	resolved := false
	if ref.Kind == KindGetAtt {
		resolved = p.refs.SubStackOutputs[ref.Name]
	} else {
		resolved = p.refs.HasLocal(ref.Name)
	}
	if resolved {
		return
	}
	p.report(LevelError,
		fmt.Sprintf("unable to find referenced variable '%s'", ref.Name),
		p.doc.PositionAt(ref.Offset), len(ref.Name))
}

func (p *pass) report(level DiagnosticLevel, message string, pos template.Position, length int) {
	p.diags = append(p.diags, Diagnostic{
		Level:   level,
		Message: message,
		Range:   spanAt(pos, length),
		File:    p.doc.Path,
	})
}

func (p *pass) reportNode(level DiagnosticLevel, message string, node *yaml.Node, length int) {
	pos := p.doc.PositionAt(p.doc.OffsetOf(node) + template.QuoteOffset(node.Style))
	p.report(level, message, pos, length)
}
