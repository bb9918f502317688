package analysis

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cfn-community/cfn-dev-tools/internal/template"
)

// Referenceables holds the names one document exposes to intrinsic
// references. GetAtt is resolved against SubStackOutputs only; every other
// kind resolves against the union of the local sections.
type Referenceables struct {
	Parameters map[string]bool
	Resources  map[string]bool
	Conditions map[string]bool
	Mappings   map[string]bool

	// SubStackOutputs holds "<resource>.Outputs.<key>" names collected from
	// child templates.
	SubStackOutputs map[string]bool
}

func newReferenceables() Referenceables {
	return Referenceables{
		Parameters:      make(map[string]bool),
		Resources:       make(map[string]bool),
		Conditions:      make(map[string]bool),
		Mappings:        make(map[string]bool),
		SubStackOutputs: make(map[string]bool),
	}
}

// HasLocal reports whether name is declared in any local section.
func (r *Referenceables) HasLocal(name string) bool {
	return r.Parameters[name] || r.Resources[name] || r.Conditions[name] || r.Mappings[name]
}

// ChildParameter is one parameter a child template declares.
type ChildParameter struct {
	Name       string
	HasDefault bool
}

// childDefinitions is what a child template exposes to its parent.
type childDefinitions struct {
	outputs    []string
	parameters []ChildParameter
}

// subStack is one child-stack resource of the parent document, paired with
// the definitions loaded from its template file.
type subStack struct {
	resource      string
	resourceKey   *yaml.Node
	properties    *yaml.Node
	propertiesKey *yaml.Node
	defs          *childDefinitions
}

// collect fills the referenceable sets from the top-level sections and loads
// child-template definitions for every child-stack resource. Child files that
// cannot be read or parsed become diagnostics at the TemplateURL value and
// contribute nothing; the pass never aborts over a broken child.
func (p *pass) collect() {
	sections := map[string]map[string]bool{
		"Parameters": p.refs.Parameters,
		"Resources":  p.refs.Resources,
		"Conditions": p.refs.Conditions,
		"Mappings":   p.refs.Mappings,
	}
	for name, set := range sections {
		for _, e := range template.Entries(p.doc.Section(name)) {
			set[e.Key] = true
		}
	}

	for _, res := range template.Entries(p.doc.Section("Resources")) {
		p.collectSubStack(res)
	}
}

func (p *pass) collectSubStack(res template.Entry) {
	var typeName string
	var properties, propertiesKey *yaml.Node
	for _, e := range template.Entries(res.Value) {
		switch e.Key {
		case "Type":
			typeName, _ = template.StringValue(e.Value)
		case "Properties":
			properties = e.Value
			propertiesKey = e.KeyNode
		}
	}
	if !p.a.isChildStackType(typeName) {
		return
	}

	var urlNode *yaml.Node
	for _, e := range template.Entries(properties) {
		if e.Key == "TemplateURL" {
			urlNode = e.Value
		}
	}
	url, ok := template.StringValue(urlNode)
	if !ok {
		// Computed TemplateURL: the path is not statically known, nothing to
		// resolve across files.
		return
	}

	defs, err := p.loadChild(url)
	if err != nil {
		p.reportNode(LevelError, fmt.Sprintf("unable to load template file '%s': %v", url, err), urlNode, len(url))
	}

	stack := subStack{
		resource:      res.Key,
		resourceKey:   res.KeyNode,
		properties:    properties,
		propertiesKey: propertiesKey,
		defs:          defs,
	}
	if defs != nil {
		for _, out := range defs.outputs {
			p.refs.SubStackOutputs[fmt.Sprintf("%s.Outputs.%s", res.Key, out)] = true
		}
	}
	p.subStacks = append(p.subStacks, stack)
}

// loadChild reads and parses the child template named by url, memoized per
// pass so repeated references to one file load it once. The memo also guards
// against a template naming itself.
func (p *pass) loadChild(url string) (*childDefinitions, error) {
	if defs, seen := p.children[url]; seen {
		return defs, p.childErrs[url]
	}

	path := url
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(p.doc.Path), url)
	}

	defs, err := loadChildDefinitions(path)
	p.children[url] = defs
	p.childErrs[url] = err
	return defs, err
}

func loadChildDefinitions(path string) (*childDefinitions, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	child, err := template.Parse(content, path)
	if err != nil {
		return nil, err
	}

	defs := &childDefinitions{}
	for _, e := range template.Entries(child.Section("Outputs")) {
		defs.outputs = append(defs.outputs, e.Key)
	}
	for _, e := range template.Entries(child.Section("Parameters")) {
		hasDefault := false
		for _, attr := range template.Entries(e.Value) {
			if attr.Key == "Default" {
				hasDefault = true
			}
		}
		defs.parameters = append(defs.parameters, ChildParameter{Name: e.Key, HasDefault: hasDefault})
	}
	return defs, nil
}
