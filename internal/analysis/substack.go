package analysis

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cfn-community/cfn-dev-tools/internal/template"
)

// matchSubStackParameters compares the parameter block a parent supplies to a
// child stack against the parameters the child declares. Unknown supplied
// parameters error at their own key; declared-but-missing parameters report at
// the Parameters block key, as errors when the child has no default and as
// warnings when it does.
func (p *pass) matchSubStackParameters(s subStack) {
	if s.defs == nil {
		// Child failed to load; the load diagnostic already covers it.
		return
	}

	declared := make(map[string]ChildParameter, len(s.defs.parameters))
	for _, cp := range s.defs.parameters {
		declared[cp.Name] = cp
	}

	var paramsKey *yaml.Node
	supplied := make(map[string]bool)
	for _, e := range template.Entries(s.properties) {
		if e.Key != "Parameters" {
			continue
		}
		paramsKey = e.KeyNode
		for _, param := range template.Entries(e.Value) {
			supplied[param.Key] = true
			if _, ok := declared[param.Key]; !ok {
				p.reportNode(LevelError,
					fmt.Sprintf("referenced file does not have parameter '%s'", param.Key),
					param.KeyNode, len(param.Key))
			}
		}
	}

	// Anchor for missing-parameter reports: the Parameters key when the
	// parent has one, otherwise the nearest enclosing key.
	anchor := paramsKey
	if anchor == nil {
		anchor = s.propertiesKey
	}
	if anchor == nil {
		anchor = s.resourceKey
	}

	for _, cp := range s.defs.parameters {
		if supplied[cp.Name] {
			continue
		}
		if cp.HasDefault {
			p.reportNode(LevelWarning,
				fmt.Sprintf("missing value for parameter with default value '%s'", cp.Name),
				anchor, len(anchor.Value))
		} else {
			p.reportNode(LevelError,
				fmt.Sprintf("missing value for required parameter '%s'", cp.Name),
				anchor, len(anchor.Value))
		}
	}
}
