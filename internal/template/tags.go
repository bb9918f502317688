package template

import "gopkg.in/yaml.v3"

// Short-form intrinsic tags as yaml.v3 reports them on the node.
const (
	TagRef       = "!Ref"
	TagSub       = "!Sub"
	TagGetAtt    = "!GetAtt"
	TagIf        = "!If"
	TagFindInMap = "!FindInMap"
)

// KeyDependsOn is not a tag: the bare DependsOn map key provides the same
// reference context to its value.
const KeyDependsOn = "DependsOn"

// tagValueSkip is the number of characters between the start of a tagged node
// (the '!') and the first character of its scalar value. The yaml tree only
// exposes the node's own start, so every in-scalar offset is node start plus
// one of these skips.
var tagValueSkip = map[string]int{
	TagRef:    len("!Ref "),
	TagSub:    len("!Sub "),
	TagGetAtt: len("!GetAtt "),
}

// TagValueSkip returns the character skip for a short-form tag, 0 for tags
// whose value is not embedded in the scalar text.
func TagValueSkip(tag string) int {
	return tagValueSkip[tag]
}

// QuoteOffset returns the extra character consumed by the opening quote of a
// quoted scalar, 0 for plain and block styles.
func QuoteOffset(style yaml.Style) int {
	if style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0 {
		return 1
	}
	return 0
}
