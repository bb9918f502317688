package template

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseSections(t *testing.T) {
	source := `
Parameters:
  Env:
    Type: String
Resources:
  Bucket:
    Type: AWS::S3::Bucket
Outputs:
  Name:
    Value: x
`
	doc, err := Parse([]byte(source), "test.yaml")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	for _, section := range []string{"Parameters", "Resources", "Outputs"} {
		if doc.Section(section) == nil {
			t.Errorf("Section %s not found", section)
		}
	}
	if doc.Section("Mappings") != nil {
		t.Error("Expected nil for missing section")
	}
}

func TestEntriesOnNonMapping(t *testing.T) {
	doc, err := Parse([]byte("Resources: just a string\n"), "test.yaml")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := Entries(doc.Section("Resources")); len(got) != 0 {
		t.Errorf("Expected no entries for scalar section, got %d", len(got))
	}
	if got := Entries(nil); len(got) != 0 {
		t.Errorf("Expected no entries for nil node, got %d", len(got))
	}
}

func TestParseError(t *testing.T) {
	if _, err := Parse([]byte("a: [unclosed\nb: 2\n"), "broken.yaml"); err == nil {
		t.Fatal("Expected parse error")
	}
}

func TestIntrinsicTagPreserved(t *testing.T) {
	source := "Resources:\n  A:\n    Properties:\n      X: !Ref B\n"
	doc, err := Parse([]byte(source), "test.yaml")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	var refNode *yaml.Node
	for _, res := range Entries(doc.Section("Resources")) {
		for _, e := range Entries(res.Value) {
			for _, prop := range Entries(e.Value) {
				refNode = prop.Value
			}
		}
	}
	if refNode == nil {
		t.Fatal("Property node not found")
	}
	if refNode.Tag != TagRef {
		t.Errorf("Expected tag %s, got %s", TagRef, refNode.Tag)
	}
	// The node starts at the '!' of the tag.
	if off := doc.OffsetOf(refNode); off != strings.Index(source, "!Ref") {
		t.Errorf("Expected node offset at tag start %d, got %d", strings.Index(source, "!Ref"), off)
	}
}

func TestStringValue(t *testing.T) {
	source := "A: literal\nB: !Ref x\nC: [1]\n"
	doc, err := Parse([]byte(source), "test.yaml")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if v, ok := StringValue(doc.Section("A")); !ok || v != "literal" {
		t.Errorf("Expected literal string, got %q ok=%v", v, ok)
	}
	if _, ok := StringValue(doc.Section("B")); ok {
		t.Error("Tagged scalar must not read as a literal string")
	}
	if _, ok := StringValue(doc.Section("C")); ok {
		t.Error("Sequence must not read as a literal string")
	}
}

func TestQuoteOffset(t *testing.T) {
	if QuoteOffset(yaml.SingleQuotedStyle) != 1 || QuoteOffset(yaml.DoubleQuotedStyle) != 1 {
		t.Error("Quoted styles must consume one extra character")
	}
	if QuoteOffset(0) != 0 {
		t.Error("Plain style must not consume extra characters")
	}
}
