package analysis

import (
	"strings"
	"testing"
)

func TestUnknownAndMissingParameters(t *testing.T) {
	dir := t.TempDir()
	writeChild(t, dir, "child.yaml", `
Parameters:
  Baz:
    Type: String
`)

	source := `Resources:
  MyStack:
    Type: AWS::CloudFormation::Stack
    Properties:
      TemplateURL: child.yaml
      Parameters:
        Foo: bar
`
	diags := analyzeInDir(t, dir, source)
	if len(diags) != 2 {
		t.Fatalf("Expected 2 diagnostics, got %d: %v", len(diags), diags)
	}

	unknown := diags[0]
	if unknown.Level != LevelError {
		t.Errorf("Expected error for unknown parameter, got %v", unknown.Level)
	}
	if !strings.Contains(unknown.Message, "referenced file does not have parameter 'Foo'") {
		t.Errorf("Unexpected message: %s", unknown.Message)
	}
	if got := spanText(t, source, unknown); got != "Foo" {
		t.Errorf("Expected span over the supplied key, got %q", got)
	}

	missing := diags[1]
	if missing.Level != LevelError {
		t.Errorf("Expected error for missing required parameter, got %v", missing.Level)
	}
	if !strings.Contains(missing.Message, "missing value for required parameter 'Baz'") {
		t.Errorf("Unexpected message: %s", missing.Message)
	}
	if got := spanText(t, source, missing); got != "Parameters" {
		t.Errorf("Expected span over the Parameters key, got %q", got)
	}
}

func TestMissingParameterWithDefaultIsWarning(t *testing.T) {
	dir := t.TempDir()
	writeChild(t, dir, "child.yaml", `
Parameters:
  Baz:
    Type: String
    Default: fallback
`)

	source := `Resources:
  MyStack:
    Type: AWS::CloudFormation::Stack
    Properties:
      TemplateURL: child.yaml
`
	diags := analyzeInDir(t, dir, source)
	if len(diags) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d: %v", len(diags), diags)
	}
	d := diags[0]
	if d.Level != LevelWarning {
		t.Errorf("Expected warning, got %v", d.Level)
	}
	if !strings.Contains(d.Message, "missing value for parameter with default value 'Baz'") {
		t.Errorf("Unexpected message: %s", d.Message)
	}
	// No Parameters block: the report anchors at the Properties key.
	if got := spanText(t, source, d); got != "Properties" {
		t.Errorf("Expected span over the Properties key, got %q", got)
	}
}

func TestSuppliedParametersMatch(t *testing.T) {
	dir := t.TempDir()
	writeChild(t, dir, "child.yaml", `
Parameters:
  Baz:
    Type: String
  Opt:
    Type: String
    Default: fallback
`)

	source := `Resources:
  MyStack:
    Type: AWS::CloudFormation::Stack
    Properties:
      TemplateURL: child.yaml
      Parameters:
        Baz: supplied
        Opt: supplied
`
	if diags := analyzeInDir(t, dir, source); len(diags) != 0 {
		t.Errorf("Expected no diagnostics, got %v", diags)
	}
}

func TestParameterOrderIrrelevant(t *testing.T) {
	dir := t.TempDir()
	writeChild(t, dir, "child.yaml", `
Parameters:
  First:
    Type: String
  Second:
    Type: String
`)

	source := `Resources:
  MyStack:
    Type: AWS::CloudFormation::Stack
    Properties:
      TemplateURL: child.yaml
      Parameters:
        Second: b
        First: a
`
	if diags := analyzeInDir(t, dir, source); len(diags) != 0 {
		t.Errorf("Expected no diagnostics, got %v", diags)
	}
}

func TestNoParametersSectionInChild(t *testing.T) {
	dir := t.TempDir()
	writeChild(t, dir, "child.yaml", "Outputs:\n  Bucket:\n    Value: x\n")

	source := `Resources:
  MyStack:
    Type: AWS::CloudFormation::Stack
    Properties:
      TemplateURL: child.yaml
      Parameters:
        Extra: value
`
	diags := analyzeInDir(t, dir, source)
	if len(diags) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %d: %v", len(diags), diags)
	}
	if !strings.Contains(diags[0].Message, "does not have parameter 'Extra'") {
		t.Errorf("Unexpected message: %s", diags[0].Message)
	}
}
