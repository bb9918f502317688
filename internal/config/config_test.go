package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got error: %v", err)
	}
	if cfg.Analysis.DisableSkeletonCheck {
		t.Error("Skeleton check must default to enabled")
	}

	opts := cfg.AnalyzerOptions()
	if len(opts.ChildStackTypes) != 1 || opts.ChildStackTypes[0] != "AWS::CloudFormation::Stack" {
		t.Errorf("Unexpected default child stack types: %v", opts.ChildStackTypes)
	}
	if len(opts.PseudoParameterPrefixes) != 1 || opts.PseudoParameterPrefixes[0] != "AWS::" {
		t.Errorf("Unexpected default pseudo prefixes: %v", opts.PseudoParameterPrefixes)
	}
}

func TestLoadMergesExtras(t *testing.T) {
	dir := t.TempDir()
	content := `
[analysis]
child_stack_types = ["Custom::Nested"]
pseudo_parameter_prefixes = ["Acme::"]
disable_skeleton_check = true
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !cfg.Analysis.DisableSkeletonCheck {
		t.Error("Expected skeleton check disabled")
	}

	opts := cfg.AnalyzerOptions()
	if len(opts.ChildStackTypes) != 2 || opts.ChildStackTypes[1] != "Custom::Nested" {
		t.Errorf("Expected extras appended to defaults, got %v", opts.ChildStackTypes)
	}
	if len(opts.PseudoParameterPrefixes) != 2 || opts.PseudoParameterPrefixes[1] != "Acme::" {
		t.Errorf("Expected extras appended to defaults, got %v", opts.PseudoParameterPrefixes)
	}
}

func TestLoadBrokenFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("not [valid toml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("Expected error for unparsable config")
	}
}
