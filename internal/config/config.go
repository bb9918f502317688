package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/cfn-community/cfn-dev-tools/internal/analysis"
)

// FileName is the optional per-project configuration file.
const FileName = ".cfndt.toml"

type Config struct {
	Analysis Analysis `toml:"analysis"`
}

type Analysis struct {
	// Extra resource type names treated as child stacks, in addition to
	// AWS::CloudFormation::Stack.
	ChildStackTypes []string `toml:"child_stack_types"`
	// Extra name prefixes treated as pseudo-parameters, in addition to AWS::.
	PseudoParameterPrefixes []string `toml:"pseudo_parameter_prefixes"`
	// Turns off the CUE skeleton warnings.
	DisableSkeletonCheck bool `toml:"disable_skeleton_check"`
}

func Default() Config {
	return Config{}
}

// Load reads <root>/.cfndt.toml. A missing file yields the defaults; a file
// that exists but cannot be parsed is an error.
func Load(root string) (Config, error) {
	content, err := os.ReadFile(filepath.Join(root, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), err
	}

	var cfg Config
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing %s: %w", FileName, err)
	}
	return cfg, nil
}

// AnalyzerOptions merges the configured extras over the built-in defaults.
func (c Config) AnalyzerOptions() analysis.Options {
	opts := analysis.DefaultOptions()
	opts.ChildStackTypes = append(opts.ChildStackTypes, c.Analysis.ChildStackTypes...)
	opts.PseudoParameterPrefixes = append(opts.PseudoParameterPrefixes, c.Analysis.PseudoParameterPrefixes...)
	return opts
}
