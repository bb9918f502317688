package main

import (
	"os"

	"github.com/cfn-community/cfn-dev-tools/internal/analysis"
	"github.com/cfn-community/cfn-dev-tools/internal/config"
	"github.com/cfn-community/cfn-dev-tools/internal/logger"
	"github.com/cfn-community/cfn-dev-tools/internal/lsp"
	"github.com/cfn-community/cfn-dev-tools/internal/schema"
	"github.com/cfn-community/cfn-dev-tools/internal/template"
)

func main() {
	if len(os.Args) < 2 {
		logger.Println("Usage: cfndt <command> [arguments]")
		logger.Println("Commands: lsp, check")
		logger.Println("  lsp")
		logger.Println("  check <template_files...>")
		os.Exit(1)
	}

	cfg, err := config.Load(".")
	if err != nil {
		logger.Printf("Config error: %v", err)
	}

	command := os.Args[1]
	switch command {
	case "lsp":
		runLSP(cfg)
	case "check":
		runCheck(cfg, os.Args[2:])
	default:
		logger.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func runLSP(cfg config.Config) {
	server := lsp.NewServer(cfg)
	if err := server.Run(os.Stdin); err != nil {
		logger.Fatalf("LSP server failed: %v", err)
	}
}

func runCheck(cfg config.Config, args []string) {
	if len(args) < 1 {
		logger.Println("Usage: cfndt check <template_files...>")
		os.Exit(1)
	}

	analyzer := analysis.NewAnalyzer(cfg.AnalyzerOptions())

	var skeleton *schema.Schema
	if !cfg.Analysis.DisableSkeletonCheck {
		sch, err := schema.Load()
		if err != nil {
			logger.Printf("skeleton schema unavailable: %v", err)
		} else {
			skeleton = sch
		}
	}

	errorCount := 0
	total := 0
	for _, file := range args {
		content, err := os.ReadFile(file)
		if err != nil {
			logger.Printf("Error reading %s: %v\n", file, err)
			errorCount++
			continue
		}

		doc, err := template.Parse(content, file)
		if err != nil {
			logger.Printf("%s: %v\n", file, err)
			errorCount++
			continue
		}

		diags := analyzer.AnalyzeDocument(doc)
		if skeleton != nil {
			diags = append(diags, skeleton.Check(doc)...)
		}

		for _, diag := range diags {
			logger.Printf("%s:%d:%d: %s: %s\n",
				diag.File, diag.Range.Start.Line+1, diag.Range.Start.Column+1,
				diag.Level, diag.Message)
			if diag.Level == analysis.LevelError {
				errorCount++
			}
		}
		total += len(diags)
	}

	if total > 0 {
		logger.Printf("Found %d issues.\n", total)
	} else {
		logger.Println("No issues found.")
	}
	if errorCount > 0 {
		os.Exit(1)
	}
}
