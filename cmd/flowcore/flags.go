package main

import (
	"flag"
	"fmt"
	"os"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath   string
	CatalogPath  string
	WorkflowPath string
	DiffPath     string
	OutputPath   string
	Profile      string
	LogLevel     string
	DryRun       bool
	ShowVersion  bool
	ShowHelp     bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Flags with environment variable fallback
	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("FLOWCORE_CONFIG", ""),
		"Path to configuration file (env: FLOWCORE_CONFIG)")

	flag.StringVar(&cfg.CatalogPath, "catalog",
		getEnv("FLOWCORE_CATALOG", ""),
		"Path to node-type catalog JSON (env: FLOWCORE_CATALOG)")

	flag.StringVar(&cfg.WorkflowPath, "workflow", "",
		"Path to workflow document JSON (required)")

	flag.StringVar(&cfg.DiffPath, "diff", "",
		"Path to a JSON array of diff operations to apply")

	flag.StringVar(&cfg.OutputPath, "out", "",
		"Write the mutated workflow to this path after a successful diff")

	flag.StringVar(&cfg.Profile, "profile",
		getEnv("FLOWCORE_PROFILE", ""),
		"Validation profile: minimal, runtime, ai-friendly, strict (env: FLOWCORE_PROFILE)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("FLOWCORE_LOG_LEVEL", ""),
		"Log level: debug, info, warn, error (env: FLOWCORE_LOG_LEVEL)")

	flag.BoolVar(&cfg.DryRun, "dry-run", false,
		"Check the diff batch without producing a mutated workflow")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	flag.Usage = printDetailedHelp
	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.WorkflowPath == "" {
		return fmt.Errorf("missing required flag: -workflow")
	}
	if _, err := os.Stat(cfg.WorkflowPath); err != nil {
		return fmt.Errorf("workflow file not found: %s", cfg.WorkflowPath)
	}
	if cfg.DiffPath != "" {
		if _, err := os.Stat(cfg.DiffPath); err != nil {
			return fmt.Errorf("diff file not found: %s", cfg.DiffPath)
		}
	}
	if cfg.DryRun && cfg.DiffPath == "" {
		return fmt.Errorf("-dry-run requires -diff")
	}
	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Workflow validation and diff tool

Usage: %s [options] -workflow <file>

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Validate a workflow against a catalog
  %s -catalog catalog.json -workflow workflow.json

  # Validate under the strict profile
  %s -catalog catalog.json -workflow workflow.json -profile strict

  # Apply a diff batch and write the result
  %s -catalog catalog.json -workflow workflow.json -diff ops.json -out updated.json

  # Check a diff batch without applying it
  %s -catalog catalog.json -workflow workflow.json -diff ops.json -dry-run

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
