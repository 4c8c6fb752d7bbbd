// Command flowcore validates workflow documents and applies diff batches to
// them from the command line.
//
// The node-type catalog comes from a JSON file (see config.LoadCatalog). The
// validation report is printed as JSON on stdout; the exit code is non-zero
// when the workflow is invalid or a diff batch is rejected.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/c360/flowcore/config"
	"github.com/c360/flowcore/diff"
	"github.com/c360/flowcore/engine"
	"github.com/c360/flowcore/metric"
	"github.com/c360/flowcore/types"
	"github.com/c360/flowcore/validator"
)

const appName = "flowcore"

// Version information, set at build time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	flags := parseFlags()

	if flags.ShowVersion {
		fmt.Printf("%s %s (built %s)\n", appName, Version, BuildTime)
		return 0
	}
	if flags.ShowHelp {
		printDetailedHelp()
		return 0
	}

	if err := validateFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if flags.LogLevel != "" {
		cfg.Logging.Level = flags.LogLevel
	}
	if flags.Profile != "" {
		cfg.Validation.Profile = flags.Profile
	}
	if flags.CatalogPath != "" {
		cfg.CatalogPath = flags.CatalogPath
	}

	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.CatalogPath == "" {
		fmt.Fprintln(os.Stderr, "error: no node-type catalog given (-catalog or catalog_path in config)")
		return 2
	}
	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	logger.Info("catalog loaded", "path", cfg.CatalogPath, "types", catalog.Len())

	profile, err := validator.ParseProfile(cfg.Validation.Profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	var metrics *metric.MetricsRegistry
	if cfg.Metrics.Enabled {
		metrics = metric.NewMetricsRegistry()
		server := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, metrics)
		go func() {
			if err := server.Start(); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		defer func() { _ = server.Stop() }()
		logger.Info("metrics server listening", "address", server.Address())
	}

	eng, err := engine.New(engine.Config{
		Repository:      catalog,
		SchemaCacheSize: cfg.Validation.SchemaCacheSize,
		Profile:         profile,
		Logger:          logger,
		Metrics:         metrics,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	doc, err := readWorkflow(flags.WorkflowPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	if flags.DiffPath != "" {
		ops, err := readOperations(flags.DiffPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 2
		}

		result, report, err := eng.ApplyDiff(doc, ops, engine.ApplyOptions{
			ValidateOnly:   flags.DryRun,
			ValidateResult: true,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "diff rejected: %v\n", err)
			return 1
		}
		if !flags.DryRun && flags.OutputPath != "" {
			if err := writeWorkflow(flags.OutputPath, result); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				return 2
			}
		}
		return printReport(report)
	}

	report := eng.ValidateWorkflow(doc, engine.ValidateOptions{})
	return printReport(report)
}

func readWorkflow(path string) (*types.WorkflowDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow: %w", err)
	}
	var doc types.WorkflowDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse workflow: %w", err)
	}
	return &doc, nil
}

func readOperations(path string) ([]diff.Operation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read diff: %w", err)
	}
	ops, err := diff.DecodeOperations(data)
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}
	return ops, nil
}

func writeWorkflow(path string, doc *types.WorkflowDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode workflow: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write workflow: %w", err)
	}
	return nil
}

func printReport(report *validator.Report) int {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if !report.Valid {
		return 1
	}
	return 0
}
