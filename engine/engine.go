// Package engine is the façade over the validation and diff cores. It wires a
// node-type repository, the graph validator, and the diff engine together
// behind two entry points: ValidateWorkflow and ApplyDiff.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/c360/flowcore/diff"
	"github.com/c360/flowcore/errors"
	"github.com/c360/flowcore/metric"
	"github.com/c360/flowcore/nodetype"
	"github.com/c360/flowcore/types"
	"github.com/c360/flowcore/validator"
)

// Config assembles an Engine.
type Config struct {
	// Repository resolves node-type schemas. Required.
	Repository nodetype.Repository

	// SchemaCacheSize, when positive, wraps the repository in a
	// version-scoped LRU schema cache.
	SchemaCacheSize int

	// Profile is the default validation profile. Empty means runtime.
	Profile validator.Profile

	// Logger for operational narration. Nil falls back to slog.Default().
	Logger *slog.Logger

	// Metrics enables Prometheus instrumentation. Nil disables it.
	Metrics *metric.MetricsRegistry
}

// Engine validates workflow documents and applies diff batches to them. It is
// stateless between calls and safe for concurrent use.
type Engine struct {
	repo      nodetype.Repository
	validator *validator.GraphValidator
	diff      *diff.Engine
	profile   validator.Profile
	logger    *slog.Logger
	metrics   *metric.Metrics
}

// New creates an engine from the config.
func New(cfg Config) (*Engine, error) {
	if cfg.Repository == nil {
		return nil, errors.WrapStructural(
			fmt.Errorf("node-type repository is required"),
			"Engine", "New", "config check")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repo := cfg.Repository
	if cfg.SchemaCacheSize > 0 {
		cached, err := nodetype.NewCachedRepository(repo, cfg.SchemaCacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "Engine", "New", "schema cache setup")
		}
		repo = cached
	}

	profile := cfg.Profile
	if profile == "" {
		profile = validator.DefaultProfile
	}

	var metrics *metric.Metrics
	if cfg.Metrics != nil {
		metrics = cfg.Metrics.CoreMetrics()
	}

	return &Engine{
		repo:      repo,
		validator: validator.NewGraphValidator(repo, logger),
		diff:      diff.NewEngine(logger),
		profile:   profile,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// NodeValidator exposes the node validator for registering additional
// execution rules.
func (e *Engine) NodeValidator() *validator.NodeValidator {
	return e.validator.NodeValidator()
}

// ValidateOptions controls a validation pass.
type ValidateOptions struct {
	// Profile overrides the engine's default profile.
	Profile validator.Profile
}

// ValidateWorkflow runs a full validation pass over the document. The
// document is never mutated, and repeated calls over the same document yield
// identical reports.
func (e *Engine) ValidateWorkflow(doc *types.WorkflowDocument, opts ValidateOptions) *validator.Report {
	profile := opts.Profile
	if profile == "" {
		profile = e.profile
	}

	start := time.Now()
	report := e.validator.Validate(doc, profile)
	e.recordValidation(profile, report, time.Since(start))
	return report
}

// ApplyOptions controls diff application.
type ApplyOptions struct {
	// ValidateOnly checks the batch without producing a mutated document.
	ValidateOnly bool

	// ValidateResult runs a validation pass over the resulting document and
	// returns its report alongside the document.
	ValidateResult bool

	// Profile for the ValidateResult pass. Empty means the engine default.
	Profile validator.Profile
}

// ApplyDiff applies an ordered batch of operations to the document. The batch
// is atomic: on any failure the returned error names the failing operation and
// the input document remains the authoritative state. When ValidateResult is
// set, the returned report describes the document the batch produced.
func (e *Engine) ApplyDiff(doc *types.WorkflowDocument, ops []diff.Operation, opts ApplyOptions) (*types.WorkflowDocument, *validator.Report, error) {
	result, err := e.diff.Apply(doc, ops, diff.Options{ValidateOnly: opts.ValidateOnly})
	if err != nil {
		e.recordDiffBatch("rejected", len(ops))
		return nil, nil, err
	}

	status := "applied"
	if opts.ValidateOnly {
		status = "dry_run"
	}
	e.recordDiffBatch(status, len(ops))

	var report *validator.Report
	if opts.ValidateResult {
		report = e.ValidateWorkflow(result, ValidateOptions{Profile: opts.Profile})
	}
	return result, report, nil
}

func (e *Engine) recordValidation(profile validator.Profile, report *validator.Report, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}

	status := "valid"
	if !report.Valid {
		status = "invalid"
	}
	e.metrics.RecordValidation(string(profile), status)
	e.metrics.RecordValidationDuration(string(profile), elapsed)
	for _, issue := range report.Errors {
		e.metrics.RecordIssue(string(issue.Severity), issue.Type)
	}
	for _, issue := range report.Warnings {
		e.metrics.RecordIssue(string(issue.Severity), issue.Type)
	}
}

func (e *Engine) recordDiffBatch(status string, operations int) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordDiffBatch(status, operations)
}
