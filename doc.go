// Package flowcore is the validation and diff core for declarative workflow
// documents: automation graphs whose typed nodes are wired through named
// connection ports and configured with parameter trees that may embed
// template expressions.
//
// # Architecture
//
// The module is a pure in-memory core. It owns no persistence and no
// transport; documents come in as values, reports and mutated documents go
// out as values.
//
//	┌─────────────────────────────────────┐
//	│            engine                   │  ValidateWorkflow, ApplyDiff
//	│         (façade, metrics)           │
//	└──────────────┬──────────────────────┘
//	               │ orchestrates
//	     ┌─────────┴──────────┐
//	     ↓                    ↓
//	┌──────────┐        ┌──────────┐
//	│validator │        │   diff   │   graph + node validation,
//	│          │        │          │   atomic edit batches
//	└────┬─────┘        └────┬─────┘
//	     │                   │
//	     └────────┬──────────┘
//	              ↓
//	┌─────────────────────────────────────┐
//	│  types · nodetype · expression ·    │  document model, schemas,
//	│  visibility · errors                │  template syntax, visibility
//	└─────────────────────────────────────┘
//
// # Packages
//
// Core:
//   - types: the workflow document model (nodes, connections, settings)
//   - nodetype: node-type capability schemas, registry, version-scoped cache
//   - validator: node-level and graph-level validation under profiles
//   - diff: typed edit operations and the atomic batch engine
//   - engine: the façade wiring repository, validator, and diff together
//
// Supporting:
//   - expression: template-expression scanning and the prefix convention
//   - visibility: property visibility conditions (show/hide predicates)
//   - errors: error classification (structural, semantic, recoverable)
//   - config: configuration and catalog loading
//   - metric: Prometheus instrumentation
//   - pkg/cache: generic LRU/simple caches
//   - testutil: workflow builders and a pre-loaded catalog for tests
//
// # Usage
//
//	catalog, _ := config.LoadCatalog("catalog.json")
//
//	eng, _ := engine.New(engine.Config{
//	    Repository:      catalog,
//	    SchemaCacheSize: 256,
//	    Profile:         validator.ProfileRuntime,
//	    Logger:          logger,
//	})
//
//	report := eng.ValidateWorkflow(doc, engine.ValidateOptions{})
//	if !report.Valid {
//	    // report.Errors carries per-node issues with paths and suggestions
//	}
//
//	updated, report, err := eng.ApplyDiff(doc, ops, engine.ApplyOptions{
//	    ValidateResult: true,
//	})
//
// Validation never mutates a document, repeated passes over the same document
// yield identical reports, and diff batches are atomic: any failing operation
// leaves the input document as the authoritative state.
package flowcore
