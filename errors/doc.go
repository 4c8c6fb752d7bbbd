// Package errors provides standardized error handling patterns for flowcore components.
//
// # Overview
//
// The errors package implements a three-class error classification system for
// workflow validation and mutation: Structural (malformed document or operation
// shape, fail fast), Semantic (rule violations, accumulated across a pass), and
// Recoverable (local anomalies that are skipped with a warning).
//
// This classification lets callers decide how to present a failure without
// matching on error strings: structural problems abort the current operation,
// semantic problems are collected into a validation report, and recoverable
// anomalies never stop a validation pass.
//
// The classification system integrates with Go's standard error handling,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Quick Start
//
// Use standard error variables for known conditions:
//
//	if _, ok := doc.NodeByName(name); !ok {
//	    return errors.ErrNodeNotFound
//	}
//
// Wrap errors with context for debugging:
//
//	if err := engine.apply(op); err != nil {
//	    return errors.Wrap(err, "DiffEngine", "Apply", "apply operation")
//	}
//
// Check classification to decide handling:
//
//	if errors.IsStructural(err) {
//	    // reject the whole batch
//	}
package errors
