// Package errors provides standardized error handling patterns for flowcore
// components. It includes error classification, standard error variables, and
// helper functions for consistent error wrapping across the system.
package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorStructural represents malformed document or operation shape.
	// Structural errors fail fast and reject the surrounding operation.
	ErrorStructural ErrorClass = iota
	// ErrorSemantic represents rule violations found during validation.
	// Semantic errors are accumulated across a whole pass, never short-circuited.
	ErrorSemantic
	// ErrorRecoverable represents local anomalies (malformed schema entries,
	// circular parameter structures, depth overruns) that are skipped with a
	// warning while the pass continues.
	ErrorRecoverable
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorStructural:
		return "structural"
	case ErrorSemantic:
		return "semantic"
	case ErrorRecoverable:
		return "recoverable"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Document shape errors
	ErrMissingField    = errors.New("missing required field")
	ErrInvalidDocument = errors.New("invalid workflow document")
	ErrInvalidNode     = errors.New("invalid node")

	// Node resolution errors
	ErrNodeNotFound      = errors.New("node not found")
	ErrDuplicateNodeName = errors.New("duplicate node name")
	ErrDuplicateNodeID   = errors.New("duplicate node id")
	ErrAmbiguousNodeRef  = errors.New("ambiguous node reference")
	ErrUnknownNodeType   = errors.New("unknown node type")

	// Connection errors
	ErrInvalidConnection = errors.New("invalid connection")
	ErrConnectionExists  = errors.New("connection already exists")
	ErrSelfReference     = errors.New("self-referencing connection")

	// Diff operation errors
	ErrUnknownOperation = errors.New("unknown diff operation")
	ErrInvalidOperation = errors.New("invalid diff operation")

	// Traversal anomalies
	ErrDepthExceeded     = errors.New("maximum traversal depth exceeded")
	ErrCircularStructure = errors.New("circular parameter structure")

	// Registry errors
	ErrTypeAlreadyRegistered = errors.New("node type already registered")
	ErrInvalidRegistration   = errors.New("invalid node type registration")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsStructural checks if an error indicates malformed input shape
func IsStructural(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorStructural
	}

	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidDocument) ||
		errors.Is(err, ErrInvalidNode) ||
		errors.Is(err, ErrUnknownOperation) ||
		errors.Is(err, ErrInvalidOperation) ||
		errors.Is(err, ErrAmbiguousNodeRef) ||
		errors.Is(err, ErrInvalidRegistration)
}

// IsSemantic checks if an error is a validation rule violation
func IsSemantic(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorSemantic
	}

	return errors.Is(err, ErrNodeNotFound) ||
		errors.Is(err, ErrDuplicateNodeName) ||
		errors.Is(err, ErrDuplicateNodeID) ||
		errors.Is(err, ErrUnknownNodeType) ||
		errors.Is(err, ErrInvalidConnection) ||
		errors.Is(err, ErrConnectionExists) ||
		errors.Is(err, ErrSelfReference)
}

// IsRecoverable checks if an error is a local anomaly the pass can skip
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorRecoverable
	}

	return errors.Is(err, ErrDepthExceeded) ||
		errors.Is(err, ErrCircularStructure)
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if IsStructural(err) {
		return ErrorStructural
	}
	if IsRecoverable(err) {
		return ErrorRecoverable
	}
	// Default to semantic so unknown errors land in the report rather than
	// aborting the pass.
	return ErrorSemantic
}

// newClassified creates a new classified error
// This is an internal helper - use WrapStructural(), WrapSemantic(), or WrapRecoverable() instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapStructural wraps an error as structural with context
func WrapStructural(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorStructural, wrappedErr, component, method, wrappedErr.Error())
}

// WrapSemantic wraps an error as semantic with context
func WrapSemantic(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorSemantic, wrappedErr, component, method, wrappedErr.Error())
}

// WrapRecoverable wraps an error as recoverable with context
func WrapRecoverable(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorRecoverable, wrappedErr, component, method, wrappedErr.Error())
}
