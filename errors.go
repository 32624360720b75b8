package colex

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for common conditions
var (
	// Registry errors
	ErrDuplicateRegistration = errors.New("name already registered")
	ErrNotRegistered         = errors.New("name not found in registry")
	ErrRegistryInconsistent  = errors.New("registry and adapter graph disagree")

	// Schema and serializer errors
	ErrInternalNotDefined = errors.New("serializer requires an object type")
	ErrInvalidSchema      = errors.New("invalid schema")

	// Adapter errors
	ErrTypeMismatch  = errors.New("collection type mismatch")
	ErrNoAdapterPath = errors.New("no adapter path to target collection")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ErrorWithContext adds additional context to errors for better debugging and logging
type ErrorWithContext struct {
	Err     error
	Context map[string]interface{}
}

func (e *ErrorWithContext) Error() string {
	if len(e.Context) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (context: %+v)", e.Err, e.Context)
}

func (e *ErrorWithContext) Unwrap() error {
	return e.Err
}

// WithContext adds context to an error
func WithContext(err error, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ErrorWithContext{
		Err:     err,
		Context: context,
	}
}

// ValidationError reports field-level failures for a batch of records.
// Messages are keyed by row index, then by field name. A Serializer never
// constructs objects for a batch that produced a ValidationError.
type ValidationError struct {
	Messages map[int]map[string][]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Messages: make(map[int]map[string][]string)}
}

func (e *ValidationError) add(row int, field, msg string) {
	if e.Messages[row] == nil {
		e.Messages[row] = make(map[string][]string)
	}
	e.Messages[row][field] = append(e.Messages[row][field], msg)
}

func (e *ValidationError) empty() bool {
	return len(e.Messages) == 0
}

// Row returns the messages recorded for one batch index.
func (e *ValidationError) Row(i int) map[string][]string {
	return e.Messages[i]
}

func (e *ValidationError) Error() string {
	rows := make([]int, 0, len(e.Messages))
	for i := range e.Messages {
		rows = append(rows, i)
	}
	sort.Ints(rows)

	var b strings.Builder
	b.WriteString("validation failed")
	count := 0
	for _, i := range rows {
		fields := make([]string, 0, len(e.Messages[i]))
		for f := range e.Messages[i] {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			for _, msg := range e.Messages[i][f] {
				if count >= DefaultMaxReportedErrors {
					fmt.Fprintf(&b, "; ... (%d more)", e.count()-count)
					return b.String()
				}
				fmt.Fprintf(&b, "; row %d: %s: %s", i, f, msg)
				count++
			}
		}
	}
	return b.String()
}

func (e *ValidationError) count() int {
	n := 0
	for _, fields := range e.Messages {
		for _, msgs := range fields {
			n += len(msgs)
		}
	}
	return n
}

// CollectionLoadError wraps any non-validation failure during a load:
// wrong input shape, frame decoding problems, or unclassified errors.
type CollectionLoadError struct {
	Collection string
	Err        error
}

func (e *CollectionLoadError) Error() string {
	return fmt.Sprintf("load failed for collection %s: %v", e.Collection, e.Err)
}

func (e *CollectionLoadError) Unwrap() error {
	return e.Err
}

// CollectionValidationError wraps a ValidationError raised while loading a
// collection, identifying the collection type that rejected the batch.
type CollectionValidationError struct {
	Collection string
	Errors     *ValidationError
}

func (e *CollectionValidationError) Error() string {
	return fmt.Sprintf("validation failed for collection %s: %v", e.Collection, e.Errors)
}

func (e *CollectionValidationError) Unwrap() error {
	return e.Errors
}

// AdapterChainError is the single chain-level error for a failed adapt run.
// It identifies the failing hop and wraps the original cause. Partial results
// from earlier hops are discarded.
type AdapterChainError struct {
	RunID   string
	From    string
	To      string
	Hop     int    // zero-based index into the adapter path, -1 if resolution failed
	Adapter string // empty if resolution failed
	Err     error
}

func (e *AdapterChainError) Error() string {
	if e.Adapter == "" {
		return fmt.Sprintf("adapter chain %s -> %s failed (run %s): %v", e.From, e.To, e.RunID, e.Err)
	}
	return fmt.Sprintf("adapter chain %s -> %s failed at hop %d (%s, run %s): %v",
		e.From, e.To, e.Hop, e.Adapter, e.RunID, e.Err)
}

func (e *AdapterChainError) Unwrap() error {
	return e.Err
}

// Common error checking helpers

// IsValidation checks if an error carries field-level validation messages
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotRegistered checks if an error is a registry "not found" error
func IsNotRegistered(err error) bool {
	return errors.Is(err, ErrNotRegistered)
}

// IsNoAdapterPath checks if an adapt failed because no path exists,
// as opposed to an execution failure inside the chain
func IsNoAdapterPath(err error) bool {
	return errors.Is(err, ErrNoAdapterPath)
}
