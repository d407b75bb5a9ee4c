package veloxq

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the validation taxonomy. Every rejection returned by the
// parser unwraps to exactly one of them.
var (
	// ErrInvalidOperatorForType is returned when an operator or literal is illegal
	// for the scalar kind of the field it targets.
	ErrInvalidOperatorForType = errors.New("veloxq: invalid operator for type")

	// ErrCardinalityMismatch is returned when a relation quantifier does not match
	// the to-one/to-many cardinality of the relation.
	ErrCardinalityMismatch = errors.New("veloxq: cardinality mismatch")

	// ErrIncompleteCompoundKey is returned when a compound unique key is supplied partially.
	ErrIncompleteCompoundKey = errors.New("veloxq: incomplete compound key")

	// ErrConflictingFieldUpdate is returned when two update operators target the same field.
	ErrConflictingFieldUpdate = errors.New("veloxq: conflicting field update")

	// ErrDivisionByZeroLiteral is returned for a divide operator with a literal zero divisor.
	ErrDivisionByZeroLiteral = errors.New("veloxq: division by zero literal")

	// ErrInvalidSentinelForWrite is returned when AnyNull is used on a write path.
	ErrInvalidSentinelForWrite = errors.New("veloxq: invalid sentinel for write")

	// ErrDepthOrSizeExceeded is returned when an input tree exceeds the configured
	// nesting depth or node count.
	ErrDepthOrSizeExceeded = errors.New("veloxq: depth or size exceeded")

	// ErrUnknownEntity is returned when the registry has no entity with the requested name.
	ErrUnknownEntity = errors.New("veloxq: unknown entity")

	// ErrUnknownField is returned when an input key names no field or relation of the entity.
	ErrUnknownField = errors.New("veloxq: unknown field")

	// ErrMalformedInput is returned when the shape of the input is wrong
	// (e.g. an array where an object is expected).
	ErrMalformedInput = errors.New("veloxq: malformed input")

	// ErrAmbiguousUniqueKey is returned in strict mode when a lookup matches more
	// than one unique identification and none of them is the primary id.
	ErrAmbiguousUniqueKey = errors.New("veloxq: ambiguous unique key")

	// ErrMissingRequiredField is returned when a create omits a required field.
	ErrMissingRequiredField = errors.New("veloxq: missing required field")

	// ErrInvalidConfig indicates a configuration error.
	ErrInvalidConfig = errors.New("veloxq: invalid configuration")

	// ErrInvalidSchema indicates an entity definition error.
	ErrInvalidSchema = errors.New("veloxq: invalid schema")
)

// kinds maps each validation sentinel to a stable short code, used as metric
// label and in machine-readable output.
var kinds = []struct {
	err  error
	code string
}{
	{ErrInvalidOperatorForType, "invalid_operator_for_type"},
	{ErrCardinalityMismatch, "cardinality_mismatch"},
	{ErrIncompleteCompoundKey, "incomplete_compound_key"},
	{ErrConflictingFieldUpdate, "conflicting_field_update"},
	{ErrDivisionByZeroLiteral, "division_by_zero_literal"},
	{ErrInvalidSentinelForWrite, "invalid_sentinel_for_write"},
	{ErrDepthOrSizeExceeded, "depth_or_size_exceeded"},
	{ErrUnknownEntity, "unknown_entity"},
	{ErrUnknownField, "unknown_field"},
	{ErrMalformedInput, "malformed_input"},
	{ErrAmbiguousUniqueKey, "ambiguous_unique_key"},
	{ErrMissingRequiredField, "missing_required_field"},
}

// Kind returns the short code of the validation sentinel err unwraps to,
// or "unknown" if it matches none.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	return "unknown"
}

// ValidationError describes a rejected input. It unwraps to one of the
// taxonomy sentinels above.
type ValidationError struct {
	Entity  string // Entity the input was validated against
	Path    string // Dotted path of the offending input, e.g. "where.AND[1].total.gte"
	Err     error  // Taxonomy sentinel
	Message string // Human readable detail
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("veloxq: ")
	if e.Entity != "" {
		b.WriteString(e.Entity)
		b.WriteString(" ")
	}
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	if e.Err != nil {
		b.WriteString(strings.TrimPrefix(e.Err.Error(), "veloxq: "))
	} else {
		b.WriteString("validation failed")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Unwrap returns the taxonomy sentinel.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError returns a new ValidationError.
func NewValidationError(entity, path string, kind error, format string, args ...any) *ValidationError {
	return &ValidationError{
		Entity:  entity,
		Path:    path,
		Err:     kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// IsInvalidOperatorForType reports whether err is an InvalidOperatorForType rejection.
func IsInvalidOperatorForType(err error) bool {
	return err != nil && errors.Is(err, ErrInvalidOperatorForType)
}

// IsCardinalityMismatch reports whether err is a CardinalityMismatch rejection.
func IsCardinalityMismatch(err error) bool {
	return err != nil && errors.Is(err, ErrCardinalityMismatch)
}

// IsIncompleteCompoundKey reports whether err is an IncompleteCompoundKey rejection.
func IsIncompleteCompoundKey(err error) bool {
	return err != nil && errors.Is(err, ErrIncompleteCompoundKey)
}

// IsConflictingFieldUpdate reports whether err is a ConflictingFieldUpdate rejection.
func IsConflictingFieldUpdate(err error) bool {
	return err != nil && errors.Is(err, ErrConflictingFieldUpdate)
}

// IsDivisionByZeroLiteral reports whether err is a DivisionByZeroLiteral rejection.
func IsDivisionByZeroLiteral(err error) bool {
	return err != nil && errors.Is(err, ErrDivisionByZeroLiteral)
}

// IsInvalidSentinelForWrite reports whether err is an InvalidSentinelForWrite rejection.
func IsInvalidSentinelForWrite(err error) bool {
	return err != nil && errors.Is(err, ErrInvalidSentinelForWrite)
}

// IsDepthOrSizeExceeded reports whether err is a DepthOrSizeExceeded rejection.
func IsDepthOrSizeExceeded(err error) bool {
	return err != nil && errors.Is(err, ErrDepthOrSizeExceeded)
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("veloxq: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("veloxq: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// SchemaError represents an entity definition error reported by a registry.
type SchemaError struct {
	Entity  string // Entity name
	Field   string // Field, relation or index (if applicable)
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("veloxq: schema error")
	if e.Entity != "" {
		b.WriteString(" on entity ")
		b.WriteString(e.Entity)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(entity, field, message string, cause error) *SchemaError {
	return &SchemaError{
		Entity:  entity,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// IsSchemaError returns true if the error is a SchemaError.
func IsSchemaError(err error) bool {
	if err == nil {
		return false
	}
	var e *SchemaError
	return errors.As(err, &e)
}
