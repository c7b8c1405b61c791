package dynrepo

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors. Every typed error below reports its sentinel
// through Is, so callers can match either way.
var (
	// ErrConfig is returned when an entity or generator declaration is missing or malformed.
	ErrConfig = errors.New("dynrepo: invalid configuration")

	// ErrConversion is returned when a stored value cannot be coerced to a field type.
	ErrConversion = errors.New("dynrepo: conversion failed")

	// ErrFieldAccess is returned when a bound field cannot be read or written.
	ErrFieldAccess = errors.New("dynrepo: field access failed")

	// ErrConstruction is returned when an entity or converter cannot be instantiated.
	ErrConstruction = errors.New("dynrepo: construction failed")

	// ErrNotFound is returned when a single-entity lookup matches no rows.
	ErrNotFound = errors.New("dynrepo: entity not found")

	// ErrConstraint is returned when the backend reports a constraint violation.
	ErrConstraint = errors.New("dynrepo: constraint failed")
)

// ConfigError reports a missing or malformed declaration. It is fatal for the
// type it names and is never retried.
type ConfigError struct {
	Type    string // Entity or converter type name
	Field   string // Field name (if applicable)
	Message string
}

// Error returns the error string.
func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("dynrepo: config error")
	if e.Type != "" {
		b.WriteString(" on type ")
		b.WriteString(e.Type)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches ErrConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewConfigError returns a new ConfigError.
func NewConfigError(typeName, fieldName, message string) *ConfigError {
	return &ConfigError{Type: typeName, Field: fieldName, Message: message}
}

// IsConfigError returns true if the error is a ConfigError.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigError
	return errors.As(err, &e)
}

// ConversionError reports a value that cannot be coerced to its target type,
// or a malformed side-channel document.
type ConversionError struct {
	Target string // Target type
	Value  any    // Offending value (may be nil)
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dynrepo: cannot convert %T to %s: %v", e.Value, e.Target, e.Err)
	}
	return fmt.Sprintf("dynrepo: cannot convert %T to %s", e.Value, e.Target)
}

// Unwrap returns the underlying error.
func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches ErrConversion.
func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}

// NewConversionError returns a new ConversionError.
func NewConversionError(target string, value any, err error) *ConversionError {
	return &ConversionError{Target: target, Value: value, Err: err}
}

// IsConversionError returns true if the error is a ConversionError.
func IsConversionError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConversionError
	return errors.As(err, &e)
}

// FieldAccessError reports a failure to read or write a bound field.
type FieldAccessError struct {
	Entity string // Entity type name
	Field  string // Go field name
	Op     string // "read" or "write"
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *FieldAccessError) Error() string {
	return fmt.Sprintf("dynrepo: %s %s.%s: %v", e.Op, e.Entity, e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *FieldAccessError) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches ErrFieldAccess.
func (e *FieldAccessError) Is(target error) bool {
	return target == ErrFieldAccess
}

// NewFieldAccessError returns a new FieldAccessError.
func NewFieldAccessError(entity, field, op string, err error) *FieldAccessError {
	return &FieldAccessError{Entity: entity, Field: field, Op: op, Err: err}
}

// IsFieldAccessError returns true if the error is a FieldAccessError.
func IsFieldAccessError(err error) bool {
	if err == nil {
		return false
	}
	var e *FieldAccessError
	return errors.As(err, &e)
}

// ConstructionError reports a type that cannot be instantiated.
type ConstructionError struct {
	Type string // Type name
	Err  error  // Underlying error
}

// Error returns the error string.
func (e *ConstructionError) Error() string {
	return fmt.Sprintf("dynrepo: cannot materialize %s: %v", e.Type, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches ErrConstruction.
func (e *ConstructionError) Is(target error) bool {
	return target == ErrConstruction
}

// NewConstructionError returns a new ConstructionError.
func NewConstructionError(typeName string, err error) *ConstructionError {
	return &ConstructionError{Type: typeName, Err: err}
}

// IsConstructionError returns true if the error is a ConstructionError.
func IsConstructionError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConstructionError
	return errors.As(err, &e)
}

// NotFoundError represents an error when an entity is not found.
type NotFoundError struct {
	label string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("dynrepo: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the entity label.
func (e *NotFoundError) Label() string {
	return e.label
}

// NewNotFoundError returns a new NotFoundError for the given entity type.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// ConstraintError represents a database constraint violation error.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e ConstraintError) Error() string {
	return fmt.Sprintf("dynrepo: constraint failed: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e ConstraintError) Unwrap() error {
	return e.wrap
}

// Is reports whether the target matches ErrConstraint.
func (e ConstraintError) Is(target error) bool {
	return target == ErrConstraint
}

// NewConstraintError returns a new ConstraintError with the given message.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

// IsConstraintError returns true if the error is a ConstraintError.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e ConstraintError
	return errors.As(err, &e)
}
