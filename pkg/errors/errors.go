// Package errors provides custom error types for the metasync system.
// These errors enable programmatic error checking across the sync engine,
// the DataHub client, and the local stores, and map onto the three error
// categories the tool reports: connectivity failures, validation failures,
// and partial-batch failures.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the metasync system
var (
	// ErrNotFound indicates that a requested entity or record was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a record already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrTokenRequired indicates that a DataHub access token is required but not provided
	ErrTokenRequired = errors.New("access token required")

	// ErrTokenInvalid indicates that the provided access token was rejected
	ErrTokenInvalid = errors.New("access token invalid")

	// ErrRemoteUnavailable indicates that the DataHub instance could not be reached
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when an entity or record is not found
type NotFoundError struct {
	Resource string
	URN      string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.URN)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, urn string) *NotFoundError {
	return &NotFoundError{Resource: resource, URN: urn}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents an error returned by the DataHub API
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("DataHub API error (status %d) at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("DataHub API error at %s: %s", e.Endpoint, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	if e.StatusCode == 401 || e.StatusCode == 403 {
		return target == ErrTokenInvalid
	}
	if e.StatusCode >= 500 || e.StatusCode == 0 {
		return target == ErrRemoteUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(endpoint string, statusCode int, message string) *APIError {
	return &APIError{Endpoint: endpoint, StatusCode: statusCode, Message: message}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// SyncError represents an error during a sync operation against DataHub
type SyncError struct {
	Operation string // "pull", "push", "diff", "stage"
	URNs      []string
	Err       error
}

// Error implements the error interface
func (e *SyncError) Error() string {
	if len(e.URNs) > 0 {
		return fmt.Sprintf("%s error (affected entities: %v): %v", e.Operation, e.URNs, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SyncError) Unwrap() error {
	return e.Err
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "urn"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// StoreError represents an error from the local record or baseline stores
type StoreError struct {
	Operation string // "get", "put", "list", "delete"
	Store     string // "records", "baseline"
	Key       string
	Err       error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s store error during %s of %s: %v", e.Store, e.Operation, e.Key, e.Err)
	}
	return fmt.Sprintf("%s store error during %s: %v", e.Store, e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConnectivity checks if an error indicates the remote could not be
// reached or rejected our credentials. Sync operations degrade rather
// than crash when this returns true.
func IsConnectivity(err error) bool {
	return errors.Is(err, ErrRemoteUnavailable) ||
		errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrTokenRequired) ||
		errors.Is(err, ErrTimeout)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Message: err.Error(), Err: err}
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}

// WrapStore wraps an error as a StoreError
func WrapStore(store, operation, key string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Store: store, Operation: operation, Key: key, Err: err}
}
