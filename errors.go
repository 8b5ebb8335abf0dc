// Package matprod structured error types for better error handling
package matprod

import (
	"errors"
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Command-line usage errors: nothing was run
	ErrTypeUsage ErrorType = iota
	// Counter subsystem could not be initialized
	ErrTypeCounterSubsystem
	// A single counter operation (create, add, start, stop, close) failed
	ErrTypeCounterOperation
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeUsage:
		return "Usage"
	case ErrTypeCounterSubsystem:
		return "CounterSubsystem"
	case ErrTypeCounterOperation:
		return "CounterOperation"
	default:
		return "Unknown"
	}
}

// NewUsageError creates a command-line usage error
func NewUsageError(op string, message string) error {
	return &Error{
		Type:    ErrTypeUsage,
		Op:      op,
		Message: message,
	}
}

// NewCounterSubsystemError creates a counter initialization error
func NewCounterSubsystemError(op string, message string, err error) error {
	return &Error{
		Type:    ErrTypeCounterSubsystem,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewCounterOperationError creates an error for one failed counter call
func NewCounterOperationError(op string, message string, err error) error {
	return &Error{
		Type:    ErrTypeCounterOperation,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

var (
	// ErrNoArguments indicates the operation or size was not given
	ErrNoArguments = NewUsageError("Parse", "operation and size are required")

	// ErrInvalidOperation indicates an unknown operation selector
	ErrInvalidOperation = NewUsageError("Parse", "Invalid operation.")

	// ErrInvalidSize indicates a non-positive or unparsable dimension
	ErrInvalidSize = NewUsageError("Parse", "size must be a positive integer")

	// ErrBlockSizeRequired indicates operation 3 was given no block size
	ErrBlockSizeRequired = NewUsageError("Parse", "Block size required for Block Multiplication.")

	// ErrInvalidBlockSize indicates a non-positive or unparsable block size
	ErrInvalidBlockSize = NewUsageError("Parse", "block size must be a positive integer")

	// ErrTooManyArguments indicates trailing positional arguments
	ErrTooManyArguments = NewUsageError("Parse", "too many arguments")

	// ErrCountersUnsupported indicates the platform has no counter backend
	ErrCountersUnsupported = NewCounterSubsystemError("Init", "hardware counters not supported on this platform", nil)
)

// IsUsageError checks if an error is a usage error
func IsUsageError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == ErrTypeUsage
	}
	return false
}

// IsCounterError checks if an error came from the counter subsystem
func IsCounterError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == ErrTypeCounterSubsystem || e.Type == ErrTypeCounterOperation
	}
	return false
}
