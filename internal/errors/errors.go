// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrUnknownScenario       = errors.New("unknown scenario")
	ErrInconsistentGrid      = errors.New("inconsistent grid")
	ErrInsufficientScenarios = errors.New("insufficient scenarios")
	ErrInvalidParameter      = errors.New("invalid parameter")
	ErrInvalidAxis           = errors.New("invalid axis")
	ErrDataNotFound          = errors.New("data not found")
	ErrConfigInvalid         = errors.New("invalid configuration")
	ErrDatabaseError         = errors.New("database error")
)

// ScenarioError represents an error tied to a specific spot scenario.
type ScenarioError struct {
	Scenario string
	Op       string
	Err      error
}

func (e *ScenarioError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("scenario error [%s] %s: %v", e.Scenario, e.Op, e.Err)
	}
	return fmt.Sprintf("scenario error [%s]: %v", e.Scenario, e.Err)
}

func (e *ScenarioError) Unwrap() error {
	return e.Err
}

// NewUnknownScenario creates a ScenarioError wrapping ErrUnknownScenario.
func NewUnknownScenario(scenario, op string) *ScenarioError {
	return &ScenarioError{
		Scenario: scenario,
		Op:       op,
		Err:      ErrUnknownScenario,
	}
}

// NewInsufficientScenarios creates a ScenarioError wrapping ErrInsufficientScenarios.
func NewInsufficientScenarios(scenario, detail string) *ScenarioError {
	return &ScenarioError{
		Scenario: scenario,
		Op:       detail,
		Err:      ErrInsufficientScenarios,
	}
}

// GridError represents a grid consistency error detected at construction time.
type GridError struct {
	Scenario string
	Axis     string // "moneyness", "tenor" or "shape"
	Detail   string
	Err      error
}

func (e *GridError) Error() string {
	if e.Scenario != "" {
		return fmt.Sprintf("grid error [%s] %s: %s: %v", e.Scenario, e.Axis, e.Detail, e.Err)
	}
	return fmt.Sprintf("grid error %s: %s: %v", e.Axis, e.Detail, e.Err)
}

func (e *GridError) Unwrap() error {
	return e.Err
}

// NewGridError creates a GridError wrapping ErrInconsistentGrid.
func NewGridError(scenario, axis, detail string) *GridError {
	return &GridError{
		Scenario: scenario,
		Axis:     axis,
		Detail:   detail,
		Err:      ErrInconsistentGrid,
	}
}

// NewAxisError creates a GridError wrapping ErrInvalidAxis.
func NewAxisError(axis, detail string) *GridError {
	return &GridError{
		Axis:   axis,
		Detail: detail,
		Err:    ErrInvalidAxis,
	}
}

// ParameterError represents an invalid model parameter.
type ParameterError struct {
	Name    string
	Value   float64
	Message string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("parameter error: %s (%g): %s", e.Name, e.Value, e.Message)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// NewParameterError creates a new ParameterError.
func NewParameterError(name string, value float64, message string) *ParameterError {
	return &ParameterError{
		Name:    name,
		Value:   value,
		Message: message,
	}
}

// DataError represents an error loading or parsing input data.
type DataError struct {
	Path   string
	Detail string
	Err    error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s]: %s: %v", e.Path, e.Detail, e.Err)
	}
	return fmt.Sprintf("data error [%s]: %s", e.Path, e.Detail)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(path, detail string, err error) *DataError {
	return &DataError{
		Path:   path,
		Detail: detail,
		Err:    err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
