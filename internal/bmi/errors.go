package bmi

import "errors"

// Code identifies which validation rule rejected an input.
type Code string

const (
	CodeMissing           Code = "missing"
	CodeNotNumeric        Code = "not_numeric"
	CodeWeightNotPositive Code = "weight_not_positive"
	CodeHeightNotPositive Code = "height_not_positive"
	CodeHeightTooLarge    Code = "height_too_large"
	CodeOutOfRange        Code = "bmi_out_of_range"
)

// ValidationError reports user input that cannot be classified. Message is
// safe to show to the caller as-is.
type ValidationError struct {
	Code    Code
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches any ValidationError carrying the same code, so callers can use
// errors.Is(err, bmi.ErrHeightTooLarge).
func (e *ValidationError) Is(target error) bool {
	var t *ValidationError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrMissing = &ValidationError{
		Code:    CodeMissing,
		Message: "Please fill in all fields",
	}
	ErrNotNumeric = &ValidationError{
		Code:    CodeNotNumeric,
		Message: "Please enter valid numbers for weight and height",
	}
	ErrWeightNotPositive = &ValidationError{
		Code:    CodeWeightNotPositive,
		Message: "Weight must be a positive number",
	}
	ErrHeightNotPositive = &ValidationError{
		Code:    CodeHeightNotPositive,
		Message: "Height must be a positive number",
	}
	ErrHeightTooLarge = &ValidationError{
		Code:    CodeHeightTooLarge,
		Message: "Height should be in meters (e.g., 1.75 not 175)",
	}
	ErrOutOfRange = &ValidationError{
		Code:    CodeOutOfRange,
		Message: "Weight and height are out of range",
	}
)

// InternalMessage is the only text exposed for unexpected failures.
const InternalMessage = "An error occurred during calculation"

// InternalError wraps an unexpected failure. Error() never includes the
// cause; use Unwrap or log Cause explicitly.
type InternalError struct {
	Cause error
}

func (e *InternalError) Error() string {
	return InternalMessage
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}
