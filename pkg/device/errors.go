package device

import "errors"

var (
	// ErrNotFound indicates a device was not found
	ErrNotFound = errors.New("device not found")

	// ErrTimeout indicates an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrNotConnected indicates the controller has no working transport
	ErrNotConnected = errors.New("controller not connected")

	// ErrUnsupported indicates an operation or input the display does not support
	ErrUnsupported = errors.New("operation not supported")

	// ErrValidation indicates a state payload or frame failed validation
	ErrValidation = errors.New("validation error")
)
