package cec

import "errors"

var (
	// ErrEmptyFrame indicates a frame with no header byte
	ErrEmptyFrame = errors.New("empty frame")

	// ErrTooShort indicates a frame shorter than its opcode requires
	ErrTooShort = errors.New("frame too short")

	// ErrUnknownOpcode indicates an opcode outside the supported message set
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrInvalidValue indicates an operand outside its enumeration
	ErrInvalidValue = errors.New("invalid operand value")

	// ErrInvalidText indicates a string operand that is not valid text
	ErrInvalidText = errors.New("invalid text operand")

	// ErrInvalidLength indicates an operand or frame longer than the bus allows
	ErrInvalidLength = errors.New("invalid length")

	// ErrNoAck indicates no follower acknowledged a transmitted frame
	ErrNoAck = errors.New("frame not acknowledged")

	// ErrUnsupportedInput indicates an input identifier the display does not have
	ErrUnsupportedInput = errors.New("unsupported input")
)
