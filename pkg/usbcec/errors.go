package usbcec

import (
	"errors"

	"github.com/urmzd/cecvol/pkg/cec"
)

var (
	// ErrNoAck indicates the destination did not acknowledge the frame
	ErrNoAck = cec.ErrNoAck

	// ErrLineError indicates the adapter lost arbitration or saw a bad line state
	ErrLineError = errors.New("cec line error")

	// ErrTimeout indicates the adapter did not answer in time
	ErrTimeout = errors.New("adapter timeout")

	// ErrRejected indicates the adapter refused a command
	ErrRejected = errors.New("adapter rejected command")

	// ErrFraming indicates a malformed adapter message
	ErrFraming = errors.New("adapter framing error")

	// ErrClosed indicates the adapter was closed
	ErrClosed = errors.New("adapter closed")
)
