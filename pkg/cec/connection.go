package cec

// Connection is a channel capable of sending and receiving bus frames.
// Callbacks are single-slot: registering a new one replaces the previous.
// They may be invoked from a transport goroutine.
type Connection interface {
	// Transmit sends one frame and returns once the transport accepted it
	Transmit(cmd Command) error

	// LogicalAddress returns the address the transport currently holds
	LogicalAddress() (LogicalAddress, error)

	// PhysicalAddress returns the topology address of the transport
	PhysicalAddress() (PhysicalAddress, error)

	// SetRxCallback registers the handler for frames received from the bus
	SetRxCallback(fn func(Command))

	// SetTxCallback registers the handler for frames the transport put on the bus
	SetTxCallback(fn func(Command))
}
