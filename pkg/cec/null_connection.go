package cec

import "github.com/rs/zerolog/log"

// NullConnection is a Connection that only logs. It is used when no bus
// hardware is attached so the controller can run end to end.
type NullConnection struct{}

// NewNullConnection creates a new NullConnection.
func NewNullConnection() *NullConnection {
	return &NullConnection{}
}

func (c *NullConnection) Transmit(cmd Command) error {
	log.Info().Str("frame", cmd.String()).Msg("Null CEC transmit")
	return nil
}

func (c *NullConnection) LogicalAddress() (LogicalAddress, error) {
	return Broadcast, nil
}

func (c *NullConnection) PhysicalAddress() (PhysicalAddress, error) {
	return 0x0000, nil
}

func (c *NullConnection) SetRxCallback(fn func(Command)) {
	log.Info().Msg("Null CEC rx callback registered")
}

func (c *NullConnection) SetTxCallback(fn func(Command)) {
	log.Info().Msg("Null CEC tx callback registered")
}
