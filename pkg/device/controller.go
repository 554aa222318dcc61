package device

import "context"

// Controller defines the interface for controlling a display and the
// peers sharing its control bus. This abstraction allows the API to work
// with different transports (kernel driver, USB adapter, none) through a
// unified interface.
type Controller interface {
	// OnOff wakes the display or puts it in standby
	OnOff(ctx context.Context, on bool) error

	// VolumeChange presses volume up (steps > 0) or down (steps < 0)
	VolumeChange(ctx context.Context, steps int) error

	// Mute sends the mute key bracketed by a volume down/up pair
	Mute(ctx context.Context, mute bool) error

	// SelectInput switches the display to a named input such as "HDMI 2"
	SelectInput(ctx context.Context, input string) error

	// Display returns the tracked power and input state
	Display(ctx context.Context) (DisplayState, error)

	// ListDevices returns all devices seen on the bus
	ListDevices(ctx context.Context) ([]Device, error)

	// GetDevice returns a single device by ID
	GetDevice(ctx context.Context, id string) (*Device, error)

	// GetDeviceState retrieves the current state of a device
	GetDeviceState(ctx context.Context, id string) (DeviceState, error)

	// SetDeviceState applies a state payload to a device
	SetDeviceState(ctx context.Context, id string, state map[string]any) (DeviceState, error)

	// PollDevices asks every plausible peer for its name and address
	PollDevices(ctx context.Context) error

	// SendRaw parses and transmits a raw frame
	SendRaw(ctx context.Context, frame []byte) error

	// IsConnected returns true if the controller has a working transport
	IsConnected() bool

	// Close disconnects the controller
	Close()
}

// EventSubscriber defines the interface for subscribing to bus events
type EventSubscriber interface {
	// Subscribe returns a channel that receives bus events
	Subscribe() chan Event

	// Unsubscribe removes a subscription
	Unsubscribe(ch chan Event)
}
