package device

import "context"

// NullController is a no-op controller used when no bus transport could be
// opened. It allows the API to run in limited mode without hardware.
type NullController struct{}

// NewNullController creates a new NullController.
func NewNullController() *NullController {
	return &NullController{}
}

func (c *NullController) OnOff(ctx context.Context, on bool) error {
	return ErrNotConnected
}

func (c *NullController) VolumeChange(ctx context.Context, steps int) error {
	return ErrNotConnected
}

func (c *NullController) Mute(ctx context.Context, mute bool) error {
	return ErrNotConnected
}

func (c *NullController) SelectInput(ctx context.Context, input string) error {
	return ErrNotConnected
}

func (c *NullController) Display(ctx context.Context) (DisplayState, error) {
	return DisplayState{}, ErrNotConnected
}

func (c *NullController) ListDevices(ctx context.Context) ([]Device, error) {
	return []Device{}, nil
}

func (c *NullController) GetDevice(ctx context.Context, id string) (*Device, error) {
	return nil, ErrNotFound
}

func (c *NullController) GetDeviceState(ctx context.Context, id string) (DeviceState, error) {
	return nil, ErrNotConnected
}

func (c *NullController) SetDeviceState(ctx context.Context, id string, state map[string]any) (DeviceState, error) {
	return nil, ErrNotConnected
}

func (c *NullController) PollDevices(ctx context.Context) error {
	return ErrNotConnected
}

func (c *NullController) SendRaw(ctx context.Context, frame []byte) error {
	return ErrNotConnected
}

func (c *NullController) IsConnected() bool {
	return false
}

func (c *NullController) Close() {}

// NullEventSubscriber is a no-op event subscriber used alongside NullController.
type NullEventSubscriber struct{}

// NewNullEventSubscriber creates a new NullEventSubscriber.
func NewNullEventSubscriber() *NullEventSubscriber {
	return &NullEventSubscriber{}
}

func (s *NullEventSubscriber) Subscribe() chan Event {
	// Never sent to; callers should check IsConnected() on the controller
	return make(chan Event)
}

func (s *NullEventSubscriber) Unsubscribe(ch chan Event) {
	close(ch)
}
