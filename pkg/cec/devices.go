package cec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/urmzd/cecvol/pkg/device"
)

// displayStateSchema returns the JSON schema for state accepted by the display.
func displayStateSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"power": map[string]any{
				"type": "string",
				"enum": []string{device.PowerOn, device.PowerStandby},
			},
			"volume_steps": map[string]any{
				"type":    "integer",
				"minimum": -50,
				"maximum": 50,
			},
			"mute": map[string]any{
				"type": "boolean",
			},
			"input": map[string]any{
				"type":    "string",
				"pattern": "^([Hh][Dd][Mm][Ii] ?)?[1-4]$",
			},
		},
	}
}

// DisplayStateSchema returns the display's state schema as JSON.
func DisplayStateSchema() json.RawMessage {
	b, _ := json.Marshal(displayStateSchema())
	return b
}

// deviceFor converts what is known about a logical address to a device.Device.
func (c *Controller) deviceFor(la LogicalAddress) device.Device {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deviceForLocked(la)
}

func (c *Controller) deviceForLocked(la LogicalAddress) device.Device {
	dev := device.Device{
		ID:              la.String(),
		Name:            la.String(),
		Type:            DeviceTypeOf(la).String(),
		Protocol:        device.ProtocolCEC,
		LogicalAddress:  uint8(la),
		PhysicalAddress: UnassignedPhysicalAddress.String(),
		StateSchema:     json.RawMessage("{}"),
	}
	if la == TV {
		dev.StateSchema = DisplayStateSchema()
	}

	p, ok := c.peers[la]
	if !ok {
		return dev
	}
	if p.name != "" {
		dev.Name = p.name
	}
	if p.physical != UnassignedPhysicalAddress {
		dev.PhysicalAddress = p.physical.String()
		dev.Names = append([]string(nil), c.names[p.physical]...)
	}
	if p.hasVendor {
		dev.VendorID = fmt.Sprintf("%06x", p.vendorID)
	}
	return dev
}

// lookup resolves a device ID: a role name, a hex digit, or a reported OSD name.
func (c *Controller) lookup(id string) (LogicalAddress, bool) {
	if la, err := ParseLogicalAddress(id); err == nil {
		return la, true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for la, p := range c.peers {
		if p.name != "" && strings.EqualFold(p.name, id) {
			return la, true
		}
	}
	return 0, false
}

// --- device.Controller interface ---

func (c *Controller) SelectInput(ctx context.Context, input string) error {
	in, err := ParseInput(input)
	if err != nil {
		return fmt.Errorf("%w: %w", device.ErrUnsupported, err)
	}
	return c.SetInput(ctx, in)
}

func (c *Controller) Display(_ context.Context) (device.DisplayState, error) {
	state := device.DisplayState{
		Power: powerString(c.PowerState()),
		Input: c.InputState().String(),
	}
	if in := c.InputState(); in != UnassignedPhysicalAddress && in&0x0FFF == 0 && in>>12 >= 1 && in>>12 <= 4 {
		state.InputName = Input(in >> 12).String()
	}
	if pa, err := c.conn.PhysicalAddress(); err == nil {
		state.LocalAddress = pa.String()
	}
	return state, nil
}

func (c *Controller) ListDevices(_ context.Context) ([]device.Device, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	addrs := make([]LogicalAddress, 0, len(c.peers)+1)
	if _, ok := c.peers[TV]; !ok {
		addrs = append(addrs, TV)
	}
	for la := range c.peers {
		addrs = append(addrs, la)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	devices := make([]device.Device, 0, len(addrs))
	for _, la := range addrs {
		devices = append(devices, c.deviceForLocked(la))
	}
	return devices, nil
}

func (c *Controller) GetDevice(_ context.Context, id string) (*device.Device, error) {
	la, ok := c.lookup(id)
	if !ok {
		return nil, device.ErrNotFound
	}

	c.mu.RLock()
	_, seen := c.peers[la]
	c.mu.RUnlock()
	if !seen && la != TV {
		return nil, device.ErrNotFound
	}

	dev := c.deviceFor(la)
	return &dev, nil
}

func (c *Controller) GetDeviceState(ctx context.Context, id string) (device.DeviceState, error) {
	la, ok := c.lookup(id)
	if !ok {
		return nil, device.ErrNotFound
	}

	if la == TV {
		display, err := c.Display(ctx)
		if err != nil {
			return nil, err
		}
		return device.DeviceState{
			"power":      display.Power,
			"input":      display.Input,
			"input_name": display.InputName,
		}, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	p, seen := c.peers[la]
	if !seen {
		return nil, device.ErrNotFound
	}

	state := device.DeviceState{
		"physical_address": p.physical.String(),
		"last_seen":        p.lastSeen,
	}
	if p.hasPower {
		state["power"] = p.power.String()
	}
	if p.hasVendor {
		state["vendor_id"] = fmt.Sprintf("%06x", p.vendorID)
	}
	return state, nil
}

// SetDeviceState applies power, volume_steps, mute and input, in that order.
// Only the display accepts state.
func (c *Controller) SetDeviceState(ctx context.Context, id string, state map[string]any) (device.DeviceState, error) {
	la, ok := c.lookup(id)
	if !ok {
		return nil, device.ErrNotFound
	}
	if la != TV {
		return nil, device.ErrUnsupported
	}

	if v, ok := state["power"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: power must be a string", device.ErrValidation)
		}
		switch strings.ToLower(s) {
		case device.PowerOn:
			if err := c.OnOff(ctx, true); err != nil {
				return nil, fmt.Errorf("power on: %w", err)
			}
		case device.PowerStandby, "off":
			if err := c.OnOff(ctx, false); err != nil {
				return nil, fmt.Errorf("standby: %w", err)
			}
		default:
			return nil, fmt.Errorf("%w: invalid power value %q", device.ErrValidation, s)
		}
	}

	if v, ok := state["volume_steps"]; ok {
		var steps int
		switch n := v.(type) {
		case float64:
			steps = int(n)
		case int:
			steps = n
		case json.Number:
			i, err := n.Int64()
			if err != nil {
				return nil, fmt.Errorf("%w: invalid volume_steps", device.ErrValidation)
			}
			steps = int(i)
		default:
			return nil, fmt.Errorf("%w: invalid volume_steps type", device.ErrValidation)
		}
		if err := c.VolumeChange(ctx, steps); err != nil {
			return nil, fmt.Errorf("volume change: %w", err)
		}
	}

	if v, ok := state["mute"]; ok {
		mute, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: mute must be a boolean", device.ErrValidation)
		}
		if err := c.Mute(ctx, mute); err != nil {
			return nil, fmt.Errorf("mute: %w", err)
		}
	}

	if v, ok := state["input"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: input must be a string", device.ErrValidation)
		}
		if err := c.SelectInput(ctx, s); err != nil {
			return nil, err
		}
	}

	return c.GetDeviceState(ctx, id)
}

func (c *Controller) PollDevices(ctx context.Context) error {
	return c.PollAll(ctx)
}

func (c *Controller) SendRaw(ctx context.Context, frame []byte) error {
	err := c.TransmitRaw(ctx, frame)
	if isParseError(err) {
		return fmt.Errorf("%w: %w", device.ErrValidation, err)
	}
	return err
}

func isParseError(err error) bool {
	for _, target := range []error{ErrEmptyFrame, ErrTooShort, ErrUnknownOpcode, ErrInvalidValue, ErrInvalidText, ErrInvalidLength} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var (
	_ device.Controller      = (*Controller)(nil)
	_ device.EventSubscriber = (*Controller)(nil)
)
