package device

import (
	"encoding/json"
	"time"
)

// Device represents a participant on the display's control bus
type Device struct {
	ID              string          `json:"id"`               // Logical role (tv, playback1, ...)
	Name            string          `json:"name"`             // Reported OSD name, or the role when unknown
	Names           []string        `json:"names,omitempty"`  // Every name seen at the device's physical address
	Type            string          `json:"type"`             // Device type (tv, playback, audio_system, ...)
	Protocol        string          `json:"protocol"`         // Transport protocol
	LogicalAddress  uint8           `json:"logical_address"`  // 4-bit bus address
	PhysicalAddress string          `json:"physical_address"` // Topology address a.b.c.d
	VendorID        string          `json:"vendor_id,omitempty"`
	StateSchema     json.RawMessage `json:"state_schema"` // JSON Schema for settable state
}

// DeviceState represents the current state of a device as a dynamic map.
type DeviceState map[string]any

// DisplayState is the power and input state tracked from bus traffic
type DisplayState struct {
	Power        string `json:"power"`         // on or standby
	Input        string `json:"input"`         // physical address of the active source
	InputName    string `json:"input_name"`    // HDMI n when the address is a display port
	LocalAddress string `json:"local_address"` // physical address of this host
}

// Event represents something observed on the bus
type Event struct {
	Type      string    `json:"type"`             // Event type (frame_rx, device_discovered, ...)
	Device    *Device   `json:"device,omitempty"` // Device information if available
	Frame     string    `json:"frame,omitempty"`  // Colon-separated frame bytes
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"` // When the event occurred
}

// Protocol constants
const (
	ProtocolCEC = "cec"
)

// Power constants
const (
	PowerOn      = "on"
	PowerStandby = "standby"
)

// Event type constants
const (
	EventFrameReceived     = "frame_rx"
	EventFrameSent         = "frame_tx"
	EventDeviceDiscovered  = "device_discovered"
	EventPowerChanged      = "power_changed"
	EventInputChanged      = "input_changed"
	EventHDMIStatusChanged = "hdmi_status"
)
