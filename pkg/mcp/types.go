package mcp

import (
	"encoding/json"

	"github.com/urmzd/cecvol/pkg/device"
)

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	Status     string `json:"status" jsonschema:"description=Overall health status (healthy or unhealthy)"`
	Controller string `json:"controller" jsonschema:"description=Bus controller connection status"`
	Timestamp  string `json:"timestamp" jsonschema:"description=ISO8601 timestamp"`
}

// TVStateOutput is the output for tools that act on the TV
type TVStateOutput struct {
	Power        string `json:"power" jsonschema:"description=on or standby"`
	Input        string `json:"input" jsonschema:"description=Physical address of the active source"`
	InputName    string `json:"input_name,omitempty" jsonschema:"description=HDMI input name when known"`
	LocalAddress string `json:"local_address,omitempty" jsonschema:"description=Physical address of this host"`
	Message      string `json:"message,omitempty" jsonschema:"description=What was done"`
}

// DeviceInfo represents a device in tool outputs
type DeviceInfo struct {
	ID              string          `json:"id" jsonschema:"description=Logical role (tv/playback1/...)"`
	Name            string          `json:"name" jsonschema:"description=Reported OSD name"`
	Names           []string        `json:"names,omitempty" jsonschema:"description=Every name seen at the device's physical address"`
	Type            string          `json:"type" jsonschema:"description=Device type"`
	LogicalAddress  uint8           `json:"logical_address" jsonschema:"description=4-bit bus address"`
	PhysicalAddress string          `json:"physical_address" jsonschema:"description=Topology address a.b.c.d"`
	VendorID        string          `json:"vendor_id,omitempty" jsonschema:"description=IEEE OUI reported by the device"`
	StateSchema     json.RawMessage `json:"state_schema,omitempty" jsonschema:"description=JSON Schema for settable state"`
	State           map[string]any  `json:"state,omitempty" jsonschema:"description=Current device state"`
}

// ListDevicesOutput is the output for the list_devices and poll_devices tools
type ListDevicesOutput struct {
	Devices []DeviceInfo `json:"devices" jsonschema:"description=Devices on the bus"`
	Count   int          `json:"count" jsonschema:"description=Total number of devices"`
}

// GetDeviceOutput is the output for the get_device tool
type GetDeviceOutput struct {
	Device DeviceInfo `json:"device" jsonschema:"description=Device information"`
}

// SendRawFrameOutput is the output for the send_raw_frame tool
type SendRawFrameOutput struct {
	Success bool   `json:"success" jsonschema:"description=Whether the frame was acknowledged"`
	Frame   string `json:"frame" jsonschema:"description=Frame as transmitted"`
}

// DeviceToInfo converts a device.Device to DeviceInfo
func DeviceToInfo(d *device.Device) DeviceInfo {
	return DeviceInfo{
		ID:              d.ID,
		Name:            d.Name,
		Names:           d.Names,
		Type:            d.Type,
		LogicalAddress:  d.LogicalAddress,
		PhysicalAddress: d.PhysicalAddress,
		VendorID:        d.VendorID,
		StateSchema:     d.StateSchema,
	}
}
