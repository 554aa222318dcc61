package types

import (
	"encoding/json"
	"time"
)

// --- Request DTOs ---

// PowerRequest is the request body for POST /tv/power
type PowerRequest struct {
	On *bool `json:"on" binding:"required"`
}

// VolumeRequest is the request body for POST /tv/volume
type VolumeRequest struct {
	Steps int `json:"steps" binding:"required,min=-50,max=50"`
}

// MuteRequest is the request body for POST /tv/mute
type MuteRequest struct {
	Mute *bool `json:"mute" binding:"required"`
}

// InputRequest is the request body for POST /tv/input
type InputRequest struct {
	Input string `json:"input" binding:"required"`
}

// RawFrameRequest is the request body for POST /bus/raw
type RawFrameRequest struct {
	Frame string `json:"frame" binding:"required" example:"4f:82:10:00"`
}

// --- Response DTOs ---

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status     string    `json:"status"`
	Controller string    `json:"controller"`
	Timestamp  time.Time `json:"timestamp"`
}

// TVStateResponse is returned from the /tv endpoints
type TVStateResponse struct {
	Power        string    `json:"power"`
	Input        string    `json:"input"`
	InputName    string    `json:"input_name,omitempty"`
	LocalAddress string    `json:"local_address,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// ListDevicesResponse is returned from GET /devices
type ListDevicesResponse struct {
	Devices []DeviceWithState `json:"devices"`
	Count   int               `json:"count"`
}

// DeviceWithState combines device info with current state
type DeviceWithState struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Names           []string        `json:"names,omitempty"`
	Type            string          `json:"type"`
	LogicalAddress  uint8           `json:"logical_address"`
	PhysicalAddress string          `json:"physical_address"`
	VendorID        string          `json:"vendor_id,omitempty"`
	StateSchema     json.RawMessage `json:"state_schema,omitempty"`
	State           map[string]any  `json:"state,omitempty"`
}

// DeviceResponse is returned from GET /devices/:id
type DeviceResponse struct {
	Device DeviceWithState `json:"device"`
}

// PollResponse is returned from POST /discovery/poll
type PollResponse struct {
	Status  string            `json:"status"`
	Devices []DeviceWithState `json:"devices"`
}

// RawFrameResponse is returned from POST /bus/raw
type RawFrameResponse struct {
	Status string `json:"status"`
	Frame  string `json:"frame"`
}
