package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/cecvol/pkg/cec"
)

const maxVolumeSteps = 50

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := GetHealthOutput{
		Status:     "healthy",
		Controller: "connected",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if !s.controller.IsConnected() {
		out.Status, out.Controller = "unhealthy", "disconnected"
	}

	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetTVState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.tvState(ctx, "")
}

func (s *Server) handleSetTVState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, ok := request.GetArguments()["state"].(map[string]any)
	if !ok {
		return mcp.NewToolResultError(`parameter "state" must be an object`), nil
	}

	d, err := s.controller.GetDevice(ctx, "tv")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("tv not available: %s", err)), nil
	}
	if s.validator != nil {
		if err := s.validator.ValidateDevice(d, state); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	if _, err := s.controller.SetDeviceState(ctx, d.ID, state); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set tv state: %s", err)), nil
	}
	return s.tvState(ctx, "State applied")
}

func (s *Server) handleSetPower(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	on, err := requiredBool(request, "on")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.controller.OnOff(ctx, on); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set power: %s", err)), nil
	}

	msg := "Standby requested"
	if on {
		msg = "Power on requested"
	}
	return s.tvState(ctx, msg)
}

func (s *Server) handleChangeVolume(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	steps, err := requiredInt(request, "steps")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if steps == 0 || steps < -maxVolumeSteps || steps > maxVolumeSteps {
		return mcp.NewToolResultError(fmt.Sprintf("steps must be non-zero and between -%d and %d", maxVolumeSteps, maxVolumeSteps)), nil
	}

	if err := s.controller.VolumeChange(ctx, steps); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to change volume: %s", err)), nil
	}
	return s.tvState(ctx, fmt.Sprintf("Volume changed by %d steps", steps))
}

func (s *Server) handleSetMute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mute := true
	if v, ok := request.GetArguments()["mute"]; ok {
		b, ok := v.(bool)
		if !ok {
			return mcp.NewToolResultError(`parameter "mute" must be a boolean`), nil
		}
		mute = b
	}

	if err := s.controller.Mute(ctx, mute); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to toggle mute: %s", err)), nil
	}
	return s.tvState(ctx, "Mute toggled")
}

func (s *Server) handleSetInput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := requiredString(request, "input")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.controller.SelectInput(ctx, input); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to select input: %s", err)), nil
	}
	return s.tvState(ctx, fmt.Sprintf("Switched to %s", input))
}

func (s *Server) handleListDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.listDevices(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list devices: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, err := s.controller.GetDevice(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("device not found: %s", err)), nil
	}

	info := DeviceToInfo(d)
	if state, err := s.controller.GetDeviceState(ctx, d.ID); err == nil {
		info.State = state
	}
	return mcp.NewToolResultText(formatJSON(GetDeviceOutput{Device: info})), nil
}

func (s *Server) handlePollDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.controller.PollDevices(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to poll devices: %s", err)), nil
	}

	out, err := s.listDevices(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list devices: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleSendRawFrame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hex, err := requiredString(request, "frame")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	frame, err := cec.ParseFrameHex(hex)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.controller.SendRaw(ctx, frame); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to send frame: %s", err)), nil
	}

	out := SendRawFrameOutput{
		Success: true,
		Frame:   cec.FormatFrame(frame),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

// --- helpers ---

func (s *Server) tvState(ctx context.Context, msg string) (*mcp.CallToolResult, error) {
	display, err := s.controller.Display(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get tv state: %s", err)), nil
	}

	out := TVStateOutput{
		Power:        display.Power,
		Input:        display.Input,
		InputName:    display.InputName,
		LocalAddress: display.LocalAddress,
		Message:      msg,
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) listDevices(ctx context.Context) (ListDevicesOutput, error) {
	devices, err := s.controller.ListDevices(ctx)
	if err != nil {
		return ListDevicesOutput{}, err
	}

	infos := make([]DeviceInfo, 0, len(devices))
	for i := range devices {
		info := DeviceToInfo(&devices[i])
		if state, err := s.controller.GetDeviceState(ctx, devices[i].ID); err == nil {
			info.State = state
		}
		infos = append(infos, info)
	}

	return ListDevicesOutput{Devices: infos, Count: len(infos)}, nil
}

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	v, ok := request.GetArguments()[key]
	if !ok || v == nil {
		return "", fmt.Errorf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

func requiredBool(request mcp.CallToolRequest, key string) (bool, error) {
	v, ok := request.GetArguments()[key]
	if !ok || v == nil {
		return false, fmt.Errorf("required parameter %q is missing", key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("parameter %q must be a boolean", key)
	}
	return b, nil
}

func requiredInt(request mcp.CallToolRequest, key string) (int, error) {
	v, ok := request.GetArguments()[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("required parameter %q is missing", key)
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("parameter %q must be a whole number", key)
		}
		return int(n), nil
	case int:
		return n, nil
	}
	return 0, fmt.Errorf("parameter %q must be a number", key)
}

func formatJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}
