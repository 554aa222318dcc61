package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/cecvol/pkg/cec"
	"github.com/urmzd/cecvol/pkg/device"
	"github.com/urmzd/cecvol/pkg/device/schema"
)

// loopbackConnection echoes every transmitted frame back as sent.
type loopbackConnection struct {
	mu   sync.Mutex
	sent [][]byte
	tx   func(cec.Command)
}

func (l *loopbackConnection) Transmit(cmd cec.Command) error {
	b, err := cmd.Bytes()
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.sent = append(l.sent, b)
	tx := l.tx
	l.mu.Unlock()
	if tx != nil {
		tx(cmd)
	}
	return nil
}

func (l *loopbackConnection) LogicalAddress() (cec.LogicalAddress, error) {
	return cec.Recording1, nil
}

func (l *loopbackConnection) PhysicalAddress() (cec.PhysicalAddress, error) {
	return 0x1000, nil
}

func (l *loopbackConnection) SetRxCallback(fn func(cec.Command)) {}

func (l *loopbackConnection) SetTxCallback(fn func(cec.Command)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tx = fn
}

func (l *loopbackConnection) frames() [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([][]byte(nil), l.sent...)
}

func (l *loopbackConnection) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = nil
}

func newTestServer(t *testing.T) (*Server, *loopbackConnection) {
	t.Helper()
	conn := &loopbackConnection{}
	opts := cec.DefaultOptions()
	opts.EchoTimeout = 20 * time.Millisecond

	ctrl, err := cec.NewController(context.Background(), conn, opts)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	t.Cleanup(ctrl.Close)
	conn.reset()

	return NewServer(ctrl, schema.NewValidator()), conn
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args

	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestGetHealth(t *testing.T) {
	s, _ := newTestServer(t)

	var out GetHealthOutput
	if err := json.Unmarshal([]byte(resultText(t, call(t, s.handleGetHealth, nil))), &out); err != nil {
		t.Fatal(err)
	}
	if out.Status != "healthy" || out.Controller != "connected" {
		t.Errorf("unexpected health %+v", out)
	}

	null := NewServer(device.NewNullController(), schema.NewValidator())
	if err := json.Unmarshal([]byte(resultText(t, call(t, null.handleGetHealth, nil))), &out); err != nil {
		t.Fatal(err)
	}
	if out.Status != "unhealthy" {
		t.Errorf("expected unhealthy, got %+v", out)
	}
}

func TestSetPower_Standby(t *testing.T) {
	s, conn := newTestServer(t)

	res := call(t, s.handleSetPower, map[string]any{"on": false})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, res))
	}

	frames := conn.frames()
	if len(frames) != 1 || frames[0][0]&0x0F != 0 || frames[0][1] != 0x36 {
		t.Errorf("expected standby to tv, got %x", frames)
	}

	var out TVStateOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Power != device.PowerStandby {
		t.Errorf("expected standby, got %q", out.Power)
	}
}

func TestChangeVolume(t *testing.T) {
	s, conn := newTestServer(t)

	if res := call(t, s.handleChangeVolume, map[string]any{"steps": float64(2)}); res.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, res))
	}
	// press + release per step
	if n := len(conn.frames()); n != 4 {
		t.Errorf("expected 4 frames, got %d", n)
	}

	for _, args := range []map[string]any{
		{},
		{"steps": float64(0)},
		{"steps": float64(51)},
		{"steps": float64(1.5)},
		{"steps": "up"},
	} {
		if res := call(t, s.handleChangeVolume, args); !res.IsError {
			t.Errorf("%v: expected error result", args)
		}
	}
}

func TestSetMute_SendsBracketedToggle(t *testing.T) {
	s, conn := newTestServer(t)

	if res := call(t, s.handleSetMute, nil); res.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, res))
	}

	var keys []byte
	for _, f := range conn.frames() {
		if len(f) == 3 && f[1] == 0x44 {
			keys = append(keys, f[2])
		}
	}
	if string(keys) != string([]byte{0x42, 0x43, 0x41}) {
		t.Errorf("expected volume down, mute, volume up; got %x", keys)
	}
}

func TestSetInput(t *testing.T) {
	s, _ := newTestServer(t)

	res := call(t, s.handleSetInput, map[string]any{"input": "HDMI 3"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, res))
	}
	var out TVStateOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if out.InputName != "HDMI 3" {
		t.Errorf("expected HDMI 3, got %+v", out)
	}

	if res := call(t, s.handleSetInput, map[string]any{"input": "HDMI 9"}); !res.IsError {
		t.Error("expected error for unsupported input")
	}
}

func TestSetTVState_Validates(t *testing.T) {
	s, conn := newTestServer(t)

	res := call(t, s.handleSetTVState, map[string]any{"state": map[string]any{"power": "dim"}})
	if !res.IsError {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(resultText(t, res), "validation") {
		t.Errorf("unexpected message %q", resultText(t, res))
	}
	if len(conn.frames()) != 0 {
		t.Error("invalid state must not reach the bus")
	}

	if res := call(t, s.handleSetTVState, map[string]any{"state": "on"}); !res.IsError {
		t.Error("expected error for non-object state")
	}

	res = call(t, s.handleSetTVState, map[string]any{"state": map[string]any{"power": "on", "input": "2"}})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, res))
	}
}

func TestSendRawFrame(t *testing.T) {
	s, conn := newTestServer(t)

	res := call(t, s.handleSendRawFrame, map[string]any{"frame": "10:8f"})
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, res))
	}
	frames := conn.frames()
	if len(frames) != 1 || frames[0][1] != 0x8f {
		t.Errorf("unexpected frames %x", frames)
	}

	for _, frame := range []string{"", "zz", "10:01"} {
		if res := call(t, s.handleSendRawFrame, map[string]any{"frame": frame}); !res.IsError {
			t.Errorf("%q: expected error result", frame)
		}
	}
}

func TestListDevices_IncludesTV(t *testing.T) {
	s, _ := newTestServer(t)

	var out ListDevicesOutput
	if err := json.Unmarshal([]byte(resultText(t, call(t, s.handleListDevices, nil))), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count == 0 || out.Devices[0].ID != "tv" {
		t.Errorf("expected tv first, got %+v", out.Devices)
	}
	if out.Devices[0].State["power"] != device.PowerOn {
		t.Errorf("expected tv powered on after start-up, got %v", out.Devices[0].State)
	}
}

func TestNullController_ReportsErrors(t *testing.T) {
	s := NewServer(device.NewNullController(), schema.NewValidator())

	if res := call(t, s.handleSetPower, map[string]any{"on": true}); !res.IsError {
		t.Error("expected error without a bus")
	}
	if res := call(t, s.handlePollDevices, nil); !res.IsError {
		t.Error("expected error without a bus")
	}
	if res := call(t, s.handleSetPower, nil); !res.IsError {
		t.Error("expected error for missing parameter")
	}
}
