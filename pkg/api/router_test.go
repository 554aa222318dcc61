package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/urmzd/cecvol/pkg/api/types"
	"github.com/urmzd/cecvol/pkg/cec"
	"github.com/urmzd/cecvol/pkg/device"
	"github.com/urmzd/cecvol/pkg/device/schema"
)

// fakeController records calls and serves canned state.
type fakeController struct {
	mu        sync.Mutex
	calls     []string
	display   device.DisplayState
	err       error
	connected bool
	sent      [][]byte

	subscribed chan chan device.Event
}

func newFakeController() *fakeController {
	return &fakeController{
		connected:  true,
		display:    device.DisplayState{Power: device.PowerOn, Input: "2.0.0.0", InputName: "HDMI 2", LocalAddress: "2.0.0.0"},
		subscribed: make(chan chan device.Event, 1),
	}
}

func (f *fakeController) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeController) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeController) OnOff(_ context.Context, on bool) error {
	return f.record(fmt.Sprintf("power:%v", on))
}

func (f *fakeController) VolumeChange(_ context.Context, steps int) error {
	return f.record(fmt.Sprintf("volume:%d", steps))
}

func (f *fakeController) Mute(_ context.Context, mute bool) error {
	return f.record(fmt.Sprintf("mute:%v", mute))
}

func (f *fakeController) SelectInput(_ context.Context, input string) error {
	if _, err := cec.ParseInput(input); err != nil {
		return fmt.Errorf("%w: %w", device.ErrUnsupported, err)
	}
	return f.record("input:" + input)
}

func (f *fakeController) Display(context.Context) (device.DisplayState, error) {
	return f.display, nil
}

func (f *fakeController) tv() device.Device {
	return device.Device{
		ID:              "tv",
		Name:            "tv",
		Type:            "tv",
		Protocol:        device.ProtocolCEC,
		PhysicalAddress: "0.0.0.0",
		StateSchema:     cec.DisplayStateSchema(),
	}
}

func (f *fakeController) ListDevices(context.Context) ([]device.Device, error) {
	return []device.Device{
		f.tv(),
		{ID: "playback1", Name: "Chromecast", Type: "playback", LogicalAddress: 4, PhysicalAddress: "2.0.0.0"},
	}, nil
}

func (f *fakeController) GetDevice(_ context.Context, id string) (*device.Device, error) {
	devices, _ := f.ListDevices(context.Background())
	for _, d := range devices {
		if d.ID == id || strings.EqualFold(d.Name, id) {
			return &d, nil
		}
	}
	return nil, device.ErrNotFound
}

func (f *fakeController) GetDeviceState(_ context.Context, id string) (device.DeviceState, error) {
	if id == "tv" {
		return device.DeviceState{"power": f.display.Power}, nil
	}
	return device.DeviceState{"physical_address": "2.0.0.0"}, nil
}

func (f *fakeController) SetDeviceState(_ context.Context, id string, state map[string]any) (device.DeviceState, error) {
	if err := f.record(fmt.Sprintf("state:%s:%d", id, len(state))); err != nil {
		return nil, err
	}
	return f.GetDeviceState(context.Background(), id)
}

func (f *fakeController) PollDevices(context.Context) error {
	return f.record("poll")
}

func (f *fakeController) SendRaw(_ context.Context, frame []byte) error {
	f.mu.Lock()
	f.sent = append(f.sent, frame)
	f.mu.Unlock()
	return f.record("raw")
}

func (f *fakeController) IsConnected() bool { return f.connected }

func (f *fakeController) Close() {}

func (f *fakeController) Subscribe() chan device.Event {
	ch := make(chan device.Event, 4)
	f.subscribed <- ch
	return ch
}

func (f *fakeController) Unsubscribe(ch chan device.Event) {}

func newTestRouter(f *fakeController) *Router {
	return NewRouter(f, f, schema.NewValidator())
}

func do(t *testing.T, r *Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth_Connected(t *testing.T) {
	r := newTestRouter(newFakeController())

	w := do(t, r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp types.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" || resp.Controller != "connected" {
		t.Errorf("unexpected health %+v", resp)
	}
}

func TestHealth_NullController(t *testing.T) {
	r := NewRouter(device.NewNullController(), device.NewNullEventSubscriber(), schema.NewValidator())

	w := do(t, r, http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestTVState_Get(t *testing.T) {
	r := newTestRouter(newFakeController())

	w := do(t, r, http.MethodGet, "/api/v1/tv/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp types.TVStateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Power != "on" || resp.InputName != "HDMI 2" {
		t.Errorf("unexpected state %+v", resp)
	}
}

func TestTVState_SetValidated(t *testing.T) {
	f := newFakeController()
	r := newTestRouter(f)

	w := do(t, r, http.MethodPost, "/api/v1/tv/state", `{"power":"on","volume_steps":3}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if calls := f.Calls(); len(calls) != 1 || calls[0] != "state:tv:2" {
		t.Errorf("unexpected calls %v", calls)
	}

	tests := []string{
		`{"power":"dim"}`,
		`{"volume_steps":"loud"}`,
		`{"brightness":3}`,
		`not json`,
	}
	for _, body := range tests {
		w := do(t, r, http.MethodPost, "/api/v1/tv/state", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, w.Code)
		}
	}
	if len(f.Calls()) != 1 {
		t.Error("invalid payloads must not reach the controller")
	}
}

func TestTVControls(t *testing.T) {
	tests := []struct {
		path string
		body string
		want string
	}{
		{"/api/v1/tv/power", `{"on":false}`, "power:false"},
		{"/api/v1/tv/power", `{"on":true}`, "power:true"},
		{"/api/v1/tv/volume", `{"steps":-4}`, "volume:-4"},
		{"/api/v1/tv/mute", `{"mute":true}`, "mute:true"},
		{"/api/v1/tv/input", `{"input":"HDMI 3"}`, "input:HDMI 3"},
	}

	for _, tt := range tests {
		f := newFakeController()
		r := newTestRouter(f)

		w := do(t, r, http.MethodPost, tt.path, tt.body)
		if w.Code != http.StatusOK {
			t.Errorf("%s %s: expected 200, got %d", tt.path, tt.body, w.Code)
			continue
		}
		if calls := f.Calls(); len(calls) != 1 || calls[0] != tt.want {
			t.Errorf("%s: got calls %v, want %s", tt.path, calls, tt.want)
		}
	}
}

func TestTVControls_BadRequests(t *testing.T) {
	tests := []struct {
		path string
		body string
		code int
	}{
		{"/api/v1/tv/power", `{}`, http.StatusBadRequest},
		{"/api/v1/tv/volume", `{"steps":0}`, http.StatusBadRequest},
		{"/api/v1/tv/volume", `{"steps":99}`, http.StatusBadRequest},
		{"/api/v1/tv/mute", `{"mute":"yes"}`, http.StatusBadRequest},
		{"/api/v1/tv/input", `{"input":"HDMI 9"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		r := newTestRouter(newFakeController())
		if w := do(t, r, http.MethodPost, tt.path, tt.body); w.Code != tt.code {
			t.Errorf("%s %s: expected %d, got %d", tt.path, tt.body, tt.code, w.Code)
		}
	}
}

func TestTVControls_NotConnected(t *testing.T) {
	r := NewRouter(device.NewNullController(), device.NewNullEventSubscriber(), schema.NewValidator())

	if w := do(t, r, http.MethodPost, "/api/v1/tv/power", `{"on":true}`); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestDevices_ListAndGet(t *testing.T) {
	r := newTestRouter(newFakeController())

	w := do(t, r, http.MethodGet, "/api/v1/devices", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var list types.ListDevicesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Count != 2 || list.Devices[1].Name != "Chromecast" {
		t.Errorf("unexpected devices %+v", list)
	}
	if list.Devices[0].State["power"] != "on" {
		t.Errorf("expected tv state in listing, got %v", list.Devices[0].State)
	}

	w = do(t, r, http.MethodGet, "/api/v1/devices/chromecast", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var one types.DeviceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &one); err != nil {
		t.Fatal(err)
	}
	if one.Device.ID != "playback1" || one.Device.LogicalAddress != 4 {
		t.Errorf("unexpected device %+v", one.Device)
	}

	if w := do(t, r, http.MethodGet, "/api/v1/devices/tuner4", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestDiscovery_Poll(t *testing.T) {
	f := newFakeController()
	r := newTestRouter(f)

	w := do(t, r, http.MethodPost, "/api/v1/discovery/poll", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if calls := f.Calls(); len(calls) != 1 || calls[0] != "poll" {
		t.Errorf("unexpected calls %v", calls)
	}
}

func TestBusRaw(t *testing.T) {
	f := newFakeController()
	r := newTestRouter(f)

	w := do(t, r, http.MethodPost, "/api/v1/bus/raw", `{"frame":"4f 82 10 00"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(f.sent) != 1 || !bytes.Equal(f.sent[0], []byte{0x4f, 0x82, 0x10, 0x00}) {
		t.Errorf("unexpected frames %x", f.sent)
	}

	if w := do(t, r, http.MethodPost, "/api/v1/bus/raw", `{"frame":"zz"}`); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad hex, got %d", w.Code)
	}

	f.err = fmt.Errorf("%w: short frame", device.ErrValidation)
	if w := do(t, r, http.MethodPost, "/api/v1/bus/raw", `{"frame":"4f"}`); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for rejected frame, got %d", w.Code)
	}
}

func TestBusWatch_StreamsEvents(t *testing.T) {
	f := newFakeController()
	srv := httptest.NewServer(newTestRouter(f).Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/bus/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var ch chan device.Event
	select {
	case ch = <-f.subscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never subscribed")
	}
	ch <- device.Event{Type: device.EventFrameReceived, Frame: "0f:36", Timestamp: time.Now()}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt device.Event
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("read: %v", err)
	}
	if evt.Type != device.EventFrameReceived || evt.Frame != "0f:36" {
		t.Errorf("unexpected event %+v", evt)
	}
}
