package cec

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/urmzd/cecvol/pkg/device"
)

// fakeConnection records transmitted frames and, when echo is set, reports
// each one back through the tx callback the way the bus hardware does.
type fakeConnection struct {
	mu       sync.Mutex
	sent     []Command
	rx       func(Command)
	tx       func(Command)
	echo     bool
	err      error
	errFor   map[LogicalAddress]error
	physical PhysicalAddress
}

func newFakeConnection() *fakeConnection {
	return &fakeConnection{echo: true, physical: 0x1000}
}

func (f *fakeConnection) Transmit(cmd Command) error {
	f.mu.Lock()
	if f.err != nil {
		err := f.err
		f.mu.Unlock()
		return err
	}
	if err, ok := f.errFor[cmd.Destination]; ok {
		f.mu.Unlock()
		return err
	}
	f.sent = append(f.sent, cmd)
	tx, echo := f.tx, f.echo
	f.mu.Unlock()

	if echo && tx != nil {
		echoed := cmd
		echoed.Initiator = Recording1
		tx(echoed)
	}
	return nil
}

func (f *fakeConnection) LogicalAddress() (LogicalAddress, error) { return Recording1, nil }

func (f *fakeConnection) PhysicalAddress() (PhysicalAddress, error) { return f.physical, nil }

func (f *fakeConnection) SetRxCallback(fn func(Command)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rx = fn
}

func (f *fakeConnection) SetTxCallback(fn func(Command)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tx = fn
}

func (f *fakeConnection) receive(cmd Command) {
	f.mu.Lock()
	rx := f.rx
	f.mu.Unlock()
	rx(cmd)
}

func (f *fakeConnection) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

func (f *fakeConnection) frames() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Command(nil), f.sent...)
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.EchoTimeout = 20 * time.Millisecond
	return opts
}

func newTestController(t *testing.T, conn *fakeConnection) *Controller {
	t.Helper()
	c, err := NewController(context.Background(), conn, testOptions())
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	conn.reset()
	return c
}

func messagesOf(cmds []Command) []Message {
	out := make([]Message, len(cmds))
	for i, c := range cmds {
		out[i] = c.Message
	}
	return out
}

func TestNewController_PowersOn(t *testing.T) {
	conn := newFakeConnection()
	c, err := NewController(context.Background(), conn, testOptions())
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	sent := conn.frames()
	if len(sent) != 1 || sent[0].Destination != TV || sent[0].Message != (ImageViewOn{}) {
		t.Fatalf("expected image view on to the display, got %v", sent)
	}
	if !c.PowerState() {
		t.Error("expected power on after construction")
	}
	if c.InputState() != UnassignedPhysicalAddress {
		t.Errorf("expected unassigned input, got %s", c.InputState())
	}
}

func TestNewController_PassiveSkipsPowerOn(t *testing.T) {
	conn := newFakeConnection()
	opts := testOptions()
	opts.Passive = true

	c, err := NewController(context.Background(), conn, opts)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	if sent := conn.frames(); len(sent) != 0 {
		t.Errorf("expected nothing sent, got %v", sent)
	}
	if c.PowerState() {
		t.Error("passive controller should not assume the display is on")
	}
}

func TestNewController_PropagatesTransmitError(t *testing.T) {
	conn := newFakeConnection()
	conn.err = ErrNoAck
	if _, err := NewController(context.Background(), conn, testOptions()); !errors.Is(err, ErrNoAck) {
		t.Errorf("expected ErrNoAck, got %v", err)
	}
}

func TestOnOff_Idempotent(t *testing.T) {
	conn := newFakeConnection()
	c := newTestController(t, conn)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := c.OnOff(ctx, true); err != nil {
			t.Fatalf("OnOff: %v", err)
		}
		if !c.PowerState() {
			t.Errorf("call %d: expected power on", i)
		}
	}

	if err := c.OnOff(ctx, false); err != nil {
		t.Fatalf("OnOff: %v", err)
	}
	if c.PowerState() {
		t.Error("expected standby")
	}
	last := conn.frames()[2]
	if last.Destination != TV || last.Message != (Standby{}) {
		t.Errorf("expected standby to the display, got %s", last)
	}
}

func TestVolumeChange_Symmetry(t *testing.T) {
	conn := newFakeConnection()
	c := newTestController(t, conn)
	ctx := context.Background()

	if err := c.VolumeChange(ctx, 3); err != nil {
		t.Fatalf("VolumeChange: %v", err)
	}
	if err := c.VolumeChange(ctx, -3); err != nil {
		t.Fatalf("VolumeChange: %v", err)
	}

	sent := conn.frames()
	if len(sent) != 12 {
		t.Fatalf("expected 6 press/release pairs, got %d frames", len(sent))
	}
	for i, cmd := range sent {
		if cmd.Destination != TV {
			t.Errorf("frame %d: expected display destination, got %s", i, cmd.Destination)
		}
		if i%2 == 1 {
			if cmd.Message != (UserControlReleased{}) {
				t.Errorf("frame %d: expected release, got %v", i, cmd.Message)
			}
			continue
		}
		want := KeyVolumeUp
		if i >= 6 {
			want = KeyVolumeDown
		}
		if cmd.Message != (UserControlPressed{Key: want}) {
			t.Errorf("frame %d: expected %v press, got %v", i, want, cmd.Message)
		}
	}
}

func TestVolumeChange_ZeroIsNoop(t *testing.T) {
	conn := newFakeConnection()
	c := newTestController(t, conn)

	if err := c.VolumeChange(context.Background(), 0); err != nil {
		t.Fatalf("VolumeChange: %v", err)
	}
	if n := len(conn.frames()); n != 0 {
		t.Errorf("expected no frames, got %d", n)
	}
}

func TestMute_Bracket(t *testing.T) {
	want := []Message{
		UserControlPressed{Key: KeyVolumeDown}, UserControlReleased{},
		UserControlPressed{Key: KeyMute}, UserControlReleased{},
		UserControlPressed{Key: KeyVolumeUp}, UserControlReleased{},
	}

	for _, mute := range []bool{true, false} {
		conn := newFakeConnection()
		c := newTestController(t, conn)

		if err := c.Mute(context.Background(), mute); err != nil {
			t.Fatalf("Mute(%v): %v", mute, err)
		}
		if got := messagesOf(conn.frames()); !reflect.DeepEqual(got, want) {
			t.Errorf("Mute(%v): got %v, want %v", mute, got, want)
		}
	}
}

func TestSetInput_BroadcastsActiveSource(t *testing.T) {
	conn := newFakeConnection()
	c := newTestController(t, conn)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := c.SetInput(ctx, HDMI2); err != nil {
			t.Fatalf("SetInput: %v", err)
		}
		if c.InputState() != 0x2000 {
			t.Errorf("call %d: expected input 2.0.0.0, got %s", i, c.InputState())
		}
	}

	sent := conn.frames()[:2]
	want := []Message{
		ReportPhysicalAddress{Address: 0x2000, DeviceType: DeviceTypeRecording},
		ActiveSource{Address: 0x2000},
	}
	if got := messagesOf(sent); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	for _, cmd := range sent {
		if cmd.Destination != Broadcast {
			t.Errorf("expected broadcast, got %s", cmd.Destination)
		}
	}
}

func TestPollAll_TwoFramesPerPeer(t *testing.T) {
	conn := newFakeConnection()
	conn.echo = false
	opts := testOptions()
	opts.EchoTimeout = time.Millisecond
	c, err := NewController(context.Background(), conn, opts)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	conn.reset()

	if err := c.PollAll(context.Background()); err != nil {
		t.Fatalf("PollAll: %v", err)
	}

	sent := conn.frames()
	if len(sent) != 2*len(DefaultPeers) {
		t.Fatalf("expected %d frames, got %d", 2*len(DefaultPeers), len(sent))
	}
	for i, la := range DefaultPeers {
		if sent[2*i].Destination != la || sent[2*i].Message != (GiveOSDName{}) {
			t.Errorf("peer %s: expected give osd name, got %s", la, sent[2*i])
		}
		if sent[2*i+1].Destination != la || sent[2*i+1].Message != (GivePhysicalAddress{}) {
			t.Errorf("peer %s: expected give physical address, got %s", la, sent[2*i+1])
		}
	}
}

func TestPollAll_NullConnection(t *testing.T) {
	opts := testOptions()
	opts.EchoTimeout = time.Millisecond
	c, err := NewController(context.Background(), NewNullConnection(), opts)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	if err := c.PollAll(context.Background()); err != nil {
		t.Errorf("expected success without peers, got %v", err)
	}
}

func TestPollAll_SkipsUnacknowledgedPeers(t *testing.T) {
	conn := newFakeConnection()
	c := newTestController(t, conn)
	conn.mu.Lock()
	conn.errFor = map[LogicalAddress]error{Tuner1: ErrNoAck}
	conn.mu.Unlock()

	if err := c.PollAll(context.Background()); err != nil {
		t.Fatalf("PollAll: %v", err)
	}
	if n := len(conn.frames()); n != 2*(len(DefaultPeers)-1) {
		t.Errorf("expected %d frames, got %d", 2*(len(DefaultPeers)-1), n)
	}
}

func TestSend_MissingEchoIsSoft(t *testing.T) {
	conn := newFakeConnection()
	conn.echo = false
	c := newTestController(t, conn)

	start := time.Now()
	if err := c.OnOff(context.Background(), false); err != nil {
		t.Fatalf("expected soft timeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("expected to wait for the echo timeout, returned after %v", elapsed)
	}
}

func TestSend_ContextCancelled(t *testing.T) {
	conn := newFakeConnection()
	conn.echo = false
	c := newTestController(t, conn)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.OnOff(ctx, true); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestEchoMatches_IgnoresInitiator(t *testing.T) {
	if !echoMatches([]byte{0xF0, 0x04}, []byte{0x10, 0x04}) {
		t.Error("expected match with different initiator")
	}
	if echoMatches([]byte{0xF0, 0x04}, []byte{0xF5, 0x04}) {
		t.Error("expected mismatch with different destination")
	}
	if echoMatches([]byte{0xF0, 0x04}, []byte{0xF0, 0x36}) {
		t.Error("expected mismatch with different opcode")
	}
}

func TestTransmitRaw(t *testing.T) {
	conn := newFakeConnection()
	c := newTestController(t, conn)

	if err := c.TransmitRaw(context.Background(), []byte{0x1F, 0x82, 0x30, 0x00}); err != nil {
		t.Fatalf("TransmitRaw: %v", err)
	}
	sent := conn.frames()
	if len(sent) != 1 || sent[0].Message != (ActiveSource{Address: 0x3000}) {
		t.Errorf("unexpected frames %v", sent)
	}

	if err := c.TransmitRaw(context.Background(), []byte{0x1F, 0x82}); !errors.Is(err, ErrTooShort) {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
}

func TestRx_RepliesToIdentityQueries(t *testing.T) {
	tests := []struct {
		name    string
		query   Command
		wantDst LogicalAddress
		want    Message
	}{
		{"osd name", Command{Initiator: TV, Destination: Recording1, Message: GiveOSDName{}}, TV, SetOSDName{Name: "cecvol"}},
		{"vendor id", Command{Initiator: TV, Destination: Recording1, Message: GiveDeviceVendorID{}}, Broadcast, DeviceVendorID{VendorID: VendorLG}},
		{"physical address", Command{Initiator: TV, Destination: Recording1, Message: GivePhysicalAddress{}}, Broadcast, ReportPhysicalAddress{Address: 0x1000, DeviceType: DeviceTypeRecording}},
		{"power status", Command{Initiator: AudioSystem, Destination: Recording1, Message: GiveDevicePowerStatus{}}, AudioSystem, ReportPowerStatus{Status: PowerOn}},
		{"cec version", Command{Initiator: TV, Destination: Recording1, Message: GetCECVersion{}}, TV, CECVersion{Version: Version14}},
	}

	for _, tt := range tests {
		conn := newFakeConnection()
		newTestController(t, conn)

		conn.receive(tt.query)

		sent := conn.frames()
		if len(sent) != 1 {
			t.Fatalf("%s: expected one reply, got %v", tt.name, sent)
		}
		if sent[0].Destination != tt.wantDst || !reflect.DeepEqual(sent[0].Message, tt.want) {
			t.Errorf("%s: got %s, want %v to %s", tt.name, sent[0], tt.want, tt.wantDst)
		}
	}
}

func TestRx_TracksPowerAndInput(t *testing.T) {
	conn := newFakeConnection()
	c := newTestController(t, conn)

	conn.receive(Command{Initiator: TV, Destination: Broadcast, Message: Standby{}})
	if c.PowerState() {
		t.Error("expected standby after Standby")
	}

	conn.receive(Command{Initiator: Playback1, Destination: Broadcast, Message: ActiveSource{Address: 0x3000}})
	if !c.PowerState() || c.InputState() != 0x3000 {
		t.Errorf("expected on at 3.0.0.0, got %v at %s", c.PowerState(), c.InputState())
	}

	conn.receive(Command{Initiator: TV, Destination: Broadcast, Message: RoutingChange{Original: 0x3000, New: 0x1000}})
	if c.InputState() != 0x1000 {
		t.Errorf("expected 1.0.0.0 after routing change, got %s", c.InputState())
	}

	conn.receive(Command{Initiator: TV, Destination: Broadcast, Message: Standby{}})
	conn.receive(Command{Initiator: TV, Destination: Broadcast, Message: SetStreamPath{Address: 0x4000}})
	if !c.PowerState() || c.InputState() != 0x4000 {
		t.Errorf("expected on at 4.0.0.0, got %v at %s", c.PowerState(), c.InputState())
	}

	conn.receive(Command{Initiator: TV, Destination: Broadcast, Message: Standby{}})
	conn.receive(Command{Initiator: TV, Destination: Broadcast, Message: ImageViewOn{}})
	if !c.PowerState() {
		t.Error("expected on after image view on")
	}
}

func TestRx_RecordsNames(t *testing.T) {
	conn := newFakeConnection()
	c := newTestController(t, conn)

	conn.receive(Command{Initiator: Playback1, Destination: Recording1, Message: SetOSDName{Name: "Chromecast"}})
	conn.receive(Command{Initiator: Playback1, Destination: Broadcast, Message: ReportPhysicalAddress{Address: 0x2000, DeviceType: DeviceTypePlayback}})
	conn.receive(Command{Initiator: Playback1, Destination: Recording1, Message: SetOSDName{Name: "Chromecast"}})

	names := c.Names()
	if !reflect.DeepEqual(names[0x2000], []string{"Chromecast"}) {
		t.Errorf("unexpected names %v", names)
	}

	dev, err := c.GetDevice(context.Background(), "chromecast")
	if err != nil {
		t.Fatalf("GetDevice: %v", err)
	}
	if dev.ID != "playback1" || dev.PhysicalAddress != "2.0.0.0" {
		t.Errorf("unexpected device %+v", dev)
	}
}

func TestRx_IgnoresUnregisteredInitiator(t *testing.T) {
	conn := newFakeConnection()
	c := newTestController(t, conn)

	conn.receive(Command{Initiator: Broadcast, Destination: Broadcast, Message: ReportPhysicalAddress{Address: 0x3000, DeviceType: DeviceTypePlayback}})
	conn.receive(Command{Initiator: Broadcast, Destination: Recording1, Message: SetOSDName{Name: "ghost"}})
	conn.receive(Command{Initiator: Broadcast, Destination: Broadcast, Message: DeviceVendorID{VendorID: VendorLG}})
	conn.receive(Command{Initiator: Broadcast, Destination: Recording1, Message: ReportPowerStatus{Status: PowerStandby}})

	if names := c.Names(); len(names) != 0 {
		t.Errorf("expected no names, got %v", names)
	}

	devices, err := c.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	for _, d := range devices {
		if d.LogicalAddress == uint8(Broadcast) || d.PhysicalAddress == "3.0.0.0" {
			t.Errorf("unexpected device %+v", d)
		}
	}
}

func TestRx_VendorHandshake(t *testing.T) {
	tests := []struct {
		code byte
		want Message
	}{
		{0x01, VendorCommand{Data: []byte{0x02, 0x05}}},
		{0x04, VendorCommand{Data: []byte{0x05, 0x05}}},
		{0xA0, ReportPowerStatus{Status: PowerOn}},
	}

	for _, tt := range tests {
		conn := newFakeConnection()
		newTestController(t, conn)

		conn.receive(Command{Initiator: TV, Destination: Recording1, Message: VendorCommand{Data: []byte{tt.code}}})

		sent := conn.frames()
		if len(sent) != 1 || sent[0].Destination != TV || !reflect.DeepEqual(sent[0].Message, tt.want) {
			t.Errorf("code 0x%02x: got %v, want %v", tt.code, sent, tt.want)
		}
	}

	conn := newFakeConnection()
	newTestController(t, conn)
	conn.receive(Command{Initiator: TV, Destination: Recording1, Message: VendorCommand{Data: []byte{0x7E}}})
	if n := len(conn.frames()); n != 0 {
		t.Errorf("expected no reply to unknown vendor code, got %d frames", n)
	}
}

func TestSelectInput_Unsupported(t *testing.T) {
	conn := newFakeConnection()
	c := newTestController(t, conn)

	err := c.SelectInput(context.Background(), "HDMI 9")
	if !errors.Is(err, device.ErrUnsupported) || !errors.Is(err, ErrUnsupportedInput) {
		t.Errorf("expected unsupported input, got %v", err)
	}
	if n := len(conn.frames()); n != 0 {
		t.Errorf("expected no frames, got %d", n)
	}
}

func TestSetDeviceState_Display(t *testing.T) {
	conn := newFakeConnection()
	c := newTestController(t, conn)

	state, err := c.SetDeviceState(context.Background(), "tv", map[string]any{
		"power":        "standby",
		"volume_steps": float64(-1),
		"input":        "HDMI 3",
	})
	if err != nil {
		t.Fatalf("SetDeviceState: %v", err)
	}
	if state["power"] != device.PowerStandby || state["input"] != "3.0.0.0" || state["input_name"] != "HDMI 3" {
		t.Errorf("unexpected state %v", state)
	}

	if _, err := c.SetDeviceState(context.Background(), "tv", map[string]any{"power": "sideways"}); !errors.Is(err, device.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if _, err := c.SetDeviceState(context.Background(), "audio_system", map[string]any{"power": "on"}); !errors.Is(err, device.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestSendRaw_ValidationError(t *testing.T) {
	c := newTestController(t, newFakeConnection())
	if err := c.SendRaw(context.Background(), []byte{0x10, 0x01}); !errors.Is(err, device.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestListDevices_IncludesDisplay(t *testing.T) {
	conn := newFakeConnection()
	c := newTestController(t, conn)

	devices, err := c.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if len(devices) != 1 || devices[0].ID != "tv" {
		t.Fatalf("expected only the display, got %+v", devices)
	}

	conn.receive(Command{Initiator: AudioSystem, Destination: Broadcast, Message: DeviceVendorID{VendorID: 0x0009B0}})
	devices, _ = c.ListDevices(context.Background())
	if len(devices) != 2 || devices[1].ID != "audio_system" || devices[1].VendorID != "0009b0" {
		t.Errorf("unexpected devices %+v", devices)
	}
}

func TestSubscribe_ReceivesFrames(t *testing.T) {
	conn := newFakeConnection()
	c := newTestController(t, conn)

	ch := c.Subscribe()
	defer c.Unsubscribe(ch)

	conn.receive(Command{Initiator: TV, Destination: Broadcast, Message: Standby{}})

	timeout := time.After(time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type == device.EventFrameReceived {
				if evt.Frame != "0f:36" {
					t.Errorf("unexpected frame %q", evt.Frame)
				}
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for frame event")
		}
	}
}

func TestNotifyHDMIStatus_PublishesEvent(t *testing.T) {
	c := newTestController(t, newFakeConnection())

	ch := c.Subscribe()
	defer c.Unsubscribe(ch)

	c.NotifyHDMIStatus("attached|hdmi")

	select {
	case evt := <-ch:
		if evt.Type != device.EventHDMIStatusChanged || evt.Message != "attached|hdmi" {
			t.Errorf("unexpected event %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for hdmi event")
	}
}
