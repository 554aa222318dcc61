package cec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/cecvol/pkg/device"
)

// VendorLG is the IEEE OUI LG displays expect before they honour user
// control keys from a peer.
const VendorLG uint32 = 0x00E091

// DefaultEchoTimeout bounds the wait for a transmitted frame to be echoed.
const DefaultEchoTimeout = 200 * time.Millisecond

// DefaultPeers are the logical addresses probed by PollAll.
var DefaultPeers = []LogicalAddress{TV, Recording1, Tuner1, Playback1, AudioSystem, Playback2, Playback3}

// Options holds the identity this host presents on the bus.
type Options struct {
	OSDName     string
	VendorID    uint32
	DeviceType  DeviceType
	EchoTimeout time.Duration
	Peers       []LogicalAddress

	// Passive skips the start-up power-on. Queries are still answered.
	Passive bool
}

// DefaultOptions returns the identity used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		OSDName:     "cecvol",
		VendorID:    VendorLG,
		DeviceType:  DeviceTypeRecording,
		EchoTimeout: DefaultEchoTimeout,
		Peers:       DefaultPeers,
	}
}

// peer tracks what has been learnt about one logical address.
type peer struct {
	physical  PhysicalAddress
	name      string
	vendorID  uint32
	hasVendor bool
	power     PowerStatus
	hasPower  bool
	lastSeen  time.Time
}

// Controller tracks display state from bus traffic and issues power,
// volume, mute and input commands over a Connection. It implements
// device.Controller and device.EventSubscriber.
type Controller struct {
	conn Connection
	opts Options

	// opMu serializes outbound operations; they share the echo channel.
	opMu sync.Mutex
	echo chan []byte

	mu    sync.RWMutex
	power bool
	input PhysicalAddress
	names map[PhysicalAddress][]string
	peers map[LogicalAddress]*peer

	subscribers   []chan device.Event
	subscribersMu sync.Mutex

	connected bool
	connMu    sync.RWMutex

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewController registers the receive and transmit-echo callbacks on conn
// and, unless opts.Passive is set, powers the display on so the tracked
// state starts out known.
func NewController(ctx context.Context, conn Connection, opts Options) (*Controller, error) {
	if opts.EchoTimeout <= 0 {
		opts.EchoTimeout = DefaultEchoTimeout
	}
	if opts.Peers == nil {
		opts.Peers = DefaultPeers
	}
	if opts.OSDName == "" {
		opts.OSDName = DefaultOptions().OSDName
	}

	c := &Controller{
		conn:      conn,
		opts:      opts,
		echo:      make(chan []byte, 16),
		input:     UnassignedPhysicalAddress,
		names:     make(map[PhysicalAddress][]string),
		peers:     make(map[LogicalAddress]*peer),
		connected: true,
		stopChan:  make(chan struct{}),
	}

	conn.SetRxCallback(c.handleRx)
	conn.SetTxCallback(c.handleTx)

	log.Info().
		Str("osd_name", opts.OSDName).
		Str("vendor_id", fmt.Sprintf("%06x", opts.VendorID)).
		Str("device_type", opts.DeviceType.String()).
		Msg("Initializing CEC controller")

	if opts.Passive {
		return c, nil
	}
	if err := c.OnOff(ctx, true); err != nil {
		return nil, fmt.Errorf("initial power on: %w", err)
	}

	return c, nil
}

// send hands cmd to the transport and waits, up to the echo timeout, for
// the transport to report the same frame as sent. A missing echo is not
// an error: displays do not echo every frame.
func (c *Controller) send(ctx context.Context, cmd Command) error {
	want, err := cmd.Bytes()
	if err != nil {
		return err
	}

	c.drainEcho()

	log.Debug().Str("frame", FormatFrame(want)).Msg("CEC TX")

	if err := c.conn.Transmit(cmd); err != nil {
		return fmt.Errorf("transmit %s: %w", FormatFrame(want), err)
	}

	timer := time.NewTimer(c.opts.EchoTimeout)
	defer timer.Stop()

	for {
		select {
		case got := <-c.echo:
			if echoMatches(want, got) {
				return nil
			}
		case <-timer.C:
			log.Debug().Str("frame", FormatFrame(want)).Msg("No transmit echo before timeout")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopChan:
			return device.ErrNotConnected
		}
	}
}

func (c *Controller) drainEcho() {
	for {
		select {
		case <-c.echo:
		default:
			return
		}
	}
}

// echoMatches compares destination and payload; the initiator nibble is
// filled in by the transport.
func echoMatches(want, got []byte) bool {
	if len(want) != len(got) || len(want) == 0 {
		return false
	}
	return want[0]&0x0F == got[0]&0x0F && bytes.Equal(want[1:], got[1:])
}

func (c *Controller) pressKey(ctx context.Context, key UserControlCode) error {
	if err := c.send(ctx, NewCommand(TV, UserControlPressed{Key: key})); err != nil {
		return err
	}
	return c.send(ctx, NewCommand(TV, UserControlReleased{}))
}

// OnOff sends Image View On or Standby to the display and records the
// requested state.
func (c *Controller) OnOff(ctx context.Context, on bool) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	var msg Message = Standby{}
	if on {
		msg = ImageViewOn{}
	}
	if err := c.send(ctx, NewCommand(TV, msg)); err != nil {
		return err
	}
	c.setPower(on)
	return nil
}

// VolumeChange presses volume up steps times, or volume down -steps times.
func (c *Controller) VolumeChange(ctx context.Context, steps int) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	key := KeyVolumeUp
	if steps < 0 {
		key = KeyVolumeDown
		steps = -steps
	}
	for i := 0; i < steps; i++ {
		if err := c.pressKey(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Mute presses volume down, mute, volume up. The same sequence is sent for
// both values of mute; the display tracks the toggle.
func (c *Controller) Mute(ctx context.Context, mute bool) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	log.Debug().Bool("mute", mute).Msg("CEC mute")
	for _, key := range []UserControlCode{KeyVolumeDown, KeyMute, KeyVolumeUp} {
		if err := c.pressKey(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// SetInput announces the input's physical address as the active source.
func (c *Controller) SetInput(ctx context.Context, in Input) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	pa := in.PhysicalAddress()
	report := ReportPhysicalAddress{Address: pa, DeviceType: c.opts.DeviceType}
	if err := c.send(ctx, NewCommand(Broadcast, report)); err != nil {
		return err
	}
	if err := c.send(ctx, NewCommand(Broadcast, ActiveSource{Address: pa})); err != nil {
		return err
	}
	c.setInput(pa, false)
	return nil
}

// PollAll asks every configured peer for its OSD name and physical
// address. Peers that do not acknowledge are skipped.
func (c *Controller) PollAll(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	for _, la := range c.opts.Peers {
		for _, msg := range []Message{GiveOSDName{}, GivePhysicalAddress{}} {
			err := c.send(ctx, NewCommand(la, msg))
			if errors.Is(err, ErrNoAck) {
				log.Debug().Str("peer", la.String()).Msg("Peer did not acknowledge poll")
				break
			}
			if err != nil {
				return fmt.Errorf("poll %s: %w", la, err)
			}
		}
	}
	return nil
}

// StartPolling runs PollAll every interval until ctx is done or the
// controller is closed.
func (c *Controller) StartPolling(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stopChan:
				return
			case <-ticker.C:
				if err := c.PollAll(ctx); err != nil {
					log.Warn().Err(err).Msg("Periodic CEC poll failed")
				}
			}
		}
	}()
}

// TransmitRaw parses frame and sends it. It is meant for diagnostics.
func (c *Controller) TransmitRaw(ctx context.Context, frame []byte) error {
	cmd, err := Parse(frame)
	if err != nil {
		return err
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.send(ctx, cmd)
}

// PowerState reports whether the display is believed to be on.
func (c *Controller) PowerState() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.power
}

// InputState returns the physical address of the active source.
func (c *Controller) InputState() PhysicalAddress {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.input
}

// Names returns a copy of the names reported per physical address.
func (c *Controller) Names() map[PhysicalAddress][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[PhysicalAddress][]string, len(c.names))
	for pa, names := range c.names {
		out[pa] = append([]string(nil), names...)
	}
	return out
}

func (c *Controller) setPower(on bool) {
	c.mu.Lock()
	changed := c.power != on
	c.power = on
	c.mu.Unlock()

	if changed {
		c.publishEvent(device.Event{
			Type:      device.EventPowerChanged,
			Message:   powerString(on),
			Timestamp: time.Now(),
		})
	}
}

// setInput records a new active source. Observed source changes also mean
// the display is awake.
func (c *Controller) setInput(pa PhysicalAddress, wake bool) {
	c.mu.Lock()
	changed := c.input != pa
	c.input = pa
	c.mu.Unlock()

	if wake {
		c.setPower(true)
	}
	if changed {
		c.publishEvent(device.Event{
			Type:      device.EventInputChanged,
			Message:   pa.String(),
			Timestamp: time.Now(),
		})
	}
}

func powerString(on bool) string {
	if on {
		return device.PowerOn
	}
	return device.PowerStandby
}

// handleTx receives every frame the transport put on the bus.
func (c *Controller) handleTx(cmd Command) {
	b, err := cmd.Bytes()
	if err != nil {
		log.Warn().Err(err).Msg("Unencodable transmit echo")
		return
	}

	select {
	case c.echo <- b:
	default:
		log.Warn().Msg("CEC echo channel full, dropping echo")
	}

	c.publishEvent(device.Event{
		Type:      device.EventFrameSent,
		Frame:     FormatFrame(b),
		Message:   messageName(cmd),
		Timestamp: time.Now(),
	})
}

// handleRx runs on the transport's receive goroutine. Replies go straight
// to the transport: waiting for an echo here would block the goroutine
// that delivers echoes.
func (c *Controller) handleRx(cmd Command) {
	log.Debug().
		Str("from", cmd.Initiator.String()).
		Str("to", cmd.Destination.String()).
		Str("frame", cmd.String()).
		Msg("CEC RX")

	c.touchPeer(cmd.Initiator)

	switch m := cmd.Message.(type) {
	case GiveOSDName:
		c.reply(cmd.Initiator, SetOSDName{Name: c.opts.OSDName})
	case GiveDeviceVendorID:
		c.reply(Broadcast, DeviceVendorID{VendorID: c.opts.VendorID})
	case GivePhysicalAddress:
		pa, err := c.conn.PhysicalAddress()
		if err != nil {
			log.Warn().Err(err).Msg("Cannot report physical address")
			break
		}
		c.reply(Broadcast, ReportPhysicalAddress{Address: pa, DeviceType: c.opts.DeviceType})
	case GiveDevicePowerStatus:
		c.reply(cmd.Initiator, ReportPowerStatus{Status: PowerOn})
	case GetCECVersion:
		c.reply(cmd.Initiator, CECVersion{Version: Version14})
	case ImageViewOn, TextViewOn:
		c.setPower(true)
	case Standby:
		c.setPower(false)
	case ActiveSource:
		c.setInput(m.Address, true)
	case RoutingChange:
		c.setInput(m.New, true)
	case SetStreamPath:
		c.setInput(m.Address, true)
	case ReportPhysicalAddress:
		c.recordPhysical(cmd.Initiator, m.Address)
	case SetOSDName:
		c.recordName(cmd.Initiator, m.Name)
	case DeviceVendorID:
		c.updatePeer(cmd.Initiator, func(p *peer) {
			p.vendorID, p.hasVendor = m.VendorID, true
		})
	case ReportPowerStatus:
		c.updatePeer(cmd.Initiator, func(p *peer) {
			p.power, p.hasPower = m.Status, true
		})
		if cmd.Initiator == TV {
			c.setPower(m.Status == PowerOn || m.Status == PowerTransitionToOn)
		}
	case VendorCommand:
		c.handleVendorCommand(cmd.Initiator, m)
	}

	b, _ := cmd.Bytes()
	c.publishEvent(device.Event{
		Type:      device.EventFrameReceived,
		Frame:     FormatFrame(b),
		Message:   messageName(cmd),
		Timestamp: time.Now(),
	})
}

func (c *Controller) reply(dst LogicalAddress, msg Message) {
	cmd := NewCommand(dst, msg)
	if err := c.conn.Transmit(cmd); err != nil {
		log.Warn().Err(err).Str("frame", cmd.String()).Msg("CEC reply failed")
	}
}

func (c *Controller) peerLocked(la LogicalAddress) *peer {
	p, ok := c.peers[la]
	if !ok {
		p = &peer{physical: UnassignedPhysicalAddress}
		c.peers[la] = p
	}
	p.lastSeen = time.Now()
	return p
}

func (c *Controller) touchPeer(la LogicalAddress) {
	if la == Broadcast {
		return
	}
	c.mu.Lock()
	_, known := c.peers[la]
	c.peerLocked(la)
	c.mu.Unlock()

	if !known {
		dev := c.deviceFor(la)
		c.publishEvent(device.Event{
			Type:      device.EventDeviceDiscovered,
			Device:    &dev,
			Timestamp: time.Now(),
		})
	}
}

// updatePeer applies fn to the entry for la. Frames from an unregistered
// initiator carry no identity and are not recorded.
func (c *Controller) updatePeer(la LogicalAddress, fn func(p *peer)) {
	if la == Broadcast {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.peerLocked(la))
}

func (c *Controller) recordPhysical(la LogicalAddress, pa PhysicalAddress) {
	c.updatePeer(la, func(p *peer) {
		p.physical = pa
		if p.name != "" {
			c.addNameLocked(pa, p.name)
		}
	})
}

func (c *Controller) recordName(la LogicalAddress, name string) {
	c.updatePeer(la, func(p *peer) {
		p.name = name
		if p.physical != UnassignedPhysicalAddress {
			c.addNameLocked(p.physical, name)
		}
	})
}

func (c *Controller) addNameLocked(pa PhysicalAddress, name string) {
	for _, n := range c.names[pa] {
		if n == name {
			return
		}
	}
	c.names[pa] = append(c.names[pa], name)
}

func messageName(cmd Command) string {
	if cmd.Message == nil {
		return "poll"
	}
	return cmd.Message.Opcode().String()
}

// publishEvent sends a bus event to all subscribers.
func (c *Controller) publishEvent(evt device.Event) {
	c.subscribersMu.Lock()
	defer c.subscribersMu.Unlock()

	for _, ch := range c.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

// NotifyHDMIStatus publishes a display link change reported by the
// transport, such as a hotplug or mode switch.
func (c *Controller) NotifyHDMIStatus(status string) {
	log.Info().Str("status", status).Msg("HDMI status changed")
	c.publishEvent(device.Event{
		Type:      device.EventHDMIStatusChanged,
		Message:   status,
		Timestamp: time.Now(),
	})
}

// --- device.EventSubscriber interface ---

func (c *Controller) Subscribe() chan device.Event {
	ch := make(chan device.Event, 16)
	c.subscribersMu.Lock()
	c.subscribers = append(c.subscribers, ch)
	c.subscribersMu.Unlock()
	return ch
}

func (c *Controller) Unsubscribe(ch chan device.Event) {
	c.subscribersMu.Lock()
	defer c.subscribersMu.Unlock()

	for i, sub := range c.subscribers {
		if sub == ch {
			c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

func (c *Controller) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected
}

// Close stops polling and closes the transport when it holds resources.
func (c *Controller) Close() {
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	c.stopOnce.Do(func() { close(c.stopChan) })

	if closer, ok := c.conn.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close CEC transport")
		}
	}

	log.Info().Msg("CEC controller closed")
}
