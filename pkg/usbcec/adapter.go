// Package usbcec implements cec.Connection for Pulse-Eight style USB-CEC
// adapters attached over a serial port.
package usbcec

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/cecvol/pkg/cec"
)

const (
	commandTimeout  = 1 * time.Second
	transmitTimeout = 2 * time.Second
)

// Adapter is a cec.Connection backed by a USB-CEC adapter.
type Adapter struct {
	port io.ReadWriteCloser
	la   cec.LogicalAddress

	// opMu serializes request/response exchanges with the adapter.
	opMu      sync.Mutex
	responses chan message

	physMu   sync.Mutex
	physical cec.PhysicalAddress

	cbMu sync.Mutex
	rxCb func(cec.Command)
	txCb func(cec.Command)

	rxFrame []byte
	rxQueue chan cec.Command

	stopChan chan struct{}
	stopOnce sync.Once
	stopped  chan struct{}
}

// Open opens the adapter at portPath, puts it in controlled mode and
// makes it acknowledge frames addressed to la.
func Open(portPath string, la cec.LogicalAddress) (*Adapter, error) {
	port, err := OpenSerial(portPath)
	if err != nil {
		return nil, err
	}

	a := NewAdapter(port, la)
	if err := a.Start(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// NewAdapter wraps an already open port. Call Start before use.
func NewAdapter(port io.ReadWriteCloser, la cec.LogicalAddress) *Adapter {
	return &Adapter{
		port:      port,
		la:        la,
		physical:  cec.UnassignedPhysicalAddress,
		responses: make(chan message, 16),
		rxQueue:   make(chan cec.Command, 32),
		stopChan:  make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

// Start launches the reader, pings the adapter and configures the ack mask.
func (a *Adapter) Start() error {
	go a.readLoop()
	go a.dispatchLoop()

	if err := a.request(codePing, nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if err := a.request(codeSetControlled, []byte{1}); err != nil {
		return fmt.Errorf("set controlled: %w", err)
	}
	mask := uint16(1) << a.la
	if err := a.request(codeSetAckMask, []byte{byte(mask >> 8), byte(mask)}); err != nil {
		return fmt.Errorf("set ack mask: %w", err)
	}

	if fw, err := a.query(codeFirmwareVersion); err == nil && len(fw) >= 2 {
		log.Info().Uint16("firmware", uint16(fw[0])<<8|uint16(fw[1])).Msg("USB-CEC adapter ready")
	} else {
		log.Info().Msg("USB-CEC adapter ready")
	}
	return nil
}

func (a *Adapter) write(b []byte) error {
	_, err := a.port.Write(b)
	return err
}

func (a *Adapter) drainResponses() {
	for {
		select {
		case <-a.responses:
		default:
			return
		}
	}
}

// await returns the first response accepted by match.
func (a *Adapter) await(timeout time.Duration, match func(message) bool) (message, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case m := <-a.responses:
			if match(m) {
				return m, nil
			}
		case <-timer.C:
			return message{}, ErrTimeout
		case <-a.stopChan:
			return message{}, ErrClosed
		}
	}
}

// request sends a command and waits for it to be accepted.
func (a *Adapter) request(code byte, params []byte) error {
	a.opMu.Lock()
	defer a.opMu.Unlock()

	a.drainResponses()
	if err := a.write(encodeMessage(code, params...)); err != nil {
		return err
	}

	m, err := a.await(commandTimeout, func(m message) bool {
		return m.code == codeCommandAccepted || m.code == codeCommandRejected
	})
	if err != nil {
		return err
	}
	if m.code == codeCommandRejected {
		return fmt.Errorf("%w: code %d", ErrRejected, code)
	}
	return nil
}

// query sends a getter and returns the reply's parameters.
func (a *Adapter) query(code byte) ([]byte, error) {
	a.opMu.Lock()
	defer a.opMu.Unlock()

	a.drainResponses()
	if err := a.write(encodeMessage(code)); err != nil {
		return nil, err
	}

	m, err := a.await(commandTimeout, func(m message) bool {
		return m.code == code || m.code == codeCommandRejected
	})
	if err != nil {
		return nil, err
	}
	if m.code == codeCommandRejected {
		return nil, fmt.Errorf("%w: code %d", ErrRejected, code)
	}
	return m.param, nil
}

// ackPolarity is inverted for broadcast frames, where an asserted ack
// means a follower rejected the frame.
func ackPolarity(dst cec.LogicalAddress) byte {
	if dst == cec.Broadcast {
		return 0
	}
	return 1
}

// Transmit sends cmd byte by byte and waits for the adapter's verdict.
func (a *Adapter) Transmit(cmd cec.Command) error {
	if cmd.Initiator == cec.Unregistered {
		cmd.Initiator = a.la
	}
	frame, err := cmd.Bytes()
	if err != nil {
		return err
	}

	a.opMu.Lock()
	defer a.opMu.Unlock()

	a.drainResponses()

	out := encodeMessage(codeTransmitAckPolarity, ackPolarity(cmd.Destination))
	for i, b := range frame {
		code := byte(codeTransmit)
		if i == len(frame)-1 {
			code = codeTransmitEOM
		}
		out = append(out, encodeMessage(code, b)...)
	}
	if err := a.write(out); err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}

	m, err := a.await(transmitTimeout, func(m message) bool {
		return m.code >= codeTransmitSucceeded && m.code <= codeTransmitFailedTimeoutLine ||
			m.code == codeCommandRejected
	})
	if err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}
	if err := transmitError(m.code); err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}

	log.Debug().Str("frame", cmd.String()).Msg("USB-CEC TX")

	a.cbMu.Lock()
	fn := a.txCb
	a.cbMu.Unlock()
	if fn != nil {
		fn(cmd)
	}
	return nil
}

func transmitError(code byte) error {
	switch code {
	case codeTransmitSucceeded:
		return nil
	case codeTransmitFailedAck:
		return ErrNoAck
	case codeTransmitFailedLine:
		return ErrLineError
	case codeTransmitFailedTimeoutData, codeTransmitFailedTimeoutLine:
		return ErrTimeout
	case codeCommandRejected:
		return ErrRejected
	default:
		return fmt.Errorf("%w: unexpected code %d", ErrFraming, code)
	}
}

func (a *Adapter) LogicalAddress() (cec.LogicalAddress, error) {
	return a.la, nil
}

// PhysicalAddress queries the adapter once and caches the answer.
func (a *Adapter) PhysicalAddress() (cec.PhysicalAddress, error) {
	a.physMu.Lock()
	defer a.physMu.Unlock()

	if a.physical != cec.UnassignedPhysicalAddress {
		return a.physical, nil
	}

	param, err := a.query(codeGetPhysicalAddress)
	if err != nil {
		return cec.UnassignedPhysicalAddress, err
	}
	if len(param) < 2 {
		return cec.UnassignedPhysicalAddress, fmt.Errorf("%w: short physical address reply", ErrFraming)
	}
	a.physical = cec.PhysicalAddress(uint16(param[0])<<8 | uint16(param[1]))
	return a.physical, nil
}

func (a *Adapter) SetRxCallback(fn func(cec.Command)) {
	a.cbMu.Lock()
	a.rxCb = fn
	a.cbMu.Unlock()
}

func (a *Adapter) SetTxCallback(fn func(cec.Command)) {
	a.cbMu.Lock()
	a.txCb = fn
	a.cbMu.Unlock()
}

// readLoop decodes adapter messages until the port fails or is closed.
func (a *Adapter) readLoop() {
	defer close(a.stopped)

	var d decoder
	buf := make([]byte, 64)
	for {
		n, err := a.port.Read(buf)
		if err != nil {
			select {
			case <-a.stopChan:
			default:
				log.Error().Err(err).Msg("USB-CEC read error")
				a.stop()
			}
			return
		}

		for _, b := range buf[:n] {
			body, ok := d.feed(b)
			if !ok {
				continue
			}
			m, err := decodeBody(body)
			if err != nil {
				log.Debug().Err(err).Msg("USB-CEC discarding message")
				continue
			}
			a.handleMessage(m)
		}
	}
}

func (a *Adapter) handleMessage(m message) {
	switch m.code {
	case codeFrameStart:
		a.rxFrame = a.rxFrame[:0]
		a.appendRx(m)

	case codeFrameData:
		if len(a.rxFrame) == 0 {
			log.Debug().Msg("USB-CEC frame data without start")
			return
		}
		a.appendRx(m)

	case codeReceiveFailed, codeHighError, codeLowError, codeTimeoutError:
		log.Debug().Uint8("code", m.code).Msg("USB-CEC receive error")
		a.rxFrame = a.rxFrame[:0]

	default:
		select {
		case a.responses <- m:
		default:
			log.Warn().Str("message", m.String()).Msg("USB-CEC response channel full, dropping")
		}
	}
}

func (a *Adapter) appendRx(m message) {
	if len(m.param) > 0 {
		a.rxFrame = append(a.rxFrame, m.param[0])
	}
	if !m.eom {
		return
	}

	frame := a.rxFrame
	a.rxFrame = nil

	cmd, err := cec.Parse(frame)
	if err != nil {
		log.Warn().Err(err).Str("frame", cec.FormatFrame(frame)).Msg("Failed to decode received CEC frame")
		return
	}
	log.Debug().Str("frame", cmd.String()).Msg("USB-CEC RX")

	select {
	case a.rxQueue <- cmd:
	default:
		log.Warn().Str("frame", cmd.String()).Msg("USB-CEC rx queue full, dropping frame")
	}
}

// dispatchLoop delivers received frames off the reader goroutine, so a
// callback may transmit without starving the reader.
func (a *Adapter) dispatchLoop() {
	for {
		select {
		case cmd := <-a.rxQueue:
			a.cbMu.Lock()
			fn := a.rxCb
			a.cbMu.Unlock()
			if fn != nil {
				fn(cmd)
			}
		case <-a.stopChan:
			return
		}
	}
}

func (a *Adapter) stop() {
	a.stopOnce.Do(func() { close(a.stopChan) })
}

// Close stops the reader and closes the port.
func (a *Adapter) Close() error {
	a.stop()
	err := a.port.Close()
	log.Info().Msg("USB-CEC adapter closed")
	return err
}

var _ cec.Connection = (*Adapter)(nil)
