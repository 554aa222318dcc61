// Package transport opens the bus connection selected by the stored
// settings.
package transport

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/cecvol/pkg/cec"
	"github.com/urmzd/cecvol/pkg/db"
	"github.com/urmzd/cecvol/pkg/usbcec"
)

var (
	// ErrUnknownTransport indicates a transport kind this build does not know
	ErrUnknownTransport = errors.New("unknown transport")

	// ErrUnsupportedTransport indicates a transport unavailable on this platform
	ErrUnsupportedTransport = errors.New("transport not supported on this platform")
)

// Transport is an open bus connection and whatever must be released with it.
type Transport struct {
	Kind string
	Conn cec.Connection

	closer io.Closer
	hdmi   func(fn func(status string))
}

// Open connects the transport named by s.Transport.
func Open(s db.CECSettings) (*Transport, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	switch s.Transport {
	case db.TransportNull:
		log.Info().Msg("Using null CEC transport")
		return &Transport{Kind: s.Transport, Conn: cec.NewNullConnection()}, nil

	case db.TransportSerial:
		la := logicalAddressFor(cec.DeviceType(s.DeviceType))
		adapter, err := usbcec.Open(s.SerialPort, la)
		if err != nil {
			return nil, fmt.Errorf("serial transport: %w", err)
		}
		return &Transport{Kind: s.Transport, Conn: adapter, closer: adapter}, nil

	case db.TransportVCHIQ:
		return openVCHIQ(s)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, s.Transport)
	}
}

// Options converts stored settings to controller options.
func Options(s db.CECSettings) cec.Options {
	opts := cec.DefaultOptions()
	opts.OSDName = s.OSDName
	opts.VendorID = s.VendorID
	opts.DeviceType = cec.DeviceType(s.DeviceType)
	if s.EchoTimeout > 0 {
		opts.EchoTimeout = s.EchoTimeout
	}
	return opts
}

// OnHDMIStatus registers fn for display link changes. Transports without
// a status channel ignore it.
func (t *Transport) OnHDMIStatus(fn func(status string)) {
	if t.hdmi != nil {
		t.hdmi(fn)
	}
}

// Close releases the transport.
func (t *Transport) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer.Close()
}

// logicalAddressFor picks the first address of the device type's range,
// for transports that do not allocate one themselves.
func logicalAddressFor(dt cec.DeviceType) cec.LogicalAddress {
	switch dt {
	case cec.DeviceTypeTV:
		return cec.TV
	case cec.DeviceTypeRecording:
		return cec.Recording1
	case cec.DeviceTypeTuner:
		return cec.Tuner1
	case cec.DeviceTypePlayback:
		return cec.Playback1
	case cec.DeviceTypeAudioSystem:
		return cec.AudioSystem
	default:
		return cec.FreeUse
	}
}
