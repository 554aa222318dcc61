package cec

import "fmt"

const (
	timerLen           = 7
	analogueServiceLen = 4
	digitalServiceLen  = 7

	externalPlug            byte = 0x04
	externalPhysicalAddress byte = 0x05
)

// Timer is the schedule shared by the timer messages. Hours and minutes
// are BCD, as on the wire.
type Timer struct {
	Day             uint8
	Month           uint8
	StartHour       uint8
	StartMinute     uint8
	DurationHours   uint8
	DurationMinutes uint8
	Recurrence      uint8
}

func (t Timer) bytes() []byte {
	return []byte{t.Day, t.Month, t.StartHour, t.StartMinute, t.DurationHours, t.DurationMinutes, t.Recurrence}
}

func timerAt(p []byte) Timer {
	return Timer{
		Day:             p[0],
		Month:           p[1],
		StartHour:       p[2],
		StartMinute:     p[3],
		DurationHours:   p[4],
		DurationMinutes: p[5],
		Recurrence:      p[6],
	}
}

// AnalogueService identifies an analogue broadcast by type, frequency and
// broadcast system.
type AnalogueService struct {
	BroadcastType uint8
	Frequency     uint16
	System        uint8
}

func (s AnalogueService) bytes() []byte {
	return []byte{s.BroadcastType, byte(s.Frequency >> 8), byte(s.Frequency), s.System}
}

func analogueAt(p []byte) AnalogueService {
	return AnalogueService{
		BroadcastType: p[0],
		Frequency:     uint16(p[1])<<8 | uint16(p[2]),
		System:        p[3],
	}
}

// DigitalService is the raw digital service identification.
type DigitalService [digitalServiceLen]byte

func digitalAt(p []byte) DigitalService {
	var s DigitalService
	copy(s[:], p)
	return s
}

// ExternalSource names an external plug or, when ByAddress is set, a
// physical address.
type ExternalSource struct {
	Plug      uint8
	Address   PhysicalAddress
	ByAddress bool
}

func (s ExternalSource) bytes() []byte {
	if s.ByAddress {
		return append([]byte{externalPhysicalAddress}, addressBytes(s.Address)...)
	}
	return []byte{externalPlug, s.Plug}
}

func (s ExternalSource) validate() error {
	if (s.ByAddress && s.Plug != 0) || (!s.ByAddress && s.Address != 0) {
		return fmt.Errorf("%w: external source sets both plug and address", ErrInvalidValue)
	}
	return nil
}

func externalAt(p []byte) (ExternalSource, error) {
	switch p[0] {
	case externalPlug:
		return ExternalSource{Plug: p[1]}, nil
	case externalPhysicalAddress:
		if len(p) < 3 {
			return ExternalSource{}, fmt.Errorf("%w: external physical address", ErrTooShort)
		}
		return ExternalSource{Address: physicalAt(p, 1), ByAddress: true}, nil
	}
	return ExternalSource{}, fmt.Errorf("%w: external source specifier 0x%02x", ErrInvalidValue, p[0])
}

// ShortAudioDescriptor is one 3-byte CEA-861 audio descriptor.
type ShortAudioDescriptor [3]byte
