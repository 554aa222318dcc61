package cec

import (
	"fmt"
	"strings"
)

// LogicalAddress is the 4-bit role address of a bus participant.
type LogicalAddress uint8

const (
	TV              LogicalAddress = 0x0
	Recording1      LogicalAddress = 0x1
	Recording2      LogicalAddress = 0x2
	Tuner1          LogicalAddress = 0x3
	Playback1       LogicalAddress = 0x4
	AudioSystem     LogicalAddress = 0x5
	Tuner2          LogicalAddress = 0x6
	Tuner3          LogicalAddress = 0x7
	Playback2       LogicalAddress = 0x8
	Recording3      LogicalAddress = 0x9
	Tuner4          LogicalAddress = 0xA
	Playback3       LogicalAddress = 0xB
	Reserved1       LogicalAddress = 0xC
	Reserved2       LogicalAddress = 0xD
	FreeUse         LogicalAddress = 0xE
	Broadcast       LogicalAddress = 0xF
	Unregistered                   = Broadcast
	maxLogicalValue                = 0xF
)

var logicalAddressNames = [...]string{
	"tv", "recording1", "recording2", "tuner1", "playback1", "audio_system",
	"tuner2", "tuner3", "playback2", "recording3", "tuner4", "playback3",
	"reserved1", "reserved2", "free_use", "broadcast",
}

func (a LogicalAddress) String() string {
	if a > maxLogicalValue {
		return fmt.Sprintf("logical(%d)", uint8(a))
	}
	return logicalAddressNames[a]
}

// ParseLogicalAddress returns the address named by its role or its hex digit.
func ParseLogicalAddress(s string) (LogicalAddress, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range logicalAddressNames {
		if s == name {
			return LogicalAddress(i), nil
		}
	}
	if len(s) == 1 {
		var v uint8
		if _, err := fmt.Sscanf(s, "%x", &v); err == nil {
			return LogicalAddress(v), nil
		}
	}
	return 0, fmt.Errorf("%w: logical address %q", ErrInvalidValue, s)
}

// DeviceType is the functional category of a bus participant.
type DeviceType uint8

const (
	DeviceTypeTV DeviceType = iota
	DeviceTypeRecording
	DeviceTypeReserved
	DeviceTypeTuner
	DeviceTypePlayback
	DeviceTypeAudioSystem
	DeviceTypeSwitch
	DeviceTypeVideoProcessor
)

var deviceTypeNames = [...]string{
	"tv", "recording", "reserved", "tuner", "playback", "audio_system", "switch", "video_processor",
}

func (t DeviceType) String() string {
	if int(t) < len(deviceTypeNames) {
		return deviceTypeNames[t]
	}
	return fmt.Sprintf("device_type(%d)", uint8(t))
}

// ParseDeviceType returns the device type named by s or by its number.
func ParseDeviceType(s string) (DeviceType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range deviceTypeNames {
		if s == name {
			return DeviceType(i), nil
		}
	}
	if len(s) == 1 && s[0] >= '0' && s[0] <= '7' {
		return DeviceType(s[0] - '0'), nil
	}
	return 0, fmt.Errorf("%w: device type %q", ErrInvalidValue, s)
}

func (t DeviceType) valid() bool { return t <= DeviceTypeVideoProcessor }

// DeviceTypeOf returns the device type implied by a logical address.
// FreeUse and Broadcast map to Switch, the role a device without a
// dedicated address takes.
func DeviceTypeOf(a LogicalAddress) DeviceType {
	switch a {
	case TV:
		return DeviceTypeTV
	case Recording1, Recording2, Recording3:
		return DeviceTypeRecording
	case Tuner1, Tuner2, Tuner3, Tuner4:
		return DeviceTypeTuner
	case Playback1, Playback2, Playback3:
		return DeviceTypePlayback
	case AudioSystem:
		return DeviceTypeAudioSystem
	case Reserved1, Reserved2:
		return DeviceTypeReserved
	default:
		return DeviceTypeSwitch
	}
}

// PhysicalAddress is the 16-bit topology address a.b.c.d.
type PhysicalAddress uint16

// UnassignedPhysicalAddress marks a device that has not been given a port.
const UnassignedPhysicalAddress PhysicalAddress = 0xFFFF

func (p PhysicalAddress) String() string {
	return fmt.Sprintf("%x.%x.%x.%x", uint16(p)>>12, (uint16(p)>>8)&0xF, (uint16(p)>>4)&0xF, uint16(p)&0xF)
}

// ParsePhysicalAddress parses the dotted a.b.c.d form.
func ParsePhysicalAddress(s string) (PhysicalAddress, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 4 {
		return 0, fmt.Errorf("%w: physical address %q", ErrInvalidValue, s)
	}
	var p uint16
	for _, part := range parts {
		var nib uint8
		if len(part) != 1 {
			return 0, fmt.Errorf("%w: physical address %q", ErrInvalidValue, s)
		}
		if _, err := fmt.Sscanf(part, "%x", &nib); err != nil {
			return 0, fmt.Errorf("%w: physical address %q", ErrInvalidValue, s)
		}
		p = p<<4 | uint16(nib)
	}
	return PhysicalAddress(p), nil
}

// PowerStatus is the operand of Report Power Status.
type PowerStatus uint8

const (
	PowerOn PowerStatus = iota
	PowerStandby
	PowerTransitionToOn
	PowerTransitionToStandby
)

func (s PowerStatus) valid() bool { return s <= PowerTransitionToStandby }

func (s PowerStatus) String() string {
	switch s {
	case PowerOn:
		return "on"
	case PowerStandby:
		return "standby"
	case PowerTransitionToOn:
		return "transition_to_on"
	case PowerTransitionToStandby:
		return "transition_to_standby"
	}
	return fmt.Sprintf("power_status(%d)", uint8(s))
}

// AbortReason is the reason operand of Feature Abort.
type AbortReason uint8

const (
	AbortUnrecognizedOpcode AbortReason = iota
	AbortNotInCorrectMode
	AbortCannotProvideSource
	AbortInvalidOperand
	AbortRefused
	AbortUnableToDetermine
)

func (r AbortReason) valid() bool { return r <= AbortUnableToDetermine }

// DeckStatusInfo is the operand of Deck Status.
type DeckStatusInfo uint8

const (
	DeckPlay DeckStatusInfo = 0x11 + iota
	DeckRecord
	DeckPlayReverse
	DeckStill
	DeckSlow
	DeckSlowReverse
	DeckFastForward
	DeckFastReverse
	DeckNoMedia
	DeckStop
	DeckSkipForward
	DeckSkipReverse
	DeckIndexSearchForward
	DeckIndexSearchReverse
	DeckOtherStatus
)

func (d DeckStatusInfo) valid() bool { return d >= DeckPlay && d <= DeckOtherStatus }

// StatusRequest is the operand of Give Deck Status.
type StatusRequest uint8

const (
	StatusRequestOn StatusRequest = iota + 1
	StatusRequestOff
	StatusRequestOnce
)

func (s StatusRequest) valid() bool { return s >= StatusRequestOn && s <= StatusRequestOnce }

// Version is the operand of CEC Version.
type Version uint8

const (
	Version11 Version = iota
	Version12
	Version12A
	Version13
	Version13A
	Version14
	Version20
)

func (v Version) valid() bool { return v <= Version20 }

// PlayMode is the operand of Play.
type PlayMode uint8

const (
	PlayFastForwardMin    PlayMode = 0x05
	PlayFastForwardMedium PlayMode = 0x06
	PlayFastForwardMax    PlayMode = 0x07
	PlayFastReverseMin    PlayMode = 0x09
	PlayFastReverseMedium PlayMode = 0x0A
	PlayFastReverseMax    PlayMode = 0x0B
	PlaySlowForwardMin    PlayMode = 0x15
	PlaySlowForwardMedium PlayMode = 0x16
	PlaySlowForwardMax    PlayMode = 0x17
	PlaySlowReverseMin    PlayMode = 0x19
	PlaySlowReverseMedium PlayMode = 0x1A
	PlaySlowReverseMax    PlayMode = 0x1B
	PlayReverse           PlayMode = 0x20
	PlayForward           PlayMode = 0x24
	PlayStill             PlayMode = 0x25
)

func (m PlayMode) valid() bool {
	switch {
	case m >= PlayFastForwardMin && m <= PlayFastForwardMax,
		m >= PlayFastReverseMin && m <= PlayFastReverseMax,
		m >= PlaySlowForwardMin && m <= PlaySlowForwardMax,
		m >= PlaySlowReverseMin && m <= PlaySlowReverseMax:
		return true
	}
	return m == PlayReverse || m == PlayForward || m == PlayStill
}

// DeckControlMode is the operand of Deck Control.
type DeckControlMode uint8

const (
	DeckControlSkipForward DeckControlMode = iota + 1
	DeckControlSkipReverse
	DeckControlStop
	DeckControlEject
)

func (m DeckControlMode) valid() bool { return m >= DeckControlSkipForward && m <= DeckControlEject }

// MenuRequestType is the operand of Menu Request.
type MenuRequestType uint8

const (
	MenuActivate MenuRequestType = iota
	MenuDeactivate
	MenuQuery
)

func (r MenuRequestType) valid() bool { return r <= MenuQuery }

// MenuState is the operand of Menu Status.
type MenuState uint8

const (
	MenuActivated MenuState = iota
	MenuDeactivated
)

func (s MenuState) valid() bool { return s <= MenuDeactivated }

// AudioRate is the operand of Set Audio Rate.
type AudioRate uint8

const (
	AudioRateOff AudioRate = iota
	AudioRateWideStandard
	AudioRateWideFast
	AudioRateWideSlow
	AudioRateNarrowStandard
	AudioRateNarrowFast
	AudioRateNarrowSlow
)

func (r AudioRate) valid() bool { return r <= AudioRateNarrowSlow }

// DisplayControl selects how long Set OSD String text stays on screen.
type DisplayControl uint8

const (
	DisplayDefaultTime   DisplayControl = 0x00
	DisplayUntilCleared  DisplayControl = 0x40
	DisplayClearPrevious DisplayControl = 0x80
)

func (d DisplayControl) valid() bool {
	return d == DisplayDefaultTime || d == DisplayUntilCleared || d == DisplayClearPrevious
}

// Input is a display input selectable by SetInput.
type Input uint8

const (
	HDMI1 Input = iota + 1
	HDMI2
	HDMI3
	HDMI4
)

// PhysicalAddress returns the port address the display uses for the input.
func (i Input) PhysicalAddress() PhysicalAddress {
	return PhysicalAddress(uint16(i) << 12)
}

func (i Input) String() string {
	return fmt.Sprintf("HDMI %d", uint8(i))
}

// ParseInput accepts "1", "HDMI 1", "hdmi1" and the like.
func ParseInput(s string) (Input, error) {
	n := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	n = strings.TrimPrefix(n, "hdmi")
	switch n {
	case "1":
		return HDMI1, nil
	case "2":
		return HDMI2, nil
	case "3":
		return HDMI3, nil
	case "4":
		return HDMI4, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedInput, s)
}
