package cec

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxFrameLen is the longest frame the bus carries: header, opcode and 14 operand bytes.
	MaxFrameLen = 16

	maxOSDNameLen       = 14
	maxOSDStringLen     = 13
	maxOperandsLen      = MaxFrameLen - 2
	maxTimerStatusLen   = 3
	maxAudioDescriptors = 4
	maxVendorID         = 0xFFFFFF
)

// minFrameLen is the minimum total frame length, header and opcode
// included, for every opcode in the catalogue.
var minFrameLen = map[Opcode]int{
	OpFeatureAbort:                4,
	OpImageViewOn:                 2,
	OpTunerStepIncrement:          2,
	OpTunerStepDecrement:          2,
	OpTunerDeviceStatus:           7,
	OpGiveTunerDeviceStatus:       3,
	OpRecordOn:                    3,
	OpRecordStatus:                3,
	OpRecordOff:                   2,
	OpTextViewOn:                  2,
	OpRecordTVScreen:              2,
	OpGiveDeckStatus:              3,
	OpDeckStatus:                  3,
	OpSetMenuLanguage:             5,
	OpClearAnalogueTimer:          13,
	OpSetAnalogueTimer:            13,
	OpTimerStatus:                 3,
	OpStandby:                     2,
	OpPlay:                        3,
	OpDeckControl:                 3,
	OpTimerClearedStatus:          3,
	OpUserControlPressed:          3,
	OpUserControlReleased:         2,
	OpGiveOSDName:                 2,
	OpSetOSDName:                  3,
	OpSetOSDString:                4,
	OpSetTimerProgramTitle:        3,
	OpSystemAudioModeRequest:      2,
	OpGiveAudioStatus:             2,
	OpSetSystemAudioMode:          3,
	OpReportAudioStatus:           3,
	OpGiveSystemAudioModeStatus:   2,
	OpSystemAudioModeStatus:       3,
	OpRoutingChange:               6,
	OpRoutingInformation:          4,
	OpActiveSource:                4,
	OpGivePhysicalAddress:         2,
	OpReportPhysicalAddress:       5,
	OpRequestActiveSource:         2,
	OpSetStreamPath:               4,
	OpDeviceVendorID:              5,
	OpVendorCommand:               3,
	OpVendorRemoteButtonDown:      3,
	OpVendorRemoteButtonUp:        2,
	OpGiveDeviceVendorID:          2,
	OpMenuRequest:                 3,
	OpMenuStatus:                  3,
	OpGiveDevicePowerStatus:       2,
	OpReportPowerStatus:           3,
	OpGetMenuLanguage:             2,
	OpSelectAnalogueService:       6,
	OpSelectDigitalService:        9,
	OpSetDigitalTimer:             16,
	OpClearDigitalTimer:           16,
	OpSetAudioRate:                3,
	OpInactiveSource:              4,
	OpCECVersion:                  3,
	OpGetCECVersion:               2,
	OpVendorCommandWithID:         5,
	OpClearExternalTimer:          11,
	OpSetExternalTimer:            11,
	OpReportShortAudioDescriptor:  5,
	OpRequestShortAudioDescriptor: 3,
	OpInitiateARC:                 2,
	OpReportARCInitiated:          2,
	OpReportARCTerminated:         2,
	OpRequestARCInitiation:        2,
	OpRequestARCTermination:       2,
	OpTerminateARC:                2,
	OpCDCMessage:                  5,
	OpAbort:                       2,
}

// MinFrameLen returns the minimum total frame length for op and whether op
// is a known opcode.
func MinFrameLen(op Opcode) (int, bool) {
	n, ok := minFrameLen[op]
	return n, ok
}

// Command is one addressed frame on the bus. A nil Message is the header-only
// polling frame.
type Command struct {
	Initiator   LogicalAddress
	Destination LogicalAddress
	Message     Message
}

// NewCommand addresses msg to dst. The initiator is left Unregistered; a
// hardware transport substitutes its own logical address when sending.
func NewCommand(dst LogicalAddress, msg Message) Command {
	return Command{Initiator: Unregistered, Destination: dst, Message: msg}
}

// Header returns the initiator/destination byte.
func (c Command) Header() byte {
	return byte(c.Initiator&0xF)<<4 | byte(c.Destination&0xF)
}

// IsPoll reports whether c is the header-only polling frame.
func (c Command) IsPoll() bool { return c.Message == nil }

// Bytes returns the full wire frame.
func (c Command) Bytes() ([]byte, error) {
	out := []byte{c.Header()}
	if c.Message == nil {
		return out, nil
	}
	body, err := Encode(c.Message)
	if err != nil {
		return nil, err
	}
	return append(out, body...), nil
}

func (c Command) String() string {
	b, err := c.Bytes()
	if err != nil {
		return fmt.Sprintf("%s->%s <%v>", c.Initiator, c.Destination, err)
	}
	return FormatFrame(b)
}

// FormatFrame renders a frame as colon-separated hex, e.g. "4f:82:10:00".
func FormatFrame(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02x", v)
	}
	return strings.Join(parts, ":")
}

// ParseFrameHex parses "4f:82:10:00", "4f 82 10 00" or "4f821000".
func ParseFrameHex(s string) ([]byte, error) {
	clean := strings.NewReplacer(":", "", " ", "", "-", "").Replace(strings.TrimSpace(s))
	b, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("decode frame %q: %w", s, err)
	}
	return b, nil
}

// Encode returns the opcode byte followed by the operands of m.
func Encode(m Message) ([]byte, error) {
	if err := validate(m); err != nil {
		return nil, err
	}
	params := m.Parameters()
	if len(params) > maxOperandsLen {
		return nil, fmt.Errorf("%w: %s carries %d operand bytes", ErrInvalidLength, m.Opcode(), len(params))
	}
	out := make([]byte, 0, 1+len(params))
	out = append(out, byte(m.Opcode()))
	return append(out, params...), nil
}

func validate(m Message) error {
	switch v := m.(type) {
	case FeatureAbort:
		if !v.Reason.valid() {
			return fmt.Errorf("%w: abort reason %d", ErrInvalidValue, v.Reason)
		}
	case UserControlPressed:
		if !v.Key.valid() {
			return fmt.Errorf("%w: user control code 0x%02x", ErrInvalidValue, uint8(v.Key))
		}
	case ReportPowerStatus:
		if !v.Status.valid() {
			return fmt.Errorf("%w: power status %d", ErrInvalidValue, v.Status)
		}
	case ReportPhysicalAddress:
		if !v.DeviceType.valid() {
			return fmt.Errorf("%w: device type %d", ErrInvalidValue, v.DeviceType)
		}
	case DeckStatus:
		if !v.Status.valid() {
			return fmt.Errorf("%w: deck status 0x%02x", ErrInvalidValue, uint8(v.Status))
		}
	case GiveDeckStatus:
		if !v.Request.valid() {
			return fmt.Errorf("%w: status request %d", ErrInvalidValue, v.Request)
		}
	case GiveTunerDeviceStatus:
		if !v.Request.valid() {
			return fmt.Errorf("%w: status request %d", ErrInvalidValue, v.Request)
		}
	case CECVersion:
		if !v.Version.valid() {
			return fmt.Errorf("%w: cec version %d", ErrInvalidValue, v.Version)
		}
	case Play:
		if !v.Mode.valid() {
			return fmt.Errorf("%w: play mode 0x%02x", ErrInvalidValue, uint8(v.Mode))
		}
	case DeckControl:
		if !v.Mode.valid() {
			return fmt.Errorf("%w: deck control mode %d", ErrInvalidValue, v.Mode)
		}
	case MenuRequest:
		if !v.Request.valid() {
			return fmt.Errorf("%w: menu request %d", ErrInvalidValue, v.Request)
		}
	case MenuStatus:
		if !v.State.valid() {
			return fmt.Errorf("%w: menu state %d", ErrInvalidValue, v.State)
		}
	case SetAudioRate:
		if !v.Rate.valid() {
			return fmt.Errorf("%w: audio rate %d", ErrInvalidValue, v.Rate)
		}
	case SetOSDName:
		if len(v.Name) == 0 || len(v.Name) > maxOSDNameLen {
			return fmt.Errorf("%w: osd name of %d bytes", ErrInvalidLength, len(v.Name))
		}
		if !validText(v.Name) {
			return ErrInvalidText
		}
	case SetOSDString:
		if !v.Control.valid() {
			return fmt.Errorf("%w: display control 0x%02x", ErrInvalidValue, uint8(v.Control))
		}
		if len(v.Text) == 0 || len(v.Text) > maxOSDStringLen {
			return fmt.Errorf("%w: osd string of %d bytes", ErrInvalidLength, len(v.Text))
		}
		if !validText(v.Text) {
			return ErrInvalidText
		}
	case SetTimerProgramTitle:
		if len(v.Title) == 0 || len(v.Title) > maxOSDNameLen {
			return fmt.Errorf("%w: program title of %d bytes", ErrInvalidLength, len(v.Title))
		}
		if !validText(v.Title) {
			return ErrInvalidText
		}
	case SetMenuLanguage:
		if len(v.Language) != 3 {
			return fmt.Errorf("%w: language code %q", ErrInvalidLength, v.Language)
		}
		if !validText(v.Language) {
			return ErrInvalidText
		}
	case VendorCommand:
		if len(v.Data) == 0 {
			return fmt.Errorf("%w: empty vendor command", ErrInvalidLength)
		}
	case VendorRemoteButtonDown:
		if len(v.Data) == 0 {
			return fmt.Errorf("%w: empty vendor button", ErrInvalidLength)
		}
	case DeviceVendorID:
		if v.VendorID > maxVendorID {
			return fmt.Errorf("%w: vendor id 0x%x", ErrInvalidValue, v.VendorID)
		}
	case VendorCommandWithID:
		if v.VendorID > maxVendorID {
			return fmt.Errorf("%w: vendor id 0x%x", ErrInvalidValue, v.VendorID)
		}
	case ReportAudioStatus:
		if v.Volume > 0x7F {
			return fmt.Errorf("%w: volume %d", ErrInvalidValue, v.Volume)
		}
	case SystemAudioModeRequest:
		if !v.On && v.Address != 0 {
			return fmt.Errorf("%w: address %s on an off request", ErrInvalidValue, v.Address)
		}
	case TunerDeviceStatus:
		if len(v.Info) < 5 {
			return fmt.Errorf("%w: tuner device info of %d bytes", ErrInvalidLength, len(v.Info))
		}
	case RecordOn:
		if len(v.Source) == 0 {
			return fmt.Errorf("%w: empty record source", ErrInvalidLength)
		}
	case TimerStatus:
		if len(v.Data) == 0 || len(v.Data) > maxTimerStatusLen {
			return fmt.Errorf("%w: timer status of %d bytes", ErrInvalidLength, len(v.Data))
		}
	case SetExternalTimer:
		return v.Source.validate()
	case ClearExternalTimer:
		return v.Source.validate()
	case ReportShortAudioDescriptor:
		if len(v.Descriptors) == 0 || len(v.Descriptors) > maxAudioDescriptors {
			return fmt.Errorf("%w: %d audio descriptors", ErrInvalidLength, len(v.Descriptors))
		}
	case RequestShortAudioDescriptor:
		if len(v.Formats) == 0 || len(v.Formats) > maxAudioDescriptors {
			return fmt.Errorf("%w: %d audio formats", ErrInvalidLength, len(v.Formats))
		}
	}
	return nil
}

func validText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			return false
		}
	}
	return true
}

// Parse decodes a wire frame. Frames shorter than their opcode's minimum
// length are rejected rather than padded.
func Parse(b []byte) (Command, error) {
	if len(b) == 0 {
		return Command{}, ErrEmptyFrame
	}
	if len(b) > MaxFrameLen {
		return Command{}, fmt.Errorf("%w: frame of %d bytes", ErrInvalidLength, len(b))
	}
	cmd := Command{
		Initiator:   LogicalAddress(b[0] >> 4),
		Destination: LogicalAddress(b[0] & 0xF),
	}
	if len(b) == 1 {
		return cmd, nil
	}

	op := Opcode(b[1])
	need, ok := minFrameLen[op]
	if !ok {
		return Command{}, fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, uint8(op))
	}
	if len(b) < need {
		return Command{}, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrTooShort, op, need, len(b))
	}

	msg, err := decodeMessage(op, b[2:])
	if err != nil {
		return Command{}, fmt.Errorf("%s: %w", op, err)
	}
	cmd.Message = msg
	return cmd, nil
}

func physicalAt(p []byte, i int) PhysicalAddress {
	return PhysicalAddress(uint16(p[i])<<8 | uint16(p[i+1]))
}

func parseBool(b byte) (bool, error) {
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: boolean 0x%02x", ErrInvalidValue, b)
}

// decodeMessage builds the variant for op from its operands. The caller has
// already checked len(p) against the minimum length table.
func decodeMessage(op Opcode, p []byte) (Message, error) {
	switch op {
	case OpFeatureAbort:
		reason := AbortReason(p[1])
		if !reason.valid() {
			return nil, fmt.Errorf("%w: abort reason %d", ErrInvalidValue, p[1])
		}
		return FeatureAbort{Aborted: Opcode(p[0]), Reason: reason}, nil
	case OpImageViewOn:
		return ImageViewOn{}, nil
	case OpTextViewOn:
		return TextViewOn{}, nil
	case OpStandby:
		return Standby{}, nil
	case OpGiveDeckStatus:
		req := StatusRequest(p[0])
		if !req.valid() {
			return nil, fmt.Errorf("%w: status request %d", ErrInvalidValue, p[0])
		}
		return GiveDeckStatus{Request: req}, nil
	case OpDeckStatus:
		st := DeckStatusInfo(p[0])
		if !st.valid() {
			return nil, fmt.Errorf("%w: deck status 0x%02x", ErrInvalidValue, p[0])
		}
		return DeckStatus{Status: st}, nil
	case OpSetMenuLanguage:
		lang := p[:3]
		if !utf8.Valid(lang) || !validText(string(lang)) {
			return nil, ErrInvalidText
		}
		return SetMenuLanguage{Language: string(lang)}, nil
	case OpUserControlPressed:
		key := UserControlCode(p[0])
		if !key.valid() {
			return nil, fmt.Errorf("%w: user control code 0x%02x", ErrInvalidValue, p[0])
		}
		return UserControlPressed{Key: key}, nil
	case OpUserControlReleased:
		return UserControlReleased{}, nil
	case OpGiveOSDName:
		return GiveOSDName{}, nil
	case OpSetOSDName:
		if !validText(string(p)) {
			return nil, ErrInvalidText
		}
		return SetOSDName{Name: string(p)}, nil
	case OpGiveAudioStatus:
		return GiveAudioStatus{}, nil
	case OpReportAudioStatus:
		return ReportAudioStatus{Muted: p[0]&0x80 != 0, Volume: p[0] & 0x7F}, nil
	case OpSetSystemAudioMode:
		on, err := parseBool(p[0])
		if err != nil {
			return nil, err
		}
		return SetSystemAudioMode{On: on}, nil
	case OpGiveSystemAudioModeStatus:
		return GiveSystemAudioModeStatus{}, nil
	case OpSystemAudioModeStatus:
		on, err := parseBool(p[0])
		if err != nil {
			return nil, err
		}
		return SystemAudioModeStatus{On: on}, nil
	case OpRoutingChange:
		return RoutingChange{Original: physicalAt(p, 0), New: physicalAt(p, 2)}, nil
	case OpRoutingInformation:
		return RoutingInformation{Address: physicalAt(p, 0)}, nil
	case OpActiveSource:
		return ActiveSource{Address: physicalAt(p, 0)}, nil
	case OpInactiveSource:
		return InactiveSource{Address: physicalAt(p, 0)}, nil
	case OpGivePhysicalAddress:
		return GivePhysicalAddress{}, nil
	case OpReportPhysicalAddress:
		dt := DeviceType(p[2])
		if !dt.valid() {
			return nil, fmt.Errorf("%w: device type %d", ErrInvalidValue, p[2])
		}
		return ReportPhysicalAddress{Address: physicalAt(p, 0), DeviceType: dt}, nil
	case OpRequestActiveSource:
		return RequestActiveSource{}, nil
	case OpSetStreamPath:
		return SetStreamPath{Address: physicalAt(p, 0)}, nil
	case OpDeviceVendorID:
		return DeviceVendorID{VendorID: uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])}, nil
	case OpVendorCommand:
		return VendorCommand{Data: append([]byte(nil), p...)}, nil
	case OpVendorRemoteButtonDown:
		return VendorRemoteButtonDown{Data: append([]byte(nil), p...)}, nil
	case OpVendorRemoteButtonUp:
		return VendorRemoteButtonUp{}, nil
	case OpGiveDeviceVendorID:
		return GiveDeviceVendorID{}, nil
	case OpGiveDevicePowerStatus:
		return GiveDevicePowerStatus{}, nil
	case OpReportPowerStatus:
		st := PowerStatus(p[0])
		if !st.valid() {
			return nil, fmt.Errorf("%w: power status %d", ErrInvalidValue, p[0])
		}
		return ReportPowerStatus{Status: st}, nil
	case OpGetMenuLanguage:
		return GetMenuLanguage{}, nil
	case OpCECVersion:
		v := Version(p[0])
		if !v.valid() {
			return nil, fmt.Errorf("%w: cec version %d", ErrInvalidValue, p[0])
		}
		return CECVersion{Version: v}, nil
	case OpGetCECVersion:
		return GetCECVersion{}, nil
	case OpAbort:
		return Abort{}, nil
	case OpTunerStepIncrement:
		return TunerStepIncrement{}, nil
	case OpTunerStepDecrement:
		return TunerStepDecrement{}, nil
	case OpTunerDeviceStatus:
		return TunerDeviceStatus{Info: append([]byte(nil), p...)}, nil
	case OpGiveTunerDeviceStatus:
		req := StatusRequest(p[0])
		if !req.valid() {
			return nil, fmt.Errorf("%w: status request %d", ErrInvalidValue, p[0])
		}
		return GiveTunerDeviceStatus{Request: req}, nil
	case OpSelectAnalogueService:
		return SelectAnalogueService{Service: analogueAt(p)}, nil
	case OpSelectDigitalService:
		return SelectDigitalService{Service: digitalAt(p)}, nil
	case OpRecordOn:
		return RecordOn{Source: append([]byte(nil), p...)}, nil
	case OpRecordStatus:
		return RecordStatus{Status: p[0]}, nil
	case OpRecordOff:
		return RecordOff{}, nil
	case OpRecordTVScreen:
		return RecordTVScreen{}, nil
	case OpSetAnalogueTimer:
		return SetAnalogueTimer{Timer: timerAt(p), Service: analogueAt(p[timerLen:])}, nil
	case OpClearAnalogueTimer:
		return ClearAnalogueTimer{Timer: timerAt(p), Service: analogueAt(p[timerLen:])}, nil
	case OpSetDigitalTimer:
		return SetDigitalTimer{Timer: timerAt(p), Service: digitalAt(p[timerLen:])}, nil
	case OpClearDigitalTimer:
		return ClearDigitalTimer{Timer: timerAt(p), Service: digitalAt(p[timerLen:])}, nil
	case OpSetExternalTimer:
		src, err := externalAt(p[timerLen:])
		if err != nil {
			return nil, err
		}
		return SetExternalTimer{Timer: timerAt(p), Source: src}, nil
	case OpClearExternalTimer:
		src, err := externalAt(p[timerLen:])
		if err != nil {
			return nil, err
		}
		return ClearExternalTimer{Timer: timerAt(p), Source: src}, nil
	case OpTimerStatus:
		return TimerStatus{Data: append([]byte(nil), p[:min(len(p), maxTimerStatusLen)]...)}, nil
	case OpTimerClearedStatus:
		return TimerClearedStatus{Status: p[0]}, nil
	case OpSetTimerProgramTitle:
		if !validText(string(p)) {
			return nil, ErrInvalidText
		}
		return SetTimerProgramTitle{Title: string(p)}, nil
	case OpPlay:
		mode := PlayMode(p[0])
		if !mode.valid() {
			return nil, fmt.Errorf("%w: play mode 0x%02x", ErrInvalidValue, p[0])
		}
		return Play{Mode: mode}, nil
	case OpDeckControl:
		mode := DeckControlMode(p[0])
		if !mode.valid() {
			return nil, fmt.Errorf("%w: deck control mode %d", ErrInvalidValue, p[0])
		}
		return DeckControl{Mode: mode}, nil
	case OpMenuRequest:
		req := MenuRequestType(p[0])
		if !req.valid() {
			return nil, fmt.Errorf("%w: menu request %d", ErrInvalidValue, p[0])
		}
		return MenuRequest{Request: req}, nil
	case OpMenuStatus:
		st := MenuState(p[0])
		if !st.valid() {
			return nil, fmt.Errorf("%w: menu state %d", ErrInvalidValue, p[0])
		}
		return MenuStatus{State: st}, nil
	case OpSetOSDString:
		ctl := DisplayControl(p[0])
		if !ctl.valid() {
			return nil, fmt.Errorf("%w: display control 0x%02x", ErrInvalidValue, p[0])
		}
		if !validText(string(p[1:])) {
			return nil, ErrInvalidText
		}
		return SetOSDString{Control: ctl, Text: string(p[1:])}, nil
	case OpSystemAudioModeRequest:
		if len(p) < 2 {
			return SystemAudioModeRequest{}, nil
		}
		return SystemAudioModeRequest{On: true, Address: physicalAt(p, 0)}, nil
	case OpSetAudioRate:
		rate := AudioRate(p[0])
		if !rate.valid() {
			return nil, fmt.Errorf("%w: audio rate %d", ErrInvalidValue, p[0])
		}
		return SetAudioRate{Rate: rate}, nil
	case OpReportShortAudioDescriptor:
		n := min(len(p)/3, maxAudioDescriptors)
		sads := make([]ShortAudioDescriptor, n)
		for i := range sads {
			copy(sads[i][:], p[3*i:])
		}
		return ReportShortAudioDescriptor{Descriptors: sads}, nil
	case OpRequestShortAudioDescriptor:
		return RequestShortAudioDescriptor{Formats: append([]byte(nil), p[:min(len(p), maxAudioDescriptors)]...)}, nil
	case OpInitiateARC:
		return InitiateARC{}, nil
	case OpReportARCInitiated:
		return ReportARCInitiated{}, nil
	case OpReportARCTerminated:
		return ReportARCTerminated{}, nil
	case OpRequestARCInitiation:
		return RequestARCInitiation{}, nil
	case OpRequestARCTermination:
		return RequestARCTermination{}, nil
	case OpTerminateARC:
		return TerminateARC{}, nil
	case OpVendorCommandWithID:
		return VendorCommandWithID{
			VendorID: uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2]),
			Data:     append([]byte(nil), p[3:]...),
		}, nil
	case OpCDCMessage:
		return CDCMessage{Initiator: physicalAt(p, 0), Code: p[2], Data: append([]byte(nil), p[3:]...)}, nil
	}
	return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, uint8(op))
}
