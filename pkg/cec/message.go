package cec

// Message is one of the supported bus messages. Each variant carries only
// the operands its opcode defines.
type Message interface {
	Opcode() Opcode
	Parameters() []byte
	message()
}

func addressBytes(p PhysicalAddress) []byte {
	return []byte{byte(p >> 8), byte(p)}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

type FeatureAbort struct {
	Aborted Opcode
	Reason  AbortReason
}

type ImageViewOn struct{}

type TextViewOn struct{}

type Standby struct{}

type GiveDeckStatus struct {
	Request StatusRequest
}

type DeckStatus struct {
	Status DeckStatusInfo
}

// SetMenuLanguage carries an ISO 639-2 code such as "eng".
type SetMenuLanguage struct {
	Language string
}

type UserControlPressed struct {
	Key UserControlCode
}

type UserControlReleased struct{}

type GiveOSDName struct{}

// SetOSDName carries a display name of at most 14 characters.
type SetOSDName struct {
	Name string
}

type GiveAudioStatus struct{}

// ReportAudioStatus carries the mute flag and a 0..127 volume.
type ReportAudioStatus struct {
	Muted  bool
	Volume uint8
}

type SetSystemAudioMode struct {
	On bool
}

type GiveSystemAudioModeStatus struct{}

type SystemAudioModeStatus struct {
	On bool
}

type RoutingChange struct {
	Original PhysicalAddress
	New      PhysicalAddress
}

type RoutingInformation struct {
	Address PhysicalAddress
}

type ActiveSource struct {
	Address PhysicalAddress
}

type InactiveSource struct {
	Address PhysicalAddress
}

type GivePhysicalAddress struct{}

type ReportPhysicalAddress struct {
	Address    PhysicalAddress
	DeviceType DeviceType
}

type RequestActiveSource struct{}

type SetStreamPath struct {
	Address PhysicalAddress
}

// DeviceVendorID carries a 24-bit IEEE OUI.
type DeviceVendorID struct {
	VendorID uint32
}

// VendorCommand carries an opaque vendor payload of 1 to 14 bytes.
type VendorCommand struct {
	Data []byte
}

type VendorRemoteButtonDown struct {
	Data []byte
}

type VendorRemoteButtonUp struct{}

type GiveDeviceVendorID struct{}

type GiveDevicePowerStatus struct{}

type ReportPowerStatus struct {
	Status PowerStatus
}

type GetMenuLanguage struct{}

type CECVersion struct {
	Version Version
}

type GetCECVersion struct{}

type Abort struct{}

func (FeatureAbort) Opcode() Opcode              { return OpFeatureAbort }
func (ImageViewOn) Opcode() Opcode               { return OpImageViewOn }
func (TextViewOn) Opcode() Opcode                { return OpTextViewOn }
func (Standby) Opcode() Opcode                   { return OpStandby }
func (GiveDeckStatus) Opcode() Opcode            { return OpGiveDeckStatus }
func (DeckStatus) Opcode() Opcode                { return OpDeckStatus }
func (SetMenuLanguage) Opcode() Opcode           { return OpSetMenuLanguage }
func (UserControlPressed) Opcode() Opcode        { return OpUserControlPressed }
func (UserControlReleased) Opcode() Opcode       { return OpUserControlReleased }
func (GiveOSDName) Opcode() Opcode               { return OpGiveOSDName }
func (SetOSDName) Opcode() Opcode                { return OpSetOSDName }
func (GiveAudioStatus) Opcode() Opcode           { return OpGiveAudioStatus }
func (ReportAudioStatus) Opcode() Opcode         { return OpReportAudioStatus }
func (SetSystemAudioMode) Opcode() Opcode        { return OpSetSystemAudioMode }
func (GiveSystemAudioModeStatus) Opcode() Opcode { return OpGiveSystemAudioModeStatus }
func (SystemAudioModeStatus) Opcode() Opcode     { return OpSystemAudioModeStatus }
func (RoutingChange) Opcode() Opcode             { return OpRoutingChange }
func (RoutingInformation) Opcode() Opcode        { return OpRoutingInformation }
func (ActiveSource) Opcode() Opcode              { return OpActiveSource }
func (InactiveSource) Opcode() Opcode            { return OpInactiveSource }
func (GivePhysicalAddress) Opcode() Opcode       { return OpGivePhysicalAddress }
func (ReportPhysicalAddress) Opcode() Opcode     { return OpReportPhysicalAddress }
func (RequestActiveSource) Opcode() Opcode       { return OpRequestActiveSource }
func (SetStreamPath) Opcode() Opcode             { return OpSetStreamPath }
func (DeviceVendorID) Opcode() Opcode            { return OpDeviceVendorID }
func (VendorCommand) Opcode() Opcode             { return OpVendorCommand }
func (VendorRemoteButtonDown) Opcode() Opcode    { return OpVendorRemoteButtonDown }
func (VendorRemoteButtonUp) Opcode() Opcode      { return OpVendorRemoteButtonUp }
func (GiveDeviceVendorID) Opcode() Opcode        { return OpGiveDeviceVendorID }
func (GiveDevicePowerStatus) Opcode() Opcode     { return OpGiveDevicePowerStatus }
func (ReportPowerStatus) Opcode() Opcode         { return OpReportPowerStatus }
func (GetMenuLanguage) Opcode() Opcode           { return OpGetMenuLanguage }
func (CECVersion) Opcode() Opcode                { return OpCECVersion }
func (GetCECVersion) Opcode() Opcode             { return OpGetCECVersion }
func (Abort) Opcode() Opcode                     { return OpAbort }

func (m FeatureAbort) Parameters() []byte       { return []byte{byte(m.Aborted), byte(m.Reason)} }
func (ImageViewOn) Parameters() []byte          { return nil }
func (TextViewOn) Parameters() []byte           { return nil }
func (Standby) Parameters() []byte              { return nil }
func (m GiveDeckStatus) Parameters() []byte     { return []byte{byte(m.Request)} }
func (m DeckStatus) Parameters() []byte         { return []byte{byte(m.Status)} }
func (m SetMenuLanguage) Parameters() []byte    { return []byte(m.Language) }
func (m UserControlPressed) Parameters() []byte { return []byte{byte(m.Key)} }
func (UserControlReleased) Parameters() []byte  { return nil }
func (GiveOSDName) Parameters() []byte          { return nil }
func (m SetOSDName) Parameters() []byte         { return []byte(m.Name) }
func (GiveAudioStatus) Parameters() []byte      { return nil }
func (m SetSystemAudioMode) Parameters() []byte { return []byte{boolByte(m.On)} }
func (GiveSystemAudioModeStatus) Parameters() []byte {
	return nil
}
func (m SystemAudioModeStatus) Parameters() []byte { return []byte{boolByte(m.On)} }
func (m RoutingChange) Parameters() []byte {
	return append(addressBytes(m.Original), addressBytes(m.New)...)
}
func (m RoutingInformation) Parameters() []byte { return addressBytes(m.Address) }
func (m ActiveSource) Parameters() []byte       { return addressBytes(m.Address) }
func (m InactiveSource) Parameters() []byte     { return addressBytes(m.Address) }
func (GivePhysicalAddress) Parameters() []byte  { return nil }
func (m ReportPhysicalAddress) Parameters() []byte {
	return append(addressBytes(m.Address), byte(m.DeviceType))
}
func (RequestActiveSource) Parameters() []byte { return nil }
func (m SetStreamPath) Parameters() []byte     { return addressBytes(m.Address) }
func (m DeviceVendorID) Parameters() []byte {
	return []byte{byte(m.VendorID >> 16), byte(m.VendorID >> 8), byte(m.VendorID)}
}
func (m VendorCommand) Parameters() []byte          { return append([]byte(nil), m.Data...) }
func (m VendorRemoteButtonDown) Parameters() []byte { return append([]byte(nil), m.Data...) }
func (VendorRemoteButtonUp) Parameters() []byte     { return nil }
func (GiveDeviceVendorID) Parameters() []byte       { return nil }
func (GiveDevicePowerStatus) Parameters() []byte    { return nil }
func (m ReportPowerStatus) Parameters() []byte      { return []byte{byte(m.Status)} }
func (GetMenuLanguage) Parameters() []byte          { return nil }
func (m CECVersion) Parameters() []byte             { return []byte{byte(m.Version)} }
func (GetCECVersion) Parameters() []byte            { return nil }
func (Abort) Parameters() []byte                    { return nil }

func (m ReportAudioStatus) Parameters() []byte {
	return []byte{boolByte(m.Muted)<<7 | m.Volume&0x7F}
}

func (FeatureAbort) message()              {}
func (ImageViewOn) message()               {}
func (TextViewOn) message()                {}
func (Standby) message()                   {}
func (GiveDeckStatus) message()            {}
func (DeckStatus) message()                {}
func (SetMenuLanguage) message()           {}
func (UserControlPressed) message()        {}
func (UserControlReleased) message()       {}
func (GiveOSDName) message()               {}
func (SetOSDName) message()                {}
func (GiveAudioStatus) message()           {}
func (ReportAudioStatus) message()         {}
func (SetSystemAudioMode) message()        {}
func (GiveSystemAudioModeStatus) message() {}
func (SystemAudioModeStatus) message()     {}
func (RoutingChange) message()             {}
func (RoutingInformation) message()        {}
func (ActiveSource) message()              {}
func (InactiveSource) message()            {}
func (GivePhysicalAddress) message()       {}
func (ReportPhysicalAddress) message()     {}
func (RequestActiveSource) message()       {}
func (SetStreamPath) message()             {}
func (DeviceVendorID) message()            {}
func (VendorCommand) message()             {}
func (VendorRemoteButtonDown) message()    {}
func (VendorRemoteButtonUp) message()      {}
func (GiveDeviceVendorID) message()        {}
func (GiveDevicePowerStatus) message()     {}
func (ReportPowerStatus) message()         {}
func (GetMenuLanguage) message()           {}
func (CECVersion) message()                {}
func (GetCECVersion) message()             {}
func (Abort) message()                     {}

// Tuner, recording and timer messages.

type TunerStepIncrement struct{}

type TunerStepDecrement struct{}

// TunerDeviceStatus carries the raw tuner device info: 5 bytes for an
// analogue service, 8 for a digital one.
type TunerDeviceStatus struct {
	Info []byte
}

type GiveTunerDeviceStatus struct {
	Request StatusRequest
}

type SelectAnalogueService struct {
	Service AnalogueService
}

type SelectDigitalService struct {
	Service DigitalService
}

// RecordOn carries the record source operand, starting with its type byte.
type RecordOn struct {
	Source []byte
}

type RecordStatus struct {
	Status uint8
}

type RecordOff struct{}

type RecordTVScreen struct{}

type SetAnalogueTimer struct {
	Timer   Timer
	Service AnalogueService
}

type ClearAnalogueTimer struct {
	Timer   Timer
	Service AnalogueService
}

type SetDigitalTimer struct {
	Timer   Timer
	Service DigitalService
}

type ClearDigitalTimer struct {
	Timer   Timer
	Service DigitalService
}

type SetExternalTimer struct {
	Timer  Timer
	Source ExternalSource
}

type ClearExternalTimer struct {
	Timer  Timer
	Source ExternalSource
}

// TimerStatus carries 1 or 3 bytes of timer status data.
type TimerStatus struct {
	Data []byte
}

type TimerClearedStatus struct {
	Status uint8
}

// SetTimerProgramTitle carries a title of at most 14 characters.
type SetTimerProgramTitle struct {
	Title string
}

type Play struct {
	Mode PlayMode
}

type DeckControl struct {
	Mode DeckControlMode
}

type MenuRequest struct {
	Request MenuRequestType
}

type MenuStatus struct {
	State MenuState
}

// SetOSDString carries up to 13 characters for the display to show.
type SetOSDString struct {
	Control DisplayControl
	Text    string
}

// SystemAudioModeRequest asks the audio system to play the source at
// Address, or to switch off when On is false.
type SystemAudioModeRequest struct {
	On      bool
	Address PhysicalAddress
}

type SetAudioRate struct {
	Rate AudioRate
}

type ReportShortAudioDescriptor struct {
	Descriptors []ShortAudioDescriptor
}

// RequestShortAudioDescriptor carries 1 to 4 audio format codes.
type RequestShortAudioDescriptor struct {
	Formats []byte
}

type InitiateARC struct{}

type ReportARCInitiated struct{}

type ReportARCTerminated struct{}

type RequestARCInitiation struct{}

type RequestARCTermination struct{}

type TerminateARC struct{}

type VendorCommandWithID struct {
	VendorID uint32
	Data     []byte
}

// CDCMessage is a capability discovery and control message.
type CDCMessage struct {
	Initiator PhysicalAddress
	Code      uint8
	Data      []byte
}

func (TunerStepIncrement) Opcode() Opcode          { return OpTunerStepIncrement }
func (TunerStepDecrement) Opcode() Opcode          { return OpTunerStepDecrement }
func (TunerDeviceStatus) Opcode() Opcode           { return OpTunerDeviceStatus }
func (GiveTunerDeviceStatus) Opcode() Opcode       { return OpGiveTunerDeviceStatus }
func (SelectAnalogueService) Opcode() Opcode       { return OpSelectAnalogueService }
func (SelectDigitalService) Opcode() Opcode        { return OpSelectDigitalService }
func (RecordOn) Opcode() Opcode                    { return OpRecordOn }
func (RecordStatus) Opcode() Opcode                { return OpRecordStatus }
func (RecordOff) Opcode() Opcode                   { return OpRecordOff }
func (RecordTVScreen) Opcode() Opcode              { return OpRecordTVScreen }
func (SetAnalogueTimer) Opcode() Opcode            { return OpSetAnalogueTimer }
func (ClearAnalogueTimer) Opcode() Opcode          { return OpClearAnalogueTimer }
func (SetDigitalTimer) Opcode() Opcode             { return OpSetDigitalTimer }
func (ClearDigitalTimer) Opcode() Opcode           { return OpClearDigitalTimer }
func (SetExternalTimer) Opcode() Opcode            { return OpSetExternalTimer }
func (ClearExternalTimer) Opcode() Opcode          { return OpClearExternalTimer }
func (TimerStatus) Opcode() Opcode                 { return OpTimerStatus }
func (TimerClearedStatus) Opcode() Opcode          { return OpTimerClearedStatus }
func (SetTimerProgramTitle) Opcode() Opcode        { return OpSetTimerProgramTitle }
func (Play) Opcode() Opcode                        { return OpPlay }
func (DeckControl) Opcode() Opcode                 { return OpDeckControl }
func (MenuRequest) Opcode() Opcode                 { return OpMenuRequest }
func (MenuStatus) Opcode() Opcode                  { return OpMenuStatus }
func (SetOSDString) Opcode() Opcode                { return OpSetOSDString }
func (SystemAudioModeRequest) Opcode() Opcode      { return OpSystemAudioModeRequest }
func (SetAudioRate) Opcode() Opcode                { return OpSetAudioRate }
func (ReportShortAudioDescriptor) Opcode() Opcode  { return OpReportShortAudioDescriptor }
func (RequestShortAudioDescriptor) Opcode() Opcode { return OpRequestShortAudioDescriptor }
func (InitiateARC) Opcode() Opcode                 { return OpInitiateARC }
func (ReportARCInitiated) Opcode() Opcode          { return OpReportARCInitiated }
func (ReportARCTerminated) Opcode() Opcode         { return OpReportARCTerminated }
func (RequestARCInitiation) Opcode() Opcode        { return OpRequestARCInitiation }
func (RequestARCTermination) Opcode() Opcode       { return OpRequestARCTermination }
func (TerminateARC) Opcode() Opcode                { return OpTerminateARC }
func (VendorCommandWithID) Opcode() Opcode         { return OpVendorCommandWithID }
func (CDCMessage) Opcode() Opcode                  { return OpCDCMessage }

func (TunerStepIncrement) Parameters() []byte      { return nil }
func (TunerStepDecrement) Parameters() []byte      { return nil }
func (m TunerDeviceStatus) Parameters() []byte     { return append([]byte(nil), m.Info...) }
func (m GiveTunerDeviceStatus) Parameters() []byte { return []byte{byte(m.Request)} }
func (m SelectAnalogueService) Parameters() []byte { return m.Service.bytes() }
func (m SelectDigitalService) Parameters() []byte  { return append([]byte(nil), m.Service[:]...) }
func (m RecordOn) Parameters() []byte              { return append([]byte(nil), m.Source...) }
func (m RecordStatus) Parameters() []byte          { return []byte{m.Status} }
func (RecordOff) Parameters() []byte               { return nil }
func (RecordTVScreen) Parameters() []byte          { return nil }
func (m SetAnalogueTimer) Parameters() []byte      { return append(m.Timer.bytes(), m.Service.bytes()...) }
func (m ClearAnalogueTimer) Parameters() []byte    { return append(m.Timer.bytes(), m.Service.bytes()...) }
func (m SetDigitalTimer) Parameters() []byte       { return append(m.Timer.bytes(), m.Service[:]...) }
func (m ClearDigitalTimer) Parameters() []byte     { return append(m.Timer.bytes(), m.Service[:]...) }
func (m SetExternalTimer) Parameters() []byte      { return append(m.Timer.bytes(), m.Source.bytes()...) }
func (m ClearExternalTimer) Parameters() []byte    { return append(m.Timer.bytes(), m.Source.bytes()...) }
func (m TimerStatus) Parameters() []byte           { return append([]byte(nil), m.Data...) }
func (m TimerClearedStatus) Parameters() []byte    { return []byte{m.Status} }
func (m SetTimerProgramTitle) Parameters() []byte  { return []byte(m.Title) }
func (m Play) Parameters() []byte                  { return []byte{byte(m.Mode)} }
func (m DeckControl) Parameters() []byte           { return []byte{byte(m.Mode)} }
func (m MenuRequest) Parameters() []byte           { return []byte{byte(m.Request)} }
func (m MenuStatus) Parameters() []byte            { return []byte{byte(m.State)} }
func (m SetOSDString) Parameters() []byte          { return append([]byte{byte(m.Control)}, m.Text...) }
func (m SetAudioRate) Parameters() []byte          { return []byte{byte(m.Rate)} }
func (m RequestShortAudioDescriptor) Parameters() []byte {
	return append([]byte(nil), m.Formats...)
}
func (InitiateARC) Parameters() []byte           { return nil }
func (ReportARCInitiated) Parameters() []byte    { return nil }
func (ReportARCTerminated) Parameters() []byte   { return nil }
func (RequestARCInitiation) Parameters() []byte  { return nil }
func (RequestARCTermination) Parameters() []byte { return nil }
func (TerminateARC) Parameters() []byte          { return nil }

func (m SystemAudioModeRequest) Parameters() []byte {
	if !m.On {
		return nil
	}
	return addressBytes(m.Address)
}

func (m ReportShortAudioDescriptor) Parameters() []byte {
	out := make([]byte, 0, 3*len(m.Descriptors))
	for _, d := range m.Descriptors {
		out = append(out, d[:]...)
	}
	return out
}

func (m VendorCommandWithID) Parameters() []byte {
	out := []byte{byte(m.VendorID >> 16), byte(m.VendorID >> 8), byte(m.VendorID)}
	return append(out, m.Data...)
}

func (m CDCMessage) Parameters() []byte {
	return append(append(addressBytes(m.Initiator), m.Code), m.Data...)
}

func (TunerStepIncrement) message()          {}
func (TunerStepDecrement) message()          {}
func (TunerDeviceStatus) message()           {}
func (GiveTunerDeviceStatus) message()       {}
func (SelectAnalogueService) message()       {}
func (SelectDigitalService) message()        {}
func (RecordOn) message()                    {}
func (RecordStatus) message()                {}
func (RecordOff) message()                   {}
func (RecordTVScreen) message()              {}
func (SetAnalogueTimer) message()            {}
func (ClearAnalogueTimer) message()          {}
func (SetDigitalTimer) message()             {}
func (ClearDigitalTimer) message()           {}
func (SetExternalTimer) message()            {}
func (ClearExternalTimer) message()          {}
func (TimerStatus) message()                 {}
func (TimerClearedStatus) message()          {}
func (SetTimerProgramTitle) message()        {}
func (Play) message()                        {}
func (DeckControl) message()                 {}
func (MenuRequest) message()                 {}
func (MenuStatus) message()                  {}
func (SetOSDString) message()                {}
func (SystemAudioModeRequest) message()      {}
func (SetAudioRate) message()                {}
func (ReportShortAudioDescriptor) message()  {}
func (RequestShortAudioDescriptor) message() {}
func (InitiateARC) message()                 {}
func (ReportARCInitiated) message()          {}
func (ReportARCTerminated) message()         {}
func (RequestARCInitiation) message()        {}
func (RequestARCTermination) message()       {}
func (TerminateARC) message()                {}
func (VendorCommandWithID) message()         {}
func (CDCMessage) message()                  {}
