package cec

import "fmt"

// Opcode is the operation byte following the header.
type Opcode uint8

const (
	OpFeatureAbort                Opcode = 0x00
	OpImageViewOn                 Opcode = 0x04
	OpTunerStepIncrement          Opcode = 0x05
	OpTunerStepDecrement          Opcode = 0x06
	OpTunerDeviceStatus           Opcode = 0x07
	OpGiveTunerDeviceStatus       Opcode = 0x08
	OpRecordOn                    Opcode = 0x09
	OpRecordStatus                Opcode = 0x0A
	OpRecordOff                   Opcode = 0x0B
	OpTextViewOn                  Opcode = 0x0D
	OpRecordTVScreen              Opcode = 0x0F
	OpGiveDeckStatus              Opcode = 0x1A
	OpDeckStatus                  Opcode = 0x1B
	OpSetMenuLanguage             Opcode = 0x32
	OpClearAnalogueTimer          Opcode = 0x33
	OpSetAnalogueTimer            Opcode = 0x34
	OpTimerStatus                 Opcode = 0x35
	OpStandby                     Opcode = 0x36
	OpPlay                        Opcode = 0x41
	OpDeckControl                 Opcode = 0x42
	OpTimerClearedStatus          Opcode = 0x43
	OpUserControlPressed          Opcode = 0x44
	OpUserControlReleased         Opcode = 0x45
	OpGiveOSDName                 Opcode = 0x46
	OpSetOSDName                  Opcode = 0x47
	OpSetOSDString                Opcode = 0x64
	OpSetTimerProgramTitle        Opcode = 0x67
	OpSystemAudioModeRequest      Opcode = 0x70
	OpGiveAudioStatus             Opcode = 0x71
	OpSetSystemAudioMode          Opcode = 0x72
	OpReportAudioStatus           Opcode = 0x7A
	OpGiveSystemAudioModeStatus   Opcode = 0x7D
	OpSystemAudioModeStatus       Opcode = 0x7E
	OpRoutingChange               Opcode = 0x80
	OpRoutingInformation          Opcode = 0x81
	OpActiveSource                Opcode = 0x82
	OpGivePhysicalAddress         Opcode = 0x83
	OpReportPhysicalAddress       Opcode = 0x84
	OpRequestActiveSource         Opcode = 0x85
	OpSetStreamPath               Opcode = 0x86
	OpDeviceVendorID              Opcode = 0x87
	OpVendorCommand               Opcode = 0x89
	OpVendorRemoteButtonDown      Opcode = 0x8A
	OpVendorRemoteButtonUp        Opcode = 0x8B
	OpGiveDeviceVendorID          Opcode = 0x8C
	OpMenuRequest                 Opcode = 0x8D
	OpMenuStatus                  Opcode = 0x8E
	OpGiveDevicePowerStatus       Opcode = 0x8F
	OpReportPowerStatus           Opcode = 0x90
	OpGetMenuLanguage             Opcode = 0x91
	OpSelectAnalogueService       Opcode = 0x92
	OpSelectDigitalService        Opcode = 0x93
	OpSetDigitalTimer             Opcode = 0x97
	OpClearDigitalTimer           Opcode = 0x99
	OpSetAudioRate                Opcode = 0x9A
	OpInactiveSource              Opcode = 0x9D
	OpCECVersion                  Opcode = 0x9E
	OpGetCECVersion               Opcode = 0x9F
	OpVendorCommandWithID         Opcode = 0xA0
	OpClearExternalTimer          Opcode = 0xA1
	OpSetExternalTimer            Opcode = 0xA2
	OpReportShortAudioDescriptor  Opcode = 0xA3
	OpRequestShortAudioDescriptor Opcode = 0xA4
	OpInitiateARC                 Opcode = 0xC0
	OpReportARCInitiated          Opcode = 0xC1
	OpReportARCTerminated         Opcode = 0xC2
	OpRequestARCInitiation        Opcode = 0xC3
	OpRequestARCTermination       Opcode = 0xC4
	OpTerminateARC                Opcode = 0xC5
	OpCDCMessage                  Opcode = 0xF8
	OpAbort                       Opcode = 0xFF
)

var opcodeNames = map[Opcode]string{
	OpFeatureAbort:                "feature_abort",
	OpImageViewOn:                 "image_view_on",
	OpTunerStepIncrement:          "tuner_step_increment",
	OpTunerStepDecrement:          "tuner_step_decrement",
	OpTunerDeviceStatus:           "tuner_device_status",
	OpGiveTunerDeviceStatus:       "give_tuner_device_status",
	OpRecordOn:                    "record_on",
	OpRecordStatus:                "record_status",
	OpRecordOff:                   "record_off",
	OpTextViewOn:                  "text_view_on",
	OpRecordTVScreen:              "record_tv_screen",
	OpGiveDeckStatus:              "give_deck_status",
	OpDeckStatus:                  "deck_status",
	OpSetMenuLanguage:             "set_menu_language",
	OpClearAnalogueTimer:          "clear_analogue_timer",
	OpSetAnalogueTimer:            "set_analogue_timer",
	OpTimerStatus:                 "timer_status",
	OpStandby:                     "standby",
	OpPlay:                        "play",
	OpDeckControl:                 "deck_control",
	OpTimerClearedStatus:          "timer_cleared_status",
	OpUserControlPressed:          "user_control_pressed",
	OpUserControlReleased:         "user_control_released",
	OpGiveOSDName:                 "give_osd_name",
	OpSetOSDName:                  "set_osd_name",
	OpSetOSDString:                "set_osd_string",
	OpSetTimerProgramTitle:        "set_timer_program_title",
	OpSystemAudioModeRequest:      "system_audio_mode_request",
	OpGiveAudioStatus:             "give_audio_status",
	OpSetSystemAudioMode:          "set_system_audio_mode",
	OpReportAudioStatus:           "report_audio_status",
	OpGiveSystemAudioModeStatus:   "give_system_audio_mode_status",
	OpSystemAudioModeStatus:       "system_audio_mode_status",
	OpRoutingChange:               "routing_change",
	OpRoutingInformation:          "routing_information",
	OpActiveSource:                "active_source",
	OpGivePhysicalAddress:         "give_physical_address",
	OpReportPhysicalAddress:       "report_physical_address",
	OpRequestActiveSource:         "request_active_source",
	OpSetStreamPath:               "set_stream_path",
	OpDeviceVendorID:              "device_vendor_id",
	OpVendorCommand:               "vendor_command",
	OpVendorRemoteButtonDown:      "vendor_remote_button_down",
	OpVendorRemoteButtonUp:        "vendor_remote_button_up",
	OpGiveDeviceVendorID:          "give_device_vendor_id",
	OpMenuRequest:                 "menu_request",
	OpMenuStatus:                  "menu_status",
	OpGiveDevicePowerStatus:       "give_device_power_status",
	OpReportPowerStatus:           "report_power_status",
	OpGetMenuLanguage:             "get_menu_language",
	OpSelectAnalogueService:       "select_analogue_service",
	OpSelectDigitalService:        "select_digital_service",
	OpSetDigitalTimer:             "set_digital_timer",
	OpClearDigitalTimer:           "clear_digital_timer",
	OpSetAudioRate:                "set_audio_rate",
	OpInactiveSource:              "inactive_source",
	OpCECVersion:                  "cec_version",
	OpGetCECVersion:               "get_cec_version",
	OpVendorCommandWithID:         "vendor_command_with_id",
	OpClearExternalTimer:          "clear_external_timer",
	OpSetExternalTimer:            "set_external_timer",
	OpReportShortAudioDescriptor:  "report_short_audio_descriptor",
	OpRequestShortAudioDescriptor: "request_short_audio_descriptor",
	OpInitiateARC:                 "initiate_arc",
	OpReportARCInitiated:          "report_arc_initiated",
	OpReportARCTerminated:         "report_arc_terminated",
	OpRequestARCInitiation:        "request_arc_initiation",
	OpRequestARCTermination:       "request_arc_termination",
	OpTerminateARC:                "terminate_arc",
	OpCDCMessage:                  "cdc_message",
	OpAbort:                       "abort",
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("opcode(0x%02x)", uint8(o))
}

// UserControlCode is the key operand of User Control Pressed.
type UserControlCode uint8

const (
	KeySelect                    UserControlCode = 0x00
	KeyUp                        UserControlCode = 0x01
	KeyDown                      UserControlCode = 0x02
	KeyLeft                      UserControlCode = 0x03
	KeyRight                     UserControlCode = 0x04
	KeyRightUp                   UserControlCode = 0x05
	KeyRightDown                 UserControlCode = 0x06
	KeyLeftUp                    UserControlCode = 0x07
	KeyLeftDown                  UserControlCode = 0x08
	KeyRootMenu                  UserControlCode = 0x09
	KeySetupMenu                 UserControlCode = 0x0A
	KeyContentsMenu              UserControlCode = 0x0B
	KeyFavoriteMenu              UserControlCode = 0x0C
	KeyExit                      UserControlCode = 0x0D
	KeyTopMenu                   UserControlCode = 0x10
	KeyDVDMenu                   UserControlCode = 0x11
	KeyNumberEntryMode           UserControlCode = 0x1D
	KeyNumber11                  UserControlCode = 0x1E
	KeyNumber12                  UserControlCode = 0x1F
	KeyNumber0                   UserControlCode = 0x20
	KeyNumber1                   UserControlCode = 0x21
	KeyNumber2                   UserControlCode = 0x22
	KeyNumber3                   UserControlCode = 0x23
	KeyNumber4                   UserControlCode = 0x24
	KeyNumber5                   UserControlCode = 0x25
	KeyNumber6                   UserControlCode = 0x26
	KeyNumber7                   UserControlCode = 0x27
	KeyNumber8                   UserControlCode = 0x28
	KeyNumber9                   UserControlCode = 0x29
	KeyDot                       UserControlCode = 0x2A
	KeyEnter                     UserControlCode = 0x2B
	KeyClear                     UserControlCode = 0x2C
	KeyNextFavorite              UserControlCode = 0x2F
	KeyChannelUp                 UserControlCode = 0x30
	KeyChannelDown               UserControlCode = 0x31
	KeyPreviousChannel           UserControlCode = 0x32
	KeySoundSelect               UserControlCode = 0x33
	KeyInputSelect               UserControlCode = 0x34
	KeyDisplayInformation        UserControlCode = 0x35
	KeyHelp                      UserControlCode = 0x36
	KeyPageUp                    UserControlCode = 0x37
	KeyPageDown                  UserControlCode = 0x38
	KeyPower                     UserControlCode = 0x40
	KeyVolumeUp                  UserControlCode = 0x41
	KeyVolumeDown                UserControlCode = 0x42
	KeyMute                      UserControlCode = 0x43
	KeyPlay                      UserControlCode = 0x44
	KeyStop                      UserControlCode = 0x45
	KeyPause                     UserControlCode = 0x46
	KeyRecord                    UserControlCode = 0x47
	KeyRewind                    UserControlCode = 0x48
	KeyFastForward               UserControlCode = 0x49
	KeyEject                     UserControlCode = 0x4A
	KeyForward                   UserControlCode = 0x4B
	KeyBackward                  UserControlCode = 0x4C
	KeyStopRecord                UserControlCode = 0x4D
	KeyPauseRecord               UserControlCode = 0x4E
	KeyAngle                     UserControlCode = 0x50
	KeySubPicture                UserControlCode = 0x51
	KeyVideoOnDemand             UserControlCode = 0x52
	KeyElectronicProgramGuide    UserControlCode = 0x53
	KeyTimerProgramming          UserControlCode = 0x54
	KeyInitialConfiguration      UserControlCode = 0x55
	KeySelectBroadcastType       UserControlCode = 0x56
	KeySelectSoundPresentation   UserControlCode = 0x57
	KeyPlayFunction              UserControlCode = 0x60
	KeyPausePlayFunction         UserControlCode = 0x61
	KeyRecordFunction            UserControlCode = 0x62
	KeyPauseRecordFunction       UserControlCode = 0x63
	KeyStopFunction              UserControlCode = 0x64
	KeyMuteFunction              UserControlCode = 0x65
	KeyRestoreVolumeFunction     UserControlCode = 0x66
	KeyTuneFunction              UserControlCode = 0x67
	KeySelectMediaFunction       UserControlCode = 0x68
	KeySelectAVInputFunction     UserControlCode = 0x69
	KeySelectAudioInputFunction  UserControlCode = 0x6A
	KeyPowerToggleFunction       UserControlCode = 0x6B
	KeyPowerOffFunction          UserControlCode = 0x6C
	KeyPowerOnFunction           UserControlCode = 0x6D
	KeyF1Blue                    UserControlCode = 0x71
	KeyF2Red                     UserControlCode = 0x72
	KeyF3Green                   UserControlCode = 0x73
	KeyF4Yellow                  UserControlCode = 0x74
	KeyF5                        UserControlCode = 0x75
	KeyData                      UserControlCode = 0x76
	KeyAnReturn                  UserControlCode = 0x91
	KeyAnChannelsList            UserControlCode = 0x96
	maxUserControlCode                           = KeyAnChannelsList
	userControlCodeTableCapacity                 = int(maxUserControlCode) + 1
)

var knownUserControlCodes [userControlCodeTableCapacity]bool

func init() {
	for _, k := range []UserControlCode{
		KeySelect, KeyUp, KeyDown, KeyLeft, KeyRight, KeyRightUp, KeyRightDown, KeyLeftUp,
		KeyLeftDown, KeyRootMenu, KeySetupMenu, KeyContentsMenu, KeyFavoriteMenu, KeyExit,
		KeyTopMenu, KeyDVDMenu, KeyNumberEntryMode, KeyNumber11, KeyNumber12, KeyNumber0,
		KeyNumber1, KeyNumber2, KeyNumber3, KeyNumber4, KeyNumber5, KeyNumber6, KeyNumber7,
		KeyNumber8, KeyNumber9, KeyDot, KeyEnter, KeyClear, KeyNextFavorite, KeyChannelUp,
		KeyChannelDown, KeyPreviousChannel, KeySoundSelect, KeyInputSelect,
		KeyDisplayInformation, KeyHelp, KeyPageUp, KeyPageDown, KeyPower, KeyVolumeUp,
		KeyVolumeDown, KeyMute, KeyPlay, KeyStop, KeyPause, KeyRecord, KeyRewind,
		KeyFastForward, KeyEject, KeyForward, KeyBackward, KeyStopRecord, KeyPauseRecord,
		KeyAngle, KeySubPicture, KeyVideoOnDemand, KeyElectronicProgramGuide,
		KeyTimerProgramming, KeyInitialConfiguration, KeySelectBroadcastType,
		KeySelectSoundPresentation, KeyPlayFunction, KeyPausePlayFunction,
		KeyRecordFunction, KeyPauseRecordFunction, KeyStopFunction, KeyMuteFunction,
		KeyRestoreVolumeFunction, KeyTuneFunction, KeySelectMediaFunction,
		KeySelectAVInputFunction, KeySelectAudioInputFunction, KeyPowerToggleFunction,
		KeyPowerOffFunction, KeyPowerOnFunction, KeyF1Blue, KeyF2Red, KeyF3Green,
		KeyF4Yellow, KeyF5, KeyData, KeyAnReturn, KeyAnChannelsList,
	} {
		knownUserControlCodes[k] = true
	}
}

func (k UserControlCode) valid() bool {
	return int(k) < len(knownUserControlCodes) && knownUserControlCodes[k]
}
