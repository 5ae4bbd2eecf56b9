// Package schema holds the fixed message and command registries for the
// Arctic Spa controller protocol.
//
// The controller's payload schema is an external artifact: the package
// compiles it once at process start into protobuf descriptors and exposes
// only generic encode/decode/field-access capabilities. Callers never
// depend on how the records were produced, only on field names.
package schema

// MessageType identifies a class of status or info the controller can
// report. The set is fixed by the device firmware.
type MessageType uint16

const (
	TypeLive          MessageType = 0
	TypeCommand       MessageType = 1
	TypeSettings      MessageType = 2
	TypeConfiguration MessageType = 3
	TypePeak          MessageType = 4
	TypeClock         MessageType = 5
	TypeInformation   MessageType = 6
	TypeError         MessageType = 7
	TypeFirmware      MessageType = 8
	TypeRouter        MessageType = 9
	TypeHeartbeat     MessageType = 10
	TypeFilters       MessageType = 13
	TypePeripheral    MessageType = 16
	TypeOnzenLive     MessageType = 48
	TypeOnzenCommand  MessageType = 49
	TypeOnzenSettings MessageType = 50

	TypeMobileAuthenticate    MessageType = 80
	TypeMobileSpa             MessageType = 81
	TypeMobileAvailableSpas   MessageType = 82
	TypeMobileAssociateAck    MessageType = 83
	TypeMobileSpaRegistration MessageType = 84
	TypeMobileWifiDetails     MessageType = 85

	TypeReset           MessageType = 127
	TypeFirmwareSuccess MessageType = 194
	TypeFirmwareFailure MessageType = 195
	TypeFirmwareStarted MessageType = 196
)

var messageTypeNames = map[MessageType]string{
	TypeLive:                  "Live",
	TypeCommand:               "Command",
	TypeSettings:              "Settings",
	TypeConfiguration:         "Configuration",
	TypePeak:                  "Peak",
	TypeClock:                 "Clock",
	TypeInformation:           "Information",
	TypeError:                 "Error",
	TypeFirmware:              "Firmware",
	TypeRouter:                "Router",
	TypeHeartbeat:             "Heartbeat",
	TypeFilters:               "Filters",
	TypePeripheral:            "Peripheral",
	TypeOnzenLive:             "OnzenLive",
	TypeOnzenCommand:          "OnzenCommand",
	TypeOnzenSettings:         "OnzenSettings",
	TypeMobileAuthenticate:    "MobileAuthenticate",
	TypeMobileSpa:             "MobileSpa",
	TypeMobileAvailableSpas:   "MobileAvailableSpas",
	TypeMobileAssociateAck:    "MobileAssociateAck",
	TypeMobileSpaRegistration: "MobileSpaRegistration",
	TypeMobileWifiDetails:     "MobileWifiDetails",
	TypeReset:                 "Reset",
	TypeFirmwareSuccess:       "FirmwareSuccess",
	TypeFirmwareFailure:       "FirmwareFailure",
	TypeFirmwareStarted:       "FirmwareStarted",
}

// String returns a human-readable name for the message type.
func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// IsValid returns true if the type is a defined wire identifier.
func (t MessageType) IsValid() bool {
	_, ok := messageTypeNames[t]
	return ok
}

// CommandType identifies a writable action. Each command maps to exactly
// one field of the Command payload.
type CommandType uint8

const (
	CommandTemperatureSetpoint CommandType = iota
	CommandPump1
	CommandPump2
	CommandPump3
	CommandPump4
	CommandPump5
	CommandBlower1
	CommandBlower2
	CommandLights
	CommandStereo
	CommandFilter
	CommandOnzen
	CommandOzone
	CommandExhaustFan
	CommandSaunaState
	CommandSaunaTimeLeft
	CommandAllOn
	CommandFogger
	CommandSpaBoyBoost
	CommandPackReset
	CommandLogDump
	CommandSDS
	CommandYESS
)

// ValueKind describes the value a command accepts.
type ValueKind uint8

const (
	// KindBool accepts a bool.
	KindBool ValueKind = iota

	// KindInt accepts a non-negative integer.
	KindInt

	// KindPump accepts a PumpStatus level.
	KindPump

	// KindSauna accepts a SaunaState.
	KindSauna
)

// commandSpec binds a command to its Command payload field and value kind.
type commandSpec struct {
	field string
	kind  ValueKind
}

var commandSpecs = map[CommandType]commandSpec{
	CommandTemperatureSetpoint: {"set_temperature_setpoint_fahrenheit", KindInt},
	CommandPump1:               {"set_pump_1", KindPump},
	CommandPump2:               {"set_pump_2", KindPump},
	CommandPump3:               {"set_pump_3", KindPump},
	CommandPump4:               {"set_pump_4", KindPump},
	CommandPump5:               {"set_pump_5", KindPump},
	CommandBlower1:             {"set_blower_1", KindPump},
	CommandBlower2:             {"set_blower_2", KindPump},
	CommandLights:              {"set_lights", KindBool},
	CommandStereo:              {"set_stereo", KindBool},
	CommandFilter:              {"set_filter", KindBool},
	CommandOnzen:               {"set_onzen", KindBool},
	CommandOzone:               {"set_ozone", KindBool},
	CommandExhaustFan:          {"set_exhaust_fan", KindBool},
	CommandSaunaState:          {"set_sauna_state", KindSauna},
	CommandSaunaTimeLeft:       {"set_sauna_time_left", KindInt},
	CommandAllOn:               {"set_all_on", KindBool},
	CommandFogger:              {"set_fogger", KindBool},
	CommandSpaBoyBoost:         {"set_spaboy_boost", KindBool},
	CommandPackReset:           {"set_pack_reset", KindBool},
	CommandLogDump:             {"set_log_dump", KindBool},
	CommandSDS:                 {"set_sds", KindBool},
	CommandYESS:                {"set_yess", KindBool},
}

// String returns the Command payload field name for the command.
func (c CommandType) String() string {
	if spec, ok := commandSpecs[c]; ok {
		return spec.field
	}
	return "unknown"
}

// IsValid returns true if the command is a defined value.
func (c CommandType) IsValid() bool {
	_, ok := commandSpecs[c]
	return ok
}

// Kind returns the value kind the command accepts. Returns KindBool for
// unknown commands; check IsValid first.
func (c CommandType) Kind() ValueKind {
	return commandSpecs[c].kind
}

// PumpStatus is the level of a pump or blower.
type PumpStatus uint32

const (
	PumpOff  PumpStatus = 0
	PumpLow  PumpStatus = 1
	PumpHigh PumpStatus = 2
)

// String returns a human-readable name for the pump status.
func (p PumpStatus) String() string {
	switch p {
	case PumpOff:
		return "Off"
	case PumpLow:
		return "Low"
	case PumpHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the status is a defined level.
func (p PumpStatus) IsValid() bool {
	return p <= PumpHigh
}

// SaunaState is the operating mode of the sauna option.
type SaunaState uint32

const (
	SaunaIdle    SaunaState = 0
	SaunaTimer   SaunaState = 1
	SaunaPresetA SaunaState = 2
	SaunaPresetB SaunaState = 3
	SaunaPresetC SaunaState = 4
)

// String returns a human-readable name for the sauna state.
func (s SaunaState) String() string {
	switch s {
	case SaunaIdle:
		return "Idle"
	case SaunaTimer:
		return "Timer"
	case SaunaPresetA:
		return "PresetA"
	case SaunaPresetB:
		return "PresetB"
	case SaunaPresetC:
		return "PresetC"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the state is a defined value.
func (s SaunaState) IsValid() bool {
	return s <= SaunaPresetC
}

// Temperature setpoint bounds in degrees Fahrenheit, enforced by the
// controller firmware.
const (
	MinTemperature = 59
	MaxTemperature = 104
)
