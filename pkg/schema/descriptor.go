package schema

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// The controller's payload schema, expressed as an in-code file
// descriptor and compiled once at init. Field numbers and names follow
// the device firmware's interface description; all enum-valued fields
// are carried as uint32 (wire-identical to the firmware's enums) so the
// package needs no knowledge of the firmware's enum declarations beyond
// the named constants in enums.go.

func u32(num int32, name string) *descriptorpb.FieldDescriptorProto {
	return scalarField(num, name, descriptorpb.FieldDescriptorProto_TYPE_UINT32)
}

func i32(num int32, name string) *descriptorpb.FieldDescriptorProto {
	return scalarField(num, name, descriptorpb.FieldDescriptorProto_TYPE_INT32)
}

func boolean(num int32, name string) *descriptorpb.FieldDescriptorProto {
	return scalarField(num, name, descriptorpb.FieldDescriptorProto_TYPE_BOOL)
}

func str(num int32, name string) *descriptorpb.FieldDescriptorProto {
	return scalarField(num, name, descriptorpb.FieldDescriptorProto_TYPE_STRING)
}

func scalarField(num int32, name string, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(num),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

func msg(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name:  proto.String(name),
		Field: fields,
	}
}

// buildFile compiles the spa schema into a file descriptor.
func buildFile() (protoreflect.FileDescriptor, error) {
	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("arcticspa.proto"),
		Package: proto.String("arcticspa"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			msg("Live",
				u32(1, "temperature_fahrenheit"),
				u32(2, "temperature_setpoint_fahrenheit"),
				u32(3, "pump_1"),
				u32(4, "pump_2"),
				u32(5, "pump_3"),
				u32(6, "pump_4"),
				u32(7, "pump_5"),
				u32(8, "blower_1"),
				u32(9, "blower_2"),
				boolean(10, "lights"),
				boolean(11, "stereo"),
				u32(12, "heater_1"),
				u32(13, "heater_2"),
				u32(14, "filter"),
				boolean(15, "onzen"),
				u32(16, "ozone"),
				boolean(17, "exhaust_fan"),
				u32(18, "sauna"),
				u32(19, "heater_adc"),
				boolean(20, "economy"),
				u32(21, "current_adc"),
				boolean(22, "all_on"),
				boolean(23, "fogger"),
			),
			msg("Command",
				u32(1, "set_temperature_setpoint_fahrenheit"),
				u32(2, "set_pump_1"),
				u32(3, "set_pump_2"),
				u32(4, "set_pump_3"),
				u32(5, "set_pump_4"),
				u32(6, "set_pump_5"),
				u32(7, "set_blower_1"),
				u32(8, "set_blower_2"),
				boolean(9, "set_lights"),
				boolean(10, "set_stereo"),
				boolean(11, "set_filter"),
				boolean(12, "set_onzen"),
				boolean(13, "set_ozone"),
				boolean(14, "set_exhaust_fan"),
				u32(15, "set_sauna_state"),
				u32(16, "set_sauna_time_left"),
				boolean(17, "set_all_on"),
				boolean(18, "set_fogger"),
				boolean(19, "set_spaboy_boost"),
				boolean(20, "set_pack_reset"),
				boolean(21, "set_log_dump"),
				boolean(22, "set_sds"),
				boolean(23, "set_yess"),
			),
			msg("Settings",
				u32(1, "max_filtration_frequency"),
				u32(2, "min_filtration_frequency"),
				u32(3, "filtration_frequency"),
				u32(4, "max_filtration_duration"),
				u32(5, "min_filtration_duration"),
				u32(6, "filtration_duration"),
				u32(7, "max_onzen_hours"),
				u32(8, "min_onzen_hours"),
				u32(9, "onzen_hours"),
				u32(10, "max_onzen_cycles"),
				u32(11, "min_onzen_cycles"),
				u32(12, "onzen_cycles"),
				u32(13, "max_ozone_hours"),
				u32(14, "min_ozone_hours"),
				u32(15, "ozone_hours"),
				u32(16, "max_ozone_cycles"),
				u32(17, "min_ozone_cycles"),
				u32(18, "ozone_cycles"),
				boolean(19, "filter_suspension"),
				boolean(20, "flash_lights_on_error"),
				i32(21, "temperature_offset"),
				u32(22, "sauna_duration"),
				u32(23, "min_temperature"),
				u32(24, "max_temperature"),
				i32(25, "filtration_offset"),
				u32(26, "spaboy_hours"),
			),
			msg("Configuration",
				u32(1, "pump1"),
				u32(2, "pump2"),
				u32(3, "pump3"),
				u32(4, "pump4"),
				u32(5, "pump5"),
				u32(6, "blower1"),
				u32(7, "blower2"),
				u32(8, "lights"),
				u32(9, "stereo"),
				u32(10, "heater1"),
				u32(11, "heater2"),
				u32(12, "filter"),
				u32(13, "onzen"),
				u32(14, "ozone_peak_1"),
				u32(15, "ozone_peak_2"),
				u32(16, "exhaust_fan"),
				u32(17, "powerlines"),
				u32(18, "breaker_size"),
				u32(19, "smart_onzen"),
				u32(20, "fogger"),
				u32(21, "sds"),
				u32(22, "yess"),
			),
			msg("Information",
				str(1, "pack_serial_number"),
				str(2, "pack_firmware_version"),
				str(3, "pack_hardware_version"),
				str(4, "pack_product_id"),
				str(5, "pack_board_id"),
				str(6, "topside_product_id"),
				str(7, "topside_software_version"),
				str(8, "guid"),
				u32(9, "spa_type"),
				boolean(10, "website_registration"),
				boolean(11, "website_registration_confirm"),
				str(12, "mac_address"),
				str(13, "firmware_version"),
				str(14, "product_code"),
				str(15, "var_software_version"),
				str(16, "spaboy_firmware_version"),
				str(17, "spaboy_hardware_version"),
				str(18, "spaboy_product_id"),
				str(19, "spaboy_serial_number"),
				str(20, "rfid_firmware_version"),
				str(21, "rfid_hardware_version"),
				str(22, "rfid_product_id"),
				str(23, "rfid_serial_number"),
			),
			msg("OnzenLive",
				str(1, "guid"),
				u32(2, "orp"),
				u32(3, "ph_100"),
				u32(4, "current"),
				u32(5, "voltage"),
				u32(6, "current_setpoint"),
				u32(7, "voltage_setpoint"),
				u32(8, "pump1"),
				u32(9, "pump2"),
				u32(10, "orp_state_machine"),
				u32(11, "electrode_state_machine"),
				u32(12, "electrode_id"),
				u32(13, "electrode_polarity"),
				u32(14, "electrode_1_resistance_1"),
				u32(15, "electrode_1_resistance_2"),
				u32(16, "electrode_2_resistance_1"),
				u32(17, "electrode_2_resistance_2"),
				u32(18, "command_mode"),
				u32(19, "electrode_mah"),
				u32(20, "ph_color"),
				u32(21, "orp_color"),
				u32(22, "electrode_wear"),
			),
			msg("OnzenSettings",
				u32(1, "orp_setpoint"),
				u32(2, "ph_100_setpoint"),
				u32(3, "current_max"),
				u32(4, "voltage_max"),
				boolean(5, "boost"),
			),
			msg("Peak",
				boolean(1, "enabled"),
				u32(2, "peak_start"),
				u32(3, "peak_end"),
				u32(4, "mid_peak_start"),
				u32(5, "mid_peak_end"),
			),
			msg("Clock",
				u32(1, "year"),
				u32(2, "month"),
				u32(3, "day"),
				u32(4, "hour"),
				u32(5, "minute"),
				u32(6, "second"),
			),
			msg("Error",
				u32(1, "error_code"),
				u32(2, "severity"),
			),
			msg("Router",
				str(1, "ssid"),
				i32(2, "rssi"),
				boolean(3, "connected"),
			),
			msg("Filter",
				u32(1, "frequency"),
				u32(2, "duration"),
				boolean(3, "suspended"),
			),
			msg("Peripheral",
				u32(1, "id"),
				u32(2, "kind"),
				u32(3, "state"),
			),
		},
	}

	fd, err := protodesc.NewFile(fdp, nil)
	if err != nil {
		return nil, fmt.Errorf("schema: compile descriptor: %w", err)
	}
	return fd, nil
}
