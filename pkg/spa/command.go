package spa

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/poolhouse/arcticspa/pkg/packet"
	"github.com/poolhouse/arcticspa/pkg/schema"
)

// WriteCommand sends one control action to the controller: a Command
// payload with exactly one field set, carried in a type 1 frame. The
// value must match the command's kind:
//
//	bool commands        bool
//	integer commands     int (temperature setpoint: 59..104 °F)
//	pump-level commands  schema.PumpStatus
//	sauna commands       schema.SaunaState
//
// The controller sends no acknowledgement; observe the effect with a
// subsequent Fetch of Live. Uses the same in-flight guard as Fetch.
func (c *Client) WriteCommand(cmd schema.CommandType, value any) error {
	fd, err := schema.LookupCommand(cmd)
	if err != nil {
		return err
	}

	fieldValue, err := commandValue(cmd, value)
	if err != nil {
		return err
	}

	if err := c.beginExchange(); err != nil {
		return err
	}
	defer c.endExchange()

	payload := schema.NewCommand()
	payload.ProtoReflect().Set(fd, fieldValue)

	raw, err := proto.Marshal(payload)
	if err != nil {
		return fmt.Errorf("spa: encode command: %w", err)
	}

	pkt := packet.Packet{Type: uint16(schema.TypeCommand), Payload: raw}
	if err := c.conn.Send(pkt.Encode()); err != nil {
		return err
	}

	if c.log != nil {
		c.log.Infof("sent command %s", cmd)
	}
	return nil
}

// commandValue validates a command value against its kind and converts
// it to the payload field representation.
func commandValue(cmd schema.CommandType, value any) (protoreflect.Value, error) {
	switch cmd.Kind() {
	case schema.KindBool:
		v, ok := value.(bool)
		if !ok {
			return protoreflect.Value{}, fmt.Errorf("%w: %s wants bool, got %T", ErrBadValue, cmd, value)
		}
		return protoreflect.ValueOfBool(v), nil

	case schema.KindInt:
		v, ok := value.(int)
		if !ok {
			return protoreflect.Value{}, fmt.Errorf("%w: %s wants int, got %T", ErrBadValue, cmd, value)
		}
		if v < 0 {
			return protoreflect.Value{}, fmt.Errorf("%w: %s must not be negative", ErrBadValue, cmd)
		}
		if cmd == schema.CommandTemperatureSetpoint &&
			(v < schema.MinTemperature || v > schema.MaxTemperature) {
			return protoreflect.Value{}, fmt.Errorf("%w: setpoint %d outside %d..%d °F",
				ErrBadValue, v, schema.MinTemperature, schema.MaxTemperature)
		}
		return protoreflect.ValueOfUint32(uint32(v)), nil

	case schema.KindPump:
		v, ok := value.(schema.PumpStatus)
		if !ok {
			return protoreflect.Value{}, fmt.Errorf("%w: %s wants PumpStatus, got %T", ErrBadValue, cmd, value)
		}
		if !v.IsValid() {
			return protoreflect.Value{}, fmt.Errorf("%w: pump level %d", ErrBadValue, uint32(v))
		}
		return protoreflect.ValueOfUint32(uint32(v)), nil

	case schema.KindSauna:
		v, ok := value.(schema.SaunaState)
		if !ok {
			return protoreflect.Value{}, fmt.Errorf("%w: %s wants SaunaState, got %T", ErrBadValue, cmd, value)
		}
		if !v.IsValid() {
			return protoreflect.Value{}, fmt.Errorf("%w: sauna state %d", ErrBadValue, uint32(v))
		}
		return protoreflect.ValueOfUint32(uint32(v)), nil
	}

	return protoreflect.Value{}, fmt.Errorf("%w: command %d has no value kind", ErrBadValue, uint8(cmd))
}
