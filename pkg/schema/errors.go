package schema

import "errors"

// ErrUnknownType is returned when a message or command identifier is not
// part of the fixed registry. This indicates a caller bug, not a device
// or network fault.
var ErrUnknownType = errors.New("schema: unknown type")
