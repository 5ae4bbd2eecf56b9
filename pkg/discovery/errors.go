package discovery

import "errors"

// Discovery errors.
var (
	// ErrNoLocalIP is returned when no local interface address can be
	// determined and none was configured.
	ErrNoLocalIP = errors.New("discovery: cannot determine local address")

	// ErrBadSubnet is returned when the configured subnet is not a
	// scannable IPv4 range.
	ErrBadSubnet = errors.New("discovery: subnet not scannable")
)
