package oven

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAuth means the credentials were rejected: token renewal
	// failed, or the gateway closed two connections in a row without sending
	// a single frame. It ends Run.
	ErrInvalidAuth = errors.New("access token invalid")

	// ErrNoDevicesFound is returned by GetDevices when no device announced
	// itself before the discovery deadline.
	ErrNoDevicesFound = errors.New("found no devices on the websocket")

	// ErrCommandTimeout is returned when no RESPONSE arrived in time.
	ErrCommandTimeout = errors.New("command timed out")

	// ErrNotConnected is returned by SendCommand while no transport is open.
	ErrNotConnected = errors.New("gateway not connected")

	// ErrMalformedFrame marks inbound frames that are dropped.
	ErrMalformedFrame = errors.New("malformed frame")
)

// CommandError carries the failure message the gateway returned for a command.
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %s", e.Command, e.Message)
}
