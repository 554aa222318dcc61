//go:build linux

package vchiq

import (
	"errors"
	"fmt"

	"github.com/urmzd/cecvol/pkg/cec"
)

var (
	// ErrAlreadyInitialized indicates a second Open in the same process
	ErrAlreadyInitialized = errors.New("vchiq already initialized")

	// ErrIncompatibleDriver indicates the driver's version window excludes ours
	ErrIncompatibleDriver = errors.New("incompatible vchiq driver version")

	// ErrClosed indicates the interface was closed while waiting
	ErrClosed = errors.New("vchiq interface closed")

	// ErrNoAck indicates the follower did not acknowledge the frame
	ErrNoAck = cec.ErrNoAck

	// ErrShutdown indicates the CEC service is shutting down
	ErrShutdown = errors.New("cec service shutting down")

	// ErrBusy indicates the CEC service is busy with another transmission
	ErrBusy = errors.New("cec service busy")

	// ErrNoLogicalAddress indicates no logical address has been allocated yet
	ErrNoLogicalAddress = errors.New("no logical address")

	// ErrNoPhysicalAddress indicates the physical address is not yet known
	ErrNoPhysicalAddress = errors.New("no physical address")

	// ErrNoTopology indicates the bus topology is not yet known
	ErrNoTopology = errors.New("no topology")

	// ErrInvalidFollower indicates the destination address was rejected
	ErrInvalidFollower = errors.New("invalid follower")

	// ErrInvalidArgument indicates the service rejected a command argument
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMissingStatus indicates a reply arrived without its status byte
	ErrMissingStatus = errors.New("reply missing status")

	// ErrUnknownStatus indicates a status code outside the known set
	ErrUnknownStatus = errors.New("unknown cec status")
)

var statusErrors = map[uint32]error{
	1: ErrNoAck,
	2: ErrShutdown,
	3: ErrBusy,
	4: ErrNoLogicalAddress,
	5: ErrNoPhysicalAddress,
	6: ErrNoTopology,
	7: ErrInvalidFollower,
	8: ErrInvalidArgument,
}

// statusError maps a CEC service status code to an error.
func statusError(code uint32) error {
	if code == 0 {
		return nil
	}
	if err, ok := statusErrors[code]; ok {
		return err
	}
	return fmt.Errorf("%w: %d", ErrUnknownStatus, code)
}
