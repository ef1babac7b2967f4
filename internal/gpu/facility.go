package gpu

import (
	"errors"
	"fmt"
)

// ErrQueryFailed is matched by every error a Facility returns.
var ErrQueryFailed = errors.New("device query failed")

// ErrNoDevice is wrapped when a device query is made while no accelerator is visible.
var ErrNoDevice = errors.New("no CUDA device available")

// Facility answers the accelerator-environment queries in the order the
// reporter needs them. Implementations are not safe for concurrent use.
type Facility interface {
	// Available reports whether at least one CUDA device is visible.
	Available() (bool, error)
	// DeviceCount returns the number of visible devices.
	DeviceCount() (int, error)
	// CurrentDevice returns the ordinal of the default device.
	CurrentDevice() (int, error)
	// DeviceName returns the name of the device at the given visible ordinal.
	DeviceName(ordinal int) (string, error)
	// Close releases the underlying library.
	Close() error
}

// QueryError is a device-query failure.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is makes every QueryError match ErrQueryFailed.
func (e *QueryError) Is(target error) bool {
	return target == ErrQueryFailed
}

func queryError(op string, err error) error {
	return &QueryError{Op: op, Err: err}
}

// Query reads all four values from f, skipping the dependent queries when no
// device is available.
func Query(f Facility) (Snapshot, error) {
	var snap Snapshot

	available, err := f.Available()
	if err != nil {
		return snap, err
	}
	if !available {
		return snap, nil
	}
	snap.Available = true

	if snap.DeviceCount, err = f.DeviceCount(); err != nil {
		return snap, err
	}
	if snap.CurrentDevice, err = f.CurrentDevice(); err != nil {
		return snap, err
	}
	if snap.DeviceName, err = f.DeviceName(0); err != nil {
		return snap, err
	}

	return snap, nil
}
