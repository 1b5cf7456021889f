package device

import (
	"errors"
	"fmt"
)

// ErrBleUnavailable reports that the platform BLE facility cannot be used at all:
// no adapter, adapter powered off, or permission denied. It is distinct from
// "no device nearby", which is not an error.
var ErrBleUnavailable = errors.New("bluetooth unavailable")

// Specific causes of ErrBleUnavailable; errors.Is(err, ErrBleUnavailable) holds for each.
var (
	ErrBluetoothOff     = fmt.Errorf("%w: bluetooth is turned off", ErrBleUnavailable)
	ErrPermissionDenied = fmt.Errorf("%w: permission denied", ErrBleUnavailable)
	ErrNoAdapter        = fmt.Errorf("%w: no adapter", ErrBleUnavailable)
	ErrUnsupported      = fmt.Errorf("%w: unsupported platform", ErrBleUnavailable)
)

// TransientAdapterError wraps a failure of an already running scan, such as an
// adapter reset. Such failures are recovered by re-subscribing.
type TransientAdapterError struct {
	Err error
}

// Error implements the error interface
func (e *TransientAdapterError) Error() string {
	if e == nil || e.Err == nil {
		return "transient adapter error"
	}
	return fmt.Sprintf("transient adapter error: %v", e.Err)
}

// Unwrap returns the underlying platform error
func (e *TransientAdapterError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsTransient reports whether err is a TransientAdapterError
func IsTransient(err error) bool {
	var terr *TransientAdapterError
	return errors.As(err, &terr)
}
