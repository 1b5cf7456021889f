package main

import (
	"errors"

	"github.com/srg/podmon/internal/device"
	"github.com/srg/podmon/listener"
)

// Command-level errors
var (
	// ErrNotApplicable is returned by decode when the payload is not a proximity
	// pairing message of a tracked model.
	ErrNotApplicable = errors.New("payload is not a proximity pairing message of a tracked model")
)

// FormatUserError turns an error into a message suitable for the terminal.
// BLE availability problems get an actionable hint; everything else is printed as is.
func FormatUserError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, device.ErrBluetoothOff):
		return "Bluetooth is turned off. Turn it on and try again."
	case errors.Is(err, device.ErrPermissionDenied):
		return "Bluetooth access was denied. Grant this program Bluetooth permission (or run with the required privileges) and try again."
	case errors.Is(err, device.ErrNoAdapter):
		return "No Bluetooth adapter found."
	case errors.Is(err, device.ErrUnsupported):
		return "Bluetooth scanning is not supported on this platform."
	case errors.Is(err, device.ErrBleUnavailable):
		return "Bluetooth is unavailable: " + err.Error()
	case errors.Is(err, listener.ErrAlreadyStarted):
		return "A scan is already running."
	default:
		return err.Error()
	}
}
