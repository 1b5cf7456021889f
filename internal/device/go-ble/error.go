package goble

import (
	"errors"
	"fmt"
	"strings"

	"github.com/srg/podmon/internal/device"
)

// NormalizeError maps known go-ble error strings to the device error taxonomy.
// It ensures consistent handling even if the upstream library changes messages slightly.
// Returns wrapped errors to preserve original context.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, device.ErrBleUnavailable) {
		return err
	}

	msg := err.Error()
	switch {
	case msg == "central manager has invalid state: have=4 want=5: is Bluetooth turned on?":
		return fmt.Errorf("%w: %v", device.ErrBluetoothOff, err)
	case containsIgnoreCase(msg, "bluetooth is turned off"),
		containsIgnoreCase(msg, "powered off"):
		return fmt.Errorf("%w: %v", device.ErrBluetoothOff, err)
	case containsIgnoreCase(msg, "unauthorized"),
		containsIgnoreCase(msg, "permission denied"),
		containsIgnoreCase(msg, "operation not permitted"):
		return fmt.Errorf("%w: %v", device.ErrPermissionDenied, err)
	case containsIgnoreCase(msg, "no such device"),
		containsIgnoreCase(msg, "can't find"),
		containsIgnoreCase(msg, "unsupported"):
		return fmt.Errorf("%w: %v", device.ErrNoAdapter, err)
	default:
		return err
	}
}

// NormalizeStartError normalizes an error raised while acquiring the platform device.
// Any failure at that point leaves BLE unusable, so unrecognised errors are still
// reported as device.ErrBleUnavailable.
func NormalizeStartError(err error) error {
	err = NormalizeError(err)
	if err == nil || errors.Is(err, device.ErrBleUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", device.ErrBleUnavailable, err)
}

// containsIgnoreCase checks the substring case-insensitively
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
