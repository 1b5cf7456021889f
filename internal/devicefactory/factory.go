package devicefactory

import (
	"github.com/srg/podmon/internal/device"
	goble "github.com/srg/podmon/internal/device/go-ble"
)

// DeviceFactory creates the device.ScanningDevice used by the advertisement listener.
// This is a variable so that it can be overridden in tests.
var DeviceFactory = func() (device.ScanningDevice, error) {
	return goble.NewScanner()
}
