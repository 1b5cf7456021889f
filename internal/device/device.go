package device

import "context"

// ScanningDevice represents a BLE device capable of scanning for advertisements.
// Scan blocks until ctx is done or the platform reports an error; handler is
// invoked once per received advertisement. Stop releases the platform device;
// the device must not be used afterwards.
type ScanningDevice interface {
	Scan(ctx context.Context, allowDup bool, handler func(Advertisement)) error
	Stop() error
}

// Advertisement is a single received advertisement. It is only valid for the
// duration of the handler call.
type Advertisement interface {
	LocalName() string
	ManufacturerData() []byte
	Connectable() bool
	RSSI() int
	Addr() string
}
