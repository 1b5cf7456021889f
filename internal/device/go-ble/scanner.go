package goble

import (
	"context"
	"errors"
	"fmt"

	ble "github.com/go-ble/ble"
	"github.com/srg/podmon/internal/device"
)

// scanDevice is the part of ble.Device the scanner needs
type scanDevice interface {
	Scan(ctx context.Context, allowDup bool, h ble.AdvHandler) error
	Stop() error
}

// bleScanner wraps ble.Device to implement a device.ScanningDevice interface
type bleScanner struct {
	dev scanDevice
}

// Scan wraps the raw ble.Device.Scan to convert ble.Advertisement to the device.Advertisement
func (s *bleScanner) Scan(ctx context.Context, allowDup bool, handler func(device.Advertisement)) error {
	// Adapter: convert a handler expecting a device.Advertisement to the one expecting ble.Advertisement
	bleHandler := func(adv ble.Advertisement) {
		handler(NewBLEAdvertisement(adv))
	}
	err := s.dev.Scan(ctx, allowDup, bleHandler)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return NormalizeError(err)
}

// Stop closes the underlying ble.Device.
func (s *bleScanner) Stop() error {
	if err := s.dev.Stop(); err != nil {
		return fmt.Errorf("failed to stop BLE device: %w", err)
	}
	return nil
}

// NewScanner creates a device.ScanningDevice instance for BLE scanning operations.
// Failure to obtain the platform device is reported as device.ErrBleUnavailable.
func NewScanner() (device.ScanningDevice, error) {
	dev, err := DeviceFactory()
	if err != nil {
		return nil, NormalizeStartError(err)
	}
	return &bleScanner{dev: dev}, nil
}
