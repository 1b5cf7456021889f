// Package mocks holds testify mocks for the go-ble types the scanner consumes.
package mocks

import (
	"context"

	"github.com/go-ble/ble"
	"github.com/stretchr/testify/mock"
)

// MockAddr is a mock implementation of ble.Addr.
type MockAddr struct {
	mock.Mock
}

func (m *MockAddr) String() string {
	return m.Called().String(0)
}

// MockAdvertisement is a mock implementation of ble.Advertisement.
type MockAdvertisement struct {
	mock.Mock
}

func (m *MockAdvertisement) LocalName() string {
	return m.Called().String(0)
}

func (m *MockAdvertisement) ManufacturerData() []byte {
	ret := m.Called()
	if v, ok := ret.Get(0).([]byte); ok {
		return v
	}
	return nil
}

func (m *MockAdvertisement) ServiceData() []ble.ServiceData {
	ret := m.Called()
	if v, ok := ret.Get(0).([]ble.ServiceData); ok {
		return v
	}
	return nil
}

func (m *MockAdvertisement) Services() []ble.UUID {
	return m.uuids("Services")
}

func (m *MockAdvertisement) OverflowService() []ble.UUID {
	return m.uuids("OverflowService")
}

func (m *MockAdvertisement) SolicitedService() []ble.UUID {
	return m.uuids("SolicitedService")
}

func (m *MockAdvertisement) TxPowerLevel() int {
	return m.Called().Int(0)
}

func (m *MockAdvertisement) Connectable() bool {
	return m.Called().Bool(0)
}

func (m *MockAdvertisement) RSSI() int {
	return m.Called().Int(0)
}

func (m *MockAdvertisement) Addr() ble.Addr {
	ret := m.Called()
	if v, ok := ret.Get(0).(ble.Addr); ok {
		return v
	}
	return nil
}

func (m *MockAdvertisement) uuids(method string) []ble.UUID {
	ret := m.MethodCalled(method)
	if v, ok := ret.Get(0).([]ble.UUID); ok {
		return v
	}
	return nil
}

// MockScanDevice is a mock of the scanning subset of ble.Device.
type MockScanDevice struct {
	mock.Mock
}

func (m *MockScanDevice) Scan(ctx context.Context, allowDup bool, h ble.AdvHandler) error {
	return m.Called(ctx, allowDup, h).Error(0)
}

func (m *MockScanDevice) Stop() error {
	return m.Called().Error(0)
}
