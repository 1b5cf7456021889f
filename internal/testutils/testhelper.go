package testutils

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/srg/podmon/proximity"
)

type TestHelper struct {
	T      *testing.T
	Logger *logrus.Logger
}

// NewTestHelper creates a test helper with a debug-level logger.
func NewTestHelper(t *testing.T) *TestHelper {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel) // enable debug logs to track execution flow
	return &TestHelper{
		T:      t,
		Logger: logger,
	}
}

func CreateMockAdvertisement(name, address string, rssi int) *AdvertisementBuilder {
	return NewAdvertisementBuilder().WithName(name).WithAddress(address).WithRSSI(rssi)
}

func CreateMockAdvertisementFromJSON(jsonStrFmt string, args ...interface{}) *AdvertisementBuilder {
	return NewAdvertisementBuilder().FromJSON(jsonStrFmt, args...)
}

// CreateProximityAdvertisement builds an Apple advertisement carrying payload.
func CreateProximityAdvertisement(address string, rssi int, payload []byte) *AdvertisementBuilder {
	return NewAdvertisementBuilder().
		WithAddress(address).
		WithRSSI(rssi).
		WithVendorPayload(proximity.AppleCompanyID, payload)
}
