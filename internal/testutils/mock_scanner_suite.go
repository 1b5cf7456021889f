package testutils

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/podmon/internal/device"
	"github.com/srg/podmon/internal/devicefactory"
	"github.com/stretchr/testify/suite"
)

// MockScannerSuite provides a reusable test suite that replaces the BLE device factory
// with a MockScanner.
//
// Basic usage:
//
//	type ListenerSuite struct {
//	    testutils.MockScannerSuite
//	}
//
//	func (s *ListenerSuite) TestSomething() {
//	    s.Scanner.AddSession(testutils.ScanSession{
//	        Advertisements: testutils.BuildAll(
//	            testutils.NewAdvertisementBuilder().WithAddress("AA:BB:CC:DD:EE:FF").WithRSSI(-50),
//	        ),
//	    })
//	    ...
//	}
//
//	func TestListenerSuite(t *testing.T) {
//	    suite.Run(t, new(ListenerSuite))
//	}
type MockScannerSuite struct {
	suite.Suite

	Helper *TestHelper
	Logger *logrus.Logger

	// Scanner is returned by the device factory during a test
	Scanner     *MockScanner
	TestTimeout time.Duration

	originalFactory func() (device.ScanningDevice, error)

	mu           sync.Mutex
	factoryErrs  []error
	factoryCalls int
}

// SetupSuite initializes the test suite. Called once before all tests in the suite.
func (s *MockScannerSuite) SetupSuite() {
	s.Helper = NewTestHelper(s.T())
	s.Logger = s.Helper.Logger
	s.TestTimeout = 2 * time.Second
}

// SetupTest installs a fresh MockScanner behind devicefactory.DeviceFactory.
func (s *MockScannerSuite) SetupTest() {
	s.Scanner = NewMockScanner()

	s.mu.Lock()
	s.factoryErrs = nil
	s.factoryCalls = 0
	s.mu.Unlock()

	s.originalFactory = devicefactory.DeviceFactory
	devicefactory.DeviceFactory = func() (device.ScanningDevice, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.factoryCalls++
		if len(s.factoryErrs) > 0 {
			err := s.factoryErrs[0]
			s.factoryErrs = s.factoryErrs[1:]
			if err != nil {
				return nil, err
			}
		}
		return s.Scanner, nil
	}
}

// TearDownTest restores the device factory.
func (s *MockScannerSuite) TearDownTest() {
	if s.originalFactory != nil {
		devicefactory.DeviceFactory = s.originalFactory
	}
	s.Scanner = nil
}

// FailFactory makes the next factory calls return errs in order; a nil entry succeeds.
func (s *MockScannerSuite) FailFactory(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factoryErrs = append(s.factoryErrs, errs...)
}

// FactoryCalls returns how many times the device factory was invoked.
func (s *MockScannerSuite) FactoryCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.factoryCalls
}

// WaitScanStarted waits for the next Scan call or fails the test.
func (s *MockScannerSuite) WaitScanStarted() {
	select {
	case <-s.Scanner.Started():
	case <-time.After(s.TestTimeout):
		s.FailNow("scan was not started")
	}
}
