package testutils

import (
	"context"
	"sync"

	"github.com/go-ble/ble"
	"github.com/srg/podmon/internal/device"
	goble "github.com/srg/podmon/internal/device/go-ble"
)

// ScanSession scripts one call to Scan: the advertisements replayed to the handler
// and how the call ends. A nil Err keeps the scan open until its context is done.
type ScanSession struct {
	Advertisements []ble.Advertisement
	Err            error
}

// MockScanner is a device.ScanningDevice replaying scripted sessions. Advertisements
// pass through the go-ble adapter so tests exercise the same conversion as production.
// Calls beyond the scripted sessions scan nothing and block until cancelled.
type MockScanner struct {
	mu       sync.Mutex
	sessions []ScanSession
	calls    int
	stops    int
	allowDup []bool
	handler  func(device.Advertisement)
	started  chan struct{}
}

// NewMockScanner creates a scanner with the given sessions.
func NewMockScanner(sessions ...ScanSession) *MockScanner {
	return &MockScanner{sessions: sessions, started: make(chan struct{}, 64)}
}

// AddSession appends a scripted session.
func (m *MockScanner) AddSession(s ScanSession) *MockScanner {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, s)
	return m
}

// Scan implements device.ScanningDevice.
func (m *MockScanner) Scan(ctx context.Context, allowDup bool, handler func(device.Advertisement)) error {
	m.mu.Lock()
	var session ScanSession
	if m.calls < len(m.sessions) {
		session = m.sessions[m.calls]
	}
	m.calls++
	m.allowDup = append(m.allowDup, allowDup)
	m.handler = handler
	m.mu.Unlock()

	select {
	case m.started <- struct{}{}:
	default:
	}

	for _, adv := range session.Advertisements {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		handler(goble.NewBLEAdvertisement(adv))
	}
	if session.Err != nil {
		return session.Err
	}
	<-ctx.Done()
	return ctx.Err()
}

// Stop implements device.ScanningDevice and only counts the call.
func (m *MockScanner) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	return nil
}

// Deliver invokes the most recent scan handler directly, simulating a platform
// callback racing with or arriving after cancellation.
func (m *MockScanner) Deliver(adv ble.Advertisement) bool {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h == nil {
		return false
	}
	h(goble.NewBLEAdvertisement(adv))
	return true
}

// Calls returns how many times Scan was invoked.
func (m *MockScanner) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// StopCalls returns how many times Stop was invoked.
func (m *MockScanner) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// AllowDuplicates returns the allowDup argument of every Scan call.
func (m *MockScanner) AllowDuplicates() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.allowDup...)
}

// Started receives once per Scan call.
func (m *MockScanner) Started() <-chan struct{} {
	return m.started
}
