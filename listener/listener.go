package listener

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"
	"github.com/srg/podmon/internal/device"
	"github.com/srg/podmon/internal/devicefactory"
	"github.com/srg/podmon/internal/groutine"
)

// ErrAlreadyStarted is returned by Start while a previous subscription is still live.
var ErrAlreadyStarted = errors.New("listener already started")

// RawAdvertisement is one received advertisement whose manufacturer data matched the
// configured vendor. Payload excludes the 2-byte company identifier and is owned by
// the receiver.
type RawAdvertisement struct {
	Address  string
	VendorID uint16
	Payload  []byte
	RSSI     int
}

// Handler receives matching advertisements. Calls are serialised.
type Handler func(RawAdvertisement)

// Sighting summarises the advertisements seen from one address.
type Sighting struct {
	Address  string
	RSSI     int
	Count    int
	LastSeen time.Time
}

// Listener turns platform scan results into RawAdvertisement deliveries.
type Listener struct {
	logger *logrus.Logger
	opts   Options

	mu     sync.Mutex
	active *Subscription

	sightings *hashmap.Map[string, Sighting]
}

// New creates a Listener. A nil logger is replaced by a default one.
func New(logger *logrus.Logger, opts Options) *Listener {
	if logger == nil {
		logger = logrus.New()
	}
	return &Listener{
		logger:    logger,
		opts:      opts.withDefaults(),
		sightings: hashmap.New[string, Sighting](),
	}
}

// Start begins passive scanning and delivers matching advertisements to handler
// until the returned Subscription is stopped or ctx is cancelled.
//
// If the platform BLE facility cannot be acquired the returned error wraps
// device.ErrBleUnavailable.
func (l *Listener) Start(ctx context.Context, handler Handler) (*Subscription, error) {
	if handler == nil {
		return nil, errors.New("listener: nil handler")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active != nil {
		return nil, ErrAlreadyStarted
	}

	dev, err := newScanningDevice()
	if err != nil {
		l.logger.WithError(err).Error("Failed to acquire BLE scanner")
		return nil, err
	}

	scanCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		listener: l,
		handler:  handler,
		cancel:   cancel,
	}
	sub.done = groutine.GoDone(scanCtx, "podmon-scan", func(ctx context.Context) {
		sub.setErr(l.run(ctx, dev, sub))
		l.release(sub)
	})
	l.active = sub

	l.logger.WithFields(logrus.Fields{
		"vendor_id":        fmt.Sprintf("0x%04X", l.opts.VendorID),
		"allow_duplicates": l.opts.AllowDuplicates,
	}).Info("Listening for advertisements")

	return sub, nil
}

// Sightings returns a snapshot of matching advertisers ordered by address.
func (l *Listener) Sightings() []Sighting {
	out := make([]Sighting, 0, l.sightings.Len())
	l.sightings.Range(func(_ string, s Sighting) bool {
		out = append(out, s)
		return true
	})
	slices.SortFunc(out, func(a, b Sighting) int {
		switch {
		case a.Address < b.Address:
			return -1
		case a.Address > b.Address:
			return 1
		}
		return 0
	})
	return out
}

// run drives the scan until ctx is done, re-subscribing after platform failures.
// It returns nil on cancellation and the terminal error once re-subscription gives up.
// Every acquired device is stopped before a replacement is acquired and when run exits.
func (l *Listener) run(ctx context.Context, dev device.ScanningDevice, sub *Subscription) error {
	defer func() { l.stopDevice(dev) }()

	attempt, unavailable := 0, 0
	for {
		var err error
		if dev == nil {
			dev, err = newScanningDevice()
			if err != nil {
				l.logger.WithError(err).Debug("BLE scanner not ready yet")
			}
		}
		if dev != nil {
			err = dev.Scan(ctx, l.opts.AllowDuplicates, sub.deliver)
			if ctx.Err() != nil {
				return nil
			}
			if err == nil {
				err = &device.TransientAdapterError{Err: errors.New("scan ended unexpectedly")}
			}
			l.stopDevice(dev)
			dev = nil
		}

		if sub.takeReceived() {
			attempt, unavailable = 0, 0
		}
		sub.markUnavailable()

		if errors.Is(err, device.ErrBleUnavailable) && !device.IsTransient(err) {
			unavailable++
			if limit := l.opts.MaxUnavailableAttempts; limit > 0 && unavailable > limit {
				l.logger.WithError(err).WithField("attempts", unavailable).Error("BLE unavailable, giving up on scan")
				return err
			}
		}
		if limit := l.opts.MaxResubscribeAttempts; limit > 0 && attempt >= limit {
			l.logger.WithError(err).WithField("attempts", attempt).Error("Giving up on BLE scan")
			if !errors.Is(err, device.ErrBleUnavailable) {
				err = fmt.Errorf("%w: %v", device.ErrBleUnavailable, err)
			}
			return err
		}

		delay := backoffDelay(attempt, l.opts.ResubscribeInitialBackoff, l.opts.ResubscribeMaxBackoff)
		attempt++
		l.logger.WithError(err).WithFields(logrus.Fields{
			"goroutine": groutine.Name(ctx),
			"attempt":   attempt,
			"delay":     delay,
		}).Warn("BLE scan interrupted, re-subscribing")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// stopDevice releases dev, logging failures; a nil dev is ignored.
func (l *Listener) stopDevice(dev device.ScanningDevice) {
	if dev == nil {
		return
	}
	if err := dev.Stop(); err != nil {
		l.logger.WithError(err).Debug("Failed to stop BLE scanner")
	}
}

func (l *Listener) accepts(address string) bool {
	if slices.Contains(l.opts.BlockList, address) {
		return false
	}
	return len(l.opts.AllowList) == 0 || slices.Contains(l.opts.AllowList, address)
}

func (l *Listener) recordSighting(raw RawAdvertisement) {
	s, _ := l.sightings.Get(raw.Address)
	s.Address = raw.Address
	s.RSSI = raw.RSSI
	s.Count++
	s.LastSeen = time.Now()
	l.sightings.Set(raw.Address, s)
}

func (l *Listener) release(sub *Subscription) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == sub {
		l.active = nil
	}
}

func (l *Listener) adapterState(available bool) {
	if hook := l.opts.AdapterHook; hook != nil {
		hook.OnAdapterState(available)
	}
}

// newScanningDevice obtains a scanner from the factory, classifying failures as
// device.ErrBleUnavailable.
func newScanningDevice() (device.ScanningDevice, error) {
	dev, err := devicefactory.DeviceFactory()
	if err == nil && dev == nil {
		err = errors.New("no scanning device")
	}
	if err != nil {
		if errors.Is(err, device.ErrBleUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", device.ErrBleUnavailable, err)
	}
	return dev, nil
}

// Subscription is a live scan started by Listener.Start.
type Subscription struct {
	listener *Listener
	handler  Handler
	cancel   context.CancelFunc
	done     <-chan struct{}
	stopOnce sync.Once

	// mu serialises deliveries and guards the fields below.
	mu          sync.Mutex
	stopped     bool
	received    bool
	unavailable bool
	err         error
}

// Stop ends the subscription. It blocks until the scan goroutine has exited; no
// handler call happens after Stop returns. Calling Stop more than once is safe.
// Stop must not be called from within the handler.
func (s *Subscription) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()

		s.cancel()
		<-s.done
		s.listener.release(s)
		s.listener.logger.Debug("Advertisement subscription stopped")
	})
}

// Done is closed when the scan goroutine exits, either after Stop or when
// re-subscription gives up.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that ended the scan, or nil if it was stopped.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription) deliver(adv device.Advertisement) {
	l := s.listener
	companyID, payload, ok := device.SplitManufacturerData(adv.ManufacturerData())
	if !ok || companyID != l.opts.VendorID {
		return
	}
	address := adv.Addr()
	if !l.accepts(address) {
		return
	}
	raw := RawAdvertisement{
		Address:  address,
		VendorID: companyID,
		Payload:  bytes.Clone(payload),
		RSSI:     adv.RSSI(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.received = true
	if s.unavailable {
		s.unavailable = false
		l.logger.Info("BLE advertisements resumed")
		l.adapterState(true)
	}
	l.recordSighting(raw)
	s.handler(raw)
}

// takeReceived reports whether anything was delivered since the last call.
func (s *Subscription) takeReceived() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.received
	s.received = false
	return r
}

func (s *Subscription) markUnavailable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.unavailable {
		return
	}
	s.unavailable = true
	s.listener.adapterState(false)
}

func (s *Subscription) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
