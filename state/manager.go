package state

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/podmon/internal/groutine"
	"github.com/srg/podmon/proximity"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// transition is one queued notification.
type transition struct {
	old, new DeviceStatus
}

// Manager is the single owner of DeviceStatus.
//
// OnDecoded, SetAdapterAvailable, Register, Unregister and CurrentStatus are safe
// for concurrent use and may be called from observers. Flush and Close must not be
// called from an observer.
type Manager struct {
	logger *logrus.Logger
	opts   Options

	mu        sync.Mutex
	cond      *sync.Cond
	status    DeviceStatus
	observers *orderedmap.OrderedMap[ObserverID, Observer]
	nextID    ObserverID
	smoother  *smoother

	// watchdog
	timer      *time.Timer
	generation uint64

	// dispatcher
	pending   []transition
	enqueued  uint64
	delivered uint64
	closed    bool
	done      <-chan struct{}
}

// New creates a Manager in the disconnected state and starts its dispatcher.
// A nil logger is replaced by a default one.
func New(logger *logrus.Logger, opts Options) *Manager {
	if logger == nil {
		logger = logrus.New()
	}
	opts = opts.withDefaults()

	m := &Manager{
		logger:    logger,
		opts:      opts,
		status:    DeviceStatus{AdapterAvailable: true},
		observers: orderedmap.New[ObserverID, Observer](),
		smoother:  newSmoother(opts.SmoothingWindow),
	}
	m.cond = sync.NewCond(&m.mu)
	m.done = groutine.GoDone(context.Background(), "podmon-state-dispatch", m.dispatch)

	logger.WithFields(logrus.Fields{
		"stale_timeout":    opts.StaleTimeout,
		"smoothing_window": opts.SmoothingWindow,
	}).Debug("State manager started")
	return m
}

// OnDecoded folds a fresh reading into the status: the device becomes connected,
// LastSeen is refreshed and the watchdog re-armed. Observers are notified only if
// the status changed in anything but LastSeen.
func (m *Manager) OnDecoded(battery proximity.BatteryStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	old := m.status
	m.status.Battery = m.smoother.add(battery)
	m.status.Connected = true
	m.status.AdapterAvailable = true
	m.status.LastSeen = m.opts.Now()
	m.armLocked()

	m.enqueueLocked(old, m.status)
}

// SetAdapterAvailable records whether the BLE adapter is usable. Losing the
// adapter disconnects the device immediately.
func (m *Manager) SetAdapterAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	old := m.status
	m.status.AdapterAvailable = available
	if !available {
		m.disarmLocked()
		m.status.Connected = false
		m.smoother.reset()
	}
	m.enqueueLocked(old, m.status)
}

// CurrentStatus returns a snapshot of the current status.
func (m *Manager) CurrentStatus() DeviceStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Register adds an observer. Observers are notified in registration order.
func (m *Manager) Register(obs Observer) ObserverID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.observers.Set(id, obs)
	return id
}

// RegisterFunc is a shorthand for Register(ObserverFunc(fn)).
func (m *Manager) RegisterFunc(fn func(old, new DeviceStatus)) ObserverID {
	return m.Register(ObserverFunc(fn))
}

// Unregister removes an observer. A notification already being delivered to it
// when Unregister is called may still complete; no later one is started.
// It reports whether id was registered.
func (m *Manager) Unregister(id ObserverID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.observers.Delete(id)
	return ok
}

// Flush blocks until every transition queued before the call has been delivered.
func (m *Manager) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	target := m.enqueued
	for m.delivered < target {
		m.cond.Wait()
	}
}

// Close stops the watchdog, delivers queued notifications and stops the dispatcher.
// Later readings are ignored. Calling Close more than once is safe.
func (m *Manager) Close() {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		m.disarmLocked()
		m.cond.Broadcast()
	}
	m.mu.Unlock()

	<-m.done
}

// armLocked (re)starts the watchdog. The previous timer is stopped and any of its
// fires already in flight are invalidated by the generation bump.
func (m *Manager) armLocked() {
	m.disarmLocked()
	gen := m.generation
	m.timer = time.AfterFunc(m.opts.StaleTimeout, func() {
		m.expire(gen)
	})
}

func (m *Manager) disarmLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.generation++
}

// expire is the watchdog callback.
func (m *Manager) expire(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation || m.closed || !m.status.Connected {
		return
	}

	old := m.status
	m.status.Connected = false
	m.timer = nil
	m.smoother.reset()

	m.logger.WithFields(logrus.Fields{
		"last_seen": old.LastSeen,
		"timeout":   m.opts.StaleTimeout,
	}).Info("Device went stale")
	m.enqueueLocked(old, m.status)
}

func (m *Manager) enqueueLocked(old, next DeviceStatus) {
	if sameState(old, next) {
		return
	}
	m.pending = append(m.pending, transition{old: old, new: next})
	m.enqueued++
	m.cond.Broadcast()
}

// dispatch delivers queued transitions one at a time, in queue order.
func (m *Manager) dispatch(ctx context.Context) {
	for {
		m.mu.Lock()
		for len(m.pending) == 0 && !m.closed {
			m.cond.Wait()
		}
		if len(m.pending) == 0 {
			m.mu.Unlock()
			return
		}
		t := m.pending[0]
		m.pending[0] = transition{}
		m.pending = m.pending[1:]

		ids := make([]ObserverID, 0, m.observers.Len())
		for pair := m.observers.Oldest(); pair != nil; pair = pair.Next() {
			ids = append(ids, pair.Key)
		}
		m.mu.Unlock()

		for _, id := range ids {
			m.mu.Lock()
			obs, ok := m.observers.Get(id)
			m.mu.Unlock()
			if ok {
				m.notify(id, obs, t)
			}
		}

		m.mu.Lock()
		m.delivered++
		m.cond.Broadcast()
		m.mu.Unlock()
	}
}

// notify calls one observer, containing its panics.
func (m *Manager) notify(id ObserverID, obs Observer, t transition) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.WithFields(logrus.Fields{
				"observer": id,
				"panic":    fmt.Sprint(r),
				"stack":    string(debug.Stack()),
			}).Error("Observer panicked")
		}
	}()
	obs.OnStatusChange(t.old, t.new)
}
