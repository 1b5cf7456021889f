package listener

import (
	"time"

	"github.com/srg/podmon/proximity"
)

const (
	DefaultResubscribeInitialBackoff = 500 * time.Millisecond
	DefaultResubscribeMaxBackoff     = 30 * time.Second
	DefaultMaxUnavailableAttempts    = 3
)

// AdapterHook is notified when the BLE adapter becomes unavailable during a scan
// and when advertisements flow again after recovery.
type AdapterHook interface {
	OnAdapterState(available bool)
}

// AdapterHookFunc adapts a function to AdapterHook.
type AdapterHookFunc func(available bool)

func (f AdapterHookFunc) OnAdapterState(available bool) { f(available) }

// Options configures a Listener.
type Options struct {
	// VendorID selects advertisements by the company identifier of their manufacturer data.
	VendorID uint16

	// AllowDuplicates asks the platform to report repeated advertisements of the same device.
	AllowDuplicates bool

	// AllowList restricts deliveries to these addresses when not empty.
	AllowList []string
	// BlockList drops advertisements from these addresses.
	BlockList []string

	ResubscribeInitialBackoff time.Duration
	ResubscribeMaxBackoff     time.Duration
	// MaxResubscribeAttempts bounds consecutive failed re-subscriptions. Zero means unlimited.
	MaxResubscribeAttempts int
	// MaxUnavailableAttempts bounds consecutive re-subscriptions after the scan failed with
	// device.ErrBleUnavailable (adapter off, permission denied) rather than a transient error.
	// Zero selects DefaultMaxUnavailableAttempts; a negative value means unlimited.
	MaxUnavailableAttempts int

	AdapterHook AdapterHook
}

// DefaultOptions returns options that track Apple proximity pairing advertisements.
func DefaultOptions() Options {
	return Options{
		VendorID:                  proximity.AppleCompanyID,
		AllowDuplicates:           true,
		ResubscribeInitialBackoff: DefaultResubscribeInitialBackoff,
		ResubscribeMaxBackoff:     DefaultResubscribeMaxBackoff,
		MaxUnavailableAttempts:    DefaultMaxUnavailableAttempts,
	}
}

func (o Options) withDefaults() Options {
	if o.ResubscribeInitialBackoff <= 0 {
		o.ResubscribeInitialBackoff = DefaultResubscribeInitialBackoff
	}
	if o.ResubscribeMaxBackoff <= 0 {
		o.ResubscribeMaxBackoff = DefaultResubscribeMaxBackoff
	}
	if o.MaxUnavailableAttempts == 0 {
		o.MaxUnavailableAttempts = DefaultMaxUnavailableAttempts
	}
	if o.ResubscribeMaxBackoff < o.ResubscribeInitialBackoff {
		o.ResubscribeMaxBackoff = o.ResubscribeInitialBackoff
	}
	return o
}

// backoffDelay returns the wait before re-subscription attempt n (starting at 0),
// doubling from initial and capped at maxDelay.
func backoffDelay(attempt int, initial, maxDelay time.Duration) time.Duration {
	delay := initial
	for i := 0; i < attempt && delay < maxDelay; i++ {
		delay *= 2
	}
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}
