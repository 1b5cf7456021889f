package state

import "time"

// DefaultStaleTimeout is how long a device stays connected without a fresh reading.
const DefaultStaleTimeout = 30 * time.Second

// Options configures a Manager. They are fixed at construction.
type Options struct {
	// StaleTimeout is the watchdog period. Zero means DefaultStaleTimeout.
	StaleTimeout time.Duration

	// SmoothingWindow is the number of recent readings whose most frequent battery
	// values are reported. Values below 2 disable smoothing.
	SmoothingWindow int

	// Now supplies LastSeen timestamps. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		StaleTimeout:    DefaultStaleTimeout,
		SmoothingWindow: 1,
		Now:             time.Now,
	}
}

func (o Options) withDefaults() Options {
	if o.StaleTimeout <= 0 {
		o.StaleTimeout = DefaultStaleTimeout
	}
	if o.SmoothingWindow < 1 {
		o.SmoothingWindow = 1
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
