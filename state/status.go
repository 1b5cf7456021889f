package state

import (
	"fmt"
	"time"

	"github.com/srg/podmon/proximity"
)

// DeviceStatus is an immutable snapshot of the tracked accessory.
//
// Battery keeps the last known reading after the device goes stale; it is only
// reliable while Connected is true. AdapterAvailable is false while the BLE adapter
// is unusable, which is distinct from "no device nearby".
type DeviceStatus struct {
	Connected        bool                    `json:"connected"`
	Battery          proximity.BatteryStatus `json:"battery"`
	LastSeen         time.Time               `json:"last_seen"`
	AdapterAvailable bool                    `json:"adapter_available"`
}

// Seen reports whether a reading was ever received.
func (s DeviceStatus) Seen() bool {
	return !s.LastSeen.IsZero()
}

// sameState compares everything observers care about, ignoring LastSeen.
func sameState(a, b DeviceStatus) bool {
	return a.Connected == b.Connected &&
		a.Battery == b.Battery &&
		a.AdapterAvailable == b.AdapterAvailable
}

func (s DeviceStatus) String() string {
	switch {
	case !s.AdapterAvailable:
		return "bluetooth unavailable"
	case !s.Connected && !s.Seen():
		return "disconnected"
	case !s.Connected:
		return fmt.Sprintf("disconnected (last seen %s, %s)", s.LastSeen.Format(time.TimeOnly), s.Battery)
	default:
		return fmt.Sprintf("connected (%s)", s.Battery)
	}
}

// Observer receives every DeviceStatus transition.
type Observer interface {
	OnStatusChange(old, new DeviceStatus)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(old, new DeviceStatus)

func (f ObserverFunc) OnStatusChange(old, new DeviceStatus) { f(old, new) }

// ObserverID identifies a registration.
type ObserverID uint64
