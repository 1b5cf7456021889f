package proximity

import (
	"fmt"
	"strings"
)

// DefaultLowBatteryThreshold is the level at or below which a component counts as low.
const DefaultLowBatteryThreshold = 20

// BatteryStatus is the decoded battery and charging state of the earbuds and their case.
// It is an immutable value: two readings are equal when all fields are equal.
type BatteryStatus struct {
	Left  Percent `json:"left"`
	Right Percent `json:"right"`
	Case  Percent `json:"case"`

	LeftCharging  bool `json:"left_charging"`
	RightCharging bool `json:"right_charging"`
	CaseCharging  bool `json:"case_charging"`

	SinglePod bool  `json:"single_pod"`
	Model     Model `json:"model"`
}

// Low reports whether any known level is at or below threshold.
func (s BatteryStatus) Low(threshold int) bool {
	for _, p := range []Percent{s.Left, s.Right, s.Case} {
		if v, ok := p.Value(); ok && v <= threshold {
			return true
		}
	}
	return false
}

func (s BatteryStatus) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s L:%s", s.Model.Name(), s.Left)
	if s.LeftCharging {
		b.WriteString("+")
	}
	fmt.Fprintf(&b, " R:%s", s.Right)
	if s.RightCharging {
		b.WriteString("+")
	}
	fmt.Fprintf(&b, " C:%s", s.Case)
	if s.CaseCharging {
		b.WriteString("+")
	}
	if s.SinglePod {
		b.WriteString(" (single)")
	}
	return b.String()
}
