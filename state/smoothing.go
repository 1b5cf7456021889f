package state

import "github.com/srg/podmon/proximity"

// smoother reports the most frequent recent value of each battery field, which
// hides single-advertisement flicker between adjacent levels.
type smoother struct {
	window  int
	history []proximity.BatteryStatus
}

func newSmoother(window int) *smoother {
	return &smoother{window: window}
}

func (s *smoother) reset() {
	s.history = s.history[:0]
}

// add records latest and returns the smoothed reading. Model and SinglePod always
// come from latest; unknown levels never outvote known ones.
func (s *smoother) add(latest proximity.BatteryStatus) proximity.BatteryStatus {
	if s.window < 2 {
		return latest
	}
	if len(s.history) == s.window {
		copy(s.history, s.history[1:])
		s.history = s.history[:len(s.history)-1]
	}
	s.history = append(s.history, latest)

	out := latest
	out.Left = s.modePercent(func(b proximity.BatteryStatus) proximity.Percent { return b.Left })
	out.Right = s.modePercent(func(b proximity.BatteryStatus) proximity.Percent { return b.Right })
	out.Case = s.modePercent(func(b proximity.BatteryStatus) proximity.Percent { return b.Case })
	out.LeftCharging = s.modeBool(func(b proximity.BatteryStatus) bool { return b.LeftCharging })
	out.RightCharging = s.modeBool(func(b proximity.BatteryStatus) bool { return b.RightCharging })
	out.CaseCharging = s.modeBool(func(b proximity.BatteryStatus) bool { return b.CaseCharging })

	// an earbud that went away stays away
	if latest.SinglePod {
		if !latest.Left.IsKnown() {
			out.Left, out.LeftCharging = proximity.Unknown(), false
		}
		if !latest.Right.IsKnown() {
			out.Right, out.RightCharging = proximity.Unknown(), false
		}
	}
	return out
}

// modePercent returns the most frequent known value, the most recent one winning ties.
func (s *smoother) modePercent(field func(proximity.BatteryStatus) proximity.Percent) proximity.Percent {
	counts := make(map[proximity.Percent]int, len(s.history))
	best, bestCount := proximity.Unknown(), 0
	for _, b := range s.history {
		if p := field(b); p.IsKnown() {
			counts[p]++
		}
	}
	for i := len(s.history) - 1; i >= 0; i-- {
		p := field(s.history[i])
		if c := counts[p]; p.IsKnown() && c > bestCount {
			best, bestCount = p, c
		}
	}
	if bestCount == 0 {
		return field(s.history[len(s.history)-1])
	}
	return best
}

func (s *smoother) modeBool(field func(proximity.BatteryStatus) bool) bool {
	var yes, no int
	for _, b := range s.history {
		if field(b) {
			yes++
		} else {
			no++
		}
	}
	if yes == no {
		return field(s.history[len(s.history)-1])
	}
	return yes > no
}
