package state

import (
	"testing"

	"github.com/srg/podmon/proximity"
	"github.com/stretchr/testify/assert"
)

func TestSmoother_Disabled(t *testing.T) {
	s := newSmoother(1)
	in := proximity.BatteryStatus{Left: proximity.Known(40)}
	assert.Equal(t, in, s.add(in))
	assert.Equal(t, in, s.add(in))
	assert.Empty(t, s.history)
}

func TestSmoother_UnknownNeverOutvotesKnown(t *testing.T) {
	s := newSmoother(5)
	s.add(proximity.BatteryStatus{Case: proximity.Known(70)})
	s.add(proximity.BatteryStatus{Case: proximity.Unknown()})
	out := s.add(proximity.BatteryStatus{Case: proximity.Unknown()})
	assert.Equal(t, proximity.Known(70), out.Case)

	s.reset()
	out = s.add(proximity.BatteryStatus{Case: proximity.Unknown()})
	assert.False(t, out.Case.IsKnown())
}

func TestSmoother_TiesPreferRecent(t *testing.T) {
	s := newSmoother(4)
	s.add(proximity.BatteryStatus{Left: proximity.Known(40), LeftCharging: false})
	out := s.add(proximity.BatteryStatus{Left: proximity.Known(50), LeftCharging: true})
	assert.Equal(t, proximity.Known(50), out.Left)
	assert.True(t, out.LeftCharging)
}

func TestSmoother_WindowSlides(t *testing.T) {
	s := newSmoother(2)
	s.add(proximity.BatteryStatus{Right: proximity.Known(10)})
	s.add(proximity.BatteryStatus{Right: proximity.Known(10)})
	s.add(proximity.BatteryStatus{Right: proximity.Known(20)})
	out := s.add(proximity.BatteryStatus{Right: proximity.Known(20)})
	assert.Equal(t, proximity.Known(20), out.Right)
	assert.Len(t, s.history, 2)
}

func TestSmoother_SinglePodAbsentSideStaysUnknown(t *testing.T) {
	s := newSmoother(3)
	s.add(proximity.BatteryStatus{Left: proximity.Known(40), Right: proximity.Known(30)})
	out := s.add(proximity.BatteryStatus{Left: proximity.Known(40), Right: proximity.Unknown(), SinglePod: true})
	assert.Equal(t, proximity.Known(40), out.Left)
	assert.False(t, out.Right.IsKnown())
	assert.True(t, out.SinglePod)
}
