package listener_test

import (
	"context"
	"time"

	"github.com/srg/podmon/internal/testutils"
	"github.com/srg/podmon/listener"
	"github.com/srg/podmon/proximity"
	"github.com/srg/podmon/state"
)

func (s *ListenerSuite) TestPipeline_LateAdvertisementAfterStop() {
	mgr := state.New(s.Logger, state.Options{StaleTimeout: time.Hour})
	defer mgr.Close()

	var notifications int
	mgr.RegisterFunc(func(_, _ state.DeviceStatus) { notifications++ })

	opts := s.options()
	opts.AdapterHook = listener.AdapterHookFunc(mgr.SetAdapterAvailable)
	l := listener.New(s.Logger, opts)

	sub, err := l.Start(context.Background(), listener.DecodeTo(nil, mgr))
	s.Require().NoError(err)
	s.WaitScanStarted()

	first := testutils.NewProximityPayloadBuilder(proximity.ContinuityLayout).WithPods(0x42).Build()
	s.Scanner.Deliver(testutils.CreateProximityAdvertisement("AA:00:00:00:00:01", -40, first).Build())
	mgr.Flush()

	st := mgr.CurrentStatus()
	s.True(st.Connected)
	s.Equal(proximity.Known(40), st.Battery.Left)
	s.Equal(proximity.Known(20), st.Battery.Right)

	sub.Stop()

	late := testutils.NewProximityPayloadBuilder(proximity.ContinuityLayout).WithPods(0x11).Build()
	s.Scanner.Deliver(testutils.CreateProximityAdvertisement("AA:00:00:00:00:01", -40, late).Build())
	mgr.Flush()

	s.Equal(st, mgr.CurrentStatus())
	s.Equal(1, notifications)
}
