package proximity_test

import (
	"testing"

	"github.com/srg/podmon/internal/testutils"
	"github.com/srg/podmon/proximity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayload() *testutils.ProximityPayloadBuilder {
	return testutils.NewProximityPayloadBuilder(proximity.ContinuityLayout)
}

func mustDecoder(t *testing.T, layout proximity.Layout, models ...proximity.Model) *proximity.Decoder {
	t.Helper()
	d, err := proximity.NewDecoder(proximity.AppleCompanyID, layout, models...)
	require.NoError(t, err)
	return d
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    proximity.BatteryStatus
	}{
		{
			name:    "decodes airpods pro 2 levels",
			payload: newPayload().Build(),
			want: proximity.BatteryStatus{
				Left:  proximity.Known(100),
				Right: proximity.Known(50),
				Case:  proximity.Known(70),
				Model: proximity.ModelAirPodsPro2,
			},
		},
		{
			name:    "recognises usb-c variant",
			payload: newPayload().WithModel(proximity.ModelAirPodsPro2USBC).Build(),
			want: proximity.BatteryStatus{
				Left:  proximity.Known(100),
				Right: proximity.Known(50),
				Case:  proximity.Known(70),
				Model: proximity.ModelAirPodsPro2USBC,
			},
		},
		{
			name:    "maps nibble 0xF to unknown",
			payload: newPayload().WithPods(0xFF).WithCase(0x0F).Build(),
			want: proximity.BatteryStatus{
				Left:  proximity.Unknown(),
				Right: proximity.Unknown(),
				Case:  proximity.Unknown(),
				Model: proximity.ModelAirPodsPro2,
			},
		},
		{
			name:    "decodes charging flags independently",
			payload: newPayload().WithCase(0x67).Build(),
			want: proximity.BatteryStatus{
				Left:         proximity.Known(100),
				Right:        proximity.Known(50),
				Case:         proximity.Known(70),
				LeftCharging: true,
				CaseCharging: true,
				Model:        proximity.ModelAirPodsPro2,
			},
		},
		{
			name:    "swaps levels when flip bit is set",
			payload: newPayload().WithStatus(0x02).Build(),
			want: proximity.BatteryStatus{
				Left:  proximity.Known(50),
				Right: proximity.Known(100),
				Case:  proximity.Known(70),
				Model: proximity.ModelAirPodsPro2,
			},
		},
		{
			name:    "swaps charging flags when flip bit is set",
			payload: newPayload().WithStatus(0x02).WithCase(0x27).Build(),
			want: proximity.BatteryStatus{
				Left:          proximity.Known(50),
				Right:         proximity.Known(100),
				Case:          proximity.Known(70),
				RightCharging: true,
				Model:         proximity.ModelAirPodsPro2,
			},
		},
		{
			name:    "decodes empty batteries",
			payload: newPayload().WithPods(0x00).WithCase(0x00).Build(),
			want: proximity.BatteryStatus{
				Left:  proximity.Known(0),
				Right: proximity.Known(0),
				Case:  proximity.Known(0),
				Model: proximity.ModelAirPodsPro2,
			},
		},
		{
			name:    "decodes full batteries",
			payload: newPayload().WithPods(0xAA).WithCase(0x0A).Build(),
			want: proximity.BatteryStatus{
				Left:  proximity.Known(100),
				Right: proximity.Known(100),
				Case:  proximity.Known(100),
				Model: proximity.ModelAirPodsPro2,
			},
		},
		{
			name:    "reads reserved nibbles as unknown",
			payload: newPayload().WithPods(0xBE).WithCase(0x0C).Build(),
			want: proximity.BatteryStatus{
				Left:  proximity.Unknown(),
				Right: proximity.Unknown(),
				Case:  proximity.Unknown(),
				Model: proximity.ModelAirPodsPro2,
			},
		},
		{
			name: "decodes short 17-byte message",
			payload: append([]byte{0x07, 0x11, 0x06, 0x64, 0x65, 0x9c, 0x45, 0xa4},
				make([]byte, 0x11-6)...),
			want: proximity.BatteryStatus{
				Left:         proximity.Known(40),
				Right:        proximity.Known(50),
				Case:         proximity.Known(40),
				LeftCharging: true,
				Model:        proximity.ModelAirPodsProLegacy,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := proximity.Decode(tt.payload, proximity.AppleCompanyID)

			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_NotApplicable(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		vendorID uint16
	}{
		{name: "other vendor", payload: newPayload().Build(), vendorID: 0x1234},
		{name: "unrecognised model", payload: newPayload().WithModel(0xFFFF).Build(), vendorID: proximity.AppleCompanyID},
		{name: "truncated header", payload: []byte{0x07, 0x19, 0x01}, vendorID: proximity.AppleCompanyID},
		{name: "empty payload", payload: []byte{}, vendorID: proximity.AppleCompanyID},
		{name: "nil payload", payload: nil, vendorID: proximity.AppleCompanyID},
		{name: "single byte", payload: []byte{0x07}, vendorID: proximity.AppleCompanyID},
		{name: "wrong message type", payload: newPayload().WithType(0x03).Build(), vendorID: proximity.AppleCompanyID},
		{name: "declared length below fixed fields", payload: newPayload().WithLength(4).Build(), vendorID: proximity.AppleCompanyID},
		{name: "shorter than declared length", payload: newPayload().WithTruncate(10).Build(), vendorID: proximity.AppleCompanyID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				got proximity.BatteryStatus
				ok  bool
			)
			assert.NotPanics(t, func() {
				got, ok = proximity.Decode(tt.payload, tt.vendorID)
			})
			assert.False(t, ok)
			assert.Equal(t, proximity.BatteryStatus{}, got, "rejected payloads must not be partially decoded")
		})
	}
}

func TestDecode_LevelScaling(t *testing.T) {
	for n := uint8(0); n <= 10; n++ {
		payload := newPayload().WithPods(n<<4 | n).WithCase(n).Build()

		got, ok := proximity.Decode(payload, proximity.AppleCompanyID)
		require.True(t, ok)

		for _, p := range []proximity.Percent{got.Left, got.Right, got.Case} {
			v, known := p.Value()
			assert.True(t, known)
			assert.Equal(t, int(n)*10, v)
			assert.GreaterOrEqual(t, v, 0)
			assert.LessOrEqual(t, v, 100)
		}
	}
}

func TestDecode_UnknownSentinel(t *testing.T) {
	for other := uint8(0); other <= 10; other++ {
		leftUnknown, ok := proximity.Decode(newPayload().WithPods(0xF0|other).Build(), proximity.AppleCompanyID)
		require.True(t, ok)
		assert.False(t, leftUnknown.Left.IsKnown())
		assert.True(t, leftUnknown.Right.IsKnown())

		rightUnknown, ok := proximity.Decode(newPayload().WithPods(other<<4|0x0F).Build(), proximity.AppleCompanyID)
		require.True(t, ok)
		assert.True(t, rightUnknown.Left.IsKnown())
		assert.False(t, rightUnknown.Right.IsKnown())

		caseUnknown, ok := proximity.Decode(newPayload().WithCase(0x0F|other<<4&0x70).Build(), proximity.AppleCompanyID)
		require.True(t, ok)
		assert.False(t, caseUnknown.Case.IsKnown())
	}
}

func TestDecode_VendorFilter(t *testing.T) {
	payload := newPayload().Build()

	for _, vendor := range []uint16{0x0000, 0x0006, 0x004D, 0x4C00, 0xFFFE, 0xFFFF} {
		got, ok := proximity.Decode(payload, vendor)
		assert.False(t, ok, "vendor 0x%04X", vendor)
		assert.Equal(t, proximity.BatteryStatus{}, got)
	}
}

func TestDecode_SinglePod(t *testing.T) {
	tests := []struct {
		name      string
		pods      uint8
		wantLeft  proximity.Percent
		wantRight proximity.Percent
	}{
		{name: "left earbud only", pods: 0xAF, wantLeft: proximity.Known(100), wantRight: proximity.Unknown()},
		{name: "right earbud only", pods: 0xF5, wantLeft: proximity.Unknown(), wantRight: proximity.Known(50)},
		{name: "absent side is not mirrored", pods: 0x85, wantLeft: proximity.Known(80), wantRight: proximity.Unknown()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := proximity.Decode(newPayload().WithPods(tt.pods).WithCount(0x80).Build(), proximity.AppleCompanyID)

			require.True(t, ok)
			assert.True(t, got.SinglePod)
			assert.Equal(t, tt.wantLeft, got.Left)
			assert.Equal(t, tt.wantRight, got.Right)
		})
	}

	t.Run("count byte without flag is dual mode", func(t *testing.T) {
		got, ok := proximity.Decode(newPayload().WithCount(0x7F).Build(), proximity.AppleCompanyID)

		require.True(t, ok)
		assert.False(t, got.SinglePod)
		assert.Equal(t, proximity.Known(50), got.Right)
	})
}

func TestDecoder_CompactLayout(t *testing.T) {
	d := mustDecoder(t, proximity.CompactLayout)

	t.Run("decodes reference payload", func(t *testing.T) {
		payload := append([]byte{0x07, 0x19, 0x0E, 0x20, 0x00, 0x42, 0x55}, make([]byte, 0x19-5)...)

		got, ok := d.Decode(payload, proximity.AppleCompanyID)

		require.True(t, ok)
		assert.Equal(t, proximity.BatteryStatus{
			Left:         proximity.Known(40),
			Right:        proximity.Known(20),
			Case:         proximity.Known(50),
			LeftCharging: true,
			CaseCharging: true,
			Model:        proximity.ModelAirPodsPro,
		}, got)
	})

	t.Run("honours flip bit", func(t *testing.T) {
		payload := testutils.NewProximityPayloadBuilder(proximity.CompactLayout).
			WithPods(0x42).
			WithStatus(0x02).
			WithCase(0x52).
			Build()

		got, ok := d.Decode(payload, proximity.AppleCompanyID)

		require.True(t, ok)
		assert.Equal(t, proximity.Known(20), got.Left)
		assert.Equal(t, proximity.Known(40), got.Right)
		assert.Equal(t, proximity.Known(50), got.Case)
		assert.True(t, got.LeftCharging, "right charging bit maps to the left earbud when flipped")
		assert.False(t, got.RightCharging)
	})

	t.Run("rejects continuity framing", func(t *testing.T) {
		_, ok := d.Decode(newPayload().Build(), proximity.AppleCompanyID)
		assert.False(t, ok)
	})
}

func TestNewDecoder(t *testing.T) {
	t.Run("restricts accepted models", func(t *testing.T) {
		d := mustDecoder(t, proximity.ContinuityLayout, proximity.ModelAirPodsPro2USBC)

		_, ok := d.Decode(newPayload().Build(), proximity.AppleCompanyID)
		assert.False(t, ok)

		_, ok = d.Decode(newPayload().WithModel(proximity.ModelAirPodsPro2USBC).Build(), proximity.AppleCompanyID)
		assert.True(t, ok)
	})

	t.Run("uses configured vendor", func(t *testing.T) {
		d, err := proximity.NewDecoder(0xFFFE, proximity.ContinuityLayout)
		require.NoError(t, err)

		_, ok := d.Decode(newPayload().Build(), proximity.AppleCompanyID)
		assert.False(t, ok)
		_, ok = d.Decode(newPayload().Build(), 0xFFFE)
		assert.True(t, ok)
		assert.Equal(t, uint16(0xFFFE), d.VendorID())
	})

	t.Run("rejects layout without byte order", func(t *testing.T) {
		layout := proximity.ContinuityLayout
		layout.ModelOrder = nil

		_, err := proximity.NewDecoder(proximity.AppleCompanyID, layout)
		assert.Error(t, err)
	})

	t.Run("rejects negative offsets", func(t *testing.T) {
		layout := proximity.CompactLayout
		layout.CaseOffset = -1

		_, err := proximity.NewDecoder(proximity.AppleCompanyID, layout)
		assert.ErrorContains(t, err, "negative case offset")
	})
}

func TestLayoutByName(t *testing.T) {
	l, err := proximity.LayoutByName("Compact")
	require.NoError(t, err)
	assert.Equal(t, "compact", l.Name)

	l, err = proximity.LayoutByName("")
	require.NoError(t, err)
	assert.Equal(t, proximity.ContinuityLayout.Name, l.Name)

	_, err = proximity.LayoutByName("legacy")
	assert.Error(t, err)
}

func TestDecode_ReservedLevelsAreUnknown(t *testing.T) {
	payload := newPayload().WithPods(0xBC).WithCase(0x0D).Build()

	st, ok := proximity.Decode(payload, proximity.AppleCompanyID)
	require.True(t, ok, "reserved levels must not fail decoding")
	assert.False(t, st.Left.IsKnown())
	assert.False(t, st.Right.IsKnown())
	assert.False(t, st.Case.IsKnown())
	assert.Equal(t, "unknown", st.Left.String())
}

func TestBatteryStatus_Low(t *testing.T) {
	st := proximity.BatteryStatus{Left: proximity.Known(80), Right: proximity.Known(20), Case: proximity.Unknown()}
	assert.True(t, st.Low(proximity.DefaultLowBatteryThreshold))
	assert.False(t, st.Low(10))
	assert.False(t, proximity.BatteryStatus{}.Low(proximity.DefaultLowBatteryThreshold), "unknown levels are never low")
}
