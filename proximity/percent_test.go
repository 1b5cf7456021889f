package proximity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercent(t *testing.T) {
	t.Run("zero value is unknown", func(t *testing.T) {
		var p Percent
		_, ok := p.Value()
		assert.False(t, ok)
		assert.Equal(t, Unknown(), p)
		assert.Equal(t, "unknown", p.String())
	})

	t.Run("known values are clamped", func(t *testing.T) {
		v, ok := Known(-5).Value()
		assert.True(t, ok)
		assert.Equal(t, 0, v)

		v, _ = Known(250).Value()
		assert.Equal(t, 100, v)
		assert.Equal(t, "100%", Known(100).String())
	})

	t.Run("json encodes unknown as null", func(t *testing.T) {
		out, err := json.Marshal(struct {
			A Percent `json:"a"`
			B Percent `json:"b"`
		}{A: Known(40), B: Unknown()})

		require.NoError(t, err)
		assert.JSONEq(t, `{"a":40,"b":null}`, string(out))
	})
}

func TestPercentFromNibble(t *testing.T) {
	tests := []struct {
		nibble uint8
		want   Percent
	}{
		{0x0, Known(0)},
		{0x3, Known(30)},
		{0xA, Known(100)},
		{0xB, Unknown()},
		{0xE, Unknown()},
		{0xF, Unknown()},
		{0x1F, Unknown()}, // upper bits ignored
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, percentFromNibble(tt.nibble), "nibble 0x%X", tt.nibble)
	}
}

func TestModel(t *testing.T) {
	assert.Equal(t, "AirPods Pro 2", ModelAirPodsPro2.Name())
	assert.True(t, ModelAirPodsMax.IsKnown())
	assert.False(t, Model(0xBEEF).IsKnown())
	assert.Equal(t, "Unknown (0xBEEF)", Model(0xBEEF).Name())
	assert.Equal(t, "0x1420", ModelAirPodsPro2.String())

	models := KnownModels()
	assert.Len(t, models, len(modelNames))
	assert.IsIncreasing(t, models)
}

func TestParseModels(t *testing.T) {
	models, err := ParseModels("0x1420")
	require.NoError(t, err)
	assert.Equal(t, []Model{ModelAirPodsPro2}, models)

	models, err = ParseModels("0XBEEF")
	require.NoError(t, err)
	assert.Equal(t, []Model{0xBEEF}, models)

	models, err = ParseModels("airpods max")
	require.NoError(t, err)
	assert.ElementsMatch(t, []Model{ModelAirPodsMax, ModelAirPodsMaxBE}, models)

	_, err = ParseModels("0x1FFFF")
	assert.Error(t, err)
	_, err = ParseModels("Galaxy Buds")
	assert.Error(t, err)
}
