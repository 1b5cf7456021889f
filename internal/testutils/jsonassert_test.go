package testutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONAsserter_IgnoresExtraKeysByDefault(t *testing.T) {
	rt := &recordingT{}
	NewJSONAsserter(rt).Assert(`{"left":40,"right":20,"model":"0x1420"}`, `{"left":40,"right":20}`)
	assert.Empty(t, rt.errors)
}

func TestJSONAsserter_StrictKeys(t *testing.T) {
	rt := &recordingT{}
	NewJSONAsserter(rt).
		WithOptions(WithIgnoreExtraKeys(false)).
		Assert(`{"left":40,"model":"0x1420"}`, `{"left":40}`)
	assert.Len(t, rt.errors, 1)
}

func TestJSONAsserter_ReportsValueDiff(t *testing.T) {
	rt := &recordingT{}
	NewJSONAsserter(rt).Assert(`{"left":40,"case":null}`, `{"left":40,"case":70}`)

	require.Len(t, rt.errors, 1)
	assert.Contains(t, rt.errors[0], "case")
}

func TestJSONAsserter_IgnoredFieldsAndArrays(t *testing.T) {
	rt := &recordingT{}
	NewJSONAsserter(rt).
		WithOptions(WithIgnoredFields("last_seen")).
		Assert(
			`[{"address":"a","last_seen":"2024-01-01T00:00:00Z"},{"address":"b","last_seen":"x"}]`,
			`[{"address":"a"},{"address":"b","last_seen":"y"}]`,
		)
	assert.Empty(t, rt.errors)
}

func TestMustJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, MustJSON(map[string]int{"a": 1}))
	assert.Panics(t, func() { MustJSON(make(chan int)) })
}
