package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCondensedSum(t *testing.T) {
	a := []*Object{src("a0", 0, 1), src("a5", 5, 1), src("a9", 9, 1)}
	b := []*Object{src("b5", 5, 1), src("b7", 7, 1), src("b20", 20, 1)}

	got := condensedSum(a, b)
	assert.Equal(t, []string{"a0", "b5", "a5", "b7", "a9", "b20"}, names(got))

	assert.Equal(t, []string{"b5", "b7", "b20"}, names(condensedSum(nil, b)))
	assert.Equal(t, []string{"a0", "a5", "a9"}, names(condensedSum(a, nil)))
	assert.Len(t, a, 3, "inputs are not modified")
}

func TestComposition_UpdateCondensed_Idempotent(t *testing.T) {
	c := newTestComposition(t, "video")
	require.NoError(t, c.AddSource(src("A", 0, 10), 1, false))
	require.NoError(t, c.AddSource(src("B", 10, 5), 1, false))
	rec := record(c)

	first := c.Condensed()
	assert.False(t, c.UpdateCondensed())
	assert.False(t, c.UpdateCondensed())
	assert.Equal(t, first, c.Condensed())
	assert.Empty(t, rec.events)
}

func TestComposition_UpdateCondensed_EmptyNeverEmits(t *testing.T) {
	c := newTestComposition(t, "video")
	rec := record(c)

	assert.False(t, c.UpdateCondensed())
	assert.Empty(t, rec.events)
	assert.Empty(t, c.Condensed())
}

func TestComposition_CondensedPayload(t *testing.T) {
	c := newTestComposition(t, "video")
	var payloads [][]string
	c.On(EventCondensedChanged, func(ev Event) {
		payloads = append(payloads, names(ev.Condensed))
	})

	require.NoError(t, c.AppendSource(NewSource("A", sec(10), WithID("A")), 1, false))
	require.NoError(t, c.AppendSource(NewSource("B", sec(5), WithID("B")), 1, false))

	assert.Equal(t, [][]string{{"A"}, {"A", "B"}}, payloads)
}

func TestComposition_CondensedTracksShifts(t *testing.T) {
	c := newTestComposition(t, "video")
	a, b := src("A", 0, 10), src("B", 10, 5)
	require.NoError(t, c.AddSource(a, 1, false))
	require.NoError(t, c.AddSource(b, 1, false))
	rec := record(c)

	// Same objects in the same order, but B now starts elsewhere.
	b.setStart(sec(12))
	assert.True(t, c.UpdateCondensed())
	assert.Equal(t, 1, rec.count(EventCondensedChanged))
	assert.False(t, c.UpdateCondensed())
}
