package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func effect(kind Kind, name string, start, duration int) *Object {
	return NewObject(kind, name, sec(duration), WithID(ID(name)), WithStart(sec(start)))
}

func TestComposition_GlobalEffects(t *testing.T) {
	c := newTestComposition(t, "video")
	require.NoError(t, c.AppendSource(src("A", 0, 10), 1, false))
	g1 := effect(KindGlobalEffect, "g1", 0, 1)
	g2 := effect(KindGlobalEffect, "g2", 0, 1)
	g3 := effect(KindGlobalEffect, "g3", 0, 1)
	rec := record(c)

	require.NoError(t, c.AddGlobalEffect(g1, -1, false))
	require.NoError(t, c.AddGlobalEffect(g2, 0, false))
	require.NoError(t, c.AddGlobalEffect(g3, 99, false))

	assert.Equal(t, []string{"g2", "g1", "g3"}, names(c.GlobalEffects()))
	assert.Equal(t, Priority(0), g2.Priority())
	assert.Equal(t, Priority(1), g1.Priority())
	assert.Equal(t, Priority(2), g3.Priority())
	assert.Equal(t, 3, rec.count(EventGlobalEffectAdded))
	for _, g := range c.GlobalEffects() {
		assert.Equal(t, sec(0), g.Start())
		assert.Equal(t, sec(10), g.Duration())
	}

	// Spans follow the composition.
	require.NoError(t, c.AppendSource(src("B", 0, 5), 1, false))
	assert.Equal(t, sec(15), g1.Duration())

	require.NoError(t, c.RemoveGlobalEffect(g2, false))
	assert.Equal(t, Priority(0), g1.Priority())
	assert.Equal(t, Priority(1), g3.Priority())
	assert.Equal(t, 1, rec.count(EventGlobalEffectRemoved))
	assert.False(t, c.Container().Contains(g2.Node()))

	assert.True(t, IsNotFound(c.RemoveGlobalEffect(g2, false)))
	assert.True(t, IsUnsupported(c.AddGlobalEffect(src("S", 0, 1), 0, false)))
	assert.NoError(t, c.Validate())
}

func TestComposition_GlobalEffects_BandExhausted(t *testing.T) {
	bands := DefaultBands()
	bands.GlobalSize = 1
	c := newTestComposition(t, "video", WithBands(bands))

	require.NoError(t, c.AddGlobalEffect(effect(KindGlobalEffect, "g1", 0, 1), -1, false))
	err := c.AddGlobalEffect(effect(KindGlobalEffect, "g2", 0, 1), -1, false)
	assert.Equal(t, ErrCodeBandExhausted, CodeOf(err))
	assert.Len(t, c.GlobalEffects(), 1)
}

func TestComposition_SimpleEffects(t *testing.T) {
	c := newTestComposition(t, "video")
	e1 := effect(KindSimpleEffect, "e1", 4, 4)
	e2 := effect(KindSimpleEffect, "e2", 2, 4)
	e3 := effect(KindSimpleEffect, "e3", 0, 2)

	require.NoError(t, c.AddSimpleEffect(e1, -1, false))
	require.NoError(t, c.AddSimpleEffect(e2, 0, false))
	require.NoError(t, c.AddSimpleEffect(e3, 7, false))

	rows := c.SimpleEffects()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"e2", "e1"}, names(rows[0]), "overlap allowed, sorted by start")
	assert.Equal(t, []string{"e3"}, names(rows[1]))
	assert.Equal(t, Priority(128), e1.Priority())
	assert.Equal(t, Priority(129), e3.Priority())

	require.NoError(t, c.RemoveSimpleEffect(e1, false))
	require.NoError(t, c.RemoveSimpleEffect(e2, false))

	rows = c.SimpleEffects()
	require.Len(t, rows, 1)
	assert.Equal(t, Priority(128), e3.Priority(), "rows below an emptied row move up")
	assert.True(t, IsNotFound(c.RemoveSimpleEffect(e2, false)))
	assert.True(t, IsInvalidInterval(c.AddSimpleEffect(effect(KindSimpleEffect, "bad", 0, 0), 0, false)))
	assert.NoError(t, c.Validate())
}

func TestComposition_ComplexEffects(t *testing.T) {
	c := newTestComposition(t, "video")
	existing := effect(KindComplexEffect, "existing", 10, 10)
	require.NoError(t, c.AddComplexEffect(existing, false))
	rec := record(c)

	err := c.AddComplexEffect(effect(KindComplexEffect, "late", 5, 10), false)
	require.Error(t, err)
	assert.True(t, IsOverlap(err))
	assert.Equal(t, "existing", err.(*EditError).Details["overlaps"])
	assert.Equal(t, []string{"existing"}, names(c.ComplexEffects()))
	assert.Empty(t, rec.events)

	touching := effect(KindComplexEffect, "touching", 20, 5)
	before := effect(KindComplexEffect, "before", 0, 10)
	require.NoError(t, c.AddComplexEffect(touching, false))
	require.NoError(t, c.AddComplexEffect(before, false))
	assert.Equal(t, []string{"before", "existing", "touching"}, names(c.ComplexEffects()))
	assert.Equal(t, Priority(1024), touching.Priority())

	require.NoError(t, c.RemoveComplexEffect(existing, false))
	assert.Equal(t, []string{"before", "touching"}, names(c.ComplexEffects()))
	assert.Equal(t, 2, rec.count(EventComplexEffectAdded))
	assert.Equal(t, 1, rec.count(EventComplexEffectRemoved))
	assert.NoError(t, c.Validate())
}

func TestComposition_EffectsMirror(t *testing.T) {
	video, audio := newLinkedPair(t)
	reg := video.Registry()

	vg, ag := effect(KindGlobalEffect, "vg", 0, 1), effect(KindGlobalEffect, "ag", 0, 1)
	require.NoError(t, reg.LinkObjects(vg, ag))
	require.NoError(t, video.AddGlobalEffect(vg, -1, true))
	assert.Equal(t, []string{"ag"}, names(audio.GlobalEffects()))

	vc, ac := effect(KindComplexEffect, "vc", 0, 5), effect(KindComplexEffect, "ac", 0, 5)
	require.NoError(t, reg.LinkObjects(vc, ac))

	// The audio side already has a complex effect in the way.
	require.NoError(t, audio.AddComplexEffect(effect(KindComplexEffect, "blocker", 2, 2), false))
	err := video.AddComplexEffect(vc, true)
	assert.True(t, IsOverlap(err))
	assert.Empty(t, video.ComplexEffects())

	require.NoError(t, video.RemoveGlobalEffect(vg, true))
	assert.Empty(t, audio.GlobalEffects())
}
