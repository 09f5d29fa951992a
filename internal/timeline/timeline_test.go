package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/rendergraph"
)

func TestNewTimeline(t *testing.T) {
	tl, err := NewTimeline(DefaultBands(), quietLogger())
	require.NoError(t, err)

	assert.Equal(t, MediaVideo, tl.Video().Media())
	assert.Equal(t, MediaAudio, tl.Audio().Media())
	assert.Same(t, tl.Audio(), tl.Video().Linked())

	c, ok := tl.Composition(AudioComposition)
	require.True(t, ok)
	assert.Same(t, tl.Audio(), c)

	for _, comp := range tl.Compositions() {
		require.NotNil(t, comp.DefaultSource())
		assert.Equal(t, MaxPriority, comp.DefaultSource().Priority())
	}
	assert.NoError(t, tl.Validate())
}

func TestNewTimeline_BadBands(t *testing.T) {
	b := DefaultBands()
	b.LayerWidth = 0
	_, err := NewTimeline(b, nil)
	assert.Error(t, err)
}

func TestComposition_ContainerPads(t *testing.T) {
	bin := rendergraph.NewBin("comp")
	var pads []rendergraph.PadEventKind
	bin.OnPad(func(ev rendergraph.PadEvent) { pads = append(pads, ev.Kind) })
	c := newTestComposition(t, "video", WithContainer(bin))

	a := src("A", 0, 1)
	require.NoError(t, c.AddSource(a, 1, false))
	require.NoError(t, c.RemoveSource(a, false, false))

	assert.Equal(t, []rendergraph.PadEventKind{rendergraph.PadAdded, rendergraph.PadRemoved}, pads)
}

func TestComposition_ValidateReportsCorruption(t *testing.T) {
	c := newTestComposition(t, "video")
	a, b := src("A", 0, 10), src("B", 10, 5)
	require.NoError(t, c.AddSource(a, 1, false))
	require.NoError(t, c.AddSource(b, 1, false))
	require.NoError(t, c.Validate())

	a.start = sec(20)
	b.setPriority(5)

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not sorted")
	assert.Contains(t, err.Error(), "global-effect tier")
}
