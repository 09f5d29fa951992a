package rendergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElement_RecordsPriorityHistory(t *testing.T) {
	e := NewElement("clip")

	e.SetPriority(2048)
	e.SetPriority(2060)
	e.SetPriority(2048)

	assert.Equal(t, uint32(2048), e.Priority())
	assert.Equal(t, []uint32{2048, 2060, 2048}, e.History())
}

func TestBin_AddRemove(t *testing.T) {
	b := NewBin("comp")
	a := NewElement("a")
	c := NewElement("c")

	require.NoError(t, b.Add(a))
	require.NoError(t, b.Add(c))
	assert.True(t, b.Contains(a))
	assert.Equal(t, []Node{a, c}, b.Children())

	err := b.Add(a)
	assert.ErrorIs(t, err, ErrAlreadyAdded)

	require.NoError(t, b.Remove(a))
	assert.False(t, b.Contains(a))

	err = b.Remove(a)
	assert.ErrorIs(t, err, ErrNotInContainer)
}

func TestBin_ForwardsPadEvents(t *testing.T) {
	b := NewBin("videocomp")
	var got []PadEvent
	b.OnPad(func(ev PadEvent) { got = append(got, ev) })

	n := NewElement("n")
	require.NoError(t, b.Add(n))
	require.NoError(t, b.Add(NewElement("m")))
	assert.Equal(t, []string{"videocomp.src"}, b.Pads())

	require.NoError(t, b.Remove(n))
	assert.Len(t, got, 1, "pad stays while children remain")

	for _, child := range b.Children() {
		require.NoError(t, b.Remove(child))
	}

	require.Len(t, got, 2)
	assert.Equal(t, PadAdded, got[0].Kind)
	assert.Equal(t, PadRemoved, got[1].Kind)
	assert.Equal(t, "videocomp.src", got[1].Pad)
	assert.Empty(t, b.Pads())
}

func TestPadEventKind_String(t *testing.T) {
	assert.Equal(t, "pad-added", PadAdded.String())
	assert.Equal(t, "pad-removed", PadRemoved.String())
	assert.Equal(t, "pad-event(9)", PadEventKind(9).String())
}
