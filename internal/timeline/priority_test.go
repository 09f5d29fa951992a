package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBands_Validate(t *testing.T) {
	assert.NoError(t, DefaultBands().Validate())

	tests := []struct {
		name   string
		mutate func(*Bands)
	}{
		{"empty band", func(b *Bands) { b.ComplexSize = 0 }},
		{"no layers", func(b *Bands) { b.Layers = 0 }},
		{"narrow layer", func(b *Bands) { b.LayerWidth = 1 }},
		{"effects past layer base", func(b *Bands) { b.LayerBase = 100 }},
		{"layers reach max", func(b *Bands) { b.LayerBase = 4294967000; b.Layers = 100 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := DefaultBands()
			tt.mutate(&b)
			assert.Error(t, b.Validate())
		})
	}
}

func TestBands_TierOf(t *testing.T) {
	b := DefaultBands()
	assert.Equal(t, "global-effect", b.TierOf(0))
	assert.Equal(t, "global-effect", b.TierOf(127))
	assert.Equal(t, "simple-effect", b.TierOf(128))
	assert.Equal(t, "complex-effect", b.TierOf(1024))
	assert.Equal(t, "transition", b.TierOf(1536))
	assert.Equal(t, "transition", b.TierOf(2047))
	assert.Equal(t, "source", b.TierOf(2048))
	assert.Equal(t, "default", b.TierOf(MaxPriority))

	lo, hi := b.layerRange(1)
	assert.Equal(t, Priority(2048), lo)
	assert.Equal(t, Priority(2060), hi)
}

func TestNewComposition_Errors(t *testing.T) {
	bad := DefaultBands()
	bad.Layers = 0
	_, err := NewComposition("x", MediaVideo, WithBands(bad))
	assert.Error(t, err)

	reg := NewRegistry()
	_, err = NewComposition("dup", MediaVideo, WithRegistry(reg), WithLogger(quietLogger()))
	assert.NoError(t, err)
	_, err = NewComposition("dup", MediaVideo, WithRegistry(reg), WithLogger(quietLogger()))
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	for k := KindSource; k <= KindTransition; k++ {
		got, err := ParseKind(k.String())
		assert.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("sandwich")
	assert.Error(t, err)

	m, err := ParseMediaType("audio")
	assert.NoError(t, err)
	assert.Equal(t, MediaAudio, m)
}

func TestObject_SetStartDuration(t *testing.T) {
	c := newTestComposition(t, "video")
	o := src("A", 0, 1)

	assert.NoError(t, o.SetStartDuration(sec(2), sec(3)))
	assert.Equal(t, sec(5), o.End())
	assert.True(t, IsInvalidInterval(o.SetStartDuration(-1, sec(1))))
	assert.True(t, IsInvalidInterval(o.SetStartDuration(0, 0)))

	assert.NoError(t, c.AddSource(o, 1, false))
	assert.True(t, IsUnsupported(o.SetStartDuration(0, sec(1))))
}
