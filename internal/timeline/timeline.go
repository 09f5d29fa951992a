package timeline

import (
	"fmt"
	"log/slog"
	"time"
)

// Composition names used by Timeline.
const (
	VideoComposition = "video"
	AudioComposition = "audio"
)

// Timeline is the video/audio composition pair of an editing session. The two
// compositions share a registry, are linked to each other and each carry a
// default gap-filling source.
type Timeline struct {
	registry *Registry
	video    *Composition
	audio    *Composition
	logger   *slog.Logger
}

// NewTimeline creates a linked video/audio pair laid out with bands.
func NewTimeline(bands Bands, logger *slog.Logger) (*Timeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	reg := NewRegistry()
	video, err := NewComposition(VideoComposition, MediaVideo,
		WithBands(bands), WithRegistry(reg), WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("video composition: %w", err)
	}
	audio, err := NewComposition(AudioComposition, MediaAudio,
		WithBands(bands), WithRegistry(reg), WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("audio composition: %w", err)
	}
	if err := Link(video, audio); err != nil {
		return nil, err
	}

	gapVideo := NewSource("default-video", time.Nanosecond, WithID("default-video"))
	gapAudio := NewSource("default-audio", time.Nanosecond, WithID("default-audio"))
	if err := video.SetDefaultSource(gapVideo); err != nil {
		return nil, err
	}
	if err := audio.SetDefaultSource(gapAudio); err != nil {
		return nil, err
	}

	logger.Info("timeline created", "layers", bands.Layers)
	return &Timeline{registry: reg, video: video, audio: audio, logger: logger}, nil
}

// Video returns the video composition.
func (t *Timeline) Video() *Composition { return t.video }

// Audio returns the audio composition.
func (t *Timeline) Audio() *Composition { return t.audio }

// Registry returns the registry shared by both compositions.
func (t *Timeline) Registry() *Registry { return t.registry }

// Composition returns the composition named name.
func (t *Timeline) Composition(name string) (*Composition, bool) {
	return t.registry.Composition(name)
}

// Compositions returns the video and audio compositions, in that order.
func (t *Timeline) Compositions() []*Composition {
	return []*Composition{t.video, t.audio}
}

// AutoSettings combines the video fields resolved on the video composition
// with the audio fields resolved on the audio composition. It returns nil
// when neither has a profiled source.
func (t *Timeline) AutoSettings() *ExportSettings {
	vs := ResolveAutoSettings(t.video)
	as := ResolveAutoSettings(t.audio)
	if vs == nil && as == nil {
		return nil
	}
	var out ExportSettings
	if vs != nil {
		out.VideoWidth = vs.VideoWidth
		out.VideoHeight = vs.VideoHeight
		out.VideoPixelAspect = vs.VideoPixelAspect
		out.VideoRate = vs.VideoRate
	}
	if as != nil {
		out.AudioRate = as.AudioRate
		out.AudioChannels = as.AudioChannels
		out.AudioDepth = as.AudioDepth
	}
	return &out
}

// Validate validates both compositions.
func (t *Timeline) Validate() error {
	if err := t.video.Validate(); err != nil {
		return err
	}
	return t.audio.Validate()
}
