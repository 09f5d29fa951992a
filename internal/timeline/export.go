package timeline

import "fmt"

// Fraction is a rational value such as a frame rate or pixel aspect ratio.
type Fraction struct {
	Num int `json:"num" yaml:"num"`
	Den int `json:"den" yaml:"den"`
}

// Equal compares by value, so 50/2 equals 25/1.
func (f Fraction) Equal(o Fraction) bool {
	return int64(f.Num)*int64(o.Den) == int64(o.Num)*int64(f.Den)
}

// IsZero reports whether f is unset.
func (f Fraction) IsZero() bool { return f.Num == 0 && f.Den == 0 }

func (f Fraction) String() string { return fmt.Sprintf("%d/%d", f.Num, f.Den) }

// ExportSettings is an export profile. Zero fields are unset.
type ExportSettings struct {
	VideoWidth       int      `json:"video_width,omitempty" yaml:"video_width,omitempty"`
	VideoHeight      int      `json:"video_height,omitempty" yaml:"video_height,omitempty"`
	VideoPixelAspect Fraction `json:"video_par" yaml:"video_par,omitempty"`
	VideoRate        Fraction `json:"video_rate" yaml:"video_rate,omitempty"`
	AudioRate        int      `json:"audio_rate,omitempty" yaml:"audio_rate,omitempty"`
	AudioChannels    int      `json:"audio_channels,omitempty" yaml:"audio_channels,omitempty"`
	AudioDepth       int      `json:"audio_depth,omitempty" yaml:"audio_depth,omitempty"`
}

// videoMatches compares the video fields in resolution order: width, height,
// pixel aspect ratio, frame rate.
func (s ExportSettings) videoMatches(o ExportSettings) bool {
	return s.VideoWidth == o.VideoWidth &&
		s.VideoHeight == o.VideoHeight &&
		s.VideoPixelAspect.Equal(o.VideoPixelAspect) &&
		s.VideoRate.Equal(o.VideoRate)
}

func (s ExportSettings) audioMatches(o ExportSettings) bool {
	return s.AudioRate == o.AudioRate &&
		s.AudioChannels == o.AudioChannels &&
		s.AudioDepth == o.AudioDepth
}

// ResolveAutoSettings derives an export profile from the native profiles of
// the sources in c, visited layer by layer in time order. Sources without a
// profile are skipped.
//
// No profiled source yields nil and a single one yields a copy of its profile.
// Otherwise the first profile is the baseline and resolution stops at the
// first source whose fields for c's media type differ from it, returning the
// baseline as is.
func ResolveAutoSettings(c *Composition) *ExportSettings {
	var profiles []ExportSettings
	for _, l := range c.layers {
		for _, o := range l.objects {
			if o.settings != nil {
				profiles = append(profiles, *o.settings)
			}
		}
	}
	if len(profiles) == 0 {
		return nil
	}
	base := profiles[0]
	for _, p := range profiles[1:] {
		var same bool
		switch c.media {
		case MediaAudio:
			same = base.audioMatches(p)
		default:
			same = base.videoMatches(p)
		}
		if !same {
			c.logger.Debug("sources disagree on export settings, keeping the first",
				"composition", c.name)
			return &base
		}
	}
	return &base
}
