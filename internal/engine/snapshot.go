package engine

import (
	"fmt"
	"time"

	"github.com/roach88/strata/internal/ir"
	"github.com/roach88/strata/internal/timeline"
)

// buildObject creates the timeline object described by def.
func buildObject(def ir.ObjectDef) (*timeline.Object, error) {
	kind, err := timeline.ParseKind(def.Kind)
	if err != nil {
		return nil, newInvalidArgs("", err.Error())
	}
	if def.Start < 0 || def.Duration < 0 {
		return nil, newInvalidArgs("", fmt.Sprintf("object %q: negative start or duration", def.ID))
	}
	name := def.Name
	if name == "" {
		name = def.ID
	}

	opts := []timeline.ObjectOption{
		timeline.WithStart(time.Duration(def.Start)),
		timeline.WithMediaStart(time.Duration(def.MediaStart)),
	}
	if def.ID != "" {
		opts = append(opts, timeline.WithID(timeline.ID(def.ID)))
	}
	if def.Settings != nil {
		opts = append(opts, timeline.WithSettings(SettingsFromProfile(*def.Settings)))
	}
	return timeline.NewObject(kind, name, time.Duration(def.Duration), opts...), nil
}

// SettingsFromProfile converts a journaled profile into export settings.
func SettingsFromProfile(p ir.Profile) timeline.ExportSettings {
	return timeline.ExportSettings{
		VideoWidth:       int(p.VideoWidth),
		VideoHeight:      int(p.VideoHeight),
		VideoPixelAspect: timeline.Fraction{Num: int(p.VideoParNum), Den: int(p.VideoParDen)},
		VideoRate:        timeline.Fraction{Num: int(p.VideoRateNum), Den: int(p.VideoRateDen)},
		AudioRate:        int(p.AudioRate),
		AudioChannels:    int(p.AudioChannels),
		AudioDepth:       int(p.AudioDepth),
	}
}

// ProfileFromSettings converts export settings into a journal profile.
func ProfileFromSettings(s timeline.ExportSettings) ir.Profile {
	return ir.Profile{
		VideoWidth:    int64(s.VideoWidth),
		VideoHeight:   int64(s.VideoHeight),
		VideoParNum:   int64(s.VideoPixelAspect.Num),
		VideoParDen:   int64(s.VideoPixelAspect.Den),
		VideoRateNum:  int64(s.VideoRate.Num),
		VideoRateDen:  int64(s.VideoRate.Den),
		AudioRate:     int64(s.AudioRate),
		AudioChannels: int64(s.AudioChannels),
		AudioDepth:    int64(s.AudioDepth),
	}
}

// Snapshot captures the observable state of the timeline: every
// composition's condensed view and effect tiers.
func (e *Engine) Snapshot() ir.Snapshot {
	var snap ir.Snapshot
	for _, c := range e.timeline.Compositions() {
		cs := ir.CompositionSnapshot{
			Name:      c.Name(),
			Condensed: toEntries(c.Condensed()),
			Global:    toEntries(c.GlobalEffects()),
			Complex:   toEntries(c.ComplexEffects()),
		}
		for _, row := range c.SimpleEffects() {
			cs.Simple = append(cs.Simple, toEntries(row)...)
		}
		snap.Compositions = append(snap.Compositions, cs)
	}
	return snap
}

func toEntries(objs []*timeline.Object) []ir.Entry {
	entries := make([]ir.Entry, len(objs))
	for i, obj := range objs {
		entries[i] = ir.Entry{
			ID:       string(obj.ID()),
			Start:    int64(obj.Start()),
			Duration: int64(obj.Duration()),
			Priority: int64(obj.Priority()),
		}
	}
	return entries
}
