// Package scheduler turns a pattern into a stream of sample-accurate
// trigger/release events, driven forward by the audio render thread itself
// rather than a wall-clock timer.
package scheduler

import (
	"math/rand"

	"github.com/loopforge/groovebox/dsl"
)

// OverflowMode controls how a shorter-than-totalSteps instrument row
// behaves once the longer instruments' loop carries on past its end.
type OverflowMode string

const (
	OverflowLoop OverflowMode = "loop"
	OverflowRest OverflowMode = "rest"
)

// Event is one instrument trigger or release, positioned at Offset samples
// into the block the caller just asked Advance to cover.
type Event struct {
	Instrument string
	Velocity   float64
	Offset     int
	Release    bool
}

// Transport holds the current loop's pre-generated Part and the playhead's
// position within it. A pattern swap regenerates the Part but never resets
// the playhead, so a live edit doesn't restart the bar.
type Transport struct {
	sampleRate float64
	overflow   OverflowMode
	rng        *rand.Rand

	playing bool
	paused  bool
	part    *Part
	loopPos int64
}

// NewTransport creates a stopped transport at sampleRate.
func NewTransport(sampleRate float64) *Transport {
	return &Transport{
		sampleRate: sampleRate,
		overflow:   OverflowLoop,
		rng:        rand.New(rand.NewSource(1)),
	}
}

// SetOverflowMode changes how shorter instrument rows behave; takes effect
// on the next pattern regeneration.
func (t *Transport) SetOverflowMode(m OverflowMode) { t.overflow = m }

// SetPattern regenerates the current loop's Part from p. The playhead
// position carries over so already in-flight audio is never interrupted by
// an edit. If the tempo changed, the playhead is first rescaled by
// oldTempo/newTempo so the elapsed-beats position (not just the raw sample
// offset) survives the edit, before being wrapped into the new loop length.
func (t *Transport) SetPattern(p *dsl.Pattern) {
	part := GeneratePart(p, t.sampleRate, t.overflow, t.rng)
	switch {
	case t.part == nil || t.part.LoopLengthSamples <= 0:
		t.loopPos = 0
	case t.part.Tempo != p.Tempo && t.part.Tempo > 0:
		scaled := float64(t.loopPos) * float64(t.part.Tempo) / float64(p.Tempo)
		t.loopPos = int64(scaled) % part.LoopLengthSamples
	default:
		t.loopPos = t.loopPos % part.LoopLengthSamples
	}
	t.part = part
}

// Play starts (or resumes) playback from the current loop position.
func (t *Transport) Play() {
	t.playing = true
	t.paused = false
}

// Pause halts playback, leaving the loop position where it is.
func (t *Transport) Pause() {
	t.playing = false
	t.paused = true
}

// Stop halts playback and returns the loop position to the top of the bar.
func (t *Transport) Stop() {
	t.playing = false
	t.paused = false
	t.loopPos = 0
}

// Playing reports whether the transport is currently advancing.
func (t *Transport) Playing() bool { return t.playing }

// Paused reports whether the transport was explicitly paused (as opposed to
// stopped or never started).
func (t *Transport) Paused() bool { return t.paused }

// OverflowMode reports the currently configured overflow behavior.
func (t *Transport) OverflowMode() OverflowMode { return t.overflow }

// LoopPositionSamples reports the playhead's current offset into the loop.
func (t *Transport) LoopPositionSamples() int64 { return t.loopPos }

// CurrentTimeSeconds reports the playhead's position within the loop in
// seconds: the loop position while playing or paused, 0 once stopped.
func (t *Transport) CurrentTimeSeconds() float64 {
	return float64(t.loopPos) / t.sampleRate
}

// Advance consumes frames samples' worth of the current Part, returning
// every event that falls within them with Offset relative to the start of
// this call's block.
func (t *Transport) Advance(frames int) []Event {
	if !t.playing || t.part == nil || t.part.LoopLengthSamples <= 0 {
		return nil
	}

	var out []Event
	cursor := 0
	remaining := frames
	for remaining > 0 {
		loopRemaining := t.part.LoopLengthSamples - t.loopPos
		if loopRemaining <= 0 {
			t.loopPos = 0
			loopRemaining = t.part.LoopLengthSamples
		}
		take := int64(remaining)
		wrapped := false
		if take >= loopRemaining {
			take = loopRemaining
			wrapped = true
		}

		lo, hi := t.loopPos, t.loopPos+take
		for _, e := range t.part.Events {
			if e.AtSample >= lo && e.AtSample < hi {
				out = append(out, Event{
					Instrument: e.Instrument,
					Velocity:   e.Velocity,
					Offset:     cursor + int(e.AtSample-lo),
					Release:    e.Release,
				})
			}
		}

		cursor += int(take)
		remaining -= int(take)
		t.loopPos += take
		if wrapped {
			t.loopPos = 0
		}
	}
	return out
}
