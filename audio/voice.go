package audio

import (
	"math"

	"github.com/loopforge/groovebox/dsl"
)

// Voice is one sounding instance of a hit: an oscillator/noise generator
// shaped by an amplitude envelope, plus (for pitched kicks) a short pitch
// sweep. Multiple voices per instrument can overlap so a retrigger never
// cuts off the previous hit's tail.
type Voice struct {
	Kind       Kind
	SampleRate float64
	Velocity   float64

	osc      *Oscillator
	noiseOsc *Oscillator
	pitchEnv *Envelope // short, fast envelope driving kick/tom pitch sweep
	ampEnv   *Envelope

	basePitch float64
	sweepOct  float64 // how many octaves the pitch sweeps down over pitchEnv
}

// NewVoice creates a voice for kind, pitched at pitchHz (0 uses the kind's
// recipe default, meaningful only for noise-based kinds where it's ignored),
// shaped by env, sounding at velocity (0..1).
func NewVoice(kind Kind, pitchHz float64, env dsl.EnvelopeModule, velocity, sampleRate float64) *Voice {
	rec := Recipes[kind]
	if pitchHz <= 0 {
		pitchHz = rec.PitchHz
	}
	attack, decay, sustain, release := rec.Attack, rec.Decay, rec.Sustain, rec.Release
	if env.Decay > 0 || env.Attack > 0 || env.Release > 0 {
		attack, decay, sustain, release = env.Attack, env.Decay, env.Sustain, env.Release
	}

	v := &Voice{
		Kind:       kind,
		SampleRate: sampleRate,
		Velocity:   velocity,
		osc:        NewOscillator(pitchHz, sampleRate),
		noiseOsc:   NewOscillator(0, sampleRate),
		ampEnv:     NewEnvelope(attack, decay, sustain, release),
		basePitch:  pitchHz,
		sweepOct:   2,
	}
	switch kind {
	case KindKick, KindKick808, KindTom:
		v.pitchEnv = NewEnvelope(0.0005, decay*0.5, 0, 0)
	}
	return v
}

// Release ends the voice's sustain early (used for tonal/gated instruments
// whose step occupies only part of the envelope's natural length).
func (v *Voice) Release() { v.ampEnv.Release() }

// Done reports whether the voice has fully decayed and can be discarded.
func (v *Voice) Done() bool { return v.ampEnv.Done() }

// Next produces the voice's next raw sample (before instrument effects),
// in roughly [-1, 1], and advances all internal oscillator/envelope state
// by one sample period.
func (v *Voice) Next() float64 {
	dt := 1 / v.SampleRate
	amp := v.ampEnv.Advance(dt)
	if amp <= 0 && v.ampEnv.Done() {
		return 0
	}

	var raw float64
	switch v.Kind {
	case KindKick, KindKick808, KindTom:
		pitchMul := 1.0
		if v.pitchEnv != nil {
			p := v.pitchEnv.Advance(dt)
			pitchMul = math.Pow(2, v.sweepOct*p)
		}
		v.osc.SetFrequency(v.basePitch * pitchMul)
		raw = v.osc.Sine()
	case KindSnare, KindClap, KindShaker:
		raw = 0.6*v.noiseOsc.Noise() + 0.4*v.osc.Triangle()
	case KindRim, KindCowbell, KindPerc:
		raw = 0.7*v.osc.Square() + 0.3*v.osc.Triangle()
	case KindCrash, KindHihat, KindOpenhat:
		raw = v.noiseOsc.Noise()
	case KindSynth:
		raw = v.osc.Sine()
	default:
		raw = v.noiseOsc.Noise()
	}
	return raw * amp * v.Velocity
}
