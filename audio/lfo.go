package audio

import "github.com/loopforge/groovebox/dsl"

// LFODepthScale gives each modulation target its own depth-to-physical-unit
// scaling, since a depth of "1.0" means something very different for a pan
// sweep than for a filter cutoff sweep.
var LFODepthScale = map[dsl.LFOTarget]float64{
	dsl.LFOTargetAmp:           1.0,   // 0..1 of full amplitude
	dsl.LFOTargetFilterFreq:    4000,  // Hz swing at full depth
	dsl.LFOTargetFilterQ:       8,     // Q swing at full depth
	dsl.LFOTargetPan:           1.0,   // full stereo width
	dsl.LFOTargetDelayTime:     400,   // ms swing at full depth
	dsl.LFOTargetDelayFeedback: 0.3,   // feedback swing at full depth
}

// LFO is a running low-frequency oscillator routed at one module parameter.
type LFO struct {
	Route  dsl.LFORoute
	Depth  float64
	osc    *Oscillator
	wave   dsl.WaveShape
}

// NewLFO builds a runtime LFO from its parsed module description.
func NewLFO(m dsl.LFOModule, sampleRate float64) *LFO {
	return &LFO{
		Route: m.Route,
		Depth: m.Depth,
		osc:   NewOscillator(m.RateHz, sampleRate),
		wave:  m.Wave,
	}
}

// Value returns the next modulation sample in [-1, 1] scaled by depth, then
// by the target's physical-unit scale.
func (l *LFO) Value() float64 {
	var raw float64
	switch l.wave {
	case dsl.WaveTriangle:
		raw = l.osc.Triangle()
	case dsl.WaveSquare:
		raw = l.osc.Square()
	case dsl.WaveSawtooth:
		raw = l.osc.Saw()
	case dsl.WaveRandom:
		raw = l.osc.Noise()
	default:
		raw = l.osc.Sine()
	}
	scale := LFODepthScale[l.Route.Target]
	return raw * l.Depth * scale
}
