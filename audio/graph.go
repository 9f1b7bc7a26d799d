package audio

import (
	"github.com/loopforge/groovebox/dsl"
)

// Graph is the live software audio graph: one instrument chain per
// instrument, a master chain, every currently-sounding voice, and the LFOs
// routed at either. It is owned by a single render thread (scheduler.Advance
// callers never call it concurrently); the pattern it holds is swapped
// wholesale by the owner, never mutated in place.
type Graph struct {
	SampleRate float64

	pattern   *dsl.Pattern
	chains    map[string]*InstrumentChain
	master    *MasterChain
	voices    map[string][]*Voice
	lfos      map[string]*LFO

	monoScratch []float64

	// volume and effectsEnabled survive a SetPattern call even though
	// master is rebuilt from scratch each time, since neither is part of
	// the pattern itself.
	volume         float64
	effectsEnabled bool
}

// NewGraph creates an empty graph at the given sample rate.
func NewGraph(sampleRate float64) *Graph {
	return &Graph{
		SampleRate:     sampleRate,
		chains:         map[string]*InstrumentChain{},
		voices:         map[string][]*Voice{},
		lfos:           map[string]*LFO{},
		volume:         1,
		effectsEnabled: true,
	}
}

// SetPattern rebuilds every instrument/master chain and LFO from p. Already
// sounding voices are left untouched so live edits never cut off a hit in
// progress.
func (g *Graph) SetPattern(p *dsl.Pattern) {
	g.pattern = p
	g.master = NewMasterChain(g.SampleRate, p)
	g.master.SetVolume(g.volume)
	g.master.SetEffectsEnabled(g.effectsEnabled)

	chains := make(map[string]*InstrumentChain, len(p.Instruments))
	for name := range p.Instruments {
		amp := p.AmpModules[name]
		var filt *dsl.FilterModule
		if f, ok := p.FilterModules[name]; ok {
			filt = &f
		}
		var comp *dsl.CompModule
		if c, ok := p.CompModules[name]; ok {
			comp = &c
		}
		var eq *dsl.EQModule
		if e, ok := p.EQModules[name]; ok {
			eq = &e
		}
		pan := p.PanModules[name]
		chains[name] = NewInstrumentChain(g.SampleRate, amp, filt, comp, eq, pan)
	}
	g.chains = chains

	lfos := make(map[string]*LFO, len(p.LFOModules))
	for key, m := range p.LFOModules {
		lfos[key] = NewLFO(m, g.SampleRate)
	}
	g.lfos = lfos
}

// TriggerHit starts a new voice for instrument at the given velocity
// (0..1), using that instrument's sample/note/env modules if present. With
// neither, the instrument's own bare name is tried against the built-in
// sample bank before falling back to a plain sine at 440 Hz.
func (g *Graph) TriggerHit(instrument string, velocity float64) {
	if g.pattern == nil {
		return
	}
	kind := KindSynth
	matched := false
	pitch := 0.0
	if s, ok := g.pattern.SampleModules[instrument]; ok {
		kind = ResolveKind(s.Sample)
		matched = true
	} else if _, ok := Recipes[Kind(instrument)]; ok {
		kind = Kind(instrument)
		matched = true
	}
	if n, ok := g.pattern.NoteModules[instrument]; ok {
		pitch = n.PitchHz
		if !matched {
			kind = KindSynth
		}
	} else if !matched {
		kind = KindSynth
		pitch = 440
	}
	env := g.pattern.EnvelopeModules[instrument]
	v := NewVoice(kind, pitch, env, velocity, g.SampleRate)
	g.voices[instrument] = append(g.voices[instrument], v)
}

// SetVolume sets the master bus's linear output gain, persisting across the
// next SetPattern rebuild.
func (g *Graph) SetVolume(v float64) {
	g.volume = v
	if g.master != nil {
		g.master.SetVolume(v)
	}
}

// SetEffectsEnabled bypasses the master effect chain while still applying
// pregain and volume, persisting across the next SetPattern rebuild.
func (g *Graph) SetEffectsEnabled(enabled bool) {
	g.effectsEnabled = enabled
	if g.master != nil {
		g.master.SetEffectsEnabled(enabled)
	}
}

// ReleaseHit ends the sustain of every currently active voice belonging to
// instrument, used for tonal hits whose gate closes before their pattern
// envelope would naturally finish.
func (g *Graph) ReleaseHit(instrument string) {
	for _, v := range g.voices[instrument] {
		v.Release()
	}
}

// applyLFOs runs one control-rate tick of every routed LFO, nudging the
// target instrument/master chain's parameter for the coming block.
func (g *Graph) applyLFOs() {
	for _, l := range g.lfos {
		val := l.Value()
		scope := l.Route.Scope
		switch l.Route.Target {
		case dsl.LFOTargetPan:
			if scope == dsl.MasterScope {
				continue
			}
			if ic, ok := g.chains[scope]; ok {
				ic.Pan = clampPan(ic.Pan + val)
			}
		case dsl.LFOTargetAmp:
			if scope == dsl.MasterScope {
				if g.master != nil {
					g.master.pregain = clampUnit(g.master.pregain + val)
				}
				continue
			}
			if ic, ok := g.chains[scope]; ok {
				ic.Pregain = ic.Pregain + val
			}
		case dsl.LFOTargetFilterFreq:
			if ic, ok := g.chains[scope]; ok && ic.filter != nil {
				if fm, ok := g.pattern.FilterModules[scope]; ok {
					fm.Freq = clampRange(fm.Freq+val, 20, 20000)
					ic.filter = filterChain(fm, g.SampleRate)
				}
			}
		case dsl.LFOTargetFilterQ:
			if ic, ok := g.chains[scope]; ok && ic.filter != nil {
				if fm, ok := g.pattern.FilterModules[scope]; ok {
					fm.Q = clampRange(fm.Q+val, 0.1, 20)
					ic.filter = filterChain(fm, g.SampleRate)
				}
			}
		case dsl.LFOTargetDelayTime:
			if dm, ok := g.pattern.DelayModules[dsl.MasterScope]; ok && g.master != nil && g.master.delayL != nil {
				t := clampRange((dm.TimeMS+val)/1000, 0.001, 2)
				_ = g.master.delayL.SetTime(t)
				_ = g.master.delayR.SetTime(t)
			}
		case dsl.LFOTargetDelayFeedback:
			if dm, ok := g.pattern.DelayModules[dsl.MasterScope]; ok && g.master != nil && g.master.delayL != nil {
				fb := clampRange(dm.Feedback+val, 0, 0.95)
				_ = g.master.delayL.SetFeedback(fb)
				_ = g.master.delayR.SetFeedback(fb)
			}
		}
	}
}

// RenderBlock produces n frames of stereo audio from every active voice
// through the instrument and master chains, in that order.
func (g *Graph) RenderBlock(n int) (left, right []float64) {
	left = make([]float64, n)
	right = make([]float64, n)
	if g.pattern == nil {
		return left, right
	}

	g.applyLFOs()

	if cap(g.monoScratch) < n {
		g.monoScratch = make([]float64, n)
	}
	mono := g.monoScratch[:n]

	for name, vs := range g.voices {
		for i := range mono {
			mono[i] = 0
		}
		live := vs[:0]
		for _, v := range vs {
			for i := 0; i < n; i++ {
				mono[i] += v.Next()
			}
			if !v.Done() {
				live = append(live, v)
			}
		}
		g.voices[name] = live

		if ic, ok := g.chains[name]; ok {
			ic.ProcessMono(mono)
			ic.SplitPan(mono, left, right)
		} else {
			for i := range mono {
				left[i] += mono[i]
				right[i] += mono[i]
			}
		}
	}

	if g.master != nil {
		g.master.Process(left, right)
	}
	return left, right
}

func clampPan(v float64) float64 { return clampRange(v, -1, 1) }

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
