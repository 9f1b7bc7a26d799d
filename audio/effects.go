package audio

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/effects"
	"github.com/cwbudde/algo-dsp/dsp/effects/dynamics"
	"github.com/cwbudde/algo-dsp/dsp/effects/modulation"
	"github.com/cwbudde/algo-dsp/dsp/effects/reverb"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"

	"github.com/loopforge/groovebox/dsl"
)

// distort applies the waveshaping curve the pattern's "distort" statement
// describes: amount drives a tanh-style soft clip, mixed against the dry
// signal by mix. algo-dsp has no distortion unit of its own, so this stays
// hand-rolled (see DESIGN.md).
func distort(x, amount, mix float64) float64 {
	if amount <= 0 {
		return x
	}
	drive := 1 + amount*20
	wet := math.Tanh(x * drive)
	return x*(1-mix) + wet*mix
}

// eqChain builds a 3-band EQ (low shelf, mid peak, high shelf) out of
// algo-dsp's biquad.Chain, fed RBJ cookbook coefficients.
func eqChain(eq dsl.EQModule, sampleRate float64) *biquad.Chain {
	coeffs := []biquad.Coefficients{
		rbjShelf(200, eq.Low, sampleRate, true),
		rbjPeaking(1000, 0.8, eq.Mid, sampleRate),
		rbjShelf(4000, eq.High, sampleRate, false),
	}
	return biquad.NewChain(coeffs)
}

func filterChain(f dsl.FilterModule, sampleRate float64) *biquad.Chain {
	var c biquad.Coefficients
	switch f.Type {
	case dsl.FilterHighpass:
		c = rbjHighpass(f.Freq, f.Q, sampleRate)
	case dsl.FilterBandpass:
		c = rbjBandpass(f.Freq, f.Q, sampleRate)
	case dsl.FilterNotch:
		c = rbjNotch(f.Freq, f.Q, sampleRate)
	default:
		c = rbjLowpass(f.Freq, f.Q, sampleRate)
	}
	return biquad.NewChain([]biquad.Coefficients{c})
}

// InstrumentChain is the per-instrument signal path: pregain, filter,
// compressor, EQ, then a pan split into the stereo bus. Built fresh whenever
// the owning instrument's modules change.
type InstrumentChain struct {
	Pregain float64
	Pan     float64

	filter *biquad.Chain
	comp   *dynamics.Compressor
	eq     *biquad.Chain
}

// NewInstrumentChain builds a chain from the instrument's current module
// set. Any module absent from the pattern is left at a neutral passthrough.
func NewInstrumentChain(sampleRate float64, amp dsl.AmpModule, filt *dsl.FilterModule, comp *dsl.CompModule, eq *dsl.EQModule, pan dsl.PanModule) *InstrumentChain {
	ic := &InstrumentChain{Pregain: amp.Gain, Pan: pan.Pan}
	if amp.Gain == 0 {
		ic.Pregain = 1
	}
	if filt != nil {
		ic.filter = filterChain(*filt, sampleRate)
	}
	if comp != nil {
		c, err := dynamics.NewCompressor(sampleRate)
		if err == nil {
			_ = c.SetThreshold(comp.ThresholdDB)
			_ = c.SetRatio(comp.Ratio)
			_ = c.SetKnee(comp.Knee)
			_ = c.SetAttack(comp.AttackMS)
			_ = c.SetRelease(comp.ReleaseMS)
			_ = c.SetAutoMakeup(false)
			ic.comp = c
		}
	}
	if eq != nil {
		ic.eq = eqChain(*eq, sampleRate)
	}
	return ic
}

// ProcessMono runs the mono pre-pan chain over block in place.
func (ic *InstrumentChain) ProcessMono(block []float64) {
	for i := range block {
		block[i] *= ic.Pregain
	}
	if ic.filter != nil {
		ic.filter.ProcessBlock(block)
	}
	if ic.comp != nil {
		ic.comp.ProcessInPlace(block)
	}
	if ic.eq != nil {
		ic.eq.ProcessBlock(block)
	}
}

// SplitPan distributes a mono block into stereo left/right using an
// equal-power pan law.
func (ic *InstrumentChain) SplitPan(mono, left, right []float64) {
	angle := (ic.Pan + 1) * math.Pi / 4 // 0 at hard left, pi/2 at hard right
	lg, rg := math.Cos(angle), math.Sin(angle)
	for i, s := range mono {
		left[i] += s * lg
		right[i] += s * rg
	}
}

// MasterChain is the master bus signal path. algo-dsp's effect units are
// single-channel, so the chain holds one instance per stereo side and
// processes L/R independently, matching how every upstream instrument
// voice is rendered mono-then-panned.
type MasterChain struct {
	eqL, eqR         *biquad.Chain
	compL, compR     *dynamics.Compressor
	distortAmount    float64
	distortMix       float64
	delayL, delayR   *effects.Delay
	reverbL, reverbR *reverb.FDNReverb
	chorusL, chorusR *modulation.Chorus
	phaserL, phaserR *modulation.Phaser
	pregain          float64
	volume           float64
	effectsEnabled   bool
}

// NewMasterChain builds the master chain from whatever master-scoped
// modules the pattern defines; every stage is optional and skipped when nil.
func NewMasterChain(sampleRate float64, p *dsl.Pattern) *MasterChain {
	mc := &MasterChain{pregain: 1, volume: 1, effectsEnabled: true}

	if eq, ok := p.EQModules[dsl.MasterScope]; ok {
		mc.eqL = eqChain(eq, sampleRate)
		mc.eqR = eqChain(eq, sampleRate)
	}
	if comp, ok := p.CompModules[dsl.MasterScope]; ok {
		mc.compL, _ = dynamics.NewCompressor(sampleRate)
		mc.compR, _ = dynamics.NewCompressor(sampleRate)
		for _, c := range []*dynamics.Compressor{mc.compL, mc.compR} {
			if c == nil {
				continue
			}
			_ = c.SetThreshold(comp.ThresholdDB)
			_ = c.SetRatio(comp.Ratio)
			_ = c.SetKnee(comp.Knee)
			_ = c.SetAttack(comp.AttackMS)
			_ = c.SetRelease(comp.ReleaseMS)
			_ = c.SetAutoMakeup(false)
		}
	}
	if d, ok := p.DistortModules[dsl.MasterScope]; ok {
		mc.distortAmount = d.Amount
		mc.distortMix = d.Mix
	}
	if dl, ok := p.DelayModules[dsl.MasterScope]; ok {
		mc.delayL, _ = effects.NewDelay(sampleRate)
		mc.delayR, _ = effects.NewDelay(sampleRate)
		for _, d := range []*effects.Delay{mc.delayL, mc.delayR} {
			if d == nil {
				continue
			}
			_ = d.SetTime(dl.TimeMS / 1000)
			_ = d.SetFeedback(dl.Feedback)
			_ = d.SetMix(dl.Mix)
		}
	}
	if rv, ok := p.ReverbModules[dsl.MasterScope]; ok {
		mc.reverbL, _ = reverb.NewFDNReverb(sampleRate)
		mc.reverbR, _ = reverb.NewFDNReverb(sampleRate)
		for _, r := range []*reverb.FDNReverb{mc.reverbL, mc.reverbR} {
			if r == nil {
				continue
			}
			_ = r.SetWet(rv.Mix)
			_ = r.SetDry(1 - rv.Mix*0.5)
			_ = r.SetRT60(0.2 + rv.Decay*7.8)
			_ = r.SetPreDelay(rv.PredelayMS / 1000)
			_ = r.SetDamp(0.45)
			_ = r.SetModDepth(0.002)
			_ = r.SetModRate(0.1)
		}
	}
	if ch, ok := p.ChorusModules[dsl.MasterScope]; ok {
		mc.chorusL, _ = modulation.NewChorus()
		mc.chorusR, _ = modulation.NewChorus()
		for _, c := range []*modulation.Chorus{mc.chorusL, mc.chorusR} {
			if c == nil {
				continue
			}
			_ = c.SetSampleRate(sampleRate)
			_ = c.SetMix(ch.Mix)
			_ = c.SetDepth(ch.Depth * 0.01)
			_ = c.SetSpeedHz(ch.RateHz)
			_ = c.SetStages(3)
		}
	}
	if ph, ok := p.PhaserModules[dsl.MasterScope]; ok {
		mc.phaserL, _ = modulation.NewPhaser(sampleRate)
		mc.phaserR, _ = modulation.NewPhaser(sampleRate)
		for _, ps := range []*modulation.Phaser{mc.phaserL, mc.phaserR} {
			if ps == nil {
				continue
			}
			_ = ps.SetRateHz(ph.RateHz)
			_ = ps.SetFrequencyRangeHz(300, 1600)
			_ = ps.SetStages(ph.Stages)
			_ = ps.SetFeedback(ph.Depth * 0.4)
			_ = ps.SetMix(ph.Mix)
		}
	}
	if amp, ok := p.AmpModules[dsl.MasterScope]; ok && amp.Gain > 0 {
		mc.pregain = amp.Gain
	}
	return mc
}

// SetVolume sets the master bus's linear output gain, applied after every
// effect stage and the pattern's own master pregain.
func (mc *MasterChain) SetVolume(v float64) { mc.volume = v }

// Volume reports the master bus's current linear output gain.
func (mc *MasterChain) Volume() float64 { return mc.volume }

// SetEffectsEnabled bypasses every effect stage (EQ through phaser) while
// still applying pregain and volume, used for an engine-wide effects mute.
func (mc *MasterChain) SetEffectsEnabled(enabled bool) { mc.effectsEnabled = enabled }

// EffectsEnabled reports whether the effect stages are active; false means
// they are bypassed.
func (mc *MasterChain) EffectsEnabled() bool { return mc.effectsEnabled }

// Process runs the master chain over the stereo block in place, in the
// fixed order EQ -> comp -> distort -> delay -> reverb -> chorus -> phaser
// -> pregain -> volume. The effect stages are skipped entirely when
// effectsEnabled is false; pregain and volume still apply.
func (mc *MasterChain) Process(left, right []float64) {
	if !mc.effectsEnabled {
		for i := range left {
			left[i] *= mc.pregain * mc.volume
		}
		for i := range right {
			right[i] *= mc.pregain * mc.volume
		}
		return
	}
	if mc.eqL != nil {
		mc.eqL.ProcessBlock(left)
		mc.eqR.ProcessBlock(right)
	}
	if mc.compL != nil {
		mc.compL.ProcessInPlace(left)
		mc.compR.ProcessInPlace(right)
	}
	if mc.distortAmount > 0 {
		for i := range left {
			left[i] = distort(left[i], mc.distortAmount, mc.distortMix)
		}
		for i := range right {
			right[i] = distort(right[i], mc.distortAmount, mc.distortMix)
		}
	}
	if mc.delayL != nil {
		mc.delayL.ProcessInPlace(left)
		mc.delayR.ProcessInPlace(right)
	}
	if mc.reverbL != nil {
		mc.reverbL.ProcessInPlace(left)
		mc.reverbR.ProcessInPlace(right)
	}
	if mc.chorusL != nil {
		mc.chorusL.ProcessInPlace(left)
		mc.chorusR.ProcessInPlace(right)
	}
	if mc.phaserL != nil {
		_ = mc.phaserL.ProcessInPlace(left)
		_ = mc.phaserR.ProcessInPlace(right)
	}
	for i := range left {
		left[i] *= mc.pregain * mc.volume
	}
	for i := range right {
		right[i] *= mc.pregain * mc.volume
	}
}
