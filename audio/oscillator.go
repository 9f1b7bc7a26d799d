package audio

import "math"

// Oscillator is a simple phase accumulator producing the waveforms the
// procedural sample bank and the LFO package build on.
type Oscillator struct {
	Phase      float64
	Frequency  float64
	SampleRate float64
	seed       uint32
}

// NewOscillator creates an oscillator at the given frequency and sample rate.
func NewOscillator(freqHz, sampleRate float64) *Oscillator {
	return &Oscillator{Frequency: freqHz, SampleRate: sampleRate, seed: 0x2545F491}
}

// SetFrequency changes the oscillator's frequency without resetting phase.
func (o *Oscillator) SetFrequency(hz float64) {
	o.Frequency = hz
}

// Reset returns the oscillator to phase zero.
func (o *Oscillator) Reset() {
	o.Phase = 0
}

func (o *Oscillator) advance() float64 {
	p := o.Phase
	inc := o.Frequency / o.SampleRate
	o.Phase += inc
	if o.Phase >= 1 {
		o.Phase -= 1
	}
	return p
}

// Sine returns the next sine sample in [-1, 1].
func (o *Oscillator) Sine() float64 {
	p := o.advance()
	return math.Sin(2 * math.Pi * p)
}

// Triangle returns the next triangle sample in [-1, 1].
func (o *Oscillator) Triangle() float64 {
	p := o.advance()
	if p < 0.5 {
		return 4*p - 1
	}
	return 3 - 4*p
}

// Square returns the next square sample in [-1, 1] with 50% duty cycle.
func (o *Oscillator) Square() float64 {
	p := o.advance()
	if p < 0.5 {
		return 1
	}
	return -1
}

// Saw returns the next rising sawtooth sample in [-1, 1].
func (o *Oscillator) Saw() float64 {
	p := o.advance()
	return 2*p - 1
}

// Noise returns the next pseudo-random sample in [-1, 1] from a small LCG;
// deterministic given a fixed call sequence, unlike math/rand/v2's
// unseeded global source, which matters for reproducible renders.
func (o *Oscillator) Noise() float64 {
	o.seed = o.seed*1664525 + 1013904223
	return float64(int32(o.seed))/float64(math.MaxInt32)
}
