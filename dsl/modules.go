package dsl

// FilterType enumerates the filter module's topology.
type FilterType string

const (
	FilterLowpass  FilterType = "lowpass"
	FilterHighpass FilterType = "highpass"
	FilterBandpass FilterType = "bandpass"
	FilterNotch    FilterType = "notch"
)

// WaveShape enumerates LFO oscillator shapes.
type WaveShape string

const (
	WaveSine     WaveShape = "sine"
	WaveTriangle WaveShape = "triangle"
	WaveSquare   WaveShape = "square"
	WaveSawtooth WaveShape = "sawtooth"
	WaveRandom   WaveShape = "random" // non-standard addition, not in the wave grammar's required set
)

// GrooveType enumerates the kinds of groove modules a pattern can attach.
type GrooveType string

const (
	GrooveSwing     GrooveType = "swing"
	GrooveHumanize  GrooveType = "humanize"
	GrooveRush      GrooveType = "rush"
	GrooveDrag      GrooveType = "drag"
	GrooveTemplate  GrooveType = "template"
)

// SampleModule binds an instrument to one of the procedural built-in samples.
type SampleModule struct {
	Sample string
	Gain   float64 // linear, 0..2, default 1
}

// NoteModule pins an instrument (or a tonal voice) to a specific pitch.
type NoteModule struct {
	PitchHz float64
}

// EnvelopeModule is a per-hit ADSR shape, times in seconds, sustain 0..1.
type EnvelopeModule struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// EQModule is a 3-band shelf/peak EQ, gains in dB, range [-24, 24].
type EQModule struct {
	Low  float64
	Mid  float64
	High float64
}

// AmpModule is a simple linear gain stage, range [0, 2].
type AmpModule struct {
	Gain float64
}

// CompModule is a dynamics compressor.
type CompModule struct {
	ThresholdDB float64 // [-60, 0]
	Ratio       float64 // [1, 20]
	AttackMS    float64 // [0.1, 200]
	ReleaseMS   float64 // [10, 2000]
	Knee        float64 // [0, 12] dB
}

// FilterModule is a biquad filter stage.
type FilterModule struct {
	Type FilterType
	Freq float64 // Hz, [20, 20000]
	Q    float64 // [0.1, 20]
}

// DelayModule is a feedback delay line.
type DelayModule struct {
	TimeMS   float64 // [1, 2000]
	Feedback float64 // [0, 0.95]
	Mix      float64 // [0, 1]
}

// ReverbModule is a parametric reverb.
type ReverbModule struct {
	Decay    float64 // [0, 1]
	Mix      float64 // [0, 1]
	PredelayMS float64 // [0, 250]
}

// PanModule positions an instrument in the stereo field, [-1, 1].
type PanModule struct {
	Pan float64
}

// DistortModule is a waveshaping distortion stage.
type DistortModule struct {
	Amount float64 // [0, 1]
	Mix    float64 // [0, 1]
}

// ChorusModule is a modulated delay chorus.
type ChorusModule struct {
	RateHz float64 // [0.01, 10]
	Depth  float64 // [0, 1]
	Mix    float64 // [0, 1]
}

// PhaserModule is a multi-stage all-pass phaser.
type PhaserModule struct {
	RateHz float64 // [0.01, 10]
	Depth  float64 // [0, 1]
	Stages int     // [2, 12], even
	Mix    float64 // [0, 1]
}

// LFOTarget names the parameter an LFO module modulates. Depth scaling is
// target-specific (see audio.LFODepthScale).
type LFOTarget string

const (
	LFOTargetAmp          LFOTarget = "amp"
	LFOTargetFilterFreq   LFOTarget = "filter.freq"
	LFOTargetFilterQ      LFOTarget = "filter.q"
	LFOTargetPan          LFOTarget = "pan"
	LFOTargetDelayTime    LFOTarget = "delay.time"
	LFOTargetDelayFeedback LFOTarget = "delay.feedback"
)

// LFORoute is the structured key an "lfo" statement resolves to: which scope
// (an instrument name or dsl.MasterScope) and which parameter within it.
type LFORoute struct {
	Scope  string
	Target LFOTarget
}

// LFOModule is a low-frequency oscillator routed at a target parameter.
type LFOModule struct {
	Route  LFORoute
	RateHz float64 // [0.01, 20]
	Depth  float64 // [0, 1]
	Wave   WaveShape
}

// StepSelector restricts a groove module to a subset of steps. Explicit is
// false when the statement carried no "steps=" field at all, in which case
// swing falls back to subdivision-based targeting instead of this selector.
type StepSelector struct {
	All      bool
	Mask     []bool
	Explicit bool
}

// GrooveModule attaches a groove template or raw humanize/rush/drag feel to
// an instrument or the whole pattern.
type GrooveModule struct {
	Type         GrooveType
	Amount       float64 // [0, 1]
	TemplateName string  // set when Type == GrooveTemplate
	Steps        StepSelector
	Subdivision  string // "4n" | "8n" | "16n", default "8n"; swing only
}
