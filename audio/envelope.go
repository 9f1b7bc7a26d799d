package audio

// EnvelopePhase names the stage of an ADSR envelope's life cycle.
type EnvelopePhase int

const (
	PhaseAttack EnvelopePhase = iota
	PhaseDecay
	PhaseSustain
	PhaseRelease
	PhaseIdle
)

// Envelope is a real-time ADSR shape driven in seconds, not ticks, so it
// can be advanced sample-by-sample regardless of tempo.
type Envelope struct {
	AttackS  float64
	DecayS   float64
	Sustain  float64 // 0..1 level held during PhaseSustain
	ReleaseS float64

	phase EnvelopePhase
	pos   float64 // seconds into the current phase
	level float64
}

// NewEnvelope starts an envelope at phase Attack.
func NewEnvelope(attack, decay, sustain, release float64) *Envelope {
	return &Envelope{AttackS: attack, DecayS: decay, Sustain: sustain, ReleaseS: release}
}

// Release moves the envelope into its release phase immediately, e.g. when
// a step's gate ends before the natural decay/sustain finished.
func (e *Envelope) Release() {
	if e.phase == PhaseIdle || e.phase == PhaseRelease {
		return
	}
	e.phase = PhaseRelease
	e.pos = 0
}

// Done reports whether the envelope has fully decayed to silence.
func (e *Envelope) Done() bool {
	return e.phase == PhaseIdle
}

// Advance steps the envelope by dt seconds and returns the current
// amplitude multiplier in [0, 1].
func (e *Envelope) Advance(dt float64) float64 {
	switch e.phase {
	case PhaseAttack:
		if e.AttackS <= 0 {
			e.level = 1
			e.phase = PhaseDecay
			e.pos = 0
			return e.level
		}
		e.pos += dt
		e.level = clampUnit(e.pos / e.AttackS)
		if e.pos >= e.AttackS {
			e.phase = PhaseDecay
			e.pos = 0
		}
	case PhaseDecay:
		if e.DecayS <= 0 {
			e.level = e.Sustain
			e.phase = PhaseSustain
			e.pos = 0
			return e.level
		}
		e.pos += dt
		t := clampUnit(e.pos / e.DecayS)
		e.level = 1 + (e.Sustain-1)*t
		if e.pos >= e.DecayS {
			e.phase = PhaseSustain
			e.pos = 0
		}
	case PhaseSustain:
		e.level = e.Sustain
		if e.Sustain <= 0 {
			e.phase = PhaseIdle
		}
	case PhaseRelease:
		start := e.Sustain
		if e.ReleaseS <= 0 {
			e.level = 0
			e.phase = PhaseIdle
			return 0
		}
		e.pos += dt
		t := clampUnit(e.pos / e.ReleaseS)
		e.level = start * (1 - t)
		if e.pos >= e.ReleaseS {
			e.level = 0
			e.phase = PhaseIdle
		}
	case PhaseIdle:
		e.level = 0
	}
	return e.level
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
