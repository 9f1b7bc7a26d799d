package scheduler

import (
	"math/rand"
	"sort"

	"github.com/loopforge/groovebox/dsl"
)

// ScheduledEvent is one instrument trigger (or release) placed at a
// sample-accurate position relative to the start of its loop.
type ScheduledEvent struct {
	Instrument string
	Velocity   float64
	AtSample   int64
	Release    bool
}

// Part is one fully generated loop's worth of scheduled events, computed
// ahead of playback so the render thread never has to make a scheduling
// decision on the fly.
type Part struct {
	Tempo             int
	LoopLengthSamples int64
	Events            []ScheduledEvent
}

// stepIntervalSeconds returns the duration of one 16th-note step in seconds
// at the pattern's tempo (4 steps per beat).
func stepIntervalSeconds(tempo int) float64 {
	return 60.0 / float64(tempo) / 4
}

// gateFraction is how much of a step's duration a tonal hit holds
// before its release phase begins.
const gateFraction = 0.8

// GeneratePart builds one full loop's events for pattern p at sampleRate,
// resolving each instrument's shorter-than-totalSteps rows per overflow.
func GeneratePart(p *dsl.Pattern, sampleRate float64, overflow OverflowMode, rng *rand.Rand) *Part {
	stepIntervalS := stepIntervalSeconds(p.Tempo)
	ss := stepIntervalS * sampleRate
	loopLen := int64(ss * float64(p.TotalSteps))
	if loopLen <= 0 {
		loopLen = 1
	}

	var events []ScheduledEvent
	for name, inst := range p.Instruments {
		_, hasNote := p.NoteModules[name]
		for s := 0; s < p.TotalSteps; s++ {
			isHit, vel := inst.StepAt(s, overflow == OverflowLoop)
			if !isHit {
				continue
			}
			offsetS, velScale := applyGroove(p, name, s, stepIntervalS, rng)
			nominal := float64(s) * ss
			at := nominal + offsetS*sampleRate
			if at < 0 {
				at = 0
			}
			atSample := int64(at)
			if atSample >= loopLen {
				atSample = loopLen - 1
			}
			events = append(events, ScheduledEvent{
				Instrument: name,
				Velocity:   clampUnit(vel * velScale),
				AtSample:   atSample,
			})
			if hasNote {
				releaseAt := int64(nominal + ss*gateFraction)
				if releaseAt < loopLen {
					events = append(events, ScheduledEvent{Instrument: name, AtSample: releaseAt, Release: true})
				}
			}
		}
	}

	sort.Slice(events, func(i, j int) bool { return events[i].AtSample < events[j].AtSample })
	return &Part{Tempo: p.Tempo, LoopLengthSamples: loopLen, Events: events}
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
