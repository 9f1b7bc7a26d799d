package scheduler

import (
	"math/rand"

	"github.com/loopforge/groovebox/dsl"
	"github.com/loopforge/groovebox/groove"
)

// grooveFor resolves which groove module, if any, governs instrument: its
// own module takes priority over a whole-pattern module attached to the
// master scope.
func grooveFor(p *dsl.Pattern, instrument string) (dsl.GrooveModule, bool) {
	if gm, ok := p.GrooveModules[instrument]; ok {
		return gm, true
	}
	if gm, ok := p.GrooveModules[dsl.MasterScope]; ok {
		return gm, true
	}
	return dsl.GrooveModule{}, false
}

func stepSelected(sel dsl.StepSelector, step int) bool {
	if sel.All || sel.Mask == nil {
		return true
	}
	if step >= len(sel.Mask) {
		return false
	}
	return sel.Mask[step]
}

// subdivStepCount maps a groove module's "subdivision" field to the number
// of 16th-note steps per subdivision, per spec.md §4.D ({4n:4, 8n:2, 16n:1}).
func subdivStepCount(sub string) int {
	switch sub {
	case "4n":
		return 4
	case "16n":
		return 1
	default:
		return 2
	}
}

// swingTargeted reports whether step is targeted by a swing groove: an
// explicit "steps=" selector takes priority, otherwise the subdivision
// default rule applies (⌊s/stepsPerSubdiv⌋ mod 2 == 1).
func swingTargeted(gm dsl.GrooveModule, step int) (targeted bool, stepsPerSubdiv int) {
	stepsPerSubdiv = subdivStepCount(gm.Subdivision)
	if gm.Steps.Explicit {
		return stepSelected(gm.Steps, step), stepsPerSubdiv
	}
	return (step/stepsPerSubdiv)%2 == 1, stepsPerSubdiv
}

// applyGroove computes the timing offset in seconds (positive = late) and
// velocity multiplier a groove module contributes to instrument's hit at
// step. stepInterval is the pattern's 16th-note step duration in seconds.
func applyGroove(p *dsl.Pattern, instrument string, step int, stepInterval float64, rng *rand.Rand) (offsetSeconds, velocityScale float64) {
	gm, ok := grooveFor(p, instrument)
	if !ok {
		return 0, 1
	}
	switch gm.Type {
	case dsl.GrooveTemplate:
		if !stepSelected(gm.Steps, step) {
			return 0, 1
		}
		tpl, found := groove.Get(gm.TemplateName)
		if !found {
			return 0, 1
		}
		res := groove.Apply(tpl, step, gm.Amount)
		return res.TimingOffset * stepInterval, res.VelocityScale
	case dsl.GrooveSwing:
		targeted, stepsPerSubdiv := swingTargeted(gm, step)
		if !targeted {
			return 0, 1
		}
		return gm.Amount * stepInterval * float64(stepsPerSubdiv) * 0.33, 1
	case dsl.GrooveHumanize:
		if !stepSelected(gm.Steps, step) {
			return 0, 1
		}
		timing := (rng.Float64() - 0.5) * gm.Amount * 0.05
		vel := 1 + (rng.Float64()*2-1)*gm.Amount*0.2
		return timing, vel
	case dsl.GrooveRush:
		if !stepSelected(gm.Steps, step) {
			return 0, 1
		}
		return -gm.Amount * 0.03, 1
	case dsl.GrooveDrag:
		if !stepSelected(gm.Steps, step) {
			return 0, 1
		}
		return gm.Amount * 0.03, 1
	default:
		return 0, 1
	}
}
