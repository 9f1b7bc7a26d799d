package engine

import (
	"fmt"
	"time"

	"github.com/loopforge/groovebox/dsl"
)

// UpdateParameter applies a single live edit to scope (an instrument name
// or dsl.MasterScope) and field, clamping value into the same range a
// parsed statement would enforce. It clones the current pattern's top
// level and the one module map touched, so concurrent readers in
// renderBlock never observe a partially-updated map.
func (e *Engine) UpdateParameter(scope, field string, value float64) error {
	if !e.isInitialized() {
		return ErrNotInitialized
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pattern == nil {
		return ErrNoPattern
	}

	next := *e.pattern // shallow clone; individual maps replaced below as needed

	switch field {
	case "amp.gain":
		m := cloneAmp(next.AmpModules)
		mod := m[scope]
		mod.Gain = dsl.ClampAmpGain(value)
		m[scope] = mod
		next.AmpModules = m
	case "pan.pan":
		m := clonePan(next.PanModules)
		mod := m[scope]
		mod.Pan = dsl.ClampPan(value)
		m[scope] = mod
		next.PanModules = m
	case "filter.freq":
		m := cloneFilter(next.FilterModules)
		mod := m[scope]
		mod.Freq = dsl.ClampFilterFreq(value)
		m[scope] = mod
		next.FilterModules = m
	case "filter.q":
		m := cloneFilter(next.FilterModules)
		mod := m[scope]
		mod.Q = dsl.ClampFilterQ(value)
		m[scope] = mod
		next.FilterModules = m
	case "eq.low":
		m := cloneEQ(next.EQModules)
		mod := m[scope]
		mod.Low = dsl.ClampEQDB(value)
		m[scope] = mod
		next.EQModules = m
	case "eq.mid":
		m := cloneEQ(next.EQModules)
		mod := m[scope]
		mod.Mid = dsl.ClampEQDB(value)
		m[scope] = mod
		next.EQModules = m
	case "eq.high":
		m := cloneEQ(next.EQModules)
		mod := m[scope]
		mod.High = dsl.ClampEQDB(value)
		m[scope] = mod
		next.EQModules = m
	case "delay.time":
		m := cloneDelay(next.DelayModules)
		mod := m[scope]
		mod.TimeMS = dsl.ClampDelayTimeMS(value)
		m[scope] = mod
		next.DelayModules = m
	case "delay.feedback":
		m := cloneDelay(next.DelayModules)
		mod := m[scope]
		mod.Feedback = dsl.ClampDelayFeedback(value)
		m[scope] = mod
		next.DelayModules = m
	case "delay.mix":
		m := cloneDelay(next.DelayModules)
		mod := m[scope]
		mod.Mix = dsl.ClampMix(value)
		m[scope] = mod
		next.DelayModules = m
	default:
		return fmt.Errorf("engine: unknown parameter field %q", field)
	}

	e.pattern = &next
	e.transport.SetPattern(&next)
	e.graph.SetPattern(&next)
	e.history.record(ParamChange{Scope: scope, Field: field, Value: value, At: time.Now()})
	return nil
}

func cloneAmp(m map[string]dsl.AmpModule) map[string]dsl.AmpModule {
	out := make(map[string]dsl.AmpModule, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func clonePan(m map[string]dsl.PanModule) map[string]dsl.PanModule {
	out := make(map[string]dsl.PanModule, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneFilter(m map[string]dsl.FilterModule) map[string]dsl.FilterModule {
	out := make(map[string]dsl.FilterModule, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneEQ(m map[string]dsl.EQModule) map[string]dsl.EQModule {
	out := make(map[string]dsl.EQModule, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneDelay(m map[string]dsl.DelayModule) map[string]dsl.DelayModule {
	out := make(map[string]dsl.DelayModule, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
