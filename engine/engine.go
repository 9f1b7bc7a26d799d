// Package engine wires the dsl, scheduler, and audio packages into the
// single process-wide facade the command layer and the assist HTTP
// endpoint both drive.
package engine

import (
	"math"
	"sync"
	"time"

	"github.com/loopforge/groovebox/audio"
	"github.com/loopforge/groovebox/dsl"
	"github.com/loopforge/groovebox/scheduler"
)

// State is a snapshot of the engine's current condition, returned by
// GetState.
type State struct {
	Initialized     bool
	Playing         bool
	Paused          bool
	Tempo           int
	TotalSteps      int
	OverflowMode    scheduler.OverflowMode
	Instruments     []string
	LoopPosSamples  int64
	VolumeDB        float64
	CurrentTimeSecs float64
	EffectsEnabled  bool
	Error           error
}

// Engine is the process-wide facade composing the DSL pattern model, the
// event scheduler, and the audio graph/output.
type Engine struct {
	mu sync.RWMutex

	sampleRate float64
	transport  *scheduler.Transport
	graph      *audio.Graph
	output     *audio.Output

	pattern *dsl.Pattern
	source  string
	history *paramHistory

	initialized    bool
	volumeDB       float64
	effectsEnabled bool
	lastErr        error
}

var (
	instance *Engine
	once     sync.Once
)

// Get returns the process-wide Engine, constructing it (uninitialized) on
// first call.
func Get() *Engine {
	once.Do(func() {
		instance = &Engine{history: newParamHistory()}
	})
	return instance
}

// Initialize brings up the audio output device at sampleRate. Calling it
// twice is a no-op.
func (e *Engine) Initialize(sampleRate float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initialized {
		return nil
	}
	e.sampleRate = sampleRate
	e.transport = scheduler.NewTransport(sampleRate)
	e.graph = audio.NewGraph(sampleRate)
	e.effectsEnabled = true

	out, err := audio.NewOutput(int(sampleRate), e.renderBlock)
	if err != nil {
		initErr := &InitError{Err: err}
		e.lastErr = initErr
		return initErr
	}
	e.output = out
	e.initialized = true
	e.lastErr = nil
	return nil
}

// renderBlock is the audio.RenderFunc the output device calls from its own
// callback goroutine. It holds the engine's read lock for the duration of
// one block, matching the single-mutex pattern/Part swap model: edits made
// concurrently via LoadPattern/UpdateParameter simply wait for the next
// block boundary.
func (e *Engine) renderBlock(frames int) (left, right []float64) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	left = make([]float64, 0, frames)
	right = make([]float64, 0, frames)
	if e.transport == nil || e.graph == nil {
		return make([]float64, frames), make([]float64, frames)
	}

	events := e.transport.Advance(frames)
	pos := 0
	for _, ev := range events {
		if ev.Offset > pos {
			l, r := e.graph.RenderBlock(ev.Offset - pos)
			left = append(left, l...)
			right = append(right, r...)
			pos = ev.Offset
		}
		if ev.Release {
			e.graph.ReleaseHit(ev.Instrument)
		} else {
			e.graph.TriggerHit(ev.Instrument, ev.Velocity)
		}
	}
	if pos < frames {
		l, r := e.graph.RenderBlock(frames - pos)
		left = append(left, l...)
		right = append(right, r...)
	}
	return left, right
}

// LoadPattern parses src permissively and, if valid, swaps it in as the
// engine's current pattern. Diagnostics are always returned, even when the
// pattern is rejected.
func (e *Engine) LoadPattern(src string) (dsl.Diagnostics, error) {
	if !e.isInitialized() {
		return dsl.Diagnostics{}, ErrNotInitialized
	}
	p, diag := dsl.Parse(src, dsl.Options{Strict: false})
	if !diag.IsValid {
		return diag, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pattern = &p
	e.source = src
	e.transport.SetPattern(&p)
	e.graph.SetPattern(&p)
	return diag, nil
}

// Source returns the raw DSL text of the currently loaded pattern, as
// originally passed to LoadPattern (not regenerated from the parsed
// Pattern, so comments and formatting are preserved).
func (e *Engine) Source() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.source
}

// Play starts playback of the currently loaded pattern.
func (e *Engine) Play() error {
	if !e.isInitialized() {
		return ErrNotInitialized
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pattern == nil {
		return ErrNoPattern
	}
	e.transport.Play()
	return nil
}

// Pause suspends playback without resetting the loop position.
func (e *Engine) Pause() error {
	if !e.isInitialized() {
		return ErrNotInitialized
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transport.Pause()
	return nil
}

// Stop halts playback and rewinds to the top of the loop.
func (e *Engine) Stop() error {
	if !e.isInitialized() {
		return ErrNotInitialized
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transport.Stop()
	return nil
}

// SetOverflowMode changes how shorter instrument rows are resolved against
// the pattern's longer loop length.
func (e *Engine) SetOverflowMode(m scheduler.OverflowMode) error {
	if !e.isInitialized() {
		return ErrNotInitialized
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transport.SetOverflowMode(m)
	if e.pattern != nil {
		e.transport.SetPattern(e.pattern)
	}
	return nil
}

// SetVolume sets the master bus's output level in decibels, clamped to
// [-60, 12], and records the change in parameterHistory.
func (e *Engine) SetVolume(db float64) error {
	if !e.isInitialized() {
		return ErrNotInitialized
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	db = dsl.ClampMasterVolumeDB(db)
	e.volumeDB = db
	e.graph.SetVolume(dbToLinear(db))
	e.history.record(ParamChange{Scope: dsl.MasterScope, Field: "volume", Value: db, At: time.Now()})
	return nil
}

// SetEffectsEnabled toggles the master effect chain on or off; pregain and
// volume still apply either way.
func (e *Engine) SetEffectsEnabled(enabled bool) error {
	if !e.isInitialized() {
		return ErrNotInitialized
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.effectsEnabled = enabled
	e.graph.SetEffectsEnabled(enabled)
	return nil
}

// dbToLinear converts a decibel gain to a linear amplitude multiplier.
func dbToLinear(db float64) float64 { return math.Pow(10, db/20) }

// GetState returns a snapshot of the engine's current condition.
func (e *Engine) GetState() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s := State{Initialized: e.initialized, Error: e.lastErr}
	if !e.initialized {
		return s
	}
	s.Playing = e.transport.Playing()
	s.Paused = e.transport.Paused()
	s.OverflowMode = e.transport.OverflowMode()
	s.LoopPosSamples = e.transport.LoopPositionSamples()
	s.CurrentTimeSecs = e.transport.CurrentTimeSeconds()
	s.VolumeDB = e.volumeDB
	s.EffectsEnabled = e.effectsEnabled
	if e.pattern != nil {
		s.Tempo = e.pattern.Tempo
		s.TotalSteps = e.pattern.TotalSteps
		s.Instruments = e.pattern.InstrumentNames()
	}
	return s
}

// RecentChanges returns up to n of the most recently applied live
// parameter edits, newest first.
func (e *Engine) RecentChanges(n int) []ParamChange {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.recent(n)
}

// Dispose stops playback and releases the audio output device. The engine
// can be re-initialized afterward.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.output != nil {
		e.output.Close()
	}
	e.initialized = false
}

func (e *Engine) isInitialized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.initialized
}

// resetForTest tears down the singleton so tests can Initialize a fresh
// Engine; not exported, package-internal test helper only.
func resetForTest() {
	instance = nil
	once = sync.Once{}
}
