package engine

import (
	"errors"
	"testing"

	"github.com/loopforge/groovebox/scheduler"
)

const testPattern = "tempo 120\nseq kick: X...X...X...X...\nsample kick: kick\n"

// withEngine resets the singleton and initializes a fresh Engine for the
// test. Initialize opens a real system audio device; on a machine with none
// available that's an acceptable, expected failure, so the test is skipped
// rather than failed.
func withEngine(t *testing.T) *Engine {
	t.Helper()
	resetForTest()
	e := Get()
	if err := e.Initialize(44100); err != nil {
		t.Skipf("no audio output device available: %v", err)
	}
	t.Cleanup(e.Dispose)
	return e
}

func TestCallsBeforeInitializeReturnErrNotInitialized(t *testing.T) {
	resetForTest()
	e := Get()
	if err := e.Play(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Play() before Initialize = %v, want ErrNotInitialized", err)
	}
	if err := e.UpdateParameter(dslMasterScope, "amp.gain", 1); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("UpdateParameter() before Initialize = %v, want ErrNotInitialized", err)
	}
}

func TestPlayWithNoPatternReturnsErrNoPattern(t *testing.T) {
	e := withEngine(t)
	if err := e.Play(); !errors.Is(err, ErrNoPattern) {
		t.Errorf("Play() with no pattern = %v, want ErrNoPattern", err)
	}
}

func TestLoadPatternThenPlayPauseStop(t *testing.T) {
	e := withEngine(t)
	diag, err := e.LoadPattern(testPattern)
	if err != nil {
		t.Fatalf("LoadPattern: %v", err)
	}
	if !diag.IsValid {
		t.Fatalf("expected valid pattern, got errors: %v", diag.Errors)
	}
	if err := e.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !e.GetState().Playing {
		t.Error("expected state.Playing after Play()")
	}
	if err := e.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if e.GetState().Playing {
		t.Error("expected !state.Playing after Pause()")
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestLoadPatternRejectsInvalidSource(t *testing.T) {
	e := withEngine(t)
	diag, err := e.LoadPattern("seq kick: XYZ\n")
	if err != nil {
		t.Fatalf("LoadPattern unexpected Go error: %v", err)
	}
	if diag.IsValid {
		t.Fatal("expected invalid diagnostics for malformed step row")
	}
}

func TestUpdateParameterClampsAndRecordsHistory(t *testing.T) {
	e := withEngine(t)
	if _, err := e.LoadPattern(testPattern); err != nil {
		t.Fatalf("LoadPattern: %v", err)
	}
	if err := e.UpdateParameter("kick", "amp.gain", 9.0); err != nil {
		t.Fatalf("UpdateParameter: %v", err)
	}
	got := e.pattern.AmpModules["kick"].Gain
	if got != 2.0 {
		t.Errorf("amp.gain after clamp = %v, want 2.0", got)
	}
	recent := e.RecentChanges(1)
	if len(recent) != 1 || recent[0].Field != "amp.gain" {
		t.Fatalf("RecentChanges = %+v, want one amp.gain entry", recent)
	}
}

func TestUpdateParameterUnknownFieldErrors(t *testing.T) {
	e := withEngine(t)
	if _, err := e.LoadPattern(testPattern); err != nil {
		t.Fatalf("LoadPattern: %v", err)
	}
	if err := e.UpdateParameter("kick", "not.a.field", 1); err == nil {
		t.Fatal("expected an error for an unrecognized field")
	}
}

func TestSetVolumeClampsAndReflectedInState(t *testing.T) {
	e := withEngine(t)
	if err := e.SetVolume(100); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}
	if got := e.GetState().VolumeDB; got != 12 {
		t.Errorf("state.VolumeDB after over-range SetVolume = %v, want 12 (clamped)", got)
	}
	if err := e.SetVolume(-6); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}
	if got := e.GetState().VolumeDB; got != -6 {
		t.Errorf("state.VolumeDB = %v, want -6", got)
	}
}

func TestSetEffectsEnabledReflectedInState(t *testing.T) {
	e := withEngine(t)
	if err := e.SetEffectsEnabled(false); err != nil {
		t.Fatalf("SetEffectsEnabled: %v", err)
	}
	if e.GetState().EffectsEnabled {
		t.Error("expected state.EffectsEnabled = false")
	}
}

func TestGetStatePausedReflectsTransportPause(t *testing.T) {
	e := withEngine(t)
	if _, err := e.LoadPattern(testPattern); err != nil {
		t.Fatalf("LoadPattern: %v", err)
	}
	if err := e.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := e.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	s := e.GetState()
	if s.Playing {
		t.Error("expected !state.Playing after Pause()")
	}
	if !s.Paused {
		t.Error("expected state.Paused after Pause()")
	}
}

func TestSetOverflowModeReflectedInState(t *testing.T) {
	e := withEngine(t)
	if err := e.SetOverflowMode(scheduler.OverflowRest); err != nil {
		t.Fatalf("SetOverflowMode: %v", err)
	}
	if got := e.GetState().OverflowMode; got != scheduler.OverflowRest {
		t.Errorf("state.OverflowMode = %v, want %v", got, scheduler.OverflowRest)
	}
}

const dslMasterScope = "master"
