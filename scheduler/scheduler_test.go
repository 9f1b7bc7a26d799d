package scheduler

import (
	"testing"

	"github.com/loopforge/groovebox/dsl"
)

func TestTransportAdvanceEmitsEventsWhilePlaying(t *testing.T) {
	p, d := dsl.Parse("tempo 120\nseq kick: X...............", dsl.Options{})
	if !d.IsValid {
		t.Fatalf("parse failed: %v", d.Errors)
	}
	tr := NewTransport(44100)
	tr.SetPattern(&p)
	if evs := tr.Advance(512); evs != nil {
		t.Fatalf("expected no events while stopped, got %v", evs)
	}
	tr.Play()
	var all []Event
	for i := 0; i < 200; i++ {
		all = append(all, tr.Advance(512)...)
	}
	if len(all) == 0 {
		t.Fatal("expected at least one kick event across many blocks of playback")
	}
}

func TestTransportPauseStopsAdvancing(t *testing.T) {
	p, _ := dsl.Parse("tempo 120\nseq kick: X...", dsl.Options{})
	tr := NewTransport(44100)
	tr.SetPattern(&p)
	tr.Play()
	tr.Advance(100)
	tr.Pause()
	if tr.Playing() {
		t.Fatal("Playing() should be false after Pause")
	}
	if evs := tr.Advance(100000); evs != nil {
		t.Fatal("paused transport should not emit events")
	}
}

func TestTransportStopResetsLoopPosition(t *testing.T) {
	p, _ := dsl.Parse("tempo 120\nseq kick: X...", dsl.Options{})
	tr := NewTransport(44100)
	tr.SetPattern(&p)
	tr.Play()
	tr.Advance(1000)
	tr.Stop()
	if tr.loopPos != 0 {
		t.Fatalf("loopPos after Stop = %d, want 0", tr.loopPos)
	}
}

func TestGeneratePartRespectsOverflowRest(t *testing.T) {
	src := "seq kick: X...X...X...X...\nseq shaker: X..."
	p, d := dsl.Parse(src, dsl.Options{})
	if !d.IsValid {
		t.Fatalf("parse failed: %v", d.Errors)
	}
	part := GeneratePart(&p, 44100, OverflowRest, nil)
	shakerHits := 0
	for _, e := range part.Events {
		if e.Instrument == "shaker" && !e.Release {
			shakerHits++
		}
	}
	if shakerHits != 1 {
		t.Errorf("shaker hits under rest overflow = %d, want 1", shakerHits)
	}
}

func TestGeneratePartRespectsOverflowLoop(t *testing.T) {
	src := "seq kick: X...X...X...X...\nseq shaker: X..."
	p, d := dsl.Parse(src, dsl.Options{})
	if !d.IsValid {
		t.Fatalf("parse failed: %v", d.Errors)
	}
	part := GeneratePart(&p, 44100, OverflowLoop, nil)
	shakerHits := 0
	for _, e := range part.Events {
		if e.Instrument == "shaker" && !e.Release {
			shakerHits++
		}
	}
	if shakerHits != 4 {
		t.Errorf("shaker hits under loop overflow = %d, want 4", shakerHits)
	}
}

func TestGeneratePartEventsSortedByTime(t *testing.T) {
	p, _ := dsl.Parse("seq kick: X.X.X.X.\nseq snare: .X.X.X.X", dsl.Options{})
	part := GeneratePart(&p, 44100, OverflowLoop, nil)
	for i := 1; i < len(part.Events); i++ {
		if part.Events[i].AtSample < part.Events[i-1].AtSample {
			t.Fatalf("events not sorted at index %d", i)
		}
	}
}

func TestSetPatternPreservesLoopPositionAcrossEdits(t *testing.T) {
	p1, _ := dsl.Parse("tempo 120\nseq kick: X...X...X...X...", dsl.Options{})
	tr := NewTransport(44100)
	tr.SetPattern(&p1)
	tr.Play()
	tr.Advance(1000)
	before := tr.loopPos

	p2, _ := dsl.Parse("tempo 120\nseq kick: X...X...X...X...\nseq snare: ..X...X...X...X.", dsl.Options{})
	tr.SetPattern(&p2)
	if tr.loopPos != before {
		t.Errorf("loopPos changed across live pattern edit: before=%d after=%d", before, tr.loopPos)
	}
}

func TestSetPatternRescalesLoopPositionAcrossTempoChange(t *testing.T) {
	p1, _ := dsl.Parse("tempo 120\nseq kick: X...X...X...X...", dsl.Options{})
	tr := NewTransport(44100)
	tr.SetPattern(&p1)
	tr.Play()
	tr.Advance(1000)
	before := tr.loopPos

	p2, _ := dsl.Parse("tempo 90\nseq kick: X...X...X...X...", dsl.Options{})
	tr.SetPattern(&p2)

	want := int64(float64(before) * 120 / 90)
	if diff := tr.loopPos - want; diff < -1 || diff > 1 {
		t.Errorf("loopPos after tempo change = %d, want ~%d (elapsed-beats position not preserved)", tr.loopPos, want)
	}
}
