package audio

import (
	"math"
	"testing"

	"github.com/loopforge/groovebox/dsl"
)

func TestEnvelopeAttackDecaySustainRelease(t *testing.T) {
	e := NewEnvelope(0.01, 0.01, 0.5, 0.01)
	dt := 1.0 / 44100
	var last float64
	for i := 0; i < 441; i++ { // 10ms: should be in/near attack->decay
		last = e.Advance(dt)
	}
	if last <= 0 {
		t.Fatalf("level after attack+decay window = %v, want > 0", last)
	}
	for i := 0; i < 4410; i++ { // settle into sustain
		last = e.Advance(dt)
	}
	if math.Abs(last-0.5) > 0.05 {
		t.Errorf("sustain level = %v, want ~0.5", last)
	}
	e.Release()
	for i := 0; i < 441*2; i++ {
		last = e.Advance(dt)
	}
	if !e.Done() {
		t.Error("envelope should be done after release window elapses")
	}
}

func TestVoiceProducesSamples(t *testing.T) {
	v := NewVoice(KindKick, 0, dsl.EnvelopeModule{}, 1, 44100)
	any := false
	for i := 0; i < 2000; i++ {
		if v.Next() != 0 {
			any = true
		}
	}
	if !any {
		t.Fatal("kick voice produced silence for its whole attack/decay window")
	}
}

func TestVoiceEventuallyDone(t *testing.T) {
	v := NewVoice(KindHihat, 0, dsl.EnvelopeModule{}, 1, 44100)
	for i := 0; i < 44100; i++ {
		v.Next()
	}
	if !v.Done() {
		t.Fatal("hihat voice should have decayed to done within one second")
	}
}

func TestGraphRenderBlockNoPatternIsSilent(t *testing.T) {
	g := NewGraph(44100)
	left, right := g.RenderBlock(64)
	for i := range left {
		if left[i] != 0 || right[i] != 0 {
			t.Fatalf("expected silence with no pattern loaded, got %v/%v at %d", left[i], right[i], i)
		}
	}
}

func TestGraphTriggerAndRender(t *testing.T) {
	p, d := dsl.Parse("seq kick: X...\nsample kick: kick", dsl.Options{})
	if !d.IsValid {
		t.Fatalf("parse failed: %v", d.Errors)
	}
	g := NewGraph(44100)
	g.SetPattern(&p)
	g.TriggerHit("kick", 1.0)
	left, right := g.RenderBlock(512)
	any := false
	for i := range left {
		if left[i] != 0 || right[i] != 0 {
			any = true
			break
		}
	}
	if !any {
		t.Fatal("expected non-silent render after triggering a kick hit")
	}
}

func TestResolveKindFallsBackToPerc(t *testing.T) {
	if ResolveKind("not-a-real-sample") != KindPerc {
		t.Error("unknown sample name should resolve to KindPerc")
	}
}

func TestTriggerHitResolvesBareInstrumentName(t *testing.T) {
	p, d := dsl.Parse("seq kick: X...\nseq snare: .X..\nseq hihat: ..X.", dsl.Options{})
	if !d.IsValid {
		t.Fatalf("parse failed: %v", d.Errors)
	}
	g := NewGraph(44100)
	g.SetPattern(&p)

	g.TriggerHit("kick", 1.0)
	if len(g.voices["kick"]) != 1 || g.voices["kick"][0].Kind != KindKick {
		t.Fatalf("kick with no sample/note module should resolve to KindKick, got %+v", g.voices["kick"])
	}
	g.TriggerHit("snare", 1.0)
	if len(g.voices["snare"]) != 1 || g.voices["snare"][0].Kind != KindSnare {
		t.Fatalf("snare with no sample/note module should resolve to KindSnare, got %+v", g.voices["snare"])
	}
	g.TriggerHit("hihat", 1.0)
	if len(g.voices["hihat"]) != 1 || g.voices["hihat"][0].Kind != KindHihat {
		t.Fatalf("hihat with no sample/note module should resolve to KindHihat, got %+v", g.voices["hihat"])
	}
}

func TestTriggerHitUnmatchedNameFallsBackToSine440(t *testing.T) {
	p, d := dsl.Parse("seq blorp: X...", dsl.Options{})
	if !d.IsValid {
		t.Fatalf("parse failed: %v", d.Errors)
	}
	g := NewGraph(44100)
	g.SetPattern(&p)
	g.TriggerHit("blorp", 1.0)
	vs := g.voices["blorp"]
	if len(vs) != 1 || vs[0].Kind != KindSynth || vs[0].basePitch != 440 {
		t.Fatalf("unmatched instrument name should fall back to KindSynth@440, got %+v", vs)
	}
}

func TestGraphSetVolumeSurvivesPatternReload(t *testing.T) {
	p, _ := dsl.Parse("seq kick: X...", dsl.Options{})
	g := NewGraph(44100)
	g.SetPattern(&p)
	g.SetVolume(0.5)

	p2, _ := dsl.Parse("seq kick: X...\nseq snare: .X..", dsl.Options{})
	g.SetPattern(&p2)
	if g.master.Volume() != 0.5 {
		t.Errorf("master volume after pattern reload = %v, want 0.5 (should survive rebuild)", g.master.Volume())
	}
}

func TestLFOSawtoothRoutesToOscillatorSaw(t *testing.T) {
	m := dsl.LFOModule{
		Route:  dsl.LFORoute{Scope: dsl.MasterScope, Target: dsl.LFOTargetAmp},
		RateHz: 1,
		Depth:  1,
		Wave:   dsl.WaveSawtooth,
	}
	l := NewLFO(m, 44100)
	saw := NewOscillator(1, 44100)
	for i := 0; i < 100; i++ {
		got := l.Value()
		want := saw.Saw() * l.Depth * LFODepthScale[dsl.LFOTargetAmp]
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("sawtooth LFO sample %d = %v, want %v (oscillator Saw output)", i, got, want)
		}
	}
}
