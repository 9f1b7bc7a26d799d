package dsl

import "testing"

func TestParseBasicSeq(t *testing.T) {
	src := `
tempo 120
seq kick: X...X...X...X...
seq snare: ..X...X...X...X.
`
	p, d := Parse(src, Options{})
	if !d.IsValid {
		t.Fatalf("diagnostics invalid: %v", d.Errors)
	}
	if p.Tempo != 120 {
		t.Errorf("tempo = %d, want 120", p.Tempo)
	}
	if p.TotalSteps != DefaultTotalSteps {
		t.Errorf("totalSteps = %d, want %d", p.TotalSteps, DefaultTotalSteps)
	}
	kick, ok := p.Instruments["kick"]
	if !ok {
		t.Fatal("kick instrument missing")
	}
	if !kick.Steps[0] || kick.Steps[1] {
		t.Errorf("kick steps[0:2] = %v, want [true false]", kick.Steps[:2])
	}
}

func TestParseMissingTempoDefaults(t *testing.T) {
	p, d := Parse("seq kick: X...", Options{})
	if !d.IsValid {
		t.Fatalf("diagnostics invalid: %v", d.Errors)
	}
	if p.Tempo != DefaultTempo {
		t.Errorf("tempo = %d, want default %d", p.Tempo, DefaultTempo)
	}
}

func TestParseInvalidStepChar(t *testing.T) {
	_, d := Parse("seq kick: X..Z", Options{})
	if d.IsValid {
		t.Fatal("expected invalid diagnostics for bad step char")
	}
	if len(d.Errors) == 0 {
		t.Fatal("expected at least one error")
	}
}

func TestParsePermissiveClampsOutOfRange(t *testing.T) {
	p, d := Parse("amp kick: gain=5", Options{Strict: false})
	if !d.IsValid {
		t.Fatalf("permissive parse should stay valid, got errors: %v", d.Errors)
	}
	if len(d.Warnings) == 0 {
		t.Fatal("expected a clamp warning")
	}
	if p.AmpModules["kick"].Gain != rangeGain[1] {
		t.Errorf("gain = %v, want clamped to %v", p.AmpModules["kick"].Gain, rangeGain[1])
	}
}

func TestParseStrictRejectsOutOfRange(t *testing.T) {
	_, d := Parse("amp kick: gain=5", Options{Strict: true})
	if d.IsValid {
		t.Fatal("strict parse should be invalid for out-of-range gain")
	}
}

func TestParseMismatchedLengthsPermissiveKeepsShortRow(t *testing.T) {
	src := "seq kick: X...X...\nseq snare: X..."
	p, d := Parse(src, Options{Strict: false})
	if !d.IsValid {
		t.Fatalf("permissive parse should stay valid, got errors: %v", d.Errors)
	}
	if len(p.Instruments["snare"].Steps) != 4 {
		t.Errorf("snare length = %d, want 4 (unpadded, resolved at playback by overflow mode)", len(p.Instruments["snare"].Steps))
	}
	if p.TotalSteps != DefaultTotalSteps {
		t.Errorf("totalSteps = %d, want %d (max row length, floored at %d)", p.TotalSteps, DefaultTotalSteps, DefaultTotalSteps)
	}
}

func TestParseMismatchedLengthsStrictErrors(t *testing.T) {
	src := "seq kick: X...X...\nseq snare: X..."
	_, d := Parse(src, Options{Strict: true})
	if d.IsValid {
		t.Fatal("strict parse should flag mismatched step-row lengths")
	}
}

func TestParseLFORoute(t *testing.T) {
	p, d := Parse("lfo kick.filter.freq: rate=2 depth=0.5 wave=sine", Options{})
	if !d.IsValid {
		t.Fatalf("diagnostics invalid: %v", d.Errors)
	}
	lfo, ok := p.LFOModules["kick.filter.freq"]
	if !ok {
		t.Fatal("lfo module missing")
	}
	if lfo.Route.Scope != "kick" || lfo.Route.Target != LFOTargetFilterFreq {
		t.Errorf("route = %+v, want scope=kick target=filter.freq", lfo.Route)
	}
}

func TestParseGrooveTemplate(t *testing.T) {
	p, d := Parse("groove master: type=template template=mpc-swing-58 amount=0.7", Options{})
	if !d.IsValid {
		t.Fatalf("diagnostics invalid: %v", d.Errors)
	}
	g, ok := p.GrooveModules[MasterScope]
	if !ok {
		t.Fatal("groove module missing")
	}
	if g.TemplateName != "mpc-swing-58" || g.Amount != 0.7 {
		t.Errorf("groove = %+v, want template mpc-swing-58 amount 0.7", g)
	}
}

func TestParseUnknownStatement(t *testing.T) {
	_, d := Parse("bogus foo", Options{})
	if d.IsValid {
		t.Fatal("expected invalid for unknown statement")
	}
}

func TestParseCommentsIgnored(t *testing.T) {
	src := "# a comment\ntempo 120 // inline\nseq kick: X... # trailing"
	p, d := Parse(src, Options{})
	if !d.IsValid {
		t.Fatalf("diagnostics invalid: %v", d.Errors)
	}
	if p.Tempo != 120 {
		t.Errorf("tempo = %d, want 120", p.Tempo)
	}
}

func TestStepAtOverflow(t *testing.T) {
	inst := Instrument{Steps: []bool{true, false}, Velocities: []float64{1, 0}}
	if hit, _ := inst.StepAt(2, true); !hit {
		t.Error("loop overflow should wrap to step 0")
	}
	if hit, _ := inst.StepAt(2, false); hit {
		t.Error("rest overflow should report no hit past the end")
	}
}
