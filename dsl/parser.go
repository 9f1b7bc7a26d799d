package dsl

import (
	"math"
	"strconv"
	"strings"
)

// Options controls how permissive a Parse call is.
type Options struct {
	// Strict rejects out-of-range values and step rows whose length is not
	// 16 or 32 as errors; without it out-of-range values are clamped with a
	// warning and rows of any length are kept unpadded. Model replies in the
	// assist endpoint and the assist command are parsed strict; interactive
	// pattern loads never are.
	Strict bool
}

type builder struct {
	opts Options
	diag Diagnostics

	tempo       int
	tempoSet    bool
	instruments map[string]Instrument

	sampleModules   map[string]SampleModule
	noteModules     map[string]NoteModule
	envelopeModules map[string]EnvelopeModule
	eqModules       map[string]EQModule
	ampModules      map[string]AmpModule
	compModules     map[string]CompModule
	filterModules   map[string]FilterModule
	delayModules    map[string]DelayModule
	reverbModules   map[string]ReverbModule
	panModules      map[string]PanModule
	distortModules  map[string]DistortModule
	chorusModules   map[string]ChorusModule
	phaserModules   map[string]PhaserModule
	lfoModules      map[string]LFOModule
	grooveModules   map[string]GrooveModule
}

// Parse reads DSL source text and returns the resulting Pattern along with
// a Diagnostics bag describing any errors or warnings encountered. Parse
// never panics and never returns a Go error; Diagnostics.IsValid is the
// caller's signal of whether the Pattern is safe to load.
func Parse(src string, opts Options) (Pattern, Diagnostics) {
	b := &builder{
		opts:            opts,
		diag:            newDiagnostics(),
		instruments:     map[string]Instrument{},
		sampleModules:   map[string]SampleModule{},
		noteModules:     map[string]NoteModule{},
		envelopeModules: map[string]EnvelopeModule{},
		eqModules:       map[string]EQModule{},
		ampModules:      map[string]AmpModule{},
		compModules:     map[string]CompModule{},
		filterModules:   map[string]FilterModule{},
		delayModules:    map[string]DelayModule{},
		reverbModules:   map[string]ReverbModule{},
		panModules:      map[string]PanModule{},
		distortModules:  map[string]DistortModule{},
		chorusModules:   map[string]ChorusModule{},
		phaserModules:   map[string]PhaserModule{},
		lfoModules:      map[string]LFOModule{},
		grooveModules:   map[string]GrooveModule{},
	}

	for _, l := range lex(src) {
		b.statement(l)
	}

	return b.finish()
}

func (b *builder) statement(l line) {
	if len(l.fields) == 0 {
		return
	}
	kw := strings.ToLower(l.fields[0])
	switch kw {
	case "tempo":
		b.parseTempo(l)
	case "seq":
		b.parseSeq(l)
	case "sample":
		b.parseSample(l)
	case "note":
		b.parseNote(l)
	case "env":
		b.parseEnv(l)
	case "eq":
		b.parseEQ(l)
	case "amp":
		b.parseAmp(l)
	case "comp":
		b.parseComp(l)
	case "filter":
		b.parseFilter(l)
	case "delay":
		b.parseDelay(l)
	case "reverb":
		b.parseReverb(l)
	case "pan":
		b.parsePan(l)
	case "distort":
		b.parseDistort(l)
	case "chorus":
		b.parseChorus(l)
	case "phaser":
		b.parsePhaser(l)
	case "lfo":
		b.parseLFO(l)
	case "groove":
		b.parseGroove(l)
	default:
		b.diag.addError("line %d: unknown statement %q", l.number, l.fields[0])
	}
}

func (b *builder) parseTempo(l line) {
	if len(l.fields) != 2 {
		b.diag.addError("line %d: tempo requires exactly one value", l.number)
		return
	}
	v, err := strconv.Atoi(l.fields[1])
	if err != nil {
		b.diag.addError("line %d: tempo %q is not an integer", l.number, l.fields[1])
		return
	}
	clamped, adjusted := clampInt(v, 60, 200)
	if adjusted {
		if b.opts.Strict {
			b.diag.addError("line %d: tempo %d out of range [60,200]", l.number, v)
			return
		}
		b.diag.addWarning("line %d: tempo %d clamped to %d", l.number, v, clamped)
	}
	b.tempo = clamped
	b.tempoSet = true
}

// stepVelocities maps a single step character to (isHit, velocity).
func stepVelocities(ch byte) (isHit bool, velocity float64, ok bool) {
	switch ch {
	case 'X':
		return true, 1.0, true
	case 'x':
		return true, 0.7, true
	case 'o', 'O':
		return true, 0.3, true
	case '.':
		return false, 0, true
	default:
		return false, 0, false
	}
}

func (b *builder) parseSeq(l line) {
	scope, rest, ok := scopeAndRest(l.fields)
	if !ok || len(rest) != 1 {
		b.diag.addError("line %d: seq requires \"<instrument>: <steps>\"", l.number)
		return
	}
	steps := rest[0]
	hits := make([]bool, 0, len(steps))
	vels := make([]float64, 0, len(steps))
	for i := 0; i < len(steps); i++ {
		isHit, vel, ok := stepVelocities(steps[i])
		if !ok {
			b.diag.addError("line %d: invalid step character %q at position %d", l.number, steps[i], i)
			b.diag.InvalidInstruments = append(b.diag.InvalidInstruments, scope)
			return
		}
		hits = append(hits, isHit)
		vels = append(vels, vel)
	}
	b.instruments[scope] = Instrument{Steps: hits, Velocities: vels}
	b.diag.ValidInstruments = append(b.diag.ValidInstruments, scope)
}

func (b *builder) parseSample(l line) {
	scope, rest, ok := scopeAndRest(l.fields)
	if !ok || len(rest) < 1 {
		b.diag.addError("line %d: sample requires \"<instrument>: <name> [gain=f]\"", l.number)
		return
	}
	kv := kvMap(rest[1:])
	mod := SampleModule{Sample: rest[0], Gain: 1}
	if g, ok := kv["gain"]; ok {
		mod.Gain = b.float(l, "sample.gain", g, rangeGain)
	}
	b.sampleModules[scope] = mod
}

func (b *builder) parseNote(l line) {
	scope, rest, ok := scopeAndRest(l.fields)
	if !ok || len(rest) != 1 {
		b.diag.addError("line %d: note requires \"<instrument>: <midi-note> | <hz>hz\"", l.number)
		return
	}
	raw := strings.ToLower(rest[0])
	isHz := strings.HasSuffix(raw, "hz")
	v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "hz"), 64)
	if err != nil {
		b.diag.addError("line %d: note pitch %q is not numeric", l.number, rest[0])
		return
	}
	if !isHz {
		v = 440 * math.Pow(2, (v-69)/12) // MIDI note number to Hz
	}
	b.noteModules[scope] = NoteModule{PitchHz: v}
}

func (b *builder) parseEnv(l line) {
	scope, rest, ok := scopeAndRest(l.fields)
	if !ok {
		b.diag.addError("line %d: env requires \"<instrument>: attack=.. decay=.. sustain=.. release=..\"", l.number)
		return
	}
	kv := kvMap(rest)
	b.envelopeModules[scope] = EnvelopeModule{
		Attack:  b.float(l, "env.attack", kv["attack"], [2]float64{0, 5}),
		Decay:   b.float(l, "env.decay", kv["decay"], [2]float64{0, 5}),
		Sustain: b.float(l, "env.sustain", kv["sustain"], rangeMix),
		Release: b.float(l, "env.release", kv["release"], [2]float64{0, 10}),
	}
}

func (b *builder) parseEQ(l line) {
	scope, rest, ok := scopeAndRest(l.fields)
	if !ok {
		b.diag.addError("line %d: eq requires \"<scope>: low=.. mid=.. high=..\"", l.number)
		return
	}
	kv := kvMap(rest)
	b.eqModules[scope] = EQModule{
		Low:  b.float(l, "eq.low", kv["low"], rangeEQDB),
		Mid:  b.float(l, "eq.mid", kv["mid"], rangeEQDB),
		High: b.float(l, "eq.high", kv["high"], rangeEQDB),
	}
}

func (b *builder) parseAmp(l line) {
	scope, rest, ok := scopeAndRest(l.fields)
	if !ok {
		b.diag.addError("line %d: amp requires \"<scope>: gain=..\"", l.number)
		return
	}
	kv := kvMap(rest)
	b.ampModules[scope] = AmpModule{Gain: b.float(l, "amp.gain", kv["gain"], rangeGain)}
}

func (b *builder) parseComp(l line) {
	scope, rest, ok := scopeAndRest(l.fields)
	if !ok {
		b.diag.addError("line %d: comp requires key=value fields", l.number)
		return
	}
	kv := kvMap(rest)
	b.compModules[scope] = CompModule{
		ThresholdDB: b.float(l, "comp.threshold", kv["threshold"], rangeCompThresh),
		Ratio:       b.float(l, "comp.ratio", kv["ratio"], rangeCompRatio),
		AttackMS:    b.float(l, "comp.attack", kv["attack"], rangeCompAttack),
		ReleaseMS:   b.float(l, "comp.release", kv["release"], rangeCompRelease),
		Knee:        b.float(l, "comp.knee", kv["knee"], rangeCompKnee),
	}
}

func (b *builder) parseFilter(l line) {
	scope, rest, ok := scopeAndRest(l.fields)
	if !ok {
		b.diag.addError("line %d: filter requires key=value fields", l.number)
		return
	}
	kv := kvMap(rest)
	ft := FilterType(strings.ToLower(kv["type"]))
	switch ft {
	case FilterLowpass, FilterHighpass, FilterBandpass, FilterNotch:
	default:
		if b.opts.Strict {
			b.diag.addError("line %d: filter type %q invalid", l.number, kv["type"])
		} else {
			b.diag.addWarning("line %d: filter type %q invalid, defaulting to lowpass", l.number, kv["type"])
		}
		ft = FilterLowpass
	}
	b.filterModules[scope] = FilterModule{
		Type: ft,
		Freq: b.float(l, "filter.freq", kv["freq"], rangeFilterFreq),
		Q:    b.float(l, "filter.q", kv["q"], rangeFilterQ),
	}
}

func (b *builder) parseDelay(l line) {
	scope, rest, ok := scopeAndRest(l.fields)
	if !ok {
		b.diag.addError("line %d: delay requires key=value fields", l.number)
		return
	}
	kv := kvMap(rest)
	b.delayModules[scope] = DelayModule{
		TimeMS:   b.float(l, "delay.time", kv["time"], rangeDelayTime),
		Feedback: b.float(l, "delay.feedback", kv["feedback"], rangeDelayFB),
		Mix:      b.float(l, "delay.mix", kv["mix"], rangeMix),
	}
}

func (b *builder) parseReverb(l line) {
	scope, rest, ok := scopeAndRest(l.fields)
	if !ok {
		b.diag.addError("line %d: reverb requires key=value fields", l.number)
		return
	}
	kv := kvMap(rest)
	b.reverbModules[scope] = ReverbModule{
		Decay:      b.float(l, "reverb.decay", kv["decay"], rangeMix),
		Mix:        b.float(l, "reverb.mix", kv["mix"], rangeMix),
		PredelayMS: b.float(l, "reverb.predelay", kv["predelay"], rangeReverbPre),
	}
}

func (b *builder) parsePan(l line) {
	scope, rest, ok := scopeAndRest(l.fields)
	if !ok {
		b.diag.addError("line %d: pan requires \"<scope>: pan=..\"", l.number)
		return
	}
	kv := kvMap(rest)
	raw := kv["pan"]
	if raw == "" && len(rest) == 1 {
		if _, _, isKV := splitKV(rest[0]); !isKV {
			raw = rest[0] // positional form: "pan <scope>: <value>"
		}
	}
	b.panModules[scope] = PanModule{Pan: b.float(l, "pan.pan", raw, rangePan)}
}

func (b *builder) parseDistort(l line) {
	scope, rest, ok := scopeAndRest(l.fields)
	if !ok {
		b.diag.addError("line %d: distort requires key=value fields", l.number)
		return
	}
	kv := kvMap(rest)
	b.distortModules[scope] = DistortModule{
		Amount: b.float(l, "distort.amount", kv["amount"], rangeMix),
		Mix:    b.float(l, "distort.mix", kv["mix"], rangeMix),
	}
}

func (b *builder) parseChorus(l line) {
	scope, rest, ok := scopeAndRest(l.fields)
	if !ok {
		b.diag.addError("line %d: chorus requires key=value fields", l.number)
		return
	}
	kv := kvMap(rest)
	b.chorusModules[scope] = ChorusModule{
		RateHz: b.float(l, "chorus.rate", kv["rate"], rangeChorusRate),
		Depth:  b.float(l, "chorus.depth", kv["depth"], rangeMix),
		Mix:    b.float(l, "chorus.mix", kv["mix"], rangeMix),
	}
}

func (b *builder) parsePhaser(l line) {
	scope, rest, ok := scopeAndRest(l.fields)
	if !ok {
		b.diag.addError("line %d: phaser requires key=value fields", l.number)
		return
	}
	kv := kvMap(rest)
	stages := 4
	if s, ok := kv["stages"]; ok {
		n, err := strconv.Atoi(s)
		if err != nil {
			b.diag.addError("line %d: phaser.stages %q is not an integer", l.number, s)
		} else {
			clamped, adjusted := clampInt(n, rangePhaserStage[0], rangePhaserStage[1])
			if clamped%2 != 0 {
				clamped--
				adjusted = true
			}
			if adjusted {
				b.warnOrErr(l, "phaser.stages", n, clamped)
			}
			stages = clamped
		}
	}
	b.phaserModules[scope] = PhaserModule{
		RateHz: b.float(l, "phaser.rate", kv["rate"], rangeChorusRate),
		Depth:  b.float(l, "phaser.depth", kv["depth"], rangeMix),
		Stages: stages,
		Mix:    b.float(l, "phaser.mix", kv["mix"], rangeMix),
	}
}

func (b *builder) parseLFO(l line) {
	if len(l.fields) < 2 {
		b.diag.addError("line %d: lfo requires \"<scope>.<target>: ...\"", l.number)
		return
	}
	header := strings.TrimSuffix(l.fields[1], ":")
	if header == l.fields[1] {
		b.diag.addError("line %d: lfo header missing trailing colon", l.number)
		return
	}
	dot := strings.IndexByte(header, '.')
	if dot < 0 {
		b.diag.addError("line %d: lfo target must be \"<scope>.<target>\"", l.number)
		return
	}
	scope, targetStr := header[:dot], header[dot+1:]
	target := LFOTarget(targetStr)
	switch target {
	case LFOTargetAmp, LFOTargetFilterFreq, LFOTargetFilterQ, LFOTargetPan, LFOTargetDelayTime, LFOTargetDelayFeedback:
	default:
		b.diag.addError("line %d: unknown lfo target %q", l.number, targetStr)
		return
	}
	kv := kvMap(l.fields[2:])
	wave := WaveShape(strings.ToLower(kv["wave"]))
	switch wave {
	case WaveSine, WaveTriangle, WaveSquare, WaveSawtooth, WaveRandom:
	case "":
		wave = WaveSine
	default:
		if b.opts.Strict {
			b.diag.addError("line %d: unknown lfo wave %q", l.number, kv["wave"])
		} else {
			b.diag.addWarning("line %d: unknown lfo wave %q, defaulting to sine", l.number, kv["wave"])
		}
		wave = WaveSine
	}
	key := scope + "." + string(target)
	b.lfoModules[key] = LFOModule{
		Route:  LFORoute{Scope: scope, Target: target},
		RateHz: b.float(l, "lfo.rate", kv["rate"], rangeLFORate),
		Depth:  b.float(l, "lfo.depth", kv["depth"], rangeMix),
		Wave:   wave,
	}
}

func (b *builder) parseGroove(l line) {
	scope := MasterScope
	var rest []string
	if len(l.fields) >= 2 && strings.HasSuffix(l.fields[1], ":") {
		scope = strings.TrimSuffix(l.fields[1], ":")
		rest = l.fields[2:]
	} else {
		rest = l.fields[1:]
	}
	kv := kvMap(rest)
	gt := GrooveType(strings.ToLower(kv["type"]))
	switch gt {
	case GrooveSwing, GrooveHumanize, GrooveRush, GrooveDrag, GrooveTemplate:
	default:
		b.diag.addError("line %d: unknown groove type %q", l.number, kv["type"])
		return
	}
	mod := GrooveModule{
		Type:        gt,
		Amount:      b.float(l, "groove.amount", kv["amount"], rangeMix),
		Steps:       StepSelector{All: true},
		Subdivision: "8n",
	}
	if gt == GrooveTemplate {
		name := kv["template"]
		if name == "" {
			b.diag.addError("line %d: groove type=template requires template=<name>", l.number)
			return
		}
		mod.TemplateName = name
	}
	if stepsCSV, ok := kv["steps"]; ok {
		mod.Steps = parseStepSelector(stepsCSV)
	}
	if sub, ok := kv["subdivision"]; ok {
		switch sub {
		case "4n", "8n", "16n":
			mod.Subdivision = sub
		default:
			if b.opts.Strict {
				b.diag.addError("line %d: groove.subdivision %q invalid", l.number, sub)
			} else {
				b.diag.addWarning("line %d: groove.subdivision %q invalid, defaulting to 8n", l.number, sub)
			}
		}
	}
	b.grooveModules[scope] = mod
}

func parseStepSelector(csv string) StepSelector {
	switch strings.ToLower(strings.TrimSpace(csv)) {
	case "all":
		return StepSelector{All: true, Explicit: true}
	case "odd":
		return oddEvenSelector(1)
	case "even":
		return oddEvenSelector(0)
	}
	parts := strings.Split(csv, ",")
	maxIdx := 0
	idxs := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			continue
		}
		idxs = append(idxs, n)
		if n > maxIdx {
			maxIdx = n
		}
	}
	mask := make([]bool, maxIdx+1)
	for _, n := range idxs {
		mask[n] = true
	}
	return StepSelector{Mask: mask, Explicit: true}
}

// oddEvenSelector builds a mask covering the first 32 steps (the maximum
// pattern length), tagging indices whose parity matches want (0 or 1).
func oddEvenSelector(want int) StepSelector {
	mask := make([]bool, 32)
	for i := range mask {
		if i%2 == want {
			mask[i] = true
		}
	}
	return StepSelector{Mask: mask, Explicit: true}
}

// float parses and range-checks a key=value number. Missing values default
// to the range's lower bound; strict mode turns out-of-range values into
// errors, permissive mode clamps with a warning.
func (b *builder) float(l line, field, raw string, r [2]float64) float64 {
	if raw == "" {
		return r[0]
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		b.diag.addError("line %d: %s %q is not numeric", l.number, field, raw)
		return r[0]
	}
	clamped, adjusted := clamp(v, r[0], r[1])
	if adjusted {
		b.warnOrErr(l, field, v, clamped)
	}
	return clamped
}

func (b *builder) warnOrErr(l line, field string, got, clamped any) {
	if b.opts.Strict {
		b.diag.addError("line %d: %s %v out of range", l.number, field, got)
		return
	}
	b.diag.addWarning("line %d: %s %v clamped to %v", l.number, field, got, clamped)
}

func (b *builder) finish() (Pattern, Diagnostics) {
	totalSteps := DefaultTotalSteps
	for _, inst := range b.instruments {
		if len(inst.Steps) > totalSteps {
			totalSteps = len(inst.Steps)
		}
	}

	// Shorter instrument rows are never padded here: a row shorter than
	// totalSteps is a deliberate, valid pattern (a 4-step shaker against a
	// 16-step kick, say) and is resolved at playback time by the configured
	// overflow mode (see Instrument.StepAt). Strict mode instead flags any
	// row whose length isn't one of the two canonical pattern lengths.
	if b.opts.Strict {
		for name, inst := range b.instruments {
			if len(inst.Steps) != 16 && len(inst.Steps) != 32 {
				b.diag.addError("instrument %q has %d steps, must be 16 or 32 in strict mode", name, len(inst.Steps))
			}
		}
	}

	tempo := b.tempo
	if !b.tempoSet {
		tempo = DefaultTempo
	}

	p := Pattern{
		Tempo:           tempo,
		TotalSteps:      totalSteps,
		Instruments:     b.instruments,
		SampleModules:   b.sampleModules,
		NoteModules:     b.noteModules,
		EnvelopeModules: b.envelopeModules,
		EQModules:       b.eqModules,
		AmpModules:      b.ampModules,
		CompModules:     b.compModules,
		FilterModules:   b.filterModules,
		DelayModules:    b.delayModules,
		ReverbModules:   b.reverbModules,
		PanModules:      b.panModules,
		DistortModules:  b.distortModules,
		ChorusModules:   b.chorusModules,
		PhaserModules:   b.phaserModules,
		LFOModules:      b.lfoModules,
		GrooveModules:   b.grooveModules,
	}
	return p, b.diag
}
