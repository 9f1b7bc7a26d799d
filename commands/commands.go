// Package commands implements the interactive/batch REPL that drives the
// engine singleton: loading patterns from disk, transport control, live
// parameter edits, and AI-assisted pattern generation.
package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/loopforge/groovebox/assist"
	"github.com/loopforge/groovebox/dsl"
	"github.com/loopforge/groovebox/engine"
	"github.com/loopforge/groovebox/scheduler"
)

// readFile loads a DSL source file from disk for the "load" command. This
// is file I/O only, not the pattern-library persistence spec.md §1 scopes
// out — there is no save/list/delete counterpart.
func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Handler processes user commands against the engine singleton.
type Handler struct {
	eng      *engine.Engine
	verbose  bool
	provider assist.Provider // nil if no provider's API key is configured
}

// New creates a command handler bound to eng. provider may be nil, in
// which case the "assist" command reports that no provider is configured.
func New(eng *engine.Engine, provider assist.Provider) *Handler {
	return &Handler{eng: eng, provider: provider}
}

// ProcessCommand parses and executes a single command string.
func (h *Handler) ProcessCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		return h.handleShow(nil)
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "load":
		return h.handleLoad(parts)
	case "play":
		return h.handlePlay(parts)
	case "pause":
		return h.handlePause(parts)
	case "stop":
		return h.handleStop(parts)
	case "set":
		return h.handleSet(parts)
	case "volume":
		return h.handleVolume(parts)
	case "effects":
		return h.handleEffects(parts)
	case "overflow":
		return h.handleOverflow(parts)
	case "show":
		return h.handleShow(parts)
	case "history":
		return h.handleHistory(parts)
	case "verbose":
		return h.handleVerbose(parts)
	case "assist":
		return h.handleAssist(parts)
	case "help":
		return h.handleHelp(parts)
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// handleLoad: load <file> — read file's contents as DSL source and load it.
func (h *Handler) handleLoad(parts []string) error {
	if len(parts) != 2 {
		return fmt.Errorf("usage: load <file> (e.g., 'load patterns/techno.groove')")
	}
	data, err := readFile(parts[1])
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", parts[1], err)
	}
	diag, err := h.eng.LoadPattern(string(data))
	if err != nil {
		return err
	}
	return reportDiagnostics(diag, h.verbose)
}

// handlePlay: play
func (h *Handler) handlePlay(parts []string) error {
	if err := h.eng.Play(); err != nil {
		return err
	}
	fmt.Println("Playing")
	return nil
}

// handlePause: pause
func (h *Handler) handlePause(parts []string) error {
	if err := h.eng.Pause(); err != nil {
		return err
	}
	fmt.Println("Paused")
	return nil
}

// handleStop: stop
func (h *Handler) handleStop(parts []string) error {
	if err := h.eng.Stop(); err != nil {
		return err
	}
	fmt.Println("Stopped")
	return nil
}

// handleSet: set <scope> <field> <value>
func (h *Handler) handleSet(parts []string) error {
	if len(parts) != 4 {
		return fmt.Errorf("usage: set <scope> <field> <value> (e.g., 'set kick amp.gain 1.2')")
	}
	value, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return fmt.Errorf("invalid value: %s", parts[3])
	}
	if err := h.eng.UpdateParameter(parts[1], parts[2], value); err != nil {
		return err
	}
	fmt.Printf("Set %s.%s = %g\n", parts[1], parts[2], value)
	return nil
}

// handleVolume: volume <dB>
func (h *Handler) handleVolume(parts []string) error {
	if len(parts) != 2 {
		return fmt.Errorf("usage: volume <dB> (e.g., 'volume -6')")
	}
	db, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return fmt.Errorf("invalid value: %s", parts[1])
	}
	if err := h.eng.SetVolume(db); err != nil {
		return err
	}
	fmt.Printf("Volume: %g dB\n", db)
	return nil
}

// handleEffects: effects <on|off>
func (h *Handler) handleEffects(parts []string) error {
	if len(parts) != 2 {
		return fmt.Errorf("usage: effects <on|off>")
	}
	var enabled bool
	switch strings.ToLower(parts[1]) {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		return fmt.Errorf("usage: effects <on|off>")
	}
	if err := h.eng.SetEffectsEnabled(enabled); err != nil {
		return err
	}
	fmt.Printf("Effects: %s\n", parts[1])
	return nil
}

// handleOverflow: overflow <loop|rest>
func (h *Handler) handleOverflow(parts []string) error {
	if len(parts) != 2 {
		return fmt.Errorf("usage: overflow <loop|rest>")
	}
	var mode scheduler.OverflowMode
	switch strings.ToLower(parts[1]) {
	case "loop":
		mode = scheduler.OverflowLoop
	case "rest":
		mode = scheduler.OverflowRest
	default:
		return fmt.Errorf("usage: overflow <loop|rest>")
	}
	if err := h.eng.SetOverflowMode(mode); err != nil {
		return err
	}
	fmt.Printf("Overflow mode: %s\n", mode)
	return nil
}

// handleShow: show
func (h *Handler) handleShow(parts []string) error {
	s := h.eng.GetState()
	if !s.Initialized {
		fmt.Println("Engine not initialized")
		return nil
	}
	status := "stopped"
	if s.Playing {
		status = "playing"
	} else if s.Paused {
		status = "paused"
	}
	fmt.Printf("Tempo: %d BPM  Steps: %d  Overflow: %s  Status: %s  Volume: %g dB  Effects: %v  Time: %.2fs\n",
		s.Tempo, s.TotalSteps, s.OverflowMode, status, s.VolumeDB, s.EffectsEnabled, s.CurrentTimeSecs)
	if s.Error != nil {
		fmt.Printf("Last error: %v\n", s.Error)
	}
	if len(s.Instruments) == 0 {
		fmt.Println("No pattern loaded")
		return nil
	}
	fmt.Printf("Instruments: %s\n", strings.Join(s.Instruments, ", "))
	return nil
}

// handleHistory: history [n]
func (h *Handler) handleHistory(parts []string) error {
	n := 10
	if len(parts) == 2 {
		v, err := strconv.Atoi(parts[1])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid count: %s", parts[1])
		}
		n = v
	}
	changes := h.eng.RecentChanges(n)
	if len(changes) == 0 {
		fmt.Println("No parameter edits yet")
		return nil
	}
	for _, c := range changes {
		fmt.Printf("%s  %s.%s = %g\n", c.At.Format("15:04:05"), c.Scope, c.Field, c.Value)
	}
	return nil
}

// handleVerbose: verbose [on|off]
func (h *Handler) handleVerbose(parts []string) error {
	if len(parts) == 1 {
		h.verbose = !h.verbose
	} else if len(parts) == 2 {
		switch strings.ToLower(parts[1]) {
		case "on":
			h.verbose = true
		case "off":
			h.verbose = false
		default:
			return fmt.Errorf("usage: verbose [on|off]")
		}
	} else {
		return fmt.Errorf("usage: verbose [on|off]")
	}
	if h.verbose {
		fmt.Println("Verbose mode enabled (showing parse warnings)")
	} else {
		fmt.Println("Verbose mode disabled")
	}
	return nil
}

// handleAssist: assist <prompt text...> — ask the configured AI provider to
// describe a pattern in DSL and load the result if it parses strictly.
func (h *Handler) handleAssist(parts []string) error {
	if len(parts) < 2 {
		return fmt.Errorf("usage: assist <description> (e.g., 'assist a sparse dub techno beat at 122 bpm')")
	}
	if h.provider == nil {
		return fmt.Errorf("no assist provider configured (set ANTHROPIC_API_KEY, OPENAI_API_KEY, or GEMINI_API_KEY)")
	}
	prompt := strings.Join(parts[1:], " ")

	var reply strings.Builder
	err := h.provider.Stream(context.Background(), assistCommandSystemPrompt, []assist.Message{
		{Role: "user", Content: prompt},
	}, func(chunk string) error {
		reply.WriteString(chunk)
		return nil
	})
	if err != nil {
		return fmt.Errorf("assist failed: %w", err)
	}

	src := strings.TrimSpace(reply.String())
	p, diag := dsl.Parse(src, dsl.Options{Strict: true})
	if !diag.IsValid {
		return fmt.Errorf("assist produced an invalid pattern: %v", diag.Errors)
	}
	if _, err := h.eng.LoadPattern(src); err != nil {
		return err
	}
	fmt.Printf("Loaded %d-step pattern from %s:\n%s\n", p.TotalSteps, h.provider.Name(), src)
	return nil
}

// assistCommandSystemPrompt instructs the provider to answer with a single
// DSL block and nothing else, so reply.String() round-trips through
// dsl.Parse directly.
const assistCommandSystemPrompt = `You are a musical assistant for Groovebox, a text-based generative drum-machine. Translate the user's request into a complete Groovebox DSL pattern block (TEMPO/seq/sample/note/env/eq/amp/comp/filter/delay/reverb/chorus/phaser/pan/distort/lfo/groove statements, one per line). Respond with ONLY the DSL block — no commentary, no markdown fences.`

// handleHelp: help
func (h *Handler) handleHelp(parts []string) error {
	helpText := `Available commands:
  load <file>                 Load a pattern from a .groove DSL file
  play                        Start playback
  pause                       Suspend playback (keeps loop position)
  stop                        Stop playback and rewind to the top
  set <scope> <field> <val>   Live-edit a parameter (e.g. 'set kick amp.gain 1.2')
  volume <dB>                 Set master output level in decibels (e.g. 'volume -6')
  effects <on|off>            Toggle the master effect chain (pregain/volume still apply)
  overflow <loop|rest>        Change how shorter instrument rows are resolved
  show                        Display current engine state
  history [n]                 Show the last n parameter edits (default 10)
  verbose [on|off]            Toggle or set parse-warning output
  assist <description>        Ask an AI model to generate and load a pattern
  help                        Show this help message
  quit                        Exit the program
  <enter>                     Show current state (same as 'show')`

	fmt.Println(helpText)
	return nil
}

// reportDiagnostics prints a pattern load's diagnostics and turns an
// invalid parse into an error. In verbose mode, warnings are echoed too.
func reportDiagnostics(diag dsl.Diagnostics, verbose bool) error {
	if verbose {
		for _, w := range diag.Warnings {
			fmt.Println("warning:", w)
		}
	}
	if !diag.IsValid {
		return fmt.Errorf("invalid pattern: %s", strings.Join(diag.Errors, "; "))
	}
	fmt.Println("Pattern loaded")
	return nil
}

// ReadLoop reads commands from input until "quit" or EOF.
func (h *Handler) ReadLoop(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)

	fmt.Print("> ")
	for scanner.Scan() {
		line := scanner.Text()

		if strings.TrimSpace(strings.ToLower(line)) == "quit" {
			return nil
		}

		if err := h.ProcessCommand(line); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

		fmt.Print("> ")
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	return nil
}
