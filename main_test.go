package main

import (
	"strings"
	"testing"

	"github.com/loopforge/groovebox/commands"
	"github.com/loopforge/groovebox/engine"
	"github.com/loopforge/groovebox/scheduler"
)

// withHandler brings up a real engine against the system's audio device and
// wraps it in a command handler. On a machine with no audio device
// available the test is skipped, the same stance engine_test.go takes.
func withHandler(t *testing.T) *commands.Handler {
	t.Helper()
	eng := engine.Get()
	if err := eng.Initialize(sampleRate); err != nil {
		t.Skipf("no audio output device available: %v", err)
	}
	t.Cleanup(eng.Dispose)
	return commands.New(eng, nil)
}

func TestProcessBatchInput(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantSuccess bool
		wantExit    bool
	}{
		{name: "empty input", input: "", wantSuccess: true, wantExit: false},
		{name: "comments only", input: "# comment\n# another comment\n", wantSuccess: true, wantExit: false},
		{name: "empty lines only", input: "\n\n\n", wantSuccess: true, wantExit: false},
		{name: "valid command", input: "show\n", wantSuccess: true, wantExit: false},
		{name: "exit command", input: "exit\n", wantSuccess: true, wantExit: true},
		{name: "quit command", input: "quit\n", wantSuccess: true, wantExit: true},
		{name: "mixed valid and comments", input: "# Setup pattern\nshow\n# Done\n", wantSuccess: true, wantExit: false},
		{name: "invalid command", input: "invalid_command_xyz\n", wantSuccess: false, wantExit: false},
		{name: "valid then invalid commands", input: "show\ninvalid_command\n", wantSuccess: false, wantExit: false},
		{name: "invalid then valid commands", input: "invalid_command\nshow\n", wantSuccess: false, wantExit: false},
		{name: "exit after error", input: "invalid_command\nexit\n", wantSuccess: false, wantExit: true},
		{name: "case insensitive exit", input: "EXIT\n", wantSuccess: true, wantExit: true},
		{name: "case insensitive quit", input: "QUIT\n", wantSuccess: true, wantExit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := withHandler(t)
			reader := strings.NewReader(tt.input)

			gotSuccess, gotExit := processBatchInput(reader, handler)

			if gotSuccess != tt.wantSuccess {
				t.Errorf("processBatchInput() success = %v, want %v", gotSuccess, tt.wantSuccess)
			}
			if gotExit != tt.wantExit {
				t.Errorf("processBatchInput() exit = %v, want %v", gotExit, tt.wantExit)
			}
		})
	}
}

func TestProcessBatchInputCommandExecution(t *testing.T) {
	handler := withHandler(t)

	input := "overflow rest\n"
	reader := strings.NewReader(input)
	success, exit := processBatchInput(reader, handler)

	if !success {
		t.Error("expected overflow command to succeed")
	}
	if exit {
		t.Error("expected no exit for overflow command")
	}

	st := engine.Get().GetState()
	if st.OverflowMode != scheduler.OverflowRest {
		t.Errorf("overflow mode = %v, want %v", st.OverflowMode, scheduler.OverflowRest)
	}
}

func TestProcessBatchInputMultipleCommands(t *testing.T) {
	handler := withHandler(t)

	input := `# Set up overflow mode
overflow loop
# Show result
show
`
	reader := strings.NewReader(input)
	success, exit := processBatchInput(reader, handler)

	if !success {
		t.Error("expected all commands to succeed")
	}
	if exit {
		t.Error("expected no exit")
	}

	st := engine.Get().GetState()
	if st.OverflowMode != scheduler.OverflowLoop {
		t.Errorf("overflow mode = %v, want %v", st.OverflowMode, scheduler.OverflowLoop)
	}
}
