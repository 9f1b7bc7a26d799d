package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"

	"github.com/loopforge/groovebox/assist"
	"github.com/loopforge/groovebox/commands"
	"github.com/loopforge/groovebox/engine"
)

// sampleRate is the fixed audio device rate the engine renders at.
const sampleRate = 44100

// isTerminal returns true if stdin is a terminal (TTY).
func isTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// processBatchInput reads and executes commands from reader.
// Returns (success, shouldExit) where success indicates no errors occurred
// and shouldExit indicates if an explicit exit command was found.
func processBatchInput(reader io.Reader, handler *commands.Handler) (bool, bool) {
	scanner := bufio.NewScanner(reader)
	hadErrors := false
	shouldExit := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			fmt.Println(line)
			continue
		}

		if strings.ToLower(line) == "exit" || strings.ToLower(line) == "quit" {
			shouldExit = true
			continue
		}

		fmt.Println(">", line)

		if err := handler.ProcessCommand(line); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			hadErrors = true
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		return false, shouldExit
	}

	return !hadErrors, shouldExit
}

// interactiveLoop drives the REPL from a readline instance, giving line
// editing and history for free — the one piece bufio.Scanner can't do.
func interactiveLoop(handler *commands.Handler) error {
	rl, err := readline.New("> ")
	if err != nil {
		return fmt.Errorf("creating readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return nil
		}
		line = strings.TrimSpace(line)
		if strings.ToLower(line) == "quit" {
			return nil
		}
		if err := handler.ProcessCommand(line); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

// assistProviders builds every assist.Provider whose API key environment
// variable (spec.md §4.E config, ANTHROPIC_API_KEY / OPENAI_API_KEY /
// GEMINI_API_KEY) is set, in the order spec.md §6.3 lists the providers.
func assistProviders(ctx context.Context) []assist.Provider {
	var providers []assist.Provider
	if p, err := assist.NewAnthropicFromEnv(); err == nil {
		providers = append(providers, p)
	} else {
		log.Printf("assist: anthropic unavailable: %v", err)
	}
	if p, err := assist.NewOpenAIFromEnv(); err == nil {
		providers = append(providers, p)
	} else {
		log.Printf("assist: openai unavailable: %v", err)
	}
	if p, err := assist.NewGeminiFromEnv(ctx); err == nil {
		providers = append(providers, p)
	} else {
		log.Printf("assist: gemini unavailable: %v", err)
	}
	return providers
}

func main() {
	scriptFile := flag.String("script", "", "execute commands from file")
	assistAddr := flag.String("assist-addr", "", "address to serve the HTTP /assist endpoint on (e.g. :8080); empty disables it")
	flag.Parse()

	eng := engine.Get()
	if err := eng.Initialize(sampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	providers := assistProviders(ctx)
	var primary assist.Provider
	if len(providers) > 0 {
		primary = providers[0]
	}

	var httpSrv *http.Server
	if *assistAddr != "" {
		if len(providers) == 0 {
			fmt.Fprintln(os.Stderr, "warning: -assist-addr set but no provider API key is configured")
		}
		assistSrv := assist.NewServer(providers...)
		httpSrv = &http.Server{Addr: *assistAddr, Handler: assistSrv}
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("assist server: %v", err)
			}
		}()
		fmt.Printf("Serving /assist on %s\n", *assistAddr)
	}

	cleanup := func() {
		if httpSrv != nil {
			httpSrv.Close()
		}
		eng.Dispose()
	}
	defer cleanup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down gracefully...")
		cleanup()
		os.Exit(0)
	}()

	cmdHandler := commands.New(eng, primary)

	fmt.Println("Groovebox ready. Type 'help' for commands, 'quit' to exit.")
	fmt.Println()

	if *scriptFile != "" {
		f, err := os.Open(*scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script file: %v\n", err)
			os.Exit(2)
		}
		defer f.Close()

		success, shouldExit := processBatchInput(f, cmdHandler)
		if shouldExit {
			cleanup()
			if success {
				os.Exit(0)
			}
			os.Exit(1)
		}
		fmt.Println("\nScript completed. Playback continues. Press Ctrl+C to exit.")
		select {} // Block forever, render callback keeps running
	}

	if isTerminal() {
		if err := interactiveLoop(cmdHandler); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading commands: %v\n", err)
			os.Exit(1)
		}
	} else {
		success, shouldExit := processBatchInput(os.Stdin, cmdHandler)
		if shouldExit {
			cleanup()
			if success {
				os.Exit(0)
			}
			os.Exit(1)
		}
		fmt.Println("\nBatch commands completed. Playback continues. Press Ctrl+C to exit.")
		select {} // Block forever, render callback keeps running
	}

	fmt.Println("Goodbye!")
}
