package assist

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/loopforge/groovebox/dsl"
)

const systemPrompt = `You are a musical assistant for Groovebox, a text-based generative drum-machine. Users describe a beat or an edit in plain language; you respond with a complete Groovebox DSL pattern block.

DSL grammar, one statement per line:
  TEMPO <60..200>
  seq <name>: <step characters>        X=accent x=hit o=ghost .=rest, 1-32 chars
  sample <name>: <sample> [gain=-3..3]
  note <name>: <midi-number>
  env <name>: [attack=] [decay=] [sustain=] [release=]
  eq <name|master>: [low=] [mid=] [high=-3..3]
  amp <name|master>: gain=-3..3
  comp <name|master>: [threshold=] [ratio=] [attack=] [release=] [knee=]
  filter <name>: type=<lowpass|highpass|bandpass|notch> freq= [q=]
  delay <name|master>: time= [feedback=] [mix=]
  reverb <name|master>: decay= [mix=] [predelay=]
  chorus <name|master>: [rate=] [depth=] [mix=]
  phaser <name|master>: [rate=] [depth=] [stages=2|4|6|8|12] [mix=]
  pan <name>: -1..1
  distort <name|master>: amount= [mix=]
  lfo <name|master>.<target>: [rate=Hz] [depth=] [wave=sine|triangle|square|sawtooth]
  groove <name|master>: type=<swing|humanize|rush|drag|template> amount=0..1 [steps=] [subdivision=4n|8n|16n] [template=<name>]

Respond with ONLY the DSL block, one statement per line, no commentary, no markdown fences.`

// Request is the POST /assist body, per spec.md §6.3.
type Request struct {
	Messages       []Message `json:"messages"`
	Provider       string    `json:"provider"`
	CurrentPattern string    `json:"currentPattern,omitempty"`
}

// Server dispatches POST /assist to the requested provider and relays its
// streamed reply as Server-Sent Events. The engine is never touched here;
// per spec.md §6.3 it only ever consumes whatever text a caller commits.
type Server struct {
	providers map[string]Provider
}

// NewServer registers each of providers under its Name().
func NewServer(providers ...Provider) *Server {
	s := &Server{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		s.providers[p.Name()] = p
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("bad request: %v", err), http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		http.Error(w, "messages must not be empty", http.StatusBadRequest)
		return
	}
	provider, ok := s.providers[req.Provider]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown provider: %q", req.Provider), http.StatusBadRequest)
		return
	}

	if req.CurrentPattern != "" {
		last := &req.Messages[len(req.Messages)-1]
		last.Content = wrapWithCurrentPattern(last.Content, req.CurrentPattern)
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	var full strings.Builder
	err := provider.Stream(r.Context(), systemPrompt, req.Messages, func(content string) error {
		full.WriteString(content)
		return writeChunk(w, flusher, content)
	})
	if err != nil {
		log.Printf("assist: %s stream error: %v", provider.Name(), err)
	}

	// The model's reply is the edited DSL block verbatim; validate it
	// strictly (spec.md §4.B) so a malformed reply shows up in the log
	// even though, per §6.3, the caller decides whether to commit it.
	if req.CurrentPattern != "" {
		if _, diag := dsl.Parse(full.String(), dsl.Options{Strict: true}); !diag.IsValid {
			log.Printf("assist: %s reply failed strict validation: %v", provider.Name(), diag.Errors)
		}
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func writeChunk(w http.ResponseWriter, flusher http.Flusher, content string) error {
	payload, err := json.Marshal(struct {
		Content string `json:"content"`
	}{Content: content})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// wrapWithCurrentPattern matches spec.md §6.3: "the last user message is
// wrapped with explicit 'modify this pattern in place' instructions so the
// model returns a full, edited DSL block."
func wrapWithCurrentPattern(userMessage, currentPattern string) string {
	return fmt.Sprintf(
		"Modify this pattern in place and return the complete edited DSL block — every line, not a diff or a partial excerpt.\n\nCurrent pattern:\n%s\n\nRequest: %s",
		currentPattern, userMessage,
	)
}
