package assist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeProvider emits a fixed sequence of chunks, ignoring the prompt.
type fakeProvider struct {
	name   string
	chunks []string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Stream(_ context.Context, _ string, _ []Message, onChunk ChunkFunc) error {
	for _, c := range f.chunks {
		if err := onChunk(c); err != nil {
			return err
		}
	}
	return nil
}

func TestServerStreamsChunksAndSentinel(t *testing.T) {
	srv := NewServer(&fakeProvider{name: "anthropic", chunks: []string{"TEMPO 120\n", "seq kick: X...\n"}})

	body := `{"provider":"anthropic","messages":[{"role":"user","content":"four on the floor"}]}`
	req := httptest.NewRequest(http.MethodPost, "/assist", strings.NewReader(body))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	resp := rec.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	out := rec.Body.String()
	if !strings.Contains(out, `"content":"TEMPO 120\n"`) {
		t.Errorf("missing first chunk frame in output: %s", out)
	}
	if !strings.HasSuffix(strings.TrimRight(out, "\n"), "data: [DONE]") {
		t.Errorf("output did not end with the [DONE] sentinel: %q", out)
	}
}

func TestServerUnknownProvider(t *testing.T) {
	srv := NewServer(&fakeProvider{name: "anthropic"})

	body := `{"provider":"openai","messages":[{"role":"user","content":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/assist", strings.NewReader(body))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestServerEmptyMessages(t *testing.T) {
	srv := NewServer(&fakeProvider{name: "anthropic"})

	body := `{"provider":"anthropic","messages":[]}`
	req := httptest.NewRequest(http.MethodPost, "/assist", strings.NewReader(body))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWrapWithCurrentPatternAppendsToLastMessage(t *testing.T) {
	srv := NewServer(&fakeProvider{name: "anthropic", chunks: []string{"TEMPO 140\n"}})

	var gotMessages []Message
	srv.providers["anthropic"] = &capturingProvider{fakeProvider: fakeProvider{name: "anthropic", chunks: []string{"TEMPO 140\n"}}, captured: &gotMessages}

	body := `{"provider":"anthropic","currentPattern":"TEMPO 120\nseq kick: X...\n","messages":[{"role":"user","content":"speed it up"}]}`
	req := httptest.NewRequest(http.MethodPost, "/assist", strings.NewReader(body))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if len(gotMessages) != 1 {
		t.Fatalf("expected 1 message forwarded to provider, got %d", len(gotMessages))
	}
	if !strings.Contains(gotMessages[0].Content, "modify this pattern in place") &&
		!strings.Contains(strings.ToLower(gotMessages[0].Content), "modify this pattern in place") {
		t.Errorf("last message was not wrapped with the in-place instruction: %q", gotMessages[0].Content)
	}
	if !strings.Contains(gotMessages[0].Content, "TEMPO 120") {
		t.Errorf("wrapped message missing currentPattern text: %q", gotMessages[0].Content)
	}
}

// capturingProvider records the messages it was streamed, for assertions
// on the §6.3 "modify this pattern in place" wrapping behavior.
type capturingProvider struct {
	fakeProvider
	captured *[]Message
}

func (c *capturingProvider) Stream(ctx context.Context, system string, messages []Message, onChunk ChunkFunc) error {
	*c.captured = messages
	return c.fakeProvider.Stream(ctx, system, messages, onChunk)
}

func TestRequestJSONShape(t *testing.T) {
	raw := `{"messages":[{"role":"user","content":"hi"}],"provider":"gemini","currentPattern":"TEMPO 120\n"}`
	var req Request
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Provider != "gemini" || len(req.Messages) != 1 || req.CurrentPattern == "" {
		t.Errorf("unexpected decode: %+v", req)
	}
}
