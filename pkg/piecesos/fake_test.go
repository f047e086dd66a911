package piecesos_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/germanamz/piecesllm/pkg/piecesos"
	"github.com/stretchr/testify/require"
)

var testModels = []map[string]any{
	{"id": "gpt-4o-id", "name": "GPT-4o Chat Model", "cloud": true},
	{"id": "claude-id", "name": "Claude 3.5 Sonnet Chat Model", "cloud": true},
	{"id": "llama-id", "name": "Llama-3 8B CPU Chat Model", "cloud": false, "downloaded": true},
}

// fakePieces is an in-process stand-in for the Pieces OS API.
type fakePieces struct {
	t *testing.T

	mu        sync.Mutex
	questions []map[string]any
	streamIn  []map[string]any

	askStatus  int
	answers    []map[string]any
	streamMsgs []map[string]any
}

func newFakePieces(t *testing.T) (*fakePieces, *httptest.Server) {
	t.Helper()

	f := &fakePieces{t: t, askStatus: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /models", f.handleModels)
	mux.HandleFunc("POST /qgpt/question", f.handleQuestion)
	mux.HandleFunc("/qgpt/stream", f.handleStream)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return f, srv
}

func (f *fakePieces) handleModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(f.t, w, map[string]any{"iterable": testModels})
}

func (f *fakePieces) handleQuestion(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		f.t.Errorf("decode question: %v", err)
	}

	f.mu.Lock()
	f.questions = append(f.questions, body)
	status, answers := f.askStatus, f.answers
	f.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"copilot unavailable"}`))
		return
	}

	writeJSON(f.t, w, map[string]any{"answers": map[string]any{"iterable": answers}})
}

func (f *fakePieces) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		f.t.Errorf("accept: %v", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	ctx := r.Context()

	var in map[string]any
	if err := wsjson.Read(ctx, conn, &in); err != nil {
		f.t.Errorf("read stream input: %v", err)
		return
	}

	f.mu.Lock()
	f.streamIn = append(f.streamIn, in)
	msgs := f.streamMsgs
	f.mu.Unlock()

	for _, m := range msgs {
		if err := wsjson.Write(ctx, conn, m); err != nil {
			return
		}
	}

	// Wait for the client to hang up.
	_, _, _ = conn.Read(ctx)
}

func (f *fakePieces) lastQuestion() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.questions) == 0 {
		return nil
	}
	return f.questions[len(f.questions)-1]
}

func (f *fakePieces) streamInputs() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := make([]map[string]any, len(f.streamIn))
	copy(cp, f.streamIn)
	return cp
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func streamMsg(status, conversation string, texts ...string) map[string]any {
	answers := make([]map[string]any, len(texts))
	for i, t := range texts {
		answers[i] = map[string]any{"text": t}
	}

	return map[string]any{
		"status":       status,
		"conversation": conversation,
		"question":     map[string]any{"answers": map[string]any{"iterable": answers}},
	}
}

func connect(t *testing.T, srv *httptest.Server, model string) *piecesos.Client {
	t.Helper()

	cfg := piecesos.DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Model = model

	c, err := piecesos.Connect(context.Background(), cfg, piecesos.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	return c
}
