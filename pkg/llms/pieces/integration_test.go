package pieces_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/germanamz/piecesllm/pkg/llms"
	"github.com/germanamz/piecesllm/pkg/llms/pieces"
	"github.com/germanamz/piecesllm/pkg/piecesos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPiecesOS serves just enough of the Pieces OS API for the adapter.
func newPiecesOS(t *testing.T, answer string, chunks ...string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /models", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"iterable": []map[string]any{
			{"id": "gpt35", "name": "GPT_3.5"},
			{"id": "gpt4", "name": "GPT_4"},
			{"id": "t5", "name": "T5"},
			{"id": "llama7", "name": "LLAMA_2_7B"},
			{"id": "llama13", "name": "LLAMA_2_13B"},
			{"id": "gpt4chat", "name": "GPT-4 Chat Model"},
			{"id": "gpt35chat", "name": "GPT-3.5 Chat Model"},
		}})
	})
	mux.HandleFunc("POST /qgpt/question", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"answers": map[string]any{"iterable": []map[string]any{{"text": answer}}},
		})
	})
	mux.HandleFunc("/qgpt/stream", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.CloseNow() }()

		var in map[string]any
		if err := wsjson.Read(r.Context(), conn, &in); err != nil {
			return
		}

		answers := make([]map[string]any, len(chunks))
		for i, c := range chunks {
			answers[i] = map[string]any{"text": c}
		}
		_ = wsjson.Write(r.Context(), conn, map[string]any{
			"status":   piecesos.StatusInProgress,
			"question": map[string]any{"answers": map[string]any{"iterable": answers}},
		})
		_ = wsjson.Write(r.Context(), conn, map[string]any{"status": piecesos.StatusCompleted})

		_, _, _ = conn.Read(r.Context())
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func newIntegrationAdapter(t *testing.T, srv *httptest.Server) *pieces.Adapter {
	t.Helper()

	cfg := piecesos.DefaultConfig()
	cfg.BaseURL = srv.URL

	client, err := piecesos.Connect(context.Background(), cfg, piecesos.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	return pieces.New(client, pieces.WithOutput(&bytes.Buffer{}))
}

func TestIntegration_Call(t *testing.T) {
	a := newIntegrationAdapter(t, newPiecesOS(t, "Mocked answer"))

	got, err := a.Call(context.Background(), "What is AI?")

	require.NoError(t, err)
	assert.Equal(t, "Mocked answer", got)
}

func TestIntegration_Generate(t *testing.T) {
	a := newIntegrationAdapter(t, newPiecesOS(t, "Mocked answer"))

	res, err := a.Generate(context.Background(), []string{"What is AI?"})

	require.NoError(t, err)
	assert.Equal(t, "Mocked answer", res.Generations[0][0].Text)
}

func TestIntegration_Stream(t *testing.T) {
	a := newIntegrationAdapter(t, newPiecesOS(t, "", "Test ", "streaming ", "response"))

	text, err := llms.Collect(a.Stream(context.Background(), "Test prompt"))

	require.NoError(t, err)
	assert.Equal(t, "Test streaming response", text)
}

func TestIntegration_SupportedModels(t *testing.T) {
	a := newIntegrationAdapter(t, newPiecesOS(t, ""))

	assert.Equal(t, []string{
		"GPT_3.5", "GPT_4", "T5", "LLAMA_2_7B", "LLAMA_2_13B",
		"GPT-4 Chat Model", "GPT-3.5 Chat Model",
	}, a.SupportedModels())
}

func TestIntegration_CallAfterServerDown(t *testing.T) {
	srv := newPiecesOS(t, "Mocked answer")
	a := newIntegrationAdapter(t, srv)
	srv.Close()

	got, err := a.Call(context.Background(), "What is AI?")

	require.NoError(t, err)
	assert.Equal(t, pieces.ErrorAskingQuestion, got)
}

func TestIntegration_WithLogger(t *testing.T) {
	var logBuf bytes.Buffer
	a := newIntegrationAdapter(t, newPiecesOS(t, "Mocked answer", "a", "b"))

	l := llms.WithLogger(a, newTextLogger(&logBuf))

	s, ok := l.(llms.Streamer)
	require.True(t, ok)
	_, ok = l.(llms.ModelManager)
	require.True(t, ok)

	text, err := llms.Collect(s.Stream(context.Background(), "p"))
	require.NoError(t, err)
	assert.Equal(t, "ab", text)
	assert.Contains(t, logBuf.String(), "llm=pieces_os")
}

func newTextLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}
