package llms

import (
	"context"
	"iter"
)

// LLM is a text-in, text-out backend.
type LLM interface {
	// Type returns a constant identifying the backend kind (e.g. "pieces_os").
	Type() string
	// IdentifyingParams returns the parameters that distinguish this backend
	// instance from others of the same type.
	IdentifyingParams() map[string]any
	// Call answers a single prompt.
	Call(ctx context.Context, prompt string) (string, error)
	// Generate answers every prompt and returns one generation list per prompt,
	// in input order.
	Generate(ctx context.Context, prompts []string) (Result, error)
}

// Streamer is an optional interface for backends that can produce an answer
// incrementally. The returned sequence issues its request when iteration
// starts; ranging over it again issues a new request.
type Streamer interface {
	Stream(ctx context.Context, prompt string) iter.Seq2[GenerationChunk, error]
}

// ModelManager is an optional interface for backends that expose model
// selection.
type ModelManager interface {
	SupportedModels() []string
	SetModel(name string)
}

// Collect drains seq and concatenates the chunk texts. It stops at the first
// error and returns the text gathered so far alongside it.
func Collect(seq iter.Seq2[GenerationChunk, error]) (string, error) {
	var text string
	for chunk, err := range seq {
		if err != nil {
			return text, err
		}
		text += chunk.Text
	}
	return text, nil
}
