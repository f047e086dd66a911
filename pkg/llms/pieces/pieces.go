package pieces

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"slices"

	"github.com/germanamz/piecesllm/pkg/llms"
	"github.com/germanamz/piecesllm/pkg/piecesos"
	"github.com/samber/lo"
)

const (
	// LLMType identifies this backend.
	LLMType = "pieces_os"
	// DefaultModel is the model name reported until SetModel is called.
	DefaultModel = "pieces_os"
	// ErrorAskingQuestion is what Call returns when the copilot fails.
	ErrorAskingQuestion = "Error asking question"
)

// Client is the handle the adapter wraps.
type Client interface {
	Copilot() piecesos.Copilot
	AvailableModelsNames() []string
}

var (
	_ llms.LLM          = (*Adapter)(nil)
	_ llms.Streamer     = (*Adapter)(nil)
	_ llms.ModelManager = (*Adapter)(nil)
	_ Client            = (*piecesos.Client)(nil)
)

// Option configures an Adapter.
type Option func(*Adapter)

// WithOutput sets where SetModel prints its notice. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(a *Adapter) { a.out = w }
}

// WithLogger sets the logger. Defaults to discarding.
func WithLogger(log *slog.Logger) Option {
	return func(a *Adapter) { a.log = log }
}

// WithModel sets the initial model name without printing a notice.
func WithModel(name string) Option {
	return func(a *Adapter) { a.Model = name }
}

// Adapter is an LLM backend answering through a Pieces OS copilot.
//
// Model is informational: it is reported by IdentifyingParams but never sent
// with a question, so the client's own configuration decides which model
// answers. An Adapter is not safe for concurrent use.
type Adapter struct {
	Model string

	client Client
	out    io.Writer
	log    *slog.Logger
}

// New creates an Adapter around client.
func New(client Client, opts ...Option) *Adapter {
	a := &Adapter{
		Model:  DefaultModel,
		client: client,
		out:    os.Stdout,
		log:    slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Type returns "pieces_os".
func (a *Adapter) Type() string { return LLMType }

// IdentifyingParams reports the selected model.
func (a *Adapter) IdentifyingParams() map[string]any {
	return map[string]any{"model": a.Model}
}

// Call asks the copilot and returns the text of the first answer. Any
// failure, including a reply without answers, yields ErrorAskingQuestion and
// a nil error.
func (a *Adapter) Call(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.Copilot().AskQuestion(ctx, prompt)
	if err != nil || len(resp.Answers) == 0 {
		return ErrorAskingQuestion, nil
	}

	return resp.Answers[0].Text, nil
}

// Generate calls each prompt in order and wraps every answer as a single
// generation.
func (a *Adapter) Generate(ctx context.Context, prompts []string) (llms.Result, error) {
	gens := lo.Map(prompts, func(p string, _ int) []llms.Generation {
		text, _ := a.Call(ctx, p)
		return []llms.Generation{{Text: text}}
	})

	return llms.Result{Generations: gens}, nil
}

// Stream yields one chunk per answer fragment of each streamed response.
// The question is sent when iteration starts. Stream errors are passed
// through unchanged.
//
// With a *piecesos.Client, successive Streams on the same client continue
// one Pieces conversation, while Call and Generate ask without context.
// Use piecesos.QGPT.ResetConversation to start over.
func (a *Adapter) Stream(ctx context.Context, prompt string) iter.Seq2[llms.GenerationChunk, error] {
	return func(yield func(llms.GenerationChunk, error) bool) {
		for resp, err := range a.client.Copilot().StreamQuestion(ctx, prompt) {
			if err != nil {
				yield(llms.GenerationChunk{}, err)
				return
			}

			for _, ans := range resp.Answers {
				if !yield(llms.GenerationChunk{Text: ans.Text}, nil) {
					return
				}
			}
		}
	}
}

// SupportedModels returns the client's model names as advertised.
func (a *Adapter) SupportedModels() []string {
	return a.client.AvailableModelsNames()
}

// SetModel selects name and prints "Model set to <name>." whether or not the
// client supports it.
func (a *Adapter) SetModel(name string) {
	a.Model = name

	// Known defect: the notice claims success for unsupported names too.
	// The warning below is the only signal that the client cannot serve it.
	if !slices.Contains(a.SupportedModels(), name) {
		a.log.Warn("model not supported by client", "model", name)
	}

	_, _ = fmt.Fprintf(a.out, "Model set to %s.\n", name)
}
