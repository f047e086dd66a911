package piecesos

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"sync"

	"github.com/samber/lo"
)

const modelsPath = "/models"

// Copilot answers questions, either in one response or as a stream of
// partial responses.
type Copilot interface {
	AskQuestion(ctx context.Context, query string) (Response, error)
	StreamQuestion(ctx context.Context, query string) iter.Seq2[Response, error]
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for REST and WebSocket handshakes.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.transport.Client = c }
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(cl *Client) { cl.log = log }
}

// Client is a connection to a Pieces OS instance. It caches the model
// catalogue fetched at Connect time; call Refresh to reload it.
type Client struct {
	transport *Transport
	log       *slog.Logger
	copilot   *QGPT

	mu     sync.RWMutex
	models []Model
}

// Connect validates cfg, loads the model catalogue and resolves cfg.Model
// (by name or id) to the model the copilot asks with.
func Connect(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		transport: &Transport{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout},
		log:       slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}

	var modelID string
	if cfg.Model != "" {
		m, ok := c.FindModel(cfg.Model)
		if !ok {
			return nil, fmt.Errorf("piecesos: unknown model %q", cfg.Model)
		}
		modelID = m.ID
	}

	c.copilot = &QGPT{
		transport:   c.transport,
		log:         c.log,
		modelID:     modelID,
		application: cfg.Application,
	}

	c.log.DebugContext(ctx, "pieces os connected",
		"base_url", cfg.BaseURL,
		"models", len(c.models),
		"model_id", modelID,
	)

	return c, nil
}

// Refresh reloads the model catalogue.
func (c *Client) Refresh(ctx context.Context) error {
	var out modelsOutput
	if err := c.transport.GetJSON(ctx, modelsPath, &out); err != nil {
		return fmt.Errorf("piecesos: list models: %w", err)
	}

	c.mu.Lock()
	c.models = out.Iterable
	c.mu.Unlock()

	return nil
}

// Models returns a copy of the cached model catalogue.
func (c *Client) Models() []Model {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cp := make([]Model, len(c.models))
	copy(cp, c.models)
	return cp
}

// AvailableModelsNames returns the names of the cached models in catalogue
// order.
func (c *Client) AvailableModelsNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return lo.Map(c.models, func(m Model, _ int) string { return m.Name })
}

// FindModel looks a model up by name, then by id.
func (c *Client) FindModel(nameOrID string) (Model, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if m, ok := lo.Find(c.models, func(m Model) bool { return m.Name == nameOrID }); ok {
		return m, true
	}
	return lo.Find(c.models, func(m Model) bool { return m.ID == nameOrID })
}

// Copilot returns the question-answering capability of this connection.
func (c *Client) Copilot() Copilot {
	return c.copilot
}
