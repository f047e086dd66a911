package piecesos

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	questionPath = "/qgpt/question"
	streamPath   = "/qgpt/stream"
)

// StreamError reports a stream that Pieces OS ended with a status other
// than COMPLETED.
type StreamError struct {
	Status  string
	Message string
}

func (e *StreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("stream %s: %s", e.Status, e.Message)
	}
	return "stream " + e.Status
}

var _ Copilot = (*QGPT)(nil)

// QGPT is the Pieces OS copilot. Streamed questions continue the
// conversation started by the previous stream until ResetConversation is
// called. AskQuestion is always stateless.
type QGPT struct {
	transport   *Transport
	log         *slog.Logger
	modelID     string
	application string

	mu           sync.Mutex
	conversation string
}

// ModelID returns the id of the model questions are asked with. Empty means
// the Pieces OS default.
func (q *QGPT) ModelID() string { return q.modelID }

// Conversation returns the id of the conversation the last stream belonged to.
func (q *QGPT) Conversation() string {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.conversation
}

// ResetConversation makes the next streamed question start a new
// conversation.
func (q *QGPT) ResetConversation() { q.setConversation("") }

func (q *QGPT) setConversation(id string) {
	q.mu.Lock()
	q.conversation = id
	q.mu.Unlock()
}

func (q *QGPT) input(query string) questionInput {
	return questionInput{
		Query:       query,
		Relevant:    relevantSeeds{Iterable: []any{}},
		Model:       q.modelID,
		Application: q.application,
	}
}

// AskQuestion asks query and waits for the complete answer.
func (q *QGPT) AskQuestion(ctx context.Context, query string) (Response, error) {
	q.log.DebugContext(ctx, "qgpt question", "model_id", q.modelID)

	var out questionOutput
	if err := q.transport.PostJSON(ctx, questionPath, q.input(query), &out); err != nil {
		return Response{}, fmt.Errorf("piecesos: ask question: %w", err)
	}

	return out.response(), nil
}

// StreamQuestion asks query over a WebSocket and yields each partial
// response as it arrives. The connection is opened when iteration starts and
// closed when it ends, including when the consumer stops early. A stream
// that ends with a status other than COMPLETED yields a *StreamError.
func (q *QGPT) StreamQuestion(ctx context.Context, query string) iter.Seq2[Response, error] {
	return func(yield func(Response, error) bool) {
		q.log.DebugContext(ctx, "qgpt stream", "model_id", q.modelID)

		conn, err := q.transport.DialWS(ctx, streamPath)
		if err != nil {
			yield(Response{}, fmt.Errorf("piecesos: stream question: %w", err))
			return
		}
		defer func() { _ = conn.CloseNow() }()

		in := streamInput{Question: q.input(query), Conversation: q.Conversation()}
		if err := wsjson.Write(ctx, conn, in); err != nil {
			yield(Response{}, fmt.Errorf("piecesos: stream question: %w", err))
			return
		}

		for {
			var out streamOutput
			if err := wsjson.Read(ctx, conn, &out); err != nil {
				if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
					err = errors.New("connection closed before completion")
				}
				yield(Response{}, fmt.Errorf("piecesos: stream question: %w", err))
				return
			}

			if out.Conversation != "" {
				q.setConversation(out.Conversation)
			}

			switch out.Status {
			case StatusFailed, StatusCanceled, StatusStopped, StatusReset:
				yield(Response{}, &StreamError{Status: out.Status, Message: out.ErrorMessage})
				return
			}

			if out.Question != nil && len(out.Question.Answers.Iterable) > 0 {
				if !yield(out.Question.response(), nil) {
					return
				}
			}

			if out.Status == StatusCompleted {
				_ = conn.Close(websocket.StatusNormalClosure, "")
				return
			}
		}
	}
}
