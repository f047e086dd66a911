package llms

import (
	"context"
	"iter"
	"log/slog"
	"time"
)

// WithLogger wraps l so that every call is logged to log with its duration
// and error. The returned value keeps the optional capabilities of l: it
// implements Streamer only when l does, and ModelManager only when l does.
func WithLogger(l LLM, log *slog.Logger) LLM {
	base := &loggedLLM{next: l, log: log}

	s, isStreamer := l.(Streamer)
	m, isManager := l.(ModelManager)

	switch {
	case isStreamer && isManager:
		return &loggedFull{loggedStreamer: &loggedStreamer{loggedLLM: base, stream: s}, ModelManager: m}
	case isStreamer:
		return &loggedStreamer{loggedLLM: base, stream: s}
	case isManager:
		return &loggedManager{loggedLLM: base, ModelManager: m}
	default:
		return base
	}
}

type loggedLLM struct {
	next LLM
	log  *slog.Logger
}

func (l *loggedLLM) Type() string                      { return l.next.Type() }
func (l *loggedLLM) IdentifyingParams() map[string]any { return l.next.IdentifyingParams() }

func (l *loggedLLM) Call(ctx context.Context, prompt string) (string, error) {
	l.log.DebugContext(ctx, "llm call started", "llm", l.next.Type())

	start := time.Now()
	text, err := l.next.Call(ctx, prompt)
	l.finished(ctx, "llm call finished", start, err)

	return text, err
}

func (l *loggedLLM) Generate(ctx context.Context, prompts []string) (Result, error) {
	l.log.DebugContext(ctx, "llm generate started", "llm", l.next.Type(), "prompts", len(prompts))

	start := time.Now()
	res, err := l.next.Generate(ctx, prompts)
	l.finished(ctx, "llm generate finished", start, err)

	return res, err
}

func (l *loggedLLM) finished(ctx context.Context, msg string, start time.Time, err error) {
	duration := time.Since(start)

	if err != nil {
		l.log.ErrorContext(ctx, msg,
			"llm", l.next.Type(),
			"duration", duration,
			"error", err,
		)
		return
	}

	l.log.InfoContext(ctx, msg,
		"llm", l.next.Type(),
		"duration", duration,
	)
}

type loggedStreamer struct {
	*loggedLLM
	stream Streamer
}

func (l *loggedStreamer) Stream(ctx context.Context, prompt string) iter.Seq2[GenerationChunk, error] {
	return func(yield func(GenerationChunk, error) bool) {
		l.log.DebugContext(ctx, "llm stream started", "llm", l.next.Type())

		start := time.Now()
		chunks := 0

		var streamErr error
		for chunk, err := range l.stream.Stream(ctx, prompt) {
			if err != nil {
				streamErr = err
			} else {
				chunks++
			}
			if !yield(chunk, err) {
				break
			}
		}

		if streamErr != nil {
			l.log.ErrorContext(ctx, "llm stream finished",
				"llm", l.next.Type(),
				"chunks", chunks,
				"duration", time.Since(start),
				"error", streamErr,
			)
			return
		}

		l.log.InfoContext(ctx, "llm stream finished",
			"llm", l.next.Type(),
			"chunks", chunks,
			"duration", time.Since(start),
		)
	}
}

type loggedManager struct {
	*loggedLLM
	ModelManager
}

type loggedFull struct {
	*loggedStreamer
	ModelManager
}
