// Package llms defines the contract an LLM backend implements to plug into
// the framework.
//
// It contains:
//   - [LLM], [Streamer] and [ModelManager] capability interfaces
//   - [Result], [Generation] and [GenerationChunk] result shapes
//   - [Collect] for draining a chunk stream into a string
//   - [WithLogger], a log/slog decorator for any backend
//
// This package contains no backend-specific code. Concrete backends live in
// sub-packages such as [github.com/germanamz/piecesllm/pkg/llms/pieces].
package llms
