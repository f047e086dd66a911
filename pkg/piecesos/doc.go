// Package piecesos is a client for the local Pieces OS API.
//
// It contains:
//   - [Client], connected with [Connect], which caches the model catalogue
//   - [QGPT], the copilot that asks questions over REST and streams answers
//     over a WebSocket
//   - [Transport], the HTTP and WebSocket plumbing shared by both
//   - [Config] with YAML loading, PIECES_* environment overrides and validation
//
// The package knows nothing about the LLM framework; the adapter in
// [github.com/germanamz/piecesllm/pkg/llms/pieces] consumes it through the
// [Copilot] interface.
package piecesos
