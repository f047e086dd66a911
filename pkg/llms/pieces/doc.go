// Package pieces exposes a Pieces OS copilot as an [llms.LLM] backend.
//
// The [Adapter] forwards prompts to the client's copilot and maps the
// answers onto the framework's result shapes. It holds the client by
// reference and never creates or closes it.
package pieces
