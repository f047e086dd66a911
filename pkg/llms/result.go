package llms

// Generation is a single candidate answer for a prompt.
type Generation struct {
	Text string
	Info map[string]any
}

// GenerationChunk is one incremental piece of a streamed answer.
type GenerationChunk struct {
	Text string
}

// Result is the batched output of Generate. Generations[i] holds the
// candidates for the i-th prompt.
type Result struct {
	Generations [][]Generation
}

// Texts returns the text of the first generation for each prompt, in prompt
// order. Prompts with no generations yield an empty string.
func (r Result) Texts() []string {
	out := make([]string, len(r.Generations))
	for i, gens := range r.Generations {
		if len(gens) > 0 {
			out[i] = gens[0].Text
		}
	}
	return out
}
