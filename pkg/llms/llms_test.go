package llms_test

import (
	"errors"
	"iter"
	"testing"

	"github.com/germanamz/piecesllm/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunks(texts ...string) iter.Seq2[llms.GenerationChunk, error] {
	return func(yield func(llms.GenerationChunk, error) bool) {
		for _, t := range texts {
			if !yield(llms.GenerationChunk{Text: t}, nil) {
				return
			}
		}
	}
}

func TestCollect(t *testing.T) {
	text, err := llms.Collect(chunks("Test ", "streaming ", "response"))

	require.NoError(t, err)
	assert.Equal(t, "Test streaming response", text)
}

func TestCollect_Empty(t *testing.T) {
	text, err := llms.Collect(chunks())

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestCollect_StopsAtError(t *testing.T) {
	seq := func(yield func(llms.GenerationChunk, error) bool) {
		if !yield(llms.GenerationChunk{Text: "partial"}, nil) {
			return
		}
		if !yield(llms.GenerationChunk{}, errors.New("boom")) {
			return
		}
		yield(llms.GenerationChunk{Text: "never"}, nil)
	}

	text, err := llms.Collect(seq)

	assert.EqualError(t, err, "boom")
	assert.Equal(t, "partial", text)
}

func TestResult_Texts(t *testing.T) {
	r := llms.Result{Generations: [][]llms.Generation{
		{{Text: "first"}, {Text: "ignored"}},
		{},
		{{Text: "third"}},
	}}

	assert.Equal(t, []string{"first", "", "third"}, r.Texts())
}
