// Package openai provides a memory.Embedder backed by the OpenAI embeddings
// API. Plug it into a local backend to rank memories by cosine similarity
// instead of term overlap.
package openai

import (
	"context"
	"fmt"

	"github.com/hupe1980/memorymesh/memory"
	"github.com/openai/openai-go"
)

var _ memory.Embedder = (*Embedder)(nil)

// Options configure the OpenAI embedder.
type Options struct {
	Model openai.EmbeddingModel
}

// Embedder wraps the OpenAI embeddings endpoint behind memory.Embedder.
type Embedder struct {
	client *openai.Client
	opts   Options
}

// NewEmbedder creates a new embedder using the official client configured
// from the environment (OPENAI_API_KEY, OPENAI_BASE_URL).
func NewEmbedder(optFns ...func(o *Options)) *Embedder {
	client := openai.NewClient()
	return NewEmbedderFromClient(&client, optFns...)
}

// NewEmbedderFromClient creates a new embedder from an existing client.
func NewEmbedderFromClient(client *openai.Client, optFns ...func(o *Options)) *Embedder {
	opts := Options{
		Model: openai.EmbeddingModelTextEmbedding3Small,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Embedder{client: client, opts: opts}
}

// Embed returns one vector per input text, ordered like the input.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: e.opts.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	out := make([][]float64, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			return nil, fmt.Errorf("openai embeddings: index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("openai embeddings: missing vector for input %d", i)
		}
	}
	return out, nil
}
