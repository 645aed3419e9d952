package conversation

import (
	"context"

	"github.com/hupe1980/memorymesh/core"
)

var _ core.ChainMemory = (*chainMemory)(nil)

// chainMemory exposes a Memory through the chain memory contract.
type chainMemory struct {
	m *Memory
}

// AsChainMemory wraps the adapter so it can be handed to a conversational chain.
func (m *Memory) AsChainMemory() core.ChainMemory {
	return &chainMemory{m: m}
}

func (c *chainMemory) MemoryVariables() []string { return []string{c.m.opts.MemoryKey} }

func (c *chainMemory) LoadMemoryVariables(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	return c.m.Load(ctx, inputs)
}

func (c *chainMemory) SaveContext(ctx context.Context, inputs, outputs map[string]any) error {
	return c.m.Save(ctx, inputs, outputs)
}

func (c *chainMemory) Clear(ctx context.Context) error { return c.m.Clear(ctx) }
