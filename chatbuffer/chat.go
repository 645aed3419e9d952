package chatbuffer

import (
	"context"

	"github.com/hupe1980/memorymesh/core"
)

var _ core.ChatMemory = (*chatMemory)(nil)

// chatMemory exposes a Buffer through the chat engine memory contract.
type chatMemory struct {
	b *Buffer
}

// AsChatMemory wraps the buffer so it can be handed to a chat engine.
func (b *Buffer) AsChatMemory() core.ChatMemory {
	return &chatMemory{b: b}
}

func (c *chatMemory) Get(ctx context.Context, input string) (string, error) {
	return c.b.Get(ctx, input, DefaultLimit)
}

// Put buffers user messages and stores a pair once the assistant replies.
// An assistant message is dropped unless the last buffered message is a user
// message; system messages are ignored.
func (c *chatMemory) Put(ctx context.Context, msg core.Message) error {
	switch msg.Role {
	case core.RoleUser:
		c.b.appendMessage(msg)
		return nil
	case core.RoleAssistant:
		last, ok := c.b.lastMessage()
		if !ok || last.Role != core.RoleUser {
			c.b.logger.Debug("Dropping assistant message without pending user message")
			return nil
		}
		return c.b.completePending(ctx, last.Content, msg.Content)
	default:
		return nil
	}
}

func (c *chatMemory) Reset() { c.b.Reset() }

func (c *chatMemory) TokenLimit() int { return c.b.TokenLimit() }
