package chatbuffer

import (
	"context"
	"sync"

	"github.com/hupe1980/memorymesh/core"
	"github.com/hupe1980/memorymesh/logging"
)

// DefaultLimit is the number of context snippets requested by Get when the
// caller passes a non-positive limit.
const DefaultLimit = 10

// Options configures a Buffer.
type Options struct {
	// TokenLimit is the context budget advertised to the chat engine.
	TokenLimit int
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Buffer is the chat-buffer adapter. The local history is session scoped and
// guarded by a mutex; backend calls are made outside the lock.
type Buffer struct {
	backend core.Backend
	opts    Options
	logger  logging.Logger

	mu      sync.Mutex
	history []core.Message
}

// New creates a chat buffer over backend.
func New(backend core.Backend, optFns ...func(o *Options)) *Buffer {
	opts := Options{TokenLimit: 3000}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Buffer{backend: backend, opts: opts, logger: logging.OrNoOp(opts.Logger)}
}

// TokenLimit returns the configured token budget.
func (b *Buffer) TokenLimit() int { return b.opts.TokenLimit }

// Get returns backend context for query, or "" when query is empty.
func (b *Buffer) Get(ctx context.Context, query string, limit int) (string, error) {
	if query == "" {
		return "", nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return b.backend.GetContext(ctx, query, limit)
}

// Put stores the pair on the backend, then appends the user and the
// assistant message to the local history, in that order.
func (b *Buffer) Put(ctx context.Context, userText, assistantText string) error {
	if err := b.backend.StoreConversation(ctx, userText, assistantText); err != nil {
		return err
	}
	b.mu.Lock()
	b.history = append(b.history,
		core.Message{Role: core.RoleUser, Content: userText},
		core.Message{Role: core.RoleAssistant, Content: assistantText},
	)
	b.mu.Unlock()
	return nil
}

// GetAll returns a copy of the local history.
func (b *Buffer) GetAll() []core.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]core.Message, len(b.history))
	copy(out, b.history)
	return out
}

// Reset clears the local history. Backend records are kept.
func (b *Buffer) Reset() {
	b.mu.Lock()
	b.history = nil
	b.mu.Unlock()
}

// SetAll replaces the local history wholesale and then stores every
// (user, assistant) pair found at even / odd positions. Positions whose
// roles do not line up are skipped, as is a trailing unpaired message.
func (b *Buffer) SetAll(ctx context.Context, messages []core.Message) error {
	b.mu.Lock()
	b.history = append([]core.Message(nil), messages...)
	b.mu.Unlock()

	stored := 0
	for i := 0; i+1 < len(messages); i += 2 {
		user, assistant := messages[i], messages[i+1]
		if user.Role != core.RoleUser || assistant.Role != core.RoleAssistant {
			continue
		}
		if err := b.backend.StoreConversation(ctx, user.Content, assistant.Content); err != nil {
			return err
		}
		stored++
	}
	b.logger.Debug("Replaced chat history", "messages", len(messages), "pairs_stored", stored)
	return nil
}

// appendMessage appends a single message to the local history.
func (b *Buffer) appendMessage(msg core.Message) {
	b.mu.Lock()
	b.history = append(b.history, msg)
	b.mu.Unlock()
}

// lastMessage returns the most recently buffered message.
func (b *Buffer) lastMessage() (core.Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.history) == 0 {
		return core.Message{}, false
	}
	return b.history[len(b.history)-1], true
}

// completePending stores the pending user message with its reply and
// appends the reply to the history.
func (b *Buffer) completePending(ctx context.Context, user, reply string) error {
	if err := b.backend.StoreConversation(ctx, user, reply); err != nil {
		return err
	}
	b.appendMessage(core.Message{Role: core.RoleAssistant, Content: reply})
	return nil
}
