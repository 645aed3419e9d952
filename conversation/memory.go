package conversation

import (
	"context"

	"github.com/hupe1980/memorymesh/core"
	"github.com/hupe1980/memorymesh/logging"
)

// contextLimit is the number of snippets requested per Load.
const contextLimit = 10

// contextPrefix heads the synthetic system message returned in messages mode.
const contextPrefix = "Relevant context:\n"

// Options configures a conversation Memory.
type Options struct {
	// MemoryKey is the key under which loaded memory is returned.
	MemoryKey string
	// InputKey selects the human input in chain inputs.
	InputKey string
	// OutputKey selects the AI output in chain outputs.
	OutputKey string
	// ReturnMessages returns []core.Message instead of a plain string.
	ReturnMessages bool
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Memory is the conversation-memory adapter. It holds no local state: every
// operation forwards to the backend.
type Memory struct {
	backend core.Backend
	opts    Options
	logger  logging.Logger
}

// New creates a conversation memory over backend.
func New(backend core.Backend, optFns ...func(o *Options)) *Memory {
	opts := Options{
		MemoryKey:      "history",
		InputKey:       "input",
		OutputKey:      "output",
		ReturnMessages: true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Memory{backend: backend, opts: opts, logger: logging.OrNoOp(opts.Logger)}
}

// MemoryKey returns the key Load stores its payload under.
func (m *Memory) MemoryKey() string { return m.opts.MemoryKey }

// Load returns relevant backend context for the query found under the input
// key. A missing or empty query yields an empty payload (empty message list or
// empty string) without touching the backend.
func (m *Memory) Load(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	query := stringValue(inputs, m.opts.InputKey)
	if query == "" {
		return map[string]any{m.opts.MemoryKey: m.empty()}, nil
	}

	text, err := m.backend.GetContext(ctx, query, contextLimit)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("Loaded conversation context", "query_len", len(query), "context_len", len(text))

	if m.opts.ReturnMessages {
		return map[string]any{m.opts.MemoryKey: formatAsMessages(text)}, nil
	}
	return map[string]any{m.opts.MemoryKey: text}, nil
}

// Save stores the turn found under the input and output keys. Half a turn
// (either side missing or empty) is skipped.
func (m *Memory) Save(ctx context.Context, inputs, outputs map[string]any) error {
	human := stringValue(inputs, m.opts.InputKey)
	ai := stringValue(outputs, m.opts.OutputKey)
	if human == "" || ai == "" {
		m.logger.Debug("Skipping incomplete conversation turn", "has_input", human != "", "has_output", ai != "")
		return nil
	}
	return m.backend.StoreConversation(ctx, human, ai)
}

// Clear forwards to the backend; there is no local state to reset.
func (m *Memory) Clear(ctx context.Context) error {
	return m.backend.Clear(ctx)
}

func (m *Memory) empty() any {
	if m.opts.ReturnMessages {
		return []core.Message{}
	}
	return ""
}

func formatAsMessages(text string) []core.Message {
	if text == "" {
		return []core.Message{}
	}
	return []core.Message{{Role: core.RoleSystem, Content: contextPrefix + text}}
}

// stringValue returns inputs[key] when it is a string, else "".
func stringValue(inputs map[string]any, key string) string {
	s, _ := inputs[key].(string)
	return s
}
