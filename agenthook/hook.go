package agenthook

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/hupe1980/memorymesh/core"
	"github.com/hupe1980/memorymesh/logging"
)

const (
	// DefaultContextLimit bounds GetContext when limit <= 0.
	DefaultContextLimit = 10
	// DefaultEscalationLimit bounds GetEscalations when limit <= 0.
	DefaultEscalationLimit = 20

	unknownAgent     = "unknown"
	escalationPrefix = "ESCALATION: "
	escalationQuery  = "ESCALATION"
)

// escalationKeywords are matched case-insensitively against message content.
var escalationKeywords = []string{"escalate", "human", "supervisor", "help needed"}

// Entry is one buffered message.
type Entry struct {
	Content  string `json:"content"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
}

// Options configures a Hook.
type Options struct {
	// TrackEscalations stores an extra escalation record for keyword matches.
	TrackEscalations bool
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Hook is the agent-message-hook adapter for one conversation session.
type Hook struct {
	backend   core.Backend
	sessionID string
	opts      Options
	logger    logging.Logger

	mu     sync.Mutex
	buffer []Entry
}

// New creates a hook for sessionID over backend.
func New(backend core.Backend, sessionID string, optFns ...func(o *Options)) *Hook {
	opts := Options{TrackEscalations: true}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Hook{
		backend:   backend,
		sessionID: sessionID,
		opts:      opts,
		logger:    logging.OrNoOp(opts.Logger),
	}
}

// SessionID returns the session every stored record is tagged with.
func (h *Hook) SessionID() string { return h.sessionID }

// RegisterWithAgent installs the interceptor on agent. Agents without a
// receive function are left alone and a warning is logged.
func (h *Hook) RegisterWithAgent(agent core.Conversable) {
	if isNil(agent) {
		h.logger.Warn("Cannot register memory hook with nil agent")
		return
	}
	original := agent.ReceiveFunc()
	if original == nil {
		h.logger.Warn("Agent has no receive function, memory hook not registered", "agent", agent.Name())
		return
	}
	agent.SetReceiveFunc(h.Intercept(nameOf(agent), original))
	h.logger.Debug("Registered memory hook", "agent", agent.Name(), "session_id", h.sessionID)
}

// Intercept returns a ReceiveFunc that records each message addressed to
// receiver and then forwards it unchanged to next, returning next's result.
// A recording failure is returned without calling next.
func (h *Hook) Intercept(receiver string, next core.ReceiveFunc) core.ReceiveFunc {
	return func(ctx context.Context, msg core.AgentMessage, sender core.Named, requestReply, silent bool) error {
		if err := h.record(ctx, msg.Content(), nameOf(sender), receiver); err != nil {
			return err
		}
		return next(ctx, msg, sender, requestReply, silent)
	}
}

// record buffers and stores one message. Empty content is dropped.
func (h *Hook) record(ctx context.Context, content, sender, receiver string) error {
	if content == "" {
		return nil
	}

	h.mu.Lock()
	h.buffer = append(h.buffer, Entry{Content: content, Sender: sender, Receiver: receiver})
	h.mu.Unlock()

	if _, err := h.backend.StoreAgentMemory(ctx, sender, content, map[string]any{
		"receiver":   receiver,
		"session_id": h.sessionID,
		"type":       "message",
	}); err != nil {
		return err
	}

	if !h.opts.TrackEscalations || !IsEscalation(content) {
		return nil
	}
	h.logger.Info("Escalation detected", "from_agent", sender, "to_agent", receiver, "session_id", h.sessionID)
	_, err := h.backend.StoreAgentMemory(ctx, sender, escalationPrefix+content, map[string]any{
		"type":       "escalation",
		"session_id": h.sessionID,
		"from_agent": sender,
		"to_agent":   receiver,
	})
	return err
}

// IsEscalation reports whether content mentions an escalation keyword.
func IsEscalation(content string) bool {
	lc := strings.ToLower(content)
	for _, kw := range escalationKeywords {
		if strings.Contains(lc, kw) {
			return true
		}
	}
	return false
}

// GetContext searches agentID's memories, or the whole session when agentID
// is empty, and joins the rendered facts with newlines. Facts tagged with
// another session are skipped.
func (h *Hook) GetContext(ctx context.Context, query, agentID string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultContextLimit
	}
	var (
		res core.SearchResult
		err error
	)
	if agentID != "" {
		res, err = h.backend.SearchAgentMemories(ctx, agentID, query, limit)
	} else {
		res, err = h.backend.Search(ctx, query, limit)
	}
	if err != nil {
		return "", err
	}
	return core.SearchResult{Facts: h.sessionFacts(res.Facts)}.Join("\n"), nil
}

// GetEscalations returns stored escalation facts of this session.
func (h *Hook) GetEscalations(ctx context.Context, limit int) ([]core.Fact, error) {
	if limit <= 0 {
		limit = DefaultEscalationLimit
	}
	res, err := h.backend.Search(ctx, escalationQuery, limit)
	if err != nil {
		return nil, err
	}
	return h.sessionFacts(res.Facts), nil
}

// sessionFacts keeps facts whose metadata carries this hook's session id.
// Facts without metadata are kept: the backend already scoped the search.
func (h *Hook) sessionFacts(facts []core.Fact) []core.Fact {
	out := make([]core.Fact, 0, len(facts))
	for _, f := range facts {
		md, ok := f.Fields["metadata"].(map[string]any)
		if ok && md["session_id"] != h.sessionID {
			continue
		}
		out = append(out, f)
	}
	return out
}

// GetConversationHistory returns a copy of the message buffer.
func (h *Hook) GetConversationHistory() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, len(h.buffer))
	copy(out, h.buffer)
	return out
}

// ClearSession empties the local buffer. Backend records are never deleted.
func (h *Hook) ClearSession() {
	h.mu.Lock()
	h.buffer = nil
	h.mu.Unlock()
}

func nameOf(n core.Named) string {
	if isNil(n) {
		return unknownAgent
	}
	if name := n.Name(); name != "" {
		return name
	}
	return unknownAgent
}

// isNil reports whether n is nil, including a nil pointer behind the interface.
func isNil(n core.Named) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
