package crew

import (
	"context"
	"sync"

	"github.com/hupe1980/memorymesh/core"
	"github.com/hupe1980/memorymesh/logging"
	"github.com/hupe1980/memorymesh/memory"
)

// Default limits applied when callers pass a non-positive limit.
const (
	DefaultSearchLimit  = 10
	DefaultContextLimit = 50
	DefaultListLimit    = 100
)

// Options configures a Crew.
type Options struct {
	Logger logging.Logger
}

// Crew is the crew-shared-memory adapter.
type Crew struct {
	backend core.Backend
	crewID  string
	logger  logging.Logger

	mu     sync.Mutex
	agents map[string]*AgentMemory
}

// New creates a crew adapter for crewID over backend.
func New(backend core.Backend, crewID string, optFns ...func(o *Options)) *Crew {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Crew{
		backend: backend,
		crewID:  crewID,
		logger:  logging.OrNoOp(opts.Logger),
		agents:  make(map[string]*AgentMemory),
	}
}

// ID returns the crew identifier.
func (c *Crew) ID() string { return c.crewID }

// ForAgent returns the memory handle for agentID. Handles are memoized: every
// call with the same id returns the same instance.
func (c *Crew) ForAgent(agentID string) *AgentMemory {
	c.mu.Lock()
	defer c.mu.Unlock()
	if am, ok := c.agents[agentID]; ok {
		return am
	}
	am := &AgentMemory{crew: c, agentID: agentID}
	c.agents[agentID] = am
	c.logger.Debug("Created agent memory", "crew_id", c.crewID, "agent_id", agentID)
	return am
}

// StoreShared stores content in the crew's shared memory. The metadata is
// copied and tagged with shared=true and the crew id; the caller's map is
// left untouched.
func (c *Crew) StoreShared(ctx context.Context, content string, metadata map[string]any) (core.MemoryRecord, error) {
	md := memory.CopyMetadata(metadata)
	md["shared"] = true
	md["crew_id"] = c.crewID
	return c.backend.StoreGroupMemory(ctx, c.crewID, content, md)
}

// SearchShared searches the crew's shared memory.
func (c *Crew) SearchShared(ctx context.Context, query string, limit int) (core.SearchResult, error) {
	return c.backend.SearchGroupMemories(ctx, c.crewID, query, orDefault(limit, DefaultSearchLimit))
}

// CrewContext returns backend context built from the crew's shared memory.
func (c *Crew) CrewContext(ctx context.Context, limit int) (string, error) {
	return c.backend.GetGroupContext(ctx, c.crewID, orDefault(limit, DefaultContextLimit))
}

func orDefault(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}
