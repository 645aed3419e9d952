package crew

import (
	"context"

	"github.com/hupe1980/memorymesh/core"
)

// AgentMemory is the memory handle of a single crew member. Writes are agent
// scoped; SearchCrew gives read access to the crew's shared memory.
type AgentMemory struct {
	crew    *Crew
	agentID string
}

// AgentID returns the owning agent's identifier.
func (a *AgentMemory) AgentID() string { return a.agentID }

// CrewID returns the identifier of the crew the agent belongs to.
func (a *AgentMemory) CrewID() string { return a.crew.crewID }

// Store stores content in the agent's own memory.
func (a *AgentMemory) Store(ctx context.Context, content string, metadata map[string]any) (core.MemoryRecord, error) {
	return a.crew.backend.StoreAgentMemory(ctx, a.agentID, content, metadata)
}

// Search searches the agent's own memory.
func (a *AgentMemory) Search(ctx context.Context, query string, limit int) (core.SearchResult, error) {
	return a.crew.backend.SearchAgentMemories(ctx, a.agentID, query, orDefault(limit, DefaultSearchLimit))
}

// All returns up to limit of the agent's memories.
func (a *AgentMemory) All(ctx context.Context, limit int) ([]core.MemoryRecord, error) {
	return a.crew.backend.GetAgentMemories(ctx, a.agentID, orDefault(limit, DefaultListLimit))
}

// SearchCrew searches the crew's shared memory.
func (a *AgentMemory) SearchCrew(ctx context.Context, query string, limit int) (core.SearchResult, error) {
	return a.crew.SearchShared(ctx, query, limit)
}
