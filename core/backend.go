package core

import "context"

// Backend is the memory service consumed by all adapters. Implementations are
// scoped to a single user (or session / crew) identifier chosen at
// construction time. Every method is a blocking call; errors are returned
// unchanged to the caller and adapters never retry them.
type Backend interface {
	// GetContext returns backend-ranked free text relevant to query.
	GetContext(ctx context.Context, query string, limit int) (string, error)
	// StoreConversation persists one human / AI turn.
	StoreConversation(ctx context.Context, human, ai string) error
	// Clear removes every memory owned by the backend's user.
	Clear(ctx context.Context) error

	StoreAgentMemory(ctx context.Context, agentID, content string, metadata map[string]any) (MemoryRecord, error)
	SearchAgentMemories(ctx context.Context, agentID, query string, limit int) (SearchResult, error)
	GetAgentMemories(ctx context.Context, agentID string, limit int) ([]MemoryRecord, error)

	StoreGroupMemory(ctx context.Context, groupID, content string, metadata map[string]any) (MemoryRecord, error)
	SearchGroupMemories(ctx context.Context, groupID, query string, limit int) (SearchResult, error)
	GetGroupContext(ctx context.Context, groupID string, limit int) (string, error)

	// Search queries every memory owned by the backend's user.
	Search(ctx context.Context, query string, limit int) (SearchResult, error)
}
