package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/memorymesh/core"
)

// Options configures local backends.
type Options struct {
	// Embedder switches ranking to cosine similarity (optional).
	Embedder Embedder
	// Now returns the creation timestamp for new records (defaults to time.Now).
	Now func() time.Time
}

// InMemoryStore is a naive process‑local core.Backend. It offers:
//  1. Conversation turn storage
//  2. Agent scoped and group scoped memories
//  3. Ranked search across any scope (see Rank)
//
// Concurrency: protected by RWMutex.
// Records are kept in insertion order so ranking ties are deterministic.
// Suitable for tests, demos and local development; use the client package
// for the hosted service or memory/sqlite for local persistence.
type InMemoryStore struct {
	mu      sync.RWMutex
	userID  string
	opts    Options
	records []StoredMemory
}

// NewInMemoryStore creates a new in-memory backend owned by userID.
func NewInMemoryStore(userID string, optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &InMemoryStore{userID: userID, opts: opts}
}

// WithEmbedder sets the embedder used for semantic ranking.
func WithEmbedder(e Embedder) func(o *Options) {
	return func(o *Options) { o.Embedder = e }
}

// UserID returns the owner of every record held by the store.
func (m *InMemoryStore) UserID() string { return m.userID }

// GetContext joins the contents of the best matching memories of any scope.
func (m *InMemoryStore) GetContext(ctx context.Context, query string, limit int) (string, error) {
	scored, err := m.rank(ctx, query, limit, func(StoredMemory) bool { return true })
	if err != nil {
		return "", err
	}
	return JoinScored(scored), nil
}

// StoreConversation appends one conversation turn.
func (m *InMemoryStore) StoreConversation(ctx context.Context, human, ai string) error {
	_, err := m.store(ctx, KindConversation, m.userID, ConversationContent(human, ai), map[string]any{"type": "conversation"})
	return err
}

// Clear drops every stored record.
func (m *InMemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}

// StoreAgentMemory appends a memory owned by agentID.
func (m *InMemoryStore) StoreAgentMemory(ctx context.Context, agentID, content string, metadata map[string]any) (core.MemoryRecord, error) {
	return m.store(ctx, KindAgent, agentID, content, metadata)
}

// SearchAgentMemories ranks the memories owned by agentID.
func (m *InMemoryStore) SearchAgentMemories(ctx context.Context, agentID, query string, limit int) (core.SearchResult, error) {
	return m.search(ctx, query, limit, scoped(KindAgent, agentID))
}

// GetAgentMemories returns the latest limit memories owned by agentID.
func (m *InMemoryStore) GetAgentMemories(_ context.Context, agentID string, limit int) ([]core.MemoryRecord, error) {
	latest := Latest(m.filter(scoped(KindAgent, agentID)), limit)
	out := make([]core.MemoryRecord, 0, len(latest))
	for _, s := range latest {
		out = append(out, s.Record())
	}
	return out, nil
}

// StoreGroupMemory appends a memory shared by groupID.
func (m *InMemoryStore) StoreGroupMemory(ctx context.Context, groupID, content string, metadata map[string]any) (core.MemoryRecord, error) {
	return m.store(ctx, KindGroup, groupID, content, metadata)
}

// SearchGroupMemories ranks the memories shared by groupID.
func (m *InMemoryStore) SearchGroupMemories(ctx context.Context, groupID, query string, limit int) (core.SearchResult, error) {
	return m.search(ctx, query, limit, scoped(KindGroup, groupID))
}

// GetGroupContext joins the latest limit memories shared by groupID.
func (m *InMemoryStore) GetGroupContext(_ context.Context, groupID string, limit int) (string, error) {
	return JoinContents(Latest(m.filter(scoped(KindGroup, groupID)), limit)), nil
}

// Search ranks every stored memory.
func (m *InMemoryStore) Search(ctx context.Context, query string, limit int) (core.SearchResult, error) {
	return m.search(ctx, query, limit, func(StoredMemory) bool { return true })
}

func (m *InMemoryStore) store(ctx context.Context, kind Kind, ownerID, content string, metadata map[string]any) (core.MemoryRecord, error) {
	var embedding []float64
	if m.opts.Embedder != nil {
		vecs, err := m.opts.Embedder.Embed(ctx, []string{content})
		if err != nil {
			return core.MemoryRecord{}, err
		}
		if len(vecs) > 0 {
			embedding = vecs[0]
		}
	}
	stored := StoredMemory{
		ID:        uuid.NewString(),
		Kind:      kind,
		OwnerID:   ownerID,
		Content:   content,
		Metadata:  CopyMetadata(metadata),
		Embedding: embedding,
		CreatedAt: m.opts.Now().UTC(),
	}
	m.mu.Lock()
	m.records = append(m.records, stored)
	m.mu.Unlock()
	return stored.Record(), nil
}

func (m *InMemoryStore) search(ctx context.Context, query string, limit int, keep func(StoredMemory) bool) (core.SearchResult, error) {
	scored, err := m.rank(ctx, query, limit, keep)
	if err != nil {
		return core.SearchResult{}, err
	}
	return Facts(scored), nil
}

func (m *InMemoryStore) rank(ctx context.Context, query string, limit int, keep func(StoredMemory) bool) ([]ScoredMemory, error) {
	return Rank(ctx, m.opts.Embedder, query, m.filter(keep), limit)
}

// filter returns a snapshot of the records accepted by keep.
func (m *InMemoryStore) filter(keep func(StoredMemory) bool) []StoredMemory {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]StoredMemory, 0, len(m.records))
	for _, r := range m.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func scoped(kind Kind, ownerID string) func(StoredMemory) bool {
	return func(m StoredMemory) bool { return m.Kind == kind && m.OwnerID == ownerID }
}
