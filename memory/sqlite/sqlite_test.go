package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, userID string) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "memories.db")
	s, err := New(path, userID)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestStore_AgentMemoriesRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, "crew-1")

	rec, err := s.StoreAgentMemory(ctx, "researcher", "the API ships on friday", map[string]any{"source": "standup"})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "researcher", rec.AgentID)

	_, err = s.StoreAgentMemory(ctx, "researcher", "budget approved", nil)
	require.NoError(t, err)
	_, err = s.StoreAgentMemory(ctx, "writer", "friday newsletter", nil)
	require.NoError(t, err)

	res, err := s.SearchAgentMemories(ctx, "researcher", "friday", 10)
	require.NoError(t, err)
	require.Len(t, res.Facts, 1)
	assert.Equal(t, "the API ships on friday", res.Facts[0].String())
	assert.Equal(t, map[string]any{"source": "standup"}, res.Facts[0].Fields["metadata"])

	all, err := s.GetAgentMemories(ctx, "researcher", 100)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "budget approved", all[1].Content)
}

func TestStore_GroupContextAndSearch(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, "crew-1")
	_, _ = s.StoreGroupMemory(ctx, "crew-1", "first", map[string]any{"shared": true})
	_, _ = s.StoreGroupMemory(ctx, "crew-1", "second", nil)
	_, _ = s.StoreGroupMemory(ctx, "crew-1", "third", nil)

	got, err := s.GetGroupContext(ctx, "crew-1", 2)
	require.NoError(t, err)
	assert.Equal(t, "second\nthird", got)

	res, err := s.SearchGroupMemories(ctx, "crew-1", "first", 10)
	require.NoError(t, err)
	require.Len(t, res.Facts, 1)
}

func TestStore_PersistsAcrossReopenAndScopesUsers(t *testing.T) {
	ctx := context.Background()
	s, path := newTestStore(t, "u1")
	require.NoError(t, s.StoreConversation(ctx, "I like tea", "Noted"))
	require.NoError(t, s.Close())

	reopened, err := New(path, "u1")
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetContext(ctx, "tea", 10)
	require.NoError(t, err)
	assert.Equal(t, "User: I like tea\nAssistant: Noted", got)

	other, err := New(path, "u2")
	require.NoError(t, err)
	defer other.Close()
	res, err := other.Search(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, res.Facts)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, "u1")
	require.NoError(t, s.StoreConversation(ctx, "a", "b"))
	_, _ = s.StoreAgentMemory(ctx, "x", "y", nil)
	require.NoError(t, s.Clear(ctx))

	res, err := s.Search(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, res.Facts)
}

type staticEmbedder map[string][]float64

func (e staticEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = e[t]
	}
	return out, nil
}

func TestStore_EmbeddingsPersisted(t *testing.T) {
	ctx := context.Background()
	emb := staticEmbedder{"dogs": {1, 0}, "taxes": {0, 1}, "puppies": {0.95, 0.05}}
	path := filepath.Join(t.TempDir(), "emb.db")
	s, err := New(path, "u1", func(o *Options) { o.Embedder = emb })
	require.NoError(t, err)
	defer s.Close()

	_, _ = s.StoreAgentMemory(ctx, "a", "taxes", nil)
	_, _ = s.StoreAgentMemory(ctx, "a", "dogs", nil)

	res, err := s.SearchAgentMemories(ctx, "a", "puppies", 1)
	require.NoError(t, err)
	require.Len(t, res.Facts, 1)
	assert.Equal(t, "dogs", res.Facts[0].String())
}
