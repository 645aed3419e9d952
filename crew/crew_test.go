package crew

import (
	"context"
	"sync"
	"testing"

	"github.com/hupe1980/memorymesh/core"
	"github.com/hupe1980/memorymesh/internal/testutil"
	"github.com/hupe1980/memorymesh/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestForAgent_Memoized(t *testing.T) {
	c := New(testutil.NewMockBackend(), "crew-1")

	a1 := c.ForAgent("a")
	a2 := c.ForAgent("a")
	b := c.ForAgent("b")

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.Equal(t, "a", a1.AgentID())
	assert.Equal(t, "crew-1", a1.CrewID())
}

func TestForAgent_ConcurrentCallsShareHandle(t *testing.T) {
	c := New(testutil.NewMockBackend(), "crew-1")
	handles := make([]*AgentMemory, 16)
	var wg sync.WaitGroup
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i] = c.ForAgent("writer")
		}(i)
	}
	wg.Wait()
	for _, h := range handles {
		assert.Same(t, handles[0], h)
	}
}

func TestStoreShared_TagsMetadataWithoutMutatingInput(t *testing.T) {
	backend := testutil.NewMockBackend()
	want := map[string]any{"topic": "deadline", "shared": true, "crew_id": "crew-1"}
	backend.On("StoreGroupMemory", mock.Anything, "crew-1", "due friday", want).
		Return(core.MemoryRecord{ID: "m1", GroupID: "crew-1"}, nil).Once()
	c := New(backend, "crew-1")

	input := map[string]any{"topic": "deadline"}
	rec, err := c.StoreShared(context.Background(), "due friday", input)
	require.NoError(t, err)
	assert.Equal(t, "m1", rec.ID)
	assert.Equal(t, map[string]any{"topic": "deadline"}, input)
	backend.AssertExpectations(t)
}

func TestStoreShared_NilMetadata(t *testing.T) {
	backend := testutil.NewMockBackend()
	backend.On("StoreGroupMemory", mock.Anything, "crew-1", "x", map[string]any{"shared": true, "crew_id": "crew-1"}).
		Return(core.MemoryRecord{}, nil).Once()

	_, err := New(backend, "crew-1").StoreShared(context.Background(), "x", nil)
	require.NoError(t, err)
	backend.AssertExpectations(t)
}

func TestDefaultLimits(t *testing.T) {
	backend := testutil.NewMockBackend()
	backend.On("SearchGroupMemories", mock.Anything, "crew-1", "q", 10).Return(core.SearchResult{}, nil)
	backend.On("GetGroupContext", mock.Anything, "crew-1", 50).Return("ctx", nil)
	backend.On("SearchAgentMemories", mock.Anything, "a", "q", 10).Return(core.SearchResult{}, nil)
	backend.On("GetAgentMemories", mock.Anything, "a", 100).Return([]core.MemoryRecord{}, nil)
	c := New(backend, "crew-1")
	ctx := context.Background()

	_, err := c.SearchShared(ctx, "q", 0)
	require.NoError(t, err)
	got, err := c.CrewContext(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "ctx", got)

	a := c.ForAgent("a")
	_, err = a.Search(ctx, "q", 0)
	require.NoError(t, err)
	_, err = a.All(ctx, 0)
	require.NoError(t, err)
	_, err = a.SearchCrew(ctx, "q", 0)
	require.NoError(t, err)

	backend.AssertExpectations(t)
	backend.AssertNumberOfCalls(t, "SearchGroupMemories", 2)
}

func TestAgentMemory_StoreIsAgentScoped(t *testing.T) {
	backend := testutil.NewMockBackend()
	backend.On("StoreAgentMemory", mock.Anything, "writer", "draft", map[string]any{"v": 1}).
		Return(core.MemoryRecord{ID: "r1", AgentID: "writer"}, nil).Once()

	rec, err := New(backend, "crew-1").ForAgent("writer").Store(context.Background(), "draft", map[string]any{"v": 1})
	require.NoError(t, err)
	assert.Equal(t, "writer", rec.AgentID)
	backend.AssertNotCalled(t, "StoreGroupMemory", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCrew_EndToEndWithInMemoryStore(t *testing.T) {
	ctx := context.Background()
	c := New(memory.NewInMemoryStore("crew-1"), "crew-1")
	researcher := c.ForAgent("researcher")
	writer := c.ForAgent("writer")

	_, err := researcher.Store(ctx, "private lead on pricing", nil)
	require.NoError(t, err)
	_, err = c.StoreShared(ctx, "launch date is friday", nil)
	require.NoError(t, err)

	own, err := writer.Search(ctx, "pricing", 10)
	require.NoError(t, err)
	assert.Empty(t, own.Facts, "agent memories must stay agent scoped")

	shared, err := writer.SearchCrew(ctx, "friday", 10)
	require.NoError(t, err)
	require.Len(t, shared.Facts, 1)
	assert.Equal(t, "launch date is friday", shared.Facts[0].String())
	assert.Equal(t, true, shared.Facts[0].Fields["metadata"].(map[string]any)["shared"])

	crewCtx, err := c.CrewContext(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "launch date is friday", crewCtx)
}
