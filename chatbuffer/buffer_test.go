package chatbuffer

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/memorymesh/core"
	"github.com/hupe1980/memorymesh/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func user(s string) core.Message { return core.Message{Role: core.RoleUser, Content: s} }
func assistant(s string) core.Message { return core.Message{Role: core.RoleAssistant, Content: s} }

func TestGet(t *testing.T) {
	backend := testutil.NewMockBackend()
	backend.On("GetContext", mock.Anything, "tea", 10).Return("likes tea", nil).Once()
	backend.On("GetContext", mock.Anything, "tea", 3).Return("short", nil).Once()
	b := New(backend)
	ctx := context.Background()

	got, err := b.Get(ctx, "", 10)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	got, err = b.Get(ctx, "tea", 0)
	require.NoError(t, err)
	assert.Equal(t, "likes tea", got)

	got, err = b.Get(ctx, "tea", 3)
	require.NoError(t, err)
	assert.Equal(t, "short", got)
	backend.AssertExpectations(t)
}

func TestPut_AppendsUserThenAssistant(t *testing.T) {
	backend := testutil.NewMockBackend()
	backend.On("StoreConversation", mock.Anything, "hi", "hey").Return(nil).Once()
	b := New(backend)

	require.NoError(t, b.Put(context.Background(), "hi", "hey"))
	assert.Equal(t, []core.Message{user("hi"), assistant("hey")}, b.GetAll())
	backend.AssertExpectations(t)
}

func TestPut_BackendErrorLeavesHistoryUntouched(t *testing.T) {
	boom := errors.New("unauthorized")
	backend := testutil.NewMockBackend()
	backend.On("StoreConversation", mock.Anything, "hi", "hey").Return(boom)
	b := New(backend)

	assert.ErrorIs(t, b.Put(context.Background(), "hi", "hey"), boom)
	assert.Empty(t, b.GetAll())
}

func TestSetAll_StoresAlignedPairsOnly(t *testing.T) {
	backend := testutil.NewMockBackend()
	backend.On("StoreConversation", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	b := New(backend)
	msgs := []core.Message{user("hi"), assistant("hey"), user("bye")}

	require.NoError(t, b.SetAll(context.Background(), msgs))
	backend.AssertNumberOfCalls(t, "StoreConversation", 1)
	backend.AssertCalled(t, "StoreConversation", mock.Anything, "hi", "hey")
	assert.Equal(t, msgs, b.GetAll())
}

func TestSetAll_SkipsMisalignedRoles(t *testing.T) {
	backend := testutil.NewMockBackend()
	backend.On("StoreConversation", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	b := New(backend)
	msgs := []core.Message{
		assistant("welcome"), user("hi"), // misaligned, skipped
		user("question"), assistant("answer"),
		{Role: core.RoleSystem, Content: "sys"}, assistant("x"),
	}

	require.NoError(t, b.SetAll(context.Background(), msgs))
	backend.AssertNumberOfCalls(t, "StoreConversation", 1)
	backend.AssertCalled(t, "StoreConversation", mock.Anything, "question", "answer")
}

func TestSetAll_ReplacesHistoryAndCopiesInput(t *testing.T) {
	backend := testutil.NewMockBackend()
	backend.On("StoreConversation", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	b := New(backend)
	require.NoError(t, b.Put(context.Background(), "old", "older"))

	msgs := []core.Message{user("new")}
	require.NoError(t, b.SetAll(context.Background(), msgs))
	msgs[0].Content = "mutated"
	assert.Equal(t, []core.Message{user("new")}, b.GetAll())
}

func TestReset(t *testing.T) {
	backend := testutil.NewMockBackend()
	backend.On("StoreConversation", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	b := New(backend)
	require.NoError(t, b.Put(context.Background(), "a", "b"))

	b.Reset()
	assert.Empty(t, b.GetAll())
	backend.AssertNotCalled(t, "Clear", mock.Anything)
}

func TestChatMemory_PairsAssistantWithBufferedUser(t *testing.T) {
	backend := testutil.NewMockBackend()
	backend.On("StoreConversation", mock.Anything, "hi", "hello there").Return(nil).Once()
	b := New(backend)
	cm := b.AsChatMemory()
	ctx := context.Background()

	require.NoError(t, cm.Put(ctx, user("hi")))
	backend.AssertNotCalled(t, "StoreConversation", mock.Anything, mock.Anything, mock.Anything)

	require.NoError(t, cm.Put(ctx, assistant("hello there")))
	backend.AssertExpectations(t)
	assert.Equal(t, []core.Message{user("hi"), assistant("hello there")}, b.GetAll())
}

func TestChatMemory_DropsAssistantWithoutPendingUser(t *testing.T) {
	backend := testutil.NewMockBackend()
	backend.On("StoreConversation", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	b := New(backend)
	cm := b.AsChatMemory()
	ctx := context.Background()

	// empty buffer
	require.NoError(t, cm.Put(ctx, assistant("orphan")))
	// last buffered is assistant
	require.NoError(t, b.Put(ctx, "q", "a"))
	require.NoError(t, cm.Put(ctx, assistant("second reply")))
	// system messages are ignored
	require.NoError(t, cm.Put(ctx, core.Message{Role: core.RoleSystem, Content: "sys"}))

	backend.AssertNumberOfCalls(t, "StoreConversation", 1)
	assert.Equal(t, []core.Message{user("q"), assistant("a")}, b.GetAll())
}

func TestChatMemory_GetResetTokenLimit(t *testing.T) {
	backend := testutil.NewMockBackend()
	backend.On("GetContext", mock.Anything, "tea", DefaultLimit).Return("likes tea", nil)
	b := New(backend, func(o *Options) { o.TokenLimit = 1500 })
	cm := b.AsChatMemory()

	got, err := cm.Get(context.Background(), "tea")
	require.NoError(t, err)
	assert.Equal(t, "likes tea", got)
	assert.Equal(t, 1500, cm.TokenLimit())

	require.NoError(t, cm.Put(context.Background(), user("pending")))
	cm.Reset()
	assert.Empty(t, b.GetAll())
}

func TestNew_DefaultTokenLimit(t *testing.T) {
	assert.Equal(t, 3000, New(testutil.NewMockBackend()).TokenLimit())
}
