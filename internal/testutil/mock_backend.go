package testutil

import (
	"context"

	"github.com/hupe1980/memorymesh/core"
	"github.com/stretchr/testify/mock"
)

// Interface compliance (compile-time assertion)
var _ core.Backend = (*MockBackend)(nil)

// MockBackend is a testify mock implementing core.Backend. Configure
// expectations with On(...) and verify them with AssertExpectations or
// AssertNumberOfCalls.
type MockBackend struct {
	mock.Mock
}

// NewMockBackend creates an empty mock backend.
func NewMockBackend() *MockBackend { return &MockBackend{} }

func (m *MockBackend) GetContext(ctx context.Context, query string, limit int) (string, error) {
	args := m.Called(ctx, query, limit)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) StoreConversation(ctx context.Context, human, ai string) error {
	args := m.Called(ctx, human, ai)
	return args.Error(0)
}

func (m *MockBackend) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBackend) StoreAgentMemory(ctx context.Context, agentID, content string, metadata map[string]any) (core.MemoryRecord, error) {
	args := m.Called(ctx, agentID, content, metadata)
	return record(args.Get(0)), args.Error(1)
}

func (m *MockBackend) SearchAgentMemories(ctx context.Context, agentID, query string, limit int) (core.SearchResult, error) {
	args := m.Called(ctx, agentID, query, limit)
	return result(args.Get(0)), args.Error(1)
}

func (m *MockBackend) GetAgentMemories(ctx context.Context, agentID string, limit int) ([]core.MemoryRecord, error) {
	args := m.Called(ctx, agentID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]core.MemoryRecord), args.Error(1)
}

func (m *MockBackend) StoreGroupMemory(ctx context.Context, groupID, content string, metadata map[string]any) (core.MemoryRecord, error) {
	args := m.Called(ctx, groupID, content, metadata)
	return record(args.Get(0)), args.Error(1)
}

func (m *MockBackend) SearchGroupMemories(ctx context.Context, groupID, query string, limit int) (core.SearchResult, error) {
	args := m.Called(ctx, groupID, query, limit)
	return result(args.Get(0)), args.Error(1)
}

func (m *MockBackend) GetGroupContext(ctx context.Context, groupID string, limit int) (string, error) {
	args := m.Called(ctx, groupID, limit)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) Search(ctx context.Context, query string, limit int) (core.SearchResult, error) {
	args := m.Called(ctx, query, limit)
	return result(args.Get(0)), args.Error(1)
}

func record(v any) core.MemoryRecord {
	if v == nil {
		return core.MemoryRecord{}
	}
	return v.(core.MemoryRecord)
}

func result(v any) core.SearchResult {
	if v == nil {
		return core.SearchResult{}
	}
	return v.(core.SearchResult)
}
