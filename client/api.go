package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hupe1980/memorymesh/core"
)

type searchRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
	Limit  int    `json:"limit"`
}

type storeRequest struct {
	UserID   string         `json:"user_id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type conversationRequest struct {
	UserID           string `json:"user_id"`
	UserMessage      string `json:"user_message"`
	AssistantMessage string `json:"assistant_message"`
}

type contextResponse struct {
	Context string `json:"context"`
}

// GetContext implements core.Backend.
func (c *Client) GetContext(ctx context.Context, query string, limit int) (string, error) {
	var out contextResponse
	err := c.do(ctx, "get_context", http.MethodPost, "/memories/context", nil,
		searchRequest{UserID: c.userID, Query: query, Limit: limit}, &out)
	return out.Context, err
}

// StoreConversation implements core.Backend.
func (c *Client) StoreConversation(ctx context.Context, human, ai string) error {
	return c.do(ctx, "store_conversation", http.MethodPost, "/conversations", nil,
		conversationRequest{UserID: c.userID, UserMessage: human, AssistantMessage: ai}, nil)
}

// Clear implements core.Backend.
func (c *Client) Clear(ctx context.Context) error {
	return c.do(ctx, "clear", http.MethodDelete, "/memories", c.userQuery(0), nil, nil)
}

// StoreAgentMemory implements core.Backend.
func (c *Client) StoreAgentMemory(ctx context.Context, agentID, content string, metadata map[string]any) (core.MemoryRecord, error) {
	var out core.MemoryRecord
	err := c.do(ctx, "store_agent_memory", http.MethodPost, "/agents/"+url.PathEscape(agentID)+"/memories", nil,
		storeRequest{UserID: c.userID, Content: content, Metadata: metadata}, &out)
	return out, err
}

// SearchAgentMemories implements core.Backend.
func (c *Client) SearchAgentMemories(ctx context.Context, agentID, query string, limit int) (core.SearchResult, error) {
	var out core.SearchResult
	err := c.do(ctx, "search_agent_memories", http.MethodPost, "/agents/"+url.PathEscape(agentID)+"/memories/search", nil,
		searchRequest{UserID: c.userID, Query: query, Limit: limit}, &out)
	return out, err
}

// GetAgentMemories implements core.Backend.
func (c *Client) GetAgentMemories(ctx context.Context, agentID string, limit int) ([]core.MemoryRecord, error) {
	var out []core.MemoryRecord
	err := c.do(ctx, "get_agent_memories", http.MethodGet, "/agents/"+url.PathEscape(agentID)+"/memories", c.userQuery(limit), nil, &out)
	return out, err
}

// StoreGroupMemory implements core.Backend.
func (c *Client) StoreGroupMemory(ctx context.Context, groupID, content string, metadata map[string]any) (core.MemoryRecord, error) {
	var out core.MemoryRecord
	err := c.do(ctx, "store_group_memory", http.MethodPost, "/groups/"+url.PathEscape(groupID)+"/memories", nil,
		storeRequest{UserID: c.userID, Content: content, Metadata: metadata}, &out)
	return out, err
}

// SearchGroupMemories implements core.Backend.
func (c *Client) SearchGroupMemories(ctx context.Context, groupID, query string, limit int) (core.SearchResult, error) {
	var out core.SearchResult
	err := c.do(ctx, "search_group_memories", http.MethodPost, "/groups/"+url.PathEscape(groupID)+"/memories/search", nil,
		searchRequest{UserID: c.userID, Query: query, Limit: limit}, &out)
	return out, err
}

// GetGroupContext implements core.Backend.
func (c *Client) GetGroupContext(ctx context.Context, groupID string, limit int) (string, error) {
	var out contextResponse
	err := c.do(ctx, "get_group_context", http.MethodGet, "/groups/"+url.PathEscape(groupID)+"/context", c.userQuery(limit), nil, &out)
	return out.Context, err
}

// Search implements core.Backend.
func (c *Client) Search(ctx context.Context, query string, limit int) (core.SearchResult, error) {
	var out core.SearchResult
	err := c.do(ctx, "search", http.MethodPost, "/memories/search", nil,
		searchRequest{UserID: c.userID, Query: query, Limit: limit}, &out)
	return out, err
}

// userQuery builds the user_id (and optional limit) query string.
func (c *Client) userQuery(limit int) url.Values {
	q := url.Values{"user_id": {c.userID}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}
