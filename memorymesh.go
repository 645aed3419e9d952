// Package memorymesh provides a high-level façade that wires one shared memory
// backend into the framework adapters. Most applications interact with this
// package by:
//  1. Creating a MemoryMesh via New() (hosted service) or NewFromConfig()
//  2. Asking it for the adapter their framework expects (ConversationMemory,
//     ChatBuffer, Crew, MessageHook)
//  3. Handing the adapter (or its capability wrapper) to the framework
//
// Every adapter returned by a MemoryMesh forwards to the same backend
// instance. Adapters have no dependencies on each other.
package memorymesh

import (
	"fmt"
	"io"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/memorymesh/agenthook"
	"github.com/hupe1980/memorymesh/chatbuffer"
	"github.com/hupe1980/memorymesh/client"
	"github.com/hupe1980/memorymesh/config"
	"github.com/hupe1980/memorymesh/conversation"
	"github.com/hupe1980/memorymesh/core"
	"github.com/hupe1980/memorymesh/crew"
	"github.com/hupe1980/memorymesh/logging"
	"github.com/hupe1980/memorymesh/memory"
	memopenai "github.com/hupe1980/memorymesh/memory/openai"
	"github.com/hupe1980/memorymesh/memory/sqlite"
)

// Options configures the MemoryMesh instance.
type Options struct {
	// APIURL overrides the hosted service endpoint.
	APIURL string
	// HTTPClient is used by the hosted service client.
	HTTPClient *http.Client
	// Backend replaces the hosted service client entirely (for example a
	// memory.InMemoryStore in tests). userID and apiKey are then unused.
	Backend core.Backend
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// MemoryMesh is the façade aggregating the shared backend and adapter defaults.
type MemoryMesh struct {
	backend core.Backend
	logger  logging.Logger
	cfg     *config.Config
}

// New creates a MemoryMesh backed by the hosted service for userID. The
// identifier is the user, session or crew the memories belong to.
func New(userID, apiKey string, optFns ...func(o *Options)) (*MemoryMesh, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := logging.OrNoOp(opts.Logger)

	backend := opts.Backend
	if backend == nil {
		c, err := client.New(userID, apiKey, func(o *client.Options) {
			if opts.APIURL != "" {
				o.APIURL = opts.APIURL
			}
			o.HTTPClient = opts.HTTPClient
			o.Logger = logger
		})
		if err != nil {
			return nil, err
		}
		backend = c
	}
	return &MemoryMesh{backend: backend, logger: logger}, nil
}

// NewFromConfig builds the backend selected by cfg and applies cfg's adapter
// defaults to every adapter created afterwards. Unset fields are defaulted.
func NewFromConfig(cfg *config.Config) (*MemoryMesh, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	logger := cfg.Logger()

	var embedder memory.Embedder
	if cfg.Embeddings.Provider == "openai" {
		embedder = newOpenAIEmbedder(cfg.Embeddings)
	}

	var backend core.Backend
	switch cfg.Backend.Driver {
	case config.DriverHTTP:
		if embedder != nil {
			logger.Warn("Embeddings are ignored by the http backend", "provider", cfg.Embeddings.Provider)
		}
		c, err := client.New(cfg.Backend.UserID, cfg.Backend.APIKey, func(o *client.Options) {
			if cfg.Backend.APIURL != "" {
				o.APIURL = cfg.Backend.APIURL
			}
			o.Logger = logger.WithComponent("client")
		})
		if err != nil {
			return nil, err
		}
		backend = c
	case config.DriverMemory:
		backend = memory.NewInMemoryStore(cfg.Backend.UserID, memory.WithEmbedder(embedder))
	case config.DriverSQLite:
		s, err := sqlite.New(cfg.Backend.Path, cfg.Backend.UserID, func(o *sqlite.Options) {
			o.Embedder = embedder
			o.Logger = logger.WithComponent("sqlite")
		})
		if err != nil {
			return nil, err
		}
		backend = s
	default:
		return nil, fmt.Errorf("%w %q", config.ErrUnknownDriver, cfg.Backend.Driver)
	}

	return &MemoryMesh{backend: backend, logger: logger, cfg: cfg}, nil
}

func newOpenAIEmbedder(cfg config.EmbeddingsConfig) *memopenai.Embedder {
	var reqOpts []option.RequestOption
	if cfg.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	oc := openai.NewClient(reqOpts...)
	return memopenai.NewEmbedderFromClient(&oc, func(o *memopenai.Options) {
		if cfg.Model != "" {
			o.Model = openai.EmbeddingModel(cfg.Model)
		}
	})
}

// Backend returns the shared backend.
func (m *MemoryMesh) Backend() core.Backend { return m.backend }

// Close releases backend resources (SQLite handles); a no-op otherwise.
func (m *MemoryMesh) Close() error {
	if c, ok := m.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ConversationMemory returns a conversation adapter over the shared backend.
func (m *MemoryMesh) ConversationMemory(optFns ...func(o *conversation.Options)) *conversation.Memory {
	fns := []func(o *conversation.Options){func(o *conversation.Options) {
		o.Logger = m.logger
		if m.cfg != nil {
			o.MemoryKey = m.cfg.Conversation.MemoryKey
			o.InputKey = m.cfg.Conversation.InputKey
			o.OutputKey = m.cfg.Conversation.OutputKey
			o.ReturnMessages = *m.cfg.Conversation.ReturnMessages
		}
	}}
	return conversation.New(m.backend, append(fns, optFns...)...)
}

// ChatBuffer returns a chat buffer adapter over the shared backend.
func (m *MemoryMesh) ChatBuffer(optFns ...func(o *chatbuffer.Options)) *chatbuffer.Buffer {
	fns := []func(o *chatbuffer.Options){func(o *chatbuffer.Options) {
		o.Logger = m.logger
		if m.cfg != nil {
			o.TokenLimit = m.cfg.ChatBuffer.TokenLimit
		}
	}}
	return chatbuffer.New(m.backend, append(fns, optFns...)...)
}

// Crew returns a crew adapter for crewID over the shared backend.
func (m *MemoryMesh) Crew(crewID string) *crew.Crew {
	return crew.New(m.backend, crewID, func(o *crew.Options) { o.Logger = m.logger })
}

// MessageHook returns an agent message hook for sessionID over the shared backend.
func (m *MemoryMesh) MessageHook(sessionID string, optFns ...func(o *agenthook.Options)) *agenthook.Hook {
	fns := []func(o *agenthook.Options){func(o *agenthook.Options) {
		o.Logger = m.logger
		if m.cfg != nil {
			o.TrackEscalations = *m.cfg.AgentHook.TrackEscalations
		}
	}}
	return agenthook.New(m.backend, sessionID, append(fns, optFns...)...)
}

// NewConversationMemory creates a conversation memory on the hosted service
// for userID.
func NewConversationMemory(userID, apiKey string, optFns ...func(o *Options)) (*conversation.Memory, error) {
	m, err := New(userID, apiKey, optFns...)
	if err != nil {
		return nil, err
	}
	return m.ConversationMemory(), nil
}

// NewChatBuffer creates a chat buffer on the hosted service for userID.
func NewChatBuffer(userID, apiKey string, optFns ...func(o *Options)) (*chatbuffer.Buffer, error) {
	m, err := New(userID, apiKey, optFns...)
	if err != nil {
		return nil, err
	}
	return m.ChatBuffer(), nil
}

// NewCrew creates a crew whose hosted memory is owned by crewID.
func NewCrew(crewID, apiKey string, optFns ...func(o *Options)) (*crew.Crew, error) {
	m, err := New(crewID, apiKey, optFns...)
	if err != nil {
		return nil, err
	}
	return m.Crew(crewID), nil
}

// NewMessageHook creates a message hook whose hosted memory is owned by
// sessionID, so session-wide searches never see other sessions.
func NewMessageHook(sessionID, apiKey string, optFns ...func(o *Options)) (*agenthook.Hook, error) {
	m, err := New(sessionID, apiKey, optFns...)
	if err != nil {
		return nil, err
	}
	return m.MessageHook(sessionID), nil
}
