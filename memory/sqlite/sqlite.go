// Package sqlite provides a durable core.Backend persisted in SQLite via the
// pure Go modernc.org/sqlite driver. Candidate rows are loaded per scope and
// ranked with the same logic as memory.InMemoryStore.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/memorymesh/core"
	"github.com/hupe1980/memorymesh/logging"
	"github.com/hupe1980/memorymesh/memory"

	_ "modernc.org/sqlite"
)

var _ core.Backend = (*Store)(nil)

// Options configures the SQLite backend.
type Options struct {
	Embedder memory.Embedder
	Logger   logging.Logger
	Now      func() time.Time
}

// Store implements core.Backend on top of a single SQLite database. Rows
// are scoped by user id so several users can share one file.
type Store struct {
	db     *sql.DB
	userID string
	opts   Options
}

// New opens (or creates) the database at path for userID. The schema is
// created if it doesn't exist and parent directories are created if needed.
func New(path, userID string, optFns ...func(o *Options)) (*Store, error) {
	opts := Options{Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Logger = logging.OrNoOp(opts.Logger)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &Store{db: db, userID: userID, opts: opts}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	opts.Logger.Info("SQLite memory store initialized", "path", path, "user_id", userID)
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS memories (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			content TEXT NOT NULL,
			metadata_json TEXT,
			embedding_json TEXT,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_memories_scope
			ON memories(user_id, kind, owner_id);
	`)
	return err
}

// GetContext joins the contents of the best matching memories of any scope.
func (s *Store) GetContext(ctx context.Context, query string, limit int) (string, error) {
	scored, err := s.rank(ctx, query, limit, "", "")
	if err != nil {
		return "", err
	}
	return memory.JoinScored(scored), nil
}

// StoreConversation appends one conversation turn.
func (s *Store) StoreConversation(ctx context.Context, human, ai string) error {
	_, err := s.insert(ctx, memory.KindConversation, s.userID, memory.ConversationContent(human, ai), map[string]any{"type": "conversation"})
	return err
}

// Clear deletes every row owned by the store's user.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE user_id = ?`, s.userID); err != nil {
		return fmt.Errorf("clearing memories: %w", err)
	}
	return nil
}

// StoreAgentMemory appends a memory owned by agentID.
func (s *Store) StoreAgentMemory(ctx context.Context, agentID, content string, metadata map[string]any) (core.MemoryRecord, error) {
	return s.insert(ctx, memory.KindAgent, agentID, content, metadata)
}

// SearchAgentMemories ranks the memories owned by agentID.
func (s *Store) SearchAgentMemories(ctx context.Context, agentID, query string, limit int) (core.SearchResult, error) {
	return s.search(ctx, query, limit, memory.KindAgent, agentID)
}

// GetAgentMemories returns the latest limit memories owned by agentID.
func (s *Store) GetAgentMemories(ctx context.Context, agentID string, limit int) ([]core.MemoryRecord, error) {
	rows, err := s.load(ctx, memory.KindAgent, agentID)
	if err != nil {
		return nil, err
	}
	latest := memory.Latest(rows, limit)
	out := make([]core.MemoryRecord, 0, len(latest))
	for _, m := range latest {
		out = append(out, m.Record())
	}
	return out, nil
}

// StoreGroupMemory appends a memory shared by groupID.
func (s *Store) StoreGroupMemory(ctx context.Context, groupID, content string, metadata map[string]any) (core.MemoryRecord, error) {
	return s.insert(ctx, memory.KindGroup, groupID, content, metadata)
}

// SearchGroupMemories ranks the memories shared by groupID.
func (s *Store) SearchGroupMemories(ctx context.Context, groupID, query string, limit int) (core.SearchResult, error) {
	return s.search(ctx, query, limit, memory.KindGroup, groupID)
}

// GetGroupContext joins the latest limit memories shared by groupID.
func (s *Store) GetGroupContext(ctx context.Context, groupID string, limit int) (string, error) {
	rows, err := s.load(ctx, memory.KindGroup, groupID)
	if err != nil {
		return "", err
	}
	return memory.JoinContents(memory.Latest(rows, limit)), nil
}

// Search ranks every memory owned by the store's user.
func (s *Store) Search(ctx context.Context, query string, limit int) (core.SearchResult, error) {
	return s.search(ctx, query, limit, "", "")
}

func (s *Store) insert(ctx context.Context, kind memory.Kind, ownerID, content string, metadata map[string]any) (_ core.MemoryRecord, err error) {
	start := time.Now()
	defer func() { logging.LogBackendCall(s.opts.Logger, "insert", time.Since(start), err, "kind", string(kind)) }()

	m := memory.StoredMemory{
		ID:        uuid.NewString(),
		Kind:      kind,
		OwnerID:   ownerID,
		Content:   content,
		Metadata:  memory.CopyMetadata(metadata),
		CreatedAt: s.opts.Now().UTC(),
	}
	if s.opts.Embedder != nil {
		vecs, err := s.opts.Embedder.Embed(ctx, []string{content})
		if err != nil {
			return core.MemoryRecord{}, err
		}
		if len(vecs) > 0 {
			m.Embedding = vecs[0]
		}
	}

	mdJSON, err := json.Marshal(m.Metadata)
	if err != nil {
		return core.MemoryRecord{}, fmt.Errorf("encoding metadata: %w", err)
	}
	var embJSON sql.NullString
	if m.Embedding != nil {
		data, err := json.Marshal(m.Embedding)
		if err != nil {
			return core.MemoryRecord{}, fmt.Errorf("encoding embedding: %w", err)
		}
		embJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memories (id, user_id, kind, owner_id, content, metadata_json, embedding_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, s.userID, string(m.Kind), m.OwnerID, m.Content, string(mdJSON), embJSON, m.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return core.MemoryRecord{}, fmt.Errorf("inserting memory: %w", err)
	}
	return m.Record(), nil
}

func (s *Store) search(ctx context.Context, query string, limit int, kind memory.Kind, ownerID string) (core.SearchResult, error) {
	scored, err := s.rank(ctx, query, limit, kind, ownerID)
	if err != nil {
		return core.SearchResult{}, err
	}
	return memory.Facts(scored), nil
}

func (s *Store) rank(ctx context.Context, query string, limit int, kind memory.Kind, ownerID string) ([]memory.ScoredMemory, error) {
	rows, err := s.load(ctx, kind, ownerID)
	if err != nil {
		return nil, err
	}
	return memory.Rank(ctx, s.opts.Embedder, query, rows, limit)
}

// load returns the user's rows in insertion order. An empty kind loads every
// scope.
func (s *Store) load(ctx context.Context, kind memory.Kind, ownerID string) (_ []memory.StoredMemory, err error) {
	start := time.Now()
	defer func() { logging.LogBackendCall(s.opts.Logger, "load", time.Since(start), err, "kind", string(kind)) }()

	q := `SELECT id, kind, owner_id, content, metadata_json, embedding_json, created_at
		FROM memories WHERE user_id = ?`
	args := []any{s.userID}
	if kind != "" {
		q += ` AND kind = ? AND owner_id = ?`
		args = append(args, string(kind), ownerID)
	}
	q += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying memories: %w", err)
	}
	defer rows.Close()

	var out []memory.StoredMemory
	for rows.Next() {
		var (
			m         memory.StoredMemory
			kindStr   string
			mdJSON    sql.NullString
			embJSON   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&m.ID, &kindStr, &m.OwnerID, &m.Content, &mdJSON, &embJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning memory: %w", err)
		}
		m.Kind = memory.Kind(kindStr)
		if mdJSON.Valid && mdJSON.String != "" {
			if err := json.Unmarshal([]byte(mdJSON.String), &m.Metadata); err != nil {
				return nil, fmt.Errorf("decoding metadata for %s: %w", m.ID, err)
			}
		}
		if embJSON.Valid {
			if err := json.Unmarshal([]byte(embJSON.String), &m.Embedding); err != nil {
				return nil, fmt.Errorf("decoding embedding for %s: %w", m.ID, err)
			}
		}
		if m.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at for %s: %w", m.ID, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
