package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hupe1980/memorymesh/core"
)

// Kind tags the owner scope of a stored memory.
type Kind string

const (
	// KindConversation marks a stored human / AI turn.
	KindConversation Kind = "conversation"
	// KindAgent marks a memory owned by a single agent.
	KindAgent Kind = "agent"
	// KindGroup marks a memory shared by a group (crew).
	KindGroup Kind = "group"
)

// Embedder turns texts into embedding vectors, one per input, in order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// StoredMemory is the internal representation persisted by local backends.
type StoredMemory struct {
	ID        string
	Kind      Kind
	OwnerID   string
	Content   string
	Metadata  map[string]any
	Embedding []float64
	CreatedAt time.Time
}

// Record converts the stored memory into the public record shape.
func (m StoredMemory) Record() core.MemoryRecord {
	rec := core.MemoryRecord{ID: m.ID, Content: m.Content, Metadata: CopyMetadata(m.Metadata), CreatedAt: m.CreatedAt}
	switch m.Kind {
	case KindAgent:
		rec.AgentID = m.OwnerID
	case KindGroup:
		rec.GroupID = m.OwnerID
	}
	return rec
}

// ScoredMemory is a ranked stored memory.
type ScoredMemory struct {
	StoredMemory
	Score float64
}

// Fact renders the scored memory as a structured fact.
func (m ScoredMemory) Fact() core.Fact {
	return core.StructuredFact(map[string]any{
		"id":       m.ID,
		"text":     m.Content,
		"score":    m.Score,
		"metadata": CopyMetadata(m.Metadata),
	})
}

// Rank orders memories by relevance to query and truncates the result at
// limit (limit <= 0 keeps everything). Without an embedder the score is the
// fraction of query terms contained in the content (case-insensitive); an
// empty query matches everything with score 1.
//
// With an embedder, records stored with an embedding are scored by cosine
// similarity and records without one by term fraction. Semantic matches rank
// ahead of term matches and each group is sorted on its own. A non-positive
// cosine similarity counts as no match, like a zero term score. Ties keep
// input order.
func Rank(ctx context.Context, embedder Embedder, query string, memories []StoredMemory, limit int) ([]ScoredMemory, error) {
	var queryVec []float64
	if embedder != nil && strings.TrimSpace(query) != "" {
		vecs, err := embedder.Embed(ctx, []string{query})
		if err != nil {
			return nil, fmt.Errorf("embedding query: %w", err)
		}
		if len(vecs) != 1 {
			return nil, fmt.Errorf("embedding query: expected 1 vector, got %d", len(vecs))
		}
		queryVec = vecs[0]
	}

	terms := strings.Fields(strings.ToLower(query))
	var semantic, lexical []ScoredMemory
	for _, m := range memories {
		if queryVec != nil && len(m.Embedding) > 0 {
			if score := cosine(queryVec, m.Embedding); score > 0 {
				semantic = append(semantic, ScoredMemory{StoredMemory: m, Score: score})
			}
			continue
		}
		if score := TermScore(terms, m.Content); score > 0 {
			lexical = append(lexical, ScoredMemory{StoredMemory: m, Score: score})
		}
	}

	scored := append(sortByScore(semantic), sortByScore(lexical)...)
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func sortByScore(scored []ScoredMemory) []ScoredMemory {
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

// TermScore returns the fraction of lower-cased terms found in content.
func TermScore(terms []string, content string) float64 {
	if len(terms) == 0 {
		return 1
	}
	lc := strings.ToLower(content)
	matched := 0
	for _, t := range terms {
		if strings.Contains(lc, t) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Facts converts ranked memories into a search result.
func Facts(scored []ScoredMemory) core.SearchResult {
	res := core.SearchResult{Facts: make([]core.Fact, 0, len(scored))}
	for _, s := range scored {
		res.Facts = append(res.Facts, s.Fact())
	}
	return res
}

// JoinContents joins memory contents with newlines.
func JoinContents(memories []StoredMemory) string {
	lines := make([]string, 0, len(memories))
	for _, m := range memories {
		lines = append(lines, m.Content)
	}
	return strings.Join(lines, "\n")
}

// JoinScored joins ranked memory contents with newlines.
func JoinScored(scored []ScoredMemory) string {
	lines := make([]string, 0, len(scored))
	for _, s := range scored {
		lines = append(lines, s.Content)
	}
	return strings.Join(lines, "\n")
}

// Latest returns the last n memories in insertion order (n <= 0 keeps all).
func Latest(memories []StoredMemory, n int) []StoredMemory {
	if n > 0 && len(memories) > n {
		return memories[len(memories)-n:]
	}
	return memories
}

// ConversationContent formats a stored conversation turn.
func ConversationContent(human, ai string) string {
	return fmt.Sprintf("User: %s\nAssistant: %s", human, ai)
}

// CopyMetadata returns a shallow copy of md (never nil).
func CopyMetadata(md map[string]any) map[string]any {
	out := make(map[string]any, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}
