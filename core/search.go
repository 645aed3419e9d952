package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Fact is a single retrieved item. Backends return either plain strings or
// structured objects; Fact keeps track of which form was received so callers
// can render it the same way regardless of the backend.
type Fact struct {
	Text       string         // Plain text, or the "text" field of a structured fact
	Structured bool           // True when the fact was a JSON object
	Fields     map[string]any // Raw object fields (structured facts only)
}

// TextFact builds a plain text fact.
func TextFact(text string) Fact { return Fact{Text: text} }

// StructuredFact builds a structured fact from its fields. The "text" field,
// when it is a string, becomes the rendered text.
func StructuredFact(fields map[string]any) Fact {
	f := Fact{Structured: true, Fields: fields}
	if s, ok := fields["text"].(string); ok {
		f.Text = s
	}
	return f
}

// String renders the fact: the "text" field for structured facts and the
// direct string form otherwise.
func (f Fact) String() string { return f.Text }

// UnmarshalJSON accepts a JSON string, object or other scalar.
func (f *Fact) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = Fact{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = TextFact(s)
	case '{':
		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			return err
		}
		*f = StructuredFact(fields)
	default:
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = TextFact(strings.TrimSpace(fmt.Sprint(v)))
	}
	return nil
}

// MarshalJSON writes structured facts as objects and plain facts as strings.
func (f Fact) MarshalJSON() ([]byte, error) {
	if f.Structured {
		return json.Marshal(f.Fields)
	}
	return json.Marshal(f.Text)
}

// SearchResult is the envelope returned by backend search operations.
type SearchResult struct {
	Facts []Fact `json:"facts"`
}

// Join renders every fact and joins them with sep. An empty result yields "".
func (r SearchResult) Join(sep string) string {
	if len(r.Facts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(r.Facts))
	for _, f := range r.Facts {
		lines = append(lines, f.String())
	}
	return strings.Join(lines, sep)
}

// MemoryRecord is a single stored memory owned by the backend.
type MemoryRecord struct {
	ID        string         `json:"id"`
	AgentID   string         `json:"agent_id,omitempty"`
	GroupID   string         `json:"group_id,omitempty"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
