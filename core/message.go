package core

import "fmt"

// Conversation roles understood by chat adapters.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a role tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// String implements fmt.Stringer.
func (m Message) String() string { return fmt.Sprintf("%s: %s", m.Role, m.Content) }

// AgentMessage is a message exchanged between conversable agents. It is either
// plain text or a structured field map; use IsStructured to branch on the form.
type AgentMessage struct {
	Text   string         // Plain text form
	Fields map[string]any // Structured form (nil for plain text)
}

// TextMessage creates a plain text agent message.
func TextMessage(text string) AgentMessage { return AgentMessage{Text: text} }

// StructuredMessage creates a structured agent message.
func StructuredMessage(fields map[string]any) AgentMessage {
	if fields == nil {
		fields = map[string]any{}
	}
	return AgentMessage{Fields: fields}
}

// IsStructured reports whether the message carries a field map.
func (m AgentMessage) IsStructured() bool { return m.Fields != nil }

// Content returns the text of a plain message or the "content" field of a
// structured one. Missing or non-string content yields "".
func (m AgentMessage) Content() string {
	if !m.IsStructured() {
		return m.Text
	}
	s, _ := m.Fields["content"].(string)
	return s
}
