package types

// Sender identifies who wrote a transcript message.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderSystem Sender = "system"
)

// MessageTypeMCQ marks a system message that carries multiple-choice options.
const MessageTypeMCQ = "mcq"

// ChatMessage is one entry of the candidate's dialogue transcript.
type ChatMessage struct {
	Sender  Sender   `json:"sender"`
	Text    string   `json:"text"`
	Type    string   `json:"type,omitempty"`
	Options []string `json:"options,omitempty"`
}

// Clone returns a copy that shares no memory with m.
func (m ChatMessage) Clone() ChatMessage {
	out := m
	if m.Options != nil {
		out.Options = append([]string(nil), m.Options...)
	}
	return out
}

// FileMeta is the persisted description of an uploaded file. Raw contents are never persisted.
type FileMeta struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
