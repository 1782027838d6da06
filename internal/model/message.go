package model

import "time"

// Kind classifies a normalized record. Conversational kinds (user, assistant,
// system) carry content and optionally usage; the rest are bookkeeping records
// that never carry usage.
type Kind string

const (
	KindUser                Kind = "user"
	KindAssistant           Kind = "assistant"
	KindSystem              Kind = "system"
	KindSummary             Kind = "summary"
	KindFileHistorySnapshot Kind = "file-history-snapshot"
	KindQueueOperation      Kind = "queue-operation"
)

// ContentBlock is one element of a structured message body.
type ContentBlock struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	Thinking  string `json:"thinking,omitempty"`
	ID        string `json:"id,omitempty"`        // tool_use id
	Name      string `json:"name,omitempty"`      // tool name
	Input     string `json:"input,omitempty"`     // tool input, raw JSON
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"` // tool_result payload text
	IsError   bool   `json:"is_error,omitempty"`
}

const (
	BlockText       = "text"
	BlockThinking   = "thinking"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// TokenUsage is a snapshot of the four independent token counters reported
// alongside an assistant turn. Absent fields default to zero.
type TokenUsage struct {
	Input         int64 `json:"input_tokens"`
	Output        int64 `json:"output_tokens"`
	CacheRead     int64 `json:"cache_read_input_tokens"`
	CacheCreation int64 `json:"cache_creation_input_tokens"`
}

// Message is the unified record every source format normalizes into.
// Content is never nil: a message without content has Text == "" and an
// empty Blocks slice. ParentID is a back-reference only; an empty string
// means no parent.
type Message struct {
	ID        string
	ParentID  string
	Kind      Kind
	Timestamp time.Time
	Role      string
	Text      string
	Blocks    []ContentBlock
	Usage     *TokenUsage
	Model     string

	// Provenance.
	CWD              string
	GitBranch        string
	SessionID        string
	IsSidechain      bool
	IsMeta           bool
	IsCompactSummary bool
	UserType         string

	// Derived tool lists, populated at parse time.
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// PlainText returns the message's displayable text: the flat text if set,
// otherwise the concatenation of its text blocks.
func (m *Message) PlainText() string {
	if m.Text != "" {
		return m.Text
	}
	out := ""
	for _, b := range m.Blocks {
		if b.Type == BlockText && b.Text != "" {
			if out != "" {
				out += "\n"
			}
			out += b.Text
		}
	}
	return out
}

// ThinkingText returns the concatenated thinking blocks, if any.
func (m *Message) ThinkingText() string {
	out := ""
	for _, b := range m.Blocks {
		if b.Type == BlockThinking && b.Thinking != "" {
			if out != "" {
				out += "\n"
			}
			out += b.Thinking
		}
	}
	return out
}

// SessionMetrics is the whole-session reduction of a message sequence.
// Immutable once computed.
type SessionMetrics struct {
	Duration      time.Duration
	Input         int64
	Output        int64
	CacheRead     int64
	CacheCreation int64
	Total         int64
	MessageCount  int
	Cost          *float64
}
