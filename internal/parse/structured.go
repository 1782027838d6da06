package parse

import (
	"encoding/json"
	"strings"

	"github.com/kunalbabre/claude-devtools/internal/model"
)

// structuredRecord is the rich event shape: one JSON object per line with a
// stable uuid, an explicit type, and a nested message payload.
type structuredRecord struct {
	Type             string          `json:"type"`
	UUID             string          `json:"uuid"`
	ID               string          `json:"id"`
	ParentUUID       string          `json:"parentUuid"`
	Timestamp        string          `json:"timestamp"`
	SessionID        string          `json:"sessionId"`
	Cwd              string          `json:"cwd"`
	GitBranch        string          `json:"gitBranch"`
	IsSidechain      bool            `json:"isSidechain"`
	IsMeta           bool            `json:"isMeta"`
	IsCompactSummary bool            `json:"isCompactSummary"`
	UserType         string          `json:"userType"`
	Message          json.RawMessage `json:"message"`
	Content          json.RawMessage `json:"content"`   // system / queue-operation
	Summary          string          `json:"summary"`   // type="summary"
	Operation        string          `json:"operation"` // type="queue-operation"
}

type structuredMessage struct {
	Role    string            `json:"role"`
	Model   string            `json:"model"`
	Content json.RawMessage   `json:"content"`
	Usage   *model.TokenUsage `json:"usage"`
}

var structuredKinds = map[string]model.Kind{
	"user":                  model.KindUser,
	"assistant":             model.KindAssistant,
	"system":                model.KindSystem,
	"summary":               model.KindSummary,
	"file-history-snapshot": model.KindFileHistorySnapshot,
	"queue-operation":       model.KindQueueOperation,
}

// parseStructured interprets line as a structured event record. The second
// return reports whether the structured shape applied at all: a stable id
// plus an undotted type claims the line even when the type is unknown, in
// which case the message is nil and the record is silently skipped rather
// than reinterpreted by a laxer format. Dotted type names belong to the
// event interpreter and never claim.
func parseStructured(line []byte) (*model.Message, bool) {
	var rec structuredRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil, false
	}
	id := rec.UUID
	if id == "" {
		id = rec.ID
	}
	if id == "" || rec.Type == "" || strings.Contains(rec.Type, ".") {
		return nil, false
	}
	kind, ok := structuredKinds[rec.Type]
	if !ok {
		return nil, true
	}

	msg := &model.Message{
		ID:               id,
		ParentID:         rec.ParentUUID,
		Kind:             kind,
		Timestamp:        parseTimestamp(rec.Timestamp),
		SessionID:        rec.SessionID,
		CWD:              rec.Cwd,
		GitBranch:        rec.GitBranch,
		IsSidechain:      rec.IsSidechain,
		IsMeta:           rec.IsMeta,
		IsCompactSummary: rec.IsCompactSummary,
		UserType:         rec.UserType,
	}

	switch kind {
	case model.KindUser, model.KindAssistant:
		var m structuredMessage
		if len(rec.Message) > 0 {
			if err := json.Unmarshal(rec.Message, &m); err == nil {
				msg.Role = m.Role
				msg.Model = m.Model
				msg.Usage = m.Usage
				msg.Text, msg.Blocks = decodeContent(m.Content)
			}
		}
		if msg.Role == "" {
			msg.Role = rec.Type
		}
		msg.ToolCalls = model.ExtractToolCalls(msg.Blocks)
		msg.ToolResults = model.ExtractToolResults(msg.Blocks)

	case model.KindSystem:
		msg.Text = rawText(rec.Content)

	case model.KindSummary:
		msg.Text = rec.Summary

	case model.KindQueueOperation:
		msg.Text = rawText(rec.Content)
	}

	return msg, true
}

// contentBlock is the wire shape of one content array element.
type contentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Thinking  string          `json:"thinking"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"`
	IsError   bool            `json:"is_error"`
}

// decodeContent accepts either a plain string or an array of typed blocks.
func decodeContent(raw json.RawMessage) (string, []model.ContentBlock) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var wire []contentBlock
	if err := json.Unmarshal(raw, &wire); err != nil {
		return "", nil
	}
	blocks := make([]model.ContentBlock, 0, len(wire))
	for _, b := range wire {
		cb := model.ContentBlock{
			Type:      b.Type,
			Text:      b.Text,
			Thinking:  b.Thinking,
			ID:        b.ID,
			Name:      b.Name,
			ToolUseID: b.ToolUseID,
			IsError:   b.IsError,
		}
		if len(b.Input) > 0 {
			cb.Input = string(b.Input)
		}
		if len(b.Content) > 0 {
			cb.Content = rawText(b.Content)
		}
		blocks = append(blocks, cb)
	}
	return "", blocks
}

// rawText flattens a string-or-block-array JSON value into plain text.
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var wire []contentBlock
	if err := json.Unmarshal(raw, &wire); err != nil {
		return ""
	}
	var parts []string
	for _, b := range wire {
		if b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}
