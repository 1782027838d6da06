package parse

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kunalbabre/claude-devtools/internal/model"
)

// Synthesized text for lifecycle events. sessionStartedText doubles as the
// marker the consolidation pass keys on.
const (
	sessionStartedText  = "Session started"
	sessionShutdownText = "Session shutdown"
)

// parseEvent interprets line as a dotted event-name record: a type field
// containing a namespace separator, paired with a data object. Returns nil
// when the shape doesn't apply or the event carries no usable text.
func parseEvent(line []byte) *model.Message {
	doc := gjson.ParseBytes(line)
	if !doc.IsObject() {
		return nil
	}
	typ := doc.Get("type").Str
	if !strings.Contains(typ, ".") {
		return nil
	}
	data := doc.Get("data")
	ts := timestampField(doc, "timestamp", "ts", "time")
	if ts.IsZero() {
		ts = timestampField(data, "timestamp", "ts")
	}

	mk := func(kind model.Kind, role, text string) *model.Message {
		return &model.Message{
			ID:        deterministicID("event", doc.Raw),
			Kind:      kind,
			Role:      role,
			Timestamp: ts,
			Text:      text,
		}
	}

	switch typ {
	case "session.start":
		return mk(model.KindSystem, "system", sessionStartedText)

	case "session.shutdown", "session.end":
		return mk(model.KindSystem, "system", sessionShutdownText)

	case "session.error":
		text := firstString(data, "message", "error", "text")
		if text == "" {
			text = "Session error"
		}
		return mk(model.KindSystem, "system", text)

	case "user.message":
		text := firstString(data, "content", "text", "message")
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return mk(model.KindUser, "user", text)

	case "assistant.message", "assistant.message_delta":
		// Deltas are synthesized as standalone messages; a full
		// assistant.message for the same turn is not suppressed here.
		// Consumers deduplicate.
		text := firstString(data, "content", "text", "message")
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return mk(model.KindAssistant, "assistant", text)

	case "tool.execution_start":
		name := firstString(data, "toolName", "tool", "name")
		if name == "" {
			return nil
		}
		msg := mk(model.KindAssistant, "assistant", "")
		input := data.Get("input")
		if !input.Exists() {
			input = data.Get("args")
		}
		msg.Blocks = []model.ContentBlock{{
			Type:  model.BlockToolUse,
			ID:    firstString(data, "toolId", "id"),
			Name:  name,
			Input: input.Raw,
		}}
		msg.ToolCalls = model.ExtractToolCalls(msg.Blocks)
		return msg

	case "tool.execution_complete":
		isErr := data.Get("isError").Bool() || data.Get("status").Str == "error"
		msg := mk(model.KindUser, "user", "")
		msg.Blocks = []model.ContentBlock{{
			Type:      model.BlockToolResult,
			ToolUseID: firstString(data, "toolId", "id"),
			Content:   firstString(data, "result", "output", "content"),
			IsError:   isErr,
		}}
		msg.ToolResults = model.ExtractToolResults(msg.Blocks)
		return msg
	}

	// Generic rule: any other dotted name with extractable text, classified
	// by the namespace prefix.
	text := firstString(data, "content", "text", "message", "prompt")
	if strings.TrimSpace(text) == "" {
		text = firstString(doc, "content", "text", "message", "prompt")
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	prefix := typ[:strings.Index(typ, ".")]
	switch prefix {
	case "user":
		return mk(model.KindUser, "user", text)
	case "assistant", "agent":
		return mk(model.KindAssistant, "assistant", text)
	}
	return mk(model.KindSystem, "system", text)
}
