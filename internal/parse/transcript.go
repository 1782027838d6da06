package parse

import (
	"github.com/tidwall/gjson"

	"github.com/kunalbabre/claude-devtools/internal/model"
)

// ParseDocument dispatches on the shape of a whole JSON document: a
// top-level array of message records, an object wrapping a messages array,
// a request/response transcript, or a single message-shaped object.
// Returns nil when nothing is recognizable.
func ParseDocument(data []byte) []model.Message {
	if !gjson.ValidBytes(data) {
		return nil
	}
	doc := gjson.ParseBytes(data)

	switch {
	case doc.IsArray():
		return parseMessageArray(doc)

	case doc.IsObject():
		if msgs := doc.Get("messages"); msgs.IsArray() {
			return parseMessageArray(msgs)
		}
		if reqs := doc.Get("requests"); reqs.IsArray() {
			return parseRequestPairs(reqs)
		}
		if turns := doc.Get("turns"); turns.IsArray() {
			return parseRequestPairs(turns)
		}
		// Single message-shaped object.
		if msg := ParseRecord([]byte(doc.Raw)); msg != nil {
			return []model.Message{*msg}
		}
	}
	return nil
}

func parseMessageArray(arr gjson.Result) []model.Message {
	var (
		messages      []model.Message
		sawStructured bool
	)
	for _, el := range arr.Array() {
		line := []byte(el.Raw)
		msg, claimed := parseStructured(line)
		if claimed {
			if msg == nil {
				continue
			}
			sawStructured = true
		} else if msg = parseFlat(line); msg == nil {
			msg = parseEvent(line)
		}
		if msg == nil {
			continue
		}
		messages = append(messages, *msg)
	}
	if !sawStructured && len(messages) > 0 {
		chainByTimestamp(messages)
	}
	consolidate(messages, sawStructured)
	return messages
}

// parseRequestPairs treats each entry as a request/response pair that may
// yield zero, one, or two messages. Turns are timestamped independently,
// then globally sorted and parent-chained.
func parseRequestPairs(arr gjson.Result) []model.Message {
	var messages []model.Message
	for _, el := range arr.Array() {
		userText := firstString(el, "prompt", "input", "query", "message", "request.message")
		assistantText := firstString(el, "response", "answer", "output", "responseMessage.content")

		userTS := timestampField(el, "timestamp", "created_at", "createdAt", "requestTimestamp")
		assistantTS := timestampField(el, "responseTimestamp", "completed_at", "completedAt", "updatedAt")
		if assistantTS.IsZero() {
			assistantTS = userTS
		}

		if userText != "" {
			messages = append(messages, model.Message{
				ID:        deterministicID("transcript-user", el.Raw),
				Kind:      model.KindUser,
				Role:      "user",
				Timestamp: userTS,
				Text:      userText,
			})
		}
		if assistantText != "" {
			messages = append(messages, model.Message{
				ID:        deterministicID("transcript-assistant", el.Raw),
				Kind:      model.KindAssistant,
				Role:      "assistant",
				Timestamp: assistantTS,
				Text:      assistantText,
			})
		}
	}
	if len(messages) > 0 {
		chainByTimestamp(messages)
	}
	return messages
}
