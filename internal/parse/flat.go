package parse

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kunalbabre/claude-devtools/internal/model"
)

// parseFlat interprets line as a flat role/content record: anything exposing
// a normalizable role plus extractable text. Returns nil (unsupported) when
// either is missing.
func parseFlat(line []byte) *model.Message {
	doc := gjson.ParseBytes(line)
	if !doc.IsObject() {
		return nil
	}

	role := normalizeRole(firstString(doc, "role", "author"))
	if role == "" {
		return nil
	}

	text := firstString(doc, "content", "message.content", "text", "value")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	kind := model.KindUser
	if role == "assistant" {
		kind = model.KindAssistant
	}

	ts := timestampField(doc, "timestamp", "created_at", "createdAt", "ts")

	return &model.Message{
		ID:        deterministicID("flat", doc.Raw),
		Kind:      kind,
		Role:      role,
		Timestamp: ts,
		Text:      text,
	}
}

// normalizeRole maps source role aliases onto user/assistant; anything else
// is unrecognized.
func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "user", "human":
		return "user"
	case "assistant", "ai", "claude":
		return "assistant"
	}
	return ""
}

// firstString returns the first non-empty string value among paths. Array
// values are flattened the same way structured content arrays are.
func firstString(doc gjson.Result, paths ...string) string {
	for _, p := range paths {
		v := doc.Get(p)
		switch {
		case v.Type == gjson.String && v.Str != "":
			return v.Str
		case v.IsArray():
			var parts []string
			for _, el := range v.Array() {
				if el.Type == gjson.String {
					parts = append(parts, el.Str)
				} else if t := el.Get("text"); t.Type == gjson.String && t.Str != "" {
					parts = append(parts, t.Str)
				}
			}
			if s := strings.Join(parts, "\n"); s != "" {
				return s
			}
		}
	}
	return ""
}
