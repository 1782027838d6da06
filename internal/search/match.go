package search

import (
	"strings"
	"time"

	"github.com/kunalbabre/claude-devtools/internal/chunk"
	"github.com/kunalbabre/claude-devtools/internal/model"
	"github.com/kunalbabre/claude-devtools/internal/sanitize"
)

// contextChars bounds the context window extracted around each match.
const contextChars = 50

// Item classification inside a chunk.
const (
	ItemUser  = "user"
	ItemAgent = "agent"
)

// Result is one query occurrence. Results are independently constructible;
// nothing relates one to another.
type Result struct {
	ProjectID        string
	SessionID        string
	SessionTitle     string
	MatchedText      string
	Context          string
	Kind             model.Kind
	Timestamp        time.Time
	ChunkID          int
	ItemType         string
	MatchIndex       int
	MatchStartOffset int
	MessageID        string
}

// MatchChunk finds query occurrences in one chunk. Only the user turn and
// the agent's final output-text step are searched; intermediate steps never
// make it into results. Matching is case-insensitive substring matching over
// sanitized text.
func MatchChunk(c *chunk.Chunk, query string) []Result {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	var results []Result

	if c.User != nil {
		text := sanitize.Clean(c.User.PlainText())
		for _, m := range findMatches(text, query) {
			results = append(results, Result{
				MatchedText:      m.matched,
				Context:          m.window,
				Kind:             c.User.Kind,
				Timestamp:        c.User.Timestamp,
				ChunkID:          c.ID,
				ItemType:         ItemUser,
				MatchIndex:       m.index,
				MatchStartOffset: m.offset,
				MessageID:        c.User.ID,
			})
		}
	}

	if step := c.LastTextStep(); step != nil {
		text := sanitize.Clean(step.Text)
		for _, m := range findMatches(text, query) {
			results = append(results, Result{
				MatchedText:      m.matched,
				Context:          m.window,
				Kind:             model.KindAssistant,
				Timestamp:        step.Timestamp,
				ChunkID:          c.ID,
				ItemType:         ItemAgent,
				MatchIndex:       m.index,
				MatchStartOffset: m.offset,
				MessageID:        step.MessageID,
			})
		}
	}
	return results
}

type match struct {
	matched string
	window  string
	index   int
	offset  int // rune offset of the match start
}

// findMatches locates every case-insensitive occurrence of query in text and
// extracts a ±contextChars window around each, clamped to content bounds
// with ellipsis markers when clamped. The scan runs entirely in rune space:
// case folding can change a rune's encoded byte length, so offsets found in
// a lowered string must never index the original bytes.
func findMatches(text, query string) []match {
	if text == "" || query == "" {
		return nil
	}
	runes := []rune(text)
	lower := []rune(strings.ToLower(text))
	qLower := []rune(strings.ToLower(query))

	var out []match
	from := 0
	for {
		idx := runeIndex(lower[from:], qLower)
		if idx < 0 {
			break
		}
		start := from + idx
		end := start + len(qLower)

		winStart := start - contextChars
		if winStart < 0 {
			winStart = 0
		}
		winEnd := end + contextChars
		if winEnd > len(runes) {
			winEnd = len(runes)
		}
		window := string(runes[winStart:winEnd])
		if winStart > 0 {
			window = "..." + window
		}
		if winEnd < len(runes) {
			window += "..."
		}

		out = append(out, match{
			matched: string(runes[start:end]),
			window:  window,
			index:   len(out),
			offset:  start,
		})
		from = end
	}
	return out
}

// runeIndex is strings.Index over rune slices.
func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		j := 0
		for j < len(needle) && haystack[i+j] == needle[j] {
			j++
		}
		if j == len(needle) {
			return i
		}
	}
	return -1
}
