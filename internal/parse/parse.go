// Package parse turns raw session-log bytes into the normalized message
// model. Three incompatible source shapes are understood: a structured event
// format with native uuid/parent chaining, a flat role/content format, and a
// dotted event-name format. Whole-document JSON transcripts are handled as a
// fallback when a file yields no line-delimited records.
package parse

import (
	"bufio"
	"log"
	"path"
	"sort"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kunalbabre/claude-devtools/internal/fs"
	"github.com/kunalbabre/claude-devtools/internal/model"
)

const maxLineSize = 10 * 1024 * 1024 // 10MB

// ParseRecord attempts the known interpretations in priority order and
// returns the first success, or nil when no shape applies. Unsupported is
// not an error: malformed and unrecognized records are skipped by callers.
// A record the structured shape claims never falls through to the laxer
// interpreters, even when its type is unknown.
func ParseRecord(line []byte) *model.Message {
	if msg, claimed := parseStructured(line); claimed {
		return msg
	}
	if msg := parseFlat(line); msg != nil {
		return msg
	}
	return parseEvent(line)
}

// ParseSessionFile reads one session file through the provider and returns
// its normalized messages. A missing file is an empty result, not an error.
func ParseSessionFile(p fs.Provider, filePath string) ([]model.Message, error) {
	if !p.Exists(filePath) {
		return nil, nil
	}

	// Files that signal a single JSON document skip the line loop.
	if strings.EqualFold(path.Ext(filePath), ".json") {
		return parseWholeDocument(p, filePath), nil
	}

	f, err := p.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		messages      []model.Message
		sawStructured bool
		sawAnyLine    bool
		lineNum       int
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		sawAnyLine = true

		if !gjson.ValidBytes(line) {
			log.Printf("parse: %s:%d: skipping malformed line", filePath, lineNum)
			continue
		}

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
	if err := scanner.Err(); err != nil {
		log.Printf("parse: reading %s: %v", filePath, err)
	}

	// Every line failed: the file may be a whole-document transcript.
	if len(messages) == 0 && sawAnyLine {
		return parseWholeDocument(p, filePath), nil
	}

	// Flat and dotted line streams have no native chaining.
	if !sawStructured && len(messages) > 0 {
		chainByTimestamp(messages)
	}
	consolidate(messages, sawStructured)
	return messages, nil
}

// parseWholeDocument loads the entire file and dispatches on document shape.
// Parse failure is logged and yields zero messages.
func parseWholeDocument(p fs.Provider, filePath string) []model.Message {
	data, err := p.ReadFile(filePath)
	if err != nil {
		log.Printf("parse: read %s: %v", filePath, err)
		return nil
	}
	messages := ParseDocument(data)
	if messages == nil && len(strings.TrimSpace(string(data))) > 0 {
		log.Printf("parse: %s: unrecognized document shape", filePath)
	}
	return messages
}

// chainByTimestamp links a batch of synthesized messages into the same
// parent-chain shape the structured format has natively: each message's
// parent is the message immediately preceding it in timestamp order.
func chainByTimestamp(messages []model.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		ti, tj := messages[i].Timestamp, messages[j].Timestamp
		if ti.IsZero() || tj.IsZero() {
			return false // keep file order for unstamped records
		}
		return ti.Before(tj)
	})
	for i := range messages {
		if i == 0 {
			messages[i].ParentID = ""
			continue
		}
		messages[i].ParentID = messages[i-1].ID
	}
}

// consolidate is the post-pass over a fully parsed file, applied only when
// no record carried native chaining: a synthesized session-start marker then
// means the stream was dotted-event-sourced, so the parent chain is
// recomputed. Structured files keep their native links even when a system
// record happens to carry the same text. Message deltas are deliberately not
// merged into their full counterparts here (see DESIGN.md).
func consolidate(messages []model.Message, sawStructured bool) {
	if sawStructured {
		return
	}
	for i := range messages {
		if messages[i].Kind == model.KindSystem && messages[i].Text == sessionStartedText {
			chainByTimestamp(messages)
			return
		}
	}
}
