// Package chunk groups normalized messages into search units: one user turn
// plus the agent activity that answered it.
package chunk

import (
	"strings"
	"time"

	"github.com/kunalbabre/claude-devtools/internal/model"
)

// Step is one semantic unit of agent output inside a chunk. Timestamp is the
// originating message's.
type Step struct {
	Kind      string // "text", "thinking" or "tool"
	Text      string
	MessageID string
	Timestamp time.Time
}

const (
	StepText     = "text"
	StepThinking = "thinking"
	StepTool     = "tool"
)

// Chunk is the unit of search scope: a user message and/or an ordered
// sequence of agent output steps.
type Chunk struct {
	ID    int
	User  *model.Message
	Steps []Step
}

// LastTextStep returns the final output-text step, or nil. Only the final
// rendered answer matters for search relevance.
func (c *Chunk) LastTextStep() *Step {
	for i := len(c.Steps) - 1; i >= 0; i-- {
		if c.Steps[i].Kind == StepText {
			return &c.Steps[i]
		}
	}
	return nil
}

// Build groups messages into chunks. A main-thread, non-meta user message
// with real content opens a chunk; subsequent assistant messages contribute
// steps until the next opener. Agent activity before any user turn lands in
// a headless chunk.
func Build(messages []model.Message) []Chunk {
	var chunks []Chunk
	current := -1

	ensure := func() *Chunk {
		if current < 0 {
			chunks = append(chunks, Chunk{ID: len(chunks)})
			current = len(chunks) - 1
		}
		return &chunks[current]
	}

	for i := range messages {
		m := &messages[i]
		switch m.Kind {
		case model.KindUser:
			if m.IsMeta || m.IsSidechain || len(m.ToolResults) > 0 {
				continue
			}
			if strings.TrimSpace(m.PlainText()) == "" {
				continue
			}
			chunks = append(chunks, Chunk{ID: len(chunks), User: m})
			current = len(chunks) - 1

		case model.KindAssistant:
			if m.IsSidechain {
				continue
			}
			c := ensure()
			if th := m.ThinkingText(); th != "" {
				c.Steps = append(c.Steps, Step{Kind: StepThinking, Text: th, MessageID: m.ID, Timestamp: m.Timestamp})
			}
			for _, tc := range m.ToolCalls {
				c.Steps = append(c.Steps, Step{Kind: StepTool, Text: tc.Name, MessageID: m.ID, Timestamp: m.Timestamp})
			}
			if txt := m.PlainText(); strings.TrimSpace(txt) != "" {
				c.Steps = append(c.Steps, Step{Kind: StepText, Text: txt, MessageID: m.ID, Timestamp: m.Timestamp})
			}
		}
	}
	return chunks
}
