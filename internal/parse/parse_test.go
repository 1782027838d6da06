package parse

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunalbabre/claude-devtools/internal/fs"
	"github.com/kunalbabre/claude-devtools/internal/model"
)

func TestParseRecordStructured(t *testing.T) {
	line := []byte(`{"type":"user","uuid":"u1","parentUuid":"p0","timestamp":"2025-01-15T10:30:00Z","cwd":"/repo","gitBranch":"main","message":{"role":"user","content":"hello"}}`)

	msg := ParseRecord(line)
	require.NotNil(t, msg)
	assert.Equal(t, "u1", msg.ID)
	assert.Equal(t, "p0", msg.ParentID)
	assert.Equal(t, model.KindUser, msg.Kind)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, "/repo", msg.CWD)
	assert.Equal(t, "main", msg.GitBranch)
	assert.Equal(t, time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC), msg.Timestamp.UTC())
}

func TestParseRecordStructuredBlocks(t *testing.T) {
	line := []byte(`{"type":"assistant","uuid":"a1","timestamp":"2025-01-15T10:30:05Z","message":{"role":"assistant","model":"claude-3","usage":{"input_tokens":100,"output_tokens":50,"cache_read_input_tokens":20,"cache_creation_input_tokens":10},"content":[{"type":"thinking","thinking":"hmm"},{"type":"text","text":"answer"},{"type":"tool_use","id":"t1","name":"Bash","input":{"command":"ls"}}]}}`)

	msg := ParseRecord(line)
	require.NotNil(t, msg)
	assert.Equal(t, model.KindAssistant, msg.Kind)
	assert.Equal(t, "claude-3", msg.Model)
	require.NotNil(t, msg.Usage)
	assert.Equal(t, int64(100), msg.Usage.Input)
	assert.Equal(t, int64(10), msg.Usage.CacheCreation)
	assert.Equal(t, "answer", msg.PlainText())
	assert.Equal(t, "hmm", msg.ThinkingText())
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "Bash", msg.ToolCalls[0].Name)
	assert.Equal(t, "t1", msg.ToolCalls[0].ID)
}

func TestParseRecordUnsupported(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"unknown structured type", `{"type":"wat","uuid":"x1"}`},
		{"unknown structured type with flat fields", `{"type":"wat","uuid":"x2","role":"user","content":"hello"}`},
		{"flat without role", `{"content":"hello"}`},
		{"flat with unknown role", `{"role":"narrator","content":"hello"}`},
		{"flat without content", `{"role":"user"}`},
		{"empty dotted text", `{"type":"user.message","data":{"content":"   "}}`},
		{"not an object", `[1,2,3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, ParseRecord([]byte(tt.line)))
		})
	}
}

func TestParseRecordFlat(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantKind model.Kind
		wantText string
	}{
		{"human alias", `{"role":"human","content":"hi there"}`, model.KindUser, "hi there"},
		{"ai alias", `{"author":"ai","text":"sure"}`, model.KindAssistant, "sure"},
		{"nested message content", `{"role":"assistant","message":{"content":"nested"}}`, model.KindAssistant, "nested"},
		{"value field", `{"role":"user","value":"from value"}`, model.KindUser, "from value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := ParseRecord([]byte(tt.line))
			require.NotNil(t, msg)
			assert.Equal(t, tt.wantKind, msg.Kind)
			assert.Equal(t, tt.wantText, msg.Text)
			assert.NotEmpty(t, msg.ID)
			assert.Empty(t, msg.ParentID, "synthesized messages carry no parent at parse time")
		})
	}
}

func TestParseRecordFlatDeterministicID(t *testing.T) {
	line := []byte(`{"role":"human","content":"same bytes"}`)
	a := ParseRecord(line)
	b := ParseRecord(line)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, a.ID, b.ID)

	c := ParseRecord([]byte(`{"role":"human","content":"different bytes"}`))
	require.NotNil(t, c)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestParseRecordDottedEvents(t *testing.T) {
	t.Run("tool execution start", func(t *testing.T) {
		msg := ParseRecord([]byte(`{"type":"tool.execution_start","timestamp":"2025-01-15T10:00:00Z","data":{"toolName":"Bash","toolId":"t9","input":{"command":"ls"}}}`))
		require.NotNil(t, msg)
		assert.Equal(t, model.KindAssistant, msg.Kind)
		require.Len(t, msg.ToolCalls, 1)
		assert.Equal(t, "Bash", msg.ToolCalls[0].Name)
	})

	t.Run("tool execution complete error flag", func(t *testing.T) {
		msg := ParseRecord([]byte(`{"type":"tool.execution_complete","data":{"toolId":"t9","status":"error","result":"boom"}}`))
		require.NotNil(t, msg)
		assert.Equal(t, model.KindUser, msg.Kind)
		require.Len(t, msg.ToolResults, 1)
		assert.True(t, msg.ToolResults[0].IsError)
		assert.Equal(t, "boom", msg.ToolResults[0].Content)
	})

	t.Run("session lifecycle synthesizes despite empty data", func(t *testing.T) {
		start := ParseRecord([]byte(`{"type":"session.start","data":{}}`))
		require.NotNil(t, start)
		assert.Equal(t, model.KindSystem, start.Kind)
		assert.Equal(t, sessionStartedText, start.Text)

		down := ParseRecord([]byte(`{"type":"session.shutdown","data":{}}`))
		require.NotNil(t, down)
		assert.Equal(t, sessionShutdownText, down.Text)
	})

	t.Run("generic dotted name classified by prefix", func(t *testing.T) {
		msg := ParseRecord([]byte(`{"type":"agent.thought","data":{"text":"pondering"}}`))
		require.NotNil(t, msg)
		assert.Equal(t, model.KindAssistant, msg.Kind)
		assert.Equal(t, "pondering", msg.Text)

		sys := ParseRecord([]byte(`{"type":"runtime.notice","data":{"message":"warm"}}`))
		require.NotNil(t, sys)
		assert.Equal(t, model.KindSystem, sys.Kind)
	})
}

func TestChainByTimestampReconstructsOrder(t *testing.T) {
	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	msgs := []model.Message{
		{ID: "c", Timestamp: base.Add(2 * time.Minute)},
		{ID: "a", Timestamp: base},
		{ID: "b", Timestamp: base.Add(time.Minute)},
	}
	chainByTimestamp(msgs)

	// Sorted by timestamp, walking parent links reproduces the order.
	sorted := make([]model.Message, len(msgs))
	copy(sorted, msgs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	assert.Empty(t, sorted[0].ParentID)
	for i := 1; i < len(sorted); i++ {
		assert.Equal(t, sorted[i-1].ID, sorted[i].ParentID)
	}
}

func TestParseSessionFile(t *testing.T) {
	const jsonl = `{"type":"user","uuid":"u1","parentUuid":"","timestamp":"2025-01-15T10:00:00Z","message":{"role":"user","content":"hello"}}
not json at all
{"type":"assistant","uuid":"a1","parentUuid":"u1","timestamp":"2025-01-15T10:00:05Z","message":{"role":"assistant","content":[{"type":"text","text":"hi"}]}}
`
	p := fs.NewMem(fs.KindLocal)
	p.Add("/s/one.jsonl", jsonl, time.Now())

	msgs, err := ParseSessionFile(p, "/s/one.jsonl")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "u1", msgs[0].ID)
	assert.Equal(t, "u1", msgs[1].ParentID, "native chaining preserved for structured files")
}

func TestParseSessionFileMissing(t *testing.T) {
	p := fs.NewMem(fs.KindLocal)
	msgs, err := ParseSessionFile(p, "/nope.jsonl")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestParseSessionFileFlatChained(t *testing.T) {
	const jsonl = `{"role":"human","content":"first","timestamp":"2025-01-15T10:00:00Z"}
{"role":"ai","content":"second","timestamp":"2025-01-15T10:00:05Z"}
`
	p := fs.NewMem(fs.KindLocal)
	p.Add("/s/flat.jsonl", jsonl, time.Now())

	msgs, err := ParseSessionFile(p, "/s/flat.jsonl")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Empty(t, msgs[0].ParentID)
	assert.Equal(t, msgs[0].ID, msgs[1].ParentID, "flat streams get a synthesized chain")
}

func TestParseSessionFileWholeDocumentFallback(t *testing.T) {
	// Every line fails as JSONL (single pretty-printed document).
	const doc = `{
  "requests": [
    {"prompt": "Q", "response": "A", "timestamp": "2025-01-15T10:00:00Z"}
  ]
}`
	p := fs.NewMem(fs.KindLocal)
	p.Add("/s/doc.jsonl", doc, time.Now())

	msgs, err := ParseSessionFile(p, "/s/doc.jsonl")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.KindUser, msgs[0].Kind)
	assert.Equal(t, "Q", msgs[0].Text)
	assert.Equal(t, model.KindAssistant, msgs[1].Kind)
	assert.Equal(t, "A", msgs[1].Text)
	assert.Equal(t, msgs[0].ID, msgs[1].ParentID)
}

func TestParseDocument(t *testing.T) {
	t.Run("top-level array", func(t *testing.T) {
		msgs := ParseDocument([]byte(`[{"role":"human","content":"one","timestamp":"2025-01-15T10:00:00Z"},{"role":"ai","content":"two","timestamp":"2025-01-15T10:00:01Z"}]`))
		require.Len(t, msgs, 2)
		assert.Equal(t, msgs[0].ID, msgs[1].ParentID)
	})

	t.Run("messages wrapper", func(t *testing.T) {
		msgs := ParseDocument([]byte(`{"messages":[{"role":"user","content":"hi"}]}`))
		require.Len(t, msgs, 1)
		assert.Equal(t, model.KindUser, msgs[0].Kind)
	})

	t.Run("turns pairs", func(t *testing.T) {
		msgs := ParseDocument([]byte(`{"turns":[{"input":"ask","answer":"tell"}]}`))
		require.Len(t, msgs, 2)
		assert.Equal(t, "ask", msgs[0].Text)
		assert.Equal(t, "tell", msgs[1].Text)
	})

	t.Run("pair with only a response", func(t *testing.T) {
		msgs := ParseDocument([]byte(`{"requests":[{"response":"just output"}]}`))
		require.Len(t, msgs, 1)
		assert.Equal(t, model.KindAssistant, msgs[0].Kind)
	})

	t.Run("single message object", func(t *testing.T) {
		msgs := ParseDocument([]byte(`{"role":"user","content":"solo"}`))
		require.Len(t, msgs, 1)
	})

	t.Run("garbage", func(t *testing.T) {
		assert.Nil(t, ParseDocument([]byte(`{{{`)))
	})
}

func TestParseSessionFileNativeChainSurvivesStartText(t *testing.T) {
	// A structured system record that happens to carry the lifecycle marker
	// text must not trigger a chain recompute over native parentUuid links.
	// The assistant is deliberately stamped earlier than its parent.
	const jsonl = `{"type":"system","uuid":"s1","timestamp":"2025-01-15T09:59:00Z","content":"Session started"}
{"type":"user","uuid":"u1","parentUuid":"s1","timestamp":"2025-01-15T10:00:10Z","message":{"role":"user","content":"hello"}}
{"type":"assistant","uuid":"a1","parentUuid":"u1","timestamp":"2025-01-15T10:00:05Z","message":{"role":"assistant","content":[{"type":"text","text":"hi"}]}}
`
	p := fs.NewMem(fs.KindLocal)
	p.Add("/s/native.jsonl", jsonl, time.Now())

	msgs, err := ParseSessionFile(p, "/s/native.jsonl")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "s1", msgs[1].ParentID)
	assert.Equal(t, "u1", msgs[2].ParentID, "native links survive a coincidental marker")
	assert.Equal(t, "a1", msgs[2].ID, "file order preserved, no timestamp re-sort")
}

func TestParseSessionFileDottedChainRecomputed(t *testing.T) {
	// Dotted-event file: out-of-order timestamps, session.start marker
	// triggers the consolidation chain.
	const jsonl = `{"type":"session.start","timestamp":"2025-01-15T10:00:00Z","data":{}}
{"type":"assistant.message","timestamp":"2025-01-15T10:00:10Z","data":{"content":"late"}}
{"type":"user.message","timestamp":"2025-01-15T10:00:05Z","data":{"content":"early"}}
`
	p := fs.NewMem(fs.KindLocal)
	p.Add("/s/evt.jsonl", jsonl, time.Now())

	msgs, err := ParseSessionFile(p, "/s/evt.jsonl")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, sessionStartedText, msgs[0].Text)
	assert.Equal(t, "early", msgs[1].Text)
	assert.Equal(t, "late", msgs[2].Text)
	assert.Equal(t, msgs[1].ID, msgs[2].ParentID)
}
