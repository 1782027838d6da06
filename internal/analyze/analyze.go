// Package analyze derives session metadata from a single forward pass over a
// session file's lines: a title preview, a message count, a liveness flag,
// repo provenance, and a phased accounting of context-window consumption
// across compaction events. The pass deliberately re-derives per-line
// decisions instead of reusing the full parser so memory stays bounded on
// files with unbounded message counts.
package analyze

import (
	"bufio"
	"log"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kunalbabre/claude-devtools/internal/fs"
	"github.com/kunalbabre/claude-devtools/internal/sanitize"
)

const (
	maxLineSize     = 10 * 1024 * 1024
	titlePreviewLen = 100
)

// SessionInfo is the analyzer's output. Context is nil when no main-thread
// assistant message was ever observed.
type SessionInfo struct {
	Title        string
	MessageCount int
	IsOngoing    bool
	CWD          string
	GitBranch    string
	Context      *ContextBreakdown
}

// ContextBreakdown reports how many input tokens each compaction phase
// added to the live context window. Total is the sum over phases.
type ContextBreakdown struct {
	Phases []int64
	Total  int64
}

// compactionPhase tracks one compaction boundary: the main-thread input
// total observed immediately before it, and the first one observed after.
type compactionPhase struct {
	pre  int64
	post int64 // 0 until observed
}

// terminalToolEventRe matches dotted tool events that signal completion.
var terminalToolEventRe = regexp.MustCompile(`(?i)\.(execution_)?(complete[d]?|finish(ed)?|result|error|end(ed)?|done)$`)

// systemInjectedPrefixes are user-message texts that the host injects; they
// never qualify as title material or countable user turns.
var systemInjectedPrefixes = []string{
	"This session is being continued",
	"[Request interrupted",
	"<task-notification>",
	"<command-message>",
	"<local-command-",
	"Stop hook feedback:",
	"<system-reminder>",
}

const syntheticModel = "<synthetic>"

type analyzer struct {
	info SessionInfo

	// Title candidates, first occurrence only, in priority order.
	titleUser     string
	titleCommand  string
	titleAssist   string
	titleFallback string

	pendingUser bool

	// Liveness state machine.
	eventIdx    int
	lastOngoing int
	lastEnding  int
	shutdownIDs map[string]struct{}

	// Context consumption.
	lastMain int64
	sawMain  bool
	phases   []compactionPhase
}

// AnalyzeSessionFile scans one session file line by line. A missing file
// yields a zero-valued SessionInfo, not an error.
func AnalyzeSessionFile(p fs.Provider, filePath string) (SessionInfo, error) {
	a := &analyzer{
		lastOngoing: -1,
		lastEnding:  -1,
		shutdownIDs: make(map[string]struct{}),
	}
	if !p.Exists(filePath) {
		return a.finish(), nil
	}
	f, err := p.Open(filePath)
	if err != nil {
		return a.finish(), err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !gjson.ValidBytes(line) {
			continue
		}
		a.consume(gjson.ParseBytes(line))
	}
	if err := scanner.Err(); err != nil {
		log.Printf("analyze: reading %s: %v", filePath, err)
	}
	return a.finish(), nil
}

func (a *analyzer) consume(doc gjson.Result) {
	if cwd := doc.Get("cwd").Str; cwd != "" && a.info.CWD == "" {
		a.info.CWD = cwd
	}
	if br := doc.Get("gitBranch").Str; br != "" && a.info.GitBranch == "" {
		a.info.GitBranch = br
	}

	typ := doc.Get("type").Str
	if strings.Contains(typ, ".") {
		a.consumeEvent(typ, doc)
		return
	}

	switch typ {
	case "user":
		a.consumeUser(doc)
	case "assistant":
		a.consumeAssistant(doc)
	default:
		// Flat role/content records have no type field.
		if typ == "" {
			a.consumeFlat(doc)
		}
	}
}

func (a *analyzer) ongoing() { a.eventIdx++; a.lastOngoing = a.eventIdx }
func (a *analyzer) ending()  { a.eventIdx++; a.lastEnding = a.eventIdx }

func (a *analyzer) consumeUser(doc gjson.Result) {
	if doc.Get("isCompactSummary").Bool() {
		// Compaction boundary: open a phase carrying the total observed
		// just before it.
		a.phases = append(a.phases, compactionPhase{pre: a.lastMain})
		return
	}

	sidechain := doc.Get("isSidechain").Bool()
	meta := doc.Get("isMeta").Bool()
	content := doc.Get("message.content")

	// Tool results ride on user records.
	toolResultSeen := false
	if content.IsArray() {
		for _, b := range content.Array() {
			if b.Get("type").Str != "tool_result" {
				continue
			}
			toolResultSeen = true
			a.classifyToolResult(
				b.Get("tool_use_id").Str,
				flattenText(b.Get("content")),
				b.Get("is_error").Bool(),
			)
		}
	}

	text := strings.TrimSpace(flattenText(content))
	if text == "" && content.Type == gjson.String {
		text = strings.TrimSpace(content.Str)
	}

	if strings.Contains(text, "[Request interrupted") {
		a.ending()
	}

	if meta || sidechain || toolResultSeen || text == "" {
		return
	}

	if a.titleCommand == "" {
		if label := sanitize.CommandLabel(text); label != "" {
			a.titleCommand = label
		}
	}
	if isSystemInjected(text) || strings.HasPrefix(strings.TrimSpace(text), "<command-name>") {
		return
	}

	if a.titleUser == "" {
		a.titleUser = preview(text)
	}
	a.info.MessageCount++
	a.pendingUser = true
}

func (a *analyzer) consumeAssistant(doc gjson.Result) {
	sidechain := doc.Get("isSidechain").Bool()
	synthetic := doc.Get("message.model").Str == syntheticModel
	mainThread := !sidechain && !synthetic

	if mainThread {
		if u := doc.Get("message.usage"); u.Exists() {
			total := u.Get("input_tokens").Int() +
				u.Get("cache_read_input_tokens").Int() +
				u.Get("cache_creation_input_tokens").Int()
			a.observeMainTokens(total)
		}
		if a.pendingUser {
			a.info.MessageCount++
			a.pendingUser = false
		}
	}

	content := doc.Get("message.content")
	if content.Type == gjson.String {
		if s := strings.TrimSpace(content.Str); s != "" {
			if a.titleAssist == "" {
				a.titleAssist = preview(s)
			}
			a.ending()
		}
		return
	}
	for _, b := range content.Array() {
		switch b.Get("type").Str {
		case "thinking":
			if strings.TrimSpace(b.Get("thinking").Str) != "" {
				a.ongoing()
			}
		case "text":
			if s := strings.TrimSpace(b.Get("text").Str); s != "" {
				if a.titleAssist == "" {
					a.titleAssist = preview(s)
				}
				a.ending()
			}
		case "tool_use":
			a.classifyToolUse(b)
		}
	}
}

// consumeFlat handles flat role/content records, which have no sidechain
// concept: user turns open a pair, assistant text closes it and ends
// activity.
func (a *analyzer) consumeFlat(doc gjson.Result) {
	role := doc.Get("role").Str
	if role == "" {
		role = doc.Get("author").Str
	}
	var text string
	for _, p := range []string{"content", "message.content", "text", "value"} {
		if v := doc.Get(p); v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
			text = strings.TrimSpace(v.Str)
			break
		}
	}
	if text == "" {
		return
	}
	switch strings.ToLower(role) {
	case "user", "human":
		if a.titleUser == "" && !isSystemInjected(text) {
			a.titleUser = preview(text)
		}
		a.info.MessageCount++
		a.pendingUser = true
	case "assistant", "ai", "claude":
		if a.titleAssist == "" {
			a.titleAssist = preview(text)
		}
		if a.pendingUser {
			a.info.MessageCount++
			a.pendingUser = false
		}
		a.ending()
	}
}

func (a *analyzer) consumeEvent(typ string, doc gjson.Result) {
	data := doc.Get("data")
	switch typ {
	case "session.start":
		if a.titleFallback == "" {
			a.titleFallback = sessionStartLabel(doc, data)
		}
		return
	case "session.shutdown", "session.end", "session.error":
		a.ending()
		return
	case "user.message":
		if text := eventText(data, doc); text != "" {
			if a.titleUser == "" {
				a.titleUser = preview(text)
			}
			a.info.MessageCount++
		}
		return
	case "assistant.message":
		if text := eventText(data, doc); text != "" {
			if a.titleAssist == "" {
				a.titleAssist = preview(text)
			}
			a.info.MessageCount++
			a.ending()
		}
		return
	case "assistant.message_delta":
		if eventText(data, doc) != "" {
			a.info.MessageCount++
			a.ongoing()
		}
		return
	}

	if strings.HasPrefix(typ, "tool.") {
		a.info.MessageCount++
		if terminalToolEventRe.MatchString(typ) {
			a.ending()
		} else {
			a.ongoing()
		}
	}
}

// classifyToolUse decides whether an assistant tool invocation signals
// ongoing work or a natural stopping point.
func (a *analyzer) classifyToolUse(b gjson.Result) {
	name := b.Get("name").Str
	switch name {
	case "ExitPlanMode":
		a.ending()
	case "SendMessage":
		if isApprovedShutdown(b.Get("input")) {
			if id := b.Get("id").Str; id != "" {
				a.shutdownIDs[id] = struct{}{}
			}
			a.ending()
			return
		}
		a.ongoing()
	default:
		a.ongoing()
	}
}

func (a *analyzer) classifyToolResult(toolUseID, content string, isError bool) {
	if _, ok := a.shutdownIDs[toolUseID]; ok {
		a.ending()
		return
	}
	if isError && strings.Contains(content, "user doesn't want to proceed") {
		a.ending()
		return
	}
	if strings.Contains(content, "[Request interrupted") {
		a.ending()
		return
	}
	a.ongoing()
}

// observeMainTokens records a main-thread assistant input total: it closes
// the most recent compaction phase awaiting a post-observation and becomes
// the running total for the next boundary.
func (a *analyzer) observeMainTokens(total int64) {
	a.sawMain = true
	if n := len(a.phases); n > 0 && a.phases[n-1].post == 0 {
		a.phases[n-1].post = total
	}
	a.lastMain = total
}

func (a *analyzer) finish() SessionInfo {
	a.info.IsOngoing = a.lastOngoing >= 0 &&
		(a.lastEnding < 0 || a.lastOngoing > a.lastEnding)

	switch {
	case a.titleUser != "":
		a.info.Title = a.titleUser
	case a.titleCommand != "":
		a.info.Title = a.titleCommand
	case a.titleAssist != "":
		a.info.Title = a.titleAssist
	default:
		a.info.Title = a.titleFallback
	}

	if a.sawMain {
		a.info.Context = a.breakdown()
	}
	return a.info
}

// breakdown converts the phase list into per-phase token contributions.
// Phase 1 contributes its own pre-total; each later phase contributes the
// tokens added since the prior compaction's residue. The trailing phase is
// reported only when the last compaction actually received a
// post-observation, to avoid double counting.
func (a *analyzer) breakdown() *ContextBreakdown {
	var out ContextBreakdown
	if len(a.phases) == 0 {
		out.Phases = []int64{a.lastMain}
		out.Total = a.lastMain
		return &out
	}
	out.Phases = append(out.Phases, a.phases[0].pre)
	for i := 1; i < len(a.phases); i++ {
		out.Phases = append(out.Phases, a.phases[i].pre-a.phases[i-1].post)
	}
	if last := a.phases[len(a.phases)-1]; last.post > 0 {
		out.Phases = append(out.Phases, a.lastMain-last.post)
	}
	for _, v := range out.Phases {
		out.Total += v
	}
	return &out
}

func isApprovedShutdown(input gjson.Result) bool {
	if !input.Exists() {
		return false
	}
	raw := strings.ToLower(input.Raw)
	if !strings.Contains(raw, "shutdown") {
		return false
	}
	return input.Get("approved").Bool() ||
		input.Get("message.approved").Bool() ||
		input.Get("response.approved").Bool()
}

func isSystemInjected(text string) bool {
	trimmed := strings.TrimSpace(text)
	for _, p := range systemInjectedPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

func eventText(data, doc gjson.Result) string {
	for _, src := range []gjson.Result{data, doc} {
		for _, p := range []string{"content", "text", "message"} {
			if v := src.Get(p); v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
				return strings.TrimSpace(v.Str)
			}
		}
	}
	return ""
}

func sessionStartLabel(doc, data gjson.Result) string {
	if id := data.Get("sessionId").Str; id != "" {
		return "Session " + id
	}
	if ts := doc.Get("timestamp").Str; ts != "" {
		return "Session " + ts
	}
	return "New session"
}

// flattenText extracts displayable text from a string-or-block-array value.
func flattenText(content gjson.Result) string {
	if content.Type == gjson.String {
		return content.Str
	}
	var parts []string
	for _, b := range content.Array() {
		if b.Get("type").Str == "text" && b.Get("text").Str != "" {
			parts = append(parts, b.Get("text").Str)
		}
		if b.Type == gjson.String && b.Str != "" {
			parts = append(parts, b.Str)
		}
	}
	return strings.Join(parts, "\n")
}

func preview(text string) string {
	s := sanitize.Clean(strings.ReplaceAll(text, "\n", " "))
	runes := []rune(s)
	if len(runes) > titlePreviewLen {
		return string(runes[:titlePreviewLen]) + "..."
	}
	return s
}
