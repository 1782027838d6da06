// Package render formats analyzer summaries, metrics, and search results
// for terminal output.
package render

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/kunalbabre/claude-devtools/internal/analyze"
	"github.com/kunalbabre/claude-devtools/internal/model"
	"github.com/kunalbabre/claude-devtools/internal/search"
)

var (
	colorPrimary   = lipgloss.Color("12")  // bright blue
	colorSecondary = lipgloss.Color("10")  // bright green
	colorDim       = lipgloss.Color("240") // gray
	colorHighlight = lipgloss.Color("11")  // bright yellow

	styleTitle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleLabel = lipgloss.NewStyle().Foreground(colorDim)
	styleValue = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	styleLive  = lipgloss.NewStyle().Foreground(colorSecondary).Bold(true)
	styleHit   = lipgloss.NewStyle().Foreground(colorHighlight).Bold(true)
)

// SessionInfo renders the analyzer summary as a small card.
func SessionInfo(info analyze.SessionInfo, styled bool) string {
	var b strings.Builder
	line := func(label, value string) {
		if value == "" {
			value = "-"
		}
		if styled {
			fmt.Fprintf(&b, "%s %s\n", styleLabel.Render(label+":"), styleValue.Render(value))
		} else {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}

	title := info.Title
	if title == "" {
		title = "(untitled session)"
	}
	if styled {
		b.WriteString(styleTitle.Render(title) + "\n")
	} else {
		b.WriteString(title + "\n")
	}

	line("messages", fmt.Sprintf("%d", info.MessageCount))
	status := "idle"
	if info.IsOngoing {
		status = "ongoing"
	}
	if styled && info.IsOngoing {
		fmt.Fprintf(&b, "%s %s\n", styleLabel.Render("status:"), styleLive.Render(status))
	} else {
		line("status", status)
	}
	line("cwd", info.CWD)
	line("branch", info.GitBranch)

	if ctx := info.Context; ctx != nil {
		parts := make([]string, len(ctx.Phases))
		for i, p := range ctx.Phases {
			parts[i] = formatTokens(p)
		}
		line("context", fmt.Sprintf("%s (%s)", formatTokens(ctx.Total), strings.Join(parts, " + ")))
	}
	return b.String()
}

// Metrics renders the whole-session token reduction.
func Metrics(m model.SessionMetrics, styled bool) string {
	var b strings.Builder
	row := func(label string, v int64) {
		if styled {
			fmt.Fprintf(&b, "%s %s\n", styleLabel.Render(fmt.Sprintf("%-15s", label)), styleValue.Render(formatTokens(v)))
		} else {
			fmt.Fprintf(&b, "%-15s %s\n", label, formatTokens(v))
		}
	}
	row("input", m.Input)
	row("output", m.Output)
	row("cache read", m.CacheRead)
	row("cache creation", m.CacheCreation)
	row("total", m.Total)
	if styled {
		fmt.Fprintf(&b, "%s %s\n", styleLabel.Render(fmt.Sprintf("%-15s", "messages")), styleValue.Render(fmt.Sprintf("%d", m.MessageCount)))
		fmt.Fprintf(&b, "%s %s\n", styleLabel.Render(fmt.Sprintf("%-15s", "duration")), styleValue.Render(formatDuration(m.Duration)))
	} else {
		fmt.Fprintf(&b, "%-15s %d\n", "messages", m.MessageCount)
		fmt.Fprintf(&b, "%-15s %s\n", "duration", formatDuration(m.Duration))
	}
	if m.Cost != nil {
		fmt.Fprintf(&b, "%-15s $%.4f\n", "cost", *m.Cost)
	}
	return b.String()
}

// SearchResult renders one hit as a single line plus its context window.
func SearchResult(r search.Result, styled bool) string {
	ts := ""
	if !r.Timestamp.IsZero() {
		ts = r.Timestamp.Format("2006-01-02 15:04")
	}
	head := fmt.Sprintf("%s [%s] %s", r.SessionID, r.ItemType, r.SessionTitle)
	ctx := r.Context
	if styled {
		head = styleTitle.Render(r.SessionID) + " " +
			styleLabel.Render("["+r.ItemType+"]") + " " +
			styleValue.Render(r.SessionTitle)
		ctx = highlight(ctx, r.MatchedText)
	}
	if ts != "" {
		if styled {
			head += " " + styleLabel.Render(ts)
		} else {
			head += " " + ts
		}
	}
	return head + "\n  " + strings.ReplaceAll(ctx, "\n", " ") + "\n"
}

// highlight wraps case-insensitive occurrences of term in the hit style.
// Scans in rune space; lowered byte offsets are unsafe on the original text.
func highlight(text, term string) string {
	if term == "" {
		return text
	}
	runes := []rune(text)
	lower := []rune(strings.ToLower(text))
	tLower := []rune(strings.ToLower(term))
	var b strings.Builder
	i := 0
	for {
		idx := runeIndex(lower[i:], tLower)
		if idx < 0 {
			b.WriteString(string(runes[i:]))
			break
		}
		pos := i + idx
		b.WriteString(string(runes[i:pos]))
		b.WriteString(styleHit.Render(string(runes[pos : pos+len(tLower)])))
		i = pos + len(tLower)
	}
	return b.String()
}

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

// WrapLine breaks a line into pieces that fit maxWidth visible columns.
func WrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}
	var result []string
	var cur strings.Builder
	visW := 0
	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)
		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}
		cur.WriteRune(r)
		visW += rw
		i += size
	}
	if cur.Len() > 0 {
		result = append(result, cur.String())
	}
	return result
}

func formatTokens(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	}
	return fmt.Sprintf("%d", n)
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return d.Round(time.Second).String()
}
