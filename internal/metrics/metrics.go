// Package metrics reduces a message sequence into whole-session totals.
package metrics

import (
	"time"

	"github.com/kunalbabre/claude-devtools/internal/model"
)

// Compute sums token usage and derives the session duration from the
// timestamp spread. It is a pure fold: splitting the sequence into
// contiguous halves and summing each half's token totals equals the whole
// sequence's totals. An empty input yields all-zero metrics.
func Compute(messages []model.Message) model.SessionMetrics {
	var m model.SessionMetrics
	if len(messages) == 0 {
		return m
	}
	m.MessageCount = len(messages)

	// Single min/max fold; unparsable (zero) timestamps are ignored.
	var minTS, maxTS time.Time
	for i := range messages {
		msg := &messages[i]
		if u := msg.Usage; u != nil {
			m.Input += u.Input
			m.Output += u.Output
			m.CacheRead += u.CacheRead
			m.CacheCreation += u.CacheCreation
		}
		ts := msg.Timestamp
		if ts.IsZero() {
			continue
		}
		if minTS.IsZero() || ts.Before(minTS) {
			minTS = ts
		}
		if maxTS.IsZero() || ts.After(maxTS) {
			maxTS = ts
		}
	}
	m.Total = m.Input + m.Output + m.CacheRead + m.CacheCreation
	if !minTS.IsZero() && maxTS.After(minTS) {
		m.Duration = maxTS.Sub(minTS)
	}
	return m
}
