package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kunalbabre/claude-devtools/internal/fs"
)

func sessionLine(id, userText, assistantText string) string {
	return fmt.Sprintf(`{"type":"user","uuid":"u-%s","timestamp":"2025-01-15T10:00:00Z","message":{"role":"user","content":"%s"}}
{"type":"assistant","uuid":"a-%s","timestamp":"2025-01-15T10:00:05Z","message":{"role":"assistant","content":[{"type":"text","text":"%s"}]}}
`, id, userText, id, assistantText)
}

func TestSearchProjectLocal(t *testing.T) {
	p := fs.NewMem(fs.KindLocal)
	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	p.Add("/proj/alpha/s1.jsonl", sessionLine("s1", "fix the gopher bug", "done"), base.Add(time.Hour))
	p.Add("/proj/alpha/s2.jsonl", sessionLine("s2", "unrelated work", "mentions gopher here"), base)
	p.Add("/proj/alpha/s3.jsonl", sessionLine("s3", "nothing to see", "ok"), base.Add(2*time.Hour))

	out, err := SearchProject(context.Background(), p, "/proj/alpha", "alpha", "gopher", Options{})
	require.NoError(t, err)
	assert.False(t, out.Partial)
	require.Len(t, out.Results, 2)

	for _, r := range out.Results {
		assert.Equal(t, "alpha", r.ProjectID)
		assert.NotEmpty(t, r.SessionID)
		assert.NotEmpty(t, r.SessionTitle)
	}
}

func TestSearchProjectSessionSubset(t *testing.T) {
	p := fs.NewMem(fs.KindLocal)
	now := time.Now()
	p.Add("/proj/alpha/s1.jsonl", sessionLine("s1", "needle one", "x"), now)
	p.Add("/proj/alpha/s2.jsonl", sessionLine("s2", "needle two", "x"), now)

	out, err := SearchProject(context.Background(), p, "/proj/alpha", "alpha", "needle",
		Options{SessionIDs: []string{"s2"}})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "s2", out.Results[0].SessionID)
}

func TestSearchProjectLimit(t *testing.T) {
	p := fs.NewMem(fs.KindLocal)
	now := time.Now()
	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("s%02d", i)
		p.Add("/proj/alpha/"+id+".jsonl", sessionLine(id, "hit target phrase", "x"), now.Add(time.Duration(i)*time.Minute))
	}

	out, err := SearchProject(context.Background(), p, "/proj/alpha", "alpha", "target", Options{Limit: 7})
	require.NoError(t, err)
	assert.Len(t, out.Results, 7)
}

func TestSearchProjectFailureIsolated(t *testing.T) {
	p := fs.NewMem(fs.KindLocal)
	now := time.Now()
	p.Add("/proj/alpha/bad.jsonl", "\x00\x01 not parseable at all", now.Add(time.Minute))
	p.Add("/proj/alpha/good.jsonl", sessionLine("good", "find the needle", "x"), now)

	out, err := SearchProject(context.Background(), p, "/proj/alpha", "alpha", "needle", Options{})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "good", out.Results[0].SessionID)
}

func TestSearchProjectMissingDir(t *testing.T) {
	p := fs.NewMem(fs.KindLocal)
	_, err := SearchProject(context.Background(), p, "/proj/none", "none", "q", Options{})
	assert.Error(t, err, "directory listing has no fallback path")
}

func TestSearchProjectRemoteStagedEarlyStop(t *testing.T) {
	p := fs.NewMem(fs.KindRemote)
	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	// 20 candidate files, every one a hit: the first stage alone clears the
	// early-result floor, so the scan stops before widening.
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("s%02d", i)
		p.Add("/proj/alpha/"+id+".jsonl", sessionLine(id, "remote needle here", "x"), base.Add(time.Duration(i)*time.Minute))
	}

	out, err := SearchProject(context.Background(), p, "/proj/alpha", "alpha", "needle", Options{Limit: 100})
	require.NoError(t, err)
	assert.True(t, out.Partial, "early stop on result floor marks results partial")
	assert.Equal(t, remoteStages[0], len(out.Results), "only the first stage was scanned")
}

func TestSearchProjectRemoteExhaustsPool(t *testing.T) {
	p := fs.NewMem(fs.KindRemote)
	now := time.Now()
	p.Add("/proj/alpha/s1.jsonl", sessionLine("s1", "lonely needle", "x"), now)
	p.Add("/proj/alpha/s2.jsonl", sessionLine("s2", "nothing", "x"), now)

	out, err := SearchProject(context.Background(), p, "/proj/alpha", "alpha", "needle", Options{})
	require.NoError(t, err)
	assert.False(t, out.Partial, "a fully scanned pool is complete, not partial")
	assert.Len(t, out.Results, 1)
}

func TestSearchProjectRemoteTimeBudget(t *testing.T) {
	p := fs.NewMem(fs.KindRemote)
	now := time.Now()
	p.Add("/proj/alpha/s1.jsonl", sessionLine("s1", "slow needle", "x"), now)

	out, err := SearchProject(context.Background(), p, "/proj/alpha", "alpha", "needle",
		Options{TimeBudget: time.Nanosecond})
	require.NoError(t, err)
	assert.True(t, out.Partial, "exhausted wall-clock budget marks results partial")
	assert.Empty(t, out.Results)
}

func TestSearchProjectEmptyQuery(t *testing.T) {
	p := fs.NewMem(fs.KindLocal)
	out, err := SearchProject(context.Background(), p, "/proj/alpha", "alpha", "  ", Options{})
	require.NoError(t, err)
	assert.Empty(t, out.Results)
}
