package search

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/kunalbabre/claude-devtools/internal/chunk"
	"github.com/kunalbabre/claude-devtools/internal/fs"
	"github.com/kunalbabre/claude-devtools/internal/model"
	"github.com/kunalbabre/claude-devtools/internal/parse"
	"github.com/kunalbabre/claude-devtools/internal/sanitize"
	"github.com/kunalbabre/claude-devtools/internal/scan"
)

// Scanning policy. Local stores get one flat pass with a wide batch; remote
// stores scan in widening stages with a small batch, an early-stop result
// floor, and a wall-clock budget.
const (
	localBatchSize  = 8
	remoteBatchSize = 3
	minEarlyResults = 5
	defaultLimit    = 50
)

var remoteStages = [...]int{10, 30, 100}

const remoteTimeBudget = 15 * time.Second

// Options tunes a project-wide search.
type Options struct {
	SessionIDs []string      // restrict to these session ids; empty = all
	Limit      int           // result cap; <=0 means defaultLimit
	TimeBudget time.Duration // remote only; <=0 means remoteTimeBudget
}

// ProjectResults is the outcome of one project-wide scan. Partial marks a
// remote scan stopped early by the result floor or the time budget.
type ProjectResults struct {
	Results []Result
	Partial bool
}

// SearchProject scans a project's session files for query, newest first, in
// bounded concurrent batches. A single file's failure never aborts its
// siblings; the failing file contributes zero results.
func SearchProject(ctx context.Context, p fs.Provider, projectDir, projectID, query string, opts Options) (ProjectResults, error) {
	var out ProjectResults
	if strings.TrimSpace(query) == "" {
		return out, nil
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	files, err := scan.SessionFiles(p, projectDir)
	if err != nil {
		// No fallback path at this entry point.
		return out, err
	}
	if len(opts.SessionIDs) > 0 {
		want := make(map[string]struct{}, len(opts.SessionIDs))
		for _, id := range opts.SessionIDs {
			want[id] = struct{}{}
		}
		kept := files[:0]
		for _, f := range files {
			if _, ok := want[f.SessionID]; ok {
				kept = append(kept, f)
			}
		}
		files = kept
	}

	if p.Kind() == fs.KindRemote {
		return searchStaged(ctx, p, files, projectID, query, limit, opts)
	}
	results := searchBatched(p, files, projectID, query, limit, localBatchSize)
	out.Results = results
	return out, nil
}

// searchBatched runs one flat pass over files in fixed-size concurrent
// batches until the cap is reached or the set is exhausted.
func searchBatched(p fs.Provider, files []scan.SessionFile, projectID, query string, limit, batchSize int) []Result {
	var (
		mu      sync.Mutex
		results []Result
	)
	for start := 0; start < len(files); start += batchSize {
		mu.Lock()
		done := len(results) >= limit
		mu.Unlock()
		if done {
			break
		}

		end := start + batchSize
		if end > len(files) {
			end = len(files)
		}
		var wg sync.WaitGroup
		for _, f := range files[start:end] {
			wg.Add(1)
			go func(f scan.SessionFile) {
				defer wg.Done()
				rs := searchFile(p, f, projectID, query)
				if len(rs) == 0 {
					return
				}
				mu.Lock()
				results = append(results, rs...)
				mu.Unlock()
			}(f)
		}
		wg.Wait()
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// searchStaged widens the candidate pool in three stages. It stops early,
// marking the outcome partial, once a minimum result count is met in an
// early stage or the wall-clock budget runs out. In-flight batches always
// complete; the deadline is only checked between batches.
func searchStaged(ctx context.Context, p fs.Provider, files []scan.SessionFile, projectID, query string, limit int, opts Options) (ProjectResults, error) {
	budget := opts.TimeBudget
	if budget <= 0 {
		budget = remoteTimeBudget
	}
	deadline := time.Now().Add(budget)

	var (
		mu      sync.Mutex
		results []Result
		partial bool
		scanned int
	)

	for stageIdx, stageCap := range remoteStages {
		if stageCap > len(files) {
			stageCap = len(files)
		}
		lastStage := stageIdx == len(remoteStages)-1

		for scanned < stageCap {
			if time.Now().After(deadline) || ctx.Err() != nil {
				partial = true
				goto done
			}
			mu.Lock()
			hit := len(results) >= limit
			mu.Unlock()
			if hit {
				goto done
			}

			end := scanned + remoteBatchSize
			if end > stageCap {
				end = stageCap
			}
			var wg sync.WaitGroup
			for _, f := range files[scanned:end] {
				wg.Add(1)
				go func(f scan.SessionFile) {
					defer wg.Done()
					rs := searchFile(p, f, projectID, query)
					if len(rs) == 0 {
						return
					}
					mu.Lock()
					results = append(results, rs...)
					mu.Unlock()
				}(f)
			}
			wg.Wait()
			scanned = end
		}

		// Enough hits in an early stage: stop before widening further.
		if !lastStage && len(results) >= minEarlyResults {
			if scanned < len(files) {
				partial = true
			}
			break
		}
		if scanned >= len(files) {
			break
		}
	}

done:
	if len(results) > limit {
		results = results[:limit]
	}
	return ProjectResults{Results: results, Partial: partial}, nil
}

// searchFile parses and scans one session file. Failures are logged and
// isolated: the file simply contributes nothing.
func searchFile(p fs.Provider, f scan.SessionFile, projectID, query string) []Result {
	messages, err := parse.ParseSessionFile(p, f.Path)
	if err != nil {
		log.Printf("search: %s: %v", f.Path, err)
		return nil
	}
	if len(messages) == 0 {
		return nil
	}
	title := sessionTitle(messages)

	var results []Result
	for _, c := range chunk.Build(messages) {
		for _, r := range MatchChunk(&c, query) {
			r.ProjectID = projectID
			r.SessionID = f.SessionID
			r.SessionTitle = title
			results = append(results, r)
		}
	}
	return results
}

// sessionTitle derives a short title from the first real user message.
func sessionTitle(messages []model.Message) string {
	for i := range messages {
		m := &messages[i]
		if m.Kind != model.KindUser || m.IsMeta || m.IsSidechain {
			continue
		}
		text := sanitize.Clean(strings.ReplaceAll(m.PlainText(), "\n", " "))
		if text == "" {
			continue
		}
		runes := []rune(text)
		if len(runes) > 80 {
			return string(runes[:80]) + "..."
		}
		return text
	}
	return ""
}
