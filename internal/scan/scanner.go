// Package scan enumerates session files through the provider.
package scan

import (
	"sort"
	"strings"
	"time"

	"github.com/kunalbabre/claude-devtools/internal/fs"
)

// SessionFile is one discovered session log.
type SessionFile struct {
	Path      string
	SessionID string
	ModTime   time.Time
}

// SessionFiles lists the session logs of one project directory, newest
// first by modification time. Index sidecar files are skipped.
func SessionFiles(p fs.Provider, projectDir string) ([]SessionFile, error) {
	entries, err := p.ReadDir(projectDir)
	if err != nil {
		return nil, err
	}
	var files []SessionFile
	for _, e := range entries {
		if !e.IsFile {
			continue
		}
		ext := ""
		if i := strings.LastIndexByte(e.Name, '.'); i >= 0 {
			ext = e.Name[i:]
		}
		if ext != ".jsonl" && ext != ".json" {
			continue
		}
		if strings.Contains(e.Name, "sessions-index") {
			continue
		}
		files = append(files, SessionFile{
			Path:      fs.Join(projectDir, e.Name),
			SessionID: strings.TrimSuffix(e.Name, ext),
			ModTime:   e.ModTime,
		})
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

// Projects lists the project directories under a root.
func Projects(p fs.Provider, root string) ([]string, error) {
	entries, err := p.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsFile {
			continue
		}
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names, nil
}
