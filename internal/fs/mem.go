package fs

import (
	"bytes"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"
)

// Mem is an in-memory Provider used by tests and by callers that already
// hold file bytes. Paths are slash-separated.
type Mem struct {
	kind  ProviderKind
	files map[string]memFile
}

type memFile struct {
	data  []byte
	mtime time.Time
}

func NewMem(kind ProviderKind) *Mem {
	return &Mem{kind: kind, files: make(map[string]memFile)}
}

// Add registers a file. Later Adds overwrite earlier ones.
func (m *Mem) Add(p string, data string, mtime time.Time) {
	m.files[path.Clean(p)] = memFile{data: []byte(data), mtime: mtime}
}

func (m *Mem) Exists(p string) bool {
	_, ok := m.files[path.Clean(p)]
	return ok
}

func (m *Mem) ReadFile(p string) ([]byte, error) {
	f, ok := m.files[path.Clean(p)]
	if !ok {
		return nil, os.ErrNotExist
	}
	return f.data, nil
}

func (m *Mem) Open(p string) (io.ReadCloser, error) {
	f, ok := m.files[path.Clean(p)]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func (m *Mem) ReadDir(p string) ([]Entry, error) {
	prefix := path.Clean(p) + "/"
	seen := make(map[string]Entry)
	for fp, f := range m.files {
		if !strings.HasPrefix(fp, prefix) {
			continue
		}
		rest := strings.TrimPrefix(fp, prefix)
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			name := rest[:i]
			seen[name] = Entry{Name: name, IsFile: false}
			continue
		}
		seen[rest] = Entry{Name: rest, IsFile: true, ModTime: f.mtime}
	}
	if len(seen) == 0 {
		return nil, os.ErrNotExist
	}
	entries := make([]Entry, 0, len(seen))
	for _, e := range seen {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *Mem) Stat(p string) (time.Time, error) {
	f, ok := m.files[path.Clean(p)]
	if !ok {
		return time.Time{}, os.ErrNotExist
	}
	return f.mtime, nil
}

func (m *Mem) Kind() ProviderKind { return m.kind }
