package fs

import (
	"io"
	"os"
	"path/filepath"
	"time"
)

// ProviderKind discriminates backing stores. It is consulted only to pick a
// search staging policy: remote stores get staged, time-budgeted scans.
type ProviderKind string

const (
	KindLocal  ProviderKind = "local"
	KindRemote ProviderKind = "remote"
)

// Entry is one directory listing item.
type Entry struct {
	Name    string
	IsFile  bool
	ModTime time.Time
}

// Provider is the narrow file-system surface the core consumes. Transports
// (local disk, SSH) live behind it; the core only sees bytes.
type Provider interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
	Open(path string) (io.ReadCloser, error)
	ReadDir(path string) ([]Entry, error)
	Stat(path string) (time.Time, error)
	Kind() ProviderKind
}

// Local is the os-backed Provider.
type Local struct{}

func NewLocal() *Local { return &Local{} }

func (*Local) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (*Local) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (*Local) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (*Local) ReadDir(path string) ([]Entry, error) {
	des, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		e := Entry{Name: de.Name(), IsFile: de.Type().IsRegular()}
		if info, err := de.Info(); err == nil {
			e.ModTime = info.ModTime()
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (*Local) Stat(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func (*Local) Kind() ProviderKind { return KindLocal }

// Join is a convenience wrapper so callers don't import path/filepath just
// to build provider paths.
func Join(elem ...string) string { return filepath.Join(elem...) }
