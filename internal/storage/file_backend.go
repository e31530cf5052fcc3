package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/rahulmohankumar24/finch-demo/internal/matter"
	"github.com/rahulmohankumar24/finch-demo/internal/util"
)

// FileBackend stores everything in one snapshot document on disk. Every
// write rewrites the whole file atomically. The encoding follows the file
// extension (.json for JSON, YAML otherwise).
type FileBackend struct {
	path   string
	format Format
	mu     sync.Mutex
}

// NewFileBackend creates a file backend at path. The file is created on the
// first write.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path, format: FormatForPath(path)}
}

// Path returns the snapshot file path.
func (f *FileBackend) Path() string {
	return f.path
}

func (f *FileBackend) read() (*Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	s, err := DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	return s, nil
}

func (f *FileBackend) write(s *Snapshot) error {
	data, err := EncodeSnapshot(s, f.format)
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}

// update reads the document, applies fn and writes the result.
func (f *FileBackend) update(fn func(s *Snapshot)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, err := f.read()
	if err != nil {
		return err
	}
	fn(s)
	return f.write(s)
}

// SaveMatter writes one matter into the snapshot document.
func (f *FileBackend) SaveMatter(_ context.Context, md matter.MatterData) error {
	return f.update(func(s *Snapshot) {
		s.Matters[md.MatterID] = md
	})
}

// LoadAllMatters returns every matter in the document.
func (f *FileBackend) LoadAllMatters(_ context.Context) (map[string]matter.MatterData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, err := f.read()
	if err != nil {
		return nil, err
	}
	return s.Matters, nil
}

// ReplaceAll swaps the document's matters for matters. Clients are kept.
func (f *FileBackend) ReplaceAll(_ context.Context, matters map[string]matter.MatterData) error {
	return f.update(func(s *Snapshot) {
		s.Matters = make(map[string]matter.MatterData, len(matters))
		for _, md := range matters {
			s.Matters[md.MatterID] = md
		}
	})
}

// SaveClient upserts a client, keeping the original creation date.
func (f *FileBackend) SaveClient(_ context.Context, c Client) error {
	return f.update(func(s *Snapshot) {
		defer func() { sortClients(s.Clients) }()
		for i := range s.Clients {
			if s.Clients[i].ID == c.ID {
				c.CreatedDate = s.Clients[i].CreatedDate
				s.Clients[i] = c
				return
			}
		}
		s.Clients = append(s.Clients, c)
	})
}

// LoadClient returns the client with id, or nil if there is none.
func (f *FileBackend) LoadClient(ctx context.Context, id string) (*Client, error) {
	clients, err := f.LoadAllClients(ctx)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		if clients[i].ID == id {
			return &clients[i], nil
		}
	}
	return nil, nil
}

// LoadAllClients returns every client sorted by name.
func (f *FileBackend) LoadAllClients(_ context.Context) ([]Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, err := f.read()
	if err != nil {
		return nil, err
	}
	sortClients(s.Clients)
	return s.Clients, nil
}

// Close is a no-op; every write is already on disk.
func (f *FileBackend) Close() error { return nil }
