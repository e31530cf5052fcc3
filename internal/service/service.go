// Package service runs matter engine operations against a storage backend.
//
// The service owns the in-memory registry. It loads every stored matter on
// first use, applies each operation to the registry, persists the affected
// matter, and publishes a change event. Persistence always happens after the
// in-memory mutation succeeded.
package service

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
	"github.com/rahulmohankumar24/finch-demo/internal/events"
	"github.com/rahulmohankumar24/finch-demo/internal/matter"
	"github.com/rahulmohankumar24/finch-demo/internal/storage"
)

// Service coordinates the registry, storage and event publishing.
type Service struct {
	registry  *matter.Registry
	backend   storage.Backend
	publisher events.Publisher
	logger    *slog.Logger

	loadMu sync.RWMutex
	loaded bool
	group  singleflight.Group

	// saveMu orders snapshot exports with backend writes so the last
	// write for a matter always carries its latest state.
	saveMu sync.Mutex
	// clientMu serializes client creation (existence check, then save).
	clientMu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the event publisher. Defaults to a no-op publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithRegistry supplies the registry, typically one built with a test clock.
func WithRegistry(r *matter.Registry) Option {
	return func(s *Service) {
		s.registry = r
	}
}

// New creates a service over backend.
func New(backend storage.Backend, opts ...Option) *Service {
	s := &Service{
		backend:   backend,
		publisher: events.NewNopPublisher(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = matter.NewRegistry()
	}
	return s
}

// Registry returns the in-memory registry.
func (s *Service) Registry() *matter.Registry {
	return s.registry
}

// Publisher returns the event publisher.
func (s *Service) Publisher() events.Publisher {
	return s.publisher
}

// Load loads every stored matter into the registry once. Concurrent callers
// share a single backend read.
func (s *Service) Load(ctx context.Context) error {
	s.loadMu.RLock()
	loaded := s.loaded
	s.loadMu.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := s.group.Do("load", func() (any, error) {
		s.loadMu.RLock()
		loaded := s.loaded
		s.loadMu.RUnlock()
		if loaded {
			return nil, nil
		}
		return nil, s.reload(ctx)
	})
	return err
}

// Reload discards the registry contents and reads them again from storage.
func (s *Service) Reload(ctx context.Context) error {
	_, err, _ := s.group.Do("load", func() (any, error) {
		return nil, s.reload(ctx)
	})
	return err
}

func (s *Service) reload(ctx context.Context) error {
	data, err := s.backend.LoadAllMatters(ctx)
	if err != nil {
		return fincherrors.ErrStorage("load matters", err)
	}
	if err := s.registry.ImportAll(data); err != nil {
		return err
	}

	s.loadMu.Lock()
	s.loaded = true
	s.loadMu.Unlock()

	s.logger.Info("matters loaded", "count", len(data))
	return nil
}

// persist writes the current snapshot of one matter.
func (s *Service) persist(ctx context.Context, matterID string) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	md, err := s.registry.ExportMatter(matterID)
	if err != nil {
		return err
	}
	if err := s.backend.SaveMatter(ctx, md); err != nil {
		s.logger.Error("save matter failed", "matter", matterID, "error", err)
		return fincherrors.ErrStorage("save matter "+matterID, err)
	}
	return nil
}

func (s *Service) publish(e events.Event) {
	s.publisher.Publish(e)
}

// Close closes the backend and the publisher.
func (s *Service) Close() error {
	s.publisher.Close()
	return s.backend.Close()
}
