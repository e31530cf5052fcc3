package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
	"github.com/rahulmohankumar24/finch-demo/internal/events"
	"github.com/rahulmohankumar24/finch-demo/internal/matter"
	"github.com/rahulmohankumar24/finch-demo/internal/storage"
	"github.com/rahulmohankumar24/finch-demo/internal/util"
)

// CreateClientRequest describes a new client.
type CreateClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// ClientID derives a client ID from a display name.
func ClientID(name string) string {
	return util.Slugify(name)
}

// CreateClient adds a client to the directory.
func (s *Service) CreateClient(ctx context.Context, req CreateClientRequest) (storage.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return storage.Client{}, fincherrors.ErrInvalidInput("name", "is required")
	}
	id := ClientID(name)
	if id == "" {
		return storage.Client{}, fincherrors.ErrInvalidInput("name", "must contain at least one letter or digit")
	}

	s.clientMu.Lock()
	defer s.clientMu.Unlock()

	existing, err := s.backend.LoadClient(ctx, id)
	if err != nil {
		return storage.Client{}, fincherrors.ErrStorage("load client "+id, err)
	}
	if existing != nil {
		return storage.Client{}, fincherrors.ErrClientExists(id)
	}

	c := storage.Client{
		ID:          id,
		Name:        name,
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Address:     strings.TrimSpace(req.Address),
		CreatedDate: s.registry.Now(),
	}
	if err := s.backend.SaveClient(ctx, c); err != nil {
		return storage.Client{}, fincherrors.ErrStorage("save client "+id, err)
	}

	s.logger.Info("client created", "client", id)
	s.publish(events.NewEvent(events.EventClientCreated, events.GlobalMatterID, c))
	return c, nil
}

// ListClients returns every client ordered by name.
func (s *Service) ListClients(ctx context.Context) ([]storage.Client, error) {
	clients, err := s.backend.LoadAllClients(ctx)
	if err != nil {
		return nil, fincherrors.ErrStorage("load clients", err)
	}
	return clients, nil
}

// GetClient returns one client.
func (s *Service) GetClient(ctx context.Context, id string) (storage.Client, error) {
	c, err := s.backend.LoadClient(ctx, id)
	if err != nil {
		return storage.Client{}, fincherrors.ErrStorage("load client "+id, err)
	}
	if c == nil {
		return storage.Client{}, fincherrors.ErrClientNotFound(id)
	}
	return *c, nil
}

// ListClientMatters returns the client's matters, newest first.
func (s *Service) ListClientMatters(ctx context.Context, clientID string) ([]matter.Summary, error) {
	if _, err := s.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	all, err := s.ListMatters(ctx)
	if err != nil {
		return nil, err
	}

	var out []matter.Summary
	for _, m := range all {
		if m.ClientID == clientID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedDate.After(out[j].CreatedDate)
	})
	return out, nil
}

// CreateMatterForClient creates a matter linked to an existing client. The
// client name defaults to the directory entry and an empty matter ID is
// generated from the client ID.
func (s *Service) CreateMatterForClient(ctx context.Context, clientID string, req CreateMatterRequest) (matter.Status, error) {
	c, err := s.GetClient(ctx, clientID)
	if err != nil {
		return matter.Status{}, err
	}

	req.ClientID = c.ID
	if req.ClientName == "" {
		req.ClientName = c.Name
	}
	if req.MatterID == "" {
		req.MatterID = c.ID + "_" + uuid.NewString()[:8]
	}
	return s.CreateMatter(ctx, req)
}
