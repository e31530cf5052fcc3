package service

import (
	"context"

	"github.com/rahulmohankumar24/finch-demo/internal/events"
	"github.com/rahulmohankumar24/finch-demo/internal/matter"
)

// CreateMatterRequest describes a new matter.
type CreateMatterRequest struct {
	MatterID   string `json:"matterId"`
	ClientName string `json:"clientName"`
	ClientID   string `json:"clientId,omitempty"`
	MatterName string `json:"matterName,omitempty"`
}

// CreateMatter creates a matter seeded with the default workflow and returns
// its status.
func (s *Service) CreateMatter(ctx context.Context, req CreateMatterRequest) (matter.Status, error) {
	if err := s.Load(ctx); err != nil {
		return matter.Status{}, err
	}

	m, err := s.registry.CreateMatter(req.MatterID, req.ClientName,
		matter.WithClientID(req.ClientID), matter.WithName(req.MatterName))
	if err != nil {
		return matter.Status{}, err
	}
	if err := s.persist(ctx, req.MatterID); err != nil {
		return matter.Status{}, err
	}

	summary := m.Summary()
	s.logger.Info("matter created", "matter", req.MatterID, "client", req.ClientName)
	s.publish(events.NewEvent(events.EventMatterCreated, req.MatterID, summary))
	return m.Status(s.registry.Now()), nil
}

// ListMatters returns summaries of every matter, oldest first.
func (s *Service) ListMatters(ctx context.Context) ([]matter.Summary, error) {
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s.registry.ListMatters(), nil
}

// MatterStatus returns the status projection of a matter.
func (s *Service) MatterStatus(ctx context.Context, matterID string) (matter.Status, error) {
	if err := s.Load(ctx); err != nil {
		return matter.Status{}, err
	}
	return s.registry.MatterStatus(matterID)
}

// DependencyDetail returns the dependency-detail projection of a matter.
func (s *Service) DependencyDetail(ctx context.Context, matterID string) (matter.DependencyReport, error) {
	if err := s.Load(ctx); err != nil {
		return matter.DependencyReport{}, err
	}
	return s.registry.DependencyDetail(matterID)
}

// RepairDefaults re-adds missing default tasks. Nothing is written when the
// matter already has all of them.
func (s *Service) RepairDefaults(ctx context.Context, matterID string) ([]string, error) {
	if err := s.Load(ctx); err != nil {
		return nil, err
	}

	added, err := s.registry.RepairDefaults(matterID)
	if err != nil {
		return nil, err
	}
	if len(added) == 0 {
		return added, nil
	}
	if err := s.persist(ctx, matterID); err != nil {
		return nil, err
	}

	s.logger.Info("matter repaired", "matter", matterID, "added", added)
	s.publish(events.NewEvent(events.EventMatterRepaired, matterID, map[string]any{"addedTasks": added}))
	return added, nil
}
