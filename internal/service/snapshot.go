package service

import (
	"context"

	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
	"github.com/rahulmohankumar24/finch-demo/internal/events"
	"github.com/rahulmohankumar24/finch-demo/internal/matter"
	"github.com/rahulmohankumar24/finch-demo/internal/storage"
)

// ImportResult reports what an import replaced.
type ImportResult struct {
	Matters int `json:"matters"`
	Clients int `json:"clients"`
}

// Export returns a snapshot of every matter and client.
func (s *Service) Export(ctx context.Context) (*storage.Snapshot, error) {
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	clients, err := s.ListClients(ctx)
	if err != nil {
		return nil, err
	}

	snap := storage.NewSnapshot()
	snap.Matters = s.registry.ExportAll()
	snap.Clients = clients
	return snap, nil
}

// Import replaces every matter with the snapshot's matters and upserts its
// clients. Every snapshot is validated before storage or memory changes.
func (s *Service) Import(ctx context.Context, snap *storage.Snapshot) (ImportResult, error) {
	if snap == nil {
		return ImportResult{}, fincherrors.ErrInvalidInput("snapshot", "is required")
	}
	if _, err := matter.BuildAll(snap.Matters); err != nil {
		return ImportResult{}, err
	}
	for _, c := range snap.Clients {
		if c.ID == "" || c.Name == "" {
			return ImportResult{}, fincherrors.ErrInvalidInput("clients", "every client needs an ID and a name")
		}
	}

	// Empty IDs take the map key, as BuildAll does.
	normalized := make(map[string]matter.MatterData, len(snap.Matters))
	for key, md := range snap.Matters {
		if md.MatterID == "" {
			md.MatterID = key
		}
		normalized[key] = md
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if err := s.backend.ReplaceAll(ctx, normalized); err != nil {
		return ImportResult{}, fincherrors.ErrStorage("replace matters", err)
	}
	for _, c := range snap.Clients {
		if err := s.backend.SaveClient(ctx, c); err != nil {
			return ImportResult{}, fincherrors.ErrStorage("save client "+c.ID, err)
		}
	}
	if err := s.registry.ImportAll(normalized); err != nil {
		return ImportResult{}, err
	}

	s.loadMu.Lock()
	s.loaded = true
	s.loadMu.Unlock()

	res := ImportResult{Matters: len(normalized), Clients: len(snap.Clients)}
	s.logger.Info("matters imported", "matters", res.Matters, "clients", res.Clients)
	s.publish(events.NewEvent(events.EventMattersImported, events.GlobalMatterID, res))
	return res, nil
}
