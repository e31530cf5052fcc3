package storage

import (
	"sort"

	"github.com/rahulmohankumar24/finch-demo/internal/db"
	"github.com/rahulmohankumar24/finch-demo/internal/matter"
)

// matterToRecord converts a snapshot to database rows. Task positions follow
// the snapshot's display order.
func matterToRecord(md matter.MatterData) *db.MatterRecord {
	rec := &db.MatterRecord{
		Matter: db.MatterRow{
			ID:          md.MatterID,
			ClientID:    md.ClientID,
			ClientName:  md.ClientName,
			Name:        md.MatterName,
			CreatedDate: md.CreatedDate,
		},
	}

	for pos, id := range taskOrder(md) {
		td := md.Tasks[id]
		tr := db.TaskRow{
			ID:             id,
			Name:           td.Name,
			Completed:      td.Completed,
			CompletionDate: td.CompletionDate,
			CreatedDate:    td.CreatedDate,
			Position:       pos,
		}
		for _, dep := range td.Dependencies {
			tr.Dependencies = append(tr.Dependencies, db.DependencyRow{
				Type:         string(dep.Kind),
				TargetTaskID: dep.TargetTaskID,
				DelayWeeks:   dep.DelayWeeks,
			})
		}
		rec.Tasks = append(rec.Tasks, tr)
	}
	return rec
}

// recordToMatter converts database rows back to a snapshot.
func recordToMatter(rec *db.MatterRecord) matter.MatterData {
	md := matter.MatterData{
		MatterID:    rec.Matter.ID,
		ClientID:    rec.Matter.ClientID,
		ClientName:  rec.Matter.ClientName,
		MatterName:  rec.Matter.Name,
		CreatedDate: rec.Matter.CreatedDate,
		TaskOrder:   make([]string, 0, len(rec.Tasks)),
		Tasks:       make(map[string]matter.TaskData, len(rec.Tasks)),
	}
	for _, tr := range rec.Tasks {
		deps := make([]matter.Dependency, 0, len(tr.Dependencies))
		for _, dr := range tr.Dependencies {
			deps = append(deps, matter.Dependency{
				Kind:         matter.DependencyKind(dr.Type),
				TargetTaskID: dr.TargetTaskID,
				DelayWeeks:   dr.DelayWeeks,
			})
		}
		md.TaskOrder = append(md.TaskOrder, tr.ID)
		md.Tasks[tr.ID] = matter.TaskData{
			TaskID:         tr.ID,
			Name:           tr.Name,
			Dependencies:   deps,
			Completed:      tr.Completed,
			CompletionDate: tr.CompletionDate,
			CreatedDate:    tr.CreatedDate,
		}
	}
	return md
}

func clientToRow(c Client) *db.ClientRow {
	return &db.ClientRow{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		CreatedDate: c.CreatedDate,
	}
}

func rowToClient(r *db.ClientRow) Client {
	return Client{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		Address:     r.Address,
		CreatedDate: r.CreatedDate,
	}
}

// taskOrder returns every task ID of md exactly once: the snapshot order
// first, then any tasks it omits sorted by ID.
func taskOrder(md matter.MatterData) []string {
	out := make([]string, 0, len(md.Tasks))
	seen := make(map[string]bool, len(md.Tasks))
	for _, id := range md.TaskOrder {
		if _, ok := md.Tasks[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	var rest []string
	for id := range md.Tasks {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// cloneMatter deep-copies the mutable parts of a snapshot.
func cloneMatter(md matter.MatterData) matter.MatterData {
	c := md
	c.TaskOrder = append([]string(nil), md.TaskOrder...)
	c.Tasks = make(map[string]matter.TaskData, len(md.Tasks))
	for id, td := range md.Tasks {
		td.Dependencies = append([]matter.Dependency(nil), td.Dependencies...)
		if td.CompletionDate != nil {
			cd := *td.CompletionDate
			td.CompletionDate = &cd
		}
		c.Tasks[id] = td
	}
	return c
}

func sortClients(clients []Client) {
	sort.Slice(clients, func(i, j int) bool {
		if clients[i].Name != clients[j].Name {
			return clients[i].Name < clients[j].Name
		}
		return clients[i].ID < clients[j].ID
	})
}
