package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rahulmohankumar24/finch-demo/internal/db/driver"
)

// MatterRow is a row of the matters table.
type MatterRow struct {
	ID          string
	ClientID    string
	ClientName  string
	Name        string
	CreatedDate time.Time
}

// TaskRow is a row of the tasks table plus its dependencies in order.
type TaskRow struct {
	ID             string
	Name           string
	Completed      bool
	CompletionDate *time.Time
	CreatedDate    time.Time
	Position       int
	Dependencies   []DependencyRow
}

// DependencyRow is a row of the task_dependencies table.
type DependencyRow struct {
	Type         string
	TargetTaskID string
	DelayWeeks   *int
}

// MatterRecord is a matter with all of its tasks ordered by position.
type MatterRecord struct {
	Matter MatterRow
	Tasks  []TaskRow
}

// MatterDB stores matters and clients.
type MatterDB struct {
	*DB
}

// OpenMatterDB opens and migrates the matter store.
// For SQLite, dsn is the file path. For PostgreSQL, dsn is the connection string.
func OpenMatterDB(ctx context.Context, dsn string, dialect driver.Dialect) (*MatterDB, error) {
	db, err := OpenWithDialect(ctx, dsn, dialect)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx, "matters"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate matter db: %w", err)
	}

	return &MatterDB{DB: db}, nil
}

// OpenMatterDBInMemory opens a private in-memory SQLite matter store.
func OpenMatterDBInMemory(ctx context.Context) (*MatterDB, error) {
	return OpenMatterDB(ctx, InMemoryDSN, driver.DialectSQLite)
}

// SaveMatter writes a matter and replaces its task set in one transaction.
func (m *MatterDB) SaveMatter(ctx context.Context, rec *MatterRecord) error {
	return m.RunInTx(ctx, func(tx *TxOps) error {
		return saveMatterTx(tx, rec)
	})
}

func saveMatterTx(tx *TxOps, rec *MatterRecord) error {
	mr := rec.Matter
	if _, err := tx.Exec(`
		INSERT INTO matters (matter_id, client_id, client_name, matter_name, created_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(matter_id) DO UPDATE SET
			client_id = excluded.client_id,
			client_name = excluded.client_name,
			matter_name = excluded.matter_name,
			created_date = excluded.created_date
	`, mr.ID, mr.ClientID, mr.ClientName, mr.Name, formatTime(mr.CreatedDate)); err != nil {
		return fmt.Errorf("save matter %s: %w", mr.ID, err)
	}

	if _, err := tx.Exec("DELETE FROM task_dependencies WHERE matter_id = ?", mr.ID); err != nil {
		return fmt.Errorf("clear dependencies for %s: %w", mr.ID, err)
	}
	if _, err := tx.Exec("DELETE FROM tasks WHERE matter_id = ?", mr.ID); err != nil {
		return fmt.Errorf("clear tasks for %s: %w", mr.ID, err)
	}

	for _, t := range rec.Tasks {
		if _, err := tx.Exec(`
			INSERT INTO tasks (matter_id, task_id, name, completed, completion_date, created_date, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, mr.ID, t.ID, t.Name, t.Completed, formatTimePtr(t.CompletionDate), formatTime(t.CreatedDate), t.Position); err != nil {
			return fmt.Errorf("save task %s/%s: %w", mr.ID, t.ID, err)
		}
		for i, dep := range t.Dependencies {
			var weeks sql.NullInt64
			if dep.DelayWeeks != nil {
				weeks = sql.NullInt64{Int64: int64(*dep.DelayWeeks), Valid: true}
			}
			if _, err := tx.Exec(`
				INSERT INTO task_dependencies (matter_id, task_id, position, dependency_type, target_task_id, time_delay_weeks)
				VALUES (?, ?, ?, ?, ?, ?)
			`, mr.ID, t.ID, i, dep.Type, dep.TargetTaskID, weeks); err != nil {
				return fmt.Errorf("save dependency %s/%s[%d]: %w", mr.ID, t.ID, i, err)
			}
		}
	}
	return nil
}

// ReplaceAll deletes every matter and writes recs in their place, in one
// transaction. Clients are untouched.
func (m *MatterDB) ReplaceAll(ctx context.Context, recs []*MatterRecord) error {
	return m.RunInTx(ctx, func(tx *TxOps) error {
		for _, table := range []string{"task_dependencies", "tasks", "matters"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		for _, rec := range recs {
			if err := saveMatterTx(tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetMatter loads one matter. Returns nil, nil if it does not exist.
func (m *MatterDB) GetMatter(ctx context.Context, id string) (*MatterRecord, error) {
	row := m.QueryRowContext(ctx, `
		SELECT matter_id, client_id, client_name, matter_name, created_date
		FROM matters WHERE matter_id = ?
	`, id)
	mr, err := scanMatter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get matter %s: %w", id, err)
	}

	recs, err := m.attachTasks(ctx, []*MatterRecord{{Matter: mr}}, "WHERE matter_id = ?", id)
	if err != nil {
		return nil, err
	}
	return recs[0], nil
}

// ListMatters loads every matter with its tasks, ordered by creation date.
func (m *MatterDB) ListMatters(ctx context.Context) ([]*MatterRecord, error) {
	rows, err := m.QueryContext(ctx, `
		SELECT matter_id, client_id, client_name, matter_name, created_date
		FROM matters ORDER BY created_date, matter_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list matters: %w", err)
	}

	var recs []*MatterRecord
	for rows.Next() {
		mr, err := scanMatter(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan matter: %w", err)
		}
		recs = append(recs, &MatterRecord{Matter: mr})
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate matters: %w", err)
	}
	_ = rows.Close()

	return m.attachTasks(ctx, recs, "")
}

// attachTasks loads tasks and dependencies matching where and assigns them
// to recs. Each result set is drained and closed before the next query.
func (m *MatterDB) attachTasks(ctx context.Context, recs []*MatterRecord, where string, args ...any) ([]*MatterRecord, error) {
	byID := make(map[string]*MatterRecord, len(recs))
	for _, r := range recs {
		byID[r.Matter.ID] = r
	}

	rows, err := m.QueryContext(ctx, `
		SELECT matter_id, task_id, name, completed, completion_date, created_date, position
		FROM tasks `+where+`
		ORDER BY matter_id, position, task_id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	type taskKey struct{ matter, task string }
	index := make(map[taskKey]int)
	for rows.Next() {
		var matterID, createdAt string
		var completion sql.NullString
		var t TaskRow
		if err := rows.Scan(&matterID, &t.ID, &t.Name, &t.Completed, &completion, &createdAt, &t.Position); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if t.CreatedDate, err = parseTime(createdAt); err != nil {
			_ = rows.Close()
			return nil, err
		}
		if t.CompletionDate, err = parseTimePtr(completion); err != nil {
			_ = rows.Close()
			return nil, err
		}
		rec, ok := byID[matterID]
		if !ok {
			continue
		}
		rec.Tasks = append(rec.Tasks, t)
		index[taskKey{matterID, t.ID}] = len(rec.Tasks) - 1
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	_ = rows.Close()

	rows, err = m.QueryContext(ctx, `
		SELECT matter_id, task_id, dependency_type, target_task_id, time_delay_weeks
		FROM task_dependencies `+where+`
		ORDER BY matter_id, task_id, position
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var matterID, taskID string
		var weeks sql.NullInt64
		var dep DependencyRow
		if err := rows.Scan(&matterID, &taskID, &dep.Type, &dep.TargetTaskID, &weeks); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		if weeks.Valid {
			w := int(weeks.Int64)
			dep.DelayWeeks = &w
		}
		pos, ok := index[taskKey{matterID, taskID}]
		if !ok {
			continue
		}
		task := &byID[matterID].Tasks[pos]
		task.Dependencies = append(task.Dependencies, dep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dependencies: %w", err)
	}
	return recs, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatter(s rowScanner) (MatterRow, error) {
	var mr MatterRow
	var created string
	if err := s.Scan(&mr.ID, &mr.ClientID, &mr.ClientName, &mr.Name, &created); err != nil {
		return MatterRow{}, err
	}
	t, err := parseTime(created)
	if err != nil {
		return MatterRow{}, err
	}
	mr.CreatedDate = t
	return mr, nil
}
