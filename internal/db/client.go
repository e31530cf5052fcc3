package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ClientRow is a row of the clients table.
type ClientRow struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	Address     string
	CreatedDate time.Time
}

// SaveClient inserts or updates a client.
func (m *MatterDB) SaveClient(ctx context.Context, c *ClientRow) error {
	_, err := m.ExecContext(ctx, `
		INSERT INTO clients (client_id, name, email, phone, address, created_date)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			address = excluded.address
	`, c.ID, c.Name, c.Email, c.Phone, c.Address, formatTime(c.CreatedDate))
	if err != nil {
		return fmt.Errorf("save client %s: %w", c.ID, err)
	}
	return nil
}

// GetClient loads a client. Returns nil, nil if it does not exist.
func (m *MatterDB) GetClient(ctx context.Context, id string) (*ClientRow, error) {
	row := m.QueryRowContext(ctx, `
		SELECT client_id, name, email, phone, address, created_date
		FROM clients WHERE client_id = ?
	`, id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get client %s: %w", id, err)
	}
	return c, nil
}

// ListClients returns all clients ordered by name.
func (m *MatterDB) ListClients(ctx context.Context) ([]*ClientRow, error) {
	rows, err := m.QueryContext(ctx, `
		SELECT client_id, name, email, phone, address, created_date
		FROM clients ORDER BY name, client_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*ClientRow
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return out, nil
}

func scanClient(s rowScanner) (*ClientRow, error) {
	var c ClientRow
	var created string
	if err := s.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &created); err != nil {
		return nil, err
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	c.CreatedDate = t
	return &c, nil
}
