// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"tutorialsite/internal/models"
)

// ContactStore persists messages from the contact form.
type ContactStore struct {
	db *sql.DB
}

// NewContactStore returns a new ContactStore.
func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

const contactColumns = `id, name, email, subject, message, created_at, is_read`

func scanContact(scanner interface{ Scan(...any) error }) (*models.ContactMessage, error) {
	var m models.ContactMessage
	err := scanner.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt, &m.IsRead)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create stores a new unread message. created_at is set by the database.
func (s *ContactStore) Create(ctx context.Context, m *models.ContactMessage) (*models.ContactMessage, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO contact_messages (name, email, subject, message)
		VALUES ($1, $2, $3, $4)
		RETURNING `+contactColumns,
		m.Name, m.Email, m.Subject, m.Message,
	)
	result, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("create contact message: %w", err)
	}
	return result, nil
}

// FindByID retrieves a message by ID. Returns nil if not found.
func (s *ContactStore) FindByID(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contact_messages WHERE id = $1`, id)
	m, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find contact message: %w", err)
	}
	return m, nil
}

// List returns messages newest first. With unreadOnly set, read messages
// are skipped.
func (s *ContactStore) List(ctx context.Context, unreadOnly bool) ([]models.ContactMessage, error) {
	query := `SELECT ` + contactColumns + ` FROM contact_messages`
	if unreadOnly {
		query += ` WHERE NOT is_read`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	var items []models.ContactMessage
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact message: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

// SetRead flags a message as read or unread. Returns false if no message
// has that ID.
func (s *ContactStore) SetRead(ctx context.Context, id uuid.UUID, read bool) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE contact_messages SET is_read = $1 WHERE id = $2`, read, id)
	if err != nil {
		return false, fmt.Errorf("set contact message read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set contact message read: %w", err)
	}
	return n > 0, nil
}

// CountUnread returns the number of unread messages.
func (s *ContactStore) CountUnread(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_messages WHERE NOT is_read`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread contact messages: %w", err)
	}
	return n, nil
}
