package notifystore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/smart-energy/internal/domain/notification"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS notifications (
	seq        BIGSERIAL PRIMARY KEY,
	id         TEXT NOT NULL UNIQUE,
	kind       TEXT NOT NULL,
	channel    TEXT NOT NULL,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL,
	big_text   TEXT NOT NULL DEFAULT '',
	read       BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore implements notification.Store using pgx.
type PostgresStore struct {
	pool  *pgxpool.Pool
	limit int
}

// NewPostgresStore constructs the store.
func NewPostgresStore(pool *pgxpool.Pool, limit int) *PostgresStore {
	return &PostgresStore{pool: pool, limit: normalizeLimit(limit)}
}

// EnsureSchema creates the notifications table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create notifications table: %w", err)
	}
	return nil
}

// Save inserts n and trims the table to the newest limit rows in one transaction.
func (s *PostgresStore) Save(ctx context.Context, n notification.Notification) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO notifications (id, kind, channel, title, message, big_text, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, n.ID, string(n.Kind), string(n.Channel), n.Title, n.Message, n.BigText, n.Read, n.CreatedAt); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM notifications
		WHERE seq NOT IN (SELECT seq FROM notifications ORDER BY seq DESC LIMIT $1)
	`, s.limit); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) List(ctx context.Context) ([]notification.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, kind, channel, title, message, big_text, read, created_at
		FROM notifications
		ORDER BY seq DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkRead(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) MarkAllRead(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE NOT read`)
	return err
}

func (s *PostgresStore) Remove(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM notifications`)
	return err
}

func scanNotification(rows pgx.Rows) (notification.Notification, error) {
	var (
		n       notification.Notification
		kind    string
		channel string
	)
	if err := rows.Scan(&n.ID, &kind, &channel, &n.Title, &n.Message, &n.BigText, &n.Read, &n.CreatedAt); err != nil {
		return notification.Notification{}, err
	}
	n.Kind = notification.Kind(kind)
	n.Channel = notification.Channel(channel)
	return n, nil
}

var _ notification.Store = (*PostgresStore)(nil)
