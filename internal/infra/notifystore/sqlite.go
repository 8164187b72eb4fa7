package notifystore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yanqian/smart-energy/internal/domain/notification"
)

// SQLiteStore keeps the history in a local SQLite file.
type SQLiteStore struct {
	conn  *sql.DB
	limit int
}

// OpenSQLite opens (or creates) the database at path and initializes the schema.
func OpenSQLite(path string, limit int) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// one writer keeps the insert-then-trim sequence serialized
	conn.SetMaxOpenConns(1)

	s := &SQLiteStore{conn: conn, limit: normalizeLimit(limit)}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.conn.Exec(`
	CREATE TABLE IF NOT EXISTS notifications (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		channel TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		big_text TEXT NOT NULL DEFAULT '',
		read INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	`)
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, n notification.Notification) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO notifications (id, kind, channel, title, message, big_text, read, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, string(n.Kind), string(n.Channel), n.Title, n.Message, n.BigText, boolToInt(n.Read), n.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
	DELETE FROM notifications
	WHERE seq NOT IN (SELECT seq FROM notifications ORDER BY seq DESC LIMIT ?)
	`, s.limit); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) List(ctx context.Context) ([]notification.Notification, error) {
	rows, err := s.conn.QueryContext(ctx, `
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
		var (
			n         notification.Notification
			kind      string
			channel   string
			read      int
			createdAt string
		)
		if err := rows.Scan(&n.ID, &kind, &channel, &n.Title, &n.Message, &n.BigText, &read, &createdAt); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
		}
		n.Kind = notification.Kind(kind)
		n.Channel = notification.Channel(channel)
		n.Read = read != 0
		n.CreatedAt = ts
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) MarkRead(ctx context.Context, id string) error {
	return s.execByID(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
}

func (s *SQLiteStore) MarkAllRead(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE read = 0`)
	return err
}

func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	return s.execByID(ctx, `DELETE FROM notifications WHERE id = ?`, id)
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM notifications`)
	return err
}

func (s *SQLiteStore) execByID(ctx context.Context, query, id string) error {
	res, err := s.conn.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ notification.Store = (*SQLiteStore)(nil)
