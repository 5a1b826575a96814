package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/orgview/pkg/model"
)

// SQLiteSchema is the directory cache layout. export.SaveSQLite writes it and
// SQLiteSource reads it, so an exported chart can be reopened offline.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id           TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	job_title    TEXT,
	department   TEXT,
	mail         TEXT,
	upn          TEXT,
	manager_id   TEXT,
	photo        BLOB,
	position     INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_users_manager ON users(manager_id);
CREATE INDEX IF NOT EXISTS idx_users_mail ON users(mail COLLATE NOCASE);
CREATE TABLE IF NOT EXISTS chart_meta (
	key   TEXT PRIMARY KEY,
	value TEXT
);
`

// SQLiteSource reads a directory cache database.
type SQLiteSource struct {
	db   *sql.DB
	path string
}

// NewSQLiteSource opens path read-only.
func NewSQLiteSource(path string) (*SQLiteSource, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot open database %s: %w", path, err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'users'`).Scan(&n); err != nil || n == 0 {
		db.Close()
		return nil, fmt.Errorf("database %s has no users table", path)
	}
	return &SQLiteSource{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *SQLiteSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file.
func (s *SQLiteSource) Path() string {
	return s.path
}

const userColumns = `id, display_name, job_title, department, mail, upn`

func scanMember(row interface{ Scan(...any) error }) (model.Member, error) {
	var m model.Member
	var title, dept, mail, upn sql.NullString
	if err := row.Scan(&m.ID, &m.DisplayName, &title, &dept, &mail, &upn); err != nil {
		return model.Member{}, err
	}
	m.JobTitle = title.String
	m.Department = dept.String
	m.Mail = mail.String
	m.UserPrincipalName = upn.String
	m.Initials = model.Initials(m.DisplayName)
	return m, nil
}

// ResolveIdentity matches email against mail, upn or id, case-insensitively.
func (s *SQLiteSource) ResolveIdentity(ctx context.Context, email string) (model.Member, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.Member{}, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users
		WHERE mail = ? COLLATE NOCASE OR upn = ? COLLATE NOCASE OR id = ? COLLATE NOCASE
		ORDER BY position LIMIT 1`, email, email, email)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Member{}, ErrNotFound
	}
	if err != nil {
		return model.Member{}, fmt.Errorf("resolving %s: %w", email, err)
	}
	return m, nil
}

// DirectReports returns the users managed by id in stored order.
func (s *SQLiteSource) DirectReports(ctx context.Context, id string) ([]model.Member, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users
		WHERE manager_id = ? ORDER BY position, rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("direct reports of %s: %w", id, err)
	}
	defer rows.Close()

	var out []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("direct reports of %s: %w", id, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return out, nil
}

// Photo returns the stored photo blob, or nil.
func (s *SQLiteSource) Photo(ctx context.Context, id string) ([]byte, error) {
	var photo []byte
	err := s.db.QueryRowContext(ctx, `SELECT photo FROM users WHERE id = ?`, id).Scan(&photo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return photo, err
}

// Meta returns a chart_meta value, or "" when unset.
func (s *SQLiteSource) Meta(ctx context.Context, key string) string {
	var v sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT value FROM chart_meta WHERE key = ?`, key).Scan(&v); err != nil {
		return ""
	}
	return v.String
}

// CountUsers returns the number of cached users.
func (s *SQLiteSource) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
