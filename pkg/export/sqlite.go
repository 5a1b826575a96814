package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/orgview/internal/datasource"
	"github.com/vanderheijden86/orgview/pkg/metrics"
	"github.com/vanderheijden86/orgview/pkg/model"
)

// SQLiteMeta is stored in chart_meta alongside the users.
type SQLiteMeta struct {
	Description  string
	RootIdentity string
	MaxDepth     int
	Demo         bool
	ExportedAt   time.Time
}

// SaveSQLite writes members to a fresh directory cache at path. Dataset
// order is kept in the position column so the sqlite source returns reports
// in the order they were loaded.
func SaveSQLite(path string, members []model.Member, meta SQLiteMeta) error {
	if len(members) == 0 {
		return fmt.Errorf("no members to export")
	}
	defer metrics.Timer(metrics.ExportRender)()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(datasource.SQLiteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := insertUsers(tx, members); err != nil {
		tx.Rollback()
		return fmt.Errorf("insert users: %w", err)
	}
	if err := insertMeta(tx, meta, len(members)); err != nil {
		tx.Rollback()
		return fmt.Errorf("insert meta: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if _, err := db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

func insertUsers(tx *sql.Tx, members []model.Member) error {
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO users
		(id, display_name, job_title, department, mail, upn, manager_id, photo, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range members {
		var photo any
		if m.HasPhoto() {
			photo = m.Photo
		}
		if _, err := stmt.Exec(m.ID, m.DisplayName, nullable(m.JobTitle), nullable(m.Department),
			nullable(m.Mail), nullable(m.UserPrincipalName), nullable(m.Parent), photo, i); err != nil {
			return fmt.Errorf("user %s: %w", m.ID, err)
		}
	}
	return nil
}

func insertMeta(tx *sql.Tx, meta SQLiteMeta, count int) error {
	exported := meta.ExportedAt
	if exported.IsZero() {
		exported = time.Now()
	}
	values := map[string]string{
		"description":   meta.Description,
		"root_identity": meta.RootIdentity,
		"max_depth":     strconv.Itoa(meta.MaxDepth),
		"demo":          strconv.FormatBool(meta.Demo),
		"exported_at":   exported.UTC().Format(time.RFC3339),
		"member_count":  strconv.Itoa(count),
	}
	for k, v := range values {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO chart_meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return err
		}
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
