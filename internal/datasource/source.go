// Package datasource provides the directory backends orgview reads reporting
// lines from: Microsoft Graph, a JSON/YAML directory file, or a SQLite
// directory cache (the same format the sqlite export writes).
package datasource

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/orgview/pkg/model"
)

// ErrNotFound is returned by ResolveIdentity when no user matches.
var ErrNotFound = errors.New("user not found")

// Source is the directory contract the loader depends on. Implementations
// must be safe for concurrent use; the loader fans out DirectReports calls.
type Source interface {
	// ResolveIdentity looks a user up by mail or user principal name.
	ResolveIdentity(ctx context.Context, email string) (model.Member, error)
	// DirectReports returns the users reporting to id, in directory order.
	// Returned members need not have Parent set.
	DirectReports(ctx context.Context, id string) ([]model.Member, error)
}

// PhotoSource is implemented by sources that can fetch profile photos.
// A missing photo is reported as (nil, nil).
type PhotoSource interface {
	Photo(ctx context.Context, id string) ([]byte, error)
}

// SourceType identifies a backend.
type SourceType string

const (
	// SourceTypeGraph is the Microsoft Graph REST API.
	SourceTypeGraph SourceType = "graph"
	// SourceTypeFile is a JSON or YAML directory file.
	SourceTypeFile SourceType = "file"
	// SourceTypeSQLite is a SQLite directory cache.
	SourceTypeSQLite SourceType = "sqlite"
)

// DetectType guesses the backend from a file extension. Unknown extensions
// yield "".
func DetectType(path string) SourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return SourceTypeFile
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite
	}
	return ""
}

// matchesIdentity reports whether m is the user identified by email. Mail,
// user principal name and id are compared case-insensitively.
func matchesIdentity(m model.Member, email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	return strings.EqualFold(m.Mail, email) ||
		strings.EqualFold(m.UserPrincipalName, email) ||
		strings.EqualFold(m.ID, email)
}
