package datasource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/orgview/pkg/model"
)

// DirectoryEntry is one user in a directory file.
type DirectoryEntry struct {
	ID                string `json:"id" yaml:"id"`
	DisplayName       string `json:"displayName" yaml:"displayName"`
	JobTitle          string `json:"jobTitle,omitempty" yaml:"jobTitle,omitempty"`
	Department        string `json:"department,omitempty" yaml:"department,omitempty"`
	Mail              string `json:"mail,omitempty" yaml:"mail,omitempty"`
	UserPrincipalName string `json:"userPrincipalName,omitempty" yaml:"userPrincipalName,omitempty"`
	Manager           string `json:"manager,omitempty" yaml:"manager,omitempty"` // Manager's id
	Photo             string `json:"photo,omitempty" yaml:"photo,omitempty"`     // Image path, relative to the file
}

// directoryFile accepts both a bare list and {"users": [...]}.
type directoryFile struct {
	Users []DirectoryEntry `json:"users" yaml:"users"`
}

// FileSource serves a directory loaded from a JSON or YAML file. The file is
// read once at construction.
type FileSource struct {
	path    string
	dir     string
	entries []DirectoryEntry
	reports map[string][]int // manager id -> entry indices
}

// NewFileSource reads and indexes the directory file at path.
func NewFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory file: %w", err)
	}
	entries, err := parseDirectory(path, data)
	if err != nil {
		return nil, fmt.Errorf("parsing directory file %s: %w", path, err)
	}
	return newFileSource(path, entries), nil
}

func newFileSource(path string, entries []DirectoryEntry) *FileSource {
	fs := &FileSource{
		path:    path,
		dir:     filepath.Dir(path),
		entries: entries,
		reports: make(map[string][]int),
	}
	for i, e := range entries {
		if e.Manager != "" {
			fs.reports[e.Manager] = append(fs.reports[e.Manager], i)
		}
	}
	return fs
}

func parseDirectory(path string, data []byte) ([]DirectoryEntry, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	var (
		list    []DirectoryEntry
		wrapped directoryFile
	)
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.Unmarshal(data, &list); err == nil {
			return list, nil
		}
		if err := yaml.Unmarshal(data, &wrapped); err != nil {
			return nil, err
		}
		return wrapped.Users, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Users, nil
}

// Path returns the file the source was read from.
func (f *FileSource) Path() string {
	return f.path
}

// Len returns the number of entries in the file.
func (f *FileSource) Len() int {
	return len(f.entries)
}

func (e DirectoryEntry) member() model.Member {
	return model.Member{
		ID:                e.ID,
		DisplayName:       e.DisplayName,
		JobTitle:          e.JobTitle,
		Department:        e.Department,
		Mail:              e.Mail,
		UserPrincipalName: e.UserPrincipalName,
		Initials:          model.Initials(e.DisplayName),
	}
}

// ResolveIdentity finds the entry whose mail, UPN or id matches email.
func (f *FileSource) ResolveIdentity(ctx context.Context, email string) (model.Member, error) {
	if err := ctx.Err(); err != nil {
		return model.Member{}, err
	}
	for _, e := range f.entries {
		m := e.member()
		if matchesIdentity(m, email) {
			return m, nil
		}
	}
	return model.Member{}, ErrNotFound
}

// DirectReports returns the entries whose manager is id, in file order.
func (f *FileSource) DirectReports(ctx context.Context, id string) ([]model.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx := f.reports[id]
	out := make([]model.Member, 0, len(idx))
	for _, i := range idx {
		out = append(out, f.entries[i].member())
	}
	return out, nil
}

// Photo reads the image file referenced by the entry, if any.
func (f *FileSource) Photo(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, e := range f.entries {
		if e.ID != id || e.Photo == "" {
			continue
		}
		p := e.Photo
		if !filepath.IsAbs(p) {
			p = filepath.Join(f.dir, p)
		}
		data, err := os.ReadFile(p)
		if os.IsNotExist(err) {
			return nil, nil
		}
		return data, err
	}
	return nil, nil
}
