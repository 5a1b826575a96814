package testutil

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/vanderheijden86/orgview/pkg/model"
)

// AssertMemberCount verifies the expected number of members.
func AssertMemberCount(t *testing.T, members []model.Member, expected int) {
	t.Helper()
	if len(members) != expected {
		t.Errorf("expected %d members, got %d", expected, len(members))
	}
}

// AssertNoDuplicateIDs verifies all member IDs are unique.
func AssertNoDuplicateIDs(t *testing.T, members []model.Member) {
	t.Helper()
	seen := make(map[string]bool)
	for _, m := range members {
		if seen[m.ID] {
			t.Errorf("duplicate member ID: %s", m.ID)
		}
		seen[m.ID] = true
	}
}

// AssertAllValid verifies all members pass validation.
func AssertAllValid(t *testing.T, members []model.Member) {
	t.Helper()
	for i, m := range members {
		if err := m.Validate(); err != nil {
			t.Errorf("member %d (%s) invalid: %v", i, m.ID, err)
		}
	}
}

// AssertReportsTo verifies that child's parent is parent.
func AssertReportsTo(t *testing.T, members []model.Member, child, parent string) {
	t.Helper()
	m := FindMember(members, child)
	if m == nil {
		t.Errorf("member %s not found", child)
		return
	}
	if m.Parent != parent {
		t.Errorf("expected %s to report to %q, got %q", child, parent, m.Parent)
	}
}

// AssertIDs verifies the member ids, in order.
func AssertIDs(t *testing.T, members []model.Member, expected ...string) {
	t.Helper()
	got := GetIDs(members)
	if len(got) != len(expected) {
		t.Errorf("expected ids %v, got %v", expected, got)
		return
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Errorf("expected ids %v, got %v", expected, got)
			return
		}
	}
}

// AssertJSONEqual compares two values after JSON round-tripping.
func AssertJSONEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// WriteDirectoryFile writes members as a JSON directory file and returns its
// path. Each entry carries its manager id under "manager".
func WriteDirectoryFile(t *testing.T, dir string, members []model.Member) string {
	t.Helper()

	type entry struct {
		ID                string `json:"id"`
		DisplayName       string `json:"displayName"`
		JobTitle          string `json:"jobTitle,omitempty"`
		Department        string `json:"department,omitempty"`
		Mail              string `json:"mail,omitempty"`
		UserPrincipalName string `json:"userPrincipalName,omitempty"`
		Manager           string `json:"manager,omitempty"`
	}
	entries := make([]entry, 0, len(members))
	for _, m := range members {
		entries = append(entries, entry{
			ID: m.ID, DisplayName: m.DisplayName, JobTitle: m.JobTitle, Department: m.Department,
			Mail: m.Mail, UserPrincipalName: m.UserPrincipalName, Manager: m.Parent,
		})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal members: %v", err)
	}
	path := filepath.Join(dir, "directory.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write directory file: %v", err)
	}
	return path
}

// FindMember returns a pointer to the member with id, or nil.
func FindMember(members []model.Member, id string) *model.Member {
	for i := range members {
		if members[i].ID == id {
			return &members[i]
		}
	}
	return nil
}

// GetIDs extracts member ids in order.
func GetIDs(members []model.Member) []string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}
