package datasource

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/orgview/pkg/model"
)

// ManagerChange records a member whose reporting line moved between loads.
type ManagerChange struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// OrgDiff describes what changed between two loads of the same chart.
type OrgDiff struct {
	Joined      []string        `json:"joined,omitempty"` // ids only in the new load
	Left        []string        `json:"left,omitempty"`   // ids only in the old load
	Moved       []ManagerChange `json:"moved,omitempty"`
	TitleChange []string        `json:"title_change,omitempty"`
	CountBefore int             `json:"count_before"`
	CountAfter  int             `json:"count_after"`
}

// HasChanges reports whether anything differs.
func (d OrgDiff) HasChanges() bool {
	return len(d.Joined) > 0 || len(d.Left) > 0 || len(d.Moved) > 0 || len(d.TitleChange) > 0
}

// Summary returns a one-line description of the changes.
func (d OrgDiff) Summary() string {
	if !d.HasChanges() {
		return fmt.Sprintf("no changes (%d members)", d.CountAfter)
	}
	var parts []string
	if n := len(d.Joined); n > 0 {
		parts = append(parts, fmt.Sprintf("%d joined", n))
	}
	if n := len(d.Left); n > 0 {
		parts = append(parts, fmt.Sprintf("%d left", n))
	}
	if n := len(d.Moved); n > 0 {
		parts = append(parts, fmt.Sprintf("%d changed manager", n))
	}
	if n := len(d.TitleChange); n > 0 {
		parts = append(parts, fmt.Sprintf("%d changed title", n))
	}
	return strings.Join(parts, ", ")
}

// Diff compares two member lists by id. Output slices follow the order of
// the list the ids come from.
func Diff(before, after []model.Member) OrgDiff {
	d := OrgDiff{CountBefore: len(before), CountAfter: len(after)}

	prev := make(map[string]model.Member, len(before))
	for _, m := range before {
		if _, ok := prev[m.ID]; !ok {
			prev[m.ID] = m
		}
	}
	next := make(map[string]bool, len(after))
	for _, m := range after {
		if next[m.ID] {
			continue
		}
		next[m.ID] = true
		old, ok := prev[m.ID]
		if !ok {
			d.Joined = append(d.Joined, m.ID)
			continue
		}
		if old.Parent != m.Parent {
			d.Moved = append(d.Moved, ManagerChange{ID: m.ID, Name: m.DisplayName, Before: old.Parent, After: m.Parent})
		}
		if old.JobTitle != m.JobTitle {
			d.TitleChange = append(d.TitleChange, m.ID)
		}
	}
	seen := make(map[string]bool, len(before))
	for _, m := range before {
		if !next[m.ID] && !seen[m.ID] {
			d.Left = append(d.Left, m.ID)
		}
		seen[m.ID] = true
	}
	return d
}
