// Package model defines the member record shared by every orgview package.
package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Member is one person in the reports-to hierarchy.
//
// Optional string fields use the empty string for "absent". Parent holds the
// ID of the member this person reports to; an empty Parent marks a root.
type Member struct {
	ID                string `json:"id" yaml:"id"`
	DisplayName       string `json:"displayName" yaml:"display_name"`
	JobTitle          string `json:"jobTitle,omitempty" yaml:"job_title,omitempty"`
	Department        string `json:"department,omitempty" yaml:"department,omitempty"`
	Mail              string `json:"mail,omitempty" yaml:"mail,omitempty"`
	UserPrincipalName string `json:"userPrincipalName,omitempty" yaml:"user_principal_name,omitempty"`
	Photo             []byte `json:"photo,omitempty" yaml:"-"` // Opaque image bytes, best-effort
	Parent            string `json:"parent,omitempty" yaml:"parent,omitempty"`
	Initials          string `json:"initials,omitempty" yaml:"initials,omitempty"`
}

// IsRoot reports whether the member has no parent reference.
func (m Member) IsRoot() bool {
	return m.Parent == ""
}

// HasPhoto reports whether a photo was fetched for this member.
func (m Member) HasPhoto() bool {
	return len(m.Photo) > 0
}

// EffectiveInitials returns the stored initials, deriving them from the
// display name when none were set.
func (m Member) EffectiveInitials() string {
	if m.Initials != "" {
		return m.Initials
	}
	return Initials(m.DisplayName)
}

// FirstName returns the first whitespace-separated token of the display name.
func (m Member) FirstName() string {
	fields := strings.Fields(m.DisplayName)
	if len(fields) == 0 {
		return m.DisplayName
	}
	return fields[0]
}

// TitleOr returns the job title, or fallback when the title is absent.
func (m Member) TitleOr(fallback string) string {
	if m.JobTitle == "" {
		return fallback
	}
	return m.JobTitle
}

// Validate checks the fields every dataset relies on.
// Parent references are not checked here; the hierarchy store tolerates
// dangling parents.
func (m Member) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return errors.New("member id cannot be empty")
	}
	if strings.TrimSpace(m.DisplayName) == "" {
		return fmt.Errorf("member %s: display name cannot be empty", m.ID)
	}
	if m.Parent == m.ID {
		return fmt.Errorf("member %s: cannot report to itself", m.ID)
	}
	return nil
}

// Initials derives up to two upper-case initials from a display name: the
// first rune of each whitespace-separated token.
func Initials(name string) string {
	var sb strings.Builder
	count := 0
	for _, tok := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(tok)
		if r == utf8.RuneError {
			continue
		}
		sb.WriteRune(unicode.ToUpper(r))
		count++
		if count == 2 {
			break
		}
	}
	return sb.String()
}

// WithDerivedInitials returns a copy of members where every member lacking
// initials gets them derived from its display name.
func WithDerivedInitials(members []Member) []Member {
	out := make([]Member, len(members))
	for i, m := range members {
		if m.Initials == "" {
			m.Initials = Initials(m.DisplayName)
		}
		out[i] = m
	}
	return out
}
