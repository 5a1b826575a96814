package export

import (
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/orgview/pkg/hierarchy"
	"github.com/vanderheijden86/orgview/pkg/layout"
	"github.com/vanderheijden86/orgview/pkg/metrics"
	"github.com/vanderheijden86/orgview/pkg/model"
	"github.com/vanderheijden86/orgview/pkg/version"
)

// ReportMember is one member in the machine-readable report.
type ReportMember struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Title         string   `json:"title,omitempty"`
	Department    string   `json:"department,omitempty"`
	Mail          string   `json:"mail,omitempty"`
	Parent        string   `json:"parent,omitempty"`
	Depth         int      `json:"depth"`
	DirectReports int      `json:"direct_reports"`
	TotalReports  int      `json:"total_reports"`
	Path          []string `json:"path"` // root to member, ids
	Color         string   `json:"color"`
}

// LayoutEntry is a member position in the compact layout, in percent.
type LayoutEntry struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Level int     `json:"level"`
}

// Report is the --robot-json document.
type Report struct {
	GeneratedAt  time.Time         `json:"generated_at"`
	Version      string            `json:"version"`
	Description  string            `json:"description"`
	RootIdentity string            `json:"root_identity,omitempty"`
	Demo         bool              `json:"demo"`
	Message      string            `json:"message,omitempty"`
	MemberCount  int               `json:"member_count"`
	Depth        int               `json:"depth"`
	Departments  []string          `json:"departments,omitempty"`
	Root         string            `json:"root,omitempty"`
	Members      []ReportMember    `json:"members"`
	Layout       []LayoutEntry     `json:"layout"`
	Integrity    hierarchy.Report  `json:"integrity"`
	Metrics      *metrics.Snapshot `json:"metrics,omitempty"`
}

// ReportOptions carries the context of a load into the report.
type ReportOptions struct {
	Description    string
	RootIdentity   string
	Demo           bool
	Message        string
	IncludeMetrics bool
	Now            time.Time
}

// BuildReport derives the report for members.
func BuildReport(members []model.Member, opts ReportOptions) Report {
	store := hierarchy.New(members)
	palette := layout.DepartmentPalette(store.Members())

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	r := Report{
		GeneratedAt:  now.UTC(),
		Version:      version.Version,
		Description:  opts.Description,
		RootIdentity: opts.RootIdentity,
		Demo:         opts.Demo,
		Message:      opts.Message,
		MemberCount:  store.Len(),
		Depth:        store.MaxDepth(),
		Departments:  store.Departments(),
		Members:      make([]ReportMember, 0, store.Len()),
		Integrity:    store.Integrity(),
	}
	if root, ok := store.Root(); ok {
		r.Root = root.ID
	}

	for _, m := range store.Members() {
		chain := store.AncestorChain(m.ID)
		path := make([]string, 0, len(chain))
		for _, a := range chain {
			path = append(path, a.ID)
		}
		r.Members = append(r.Members, ReportMember{
			ID:            m.ID,
			Name:          m.DisplayName,
			Title:         m.JobTitle,
			Department:    m.Department,
			Mail:          m.Mail,
			Parent:        m.Parent,
			Depth:         store.Depth(m.ID),
			DirectReports: len(store.Children(m.ID)),
			TotalReports:  store.DescendantCount(m.ID),
			Path:          path,
			Color:         palette.Color(m),
		})
	}

	res := layout.Compact(store)
	r.Layout = make([]LayoutEntry, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		r.Layout = append(r.Layout, LayoutEntry{ID: n.Member.ID, X: n.X, Y: n.Y, Level: n.Level})
	}

	if opts.IncludeMetrics {
		snap := metrics.TakeSnapshot()
		r.Metrics = &snap
	}
	return r
}

// WriteJSON encodes r as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
