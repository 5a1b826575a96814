package ui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vanderheijden86/orgview/pkg/hierarchy"
	"github.com/vanderheijden86/orgview/pkg/layout"
	"github.com/vanderheijden86/orgview/pkg/model"
)

func demoStore(t *testing.T) *hierarchy.Store {
	t.Helper()
	return hierarchy.New(model.DemoMembers())
}

func mustGet(t *testing.T, store *hierarchy.Store, id string) model.Member {
	t.Helper()
	m, ok := store.Get(id)
	if !ok {
		t.Fatalf("member %s not found", id)
	}
	return m
}

func TestDetailTabCycle(t *testing.T) {
	if tabTeam.next() != tabOverview {
		t.Error("next should wrap from Team to Overview")
	}
	if tabOverview.prev() != tabTeam {
		t.Error("prev should wrap from Overview to Team")
	}
	if tabOrg.String() != "Org" {
		t.Errorf("unexpected tab name %q", tabOrg.String())
	}
}

func TestDetailsMarkdownOverview(t *testing.T) {
	store := demoStore(t)

	root := detailsMarkdown(store, mustGet(t, store, "1"), tabOverview)
	for _, want := range []string{
		"## Organization",
		"3 direct reports, 9 in total",
		"5 managers, 4 individual contributors",
		"Departments: Technology, Finance, Operations",
	} {
		if !strings.Contains(root, want) {
			t.Errorf("root overview missing %q:\n%s", want, root)
		}
	}
	if strings.Contains(root, "## Reports To") {
		t.Error("root has no manager")
	}

	leaf := detailsMarkdown(store, mustGet(t, store, "9"), tabOverview)
	if !strings.Contains(leaf, "**David Lee** · VP of Engineering") {
		t.Errorf("leaf overview should name its manager:\n%s", leaf)
	}
	if strings.Contains(leaf, "## Organization") {
		t.Error("a member without reports has no organization section")
	}
}

func TestDetailsMarkdownContact(t *testing.T) {
	members := []model.Member{
		{ID: "a", DisplayName: "Ada Admin", Mail: "ada@example.com", UserPrincipalName: "ada@corp.example.com"},
	}
	store := hierarchy.New(members)
	md := detailsMarkdown(store, members[0], tabOverview)
	if !strings.Contains(md, "ada@example.com") || !strings.Contains(md, "UPN: `ada@corp.example.com`") {
		t.Errorf("contact section incomplete:\n%s", md)
	}

	bare := model.Member{ID: "b", DisplayName: "Bo Bare"}
	md = detailsMarkdown(hierarchy.New([]model.Member{bare}), bare, tabOverview)
	if !strings.Contains(md, "_No contact details._") {
		t.Errorf("expected placeholder, got:\n%s", md)
	}
}

func TestDetailsMarkdownOrg(t *testing.T) {
	store := demoStore(t)

	md := detailsMarkdown(store, mustGet(t, store, "9"), tabOrg)
	if !strings.Contains(md, "John › Sarah › David › James") {
		t.Errorf("reporting line missing:\n%s", md)
	}

	md = detailsMarkdown(store, mustGet(t, store, "2"), tabOrg)
	if !strings.Contains(md, "## Peers (2)") || !strings.Contains(md, "Mike Williams") {
		t.Errorf("peers missing:\n%s", md)
	}

	md = detailsMarkdown(store, mustGet(t, store, "1"), tabOrg)
	if !strings.Contains(md, "_No peers._") {
		t.Errorf("root should have no peers:\n%s", md)
	}
}

func TestDetailsMarkdownPeerLimit(t *testing.T) {
	members := []model.Member{{ID: "boss", DisplayName: "Big Boss"}}
	for i := 0; i < 8; i++ {
		members = append(members, model.Member{ID: fmt.Sprintf("p%d", i), DisplayName: fmt.Sprintf("Peer %d", i), Parent: "boss"})
	}
	store := hierarchy.New(members)
	md := detailsMarkdown(store, members[1], tabOrg)
	if !strings.Contains(md, "## Peers (7)") || !strings.Contains(md, "_+2 more peers_") {
		t.Errorf("peer list should be capped:\n%s", md)
	}
	if strings.Contains(md, "Peer 7") {
		t.Error("peers past the limit must not be listed")
	}
}

func TestDetailsMarkdownTeam(t *testing.T) {
	store := demoStore(t)

	md := detailsMarkdown(store, mustGet(t, store, "1"), tabTeam)
	for _, want := range []string{"## Direct Reports (3)", "**Sarah Johnson** · Chief Technology Officer (4)", "**Mike Williams** · Chief Financial Officer (1)"} {
		if !strings.Contains(md, want) {
			t.Errorf("team tab missing %q:\n%s", want, md)
		}
	}

	md = detailsMarkdown(store, mustGet(t, store, "10"), tabTeam)
	if !strings.Contains(md, "_No direct reports_") {
		t.Errorf("leaf team tab:\n%s", md)
	}
}

func TestDetailsModelShowResetsTab(t *testing.T) {
	store := demoStore(t)
	d := NewDetailsModel(TestTheme(), true)
	d.SetSize(50, 20)

	d.Show(store, mustGet(t, store, "2"))
	d.SetTab(tabTeam)
	d.Show(store, mustGet(t, store, "2"))
	if d.Tab() != tabTeam {
		t.Error("re-showing the same member keeps the tab")
	}
	d.Show(store, mustGet(t, store, "3"))
	if d.Tab() != tabOverview {
		t.Error("showing another member resets to Overview")
	}

	view := stripANSI(d.View(layout.DepartmentPalette(store.Members()), false))
	for _, want := range []string{"MW", "Mike Williams", "Chief Financial Officer · Finance", "Overview", "Team"} {
		if !strings.Contains(view, want) {
			t.Errorf("details view missing %q:\n%s", want, view)
		}
	}
}

func TestDetailsModelEmpty(t *testing.T) {
	d := NewDetailsModel(TestTheme(), false)
	d.SetSize(50, 12)
	view := stripANSI(d.View(layout.Palette{}, false))
	if !strings.Contains(view, "Select a member") {
		t.Errorf("expected hint, got:\n%s", view)
	}
	d.SetDark(true)
	if d.renderer == nil {
		t.Error("SetDark should rebuild the renderer")
	}
}
