package hierarchy

import (
	"testing"

	"github.com/vanderheijden86/orgview/pkg/model"
	"github.com/vanderheijden86/orgview/pkg/testutil"
	"pgregory.net/rapid"
)

func demoStore() *Store {
	return New(model.DemoMembers())
}

func TestChildrenInDatasetOrder(t *testing.T) {
	s := demoStore()
	testutil.AssertIDs(t, s.Children("1"), "2", "3", "4")
	testutil.AssertIDs(t, s.Children("2"), "5", "6")
	if got := s.Children("9"); len(got) != 0 {
		t.Errorf("expected leaf to have no children, got %v", testutil.GetIDs(got))
	}
	if got := s.Children("nope"); len(got) != 0 {
		t.Errorf("expected unknown id to have no children, got %v", testutil.GetIDs(got))
	}
}

func TestSiblings(t *testing.T) {
	s := demoStore()
	testutil.AssertIDs(t, s.Siblings("3"), "2", "4")
	if got := s.Siblings("1"); len(got) != 0 {
		t.Errorf("root should have no siblings, got %v", testutil.GetIDs(got))
	}
	if got := s.Siblings("nope"); len(got) != 0 {
		t.Errorf("unknown id should have no siblings, got %v", testutil.GetIDs(got))
	}
}

func TestRootAndParent(t *testing.T) {
	s := demoStore()
	root, ok := s.Root()
	if !ok || root.ID != "1" {
		t.Fatalf("expected root 1, got %v (ok=%v)", root.ID, ok)
	}
	p, ok := s.Parent("9")
	if !ok || p.ID != "5" {
		t.Errorf("expected parent 5, got %v (ok=%v)", p.ID, ok)
	}
	if _, ok := s.Parent("1"); ok {
		t.Error("root should have no parent")
	}
}

func TestAncestorChainAndDepth(t *testing.T) {
	s := demoStore()
	testutil.AssertIDs(t, s.AncestorChain("9"), "1", "2", "5", "9")
	testutil.AssertIDs(t, s.Ancestors("9"), "5", "2", "1")
	if d := s.Depth("9"); d != 3 {
		t.Errorf("expected depth 3, got %d", d)
	}
	if d := s.Depth("1"); d != 0 {
		t.Errorf("expected root depth 0, got %d", d)
	}
	if d := s.Depth("nope"); d != 0 {
		t.Errorf("expected unknown depth 0, got %d", d)
	}
	if got := s.AncestorChain("nope"); len(got) != 0 {
		t.Errorf("expected empty chain for unknown id, got %v", testutil.GetIDs(got))
	}
}

func TestDescendants(t *testing.T) {
	s := demoStore()
	if n := s.DescendantCount("1"); n != 9 {
		t.Errorf("expected 9 descendants of root, got %d", n)
	}
	testutil.AssertIDs(t, s.Descendants("2"), "5", "6", "9", "10")
	if n := s.DescendantCount("10"); n != 0 {
		t.Errorf("expected leaf to have 0 descendants, got %d", n)
	}
}

func TestRoleBreakdown(t *testing.T) {
	s := demoStore()
	b := s.RoleBreakdown("2")
	if b.Managers != 2 || b.ICs != 2 {
		t.Errorf("expected 2 managers and 2 ICs, got %+v", b)
	}
	if len(b.Departments) != 2 || b.Departments[0] != "Engineering" || b.Departments[1] != "Product" {
		t.Errorf("unexpected departments %v", b.Departments)
	}
}

func TestDanglingParentTreatedAsRootless(t *testing.T) {
	s := New([]model.Member{
		{ID: "a", DisplayName: "A"},
		{ID: "b", DisplayName: "B", Parent: "ghost"},
		{ID: "c", DisplayName: "C", Parent: "b"},
	})
	if _, ok := s.Parent("b"); ok {
		t.Error("dangling parent should resolve to no parent")
	}
	if d := s.Depth("c"); d != 1 {
		t.Errorf("expected depth 1 below dangling member, got %d", d)
	}
	testutil.AssertIDs(t, s.AncestorChain("c"), "b", "c")
	testutil.AssertIDs(t, s.Roots(), "a", "b")
}

func TestCycleTerminates(t *testing.T) {
	s := New([]model.Member{
		{ID: "root", DisplayName: "R"},
		{ID: "a", DisplayName: "A", Parent: "b"},
		{ID: "b", DisplayName: "B", Parent: "a"},
	})
	if d := s.Depth("a"); d != 1 {
		t.Errorf("expected bounded depth 1 inside cycle, got %d", d)
	}
	testutil.AssertIDs(t, s.AncestorChain("a"), "b", "a")
	testutil.AssertIDs(t, s.Descendants("a"), "b")
	if s.IsAncestor("a", "a") {
		t.Error("a member is never its own strict ancestor")
	}
}

func TestDuplicateIDsKeepFirst(t *testing.T) {
	s := New([]model.Member{
		{ID: "1", DisplayName: "First"},
		{ID: "1", DisplayName: "Second"},
	})
	m, _ := s.Get("1")
	if m.DisplayName != "First" {
		t.Errorf("expected first occurrence to win, got %q", m.DisplayName)
	}
	if s.Len() != 2 {
		t.Errorf("expected Len to count raw members, got %d", s.Len())
	}
}

func TestEmptyStore(t *testing.T) {
	s := New(nil)
	if _, ok := s.Root(); ok {
		t.Error("empty store has no root")
	}
	if s.MaxDepth() != 0 {
		t.Error("empty store has max depth 0")
	}
}

func TestPropertyBreadcrumbShape(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		members := testutil.OrgGen(40).Draw(t, "org")
		s := New(members)
		root, _ := s.Root()
		for _, m := range members {
			chain := s.AncestorChain(m.ID)
			if len(chain) == 0 || chain[0].ID != root.ID {
				t.Fatalf("chain for %s does not start at root: %v", m.ID, testutil.GetIDs(chain))
			}
			if chain[len(chain)-1].ID != m.ID {
				t.Fatalf("chain for %s does not end at itself", m.ID)
			}
			for i := 1; i < len(chain); i++ {
				if chain[i].Parent != chain[i-1].ID {
					t.Fatalf("chain for %s breaks at %d", m.ID, i)
				}
			}
			if s.Depth(m.ID) != len(chain)-1 {
				t.Fatalf("depth of %s = %d, chain length %d", m.ID, s.Depth(m.ID), len(chain))
			}
		}
	})
}

func TestPropertyChildrenPartitionNonRoots(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		members := testutil.OrgGen(40).Draw(t, "org")
		s := New(members)
		total := 0
		for _, m := range members {
			for _, c := range s.Children(m.ID) {
				if c.Parent != m.ID {
					t.Fatalf("child %s of %s has parent %s", c.ID, m.ID, c.Parent)
				}
				total++
			}
		}
		if total != len(members)-1 {
			t.Fatalf("children cover %d members, want %d", total, len(members)-1)
		}
		root, _ := s.Root()
		if s.DescendantCount(root.ID) != len(members)-1 {
			t.Fatalf("root descendant count %d, want %d", s.DescendantCount(root.ID), len(members)-1)
		}
	})
}

func TestPropertyMalformedNeverHangs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		members := testutil.MalformedOrgGen(25).Draw(t, "org")
		s := New(members)
		for _, m := range members {
			if d := s.Depth(m.ID); d > s.Len() {
				t.Fatalf("depth %d exceeds member count %d", d, s.Len())
			}
			_ = s.AncestorChain(m.ID)
			_ = s.Descendants(m.ID)
			_ = s.RoleBreakdown(m.ID)
		}
		_ = s.Integrity()
	})
}
