package model

import "testing"

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"two tokens", "John Smith", "JS"},
		{"three tokens truncated", "Mary Ann Jones", "MA"},
		{"single token", "cher", "C"},
		{"extra whitespace", "  lisa   chen ", "LC"},
		{"empty", "", ""},
		{"unicode", "Émile Zola", "ÉZ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Initials(tt.in); got != tt.want {
				t.Errorf("Initials(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEffectiveInitialsPrefersStored(t *testing.T) {
	m := Member{ID: "x", DisplayName: "John Smith", Initials: "JJ"}
	if got := m.EffectiveInitials(); got != "JJ" {
		t.Errorf("expected stored initials JJ, got %q", got)
	}
	m.Initials = ""
	if got := m.EffectiveInitials(); got != "JS" {
		t.Errorf("expected derived initials JS, got %q", got)
	}
}

func TestValidate(t *testing.T) {
	if err := (Member{ID: "1", DisplayName: "A"}).Validate(); err != nil {
		t.Errorf("expected valid member, got %v", err)
	}
	if err := (Member{DisplayName: "A"}).Validate(); err == nil {
		t.Error("expected error for empty id")
	}
	if err := (Member{ID: "1"}).Validate(); err == nil {
		t.Error("expected error for empty display name")
	}
	if err := (Member{ID: "1", DisplayName: "A", Parent: "1"}).Validate(); err == nil {
		t.Error("expected error for self-reporting member")
	}
}

func TestDemoMembersIsCopy(t *testing.T) {
	a := DemoMembers()
	a[0].DisplayName = "changed"
	b := DemoMembers()
	if b[0].DisplayName != "John Smith" {
		t.Fatalf("demo dataset was mutated through a returned copy: %q", b[0].DisplayName)
	}
	if len(b) != 10 {
		t.Fatalf("expected 10 demo members, got %d", len(b))
	}
	if !IsDemo(b) {
		t.Error("IsDemo should recognise the demo dataset")
	}
	if IsDemo(b[:3]) {
		t.Error("IsDemo should reject a truncated dataset")
	}
}

func TestDemoInitialsMatchDerived(t *testing.T) {
	for _, m := range DemoMembers() {
		if got := Initials(m.DisplayName); got != m.Initials {
			t.Errorf("member %s: stored initials %q, derived %q", m.ID, m.Initials, got)
		}
	}
}

func TestWithDerivedInitials(t *testing.T) {
	in := []Member{{ID: "1", DisplayName: "Ada Lovelace"}, {ID: "2", DisplayName: "Bob", Initials: "ZZ"}}
	out := WithDerivedInitials(in)
	if out[0].Initials != "AL" || out[1].Initials != "ZZ" {
		t.Errorf("unexpected initials: %q %q", out[0].Initials, out[1].Initials)
	}
	if in[0].Initials != "" {
		t.Error("input slice must not be modified")
	}
}
