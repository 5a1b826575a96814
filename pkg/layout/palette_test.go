package layout

import (
	"testing"

	"github.com/vanderheijden86/orgview/pkg/model"
)

func TestDepartmentPaletteFirstSeenOrder(t *testing.T) {
	p := DepartmentPalette(model.DemoMembers())
	want := []string{"Executive", "Technology", "Finance", "Operations", "Engineering", "Product"}
	got := p.Departments()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if c := p.Color(model.Member{ID: "x", Department: "Finance"}); c != DepartmentColors[2] {
		t.Errorf("expected Finance to get third colour, got %s", c)
	}
	if n := len(p.Legend(3)); n != 3 {
		t.Errorf("expected legend limited to 3, got %d", n)
	}
}

func TestPaletteWraps(t *testing.T) {
	var members []model.Member
	for _, d := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"} {
		members = append(members, model.Member{ID: d, Department: d})
	}
	p := DepartmentPalette(members)
	if p.Color(members[8]) != DepartmentColors[0] {
		t.Errorf("ninth department should wrap to the first colour")
	}
}

func TestColorFallsBackToAvatar(t *testing.T) {
	p := DepartmentPalette(nil)
	m := model.Member{ID: "2"}
	if got := p.Color(m); got != AvatarColor("2") {
		t.Errorf("expected avatar colour, got %s", got)
	}
}

func TestAvatarColor(t *testing.T) {
	tests := map[string]string{
		"1":  "#00a36c", // 49 % 6 = 1
		"2":  "#744da9", // 50 % 6 = 2
		"10": "#00a36c", // 48 + 31*49 = 1567, % 6 = 1
	}
	for id, want := range tests {
		if got := AvatarColor(id); got != want {
			t.Errorf("AvatarColor(%q) = %s, want %s", id, got, want)
		}
	}
	long := "a-very-long-identifier-that-overflows-32-bits"
	if AvatarColor(long) != AvatarColor(long) {
		t.Error("avatar colour must be stable")
	}
}

func TestAdjustColor(t *testing.T) {
	tests := []struct {
		in     string
		amount int
		want   string
	}{
		{"#6366f1", -20, "#4f52dd"},
		{"#ffffff", 20, "#ffffff"},
		{"#000000", -5, "#000000"},
		{"#101010", 16, "#202020"},
		{"bogus", 10, "bogus"},
	}
	for _, tt := range tests {
		if got := AdjustColor(tt.in, tt.amount); got != tt.want {
			t.Errorf("AdjustColor(%q, %d) = %s, want %s", tt.in, tt.amount, got, tt.want)
		}
	}
}
