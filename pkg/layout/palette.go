package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vanderheijden86/orgview/pkg/model"
)

// DepartmentColors is assigned to departments in first-seen order.
var DepartmentColors = []string{"#6366f1", "#06b6d4", "#10b981", "#f59e0b", "#ef4444", "#ec4899", "#8b5cf6", "#14b8a6"}

// AvatarColors back members without a department.
var AvatarColors = []string{"#0078d4", "#00a36c", "#744da9", "#d13438", "#ff8c00", "#107c10"}

// Palette maps departments to colours for one dataset.
type Palette struct {
	order  []string
	colors map[string]string
}

// DepartmentPalette assigns DepartmentColors to the departments of members in
// the order they first appear, wrapping when there are more departments than
// colours.
func DepartmentPalette(members []model.Member) Palette {
	p := Palette{colors: make(map[string]string)}
	for _, m := range members {
		if m.Department == "" {
			continue
		}
		if _, ok := p.colors[m.Department]; ok {
			continue
		}
		p.colors[m.Department] = DepartmentColors[len(p.order)%len(DepartmentColors)]
		p.order = append(p.order, m.Department)
	}
	return p
}

// Color returns the member's department colour, or its avatar colour when
// the department is absent or unknown to the palette.
func (p Palette) Color(m model.Member) string {
	if c, ok := p.colors[m.Department]; ok && m.Department != "" {
		return c
	}
	return AvatarColor(m.ID)
}

// Departments returns the departments in assignment order.
func (p Palette) Departments() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Legend returns up to limit (department, colour) pairs in assignment order.
func (p Palette) Legend(limit int) [][2]string {
	n := len(p.order)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([][2]string, 0, n)
	for _, d := range p.order[:n] {
		out = append(out, [2]string{d, p.colors[d]})
	}
	return out
}

// AvatarColor picks a stable colour for id from a rolling 31x string hash.
// The shift wraps at 32 bits.
func AvatarColor(id string) string {
	var h int64
	for _, c := range id {
		h = int64(c) + (int64(int32(h)<<5) - h)
	}
	if h < 0 {
		h = -h
	}
	return AvatarColors[h%int64(len(AvatarColors))]
}

// AdjustColor shifts every channel of a "#rrggbb" colour by amount, clamped
// to [0, 255]. Malformed input is returned unchanged.
func AdjustColor(hex string, amount int) string {
	r, g, b, ok := ParseHex(hex)
	if !ok {
		return hex
	}
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return v
	}
	return fmt.Sprintf("#%02x%02x%02x", clamp(int(r)+amount), clamp(int(g)+amount), clamp(int(b)+amount))
}

// ParseHex decodes "#rrggbb".
func ParseHex(hex string) (r, g, b uint8, ok bool) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}
