// Package testutil provides org-chart fixture generators for tests.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vanderheijden86/orgview/pkg/model"
	"pgregory.net/rapid"
)

var (
	firstNames  = []string{"Ada", "Grace", "Alan", "Edsger", "Barbara", "Ken", "Linus", "Radia", "Donald", "Frances", "Niklaus", "Margaret"}
	lastNames   = []string{"Lovelace", "Hopper", "Turing", "Dijkstra", "Liskov", "Thompson", "Torvalds", "Perlman", "Knuth", "Allen", "Wirth", "Hamilton"}
	titles      = []string{"Engineer", "Senior Engineer", "Manager", "Director", "Designer", "Analyst", "Product Manager"}
	departments = []string{"Engineering", "Product", "Finance", "Operations", "Design", "Sales"}
)

// GeneratorConfig controls member generation.
type GeneratorConfig struct {
	Seed        int64    // Random seed for determinism (0 = use current time)
	IDPrefix    string   // Prefix for member IDs (default: "u")
	Departments []string // Department pool (nil = built-in pool)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:     42, // Deterministic
		IDPrefix: "u",
	}
}

// Generator creates org fixtures with various shapes.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "u"
	}
	if len(cfg.Departments) == 0 {
		cfg.Departments = departments
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// NewDefault creates a Generator with DefaultConfig.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

func (g *Generator) member(i int, parent string) model.Member {
	name := fmt.Sprintf("%s %s", firstNames[g.rng.Intn(len(firstNames))], lastNames[g.rng.Intn(len(lastNames))])
	return model.Member{
		ID:          MemberID(g.cfg.IDPrefix, i),
		DisplayName: name,
		JobTitle:    titles[g.rng.Intn(len(titles))],
		Department:  g.cfg.Departments[g.rng.Intn(len(g.cfg.Departments))],
		Mail:        fmt.Sprintf("%s%d@example.com", g.cfg.IDPrefix, i),
		Parent:      parent,
		Initials:    model.Initials(name),
	}
}

// Chain creates a single line of management: member i reports to i-1.
func (g *Generator) Chain(size int) []model.Member {
	out := make([]model.Member, 0, size)
	for i := 0; i < size; i++ {
		parent := ""
		if i > 0 {
			parent = out[i-1].ID
		}
		out = append(out, g.member(i, parent))
	}
	return out
}

// Star creates one manager with `spokes` direct reports.
func (g *Generator) Star(spokes int) []model.Member {
	out := []model.Member{g.member(0, "")}
	for i := 1; i <= spokes; i++ {
		out = append(out, g.member(i, out[0].ID))
	}
	return out
}

// Tree creates a full tree with the given depth and branching factor.
// Members are emitted level by level.
func (g *Generator) Tree(depth, breadth int) []model.Member {
	if breadth < 1 {
		breadth = 1
	}
	out := []model.Member{g.member(0, "")}
	level := []string{out[0].ID}
	for d := 0; d < depth; d++ {
		var next []string
		for _, parent := range level {
			for b := 0; b < breadth; b++ {
				m := g.member(len(out), parent)
				out = append(out, m)
				next = append(next, m.ID)
			}
		}
		level = next
	}
	return out
}

// Random creates a well-formed org of `size` members where every member
// after the first reports to a uniformly chosen earlier member.
func (g *Generator) Random(size int) []model.Member {
	out := make([]model.Member, 0, size)
	for i := 0; i < size; i++ {
		parent := ""
		if i > 0 {
			parent = out[g.rng.Intn(i)].ID
		}
		out = append(out, g.member(i, parent))
	}
	return out
}

// Cycle creates a rooted chain whose tail loops back: the last `loop`
// members report to each other in a ring and none of them is reachable from
// the root.
func (g *Generator) Cycle(size, loop int) []model.Member {
	if loop > size-1 {
		loop = size - 1
	}
	head := size - loop
	out := g.Chain(head)
	for i := 0; i < loop; i++ {
		next := head + (i+1)%loop
		out = append(out, g.member(head+i, MemberID(g.cfg.IDPrefix, next)))
	}
	return out
}

// Orphans creates a valid tree plus members whose manager id is unknown.
func (g *Generator) Orphans(size, orphans int) []model.Member {
	out := g.Random(size)
	for i := 0; i < orphans; i++ {
		out = append(out, g.member(size+i, "missing-"+MemberID(g.cfg.IDPrefix, i)))
	}
	return out
}

// MemberID returns the canonical test id for index i.
func MemberID(prefix string, i int) string {
	return fmt.Sprintf("%s%d", prefix, i)
}

// OrgGen draws well-formed org trees for rapid property tests: one root,
// unique ids and every parent an earlier member. Departments come from a
// small pool so palette and breakdown properties see repeats.
func OrgGen(maxSize int) *rapid.Generator[[]model.Member] {
	if maxSize < 1 {
		maxSize = 1
	}
	return rapid.Custom(func(t *rapid.T) []model.Member {
		n := rapid.IntRange(1, maxSize).Draw(t, "size")
		out := make([]model.Member, 0, n)
		for i := 0; i < n; i++ {
			parent := ""
			if i > 0 {
				parent = out[rapid.IntRange(0, i-1).Draw(t, fmt.Sprintf("parent%d", i))].ID
			}
			name := rapid.SampledFrom(firstNames).Draw(t, fmt.Sprintf("first%d", i)) + " " +
				rapid.SampledFrom(lastNames).Draw(t, fmt.Sprintf("last%d", i))
			out = append(out, model.Member{
				ID:          MemberID("u", i),
				DisplayName: name,
				JobTitle:    rapid.SampledFrom(titles).Draw(t, fmt.Sprintf("title%d", i)),
				Department:  rapid.SampledFrom(departments).Draw(t, fmt.Sprintf("dept%d", i)),
				Parent:      parent,
			})
		}
		return out
	})
}

// MalformedOrgGen draws datasets that may contain dangling parents, extra
// roots and cycles. Ids stay unique.
func MalformedOrgGen(maxSize int) *rapid.Generator[[]model.Member] {
	if maxSize < 1 {
		maxSize = 1
	}
	return rapid.Custom(func(t *rapid.T) []model.Member {
		n := rapid.IntRange(1, maxSize).Draw(t, "size")
		out := make([]model.Member, 0, n)
		for i := 0; i < n; i++ {
			var parent string
			switch rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("kind%d", i)) {
			case 0:
				parent = ""
			case 1:
				parent = "ghost"
			default:
				parent = MemberID("u", rapid.IntRange(0, n-1).Draw(t, fmt.Sprintf("parent%d", i)))
			}
			out = append(out, model.Member{
				ID:          MemberID("u", i),
				DisplayName: rapid.SampledFrom(firstNames).Draw(t, fmt.Sprintf("name%d", i)),
				Parent:      parent,
			})
		}
		return out
	})
}
