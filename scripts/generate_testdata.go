//go:build ignore

// generate_testdata.go writes sample directory files for trying orgview on
// charts larger than the demo data.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/directories/small.json   (50 members)
//	testdata/directories/medium.json  (500 members)
//	testdata/directories/large.json   (5000 members)
//
// Point a config at one with source kind "file" and root_user_email
// u0@example.com (the generated root).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/orgview/internal/datasource"
	"github.com/vanderheijden86/orgview/pkg/testutil"
)

type datasetSpec struct {
	name string
	size int
}

var datasets = []datasetSpec{
	{"small", 50},
	{"medium", 500},
	{"large", 5000},
}

func main() {
	outputDir := "testdata/directories"
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		gen := testutil.New(testutil.GeneratorConfig{Seed: int64(ds.size), IDPrefix: "u"})
		members := gen.Random(ds.size)

		entries := make([]datasource.DirectoryEntry, 0, len(members))
		for _, m := range members {
			entries = append(entries, datasource.DirectoryEntry{
				ID:          m.ID,
				DisplayName: m.DisplayName,
				JobTitle:    m.JobTitle,
				Department:  m.Department,
				Mail:        m.Mail,
				Manager:     m.Parent,
			})
		}

		data, err := json.MarshalIndent(map[string]any{"users": entries}, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal %s: %v\n", ds.name, err)
			os.Exit(1)
		}
		path := filepath.Join(outputDir, ds.name+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s (%d members, root %s)\n", path, len(members), members[0].Mail)
	}
}
