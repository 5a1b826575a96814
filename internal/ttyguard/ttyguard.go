// Package ttyguard keeps headless orgview runs free of terminal queries.
//
// Importing bubbletea makes lipgloss probe the terminal for its background
// colour, which writes OSC/DSR sequences to stdout. In a real terminal they
// are invisible; piped into a JSON consumer or written next to an exported
// file they corrupt the output. Headless invocations set CI=1 before any of
// that runs, which termenv honours by skipping the probe.
//
// Import it for its side effect, first among the imports of main.
package ttyguard

import (
	"os"
	"strings"
)

func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !Headless(os.Args[1:], os.Getenv("ORGVIEW_ROBOT") == "1", os.Getenv("ORGVIEW_TEST_MODE") != "") {
		return
	}
	_ = os.Setenv("CI", "1")
}

// Headless reports whether args describe a run that never starts the TUI:
// robot output, an export, or --version/--help.
func Headless(args []string, envRobot, envTest bool) bool {
	if envRobot || envTest {
		return true
	}
	for _, arg := range args {
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if i := strings.IndexByte(name, '='); i >= 0 {
			name = name[:i]
		}
		switch {
		case strings.HasPrefix(name, "robot-"), strings.HasPrefix(name, "export-"):
			return true
		case name == "version", name == "help":
			return true
		}
	}
	return false
}
