package report

import (
	"fmt"
	"os"
)

// ColorMode controls when ANSI escapes are emitted.
type ColorMode uint8

const (
	// ColorAuto enables color when stdout is a terminal and NO_COLOR is
	// unset.
	ColorAuto ColorMode = iota

	// ColorAlways forces color on.
	ColorAlways

	// ColorNever forces color off.
	ColorNever
)

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode parses a color mode name from the CLI.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q (expected auto, always or never)", s)
	}
}

// Enabled resolves the mode against the environment.
func (m ColorMode) Enabled(f *os.File) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if _, set := os.LookupEnv("NO_COLOR"); set {
			return false
		}

		return isTerminal(f)
	}
}
