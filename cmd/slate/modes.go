package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// promptPolicy decides whether slate may open interactive prompts for
// inputs missing from the command line.
type promptPolicy int

const (
	promptAuto promptPolicy = iota
	promptAlways
	promptNever
)

func parsePromptPolicy(value string) (promptPolicy, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return promptAuto, nil
	case "on":
		return promptAlways, nil
	case "off":
		return promptNever, nil
	default:
		return 0, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// allowsPrompts reports whether prompts may run. Auto defers to the
// terminal check so piped invocations stay scriptable.
func (p promptPolicy) allowsPrompts() bool {
	switch p {
	case promptAlways:
		return true
	case promptNever:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

// applyColorMode gates all colored output for this process.
func applyColorMode(value string) error {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		color.NoColor = !isTerminal(os.Stdout)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
	return nil
}
