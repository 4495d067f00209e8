package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode is the output mode of the CLI.
type Mode int

const (
	// ModeNonInteractive prints plain log lines (CI, pipes, scripts).
	ModeNonInteractive Mode = iota
	// ModeInteractive renders live progress in the terminal.
	ModeInteractive
)

// EnvNonInteractive forces plain output when set to "1".
const EnvNonInteractive = "ZCLLOAD_NON_INTERACTIVE"

// DetectMode returns ModeNonInteractive when ZCLLOAD_NON_INTERACTIVE=1,
// CI or NO_COLOR is set, or stdout or stderr is not a terminal.
func DetectMode() Mode {
	if os.Getenv(EnvNonInteractive) == "1" {
		return ModeNonInteractive
	}
	if os.Getenv("CI") != "" || os.Getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}
	// progress renders on stderr, results go to stdout
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stderr.Fd())) {
		return ModeNonInteractive
	}
	return ModeInteractive
}

// IsInteractive reports whether DetectMode returns ModeInteractive.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
