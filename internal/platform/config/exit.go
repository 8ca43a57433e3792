package config

import (
	"fmt"
	"os"
)

// Exit codes used by the missionboard command.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// Exitf writes a formatted error message to stderr and exits with ExitFailure.
func Exitf(format string, args ...any) {
	ExitWithCode(ExitFailure, format, args...)
}

// ExitWithCode writes a formatted error message to stderr and exits with code.
func ExitWithCode(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}
