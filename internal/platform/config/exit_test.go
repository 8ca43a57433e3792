package config_test

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/louisbranch/missionboard/internal/platform/config"
)

// The exit helpers run in a subprocess because os.Exit cannot be
// intercepted in-process.
func TestExitHelpers(t *testing.T) {
	switch os.Getenv("TEST_EXIT_SUBPROCESS") {
	case "failure":
		config.Exitf("fatal: %s", "cache unavailable")
		return
	case "usage":
		config.ExitWithCode(config.ExitUsage, "usage: %s", "missionboard <command>")
		return
	}

	tests := []struct {
		mode     string
		wantCode int
		wantOut  string
	}{
		{mode: "failure", wantCode: config.ExitFailure, wantOut: "fatal: cache unavailable"},
		{mode: "usage", wantCode: config.ExitUsage, wantOut: "usage: missionboard <command>"},
	}
	for _, tc := range tests {
		t.Run(tc.mode, func(t *testing.T) {
			cmd := exec.Command(os.Args[0], "-test.run=^TestExitHelpers$")
			cmd.Env = append(os.Environ(), "TEST_EXIT_SUBPROCESS="+tc.mode)

			out, err := cmd.CombinedOutput()
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				t.Fatalf("expected *exec.ExitError, got %T: %v", err, err)
			}
			if exitErr.ExitCode() != tc.wantCode {
				t.Fatalf("exit code = %d, want %d", exitErr.ExitCode(), tc.wantCode)
			}
			if !strings.Contains(string(out), tc.wantOut) {
				t.Fatalf("stderr = %q, want it to contain %q", string(out), tc.wantOut)
			}
		})
	}
}
