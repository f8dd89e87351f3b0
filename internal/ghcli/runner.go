// Package ghcli wraps the GitHub CLI as an external collaborator. Callers
// see only stdout text and an error carrying the exit status; everything
// else about the binary is opaque.
package ghcli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes gh subcommands and returns their stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// CLI is the default Runner backed by the gh binary.
type CLI struct {
	Binary  string
	Timeout time.Duration
}

// NewCLI builds a CLI runner with defaults applied.
func NewCLI(binary string, timeout time.Duration) *CLI {
	if binary == "" {
		binary = "gh"
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &CLI{Binary: binary, Timeout: timeout}
}

// Run executes the gh binary with the given arguments under the configured
// timeout and returns captured stdout.
func (c *CLI) Run(ctx context.Context, args ...string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("gh arguments are required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return stdout.String(), fmt.Errorf("gh %s: %w: %s", args[0], err, detail)
	}
	return stdout.String(), nil
}
