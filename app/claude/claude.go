// Package claude shells out to the claude CLI and digs JSON payloads
// out of its free-form text responses.
package claude

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// wellKnownDirs are the fixed install locations checked before $PATH.
var wellKnownDirs = []string{
	"/opt/homebrew/bin",
	"/usr/local/bin",
}

// Client runs prompts through the claude CLI (`claude -p <prompt>`).
type Client struct {
	// PathOverride wins over every other lookup location when set.
	PathOverride string
}

func NewClient(pathOverride string) *Client {
	return &Client{PathOverride: pathOverride}
}

// FindBinary resolves the claude executable: explicit override first,
// then well-known install locations, then $PATH.
func (c *Client) FindBinary() (string, error) {
	if c.PathOverride != "" {
		if _, err := os.Stat(c.PathOverride); err == nil {
			return c.PathOverride, nil
		}
	}

	if env := os.Getenv("CLAUDE_PATH"); env != "" {
		if _, err := os.Stat(env); err == nil {
			return env, nil
		}
	}

	home, _ := os.UserHomeDir()
	candidates := make([]string, 0, len(wellKnownDirs)+1)
	for _, dir := range wellKnownDirs {
		candidates = append(candidates, filepath.Join(dir, "claude"))
	}
	candidates = append(candidates, filepath.Join(home, ".local", "bin", "claude"))
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath("claude"); err == nil {
		return path, nil
	}

	return "", &NotFoundError{}
}

// Run sends a prompt and returns the trimmed raw text response.
func (c *Client) Run(ctx context.Context, prompt string) (string, error) {
	binary, err := c.FindBinary()
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, binary, "-p", prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("claude exited with code %d: %s",
				exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("failed to run claude: %w", err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// RunJSON sends a prompt and unmarshals the extracted JSON payload
// into v.
func (c *Client) RunJSON(ctx context.Context, prompt string, v any) error {
	text, err := c.Run(ctx, prompt)
	if err != nil {
		return err
	}
	return ExtractJSON(text, v)
}
