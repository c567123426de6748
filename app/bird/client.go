package bird

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Client invokes the bird CLI, which exports X/Twitter bookmarks as
// JSON using the browser's session cookies. One short-lived process
// per call; retry policy belongs to callers.
type Client struct {
	path   string
	runner Runner
}

func NewClient(path string, runner Runner) *Client {
	return &Client{path: path, runner: runner}
}

// CheckAuth runs the whoami probe. Any failure, including a spawn
// failure, reads as "not authenticated" - the probe fails closed.
func (c *Client) CheckAuth(ctx context.Context) bool {
	_, _, exitCode, err := c.runner.Run(ctx, c.path, "whoami")
	return err == nil && exitCode == 0
}

// FetchBookmarks requests the full bookmark set.
func (c *Client) FetchBookmarks(ctx context.Context) (*Response, error) {
	stdout, stderr, exitCode, err := c.runner.Run(ctx, c.path, "bookmarks", "--all", "--json")
	if err != nil {
		return nil, fmt.Errorf("failed to run bird: %w", err)
	}
	if exitCode != 0 {
		return nil, classifyExitError(exitCode, stderr)
	}

	var response Response
	if err := json.Unmarshal([]byte(stdout), &response); err != nil {
		return nil, &ParseError{Message: "failed to parse bookmarks JSON"}
	}
	if response.Tweets == nil {
		return nil, &ParseError{Message: "invalid bookmarks JSON shape: missing tweets field"}
	}

	return &response, nil
}

// FetchThread requests the conversation around a single post. Both a
// bare list and a {tweets: [...]} wrapper are valid output shapes.
func (c *Client) FetchThread(ctx context.Context, postID string) ([]Tweet, error) {
	stdout, stderr, exitCode, err := c.runner.Run(ctx, c.path, "thread", postID, "--json")
	if err != nil {
		return nil, fmt.Errorf("failed to run bird: %w", err)
	}
	if exitCode != 0 {
		return nil, classifyExitError(exitCode, stderr)
	}

	var tweets []Tweet
	if err := json.Unmarshal([]byte(stdout), &tweets); err == nil {
		return tweets, nil
	}

	var wrapped Response
	if err := json.Unmarshal([]byte(stdout), &wrapped); err == nil && wrapped.Tweets != nil {
		return wrapped.Tweets, nil
	}

	return nil, &ParseError{Message: "invalid thread JSON shape"}
}

func classifyExitError(exitCode int, stderr string) error {
	lower := strings.ToLower(stderr)
	if strings.Contains(lower, "cookie") || strings.Contains(lower, "missing required credentials") {
		return &AuthError{Message: "Safari cookies expired or missing. Please log in to X in Safari."}
	}
	return &ProcessError{ExitCode: exitCode, Stderr: strings.TrimSpace(stderr)}
}
