package ghcli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Repo identifies one repository returned by a search.
type Repo struct {
	Name     string `json:"name"`
	FullName string `json:"fullName"`
}

// Client exposes the gh queries the pipeline needs.
type Client struct {
	runner Runner
}

// NewClient builds a Client over the given runner.
func NewClient(runner Runner) *Client {
	return &Client{runner: runner}
}

// SearchRepos lists repositories owned by owner, up to limit.
func (c *Client) SearchRepos(ctx context.Context, owner string, limit int) ([]Repo, error) {
	out, err := c.runner.Run(ctx,
		"search", "repos",
		"--owner="+owner,
		"--limit", strconv.Itoa(limit),
		"--json", "name,fullName",
	)
	if err != nil {
		return nil, fmt.Errorf("search repos: %w", err)
	}

	var repos []Repo
	if err := json.Unmarshal([]byte(out), &repos); err != nil {
		return nil, fmt.Errorf("decode repo list: %w", err)
	}
	return repos, nil
}

// AuthStatus reports whether the gh binary is present and authenticated.
func (c *Client) AuthStatus(ctx context.Context) error {
	if _, err := c.runner.Run(ctx, "auth", "status"); err != nil {
		return fmt.Errorf("auth status: %w", err)
	}
	return nil
}
