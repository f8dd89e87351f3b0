// Package inspect performs read-only queries against a remote repository.
// Failures are returned as sentinel text beginning with "Error:" so they can
// flow back into a model conversation as ordinary tool content.
package inspect

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/repolens/repolens/internal/ghcli"
)

// Fragments of paths that carry no signal about what a project does.
var ignoreFragments = []string{
	"node_modules", ".git", "assets", "dist", "build", "vendor",
	"public", "static", "yarn.lock", "package-lock.json", ".env",
	"images", "fonts", "test", "tests",
}

// Fragments that mark high-signal files, listed first in results.
var priorityFragments = []string{
	"readme", "cargo.toml", "package.json", "requirements.txt",
	"main.py", "src/", "index", "app",
}

// Inspector reads file listings and file content for one repository.
type Inspector struct {
	fullName     string
	gh           ghcli.Runner
	maxFiles     int
	maxFileBytes int
}

// New builds an Inspector for the repository identified by fullName
// ("owner/name"). Zero caps fall back to 80 files and 6000 bytes.
func New(fullName string, gh ghcli.Runner, maxFiles, maxFileBytes int) *Inspector {
	if maxFiles <= 0 {
		maxFiles = 80
	}
	if maxFileBytes <= 0 {
		maxFileBytes = 6000
	}
	return &Inspector{
		fullName:     fullName,
		gh:           gh,
		maxFiles:     maxFiles,
		maxFileBytes: maxFileBytes,
	}
}

// ListFiles returns the filtered, prioritized file listing as newline-joined
// text, or an error sentinel if the tree cannot be listed.
func (i *Inspector) ListFiles(ctx context.Context) string {
	out, err := i.listTree(ctx, "HEAD")
	if err != nil {
		out, err = i.listTree(ctx, "master")
	}
	if err != nil || strings.TrimSpace(out) == "" {
		return "Error: Could not list files. Repo might be empty."
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	return strings.Join(Prioritize(Filter(lines), i.maxFiles), "\n")
}

// ReadFile fetches and decodes one file's content, truncated to the byte
// budget. Missing, empty, and undecodable files yield error sentinels.
func (i *Inspector) ReadFile(ctx context.Context, path string) string {
	out, err := i.gh.Run(ctx,
		"api", fmt.Sprintf("repos/%s/contents/%s", i.fullName, path),
		"--jq", ".content",
	)
	if err != nil {
		return fmt.Sprintf("Error: Could not read %s. File not found.", path)
	}
	if strings.TrimSpace(out) == "" {
		return "Error: File is empty."
	}

	// The contents API returns base64 with embedded newlines.
	compact := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ':
			return -1
		}
		return r
	}, out)

	decoded, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return "Error: Failed to decode file content."
	}
	if len(decoded) > i.maxFileBytes {
		decoded = decoded[:i.maxFileBytes]
	}
	return string(decoded)
}

func (i *Inspector) listTree(ctx context.Context, ref string) (string, error) {
	return i.gh.Run(ctx,
		"api", fmt.Sprintf("repos/%s/git/trees/%s?recursive=1", i.fullName, ref),
		"--jq", ".tree[].path",
	)
}

// Filter drops paths containing any noise fragment.
func Filter(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" || containsAny(p, ignoreFragments) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Prioritize partitions paths so high-signal ones come first, preserving
// relative order within each group, and caps the result at limit.
func Prioritize(paths []string, limit int) []string {
	priority := make([]string, 0, len(paths))
	other := make([]string, 0, len(paths))
	for _, p := range paths {
		if containsAny(strings.ToLower(p), priorityFragments) {
			priority = append(priority, p)
		} else {
			other = append(other, p)
		}
	}

	merged := append(priority, other...)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
