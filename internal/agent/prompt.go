package agent

import (
	"fmt"
	"strings"
)

// buildSystemPrompt returns the analysis instruction prompt.
func buildSystemPrompt() string {
	return strings.TrimSpace(`
You are an automated code analysis agent.
Your goal is to inspect a GitHub repository and write a ONE-SENTENCE technical description.

RULES:
1. The file list is provided in the first message. Analyze it to understand the structure.
2. IMMEDIATELY call ` + "`read_file`" + ` on key files (e.g., README.md, Cargo.toml, package.json, main.py).
3. DO NOT ask to list files again.
4. DO NOT output JSON plans. USE THE TOOLS DIRECTLY.
5. If you have enough info, output the description.

Format: "[Adjective/Tech] [Noun] that [Verb] [Outcome]."
Example: "A Rust-based grammar engine that optimizes syntax checking using n-gram analysis."`)
}

// buildInitialPrompt embeds the pre-fetched file listing into the opening
// user message.
func buildInitialPrompt(repoName, fileList string) string {
	return fmt.Sprintf("Analyze repository: %s\n\nHere is the file list:\n%s", repoName, fileList)
}
