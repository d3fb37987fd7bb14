package install

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aymanbagabas/go-udiff"
)

// DefaultDiffMaxLines is the default maximum number of diff lines shown per file.
const DefaultDiffMaxLines = 40

// DiffPreview is a user-facing, per-file diff of a recorded change.
type DiffPreview struct {
	Path        string
	UnifiedDiff string
	Truncated   bool
}

func normalizeDiffMaxLines(value int) int {
	if value <= 0 {
		return DefaultDiffMaxLines
	}
	return value
}

// BuildDiffPreviews renders previews for the changes that altered their file.
// Paths are reported relative to root when possible.
func BuildDiffPreviews(root string, changes []Change, maxLines int) []DiffPreview {
	out := make([]DiffPreview, 0, len(changes))
	for _, change := range changes {
		if !change.Changed() {
			continue
		}
		rel, err := filepath.Rel(root, change.Path)
		if err != nil {
			rel = change.Path
		}
		rel = filepath.ToSlash(rel)
		fromName := rel + " (current)"
		if change.Created {
			fromName = "/dev/null"
		}
		rendered, truncated := renderTruncatedUnifiedDiff(fromName, rel+" (template)", change.Before, change.After, maxLines)
		out = append(out, DiffPreview{Path: rel, UnifiedDiff: rendered, Truncated: truncated})
	}
	return out
}

func renderTruncatedUnifiedDiff(fromName string, toName string, fromContent string, toContent string, maxLines int) (string, bool) {
	limit := normalizeDiffMaxLines(maxLines)
	diff := udiff.Unified(fromName, toName, fromContent, toContent)
	lines := splitDiffLines(diff)
	if len(lines) <= limit {
		return ensureTrailingNewline(strings.Join(lines, "\n")), false
	}
	truncated := lines[:limit]
	truncated = append(truncated, fmt.Sprintf("... (truncated to %d lines; raise [diff] max_lines to see more)", limit))
	return ensureTrailingNewline(strings.Join(truncated, "\n")), true
}

func splitDiffLines(content string) []string {
	trimmed := strings.TrimRight(content, "\n")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "\n")
}

func ensureTrailingNewline(content string) string {
	if content == "" {
		return ""
	}
	if strings.HasSuffix(content, "\n") {
		return content
	}
	return content + "\n"
}
