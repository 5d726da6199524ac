package ingestion

import (
	"regexp"
	"strings"
)

var (
	innerSpace = regexp.MustCompile(`[ \t\f\v]+`)
	blankRuns  = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes extracted document text: LF line endings, single
// spaces inside lines, no trailing whitespace and at most one blank line
// between blocks. Leading indentation and bullet markers survive.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\u00a0", " ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}
	indent := line[:len(line)-len(trimmed)]
	return strings.ReplaceAll(indent, "\t", "    ") + innerSpace.ReplaceAllString(trimmed, " ")
}
