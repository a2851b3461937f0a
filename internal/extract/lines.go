package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinLineLength is the shortest trimmed line kept for extraction.
const MinLineLength = 3

var reLineBreak = regexp.MustCompile(`\r\n|\r|\n`)

// SplitLines breaks raw OCR text into trimmed lines, dropping lines of two
// characters or fewer. Order is preserved and nothing is deduplicated.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	raw := reLineBreak.Split(text, -1)
	lines := make([]string, 0, len(raw))
	for _, ln := range raw {
		ln = strings.TrimSpace(ln)
		if utf8.RuneCountInString(ln) < MinLineLength {
			continue
		}
		lines = append(lines, ln)
	}
	return lines
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
