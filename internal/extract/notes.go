package extract

import "unicode/utf8"

const (
	NotesPrefix   = "Extracted from image:\n"
	NotesMaxChars = 500
	NotesEllipsis = "..."
)

// ComposeNotes quotes the start of the raw text. The result is never empty.
func ComposeNotes(raw string) string {
	excerpt := truncate(raw, NotesMaxChars)
	if utf8.RuneCountInString(raw) > NotesMaxChars {
		excerpt += NotesEllipsis
	}
	return NotesPrefix + excerpt
}
