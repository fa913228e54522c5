package knowledge

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize brings text into the form questions are stored in: NFC composed,
// lowercased and trimmed. Queries must go through the same function before matching.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = cases.Lower(language.Und).String(s)
	return strings.TrimSpace(s)
}
