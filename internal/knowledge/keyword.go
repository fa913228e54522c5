package knowledge

import (
	"strings"

	"github.com/kamusis/kbot/internal/match"
)

// Search returns entries whose question or answer contains every query token,
// case-insensitively, in knowledge base order.
func Search(entries []match.Entry, query string, limit int) []match.Entry {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []match.Entry{}
	}

	out := []match.Entry{}
	for _, e := range entries {
		blob := Normalize(e.Question + "\n" + e.Answer)
		ok := true
		for _, tok := range tokens {
			if !strings.Contains(blob, tok) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func tokenize(q string) []string {
	parts := strings.Fields(Normalize(q))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
