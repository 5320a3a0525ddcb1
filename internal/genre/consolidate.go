package genre

import (
	"strings"

	"playlistopt/internal/textutil"
)

// Consolidate maps a raw genre string onto the controlled vocabulary. Inputs
// that match no rule, including blank strings, map to Other.
func Consolidate(raw string) Genre {
	folded := textutil.Fold(raw)
	if folded == "" {
		return Other
	}
	padded := " " + folded + " "
	for _, r := range rules {
		if r.matches(folded, padded) {
			return r.genre
		}
	}
	return Other
}

func (r rule) matches(folded, padded string) bool {
	for _, sub := range r.substrings {
		if strings.Contains(folded, sub) {
			return true
		}
	}
	for _, word := range r.words {
		if strings.Contains(padded, " "+word+" ") {
			return true
		}
	}
	return false
}

// ConsolidateAll consolidates each tag and returns the distinct genres in
// first-seen order. Other is only included when no tag produced a known genre.
func ConsolidateAll(tags []string) []Genre {
	seen := make(map[Genre]struct{}, len(tags))
	out := make([]Genre, 0, len(tags))
	for _, tag := range tags {
		g := Consolidate(tag)
		if g == Other {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	if len(out) == 0 {
		return []Genre{Other}
	}
	return out
}

// Primary returns the consolidated genre of the first tag that maps to a
// known genre, or Other.
func Primary(tags []string) Genre {
	return ConsolidateAll(tags)[0]
}

// Display returns a title-cased label suitable for tables.
func Display(g Genre) string {
	if g == RnB {
		return "R&B"
	}
	return textutil.TitleCase(string(g))
}
