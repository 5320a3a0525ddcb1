// Package genre consolidates free-text genre tags into a fixed vocabulary.
//
// Tags are folded (case, diacritics, punctuation) and matched against an
// ordered rule list; the first rule that matches decides the genre, and
// anything unmatched lands in Other. The mapping is deterministic and total.
package genre
