// Package textutil provides text folding and sanitizing helpers.
//
// The primary use cases are:
//   - Folding free-text genre tags (case, diacritics, punctuation) before
//     keyword matching
//   - Title-casing vocabulary entries for display
//   - Sanitizing values into LP-format identifiers
package textutil
