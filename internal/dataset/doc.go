// Package dataset loads the songs and artists tables, keeps the sparse
// user rating matrix, and applies genre consolidation and the popularity
// filter that turns songs into optimization candidates.
package dataset
