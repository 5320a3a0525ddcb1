// Package ratings rescales raw per-user ratings onto a shared [0, 1] range
// and summarizes rating distributions.
package ratings
