// Package pipeline wires data preparation, collaborative filtering, and
// playlist optimization into a single run. Each run carries a UUID run id
// and stage names through its context so log lines can be correlated.
package pipeline
