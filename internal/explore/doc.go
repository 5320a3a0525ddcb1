// Package explore loads the prepared songs, artists, and ratings into an
// in-memory SQLite database for exploratory analysis. It offers canned
// summaries and ad-hoc read-only SQL; nothing is persisted.
package explore
