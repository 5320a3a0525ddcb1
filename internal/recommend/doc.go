// Package recommend implements user-user collaborative filtering over the
// normalized rating matrix: neighbour search, per-genre preferences, genre
// recommendation for exploration, and rating prediction for unrated songs.
package recommend
