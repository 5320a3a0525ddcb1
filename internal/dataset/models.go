package dataset

import (
	"sort"

	"playlistopt/internal/genre"
)

// Song is one row of the songs table.
type Song struct {
	ID         string
	Title      string
	Artist     string
	RawGenre   string
	Genre      genre.Genre
	Popularity float64
	Peak       float64
}

// Artist is one row of the artists table.
type Artist struct {
	Name      string
	RawGenres []string
	Genres    []genre.Genre
	Scrobbles int64
}

// PrimaryGenre returns the artist's highest-priority consolidated genre.
func (a *Artist) PrimaryGenre() genre.Genre {
	if a == nil || len(a.Genres) == 0 {
		return genre.Other
	}
	return a.Genres[0]
}

// RatingMatrix is a sparse user -> song -> rating mapping.
type RatingMatrix struct {
	byUser map[string]map[string]float64
}

// NewRatingMatrix returns an empty matrix.
func NewRatingMatrix() *RatingMatrix {
	return &RatingMatrix{byUser: make(map[string]map[string]float64)}
}

// Set records a rating, replacing any previous value.
func (m *RatingMatrix) Set(user, song string, value float64) {
	row, ok := m.byUser[user]
	if !ok {
		row = make(map[string]float64)
		m.byUser[user] = row
	}
	row[song] = value
}

// AddUser registers a user that may have no ratings yet.
func (m *RatingMatrix) AddUser(user string) {
	if _, ok := m.byUser[user]; !ok {
		m.byUser[user] = make(map[string]float64)
	}
}

// Get returns the rating of song by user.
func (m *RatingMatrix) Get(user, song string) (float64, bool) {
	v, ok := m.byUser[user][song]
	return v, ok
}

// HasUser reports whether user is known to the matrix.
func (m *RatingMatrix) HasUser(user string) bool {
	_, ok := m.byUser[user]
	return ok
}

// Users returns every user id in ascending order.
func (m *RatingMatrix) Users() []string {
	users := make([]string, 0, len(m.byUser))
	for user := range m.byUser {
		users = append(users, user)
	}
	sort.Strings(users)
	return users
}

// Row returns the ratings of user. The map must not be modified.
func (m *RatingMatrix) Row(user string) map[string]float64 {
	return m.byUser[user]
}

// RatedSongs returns the ids user rated, ascending.
func (m *RatingMatrix) RatedSongs(user string) []string {
	row := m.byUser[user]
	ids := make([]string, 0, len(row))
	for id := range row {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of stored ratings.
func (m *RatingMatrix) Len() int {
	n := 0
	for _, row := range m.byUser {
		n += len(row)
	}
	return n
}

// Dataset bundles the loaded tables.
type Dataset struct {
	Songs   []Song
	Artists map[string]*Artist
	// Ratings holds the raw ratings as read from the user_* columns.
	Ratings *RatingMatrix
	// Unmapped lists raw genre tags that consolidated to genre.Other.
	Unmapped []string

	songIndex map[string]int
}

// Song returns the song with the given id.
func (d *Dataset) Song(id string) (Song, bool) {
	idx, ok := d.songIndex[id]
	if !ok {
		return Song{}, false
	}
	return d.Songs[idx], true
}

// ArtistOf returns the artist row of s.
func (d *Dataset) ArtistOf(s Song) *Artist {
	return d.Artists[s.Artist]
}

// ArtistNames returns every artist name in ascending order.
func (d *Dataset) ArtistNames() []string {
	names := make([]string, 0, len(d.Artists))
	for name := range d.Artists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Dataset) reindex() {
	d.songIndex = make(map[string]int, len(d.Songs))
	for i, s := range d.Songs {
		d.songIndex[s.ID] = i
	}
}
