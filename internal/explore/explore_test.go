package explore_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"playlistopt/internal/dataset"
	"playlistopt/internal/explore"
	"playlistopt/internal/ratings"
	"playlistopt/internal/services"
	"playlistopt/internal/testsupport"
)

func openStore(t *testing.T) (*explore.Store, *dataset.Dataset) {
	t.Helper()
	catalog := testsupport.Catalog{
		Artists: []testsupport.ArtistRow{
			{Name: "Bonobo", Genres: []string{"downtempo"}, Scrobbles: 900},
			{Name: "Wilco", Genres: []string{"alt-country"}, Scrobbles: 300},
		},
		Songs: []testsupport.SongRow{
			{ID: "s1", Title: "Kerala", Artist: "Bonobo", Popularity: 80, Peak: 0.9, Ratings: map[string]float64{"ana": 5, "ben": 2}},
			{ID: "s2", Title: "Cirrus", Artist: "Bonobo", Popularity: 40, Peak: 0.5, Ratings: map[string]float64{"ana": 1}},
			{ID: "s3", Title: "Jesus Etc", Artist: "Wilco", Popularity: 70, Peak: 0.4, Ratings: map[string]float64{"ben": 4}},
		},
	}
	ds, err := dataset.Load(testsupport.WriteDataset(t, t.TempDir(), catalog))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	normalized, err := ratings.Normalize(ds.Ratings, ratings.MinMax, 0.5)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	store, err := explore.Open(context.Background(), ds, normalized, ds.FilterPopular(50, 0))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, ds
}

func column(t *testing.T, table *explore.Table, name string) int {
	t.Helper()
	for i, c := range table.Columns {
		if c == name {
			return i
		}
	}
	t.Fatalf("column %q missing from %v", name, table.Columns)
	return -1
}

func TestSummary(t *testing.T) {
	store, _ := openStore(t)
	table, err := store.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("expected one row, got %d", len(table.Rows))
	}
	row := table.Rows[0]
	checks := map[string]string{
		"songs":              "3",
		"candidates":         "2",
		"artists":            "2",
		"users_with_ratings": "2",
		"ratings":            "4",
		"genres":             "2",
	}
	for name, want := range checks {
		if got := row[column(t, table, name)]; got != want {
			t.Fatalf("%s = %s, want %s", name, got, want)
		}
	}
}

func TestGenresAndArtists(t *testing.T) {
	store, _ := openStore(t)
	genres, err := store.Genres(context.Background())
	if err != nil {
		t.Fatalf("Genres: %v", err)
	}
	if len(genres.Rows) != 2 || genres.Rows[0][0] != "electronic" {
		t.Fatalf("unexpected genres %v", genres.Rows)
	}
	if got := genres.Rows[0][column(t, genres, "ratings")]; got != "3" {
		t.Fatalf("electronic ratings = %s", got)
	}

	artists, err := store.Artists(context.Background(), 1)
	if err != nil {
		t.Fatalf("Artists: %v", err)
	}
	if len(artists.Rows) != 1 || artists.Rows[0][0] != "Bonobo" {
		t.Fatalf("unexpected artists %v", artists.Rows)
	}
}

func TestUsers(t *testing.T) {
	store, _ := openStore(t)
	users, err := store.Users(context.Background())
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users.Rows) != 2 || users.Rows[0][0] != "ana" {
		t.Fatalf("unexpected users %v", users.Rows)
	}
	avg, err := strconv.ParseFloat(users.Rows[0][column(t, users, "avg_normalized")], 64)
	if err != nil || avg != 0.5 {
		t.Fatalf("ana avg_normalized = %v (%v)", avg, err)
	}
}

func TestQueryIsReadOnly(t *testing.T) {
	store, _ := openStore(t)
	table, err := store.Query(context.Background(), "SELECT title FROM songs WHERE peak > 0.45 ORDER BY title;")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(table.Rows) != 2 || table.Rows[0][0] != "Cirrus" || table.Rows[1][0] != "Kerala" {
		t.Fatalf("unexpected rows %v", table.Rows)
	}

	if _, err := store.Query(context.Background(), "DELETE FROM songs"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected write to fail with ErrValidation, got %v", err)
	}
	if _, err := store.Query(context.Background(), "  ; "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected empty statement error, got %v", err)
	}
}
