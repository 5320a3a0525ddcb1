package dataset_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"playlistopt/internal/dataset"
	"playlistopt/internal/genre"
	"playlistopt/internal/services"
	"playlistopt/internal/testsupport"
)

func writeFiles(t *testing.T, songs, artists string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	songsPath := filepath.Join(dir, "songs.csv")
	artistsPath := filepath.Join(dir, "artists.csv")
	if err := os.WriteFile(songsPath, []byte(songs), 0o644); err != nil {
		t.Fatalf("write songs: %v", err)
	}
	if err := os.WriteFile(artistsPath, []byte(artists), 0o644); err != nil {
		t.Fatalf("write artists: %v", err)
	}
	return songsPath, artistsPath
}

const artistsCSV = `artist,genres,scrobbles
Bonobo,"['downtempo', 'electronic']",5000
Wilco,alt-country;indie rock,3000
Nobody,,10
`

func TestLoadParsesTablesAndRatings(t *testing.T) {
	songs := `song_id,title,artist,genre,popularity,peak,user_ana,user_ben
s1,Kerala,Bonobo,,80,0.9,5,
s2,Jesus Etc,Wilco,['indie rock'],70,0.4,3,4
s3,Silence,Nobody,mystery tag,5,0.1,,
`
	ds, err := dataset.Load(writeFiles(t, songs, artistsCSV))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Songs) != 3 {
		t.Fatalf("expected 3 songs, got %d", len(ds.Songs))
	}
	s1, ok := ds.Song("s1")
	if !ok {
		t.Fatal("song s1 missing")
	}
	if s1.Genre != genre.Electronic {
		t.Fatalf("blank genre should inherit artist primary, got %q", s1.Genre)
	}
	if s2, _ := ds.Song("s2"); s2.Genre != genre.Indie {
		t.Fatalf("s2 genre = %q, want indie", s2.Genre)
	}
	if s3, _ := ds.Song("s3"); s3.Genre != genre.Other {
		t.Fatalf("s3 genre = %q, want other", s3.Genre)
	}
	if got := ds.Artists["Wilco"].Genres; len(got) != 2 || got[0] != genre.Country || got[1] != genre.Indie {
		t.Fatalf("unexpected Wilco genres %v", got)
	}

	if users := ds.Ratings.Users(); len(users) != 2 || users[0] != "ana" || users[1] != "ben" {
		t.Fatalf("unexpected users %v", users)
	}
	if v, ok := ds.Ratings.Get("ana", "s1"); !ok || v != 5 {
		t.Fatalf("ana/s1 = %v,%v", v, ok)
	}
	if _, ok := ds.Ratings.Get("ben", "s1"); ok {
		t.Fatal("blank cell should be unrated")
	}
	if ds.Ratings.Len() != 3 {
		t.Fatalf("expected 3 ratings, got %d", ds.Ratings.Len())
	}
}

func TestLoadReportsLineAndColumn(t *testing.T) {
	songs := `song_id,title,artist,genre,popularity,peak
s1,A,Bonobo,,80,0.9
s2,B,Wilco,,abc,0.4
`
	_, err := dataset.Load(writeFiles(t, songs, artistsCSV))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "songs.csv line 3") || !strings.Contains(msg, "popularity") {
		t.Fatalf("error should name file, line, and column: %q", msg)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		songs string
		want  string
	}{
		{
			name:  "missing column",
			songs: "song_id,title,artist,genre,popularity\ns1,A,Bonobo,,1\n",
			want:  "peak",
		},
		{
			name:  "unknown artist",
			songs: "song_id,title,artist,genre,popularity,peak\ns1,A,Ghost,,1,0\n",
			want:  "unknown artist",
		},
		{
			name:  "duplicate id",
			songs: "song_id,title,artist,genre,popularity,peak\ns1,A,Bonobo,,1,0\ns1,B,Bonobo,,1,0\n",
			want:  "duplicate song id",
		},
		{
			name:  "negative peak",
			songs: "song_id,title,artist,genre,popularity,peak\ns1,A,Bonobo,,1,-1\n",
			want:  "must be >= 0",
		},
		{
			name:  "non-finite rating",
			songs: "song_id,title,artist,genre,popularity,peak,user_x\ns1,A,Bonobo,,1,0,NaN\n",
			want:  "non-finite",
		},
		{
			name:  "empty user column",
			songs: "song_id,title,artist,genre,popularity,peak,user_\ns1,A,Bonobo,,1,0,1\n",
			want:  "no user id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dataset.Load(writeFiles(t, tt.songs, artistsCSV))
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFileIsNotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := dataset.Load(filepath.Join(dir, "songs.csv"), filepath.Join(dir, "artists.csv"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFilterPopular(t *testing.T) {
	songs := `song_id,title,artist,genre,popularity,peak
s1,A,Bonobo,,80,0.9
s2,B,Wilco,,20,0.4
s3,C,Nobody,,90,0.1
`
	ds, err := dataset.Load(writeFiles(t, songs, artistsCSV))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := ds.FilterPopular(50, 100)
	if len(got) != 1 || got[0].ID != "s1" {
		t.Fatalf("unexpected candidates %+v", got)
	}
	if all := ds.FilterPopular(0, 0); len(all) != 3 {
		t.Fatalf("zero thresholds should keep all songs, got %d", len(all))
	}
}

func TestGenreScrobblesCountsArtistOncePerGenre(t *testing.T) {
	songs := `song_id,title,artist,genre,popularity,peak
s1,A,Bonobo,,80,0.9
s2,B,Bonobo,,80,0.9
s3,C,Bonobo,jazz,80,0.9
`
	ds, err := dataset.Load(writeFiles(t, songs, artistsCSV))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	totals := ds.GenreScrobbles()
	if totals[genre.Electronic] != 5000 {
		t.Fatalf("electronic = %d, want 5000", totals[genre.Electronic])
	}
	if totals[genre.Jazz] != 5000 {
		t.Fatalf("jazz = %d, want 5000", totals[genre.Jazz])
	}
	if totals[genre.Country] != 3000 {
		t.Fatalf("country = %d, want 3000", totals[genre.Country])
	}
}

func TestLoadGeneratedCatalog(t *testing.T) {
	catalog := testsupport.GenerateCatalog(7, 120, 30, 4)
	dir := t.TempDir()
	ds, err := dataset.Load(testsupport.WriteDataset(t, dir, catalog))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Songs) != 120 || len(ds.Artists) != 30 {
		t.Fatalf("unexpected sizes songs=%d artists=%d", len(ds.Songs), len(ds.Artists))
	}
	for _, s := range ds.Songs {
		if !genre.Valid(s.Genre) {
			t.Fatalf("song %s has invalid genre %q", s.ID, s.Genre)
		}
	}
}

func TestLoadReportsUnmappedTags(t *testing.T) {
	songs := `song_id,title,artist,genre,popularity,peak
s1,A,Bonobo,"['Vaporwave Deluxe', 'jazz']",80,0.9
s2,B,Wilco,Mystery Tag,20,0.4
`
	ds, err := dataset.Load(writeFiles(t, songs, artistsCSV))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"mystery tag", "vaporwave deluxe"}
	if len(ds.Unmapped) != len(want) {
		t.Fatalf("unmapped = %v, want %v", ds.Unmapped, want)
	}
	for i := range want {
		if ds.Unmapped[i] != want[i] {
			t.Fatalf("unmapped = %v, want %v", ds.Unmapped, want)
		}
	}
	if s1, _ := ds.Song("s1"); s1.Genre != genre.Jazz {
		t.Fatalf("s1 genre = %q, want jazz", s1.Genre)
	}
}
