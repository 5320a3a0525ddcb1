package testsupport

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"testing"
)

// SongRow is one line of a generated songs table.
type SongRow struct {
	ID         string
	Title      string
	Artist     string
	Genre      string
	Popularity float64
	Peak       float64
	// Ratings maps user id to raw rating.
	Ratings map[string]float64
}

// ArtistRow is one line of a generated artists table.
type ArtistRow struct {
	Name      string
	Genres    []string
	Scrobbles int64
}

// Catalog is an in-memory pair of input tables.
type Catalog struct {
	Songs   []SongRow
	Artists []ArtistRow
	Users   []string
}

var catalogTags = []string{
	"indie rock", "synthpop", "deep house", "hip hop", "death metal",
	"bossa nova", "singer-songwriter", "alt-country", "hard bop", "dub",
}

// GenerateCatalog builds a deterministic catalog with songs spread
// round-robin over artists. Each user rates roughly a third of the songs.
func GenerateCatalog(seed uint64, songs, artists, users int) Catalog {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	c := Catalog{}
	for u := 0; u < users; u++ {
		c.Users = append(c.Users, fmt.Sprintf("u%02d", u+1))
	}
	for a := 0; a < artists; a++ {
		c.Artists = append(c.Artists, ArtistRow{
			Name:      fmt.Sprintf("Artist %03d", a+1),
			Genres:    []string{catalogTags[a%len(catalogTags)]},
			Scrobbles: int64(1000 + rng.IntN(100000)),
		})
	}
	for s := 0; s < songs; s++ {
		row := SongRow{
			ID:         fmt.Sprintf("s%04d", s+1),
			Title:      fmt.Sprintf("Song %d", s+1),
			Artist:     c.Artists[s%artists].Name,
			Popularity: float64(rng.IntN(100)),
			Peak:       float64(rng.IntN(1000)) / 1000,
			Ratings:    make(map[string]float64),
		}
		for _, user := range c.Users {
			if rng.IntN(3) == 0 {
				row.Ratings[user] = float64(1 + rng.IntN(5))
			}
		}
		c.Songs = append(c.Songs, row)
	}
	return c
}

// WriteDataset writes catalog as songs.csv and artists.csv under dir and
// returns both paths.
func WriteDataset(t testing.TB, dir string, catalog Catalog) (string, string) {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}

	users := catalog.Users
	if len(users) == 0 {
		users = usersFromRows(catalog.Songs)
	}

	songsPath := filepath.Join(dir, "songs.csv")
	header := []string{"song_id", "title", "artist", "genre", "popularity", "peak"}
	for _, user := range users {
		header = append(header, "user_"+user)
	}
	rows := [][]string{header}
	for _, s := range catalog.Songs {
		row := []string{s.ID, s.Title, s.Artist, s.Genre, formatFloat(s.Popularity), formatFloat(s.Peak)}
		for _, user := range users {
			if v, ok := s.Ratings[user]; ok {
				row = append(row, formatFloat(v))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	writeCSV(t, songsPath, rows)

	artistsPath := filepath.Join(dir, "artists.csv")
	rows = [][]string{{"artist", "genres", "scrobbles"}}
	for _, a := range catalog.Artists {
		rows = append(rows, []string{a.Name, tagList(a.Genres), strconv.FormatInt(a.Scrobbles, 10)})
	}
	writeCSV(t, artistsPath, rows)

	return songsPath, artistsPath
}

func usersFromRows(songs []SongRow) []string {
	seen := make(map[string]struct{})
	for _, s := range songs {
		for user := range s.Ratings {
			seen[user] = struct{}{}
		}
	}
	users := make([]string, 0, len(seen))
	for user := range seen {
		users = append(users, user)
	}
	sort.Strings(users)
	return users
}

func tagList(tags []string) string {
	out := "["
	for i, tag := range tags {
		if i > 0 {
			out += ", "
		}
		out += "'" + tag + "'"
	}
	return out + "]"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeCSV(t testing.TB, path string, rows [][]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
