package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"playlistopt/internal/genre"
	"playlistopt/internal/services"
)

// UserColumnPrefix marks rating columns in the songs table.
const UserColumnPrefix = "user_"

var (
	songColumns   = []string{"song_id", "title", "artist", "genre", "popularity", "peak"}
	artistColumns = []string{"artist", "genres", "scrobbles"}
)

// Load reads both tables, checks referential integrity, and consolidates
// genres. Any malformed row aborts the load.
func Load(songsPath, artistsPath string) (*Dataset, error) {
	artists, err := LoadArtists(artistsPath)
	if err != nil {
		return nil, err
	}
	songs, ratings, err := LoadSongs(songsPath)
	if err != nil {
		return nil, err
	}
	for _, s := range songs {
		if _, ok := artists[s.Artist]; !ok {
			return nil, services.Wrap(services.ErrValidation, "load", filepath.Base(songsPath),
				fmt.Sprintf("song %q references unknown artist %q", s.ID, s.Artist), nil)
		}
	}
	ds := &Dataset{Songs: songs, Artists: artists, Ratings: ratings}
	ds.reindex()
	ds.Unmapped = ds.Consolidate()
	return ds, nil
}

// LoadArtists reads the artists table keyed by artist name.
func LoadArtists(path string) (map[string]*Artist, error) {
	name := filepath.Base(path)
	rows, header, err := readTable(path, artistColumns)
	if err != nil {
		return nil, err
	}
	artists := make(map[string]*Artist, len(rows))
	for _, row := range rows {
		artist := strings.TrimSpace(row.get(header, "artist"))
		if artist == "" {
			return nil, row.invalid(name, "artist", "must not be empty")
		}
		if _, dup := artists[artist]; dup {
			return nil, row.invalid(name, "artist", fmt.Sprintf("duplicate artist %q", artist))
		}
		scrobbles, err := strconv.ParseInt(strings.TrimSpace(row.get(header, "scrobbles")), 10, 64)
		if err != nil || scrobbles < 0 {
			return nil, row.invalid(name, "scrobbles", fmt.Sprintf("expected non-negative integer, got %q", row.get(header, "scrobbles")))
		}
		artists[artist] = &Artist{
			Name:      artist,
			RawGenres: genre.ParseTags(row.get(header, "genres")),
			Scrobbles: scrobbles,
		}
	}
	return artists, nil
}

// LoadSongs reads the songs table and the raw ratings held in its user_*
// columns. Blank rating cells mean "unrated".
func LoadSongs(path string) ([]Song, *RatingMatrix, error) {
	name := filepath.Base(path)
	rows, header, err := readTable(path, songColumns)
	if err != nil {
		return nil, nil, err
	}

	userCols := make(map[string]string)
	ratings := NewRatingMatrix()
	for col := range header {
		if !strings.HasPrefix(col, UserColumnPrefix) {
			continue
		}
		user := strings.TrimPrefix(col, UserColumnPrefix)
		if user == "" {
			return nil, nil, services.Wrap(services.ErrValidation, "load", name, fmt.Sprintf("column %q has no user id", col), nil)
		}
		userCols[col] = user
		ratings.AddUser(user)
	}

	songs := make([]Song, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		id := strings.TrimSpace(row.get(header, "song_id"))
		if id == "" {
			return nil, nil, row.invalid(name, "song_id", "must not be empty")
		}
		if _, dup := seen[id]; dup {
			return nil, nil, row.invalid(name, "song_id", fmt.Sprintf("duplicate song id %q", id))
		}
		seen[id] = struct{}{}

		popularity, err := row.nonNegative(header, name, "popularity")
		if err != nil {
			return nil, nil, err
		}
		peak, err := row.nonNegative(header, name, "peak")
		if err != nil {
			return nil, nil, err
		}
		songs = append(songs, Song{
			ID:         id,
			Title:      strings.TrimSpace(row.get(header, "title")),
			Artist:     strings.TrimSpace(row.get(header, "artist")),
			RawGenre:   strings.TrimSpace(row.get(header, "genre")),
			Popularity: popularity,
			Peak:       peak,
		})

		for col, user := range userCols {
			cell := strings.TrimSpace(row.get(header, col))
			if cell == "" {
				continue
			}
			value, err := parseFinite(cell)
			if err != nil {
				return nil, nil, row.invalid(name, col, err.Error())
			}
			ratings.Set(user, id, value)
		}
	}
	return songs, ratings, nil
}

type record struct {
	line   int
	fields []string
}

func (r record) get(header map[string]int, column string) string {
	idx, ok := header[column]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return r.fields[idx]
}

func (r record) invalid(file, column, message string) error {
	return services.Wrap(services.ErrValidation, "load", fmt.Sprintf("%s line %d", file, r.line),
		fmt.Sprintf("column %s: %s", column, message), nil)
}

func (r record) nonNegative(header map[string]int, file, column string) (float64, error) {
	cell := strings.TrimSpace(r.get(header, column))
	value, err := parseFinite(cell)
	if err != nil {
		return 0, r.invalid(file, column, err.Error())
	}
	if value < 0 {
		return 0, r.invalid(file, column, fmt.Sprintf("must be >= 0, got %v", value))
	}
	return value, nil
}

func parseFinite(cell string) (float64, error) {
	value, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", cell)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("non-finite number %q", cell)
	}
	return value, nil
}

// readTable reads a CSV file with a header row and verifies that every
// required column is present.
func readTable(path string, required []string) ([]record, map[string]int, error) {
	name := filepath.Base(path)
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, services.Wrap(services.ErrNotFound, "load", name, "input table missing", err)
		}
		return nil, nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	headerRow, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, services.Wrap(services.ErrValidation, "load", name, "file is empty", nil)
	}
	if err != nil {
		return nil, nil, services.Wrap(services.ErrValidation, "load", name, "read header", err)
	}
	header := make(map[string]int, len(headerRow))
	for i, col := range headerRow {
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if _, dup := header[col]; dup {
			return nil, nil, services.Wrap(services.ErrValidation, "load", name, fmt.Sprintf("duplicate column %q", col), nil)
		}
		header[col] = i
	}
	var missing []string
	for _, col := range required {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, services.Wrap(services.ErrValidation, "load", name,
			"missing required columns: "+strings.Join(missing, ", "), nil)
	}

	var rows []record
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, services.Wrap(services.ErrValidation, "load", name, "malformed row", err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, record{line: line, fields: fields})
	}
	return rows, header, nil
}
