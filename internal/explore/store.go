package explore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"playlistopt/internal/dataset"
	"playlistopt/internal/genre"
)

//go:embed schema.sql
var schemaSQL string

// Store is a read-only in-memory SQL view of the prepared data. Nothing is
// written to disk.
type Store struct {
	db *sql.DB
}

// Open creates the in-memory database and loads ds, its normalized ratings,
// and the candidate flag for each song.
func Open(ctx context.Context, ds *dataset.Dataset, normalized *dataset.RatingMatrix, candidates []dataset.Song) (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	store := &Store{db: db}
	if err := store.load(ctx, ds, normalized, candidates); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragma query_only: %w", err)
	}
	return store, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) load(ctx context.Context, ds *dataset.Dataset, normalized *dataset.RatingMatrix, candidates []dataset.Song) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	artistStmt, err := tx.PrepareContext(ctx, `INSERT INTO artists (artist, genres, primary_genre, scrobbles) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare artist insert: %w", err)
	}
	defer artistStmt.Close()
	for _, name := range ds.ArtistNames() {
		a := ds.Artists[name]
		if _, err = artistStmt.ExecContext(ctx, a.Name, joinGenres(a.Genres), string(a.PrimaryGenre()), a.Scrobbles); err != nil {
			return fmt.Errorf("insert artist %q: %w", a.Name, err)
		}
	}

	isCandidate := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		isCandidate[c.ID] = true
	}
	songStmt, err := tx.PrepareContext(ctx, `INSERT INTO songs (song_id, title, artist, raw_genre, genre, popularity, peak, candidate) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare song insert: %w", err)
	}
	defer songStmt.Close()
	for _, song := range ds.Songs {
		if _, err = songStmt.ExecContext(ctx, song.ID, song.Title, song.Artist, song.RawGenre, string(song.Genre),
			song.Popularity, song.Peak, isCandidate[song.ID]); err != nil {
			return fmt.Errorf("insert song %q: %w", song.ID, err)
		}
	}

	ratingStmt, err := tx.PrepareContext(ctx, `INSERT INTO ratings (user, song_id, raw, normalized) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare rating insert: %w", err)
	}
	defer ratingStmt.Close()
	for _, user := range ds.Ratings.Users() {
		for _, id := range ds.Ratings.RatedSongs(user) {
			raw, _ := ds.Ratings.Get(user, id)
			norm, ok := normalized.Get(user, id)
			if !ok {
				norm = raw
			}
			if _, err = ratingStmt.ExecContext(ctx, user, id, raw, norm); err != nil {
				return fmt.Errorf("insert rating %s/%s: %w", user, id, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}

func joinGenres(genres []genre.Genre) string {
	parts := make([]string, len(genres))
	for i, g := range genres {
		parts[i] = string(g)
	}
	return strings.Join(parts, ";")
}
