package explore

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"playlistopt/internal/services"
)

// Table is a generic query result with every cell rendered as text.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

const summarySQL = `
SELECT
    (SELECT COUNT(*) FROM songs)                         AS songs,
    (SELECT COUNT(*) FROM songs WHERE candidate = 1)     AS candidates,
    (SELECT COUNT(*) FROM artists)                       AS artists,
    (SELECT COUNT(DISTINCT user) FROM ratings)           AS users_with_ratings,
    (SELECT COUNT(*) FROM ratings)                       AS ratings,
    (SELECT COUNT(DISTINCT genre) FROM songs)            AS genres,
    (SELECT ROUND(AVG(popularity), 2) FROM songs)        AS avg_popularity,
    (SELECT ROUND(AVG(peak), 3) FROM songs)              AS avg_peak`

const genresSQL = `
SELECT
    s.genre,
    COUNT(*)                              AS songs,
    COUNT(DISTINCT s.artist)              AS artists,
    SUM(s.candidate)                      AS candidates,
    ROUND(AVG(s.popularity), 2)           AS avg_popularity,
    ROUND(AVG(s.peak), 3)                 AS avg_peak,
    (SELECT COUNT(*) FROM ratings r JOIN songs x ON x.song_id = r.song_id WHERE x.genre = s.genre) AS ratings,
    (SELECT ROUND(AVG(r.normalized), 3) FROM ratings r JOIN songs x ON x.song_id = r.song_id WHERE x.genre = s.genre) AS avg_rating
FROM songs s
GROUP BY s.genre
ORDER BY songs DESC, s.genre`

const artistsSQL = `
SELECT
    a.artist,
    a.primary_genre,
    a.scrobbles,
    COUNT(s.song_id)            AS songs,
    ROUND(AVG(s.popularity), 2) AS avg_popularity
FROM artists a
LEFT JOIN songs s ON s.artist = a.artist
GROUP BY a.artist
ORDER BY a.scrobbles DESC, a.artist
LIMIT ?`

const usersSQL = `
SELECT
    r.user,
    COUNT(*)                     AS ratings,
    ROUND(MIN(r.raw), 3)         AS min_raw,
    ROUND(MAX(r.raw), 3)         AS max_raw,
    ROUND(AVG(r.raw), 3)         AS avg_raw,
    ROUND(AVG(r.normalized), 3)  AS avg_normalized
FROM ratings r
GROUP BY r.user
ORDER BY r.user`

// Summary returns overall dataset counts in a single row.
func (s *Store) Summary(ctx context.Context) (*Table, error) {
	return s.query(ctx, summarySQL)
}

// Genres returns per-genre song, artist, and rating statistics.
func (s *Store) Genres(ctx context.Context) (*Table, error) {
	return s.query(ctx, genresSQL)
}

// Artists returns the limit most scrobbled artists.
func (s *Store) Artists(ctx context.Context, limit int) (*Table, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.query(ctx, artistsSQL, limit)
}

// Users returns per-user rating activity.
func (s *Store) Users(ctx context.Context) (*Table, error) {
	return s.query(ctx, usersSQL)
}

// Query runs a single read-only statement. Writes fail because the
// database is opened query-only after loading.
func (s *Store) Query(ctx context.Context, statement string) (*Table, error) {
	statement = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(statement), ";"))
	if statement == "" {
		return nil, services.Wrap(services.ErrValidation, "explore", "query", "empty statement", nil)
	}
	table, err := s.query(ctx, statement)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "explore", "query", "", err)
	}
	return table, nil
}

func (s *Store) query(ctx context.Context, statement string, args ...any) (*Table, error) {
	rows, err := s.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	table := &Table{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = formatCell(v)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return table, nil
}

func formatCell(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(value)
	case string:
		return value
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprint(value)
	}
}
