package playlist

import (
	"encoding/csv"
	"io"
	"strconv"
)

var exportHeader = []string{"position", "song_id", "title", "artist", "genre", "peak", "rating", "predicted", "explore"}

// WriteCSV writes the ordered entries with a header row.
func WriteCSV(w io.Writer, pl *Playlist) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, e := range pl.Entries {
		record := []string{
			strconv.Itoa(e.Position),
			e.SongID,
			e.Title,
			e.Artist,
			string(e.Genre),
			strconv.FormatFloat(e.Peak, 'f', -1, 64),
			strconv.FormatFloat(e.Rating, 'f', 4, 64),
			strconv.FormatBool(e.Predicted),
			strconv.FormatBool(e.Explore),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
