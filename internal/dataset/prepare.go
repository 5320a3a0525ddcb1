package dataset

import (
	"sort"
	"strings"

	"playlistopt/internal/genre"
)

// Consolidate maps raw genre tags onto the controlled vocabulary. Songs with a
// blank genre inherit their artist's primary genre. The returned slice lists
// the distinct raw tags that fell through to genre.Other.
func (d *Dataset) Consolidate() []string {
	unmapped := make(map[string]struct{})
	note := func(tags []string) {
		for _, tag := range tags {
			if genre.Consolidate(tag) == genre.Other {
				unmapped[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
			}
		}
	}

	for _, artist := range d.Artists {
		artist.Genres = genre.ConsolidateAll(artist.RawGenres)
		note(artist.RawGenres)
	}
	for i := range d.Songs {
		song := &d.Songs[i]
		tags := genre.ParseTags(song.RawGenre)
		if len(tags) == 0 {
			song.Genre = d.Artists[song.Artist].PrimaryGenre()
			continue
		}
		song.Genre = genre.Primary(tags)
		note(tags)
	}

	out := make([]string, 0, len(unmapped))
	for tag := range unmapped {
		if tag != "" {
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

// FilterPopular returns songs whose popularity and artist scrobbles meet the
// thresholds, in input order.
func (d *Dataset) FilterPopular(minPopularity float64, minScrobbles int64) []Song {
	out := make([]Song, 0, len(d.Songs))
	for _, s := range d.Songs {
		if s.Popularity < minPopularity {
			continue
		}
		if artist := d.Artists[s.Artist]; artist != nil && artist.Scrobbles < minScrobbles {
			continue
		}
		out = append(out, s)
	}
	return out
}

// GenreScrobbles sums artist scrobbles per consolidated genre. An artist
// counts once for each distinct genre among its own tags and its songs.
func (d *Dataset) GenreScrobbles() map[genre.Genre]int64 {
	perArtist := make(map[string]map[genre.Genre]struct{}, len(d.Artists))
	add := func(artist string, g genre.Genre) {
		set, ok := perArtist[artist]
		if !ok {
			set = make(map[genre.Genre]struct{})
			perArtist[artist] = set
		}
		set[g] = struct{}{}
	}
	for name, artist := range d.Artists {
		for _, g := range artist.Genres {
			add(name, g)
		}
	}
	for _, s := range d.Songs {
		add(s.Artist, s.Genre)
	}

	totals := make(map[genre.Genre]int64)
	for name, set := range perArtist {
		artist, ok := d.Artists[name]
		if !ok {
			continue
		}
		for g := range set {
			totals[g] += artist.Scrobbles
		}
	}
	return totals
}

// GenreCounts returns the number of songs per consolidated genre.
func (d *Dataset) GenreCounts() map[genre.Genre]int {
	counts := make(map[genre.Genre]int)
	for _, s := range d.Songs {
		counts[s.Genre]++
	}
	return counts
}
