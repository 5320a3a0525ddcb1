package recommend

import (
	"errors"
	"fmt"
	"sort"

	"playlistopt/internal/dataset"
	"playlistopt/internal/genre"
	"playlistopt/internal/ratings"
	"playlistopt/internal/services"
)

var (
	// ErrUnknownUser is returned for a user absent from the rating matrix.
	ErrUnknownUser = fmt.Errorf("%w: unknown user", services.ErrNotFound)
	// ErrNoRecommendation is returned when no similar user contributes an
	// eligible genre.
	ErrNoRecommendation = errors.New("no genre recommendation available")
)

// ExcludeMode selects which of the target's genres are ineligible.
type ExcludeMode string

const (
	ExcludeRated ExcludeMode = "rated"
	ExcludeTopK  ExcludeMode = "top_k"
)

// Options tunes the recommender.
type Options struct {
	Measure    Measure
	K          int
	MinOverlap int
	Exclude    ExcludeMode
	TopK       int
	Neutral    float64
}

// Neighbour is a similar user.
type Neighbour struct {
	User       string  `json:"user"`
	Similarity float64 `json:"similarity"`
	Overlap    int     `json:"overlap"`
}

// GenrePreference aggregates one user's normalized ratings for a genre.
type GenrePreference struct {
	Genre   genre.Genre `json:"genre"`
	Total   float64     `json:"total"`
	Average float64     `json:"average"`
	Count   int         `json:"count"`
}

// GenreScore is one entry of a recommendation ranking.
type GenreScore struct {
	Genre     genre.Genre `json:"genre"`
	Score     float64     `json:"score"`
	Scrobbles int64       `json:"scrobbles"`
}

// Recommendation is the outcome of RecommendGenre.
type Recommendation struct {
	User       string        `json:"user"`
	Genre      genre.Genre   `json:"genre"`
	Score      float64       `json:"score"`
	Neighbours []Neighbour   `json:"neighbours"`
	Excluded   []genre.Genre `json:"excluded"`
	Ranking    []GenreScore  `json:"ranking"`
}

// Recommender answers collaborative filtering queries over a normalized
// rating matrix. It memoizes neighbourhoods and is not safe for concurrent
// use.
type Recommender struct {
	ratings   *dataset.RatingMatrix
	songGenre map[string]genre.Genre
	scrobbles map[genre.Genre]int64
	opts      Options

	neighbours map[string][]Neighbour
}

// New builds a Recommender. normalized must hold ratings in [0, 1].
func New(ds *dataset.Dataset, normalized *dataset.RatingMatrix, opts Options) (*Recommender, error) {
	if _, err := ParseMeasure(string(opts.Measure)); err != nil {
		return nil, err
	}
	switch opts.Exclude {
	case "":
		opts.Exclude = ExcludeRated
	case ExcludeRated, ExcludeTopK:
	default:
		return nil, fmt.Errorf("unknown exclude mode %q", opts.Exclude)
	}
	if opts.K <= 0 {
		return nil, fmt.Errorf("neighbourhood size must be positive, got %d", opts.K)
	}
	if opts.MinOverlap <= 0 {
		opts.MinOverlap = 1
	}

	songGenre := make(map[string]genre.Genre, len(ds.Songs))
	for _, s := range ds.Songs {
		songGenre[s.ID] = s.Genre
	}
	return &Recommender{
		ratings:    normalized,
		songGenre:  songGenre,
		scrobbles:  ds.GenreScrobbles(),
		opts:       opts,
		neighbours: make(map[string][]Neighbour),
	}, nil
}

// SimilarUsers returns up to k users most similar to target, ordered by
// similarity descending then user id. Users sharing no rated song with the
// target are skipped. k <= 0 uses the configured neighbourhood size.
func (r *Recommender) SimilarUsers(target string, k int) ([]Neighbour, error) {
	if !r.ratings.HasUser(target) {
		return nil, fmt.Errorf("%w %q", ErrUnknownUser, target)
	}
	if k <= 0 {
		k = r.opts.K
	}
	all := r.rankNeighbours(target)
	if len(all) > k {
		all = all[:k]
	}
	out := make([]Neighbour, len(all))
	copy(out, all)
	return out, nil
}

func (r *Recommender) rankNeighbours(target string) []Neighbour {
	if cached, ok := r.neighbours[target]; ok {
		return cached
	}
	row := r.ratings.Row(target)
	var out []Neighbour
	for _, user := range r.ratings.Users() {
		if user == target {
			continue
		}
		sim, overlap, ok := Similarity(row, r.ratings.Row(user), r.opts.Measure, r.opts.MinOverlap)
		if !ok {
			continue
		}
		out = append(out, Neighbour{User: user, Similarity: sim, Overlap: overlap})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].User < out[j].User
	})
	r.neighbours[target] = out
	return out
}

// GenrePreferences aggregates user's normalized ratings per genre, ordered
// by average descending then genre name.
func (r *Recommender) GenrePreferences(user string) ([]GenrePreference, error) {
	if !r.ratings.HasUser(user) {
		return nil, fmt.Errorf("%w %q", ErrUnknownUser, user)
	}
	return r.preferences(user), nil
}

func (r *Recommender) preferences(user string) []GenrePreference {
	byGenre := make(map[genre.Genre]*GenrePreference)
	row := r.ratings.Row(user)
	for _, id := range r.ratings.RatedSongs(user) {
		g, ok := r.songGenre[id]
		if !ok {
			continue
		}
		pref, ok := byGenre[g]
		if !ok {
			pref = &GenrePreference{Genre: g}
			byGenre[g] = pref
		}
		pref.Total += row[id]
		pref.Count++
	}
	out := make([]GenrePreference, 0, len(byGenre))
	for _, pref := range byGenre {
		pref.Average = pref.Total / float64(pref.Count)
		out = append(out, *pref)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average > out[j].Average
		}
		return out[i].Genre < out[j].Genre
	})
	return out
}

// RecommendGenre picks the genre most favoured by user's positively
// similar neighbours among genres the user is not excluded from. The
// neighbour at rank i of n contributes average*(1-i/n) to each genre it
// rated. Ties go to the genre with more artist scrobbles, then by name.
func (r *Recommender) RecommendGenre(user string) (*Recommendation, error) {
	ranked, err := r.SimilarUsers(user, r.opts.K)
	if err != nil {
		return nil, err
	}
	neighbours := make([]Neighbour, 0, len(ranked))
	for _, n := range ranked {
		if n.Similarity > 0 {
			neighbours = append(neighbours, n)
		}
	}
	if len(neighbours) == 0 {
		return nil, fmt.Errorf("%w: user %q has no similar users", ErrNoRecommendation, user)
	}

	excluded := r.excludedGenres(user)
	skip := make(map[genre.Genre]struct{}, len(excluded)+1)
	for _, g := range excluded {
		skip[g] = struct{}{}
	}
	skip[genre.Other] = struct{}{}

	scores := make(map[genre.Genre]float64)
	n := float64(len(neighbours))
	for i, nb := range neighbours {
		weight := 1 - float64(i)/n
		for _, pref := range r.preferences(nb.User) {
			if _, ok := skip[pref.Genre]; ok {
				continue
			}
			scores[pref.Genre] += pref.Average * weight
		}
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("%w: no eligible genre for user %q", ErrNoRecommendation, user)
	}

	ranking := make([]GenreScore, 0, len(scores))
	for g, score := range scores {
		ranking = append(ranking, GenreScore{Genre: g, Score: score, Scrobbles: r.scrobbles[g]})
	}
	sort.Slice(ranking, func(i, j int) bool {
		a, b := ranking[i], ranking[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Scrobbles != b.Scrobbles {
			return a.Scrobbles > b.Scrobbles
		}
		return a.Genre < b.Genre
	})

	return &Recommendation{
		User:       user,
		Genre:      ranking[0].Genre,
		Score:      ranking[0].Score,
		Neighbours: neighbours,
		Excluded:   excluded,
		Ranking:    ranking,
	}, nil
}

func (r *Recommender) excludedGenres(user string) []genre.Genre {
	prefs := r.preferences(user)
	if r.opts.Exclude == ExcludeTopK && len(prefs) > r.opts.TopK {
		prefs = prefs[:max(r.opts.TopK, 0)]
	}
	out := make([]genre.Genre, 0, len(prefs))
	for _, pref := range prefs {
		out = append(out, pref.Genre)
	}
	return out
}

// PredictRating returns user's normalized rating for song. Unrated songs
// are estimated from positively similar neighbours who rated the song,
// then the user's mean rating, then the neutral value. predicted reports
// whether the value is an estimate.
func (r *Recommender) PredictRating(user, song string) (value float64, predicted bool) {
	if v, ok := r.ratings.Get(user, song); ok {
		return v, false
	}
	if r.ratings.HasUser(user) {
		var weighted, weights float64
		for _, nb := range r.topNeighbours(user) {
			if nb.Similarity <= 0 {
				continue
			}
			if v, ok := r.ratings.Get(nb.User, song); ok {
				weighted += nb.Similarity * v
				weights += nb.Similarity
			}
		}
		if weights > 0 {
			return weighted / weights, true
		}
		if mean, ok := ratings.Mean(r.ratings, user); ok {
			return mean, true
		}
	}
	return r.opts.Neutral, true
}

// Rated reports whether user rated song.
func (r *Recommender) Rated(user, song string) bool {
	_, ok := r.ratings.Get(user, song)
	return ok
}

func (r *Recommender) topNeighbours(user string) []Neighbour {
	all := r.rankNeighbours(user)
	if len(all) > r.opts.K {
		return all[:r.opts.K]
	}
	return all
}
