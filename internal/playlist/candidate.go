package playlist

import (
	"playlistopt/internal/dataset"
	"playlistopt/internal/genre"
)

// Rater supplies normalized ratings for a user.
type Rater interface {
	PredictRating(user, song string) (float64, bool)
	Rated(user, song string) bool
}

// Candidate is a song eligible for selection.
type Candidate struct {
	Song      dataset.Song
	Rating    float64
	Predicted bool
	Explore   bool
}

// ExploreRule decides which candidates count as exploration.
type ExploreRule struct {
	// Genre marks songs of the recommended genre. Empty disables it.
	Genre genre.Genre
	// Unrated marks every song the user has not rated.
	Unrated bool
}

// Candidates joins songs with the user's actual or predicted ratings.
func Candidates(songs []dataset.Song, rater Rater, user string, rule ExploreRule) []Candidate {
	out := make([]Candidate, 0, len(songs))
	for _, s := range songs {
		rating, predicted := rater.PredictRating(user, s.ID)
		explore := rule.Genre != "" && s.Genre == rule.Genre
		if rule.Unrated && !rater.Rated(user, s.ID) {
			explore = true
		}
		out = append(out, Candidate{Song: s, Rating: rating, Predicted: predicted, Explore: explore})
	}
	return out
}
