package ratings

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"playlistopt/internal/dataset"
)

// UserSummary describes one user's rating distribution.
type UserSummary struct {
	User   string  `json:"user"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// Summarize returns per-user statistics ordered by user id. Users without
// ratings report a zero count and zero statistics.
func Summarize(m *dataset.RatingMatrix) []UserSummary {
	users := m.Users()
	out := make([]UserSummary, 0, len(users))
	for _, user := range users {
		row := m.Row(user)
		summary := UserSummary{User: user, Count: len(row)}
		if len(row) > 0 {
			values := make([]float64, 0, len(row))
			for _, id := range m.RatedSongs(user) {
				values = append(values, row[id])
			}
			summary.Min = floats.Min(values)
			summary.Max = floats.Max(values)
			summary.Mean, summary.StdDev = stat.PopMeanStdDev(values, nil)
		}
		out = append(out, summary)
	}
	return out
}

// Mean returns the average of user's ratings and whether the user rated
// anything.
func Mean(m *dataset.RatingMatrix, user string) (float64, bool) {
	row := m.Row(user)
	if len(row) == 0 {
		return 0, false
	}
	values := make([]float64, 0, len(row))
	for _, id := range m.RatedSongs(user) {
		values = append(values, row[id])
	}
	return stat.Mean(values, nil), true
}
