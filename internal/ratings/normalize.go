package ratings

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"playlistopt/internal/dataset"
)

// Method names a per-user normalization scheme.
type Method string

const (
	MinMax Method = "minmax"
	ZScore Method = "zscore"
)

// zClamp bounds z-scores before they are mapped onto [0, 1].
const zClamp = 3.0

// ParseMethod validates a configured method name.
func ParseMethod(name string) (Method, error) {
	switch Method(name) {
	case MinMax, ZScore:
		return Method(name), nil
	default:
		return "", fmt.Errorf("unknown rating method %q", name)
	}
}

// Normalize rescales each user's ratings into [0, 1]. A user whose ratings
// have zero variance, including a user with a single rating, receives
// neutral for every rated song. The input matrix is not modified.
func Normalize(raw *dataset.RatingMatrix, method Method, neutral float64) (*dataset.RatingMatrix, error) {
	if neutral < 0 || neutral > 1 || math.IsNaN(neutral) {
		return nil, fmt.Errorf("neutral rating %v outside [0, 1]", neutral)
	}
	if _, err := ParseMethod(string(method)); err != nil {
		return nil, err
	}

	out := dataset.NewRatingMatrix()
	for _, user := range raw.Users() {
		out.AddUser(user)
		ids := raw.RatedSongs(user)
		if len(ids) == 0 {
			continue
		}
		values := make([]float64, len(ids))
		row := raw.Row(user)
		for i, id := range ids {
			values[i] = row[id]
		}
		scaled := rescale(values, method, neutral)
		for i, id := range ids {
			out.Set(user, id, scaled[i])
		}
	}
	return out, nil
}

func rescale(values []float64, method Method, neutral float64) []float64 {
	out := make([]float64, len(values))
	lo, hi := bounds(values)
	if hi-lo == 0 {
		for i := range out {
			out[i] = neutral
		}
		return out
	}

	switch method {
	case ZScore:
		mean, std := stat.PopMeanStdDev(values, nil)
		for i, v := range values {
			z := (v - mean) / std
			z = math.Max(-zClamp, math.Min(zClamp, z))
			out[i] = (z + zClamp) / (2 * zClamp)
		}
	default:
		span := hi - lo
		for i, v := range values {
			out[i] = (v - lo) / span
		}
	}
	return out
}

func bounds(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
