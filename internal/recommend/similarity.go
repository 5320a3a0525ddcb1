package recommend

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Measure names a user-user similarity function.
type Measure string

const (
	Cosine  Measure = "cosine"
	Pearson Measure = "pearson"
)

// ParseMeasure validates a configured measure name.
func ParseMeasure(name string) (Measure, error) {
	switch Measure(name) {
	case Cosine, Pearson:
		return Measure(name), nil
	default:
		return "", fmt.Errorf("unknown similarity measure %q", name)
	}
}

// Similarity compares two rating rows over the songs both users rated.
// ok is false when fewer than minOverlap songs are shared or when the
// measure is undefined on the overlap (zero norm or zero variance).
func Similarity(a, b map[string]float64, measure Measure, minOverlap int) (sim float64, overlap int, ok bool) {
	x, y := coRated(a, b)
	overlap = len(x)
	if overlap == 0 || overlap < minOverlap {
		return 0, overlap, false
	}

	switch measure {
	case Pearson:
		if overlap < 2 {
			return 0, overlap, false
		}
		sim = stat.Correlation(x, y, nil)
	default:
		na, nb := floats.Norm(x, 2), floats.Norm(y, 2)
		if na == 0 || nb == 0 {
			return 0, overlap, false
		}
		sim = floats.Dot(x, y) / (na * nb)
	}
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0, overlap, false
	}
	return sim, overlap, true
}

// coRated returns aligned value vectors for the shared keys, ordered by key.
func coRated(a, b map[string]float64) ([]float64, []float64) {
	small, large, swapped := a, b, false
	if len(b) < len(a) {
		small, large, swapped = b, a, true
	}
	keys := make([]string, 0, len(small))
	for k := range small {
		if _, ok := large[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	x := make([]float64, len(keys))
	y := make([]float64, len(keys))
	for i, k := range keys {
		x[i], y[i] = small[k], large[k]
	}
	if swapped {
		x, y = y, x
	}
	return x, y
}
