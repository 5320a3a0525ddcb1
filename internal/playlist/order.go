package playlist

import (
	"math"
	"sort"
)

// OrderPeakArc arranges entries so peak scores rise to the highest song at
// fraction position of the playlist and fall afterwards. Equal peaks are
// ordered by song id.
func OrderPeakArc(entries []Entry, position float64) []Entry {
	n := len(entries)
	if n < 2 {
		out := append([]Entry(nil), entries...)
		for i := range out {
			out[i].Position = i + 1
		}
		return out
	}
	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Peak != sorted[j].Peak {
			return sorted[i].Peak < sorted[j].Peak
		}
		return sorted[i].SongID < sorted[j].SongID
	})

	position = math.Max(0, math.Min(1, position))
	top := int(math.Round(position * float64(n-1)))
	peak := sorted[n-1]
	rest := sorted[:n-1]

	leftCap, rightCap := top, n-1-top
	var left, right []Entry
	// Highest remaining peaks first, each to the side with more free slots.
	for i := len(rest) - 1; i >= 0; i-- {
		leftFree := leftCap - len(left)
		rightFree := rightCap - len(right)
		if (leftFree >= rightFree && leftFree > 0) || rightFree == 0 {
			left = append(left, rest[i])
		} else {
			right = append(right, rest[i])
		}
	}

	out := make([]Entry, 0, n)
	for i := len(left) - 1; i >= 0; i-- {
		out = append(out, left[i])
	}
	out = append(out, peak)
	out = append(out, right...)
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}
