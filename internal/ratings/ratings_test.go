package ratings

import (
	"fmt"
	"math"
	"testing"

	"playlistopt/internal/dataset"
)

func matrix(rows map[string]map[string]float64) *dataset.RatingMatrix {
	m := dataset.NewRatingMatrix()
	for user, row := range rows {
		m.AddUser(user)
		for song, v := range row {
			m.Set(user, song, v)
		}
	}
	return m
}

func TestNormalizeMinMax(t *testing.T) {
	raw := matrix(map[string]map[string]float64{
		"ana": {"s1": 1, "s2": 3, "s3": 5},
	})
	got, err := Normalize(raw, MinMax, 0.5)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := map[string]float64{"s1": 0, "s2": 0.5, "s3": 1}
	for song, w := range want {
		if v, _ := got.Get("ana", song); math.Abs(v-w) > 1e-12 {
			t.Fatalf("%s = %v, want %v", song, v, w)
		}
	}
	if v, _ := raw.Get("ana", "s3"); v != 5 {
		t.Fatal("input matrix must not be modified")
	}
}

func TestNormalizeZeroVarianceIsNeutral(t *testing.T) {
	raw := matrix(map[string]map[string]float64{
		"solo": {"s1": 4},
		"flat": {"s1": 2, "s2": 2},
		"none": {},
	})
	for _, method := range []Method{MinMax, ZScore} {
		got, err := Normalize(raw, method, 0.4)
		if err != nil {
			t.Fatalf("Normalize(%s): %v", method, err)
		}
		for _, user := range []string{"solo", "flat"} {
			for song := range raw.Row(user) {
				if v, _ := got.Get(user, song); v != 0.4 {
					t.Fatalf("%s %s/%s = %v, want neutral", method, user, song, v)
				}
			}
		}
		if !got.HasUser("none") {
			t.Fatalf("%s dropped user without ratings", method)
		}
	}
}

func TestNormalizeZScoreStaysInRange(t *testing.T) {
	row := map[string]float64{"s0": 100}
	for i := 1; i < 40; i++ {
		row[fmt.Sprintf("f%02d", i)] = 1
	}
	raw := matrix(map[string]map[string]float64{"skew": row})
	got, err := Normalize(raw, ZScore, 0.5)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for song, v := range got.Row("skew") {
		if v < 0 || v > 1 {
			t.Fatalf("%s = %v outside [0,1]", song, v)
		}
	}
	if v, _ := got.Get("skew", "s0"); v != 1 {
		t.Fatalf("outlier should clamp to 1, got %v", v)
	}
}

func TestNormalizeRejectsBadArguments(t *testing.T) {
	raw := matrix(map[string]map[string]float64{"ana": {"s1": 1}})
	if _, err := Normalize(raw, "median", 0.5); err == nil {
		t.Fatal("expected error for unknown method")
	}
	if _, err := Normalize(raw, MinMax, 1.5); err == nil {
		t.Fatal("expected error for neutral outside [0,1]")
	}
}

func TestSummarize(t *testing.T) {
	m := matrix(map[string]map[string]float64{
		"ben": {"s1": 2, "s2": 4},
		"ana": {},
	})
	got := Summarize(m)
	if len(got) != 2 || got[0].User != "ana" || got[1].User != "ben" {
		t.Fatalf("unexpected order %+v", got)
	}
	if got[0].Count != 0 {
		t.Fatalf("ana count = %d", got[0].Count)
	}
	ben := got[1]
	if ben.Count != 2 || ben.Min != 2 || ben.Max != 4 || ben.Mean != 3 || ben.StdDev != 1 {
		t.Fatalf("unexpected ben summary %+v", ben)
	}
	if mean, ok := Mean(m, "ben"); !ok || mean != 3 {
		t.Fatalf("Mean(ben) = %v,%v", mean, ok)
	}
	if _, ok := Mean(m, "ana"); ok {
		t.Fatal("Mean of user without ratings should report false")
	}
}
