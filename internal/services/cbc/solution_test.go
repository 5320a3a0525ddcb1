package cbc

import (
	"strings"
	"testing"
)

func TestParseSolutionStripsMarkers(t *testing.T) {
	input := "Optimal - objective value 12.5\n" +
		"      0 x_0                      1                       3\n" +
		"**    3 x_3                      1                       0\n"
	sol, err := ParseSolution(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSolution: %v", err)
	}
	if sol.Status != StatusOptimal || sol.Objective != 12.5 {
		t.Fatalf("unexpected header parse %+v", sol)
	}
	if sol.Values["x_0"] != 1 || sol.Values["x_3"] != 1 || len(sol.Values) != 2 {
		t.Fatalf("unexpected values %v", sol.Values)
	}
}

func TestParseSolutionErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"Solver exploded\n",
		"Optimal - objective value 1\n 0 x_0\n",
		"Optimal - objective value 1\n 0 x_0 one 0\n",
	} {
		if _, err := ParseSolution(strings.NewReader(input)); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestParseStatus(t *testing.T) {
	tests := map[string]SolutionStatus{
		"Optimal - objective value 3":                                 StatusOptimal,
		"Infeasible - objective value 0":                              StatusInfeasible,
		"Integer infeasible - objective value 0":                      StatusInfeasible,
		"Unbounded - objective value 0":                               StatusUnbounded,
		"Stopped on time - objective value 3":                         StatusStopped,
		"Stopped on iterations - objective value 3":                   StatusStopped,
		"Stopped on time (no integer solution - continuous used) - 3": StatusNoSolution,
	}
	for header, want := range tests {
		got, err := parseStatus(header)
		if err != nil || got != want {
			t.Fatalf("parseStatus(%q) = %v, %v; want %v", header, got, err, want)
		}
	}
}
