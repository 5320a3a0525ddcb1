package cbc_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"playlistopt/internal/milp"
	"playlistopt/internal/services/cbc"
)

// stubExecutor writes a canned solution file to the path following "solu".
type stubExecutor struct {
	solution string
	err      error
	calls    int
	args     [][]string
	model    string
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	s.calls++
	s.args = append(s.args, append([]string(nil), args...))
	if data, err := os.ReadFile(args[0]); err == nil {
		s.model = string(data)
	}
	onOutput("Welcome to the CBC MILP Solver")
	if s.err != nil {
		return s.err
	}
	if s.solution == "" {
		return nil
	}
	for i, arg := range args {
		if arg == "solu" && i+1 < len(args) {
			return os.WriteFile(args[i+1], []byte(s.solution), 0o644)
		}
	}
	return nil
}

func pickTwo(t *testing.T) *milp.Model {
	t.Helper()
	m := milp.NewModel("pick", milp.Maximize)
	var terms, obj []milp.Term
	for i, name := range []string{"x_0", "x_1", "x_2"} {
		v, err := m.AddBinary(name)
		if err != nil {
			t.Fatalf("AddBinary: %v", err)
		}
		terms = append(terms, milp.Term{Var: v, Coef: 1})
		obj = append(obj, milp.Term{Var: v, Coef: float64(i + 1)})
	}
	if err := m.SetObjective(obj); err != nil {
		t.Fatalf("SetObjective: %v", err)
	}
	if err := m.AddConstraint("length", terms, milp.EQ, 2); err != nil {
		t.Fatalf("AddConstraint: %v", err)
	}
	return m
}

func TestSolveReadsOptimalSolution(t *testing.T) {
	stub := &stubExecutor{solution: "Optimal - objective value 5.00000000\n" +
		"      1 x_1                      1                       2\n" +
		"      2 x_2                      1                       3\n"}
	client, err := cbc.New("cbc", t.TempDir(), cbc.WithExecutor(stub))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := client.Solve(context.Background(), pickTwo(t), milp.Options{TimeLimit: 5 * time.Second})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Status != milp.StatusOptimal || res.Backend != "cbc" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Values[0] || !res.Values[1] || !res.Values[2] {
		t.Fatalf("unexpected values %v", res.Values)
	}
	if res.Objective != 5 {
		t.Fatalf("objective = %v, want 5", res.Objective)
	}

	args := strings.Join(stub.args[0], " ")
	if !strings.Contains(args, "sec 5 solve solu") {
		t.Fatalf("unexpected arguments %q", args)
	}
	if !strings.Contains(stub.model, " length: + 1 x_0 + 1 x_1 + 1 x_2 = 2") {
		t.Fatalf("model file missing constraint:\n%s", stub.model)
	}
}

func TestSolveMapsStatuses(t *testing.T) {
	tests := []struct {
		name     string
		solution string
		wantErr  error
		status   milp.Status
	}{
		{name: "infeasible", solution: "Infeasible - objective value 0.00000000\n", wantErr: milp.ErrInfeasible},
		{name: "integer infeasible", solution: "Integer infeasible - objective value 0.00000000\n", wantErr: milp.ErrInfeasible},
		{name: "unbounded", solution: "Unbounded - objective value 0.00000000\n", wantErr: milp.ErrUnbounded},
		{name: "timeout without incumbent", solution: "Stopped on time (no integer solution - continuous used) - objective value 4.5\n", wantErr: milp.ErrTimeout},
		{
			name:     "timeout with incumbent",
			solution: "Stopped on time - objective value 4.00000000\n      0 x_0  1  1\n      2 x_2  1  3\n",
			status:   milp.StatusFeasible,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := cbc.New("cbc", t.TempDir(), cbc.WithExecutor(&stubExecutor{solution: tt.solution}))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			res, err := client.Solve(context.Background(), pickTwo(t), milp.Options{})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Solve: %v", err)
			}
			if res.Status != tt.status {
				t.Fatalf("status = %s, want %s", res.Status, tt.status)
			}
		})
	}
}

func TestSolveWrapsExecutorError(t *testing.T) {
	client, err := cbc.New("cbc", t.TempDir(), cbc.WithExecutor(&stubExecutor{err: errors.New("boom")}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.Solve(context.Background(), pickTwo(t), milp.Options{})
	if !errors.Is(err, milp.ErrSolver) {
		t.Fatalf("expected ErrSolver, got %v", err)
	}
}

func TestSolveRejectsUnknownVariable(t *testing.T) {
	stub := &stubExecutor{solution: "Optimal - objective value 1\n      0 y_9  1  1\n"}
	client, err := cbc.New("cbc", t.TempDir(), cbc.WithExecutor(stub))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Solve(context.Background(), pickTwo(t), milp.Options{}); !errors.Is(err, milp.ErrSolver) {
		t.Fatalf("expected ErrSolver, got %v", err)
	}
}

func TestSolveRemovesStaleSolution(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "solution.txt"), []byte("Optimal - objective value 1\n"), 0o644); err != nil {
		t.Fatalf("seed stale solution: %v", err)
	}
	client, err := cbc.New("cbc", dir, cbc.WithExecutor(&stubExecutor{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Solve(context.Background(), pickTwo(t), milp.Options{}); !errors.Is(err, milp.ErrSolver) {
		t.Fatalf("expected ErrSolver for missing solution, got %v", err)
	}
}

func TestNewValidatesArguments(t *testing.T) {
	if _, err := cbc.New(" ", t.TempDir()); err == nil {
		t.Fatal("expected error for empty binary")
	}
	if _, err := cbc.New("cbc", ""); err == nil {
		t.Fatal("expected error for empty work dir")
	}
}
