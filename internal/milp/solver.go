package milp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"playlistopt/internal/services"
)

var (
	// ErrInfeasible means no assignment satisfies the constraints.
	ErrInfeasible = errors.New("model is infeasible")
	// ErrUnbounded means the objective can grow without limit.
	ErrUnbounded = errors.New("model is unbounded")
	// ErrTimeout means the time limit expired before any feasible
	// assignment was found.
	ErrTimeout = fmt.Errorf("%w: solver found no feasible assignment before the time limit", services.ErrTimeout)
	// ErrSolver marks backend failures.
	ErrSolver = fmt.Errorf("%w: solver failure", services.ErrExternalTool)
)

// Status reports solution quality.
type Status string

const (
	// StatusOptimal is a proven optimum.
	StatusOptimal Status = "optimal"
	// StatusFeasible is the best incumbent found before the time limit.
	StatusFeasible Status = "feasible"
)

// Options bounds a solve.
type Options struct {
	TimeLimit time.Duration
	Logger    *slog.Logger
}

// Result is a solved assignment.
type Result struct {
	Status    Status
	Values    []bool
	Objective float64
	Backend   string
	Elapsed   time.Duration
}

// Value reports the assignment of v.
func (r *Result) Value(v Var) bool {
	return int(v) < len(r.Values) && r.Values[v]
}

// Solver is implemented by optimization backends.
type Solver interface {
	Name() string
	Solve(ctx context.Context, m *Model, opts Options) (*Result, error)
}
