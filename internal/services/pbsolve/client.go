package pbsolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crillab/gophersat/solver"

	"playlistopt/internal/logging"
	"playlistopt/internal/milp"
)

// DefaultPrecision is the number of decimal digits kept when coefficients
// are scaled to integers.
const DefaultPrecision = 3

// Client solves binary models in process with gophersat's pseudo-boolean
// optimizer.
type Client struct {
	precision int
}

// New constructs a client. precision outside [0, 9] is rejected.
func New(precision int) (*Client, error) {
	if precision < 0 || precision > 9 {
		return nil, fmt.Errorf("precision must be between 0 and 9, got %d", precision)
	}
	return &Client{precision: precision}, nil
}

// Name identifies the backend.
func (c *Client) Name() string {
	return "pbsolve"
}

// Solve runs the anytime optimizer until it proves optimality, the time
// limit expires, or ctx is cancelled. On expiry the last model found is
// returned with milp.StatusFeasible, or milp.ErrTimeout when none was found.
func (c *Client) Solve(ctx context.Context, m *milp.Model, opts milp.Options) (*milp.Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pb, err := convert(m, c.precision)
	if err != nil {
		if errors.Is(err, errTriviallyInfeasible) {
			return nil, fmt.Errorf("%w: %w", milp.ErrInfeasible, err)
		}
		return nil, fmt.Errorf("%w: %w", milp.ErrSolver, err)
	}

	logger.Debug("running pseudo-boolean optimizer",
		logging.Int("variables", m.NumVars()),
		logging.Int("constraints", len(pb.constrs)),
		logging.Int("precision", c.precision),
		logging.Bool("approximate", pb.approx),
		logging.Duration("time_limit", opts.TimeLimit),
	)
	started := time.Now()
	res, stopped, err := search(ctx, pb, opts.TimeLimit)
	elapsed := time.Since(started)
	if err != nil {
		return nil, err
	}

	values := make([]bool, m.NumVars())
	for i := range values {
		if i < len(res.Model) {
			values[i] = res.Model[i]
		}
	}

	if pb.approx {
		if err := m.Check(values); err != nil {
			return nil, fmt.Errorf("%w: rounded constraints admitted an invalid assignment: %w", milp.ErrSolver, err)
		}
	}

	status := milp.StatusOptimal
	if stopped {
		status = milp.StatusFeasible
		logging.WarnWithContext(logger, "solver stopped before proving optimality", "solver_time_limit",
			logging.String(logging.FieldErrorHint, "raise solver.time_limit_seconds for a proven optimum"),
			logging.String(logging.FieldImpact, "playlist may be suboptimal"),
		)
	}
	return &milp.Result{
		Status:    status,
		Values:    values,
		Objective: m.Evaluate(values),
		Backend:   c.Name(),
		Elapsed:   elapsed,
	}, nil
}

// search runs the optimizer in its own goroutine. gophersat cannot be
// interrupted, so after the limit or ctx ends the wait the goroutine runs
// to completion with its results discarded. stopped reports that the
// returned model is an incumbent rather than a proven optimum.
func search(ctx context.Context, pb *problem, limit time.Duration) (solver.Result, bool, error) {
	prob := solver.ParsePBConstrs(pb.constrs)
	if len(pb.costLits) > 0 {
		prob.SetCostFunc(pb.costLits, pb.costW)
	}
	s := solver.New(prob)

	results := make(chan solver.Result, 8)
	go s.Optimal(results, nil)
	return collect(ctx, results, limit)
}

// collect reads improving results until the channel closes, the limit
// expires, or ctx is done. Once it gives up, the channel is drained in the
// background so the sender never blocks.
func collect(ctx context.Context, results <-chan solver.Result, limit time.Duration) (solver.Result, bool, error) {
	var expired <-chan time.Time
	if limit > 0 {
		timer := time.NewTimer(limit)
		defer timer.Stop()
		expired = timer.C
	}

	var incumbent solver.Result
	found := false
	for {
		select {
		case r, ok := <-results:
			if !ok {
				if !found {
					return solver.Result{}, false, fmt.Errorf("%w: optimizer finished without a result", milp.ErrSolver)
				}
				return incumbent, false, nil
			}
			switch r.Status {
			case solver.Sat:
				incumbent, found = r, true
			case solver.Unsat:
				if !found {
					go drain(results)
					return solver.Result{}, false, milp.ErrInfeasible
				}
			}
		case <-expired:
			go drain(results)
			if !found {
				return solver.Result{}, false, milp.ErrTimeout
			}
			return incumbent, true, nil
		case <-ctx.Done():
			go drain(results)
			return solver.Result{}, false, ctx.Err()
		}
	}
}

func drain(results <-chan solver.Result) {
	for range results {
	}
}
