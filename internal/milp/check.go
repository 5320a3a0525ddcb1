package milp

import (
	"fmt"
	"strings"
)

// Tolerance is the absolute slack allowed when checking assignments.
const Tolerance = 1e-6

// Violation describes one constraint an assignment breaks.
type Violation struct {
	Constraint string
	LHS        float64
	Op         Op
	RHS        float64
}

// ViolationError lists every broken constraint.
type ViolationError struct {
	Violations []Violation
}

func (e *ViolationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %g %s %g", v.Constraint, v.LHS, v.Op, v.RHS))
	}
	return "constraints violated: " + strings.Join(parts, "; ")
}

// Check verifies values against every constraint. It returns a
// *ViolationError when any constraint is broken.
func (m *Model) Check(values []bool) error {
	if len(values) != len(m.vars) {
		return fmt.Errorf("assignment has %d values, model has %d variables", len(values), len(m.vars))
	}
	var violations []Violation
	for _, c := range m.Constraints {
		if c.Satisfied(values, Tolerance) {
			continue
		}
		violations = append(violations, Violation{
			Constraint: c.Name,
			LHS:        sumTerms(c.Terms, values),
			Op:         c.Op,
			RHS:        c.RHS,
		})
	}
	if len(violations) > 0 {
		return &ViolationError{Violations: violations}
	}
	return nil
}
