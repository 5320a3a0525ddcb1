package pbsolve

import (
	"errors"
	"fmt"
	"math"

	"github.com/crillab/gophersat/solver"

	"playlistopt/internal/milp"
)

// errTriviallyInfeasible marks a constraint no assignment can satisfy.
var errTriviallyInfeasible = errors.New("constraint cannot be satisfied")

// maxExactDigits bounds the power of ten a single constraint is scaled by.
const maxExactDigits = 9

// problem is a model translated to pseudo-boolean form.
type problem struct {
	constrs  []solver.PBConstr
	costLits []solver.Lit
	costW    []int
	// approx is set when some constraint could not be scaled to exact
	// integers and was rounded to nearest instead.
	approx bool
}

// convert scales each constraint by the smallest power of ten that makes
// its coefficients integral, so the pseudo-boolean constraints accept
// exactly the assignments the model accepts. Objective coefficients are
// rounded to precision decimal digits.
func convert(m *milp.Model, precision int) (*problem, error) {
	scale := math.Pow10(precision)
	p := &problem{}

	all := make([]int, m.NumVars())
	for i := range all {
		all[i] = i + 1
	}
	// Registers every variable even when no constraint mentions it.
	p.constrs = append(p.constrs, solver.AtLeast(all, 0))

	for _, c := range m.Constraints {
		cscale, exact := constraintScale(c.Terms, c.RHS)
		if !exact {
			p.approx = true
		}
		switch c.Op {
		case milp.GE:
			if err := p.addGE(c.Name, c.Terms, c.RHS, cscale, 1); err != nil {
				return nil, err
			}
		case milp.LE:
			if err := p.addGE(c.Name, c.Terms, c.RHS, cscale, -1); err != nil {
				return nil, err
			}
		case milp.EQ:
			if err := p.addEQ(c.Name, c.Terms, c.RHS, cscale); err != nil {
				return nil, err
			}
		}
	}

	sign := 1.0
	if m.Sense == milp.Maximize {
		sign = -1
	}
	for _, t := range m.Objective {
		w := int(math.Round(sign * t.Coef * scale))
		switch {
		case w > 0:
			p.costLits = append(p.costLits, solver.IntToLit(int32(t.Var)+1))
			p.costW = append(p.costW, w)
		case w < 0:
			// Minimizing w*x equals minimizing |w|*(not x) up to a constant.
			p.costLits = append(p.costLits, solver.IntToLit(-(int32(t.Var) + 1)))
			p.costW = append(p.costW, -w)
		}
	}
	return p, nil
}

// constraintScale returns the smallest power of ten that turns every
// coefficient and the bound into an integer. When no power up to
// 10^maxExactDigits does, it returns that maximum and exact is false.
func constraintScale(terms []milp.Term, rhs float64) (scale float64, exact bool) {
	for digits := 0; digits <= maxExactDigits; digits++ {
		scale = math.Pow10(digits)
		if !integral(rhs * scale) {
			continue
		}
		exact = true
		for _, t := range terms {
			if !integral(t.Coef * scale) {
				exact = false
				break
			}
		}
		if exact {
			return scale, true
		}
	}
	return math.Pow10(maxExactDigits), false
}

func integral(v float64) bool {
	return math.Abs(v-math.Round(v)) < 1e-6
}

// addGE adds sign*sum(terms) >= sign*rhs.
func (p *problem) addGE(name string, terms []milp.Term, rhs, scale, sign float64) error {
	lits := make([]int, 0, len(terms))
	weights := make([]int, 0, len(terms))
	for _, t := range terms {
		lits = append(lits, int(t.Var)+1)
		weights = append(weights, int(math.Round(sign*t.Coef*scale)))
	}
	bound := int(math.Round(sign * rhs * scale))
	return p.addNormalized(name, lits, weights, bound)
}

func (p *problem) addEQ(name string, terms []milp.Term, rhs, scale float64) error {
	lits := make([]int, 0, len(terms))
	weights := make([]int, 0, len(terms))
	neg := make([]int, 0, len(terms))
	for _, t := range terms {
		w := int(math.Round(t.Coef * scale))
		lits = append(lits, int(t.Var)+1)
		weights = append(weights, w)
		neg = append(neg, -w)
	}
	bound := int(math.Round(rhs * scale))
	if err := p.addNormalized(name, lits, weights, bound); err != nil {
		return err
	}
	return p.addNormalized(name, lits, neg, -bound)
}

// addNormalized adds sum(w_i*l_i) >= bound after rewriting negative weights
// onto negated literals.
func (p *problem) addNormalized(name string, lits, weights []int, bound int) error {
	outLits := make([]int, 0, len(lits))
	outW := make([]int, 0, len(lits))
	total := 0
	for i, lit := range lits {
		w := weights[i]
		switch {
		case w > 0:
			outLits = append(outLits, lit)
			outW = append(outW, w)
			total += w
		case w < 0:
			// w*x = w + |w|*(not x)
			outLits = append(outLits, -lit)
			outW = append(outW, -w)
			bound -= w
			total -= w
		}
	}
	if bound <= 0 {
		return nil
	}
	if bound > total {
		return fmt.Errorf("%w: %s", errTriviallyInfeasible, name)
	}
	p.constrs = append(p.constrs, solver.GtEq(outLits, outW, bound))
	return nil
}
