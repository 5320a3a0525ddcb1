package milp

import (
	"fmt"
	"math"
	"regexp"
	"sort"
)

// Sense is the optimization direction.
type Sense int

const (
	Maximize Sense = iota
	Minimize
)

func (s Sense) String() string {
	if s == Minimize {
		return "minimize"
	}
	return "maximize"
}

// Op is a constraint comparison operator.
type Op string

const (
	LE Op = "<="
	GE Op = ">="
	EQ Op = "="
)

// Var indexes a binary decision variable of a Model.
type Var int

// Term is a coefficient applied to a variable.
type Term struct {
	Var  Var
	Coef float64
}

// Constraint is a named linear constraint over binary variables.
type Constraint struct {
	Name  string
	Terms []Term
	Op    Op
	RHS   float64
}

// Model is a linear program over binary variables. Names follow the LP
// file conventions so every model can be written with WriteLP.
type Model struct {
	Name        string
	Sense       Sense
	Objective   []Term
	Constraints []Constraint

	vars        []string
	varIndex    map[string]Var
	constraints map[string]struct{}
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// NewModel returns an empty model.
func NewModel(name string, sense Sense) *Model {
	return &Model{
		Name:        name,
		Sense:       sense,
		varIndex:    make(map[string]Var),
		constraints: make(map[string]struct{}),
	}
}

// AddBinary declares a new 0/1 variable.
func (m *Model) AddBinary(name string) (Var, error) {
	if !identPattern.MatchString(name) || name[0] == 'e' || name[0] == 'E' {
		return 0, fmt.Errorf("invalid variable name %q", name)
	}
	if _, dup := m.varIndex[name]; dup {
		return 0, fmt.Errorf("duplicate variable %q", name)
	}
	v := Var(len(m.vars))
	m.vars = append(m.vars, name)
	m.varIndex[name] = v
	return v, nil
}

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int {
	return len(m.vars)
}

// VarName returns the declared name of v.
func (m *Model) VarName(v Var) string {
	return m.vars[v]
}

// Lookup resolves a variable by name.
func (m *Model) Lookup(name string) (Var, bool) {
	v, ok := m.varIndex[name]
	return v, ok
}

// SetObjective replaces the objective terms.
func (m *Model) SetObjective(terms []Term) error {
	if err := m.checkTerms(terms); err != nil {
		return fmt.Errorf("objective: %w", err)
	}
	m.Objective = mergeTerms(terms)
	return nil
}

// AddConstraint appends a named constraint. Repeated variables are merged.
func (m *Model) AddConstraint(name string, terms []Term, op Op, rhs float64) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid constraint name %q", name)
	}
	if _, dup := m.constraints[name]; dup {
		return fmt.Errorf("duplicate constraint %q", name)
	}
	switch op {
	case LE, GE, EQ:
	default:
		return fmt.Errorf("constraint %s: unknown operator %q", name, op)
	}
	if math.IsNaN(rhs) || math.IsInf(rhs, 0) {
		return fmt.Errorf("constraint %s: non-finite right-hand side", name)
	}
	if err := m.checkTerms(terms); err != nil {
		return fmt.Errorf("constraint %s: %w", name, err)
	}
	m.constraints[name] = struct{}{}
	m.Constraints = append(m.Constraints, Constraint{Name: name, Terms: mergeTerms(terms), Op: op, RHS: rhs})
	return nil
}

func (m *Model) checkTerms(terms []Term) error {
	for _, t := range terms {
		if t.Var < 0 || int(t.Var) >= len(m.vars) {
			return fmt.Errorf("unknown variable %d", t.Var)
		}
		if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
			return fmt.Errorf("non-finite coefficient on %s", m.vars[t.Var])
		}
	}
	return nil
}

// mergeTerms sums coefficients per variable, drops zeros, and orders by
// variable index.
func mergeTerms(terms []Term) []Term {
	sums := make(map[Var]float64, len(terms))
	for _, t := range terms {
		sums[t.Var] += t.Coef
	}
	out := make([]Term, 0, len(sums))
	for v, c := range sums {
		if c != 0 {
			out = append(out, Term{Var: v, Coef: c})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Var < out[j].Var })
	return out
}

// Evaluate returns the objective value of an assignment.
func (m *Model) Evaluate(values []bool) float64 {
	return sumTerms(m.Objective, values)
}

func sumTerms(terms []Term, values []bool) float64 {
	total := 0.0
	for _, t := range terms {
		if int(t.Var) < len(values) && values[t.Var] {
			total += t.Coef
		}
	}
	return total
}

// Satisfied reports whether c holds for values within tol.
func (c Constraint) Satisfied(values []bool, tol float64) bool {
	lhs := sumTerms(c.Terms, values)
	switch c.Op {
	case LE:
		return lhs <= c.RHS+tol
	case GE:
		return lhs >= c.RHS-tol
	default:
		return math.Abs(lhs-c.RHS) <= tol
	}
}

// Stats summarizes model size.
type Stats struct {
	Variables   int `json:"variables"`
	Constraints int `json:"constraints"`
	NonZeros    int `json:"nonzeros"`
}

// Stats returns the model dimensions.
func (m *Model) Stats() Stats {
	nz := 0
	for _, c := range m.Constraints {
		nz += len(c.Terms)
	}
	return Stats{Variables: len(m.vars), Constraints: len(m.Constraints), NonZeros: nz}
}

func (s Stats) String() string {
	return fmt.Sprintf("%d variables, %d constraints, %d nonzeros", s.Variables, s.Constraints, s.NonZeros)
}
