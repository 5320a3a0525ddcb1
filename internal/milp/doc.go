// Package milp describes binary linear programs independently of any
// solver: variables, a linear objective, and named constraints. Backends
// implement Solver; WriteLP emits the model in CPLEX LP format.
package milp
