// Package solver minimizes a scalar function of a bounded vector subject to
// inequality constraints.
package solver

import (
	"errors"
	"fmt"
	"math"
)

// Func is a scalar function of the decision vector.
type Func func(x []float64) float64

// ConstraintKind defines the kind of a constraint.
type ConstraintKind uint8

const (
	// Inequality constraints are satisfied when Fn(x) >= 0.
	Inequality ConstraintKind = iota + 1
)

func (k ConstraintKind) String() string {
	switch k {
	case Inequality:
		return "ineq"
	}
	panic("cannot stringify unknown constraint kind")
}

// Constraint is one constraint of a Problem.
type Constraint struct {
	Kind ConstraintKind
	Fn   Func
	Name string // only used in messages
}

// Bound is the closed feasible interval of one variable. Either side may be infinite.
type Bound struct {
	Min, Max float64
}

// Contains returns whether v lies in the bound.
func (b Bound) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Clamp returns v restricted to the bound.
func (b Bound) Clamp(v float64) float64 {
	return math.Min(math.Max(v, b.Min), b.Max)
}

// Problem defines a bounded and constrained minimization.
type Problem struct {
	Objective     Func
	Constraints   []Constraint
	Bounds        []Bound // one per variable, or none for an unbounded problem
	X0            []float64
	MaxIterations int // cap on the major iterations of each subproblem
}

// Solution is the outcome of a Solve.
type Solution struct {
	Success     bool
	X           []float64
	F           float64 // objective at X
	Message     string
	Iterations  int // total major iterations
	Evaluations int // objective evaluations
}

// Solver solves constrained minimization problems. The returned error is only
// for malformed problems: a problem which cannot be solved returns a Solution
// whose Success is false, and whose Message says why.
type Solver interface {
	Solve(p Problem) (Solution, error)
}

// ErrMalformed is wrapped by the errors returned for malformed problems.
var ErrMalformed = errors.New("malformed problem")

// Validate checks the problem dimensions, functions and bounds.
func (p Problem) Validate() error {
	if p.Objective == nil {
		return fmt.Errorf("%w: nil objective", ErrMalformed)
	}
	if len(p.X0) == 0 {
		return fmt.Errorf("%w: empty initial guess", ErrMalformed)
	}
	if len(p.Bounds) != 0 && len(p.Bounds) != len(p.X0) {
		return fmt.Errorf("%w: %d bounds for %d variables", ErrMalformed, len(p.Bounds), len(p.X0))
	}
	for i, b := range p.Bounds {
		if math.IsNaN(b.Min) || math.IsNaN(b.Max) || b.Min > b.Max {
			return fmt.Errorf("%w: invalid bound #%d [%v, %v]", ErrMalformed, i, b.Min, b.Max)
		}
	}
	for i, v := range p.X0 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: initial guess #%d is not finite", ErrMalformed, i)
		}
	}
	for i, c := range p.Constraints {
		if c.Fn == nil {
			return fmt.Errorf("%w: nil constraint #%d", ErrMalformed, i)
		}
		if c.Kind != Inequality {
			return fmt.Errorf("%w: unsupported kind for constraint #%d", ErrMalformed, i)
		}
	}
	if p.MaxIterations < 0 {
		return fmt.Errorf("%w: negative iteration cap", ErrMalformed)
	}
	return nil
}

// bound returns the bound of variable i.
func (p Problem) bound(i int) Bound {
	if len(p.Bounds) == 0 {
		return Bound{math.Inf(-1), math.Inf(1)}
	}
	return p.Bounds[i]
}
