package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

// Method is the unconstrained minimizer used on each subproblem.
type Method uint8

const (
	// BFGS with central finite difference gradients.
	BFGS Method = iota + 1
	// NelderMead simplex, derivative free.
	NelderMead
)

func (m Method) String() string {
	switch m {
	case BFGS:
		return "bfgs"
	case NelderMead:
		return "nelder-mead"
	}
	panic("cannot stringify unknown method")
}

// MethodFromString returns the method of the provided name.
func MethodFromString(s string) (Method, error) {
	switch s {
	case "bfgs", "BFGS", "":
		return BFGS, nil
	case "nelder-mead", "neldermead", "NelderMead":
		return NelderMead, nil
	}
	return 0, fmt.Errorf("unknown method `%s`", s)
}

const (
	maxPenalty = 1e8
	fdStep     = 1e-6
)

// Options configures an AugmentedLagrangian.
type Options struct {
	Method          Method
	FeasibilityTol  float64 // on the scaled constraints
	FunctionTol     float64 // relative change of the objective between outer iterations
	OuterIterations int
	InitialPenalty  float64
}

// DefaultOptions returns the options used by NewAugmentedLagrangian when none are provided.
func DefaultOptions() Options {
	return Options{Method: BFGS, FeasibilityTol: 1e-6, FunctionTol: 1e-8, OuterIterations: 30, InitialPenalty: 10}
}

// AugmentedLagrangian solves inequality constrained problems by a sequence of
// bound-transformed unconstrained subproblems (Powell-Hestenes-Rockafellar
// multipliers), each minimized with gonum's optimize package.
type AugmentedLagrangian struct {
	opts Options
}

// NewAugmentedLagrangian returns a new solver. It panics on invalid options.
func NewAugmentedLagrangian(opts Options) *AugmentedLagrangian {
	if opts.Method != BFGS && opts.Method != NelderMead {
		panic("unsupported subproblem method")
	}
	if opts.FeasibilityTol <= 0 || opts.FunctionTol <= 0 {
		panic("tolerances must be positive")
	}
	if opts.OuterIterations < 1 {
		panic("at least one outer iteration is required")
	}
	if opts.InitialPenalty <= 0 {
		panic("initial penalty must be positive")
	}
	return &AugmentedLagrangian{opts}
}

// Default returns an AugmentedLagrangian with the DefaultOptions.
func Default() *AugmentedLagrangian {
	return NewAugmentedLagrangian(DefaultOptions())
}

// Options returns the options of this solver.
func (a *AugmentedLagrangian) Options() Options {
	return a.opts
}

// alState is the state of one Solve. It is not shared between solves.
type alState struct {
	p      Problem
	t      transform
	fScale float64
	cScale []float64
	σ      []float64 // multipliers
	ρ      float64   // penalty
	x      []float64 // scratch external vector
	evals  int
}

// eval returns the scaled objective and constraints at the external vector x.
func (s *alState) eval(x []float64) (f float64, c []float64) {
	s.evals++
	f = s.p.Objective(x) / s.fScale
	c = make([]float64, len(s.p.Constraints))
	for i, con := range s.p.Constraints {
		c[i] = con.Fn(x) / s.cScale[i]
	}
	return
}

// lagrangian returns the augmented Lagrangian at the internal vector u.
func (s *alState) lagrangian(u []float64) float64 {
	s.t.toX(s.x, u)
	f, c := s.eval(s.x)
	l := f
	for i, ci := range c {
		if ci-s.σ[i]/s.ρ <= 0 {
			l += -s.σ[i]*ci + s.ρ*ci*ci/2
		} else {
			l += -s.σ[i] * s.σ[i] / (2 * s.ρ)
		}
	}
	return l
}

// Solve implements the Solver interface.
func (a *AugmentedLagrangian) Solve(p Problem) (Solution, error) {
	if err := p.Validate(); err != nil {
		return Solution{}, err
	}
	n := len(p.X0)
	s := &alState{p: p, t: newTransform(p), σ: make([]float64, len(p.Constraints)), ρ: a.opts.InitialPenalty, x: make([]float64, n)}

	u := s.t.toU(p.X0)
	x0 := make([]float64, n)
	s.t.toX(x0, u)
	s.fScale, s.cScale = 1, make([]float64, len(p.Constraints))
	for i := range s.cScale {
		s.cScale[i] = 1
	}
	f0, c0 := s.eval(x0)
	if !finite(f0) || !allFinite(c0) {
		return Solution{X: x0, F: f0, Message: "non-finite objective or constraint at the initial guess", Evaluations: s.evals}, nil
	}
	s.fScale = math.Max(math.Abs(f0), 1)
	for i, ci := range c0 {
		s.cScale[i] = math.Max(math.Abs(ci), 1)
	}

	problem := optimize.Problem{Func: s.lagrangian}
	var method optimize.Method
	switch a.opts.Method {
	case BFGS:
		problem.Grad = func(grad, u []float64) {
			fd.Gradient(grad, s.lagrangian, u, &fd.Settings{Formula: fd.Central, Step: fdStep})
		}
		method = &optimize.BFGS{GradStopThreshold: 1e-9}
	case NelderMead:
		method = &optimize.NelderMead{}
	}

	sol := Solution{X: make([]float64, n)}
	fPrev, violPrev := math.NaN(), math.Inf(1)
	worst := -1
	var (
		lastStatus optimize.Status
		lastErr    error
	)
	for outer := 1; outer <= a.opts.OuterIterations; outer++ {
		settings := &optimize.Settings{
			MajorIterations: p.MaxIterations,
			Converger:       &optimize.FunctionConverge{Absolute: 1e-12, Relative: 1e-10, Iterations: 20},
		}
		lStart := s.lagrangian(u)
		res, err := optimize.Minimize(problem, u, settings, method)
		lastErr = err
		// A failed line search still reports its best location.
		if res != nil {
			lastStatus = res.Status
			sol.Iterations += res.MajorIterations
			if finite(res.F) && res.F <= lStart && len(res.X) == n {
				u = append(u[:0], res.X...)
			}
		}

		s.t.toX(sol.X, u)
		f, c := s.eval(sol.X)
		sol.F = f * s.fScale
		if !finite(f) || !allFinite(c) {
			sol.Message = "non-finite objective or constraint"
			sol.Evaluations = s.evals
			return sol, nil
		}
		viol := 0.0
		for i, ci := range c {
			if -ci > viol {
				viol, worst = -ci, i
			}
		}
		slack := 0.0
		for i, ci := range c {
			s.σ[i] = math.Max(s.σ[i]-s.ρ*ci, 0)
			slack += s.σ[i] * math.Abs(ci)
		}
		if viol <= a.opts.FeasibilityTol && slack <= a.opts.FeasibilityTol &&
			math.Abs(f-fPrev) <= a.opts.FunctionTol*math.Max(1, math.Abs(f)) {
			sol.Success = true
			sol.Message = "Optimization terminated successfully"
			sol.Evaluations = s.evals
			return sol, nil
		}
		if viol > a.opts.FeasibilityTol && viol > violPrev/4 {
			s.ρ = math.Min(s.ρ*10, maxPenalty)
		}
		fPrev, violPrev = f, viol
	}
	sol.Evaluations = s.evals
	if violPrev > a.opts.FeasibilityTol && worst >= 0 {
		name := p.Constraints[worst].Name
		if name == "" {
			name = fmt.Sprintf("#%d", worst)
		}
		sol.Message = fmt.Sprintf("constraints violated after %d outer iterations (constraint %s short by %.3g)", a.opts.OuterIterations, name, violPrev*s.cScale[worst])
	} else {
		sol.Message = fmt.Sprintf("Iteration limit reached after %d outer iterations", a.opts.OuterIterations)
	}
	sol.Message += subproblemStatus(lastStatus, lastErr)
	return sol, nil
}

// subproblemStatus describes how the last inner minimization ended.
func subproblemStatus(status optimize.Status, err error) string {
	if err != nil {
		return fmt.Sprintf("; last subproblem %s: %s", status, err)
	}
	return fmt.Sprintf("; last subproblem %s", status)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(v []float64) bool {
	for _, vi := range v {
		if !finite(vi) {
			return false
		}
	}
	return true
}
