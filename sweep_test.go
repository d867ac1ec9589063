package ecopath

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/HenrH7/ecopath/solver"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestGridCases(t *testing.T) {
	cases := GridCases([]float64{0, 5, 10}, []float64{0, 90})
	if len(cases) != 6 {
		t.Fatalf("expected 6 cases, got %d", len(cases))
	}
	if cases[1] != (SweepCase{5, 0}) || cases[3] != (SweepCase{0, 90}) {
		t.Fatalf("speeds should vary fastest: %v", cases)
	}
	for _, c := range TailwindCases(1, 2) {
		if c.WindDirDeg != 0 {
			t.Fatalf("tailwind case %s", c)
		}
	}
	for _, c := range HeadwindCases(1, 2) {
		if c.WindDirDeg != 180 {
			t.Fatalf("headwind case %s", c)
		}
	}
}

func TestWindFactories(t *testing.T) {
	c := SweepCase{10, 0}
	if w := UniformFactory()(c).WindAt(NewPoint3(0, 0, 0)); !scalar.EqualWithinAbs(w.X, 10, 1e-12) {
		t.Fatalf("uniform factory: %v", w)
	}
	pl := PowerLawFactory(100)(c)
	if w := pl.WindAt(NewPoint3(0, 0, 100)); !scalar.EqualWithinAbs(w.X, 10, 1e-12) {
		t.Fatalf("power law factory: %v", w)
	}
	if pl.MaxWindAltitude() != 100 {
		t.Fatal("incorrect reference altitude")
	}
}

func TestSweep(t *testing.T) {
	m := NewMissionSpec(NewPoint3(0, 0, 10), NewPoint3(400, 0, 60))
	m.MaxTime = 300
	cases := TailwindCases(0, 5)
	results, err := Sweep(DefaultDroneConfig(), m, cases, UniformFactory(), SweepOptions{Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(cases) {
		t.Fatalf("expected %d results, got %d", len(cases), len(results))
	}
	for i, r := range results {
		if r.Case != cases[i] {
			t.Fatalf("result #%d is for %s instead of %s", i, r.Case, cases[i])
		}
		if !r.Success {
			t.Fatalf("%s failed: %s", r.Case, r.Message)
		}
		if r.StraightEnergyWh <= 0 || r.Runtime <= 0 || len(r.Path) != m.Samples {
			t.Fatalf("incomplete result %+v", r)
		}
	}
	if results[1].EnergyWh > results[0].EnergyWh*(1+1e-2) {
		t.Fatalf("tailwind %f Wh costs more than calm %f Wh", results[1].EnergyWh, results[0].EnergyWh)
	}
	s := Summarize(results)
	if s.Count != 2 || s.Successes != 2 || s.Failures != 0 {
		t.Fatalf("incorrect summary %s", s)
	}
}

type countingSolver struct {
	calls atomic.Int32
}

func (s *countingSolver) Solve(p solver.Problem) (solver.Solution, error) {
	s.calls.Add(1)
	return solver.Default().Solve(p)
}

func TestSweepInvalidCase(t *testing.T) {
	m := NewMissionSpec(NewPoint3(0, 0, 10), NewPoint3(400, 0, 60))
	cases := TailwindCases(0, 5, 10)
	wf := func(c SweepCase) WindField {
		if c.WindSpeed == 10 {
			return nil
		}
		return UniformFactory()(c)
	}
	cs := &countingSolver{}
	_, err := Sweep(DefaultDroneConfig(), m, cases, wf, SweepOptions{Workers: 1, Options: []Option{WithSolver(cs)}})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if n := cs.calls.Load(); n != 0 {
		t.Fatalf("%d cases were solved before the invalid one was rejected", n)
	}
}

func TestSummarize(t *testing.T) {
	var results []SweepResult
	for i, rt := range []float64{3, 1, 10, 2, 4} {
		r := SweepResult{Runtime: time.Duration(rt * float64(time.Second)), Success: i != 2}
		if r.Success {
			r.StraightEnergyWh, r.EnergyWh = 10, 10-float64(i)
		}
		results = append(results, r)
	}
	s := Summarize(results)
	if s.Count != 5 || s.Successes != 4 || s.Failures != 1 {
		t.Fatalf("incorrect counts %s", s)
	}
	if s.TotalRuntime != 20*time.Second || s.MeanRuntime != 4*time.Second {
		t.Fatalf("incorrect total or mean %s", s)
	}
	if s.MedianRuntime != 3*time.Second || s.MinRuntime != time.Second || s.MaxRuntime != 10*time.Second {
		t.Fatalf("incorrect median or extrema %s", s)
	}
	// Savings of 0, 10, 30 and 40 %.
	if !scalar.EqualWithinAbs(s.MeanSavedPct, 20, 1e-9) {
		t.Fatalf("mean savings %f != 20", s.MeanSavedPct)
	}
	if empty := Summarize(nil); empty.Count != 0 || empty.MeanRuntime != 0 {
		t.Fatalf("empty summary %s", empty)
	}
}
