package ecopath

import (
	"errors"
	"testing"

	"github.com/HenrH7/ecopath/solver"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestRouteSegments(t *testing.T) {
	tmpl := NewMissionSpec(Point3{}, Point3{})
	tmpl.MaxTime, tmpl.Samples = 300, 7
	r := NewRoute(NewPoint3(0, 0, 0), NewPoint3(100, 0, 10), NewPoint3(100, 100, 20))
	legs := r.Segments(tmpl)
	if len(legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(legs))
	}
	if legs[0].End != legs[1].Start || legs[1].End != r.Waypoints[2] {
		t.Fatal("legs do not follow the waypoints")
	}
	for _, leg := range legs {
		if leg.MaxTime != 300 || leg.Samples != 7 {
			t.Fatalf("leg does not inherit the template: %s", leg)
		}
	}
	if NewRoute(Point3{}).Segments(tmpl) != nil {
		t.Fatal("a single waypoint has no legs")
	}
}

func TestSolveRoute(t *testing.T) {
	tmpl := NewMissionSpec(Point3{}, Point3{})
	tmpl.MaxTime = 300
	wp := []Point3{NewPoint3(0, 0, 0), NewPoint3(300, 0, 50), NewPoint3(600, 100, 50)}
	rr, err := SolveRoute(DefaultDroneConfig(), NewRoute(wp...), tmpl, CalmWind{}, RouteOptions{Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(rr.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(rr.Segments))
	}
	// The joint is included once.
	if len(rr.Path) != 2*tmpl.Samples-1 {
		t.Fatalf("path has %d points instead of %d", len(rr.Path), 2*tmpl.Samples-1)
	}
	if rr.Path[0] != wp[0] || rr.Path[tmpl.Samples-1] != wp[1] || rr.Path[len(rr.Path)-1] != wp[2] {
		t.Fatal("path does not go through the waypoints")
	}
	var energy, time float64
	for i, seg := range rr.Segments {
		if seg.Index != i || !seg.Result.Success {
			t.Fatalf("segment #%d: %+v", i, seg)
		}
		energy += seg.Result.EnergyWh
		time += seg.Result.TimeS
	}
	if !scalar.EqualWithinRel(rr.TotalEnergyWh, energy, 1e-12) || !scalar.EqualWithinRel(rr.TotalTimeS, time, 1e-12) {
		t.Fatal("totals are not the sum of the segments")
	}
	if !scalar.EqualWithinAbs(rr.SavedWh, rr.StraightEnergyWh-rr.TotalEnergyWh, 1e-12) {
		t.Fatal("incorrect savings")
	}
}

func TestSolveRouteErrors(t *testing.T) {
	tmpl := NewMissionSpec(Point3{}, Point3{})
	if _, err := SolveRoute(DefaultDroneConfig(), NewRoute(Point3{}), tmpl, CalmWind{}, RouteOptions{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	bad := DefaultDroneConfig()
	bad.Mass = -1
	_, err := SolveRoute(bad, NewRoute(Point3{}, NewPoint3(10, 0, 0)), tmpl, CalmWind{}, RouteOptions{})
	var segErr *SegmentError
	if !errors.As(err, &segErr) || segErr.Index != 1 || !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected a SegmentError wrapping ErrInvalidConfig, got %v", err)
	}

	// The first leg has no length and the second cannot be flown in time.
	tmpl.MaxTime = 30
	opts := solver.DefaultOptions()
	opts.OuterIterations = 5
	r := NewRoute(NewPoint3(0, 0, 0), NewPoint3(0, 0, 0), NewPoint3(5000, 0, 0))
	_, err = SolveRoute(DefaultDroneConfig(), r, tmpl, CalmWind{}, RouteOptions{Options: []Option{WithSolver(solver.NewAugmentedLagrangian(opts))}})
	if !errors.As(err, &segErr) || segErr.Index != 2 || !errors.Is(err, ErrNonConvergent) {
		t.Fatalf("expected the second segment to fail, got %v", err)
	}
}
