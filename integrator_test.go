package ecopath

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func testIntegrator(w WindField, start, end Point3) PathIntegrator {
	m := NewMissionSpec(start, end)
	return NewPathIntegrator(NewPowerModel(DefaultDroneConfig(), w), m)
}

func TestDesignVector(t *testing.T) {
	cp1, cp2 := NewPoint3(1, 2, 3), NewPoint3(4, 5, 6)
	x := NewDesignVector(15, 20, cp1, cp2)
	if x.StartSpeed() != 15 || x.EndSpeed() != 20 || x.ControlPoint1() != cp1 || x.ControlPoint2() != cp2 {
		t.Fatalf("incorrect accessors: %s", x)
	}
	if y := DesignVectorFromSlice(x.Slice()); y != x {
		t.Fatalf("slice round trip: %s != %s", y, x)
	}
	assertPanic(t, func() {
		DesignVectorFromSlice([]float64{1, 2, 3})
	})
}

func TestIntegratorDeterministic(t *testing.T) {
	pi := testIntegrator(DefaultPowerLawWind(), NewPoint3(0, 0, 10), NewPoint3(800, 300, 150))
	x := NewDesignVector(17, 23, NewPoint3(200, 150, 180), NewPoint3(600, 250, 120))
	a, b := pi.Evaluate(x), pi.Evaluate(x)
	if a.EnergyJ != b.EnergyJ || a.TimeS != b.TimeS || a.PeakPowerW != b.PeakPowerW {
		t.Fatalf("evaluations differ: %+v %+v", a, b)
	}
}

func TestIntegratorStraightLine(t *testing.T) {
	start, end := NewPoint3(0, 0, 0), NewPoint3(1000, 0, 200)
	pi := testIntegrator(CalmWind{}, start, end)
	x := pi.StraightLine(20, 20)
	e := pi.Evaluate(x)
	L := distance(start, end)
	if !scalar.EqualWithinRel(e.Length(), L, 1e-9) {
		t.Fatalf("straight path length %f != %f", e.Length(), L)
	}
	if !scalar.EqualWithinRel(e.TimeS, L/20, 1e-9) {
		t.Fatalf("time %f != %f", e.TimeS, L/20)
	}
	// Constant speed and slope: every segment draws the same power.
	v := r3.Scale(20/L, r3.Sub(end, start))
	exp := pi.Power.Power(v, start)
	if !scalar.EqualWithinRel(e.PeakPowerW, exp, 1e-9) {
		t.Fatalf("peak power %f != %f", e.PeakPowerW, exp)
	}
	if !scalar.EqualWithinRel(e.EnergyJ, exp*L/20, 1e-9) {
		t.Fatalf("energy %f != %f", e.EnergyJ, exp*L/20)
	}
	if !scalar.EqualWithinRel(e.EnergyWh(), e.EnergyJ/3600, 1e-12) {
		t.Fatal("incorrect Wh conversion")
	}
}

func TestIntegratorDetourCostsMore(t *testing.T) {
	start, end := NewPoint3(0, 0, 50), NewPoint3(1000, 0, 50)
	pi := testIntegrator(CalmWind{}, start, end)
	direct := pi.Evaluate(NewDesignVector(18, 18, lerp(start, end, 1/3.), lerp(start, end, 2/3.)))
	detour := pi.Evaluate(NewDesignVector(18, 18, NewPoint3(333, 300, 50), NewPoint3(666, 300, 50)))
	if detour.EnergyJ <= direct.EnergyJ || detour.TimeS <= direct.TimeS {
		t.Fatalf("detour (%f J, %f s) is cheaper than the direct path (%f J, %f s)", detour.EnergyJ, detour.TimeS, direct.EnergyJ, direct.TimeS)
	}
}

func TestIntegratorDegenerate(t *testing.T) {
	p := NewPoint3(10, 10, 10)
	pi := testIntegrator(DefaultPowerLawWind(), p, p)
	e := pi.Evaluate(pi.StraightLine(15, 15))
	if e.EnergyJ != 0 || e.TimeS != 0 || e.PeakPowerW != 0 {
		t.Fatalf("zero length path should cost nothing: %+v", e)
	}
	for _, v := range []float64{e.EnergyJ, e.TimeS, e.PeakPowerW} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatal("non finite evaluation")
		}
	}
}

func TestIntegratorSpeedFloor(t *testing.T) {
	pi := testIntegrator(CalmWind{}, NewPoint3(0, 0, 0), NewPoint3(100, 0, 0))
	e := pi.Evaluate(pi.StraightLine(0, 0))
	if math.IsInf(e.TimeS, 0) || math.IsNaN(e.TimeS) {
		t.Fatalf("zero speed should be floored, got time=%f", e.TimeS)
	}
	if !scalar.EqualWithinRel(e.TimeS, 100/minSpeed, 1e-9) {
		t.Fatalf("time %f != %f", e.TimeS, 100/minSpeed)
	}
}

func TestIntegratorSpeedProfile(t *testing.T) {
	start, end := NewPoint3(0, 0, 0), NewPoint3(900, 0, 0)
	m := NewMissionSpec(start, end)
	m.Samples = 4
	pi := NewPathIntegrator(NewPowerModel(DefaultDroneConfig(), nil), m)
	// Three equal segments flown at 15, 22.5 and 30 m/s.
	e := pi.Evaluate(NewDesignVector(15, 30, lerp(start, end, 1/3.), lerp(start, end, 2/3.)))
	exp := 300/15. + 300/22.5 + 300/30.
	if !scalar.EqualWithinRel(e.TimeS, exp, 1e-9) {
		t.Fatalf("time %f != %f", e.TimeS, exp)
	}
}
