package ecopath

import (
	"fmt"
	"runtime"
	"sort"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SweepCase is one wind condition of a sweep.
type SweepCase struct {
	WindSpeed  float64 // m/s
	WindDirDeg float64 // direction the wind blows towards
}

func (c SweepCase) String() string {
	return fmt.Sprintf("%.1fm/s@%.0f°", c.WindSpeed, c.WindDirDeg)
}

// TailwindCases returns cases blowing along +x, i.e. a tailwind for eastbound missions.
func TailwindCases(speeds ...float64) []SweepCase {
	return GridCases(speeds, []float64{0})
}

// HeadwindCases returns cases blowing along -x.
func HeadwindCases(speeds ...float64) []SweepCase {
	return GridCases(speeds, []float64{180})
}

// GridCases returns every combination of speed and direction, speeds varying fastest.
func GridCases(speeds, dirs []float64) []SweepCase {
	cases := make([]SweepCase, 0, len(speeds)*len(dirs))
	for _, d := range dirs {
		for _, s := range speeds {
			cases = append(cases, SweepCase{s, d})
		}
	}
	return cases
}

// WindFactory builds the wind field of a sweep case.
type WindFactory func(c SweepCase) WindField

// PowerLawFactory returns a factory of power law winds with the provided reference altitude.
func PowerLawFactory(refAltitude float64) WindFactory {
	return func(c SweepCase) WindField {
		return NewPowerLawWind(refAltitude, c.WindDirDeg, c.WindSpeed)
	}
}

// UniformFactory returns a factory of uniform winds.
func UniformFactory() WindFactory {
	return func(c SweepCase) WindField {
		return NewWindFromSpeedAndDir(c.WindSpeed, c.WindDirDeg)
	}
}

// SweepResult is the outcome of one case.
type SweepResult struct {
	Case             SweepCase
	Success          bool
	Message          string
	EnergyWh         float64
	TimeS            float64
	StraightEnergyWh float64
	StraightTimeS    float64
	Runtime          time.Duration
	Path             []Point3
}

// SavedPct returns the energy saved relative to the straight line, in percent.
func (r SweepResult) SavedPct() float64 {
	if r.StraightEnergyWh == 0 {
		return 0
	}
	return (r.StraightEnergyWh - r.EnergyWh) / r.StraightEnergyWh * 100
}

// SweepOptions configures Sweep.
type SweepOptions struct {
	Workers int
	Logger  kitlog.Logger
	Options []Option
}

// Sweep optimizes the mission once per wind case. Cases are independent and
// solved concurrently. Failed optimizations are recorded, not returned as errors.
func Sweep(d DroneConfig, m MissionSpec, cases []SweepCase, wf WindFactory, so SweepOptions) ([]SweepResult, error) {
	logger := so.Logger
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	workers := so.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	optimizers := make([]*MissionOptimizer, len(cases))
	for i, c := range cases {
		o, err := NewMissionOptimizer(d, m, wf(c), append([]Option{WithLogger(kitlog.With(logger, "case", c))}, so.Options...)...)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c, err)
		}
		optimizers[i] = o
	}

	results := make([]SweepResult, len(cases))
	var grp errgroup.Group
	grp.SetLimit(workers)
	for i, o := range optimizers {
		i, o, c := i, o, cases[i]
		grp.Go(func() error {
			start := time.Now()
			rslt, err := o.Optimize()
			if err != nil {
				return fmt.Errorf("case %s: %w", c, err)
			}
			r := SweepResult{Case: c, Success: rslt.Success, Message: rslt.Message, Runtime: time.Since(start)}
			if rslt.Success {
				straight := o.Evaluate(o.Integrator().StraightLine(rslt.Design.StartSpeed(), rslt.Design.EndSpeed()))
				r.EnergyWh, r.TimeS, r.Path = rslt.EnergyWh, rslt.TimeS, rslt.Path
				r.StraightEnergyWh, r.StraightTimeS = straight.EnergyWh(), straight.TimeS
			}
			logger.Log("level", "info", "subsys", "sweep", "case", c, "success", r.Success, "energy(Wh)", r.EnergyWh, "runtime", r.Runtime)
			results[i] = r
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SweepSummary gathers the statistics of a sweep.
type SweepSummary struct {
	Count, Successes, Failures int
	TotalRuntime               time.Duration
	MeanRuntime                time.Duration
	MedianRuntime              time.Duration
	MinRuntime, MaxRuntime     time.Duration
	MeanSavedPct               float64 // successful cases only
}

// Summarize returns the statistics of the provided sweep results.
func Summarize(results []SweepResult) (s SweepSummary) {
	s.Count = len(results)
	if s.Count == 0 {
		return
	}
	runtimes := make([]float64, s.Count)
	var saved []float64
	for i, r := range results {
		runtimes[i] = r.Runtime.Seconds()
		s.TotalRuntime += r.Runtime
		if r.Success {
			s.Successes++
			saved = append(saved, r.SavedPct())
		} else {
			s.Failures++
		}
	}
	sort.Float64s(runtimes)
	s.MeanRuntime = seconds(stat.Mean(runtimes, nil))
	s.MedianRuntime = seconds(stat.Quantile(0.5, stat.Empirical, runtimes, nil))
	s.MinRuntime = seconds(floats.Min(runtimes))
	s.MaxRuntime = seconds(floats.Max(runtimes))
	if len(saved) > 0 {
		s.MeanSavedPct = stat.Mean(saved, nil)
	}
	return
}

func (s SweepSummary) String() string {
	return fmt.Sprintf("%d cases (%d ok, %d failed) total=%s mean=%s median=%s min=%s max=%s saved=%.2f%%",
		s.Count, s.Successes, s.Failures, s.TotalRuntime, s.MeanRuntime, s.MedianRuntime, s.MinRuntime, s.MaxRuntime, s.MeanSavedPct)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
