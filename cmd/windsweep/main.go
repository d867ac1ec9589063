package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/HenrH7/ecopath"
	kitlog "github.com/go-kit/kit/log"
)

// This program optimizes the mission of a scenario for each wind of its sweep,
// and compares each optimized path to the straight line.

const defaultScenario = "~~unset~~"

var (
	scenario string
	dir      string
	cpus     int
	debug    bool
	logFile  string
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "sweep scenario TOML file")
	flag.StringVar(&dir, "dir", ".", "directory of the scenario")
	flag.IntVar(&cpus, "cpus", -1, "number of CPUs to use (defaults to all)")
	flag.BoolVar(&debug, "debug", false, "log debug records")
	flag.StringVar(&logFile, "log", "", "log to this rotated file instead of stdout")
}

func main() {
	flag.Parse()
	logger, closer := ecopath.NewLogger(ecopath.LogConfig{File: logFile, Debug: debug, MaxSizeMB: 10, MaxBackups: 3})
	defer closer.Close()
	if err := run(logger); err != nil {
		logger.Log("level", "critical", "subsys", "main", "err", err)
		closer.Close()
		os.Exit(1)
	}
}

func run(logger kitlog.Logger) error {
	if scenario == defaultScenario {
		return fmt.Errorf("no scenario provided")
	}
	sc, err := ecopath.LoadScenario(dir, scenario)
	if err != nil {
		return err
	}
	workers := runtime.NumCPU()
	if sc.Sweep.Workers > 0 {
		workers = sc.Sweep.Workers
	}
	if cpus > 0 {
		workers = cpus
	}
	runtime.GOMAXPROCS(workers)

	cases := sc.Sweep.Cases()
	logger.Log("level", "info", "subsys", "main", "scenario", sc, "cases", len(cases), "wind", sc.Sweep.Wind, "cpus", workers)
	results, err := ecopath.Sweep(sc.Drone, sc.Mission, cases, sc.WindFactory(), ecopath.SweepOptions{Workers: workers, Logger: logger, Options: sc.Options()})
	if err != nil {
		return err
	}
	for _, r := range results {
		if !r.Success {
			logger.Log("level", "warning", "subsys", "main", "case", r.Case, "message", r.Message)
			continue
		}
		logger.Log("level", "notice", "subsys", "main", "case", r.Case,
			"energy(Wh)", fmt.Sprintf("%.3f", r.EnergyWh), "straight(Wh)", fmt.Sprintf("%.3f", r.StraightEnergyWh),
			"saved(%)", fmt.Sprintf("%.2f", r.SavedPct()), "time(s)", fmt.Sprintf("%.2f", r.TimeS))
	}
	summary := ecopath.Summarize(results)
	logger.Log("level", "notice", "subsys", "main", "summary", summary)

	if sc.Export.IsUseless() {
		return nil
	}
	f, err := ecopath.CreateFile(sc.Export, "sweep")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := ecopath.WriteSweepCSV(f, results); err != nil {
		return err
	}
	logger.Log("level", "info", "subsys", "export", "sweep", f.Name())
	return nil
}
