package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/HenrH7/ecopath"
	kitlog "github.com/go-kit/kit/log"
)

// This program reads a scenario and optimizes every leg of its route.

const defaultScenario = "~~unset~~"

var (
	scenario string
	dir      string
	cpus     int
	debug    bool
	logFile  string
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "mission scenario TOML file")
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
	workers := runtime.NumCPU()
	if cpus > 0 {
		workers = cpus
	}
	runtime.GOMAXPROCS(workers)

	sc, err := ecopath.LoadScenario(dir, scenario)
	if err != nil {
		return err
	}
	logger.Log("level", "info", "subsys", "main", "scenario", sc, "drone", sc.Drone, "cpus", workers)

	rr, err := ecopath.SolveRoute(sc.Drone, sc.Route, sc.Mission, sc.Wind, ecopath.RouteOptions{Workers: workers, Logger: logger, Options: sc.Options()})
	if err != nil {
		return err
	}
	for _, seg := range rr.Segments {
		seg.Result.Report.Log(kitlog.With(logger, "segment", seg.Index+1))
		if sc.Mission.Verbose {
			fmt.Print(seg.Result.Report)
		}
	}
	logger.Log("level", "notice", "subsys", "main", "segments", len(rr.Segments),
		"time(s)", fmt.Sprintf("%.2f", rr.TotalTimeS), "energy(Wh)", fmt.Sprintf("%.3f", rr.TotalEnergyWh),
		"straight(Wh)", fmt.Sprintf("%.3f", rr.StraightEnergyWh), "saved(%)", fmt.Sprintf("%.2f", rr.SavedPct))

	if sc.Export.IsUseless() {
		return nil
	}
	return export(logger, sc.Export, rr)
}

func export(logger kitlog.Logger, conf ecopath.ExportConfig, rr *ecopath.RouteResult) error {
	f, err := ecopath.CreateFile(conf, "path")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := ecopath.WritePathCSV(f, rr.Path); err != nil {
		return err
	}
	g, err := ecopath.CreateFile(conf, "route")
	if err != nil {
		return err
	}
	defer g.Close()
	if err := ecopath.WriteRouteCSV(g, rr); err != nil {
		return err
	}
	logger.Log("level", "info", "subsys", "export", "path", f.Name(), "route", g.Name())
	return nil
}
