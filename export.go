package ecopath

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ExportConfig configures the exporting of results.
type ExportConfig struct {
	Enabled   bool
	Dir       string
	Prefix    string
	Timestamp bool
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.Enabled
}

// Filename returns the file name of the provided kind of export.
func (c ExportConfig) Filename(kind string) string {
	dir := c.Dir
	if dir == "" {
		dir = "."
	}
	name := kind
	if c.Prefix != "" {
		name = c.Prefix + "-" + kind
	}
	if c.Timestamp {
		t := time.Now()
		name = fmt.Sprintf("%s-%d-%02d-%02dT%02d.%02d.%02d", name, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	}
	return filepath.Join(dir, name+".csv")
}

// CreateFile creates the export file of the provided kind. The caller must close it.
func CreateFile(conf ExportConfig, kind string) (*os.File, error) {
	if conf.Dir != "" {
		if err := os.MkdirAll(conf.Dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(conf.Filename(kind))
}

func ftoa(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func writeAll(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// WritePathCSV writes the sampled path as x,y,z records.
func WritePathCSV(w io.Writer, path []Point3) error {
	rows := make([][]string, len(path))
	for i, p := range path {
		rows[i] = []string{ftoa(p.X, 3), ftoa(p.Y, 3), ftoa(p.Z, 3)}
	}
	return writeAll(w, []string{"x", "y", "z"}, rows)
}

// WriteSweepCSV writes one record per sweep case. Failed cases have empty energies and times.
func WriteSweepCSV(w io.Writer, results []SweepResult) error {
	rows := make([][]string, len(results))
	for i, r := range results {
		row := []string{ftoa(r.Case.WindSpeed, 2), ftoa(r.Case.WindDirDeg, 1), strconv.FormatBool(r.Success), "", "", "", "", ftoa(r.Runtime.Seconds(), 4)}
		if r.Success {
			row[3], row[4] = ftoa(r.EnergyWh, 4), ftoa(r.TimeS, 3)
			row[5], row[6] = ftoa(r.StraightEnergyWh, 4), ftoa(r.StraightTimeS, 3)
		}
		rows[i] = row
	}
	return writeAll(w, []string{"windspeed", "direction", "success", "optimizer_energy", "optimizer_time", "straight_energy", "straight_time", "runtime_s"}, rows)
}

// WriteRouteCSV writes one record per route segment.
func WriteRouteCSV(w io.Writer, rr *RouteResult) error {
	rows := make([][]string, len(rr.Segments))
	for i, seg := range rr.Segments {
		s, e := seg.Mission.Start, seg.Mission.End
		rows[i] = []string{
			strconv.Itoa(seg.Index + 1),
			ftoa(s.X, 2), ftoa(s.Y, 2), ftoa(s.Z, 2),
			ftoa(e.X, 2), ftoa(e.Y, 2), ftoa(e.Z, 2),
			ftoa(seg.Result.Design.StartSpeed(), 3), ftoa(seg.Result.Design.EndSpeed(), 3),
			ftoa(seg.Result.EnergyWh, 4), ftoa(seg.Result.TimeS, 3),
			ftoa(seg.StraightEnergyWh, 4), ftoa(seg.StraightTimeS, 3),
		}
	}
	return writeAll(w, []string{"segment", "start_x", "start_y", "start_z", "end_x", "end_y", "end_z", "v_start", "v_end", "energy_wh", "time_s", "straight_energy_wh", "straight_time_s"}, rows)
}
