// Package telemetry handles structured run output: a weekly CSV log and
// raster snapshots of the compartment grids.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/mwhitby/sodspread/grid"
)

// WeekStats is one reported week's CSV record.
type WeekStats struct {
	Week       int `csv:"week"`
	Year       int `csv:"year"`
	WeekOfYear int `csv:"week_of_year"`

	SporesProduced int `csv:"spores_produced"`
	SporesLanded   int `csv:"spores_landed"`

	ReservoirSusceptible int `csv:"reservoir_susceptible"`
	ReservoirInfected    int `csv:"reservoir_infected"`
	OakSusceptible       int `csv:"oak_susceptible"`
	OakInfected          int `csv:"oak_infected"`
	NewInfections        int `csv:"new_infections"`

	// Infected share of total oak abundance; -1 where abundance is zero.
	OakInfectedProportion float64 `csv:"oak_infected_prop"`
}

// Output writes run artifacts into one directory.
type Output struct {
	dir       string
	weeksFile *os.File

	// Track if the CSV header has been written
	headerWritten bool
}

// NewOutput creates an output manager rooted at dir.
// Returns nil if dir is empty (output disabled).
func NewOutput(dir string) (*Output, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	weeksPath := filepath.Join(dir, "weeks.csv")
	f, err := os.Create(weeksPath)
	if err != nil {
		return nil, fmt.Errorf("creating weeks.csv: %w", err)
	}

	return &Output{dir: dir, weeksFile: f}, nil
}

// WriteWeek appends one record to weeks.csv.
func (o *Output) WriteWeek(stats WeekStats) error {
	if o == nil {
		return nil
	}

	records := []WeekStats{stats}

	if !o.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, o.weeksFile); err != nil {
			return fmt.Errorf("writing week stats: %w", err)
		}
		o.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, o.weeksFile); err != nil {
			return fmt.Errorf("writing week stats: %w", err)
		}
	}
	return nil
}

// WriteRasters snapshots every species' susceptible and infected grids for
// the given week as ESRI ASCII rasters.
func (o *Output) WriteRasters(week int, ls *grid.Landscape) error {
	if o == nil {
		return nil
	}
	for _, sp := range ls.Species {
		base := fmt.Sprintf("%s_week%04d", sp.Name, week)
		if err := writeASCIIGrid(filepath.Join(o.dir, base+"_infected.asc"), sp.Infected, ls.CellSize); err != nil {
			return err
		}
		if err := writeASCIIGrid(filepath.Join(o.dir, base+"_susceptible.asc"), sp.Susceptible, ls.CellSize); err != nil {
			return err
		}
	}
	return nil
}

// Dir returns the output directory path.
func (o *Output) Dir() string {
	if o == nil {
		return ""
	}
	return o.dir
}

// Close flushes and closes the output files.
func (o *Output) Close() error {
	if o == nil || o.weeksFile == nil {
		return nil
	}
	return o.weeksFile.Close()
}
