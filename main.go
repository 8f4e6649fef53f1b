package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mwhitby/sodspread/config"
	"github.com/mwhitby/sodspread/grid"
	"github.com/mwhitby/sodspread/sim"
	"github.com/mwhitby/sodspread/telemetry"
	"github.com/mwhitby/sodspread/weather"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV log and raster snapshots")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	if err := run(cfg, *outputDir, uint64(rngSeed)); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// run builds a synthetic landscape and weather library, then executes the
// full simulated calendar. Raster ingestion from a geospatial store plugs in
// here in place of the synthetic builders.
func run(cfg *config.Config, outputDir string, seed uint64) error {
	slog.Info("starting simulation",
		"seed", seed,
		"years", cfg.Run.End-cfg.Run.Start+1,
		"grid_cells", cfg.Landscape.Width*cfg.Landscape.Height,
		"wind", cfg.Dispersal.Wind,
		"scenario", cfg.Weather.Scenario,
	)

	land, err := grid.NewSyntheticLandscape(
		cfg.Landscape.Width, cfg.Landscape.Height,
		cfg.Landscape.CellSize,
		cfg.Landscape.MaxDensity,
		cfg.Landscape.InitialInfection,
		int64(seed),
	)
	if err != nil {
		return err
	}

	years := make([]int, 0, cfg.Run.End-cfg.Run.Start+1)
	for y := cfg.Run.Start; y <= cfg.Run.End; y++ {
		years = append(years, y)
	}
	lib := weather.NewSyntheticLibrary(cfg.Landscape.Width, cfg.Landscape.Height, years, int64(seed)+1)

	schedule, err := weather.NewSchedule(lib, cfg.Derived.Scenario, cfg.Run.Start, cfg.Run.End, seed)
	if err != nil {
		return err
	}

	out, err := telemetry.NewOutput(outputDir)
	if err != nil {
		return err
	}
	defer out.Close()

	if out != nil {
		if err := cfg.WriteYAML(filepath.Join(out.Dir(), "config.yaml")); err != nil {
			return err
		}
	}

	s, err := sim.New(cfg, land, schedule, out, seed)
	if err != nil {
		return err
	}

	_, err = s.Run()
	return err
}
