// Command montecarlo runs N seeded replicates of the spread simulation and
// reports the spread of outcomes across seeds.
package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/remeh/sizedwaitgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/mwhitby/sodspread/config"
	"github.com/mwhitby/sodspread/grid"
	"github.com/mwhitby/sodspread/sim"
	"github.com/mwhitby/sodspread/weather"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	runs := flag.Int("runs", 30, "Number of replicate runs")
	seedBase := flag.Int64("seed-base", 1, "Seed for replicate i is seed-base + i")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *runs < 1 {
		slog.Error("runs must be positive", "runs", *runs)
		os.Exit(1)
	}

	// Every replicate shares one landscape and weather library; only the
	// run seed differs.
	land, err := grid.NewSyntheticLandscape(
		cfg.Landscape.Width, cfg.Landscape.Height,
		cfg.Landscape.CellSize,
		cfg.Landscape.MaxDensity,
		cfg.Landscape.InitialInfection,
		*seedBase,
	)
	if err != nil {
		slog.Error("building landscape", "error", err)
		os.Exit(1)
	}

	years := make([]int, 0, cfg.Run.End-cfg.Run.Start+1)
	for y := cfg.Run.Start; y <= cfg.Run.End; y++ {
		years = append(years, y)
	}
	lib := weather.NewSyntheticLibrary(cfg.Landscape.Width, cfg.Landscape.Height, years, *seedBase+1)

	oakInfected := make([]float64, *runs)
	var mu sync.Mutex
	failed := false

	swg := sizedwaitgroup.New(runtime.NumCPU())
	for i := 0; i < *runs; i++ {
		swg.Add()
		go func(replicate int) {
			defer swg.Done()
			seed := uint64(*seedBase + int64(replicate))

			schedule, err := weather.NewSchedule(lib, cfg.Derived.Scenario, cfg.Run.Start, cfg.Run.End, seed)
			if err == nil {
				var s *sim.Simulation
				s, err = sim.New(cfg, land.Clone(), schedule, nil, seed)
				if err == nil {
					_, err = s.Run()
					if err == nil {
						oakInfected[replicate] = float64(s.Landscape().Species[grid.MortalitySpecies].TotalInfected())
					}
				}
			}
			if err != nil {
				mu.Lock()
				failed = true
				mu.Unlock()
				slog.Error("replicate failed", "replicate", replicate, "error", err)
			}
		}(i)
	}
	swg.Wait()

	if failed {
		os.Exit(1)
	}

	mean, std := stat.MeanStdDev(oakInfected, nil)
	slog.Info("replicates finished",
		"runs", *runs,
		"oak_infected_mean", mean,
		"oak_infected_stddev", std,
	)
}
