// Package sim drives the weekly spread loop: seasonal gating, the
// produce-disperse-allocate pipeline, early termination, and reporting.
package sim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mwhitby/sodspread/config"
	"github.com/mwhitby/sodspread/epidemic"
	"github.com/mwhitby/sodspread/grid"
	"github.com/mwhitby/sodspread/telemetry"
	"github.com/mwhitby/sodspread/weather"
)

// weekSeedStride separates the RNG stream families of consecutive weeks.
const weekSeedStride = 0x9e3779b97f4a7c15

// StepStats summarizes one processed week.
type StepStats struct {
	Produced      int
	Landed        int
	NewInfections []int // per species, species order
}

// Result summarizes a completed run.
type Result struct {
	WeeksProcessed int
	WeeksSkipped   int
	// Exhausted is set when the run ended early because no susceptible
	// hosts of the mortality species remained. This is a success outcome.
	Exhausted bool
}

// Simulation owns the weekly loop over one landscape. Weeks run strictly in
// sequence; week t+1 never starts before week t's compartment update is
// committed.
type Simulation struct {
	cfg      *config.Config
	land     *grid.Landscape
	provider weather.Provider
	out      *telemetry.Output
	seed     uint64

	producer *epidemic.Producer
	kernel   *epidemic.Kernel

	// Ephemeral weekly buffers, reused across weeks.
	infected *grid.Int
	spores   *grid.Int
	landing  *grid.Int
}

// New wires the weekly pipeline and verifies grid geometry against the
// weather provider before the loop ever runs. out may be nil.
func New(cfg *config.Config, land *grid.Landscape, provider weather.Provider, out *telemetry.Output, seed uint64) (*Simulation, error) {
	if err := land.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("initial landscape: %w", err)
	}

	suit, err := provider.Suitability(0)
	if err != nil {
		return nil, fmt.Errorf("weather provider: %w", err)
	}
	if suit.W != land.W || suit.H != land.H {
		return nil, fmt.Errorf("suitability grid is %dx%d, landscape is %dx%d",
			suit.W, suit.H, land.W, land.H)
	}

	return &Simulation{
		cfg:      cfg,
		land:     land,
		provider: provider,
		out:      out,
		seed:     seed,
		producer: &epidemic.Producer{Rate: cfg.Epidemiology.SporeRate},
		kernel: &epidemic.Kernel{
			Scale:    cfg.Dispersal.KernelScale,
			CellSize: land.CellSize,
			Wind:     cfg.Dispersal.Wind,
			WindDir:  cfg.Derived.WindDir,
			Kappa:    cfg.Dispersal.Kappa,
		},
		infected: grid.NewInt(land.W, land.H),
		spores:   grid.NewInt(land.W, land.H),
		landing:  grid.NewInt(land.W, land.H),
	}, nil
}

// Landscape returns the simulation's mutable state.
func (s *Simulation) Landscape() *grid.Landscape { return s.land }

// Run executes the full simulated calendar.
func (s *Simulation) Run() (*Result, error) {
	res := &Result{}
	mort := s.land.Species[grid.MortalitySpecies]

	for week := 0; week < s.cfg.Derived.TotalWeeks; week++ {
		year, weekOfYear, month := s.calendar(week)

		// Seasonal gating: outside the allowed months the week passes
		// without touching state.
		if !s.cfg.Derived.MonthMask[int(month)] {
			res.WeeksSkipped++
			continue
		}

		// Terminal condition, not an error: nothing left to infect.
		if mort.TotalSusceptible() == 0 {
			slog.Info("susceptible hosts exhausted, terminating early",
				"week", week, "year", year)
			res.Exhausted = true
			break
		}

		suit, err := s.provider.Suitability(week)
		if err != nil {
			return nil, fmt.Errorf("week %d suitability: %w", week, err)
		}
		if suit.W != s.land.W || suit.H != s.land.H {
			return nil, fmt.Errorf("week %d suitability grid is %dx%d, landscape is %dx%d",
				week, suit.W, suit.H, s.land.W, s.land.H)
		}

		stats := s.Step(week, suit)
		res.WeeksProcessed++

		if res.WeeksProcessed%s.cfg.Run.OutputEveryNWeeks == 0 {
			if err := s.report(week, year, weekOfYear, stats); err != nil {
				return nil, err
			}
		}
	}

	slog.Info("run finished",
		"weeks_processed", res.WeeksProcessed,
		"weeks_skipped", res.WeeksSkipped,
		"exhausted", res.Exhausted,
		"oak_infected", mort.TotalInfected(),
	)
	return res, nil
}

// Step executes one week: spore production, dispersal, then allocation, in
// that order, committing the compartment update before returning. All
// randomness flows from the run seed and the week index.
func (s *Simulation) Step(week int, suit *grid.Float) StepStats {
	seed := s.seed + uint64(week)*weekSeedStride

	// Spores rise from every infected host, whichever species carries it.
	s.infected.Reset()
	for _, sp := range s.land.Species {
		s.infected.AddGrid(sp.Infected)
	}

	produced := s.producer.Produce(s.infected, suit, s.spores, seed)
	landed := s.kernel.Disperse(s.spores, s.landing, seed)
	newInf := epidemic.Allocate(s.landing, s.land, seed)

	return StepStats{Produced: produced, Landed: landed, NewInfections: newInf}
}

// report writes the weekly CSV record and raster snapshots.
func (s *Simulation) report(week, year, weekOfYear int, stats StepStats) error {
	res := s.land.Species[grid.ReservoirSpecies]
	mort := s.land.Species[grid.MortalitySpecies]

	totalNew := 0
	for _, n := range stats.NewInfections {
		totalNew += n
	}

	oakAbundance := mort.Abundance.Total()
	prop := -1.0
	if oakAbundance > 0 {
		prop = float64(mort.TotalInfected()) / float64(oakAbundance)
	}

	ws := telemetry.WeekStats{
		Week:                  week,
		Year:                  year,
		WeekOfYear:            weekOfYear,
		SporesProduced:        stats.Produced,
		SporesLanded:          stats.Landed,
		ReservoirSusceptible:  res.TotalSusceptible(),
		ReservoirInfected:     res.TotalInfected(),
		OakSusceptible:        mort.TotalSusceptible(),
		OakInfected:           mort.TotalInfected(),
		NewInfections:         totalNew,
		OakInfectedProportion: prop,
	}

	if err := s.out.WriteWeek(ws); err != nil {
		return err
	}
	return s.out.WriteRasters(week, s.land)
}

// calendar maps a simulation week to its year, week of year, and month.
func (s *Simulation) calendar(week int) (year, weekOfYear int, month time.Month) {
	year = s.cfg.Run.Start + week/weather.WeeksPerYear
	weekOfYear = week % weather.WeeksPerYear
	month = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, weekOfYear*7).Month()
	return year, weekOfYear, month
}
