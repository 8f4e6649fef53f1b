package weather

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/mwhitby/sodspread/grid"
)

// Scenario selects how library years map onto simulated years.
type Scenario int

const (
	// Historical replays the library years matching the simulated calendar.
	Historical Scenario = iota
	// RandomFuture samples a library year uniformly for each simulated year.
	RandomFuture
	// FavorableFuture samples from the most favorable half of the ranking.
	FavorableFuture
	// UnfavorableFuture samples from the least favorable half.
	UnfavorableFuture
)

var scenarioNames = map[string]Scenario{
	"historical":  Historical,
	"random":      RandomFuture,
	"favorable":   FavorableFuture,
	"unfavorable": UnfavorableFuture,
}

// ParseScenario recognizes historical, random, favorable and unfavorable.
func ParseScenario(s string) (Scenario, error) {
	sc, ok := scenarioNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown weather scenario %q (want historical, random, favorable or unfavorable)", s)
	}
	return sc, nil
}

func (s Scenario) String() string {
	for name, sc := range scenarioNames {
		if sc == s {
			return name
		}
	}
	return fmt.Sprintf("Scenario(%d)", int(s))
}

// Schedule is a Provider that fixes, up front, which library year serves
// each simulated year, then serves weekly suitability grids from it.
type Schedule struct {
	lib   *Library
	years []int // library year per simulated year
	buf   *grid.Float
}

// NewSchedule resolves the scenario's year choices for the simulated range.
// Sampling scenarios draw from the given seed so a run is reproducible.
func NewSchedule(lib *Library, sc Scenario, startYear, endYear int, seed uint64) (*Schedule, error) {
	if err := lib.Validate(); err != nil {
		return nil, fmt.Errorf("weather library: %w", err)
	}
	if startYear > endYear {
		return nil, fmt.Errorf("start year %d after end year %d", startYear, endYear)
	}

	nYears := endYear - startYear + 1
	years := make([]int, nYears)
	rng := rand.New(rand.NewPCG(seed, 0x9e3779b97f4a7c15))

	switch sc {
	case Historical:
		for i := range years {
			y := startYear + i
			if _, ok := lib.Years[y]; !ok {
				return nil, fmt.Errorf("historical scenario: library has no year %d", y)
			}
			years[i] = y
		}
	case RandomFuture:
		all := lib.YearList()
		for i := range years {
			years[i] = all[rng.IntN(len(all))]
		}
	case FavorableFuture, UnfavorableFuture:
		if len(lib.Ranking) == 0 {
			return nil, fmt.Errorf("%v scenario requires a ranked library", sc)
		}
		half := (len(lib.Ranking) + 1) / 2
		pool := lib.Ranking[:half]
		if sc == UnfavorableFuture {
			pool = lib.Ranking[len(lib.Ranking)-half:]
		}
		for i := range years {
			years[i] = pool[rng.IntN(len(pool))]
		}
	default:
		return nil, fmt.Errorf("unknown scenario %d", int(sc))
	}

	return &Schedule{
		lib:   lib,
		years: years,
		buf:   grid.NewFloat(lib.W, lib.H),
	}, nil
}

// YearFor reports which library year serves the given simulated year index.
func (s *Schedule) YearFor(yearIndex int) int { return s.years[yearIndex] }

// Suitability returns the combined suitability grid for a simulation week.
// The grid is a reused buffer; callers must not retain it.
func (s *Schedule) Suitability(week int) (*grid.Float, error) {
	yearIdx := week / WeeksPerYear
	if week < 0 || yearIdx >= len(s.years) {
		return nil, fmt.Errorf("week %d outside the scheduled range of %d years", week, len(s.years))
	}
	yw := s.lib.Years[s.years[yearIdx]]
	yw.suitability(week%WeeksPerYear, s.buf)
	return s.buf, nil
}
