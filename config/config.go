// Package config provides configuration loading and validation for the
// spread simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mwhitby/sodspread/epidemic"
	"github.com/mwhitby/sodspread/weather"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation parameters.
type Config struct {
	Run          RunConfig       `yaml:"run"`
	Epidemiology EpiConfig       `yaml:"epidemiology"`
	Season       SeasonConfig    `yaml:"season"`
	Dispersal    DispersalConfig `yaml:"dispersal"`
	Landscape    LandscapeConfig `yaml:"landscape"`
	Weather      WeatherConfig   `yaml:"weather"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// RunConfig bounds the simulated calendar and the reporting cadence.
type RunConfig struct {
	Start             int `yaml:"start"`                // first simulated year
	End               int `yaml:"end"`                  // last simulated year, inclusive
	OutputEveryNWeeks int `yaml:"output_every_n_weeks"` // report every Nth processed week
}

// EpiConfig holds the epidemiological rates.
type EpiConfig struct {
	SporeRate float64 `yaml:"spore_rate"` // spores per infected host per week
	// Reservoir-host initial infection as a multiple of the mortality
	// species' initial infection. A modeling assumption, not a law.
	ReservoirInfectionMultiplier float64 `yaml:"reservoir_infection_multiplier"`
}

// SeasonConfig gates active spread to a subset of calendar months.
type SeasonConfig struct {
	Enabled bool  `yaml:"enabled"`
	Months  []int `yaml:"months"` // 1..12
}

// DispersalConfig parameterizes the dispersal kernel.
type DispersalConfig struct {
	KernelScale   float64 `yaml:"kernel_scale"` // Cauchy scale, distance units
	Wind          bool    `yaml:"wind"`
	WindDirection string  `yaml:"wind_direction"` // compass octant, required with wind
	Kappa         float64 `yaml:"kappa"`          // von Mises concentration
}

// LandscapeConfig describes grid geometry plus the synthetic demo landscape.
type LandscapeConfig struct {
	CellSize         float64 `yaml:"cell_size"` // cell edge, distance units
	Width            int     `yaml:"width"`
	Height           int     `yaml:"height"`
	MaxDensity       int     `yaml:"max_density"`       // synthetic hosts per cell cap
	InitialInfection int     `yaml:"initial_infection"` // synthetic focus count
}

// WeatherConfig selects the scenario mapping library years to simulated ones.
type WeatherConfig struct {
	Scenario string `yaml:"scenario"` // historical, random, favorable, unfavorable
}

// DerivedConfig holds values parsed from the loaded config.
type DerivedConfig struct {
	WindDir    epidemic.Octant
	Scenario   weather.Scenario
	MonthMask  [13]bool // indexed by time.Month
	TotalWeeks int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults,
// then validates. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects undefined parameter combinations before any simulation
// step runs, and computes the derived values.
func (c *Config) Validate() error {
	if c.Run.Start > c.Run.End {
		return fmt.Errorf("run: start year %d after end year %d", c.Run.Start, c.Run.End)
	}
	if c.Run.OutputEveryNWeeks < 1 {
		return fmt.Errorf("run: output_every_n_weeks must be positive, got %d", c.Run.OutputEveryNWeeks)
	}
	if c.Epidemiology.SporeRate <= 0 {
		return fmt.Errorf("epidemiology: spore_rate must be positive, got %g", c.Epidemiology.SporeRate)
	}
	if c.Epidemiology.ReservoirInfectionMultiplier < 0 {
		return fmt.Errorf("epidemiology: reservoir_infection_multiplier must be non-negative, got %g",
			c.Epidemiology.ReservoirInfectionMultiplier)
	}
	if c.Dispersal.KernelScale <= 0 {
		return fmt.Errorf("dispersal: kernel_scale must be positive, got %g", c.Dispersal.KernelScale)
	}
	if c.Dispersal.Kappa < 0 {
		return fmt.Errorf("dispersal: kappa must be non-negative, got %g", c.Dispersal.Kappa)
	}
	if c.Landscape.CellSize <= 0 {
		return fmt.Errorf("landscape: cell_size must be positive, got %g", c.Landscape.CellSize)
	}

	if c.Dispersal.Wind {
		if c.Dispersal.WindDirection == "" {
			return fmt.Errorf("dispersal: wind enabled without wind_direction")
		}
		dir, err := epidemic.ParseOctant(c.Dispersal.WindDirection)
		if err != nil {
			return fmt.Errorf("dispersal: %w", err)
		}
		c.Derived.WindDir = dir
	}

	sc, err := weather.ParseScenario(c.Weather.Scenario)
	if err != nil {
		return fmt.Errorf("weather: %w", err)
	}
	c.Derived.Scenario = sc

	c.Derived.MonthMask = [13]bool{}
	if c.Season.Enabled {
		if len(c.Season.Months) == 0 {
			return fmt.Errorf("season: enabled with an empty month list")
		}
		for _, m := range c.Season.Months {
			if m < 1 || m > 12 {
				return fmt.Errorf("season: month %d out of range 1..12", m)
			}
			c.Derived.MonthMask[m] = true
		}
	} else {
		for m := 1; m <= 12; m++ {
			c.Derived.MonthMask[m] = true
		}
	}

	c.Derived.TotalWeeks = (c.Run.End - c.Run.Start + 1) * weather.WeeksPerYear
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
