// Package weather supplies the weekly climatic-suitability grids the spread
// engine consumes. Suitability is the per-cell product of a moisture
// coefficient and a temperature coefficient, clamped to [0,1]. The engine
// only sees the Provider interface; where the coefficient layers come from
// (geospatial store, synthetic generator) is this package's concern.
package weather

import (
	"fmt"
	"sort"

	"github.com/mwhitby/sodspread/grid"
)

// WeeksPerYear is the number of weekly layers each library year carries.
const WeeksPerYear = 52

// Provider yields the combined suitability grid for a simulation week
// (0-based from the run start). The returned grid may be reused between
// calls; callers must not retain it across weeks.
type Provider interface {
	Suitability(week int) (*grid.Float, error)
}

// YearWeather holds one calendar year's weekly coefficient layers.
type YearWeather struct {
	Year        int
	Moisture    []*grid.Float // WeeksPerYear entries
	Temperature []*grid.Float
}

// suitability writes moisture * temperature for the given week of year into
// dst, clamped to [0,1].
func (yw *YearWeather) suitability(weekOfYear int, dst *grid.Float) {
	m := yw.Moisture[weekOfYear]
	t := yw.Temperature[weekOfYear]
	for i := range dst.Data {
		v := m.Data[i] * t.Data[i]
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		dst.Data[i] = v
	}
}

// Library is a collection of weather years plus a favorability ranking
// (most favorable year first) used by the future scenarios.
type Library struct {
	W, H    int
	Years   map[int]*YearWeather
	Ranking []int
}

// YearList returns the library's years in ascending order.
func (l *Library) YearList() []int {
	years := make([]int, 0, len(l.Years))
	for y := range l.Years {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Validate checks that every year carries WeeksPerYear aligned layers.
func (l *Library) Validate() error {
	if len(l.Years) == 0 {
		return fmt.Errorf("weather library is empty")
	}
	for year, yw := range l.Years {
		if len(yw.Moisture) != WeeksPerYear || len(yw.Temperature) != WeeksPerYear {
			return fmt.Errorf("year %d has %d/%d weekly layers, want %d",
				year, len(yw.Moisture), len(yw.Temperature), WeeksPerYear)
		}
		for w := 0; w < WeeksPerYear; w++ {
			if yw.Moisture[w].W != l.W || yw.Moisture[w].H != l.H ||
				yw.Temperature[w].W != l.W || yw.Temperature[w].H != l.H {
				return fmt.Errorf("year %d week %d layer is misaligned with library %dx%d",
					year, w, l.W, l.H)
			}
		}
	}
	for _, y := range l.Ranking {
		if _, ok := l.Years[y]; !ok {
			return fmt.Errorf("ranking references unknown year %d", y)
		}
	}
	return nil
}
