package weather

import (
	"math"
	"sort"

	"github.com/aquilax/go-perlin"

	"github.com/mwhitby/sodspread/grid"
)

// Synthetic weather generation for demo runs and tests: spatially correlated
// moisture from Perlin noise, temperature following a seasonal curve with
// mild spatial texture. The ranking orders years by mean suitability so the
// favorable/unfavorable scenarios have something meaningful to sample.

const (
	synthAlpha   = 2.0
	synthBeta    = 2.0
	synthOctaves = 3
)

// NewSyntheticLibrary generates a weather library for the given years.
func NewSyntheticLibrary(w, h int, years []int, seed int64) *Library {
	lib := &Library{
		W: w, H: h,
		Years: make(map[int]*YearWeather, len(years)),
	}

	type yearScore struct {
		year  int
		score float64
	}
	scores := make([]yearScore, 0, len(years))

	for yi, year := range years {
		p := perlin.NewPerlin(synthAlpha, synthBeta, synthOctaves, seed+int64(yi))
		yw := &YearWeather{Year: year}
		sum := 0.0

		for week := 0; week < WeeksPerYear; week++ {
			m := grid.NewFloat(w, h)
			t := grid.NewFloat(w, h)

			// Temperature favorability peaks in late spring.
			season := 0.5 + 0.5*math.Sin(2*math.Pi*(float64(week)/WeeksPerYear-0.25))

			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					nx := float64(x) / float64(w) * 3
					ny := float64(y) / float64(h) * 3
					z := float64(week) / WeeksPerYear

					moist := clamp01(p.Noise3D(nx, ny, z)/1.4 + 0.5)
					temp := clamp01(season * (0.75 + p.Noise3D(nx+11, ny+11, z)/2))

					m.Set(x, y, moist)
					t.Set(x, y, temp)
					sum += moist * temp
				}
			}

			yw.Moisture = append(yw.Moisture, m)
			yw.Temperature = append(yw.Temperature, t)
		}

		lib.Years[year] = yw
		scores = append(scores, yearScore{year, sum})
	}

	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	for _, s := range scores {
		lib.Ranking = append(lib.Ranking, s.year)
	}
	return lib
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
