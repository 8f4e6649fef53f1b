package grid

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// Synthetic landscape generation for demo runs and tests. Host abundances
// come from thresholded Perlin noise so stands form spatially coherent
// patches rather than salt-and-pepper scatter.

const (
	synthAlpha   = 2.0
	synthBeta    = 2.0
	synthOctaves = 3
)

// NewSyntheticLandscape generates a w x h landscape with patchy reservoir and
// oak stands, a background of other live trees, and an infection focus of
// the given count at the center cell.
func NewSyntheticLandscape(w, h int, cellSize float64, maxDensity, focusCount int, seed int64) (*Landscape, error) {
	p := perlin.NewPerlin(synthAlpha, synthBeta, synthOctaves, seed)

	reservoir := NewInt(w, h)
	oak := NewInt(w, h)
	allLive := NewInt(w, h)
	infection := NewInt(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			nx := float64(x) / float64(w) * 4
			ny := float64(y) / float64(h) * 4

			// Offset noise planes so the two species cluster independently.
			r := noise01(p.Noise3D(nx, ny, 0.0))
			o := noise01(p.Noise3D(nx, ny, 7.3))

			rc := int(math.Round(r * float64(maxDensity)))
			oc := int(math.Round(o * float64(maxDensity)))
			reservoir.Set(x, y, rc)
			oak.Set(x, y, oc)
			// Other live trees fill roughly half the remaining canopy.
			allLive.Set(x, y, rc+oc+maxDensity/2)
		}
	}

	// The focus cell must hold enough oaks to seed the infection.
	cx, cy := w/2, h/2
	if oak.At(cx, cy) < focusCount {
		extra := focusCount - oak.At(cx, cy)
		oak.Set(cx, cy, focusCount)
		allLive.Add(cx, cy, extra)
	}
	infection.Set(cx, cy, focusCount)
	return NewLandscape(reservoir, oak, allLive, infection, cellSize, 2.0)
}

// noise01 maps Perlin output (~[-0.7, 0.7]) into [0, 1].
func noise01(v float64) float64 {
	v = v/1.4 + 0.5
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
