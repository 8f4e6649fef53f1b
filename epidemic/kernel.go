package epidemic

import (
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mwhitby/sodspread/grid"
)

// Octant is one of the 8 compass directions a prevailing wind can blow from.
type Octant int

const (
	North Octant = iota
	Northeast
	East
	Southeast
	South
	Southwest
	West
	Northwest
)

var octantNames = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// ParseOctant recognizes the 8 compass abbreviations, case-insensitive.
func ParseOctant(s string) (Octant, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range octantNames {
		if u == name {
			return Octant(i), nil
		}
	}
	return 0, fmt.Errorf("unknown wind direction %q (want one of N NE E SE S SW W NW)", s)
}

func (o Octant) String() string {
	if o < 0 || int(o) >= len(octantNames) {
		return fmt.Sprintf("Octant(%d)", int(o))
	}
	return octantNames[o]
}

// Radians returns the octant's compass bearing in radians clockwise from
// north.
func (o Octant) Radians() float64 {
	return float64(o) * math.Pi / 4
}

// Kernel scatters produced spores to destination cells. Each spore samples a
// half-Cauchy distance (heavy tails carry the rare long jumps) and a
// direction: uniform when Wind is off, von Mises around the prevailing wind
// bearing when on. Spores leaving the grid are lost.
type Kernel struct {
	Scale    float64 // Cauchy scale in distance units
	CellSize float64 // cell edge length in the same units
	Wind     bool
	WindDir  Octant
	Kappa    float64 // von Mises concentration; 0 degenerates to uniform

	// Per-worker partial landing grids, reused across weeks.
	partials []*grid.Int
}

// Disperse scatters every spore in spores into out and returns how many
// landed in bounds. Source rows are processed in parallel; each worker
// accumulates into its own partial grid and the partials are merged after
// all dispersal writes finish, so every surviving spore is counted exactly
// once. A fixed seed reproduces the same landing grid for any worker count.
func (k *Kernel) Disperse(spores *grid.Int, out *grid.Int, seed uint64) int {
	out.Reset()

	nWorkers := runtime.GOMAXPROCS(0)
	if len(k.partials) < nWorkers || k.partials[0].W != spores.W || k.partials[0].H != spores.H {
		k.partials = make([]*grid.Int, nWorkers)
		for i := range k.partials {
			k.partials[i] = grid.NewInt(spores.W, spores.H)
		}
	}

	rows := make(chan int)
	landedBy := make([]int, nWorkers)

	var wg sync.WaitGroup
	for w := 0; w < nWorkers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			part := k.partials[worker]
			part.Reset()
			for y := range rows {
				landedBy[worker] += k.disperseRow(spores, part, seed, y)
			}
		}(w)
	}
	for y := 0; y < spores.H; y++ {
		rows <- y
	}
	close(rows)
	wg.Wait()

	// Merge barrier: allocation must only ever see the fully merged grid.
	landed := 0
	for w := 0; w < nWorkers; w++ {
		out.AddGrid(k.partials[w])
		landed += landedBy[w]
	}
	return landed
}

// disperseRow scatters all spores originating in row y and returns how many
// stayed on the grid.
func (k *Kernel) disperseRow(spores *grid.Int, out *grid.Int, seed uint64, y int) int {
	rng := rowRand(seed, streamKernel, y)
	dist := distuv.StudentsT{Mu: 0, Sigma: k.Scale, Nu: 1, Src: rng}
	mu := k.WindDir.Radians()

	landed := 0
	for x := 0; x < spores.W; x++ {
		n := spores.At(x, y)
		for i := 0; i < n; i++ {
			d := math.Abs(dist.Rand())

			var theta float64
			if k.Wind && k.Kappa > 0 {
				theta = sampleVonMises(mu, k.Kappa, rng)
			} else {
				theta = rng.Float64() * 2 * math.Pi
			}

			// Compass bearing to grid offset: north is -y, east is +x.
			dx := int(math.Round(d * math.Sin(theta) / k.CellSize))
			dy := int(math.Round(-d * math.Cos(theta) / k.CellSize))

			tx, ty := x+dx, y+dy
			if !out.InBounds(tx, ty) {
				continue
			}
			out.Add(tx, ty, 1)
			landed++
		}
	}
	return landed
}
