package epidemic

import (
	"github.com/mwhitby/sodspread/grid"
)

// Allocate converts this week's landed spores into new infections, mutating
// the landscape's susceptible/infected compartments in place. It is the only
// writer of compartment state.
//
// Per cell, each landed spore draws a host from the occupancy pool: every
// species' susceptible hosts plus the static immune pool, weighted by count.
// Spores drawn onto the immune pool are wasted. Per species the number of
// new infections is capped by the susceptible count, so compartments never
// exceed abundance. A cell with no susceptible hosts absorbs nothing.
//
// Returns per-species totals of new infections, in species order.
func Allocate(landing *grid.Int, ls *grid.Landscape, seed uint64) []int {
	nSpecies := len(ls.Species)
	newInf := make([]int, nSpecies)
	alloc := make([]int, nSpecies)

	for y := 0; y < landing.H; y++ {
		rng := rowRand(seed, streamAlloc, y)
		for x := 0; x < landing.W; x++ {
			n := landing.At(x, y)
			if n == 0 {
				continue
			}

			i := landing.Idx(x, y)
			totalSus := 0
			for s, sp := range ls.Species {
				alloc[s] = 0
				totalSus += sp.Susceptible.Data[i]
			}
			if totalSus == 0 {
				continue
			}
			pool := float64(totalSus + ls.Immune.Data[i])

			// Partition spores by pre-update susceptible shares; draws
			// beyond the species cumsum land on immune hosts and are lost.
			for spore := 0; spore < n; spore++ {
				u := rng.Float64() * pool
				cum := 0.0
				for s, sp := range ls.Species {
					cum += float64(sp.Susceptible.Data[i])
					if u < cum {
						alloc[s]++
						break
					}
				}
			}

			for s, sp := range ls.Species {
				take := min(alloc[s], sp.Susceptible.Data[i])
				sp.Susceptible.Data[i] -= take
				sp.Infected.Data[i] += take
				newInf[s] += take
			}
		}
	}
	return newInf
}
