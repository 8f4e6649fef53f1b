package grid

import (
	"fmt"
	"math"
)

// Species holds one host species' compartment grids. Abundance is fixed for
// the whole run; Susceptible and Infected are mutated in place once per week
// by the infection allocator, which is their only writer.
type Species struct {
	Name        string
	Abundance   *Int
	Susceptible *Int
	Infected    *Int
}

// TotalSusceptible sums the susceptible compartment.
func (s *Species) TotalSusceptible() int { return s.Susceptible.Total() }

// TotalInfected sums the infected compartment.
func (s *Species) TotalInfected() int { return s.Infected.Total() }

// Landscape is the full simulation state: an ordered host-species list plus
// the static immune pool for the mortality-susceptible species' habitat.
// The default policy is two species, reservoir first.
type Landscape struct {
	W, H     int
	CellSize float64 // cell edge length in distance units (square cells)
	Species  []*Species
	Immune   *Int // never mutated; occupies landing space without infecting
}

// Indices of the default two-species layout.
const (
	ReservoirSpecies = 0 // spore-amplifying host, mortality not tracked
	MortalitySpecies = 1 // host whose infection progression is the output
)

// NewLandscape builds the initial state from host-abundance rasters and the
// mortality species' initial infection raster. The reservoir species starts
// with reservoirMult times the initial infection count per cell, capped by
// its abundance. The immune pool is allLive - reservoir - mortality host,
// clamped to zero.
func NewLandscape(reservoir, mortalityHost, allLive, initialInfection *Int, cellSize, reservoirMult float64) (*Landscape, error) {
	if err := CheckShapes(reservoir, mortalityHost, allLive, initialInfection); err != nil {
		return nil, fmt.Errorf("landscape rasters misaligned: %w", err)
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %g", cellSize)
	}
	if reservoirMult < 0 {
		return nil, fmt.Errorf("reservoir infection multiplier must be non-negative, got %g", reservoirMult)
	}

	w, h := reservoir.W, reservoir.H
	ls := &Landscape{
		W: w, H: h,
		CellSize: cellSize,
		Immune:   NewInt(w, h),
	}

	res := &Species{
		Name:        "reservoir",
		Abundance:   reservoir.Clone(),
		Susceptible: NewInt(w, h),
		Infected:    NewInt(w, h),
	}
	mort := &Species{
		Name:        "oak",
		Abundance:   mortalityHost.Clone(),
		Susceptible: NewInt(w, h),
		Infected:    NewInt(w, h),
	}

	for i := range reservoir.Data {
		if reservoir.Data[i] < 0 || mortalityHost.Data[i] < 0 || allLive.Data[i] < 0 {
			return nil, fmt.Errorf("negative host abundance at cell %d", i)
		}
		if initialInfection.Data[i] < 0 {
			return nil, fmt.Errorf("negative initial infection at cell %d", i)
		}

		mortInf := min(initialInfection.Data[i], mort.Abundance.Data[i])
		mort.Infected.Data[i] = mortInf
		mort.Susceptible.Data[i] = mort.Abundance.Data[i] - mortInf

		resInf := min(int(math.Round(reservoirMult*float64(initialInfection.Data[i]))), res.Abundance.Data[i])
		res.Infected.Data[i] = resInf
		res.Susceptible.Data[i] = res.Abundance.Data[i] - resInf

		immune := allLive.Data[i] - reservoir.Data[i] - mortalityHost.Data[i]
		if immune < 0 {
			immune = 0
		}
		ls.Immune.Data[i] = immune
	}

	ls.Species = []*Species{res, mort}
	return ls, nil
}

// CheckInvariants verifies per-cell conservation for every species:
// 0 <= infected, 0 <= susceptible, susceptible + infected <= abundance.
func (l *Landscape) CheckInvariants() error {
	for _, sp := range l.Species {
		for i := range sp.Abundance.Data {
			s, inf, a := sp.Susceptible.Data[i], sp.Infected.Data[i], sp.Abundance.Data[i]
			if s < 0 || inf < 0 {
				return fmt.Errorf("%s: negative compartment at cell %d (sus=%d inf=%d)", sp.Name, i, s, inf)
			}
			if s+inf > a {
				return fmt.Errorf("%s: compartments exceed abundance at cell %d (%d+%d > %d)", sp.Name, i, s, inf, a)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the mutable state. Static grids are copied
// too, so clones are fully independent.
func (l *Landscape) Clone() *Landscape {
	c := &Landscape{
		W: l.W, H: l.H,
		CellSize: l.CellSize,
		Immune:   l.Immune.Clone(),
	}
	for _, sp := range l.Species {
		c.Species = append(c.Species, &Species{
			Name:        sp.Name,
			Abundance:   sp.Abundance.Clone(),
			Susceptible: sp.Susceptible.Clone(),
			Infected:    sp.Infected.Clone(),
		})
	}
	return c
}
