package epidemic

import (
	"math"
	"testing"

	"github.com/mwhitby/sodspread/grid"
)

// oneCell builds a 1x1 landscape with the given compartments.
func oneCell(t *testing.T, reservoir, oak, allLive int) *grid.Landscape {
	t.Helper()
	mk := func(v int) *grid.Int {
		g := grid.NewInt(1, 1)
		g.Set(0, 0, v)
		return g
	}
	ls, err := grid.NewLandscape(mk(reservoir), mk(oak), mk(allLive), mk(0), 100, 2.0)
	if err != nil {
		t.Fatal(err)
	}
	return ls
}

func TestAllocateProportionalSplit(t *testing.T) {
	// Susceptible (5, 15), 8 landed spores: expected new infections split
	// 2 and 6 by susceptible share. Average over many replicates.
	const trials = 3000
	landing := grid.NewInt(1, 1)
	landing.Set(0, 0, 8)

	var sumA, sumB float64
	for i := 0; i < trials; i++ {
		ls := oneCell(t, 5, 15, 20)
		newInf := Allocate(landing, ls, uint64(i))
		sumA += float64(newInf[grid.ReservoirSpecies])
		sumB += float64(newInf[grid.MortalitySpecies])
	}

	meanA, meanB := sumA/trials, sumB/trials
	if math.Abs(meanA-2) > 0.2 {
		t.Errorf("species A mean new infections = %.3f, want ~2", meanA)
	}
	if math.Abs(meanB-6) > 0.2 {
		t.Errorf("species B mean new infections = %.3f, want ~6", meanB)
	}
}

func TestAllocateImmunePoolWastesSpores(t *testing.T) {
	// With 20 immune hosts alongside (5, 15) susceptible, half the
	// occupancy pool is immune, so the expected split drops to 1 and 3.
	const trials = 3000
	landing := grid.NewInt(1, 1)
	landing.Set(0, 0, 8)

	var sumA, sumB float64
	for i := 0; i < trials; i++ {
		ls := oneCell(t, 5, 15, 40) // immune = 40 - 5 - 15 = 20
		newInf := Allocate(landing, ls, uint64(i))
		sumA += float64(newInf[grid.ReservoirSpecies])
		sumB += float64(newInf[grid.MortalitySpecies])
	}

	meanA, meanB := sumA/trials, sumB/trials
	if math.Abs(meanA-1) > 0.2 {
		t.Errorf("species A mean new infections = %.3f, want ~1", meanA)
	}
	if math.Abs(meanB-3) > 0.2 {
		t.Errorf("species B mean new infections = %.3f, want ~3", meanB)
	}
}

func TestAllocateCappedBySusceptible(t *testing.T) {
	ls := oneCell(t, 2, 3, 5)
	landing := grid.NewInt(1, 1)
	landing.Set(0, 0, 1000)

	Allocate(landing, ls, 1)

	for _, sp := range ls.Species {
		if sp.Susceptible.At(0, 0) != 0 {
			t.Errorf("%s: expected all susceptible hosts infected under spore excess, %d left",
				sp.Name, sp.Susceptible.At(0, 0))
		}
		if sp.Infected.At(0, 0) != sp.Abundance.At(0, 0) {
			t.Errorf("%s: infected %d exceeds or misses abundance %d",
				sp.Name, sp.Infected.At(0, 0), sp.Abundance.At(0, 0))
		}
	}
	if err := ls.CheckInvariants(); err != nil {
		t.Errorf("invariants violated after saturation: %v", err)
	}
}

func TestAllocateZeroSusceptibleAbsorbsNothing(t *testing.T) {
	ls := oneCell(t, 0, 0, 10) // immune only
	landing := grid.NewInt(1, 1)
	landing.Set(0, 0, 50)

	newInf := Allocate(landing, ls, 1)
	for s, n := range newInf {
		if n != 0 {
			t.Errorf("species %d gained %d infections in an empty cell", s, n)
		}
	}
}

func TestAllocatePreservesConservation(t *testing.T) {
	ls := oneCell(t, 10, 10, 30)
	landing := grid.NewInt(1, 1)

	for week := 0; week < 20; week++ {
		landing.Set(0, 0, 3)
		Allocate(landing, ls, uint64(week))
		if err := ls.CheckInvariants(); err != nil {
			t.Fatalf("week %d: %v", week, err)
		}
		for _, sp := range ls.Species {
			if sp.Susceptible.At(0, 0)+sp.Infected.At(0, 0) != sp.Abundance.At(0, 0) {
				t.Fatalf("week %d: %s compartments no longer sum to abundance", week, sp.Name)
			}
		}
	}
}
