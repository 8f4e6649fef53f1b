package epidemic

import (
	"math"
	"testing"

	"github.com/mwhitby/sodspread/grid"
)

func TestProduceZeroSuitabilityYieldsNothing(t *testing.T) {
	infected := grid.NewInt(8, 8)
	for i := range infected.Data {
		infected.Data[i] = 10
	}
	suit := grid.NewFloat(8, 8) // all zero
	out := grid.NewInt(8, 8)

	p := &Producer{Rate: 4.4}
	total := p.Produce(infected, suit, out, 1)

	if total != 0 || out.Total() != 0 {
		t.Errorf("expected zero spores under zero suitability, got total=%d grid=%d", total, out.Total())
	}
}

func TestProduceZeroInfectedYieldsNothing(t *testing.T) {
	infected := grid.NewInt(8, 8)
	suit := grid.NewFloat(8, 8)
	suit.Fill(1)
	out := grid.NewInt(8, 8)

	p := &Producer{Rate: 4.4}
	if total := p.Produce(infected, suit, out, 1); total != 0 {
		t.Errorf("expected zero spores with no infected hosts, got %d", total)
	}
}

func TestProduceMeanTracksExpectation(t *testing.T) {
	// 100x100 cells, 3 infected each, suitability 0.5, rate 4.4:
	// expected 6.6 spores per cell. The grid-wide mean over 10k independent
	// Poisson draws should sit well within 2% of that.
	const w, h = 100, 100
	infected := grid.NewInt(w, h)
	for i := range infected.Data {
		infected.Data[i] = 3
	}
	suit := grid.NewFloat(w, h)
	suit.Fill(0.5)
	out := grid.NewInt(w, h)

	p := &Producer{Rate: 4.4}
	total := p.Produce(infected, suit, out, 7)

	mean := float64(total) / float64(w*h)
	want := 3 * 4.4 * 0.5
	if math.Abs(mean-want) > 0.15 {
		t.Errorf("per-cell mean = %.3f, want %.3f +- 0.15", mean, want)
	}
}

func TestProduceDeterministicForSeed(t *testing.T) {
	infected := grid.NewInt(16, 16)
	for i := range infected.Data {
		infected.Data[i] = 5
	}
	suit := grid.NewFloat(16, 16)
	suit.Fill(0.8)

	p := &Producer{Rate: 4.4}
	a := grid.NewInt(16, 16)
	b := grid.NewInt(16, 16)
	p.Produce(infected, suit, a, 99)
	p.Produce(infected, suit, b, 99)

	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatalf("same seed produced different grids at cell %d: %d vs %d", i, a.Data[i], b.Data[i])
		}
	}
}

func BenchmarkProduce(b *testing.B) {
	infected := grid.NewInt(256, 256)
	for i := range infected.Data {
		infected.Data[i] = 2
	}
	suit := grid.NewFloat(256, 256)
	suit.Fill(0.6)
	out := grid.NewInt(256, 256)
	p := &Producer{Rate: 4.4}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Produce(infected, suit, out, uint64(i))
	}
}
