// Package epidemic implements the weekly stochastic core of the spread
// engine: spore production, the dispersal kernel, and infection allocation.
package epidemic

import (
	"log/slog"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mwhitby/sodspread/grid"
)

// maxLambda saturates the per-cell Poisson mean under pathological
// rate/suitability inputs instead of letting the draw overflow.
const maxLambda = 1e9

// Producer draws weekly per-cell spore counts. The expected count for a cell
// is infected * Rate * suitability; the draw is Poisson, independent per
// cell. Cells with no infected hosts or zero suitability always yield zero.
type Producer struct {
	Rate float64 // spores per infected host per week

	warnOnce sync.Once
}

// Produce fills out with this week's spore counts and returns the total.
// Rows are processed in parallel; each row consumes its own RNG stream so a
// given seed reproduces the same grid regardless of worker count.
func (p *Producer) Produce(infected *grid.Int, suit *grid.Float, out *grid.Int, seed uint64) int {
	out.Reset()

	rows := make(chan int)
	totals := make([]int, runtime.GOMAXPROCS(0))

	var wg sync.WaitGroup
	for w := range totals {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for y := range rows {
				totals[worker] += p.produceRow(infected, suit, out, seed, y)
			}
		}(w)
	}
	for y := 0; y < infected.H; y++ {
		rows <- y
	}
	close(rows)
	wg.Wait()

	total := 0
	for _, t := range totals {
		total += t
	}
	return total
}

// produceRow draws one row of spore counts and returns the row total.
func (p *Producer) produceRow(infected *grid.Int, suit *grid.Float, out *grid.Int, seed uint64, y int) int {
	rng := rowRand(seed, streamSpores, y)
	total := 0
	for x := 0; x < infected.W; x++ {
		inf := infected.At(x, y)
		s := suit.At(x, y)
		if inf == 0 || s == 0 {
			continue
		}

		lambda := float64(inf) * p.Rate * s
		if lambda > maxLambda {
			p.warnOnce.Do(func() {
				slog.Warn("spore production mean saturated; check rate/suitability configuration",
					"lambda", lambda, "cap", maxLambda)
			})
			lambda = maxLambda
		}

		n := int(distuv.Poisson{Lambda: lambda, Src: rng}.Rand())
		out.Set(x, y, n)
		total += n
	}
	return total
}
