package epidemic

import "math/rand/v2"

// Pipeline stage identifiers for deriving independent RNG streams.
const (
	streamSpores = 1
	streamKernel = 2
	streamAlloc  = 3
)

// rowRand returns the RNG stream for one grid row of one pipeline stage.
// A stream depends only on (seed, stage, row), never on which worker draws
// from it, so results are identical for any degree of parallelism.
func rowRand(seed uint64, stage, row int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(stage)<<32|uint64(row)))
}
