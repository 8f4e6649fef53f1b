package epidemic

import (
	"math"
	"math/rand/v2"
)

// sampleVonMises draws an angle in radians from a von Mises distribution
// centered on mu with concentration kappa, using the Best-Fisher (1979)
// wrapped-Cauchy rejection method. gonum's distuv has no circular
// distributions, so this is sampled directly.
func sampleVonMises(mu, kappa float64, rng *rand.Rand) float64 {
	if kappa <= 0 {
		return mu + (rng.Float64()*2-1)*math.Pi
	}

	a := 1 + math.Sqrt(1+4*kappa*kappa)
	b := (a - math.Sqrt(2*a)) / (2 * kappa)
	r := (1 + b*b) / (2 * b)

	for {
		u1 := rng.Float64()
		z := math.Cos(math.Pi * u1)
		f := (1 + r*z) / (r + z)
		c := kappa * (r - f)

		u2 := rng.Float64()
		if c*(2-c)-u2 > 0 || math.Log(c/u2)+1-c >= 0 {
			theta := math.Acos(f)
			if rng.Float64() < 0.5 {
				theta = -theta
			}
			return mu + theta
		}
	}
}
