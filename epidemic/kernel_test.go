package epidemic

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/mwhitby/sodspread/grid"
)

func TestParseOctant(t *testing.T) {
	cases := map[string]Octant{
		"N": North, "ne": Northeast, " E ": East, "se": Southeast,
		"S": South, "sw": Southwest, "w": West, "NW": Northwest,
	}
	for in, want := range cases {
		got, err := ParseOctant(in)
		if err != nil {
			t.Errorf("ParseOctant(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseOctant(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseOctant("NNE"); err == nil {
		t.Error("expected error for unknown direction")
	}
}

func TestDisperseMassAccounting(t *testing.T) {
	// Every spore either lands on the grid or falls off the edge; the
	// landing grid total must equal the reported landed count.
	spores := grid.NewInt(32, 32)
	for i := range spores.Data {
		spores.Data[i] = 4
	}
	out := grid.NewInt(32, 32)

	k := &Kernel{Scale: 20.57, CellSize: 10}
	landed := k.Disperse(spores, out, 5)

	if landed != out.Total() {
		t.Errorf("landed=%d but landing grid holds %d", landed, out.Total())
	}
	if landed > spores.Total() {
		t.Errorf("landed %d spores out of %d produced", landed, spores.Total())
	}
	if landed == 0 {
		t.Error("expected some spores to land on a 32x32 grid")
	}
}

func TestDisperseDeterministicForSeed(t *testing.T) {
	spores := grid.NewInt(16, 16)
	spores.Set(8, 8, 500)

	k := &Kernel{Scale: 20.57, CellSize: 10}
	a := grid.NewInt(16, 16)
	b := grid.NewInt(16, 16)
	la := k.Disperse(spores, a, 11)
	lb := k.Disperse(spores, b, 11)

	if la != lb {
		t.Fatalf("same seed landed %d vs %d spores", la, lb)
	}
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatalf("same seed produced different landings at cell %d", i)
		}
	}
}

// resultant computes the normalized mean displacement vector of all landed
// spores relative to the source, ignoring same-cell landings.
func resultant(out *grid.Int, sx, sy int) (float64, float64) {
	var vx, vy float64
	var n int
	for y := 0; y < out.H; y++ {
		for x := 0; x < out.W; x++ {
			c := out.At(x, y)
			if c == 0 || (x == sx && y == sy) {
				continue
			}
			dx, dy := float64(x-sx), float64(y-sy)
			norm := math.Hypot(dx, dy)
			vx += float64(c) * dx / norm
			vy += float64(c) * dy / norm
			n += c
		}
	}
	if n == 0 {
		return 0, 0
	}
	return vx / float64(n), vy / float64(n)
}

func TestDisperseWindBias(t *testing.T) {
	const n = 20000
	spores := grid.NewInt(101, 101)
	spores.Set(50, 50, n)

	iso := &Kernel{Scale: 20.57, CellSize: 10}
	outIso := grid.NewInt(101, 101)
	iso.Disperse(spores, outIso, 3)

	wind := &Kernel{Scale: 20.57, CellSize: 10, Wind: true, WindDir: Northeast, Kappa: 2}
	outWind := grid.NewInt(101, 101)
	wind.Disperse(spores, outWind, 3)

	ix, iy := resultant(outIso, 50, 50)
	wx, wy := resultant(outWind, 50, 50)

	if r := math.Hypot(ix, iy); r > 0.1 {
		t.Errorf("isotropic landings show directional bias, resultant=%.3f", r)
	}
	if r := math.Hypot(wx, wy); r < 0.25 {
		t.Errorf("wind landings barely biased, resultant=%.3f", r)
	}
	// Northeast in grid coordinates is +x, -y.
	if wx <= 0 || wy >= 0 {
		t.Errorf("wind resultant points (%.3f, %.3f), want toward NE (+x, -y)", wx, wy)
	}
}

func TestVonMisesConcentration(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	const mu = math.Pi / 2
	const n = 10000

	var sx, sy float64
	for i := 0; i < n; i++ {
		th := sampleVonMises(mu, 4, rng)
		sx += math.Cos(th)
		sy += math.Sin(th)
	}
	r := math.Hypot(sx, sy) / n
	mean := math.Atan2(sy, sx)

	// kappa=4 has mean resultant length ~0.86.
	if r < 0.7 {
		t.Errorf("resultant length %.3f, want concentrated (> 0.7)", r)
	}
	if d := math.Abs(mean - mu); d > 0.1 {
		t.Errorf("circular mean %.3f, want %.3f +- 0.1", mean, mu)
	}
}

func TestVonMisesZeroKappaIsUniform(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	const n = 10000

	var sx, sy float64
	for i := 0; i < n; i++ {
		th := sampleVonMises(0, 0, rng)
		sx += math.Cos(th)
		sy += math.Sin(th)
	}
	if r := math.Hypot(sx, sy) / n; r > 0.05 {
		t.Errorf("kappa=0 resultant length %.3f, want near 0", r)
	}
}

func BenchmarkDisperse(b *testing.B) {
	spores := grid.NewInt(256, 256)
	for i := range spores.Data {
		spores.Data[i] = 2
	}
	out := grid.NewInt(256, 256)
	k := &Kernel{Scale: 20.57, CellSize: 100, Wind: true, WindDir: Northeast, Kappa: 2}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k.Disperse(spores, out, uint64(i))
	}
}
