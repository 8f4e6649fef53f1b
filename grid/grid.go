// Package grid provides dense 2D integer and real-valued grids for the
// spread engine. Grids are flat row-major slices; (x, y) indexes column and
// row with y*W+x addressing, matching raster layout.
package grid

import "fmt"

// Int is a dense 2D grid of integer counts.
type Int struct {
	W, H int
	Data []int
}

// NewInt creates a zeroed integer grid.
func NewInt(w, h int) *Int {
	return &Int{W: w, H: h, Data: make([]int, w*h)}
}

// Idx returns the flat index for (x, y).
func (g *Int) Idx(x, y int) int { return y*g.W + x }

// At returns the value at (x, y).
func (g *Int) At(x, y int) int { return g.Data[y*g.W+x] }

// Set stores v at (x, y).
func (g *Int) Set(x, y, v int) { g.Data[y*g.W+x] = v }

// Add increments the value at (x, y) by v.
func (g *Int) Add(x, y, v int) { g.Data[y*g.W+x] += v }

// InBounds reports whether (x, y) lies on the grid.
func (g *Int) InBounds(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

// Total sums all cells.
func (g *Int) Total() int {
	t := 0
	for _, v := range g.Data {
		t += v
	}
	return t
}

// Reset zeroes all cells, keeping the backing storage.
func (g *Int) Reset() {
	for i := range g.Data {
		g.Data[i] = 0
	}
}

// Clone returns a deep copy.
func (g *Int) Clone() *Int {
	c := NewInt(g.W, g.H)
	copy(c.Data, g.Data)
	return c
}

// AddGrid accumulates o into g cell-wise. Shapes must already match.
func (g *Int) AddGrid(o *Int) {
	for i, v := range o.Data {
		g.Data[i] += v
	}
}

// Float is a dense 2D grid of real values.
type Float struct {
	W, H int
	Data []float64
}

// NewFloat creates a zeroed real-valued grid.
func NewFloat(w, h int) *Float {
	return &Float{W: w, H: h, Data: make([]float64, w*h)}
}

// At returns the value at (x, y).
func (g *Float) At(x, y int) float64 { return g.Data[y*g.W+x] }

// Set stores v at (x, y).
func (g *Float) Set(x, y int, v float64) { g.Data[y*g.W+x] = v }

// Fill sets every cell to v.
func (g *Float) Fill(v float64) {
	for i := range g.Data {
		g.Data[i] = v
	}
}

// Clone returns a deep copy.
func (g *Float) Clone() *Float {
	c := NewFloat(g.W, g.H)
	copy(c.Data, g.Data)
	return c
}

// shaped is any grid with dimensions.
type shaped interface{ Shape() (int, int) }

// Shape returns (W, H).
func (g *Int) Shape() (int, int) { return g.W, g.H }

// Shape returns (W, H).
func (g *Float) Shape() (int, int) { return g.W, g.H }

// CheckShapes verifies that all grids share the same dimensions. Mismatched
// geometry is a fatal precondition; the engine never reconciles it.
func CheckShapes(grids ...shaped) error {
	if len(grids) == 0 {
		return nil
	}
	w0, h0 := grids[0].Shape()
	for i, g := range grids[1:] {
		w, h := g.Shape()
		if w != w0 || h != h0 {
			return fmt.Errorf("grid %d is %dx%d, want %dx%d", i+1, w, h, w0, h0)
		}
	}
	return nil
}
