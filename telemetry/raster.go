package telemetry

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/mwhitby/sodspread/grid"
)

// writeASCIIGrid writes an integer grid in ESRI ASCII raster format. The
// grid's row 0 is the raster's top row, matching the layout the compartment
// grids were loaded in.
func writeASCIIGrid(path string, g *grid.Int, cellSize float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating raster %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "ncols %d\n", g.W)
	fmt.Fprintf(w, "nrows %d\n", g.H)
	fmt.Fprintf(w, "xllcorner 0\n")
	fmt.Fprintf(w, "yllcorner 0\n")
	fmt.Fprintf(w, "cellsize %g\n", cellSize)
	fmt.Fprintf(w, "NODATA_value -9999\n")

	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if x > 0 {
				w.WriteByte(' ')
			}
			w.WriteString(strconv.Itoa(g.At(x, y)))
		}
		w.WriteByte('\n')
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing raster %s: %w", path, err)
	}
	return nil
}
