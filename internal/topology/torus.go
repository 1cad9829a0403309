package topology

import (
	"fmt"
	"math"

	"worldcell/internal/worldmodel"
)

// Torus builds a toroidal hex grid in odd-r offset layout: width columns by
// height rows, row-major indexing, each row wrapping horizontally and the
// grid wrapping vertically (height must be even for a consistent wrap, since
// neighbor offsets differ by row parity).
type Torus struct {
	Width  int
	Height int
}

// odd-r offset neighbor deltas: (dCol, dRow) depend on whether the row is even or odd.
var torusEvenRowDeltas = [6][2]int{{-1, 0}, {1, 0}, {-1, -1}, {0, -1}, {-1, 1}, {0, 1}}
var torusOddRowDeltas = [6][2]int{{-1, 0}, {1, 0}, {0, -1}, {1, -1}, {0, 1}, {1, 1}}

// Build constructs the cell positions and neighbor lists for the torus.
func (t Torus) Build() ([]worldmodel.Position, [][]int, error) {
	if t.Width < 3 || t.Height < 4 {
		return nil, nil, fmt.Errorf("topology: torus dimensions too small (%dx%d)", t.Width, t.Height)
	}
	if t.Height%2 != 0 {
		return nil, nil, fmt.Errorf("topology: torus height must be even, got %d", t.Height)
	}

	n := t.Width * t.Height
	positions := make([]worldmodel.Position, n)
	neighbors := make([][]int, n)

	const hexWidth = 1.0
	const hexHeight = 0.8660254037844387 // sqrt(3)/2

	for row := 0; row < t.Height; row++ {
		for col := 0; col < t.Width; col++ {
			id := t.index(col, row)
			x := float64(col) * hexWidth
			if row%2 == 1 {
				x += hexWidth / 2
			}
			y := float64(row) * hexHeight

			// Synthetic lat/lon so the spatial grid and macro-weather pipeline,
			// both written against lat/lon, work uniformly on torus worlds too.
			lat := -90 + (float64(row)+0.5)/float64(t.Height)*180
			lon := -180 + (float64(col)+0.5)/float64(t.Width)*360
			positions[id] = worldmodel.Position{X: x, Y: y, Lat: lat, Lon: lon}

			deltas := torusEvenRowDeltas
			if row%2 == 1 {
				deltas = torusOddRowDeltas
			}
			nb := make([]int, 0, 6)
			for _, d := range deltas {
				nc := wrap(col+d[0], t.Width)
				nr := wrap(row+d[1], t.Height)
				nb = append(nb, t.index(nc, nr))
			}
			neighbors[id] = nb
		}
	}

	return positions, neighbors, nil
}

func (t Torus) index(col, row int) int {
	return row*t.Width + col
}

func wrap(v, m int) int {
	v %= m
	if v < 0 {
		v += m
	}
	return v
}

// CellCount returns the number of cells a torus of these dimensions produces.
func (t Torus) CellCount() int {
	return t.Width * t.Height
}

// DimensionsForCount picks width/height for an approximately square torus
// with at least `count` cells and an even height.
func DimensionsForCount(count int) (width, height int) {
	height = int(math.Round(math.Sqrt(float64(count))))
	if height%2 != 0 {
		height++
	}
	if height < 2 {
		height = 2
	}
	width = (count + height - 1) / height
	if width < 3 {
		width = 3
	}
	return width, height
}
