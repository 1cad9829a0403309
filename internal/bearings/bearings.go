// Package bearings precomputes, for each cell and each neighbor slot, the
// bearing from that neighbor toward the cell. The native weather
// evaluator's humidity-advection rule uses these to weight neighbor
// contributions by how well the neighbor's wind aligns with carrying
// moisture toward the current cell. Only meaningful on a geodesic
// topology; torus advection degenerates to an isotropic neighbor mean.
package bearings

import (
	"worldcell/internal/sphere"
	"worldcell/internal/worldmodel"
)

// Table holds, for cell i, one bearing per entry of Cells[i].Neighbors.
type Table [][]float64

// Build computes the bearing-from-neighbor-to-cell table for a geodesic
// topology's positions and neighbor lists. Pass nil/ignore the result on
// torus worlds.
func Build(positions []worldmodel.Position, neighbors [][]int) Table {
	table := make(Table, len(positions))
	for i, nbs := range neighbors {
		row := make([]float64, len(nbs))
		for slot, nb := range nbs {
			fromLat, fromLon := positions[nb].Lat, positions[nb].Lon
			toLat, toLon := positions[i].Lat, positions[i].Lon
			east, north := sphere.DirectionOnSphere(fromLat, fromLon, toLat, toLon)
			row[slot] = sphere.TangentToBearing(east, north)
		}
		table[i] = row
	}
	return table
}

// BearingTo returns the precomputed bearing from the neighbor at slot
// `slot` of cell `cellID` toward cellID, and whether the table has data
// for that cell (false on torus or out-of-range lookups).
func (t Table) BearingTo(cellID, slot int) (float64, bool) {
	if cellID < 0 || cellID >= len(t) {
		return 0, false
	}
	row := t[cellID]
	if slot < 0 || slot >= len(row) {
		return 0, false
	}
	return row[slot], true
}
