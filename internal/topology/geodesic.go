package topology

import (
	"fmt"
	"math"
	"sort"

	"worldcell/internal/worldmodel"
)

// Geodesic builds a subdivided-icosahedron topology: subdivision level L
// produces exactly 10*4^L + 2 cells, of which exactly 12 are five-neighbor
// pentagons (the original icosahedron vertices) and the rest are
// six-neighbor hexagons (vertices introduced by subdivision).
type Geodesic struct {
	Level int // 1..7
}

type vec3 struct{ x, y, z float64 }

func (v vec3) normalize() vec3 {
	n := math.Sqrt(v.x*v.x + v.y*v.y + v.z*v.z)
	if n < 1e-12 {
		return v
	}
	return vec3{v.x / n, v.y / n, v.z / n}
}

func (v vec3) add(o vec3) vec3 { return vec3{v.x + o.x, v.y + o.y, v.z + o.z} }
func (v vec3) scale(s float64) vec3 { return vec3{v.x * s, v.y * s, v.z * s} }

// Build constructs unit-sphere positions and sorted-ascending neighbor lists.
func (g Geodesic) Build() ([]worldmodel.Position, [][]int, error) {
	if g.Level < 1 || g.Level > 7 {
		return nil, nil, fmt.Errorf("topology: geodesic subdivision level must be 1..7, got %d", g.Level)
	}

	vertices, faces := baseIcosahedron()
	for l := 0; l < g.Level; l++ {
		vertices, faces = subdivide(vertices, faces)
	}

	n := len(vertices)
	adjacency := make([]map[int]struct{}, n)
	for i := range adjacency {
		adjacency[i] = make(map[int]struct{})
	}
	addEdge := func(a, b int) {
		adjacency[a][b] = struct{}{}
		adjacency[b][a] = struct{}{}
	}
	for _, f := range faces {
		addEdge(f[0], f[1])
		addEdge(f[1], f[2])
		addEdge(f[2], f[0])
	}

	positions := make([]worldmodel.Position, n)
	neighbors := make([][]int, n)
	for i, v := range vertices {
		lat, lon := latLonFromUnit(v)
		positions[i] = worldmodel.Position{X: v.x, Y: v.y, Z: v.z, Lat: lat, Lon: lon}

		nb := make([]int, 0, len(adjacency[i]))
		for id := range adjacency[i] {
			nb = append(nb, id)
		}
		sort.Ints(nb)
		neighbors[i] = nb
	}

	return positions, neighbors, nil
}

// CellCount returns 10*4^L + 2 without building the mesh.
func (g Geodesic) CellCount() int {
	return 10*intPow(4, g.Level) + 2
}

func intPow(base, exp int) int {
	r := 1
	for i := 0; i < exp; i++ {
		r *= base
	}
	return r
}

func latLonFromUnit(v vec3) (lat, lon float64) {
	lat = math.Asin(clampF(v.y, -1, 1)) * 180 / math.Pi
	lon = math.Atan2(v.z, v.x) * 180 / math.Pi
	return lat, lon
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// baseIcosahedron returns the 12 vertices and 20 triangular faces of a
// regular icosahedron, vertices normalized onto the unit sphere.
func baseIcosahedron() ([]vec3, [][3]int) {
	phi := (1.0 + math.Sqrt(5.0)) / 2.0

	raw := []vec3{
		{-1, phi, 0}, {1, phi, 0}, {-1, -phi, 0}, {1, -phi, 0},
		{0, -1, phi}, {0, 1, phi}, {0, -1, -phi}, {0, 1, -phi},
		{phi, 0, -1}, {phi, 0, 1}, {-phi, 0, -1}, {-phi, 0, 1},
	}
	vertices := make([]vec3, len(raw))
	for i, v := range raw {
		vertices[i] = v.normalize()
	}

	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	return vertices, faces
}

// subdivide splits each triangular face into 4 by adding normalized edge
// midpoints, deduplicating shared edges via a cache so adjacent faces reuse
// the same new vertex.
func subdivide(vertices []vec3, faces [][3]int) ([]vec3, [][3]int) {
	midpointCache := make(map[[2]int]int)

	midpoint := func(a, b int) int {
		key := [2]int{a, b}
		if a > b {
			key = [2]int{b, a}
		}
		if id, ok := midpointCache[key]; ok {
			return id
		}
		mid := vertices[a].add(vertices[b]).scale(0.5).normalize()
		id := len(vertices)
		vertices = append(vertices, mid)
		midpointCache[key] = id
		return id
	}

	newFaces := make([][3]int, 0, len(faces)*4)
	for _, f := range faces {
		a, b, c := f[0], f[1], f[2]
		ab := midpoint(a, b)
		bc := midpoint(b, c)
		ca := midpoint(c, a)
		newFaces = append(newFaces,
			[3]int{a, ab, ca},
			[3]int{b, bc, ab},
			[3]int{c, ca, bc},
			[3]int{ab, bc, ca},
		)
	}
	return vertices, newFaces
}
