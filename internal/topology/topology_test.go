package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertBidirectionalConnected(t *testing.T, neighbors [][]int) {
	t.Helper()
	n := len(neighbors)
	for i, nb := range neighbors {
		seen := make(map[int]bool)
		for _, j := range nb {
			require.NotEqual(t, i, j, "cell %d is its own neighbor", i)
			require.False(t, seen[j], "cell %d lists neighbor %d twice", i, j)
			seen[j] = true
			require.Contains(t, neighbors[j], i, "neighbor %d of %d does not reciprocate", j, i)
		}
	}

	// Reachability from cell 0 via BFS.
	visited := make([]bool, n)
	queue := []int{0}
	visited[0] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, j := range neighbors[cur] {
			if !visited[j] {
				visited[j] = true
				queue = append(queue, j)
			}
		}
	}
	for i, v := range visited {
		require.True(t, v, "cell %d unreachable from cell 0", i)
	}
}

func TestTorusEveryCellHasSixNeighbors(t *testing.T) {
	torus := Torus{Width: 6, Height: 4}
	positions, neighbors, err := torus.Build()
	require.NoError(t, err)
	require.Len(t, positions, 24)

	for i, nb := range neighbors {
		assert.Len(t, nb, 6, "cell %d", i)
	}
	assertBidirectionalConnected(t, neighbors)
}

func TestTorusRejectsOddHeight(t *testing.T) {
	_, _, err := Torus{Width: 6, Height: 5}.Build()
	assert.Error(t, err)
}

func TestGeodesicCellCountAndPentagons(t *testing.T) {
	for level := 1; level <= 3; level++ {
		g := Geodesic{Level: level}
		positions, neighbors, err := g.Build()
		require.NoError(t, err)

		expected := 10*intPow(4, level) + 2
		assert.Equal(t, expected, len(positions))
		assert.Equal(t, expected, g.CellCount())

		pentagons := 0
		for _, nb := range neighbors {
			switch len(nb) {
			case 5:
				pentagons++
			case 6:
				// hexagon, expected
			default:
				t.Fatalf("cell has %d neighbors, want 5 or 6", len(nb))
			}
		}
		assert.Equal(t, 12, pentagons, "level %d", level)

		assertBidirectionalConnected(t, neighbors)

		for _, nb := range neighbors {
			for i := 1; i < len(nb); i++ {
				assert.Less(t, nb[i-1], nb[i], "neighbors must be sorted ascending")
			}
		}
	}
}

func TestGeodesicPositionsOnUnitSphere(t *testing.T) {
	positions, _, err := Geodesic{Level: 1}.Build()
	require.NoError(t, err)
	for _, p := range positions {
		mag := p.X*p.X + p.Y*p.Y + p.Z*p.Z
		assert.InDelta(t, 1.0, mag, 1e-6)
		assert.GreaterOrEqual(t, p.Lat, -90.0)
		assert.LessOrEqual(t, p.Lat, 90.0)
		assert.GreaterOrEqual(t, p.Lon, -180.0)
		assert.LessOrEqual(t, p.Lon, 180.0)
	}
}

func TestGeodesicRejectsOutOfRangeLevel(t *testing.T) {
	_, _, err := Geodesic{Level: 0}.Build()
	assert.Error(t, err)
	_, _, err = Geodesic{Level: 8}.Build()
	assert.Error(t, err)
}
