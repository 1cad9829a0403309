package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"worldcell/internal/worldmodel"
)

func cellsWithBiomes(kinds ...worldmodel.BiomeKind) []worldmodel.Tile {
	cells := make([]worldmodel.Tile, len(kinds))
	for i, k := range kinds {
		cells[i] = worldmodel.Tile{Biome: worldmodel.Biome{Kind: k}}
	}
	return cells
}

func TestShannonDiversityMonocultureIsZero(t *testing.T) {
	cells := cellsWithBiomes(worldmodel.BiomeGrassland, worldmodel.BiomeGrassland, worldmodel.BiomeGrassland)
	snap := Compute(cells)
	assert.Equal(t, 0.0, snap.DiversityIndex)
}

func TestShannonDiversityEquallyPopulatedIsOne(t *testing.T) {
	for k := 2; k <= 5; k++ {
		var kinds []worldmodel.BiomeKind
		biomes := []worldmodel.BiomeKind{
			worldmodel.BiomeGrassland, worldmodel.BiomeDesert, worldmodel.BiomeTundra,
			worldmodel.BiomeSavanna, worldmodel.BiomeWetland,
		}
		for i := 0; i < k; i++ {
			kinds = append(kinds, biomes[i], biomes[i]) // two of each, equally populated
		}
		snap := Compute(cellsWithBiomes(kinds...))
		assert.InDelta(t, 1.0, snap.DiversityIndex, 1e-9, "k=%d", k)
	}
}

func TestComputeAverages(t *testing.T) {
	cells := []worldmodel.Tile{
		{Weather: worldmodel.Weather{Temperature: 280, Humidity: 0.2}},
		{Weather: worldmodel.Weather{Temperature: 300, Humidity: 0.6}},
	}
	snap := Compute(cells)
	assert.Equal(t, 290.0, snap.AverageTemperature)
	assert.Equal(t, 0.4, snap.AverageHumidity)
}
