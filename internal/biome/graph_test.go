package biome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"worldcell/internal/worldmodel"
)

func TestAdjacencyIsSymmetric(t *testing.T) {
	for from, tos := range adjacency {
		for to := range tos {
			assert.True(t, IsTransitionAllowed(to, from), "%s -> %s allowed but not reverse", from, to)
		}
	}
}

func TestOceanNeverTransitionsOut(t *testing.T) {
	assert.True(t, IsTransitionAllowed(worldmodel.BiomeOcean, worldmodel.BiomeOcean))
	assert.False(t, IsTransitionAllowed(worldmodel.BiomeOcean, worldmodel.BiomeIce))
}

func TestSelfTargetAlwaysAllowed(t *testing.T) {
	assert.True(t, IsTransitionAllowed(worldmodel.BiomeDesert, worldmodel.BiomeDesert))
}

func TestNonAdjacentRejected(t *testing.T) {
	assert.False(t, IsTransitionAllowed(worldmodel.BiomeDesert, worldmodel.BiomeIce))
	assert.False(t, IsTransitionAllowed(worldmodel.BiomeTundra, worldmodel.BiomeTropicalForest))
}

func TestAdjacentAccepted(t *testing.T) {
	assert.True(t, IsTransitionAllowed(worldmodel.BiomeGrassland, worldmodel.BiomeSavanna))
	assert.True(t, IsTransitionAllowed(worldmodel.BiomeSavanna, worldmodel.BiomeGrassland))
}
