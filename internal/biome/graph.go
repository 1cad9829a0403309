// Package biome defines the undirected biome-adjacency whitelist enforced
// by the Terrain phase: a proposed biome transition is only accepted if it
// targets a kind adjacent to the cell's pre-phase biome (or is a self-target
// no-op). Ocean never transitions out.
package biome

import (
	"sort"

	"worldcell/internal/worldmodel"
)

var adjacency = buildAdjacency(map[worldmodel.BiomeKind][]worldmodel.BiomeKind{
	worldmodel.BiomeOcean:           {},
	worldmodel.BiomeIce:             {worldmodel.BiomeTundra},
	worldmodel.BiomeTundra:          {worldmodel.BiomeIce, worldmodel.BiomeBorealForest},
	worldmodel.BiomeBorealForest:    {worldmodel.BiomeTundra, worldmodel.BiomeTemperateForest},
	worldmodel.BiomeTemperateForest: {worldmodel.BiomeBorealForest, worldmodel.BiomeGrassland, worldmodel.BiomeTropicalForest},
	worldmodel.BiomeGrassland:       {worldmodel.BiomeTemperateForest, worldmodel.BiomeSavanna, worldmodel.BiomeWetland},
	worldmodel.BiomeSavanna:         {worldmodel.BiomeGrassland, worldmodel.BiomeDesert, worldmodel.BiomeTropicalForest},
	worldmodel.BiomeDesert:          {worldmodel.BiomeSavanna, worldmodel.BiomeBarren},
	worldmodel.BiomeTropicalForest:  {worldmodel.BiomeTemperateForest, worldmodel.BiomeSavanna},
	worldmodel.BiomeWetland:         {worldmodel.BiomeGrassland},
	worldmodel.BiomeBarren:          {worldmodel.BiomeDesert},
})

// buildAdjacency symmetrizes a one-sided declaration table so the
// invariant (adjacency is symmetric) holds by construction.
func buildAdjacency(table map[worldmodel.BiomeKind][]worldmodel.BiomeKind) map[worldmodel.BiomeKind]map[worldmodel.BiomeKind]struct{} {
	result := make(map[worldmodel.BiomeKind]map[worldmodel.BiomeKind]struct{})
	ensure := func(k worldmodel.BiomeKind) {
		if result[k] == nil {
			result[k] = make(map[worldmodel.BiomeKind]struct{})
		}
	}
	for from, tos := range table {
		ensure(from)
		for _, to := range tos {
			ensure(to)
			result[from][to] = struct{}{}
			result[to][from] = struct{}{}
		}
	}
	return result
}

// IsTransitionAllowed reports whether `to` is a legal Terrain-phase
// transition target from `from`: either a no-op self-target, or a kind
// adjacent to `from` in the whitelist. Ocean never transitions out.
func IsTransitionAllowed(from, to worldmodel.BiomeKind) bool {
	if from == to {
		return true
	}
	if from == worldmodel.BiomeOcean {
		return false
	}
	_, ok := adjacency[from][to]
	return ok
}

// Neighbors returns the set of biome kinds reachable in one Terrain-phase
// transition from `from`, sorted by name, for tooling and tests.
func Neighbors(from worldmodel.BiomeKind) []worldmodel.BiomeKind {
	result := make([]worldmodel.BiomeKind, 0, len(adjacency[from]))
	for k := range adjacency[from] {
		result = append(result, k)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
