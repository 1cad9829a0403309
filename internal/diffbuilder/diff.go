// Package diffbuilder computes the per-tick broadcast diff: which cells
// changed, and for each, only the layers whose values differ from the
// pre-tick snapshot.
package diffbuilder

import "worldcell/internal/worldmodel"

// TileChange carries the layers of one tile that differ from the
// pre-tick snapshot. Nil fields mean that layer is unchanged.
type TileChange struct {
	ID         int
	Weather    *worldmodel.Weather
	Conditions *worldmodel.Conditions
	Biome      *worldmodel.Biome
	Resources  *worldmodel.Resources
}

// Build compares pre-tick and post-tick cell slices and returns one
// TileChange per cell whose mutable layers differ.
func Build(before, after []worldmodel.Tile) []TileChange {
	var changes []TileChange
	for i := range after {
		var change TileChange
		changed := false

		if before[i].Weather != after[i].Weather {
			w := after[i].Weather
			change.Weather = &w
			changed = true
		}
		if before[i].Conditions != after[i].Conditions {
			c := after[i].Conditions
			change.Conditions = &c
			changed = true
		}
		if before[i].Biome != after[i].Biome {
			b := after[i].Biome
			change.Biome = &b
			changed = true
		}
		if !resourcesEqual(before[i].Resources, after[i].Resources) {
			r := after[i].Resources
			change.Resources = &r
			changed = true
		}

		if changed {
			change.ID = after[i].ID
			changes = append(changes, change)
		}
	}
	return changes
}

func resourcesEqual(a, b worldmodel.Resources) bool {
	if len(a.Deposits) != len(b.Deposits) {
		return false
	}
	for i := range a.Deposits {
		if !depositsEqual(a.Deposits[i], b.Deposits[i]) {
			return false
		}
	}
	return true
}

func depositsEqual(a, b worldmodel.Deposit) bool {
	if a.Type != b.Type || a.Quantity != b.Quantity || a.MaxQuantity != b.MaxQuantity || a.RenewalRate != b.RenewalRate {
		return false
	}
	if len(a.AllowedBiomes) != len(b.AllowedBiomes) {
		return false
	}
	for i := range a.AllowedBiomes {
		if a.AllowedBiomes[i] != b.AllowedBiomes[i] {
			return false
		}
	}
	return true
}
