package diffbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"worldcell/internal/worldmodel"
)

func TestBuildDetectsOnlyChangedLayers(t *testing.T) {
	before := []worldmodel.Tile{
		{ID: 0, Weather: worldmodel.Weather{Temperature: 280}, Conditions: worldmodel.Conditions{SoilMoisture: 0.1}},
		{ID: 1, Weather: worldmodel.Weather{Temperature: 300}},
	}
	after := []worldmodel.Tile{
		{ID: 0, Weather: worldmodel.Weather{Temperature: 281}, Conditions: worldmodel.Conditions{SoilMoisture: 0.1}},
		{ID: 1, Weather: worldmodel.Weather{Temperature: 300}},
	}

	changes := Build(before, after)
	require.Len(t, changes, 1)
	assert.Equal(t, 0, changes[0].ID)
	require.NotNil(t, changes[0].Weather)
	assert.Equal(t, 281.0, changes[0].Weather.Temperature)
	assert.Nil(t, changes[0].Conditions)
}

func TestBuildNoChangesWhenIdentical(t *testing.T) {
	tiles := []worldmodel.Tile{{ID: 0, Weather: worldmodel.Weather{Temperature: 280}}}
	changes := Build(tiles, tiles)
	assert.Empty(t, changes)
}
