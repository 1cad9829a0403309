package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"worldcell/internal/worldmodel"
)

func testWorld(tick int) *worldmodel.World {
	return &worldmodel.World{
		Name:         "testworld",
		TickCount:    tick,
		Season:       worldmodel.SeasonAutumn,
		SeasonLength: 100,
		Generation:   worldmodel.GenerationParams{TileCount: 2},
		Cells: []worldmodel.Tile{
			{ID: 0, Biome: worldmodel.Biome{Kind: worldmodel.BiomeGrassland}, Weather: worldmodel.Weather{Temperature: 285}},
			{ID: 1, Biome: worldmodel.Biome{Kind: worldmodel.BiomeDesert}, Weather: worldmodel.Weather{Temperature: 310}},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	world := testWorld(42)
	path, err := store.Save(world, 1000)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "world-tick42-1000.bin"), path)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, world.Name, loaded.Name)
	assert.Equal(t, world.TickCount, loaded.TickCount)
	assert.Equal(t, world.Season, loaded.Season)
	assert.Equal(t, world.Cells, loaded.Cells)
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	_, err = store.Save(testWorld(1), 500)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "world-tick1-500.bin", entries[0].Name())
}

func TestListSortsNewestFirstWithTickTiebreaker(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	_, err = store.Save(testWorld(5), 100)
	require.NoError(t, err)
	_, err = store.Save(testWorld(10), 200)
	require.NoError(t, err)
	_, err = store.Save(testWorld(7), 200) // same timestamp, higher tick wins tiebreak
	require.NoError(t, err)

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 10, entries[0].TickCount)
	assert.Equal(t, 7, entries[1].TickCount)
	assert.Equal(t, 5, entries[2].TickCount)
}

func TestListSkipsUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o644))
	_, err = store.Save(testWorld(1), 100)
	require.NoError(t, err)

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestPruneKeepsOnlyNewest(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	for i, ts := range []int64{100, 200, 300, 400} {
		_, err := store.Save(testWorld(i), ts)
		require.NoError(t, err)
	}

	deleted, err := store.Prune(2)
	require.NoError(t, err)
	assert.Len(t, deleted, 2)

	remaining, err := store.List()
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, int64(400), remaining[0].Timestamp)
	assert.Equal(t, int64(300), remaining[1].Timestamp)
}

func TestLoadLatestValidFallsBackPastCorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	_, err = store.Save(testWorld(1), 100)
	require.NoError(t, err)
	newestPath, err := store.Save(testWorld(2), 200)
	require.NoError(t, err)

	// Corrupt the newest snapshot in place.
	require.NoError(t, os.WriteFile(newestPath, []byte("not a valid gzip stream"), 0o644))

	world, err := store.LoadLatestValid()
	require.NoError(t, err)
	assert.Equal(t, 1, world.TickCount)
}

func TestLoadLatestValidErrorsWhenNoneValid(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	_, err = store.LoadLatestValid()
	assert.Error(t, err)
}

func TestLoadDetectsTileCountMismatch(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	world := testWorld(1)
	world.Generation.TileCount = 99 // deliberately inconsistent with len(Cells)
	path, err := store.Save(world, 100)
	require.NoError(t, err)

	_, err = Load(path)
	assert.Error(t, err)
}
