package broadcast

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"worldcell/internal/diffbuilder"
	"worldcell/internal/statistics"
	"worldcell/internal/worldmodel"
)

func testWorld() *worldmodel.World {
	return &worldmodel.World{
		Name:         "atlas",
		TickCount:    7,
		Season:       worldmodel.SeasonWinter,
		SeasonLength: 100,
		Cells: []worldmodel.Tile{
			{ID: 0, Biome: worldmodel.Biome{Kind: worldmodel.BiomeTundra}},
			{ID: 1, Biome: worldmodel.Biome{Kind: worldmodel.BiomeIce}},
		},
	}
}

func TestNewWorldSnapshotFields(t *testing.T) {
	w := testWorld()
	snap := NewWorldSnapshot(w)
	assert.Equal(t, "WorldSnapshot", snap.MessageType)
	assert.Equal(t, w.Name, snap.Name)
	assert.Equal(t, w.TickCount, snap.Tick)
	assert.Equal(t, 2, snap.TileCount)
	assert.Len(t, snap.Tiles, 2)
}

func TestNewTickDiffFields(t *testing.T) {
	changes := []diffbuilder.TileChange{{ID: 0}}
	diff := NewTickDiff(8, worldmodel.SeasonWinter, changes, statistics.Snapshot{DiversityIndex: 0.5}, nil)
	assert.Equal(t, "TickDiff", diff.MessageType)
	assert.Equal(t, 8, diff.Tick)
	assert.Equal(t, changes, diff.ChangedTiles)
	assert.Equal(t, 0.5, diff.Statistics.DiversityIndex)
}

func startTestServer(t *testing.T) (*Server, *Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	server := NewServer(hub)
	server.Seed(testWorld())

	ts := httptest.NewServer(server.Router([]string{"*"}))
	t.Cleanup(ts.Close)
	return server, hub, ts
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + "/ws"
}

func TestHealthEndpointReportsCurrentState(t *testing.T) {
	server, _, ts := startTestServer(t)
	server.SetDiversityIndex(0.75)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status HealthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, 7, status.Tick)
	assert.Equal(t, 0.75, status.DiversityIndex)
	assert.Equal(t, 2, status.TileCount)
}

func TestUnknownGETServesEmbeddedViewer(t *testing.T) {
	_, _, ts := startTestServer(t)

	resp, err := http.Get(ts.URL + "/whatever")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestWebSocketClientReceivesInitialSnapshotThenDiff(t *testing.T) {
	server, _, ts := startTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts.URL), nil)
	require.NoError(t, err)
	defer conn.Close()

	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var snap WorldSnapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, "WorldSnapshot", snap.MessageType)

	diff := NewTickDiff(8, worldmodel.SeasonWinter, []diffbuilder.TileChange{{ID: 0}}, statistics.Snapshot{}, nil)
	server.PublishTick(testWorld(), diff, 10*time.Millisecond, 0)

	_, raw, err = conn.ReadMessage()
	require.NoError(t, err)
	var gotDiff TickDiff
	require.NoError(t, json.Unmarshal(raw, &gotDiff))
	assert.Equal(t, 8, gotDiff.Tick)
}

func TestClientCountTracksConnectAndDisconnect(t *testing.T) {
	_, hub, ts := startTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts.URL), nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestLaggingClientDropsRatherThanBlocks(t *testing.T) {
	server, _, ts := startTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts.URL), nil)
	require.NoError(t, err)
	defer conn.Close()

	// Drain the initial snapshot, then stop reading so the send buffer fills.
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for i := 0; i < clientSendBuffer*4; i++ {
			diff := NewTickDiff(i, worldmodel.SeasonWinter, nil, statistics.Snapshot{}, nil)
			server.PublishTick(testWorld(), diff, time.Millisecond, 0)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("PublishTick blocked on a lagging client instead of dropping")
	}
}
