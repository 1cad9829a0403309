// Package broadcast serves the live world over HTTP and WebSocket: a
// one-shot WorldSnapshot on connect, a TickDiff after every tick, a
// /health endpoint, and an embedded viewer page for any other GET.
package broadcast

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"worldcell/internal/logging"
	"worldcell/internal/worldmodel"
)

//go:embed viewer.html
var viewerHTML []byte

// maxHealthWindow bounds the rolling tick-duration window used to compute
// tick_rate in the health response.
const maxHealthWindow = 100

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Server holds the reader/writer-locked network-facing state: the latest
// cached WorldSnapshot payload, and the rolling health window. The tick
// loop is the sole writer (via PublishTick); HTTP/WS handlers only read.
type Server struct {
	hub *Hub

	mu                 sync.RWMutex
	latestSnapshotJSON []byte
	tick               int
	season             worldmodel.Season
	tileCount          int
	diversityIndex     float64
	lastRuleErrorCount int
	lastSnapshotTick   int
	recentDurationsMs  []float64
}

// NewServer builds a Server bound to hub. Call Seed once with the
// freshly generated world before serving, so the first connecting client
// has something to receive.
func NewServer(hub *Hub) *Server {
	return &Server{hub: hub}
}

// Seed caches the initial WorldSnapshot before the server starts
// accepting connections.
func (s *Server) Seed(world *worldmodel.World) {
	s.cacheSnapshot(world)
}

// PublishTick is called once per tick by the orchestrator: it updates the
// cached snapshot and health fields, then broadcasts a TickDiff to every
// connected client.
func (s *Server) PublishTick(world *worldmodel.World, diff TickDiff, tickDuration time.Duration, ruleErrorCount int) {
	s.cacheSnapshot(world)

	s.mu.Lock()
	s.lastRuleErrorCount = ruleErrorCount
	s.recentDurationsMs = append(s.recentDurationsMs, float64(tickDuration.Milliseconds()))
	if len(s.recentDurationsMs) > maxHealthWindow {
		s.recentDurationsMs = s.recentDurationsMs[len(s.recentDurationsMs)-maxHealthWindow:]
	}
	s.mu.Unlock()

	payload, err := json.Marshal(diff)
	if err != nil {
		log.Error().Err(err).Msg("broadcast: failed to marshal TickDiff")
		return
	}
	s.hub.Broadcast(payload)
}

// RecordSnapshotSaved notes the tick at which a durable snapshot was last
// written, for the health endpoint's snapshot_age_ticks field.
func (s *Server) RecordSnapshotSaved(tick int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSnapshotTick = tick
}

func (s *Server) cacheSnapshot(world *worldmodel.World) {
	snap := NewWorldSnapshot(world)
	payload, err := json.Marshal(snap)
	if err != nil {
		log.Error().Err(err).Msg("broadcast: failed to marshal WorldSnapshot")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latestSnapshotJSON = payload
	s.tick = world.TickCount
	s.season = world.Season
	s.tileCount = len(world.Cells)
}

func (s *Server) health() HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var avgMs float64
	if n := len(s.recentDurationsMs); n > 0 {
		var sum float64
		for _, d := range s.recentDurationsMs {
			sum += d
		}
		avgMs = sum / float64(n)
	}
	tickRate := 0.0
	if avgMs > 0 {
		tickRate = 1000 / avgMs
	}

	return HealthStatus{
		Tick:             s.tick,
		TickRate:         tickRate,
		DiversityIndex:   s.diversityIndex,
		RuleErrors:       s.lastRuleErrorCount,
		SnapshotAgeTicks: s.tick - s.lastSnapshotTick,
		TileCount:        s.tileCount,
		Season:           s.season,
	}
}

// SetDiversityIndex updates the cached diversity index reported by
// /health; it is derived from statistics.Compute, not tracked separately.
func (s *Server) SetDiversityIndex(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diversityIndex = v
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.health())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("broadcast: websocket upgrade failed")
		return
	}

	client := newClient(s.hub, conn)
	s.hub.register <- client

	s.mu.RLock()
	initial := s.latestSnapshotJSON
	s.mu.RUnlock()
	if initial != nil {
		client.enqueue(initial)
	}

	go client.writePump()
	go client.readPump()
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(viewerHTML)
}

// Router builds the chi router serving /health, /ws, /metrics, and the
// embedded viewer on every other GET.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)
	r.NotFound(s.handleViewer)
	r.Get("/", s.handleViewer)

	return r
}
