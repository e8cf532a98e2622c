// Package server exposes a running world over HTTP: a small REST API for
// world metadata, chunk state and the latest telemetry window, plus a
// websocket stream of dirty-chunk updates for live viewers.
//
// The server never reads the world directly from a request handler. The
// game loop pushes state in through PublishChunks and PublishStats between
// simulation ticks, and handlers serve the cached copies, so the simulator
// is never raced.
package server

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"seep/config"
	"seep/telemetry"
	"seep/world"
)

// WorldInfo is the immutable world manifest served at /api/world.
type WorldInfo struct {
	Width          int32   `json:"width"`
	Height         int32   `json:"height"`
	ChunkSize      int32   `json:"chunk_size"`
	ChunksX        int32   `json:"chunks_x"`
	ChunksY        int32   `json:"chunks_y"`
	Advanced       bool    `json:"advanced"`
	MaxWeight      float32 `json:"max_weight"`
	UpdateInterval float64 `json:"update_interval"`
}

// ChunkState is one chunk's terrain and fluid state. Cell arrays are
// x-major within the chunk (index = dx*H + dy, y up), sized W*H; edge
// chunks clipped by the world bounds carry the clipped dimensions. Blocks
// and Densities are byte arrays and therefore base64 strings on the wire.
// Weights of solid cells are reported as zero.
type ChunkState struct {
	X         int32     `json:"x"`
	Y         int32     `json:"y"`
	W         int32     `json:"w"`
	H         int32     `json:"h"`
	Seq       uint64    `json:"seq"`
	Blocks    []byte    `json:"blocks"`
	Weights   []float32 `json:"weights"`
	Densities []byte    `json:"densities,omitempty"`
	Colors    []byte    `json:"colors,omitempty"` // RGBA quads, advanced worlds only
}

// StatsInfo is the telemetry window summary served at /api/stats and
// pushed on the websocket after each flush.
type StatsInfo struct {
	Tick          int     `json:"tick"`
	SimTime       float64 `json:"sim_time"`
	Ticks         int     `json:"ticks"`
	Settled       bool    `json:"settled"`
	TotalWeight   float64 `json:"total_weight"`
	UnstableCells int     `json:"unstable_cells"`
	ChangedMean   float64 `json:"changed_mean"`
	WeightAdded   float64 `json:"weight_added"`
	WeightRemoved float64 `json:"weight_removed"`
	LedgerDrift   float64 `json:"ledger_drift"`
}

// Server caches world state for HTTP clients and streams updates to
// websocket viewers.
type Server struct {
	cfg *config.Config

	// w is only touched from the game loop, inside New and the Publish
	// callbacks. Handlers serve the caches below instead.
	w *world.World

	mu      sync.RWMutex
	info    WorldInfo
	chunks  map[world.ChunkCoord]*ChunkState
	stats   *StatsInfo
	pending map[world.ChunkCoord]struct{}
	fresh   bool // stats changed since the last broadcast
	seq     uint64

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	httpSrv   *http.Server
	handler   http.Handler
	done      chan struct{}
	closeOnce sync.Once
}

// New builds a server for the given world and snapshots every chunk so
// clients joining before the first tick see the generated terrain. Call
// it before the game loop starts.
func New(cfg *config.Config, w *world.World) *Server {
	cs := w.ChunkSize()
	s := &Server{
		cfg: cfg,
		w:   w,
		info: WorldInfo{
			Width:          w.Width(),
			Height:         w.Height(),
			ChunkSize:      cs,
			ChunksX:        (w.Width() + cs - 1) / cs,
			ChunksY:        (w.Height() + cs - 1) / cs,
			Advanced:       w.Advanced(),
			MaxWeight:      w.Grid().Params().MaxWeight,
			UpdateInterval: w.Grid().Params().UpdateInterval,
		},
		chunks:  make(map[world.ChunkCoord]*ChunkState),
		pending: make(map[world.ChunkCoord]struct{}),
		clients: make(map[*websocket.Conn]*sync.Mutex),
		done:    make(chan struct{}),
	}
	for cx := int32(0); cx < s.info.ChunksX; cx++ {
		for cy := int32(0); cy < s.info.ChunksY; cy++ {
			c := world.ChunkCoord{X: cx, Y: cy}
			s.chunks[c] = s.snapshotChunk(c)
		}
	}
	s.handler = s.routes()
	s.httpSrv = &http.Server{Addr: cfg.Server.Addr, Handler: s.handler}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe starts the broadcast loop and serves until Close.
func (s *Server) ListenAndServe() error {
	go s.broadcastLoop()
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close stops the broadcast loop, disconnects viewers and shuts the
// listener down.
func (s *Server) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	s.closeClients()
	return s.httpSrv.Close()
}

// PublishChunks re-snapshots the given chunks and queues them for the
// next websocket broadcast. Call it from the game loop only, between
// ticks, so the snapshot reads a quiescent world.
func (s *Server) PublishChunks(coords []world.ChunkCoord) {
	if len(coords) == 0 {
		return
	}
	states := make([]*ChunkState, 0, len(coords))
	for _, c := range coords {
		if st := s.snapshotChunk(c); st != nil {
			states = append(states, st)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	for _, st := range states {
		st.Seq = s.seq
		s.chunks[world.ChunkCoord{X: st.X, Y: st.Y}] = st
		s.pending[world.ChunkCoord{X: st.X, Y: st.Y}] = struct{}{}
	}
}

// PublishStats caches a flushed telemetry window for /api/stats and
// queues it for the next broadcast. Call it from the game loop only.
func (s *Server) PublishStats(ws telemetry.WindowStats) {
	info := &StatsInfo{
		Tick:          ws.WindowEndTick,
		SimTime:       ws.SimTimeSec,
		Ticks:         ws.Ticks,
		Settled:       ws.Settled,
		TotalWeight:   ws.TotalWeight,
		UnstableCells: ws.UnstableCells,
		ChangedMean:   ws.ChangedMean,
		WeightAdded:   ws.WeightAdded,
		WeightRemoved: ws.WeightRemoved,
		LedgerDrift:   ws.LedgerDrift,
	}
	s.mu.Lock()
	s.stats = info
	s.fresh = true
	s.mu.Unlock()
}

// snapshotChunk copies one chunk's cells into a wire-ready state. Cache
// entries are replaced wholesale, never mutated, so frames already queued
// keep pointing at consistent data.
func (s *Server) snapshotChunk(c world.ChunkCoord) *ChunkState {
	r := s.w.ChunkRegion(c)
	if r.Empty() {
		return nil
	}
	cw := r.MaxX - r.MinX
	ch := r.MaxY - r.MinY
	n := int(cw) * int(ch)
	st := &ChunkState{
		X:       c.X,
		Y:       c.Y,
		W:       cw,
		H:       ch,
		Blocks:  make([]byte, 0, n),
		Weights: make([]float32, 0, n),
	}
	adv := s.w.Advanced()
	if adv {
		st.Densities = make([]byte, 0, n)
		st.Colors = make([]byte, 0, 4*n)
	}
	for x := r.MinX; x < r.MaxX; x++ {
		for y := r.MinY; y < r.MaxY; y++ {
			st.Blocks = append(st.Blocks, byte(s.w.Block(x, y)))
			cell, _ := s.w.FluidBlock(x, y)
			wt := cell.Weight()
			if wt < 0 {
				wt = 0
			}
			st.Weights = append(st.Weights, wt)
			if adv {
				st.Densities = append(st.Densities, cell.Density())
				col := cell.Color()
				st.Colors = append(st.Colors, col.R, col.G, col.B, col.A)
			}
		}
	}
	return st
}

// chunkAt returns the cached state for a chunk coordinate.
func (s *Server) chunkAt(c world.ChunkCoord) (*ChunkState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.chunks[c]
	return st, ok && st != nil
}

// latestStats returns the most recent flushed window, nil before the
// first flush.
func (s *Server) latestStats() *StatsInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}
