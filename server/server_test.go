package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"seep/config"
	"seep/fluid"
	"seep/telemetry"
	"seep/world"
)

// newTestServer builds a small hand-made world with a stone floor, one
// stone pillar cell and one water cell, then snapshots it into a server.
func newTestServer(t *testing.T) (*Server, *world.World) {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	w := world.New(64, 48, 16, fluid.DefaultParams())
	for x := int32(0); x < w.Width(); x++ {
		w.SetBlock(x, 0, world.BlockStone)
	}
	w.SetBlock(3, 2, world.BlockStone)
	if !w.AddFluid(5, 2, 0.75) {
		t.Fatal("adding fluid to empty cell failed")
	}
	return New(cfg, w), w
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s: %v", url, err)
		}
	}
	return resp
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var body map[string]string
	resp := getJSON(t, ts.URL+"/healthz", &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Fatalf("healthz body = %v", body)
	}
}

func TestWorldManifest(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var info WorldInfo
	getJSON(t, ts.URL+"/api/world", &info)
	if info.Width != 64 || info.Height != 48 || info.ChunkSize != 16 {
		t.Fatalf("manifest dims = %+v", info)
	}
	if info.ChunksX != 4 || info.ChunksY != 3 {
		t.Fatalf("manifest chunk counts = %dx%d", info.ChunksX, info.ChunksY)
	}
	if info.Advanced {
		t.Fatal("basic world reported as advanced")
	}
	if info.MaxWeight != 1.0 {
		t.Fatalf("MaxWeight = %v", info.MaxWeight)
	}
}

func TestChunkEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var st ChunkState
	getJSON(t, ts.URL+"/api/chunks/0/0", &st)
	if st.W != 16 || st.H != 16 {
		t.Fatalf("chunk dims = %dx%d", st.W, st.H)
	}
	if len(st.Blocks) != 256 || len(st.Weights) != 256 {
		t.Fatalf("chunk array lengths = %d blocks, %d weights", len(st.Blocks), len(st.Weights))
	}
	if st.Densities != nil {
		t.Fatal("basic world chunk carries densities")
	}

	// x-major within the chunk: index = dx*H + dy
	pillar := st.Blocks[3*16+2]
	if pillar != byte(world.BlockStone) {
		t.Fatalf("pillar cell block = %d", pillar)
	}
	if got := st.Weights[3*16+2]; got != 0 {
		t.Fatalf("solid cell weight = %v, want 0", got)
	}
	if got := st.Weights[5*16+2]; got != 0.75 {
		t.Fatalf("water cell weight = %v, want 0.75", got)
	}
	if got := st.Blocks[7*16+0]; got != byte(world.BlockStone) {
		t.Fatalf("floor cell block = %d", got)
	}
}

func TestChunkEndpointErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	if resp := getJSON(t, ts.URL+"/api/chunks/zz/0", nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad coordinate status = %d", resp.StatusCode)
	}
	if resp := getJSON(t, ts.URL+"/api/chunks/99/0", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("out-of-range status = %d", resp.StatusCode)
	}
	if resp := getJSON(t, ts.URL+"/api/chunks/-1/0", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("negative coordinate status = %d", resp.StatusCode)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	if resp := getJSON(t, ts.URL+"/api/stats", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("stats before first flush status = %d", resp.StatusCode)
	}

	srv.PublishStats(telemetry.WindowStats{
		WindowEndTick: 100,
		SimTimeSec:    5,
		Ticks:         100,
		Settled:       true,
		TotalWeight:   12.5,
		UnstableCells: 3,
	})

	var st StatsInfo
	getJSON(t, ts.URL+"/api/stats", &st)
	if st.Tick != 100 || st.Ticks != 100 || !st.Settled {
		t.Fatalf("stats = %+v", st)
	}
	if st.TotalWeight != 12.5 || st.UnstableCells != 3 {
		t.Fatalf("stats gauges = %+v", st)
	}
}

func TestPublishChunksRefreshesCache(t *testing.T) {
	srv, w := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	coord := world.ChunkCoord{X: 1, Y: 1}
	var before ChunkState
	getJSON(t, ts.URL+"/api/chunks/1/1", &before)
	if before.Seq != 0 {
		t.Fatalf("initial snapshot seq = %d", before.Seq)
	}
	if got := before.Weights[0]; got != 0 {
		t.Fatalf("chunk (1,1) first cell weight = %v before pour", got)
	}

	// Cell (16, 16) is the chunk's origin cell.
	if !w.AddFluid(16, 16, 0.5) {
		t.Fatal("pour failed")
	}
	srv.PublishChunks([]world.ChunkCoord{coord})

	var after ChunkState
	getJSON(t, ts.URL+"/api/chunks/1/1", &after)
	if after.Seq != 1 {
		t.Fatalf("refreshed snapshot seq = %d", after.Seq)
	}
	if got := after.Weights[0]; got != 0.5 {
		t.Fatalf("chunk (1,1) first cell weight = %v after pour", got)
	}
}

func TestWebSocketStream(t *testing.T) {
	srv, w := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var hello wsFrame
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("reading hello: %v", err)
	}
	if hello.Type != frameHello {
		t.Fatalf("first frame type = %q", hello.Type)
	}
	if hello.World == nil || hello.World.Width != 64 {
		t.Fatalf("hello manifest = %+v", hello.World)
	}
	if hello.Stats != nil {
		t.Fatal("hello carried stats before any flush")
	}

	w.AddFluid(40, 10, 0.25)
	srv.PublishChunks([]world.ChunkCoord{{X: 2, Y: 0}})
	srv.PublishStats(telemetry.WindowStats{WindowEndTick: 40, Ticks: 40, TotalWeight: 1})
	srv.broadcast()

	var chunks wsFrame
	if err := conn.ReadJSON(&chunks); err != nil {
		t.Fatalf("reading chunk frame: %v", err)
	}
	if chunks.Type != frameChunks || len(chunks.Chunks) != 1 {
		t.Fatalf("chunk frame = %+v", chunks)
	}
	if chunks.Chunks[0].X != 2 || chunks.Chunks[0].Y != 0 {
		t.Fatalf("chunk frame coord = (%d,%d)", chunks.Chunks[0].X, chunks.Chunks[0].Y)
	}
	if chunks.Seq != 1 {
		t.Fatalf("chunk frame seq = %d", chunks.Seq)
	}

	var stats wsFrame
	if err := conn.ReadJSON(&stats); err != nil {
		t.Fatalf("reading stats frame: %v", err)
	}
	if stats.Type != frameStats || stats.Stats == nil || stats.Stats.Tick != 40 {
		t.Fatalf("stats frame = %+v", stats)
	}

	// Nothing pending: the next broadcast sends nothing.
	srv.broadcast()
	conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	var extra wsFrame
	if err := conn.ReadJSON(&extra); err == nil {
		t.Fatalf("unexpected frame after drained broadcast: %+v", extra)
	}
}

func TestCollectFramesCoalesces(t *testing.T) {
	srv, w := newTestServer(t)

	w.AddFluid(5, 5, 0.3)
	w.AddFluid(6, 5, 0.3)
	srv.PublishChunks([]world.ChunkCoord{{X: 0, Y: 0}})
	srv.PublishChunks([]world.ChunkCoord{{X: 0, Y: 0}, {X: 1, Y: 0}})

	frames := srv.collectFrames()
	if len(frames) != 1 {
		t.Fatalf("frame count = %d", len(frames))
	}
	f := frames[0]
	if f.Type != frameChunks || len(f.Chunks) != 2 {
		t.Fatalf("coalesced frame = %+v", f)
	}
	// Repeated publishes of one chunk collapse into its latest snapshot.
	if f.Chunks[0].X != 0 || f.Chunks[1].X != 1 {
		t.Fatalf("frame order = (%d,%d), (%d,%d)", f.Chunks[0].X, f.Chunks[0].Y, f.Chunks[1].X, f.Chunks[1].Y)
	}
	if f.Chunks[0].Seq != 2 {
		t.Fatalf("latest snapshot seq = %d", f.Chunks[0].Seq)
	}

	if extra := srv.collectFrames(); len(extra) != 0 {
		t.Fatalf("second collect returned %d frames", len(extra))
	}
}
