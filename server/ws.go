package server

import (
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Websocket frame types.
const (
	frameHello  = "hello"
	frameChunks = "chunks"
	frameStats  = "stats"
)

// wsFrame is one message on the viewer stream. Type selects which of the
// optional payloads is present.
type wsFrame struct {
	Type   string        `json:"type"`
	Seq    uint64        `json:"seq,omitempty"`
	World  *WorldInfo    `json:"world,omitempty"`
	Stats  *StatsInfo    `json:"stats,omitempty"`
	Chunks []*ChunkState `json:"chunks,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // viewers connect from local pages and tools
	},
}

// handleWS handles GET /ws - upgrades and streams world updates until the
// viewer disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	mu := &sync.Mutex{}
	s.clientsMu.Lock()
	s.clients[conn] = mu
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
	}()

	if err := s.send(conn, mu, s.helloFrame()); err != nil {
		return
	}

	// The stream is one-way; the read loop only notices disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// helloFrame greets a new viewer with the manifest and, when one has
// flushed, the latest stats window.
func (s *Server) helloFrame() wsFrame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return wsFrame{Type: frameHello, Seq: s.seq, World: &s.info, Stats: s.stats}
}

// broadcastLoop coalesces published updates and pushes them to viewers at
// the configured stream interval.
func (s *Server) broadcastLoop() {
	interval := time.Duration(s.cfg.Server.StreamInterval * float64(time.Second))
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.broadcast()
		}
	}
}

// collectFrames drains the pending chunk set and stats flag into frames.
// Draining happens even with no viewers connected; late joiners recover
// through the REST cache, not the stream.
func (s *Server) collectFrames() []wsFrame {
	s.mu.Lock()
	defer s.mu.Unlock()

	var frames []wsFrame
	if len(s.pending) > 0 {
		chunks := make([]*ChunkState, 0, len(s.pending))
		for c := range s.pending {
			if st := s.chunks[c]; st != nil {
				chunks = append(chunks, st)
			}
		}
		clear(s.pending)
		slices.SortFunc(chunks, func(a, b *ChunkState) int {
			if a.X != b.X {
				return int(a.X) - int(b.X)
			}
			return int(a.Y) - int(b.Y)
		})
		frames = append(frames, wsFrame{Type: frameChunks, Seq: s.seq, Chunks: chunks})
	}
	if s.fresh && s.stats != nil {
		s.fresh = false
		frames = append(frames, wsFrame{Type: frameStats, Stats: s.stats})
	}
	return frames
}

// broadcast sends any collected frames to every viewer, pruning viewers
// whose writes fail.
func (s *Server) broadcast() {
	frames := s.collectFrames()
	if len(frames) == 0 {
		return
	}

	s.clientsMu.RLock()
	var dead []*websocket.Conn
	for conn, mu := range s.clients {
		for _, f := range frames {
			if err := s.send(conn, mu, f); err != nil {
				slog.Debug("viewer dropped", "error", err)
				conn.Close()
				dead = append(dead, conn)
				break
			}
		}
	}
	s.clientsMu.RUnlock()

	if len(dead) > 0 {
		s.clientsMu.Lock()
		for _, conn := range dead {
			delete(s.clients, conn)
		}
		s.clientsMu.Unlock()
	}
}

// send writes one frame under the connection's write lock. Broadcasts and
// the hello frame share connections, gorilla allows one writer at a time.
func (s *Server) send(conn *websocket.Conn, mu *sync.Mutex, frame wsFrame) error {
	mu.Lock()
	defer mu.Unlock()
	return conn.WriteJSON(frame)
}

// closeClients disconnects every viewer during shutdown.
func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn := range s.clients {
		conn.Close()
	}
	clear(s.clients)
}
