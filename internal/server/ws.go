package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/ayusman/landmarkstage/internal/landmark"
	"github.com/ayusman/landmarkstage/internal/perception"
	"github.com/ayusman/landmarkstage/internal/tracker"
)

// Ingest limits per connection. Frames beyond the rate are dropped; the
// store only keeps the newest frame anyway.
const (
	MaxIngestFPS   = 60
	IngestBurst    = 10
	writeTimeout   = time.Second
	broadcastEvery = 66 * time.Millisecond // ~15 FPS
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// LandmarksHandler broadcasts the stage-mapped landmark snapshot via
// WebSocket.
type LandmarksHandler struct {
	tracker *tracker.Tracker
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
	stop    chan struct{}
	once    sync.Once
	log     zerolog.Logger
}

// NewLandmarksHandler creates a new LandmarksHandler and starts
// broadcasting. Call Close to stop it.
func NewLandmarksHandler(t *tracker.Tracker) *LandmarksHandler {
	h := &LandmarksHandler{
		tracker: t,
		clients: make(map[*websocket.Conn]bool),
		stop:    make(chan struct{}),
		log:     log.With().Str("module", "ws").Str("socket", "landmarks").Logger(),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LandmarksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *LandmarksHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops broadcasting.
func (h *LandmarksHandler) Close() {
	h.once.Do(func() { close(h.stop) })
}

// broadcast sends the snapshot to all connected clients whenever the frame
// or the mirror flag changed.
func (h *LandmarksHandler) broadcast() {
	ticker := time.NewTicker(broadcastEvery)
	defer ticker.Stop()

	var lastSeq uint64
	var lastMirror bool
	sentOnce := make(map[*websocket.Conn]bool)

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}

		h.mu.RLock()
		if len(h.clients) == 0 {
			h.mu.RUnlock()
			continue
		}
		h.mu.RUnlock()

		snap := h.tracker.Snapshot()
		changed := snap.Seq != lastSeq || snap.Mirror != lastMirror
		lastSeq, lastMirror = snap.Seq, snap.Mirror

		msg, err := sonic.Marshal(snap)
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to encode snapshot")
			continue
		}

		h.mu.RLock()
		for conn := range h.clients {
			if !changed && sentOnce[conn] {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				conn.Close()
				continue
			}
			sentOnce[conn] = true
		}
		for conn := range sentOnce {
			if !h.clients[conn] {
				delete(sentOnce, conn)
			}
		}
		h.mu.RUnlock()
	}
}

// FramesHandler accepts frames pushed by an external tracking pipeline. Each
// text or binary message is one wire-format frame.
type FramesHandler struct {
	sink      perception.Sink
	malformed rate.Sometimes
	log       zerolog.Logger
}

// NewFramesHandler creates a new FramesHandler ingesting into sink.
func NewFramesHandler(sink perception.Sink) *FramesHandler {
	return &FramesHandler{
		sink:      sink,
		malformed: rate.Sometimes{First: 1, Interval: 5 * time.Second},
		log:       log.With().Str("module", "ws").Str("socket", "frames").Logger(),
	}
}

// ServeHTTP handles WebSocket upgrade requests and ingests frames until the
// client disconnects.
func (h *FramesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	h.log.Info().Str("remote", r.RemoteAddr).Msg("Frame producer connected")
	limiter := rate.NewLimiter(rate.Limit(MaxIngestFPS), IngestBurst)

	var ingested, dropped int
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if !limiter.Allow() {
			dropped++
			continue
		}

		f, err := landmark.DecodeFrame(data)
		if err != nil {
			h.malformed.Do(func() {
				h.log.Warn().Err(err).Msg("Skipping malformed frame")
			})
			continue
		}
		h.sink.Ingest(f)
		ingested++
	}

	h.log.Info().Str("remote", r.RemoteAddr).Int("ingested", ingested).Int("dropped", dropped).Msg("Frame producer disconnected")
}
