// Package transport carries snapshots and paddle reports over websockets.
// The server seats one connection per slot plus any number of spectators;
// the dialer connects a client to a hosting master.
package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/tui-pong/internal/config"
	"github.com/vovakirdan/tui-pong/internal/metrics"
	"github.com/vovakirdan/tui-pong/internal/multiplayer"
)

// Handshake response headers describing the seat a connection got.
const (
	HeaderSlot    = "X-Pong-Slot"
	HeaderPlayers = "X-Pong-Players"
	HeaderMode    = "X-Pong-Mode"
)

const (
	maxMessageSize = 1024
	sendBuffer     = 16
	writeWait      = 5 * time.Second
	pingPeriod     = 20 * time.Second
	pongWait       = 2 * pingPeriod
)

// Deliverer receives raw inbound payloads. *multiplayer.Master satisfies it.
type Deliverer interface {
	Deliver(slot int, data []byte)
}

// peer is one websocket connection.
type peer struct {
	id      multiplayer.SessionID
	slot    int
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter

	closeOnce sync.Once
}

func (p *peer) close() {
	p.closeOnce.Do(func() {
		close(p.send)
	})
}

// Server seats websocket peers and fans snapshots out to them.
type Server struct {
	cfg      config.MatchConfig
	deliver  Deliverer
	snapshot func() []byte
	logger   *log.Logger

	seats    *seatRegistry
	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

// NewServer creates a server for a match. snapshot, when non-nil, serves the
// latest broadcast on GET /snapshot.
func NewServer(cfg config.MatchConfig, deliver Deliverer, snapshot func() []byte, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		cfg:      cfg,
		deliver:  deliver,
		snapshot: snapshot,
		logger:   logger.WithPrefix("transport"),
		seats:    newSeatRegistry(cfg.Players),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  maxMessageSize,
			WriteBufferSize: maxMessageSize,
			CheckOrigin:     func(*http.Request) bool { return true }, // Terminal clients send no Origin
		},
	}
}

// Handler returns the HTTP routes. It starts no goroutines and is safe to use with httptest.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.handleWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/seats", s.handleSeats)
	r.Get("/snapshot", s.handleSnapshot)
	r.Handle("/metrics", metrics.Handler())
	return r
}

// Broadcast queues data for every peer without blocking. Peers with a full
// buffer miss this payload; snapshots are latest-wins.
func (s *Server) Broadcast(data []byte) {
	s.seats.each(func(p *peer) {
		select {
		case p.send <- data:
		default:
			s.logger.Debug("send buffer full, dropping snapshot", "session", p.id)
		}
	})
}

// Reserve keeps slot for the hosting player. Dials for it get 409.
func (s *Server) Reserve(slot int) error {
	return s.seats.reserve(slot)
}

// Count returns the number of connected peers.
func (s *Server) Count() int {
	return s.seats.count()
}

// Occupied returns the seated slots.
func (s *Server) Occupied() []int {
	return s.seats.occupied()
}

// Close disconnects every peer.
func (s *Server) Close() {
	s.seats.each(func(p *peer) {
		_ = p.conn.Close()
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	slot := multiplayer.SpectatorSlot
	if v := r.URL.Query().Get("slot"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "bad slot", http.StatusBadRequest)
			return
		}
		slot = n
	}

	p := &peer{
		id:      multiplayer.SessionID(fmt.Sprintf("%s#%d", r.RemoteAddr, s.nextID.Add(1))),
		slot:    slot,
		send:    make(chan []byte, sendBuffer),
		limiter: rate.NewLimiter(rate.Limit(s.cfg.Network.ClientRateLimit), s.cfg.Network.ClientBurst),
	}
	if err := s.seats.claim(p); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrSeatTaken) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	header := http.Header{}
	header.Set(HeaderSlot, strconv.Itoa(slot))
	header.Set(HeaderPlayers, strconv.Itoa(s.cfg.Players))
	header.Set(HeaderMode, s.cfg.Mode)
	conn, err := s.upgrader.Upgrade(w, r, header)
	if err != nil {
		s.seats.release(p.id)
		s.logger.Debug("upgrade failed", "err", err)
		return
	}
	p.conn = conn
	s.seats.attach(p)

	metrics.ConnectionOpened()
	s.logger.Info("peer connected", "session", p.id, "slot", slot)
	defer func() {
		s.seats.release(p.id)
		p.close()
		metrics.ConnectionClosed()
		s.logger.Info("peer disconnected", "session", p.id, "slot", slot)
	}()

	go s.writePump(p)
	s.readPump(p)
}

func (s *Server) readPump(p *peer) {
	defer p.conn.Close()
	p.conn.SetReadLimit(maxMessageSize)
	_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("read failed", "session", p.id, "err", err)
			}
			return
		}
		_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
		if !p.limiter.Allow() {
			metrics.RecordDropped(metrics.DropRateLimit)
			continue
		}
		if s.deliver != nil {
			s.deliver.Deliver(p.slot, data)
		}
	}
}

func (s *Server) writePump(p *peer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = p.conn.Close()
	}()

	for {
		select {
		case data, ok := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Debug("write failed", "session", p.id, "err", err)
				return
			}

		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleSeats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	occupied := s.Occupied()
	_, _ = fmt.Fprintf(w, "players=%d seated=%v connections=%d\n", s.cfg.Players, occupied, s.Count())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.snapshot == nil {
		http.NotFound(w, r)
		return
	}
	data := s.snapshot()
	if data == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}
