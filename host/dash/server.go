// Package dash serves a live view of the drive's debug stream:
// decoded samples are broadcast as JSON to websocket clients at a
// configurable rate.
package dash

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"servofw/host/monitor"
)

// Server broadcasts monitor samples to WebSocket clients.
type Server struct {
	cfg *Config

	clients   map[*wsClient]struct{}
	clientsMu sync.RWMutex

	upgrader websocket.Upgrader

	latestMu sync.RWMutex
	latest   monitor.Sample
	haveData bool
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// New creates a new Server.
func New(cfg *Config) *Server {
	return &Server{
		cfg:     cfg,
		clients: make(map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Offer records the newest sample for the next broadcast tick.
func (s *Server) Offer(sample monitor.Sample) {
	s.latestMu.Lock()
	s.latest = sample
	s.haveData = true
	s.latestMu.Unlock()
}

// Run serves websocket clients until the context ends.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	srv := &http.Server{
		Addr:    s.cfg.Server.ListenAddr,
		Handler: mux,
	}

	go s.broadcastLoop(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[dash] listening on %s", s.cfg.Server.ListenAddr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) broadcastLoop(ctx context.Context) {
	hz := s.cfg.Server.BroadcastHz
	if hz <= 0 {
		hz = 50
	}
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		s.latestMu.RLock()
		sample := s.latest
		ok := s.haveData
		s.latestMu.RUnlock()
		if !ok {
			continue
		}

		data, err := json.Marshal(sample)
		if err != nil {
			log.Printf("[dash] marshal failed: %v", err)
			continue
		}
		s.broadcast(data)
	}
}

func (s *Server) broadcast(data []byte) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			// Slow client: drop the frame rather than block the
			// broadcast loop.
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[dash] upgrade failed: %v", err)
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, 8),
	}

	s.clientsMu.Lock()
	s.clients[client] = struct{}{}
	n := len(s.clients)
	s.clientsMu.Unlock()
	log.Printf("[dash] client connected (%d total)", n)

	go s.writeLoop(client)
	s.readLoop(client)
}

func (s *Server) writeLoop(c *wsClient) {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (s *Server) readLoop(c *wsClient) {
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c)
		s.clientsMu.Unlock()
		close(c.send)
		c.conn.Close()
		log.Printf("[dash] client disconnected")
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
