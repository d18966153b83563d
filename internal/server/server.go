package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jwkim/sm1link/internal/link"
	"github.com/jwkim/sm1link/internal/logging"
	"github.com/jwkim/sm1link/internal/metrics"
	"github.com/jwkim/sm1link/internal/session"
)

// gaugeInterval paces the background push of snapshots into the
// Prometheus gauges.
const gaugeInterval = 5 * time.Second

// Server serves the link's event stream, snapshots and metrics.
type Server struct {
	addr     string
	coord    *link.Coordinator
	hub      *Hub
	httpSrv  *http.Server
	upgrader websocket.Upgrader
}

// New creates a Server for the given coordinator. Start binds addr.
func New(addr string, coord *link.Coordinator) *Server {
	s := &Server{
		addr:  addr,
		coord: coord,
		hub:   NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/stats", s.handleStats)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // /ws holds the connection open
	}
	return s
}

// Publish encodes each event as JSON and queues it for every connected
// WebSocket client. Safe to call from the serial reader goroutines.
func (s *Server) Publish(events []session.Event) {
	for _, ev := range events {
		msg, err := json.Marshal(encodeEvent(ev))
		if err != nil {
			logging.Error("Failed to encode event", zap.Error(err))
			continue
		}
		s.hub.Broadcast(msg)
	}
}

// Start serves HTTP and blocks until a shutdown signal or a listener
// error. The Prometheus gauges are refreshed from coordinator snapshots
// while the server runs.
func (s *Server) Start() error {
	logging.Info("Starting link server", zap.String("addr", s.addr))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	ticker := time.NewTicker(gaugeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, snap := range s.coord.Snapshots() {
				metrics.ObserveSnapshot(snap)
			}
		case <-sigChan:
			logging.Info("Shutdown signal received, stopping server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return s.Shutdown(ctx)
		case err := <-errChan:
			return err
		}
	}
}

// Shutdown disconnects WebSocket clients and stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")
	s.hub.CloseAll()
	err := s.httpSrv.Shutdown(ctx)
	logging.Sync()
	return err
}

// Handler returns the server's HTTP handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	logging.Info("WebSocket client connected",
		zap.String("remote_addr", r.RemoteAddr),
	)

	c := s.hub.add(conn)
	go c.writePump()
	go c.readPump(s.hub)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snaps := s.coord.Snapshots()
	out := make([]wireSnapshot, 0, len(snaps))
	for _, snap := range snaps {
		metrics.ObserveSnapshot(snap)
		out = append(out, encodeSnapshot(snap))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		logging.Error("Failed to encode stats", zap.Error(err))
	}
}
