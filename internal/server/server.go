// Package server hosts svara tables behind a websocket relay. The
// engine is authoritative; the relay only forwards events and actions.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/svara/internal/randutil"
	"golang.org/x/sync/errgroup"
)

// Server accepts websocket clients and routes them to tables.
type Server struct {
	cfg      *Config
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	tables map[string]*Table
	conns  map[*Connection]struct{}
}

// NewServer builds a server and its configured tables.
func NewServer(cfg *Config, logger *log.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		tables: make(map[string]*Table),
		conns:  make(map[*Connection]struct{}),
	}
	for _, tc := range cfg.Tables {
		s.tables[tc.Name] = NewTable(tc, logger, quartz.NewReal(), randutil.NewTimeSeeded())
	}
	return s
}

// Table looks up a table by name
func (s *Server) Table(name string) (*Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[name]
	return t, ok
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Address, s.cfg.Server.Port)
	httpServer := &http.Server{Addr: addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		err := httpServer.ListenAndServe()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.mu.Lock()
		for conn := range s.conns {
			conn.Close()
		}
		s.mu.Unlock()

		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// StartTable begins play on a named table, seating its bots.
func (s *Server) StartTable(name string) error {
	t, ok := s.Table(name)
	if !ok {
		return fmt.Errorf("no such table %s", name)
	}
	return t.Start()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "err", err)
		return
	}

	conn := NewConnection(ws, s.logger, s)
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	total := len(s.conns)
	s.mu.Unlock()
	s.logger.Info("client connected", "total", total)

	go conn.WritePump()
	go conn.ReadPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) unregister(conn *Connection) {
	s.mu.Lock()
	if _, ok := s.conns[conn]; ok {
		delete(s.conns, conn)
		conn.Close()
	}
	total := len(s.conns)
	s.mu.Unlock()
	s.logger.Info("client disconnected", "total", total)
}
