// Package server exposes a Simulation over HTTP.
//
// Routes:
//
//	GET  /                    counters viewer page
//	GET  /api/config          comparison parameters and genomes
//	GET  /api/state           current counters
//	POST /api/step            run one comparison, return the new state
//	POST /api/run?samples=N   start a background run (409 while one is active)
//	POST /api/stop            cancel the background run
//	GET  /api/events          Server-Sent Events stream of state updates
//
// Counters are only ever read through Snapshot.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"genomecmp/internal/output"
	"genomecmp/internal/simulation"
	"genomecmp/pkg/api"
)

// Options configures background runs.
type Options struct {
	Workers        int
	UpdateInterval int
	Seed           uint64
	DefaultSamples int           // used when /api/run has no samples parameter
	Heartbeat      time.Duration // SSE keep-alive period; 0 disables
}

// Server holds the simulation and the single background run slot.
type Server struct {
	sim    *simulation.Simulation
	config api.ConfigV1
	names  output.Names
	opts   Options
	hub    *Hub
	log    *slog.Logger

	stepMu sync.Mutex
	rng    *rand.Rand

	runMu     sync.Mutex
	cancelRun context.CancelFunc
	runDone   chan struct{}
}

// New wires a server. logger may be nil.
func New(sim *simulation.Simulation, config api.ConfigV1, names output.Names, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		sim:    sim,
		config: config,
		names:  names,
		opts:   opts,
		hub:    NewHub(),
		log:    logger,
		rng:    simulation.NewRand(opts.Seed, 1<<32),
	}
}

//go:embed static/index.html
var indexPage []byte

// Hub returns the update broadcaster.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/config", s.handleConfig)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/step", s.handleStep)
	mux.HandleFunc("POST /api/run", s.handleRun)
	mux.HandleFunc("POST /api/stop", s.handleStop)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then stops any
// background run and shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts derive from ctx so event streams end on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.Stop()
		return err
	case <-ctx.Done():
	}
	s.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) state() api.StateV1 {
	return output.ToAPIState(s.sim.Counters().Snapshot(), s.names, s.sim.Running())
}

func (s *Server) publish(st simulation.State) {
	s.hub.Publish(output.ToAPIState(st, s.names, s.sim.Running()))
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexPage)
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.config)
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleStep(w http.ResponseWriter, _ *http.Request) {
	s.stepMu.Lock()
	_, st := s.sim.Step(s.rng)
	s.stepMu.Unlock()
	s.publish(st)
	writeJSON(w, http.StatusOK, output.ToAPIState(st, s.names, s.sim.Running()))
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	samples := s.opts.DefaultSamples
	if v := r.URL.Query().Get("samples"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid samples %q", v))
			return
		}
		samples = n
	}
	if err := s.Start(samples); err != nil {
		if errors.Is(err, simulation.ErrRunning) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusAccepted, s.state())
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.Stop()
	writeJSON(w, http.StatusOK, s.state())
}

// Start launches a background run of samples (0 = until stopped). It
// returns simulation.ErrRunning if one is already active.
func (s *Server) Start(samples int) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.cancelRun != nil {
		return simulation.ErrRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancelRun, s.runDone = cancel, done

	opts := simulation.RunOptions{
		Samples:        samples,
		Workers:        s.opts.Workers,
		UpdateInterval: s.opts.UpdateInterval,
		Seed:           s.opts.Seed,
	}
	go func() {
		defer close(done)
		defer cancel()
		s.log.Info("run started", "samples", samples)
		err := s.sim.Run(ctx, opts, s.publish)
		s.runMu.Lock()
		s.cancelRun, s.runDone = nil, nil
		s.runMu.Unlock()
		switch {
		case err == nil, errors.Is(err, context.Canceled):
			s.log.Info("run finished", "total", s.sim.Counters().Snapshot().Total)
		default:
			s.log.Error("run failed", "error", err)
		}
		s.publish(s.sim.Counters().Snapshot())
	}()
	return nil
}

// Stop cancels the background run, if any, and waits for it to finish.
func (s *Server) Stop() {
	s.runMu.Lock()
	cancel, done := s.cancelRun, s.runDone
	s.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	updates, unsubscribe := s.hub.Subscribe(16)
	defer unsubscribe()

	if err := writeEvent(w, flusher, "state", s.state()); err != nil {
		return
	}

	var tick <-chan time.Time
	if s.opts.Heartbeat > 0 {
		t := time.NewTicker(s.opts.Heartbeat)
		defer t.Stop()
		tick = t.C
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case v := <-updates:
			if err := writeEvent(w, flusher, "state", v); err != nil {
				return
			}
		case <-tick:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
