// Package server exposes the dashboard series and task exports over a
// read-only JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/abatilo/taskstats/internal/export"
	"github.com/abatilo/taskstats/internal/metrics"
	"github.com/abatilo/taskstats/internal/stats"
	"github.com/abatilo/taskstats/internal/task"
)

// MaxHoursWeeks bounds ?weeks, which also bounds the number of cached
// hours series per task list.
const MaxHoursWeeks = 520

// Source supplies the task list each request is computed from.
type Source interface {
	List(filter task.Filter) ([]*task.Task, error)
}

// Config holds server configuration.
type Config struct {
	// Address is the listen address (e.g., ":8080", "127.0.0.1:8080")
	Address string

	// HoursWeeks is the default rollup window when ?weeks is absent.
	HoursWeeks int

	// ShutdownTimeout bounds connection draining. Defaults to 10 seconds.
	ShutdownTimeout time.Duration
}

// Server serves the dashboard API.
type Server struct {
	source   Source
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   *log.Logger
	cfg      Config
	cache    *seriesCache
	now      func() time.Time
}

// New creates a Server. gatherer backs the /metrics endpoint and should be
// the registry m was registered with.
func New(source Source, m *metrics.Metrics, gatherer prometheus.Gatherer, logger *log.Logger, cfg Config) *Server {
	if cfg.HoursWeeks < 1 {
		cfg.HoursWeeks = stats.DefaultWeeks
	}
	cfg.HoursWeeks = min(cfg.HoursWeeks, MaxHoursWeeks)
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		source:   source,
		metrics:  m,
		gatherer: gatherer,
		logger:   logger,
		cfg:      cfg,
		cache:    newSeriesCache(),
		now:      time.Now,
	}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/tasks", s.handleTasks)
	mux.HandleFunc("GET /api/burndown", s.handleBurndown)
	mux.HandleFunc("GET /api/hours", s.handleHours)
	mux.HandleFunc("GET /api/distribution", s.handleDistribution)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.Handle("GET /metrics", metrics.HandlerFor(s.gatherer))
	return mux
}

// Run serves on the configured address until ctx is cancelled, then drains
// connections for up to ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving dashboard API", "addr", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := task.Filter{
		Search:   q.Get("q"),
		Status:   task.Status(q.Get("status")),
		Priority: task.Priority(q.Get("priority")),
		Category: q.Get("category"),
	}

	tasks, ok := s.load(w, filter)
	if !ok {
		return
	}
	records := make([]export.Record, len(tasks))
	for i, t := range tasks {
		records[i] = export.ToRecord(t)
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleBurndown(w http.ResponseWriter, _ *http.Request) {
	s.serveSeries(w, metrics.KindBurndown, metrics.KindBurndown, func(tasks []*task.Task) any {
		return stats.Burndown(tasks)
	})
}

func (s *Server) handleHours(w http.ResponseWriter, r *http.Request) {
	weeks := s.cfg.HoursWeeks
	if raw := r.URL.Query().Get("weeks"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxHoursWeeks {
			writeError(w, http.StatusBadRequest,
				fmt.Errorf("weeks must be an integer between 1 and %d, got %q", MaxHoursWeeks, raw))
			return
		}
		weeks = n
	}

	key := metrics.KindHours + ":" + strconv.Itoa(weeks)
	s.serveSeries(w, metrics.KindHours, key, func(tasks []*task.Task) any {
		return stats.WeeklyHoursWindow(tasks, weeks)
	})
}

func (s *Server) handleDistribution(w http.ResponseWriter, _ *http.Request) {
	s.serveSeries(w, metrics.KindDistribution, metrics.KindDistribution, func(tasks []*task.Task) any {
		return stats.StatusDistribution(tasks)
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		raw = string(export.FormatJSON)
	}
	format, err := export.ParseFormat(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tasks, ok := s.load(w, task.Filter{})
	if !ok {
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(format, s.now())))
	if err = export.Write(w, format, tasks); err != nil {
		s.logger.Error("export failed", "format", format, "err", err)
	}
}

// serveSeries computes a series over the full task list, reusing the cached
// value while the list is unchanged.
func (s *Server) serveSeries(w http.ResponseWriter, kind, key string, compute func([]*task.Task) any) {
	tasks, ok := s.load(w, task.Filter{})
	if !ok {
		return
	}

	hash, err := contentHash(tasks)
	if err != nil {
		s.logger.Error("hash task list", "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	value, hit := s.cache.get(hash, key, func() any {
		start := time.Now()
		v := compute(tasks)
		s.metrics.ObserveAggregation(kind, time.Since(start))
		return v
	})
	if hit {
		s.metrics.CacheHits.Inc()
	} else {
		s.metrics.CacheMisses.Inc()
	}
	writeJSON(w, http.StatusOK, value)
}

func (s *Server) load(w http.ResponseWriter, filter task.Filter) ([]*task.Task, bool) {
	tasks, err := s.source.List(filter)
	if err != nil {
		s.logger.Error("load tasks", "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	if filter.IsEmpty() {
		s.metrics.TasksLoaded.Set(float64(len(tasks)))
	}
	return tasks, true
}

// errorJSON is the JSON representation of an error.
type errorJSON struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorJSON{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errchkjson // client disconnects are not actionable
}
