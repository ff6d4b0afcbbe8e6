package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"venuepipe/internal/config"
	"venuepipe/internal/engine"
	"venuepipe/internal/model"
	"venuepipe/internal/rejects"
)

type EngineStatus interface {
	Stats() engine.Stats
}

type Server struct {
	cfg     *config.Config
	engine  EngineStatus
	rejects *rejects.Store
	logger  *slog.Logger
	version string
}

type statusResponse struct {
	Status     string                  `json:"status"`
	Time       string                  `json:"time"`
	Version    string                  `json:"version"`
	Topic      string                  `json:"topic"`
	GroupID    string                  `json:"group_id"`
	Storage    string                  `json:"storage"`
	Validation config.ValidationConfig `json:"validation"`
	Engine     engine.Stats            `json:"engine"`
}

func NewServer(cfg *config.Config, eng EngineStatus, rejectsStore *rejects.Store, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		cfg:     cfg,
		engine:  eng,
		rejects: rejectsStore,
		logger:  logger,
		version: version,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/rejections", s.handleRejections)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if !s.cfg.API.Enabled {
		s.logger.Info("api disabled")
		return nil
	}
	s.logger.Info("api enabled", "addr", s.cfg.API.Addr)
	httpServer := &http.Server{
		Addr:              s.cfg.API.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctxShutdown)
	}()
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("api server error", "err", err)
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.engine != nil && s.engine.Stats().State == engine.StateShuttingDown {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "shutting_down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	resp := statusResponse{
		Status:     "ok",
		Time:       time.Now().UTC().Format(time.RFC3339Nano),
		Version:    s.version,
		Topic:      s.cfg.Kafka.Topic,
		GroupID:    s.cfg.Kafka.GroupID,
		Storage:    s.cfg.Storage.Driver,
		Validation: s.cfg.Validation,
	}
	if s.engine != nil {
		resp.Engine = s.engine.Stats()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRejections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	var list []model.Rejection
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		ts, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		list = s.rejects.Since(ts)
	} else {
		list = s.rejects.List(limit)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rejections": list,
		"count":      len(list),
		"total":      s.rejects.Total(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
