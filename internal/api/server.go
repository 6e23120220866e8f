package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"basesignals/internal/model"
	"basesignals/internal/store"
)

// Server is the read surface over the signal store plus the attest endpoint
// the indexer's API sink posts to.
type Server struct {
	store  store.Store
	logger *slog.Logger
}

type addressScore struct {
	Address string `json:"address"`
	Score   int    `json:"score"`
}

type networkStats struct {
	TotalAddresses int            `json:"totalAddresses"`
	SignalCounts   map[string]int `json:"signalCounts"`
	TotalSignals   int            `json:"totalSignals"`
}

func NewServer(signalStore store.Store, logger *slog.Logger) *Server {
	return &Server{store: signalStore, logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /address/{addr}/signals", s.handleSignals)
	mux.HandleFunc("GET /address/{addr}/intent", s.handleIntent)
	mux.HandleFunc("GET /signal/{type}/top", s.handleTop)
	mux.HandleFunc("GET /stats/network", s.handleStats)
	mux.HandleFunc("POST /attest", s.handleAttest)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})
	return mux
}

func Start(ctx context.Context, addr string, signalStore store.Store, logger *slog.Logger) *http.Server {
	server := NewServer(signalStore, logger)
	httpServer := &http.Server{Addr: addr, Handler: server.Handler()}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctxShutdown)
	}()
	go func() {
		if logger != nil {
			logger.Info("api listening", "addr", addr)
		}
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Error("api server error", "err", err)
			}
		}
	}()
	return httpServer
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	address := strings.ToLower(r.PathValue("addr"))
	signals, ok, err := s.store.Get(r.Context(), address)
	if err != nil {
		s.serverError(w, err)
		return
	}
	if !ok {
		signals = model.UserSignals{
			Address:     address,
			Signals:     []model.SignalScore{},
			LastUpdated: time.Now().Unix(),
		}
	}
	writeJSON(w, http.StatusOK, signals)
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	address := strings.ToLower(r.PathValue("addr"))
	signals, ok, err := s.store.Get(r.Context(), address)
	if err != nil {
		s.serverError(w, err)
		return
	}
	var intent *string
	if ok && signals.PrimaryIntent != "" {
		intent = &signals.PrimaryIntent
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"address": address,
		"intent":  intent,
	})
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	signalType := strings.ToUpper(r.PathValue("type"))
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	all, err := s.store.All(r.Context())
	if err != nil {
		s.serverError(w, err)
		return
	}

	top := make([]addressScore, 0)
	for _, bundle := range all {
		for _, sig := range bundle.Signals {
			if sig.SignalType == signalType {
				top = append(top, addressScore{Address: bundle.Address, Score: sig.Score})
				break
			}
		}
	}
	sort.Slice(top, func(i, j int) bool { return top[i].Score > top[j].Score })
	if len(top) > limit {
		top = top[:limit]
	}
	writeJSON(w, http.StatusOK, top)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	all, err := s.store.All(r.Context())
	if err != nil {
		s.serverError(w, err)
		return
	}

	stats := networkStats{
		TotalAddresses: len(all),
		SignalCounts:   make(map[string]int),
	}
	for _, bundle := range all {
		for _, sig := range bundle.Signals {
			stats.SignalCounts[sig.SignalType]++
			stats.TotalSignals++
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAttest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var req struct {
		Address string              `json:"address"`
		Signals []model.SignalScore `json:"signals"`
		Intent  string              `json:"intent"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if req.Address == "" || req.Signals == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing required fields"})
		return
	}

	bundle := model.UserSignals{
		Address:       strings.ToLower(req.Address),
		Signals:       req.Signals,
		PrimaryIntent: req.Intent,
		LastUpdated:   time.Now().Unix(),
	}
	if err := s.store.Put(r.Context(), bundle); err != nil {
		s.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	if s.logger != nil {
		s.logger.Error("api request failed", "err", err)
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
