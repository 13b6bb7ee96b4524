// Package api provides the HTTP API for querying fleet state.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/fleetcommand/internal/captain"
	"github.com/talgya/fleetcommand/internal/engine"
	"github.com/talgya/fleetcommand/internal/sector"
)

// Server serves the fleet state over HTTP.
type Server struct {
	Sim         *engine.Simulation
	Eng         *engine.Engine
	Port        int
	AdminKey    string   // Bearer token for POST endpoints. Empty = POST disabled.
	CORSOrigins []string // Extra allowed origins beyond localhost dev servers.

	// AdminRate caps admin POSTs per client per minute. Zero means 60.
	AdminRate int

	srv *http.Server
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	rate := s.AdminRate
	if rate <= 0 {
		rate = 60
	}
	adminLimiter := NewRateLimiter(rate, time.Minute)
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return RateLimitMiddleware(adminLimiter, s.adminOnly(h))
	}

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/ships", s.handleShips)
	mux.HandleFunc("GET /api/v1/ship/{index}", s.handleShipDetail)
	mux.HandleFunc("GET /api/v1/escalations", s.handleEscalations)
	mux.HandleFunc("GET /api/v1/compliance", s.handleCompliance)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/speed", s.handleSpeed)

	// Admin endpoints.
	mux.HandleFunc("POST /api/v1/speed", admin(s.handleSpeed))
	mux.HandleFunc("POST /api/v1/pause", admin(s.handlePause))
	mux.HandleFunc("POST /api/v1/escalation/ack", admin(s.handleAcknowledge))
	mux.HandleFunc("POST /api/v1/order", admin(s.handleOrder))

	return corsMiddleware(s.CORSOrigins, mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops a server begun with Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no FLEETSIM_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	clock := s.Eng.Clock()
	writeJSON(w, map[string]any{
		"name": "fleetsim",
		"engine": map[string]any{
			"tick":    clock.Tick,
			"speed":   s.Eng.Speed(),
			"paused":  clock.Paused,
			"mode":    clock.Mode.String(),
			"running": s.Eng.Running(),
		},
		"fleet": s.Sim.Status(),
	})
}

func (s *Server) handleShips(w http.ResponseWriter, r *http.Request) {
	ships := s.Sim.Ships()
	if faction := r.URL.Query().Get("faction"); faction != "" {
		filtered := ships[:0]
		for _, v := range ships {
			if v.Faction == faction {
				filtered = append(filtered, v)
			}
		}
		ships = filtered
	}
	writeJSON(w, ships)
}

func (s *Server) handleShipDetail(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseUint(r.PathValue("index"), 10, 32)
	if err != nil {
		http.Error(w, "invalid ship index", http.StatusBadRequest)
		return
	}
	detail, ok := s.Sim.Ship(uint32(index))
	if !ok {
		http.Error(w, "ship not found", http.StatusNotFound)
		return
	}
	writeJSON(w, detail)
}

func (s *Server) handleEscalations(w http.ResponseWriter, r *http.Request) {
	pending := r.URL.Query().Get("pending") == "true"
	out := s.Sim.Escalations(pending)
	if out == nil {
		out = []engine.EscalationView{}
	}
	writeJSON(w, out)
}

func (s *Server) handleCompliance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Compliance(queryLimit(r, 50, 500)))
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events := s.Sim.RecentEvents(0)

	// Optional category filter.
	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	limit := queryLimit(r, 50, 500)
	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, events[start:])
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paused bool `json:"paused"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	s.Eng.SetPaused(req.Paused)
	slog.Info("pause changed", "paused", req.Paused)
	writeJSON(w, map[string]bool{"paused": req.Paused})
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		http.Error(w, "invalid escalation id", http.StatusBadRequest)
		return
	}

	details, err := s.Sim.AcknowledgeEscalation(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "details": details})
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ship     uint32 `json:"ship"`
		Type     string `json:"type"`
		Q        int    `json:"q"`
		R        int    `json:"r"`
		Priority uint8  `json:"priority"`
		Timeout  uint64 `json:"timeout_ticks,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	t, err := captain.ParseOrderType(req.Type)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	details, err := s.Sim.IssueOrder(req.Ship, t, sector.Coord{Q: req.Q, R: req.R}, req.Priority, req.Timeout)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "details": details})
}

func queryLimit(r *http.Request, def, ceiling int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= ceiling {
			return n
		}
	}
	return def
}

// writeError maps simulation errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrShipNotFound), errors.Is(err, engine.ErrEscalationNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, engine.ErrOrderInProgress):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
