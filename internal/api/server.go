// Package api provides the HTTP API for observing and driving a game.
// GET endpoints are public (read-only observation). POST /trade is the
// player trade boundary and is rate limited. POST /turn requires a
// bearer token (admin control plane).
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/talgya/trade-towns/internal/engine"
	"github.com/talgya/trade-towns/internal/persistence"
	"github.com/talgya/trade-towns/internal/trade"
	"github.com/talgya/trade-towns/internal/world"
)

// Server serves one simulation over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Journal  *persistence.Journal // Optional; history is unavailable without it
	Hub      *Hub                 // Optional; streaming is unavailable without it
	Port     int
	AdminKey string // Bearer token for POST /turn. Empty = turn control disabled.

	TradeLimiter *RateLimiter // Defaults to 60 trades per minute per client

	turnMu sync.Mutex
}

// Handler builds the routing table. CORS is applied to every route.
func (s *Server) Handler() http.Handler {
	limiter := s.TradeLimiter
	if limiter == nil {
		limiter = NewRateLimiter(60, defaultTradeWindow)
	}

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/towns", s.handleTowns)
	mux.HandleFunc("GET /api/v1/quotes", s.handleQuotes)
	mux.HandleFunc("GET /api/v1/history", s.handleHistory)
	mux.HandleFunc("GET /api/v1/stream", s.handleStream)

	// Player trades.
	mux.HandleFunc("POST /api/v1/trade", RateLimitMiddleware(limiter, s.handleTrade))

	// Admin endpoints.
	mux.HandleFunc("POST /api/v1/turn", s.adminOnly(s.handleTurn))

	return corsMiddleware(mux)
}

// HTTPServer returns an http.Server listening on the configured port.
func (s *Server) HTTPServer() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "journal", s.Journal != nil)
	return &http.Server{Addr: addr, Handler: s.Handler()}
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
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
			http.Error(w, "admin endpoints disabled (no admin key set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// Advance plays one turn, journals it and broadcasts the report. Its
// signature matches engine.Engine.Step so a serving engine steps through it.
func (s *Server) Advance() (world.GameState, engine.TurnReport, error) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	next, report, err := s.Sim.Advance()
	if err != nil {
		return world.GameState{}, engine.TurnReport{}, err
	}
	s.publishLocked(report, next)
	return next, report, nil
}

func (s *Server) publishLocked(report engine.TurnReport, next world.GameState) {
	if s.Journal != nil {
		if err := s.Journal.RecordTurn(report, next); err != nil {
			slog.Error("journal turn failed", "turn", report.Turn, "error", err)
		}
	}
	if s.Hub != nil {
		s.Hub.Publish(Message{Type: "turn", Turn: report.Turn, Payload: report})
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.Sim.State()
	ai := 0
	for _, t := range st.Towns {
		if t.IsAI() {
			ai++
		}
	}

	status := map[string]any{
		"name":           "trade-towns",
		"turn":           st.Turn,
		"seed":           st.RNGSeed,
		"version":        st.Version,
		"towns":          len(st.Towns),
		"ai_towns":       ai,
		"total_treasury": st.TotalTreasury(),
		"cooldowns":      len(s.Sim.Cooldowns()),
		"journal":        s.Journal != nil,
	}
	if last, ok := s.Sim.LastReport(); ok {
		status["last_turn"] = map[string]any{
			"turn":       last.Turn,
			"trades":     len(last.Trades),
			"skipped":    last.Skipped(),
			"rejections": len(last.Rejections),
		}
	}
	if s.Hub != nil {
		status["stream_clients"] = s.Hub.Clients()
	}
	writeJSON(w, status)
}

func (s *Server) handleTowns(w http.ResponseWriter, r *http.Request) {
	st := s.Sim.State()
	writeJSON(w, map[string]any{
		"turn":  st.Turn,
		"goods": st.Goods,
		"towns": st.Towns,
	})
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	town := r.URL.Query().Get("town")
	if town == "" {
		http.Error(w, "town parameter required", http.StatusBadRequest)
		return
	}
	quotes, err := s.Sim.Quotes(town)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if quotes == nil {
		quotes = []world.Quote{}
	}
	writeJSON(w, map[string]any{"town": town, "quotes": quotes})
}

// handleHistory returns the journaled trades and decisions of one turn.
// Without ?turn= it returns the most recently played turn.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		http.Error(w, "journal disabled", http.StatusServiceUnavailable)
		return
	}

	var turn int
	if raw := r.URL.Query().Get("turn"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "turn must be a non-negative integer", http.StatusBadRequest)
			return
		}
		turn = n
	} else {
		latest, err := s.Journal.LatestTurn()
		if err != nil && !errors.Is(err, persistence.ErrNotFound) {
			slog.Error("history lookup failed", "error", err)
			http.Error(w, "history unavailable", http.StatusInternalServerError)
			return
		}
		if latest == 0 {
			http.Error(w, "no turns played yet", http.StatusNotFound)
			return
		}
		turn = latest - 1
	}

	trades, err := s.Journal.Trades(turn)
	if err != nil {
		slog.Error("history trades failed", "turn", turn, "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	decisions, err := s.Journal.Decisions(turn)
	if err != nil {
		slog.Error("history decisions failed", "turn", turn, "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if trades == nil {
		trades = []persistence.TradeRow{}
	}
	if decisions == nil {
		decisions = []persistence.DecisionRow{}
	}
	writeJSON(w, map[string]any{
		"turn":      turn,
		"trades":    trades,
		"decisions": decisions,
	})
}

// handleTrade is the player trade boundary. Rejections answer 422 with the
// offending path so a client can point at the bad field.
func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var req world.TradeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, &trade.ValidationError{Path: "", Message: "malformed request: " + err.Error()})
		return
	}

	// Held until the trade is journaled so snapshots land in mutation order.
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	res, err := s.Sim.Trade(req)
	var ve *trade.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusUnprocessableEntity, ve)
		return
	case err != nil:
		slog.Error("player trade failed", "error", err)
		http.Error(w, "trade failed", http.StatusInternalServerError)
		return
	}

	if s.Journal != nil {
		if err := s.Journal.RecordState(res.State); err != nil {
			slog.Error("journal state failed", "turn", res.State.Turn, "error", err)
		}
	}
	if s.Hub != nil {
		s.Hub.Publish(Message{Type: "trade", Turn: res.State.Turn, Payload: res})
	}
	writeJSON(w, res)
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	_, report, err := s.Advance()
	if err != nil {
		slog.Error("turn failed", "error", err)
		http.Error(w, "turn failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, report)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.Hub == nil {
		http.Error(w, "streaming disabled", http.StatusServiceUnavailable)
		return
	}
	s.Hub.ServeWs(w, r)
}

func writeError(w http.ResponseWriter, code int, e *trade.ValidationError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(e)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
