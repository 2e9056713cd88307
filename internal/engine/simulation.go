// Simulation ties the economic systems together and holds the live game.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/talgya/trade-towns/internal/agents"
	"github.com/talgya/trade-towns/internal/economy"
	"github.com/talgya/trade-towns/internal/trade"
	"github.com/talgya/trade-towns/internal/world"
)

// Simulation owns the current game state and advances it one turn at a
// time. RunTurn is pure; Step and Trade replace the held state under a lock
// so observers may read it concurrently.
type Simulation struct {
	cfg      Config
	revealer world.TierRevealer
	log      *slog.Logger

	mu        sync.RWMutex
	state     world.GameState
	cooldowns agents.Cooldowns
	last      *TurnReport
}

// Option customizes a Simulation.
type Option func(*Simulation)

// WithRevealer replaces the threshold tier revealer.
func WithRevealer(r world.TierRevealer) Option {
	return func(s *Simulation) { s.revealer = r }
}

// WithLogger sets the logger used for turn reports. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) { s.log = l }
}

// NewSimulation validates cfg against initial and returns a simulation
// holding initial. An invalid configuration is refused.
func NewSimulation(cfg Config, initial world.GameState, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(initial); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	s := &Simulation{
		cfg:       cfg,
		revealer:  world.ThresholdRevealer{Thresholds: cfg.Thresholds},
		log:       slog.Default(),
		state:     initial.Clone(),
		cooldowns: cfg.Cooldowns,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Config returns the simulation's configuration.
func (s *Simulation) Config() Config {
	return s.cfg
}

// State returns a copy of the current state.
func (s *Simulation) State() world.GameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Cooldowns returns the active AI cooldowns.
func (s *Simulation) Cooldowns() agents.Cooldowns {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cooldowns.Prune(s.state.Turn)
}

// LastReport returns the report of the most recent Step, if any.
func (s *Simulation) LastReport() (TurnReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return TurnReport{}, false
	}
	return *s.last, true
}

// Step plays one turn against the held state and keeps the result.
func (s *Simulation) Step() (TurnReport, error) {
	_, report, err := s.Advance()
	return report, err
}

// Advance is Step that also returns the state the turn produced. Callers
// that persist a turn should use this state rather than a later State call,
// which may already include player trades.
func (s *Simulation) Advance() (world.GameState, TurnReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, report, err := s.RunTurn(s.state, s.cooldowns)
	if err != nil {
		return world.GameState{}, TurnReport{}, err
	}
	s.state = next
	s.cooldowns = report.Cooldowns
	s.last = &report
	return next.Clone(), report, nil
}

// Trade performs a player trade against the held state. Validation errors
// leave the state unchanged.
func (s *Simulation) Trade(req world.TradeRequest) (trade.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.trades(s.state.Goods, nil).Perform(s.state, req)
	if err != nil {
		return trade.Result{}, err
	}
	s.state = res.State
	s.log.Info("player trade",
		"turn", s.state.Turn,
		"buyer", res.Trade.Buyer(),
		"seller", res.Trade.Seller(),
		"good", res.Trade.Good,
		"qty", res.Trade.Qty,
		"unit_price", res.UnitPriceApplied,
	)
	return res, nil
}

// Quotes lists the current AI candidates that involve townID, in
// generation order, using the town's profile cap when it has one.
func (s *Simulation) Quotes(townID string) ([]world.Quote, error) {
	st := s.State()
	t, ok := st.Town(townID)
	if !ok {
		return nil, fmt.Errorf("unknown town %q", townID)
	}
	var out []world.Quote
	for _, q := range agents.GenerateCandidates(agents.Snapshot(st), s.cfg.Profiles[t.AIProfile].QuantityCap()) {
		if q.SellerID == townID || q.BuyerID == townID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *Simulation) pricing(trace economy.TraceFunc) economy.Service {
	return economy.Service{Table: s.cfg.Prices, Math: s.cfg.PriceMath, Trace: trace}
}

func (s *Simulation) trades(goods world.Catalog, trace economy.TraceFunc) trade.Service {
	return trade.Service{Pricing: s.pricing(trace), Goods: goods, Limits: &s.cfg.Limits}
}
