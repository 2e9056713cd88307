package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/trade-towns/internal/agents"
	"github.com/talgya/trade-towns/internal/economy"
	"github.com/talgya/trade-towns/internal/production"
	"github.com/talgya/trade-towns/internal/trade"
	"github.com/talgya/trade-towns/internal/world"
)

// TradeRecord is an AI trade that went through.
type TradeRecord struct {
	TownID           string               `json:"townId"` // AI town that proposed it
	Trade            world.ValidatedTrade `json:"trade"`
	UnitPriceApplied int                  `json:"unitPriceApplied"`
	Deltas           [2]trade.TownDelta   `json:"deltas"`
}

// Rejection is an AI request the validator refused.
type Rejection struct {
	TownID  string                 `json:"townId"`
	Request world.TradeRequest     `json:"request"`
	Error   *trade.ValidationError `json:"error"`
}

// TurnReport describes one played turn. Turn is the turn that was played;
// the resulting state is at Turn+1.
type TurnReport struct {
	Turn        int                  `json:"turn"`
	Decisions   []agents.Decision    `json:"decisions"`
	Trades      []TradeRecord        `json:"trades"`
	Rejections  []Rejection          `json:"rejections"`
	Production  []production.Entry   `json:"production"`
	PriceTraces []economy.PriceTrace `json:"priceTraces"`
	Cooldowns   agents.Cooldowns     `json:"cooldowns"` // Active after the turn
}

// Skipped counts decisions that proposed nothing.
func (r TurnReport) Skipped() int {
	n := 0
	for _, d := range r.Decisions {
		if d.Status == agents.StatusSkipped {
			n++
		}
	}
	return n
}

// RunTurn plays one turn from state without touching the simulation's held
// state. The phases run in a fixed order:
//
//  1. each AI town, in state order: decide, validate, execute, reprice
//  2. production for every town
//  3. price drift for every town
//  4. turn increment
//  5. tier reveal
//
// A validator rejection is recorded and the turn goes on. An execution
// error means the state is inconsistent and aborts the turn.
func (s *Simulation) RunTurn(state world.GameState, cooldowns agents.Cooldowns) (world.GameState, TurnReport, error) {
	report := TurnReport{Turn: state.Turn}
	trace := economy.Collect(&report.PriceTraces)
	trades := s.trades(state.Goods, trace)

	cur := state
	for _, id := range aiTowns(state) {
		t, _ := cur.Town(id)
		profile := s.cfg.Profiles[t.AIProfile]

		d := agents.Decide(cur, id, profile, cur.Goods, cur.RNGSeed, cooldowns)
		report.Decisions = append(report.Decisions, d)
		if d.Status != agents.StatusTraded {
			continue
		}

		res, err := trades.Perform(cur, d.Request)
		if err != nil {
			var ve *trade.ValidationError
			if errors.As(err, &ve) {
				report.Rejections = append(report.Rejections, Rejection{TownID: id, Request: d.Request, Error: ve})
				s.log.Debug("ai trade rejected", "turn", state.Turn, "town", id, "path", ve.Path, "reason", ve.Message)
				continue
			}
			return state, TurnReport{}, fmt.Errorf("turn %d: town %s: %w", state.Turn, id, err)
		}

		cur = res.State
		report.Trades = append(report.Trades, TradeRecord{
			TownID:           id,
			Trade:            res.Trade,
			UnitPriceApplied: res.UnitPriceApplied,
			Deltas:           res.Deltas,
		})
		if profile.CooldownTurns > 0 && res.Trade.Buyer() == id {
			cooldowns = cooldowns.With(res.Trade.Buyer(), res.Trade.Good, state.Turn+profile.CooldownTurns)
		}
	}

	opts := production.OptionsFor(cur)
	entries, err := production.Preview(cur, s.cfg.Production, opts)
	if err != nil {
		return state, TurnReport{}, fmt.Errorf("turn %d: production: %w", state.Turn, err)
	}
	report.Production = entries
	if cur, err = production.Apply(cur, s.cfg.Production, opts); err != nil {
		return state, TurnReport{}, fmt.Errorf("turn %d: production: %w", state.Turn, err)
	}

	if cur, err = s.pricing(trace).PerTurnDrift(cur, s.cfg.DriftRate); err != nil {
		return state, TurnReport{}, fmt.Errorf("turn %d: drift: %w", state.Turn, err)
	}

	cur = cur.Clone()
	cur.Turn++
	cur = s.revealer.Reveal(cur)

	report.Cooldowns = cooldowns.Prune(cur.Turn)
	s.logReport(report, cur)
	return cur, report, nil
}

// aiTowns lists AI town ids in state order. The list is fixed at the start
// of the turn.
func aiTowns(s world.GameState) []string {
	var ids []string
	for _, t := range s.Towns {
		if t.IsAI() {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func (s *Simulation) logReport(r TurnReport, next world.GameState) {
	s.log.Info("turn report",
		"turn", r.Turn,
		"trades", len(r.Trades),
		"rejections", len(r.Rejections),
		"skipped", r.Skipped(),
		"treasury", next.TotalTreasury(),
	)
	for _, tr := range r.Trades {
		s.log.Debug("ai trade",
			slog.String("town", tr.TownID),
			slog.String("buyer", tr.Trade.Buyer()),
			slog.String("seller", tr.Trade.Seller()),
			slog.String("good", tr.Trade.Good.String()),
			slog.Int("qty", tr.Trade.Qty),
			slog.Int("unit_price", tr.UnitPriceApplied),
		)
	}
}
