// Package agents decides trades for AI-controlled towns. Every step is a
// pure function of the game state, the town's profile, and the game seed.
package agents

import "github.com/talgya/trade-towns/internal/world"

// Status is the outcome of one decision.
type Status string

const (
	StatusTraded  Status = "traded"
	StatusSkipped Status = "skipped"
)

// Trace reasons. The first two explain a skip, the rest name how the
// chosen quote was picked.
const (
	ReasonNoCandidate = "no-candidate"
	ReasonUnknownTown = "unknown-town"
	ReasonGreedyMax   = "greedy-max"
	ReasonRandomIndex = "random-index"
)

// Trace records how a decision was reached. It is produced whether or not
// the town trades.
type Trace struct {
	TownID         string       `json:"townId"`
	Mode           Mode         `json:"mode"`
	CandidateCount int          `json:"candidateCount"`
	CooledDown     int          `json:"cooledDown"` // Candidates suppressed by cooldowns
	Chosen         *world.Quote `json:"chosen,omitempty"`
	Score          float64      `json:"score"`
	Reason         string       `json:"reason,omitempty"`
}

// Decision is an AI town's proposal for this turn. Request is only set
// when Status is StatusTraded.
type Decision struct {
	Status  Status             `json:"status"`
	Reason  string             `json:"reason,omitempty"`
	Request world.TradeRequest `json:"request"`
	Quote   world.Quote        `json:"quote"`
	Score   float64            `json:"score"`
	Trace   Trace              `json:"trace"`
}

// Decide proposes at most one trade for townID. Only quotes where townID is
// the buyer or the seller are considered, and quotes whose buyer is cooling
// down on the good at the current turn are dropped. The chosen quote
// becomes a buy request from the buyer at the seller's quoted price.
func Decide(s world.GameState, townID string, p Profile, goods world.Catalog, seed string, cooldowns Cooldowns) Decision {
	tr := Trace{TownID: townID, Mode: p.Mode}
	if _, ok := s.Town(townID); !ok {
		return skip(tr, ReasonUnknownTown)
	}

	var mine []world.Quote
	for _, q := range GenerateCandidates(Snapshot(s), p.QuantityCap()) {
		if q.SellerID != townID && q.BuyerID != townID {
			continue
		}
		if cooldowns.Blocked(q.BuyerID, q.Good, s.Turn) {
			tr.CooledDown++
			continue
		}
		mine = append(mine, q)
	}
	tr.CandidateCount = len(mine)

	scored := ScoreAll(mine, p.Weights, goods)
	i, ok := Select(scored, p.Mode, seed, townID)
	if !ok {
		return skip(tr, ReasonNoCandidate)
	}

	chosen := scored[i]
	tr.Chosen = &chosen.Quote
	tr.Score = chosen.Score
	tr.Reason = ReasonGreedyMax
	if p.Mode == ModeRandom {
		tr.Reason = ReasonRandomIndex
	}
	return Decision{
		Status:  StatusTraded,
		Request: RequestFor(chosen.Quote),
		Quote:   chosen.Quote,
		Score:   chosen.Score,
		Trace:   tr,
	}
}

// RequestFor converts q into the trade request the validator expects: the
// buyer initiates a buy and pays the seller's quote.
func RequestFor(q world.Quote) world.TradeRequest {
	return world.TradeRequest{
		OriginTownID:      q.BuyerID,
		DestinationTownID: q.SellerID,
		GoodID:            q.Good.String(),
		Quantity:          q.Quantity,
		Side:              world.SideBuy,
		PricePerUnit:      q.UnitSellPrice,
	}
}

func skip(tr Trace, reason string) Decision {
	tr.Reason = reason
	return Decision{Status: StatusSkipped, Reason: reason, Trace: tr}
}
