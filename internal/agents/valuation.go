package agents

import "github.com/talgya/trade-towns/internal/world"

// Scored pairs a quote with its valuation.
type Scored struct {
	Quote world.Quote `json:"quote"`
	Score float64     `json:"score"`
}

// Score values q as spread × quantity plus the good's prosperity and
// military effects, each scaled by its weight.
func Score(q world.Quote, w Weights, goods world.Catalog) float64 {
	fx := goods[q.Good].Effects
	return w.PriceSpread*float64(q.Spread())*float64(q.Quantity) +
		w.Prosperity*float64(fx.ProsperityDelta) +
		w.Military*float64(fx.MilitaryDelta)
}

// ScoreAll scores quotes in order.
func ScoreAll(quotes []world.Quote, w Weights, goods world.Catalog) []Scored {
	out := make([]Scored, len(quotes))
	for i, q := range quotes {
		out[i] = Scored{Quote: q, Score: Score(q, w, goods)}
	}
	return out
}
