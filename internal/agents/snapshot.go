package agents

import "github.com/talgya/trade-towns/internal/world"

// TownView is the part of a town the AI may look at.
type TownView struct {
	ID       string             `json:"id"`
	Prices   world.PerGood[int] `json:"prices"`
	Stock    world.PerGood[int] `json:"stock"`
	Treasury int                `json:"treasury"`
}

// MarketSnapshot is the AI's read-only view of every town, in state order.
type MarketSnapshot struct {
	Towns []TownView `json:"towns"`
}

// Snapshot projects s into a MarketSnapshot.
func Snapshot(s world.GameState) MarketSnapshot {
	views := make([]TownView, len(s.Towns))
	for i, t := range s.Towns {
		views[i] = TownView{ID: t.ID, Prices: t.Prices, Stock: t.Resources, Treasury: t.Treasury}
	}
	return MarketSnapshot{Towns: views}
}
