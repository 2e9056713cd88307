package trade

import (
	"fmt"

	"github.com/talgya/trade-towns/internal/world"
)

// TownSnapshot captures the trade-relevant fields of a town.
type TownSnapshot struct {
	Resources     world.PerGood[int] `json:"resources"`
	Treasury      int                `json:"treasury"`
	ProsperityRaw int                `json:"prosperityRaw"`
	MilitaryRaw   int                `json:"militaryRaw"`
}

func snapshotOf(t world.Town) TownSnapshot {
	return TownSnapshot{
		Resources:     t.Resources,
		Treasury:      t.Treasury,
		ProsperityRaw: t.ProsperityRaw,
		MilitaryRaw:   t.MilitaryRaw,
	}
}

// TownDelta is the before/after view of one town across a trade.
type TownDelta struct {
	TownID string       `json:"townId"`
	Before TownSnapshot `json:"before"`
	After  TownSnapshot `json:"after"`
}

// Execution is the outcome of applying a validated trade.
type Execution struct {
	State            world.GameState `json:"-"`
	Deltas           [2]TownDelta    `json:"deltas"` // Origin first, then destination
	UnitPriceApplied int             `json:"unitPriceApplied"`
}

// Execute applies vt to state. Goods and currency move between the two
// towns according to the side; both towns gain the good's prosperity effect
// and only the buyer gains its military effect. Written values pass through
// limits (DefaultLimits when nil). state is never modified.
func Execute(state world.GameState, vt world.ValidatedTrade, goods world.Catalog, limits *Limits) (Execution, error) {
	lim := DefaultLimits()
	if limits != nil {
		lim = *limits
	}

	fi := state.TownIndex(vt.FromID)
	ti := state.TownIndex(vt.ToID)
	if fi < 0 || ti < 0 {
		missing := vt.FromID
		if fi >= 0 {
			missing = vt.ToID
		}
		return Execution{}, &ExecutionError{
			Message: "validated trade references a missing town",
			Cause:   fmt.Errorf("town %q not in state", missing),
		}
	}
	if fi == ti || !vt.Good.Valid() || vt.Qty <= 0 || vt.UnitPrice < 0 || !vt.Side.Valid() {
		return Execution{}, &ExecutionError{Message: fmt.Sprintf("malformed validated trade %+v", vt)}
	}

	out := state.Clone()
	buyer, seller := &out.Towns[ti], &out.Towns[fi]
	if vt.Side == world.SideBuy {
		buyer, seller = seller, buyer
	}
	before := [2]TownSnapshot{snapshotOf(out.Towns[fi]), snapshotOf(out.Towns[ti])}

	total := vt.Total()
	effects := goods[vt.Good].Effects

	seller.Resources[vt.Good] = LimitResource(seller.Resources[vt.Good]-vt.Qty, lim.MaxResource)
	buyer.Resources[vt.Good] = LimitResource(buyer.Resources[vt.Good]+vt.Qty, lim.MaxResource)
	seller.Treasury = LimitTreasury(seller.Treasury+total, lim.MaxTreasury)
	buyer.Treasury = LimitTreasury(buyer.Treasury-total, lim.MaxTreasury)

	seller.ProsperityRaw += effects.ProsperityDelta
	buyer.ProsperityRaw += effects.ProsperityDelta
	buyer.MilitaryRaw += effects.MilitaryDelta

	return Execution{
		State: out,
		Deltas: [2]TownDelta{
			{TownID: vt.FromID, Before: before[0], After: snapshotOf(out.Towns[fi])},
			{TownID: vt.ToID, Before: before[1], After: snapshotOf(out.Towns[ti])},
		},
		UnitPriceApplied: vt.UnitPrice,
	}, nil
}
