package trade

import (
	"github.com/talgya/trade-towns/internal/economy"
	"github.com/talgya/trade-towns/internal/world"
)

// Result is the outcome of a performed trade.
type Result struct {
	State            world.GameState      `json:"-"`
	Trade            world.ValidatedTrade `json:"trade"`
	Deltas           [2]TownDelta         `json:"deltas"`
	UnitPriceApplied int                  `json:"unitPriceApplied"`
}

// Service runs validate → execute → post-trade pricing as one unit.
type Service struct {
	Pricing economy.Service
	Goods   world.Catalog
	Limits  *Limits // nil means DefaultLimits
}

// Perform validates and applies req. On any error the returned state is the
// zero value and the caller's state is untouched.
func (s Service) Perform(state world.GameState, req world.TradeRequest) (Result, error) {
	vt, err := Validate(state, req)
	if err != nil {
		return Result{}, err
	}
	exec, err := Execute(state, vt, s.Goods, s.Limits)
	if err != nil {
		return Result{}, err
	}
	return Result{
		State:            s.Pricing.AfterTrade(exec.State, vt),
		Trade:            vt,
		Deltas:           exec.Deltas,
		UnitPriceApplied: exec.UnitPriceApplied,
	}, nil
}

// PerformTrade is Perform with an ad hoc service built from its arguments.
func PerformTrade(state world.GameState, req world.TradeRequest, table economy.PriceTable, pm economy.PriceMath, goods world.Catalog) (Result, error) {
	svc := Service{
		Pricing: economy.Service{Table: table, Math: pm},
		Goods:   goods,
	}
	return svc.Perform(state, req)
}
