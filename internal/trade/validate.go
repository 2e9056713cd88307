package trade

import (
	"fmt"
	"math"

	"github.com/talgya/trade-towns/internal/world"
)

// Validate checks req against state and returns the normalized trade.
//
// Checks run in a fixed order and the first failure wins: origin town,
// destination town, distinct towns, good, quantity, price sign, holdings for
// the side, price against the destination's quote, and finally the side.
// Validate never modifies state.
func Validate(state world.GameState, req world.TradeRequest) (world.ValidatedTrade, error) {
	oi := state.TownIndex(req.OriginTownID)
	if oi < 0 {
		return world.ValidatedTrade{}, invalid("originTownId", "unknown town %q", req.OriginTownID)
	}
	di := state.TownIndex(req.DestinationTownID)
	if di < 0 {
		return world.ValidatedTrade{}, invalid("destinationTownId", "unknown town %q", req.DestinationTownID)
	}
	if oi == di {
		return world.ValidatedTrade{}, invalid("destinationTownId", "town %q cannot trade with itself", req.DestinationTownID)
	}

	// Every town carries every good, so a known good exists in both.
	good, ok := world.ParseGood(req.GoodID)
	if !ok {
		return world.ValidatedTrade{}, invalid("goodId", "unknown good %q", req.GoodID)
	}

	if req.Quantity <= 0 {
		return world.ValidatedTrade{}, invalid("quantity", "must be a positive integer, got %d", req.Quantity)
	}
	if req.PricePerUnit < 0 {
		return world.ValidatedTrade{}, invalid("pricePerUnit", "must not be negative, got %d", req.PricePerUnit)
	}

	origin, dest := state.Towns[oi], state.Towns[di]
	switch req.Side {
	case world.SideSell:
		if err := checkStock(origin, oi, good, req.Quantity); err != nil {
			return world.ValidatedTrade{}, err
		}
		if err := checkFunds(dest, di, req.Quantity, req.PricePerUnit); err != nil {
			return world.ValidatedTrade{}, err
		}
	case world.SideBuy:
		if err := checkStock(dest, di, good, req.Quantity); err != nil {
			return world.ValidatedTrade{}, err
		}
		if err := checkFunds(origin, oi, req.Quantity, req.PricePerUnit); err != nil {
			return world.ValidatedTrade{}, err
		}
	}

	if quoted := dest.Prices[good]; req.PricePerUnit != quoted {
		return world.ValidatedTrade{}, invalid("pricePerUnit",
			"price %d does not match %s's quoted %s price %d", req.PricePerUnit, dest.ID, good, quoted)
	}

	if !req.Side.Valid() {
		return world.ValidatedTrade{}, invalid("side", "must be %q or %q, got %q", world.SideBuy, world.SideSell, req.Side)
	}

	return world.ValidatedTrade{
		FromID:    origin.ID,
		ToID:      dest.ID,
		Good:      good,
		Qty:       req.Quantity,
		UnitPrice: req.PricePerUnit,
		Side:      req.Side,
	}, nil
}

func checkStock(t world.Town, idx int, good world.GoodID, qty int) error {
	if have := t.Resources[good]; have < qty {
		return invalid(fmt.Sprintf("towns[%d].resources.%s", idx, good),
			"%s holds %d %s, needs %d", t.ID, have, good, qty)
	}
	return nil
}

func checkFunds(t world.Town, idx, qty, price int) error {
	path := fmt.Sprintf("towns[%d].treasury", idx)
	if price > 0 && qty > math.MaxInt/price {
		return invalid(path, "total cost overflows")
	}
	if cost := qty * price; t.Treasury < cost {
		return invalid(path, "%s has %d in treasury, needs %d", t.ID, t.Treasury, cost)
	}
	return nil
}
