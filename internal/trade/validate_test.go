package trade

import (
	"errors"
	"reflect"
	"testing"

	"github.com/talgya/trade-towns/internal/world"
)

func twoTowns() world.GameState {
	return world.NewGameState("seed", []world.Town{
		{
			ID: "a", Name: "Alder",
			Resources: world.PerGood[int]{100, 20, 5},
			Prices:    world.PerGood[int]{10, 12, 20},
			Treasury:  300,
		},
		{
			ID: "b", Name: "Birch",
			Resources: world.PerGood[int]{30, 60, 40},
			Prices:    world.PerGood[int]{15, 11, 25},
			Treasury:  1000,
		},
	}, world.DefaultCatalog())
}

func TestValidateErrorPaths(t *testing.T) {
	cases := []struct {
		name string
		req  world.TradeRequest
		path string
	}{
		{"unknown origin", world.TradeRequest{OriginTownID: "x", DestinationTownID: "b", GoodID: "fish", Quantity: 1, Side: world.SideSell, PricePerUnit: 15}, "originTownId"},
		{"unknown destination", world.TradeRequest{OriginTownID: "a", DestinationTownID: "x", GoodID: "fish", Quantity: 1, Side: world.SideSell, PricePerUnit: 15}, "destinationTownId"},
		{"self trade", world.TradeRequest{OriginTownID: "a", DestinationTownID: "a", GoodID: "fish", Quantity: 1, Side: world.SideSell, PricePerUnit: 10}, "destinationTownId"},
		{"unknown good", world.TradeRequest{OriginTownID: "a", DestinationTownID: "b", GoodID: "silk", Quantity: 1, Side: world.SideSell, PricePerUnit: 15}, "goodId"},
		{"zero quantity", world.TradeRequest{OriginTownID: "a", DestinationTownID: "b", GoodID: "fish", Quantity: 0, Side: world.SideSell, PricePerUnit: 15}, "quantity"},
		{"negative price", world.TradeRequest{OriginTownID: "a", DestinationTownID: "b", GoodID: "fish", Quantity: 1, Side: world.SideSell, PricePerUnit: -1}, "pricePerUnit"},
		{"sell without stock", world.TradeRequest{OriginTownID: "a", DestinationTownID: "b", GoodID: "ore", Quantity: 6, Side: world.SideSell, PricePerUnit: 25}, "towns[0].resources.ore"},
		{"sell buyer broke", world.TradeRequest{OriginTownID: "b", DestinationTownID: "a", GoodID: "timber", Quantity: 50, Side: world.SideSell, PricePerUnit: 12}, "towns[0].treasury"},
		{"buy without stock", world.TradeRequest{OriginTownID: "a", DestinationTownID: "b", GoodID: "fish", Quantity: 31, Side: world.SideBuy, PricePerUnit: 15}, "towns[1].resources.fish"},
		{"buy origin broke", world.TradeRequest{OriginTownID: "a", DestinationTownID: "b", GoodID: "ore", Quantity: 20, Side: world.SideBuy, PricePerUnit: 25}, "towns[0].treasury"},
		{"sell price mismatch", world.TradeRequest{OriginTownID: "a", DestinationTownID: "b", GoodID: "fish", Quantity: 5, Side: world.SideSell, PricePerUnit: 10}, "pricePerUnit"},
		{"bad side", world.TradeRequest{OriginTownID: "a", DestinationTownID: "b", GoodID: "fish", Quantity: 5, Side: "swap", PricePerUnit: 15}, "side"},
		{"bad side checked after price", world.TradeRequest{OriginTownID: "a", DestinationTownID: "b", GoodID: "fish", Quantity: 5, Side: "swap", PricePerUnit: 14}, "pricePerUnit"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Validate(twoTowns(), c.req)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Path != c.path {
				t.Fatalf("expected path %q, got %q (%s)", c.path, ve.Path, ve.Message)
			}
		})
	}
}

func TestValidateFirstFailureWins(t *testing.T) {
	// Unknown origin and zero quantity: origin is checked first.
	req := world.TradeRequest{OriginTownID: "nope", DestinationTownID: "b", GoodID: "silk", Quantity: 0, Side: "x", PricePerUnit: -3}
	_, err := Validate(twoTowns(), req)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Path != "originTownId" {
		t.Fatalf("expected originTownId failure first, got %v", err)
	}
}

func TestValidateAccepts(t *testing.T) {
	state := twoTowns()
	before := state.Clone()

	sell := world.TradeRequest{OriginTownID: "a", DestinationTownID: "b", GoodID: "fish", Quantity: 10, Side: world.SideSell, PricePerUnit: 15}
	vt, err := Validate(state, sell)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := world.ValidatedTrade{FromID: "a", ToID: "b", Good: world.GoodFish, Qty: 10, UnitPrice: 15, Side: world.SideSell}
	if vt != want {
		t.Fatalf("got %+v, want %+v", vt, want)
	}
	if vt.Buyer() != "b" || vt.Seller() != "a" {
		t.Fatalf("sell side: buyer %s seller %s", vt.Buyer(), vt.Seller())
	}

	buy := world.TradeRequest{OriginTownID: "a", DestinationTownID: "b", GoodID: "timber", Quantity: 20, Side: world.SideBuy, PricePerUnit: 11}
	vt, err = Validate(state, buy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vt.Buyer() != "a" || vt.Seller() != "b" {
		t.Fatalf("buy side: buyer %s seller %s", vt.Buyer(), vt.Seller())
	}

	if !reflect.DeepEqual(state, before) {
		t.Fatalf("Validate mutated its input")
	}
}

func TestValidateZeroPriceAllowed(t *testing.T) {
	state := twoTowns()
	state.Towns[1].Prices[world.GoodOre] = 0
	req := world.TradeRequest{OriginTownID: "a", DestinationTownID: "b", GoodID: "ore", Quantity: 5, Side: world.SideSell, PricePerUnit: 0}
	if _, err := Validate(state, req); err != nil {
		t.Fatalf("zero price trade rejected: %v", err)
	}
}
