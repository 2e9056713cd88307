package agents

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/talgya/trade-towns/internal/trade"
	"github.com/talgya/trade-towns/internal/world"
)

func market() world.GameState {
	return world.NewGameState("seed", []world.Town{
		{ID: "A", Resources: world.PerGood[int]{100, 0, 0}, Prices: world.PerGood[int]{10, 12, 20}, Treasury: 0},
		{ID: "B", Resources: world.PerGood[int]{0, 0, 0}, Prices: world.PerGood[int]{15, 12, 20}, Treasury: 1000},
	}, world.DefaultCatalog())
}

func TestCandidateQuantityBoundedByCap(t *testing.T) {
	quotes := GenerateCandidates(Snapshot(market()), 50)
	if len(quotes) != 1 {
		t.Fatalf("expected one candidate, got %d: %+v", len(quotes), quotes)
	}
	q := quotes[0]
	if q.SellerID != "A" || q.BuyerID != "B" || q.Good != world.GoodFish {
		t.Fatalf("unexpected candidate %+v", q)
	}
	if q.Quantity != 50 {
		t.Fatalf("expected quantity 50, got %d", q.Quantity)
	}
}

func TestCandidateQuantityBoundedByStockAndFunds(t *testing.T) {
	s := market()
	s.Towns[0].Resources[world.GoodFish] = 7
	if q := GenerateCandidates(Snapshot(s), 50); q[0].Quantity != 7 {
		t.Fatalf("expected stock bound 7, got %d", q[0].Quantity)
	}

	s = market()
	s.Towns[1].Treasury = 45
	if q := GenerateCandidates(Snapshot(s), 50); q[0].Quantity != 4 {
		t.Fatalf("expected funds bound floor(45/10) = 4, got %d", q[0].Quantity)
	}

	s.Towns[1].Treasury = 9
	if q := GenerateCandidates(Snapshot(s), 50); len(q) != 0 {
		t.Fatalf("expected no candidate when buyer cannot afford one unit, got %+v", q)
	}

	s = market()
	if q := GenerateCandidates(Snapshot(s), 0); q[0].Quantity != 100 {
		t.Fatalf("expected uncapped quantity 100, got %d", q[0].Quantity)
	}
}

func TestCandidateOrder(t *testing.T) {
	s := world.NewGameState("seed", []world.Town{
		{ID: "x", Resources: world.PerGood[int]{10, 10, 10}, Prices: world.PerGood[int]{5, 5, 5}, Treasury: 1000},
		{ID: "y", Resources: world.PerGood[int]{10, 10, 10}, Prices: world.PerGood[int]{6, 4, 6}, Treasury: 1000},
		{ID: "z", Resources: world.PerGood[int]{10, 10, 10}, Prices: world.PerGood[int]{7, 7, 7}, Treasury: 1000},
	}, world.DefaultCatalog())

	var got []string
	for _, q := range GenerateCandidates(Snapshot(s), 0) {
		got = append(got, q.SellerID+">"+q.BuyerID+":"+q.Good.String())
	}
	want := []string{
		"x>y:fish", "x>y:ore", "x>z:fish", "x>z:timber", "x>z:ore",
		"y>x:timber", "y>z:fish", "y>z:timber", "y>z:ore",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("candidate order\n got %v\nwant %v", got, want)
	}
}

func TestScore(t *testing.T) {
	q := world.Quote{Good: world.GoodOre, UnitSellPrice: 10, UnitBuyPrice: 14, Quantity: 5}
	w := Weights{PriceSpread: 2, Prosperity: 100, Military: 3}
	// 2*4*5 + 100*0 + 3*2
	if got := Score(q, w, world.DefaultCatalog()); got != 46 {
		t.Fatalf("expected score 46, got %v", got)
	}
}

func TestSelectGreedyFirstMaxWins(t *testing.T) {
	scored := []Scored{{Score: 1}, {Score: 5}, {Score: 5}, {Score: 2}}
	i, ok := Select(scored, ModeGreedy, "seed", "A")
	if !ok || i != 1 {
		t.Fatalf("expected index 1, got %d (%v)", i, ok)
	}
	if _, ok := Select(nil, ModeGreedy, "seed", "A"); ok {
		t.Fatalf("expected no selection from empty input")
	}
}

func TestSelectRandomIsSeeded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "n")
		seed := rapid.String().Draw(t, "seed")
		town := rapid.StringMatching(`[a-z]{1,6}`).Draw(t, "town")
		scored := make([]Scored, n)

		i, ok := Select(scored, ModeRandom, seed, town)
		j, _ := Select(scored, ModeRandom, seed, town)
		if !ok || i != j {
			t.Fatalf("random selection not reproducible: %d vs %d", i, j)
		}
		if i < 0 || i >= n {
			t.Fatalf("index %d outside [0, %d)", i, n)
		}
	})
}

func TestDecideBuildsBuyRequestAtSellerQuote(t *testing.T) {
	state := market()
	before := state.Clone()
	p, _ := Archetype(ArchTrader)

	d := Decide(state, "B", p, world.DefaultCatalog(), state.RNGSeed, nil)
	if d.Status != StatusTraded {
		t.Fatalf("expected a trade, got %+v", d)
	}
	want := world.TradeRequest{OriginTownID: "B", DestinationTownID: "A", GoodID: "fish", Quantity: 50, Side: world.SideBuy, PricePerUnit: 10}
	if d.Request != want {
		t.Fatalf("request\n got %+v\nwant %+v", d.Request, want)
	}
	if d.Trace.CandidateCount != 1 || d.Trace.Chosen == nil || d.Trace.TownID != "B" {
		t.Fatalf("unexpected trace %+v", d.Trace)
	}
	if d.Trace.Reason != ReasonGreedyMax || d.Reason != "" {
		t.Fatalf("traded decision reason %q, trace reason %q", d.Reason, d.Trace.Reason)
	}
	if !reflect.DeepEqual(state, before) {
		t.Fatalf("Decide mutated its input")
	}

	// The request passes the validator unchanged.
	if _, err := trade.Validate(state, d.Request); err != nil {
		t.Fatalf("AI request rejected: %v", err)
	}

	// The seller sees the same quote and also proposes it as the buyer's request.
	d = Decide(state, "A", p, world.DefaultCatalog(), state.RNGSeed, nil)
	if d.Status != StatusTraded || d.Request.OriginTownID != "B" {
		t.Fatalf("seller-side decision: %+v", d)
	}

	gambler, _ := Archetype(ArchGambler)
	d = Decide(state, "B", gambler, world.DefaultCatalog(), state.RNGSeed, nil)
	if d.Status != StatusTraded || d.Trace.Reason != ReasonRandomIndex {
		t.Fatalf("random-mode trace: %+v", d.Trace)
	}
}

func TestDecideSkips(t *testing.T) {
	state := market()
	state.Towns[1].Prices[world.GoodFish] = 10
	p, _ := Archetype(ArchTrader)

	d := Decide(state, "B", p, world.DefaultCatalog(), "seed", nil)
	if d.Status != StatusSkipped || d.Reason != ReasonNoCandidate {
		t.Fatalf("expected no-candidate skip, got %+v", d)
	}
	if d.Trace.Reason != ReasonNoCandidate || d.Trace.TownID != "B" || d.Trace.Mode != ModeGreedy {
		t.Fatalf("skip trace incomplete: %+v", d.Trace)
	}

	d = Decide(state, "nobody", p, world.DefaultCatalog(), "seed", nil)
	if d.Status != StatusSkipped || d.Reason != ReasonUnknownTown {
		t.Fatalf("expected unknown-town skip, got %+v", d)
	}
}

func TestDecideCooldownAppliesToBuyer(t *testing.T) {
	state := market()
	state.Turn = 4
	p, _ := Archetype(ArchTrader)

	blocked := Cooldowns{}.With("B", world.GoodFish, 5)
	d := Decide(state, "B", p, world.DefaultCatalog(), "seed", blocked)
	if d.Status != StatusSkipped || d.Trace.CooledDown != 1 {
		t.Fatalf("expected cooldown to suppress the buy, got %+v", d)
	}

	// The seller's own cooldown does not matter.
	sellerBlocked := Cooldowns{}.With("A", world.GoodFish, 5)
	if d := Decide(state, "B", p, world.DefaultCatalog(), "seed", sellerBlocked); d.Status != StatusTraded {
		t.Fatalf("seller cooldown suppressed the trade: %+v", d)
	}

	// Elapsed once turn reaches the until value.
	state.Turn = 5
	if d := Decide(state, "B", p, world.DefaultCatalog(), "seed", blocked); d.Status != StatusTraded {
		t.Fatalf("expired cooldown still blocking: %+v", d)
	}
}

func TestCooldownsAreCopied(t *testing.T) {
	base := Cooldowns{"A:fish": 3}
	next := base.With("B", world.GoodOre, 9)
	if len(base) != 1 || next["B:ore"] != 9 || next["A:fish"] != 3 {
		t.Fatalf("With changed its receiver or lost entries: %v %v", base, next)
	}
	pruned := next.Prune(3)
	if !reflect.DeepEqual(pruned.Keys(), []string{"B:ore"}) {
		t.Fatalf("unexpected prune result %v", pruned.Keys())
	}
}

func TestProfiles(t *testing.T) {
	for _, name := range ArchetypeNames() {
		p, ok := Archetype(name)
		if !ok || p.ID != name {
			t.Fatalf("archetype %s missing", name)
		}
		if err := p.Validate(); err != nil {
			t.Fatalf("archetype %s invalid: %v", name, err)
		}
	}
	w, _ := Archetype(ArchWarlord)
	if w.QuantityCap() != 25 {
		t.Fatalf("expected the tighter cap 25, got %d", w.QuantityCap())
	}
	if (Profile{}).QuantityCap() != 0 {
		t.Fatalf("expected uncapped profile")
	}
	if err := (Profile{ID: "x", Mode: "chaotic"}).Validate(); err == nil {
		t.Fatalf("unknown mode accepted")
	}
}
