package economy

import (
	"fmt"
	"math"

	"github.com/talgya/trade-towns/internal/world"
)

// PriceTable holds the price curve of every good.
type PriceTable = world.PerGood[PriceCurveConfig]

// PriceMath holds the parameters shared by every repricing step.
type PriceMath struct {
	Alpha       float64         `json:"alpha" yaml:"alpha"`             // Smoothing factor in (0, 1]
	Multipliers TierMultipliers `json:"multipliers" yaml:"multipliers"` // Indexed by prosperity tier
	SizeFactor  float64         `json:"sizeFactor" yaml:"size_factor"`  // Market scale factor
}

// DefaultPriceMath returns alpha 0.5, the default tier table, and size 1.
func DefaultPriceMath() PriceMath {
	return PriceMath{
		Alpha:       0.5,
		Multipliers: DefaultTierMultipliers(),
		SizeFactor:  1,
	}
}

// ConfigError reports a malformed price configuration. It is fatal at
// startup: the simulation refuses to run with it.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("price config %s: %s", e.Path, e.Message)
}

// ValidateTable checks every curve in t.
func ValidateTable(t PriceTable) error {
	for _, g := range world.AllGoods {
		c := t[g]
		path := "prices." + g.String()
		if c.BasePrice < 1 {
			return &ConfigError{Path: path + ".basePrice", Message: "must be at least 1"}
		}
		if c.TargetStock < 1 {
			return &ConfigError{Path: path + ".targetStock", Message: "must be at least 1"}
		}
		if math.IsNaN(c.Elasticity) || math.IsInf(c.Elasticity, 0) {
			return &ConfigError{Path: path + ".elasticity", Message: "must be finite"}
		}
		if c.MinPrice < 0 || c.MaxPrice < 0 {
			return &ConfigError{Path: path, Message: "price bounds must not be negative"}
		}
		lo, hi := c.Bounds()
		if lo > hi {
			return &ConfigError{Path: path + ".minPrice", Message: fmt.Sprintf("min %d exceeds max %d", lo, hi)}
		}
	}
	return nil
}

// Validate checks the smoothing and multiplier parameters.
func (m PriceMath) Validate() error {
	if !(m.Alpha > 0 && m.Alpha <= 1) {
		return &ConfigError{Path: "priceMath.alpha", Message: fmt.Sprintf("%v outside (0, 1]", m.Alpha)}
	}
	for i, f := range m.Multipliers {
		if !(f > 0) || math.IsInf(f, 0) {
			return &ConfigError{
				Path:    fmt.Sprintf("priceMath.multipliers.%s", world.TierStruggling+world.ProsperityTier(i)),
				Message: "must be positive and finite",
			}
		}
	}
	if !(m.SizeFactor > 0) || math.IsInf(m.SizeFactor, 0) {
		return &ConfigError{Path: "priceMath.sizeFactor", Message: "must be positive and finite"}
	}
	return nil
}

// ValidateDriftRate rejects drift rates outside [0, 1].
func ValidateDriftRate(rate float64) error {
	if !(rate >= 0 && rate <= 1) {
		return &ConfigError{Path: "driftRate", Message: fmt.Sprintf("%v outside [0, 1]", rate)}
	}
	return nil
}

// Service reprices towns. It is a value with no mutable state; Trace, when
// set, observes each repricing and cannot affect it.
type Service struct {
	Table PriceTable
	Math  PriceMath
	Trace TraceFunc
}

// AfterTrade reprices the traded good in the two towns involved, using their
// post-trade stock. Other goods and towns are untouched.
func (s Service) AfterTrade(state world.GameState, vt world.ValidatedTrade) world.GameState {
	out := state.Clone()
	for _, id := range [2]string{vt.FromID, vt.ToID} {
		i := out.TownIndex(id)
		if i < 0 {
			continue
		}
		t := &out.Towns[i]
		t.Prices[vt.Good] = s.reprice(*t, vt.Good, 0, CauseTrade)
	}
	return out
}

// PerTurnDrift reprices every good in every town, pulling prices toward the
// curve by driftRate of the gap left after smoothing.
func (s Service) PerTurnDrift(state world.GameState, driftRate float64) (world.GameState, error) {
	if err := ValidateDriftRate(driftRate); err != nil {
		return state, err
	}
	out := state.Clone()
	for i := range out.Towns {
		t := &out.Towns[i]
		for _, g := range world.AllGoods {
			t.Prices[g] = s.reprice(*t, g, driftRate, CauseDrift)
		}
	}
	return out, nil
}

// reprice computes the next quoted price of good g in town t. A zero drift
// rate skips the drift step.
func (s Service) reprice(t world.Town, g world.GoodID, drift float64, cause Cause) int {
	cfg := s.Table[g]
	lo, hi := cfg.Bounds()
	old := t.Prices[g]
	stock := t.Resources[g]

	curve := NextPrice(stock, old, cfg)
	smoothed := Smooth(old, curve, s.Math.Alpha)
	moved := smoothed
	if drift > 0 {
		moved = Smooth(smoothed, curve, drift)
	}
	tier := t.Tiers.Prosperity
	final := ApplyProsperityAndScale(moved, tier, s.Math.Multipliers, s.Math.SizeFactor, lo, hi)

	if s.Trace != nil {
		s.Trace(PriceTrace{
			TownID:           t.ID,
			Good:             g,
			OldPrice:         old,
			CurvePrice:       curve,
			SmoothedPrice:    smoothed,
			FinalPrice:       final,
			Stock:            stock,
			TargetStock:      cfg.TargetStock,
			Elasticity:       cfg.Elasticity,
			ProsperityTier:   tier,
			ProsperityFactor: s.Math.Multipliers.Factor(tier),
			Cause:            cause,
		})
	}
	return final
}

// DefaultPriceTable returns the stock price curves.
func DefaultPriceTable() PriceTable {
	return PriceTable{
		world.GoodFish:   {BasePrice: 10, TargetStock: 100, Elasticity: 1.0},
		world.GoodTimber: {BasePrice: 12, TargetStock: 100, Elasticity: 0.8},
		world.GoodOre:    {BasePrice: 20, TargetStock: 80, Elasticity: 1.2},
	}
}
