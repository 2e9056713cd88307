// Package economy provides the price engine: the supply/demand price curve,
// exponential smoothing, the prosperity/scale multiplier, and the pricing
// service that composes them after trades and between turns.
package economy

import (
	"math"
)

// Default price bounds applied when a curve leaves them unset.
const (
	DefaultMinPrice = 1
	DefaultMaxPrice = 9999
)

// PriceCurveConfig shapes the equilibrium price of one good.
type PriceCurveConfig struct {
	BasePrice   int     `json:"basePrice" yaml:"base_price"`     // Price when stock equals TargetStock
	TargetStock int     `json:"targetStock" yaml:"target_stock"` // Equilibrium stock
	Elasticity  float64 `json:"elasticity" yaml:"elasticity"`    // > 0: scarcity raises price
	MinPrice    int     `json:"minPrice,omitempty" yaml:"min_price"`
	MaxPrice    int     `json:"maxPrice,omitempty" yaml:"max_price"`
}

// Bounds returns the effective [min, max] price range.
func (c PriceCurveConfig) Bounds() (int, int) {
	lo, hi := c.MinPrice, c.MaxPrice
	if lo <= 0 {
		lo = DefaultMinPrice
	}
	if hi <= 0 {
		hi = DefaultMaxPrice
	}
	return lo, hi
}

// NextPrice returns the equilibrium price for the given stock:
//
//	clamp(round(base * exp(elasticity * ln(target / max(1, stock)))), min, max)
//
// currentPrice is accepted for call-site symmetry with the smoothing step but
// never influences the result.
func NextPrice(stock, currentPrice int, cfg PriceCurveConfig) int {
	_ = currentPrice
	lo, hi := cfg.Bounds()

	s := stock
	if s < 1 {
		s = 1
	}
	if cfg.TargetStock == s {
		return clampInt(cfg.BasePrice, lo, hi)
	}

	ratio := float64(cfg.TargetStock) / float64(s)
	p := float64(cfg.BasePrice) * math.Exp(cfg.Elasticity*math.Log(ratio))

	// Clamp before converting: int(±Inf) and int(NaN) are undefined.
	return clampFloat(p, lo, hi)
}

func clampFloat(p float64, lo, hi int) int {
	if math.IsNaN(p) {
		return lo
	}
	p = math.Round(p)
	if p < float64(lo) {
		return lo
	}
	if p > float64(hi) {
		return hi
	}
	return int(p)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
