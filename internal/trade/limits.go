package trade

import (
	"golang.org/x/exp/constraints"

	"github.com/talgya/trade-towns/internal/economy"
)

// Limits bound the values a trade may write back into a town.
type Limits struct {
	MaxResource int `json:"maxResource" yaml:"max_resource"`
	MaxTreasury int `json:"maxTreasury" yaml:"max_treasury"`
	MinPrice    int `json:"minPrice" yaml:"min_price"`
	MaxPrice    int `json:"maxPrice" yaml:"max_price"`
}

// DefaultLimits returns the stock bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxResource: 1_000_000,
		MaxTreasury: 1_000_000_000,
		MinPrice:    economy.DefaultMinPrice,
		MaxPrice:    economy.DefaultMaxPrice,
	}
}

// clamp bounds v to [lo, hi]; hi ≤ 0 means no upper bound.
func clamp[T constraints.Integer](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}

// LimitResource floors a resource count at zero and caps it at maxResource
// when that is positive.
func LimitResource(v, maxResource int) int {
	return clamp(v, 0, maxResource)
}

// LimitTreasury floors a treasury at zero and caps it at maxTreasury when
// that is positive.
func LimitTreasury(v, maxTreasury int) int {
	return clamp(v, 0, maxTreasury)
}

// LimitPrice bounds a price to [lo, hi], falling back to the default bounds
// for non-positive arguments.
func LimitPrice(v, lo, hi int) int {
	if lo <= 0 {
		lo = economy.DefaultMinPrice
	}
	if hi <= 0 {
		hi = economy.DefaultMaxPrice
	}
	return clamp(v, lo, hi)
}
