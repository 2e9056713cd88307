package economy

import "github.com/talgya/trade-towns/internal/world"

// TierMultipliers holds the price factor for each revealed prosperity tier,
// from struggling to opulent.
type TierMultipliers [world.NumProsperityTiers]float64

// DefaultTierMultipliers returns struggling 0.9, modest 1.0, prosperous 1.1,
// opulent 1.2.
func DefaultTierMultipliers() TierMultipliers {
	return TierMultipliers{0.9, 1.0, 1.1, 1.2}
}

// Factor returns the multiplier for tier. Unrevealed and unknown tiers
// price at 1.
func (m TierMultipliers) Factor(tier world.ProsperityTier) float64 {
	if tier < world.TierStruggling || tier > world.TierOpulent {
		return 1
	}
	return m[tier-world.TierStruggling]
}

// ApplyProsperityAndScale multiplies price by the tier factor and the size
// factor, rounds, and clamps to [lo, hi].
func ApplyProsperityAndScale(price int, tier world.ProsperityTier, table TierMultipliers, sizeFactor float64, lo, hi int) int {
	return clampFloat(float64(price)*table.Factor(tier)*sizeFactor, lo, hi)
}
