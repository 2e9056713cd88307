package world

// TierThresholds are ascending raw-stat cut points. A raw value below the
// first threshold is the lowest tier; at or above the last it is the highest.
type TierThresholds struct {
	Prosperity [3]int `json:"prosperity" yaml:"prosperity"`
	Military   [3]int `json:"military" yaml:"military"`
}

// DefaultTierThresholds returns the stock cut points.
func DefaultTierThresholds() TierThresholds {
	return TierThresholds{
		Prosperity: [3]int{0, 20, 50},
		Military:   [3]int{5, 20, 50},
	}
}

// bucket returns the 1-based tier index for raw.
func bucket(raw int, cuts [3]int) int {
	n := 1
	for _, c := range cuts {
		if raw >= c {
			n++
		}
	}
	return n
}

// ProsperityFor returns the prosperity tier for a raw prosperity value.
func (th TierThresholds) ProsperityFor(raw int) ProsperityTier {
	return ProsperityTier(bucket(raw, th.Prosperity))
}

// MilitaryFor returns the military tier for a raw military value.
func (th TierThresholds) MilitaryFor(raw int) MilitaryTier {
	return MilitaryTier(bucket(raw, th.Military))
}

// TierRevealer recomputes the revealed tier labels at the end of a turn.
type TierRevealer interface {
	Reveal(GameState) GameState
}

// ThresholdRevealer is a TierRevealer backed by a fixed threshold lookup.
type ThresholdRevealer struct {
	Thresholds TierThresholds
}

// Reveal stamps every town with its current tiers and the state's turn.
func (r ThresholdRevealer) Reveal(s GameState) GameState {
	return RevealTiers(s, r.Thresholds)
}

// RevealTiers returns s with every town's tier labels recomputed.
func RevealTiers(s GameState, th TierThresholds) GameState {
	out := s.Clone()
	for i := range out.Towns {
		t := &out.Towns[i]
		t.Tiers = RevealedTiers{
			Military:    th.MilitaryFor(t.MilitaryRaw),
			Prosperity:  th.ProsperityFor(t.ProsperityRaw),
			UpdatedTurn: s.Turn,
		}
	}
	return out
}
