package engine

import (
	"fmt"
	"maps"
	"slices"

	"github.com/talgya/trade-towns/internal/agents"
	"github.com/talgya/trade-towns/internal/economy"
	"github.com/talgya/trade-towns/internal/production"
	"github.com/talgya/trade-towns/internal/trade"
	"github.com/talgya/trade-towns/internal/world"
)

// Config is everything a simulation needs besides its state. It is built
// once at startup and never changes during a game.
type Config struct {
	Prices     economy.PriceTable
	PriceMath  economy.PriceMath
	DriftRate  float64
	Production production.Config
	Limits     trade.Limits
	Profiles   map[string]agents.Profile
	Cooldowns  agents.Cooldowns // Initial cooldowns, usually empty
	Thresholds world.TierThresholds
}

// DefaultConfig returns the built-in tuning with every archetype profile.
func DefaultConfig() Config {
	return Config{
		Prices:     economy.DefaultPriceTable(),
		PriceMath:  economy.DefaultPriceMath(),
		DriftRate:  0.25,
		Production: production.DefaultConfig(),
		Limits:     trade.DefaultLimits(),
		Profiles:   agents.DefaultProfiles(),
		Thresholds: world.DefaultTierThresholds(),
	}
}

// Validate checks cfg against the towns in s and returns the first error.
// Errors are the typed config errors of the owning package.
func (c Config) Validate(s world.GameState) error {
	if err := world.ValidateTowns(s); err != nil {
		return err
	}
	if err := economy.ValidateTable(c.Prices); err != nil {
		return err
	}
	if err := c.PriceMath.Validate(); err != nil {
		return err
	}
	if err := economy.ValidateDriftRate(c.DriftRate); err != nil {
		return err
	}
	if err := c.Production.Validate(); err != nil {
		return err
	}
	if err := c.Production.ValidateTowns(s); err != nil {
		return err
	}
	for _, id := range slices.Sorted(maps.Keys(c.Profiles)) {
		p := c.Profiles[id]
		if p.ID != id {
			return &agents.ConfigError{Path: "profiles." + id + ".id", Message: fmt.Sprintf("id %q does not match its key", p.ID)}
		}
		if err := p.Validate(); err != nil {
			return err
		}
	}
	for i, t := range s.Towns {
		if t.IsAI() {
			if _, ok := c.Profiles[t.AIProfile]; !ok {
				return &agents.ConfigError{Path: fmt.Sprintf("towns[%d].aiProfile", i), Message: fmt.Sprintf("unknown profile %q", t.AIProfile)}
			}
		}
	}
	return nil
}
