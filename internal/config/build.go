package config

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/trade-towns/internal/engine"
	"github.com/talgya/trade-towns/internal/entropy"
	"github.com/talgya/trade-towns/internal/production"
	"github.com/talgya/trade-towns/internal/world"
)

// BuildOptions override parts of a File at startup.
type BuildOptions struct {
	Seed     string // Wins over File.Seed when set
	Generate bool   // Generate towns even when the file lists some
}

// Build turns f into the engine configuration and the opening game state.
// Without a seed from opts or f a random one is drawn; the returned state
// records it so the game can be replayed.
func Build(f File, opts BuildOptions) (engine.Config, world.GameState, error) {
	seed := opts.Seed
	if seed == "" {
		seed = f.Seed
	}
	if seed == "" {
		seed = uuid.NewString()
	}

	prod := f.Production
	var towns []world.Town
	if len(f.Towns) == 0 || opts.Generate {
		gen := f.Generate
		if gen.Seed == 0 {
			gen.Seed = entropy.Seed64(seed)
		}
		if gen.Towns < 1 {
			return engine.Config{}, world.GameState{}, &Error{Path: "generate.towns", Message: "must be at least 1"}
		}
		g := world.Generate(gen)
		towns = g.Towns
		prod = withGeneratedMultipliers(prod, g.Multipliers)
	} else {
		var err error
		if towns, err = buildTowns(f); err != nil {
			return engine.Config{}, world.GameState{}, err
		}
	}

	state := world.NewGameState(seed, towns, f.Goods)
	state = world.RevealTiers(state, f.Tiers)

	cfg := engine.Config{
		Prices:     f.Prices,
		PriceMath:  f.PriceMath,
		DriftRate:  f.DriftRate,
		Production: prod,
		Limits:     f.Limits,
		Profiles:   f.Profiles,
		Cooldowns:  f.Cooldowns,
		Thresholds: f.Tiers,
	}
	if err := cfg.Validate(state); err != nil {
		return engine.Config{}, world.GameState{}, err
	}
	return cfg, state, nil
}

func buildTowns(f File) ([]world.Town, error) {
	seen := make(map[string]bool, len(f.Towns))
	towns := make([]world.Town, len(f.Towns))
	for i, spec := range f.Towns {
		path := fmt.Sprintf("towns[%d]", i)
		if spec.ID == "" {
			return nil, &Error{Path: path + ".id", Message: "must not be empty"}
		}
		if !entropy.ValidKeyPart(spec.ID) {
			return nil, &Error{Path: path + ".id", Message: fmt.Sprintf("town %q contains a control separator byte", spec.ID)}
		}
		if seen[spec.ID] {
			return nil, &Error{Path: path + ".id", Message: fmt.Sprintf("duplicate town %q", spec.ID)}
		}
		seen[spec.ID] = true
		if spec.Treasury < 0 {
			return nil, &Error{Path: path + ".treasury", Message: "must not be negative"}
		}

		t := world.Town{
			ID:            spec.ID,
			Name:          spec.Name,
			Site:          spec.Site,
			Resources:     spec.Resources,
			Treasury:      spec.Treasury,
			MilitaryRaw:   spec.MilitaryRaw,
			ProsperityRaw: spec.ProsperityRaw,
			AIProfile:     spec.AIProfile,
		}
		if t.Name == "" {
			t.Name = t.ID
		}
		for _, g := range world.AllGoods {
			if t.Resources[g] < 0 {
				return nil, &Error{Path: fmt.Sprintf("%s.resources.%s", path, g), Message: "must not be negative"}
			}
			t.Prices[g] = f.Prices[g].BasePrice
			if spec.Prices != nil && spec.Prices[g] > 0 {
				t.Prices[g] = spec.Prices[g]
			}
		}
		towns[i] = t
	}
	return towns, nil
}

// withGeneratedMultipliers fills in multipliers for generated towns that the
// file does not already set.
func withGeneratedMultipliers(c production.Config, gen map[string]world.PerGood[float64]) production.Config {
	out := make(map[string]world.PerGood[*float64], len(c.TownMultipliers)+len(gen))
	for id, m := range c.TownMultipliers {
		out[id] = m
	}
	for id, m := range gen {
		cur := out[id]
		for _, g := range world.AllGoods {
			if cur[g] == nil {
				v := m[g]
				cur[g] = &v
			}
		}
		out[id] = cur
	}
	c.TownMultipliers = out
	return c
}
