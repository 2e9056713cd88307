package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/talgya/trade-towns/internal/agents"
	"github.com/talgya/trade-towns/internal/economy"
	"github.com/talgya/trade-towns/internal/engine"
	"github.com/talgya/trade-towns/internal/production"
	"github.com/talgya/trade-towns/internal/world"
)

func TestDefaultsMatchBuiltIns(t *testing.T) {
	f := Default()
	if f.Prices != economy.DefaultPriceTable() {
		t.Fatalf("price table drifted from the built-in defaults:\n%+v", f.Prices)
	}
	if f.PriceMath != economy.DefaultPriceMath() {
		t.Fatalf("price math drifted: %+v", f.PriceMath)
	}
	if f.Goods != world.DefaultCatalog() {
		t.Fatalf("goods drifted: %+v", f.Goods)
	}
	if f.Tiers != world.DefaultTierThresholds() {
		t.Fatalf("tiers drifted: %+v", f.Tiers)
	}
	if !reflect.DeepEqual(f.Profiles, agents.DefaultProfiles()) {
		t.Fatalf("profiles drifted:\n got %+v\nwant %+v", f.Profiles, agents.DefaultProfiles())
	}
	if !reflect.DeepEqual(f.Production, production.DefaultConfig()) {
		t.Fatalf("production drifted: %+v", f.Production)
	}
	if f.DriftRate != engine.DefaultConfig().DriftRate {
		t.Fatalf("drift rate drifted: %v", f.DriftRate)
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	raw := []byte(`
seed: fixed
drift_rate: 0.1
production:
  base_rates: {ore: 5}
  caps: {fish: 300}
towns:
  - id: harbor
    resources: {fish: 120, timber: 10, ore: 0}
    treasury: 500
  - id: quarry
    name: The Quarry
    resources: {fish: 5, timber: 40, ore: 200}
    prices: {ore: 14}
    treasury: 800
    ai_profile: warlord
`)
	f, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Seed != "fixed" || f.DriftRate != 0.1 {
		t.Fatalf("scalars not applied: %q %v", f.Seed, f.DriftRate)
	}
	if f.Production.BaseRates != (world.PerGood[float64]{4, 3, 5}) {
		t.Fatalf("base rates not merged: %v", f.Production.BaseRates)
	}
	if f.Production.Caps[world.GoodFish] == nil || *f.Production.Caps[world.GoodFish] != 300 {
		t.Fatalf("fish cap not set")
	}
	if !f.Production.Variance.Enabled {
		t.Fatalf("untouched variance lost its default")
	}

	cfg, state, err := Build(f, BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if state.RNGSeed != "fixed" || len(state.Towns) != 2 {
		t.Fatalf("unexpected state %+v", state)
	}
	q, _ := state.Town("quarry")
	if q.Name != "The Quarry" || q.Prices != (world.PerGood[int]{10, 12, 14}) || q.AIProfile != agents.ArchWarlord {
		t.Fatalf("quarry built wrong: %+v", q)
	}
	h, _ := state.Town("harbor")
	if h.Name != "harbor" || h.IsAI() {
		t.Fatalf("harbor built wrong: %+v", h)
	}
	if h.Tiers.Prosperity != world.TierModest {
		t.Fatalf("tiers not revealed at start: %+v", h.Tiers)
	}
	if _, err := engine.NewSimulation(cfg, state); err != nil {
		t.Fatalf("built config refused: %v", err)
	}
}

const anyPath = "*"

func TestSchemaRejects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		path string
	}{
		{"unknown key", "speed: 3\n", ""},
		{"unknown good", "prices:\n  silk: {base_price: 4}\n", anyPath},
		{"wrong type", "production:\n  variance: {enabled: maybe}\n", "production.variance.enabled"},
		{"negative treasury", "towns:\n  - id: a\n    treasury: -4\n", "towns[0].treasury"},
		{"bad mode", "profiles:\n  trader: {mode: chaotic}\n", "profiles.trader.mode"},
		{"string number", "drift_rate: fast\n", "drift_rate"},
		{"short multipliers", "price_math: {multipliers: [1, 1]}\n", "price_math.multipliers"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.raw))
			var ce *Error
			if !errors.As(err, &ce) {
				t.Fatalf("expected config Error, got %v", err)
			}
			if c.path != anyPath && ce.Path != c.path {
				t.Fatalf("expected path %q, got %q (%s)", c.path, ce.Path, ce.Message)
			}
		})
	}
}

func TestBuildRejectsSemanticErrors(t *testing.T) {
	f, err := Parse([]byte("drift_rate: 2\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, _, err = Build(f, BuildOptions{Seed: "s"})
	var pe *economy.ConfigError
	if !errors.As(err, &pe) || pe.Path != "driftRate" {
		t.Fatalf("expected drift rate error, got %v", err)
	}

	f, err = Parse([]byte("production: {variance: {enabled: true, magnitude: 3}}\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, _, err = Build(f, BuildOptions{Seed: "s"})
	var prodErr *production.ConfigError
	if !errors.As(err, &prodErr) || prodErr.Path != "production.variance.magnitude" {
		t.Fatalf("expected magnitude error, got %v", err)
	}

	f, err = Parse([]byte("towns:\n  - id: a\n  - id: a\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, _, err = Build(f, BuildOptions{Seed: "s"})
	var ce *Error
	if !errors.As(err, &ce) || ce.Path != "towns[1].id" {
		t.Fatalf("expected duplicate town error, got %v", err)
	}

	f, err = Parse([]byte("towns:\n  - id: \"a\\x1fb\"\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, _, err = Build(f, BuildOptions{Seed: "s"})
	if !errors.As(err, &ce) || ce.Path != "towns[0].id" {
		t.Fatalf("expected separator byte error, got %v", err)
	}
}

func TestBuildGeneratesTowns(t *testing.T) {
	cfg, a, err := Build(Default(), BuildOptions{Seed: "gen"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(a.Towns) != 4 {
		t.Fatalf("expected 4 generated towns, got %d", len(a.Towns))
	}
	if a.Towns[0].IsAI() || !a.Towns[1].IsAI() {
		t.Fatalf("expected the first town to be player-controlled")
	}
	if len(cfg.Production.TownMultipliers) != 4 {
		t.Fatalf("expected generated multipliers, got %v", cfg.Production.TownMultipliers)
	}

	_, b, err := Build(Default(), BuildOptions{Seed: "gen"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("generation not deterministic for a fixed seed")
	}
}

func TestBuildDrawsSeedWhenMissing(t *testing.T) {
	_, a, err := Build(Default(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	_, b, err := Build(Default(), BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if a.RNGSeed == "" || a.RNGSeed == b.RNGSeed {
		t.Fatalf("expected distinct random seeds, got %q and %q", a.RNGSeed, b.RNGSeed)
	}
}

func TestLoad(t *testing.T) {
	f, err := Load("")
	if err != nil || !reflect.DeepEqual(f, Default()) {
		t.Fatalf("empty path should load the defaults: %v", err)
	}

	path := filepath.Join(t.TempDir(), "game.yaml")
	if err := os.WriteFile(path, []byte("seed: from-file\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err = Load(path)
	if err != nil || f.Seed != "from-file" {
		t.Fatalf("load: %v (%q)", err, f.Seed)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestDotted(t *testing.T) {
	cases := map[string]string{
		"":                        "",
		"/towns/0/treasury":       "towns[0].treasury",
		"/profiles/trader/mode":   "profiles.trader.mode",
		"/cooldowns/a~1b:fish":    "cooldowns.a/b:fish",
		"/price_math/multipliers": "price_math.multipliers",
	}
	for in, want := range cases {
		if got := dotted(in); got != want {
			t.Fatalf("dotted(%q) = %q, want %q", in, got, want)
		}
	}
}
