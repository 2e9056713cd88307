// Package config loads game configuration from YAML. The built-in defaults
// are embedded; a user file is checked against an embedded JSON Schema and
// then laid over them.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/trade-towns/internal/agents"
	"github.com/talgya/trade-towns/internal/economy"
	"github.com/talgya/trade-towns/internal/production"
	"github.com/talgya/trade-towns/internal/trade"
	"github.com/talgya/trade-towns/internal/world"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// File mirrors the YAML layout.
type File struct {
	Seed      string  `yaml:"seed"`
	DriftRate float64 `yaml:"drift_rate"`

	Goods      world.Catalog             `yaml:"goods"`
	Prices     economy.PriceTable        `yaml:"prices"`
	PriceMath  economy.PriceMath         `yaml:"price_math"`
	Production production.Config         `yaml:"production"`
	Limits     trade.Limits              `yaml:"limits"`
	Tiers      world.TierThresholds      `yaml:"tiers"`
	Profiles   map[string]agents.Profile `yaml:"profiles"`
	Cooldowns  agents.Cooldowns          `yaml:"cooldowns"`

	Towns    []TownSpec      `yaml:"towns"`
	Generate world.GenConfig `yaml:"generate"` // Used when Towns is empty
}

// TownSpec is one town as written in a config file.
type TownSpec struct {
	ID            string              `yaml:"id"`
	Name          string              `yaml:"name"`
	Site          world.HexCoord      `yaml:"site"`
	Resources     world.PerGood[int]  `yaml:"resources"`
	Prices        *world.PerGood[int] `yaml:"prices"` // Defaults to each good's base price
	Treasury      int                 `yaml:"treasury"`
	MilitaryRaw   int                 `yaml:"military_raw"`
	ProsperityRaw int                 `yaml:"prosperity_raw"`
	AIProfile     string              `yaml:"ai_profile"`
}

// Error reports a config file that does not fit the expected layout.
type Error struct {
	Path    string
	Message string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("config %s: %s", e.Path, e.Message)
}

// Default returns the embedded defaults.
func Default() File {
	f, err := decode(File{}, defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded defaults: %v", err))
	}
	return f
}

// Load reads the file at path and lays it over the defaults. An empty path
// returns the defaults.
func Load(path string) (File, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	f, err := Parse(raw)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse checks raw against the schema and lays it over the defaults.
func Parse(raw []byte) (File, error) {
	if err := validateSchema(raw); err != nil {
		return File{}, err
	}
	return decode(Default(), raw)
}

func decode(base File, raw []byte) (File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&base); err != nil && !errors.Is(err, io.EOF) {
		return File{}, &Error{Message: err.Error()}
	}

	for id, p := range base.Profiles {
		if p.ID == "" {
			p.ID = id
			base.Profiles[id] = p
		}
	}
	for _, g := range world.AllGoods {
		base.Goods[g].ID = g
	}
	return base, nil
}
