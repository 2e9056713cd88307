package world

import (
	"fmt"

	"github.com/talgya/trade-towns/internal/entropy"
)

// StateVersion is the GameState layout version carried in every state.
const StateVersion = 1

// GameState is the complete simulation state at the start of a turn.
//
// GameState is treated as an immutable value: operations that change it
// return a new GameState with a freshly allocated Towns slice. Towns are plain
// values, so the towns an operation does not touch are carried over unchanged.
type GameState struct {
	Turn    int     `json:"turn"`
	Version int     `json:"version"`
	RNGSeed string  `json:"rngSeed"`
	Towns   []Town  `json:"towns"`
	Goods   Catalog `json:"goods"`
}

// NewGameState builds the turn-zero state from initial towns.
func NewGameState(seed string, towns []Town, goods Catalog) GameState {
	t := make([]Town, len(towns))
	copy(t, towns)
	return GameState{
		Turn:    0,
		Version: StateVersion,
		RNGSeed: seed,
		Towns:   t,
		Goods:   goods,
	}
}

// TownIndex returns the position of the town with the given ID, or -1.
func (s GameState) TownIndex(id string) int {
	for i := range s.Towns {
		if s.Towns[i].ID == id {
			return i
		}
	}
	return -1
}

// Town returns a copy of the town with the given ID.
func (s GameState) Town(id string) (Town, bool) {
	i := s.TownIndex(id)
	if i < 0 {
		return Town{}, false
	}
	return s.Towns[i], true
}

// Clone returns a state that shares no slice storage with s.
func (s GameState) Clone() GameState {
	out := s
	out.Towns = make([]Town, len(s.Towns))
	copy(out.Towns, s.Towns)
	return out
}

// WithTowns returns a copy of s with the given towns replaced by ID. Towns
// whose ID is not present are ignored.
func (s GameState) WithTowns(updated ...Town) GameState {
	out := s.Clone()
	for _, t := range updated {
		if i := out.TownIndex(t.ID); i >= 0 {
			out.Towns[i] = t
		}
	}
	return out
}

// TotalResources sums a good across all towns.
func (s GameState) TotalResources(g GoodID) int {
	total := 0
	for _, t := range s.Towns {
		total += t.Resources[g]
	}
	return total
}

// TotalTreasury sums the treasury of all towns.
func (s GameState) TotalTreasury() int {
	total := 0
	for _, t := range s.Towns {
		total += t.Treasury
	}
	return total
}

// StateError reports a malformed GameState. Path uses the config layout,
// e.g. "towns[2].id".
type StateError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e *StateError) Error() string {
	return fmt.Sprintf("game state %s: %s", e.Path, e.Message)
}

// ValidateTowns checks that every town has a non-empty, unique ID that is
// usable as a hash key part.
func ValidateTowns(s GameState) error {
	seen := make(map[string]bool, len(s.Towns))
	for i, t := range s.Towns {
		path := fmt.Sprintf("towns[%d].id", i)
		switch {
		case t.ID == "":
			return &StateError{Path: path, Message: "must not be empty"}
		case !entropy.ValidKeyPart(t.ID):
			return &StateError{Path: path, Message: fmt.Sprintf("town %q contains a control separator byte", t.ID)}
		case seen[t.ID]:
			return &StateError{Path: path, Message: fmt.Sprintf("duplicate town %q", t.ID)}
		}
		seen[t.ID] = true
	}
	return nil
}
