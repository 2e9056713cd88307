package world

// ProsperityTier is the coarse display bucket for a town's prosperity.
type ProsperityTier uint8

// The zero value is ProsperityUnrevealed, used before the first reveal.
const (
	ProsperityUnrevealed ProsperityTier = iota
	TierStruggling
	TierModest
	TierProsperous
	TierOpulent
)

// NumProsperityTiers is the number of revealed prosperity tiers.
const NumProsperityTiers = 4

var prosperityNames = [NumProsperityTiers + 1]string{"unrevealed", "struggling", "modest", "prosperous", "opulent"}

func (t ProsperityTier) String() string {
	if int(t) < len(prosperityNames) {
		return prosperityNames[t]
	}
	return "unknown"
}

func (t ProsperityTier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ProsperityTier) UnmarshalText(b []byte) error {
	for i, name := range prosperityNames {
		if name == string(b) {
			*t = ProsperityTier(i)
			return nil
		}
	}
	*t = ProsperityUnrevealed
	return nil
}

// MilitaryTier is the coarse display bucket for a town's military strength.
type MilitaryTier uint8

const (
	MilitaryUnrevealed MilitaryTier = iota
	TierWeak
	TierGuarded
	TierStrong
	TierDominant
)

var militaryNames = [5]string{"unrevealed", "weak", "guarded", "strong", "dominant"}

func (t MilitaryTier) String() string {
	if int(t) < len(militaryNames) {
		return militaryNames[t]
	}
	return "unknown"
}

func (t MilitaryTier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *MilitaryTier) UnmarshalText(b []byte) error {
	for i, name := range militaryNames {
		if name == string(b) {
			*t = MilitaryTier(i)
			return nil
		}
	}
	*t = MilitaryUnrevealed
	return nil
}

// RevealedTiers are the tier labels last shown to players.
type RevealedTiers struct {
	Military    MilitaryTier   `json:"military"`
	Prosperity  ProsperityTier `json:"prosperity"`
	UpdatedTurn int            `json:"updatedTurn"`
}

// Town is one trading settlement. All fields are values, so copying a Town
// yields an independent town.
type Town struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Site HexCoord `json:"site"` // Position on the hex grid

	Resources PerGood[int] `json:"resources"` // Units held, never negative
	Prices    PerGood[int] `json:"prices"`    // Quoted unit price, within price bounds

	MilitaryRaw   int `json:"militaryRaw"`
	ProsperityRaw int `json:"prosperityRaw"`
	Treasury      int `json:"treasury"` // Never negative

	Tiers     RevealedTiers `json:"tiers"`
	AIProfile string        `json:"aiProfile,omitempty"` // Empty for player-controlled towns
}

// IsAI reports whether the town is driven by an AI profile.
func (t Town) IsAI() bool {
	return t.AIProfile != ""
}
