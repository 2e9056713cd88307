package persistence

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"reflect"
	"testing"

	"github.com/talgya/trade-towns/internal/agents"
	"github.com/talgya/trade-towns/internal/engine"
	"github.com/talgya/trade-towns/internal/world"
)

func openJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func simulation(t *testing.T) *engine.Simulation {
	t.Helper()
	s := world.NewGameState("journal", []world.Town{
		{ID: "a", Name: "A", Resources: world.PerGood[int]{150, 20, 10}, Prices: world.PerGood[int]{8, 14, 25}, Treasury: 700},
		{ID: "b", Name: "B", Resources: world.PerGood[int]{20, 150, 90}, Prices: world.PerGood[int]{14, 9, 21}, Treasury: 900, AIProfile: agents.ArchTrader},
	}, world.DefaultCatalog())
	s = world.RevealTiers(s, world.DefaultTierThresholds())
	sim, err := engine.NewSimulation(engine.DefaultConfig(), s, engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("simulation: %v", err)
	}
	return sim
}

func TestSnapshotRoundTrip(t *testing.T) {
	j := openJournal(t)
	sim := simulation(t)
	initial := sim.State()

	if err := j.RecordState(initial); err != nil {
		t.Fatalf("record state: %v", err)
	}
	got, err := j.Snapshot(0)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !reflect.DeepEqual(got, initial) {
		t.Fatalf("snapshot changed in storage\n got %+v\nwant %+v", got, initial)
	}

	if _, err := j.Snapshot(9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordTurns(t *testing.T) {
	j := openJournal(t)
	sim := simulation(t)
	if err := j.RecordState(sim.State()); err != nil {
		t.Fatalf("record state: %v", err)
	}

	var reports []engine.TurnReport
	for i := 0; i < 3; i++ {
		r, err := sim.Step()
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if err := j.RecordTurn(r, sim.State()); err != nil {
			t.Fatalf("record turn: %v", err)
		}
		reports = append(reports, r)
	}

	latest, err := j.LatestTurn()
	if err != nil || latest != 3 {
		t.Fatalf("latest turn %d, err %v", latest, err)
	}
	snap, err := j.Snapshot(3)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !reflect.DeepEqual(snap, sim.State()) {
		t.Fatalf("latest snapshot differs from the live state")
	}

	for _, r := range reports {
		trades, err := j.Trades(r.Turn)
		if err != nil {
			t.Fatalf("trades: %v", err)
		}
		if len(trades) != len(r.Trades) {
			t.Fatalf("turn %d: %d trades journaled, %d made", r.Turn, len(trades), len(r.Trades))
		}
		for i, row := range trades {
			want := r.Trades[i]
			if row.Buyer != want.Trade.Buyer() || row.Qty != want.Trade.Qty || row.UnitPrice != want.UnitPriceApplied {
				t.Fatalf("turn %d: row %+v does not match %+v", r.Turn, row, want)
			}
		}

		decisions, err := j.Decisions(r.Turn)
		if err != nil {
			t.Fatalf("decisions: %v", err)
		}
		if len(decisions) != len(r.Decisions) {
			t.Fatalf("turn %d: %d decisions journaled, %d made", r.Turn, len(decisions), len(r.Decisions))
		}
		for i, row := range decisions {
			var tr agents.Trace
			if err := json.Unmarshal(row.Trace, &tr); err != nil {
				t.Fatalf("trace: %v", err)
			}
			if tr.TownID != r.Decisions[i].Trace.TownID || row.Status != string(r.Decisions[i].Status) {
				t.Fatalf("turn %d: decision row %+v does not match", r.Turn, row)
			}
		}
	}
}

func TestRecordTurnRejectsUnencodableTrace(t *testing.T) {
	j := openJournal(t)
	sim := simulation(t)
	r := engine.TurnReport{Turn: 0, Decisions: []agents.Decision{
		{Status: agents.StatusSkipped, Trace: agents.Trace{TownID: "b", Score: math.NaN()}},
	}}
	err := j.RecordTurn(r, sim.State())
	var ue *json.UnsupportedValueError
	if !errors.As(err, &ue) {
		t.Fatalf("expected trace encoding error, got %v", err)
	}
	if _, err := j.LatestTurn(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("failed turn left a snapshot behind: %v", err)
	}
	rows, err := j.Decisions(0)
	if err != nil || len(rows) != 0 {
		t.Fatalf("failed turn left decisions behind: %v (%v)", rows, err)
	}
}

func TestEmptyJournal(t *testing.T) {
	j := openJournal(t)
	if _, err := j.LatestTurn(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	trades, err := j.Trades(0)
	if err != nil || len(trades) != 0 {
		t.Fatalf("expected no trades, got %v (%v)", trades, err)
	}
}

func TestMeta(t *testing.T) {
	j := openJournal(t)
	if _, err := j.GetMeta("seed"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := j.SaveMeta("seed", "abc"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := j.SaveMeta("seed", "def"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if v, err := j.GetMeta("seed"); err != nil || v != "def" {
		t.Fatalf("got %q, %v", v, err)
	}
}

func TestStateCodecCompresses(t *testing.T) {
	sim := simulation(t)
	s := sim.State()
	for i := 0; i < 40; i++ {
		tw := s.Towns[0]
		tw.ID += string(rune('a' + i%26))
		s.Towns = append(s.Towns, tw)
	}
	raw, _ := json.Marshal(s)
	blob, err := encodeState(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(blob) >= len(raw) {
		t.Fatalf("expected compression, got %d bytes from %d", len(blob), len(raw))
	}
	back, err := decodeState(blob)
	if err != nil || !reflect.DeepEqual(back, s) {
		t.Fatalf("codec round trip failed: %v", err)
	}
}
