// Package persistence keeps a per-turn journal of the game in an in-memory
// SQLite database: compressed state snapshots, the trade log, and every AI
// decision. Nothing is written to disk.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/trade-towns/internal/engine"
	"github.com/talgya/trade-towns/internal/world"
)

// ErrNotFound is returned when no row exists for the requested turn.
var ErrNotFound = errors.New("persistence: not found")

// Journal wraps a SQLite connection holding the game history.
type Journal struct {
	conn *sqlx.DB
}

// OpenMemory creates an empty journal backed by a private in-memory database.
func OpenMemory() (*Journal, error) {
	conn, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Each connection to :memory: is its own database.
	conn.SetMaxOpenConns(1)

	j := &Journal{conn: conn}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return j, nil
}

// Close closes the database connection. The journal is gone afterwards.
func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		turn INTEGER PRIMARY KEY,
		seed TEXT NOT NULL,
		towns INTEGER NOT NULL,
		treasury INTEGER NOT NULL,
		state_zst BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		turn INTEGER NOT NULL,
		town_id TEXT NOT NULL,
		buyer TEXT NOT NULL,
		seller TEXT NOT NULL,
		good TEXT NOT NULL,
		qty INTEGER NOT NULL,
		unit_price INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		turn INTEGER NOT NULL,
		town_id TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT NOT NULL,
		score REAL NOT NULL,
		trace_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trades_turn ON trades(turn);
	CREATE INDEX IF NOT EXISTS idx_decisions_turn ON decisions(turn);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// RecordState stores a snapshot of s under s.Turn, replacing any earlier
// snapshot for that turn.
func (j *Journal) RecordState(s world.GameState) error {
	blob, err := encodeState(s)
	if err != nil {
		return err
	}
	_, err = j.conn.Exec(
		"INSERT OR REPLACE INTO snapshots (turn, seed, towns, treasury, state_zst) VALUES (?, ?, ?, ?, ?)",
		s.Turn, s.RNGSeed, len(s.Towns), s.TotalTreasury(), blob,
	)
	return err
}

// RecordTurn stores the AI decisions and trades of r and the state that
// resulted from it, all in one transaction.
func (j *Journal) RecordTurn(r engine.TurnReport, next world.GameState) error {
	blob, err := encodeState(next)
	if err != nil {
		return err
	}

	tx, err := j.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, d := range r.Decisions {
		trace, err := json.Marshal(d.Trace)
		if err != nil {
			return fmt.Errorf("encode trace for %s: %w", d.Trace.TownID, err)
		}
		_, err = tx.Exec(
			"INSERT INTO decisions (turn, town_id, status, reason, score, trace_json) VALUES (?, ?, ?, ?, ?, ?)",
			r.Turn, d.Trace.TownID, string(d.Status), d.Reason, d.Score, string(trace),
		)
		if err != nil {
			return fmt.Errorf("insert decision for %s: %w", d.Trace.TownID, err)
		}
	}

	for _, t := range r.Trades {
		_, err := tx.Exec(
			"INSERT INTO trades (turn, town_id, buyer, seller, good, qty, unit_price) VALUES (?, ?, ?, ?, ?, ?, ?)",
			r.Turn, t.TownID, t.Trade.Buyer(), t.Trade.Seller(), t.Trade.Good.String(), t.Trade.Qty, t.UnitPriceApplied,
		)
		if err != nil {
			return fmt.Errorf("insert trade for %s: %w", t.TownID, err)
		}
	}

	_, err = tx.Exec(
		"INSERT OR REPLACE INTO snapshots (turn, seed, towns, treasury, state_zst) VALUES (?, ?, ?, ?, ?)",
		next.Turn, next.RNGSeed, len(next.Towns), next.TotalTreasury(), blob,
	)
	if err != nil {
		return fmt.Errorf("insert snapshot %d: %w", next.Turn, err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("turn journaled", "turn", r.Turn, "trades", len(r.Trades), "snapshot_bytes", len(blob))
	return nil
}

// SaveMeta stores a key-value pair.
func (j *Journal) SaveMeta(key, value string) error {
	_, err := j.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (j *Journal) GetMeta(key string) (string, error) {
	var value string
	err := j.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// Snapshot returns the state recorded for turn.
func (j *Journal) Snapshot(turn int) (world.GameState, error) {
	var blob []byte
	err := j.conn.Get(&blob, "SELECT state_zst FROM snapshots WHERE turn = ?", turn)
	if errors.Is(err, sql.ErrNoRows) {
		return world.GameState{}, ErrNotFound
	}
	if err != nil {
		return world.GameState{}, err
	}
	return decodeState(blob)
}

// LatestTurn returns the highest turn with a snapshot.
func (j *Journal) LatestTurn() (int, error) {
	var turn sql.NullInt64
	if err := j.conn.Get(&turn, "SELECT MAX(turn) FROM snapshots"); err != nil {
		return 0, err
	}
	if !turn.Valid {
		return 0, ErrNotFound
	}
	return int(turn.Int64), nil
}

// TradeRow is one journaled AI trade.
type TradeRow struct {
	Turn      int    `db:"turn" json:"turn"`
	TownID    string `db:"town_id" json:"townId"`
	Buyer     string `db:"buyer" json:"buyer"`
	Seller    string `db:"seller" json:"seller"`
	Good      string `db:"good" json:"goodId"`
	Qty       int    `db:"qty" json:"quantity"`
	UnitPrice int    `db:"unit_price" json:"unitPrice"`
}

// Trades returns the AI trades made during turn, in execution order.
func (j *Journal) Trades(turn int) ([]TradeRow, error) {
	var rows []TradeRow
	err := j.conn.Select(&rows,
		"SELECT turn, town_id, buyer, seller, good, qty, unit_price FROM trades WHERE turn = ? ORDER BY id",
		turn,
	)
	return rows, err
}

// DecisionRow is one journaled AI decision.
type DecisionRow struct {
	Turn   int             `db:"turn" json:"turn"`
	TownID string          `db:"town_id" json:"townId"`
	Status string          `db:"status" json:"status"`
	Reason string          `db:"reason" json:"reason,omitempty"`
	Score  float64         `db:"score" json:"score"`
	Trace  json.RawMessage `db:"-" json:"trace"`

	TraceJSON string `db:"trace_json" json:"-"`
}

// Decisions returns the AI decisions of turn, in town order.
func (j *Journal) Decisions(turn int) ([]DecisionRow, error) {
	var rows []DecisionRow
	err := j.conn.Select(&rows,
		"SELECT turn, town_id, status, reason, score, trace_json FROM decisions WHERE turn = ? ORDER BY id",
		turn,
	)
	for i := range rows {
		rows[i].Trace = json.RawMessage(rows[i].TraceJSON)
	}
	return rows, err
}
