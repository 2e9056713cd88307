package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/trade-towns/internal/world"
)

// Shared coders; EncodeAll and DecodeAll are safe for concurrent use.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// encodeState serializes s as zstd-compressed JSON.
func encodeState(s world.GameState) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return encoder.EncodeAll(raw, make([]byte, 0, len(raw)/4)), nil
}

func decodeState(blob []byte) (world.GameState, error) {
	raw, err := decoder.DecodeAll(blob, nil)
	if err != nil {
		return world.GameState{}, fmt.Errorf("decompress state: %w", err)
	}
	var s world.GameState
	if err := json.Unmarshal(raw, &s); err != nil {
		return world.GameState{}, fmt.Errorf("decode state: %w", err)
	}
	return s, nil
}
