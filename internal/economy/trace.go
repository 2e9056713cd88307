package economy

import "github.com/talgya/trade-towns/internal/world"

// Cause names the phase that triggered a repricing.
type Cause string

const (
	CauseTrade Cause = "trade"
	CauseDrift Cause = "drift"
)

// PriceTrace records every intermediate value of one repricing.
type PriceTrace struct {
	TownID           string               `json:"townId"`
	Good             world.GoodID         `json:"goodId"`
	OldPrice         int                  `json:"oldPrice"`
	CurvePrice       int                  `json:"curvePrice"`
	SmoothedPrice    int                  `json:"smoothedPrice"`
	FinalPrice       int                  `json:"finalPrice"`
	Stock            int                  `json:"stock"`
	TargetStock      int                  `json:"targetStock"`
	Elasticity       float64              `json:"elasticity"`
	ProsperityTier   world.ProsperityTier `json:"prosperityTier"`
	ProsperityFactor float64              `json:"prosperityFactor"`
	Cause            Cause                `json:"cause"`
}

// TraceFunc observes repricings. It runs synchronously and must not be
// relied on for correctness.
type TraceFunc func(PriceTrace)

// Collect returns a TraceFunc appending to dst.
func Collect(dst *[]PriceTrace) TraceFunc {
	return func(tr PriceTrace) {
		*dst = append(*dst, tr)
	}
}
