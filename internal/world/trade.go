package world

// TradeSide says which way goods move relative to the originating town.
type TradeSide string

const (
	SideBuy  TradeSide = "buy"  // Origin receives goods
	SideSell TradeSide = "sell" // Origin gives goods
)

// Valid reports whether s is buy or sell.
func (s TradeSide) Valid() bool {
	return s == SideBuy || s == SideSell
}

// TradeRequest is a trade as submitted by a player, UI, or AI agent.
// Identifiers are unparsed strings; only the validator interprets them.
type TradeRequest struct {
	OriginTownID      string    `json:"originTownId"`
	DestinationTownID string    `json:"destinationTownId"`
	GoodID            string    `json:"goodId"`
	Quantity          int       `json:"quantity"`
	Side              TradeSide `json:"side"`
	PricePerUnit      int       `json:"pricePerUnit"`
}

// ValidatedTrade is a trade that satisfied every state invariant at
// validation time. Only the trade validator constructs one.
type ValidatedTrade struct {
	FromID    string    `json:"fromId"`
	ToID      string    `json:"toId"`
	Good      GoodID    `json:"good"`
	Qty       int       `json:"qty"`
	UnitPrice int       `json:"unitPrice"`
	Side      TradeSide `json:"side"`
}

// Buyer returns the ID of the town receiving the goods.
func (v ValidatedTrade) Buyer() string {
	if v.Side == SideBuy {
		return v.FromID
	}
	return v.ToID
}

// Seller returns the ID of the town giving up the goods.
func (v ValidatedTrade) Seller() string {
	if v.Side == SideBuy {
		return v.ToID
	}
	return v.FromID
}

// Total returns the currency that changes hands.
func (v ValidatedTrade) Total() int {
	return v.Qty * v.UnitPrice
}

// Quote is an unvalidated trade candidate: the seller gives Quantity units
// of Good to the buyer at UnitSellPrice, where the buyer values them at
// UnitBuyPrice.
type Quote struct {
	SellerID      string `json:"sellerId"`
	BuyerID       string `json:"buyerId"`
	Good          GoodID `json:"goodId"`
	UnitSellPrice int    `json:"unitSellPrice"`
	UnitBuyPrice  int    `json:"unitBuyPrice"`
	Quantity      int    `json:"quantity"`
}

// Spread returns the per-unit price difference.
func (q Quote) Spread() int {
	return q.UnitBuyPrice - q.UnitSellPrice
}
