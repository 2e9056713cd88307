package agents

import "github.com/talgya/trade-towns/internal/world"

// GenerateCandidates lists every profitable quote in snap: for each ordered
// pair of distinct towns and each good, the seller's price must be below the
// buyer's. Order is seller, then buyer, then good, all in snapshot order.
// A maxQty of zero or less leaves quantity bounded only by stock and funds.
func GenerateCandidates(snap MarketSnapshot, maxQty int) []world.Quote {
	var out []world.Quote
	for si, seller := range snap.Towns {
		for bi, buyer := range snap.Towns {
			if si == bi {
				continue
			}
			for _, g := range world.AllGoods {
				sell, buy := seller.Prices[g], buyer.Prices[g]
				if sell >= buy {
					continue
				}
				qty := affordable(seller.Stock[g], buyer.Treasury, sell, maxQty)
				if qty <= 0 {
					continue
				}
				out = append(out, world.Quote{
					SellerID:      seller.ID,
					BuyerID:       buyer.ID,
					Good:          g,
					UnitSellPrice: sell,
					UnitBuyPrice:  buy,
					Quantity:      qty,
				})
			}
		}
	}
	return out
}

// affordable is min(limit, stock, floor(treasury / price)).
func affordable(stock, treasury, price, limit int) int {
	qty := stock
	if price > 0 {
		qty = min(qty, treasury/price)
	}
	if limit > 0 {
		qty = min(qty, limit)
	}
	return qty
}
