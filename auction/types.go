// Package auction implements the AuctionEngine pallet: create/cancel/bid/
// buy-now, end-period extension, and the deadline queue drained by
// on_initialize (spec.md §4.3).
package auction

import (
	"github.com/r3e-network/nft-runtime/chain"
	"github.com/r3e-network/nft-runtime/ledger"
	"github.com/r3e-network/nft-runtime/marketplace"
)

// Bid is one entry of an auction's ascending-by-amount bidder list.
type Bid struct {
	Bidder chain.AccountID
	Amount ledger.Balance
}

// Data is the AuctionData entity (spec.md §3).
type Data struct {
	Creator       chain.AccountID
	MarketplaceID marketplace.ID
	StartBlock    chain.BlockNumber
	EndBlock      chain.BlockNumber
	StartPrice    ledger.Balance
	BuyItPrice    *ledger.Balance
	Bidders       []Bid
	IsExtended    bool
}

// HighestBid returns the current top bid, if any.
func (d *Data) HighestBid() (Bid, bool) {
	if len(d.Bidders) == 0 {
		return Bid{}, false
	}
	return d.Bidders[len(d.Bidders)-1], true
}

// HasStarted reports whether now >= StartBlock.
func (d *Data) HasStarted(now chain.BlockNumber) bool {
	return now >= d.StartBlock
}
