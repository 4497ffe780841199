package auction

import (
	"sort"

	"github.com/r3e-network/nft-runtime/chain"
	"github.com/r3e-network/nft-runtime/config"
	"github.com/r3e-network/nft-runtime/ledger"
	"github.com/r3e-network/nft-runtime/marketplace"
	"github.com/r3e-network/nft-runtime/nft"
	"github.com/r3e-network/nft-runtime/runtimeerrors"
)

// Pallet is the AuctionEngine.
type Pallet struct {
	cfg         config.Config
	registry    *nft.Registry
	marketplace *marketplace.Pallet

	auctions  map[nft.ID]*Data
	deadlines *chain.DeadlineQueue[nft.ID]
	claims    map[chain.AccountID]ledger.Balance
}

// New constructs an empty AuctionEngine.
func New(cfg config.Config, registry *nft.Registry, mkt *marketplace.Pallet) *Pallet {
	return &Pallet{
		cfg:         cfg,
		registry:    registry,
		marketplace: mkt,
		auctions:    make(map[nft.ID]*Data),
		deadlines:   chain.NewDeadlineQueue[nft.ID](cfg.ParallelAuctionLimit),
		claims:      make(map[chain.AccountID]ledger.Balance),
	}
}

// Get returns an auction by nft id.
func (p *Pallet) Get(id nft.ID) (*Data, error) {
	a, ok := p.auctions[id]
	if !ok {
		return nil, runtimeerrors.ErrAuctionDoesNotExist
	}
	return a, nil
}

// ClaimOf returns the withdrawable claim balance for account.
func (p *Pallet) ClaimOf(account chain.AccountID) ledger.Balance {
	return p.claims[account]
}

func satSub(a, b ledger.Balance) ledger.Balance {
	if a < b {
		return 0
	}
	return a - b
}

// CreateAuction lists an NFT for English auction (spec.md §4.3).
func (p *Pallet) CreateAuction(ctx *chain.Context, caller chain.AccountID, id nft.ID, marketplaceID marketplace.ID, startBlock, endBlock chain.BlockNumber, startPrice ledger.Balance, buyItPrice *ledger.Balance) error {
	now := ctx.Now()
	if startBlock < now {
		return runtimeerrors.ErrAuctionCannotStartInThePast
	}
	if endBlock <= startBlock {
		return runtimeerrors.ErrCannotEndInThePast
	}
	duration := uint64(endBlock - startBlock)
	if duration < p.cfg.MinAuctionDuration {
		return runtimeerrors.ErrAuctionDurationIsTooShort
	}
	if duration > p.cfg.MaxAuctionDuration {
		return runtimeerrors.ErrAuctionDurationIsTooLong
	}
	if uint64(startBlock-now) > p.cfg.MaxAuctionDelay {
		return runtimeerrors.ErrAuctionStartIsTooFarAway
	}
	if buyItPrice != nil && *buyItPrice <= startPrice {
		return runtimeerrors.ErrBuyItPriceCannotBeLessOrEqualThanStartPrice
	}

	n, err := p.registry.Get(id)
	if err != nil {
		return err
	}
	if n.Owner != caller {
		return runtimeerrors.ErrNotTheNFTOwner
	}
	if err := nft.GuardAuctionable(n); err != nil {
		return err
	}

	mkt, err := p.marketplace.Get(marketplaceID)
	if err != nil {
		return err
	}
	if !mkt.AllowedToList(caller, n.CollectionID) {
		return runtimeerrors.ErrNotAllowedToList
	}
	if mkt.CommissionFee != nil && startPrice < mkt.CommissionFee.FlatFloor() {
		return runtimeerrors.ErrPriceCannotCoverMarketplaceFee
	}

	if err := p.deadlines.Insert(id, endBlock); err != nil {
		return runtimeerrors.ErrMaximumAuctionsLimitReached
	}

	if err := p.registry.SetFlag(id, func(f *nft.Flags) { f.IsListed = true }); err != nil {
		return err
	}
	p.auctions[id] = &Data{
		Creator:       caller,
		MarketplaceID: marketplaceID,
		StartBlock:    startBlock,
		EndBlock:      endBlock,
		StartPrice:    startPrice,
		BuyItPrice:    buyItPrice,
	}

	ctx.Metrics.AuctionsCreated.Inc()
	ctx.Events.Emit(chain.NewEvent("auction", "AuctionCreated", map[string]any{
		"nft_id": id, "marketplace_id": marketplaceID, "start_block": startBlock,
		"end_block": endBlock, "start_price": startPrice,
	}))
	return nil
}

// CancelAuction cancels an auction before it has started. Creator-only.
func (p *Pallet) CancelAuction(ctx *chain.Context, caller chain.AccountID, id nft.ID) error {
	a, err := p.Get(id)
	if err != nil {
		return err
	}
	if a.Creator != caller {
		return runtimeerrors.ErrNotTheAuctionCreator
	}
	if a.HasStarted(ctx.Now()) {
		return runtimeerrors.New(runtimeerrors.KindStateGuard, "AuctionAlreadyStarted", "auction can only be cancelled before start_block")
	}

	for _, b := range a.Bidders {
		p.credit(b.Bidder, b.Amount)
	}

	if err := p.registry.SetFlag(id, func(f *nft.Flags) { f.IsListed = false }); err != nil {
		return err
	}
	p.deadlines.Remove(id)
	delete(p.auctions, id)

	ctx.Events.Emit(chain.NewEvent("auction", "AuctionCancelled", map[string]any{"nft_id": id}))
	return nil
}

func (p *Pallet) credit(account chain.AccountID, amount ledger.Balance) {
	p.claims[account] += amount
}

// insertBid inserts a bid keeping Bidders ascending by amount, evicting the
// lowest bid when the list is full. Returns the evicted bid, if any.
func insertBid(bidders []Bid, bid Bid, capacity int) ([]Bid, *Bid) {
	bidders = append(bidders, bid)
	sort.SliceStable(bidders, func(i, j int) bool { return bidders[i].Amount < bidders[j].Amount })
	if len(bidders) > capacity {
		evicted := bidders[0]
		bidders = bidders[1:]
		return bidders, &evicted
	}
	return bidders, nil
}

// AddBid places a bid, handling delta-only transfers for repeat bidders,
// capacity eviction, and end-period extension (spec.md §4.3).
func (p *Pallet) AddBid(ctx *chain.Context, caller chain.AccountID, id nft.ID, amount ledger.Balance) error {
	a, err := p.Get(id)
	if err != nil {
		return err
	}
	if caller == a.Creator {
		return runtimeerrors.New(runtimeerrors.KindAuthorization, "CannotBidOnOwnAuction", "auction creator cannot bid")
	}
	now := ctx.Now()
	if !a.HasStarted(now) {
		return runtimeerrors.New(runtimeerrors.KindStateGuard, "AuctionNotStarted", "auction has not started")
	}

	if highest, ok := a.HighestBid(); ok {
		if amount <= highest.Amount {
			return runtimeerrors.ErrCannotBidLessThanHighestBid
		}
	} else if amount <= a.StartPrice {
		return runtimeerrors.ErrCannotBidLessThanStartPrice
	}

	existingIdx := -1
	for i, b := range a.Bidders {
		if b.Bidder == caller {
			existingIdx = i
			break
		}
	}

	if existingIdx >= 0 {
		delta := amount - a.Bidders[existingIdx].Amount
		if err := ctx.Ledger.Transfer(caller, chain.PalletAccount, delta, ledger.KeepAlive); err != nil {
			return runtimeerrors.ErrNotEnoughBalance
		}
		a.Bidders = append(a.Bidders[:existingIdx], a.Bidders[existingIdx+1:]...)
	} else {
		if err := ctx.Ledger.Transfer(caller, chain.PalletAccount, amount, ledger.KeepAlive); err != nil {
			return runtimeerrors.ErrNotEnoughBalance
		}
	}

	newBidders, evicted := insertBid(a.Bidders, Bid{Bidder: caller, Amount: amount}, p.cfg.BidderListLengthLimit)
	a.Bidders = newBidders
	if evicted != nil {
		p.credit(evicted.Bidder, evicted.Amount)
		ctx.Events.Emit(chain.NewEvent("auction", "BidDropped", map[string]any{"nft_id": id, "bidder": evicted.Bidder, "amount": evicted.Amount}))
	}

	ctx.Metrics.BidsPlaced.Inc()
	ctx.Events.Emit(chain.NewEvent("auction", "BidAdded", map[string]any{"nft_id": id, "bidder": caller, "amount": amount}))

	if uint64(a.EndBlock-now) <= p.cfg.AuctionEndingPeriod {
		a.EndBlock += chain.BlockNumber(p.cfg.AuctionGracePeriod) - chain.BlockNumber(uint64(a.EndBlock)-uint64(now))
		a.IsExtended = true
		p.deadlines.Update(id, a.EndBlock)
		ctx.Events.Emit(chain.NewEvent("auction", "AuctionExtended", map[string]any{"nft_id": id, "new_end_block": a.EndBlock}))
	}
	return nil
}

// RemoveBid withdraws the caller's bid, only while outside the ending period.
func (p *Pallet) RemoveBid(ctx *chain.Context, caller chain.AccountID, id nft.ID) error {
	a, err := p.Get(id)
	if err != nil {
		return err
	}
	now := ctx.Now()
	if uint64(a.EndBlock-now) <= p.cfg.AuctionEndingPeriod {
		return runtimeerrors.New(runtimeerrors.KindStateGuard, "CannotRemoveBidDuringEndingPeriod", "auction is within its ending period")
	}
	idx := -1
	for i, b := range a.Bidders {
		if b.Bidder == caller {
			idx = i
			break
		}
	}
	if idx < 0 {
		return runtimeerrors.New(runtimeerrors.KindNotFound, "BidNotFound", "caller has no active bid")
	}
	bid := a.Bidders[idx]
	a.Bidders = append(a.Bidders[:idx], a.Bidders[idx+1:]...)
	if err := ctx.Ledger.Transfer(chain.PalletAccount, caller, bid.Amount, ledger.AllowDeath); err != nil {
		return err
	}
	ctx.Events.Emit(chain.NewEvent("auction", "BidRemoved", map[string]any{"nft_id": id, "bidder": caller}))
	return nil
}

// payForNFT implements spec.md §4.3 pay_for_nft: splits amount into
// commission/royalty/seller cuts and transfers each.
func (p *Pallet) payForNFT(ctx *chain.Context, from chain.AccountID, amount ledger.Balance, n *nft.NFT, a *Data, req ledger.ExistenceRequirement) error {
	mkt, err := p.marketplace.Get(a.MarketplaceID)
	if err != nil {
		return err
	}
	var commission ledger.Balance
	if mkt.CommissionFee != nil {
		commission = mkt.CommissionFee.Compute(amount)
		if commission > amount {
			commission = amount
		}
	}
	remainder := satSub(amount, commission)
	royalty := ledger.Balance(uint64(n.Royalty) * uint64(remainder) / 1_000_000)
	if royalty > remainder {
		royalty = remainder
	}
	sellerTake := satSub(remainder, royalty)

	if commission > 0 {
		if err := ctx.Ledger.Transfer(from, mkt.Owner, commission, req); err != nil {
			return err
		}
	}
	if royalty > 0 {
		if err := ctx.Ledger.Transfer(from, n.Creator, royalty, req); err != nil {
			return err
		}
	}
	if sellerTake > 0 {
		if err := ctx.Ledger.Transfer(from, a.Creator, sellerTake, req); err != nil {
			return err
		}
	}
	ctx.Events.Emit(chain.NewEvent("auction", "AuctionCompleted", map[string]any{
		"nft_id": n.ID, "commission": commission, "royalty": royalty, "seller_take": sellerTake,
	}))
	return nil
}

// BuyItNow immediately settles the auction at BuyItPrice.
func (p *Pallet) BuyItNow(ctx *chain.Context, caller chain.AccountID, id nft.ID) error {
	a, err := p.Get(id)
	if err != nil {
		return err
	}
	if caller == a.Creator {
		return runtimeerrors.New(runtimeerrors.KindAuthorization, "CannotBuyOwnAuction", "auction creator cannot buy their own auction")
	}
	if !a.HasStarted(ctx.Now()) {
		return runtimeerrors.New(runtimeerrors.KindStateGuard, "AuctionNotStarted", "auction has not started")
	}
	if a.BuyItPrice == nil {
		return runtimeerrors.New(runtimeerrors.KindParameter, "NoBuyItPrice", "auction has no buy-it-now price")
	}
	if highest, ok := a.HighestBid(); ok && highest.Amount >= *a.BuyItPrice {
		return runtimeerrors.New(runtimeerrors.KindStateGuard, "HighestBidExceedsBuyItPrice", "an existing bid already meets or exceeds buy_it_price")
	}

	n, err := p.registry.Get(id)
	if err != nil {
		return err
	}
	if err := p.payForNFT(ctx, caller, *a.BuyItPrice, n, a, ledger.KeepAlive); err != nil {
		return runtimeerrors.ErrNotEnoughBalance
	}
	for _, b := range a.Bidders {
		p.credit(b.Bidder, b.Amount)
	}

	if err := p.registry.TransferOwnership(id, caller); err != nil {
		return err
	}
	if err := p.registry.SetFlag(id, func(f *nft.Flags) { f.IsListed = false }); err != nil {
		return err
	}
	p.deadlines.Remove(id)
	delete(p.auctions, id)

	ctx.Metrics.AuctionsSettled.Inc()
	ctx.Events.Emit(chain.NewEvent("auction", "BoughtNow", map[string]any{"nft_id": id, "buyer": caller}))
	return nil
}

// Claim withdraws the caller's accumulated refund balance.
func (p *Pallet) Claim(ctx *chain.Context, caller chain.AccountID) error {
	amount, ok := p.claims[caller]
	if !ok || amount == 0 {
		return runtimeerrors.ErrClaimDoesNotExist
	}
	if err := ctx.Ledger.Transfer(chain.PalletAccount, caller, amount, ledger.AllowDeath); err != nil {
		return err
	}
	delete(p.claims, caller)
	ctx.Events.Emit(chain.NewEvent("auction", "Claimed", map[string]any{"account": caller, "amount": amount}))
	return nil
}

// OnInitialize drains at most ActionsInBlockLimit due auctions per block
// (spec.md §4.3). Per-iteration errors are swallowed so a single bad entry
// cannot stall the block (spec.md §5, §7).
//
// [Open Question, spec.md §9] when pay_for_nft fails mid-settlement we
// re-enqueue the auction at now+1 rather than dropping it, so the NFT is
// never left is_listed=true with no deadline entry (the "orphaned NFT"
// edge case the spec leaves unresolved).
func (p *Pallet) OnInitialize(ctx *chain.Context, now chain.BlockNumber) {
	due := p.deadlines.PopDue(now, p.cfg.ActionsInBlockLimit)
	ctx.Metrics.DrainIterations.WithLabelValues("auction").Add(float64(len(due)))

	for _, id := range due {
		a, ok := p.auctions[id]
		if !ok {
			continue
		}
		n, err := p.registry.Get(id)
		if err != nil {
			delete(p.auctions, id)
			continue
		}

		if highest, ok := a.HighestBid(); ok {
			if err := p.payForNFT(ctx, chain.PalletAccount, highest.Amount, n, a, ledger.AllowDeath); err != nil {
				ctx.Logger("auction").Warn("settlement failed, re-enqueuing", map[string]interface{}{"nft_id": id, "err": err.Error()})
				_ = p.deadlines.Insert(id, now+1)
				continue
			}
			for _, b := range a.Bidders[:len(a.Bidders)-1] {
				p.credit(b.Bidder, b.Amount)
			}
			if err := p.registry.TransferOwnership(id, highest.Bidder); err != nil {
				continue
			}
			ctx.Metrics.AuctionsSettled.Inc()
		}

		_ = p.registry.SetFlag(id, func(f *nft.Flags) { f.IsListed = false })
		delete(p.auctions, id)
	}
}
