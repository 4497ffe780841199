package rent

import (
	"github.com/r3e-network/nft-runtime/chain"
	"github.com/r3e-network/nft-runtime/config"
	"github.com/r3e-network/nft-runtime/ledger"
	"github.com/r3e-network/nft-runtime/nft"
	"github.com/r3e-network/nft-runtime/runtimeerrors"
)

// Pallet is the RentEngine.
type Pallet struct {
	cfg      config.Config
	registry *nft.Registry

	contracts map[nft.ID]*Contract
	offers    map[nft.ID]map[chain.AccountID]struct{}

	fixedQueue        *chain.DeadlineQueue[nft.ID]
	subscriptionQueue *chain.DeadlineQueue[nft.ID]
	availableQueue    *chain.DeadlineQueue[nft.ID]
}

// New constructs an empty RentEngine.
func New(cfg config.Config, registry *nft.Registry) *Pallet {
	return &Pallet{
		cfg:               cfg,
		registry:          registry,
		contracts:         make(map[nft.ID]*Contract),
		offers:            make(map[nft.ID]map[chain.AccountID]struct{}),
		fixedQueue:        chain.NewDeadlineQueue[nft.ID](cfg.SimultaneousContractLimit),
		subscriptionQueue: chain.NewDeadlineQueue[nft.ID](cfg.SimultaneousContractLimit),
		availableQueue:    chain.NewDeadlineQueue[nft.ID](cfg.SimultaneousContractLimit),
	}
}

// Get returns a contract by nft id.
func (p *Pallet) Get(id nft.ID) (*Contract, error) {
	c, ok := p.contracts[id]
	if !ok {
		return nil, runtimeerrors.ErrContractNotFound
	}
	return c, nil
}

func satSub(a, b ledger.Balance) ledger.Balance {
	if a < b {
		return 0
	}
	return a - b
}

func blocksSince(now, start chain.BlockNumber) uint64 {
	if now < start {
		return 0
	}
	return uint64(now - start)
}

func validateParams(duration Duration, revocation RevocationType, rentFee RentFee, renterCancel, renteeCancel CancellationFee) error {
	if revocation == OnSubscriptionChange && duration.Kind != Subscription {
		return runtimeerrors.ErrDurationInvalid
	}
	if duration.Kind == Subscription && rentFee.Kind == RentFeeNFT {
		return runtimeerrors.ErrDurationAndRentFeeMismatch
	}
	if revocation == NoRevocation && (renterCancel.Amount > 0 || renterCancel.NFTID != nil) {
		return runtimeerrors.ErrCannotRevokeInThisRevocationType
	}
	if duration.Kind == Infinite && (renterCancel.Kind == FeeFlexibleTokens || renteeCancel.Kind == FeeFlexibleTokens) {
		return runtimeerrors.ErrDurationInvalid
	}
	return nil
}

// chargeCancellationFee debits/escrows a CancellationFee at contract
// creation: tokens move to the pallet account, NFTs move into pallet
// custody.
func (p *Pallet) chargeCancellationFee(ctx *chain.Context, payer chain.AccountID, fee CancellationFee) error {
	switch fee.Kind {
	case FeeFixedTokens, FeeFlexibleTokens:
		if fee.Amount == 0 {
			return nil
		}
		if err := ctx.Ledger.Transfer(payer, chain.PalletAccount, fee.Amount, ledger.KeepAlive); err != nil {
			return runtimeerrors.ErrNotEnoughFundsForCancellationFee
		}
	case FeeNFT:
		if fee.NFTID == nil {
			return nil
		}
		if err := p.registry.TransferOwnership(*fee.NFTID, chain.PalletAccount); err != nil {
			return err
		}
	}
	return nil
}

// CreateContract posts a new rent offer for an NFT the caller owns
// (spec.md §4.4).
func (p *Pallet) CreateContract(ctx *chain.Context, caller chain.AccountID, id nft.ID, duration Duration, acceptance Acceptance, revocation RevocationType, rentFee RentFee, renterCancel, renteeCancel CancellationFee) (*Contract, error) {
	if err := validateParams(duration, revocation, rentFee, renterCancel, renteeCancel); err != nil {
		return nil, err
	}
	n, err := p.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if n.Owner != caller {
		return nil, runtimeerrors.ErrNotTheNFTOwner
	}
	if err := nft.GuardRentable(n); err != nil {
		return nil, err
	}

	if err := p.chargeCancellationFee(ctx, caller, renterCancel); err != nil {
		return nil, err
	}

	now := ctx.Now()
	if err := p.availableQueue.Insert(id, now+chain.BlockNumber(p.cfg.ContractExpirationDuration)); err != nil {
		return nil, runtimeerrors.ErrMaxSimultaneousContractReached
	}

	if err := p.registry.SetFlag(id, func(f *nft.Flags) { f.IsRented = true }); err != nil {
		return nil, err
	}
	c := &Contract{
		NFTID: id, Renter: caller, Duration: duration, Acceptance: acceptance,
		Revocation: revocation, RentFee: rentFee,
		RenterCancel: renterCancel, RenteeCancel: renteeCancel,
	}
	p.contracts[id] = c

	ctx.Events.Emit(chain.NewEvent("rent", "ContractCreated", map[string]any{"nft_id": id, "renter": caller}))
	return c, nil
}

func (p *Pallet) queueFor(c *Contract) *chain.DeadlineQueue[nft.ID] {
	if c.Duration.Kind == Subscription {
		return p.subscriptionQueue
	}
	return p.fixedQueue
}

func (p *Pallet) deadlineFor(now chain.BlockNumber, c *Contract) chain.BlockNumber {
	switch c.Duration.Kind {
	case Subscription:
		return now + chain.BlockNumber(c.Duration.Period)
	case Fixed:
		return now + chain.BlockNumber(c.Duration.Blocks)
	default: // Infinite: startContract never queues it, so no drain ends it;
		// ContractExpirationDuration only keeps the returned block finite.
		return now + chain.BlockNumber(p.cfg.ContractExpirationDuration)
	}
}

// chargeRentFee pays the renter the first period's rent fee at contract
// start: tokens move directly from rentee to renter, the NFT variant
// transfers a specific NFT's ownership instead (spec.md §3's RentFee::NFT).
func (p *Pallet) chargeRentFee(ctx *chain.Context, rentee chain.AccountID, c *Contract) error {
	switch c.RentFee.Kind {
	case RentFeeNFT:
		if c.RentFee.NFTID == nil {
			return nil
		}
		n, err := p.registry.Get(*c.RentFee.NFTID)
		if err != nil {
			return err
		}
		if n.Owner != rentee {
			return runtimeerrors.ErrNotTheNFTOwner
		}
		return p.registry.TransferOwnership(*c.RentFee.NFTID, c.Renter)
	default:
		if c.RentFee.Amount == 0 {
			return nil
		}
		if err := ctx.Ledger.Transfer(rentee, c.Renter, c.RentFee.Amount, ledger.KeepAlive); err != nil {
			return runtimeerrors.ErrNotEnoughFundsForRentFee
		}
		return nil
	}
}

// startContract is the shared body of rent()/accept_rent_offer().
func (p *Pallet) startContract(ctx *chain.Context, c *Contract, rentee chain.AccountID) error {
	if err := p.chargeRentFee(ctx, rentee, c); err != nil {
		return err
	}
	if err := p.chargeCancellationFee(ctx, rentee, c.RenteeCancel); err != nil {
		return err
	}
	now := ctx.Now()
	c.Rentee = rentee
	c.HasStarted = true
	c.StartBlock = now
	p.availableQueue.Remove(c.NFTID)
	if c.Duration.Kind != Infinite {
		if err := p.queueFor(c).Insert(c.NFTID, p.deadlineFor(now, c)); err != nil {
			return runtimeerrors.ErrMaxSimultaneousContractReached
		}
	}
	ctx.Metrics.RentContractsOpen.Inc()
	ctx.Events.Emit(chain.NewEvent("rent", "ContractStarted", map[string]any{"nft_id": c.NFTID, "rentee": rentee}))
	return nil
}

// Rent starts a contract directly (AutoAcceptance) or records an offer
// (ManualAcceptance).
func (p *Pallet) Rent(ctx *chain.Context, caller chain.AccountID, id nft.ID) error {
	c, err := p.Get(id)
	if err != nil {
		return err
	}
	if caller == c.Renter {
		return runtimeerrors.ErrNotTheRentee
	}
	if c.HasStarted {
		return runtimeerrors.ErrCannotRentAlreadyRentedNFTs
	}
	if !c.Acceptance.allows(caller) {
		return runtimeerrors.ErrNotAuthorizedForRent
	}

	if c.Acceptance.Kind == ManualAcceptance {
		if p.offers[id] == nil {
			p.offers[id] = make(map[chain.AccountID]struct{})
		}
		if len(p.offers[id]) >= p.cfg.SimultaneousContractLimit {
			return runtimeerrors.ErrOfferListFull
		}
		p.offers[id][caller] = struct{}{}
		ctx.Events.Emit(chain.NewEvent("rent", "ContractOfferCreated", map[string]any{"nft_id": id, "rentee": caller}))
		return nil
	}
	return p.startContract(ctx, c, caller)
}

// AcceptRentOffer lets the renter pick one of the queued offers.
func (p *Pallet) AcceptRentOffer(ctx *chain.Context, caller chain.AccountID, id nft.ID, rentee chain.AccountID) error {
	c, err := p.Get(id)
	if err != nil {
		return err
	}
	if c.Renter != caller {
		return runtimeerrors.ErrNotTheRenter
	}
	if c.Acceptance.Kind != ManualAcceptance {
		return runtimeerrors.ErrDurationInvalid
	}
	if _, ok := p.offers[id][rentee]; !ok {
		return runtimeerrors.ErrNotAuthorizedForRent
	}
	if err := p.startContract(ctx, c, rentee); err != nil {
		return err
	}
	delete(p.offers[id], rentee)
	return nil
}

// RetractRentOffer withdraws the caller's own pending offer.
func (p *Pallet) RetractRentOffer(ctx *chain.Context, caller chain.AccountID, id nft.ID) error {
	if _, ok := p.offers[id][caller]; !ok {
		return runtimeerrors.ErrNotAuthorizedForRent
	}
	delete(p.offers[id], caller)
	ctx.Events.Emit(chain.NewEvent("rent", "ContractOfferRetracted", map[string]any{"nft_id": id, "rentee": caller}))
	return nil
}

// proRata scales amount by remaining/total blocks of the contract's
// duration when ProRataCancellationFees is enabled (spec.md §9 Open
// Questions).
func (p *Pallet) proRata(ctx *chain.Context, c *Contract, amount ledger.Balance) ledger.Balance {
	if !p.cfg.ProRataCancellationFees || c.Duration.Kind != Fixed || c.Duration.Blocks == 0 {
		return amount
	}
	elapsed := blocksSince(ctx.Now(), c.StartBlock)
	total := c.Duration.Blocks
	remaining := satSub(ledger.Balance(total), ledger.Balance(elapsed))
	return amount * remaining / ledger.Balance(total)
}

func (p *Pallet) settleCancellationFee(ctx *chain.Context, fee CancellationFee, scale func(ledger.Balance) ledger.Balance, to chain.AccountID) error {
	switch fee.Kind {
	case FeeFixedTokens:
		if fee.Amount == 0 {
			return nil
		}
		return ctx.Ledger.Transfer(chain.PalletAccount, to, fee.Amount, ledger.AllowDeath)
	case FeeFlexibleTokens:
		amt := fee.Amount
		if scale != nil {
			amt = scale(amt)
		}
		if amt == 0 {
			return nil
		}
		return ctx.Ledger.Transfer(chain.PalletAccount, to, amt, ledger.AllowDeath)
	case FeeNFT:
		if fee.NFTID == nil {
			return nil
		}
		return p.registry.TransferOwnership(*fee.NFTID, to)
	}
	return nil
}

func (p *Pallet) closeContract(ctx *chain.Context, c *Contract) {
	p.fixedQueue.Remove(c.NFTID)
	p.subscriptionQueue.Remove(c.NFTID)
	p.availableQueue.Remove(c.NFTID)
	_ = p.registry.SetFlag(c.NFTID, func(f *nft.Flags) { f.IsRented = false })
	if c.HasStarted {
		ctx.Metrics.RentContractsOpen.Dec()
	}
	delete(p.contracts, c.NFTID)
	delete(p.offers, c.NFTID)
}

// RevokeContract implements spec.md §4.4's cancellation-fee accounting.
// Either party may call it; behavior depends on who calls and whether the
// contract has started.
func (p *Pallet) RevokeContract(ctx *chain.Context, caller chain.AccountID, id nft.ID) error {
	c, err := p.Get(id)
	if err != nil {
		return err
	}
	if caller != c.Renter && caller != c.Rentee {
		return runtimeerrors.ErrNotTheContractOwner
	}

	if !c.HasStarted {
		if caller != c.Renter {
			return runtimeerrors.ErrNotTheRenter
		}
		if err := p.settleCancellationFee(ctx, c.RenterCancel, nil, c.Renter); err != nil {
			return err
		}
		ctx.Events.Emit(chain.NewEvent("rent", "ContractCancelled", map[string]any{"nft_id": id}))
		p.closeContract(ctx, c)
		return nil
	}

	if caller == c.Renter && c.Revocation == Anytime {
		return runtimeerrors.ErrCannotRevoke
	}

	scale := func(amt ledger.Balance) ledger.Balance { return p.proRata(ctx, c, amt) }
	if caller == c.Renter {
		if err := p.settleCancellationFee(ctx, c.RenterCancel, scale, c.Rentee); err != nil {
			return err
		}
		if err := p.settleCancellationFee(ctx, c.RenteeCancel, scale, c.Rentee); err != nil {
			return err
		}
	} else {
		if err := p.settleCancellationFee(ctx, c.RenteeCancel, scale, c.Renter); err != nil {
			return err
		}
		if err := p.settleCancellationFee(ctx, c.RenterCancel, scale, c.Renter); err != nil {
			return err
		}
	}

	ctx.Events.Emit(chain.NewEvent("rent", "ContractRevoked", map[string]any{"nft_id": id, "by": caller}))
	p.closeContract(ctx, c)
	return nil
}

// revokeBySystem implements the third cancellation branch: both fees
// return to their original posters.
func (p *Pallet) revokeBySystem(ctx *chain.Context, c *Contract) {
	_ = p.settleCancellationFee(ctx, c.RenterCancel, nil, c.Renter)
	_ = p.settleCancellationFee(ctx, c.RenteeCancel, nil, c.Rentee)
	ctx.Events.Emit(chain.NewEvent("rent", "ContractRevoked", map[string]any{"nft_id": c.NFTID, "by": "system"}))
	p.closeContract(ctx, c)
}

// ChangeSubscriptionTerms proposes a new Duration for a running
// subscription contract under OnSubscriptionChange revocation.
func (p *Pallet) ChangeSubscriptionTerms(ctx *chain.Context, caller chain.AccountID, id nft.ID, newTerms Duration) error {
	c, err := p.Get(id)
	if err != nil {
		return err
	}
	if c.Renter != caller {
		return runtimeerrors.ErrNotTheRenter
	}
	if c.Duration.Kind != Subscription || c.Revocation != OnSubscriptionChange {
		return runtimeerrors.ErrDurationInvalid
	}
	if newTerms.Kind != Subscription {
		return runtimeerrors.ErrDurationInvalid
	}
	c.PendingTerms = &newTerms
	ctx.Events.Emit(chain.NewEvent("rent", "SubscriptionTermsProposed", map[string]any{"nft_id": id}))
	return nil
}

// AcceptSubscriptionTerms lets the rentee approve a pending term change.
func (p *Pallet) AcceptSubscriptionTerms(ctx *chain.Context, caller chain.AccountID, id nft.ID) error {
	c, err := p.Get(id)
	if err != nil {
		return err
	}
	if c.Rentee != caller {
		return runtimeerrors.ErrNotTheRentee
	}
	if c.PendingTerms == nil {
		return runtimeerrors.New(runtimeerrors.KindStateGuard, "NoPendingSubscriptionTerms", "no terms change is pending")
	}
	c.Duration = *c.PendingTerms
	c.PendingTerms = nil
	ctx.Events.Emit(chain.NewEvent("rent", "SubscriptionTermsAccepted", map[string]any{"nft_id": id}))
	return nil
}

// OnInitialize drains the three deadline queues (spec.md §4.4 "Block
// drain").
func (p *Pallet) OnInitialize(ctx *chain.Context, now chain.BlockNumber) {
	p.drainFixed(ctx, now)
	p.drainSubscription(ctx, now)
	p.drainAvailable(ctx, now)
}

func (p *Pallet) drainFixed(ctx *chain.Context, now chain.BlockNumber) {
	due := p.fixedQueue.PopDue(now, p.cfg.ActionsInBlockLimit)
	ctx.Metrics.DrainIterations.WithLabelValues("rent_fixed").Add(float64(len(due)))
	for _, id := range due {
		c, ok := p.contracts[id]
		if !ok {
			continue
		}
		p.revokeBySystem(ctx, c)
	}
}

func (p *Pallet) drainSubscription(ctx *chain.Context, now chain.BlockNumber) {
	due := p.subscriptionQueue.PopDue(now, p.cfg.ActionsInBlockLimit)
	ctx.Metrics.DrainIterations.WithLabelValues("rent_subscription").Add(float64(len(due)))
	for _, id := range due {
		c, ok := p.contracts[id]
		if !ok {
			continue
		}
		elapsed := blocksSince(now, c.StartBlock)
		if c.Duration.MaxDuration > 0 && elapsed >= c.Duration.MaxDuration {
			p.revokeBySystem(ctx, c)
			continue
		}
		// rentFee is always the Tokens variant here — Subscription durations
		// reject RentFeeNFT at CreateContract time.
		if err := ctx.Ledger.Transfer(c.Rentee, c.Renter, c.RentFee.Amount, ledger.KeepAlive); err != nil {
			p.revokeBySystem(ctx, c)
			continue
		}
		_ = p.subscriptionQueue.Insert(id, now+chain.BlockNumber(c.Duration.Period))
		ctx.Events.Emit(chain.NewEvent("rent", "SubscriptionCharged", map[string]any{"nft_id": id}))
	}
}

func (p *Pallet) drainAvailable(ctx *chain.Context, now chain.BlockNumber) {
	due := p.availableQueue.PopDue(now, p.cfg.ActionsInBlockLimit)
	ctx.Metrics.DrainIterations.WithLabelValues("rent_available").Add(float64(len(due)))
	for _, id := range due {
		c, ok := p.contracts[id]
		if !ok || c.HasStarted {
			continue
		}
		_ = p.settleCancellationFee(ctx, c.RenterCancel, nil, c.Renter)
		ctx.Events.Emit(chain.NewEvent("rent", "ContractExpiredUnaccepted", map[string]any{"nft_id": id}))
		p.closeContract(ctx, c)
	}
}
