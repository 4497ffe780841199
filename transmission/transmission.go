package transmission

import (
	"github.com/r3e-network/nft-runtime/chain"
	"github.com/r3e-network/nft-runtime/config"
	"github.com/r3e-network/nft-runtime/ledger"
	"github.com/r3e-network/nft-runtime/nft"
	"github.com/r3e-network/nft-runtime/runtimeerrors"
)

// Pallet is the TransmissionEngine.
type Pallet struct {
	cfg           config.Config
	registry      *nft.Registry
	feesCollector chain.AccountID

	protocols map[nft.ID]*Protocol
	queue     *chain.DeadlineQueue[nft.ID]

	atBlockFee         ledger.Balance
	atBlockWithResetFee ledger.Balance
	onConsentFee       ledger.Balance
	onConsentAtBlockFee ledger.Balance
}

// New constructs an empty TransmissionEngine.
func New(cfg config.Config, registry *nft.Registry, feesCollector chain.AccountID) *Pallet {
	return &Pallet{
		cfg:                 cfg,
		registry:            registry,
		feesCollector:       feesCollector,
		protocols:           make(map[nft.ID]*Protocol),
		queue:               chain.NewDeadlineQueue[nft.ID](cfg.SimultaneousTransmissionLimit),
		atBlockFee:          cfg.InitialAtBlockFee,
		atBlockWithResetFee: cfg.InitialAtBlockWithResetFee,
		onConsentFee:        cfg.InitialOnConsentFee,
		onConsentAtBlockFee: cfg.InitialOnConsentAtBlockFee,
	}
}

// Get returns a protocol by nft id.
func (p *Pallet) Get(id nft.ID) (*Protocol, error) {
	pr, ok := p.protocols[id]
	if !ok {
		return nil, runtimeerrors.ErrTransmissionNotFound
	}
	return pr, nil
}

func (p *Pallet) feeFor(kind ProtocolKind) ledger.Balance {
	switch kind {
	case AtBlock:
		return p.atBlockFee
	case AtBlockWithReset:
		return p.atBlockWithResetFee
	case OnConsent:
		return p.onConsentFee
	case OnConsentAtBlock:
		return p.onConsentAtBlockFee
	}
	return 0
}

func hasDuplicates(accounts []chain.AccountID) bool {
	seen := make(map[chain.AccountID]struct{}, len(accounts))
	for _, a := range accounts {
		if _, ok := seen[a]; ok {
			return true
		}
		seen[a] = struct{}{}
	}
	return false
}

func (p *Pallet) validateBlockTarget(now, target chain.BlockNumber) error {
	if target <= now {
		return runtimeerrors.ErrBlockNumberInThePast
	}
	if uint64(target-now) > p.cfg.MaxBlockDuration {
		return runtimeerrors.ErrDurationExceedsMaximumLimit
	}
	return nil
}

// SetTransmissionProtocol attaches a conditional-transfer protocol to an
// NFT the caller owns (spec.md §4.5).
func (p *Pallet) SetTransmissionProtocol(ctx *chain.Context, caller chain.AccountID, id nft.ID, recipient chain.AccountID, kind ProtocolKind, targetBlock chain.BlockNumber, threshold int, consentList []chain.AccountID, cancellation Cancellation) error {
	n, err := p.registry.Get(id)
	if err != nil {
		return err
	}
	if n.Owner != caller {
		return runtimeerrors.ErrNotTheNFTOwner
	}
	if recipient == caller {
		return runtimeerrors.ErrRecipientIsSameAsOwner
	}
	if err := nft.GuardTransmittable(n); err != nil {
		return err
	}

	now := ctx.Now()
	switch kind {
	case AtBlock, AtBlockWithReset:
		if err := p.validateBlockTarget(now, targetBlock); err != nil {
			return err
		}
	case OnConsentAtBlock:
		if err := p.validateBlockTarget(now, targetBlock); err != nil {
			return err
		}
		fallthrough
	case OnConsent:
		if threshold <= 0 {
			return runtimeerrors.ErrThresholdTooLow
		}
		if threshold > len(consentList) && len(consentList) > 0 {
			return runtimeerrors.ErrThresholdTooHigh
		}
		if len(consentList) > p.cfg.MaxConsentListSize {
			return runtimeerrors.ErrInvalidConsentList
		}
		if hasDuplicates(consentList) {
			return runtimeerrors.ErrDuplicatesInConsentList
		}
	}

	fee := p.feeFor(kind)
	if fee > 0 {
		if err := ctx.Ledger.Transfer(caller, p.feesCollector, fee, ledger.KeepAlive); err != nil {
			return runtimeerrors.ErrNotEnoughBalance
		}
	}

	pr := &Protocol{
		NFTID: id, Owner: caller, Recipient: recipient, Kind: kind,
		TargetBlock: targetBlock, Threshold: threshold, ConsentList: consentList,
		Cancellation: cancellation,
	}

	if kind != OnConsent {
		if err := p.queue.Insert(id, p.deadlineFor(now, pr)); err != nil {
			return runtimeerrors.ErrSimultaneousTransmissionLimitReached
		}
	}

	p.protocols[id] = pr
	if err := p.registry.SetFlag(id, func(f *nft.Flags) { f.IsTransmission = true }); err != nil {
		return err
	}
	ctx.Events.Emit(chain.NewEvent("transmission", "TransmissionProtocolSet", map[string]any{"nft_id": id, "recipient": recipient, "kind": kind}))
	return nil
}

// deadlineFor picks the queue deadline: the explicit target block for
// AtBlock, AtBlockWithReset and OnConsentAtBlock, or now+MaxBlockDuration
// for any other kind (OnConsent, which SetTransmissionProtocol never queues).
func (p *Pallet) deadlineFor(now chain.BlockNumber, pr *Protocol) chain.BlockNumber {
	if pr.Kind == AtBlock || pr.Kind == AtBlockWithReset || pr.Kind == OnConsentAtBlock {
		return pr.TargetBlock
	}
	return now + chain.BlockNumber(p.cfg.MaxBlockDuration)
}

// RemoveTransmissionProtocol clears a protocol. Owner-only; only permitted
// under the protocol's own Cancellation policy.
func (p *Pallet) RemoveTransmissionProtocol(ctx *chain.Context, caller chain.AccountID, id nft.ID) error {
	pr, err := p.Get(id)
	if err != nil {
		return err
	}
	if pr.Owner != caller {
		return runtimeerrors.ErrNotTheNFTOwner
	}
	if !pr.Cancellation.Allows(ctx.Now()) {
		return runtimeerrors.New(runtimeerrors.KindStateGuard, "CannotCancelTransmission", "cancellation policy forbids removal now")
	}
	p.queue.Remove(id)
	delete(p.protocols, id)
	_ = p.registry.SetFlag(id, func(f *nft.Flags) { f.IsTransmission = false })
	ctx.Events.Emit(chain.NewEvent("transmission", "TransmissionProtocolRemoved", map[string]any{"nft_id": id}))
	return nil
}

// ResetTimer moves an AtBlockWithReset protocol's target block forward.
func (p *Pallet) ResetTimer(ctx *chain.Context, caller chain.AccountID, id nft.ID, newBlock chain.BlockNumber) error {
	pr, err := p.Get(id)
	if err != nil {
		return err
	}
	if pr.Owner != caller {
		return runtimeerrors.ErrNotTheNFTOwner
	}
	if pr.Kind != AtBlockWithReset {
		return runtimeerrors.New(runtimeerrors.KindParameter, "NotAResettableProtocol", "protocol is not AtBlockWithReset")
	}
	if err := p.validateBlockTarget(ctx.Now(), newBlock); err != nil {
		return err
	}
	pr.TargetBlock = newBlock
	p.queue.Update(id, newBlock)
	ctx.Events.Emit(chain.NewEvent("transmission", "TimerReset", map[string]any{"nft_id": id, "new_block": newBlock}))
	return nil
}

// transmit performs the actual conditional transfer: ownership change,
// flag clearing, and record removal (spec.md §4.5).
func (p *Pallet) transmit(ctx *chain.Context, pr *Protocol) {
	_ = p.registry.TransferOwnership(pr.NFTID, pr.Recipient)
	_ = p.registry.SetFlag(pr.NFTID, func(f *nft.Flags) { f.IsTransmission = false })
	p.queue.Remove(pr.NFTID)
	delete(p.protocols, pr.NFTID)
	ctx.Metrics.TransmissionsDone.Inc()
	ctx.Events.Emit(chain.NewEvent("transmission", "Transmitted", map[string]any{"nft_id": pr.NFTID, "recipient": pr.Recipient}))
}

// AddConsent records the caller's consent toward an OnConsent /
// OnConsentAtBlock protocol's threshold.
func (p *Pallet) AddConsent(ctx *chain.Context, caller chain.AccountID, id nft.ID) error {
	pr, err := p.Get(id)
	if err != nil {
		return err
	}
	if !pr.isConsentProtocol() {
		return runtimeerrors.New(runtimeerrors.KindParameter, "NotAConsentProtocol", "protocol is not consent-based")
	}
	if !pr.allowedToConsent(caller) {
		return runtimeerrors.ErrNotAuthorizedForRent
	}
	if pr.hasConsented(caller) {
		return runtimeerrors.New(runtimeerrors.KindStateGuard, "AlreadyConsented", "caller already consented")
	}
	if len(pr.Consented) >= p.cfg.MaxConsentListSize {
		return runtimeerrors.ErrConsentListFull
	}
	pr.Consented = append(pr.Consented, caller)
	ctx.Events.Emit(chain.NewEvent("transmission", "ConsentAdded", map[string]any{"nft_id": id, "account": caller}))

	if len(pr.Consented) < pr.Threshold {
		return nil
	}
	ctx.Events.Emit(chain.NewEvent("transmission", "ThresholdReached", map[string]any{"nft_id": id}))

	switch pr.Kind {
	case OnConsent:
		p.transmit(ctx, pr)
	case OnConsentAtBlock:
		if pr.TargetBlock <= ctx.Now() {
			p.transmit(ctx, pr)
		} else {
			p.queue.Update(id, pr.TargetBlock)
			pr.Consented = nil
		}
	}
	return nil
}

// OnInitialize drains at most ActionsInBlockLimit due transmissions per
// block (spec.md §4.5 "Block drain").
func (p *Pallet) OnInitialize(ctx *chain.Context, now chain.BlockNumber) {
	due := p.queue.PopDue(now, p.cfg.ActionsInBlockLimit)
	ctx.Metrics.DrainIterations.WithLabelValues("transmission").Add(float64(len(due)))
	for _, id := range due {
		pr, ok := p.protocols[id]
		if !ok {
			continue
		}
		p.transmit(ctx, pr)
	}
}
