// Package rent implements the RentEngine pallet: multi-protocol NFT rental
// contracts with fixed/subscription/infinite durations and cancellation-fee
// economics (spec.md §4.4).
package rent

import (
	"github.com/r3e-network/nft-runtime/chain"
	"github.com/r3e-network/nft-runtime/ledger"
	"github.com/r3e-network/nft-runtime/nft"
)

// DurationKind selects a contract's lifetime model.
type DurationKind int

const (
	Fixed DurationKind = iota
	Subscription
	Infinite
)

// Duration describes how long a contract runs. Blocks is the total
// duration for Fixed; Period/MaxDuration apply to Subscription.
type Duration struct {
	Kind        DurationKind
	Blocks      uint64
	Period      uint64
	MaxDuration uint64
}

// AcceptanceKind selects whether rent() starts the contract immediately or
// records an offer for the renter to accept.
type AcceptanceKind int

const (
	AutoAcceptance AcceptanceKind = iota
	ManualAcceptance
)

// Acceptance bundles the acceptance kind with an optional whitelist —
// when non-empty, only listed accounts may call rent()/request an offer.
type Acceptance struct {
	Kind      AcceptanceKind
	Whitelist []chain.AccountID
}

func (a Acceptance) allows(account chain.AccountID) bool {
	if len(a.Whitelist) == 0 {
		return true
	}
	for _, w := range a.Whitelist {
		if w == account {
			return true
		}
	}
	return false
}

// RevocationType controls who may end a started contract early.
type RevocationType int

const (
	NoRevocation RevocationType = iota
	Anytime
	OnSubscriptionChange
)

// FeeKind distinguishes the three cancellation-fee collateral forms.
type FeeKind int

const (
	FeeFixedTokens FeeKind = iota
	FeeFlexibleTokens
	FeeNFT
)

// CancellationFee is collateral posted by one side at contract creation,
// paid to the other side (or returned) on revocation (spec.md §4.4).
type CancellationFee struct {
	Kind   FeeKind
	Amount ledger.Balance
	NFTID  *nft.ID // set when Kind == FeeNFT; the collateral NFT, held in pallet custody
}

// RentFeeKind distinguishes the two forms a rent fee can take.
type RentFeeKind int

const (
	RentFeeTokens RentFeeKind = iota
	RentFeeNFT
)

// RentFee is what the rentee pays the renter each time a contract period
// starts (spec.md §3/§4.4). The NFT variant is restricted to non-Subscription
// durations: a recurring transfer of a specific NFT each period has no
// sensible renewal semantics, so only a Fixed/Infinite contract may use it.
type RentFee struct {
	Kind   RentFeeKind
	Amount ledger.Balance
	NFTID  *nft.ID // set when Kind == RentFeeNFT
}

// Contract is the RentContract entity, indexed one-per-NFT.
type Contract struct {
	NFTID      nft.ID
	Renter     chain.AccountID
	Rentee     chain.AccountID
	Duration   Duration
	Acceptance Acceptance
	Revocation RevocationType
	RentFee    RentFee

	RenterCancel CancellationFee
	RenteeCancel CancellationFee

	HasStarted bool
	StartBlock chain.BlockNumber

	// PendingTerms holds a proposed new Duration awaiting rentee approval
	// (change_subscription_terms / accept_subscription_terms).
	PendingTerms *Duration
}
