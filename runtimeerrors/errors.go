// Package runtimeerrors provides the typed error taxonomy shared by every
// domain pallet (nft, marketplace, auction, rent, transmission, tee).
package runtimeerrors

import "errors"

// Kind groups errors into the categories an extrinsic dispatcher and the
// on_initialize drain loops need to branch on.
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindAuthorization Kind = "authorization"
	KindStateGuard    Kind = "state_guard"
	KindParameter     Kind = "parameter"
	KindCapacity      Kind = "capacity"
	KindFunds         Kind = "funds"
	KindInternal      Kind = "internal"
)

// RuntimeError is the concrete error type returned by every pallet
// operation. Code is a stable identifier (matches the names used in
// spec.md §7); Message is a human-readable detail for logs and events.
type RuntimeError struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *RuntimeError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// New constructs a RuntimeError of the given kind and code.
func New(kind Kind, code, message string) *RuntimeError {
	return &RuntimeError{Kind: kind, Code: code, Message: message}
}

// Is lets errors.Is(err, sentinel) match on Code rather than pointer
// identity, since each call site constructs a fresh *RuntimeError.
func (e *RuntimeError) Is(target error) bool {
	var re *RuntimeError
	if !errors.As(target, &re) {
		return false
	}
	return re.Code == e.Code
}

func notFound(code, msg string) error      { return New(KindNotFound, code, msg) }
func auth(code, msg string) error          { return New(KindAuthorization, code, msg) }
func stateGuard(code, msg string) error    { return New(KindStateGuard, code, msg) }
func parameter(code, msg string) error     { return New(KindParameter, code, msg) }
func capacity(code, msg string) error      { return New(KindCapacity, code, msg) }
func funds(code, msg string) error         { return New(KindFunds, code, msg) }
func internal(code, msg string) error      { return New(KindInternal, code, msg) }

// NotFound errors.
var (
	ErrNFTNotFound           = notFound("NFTNotFound", "nft does not exist")
	ErrAuctionDoesNotExist   = notFound("AuctionDoesNotExist", "auction does not exist")
	ErrMarketplaceNotFound   = notFound("MarketplaceNotFound", "marketplace does not exist")
	ErrCollectionNotFound    = notFound("CollectionNotFound", "collection does not exist")
	ErrContractNotFound      = notFound("ContractNotFound", "rent contract does not exist")
	ErrTransmissionNotFound  = notFound("TransmissionNotFound", "transmission protocol not set")
	ErrEnclaveNotFound       = notFound("EnclaveNotFound", "enclave not registered")
	ErrUpdateRequestNotFound = notFound("UpdateRequestNotFound", "no pending enclave update")
	ErrRegistrationNotFound  = notFound("RegistrationNotFound", "no pending enclave registration")
	ErrClaimDoesNotExist     = notFound("ClaimDoesNotExist", "no withdrawable claim for account")
	ErrClusterNotFound       = notFound("ClusterNotFound", "cluster does not exist")
	ErrSaleNotFound          = notFound("SaleNotFound", "nft is not listed")
)

// Authorization errors.
var (
	ErrNotTheNFTOwner        = auth("NotTheNFTOwner", "caller is not the nft owner")
	ErrNotTheNFTCreator      = auth("NotTheNFTCreator", "caller is not the nft creator")
	ErrNotTheAuctionCreator  = auth("NotTheAuctionCreator", "caller did not create this auction")
	ErrNotTheMarketplaceOwner = auth("NotTheMarketplaceOwner", "caller does not own this marketplace")
	ErrNotTheCollectionOwner = auth("NotTheCollectionOwner", "caller does not own this collection")
	ErrNotTheRenter          = auth("NotTheRenter", "caller is not the renter")
	ErrNotTheRentee          = auth("NotTheRentee", "caller is not the rentee")
	ErrNotTheContractOwner   = auth("NotTheContractOwner", "caller has no standing over this contract")
	ErrNotAuthorizedForRent  = auth("NotAuthorizedForRent", "caller is not whitelisted for this rent offer")
	ErrNotAllowedToList      = auth("NotAllowedToList", "account is not allowed to list on this marketplace")
	ErrNotARegisteredEnclave = auth("NotARegisteredEnclave", "caller is not a registered enclave")
	ErrBadOrigin             = auth("BadOrigin", "origin is not authorized for this call")
	ErrNotAMetricsServer     = auth("NotAMetricsServer", "caller is not a registered metrics server")
	ErrNotTheOperator        = auth("NotTheOperator", "caller is not the enclave operator")
)

// StateGuard errors (one per illegal NFT-flag combination encountered).
var (
	ErrCannotTransferListedNFTs     = stateGuard("CannotTransferListedNFTs", "nft is listed")
	ErrCannotTransferRentedNFTs     = stateGuard("CannotTransferRentedNFTs", "nft is rented")
	ErrCannotTransferDelegatedNFTs  = stateGuard("CannotTransferDelegatedNFTs", "nft is delegated")
	ErrCannotTransferSyncingNFTs    = stateGuard("CannotTransferSyncingNFTs", "nft is syncing shards")
	ErrCannotTransferTransmissionNFTs = stateGuard("CannotTransferTransmissionNFTs", "nft has a transmission protocol set")
	ErrCannotTransferSoulboundNFTs  = stateGuard("CannotTransferSoulboundNFTs", "nft is soulbound and caller is not the creator")
	ErrCannotListAlreadyListedNFTs  = stateGuard("CannotListAlreadyListedNFTs", "nft is already listed")
	ErrCannotListCapsuleNFTs        = stateGuard("CannotListCapsuleNFTs", "nft is a capsule")
	ErrCannotListDelegatedNFTs      = stateGuard("CannotListDelegatedNFTs", "nft is delegated")
	ErrCannotListRentedNFTs         = stateGuard("CannotListRentedNFTs", "nft is rented")
	ErrCannotListSyncingNFTs        = stateGuard("CannotListSyncingNFTs", "nft is syncing shards")
	ErrCannotListNotCreatedSoulboundNFTs = stateGuard("CannotListNotCreatedSoulboundNFTs", "soulbound nft not held by its creator")
	ErrCannotDelegateListedNFTs     = stateGuard("CannotDelegateListedNFTs", "nft is listed")
	ErrCannotDelegateRentedNFTs     = stateGuard("CannotDelegateRentedNFTs", "nft is rented")
	ErrCannotDelegateSoulboundNFTs  = stateGuard("CannotDelegateSoulboundNFTs", "nft is soulbound and caller is not the creator")
	ErrCannotRentListedNFTs         = stateGuard("CannotRentListedNFTs", "nft is listed")
	ErrCannotRentCapsuleNFTs        = stateGuard("CannotRentCapsuleNFTs", "nft is a capsule")
	ErrCannotRentDelegatedNFTs      = stateGuard("CannotRentDelegatedNFTs", "nft is delegated")
	ErrCannotRentSoulboundNFTs      = stateGuard("CannotRentSoulboundNFTs", "nft is soulbound and caller is not the creator")
	ErrCannotRentAuctionedNFTs      = stateGuard("CannotRentAuctionedNFTs", "nft is in an active auction")
	ErrCannotRentAlreadyRentedNFTs  = stateGuard("CannotRentAlreadyRentedNFTs", "nft is already rented")
	ErrCannotSetTransmissionListedNFTs = stateGuard("CannotSetTransmissionListedNFTs", "nft is listed")
	ErrCannotSetTransmissionCapsuleNFTs = stateGuard("CannotSetTransmissionCapsuleNFTs", "nft is a capsule")
	ErrCannotSetTransmissionRentedNFTs  = stateGuard("CannotSetTransmissionRentedNFTs", "nft is rented")
	ErrCannotSetTransmissionDelegatedNFTs = stateGuard("CannotSetTransmissionDelegatedNFTs", "nft is delegated")
	ErrCannotSetTransmissionSyncingNFTs = stateGuard("CannotSetTransmissionSyncingNFTs", "nft is syncing shards")
	ErrCannotSetTransmissionAlreadySetNFTs = stateGuard("CannotSetTransmissionAlreadySetNFTs", "nft already has a transmission protocol")
	ErrCannotCreateAuctionListedNFTs    = stateGuard("CannotCreateAuctionListedNFTs", "nft is listed")
	ErrCannotCreateAuctionCapsuleNFTs   = stateGuard("CannotCreateAuctionCapsuleNFTs", "nft is a capsule")
	ErrCannotCreateAuctionDelegatedNFTs = stateGuard("CannotCreateAuctionDelegatedNFTs", "nft is delegated")
	ErrCannotCreateAuctionRentedNFTs    = stateGuard("CannotCreateAuctionRentedNFTs", "nft is rented")
	ErrCannotCreateAuctionSyncingNFTs   = stateGuard("CannotCreateAuctionSyncingNFTs", "nft is syncing shards")
	ErrCannotCreateAuctionNotCreatedSoulboundNFTs = stateGuard("CannotCreateAuctionNotCreatedSoulboundNFTs", "soulbound nft not held by its creator")
	ErrCannotBurnListedNFTs       = stateGuard("CannotBurnListedNFTs", "nft is listed")
	ErrCannotBurnRentedNFTs       = stateGuard("CannotBurnRentedNFTs", "nft is rented")
	ErrCannotBurnDelegatedNFTs    = stateGuard("CannotBurnDelegatedNFTs", "nft is delegated")
	ErrCannotBurnSyncingNFTs      = stateGuard("CannotBurnSyncingNFTs", "nft is syncing shards")
	ErrCannotBurnTransmissionNFTs = stateGuard("CannotBurnTransmissionNFTs", "nft has a transmission protocol set")
	ErrCollectionIsClosed         = stateGuard("CollectionIsClosed", "collection is closed")
	ErrNFTNotInThatCollection     = stateGuard("NFTNotInThatCollection", "nft does not belong to the collection")
	ErrCannotRevoke               = stateGuard("CannotRevoke", "renter cannot revoke a running contract under this revocation type")
	ErrEnclaveAlreadyRegistered   = stateGuard("EnclaveAlreadyRegistered", "enclave_address is already in use across registrations/active/pending-update")
	ErrEnclaveNotActive           = stateGuard("EnclaveNotActive", "enclave is not in the Active state")
	ErrEnclaveNotRegistered       = stateGuard("EnclaveNotRegistered", "enclave is not in the Registered state")
	ErrAlreadyUnlocking           = stateGuard("AlreadyUnlocking", "an unbonding lock already exists for this operator")
	ErrNotUnlocking               = stateGuard("NotUnlocking", "operator has no unbonding lock in progress")
	ErrBondingPeriodNotElapsed    = stateGuard("BondingPeriodNotElapsed", "TeeBondingDuration has not elapsed since unbonded_at")
	ErrClusterNotEmpty            = stateGuard("ClusterNotEmpty", "cluster still has assigned enclaves")
	ErrRewardsAlreadyClaimedForEra = stateGuard("RewardsAlreadyClaimedForEra", "operator already claimed rewards for this era")
	ErrUpdateRequestAlreadyExists  = stateGuard("UpdateRequestAlreadyExists", "operator already has a pending enclave update")
	ErrBondExtraNotAllowed         = stateGuard("BondExtraNotAllowed", "staked amount already meets or exceeds the current staking amount")
	ErrRefundExcessNotAllowed      = stateGuard("RefundExcessNotAllowed", "staked amount does not exceed the current staking amount")
)

// Parameter errors.
var (
	ErrAuctionCannotStartInThePast        = parameter("AuctionCannotStartInThePast", "start_block is before the current block")
	ErrAuctionDurationIsTooLong           = parameter("AuctionDurationIsTooLong", "end_block - start_block exceeds MaxAuctionDuration")
	ErrAuctionDurationIsTooShort          = parameter("AuctionDurationIsTooShort", "end_block - start_block is below MinAuctionDuration")
	ErrAuctionStartIsTooFarAway           = parameter("AuctionStartIsTooFarAway", "start_block - now exceeds MaxAuctionDelay")
	ErrBuyItPriceCannotBeLessOrEqualThanStartPrice = parameter("BuyItPriceCannotBeLessOrEqualThanStartPrice", "buy_it_price must exceed start_price")
	ErrCannotBidLessThanHighestBid        = parameter("CannotBidLessThanHighestBid", "bid must exceed the current highest bid")
	ErrCannotBidLessThanStartPrice        = parameter("CannotBidLessThanStartPrice", "bid must exceed the start price")
	ErrCannotEndInThePast                 = parameter("CannotEndInThePast", "end_block is not after start_block")
	ErrDurationExceedsMaximumLimit        = parameter("DurationExceedsMaximumLimit", "duration exceeds MaxBlockDuration")
	ErrDurationInvalid                    = parameter("DurationInvalid", "duration/acceptance/fee combination is invalid")
	ErrDurationAndRentFeeMismatch         = parameter("DurationAndRentFeeMismatch", "subscription duration cannot pair with an NFT rent fee")
	ErrClaimEraTooRecent                  = parameter("ClaimEraTooRecent", "era must be strictly before current_era - 2")
	ErrClaimEraTooOld                     = parameter("ClaimEraTooOld", "era is not after current_era - TeeHistoryDepth")
	ErrClaimEraBeforeAssignment           = parameter("ClaimEraBeforeAssignment", "era precedes the operator's assigned era")
	ErrThresholdTooHigh                   = parameter("ThresholdTooHigh", "consent threshold exceeds the consent list length")
	ErrThresholdTooLow                    = parameter("ThresholdTooLow", "consent threshold must be greater than zero")
	ErrInvalidConsentList                 = parameter("InvalidConsentList", "consent list exceeds MaxConsentListSize")
	ErrDuplicatesInConsentList            = parameter("DuplicatesInConsentList", "consent list contains a duplicate account")
	ErrRecipientIsSameAsOwner             = parameter("RecipientIsSameAsOwner", "recipient must differ from the current owner")
	ErrBlockNumberInThePast               = parameter("BlockNumberInThePast", "target block is not after the current block")
	ErrCannotRevokeInThisRevocationType   = parameter("CannotRevokeInThisRevocationType", "revocation_type forbids a renter cancellation fee")
	ErrPriceCannotBeLessThanZero          = parameter("PriceCannotBeLessThanZero", "price must be positive")
	ErrAPIUriIsEmpty                      = parameter("APIUriIsEmpty", "api_uri must not be empty")
	ErrAPIUriTooLong                      = parameter("APIUriTooLong", "api_uri exceeds MaxURILen")
	ErrOperatorAndEnclaveAreSame          = parameter("OperatorAndEnclaveAreSame", "operator and enclave_address must differ")
)

// Capacity errors.
var (
	ErrMaximumAuctionsLimitReached      = capacity("MaximumAuctionsLimitReached", "deadline list is at capacity")
	ErrMaximumBidLimitReached           = capacity("MaximumBidLimitReached", "bidder list is at capacity and new bid does not beat the lowest")
	ErrMaxSimultaneousContractReached   = capacity("MaxSimultaneousContractReached", "rent queue is at capacity")
	ErrSimultaneousTransmissionLimitReached = capacity("SimultaneousTransmissionLimitReached", "at-block transmission queue is at capacity")
	ErrConsentListFull                  = capacity("ConsentListFull", "consent accrual list is at capacity")
	ErrClusterIsFull                    = capacity("ClusterIsFull", "cluster has no free slot")
	ErrCollectionHasReachedLimit        = capacity("CollectionHasReachedLimit", "collection is at its size limit")
	ErrOfferListFull                    = capacity("OfferListFull", "rent offer list is at capacity")
)

// Funds errors.
var (
	ErrNotEnoughBalance               = funds("NotEnoughBalance", "signer balance is insufficient")
	ErrNotEnoughFundsForRentFee        = funds("NotEnoughFundsForRentFee", "signer cannot cover the rent fee")
	ErrNotEnoughFundsForCancellationFee = funds("NotEnoughFundsForCancellationFee", "signer cannot cover the cancellation fee")
	ErrPriceCannotCoverMarketplaceFee  = funds("PriceCannotCoverMarketplaceFee", "listing price is below the marketplace's flat commission floor")
	ErrInsufficientBalanceToBond       = funds("InsufficientBalanceToBond", "operator balance cannot cover the staking amount")
)

// Internal errors: consistency guards of shard sync and metrics reports, and
// an arithmetic step that cannot proceed.
var (
	ErrInternalMathError        = internal("InternalMathError", "arithmetic operation over/underflowed")
	ErrShareNotFromValidCluster = internal("ShareNotFromValidCluster", "shard submitted by an enclave from a different cluster")
	ErrEnclaveAlreadyAddedShard = internal("EnclaveAlreadyAddedShard", "enclave already submitted a shard for this nft")
	ErrReportEraMismatch        = internal("ReportEraMismatch", "metrics report targets a non-completed era")
)
