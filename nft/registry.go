package nft

import (
	"github.com/r3e-network/nft-runtime/chain"
	"github.com/r3e-network/nft-runtime/config"
	"github.com/r3e-network/nft-runtime/ledger"
	"github.com/r3e-network/nft-runtime/runtimeerrors"
)

// EnclaveResolver is consulted by the shard-sync operations to resolve a
// calling enclave address to its (cluster, operator) pair. TEENetwork
// implements this; NFTRegistry depends only on the narrow interface so the
// two pallets stay decoupled, mirroring how packages/*'s StoreAdapter types
// in the reference corpus depend on a narrow local interface rather than a
// concrete sibling-service type.
type EnclaveResolver interface {
	ResolveEnclave(enclaveAddress chain.AccountID) (clusterID uint64, operator chain.AccountID, ok bool)
}

// Registry is the NFTRegistry pallet.
type Registry struct {
	cfg           config.Config
	feesCollector chain.AccountID
	enclaves      EnclaveResolver

	nextNFTID ID
	nextColID CollectionID

	nfts        map[ID]*NFT
	collections map[CollectionID]*Collection

	secretShards  map[ID][]ShardEntry
	capsuleShards map[ID][]ShardEntry

	mintFee        ledger.Balance
	secretMintFee  ledger.Balance
	capsuleMintFee ledger.Balance
}

// New constructs an empty NFTRegistry.
func New(cfg config.Config, feesCollector chain.AccountID, enclaves EnclaveResolver) *Registry {
	return &Registry{
		cfg:            cfg,
		feesCollector:  feesCollector,
		enclaves:       enclaves,
		nfts:           make(map[ID]*NFT),
		collections:    make(map[CollectionID]*Collection),
		secretShards:   make(map[ID][]ShardEntry),
		capsuleShards:  make(map[ID][]ShardEntry),
		mintFee:        cfg.InitialMintFee,
		secretMintFee:  cfg.InitialSecretMintFee,
		capsuleMintFee: cfg.InitialCapsuleMintFee,
	}
}

// Get returns the NFT by id, or ErrNFTNotFound.
func (r *Registry) Get(id ID) (*NFT, error) {
	n, ok := r.nfts[id]
	if !ok {
		return nil, runtimeerrors.ErrNFTNotFound
	}
	return n, nil
}

// GetCollection returns the Collection by id, or ErrCollectionNotFound.
func (r *Registry) GetCollection(id CollectionID) (*Collection, error) {
	c, ok := r.collections[id]
	if !ok {
		return nil, runtimeerrors.ErrCollectionNotFound
	}
	return c, nil
}

// NFTsOf lists every NFT owned by account ([SPEC_FULL] supplement, grounded
// on the account-scoped list queries throughout the reference corpus's
// packages/com.r3e.services.* stores, e.g. ListDataSources(ctx, accountID)).
func (r *Registry) NFTsOf(owner chain.AccountID) []*NFT {
	var out []*NFT
	for _, n := range r.nfts {
		if n.Owner == owner {
			out = append(out, n)
		}
	}
	return out
}

// CollectionsOf lists every Collection owned by account.
func (r *Registry) CollectionsOf(owner chain.AccountID) []*Collection {
	var out []*Collection
	for _, c := range r.collections {
		if c.Owner == owner {
			out = append(out, c)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Mutation guards: the NFT state-flag matrix (spec.md §4.1)
// ---------------------------------------------------------------------------

func (r *Registry) requireOwner(n *NFT, caller chain.AccountID) error {
	if n.Owner != caller {
		return runtimeerrors.ErrNotTheNFTOwner
	}
	return nil
}

func (r *Registry) requireCreator(n *NFT, caller chain.AccountID) error {
	if n.Creator != caller {
		return runtimeerrors.ErrNotTheNFTCreator
	}
	return nil
}

func (r *Registry) guardTransfer(n *NFT) error {
	switch {
	case n.Flags.IsListed:
		return runtimeerrors.ErrCannotTransferListedNFTs
	case n.Flags.IsDelegated:
		return runtimeerrors.ErrCannotTransferDelegatedNFTs
	case n.Flags.IsRented:
		return runtimeerrors.ErrCannotTransferRentedNFTs
	case n.Flags.IsSyncingSecret, n.Flags.IsSyncingCapsule:
		return runtimeerrors.ErrCannotTransferSyncingNFTs
	case n.Flags.IsTransmission:
		return runtimeerrors.ErrCannotTransferTransmissionNFTs
	case n.Flags.IsSoulbound && n.Creator != n.Owner:
		return runtimeerrors.ErrCannotTransferSoulboundNFTs
	}
	return nil
}

func (r *Registry) guardDelegate(n *NFT) error {
	switch {
	case n.Flags.IsListed:
		return runtimeerrors.ErrCannotDelegateListedNFTs
	case n.Flags.IsRented:
		return runtimeerrors.ErrCannotDelegateRentedNFTs
	case n.Flags.IsSoulbound && n.Creator != n.Owner:
		return runtimeerrors.ErrCannotDelegateSoulboundNFTs
	}
	return nil
}

func (r *Registry) guardBurn(n *NFT) error {
	switch {
	case n.Flags.IsListed:
		return runtimeerrors.ErrCannotBurnListedNFTs
	case n.Flags.IsRented:
		return runtimeerrors.ErrCannotBurnRentedNFTs
	case n.Flags.IsSyncingSecret, n.Flags.IsSyncingCapsule:
		return runtimeerrors.ErrCannotBurnSyncingNFTs
	case n.Flags.IsTransmission:
		return runtimeerrors.ErrCannotBurnTransmissionNFTs
	}
	return nil
}

// GuardListable is exported so marketplace/auction can reuse the exact same
// flag check spec.md §4.1 names for listing/auctioning ("not listed/capsule/
// delegated/rented/non-created-soulbound/syncing-secret").
func GuardListable(n *NFT) error {
	switch {
	case n.Flags.IsListed:
		return runtimeerrors.ErrCannotListAlreadyListedNFTs
	case n.Flags.IsCapsule:
		return runtimeerrors.ErrCannotListCapsuleNFTs
	case n.Flags.IsDelegated:
		return runtimeerrors.ErrCannotListDelegatedNFTs
	case n.Flags.IsRented:
		return runtimeerrors.ErrCannotListRentedNFTs
	case n.Flags.IsSyncingSecret:
		return runtimeerrors.ErrCannotListSyncingNFTs
	case n.Flags.IsSoulbound && n.Creator != n.Owner:
		return runtimeerrors.ErrCannotListNotCreatedSoulboundNFTs
	}
	return nil
}

// GuardRentable is the flag check for RentEngine.create_contract.
func GuardRentable(n *NFT) error {
	switch {
	case n.Flags.IsListed:
		return runtimeerrors.ErrCannotRentListedNFTs
	case n.Flags.IsCapsule:
		return runtimeerrors.ErrCannotRentCapsuleNFTs
	case n.Flags.IsDelegated:
		return runtimeerrors.ErrCannotRentDelegatedNFTs
	case n.Flags.IsSoulbound && n.Creator != n.Owner:
		return runtimeerrors.ErrCannotRentSoulboundNFTs
	case n.Flags.IsTransmission:
		return runtimeerrors.ErrCannotSetTransmissionAlreadySetNFTs
	case n.Flags.IsRented:
		return runtimeerrors.ErrCannotRentAlreadyRentedNFTs
	}
	return nil
}

// GuardTransmittable is the flag check for TransmissionEngine.
func GuardTransmittable(n *NFT) error {
	switch {
	case n.Flags.IsListed:
		return runtimeerrors.ErrCannotSetTransmissionListedNFTs
	case n.Flags.IsCapsule:
		return runtimeerrors.ErrCannotSetTransmissionCapsuleNFTs
	case n.Flags.IsRented:
		return runtimeerrors.ErrCannotSetTransmissionRentedNFTs
	case n.Flags.IsDelegated:
		return runtimeerrors.ErrCannotSetTransmissionDelegatedNFTs
	case n.Flags.IsSyncingSecret, n.Flags.IsSyncingCapsule:
		return runtimeerrors.ErrCannotSetTransmissionSyncingNFTs
	case n.Flags.IsTransmission:
		return runtimeerrors.ErrCannotSetTransmissionAlreadySetNFTs
	}
	return nil
}

// GuardAuctionable is the flag check for AuctionEngine.create_auction.
func GuardAuctionable(n *NFT) error {
	switch {
	case n.Flags.IsListed:
		return runtimeerrors.ErrCannotCreateAuctionListedNFTs
	case n.Flags.IsCapsule:
		return runtimeerrors.ErrCannotCreateAuctionCapsuleNFTs
	case n.Flags.IsDelegated:
		return runtimeerrors.ErrCannotCreateAuctionDelegatedNFTs
	case n.Flags.IsRented:
		return runtimeerrors.ErrCannotCreateAuctionRentedNFTs
	case n.Flags.IsSyncingSecret:
		return runtimeerrors.ErrCannotCreateAuctionSyncingNFTs
	case n.Flags.IsSoulbound && n.Creator != n.Owner:
		return runtimeerrors.ErrCannotCreateAuctionNotCreatedSoulboundNFTs
	}
	return nil
}

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// CreateNFT mints a new NFT, charging mintFee to the caller.
func (r *Registry) CreateNFT(ctx *chain.Context, caller chain.AccountID, offchainData []byte, royalty uint32, collectionID *CollectionID, isSoulbound bool) (*NFT, error) {
	if collectionID != nil {
		col, err := r.GetCollection(*collectionID)
		if err != nil {
			return nil, err
		}
		if col.Owner != caller {
			return nil, runtimeerrors.ErrNotTheCollectionOwner
		}
		if err := r.checkCollectionCapacity(col); err != nil {
			return nil, err
		}
	}

	if err := ctx.Ledger.Transfer(caller, r.feesCollector, r.mintFee, ledger.KeepAlive); err != nil {
		return nil, runtimeerrors.ErrNotEnoughBalance
	}

	id := r.nextNFTID
	r.nextNFTID++

	n := &NFT{
		ID:           id,
		Creator:      caller,
		Owner:        caller,
		OffchainData: offchainData,
		Royalty:      royalty,
		CollectionID: collectionID,
		Flags:        Flags{IsSoulbound: isSoulbound},
	}
	r.nfts[id] = n

	if collectionID != nil {
		col := r.collections[*collectionID]
		col.NFTs = append(col.NFTs, id)
	}

	ctx.Events.Emit(chain.NewEvent("nft", "NFTCreated", map[string]any{
		"nft_id": id, "owner": caller, "royalty": royalty,
	}))
	return n, nil
}

func (r *Registry) checkCollectionCapacity(col *Collection) error {
	if col.IsClosed {
		return runtimeerrors.ErrCollectionIsClosed
	}
	limit := r.cfg.CollectionSizeLimit
	if col.Limit != nil {
		limit = *col.Limit
	}
	if len(col.NFTs) >= limit {
		return runtimeerrors.ErrCollectionHasReachedLimit
	}
	return nil
}

// BurnNFT destroys an NFT, unwinding all cross-component references
// (collection membership, shard counters, and — via the caller's access to
// Transmission/Rent/Auction state elsewhere — any pending protocol).
func (r *Registry) BurnNFT(ctx *chain.Context, caller chain.AccountID, id ID) error {
	n, err := r.Get(id)
	if err != nil {
		return err
	}
	if err := r.requireOwner(n, caller); err != nil {
		return err
	}
	if err := r.guardBurn(n); err != nil {
		return err
	}

	if n.CollectionID != nil {
		if col, ok := r.collections[*n.CollectionID]; ok {
			for i, nftID := range col.NFTs {
				if nftID == id {
					col.NFTs[i] = col.NFTs[len(col.NFTs)-1]
					col.NFTs = col.NFTs[:len(col.NFTs)-1]
					break
				}
			}
		}
	}
	delete(r.secretShards, id)
	delete(r.capsuleShards, id)
	delete(r.nfts, id)

	ctx.Events.Emit(chain.NewEvent("nft", "NFTBurned", map[string]any{"nft_id": id}))
	return nil
}

// TransferNFT moves ownership to recipient.
func (r *Registry) TransferNFT(ctx *chain.Context, caller chain.AccountID, id ID, recipient chain.AccountID) error {
	n, err := r.Get(id)
	if err != nil {
		return err
	}
	if err := r.requireOwner(n, caller); err != nil {
		return err
	}
	if recipient == n.Owner {
		return runtimeerrors.ErrRecipientIsSameAsOwner
	}
	if err := r.guardTransfer(n); err != nil {
		return err
	}
	n.Owner = recipient
	ctx.Events.Emit(chain.NewEvent("nft", "NFTTransferred", map[string]any{
		"nft_id": id, "from": caller, "to": recipient,
	}))
	return nil
}

// TransferOwnership is used internally by sibling pallets (marketplace,
// auction, rent, transmission) to move ownership as the consequence of
// their own protocol, bypassing the owner-initiated TransferNFT guard set
// (those pallets have already cleared/verified the relevant flags
// themselves before calling this).
func (r *Registry) TransferOwnership(id ID, recipient chain.AccountID) error {
	n, err := r.Get(id)
	if err != nil {
		return err
	}
	n.Owner = recipient
	return nil
}

// SetFlag is used internally by sibling pallets to set/clear one of the
// locking flags they own (is_listed, is_rented, is_transmission,
// is_delegated are mutually exclusive locks per spec.md §3).
func (r *Registry) SetFlag(id ID, set func(*Flags)) error {
	n, err := r.Get(id)
	if err != nil {
		return err
	}
	set(&n.Flags)
	return nil
}

// DelegateNFT sets or clears delegation. recipient == nil means undelegate.
func (r *Registry) DelegateNFT(ctx *chain.Context, caller chain.AccountID, id ID, recipient *chain.AccountID) error {
	n, err := r.Get(id)
	if err != nil {
		return err
	}
	if err := r.requireOwner(n, caller); err != nil {
		return err
	}
	if recipient == nil {
		n.Flags.IsDelegated = false
		ctx.Events.Emit(chain.NewEvent("nft", "NFTUndelegated", map[string]any{"nft_id": id}))
		return nil
	}
	if err := r.guardDelegate(n); err != nil {
		return err
	}
	n.Flags.IsDelegated = true
	ctx.Events.Emit(chain.NewEvent("nft", "NFTDelegated", map[string]any{"nft_id": id, "to": *recipient}))
	return nil
}

// SetRoyalty updates the creator's royalty cut. Creator-only.
func (r *Registry) SetRoyalty(ctx *chain.Context, caller chain.AccountID, id ID, royalty uint32) error {
	n, err := r.Get(id)
	if err != nil {
		return err
	}
	if err := r.requireCreator(n, caller); err != nil {
		return err
	}
	n.Royalty = royalty
	ctx.Events.Emit(chain.NewEvent("nft", "RoyaltySet", map[string]any{"nft_id": id, "royalty": royalty}))
	return nil
}

// CreateCollection mints a new Collection, caller becomes owner.
func (r *Registry) CreateCollection(ctx *chain.Context, caller chain.AccountID, offchainData []byte) (*Collection, error) {
	id := r.nextColID
	r.nextColID++
	c := &Collection{ID: id, Owner: caller, OffchainData: offchainData}
	r.collections[id] = c
	ctx.Events.Emit(chain.NewEvent("nft", "CollectionCreated", map[string]any{"collection_id": id, "owner": caller}))
	return c, nil
}

// CloseCollection marks a collection closed to further insertion.
func (r *Registry) CloseCollection(ctx *chain.Context, caller chain.AccountID, id CollectionID) error {
	c, err := r.GetCollection(id)
	if err != nil {
		return err
	}
	if c.Owner != caller {
		return runtimeerrors.ErrNotTheCollectionOwner
	}
	c.IsClosed = true
	ctx.Events.Emit(chain.NewEvent("nft", "CollectionClosed", map[string]any{"collection_id": id}))
	return nil
}

// LimitCollection sets a per-collection size cap tighter than
// CollectionSizeLimit. Can only shrink, matching the intent that a
// collection owner commits to a ceiling, not raise it past the global cap.
func (r *Registry) LimitCollection(ctx *chain.Context, caller chain.AccountID, id CollectionID, limit int) error {
	c, err := r.GetCollection(id)
	if err != nil {
		return err
	}
	if c.Owner != caller {
		return runtimeerrors.ErrNotTheCollectionOwner
	}
	if limit < len(c.NFTs) {
		return runtimeerrors.New(runtimeerrors.KindParameter, "LimitTooLow", "limit is below the current NFT count")
	}
	current := r.cfg.CollectionSizeLimit
	if c.Limit != nil {
		current = *c.Limit
	}
	if limit > current {
		return runtimeerrors.New(runtimeerrors.KindParameter, "LimitTooHigh", "limit exceeds the collection's current size cap")
	}
	c.Limit = &limit
	ctx.Events.Emit(chain.NewEvent("nft", "CollectionLimited", map[string]any{"collection_id": id, "limit": limit}))
	return nil
}

// BurnCollection removes an empty collection record. NFTs are removed from
// collections individually via BurnNFT/AddNFTToCollection; burning a
// non-empty collection is rejected to avoid orphaning NFTs' back-references.
func (r *Registry) BurnCollection(ctx *chain.Context, caller chain.AccountID, id CollectionID) error {
	c, err := r.GetCollection(id)
	if err != nil {
		return err
	}
	if c.Owner != caller {
		return runtimeerrors.ErrNotTheCollectionOwner
	}
	if len(c.NFTs) > 0 {
		return runtimeerrors.New(runtimeerrors.KindStateGuard, "CollectionNotEmpty", "collection still has nfts")
	}
	delete(r.collections, id)
	ctx.Events.Emit(chain.NewEvent("nft", "CollectionBurned", map[string]any{"collection_id": id}))
	return nil
}

// AddNFTToCollection inserts an already-minted, collection-less NFT into a
// collection the caller owns (both the NFT and the collection).
func (r *Registry) AddNFTToCollection(ctx *chain.Context, caller chain.AccountID, id ID, collectionID CollectionID) error {
	n, err := r.Get(id)
	if err != nil {
		return err
	}
	if err := r.requireOwner(n, caller); err != nil {
		return err
	}
	col, err := r.GetCollection(collectionID)
	if err != nil {
		return err
	}
	if col.Owner != caller {
		return runtimeerrors.ErrNotTheCollectionOwner
	}
	if err := r.checkCollectionCapacity(col); err != nil {
		return err
	}
	n.CollectionID = &collectionID
	col.NFTs = append(col.NFTs, id)
	ctx.Events.Emit(chain.NewEvent("nft", "NFTAddedToCollection", map[string]any{"nft_id": id, "collection_id": collectionID}))
	return nil
}

// SetMintFee adjusts one of the three mint fees. [SPEC_FULL] supplement:
// governance-only, mirrors the TEE pallet's set_staking_amount /
// set_daily_reward_pool setters (spec.md §4.6).
func (r *Registry) SetMintFee(ctx *chain.Context, origin chain.Origin, kind MintFeeKind, amount ledger.Balance) error {
	if !origin.EnsureRoot() {
		return runtimeerrors.ErrBadOrigin
	}
	switch kind {
	case FeeMint:
		r.mintFee = amount
	case FeeSecretMint:
		r.secretMintFee = amount
	case FeeCapsuleMint:
		r.capsuleMintFee = amount
	}
	ctx.Events.Emit(chain.NewEvent("nft", "MintFeeSet", map[string]any{"kind": kind, "amount": amount}))
	return nil
}
