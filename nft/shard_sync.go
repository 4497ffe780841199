package nft

import (
	"github.com/r3e-network/nft-runtime/chain"
	"github.com/r3e-network/nft-runtime/ledger"
	"github.com/r3e-network/nft-runtime/runtimeerrors"
)

// AddSecret marks an existing NFT as secret, charging secretMintFee and
// starting the shard-sync process (spec.md §4.1 "add_secret").
func (r *Registry) AddSecret(ctx *chain.Context, caller chain.AccountID, id ID, offchainData []byte) error {
	n, err := r.Get(id)
	if err != nil {
		return err
	}
	if err := r.requireOwner(n, caller); err != nil {
		return err
	}
	if n.Flags.IsSecret {
		return runtimeerrors.New(runtimeerrors.KindStateGuard, "AlreadySecret", "nft is already secret")
	}
	if err := ctx.Ledger.Transfer(caller, r.feesCollector, r.secretMintFee, ledger.KeepAlive); err != nil {
		return runtimeerrors.ErrNotEnoughBalance
	}
	n.OffchainData = offchainData
	n.Flags.IsSecret = true
	n.Flags.IsSyncingSecret = true
	delete(r.secretShards, id)
	ctx.Events.Emit(chain.NewEvent("nft", "SecretAdded", map[string]any{"nft_id": id}))
	return nil
}

// CreateSecretNFT mints a new NFT that is secret from the start, charging
// both mintFee and secretMintFee atomically with the mutation.
func (r *Registry) CreateSecretNFT(ctx *chain.Context, caller chain.AccountID, offchainData, secretOffchainData []byte, royalty uint32, collectionID *CollectionID, isSoulbound bool) (*NFT, error) {
	if ctx.Ledger.BalanceOf(caller) < r.mintFee+r.secretMintFee {
		return nil, runtimeerrors.ErrNotEnoughBalance
	}
	n, err := r.CreateNFT(ctx, caller, offchainData, royalty, collectionID, isSoulbound)
	if err != nil {
		return nil, err
	}
	if err := ctx.Ledger.Transfer(caller, r.feesCollector, r.secretMintFee, ledger.KeepAlive); err != nil {
		return nil, runtimeerrors.ErrNotEnoughBalance
	}
	n.OffchainData = secretOffchainData
	n.Flags.IsSecret = true
	n.Flags.IsSyncingSecret = true
	ctx.Events.Emit(chain.NewEvent("nft", "SecretAdded", map[string]any{"nft_id": n.ID}))
	return n, nil
}

// ConvertToCapsule upgrades an existing NFT to a capsule, charging
// capsuleMintFee and starting shard-sync (spec.md §4.1).
func (r *Registry) ConvertToCapsule(ctx *chain.Context, caller chain.AccountID, id ID, capsuleOffchainData []byte) error {
	n, err := r.Get(id)
	if err != nil {
		return err
	}
	if err := r.requireOwner(n, caller); err != nil {
		return err
	}
	if n.Flags.IsCapsule {
		return runtimeerrors.New(runtimeerrors.KindStateGuard, "AlreadyCapsule", "nft is already a capsule")
	}
	if err := ctx.Ledger.Transfer(caller, r.feesCollector, r.capsuleMintFee, ledger.KeepAlive); err != nil {
		return runtimeerrors.ErrNotEnoughBalance
	}
	n.OffchainData = capsuleOffchainData
	n.Flags.IsCapsule = true
	n.Flags.IsSyncingCapsule = true
	delete(r.capsuleShards, id)
	ctx.Events.Emit(chain.NewEvent("nft", "ConvertedToCapsule", map[string]any{"nft_id": id}))
	return nil
}

// CreateCapsule mints a new NFT that is a capsule from the start.
func (r *Registry) CreateCapsule(ctx *chain.Context, caller chain.AccountID, offchainData, capsuleOffchainData []byte, royalty uint32, collectionID *CollectionID, isSoulbound bool) (*NFT, error) {
	n, err := r.CreateNFT(ctx, caller, offchainData, royalty, collectionID, isSoulbound)
	if err != nil {
		return nil, err
	}
	if err := ctx.Ledger.Transfer(caller, r.feesCollector, r.capsuleMintFee, ledger.KeepAlive); err != nil {
		return nil, runtimeerrors.ErrNotEnoughBalance
	}
	n.OffchainData = capsuleOffchainData
	n.Flags.IsCapsule = true
	n.Flags.IsSyncingCapsule = true
	ctx.Events.Emit(chain.NewEvent("nft", "ConvertedToCapsule", map[string]any{"nft_id": n.ID}))
	return n, nil
}

// addShard is the shared body of AddSecretShard/AddCapsuleShard.
func (r *Registry) addShard(ctx *chain.Context, caller chain.AccountID, id ID, shards map[ID][]ShardEntry, clearFlag func(*Flags), doneEvent string) error {
	n, err := r.Get(id)
	if err != nil {
		return err
	}
	clusterID, operator, ok := r.enclaves.ResolveEnclave(caller)
	if !ok {
		return runtimeerrors.ErrNotARegisteredEnclave
	}

	existing := shards[id]
	for _, e := range existing {
		if e.Operator == operator {
			return runtimeerrors.ErrEnclaveAlreadyAddedShard
		}
	}
	if len(existing) > 0 && existing[0].ClusterID != clusterID {
		return runtimeerrors.ErrShareNotFromValidCluster
	}

	existing = append(existing, ShardEntry{ClusterID: clusterID, Operator: operator})
	shards[id] = existing

	ctx.Metrics.ShardsSubmitted.Inc()

	if len(existing) >= r.cfg.ShardsNumber {
		clearFlag(&n.Flags)
		delete(shards, id)
		ctx.Events.Emit(chain.NewEvent("nft", doneEvent, map[string]any{"nft_id": id}))
	}
	return nil
}

// AddSecretShard records a secret-NFT shard confirmation from a registered
// enclave. Fee-free at the pallet level (spec.md §4.1, "Pays::No").
func (r *Registry) AddSecretShard(ctx *chain.Context, caller chain.AccountID, id ID) error {
	n, err := r.Get(id)
	if err != nil {
		return err
	}
	if !n.Flags.IsSyncingSecret {
		return runtimeerrors.New(runtimeerrors.KindStateGuard, "NotSyncingSecret", "nft is not awaiting secret shards")
	}
	return r.addShard(ctx, caller, id, r.secretShards, func(f *Flags) { f.IsSyncingSecret = false }, "SecretNFTSynced")
}

// AddCapsuleShard records a capsule-NFT shard confirmation.
func (r *Registry) AddCapsuleShard(ctx *chain.Context, caller chain.AccountID, id ID) error {
	n, err := r.Get(id)
	if err != nil {
		return err
	}
	if !n.Flags.IsSyncingCapsule {
		return runtimeerrors.New(runtimeerrors.KindStateGuard, "NotSyncingCapsule", "nft is not awaiting capsule shards")
	}
	return r.addShard(ctx, caller, id, r.capsuleShards, func(f *Flags) { f.IsSyncingCapsule = false }, "CapsuleSynced")
}

// NotifyEnclaveKeyUpdate re-arms capsule shard-sync to signal enclaves to
// resync after an operator rotates its key (spec.md §4.1).
func (r *Registry) NotifyEnclaveKeyUpdate(ctx *chain.Context, origin chain.Origin, id ID) error {
	if !origin.EnsureRoot() {
		return runtimeerrors.ErrBadOrigin
	}
	n, err := r.Get(id)
	if err != nil {
		return err
	}
	if !n.Flags.IsCapsule {
		return runtimeerrors.New(runtimeerrors.KindStateGuard, "NotACapsule", "nft is not a capsule")
	}
	n.Flags.IsSyncingCapsule = true
	delete(r.capsuleShards, id)
	ctx.Events.Emit(chain.NewEvent("nft", "EnclaveKeyUpdateNotified", map[string]any{"nft_id": id}))
	return nil
}

// SecretShardsOf and CapsuleShardsOf expose read access for tests and
// observers (spec.md §8 invariant 6: shard sets share one cluster_id and
// have no duplicate operator).
func (r *Registry) SecretShardsOf(id ID) []ShardEntry  { return r.secretShards[id] }
func (r *Registry) CapsuleShardsOf(id ID) []ShardEntry { return r.capsuleShards[id] }
