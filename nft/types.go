// Package nft implements the NFTRegistry pallet: the source of truth for NFT
// and Collection entities, the NFT state-flag matrix every other subsystem
// consults, mint-fee accounting, and the shard-sync protocol for secret and
// capsule NFTs (spec.md §4.1).
package nft

import "github.com/r3e-network/nft-runtime/chain"

// ID identifies an NFT. Monotonic, never reused (spec.md §3).
type ID uint32

// CollectionID identifies a Collection. Monotonic, never reused.
type CollectionID uint32

// Flags holds the orthogonal boolean state flags of an NFT (spec.md §3).
type Flags struct {
	IsListed         bool
	IsCapsule        bool
	IsDelegated      bool
	IsSoulbound      bool
	IsSecret         bool
	IsSyncingSecret  bool
	IsSyncingCapsule bool
	IsRented         bool
	IsTransmission   bool
}

// NFT is the owned entity at the center of every subsystem.
type NFT struct {
	ID            ID
	Creator       chain.AccountID
	Owner         chain.AccountID
	OffchainData  []byte
	Royalty       uint32 // parts-per-million
	CollectionID  *CollectionID
	Flags         Flags
}

// Collection groups NFTs under a single owner with an optional size cap.
type Collection struct {
	ID           CollectionID
	Owner        chain.AccountID
	OffchainData []byte
	NFTs         []ID
	IsClosed     bool
	// Limit is the per-collection size cap; nil means "use CollectionSizeLimit".
	Limit *int
}

// ShardEntry records one enclave's confirmation toward reconstructing a
// secret or capsule's shards (spec.md §3 "Shard-sync").
type ShardEntry struct {
	ClusterID uint64
	Operator  chain.AccountID
}

// MintFeeKind selects which of the three mint fees a governance call adjusts
// (spec.md §4.1 fees; the setter itself is a [SPEC_FULL] supplement).
type MintFeeKind int

const (
	FeeMint MintFeeKind = iota
	FeeSecretMint
	FeeCapsuleMint
)
