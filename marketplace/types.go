// Package marketplace implements the Marketplace pallet: venue entities with
// a fee policy and access controls, listing/unlisting, and buy-with-royalty
// (spec.md §4.2).
package marketplace

import (
	"github.com/r3e-network/nft-runtime/chain"
	"github.com/r3e-network/nft-runtime/ledger"
	"github.com/r3e-network/nft-runtime/nft"
)

// ID identifies a Marketplace. Monotonic, never reused.
type ID uint32

// Kind selects the marketplace's access-control polarity.
type Kind int

const (
	Public Kind = iota
	Private
)

// FeeKind distinguishes a flat amount from a parts-per-million rate.
type FeeKind int

const (
	Flat FeeKind = iota
	Percentage
)

// CompoundFee is either a flat token amount or a ppm rate applied to the
// sale price (spec.md §3 "CompoundFee").
type CompoundFee struct {
	Kind FeeKind
	// Amount is the flat token amount when Kind == Flat.
	Amount ledger.Balance
	// PPM is the parts-per-million rate when Kind == Percentage.
	PPM uint32
}

// Compute returns the fee owed on a sale of `price`.
func (f CompoundFee) Compute(price ledger.Balance) ledger.Balance {
	if f.Kind == Flat {
		return f.Amount
	}
	return price * ledger.Balance(f.PPM) / 1_000_000
}

// FlatFloor returns the minimum listing price this fee permits: the flat
// amount itself when Kind == Flat (a listing must be able to cover it in
// full), or zero for a percentage fee (spec.md §4.2 "price >= marketplace
// flat commission floor").
func (f CompoundFee) FlatFloor() ledger.Balance {
	if f.Kind == Flat {
		return f.Amount
	}
	return 0
}

// Marketplace is a venue record with a fee policy and access controls.
type Marketplace struct {
	ID              ID
	Owner           chain.AccountID
	Kind            Kind
	CommissionFee   *CompoundFee
	ListingFee      *CompoundFee
	AccountList     map[chain.AccountID]struct{} // ban-list (Public) / allow-list (Private)
	CollectionList  map[nft.CollectionID]struct{}
	OffchainData    []byte
}

// AllowedToList implements spec.md §4's allowed_to_list predicate.
func (m *Marketplace) AllowedToList(account chain.AccountID, collectionID *nft.CollectionID) bool {
	_, inAccountList := m.AccountList[account]
	inScope := len(m.CollectionList) == 0
	if !inScope && collectionID != nil {
		_, inScope = m.CollectionList[*collectionID]
	}
	switch m.Kind {
	case Public:
		return !inAccountList && inScope // AccountList is a ban-list for Public
	case Private:
		return inAccountList && inScope // AccountList is an allow-list for Private
	default:
		return false
	}
}

// Sale is the listing record for a listed NFT.
type Sale struct {
	NFTID               nft.ID
	Seller              chain.AccountID
	MarketplaceID       ID
	Price               ledger.Balance
	CommissionFeeSnapshot *CompoundFee
}
