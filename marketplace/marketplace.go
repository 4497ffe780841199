package marketplace

import (
	"github.com/r3e-network/nft-runtime/chain"
	"github.com/r3e-network/nft-runtime/configop"
	"github.com/r3e-network/nft-runtime/ledger"
	"github.com/r3e-network/nft-runtime/nft"
	"github.com/r3e-network/nft-runtime/runtimeerrors"
)

// Pallet is the Marketplace pallet.
type Pallet struct {
	registry      *nft.Registry
	feesCollector chain.AccountID
	mintFee       ledger.Balance

	nextID       ID
	marketplaces map[ID]*Marketplace
	sales        map[nft.ID]*Sale
}

// New constructs an empty Marketplace pallet.
func New(registry *nft.Registry, feesCollector chain.AccountID, mintFee ledger.Balance) *Pallet {
	return &Pallet{
		registry:      registry,
		feesCollector: feesCollector,
		mintFee:       mintFee,
		marketplaces:  make(map[ID]*Marketplace),
		sales:         make(map[nft.ID]*Sale),
	}
}

// Get returns a marketplace by id.
func (p *Pallet) Get(id ID) (*Marketplace, error) {
	m, ok := p.marketplaces[id]
	if !ok {
		return nil, runtimeerrors.ErrMarketplaceNotFound
	}
	return m, nil
}

// SaleOf returns the listing record for an NFT, if any.
func (p *Pallet) SaleOf(id nft.ID) (*Sale, bool) {
	s, ok := p.sales[id]
	return s, ok
}

// CreateMarketplace mints a new marketplace, charging mintFee.
func (p *Pallet) CreateMarketplace(ctx *chain.Context, caller chain.AccountID, kind Kind) (*Marketplace, error) {
	if err := ctx.Ledger.Transfer(caller, p.feesCollector, p.mintFee, ledger.KeepAlive); err != nil {
		return nil, runtimeerrors.ErrNotEnoughBalance
	}
	id := p.nextID
	p.nextID++
	m := &Marketplace{
		ID:             id,
		Owner:          caller,
		Kind:           kind,
		AccountList:    make(map[chain.AccountID]struct{}),
		CollectionList: make(map[nft.CollectionID]struct{}),
	}
	p.marketplaces[id] = m
	ctx.Events.Emit(chain.NewEvent("marketplace", "MarketplaceCreated", map[string]any{"marketplace_id": id, "owner": caller}))
	return m, nil
}

func (p *Pallet) requireOwner(m *Marketplace, caller chain.AccountID) error {
	if m.Owner != caller {
		return runtimeerrors.ErrNotTheMarketplaceOwner
	}
	return nil
}

// SetMarketplaceOwner transfers marketplace ownership.
func (p *Pallet) SetMarketplaceOwner(ctx *chain.Context, caller chain.AccountID, id ID, newOwner chain.AccountID) error {
	m, err := p.Get(id)
	if err != nil {
		return err
	}
	if err := p.requireOwner(m, caller); err != nil {
		return err
	}
	m.Owner = newOwner
	ctx.Events.Emit(chain.NewEvent("marketplace", "MarketplaceOwnerSet", map[string]any{"marketplace_id": id, "owner": newOwner}))
	return nil
}

// SetMarketplaceKind flips Public/Private.
func (p *Pallet) SetMarketplaceKind(ctx *chain.Context, caller chain.AccountID, id ID, kind Kind) error {
	m, err := p.Get(id)
	if err != nil {
		return err
	}
	if err := p.requireOwner(m, caller); err != nil {
		return err
	}
	m.Kind = kind
	ctx.Events.Emit(chain.NewEvent("marketplace", "MarketplaceKindSet", map[string]any{"marketplace_id": id, "kind": kind}))
	return nil
}

// ConfigurationUpdate bundles the per-field Noop/Set/Remove ops for
// set_marketplace_configuration (spec.md §4.2).
type ConfigurationUpdate struct {
	CommissionFee  configop.Op[CompoundFee]
	ListingFee     configop.Op[CompoundFee]
	AccountList    configop.Op[[]chain.AccountID]
	CollectionList configop.Op[[]nft.CollectionID]
	OffchainData   configop.Op[[]byte]
}

// SetMarketplaceConfiguration applies a ConfigurationUpdate field-by-field.
func (p *Pallet) SetMarketplaceConfiguration(ctx *chain.Context, caller chain.AccountID, id ID, update ConfigurationUpdate) error {
	m, err := p.Get(id)
	if err != nil {
		return err
	}
	if err := p.requireOwner(m, caller); err != nil {
		return err
	}

	configop.ApplyOptional(update.CommissionFee, &m.CommissionFee)
	configop.ApplyOptional(update.ListingFee, &m.ListingFee)

	switch update.AccountList.Kind {
	case configop.Set:
		m.AccountList = toAccountSet(update.AccountList.Value)
	case configop.Remove:
		m.AccountList = make(map[chain.AccountID]struct{})
	}
	switch update.CollectionList.Kind {
	case configop.Set:
		m.CollectionList = toCollectionSet(update.CollectionList.Value)
	case configop.Remove:
		m.CollectionList = make(map[nft.CollectionID]struct{})
	}
	update.OffchainData.Apply(&m.OffchainData)

	ctx.Events.Emit(chain.NewEvent("marketplace", "MarketplaceConfigurationSet", map[string]any{"marketplace_id": id}))
	return nil
}

func toAccountSet(accounts []chain.AccountID) map[chain.AccountID]struct{} {
	out := make(map[chain.AccountID]struct{}, len(accounts))
	for _, a := range accounts {
		out[a] = struct{}{}
	}
	return out
}

func toCollectionSet(cols []nft.CollectionID) map[nft.CollectionID]struct{} {
	out := make(map[nft.CollectionID]struct{}, len(cols))
	for _, c := range cols {
		out[c] = struct{}{}
	}
	return out
}

// ListNFT lists an NFT for sale at a fixed price.
func (p *Pallet) ListNFT(ctx *chain.Context, caller chain.AccountID, id nft.ID, marketplaceID ID, price ledger.Balance) error {
	n, err := p.registry.Get(id)
	if err != nil {
		return err
	}
	if n.Owner != caller {
		return runtimeerrors.ErrNotTheNFTOwner
	}
	if err := nft.GuardListable(n); err != nil {
		return err
	}
	m, err := p.Get(marketplaceID)
	if err != nil {
		return err
	}
	if !m.AllowedToList(caller, n.CollectionID) {
		return runtimeerrors.ErrNotAllowedToList
	}
	if m.CommissionFee != nil && price < m.CommissionFee.FlatFloor() {
		return runtimeerrors.ErrPriceCannotCoverMarketplaceFee
	}

	if m.ListingFee != nil {
		fee := m.ListingFee.Compute(price)
		if err := ctx.Ledger.Transfer(caller, p.feesCollector, fee, ledger.KeepAlive); err != nil {
			return runtimeerrors.ErrNotEnoughBalance
		}
	}

	if err := p.registry.SetFlag(id, func(f *nft.Flags) { f.IsListed = true }); err != nil {
		return err
	}
	var commissionSnapshot *CompoundFee
	if m.CommissionFee != nil {
		snap := *m.CommissionFee
		commissionSnapshot = &snap
	}
	p.sales[id] = &Sale{NFTID: id, Seller: caller, MarketplaceID: marketplaceID, Price: price, CommissionFeeSnapshot: commissionSnapshot}

	ctx.Events.Emit(chain.NewEvent("marketplace", "NFTListed", map[string]any{
		"nft_id": id, "marketplace_id": marketplaceID, "price": price,
	}))
	return nil
}

// UnlistNFT removes a listing. Owner-only.
func (p *Pallet) UnlistNFT(ctx *chain.Context, caller chain.AccountID, id nft.ID) error {
	n, err := p.registry.Get(id)
	if err != nil {
		return err
	}
	if n.Owner != caller {
		return runtimeerrors.ErrNotTheNFTOwner
	}
	if _, ok := p.sales[id]; !ok {
		return runtimeerrors.ErrSaleNotFound
	}
	if err := p.registry.SetFlag(id, func(f *nft.Flags) { f.IsListed = false }); err != nil {
		return err
	}
	delete(p.sales, id)
	ctx.Events.Emit(chain.NewEvent("marketplace", "NFTUnlisted", map[string]any{"nft_id": id}))
	return nil
}

// BuyNFT purchases a listed NFT, splitting payment into commission,
// royalty, and seller cuts (spec.md §4.2).
func (p *Pallet) BuyNFT(ctx *chain.Context, buyer chain.AccountID, id nft.ID) error {
	sale, ok := p.sales[id]
	if !ok {
		return runtimeerrors.ErrSaleNotFound
	}
	if buyer == sale.Seller {
		return runtimeerrors.New(runtimeerrors.KindParameter, "BuyerIsSeller", "buyer must differ from seller")
	}
	n, err := p.registry.Get(id)
	if err != nil {
		return err
	}
	m, err := p.Get(sale.MarketplaceID)
	if err != nil {
		return err
	}
	if ctx.Ledger.BalanceOf(buyer) < sale.Price {
		return runtimeerrors.ErrNotEnoughBalance
	}

	remainder := sale.Price
	var commission ledger.Balance
	if sale.CommissionFeeSnapshot != nil {
		commission = sale.CommissionFeeSnapshot.Compute(sale.Price)
		if commission > remainder {
			commission = remainder
		}
	}
	remainder -= commission

	royalty := ledger.Balance(uint64(n.Royalty) * uint64(remainder) / 1_000_000)
	if royalty > remainder {
		royalty = remainder
	}
	remainder -= royalty
	sellerTake := remainder

	if commission > 0 {
		if err := ctx.Ledger.Transfer(buyer, m.Owner, commission, ledger.KeepAlive); err != nil {
			return runtimeerrors.ErrNotEnoughBalance
		}
	}
	if royalty > 0 {
		if err := ctx.Ledger.Transfer(buyer, n.Creator, royalty, ledger.KeepAlive); err != nil {
			return runtimeerrors.ErrNotEnoughBalance
		}
	}
	if sellerTake > 0 {
		if err := ctx.Ledger.Transfer(buyer, sale.Seller, sellerTake, ledger.KeepAlive); err != nil {
			return runtimeerrors.ErrNotEnoughBalance
		}
	}

	if err := p.registry.TransferOwnership(id, buyer); err != nil {
		return err
	}
	if err := p.registry.SetFlag(id, func(f *nft.Flags) { f.IsListed = false }); err != nil {
		return err
	}
	delete(p.sales, id)

	ctx.Events.Emit(chain.NewEvent("marketplace", "NFTSold", map[string]any{
		"nft_id": id, "buyer": buyer, "commission": commission, "royalty": royalty, "seller_take": sellerTake,
	}))
	return nil
}
