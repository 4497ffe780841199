// Package runtime wires the six CORE pallets (nft, marketplace, auction,
// rent, transmission, tee) into one chain.Dispatcher, the Go analogue of a
// Substrate runtime's construct_runtime! macro.
package runtime

import (
	"github.com/r3e-network/nft-runtime/auction"
	"github.com/r3e-network/nft-runtime/chain"
	"github.com/r3e-network/nft-runtime/config"
	"github.com/r3e-network/nft-runtime/ledger"
	"github.com/r3e-network/nft-runtime/marketplace"
	"github.com/r3e-network/nft-runtime/nft"
	"github.com/r3e-network/nft-runtime/rent"
	"github.com/r3e-network/nft-runtime/tee"
	"github.com/r3e-network/nft-runtime/transmission"
	"github.com/sirupsen/logrus"
)

// Runtime bundles every pallet behind the shared Context/Dispatcher.
type Runtime struct {
	Context      *chain.Context
	Dispatcher   *chain.Dispatcher
	NFT          *nft.Registry
	Marketplace  *marketplace.Pallet
	Auction      *auction.Pallet
	Rent         *rent.Pallet
	Transmission *transmission.Pallet
	TEE          *tee.Pallet
}

// New constructs a Runtime. feesCollector receives mint fees, listing
// fees, and protocol fees; in production this is the treasury account.
func New(cfg config.Config, led ledger.Ledger, baseLog *logrus.Logger, feesCollector chain.AccountID) *Runtime {
	ctx := chain.NewContext(led, baseLog, "nftruntime")

	teePallet := tee.New(cfg)
	registry := nft.New(cfg, feesCollector, teePallet)
	mkt := marketplace.New(registry, feesCollector, cfg.InitialMintFee)
	auctionPallet := auction.New(cfg, registry, mkt)
	rentPallet := rent.New(cfg, registry)
	transmissionPallet := transmission.New(cfg, registry, feesCollector)

	// on_initialize order: TEE first (era accounting other pallets'
	// resolvers rely on), then the three deadline-drained engines.
	dispatcher := chain.NewDispatcher(ctx, teePallet, auctionPallet, rentPallet, transmissionPallet)

	return &Runtime{
		Context:      ctx,
		Dispatcher:   dispatcher,
		NFT:          registry,
		Marketplace:  mkt,
		Auction:      auctionPallet,
		Rent:         rentPallet,
		Transmission: transmissionPallet,
		TEE:          teePallet,
	}
}

// AdvanceBlock moves the chain to block `now`, running every pallet's
// on_initialize housekeeping and returning the events emitted.
func (r *Runtime) AdvanceBlock(now chain.BlockNumber) []chain.Event {
	return r.Dispatcher.AdvanceTo(now)
}
