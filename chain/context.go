package chain

import (
	"github.com/r3e-network/nft-runtime/ledger"
	"github.com/sirupsen/logrus"
)

// PalletAccount is the deterministic escrow account every pallet transfers
// bids, rent fees, shard-locked collateral and rented/auctioned NFTs into,
// mirroring the "deterministic per-pallet account id (derived from a fixed
// PalletId)" custody model of spec.md §5.
const PalletAccount AccountID = "pallet:escrow"

// Context is the capability bundle every pallet package is constructed
// with — the Go analogue of platform/os.ServiceOS's capability surface,
// narrowed to exactly what the CORE subsystems need: a ledger handle, an
// event sink, a logger factory, a metrics set, and the current block
// number as tracked by the Dispatcher.
type Context struct {
	Ledger    ledger.Ledger
	Events    *EventSink
	Metrics   *Metrics
	baseLog   *logrus.Logger
	blockNow  BlockNumber
}

// NewContext wires a fresh Context. baseLog may be nil to fall back to
// logrus's standard logger.
func NewContext(led ledger.Ledger, baseLog *logrus.Logger, metricsNamespace string) *Context {
	return &Context{
		Ledger:  led,
		Events:  NewEventSink(),
		Metrics: NewMetrics(metricsNamespace),
		baseLog: baseLog,
	}
}

// Logger returns a pallet-scoped logger.
func (c *Context) Logger(pallet string) *Logger {
	return NewLogger(c.baseLog, pallet)
}

// Now returns the block number the runtime is currently executing.
func (c *Context) Now() BlockNumber { return c.blockNow }

// SetBlock sets the current block number. Called by the Dispatcher as it
// advances the chain; pallet-level tests that construct a Context directly
// (without a full Dispatcher) also use it to move the block clock.
func (c *Context) SetBlock(n BlockNumber) { c.blockNow = n }
