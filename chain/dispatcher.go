package chain

// Housekeeper is implemented by every pallet that has block-driven
// housekeeping to perform (spec.md §4.3/§4.4/§4.5/§4.6 drain loops and the
// TEE era-purge). OnInitialize must never return an error that aborts the
// block (spec.md §5, §7): implementations are expected to swallow
// per-iteration failures internally and only log/emit events for them.
type Housekeeper interface {
	OnInitialize(ctx *Context, now BlockNumber)
}

// Dispatcher advances the chain one block at a time. It is deliberately
// single-threaded: all extrinsic handlers and on_initialize hooks run to
// completion with no suspension points, matching the "single-threaded
// cooperative within a block" scheduling model of spec.md §5 — grounded on
// services/base.BaseService's single sync.RWMutex-guarded lifecycle in the
// reference corpus, generalized from one service's state to a shared block
// clock every pallet reads through *Context.
type Dispatcher struct {
	ctx          *Context
	housekeepers []Housekeeper
}

// NewDispatcher constructs a Dispatcher around a Context. Housekeepers run
// in the order passed, which is the deterministic per-component order
// spec.md §5 requires ("on_initialize hook runs first in a deterministic
// per-component order").
func NewDispatcher(ctx *Context, housekeepers ...Housekeeper) *Dispatcher {
	return &Dispatcher{ctx: ctx, housekeepers: housekeepers}
}

// Context exposes the shared capability bundle, e.g. so a host can
// construct pallets before wiring them into the dispatcher.
func (d *Dispatcher) Context() *Context { return d.ctx }

// AdvanceTo moves the chain to block `now`, running on_initialize for every
// registered housekeeper in order. Extrinsics are expected to be dispatched
// by the embedder directly against pallet methods between calls to
// AdvanceTo — this mirrors the block-author-ordered, sequential execution
// model of spec.md §5 without inventing a transaction-pool abstraction that
// is explicitly out of scope (spec.md §1, "generic transaction dispatcher").
func (d *Dispatcher) AdvanceTo(now BlockNumber) []Event {
	d.ctx.SetBlock(now)
	for _, h := range d.housekeepers {
		h.OnInitialize(d.ctx, now)
	}
	return d.ctx.Events.Drain()
}
