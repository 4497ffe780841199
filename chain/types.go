// Package chain provides the shared substrate every pallet (nft, marketplace,
// auction, rent, transmission, tee) is built on: the block clock, the signed
// transaction envelope, the event sink, and the deterministic Dispatcher that
// drives extrinsics and the on_initialize housekeeping hook. It is the Go
// analogue of a Substrate runtime's shared Config/Origin/Event machinery,
// grounded on the capability-bundle pattern of platform/os.ServiceOS and the
// lifecycle pattern of services/base.BaseService in the reference corpus.
package chain

import "github.com/r3e-network/nft-runtime/ledger"

// BlockNumber is the canonical, monotonically increasing block index every
// deadline in the system is expressed in (spec.md §3, §5).
type BlockNumber uint64

// AccountID re-exports the ledger account identity so pallet packages do not
// need to import ledger directly just to name a caller.
type AccountID = ledger.AccountID

// OriginKind distinguishes a user-signed call from a governance call.
type OriginKind int

const (
	OriginSigned OriginKind = iota
	OriginRoot
)

// Origin is the transaction envelope every extrinsic receives (spec.md §6).
type Origin struct {
	Kind    OriginKind
	Account AccountID
}

// Signed builds a user-originated Origin.
func Signed(account AccountID) Origin { return Origin{Kind: OriginSigned, Account: account} }

// Root builds a governance-originated Origin.
func Root() Origin { return Origin{Kind: OriginRoot} }

// EnsureSigned returns the calling account, or false if the origin is Root.
func (o Origin) EnsureSigned() (AccountID, bool) {
	if o.Kind != OriginSigned {
		return "", false
	}
	return o.Account, true
}

// EnsureRoot reports whether the origin is the governance/root origin.
func (o Origin) EnsureRoot() bool {
	return o.Kind == OriginRoot
}

// DispatchClass tags the cost profile of an extrinsic, mirroring Substrate's
// Normal/Operational/Mandatory classification (spec.md §6).
type DispatchClass int

const (
	ClassNormal DispatchClass = iota
	ClassOperational
	ClassMandatory
)

// Weight is the numeric execution-cost annotation attached to an extrinsic
// (spec.md §6 "Weight / DispatchClass").
type Weight struct {
	RefTime uint64
}
