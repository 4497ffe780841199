// Package tee implements the TEENetwork pallet: enclave/operator
// registration, clusters, staking, era-based metrics reports and reward
// claims (spec.md §4.6). It is the on-chain registry side of the trust
// root — it never executes inside an enclave itself, it only tracks which
// attested operators are allowed to submit shard confirmations and pays
// them for uptime.
package tee

import "github.com/r3e-network/nft-runtime/chain"

// OperatorState is the enclave lifecycle state machine (spec.md §4.6).
type OperatorState int

const (
	StateUnknown OperatorState = iota
	StateRegistered
	StateActive
	StateUnregistering
	StateWithdrawn
)

// Enclave is one registered TEE operator.
type Enclave struct {
	Address   chain.AccountID
	Operator  chain.AccountID
	ClusterID uint64
	State     OperatorState
	Staked    uint64
	URI       []byte
	// Attestation is the operator's last accepted attestation report
	// (opaque to this pallet — verified off-chain before registration).
	Attestation []byte
}

// EnclaveUpdate is a pending request to move an Active operator's enclave to
// a new address/API URI, awaiting governance approval (update_enclave /
// approve_update_enclave).
type EnclaveUpdate struct {
	Address chain.AccountID
	URI     []byte
}

// Cluster groups up to Capacity enclaves that jointly hold a shard set.
// Capacity starts at ClusterSize and UpdateCluster can change it.
type Cluster struct {
	ID       uint64
	Members  []chain.AccountID
	Capacity int
}

// Full reports whether the cluster has no free slot.
func (c *Cluster) Full() bool { return len(c.Members) >= c.Capacity }
