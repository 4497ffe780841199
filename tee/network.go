package tee

import (
	"github.com/r3e-network/nft-runtime/chain"
	"github.com/r3e-network/nft-runtime/config"
	"github.com/r3e-network/nft-runtime/ledger"
	"github.com/r3e-network/nft-runtime/runtimeerrors"
)

// ReportParams is the five-component metrics vector (p1..p5) a metrics
// server submits on an operator's behalf for a completed era.
type ReportParams [5]uint64

type reportKey struct {
	Era      uint64
	Operator chain.AccountID
}

type claimKey struct {
	Era      uint64
	Operator chain.AccountID
}

// Pallet is the TEENetwork pallet.
type Pallet struct {
	cfg config.Config

	registrations  map[chain.AccountID]*Enclave // enclave address -> pending
	enclaves       map[chain.AccountID]*Enclave // operator -> active/unregistering
	enclaveIndex   map[chain.AccountID]chain.AccountID // enclave address -> operator
	clusters       map[uint64]*Cluster
	nextClusterID  uint64

	operatorAssignedEra map[chain.AccountID]uint64
	unregistrations     map[chain.AccountID]bool
	pendingUpdates      map[chain.AccountID]EnclaveUpdate

	metricsServers map[chain.AccountID]bool
	reports        map[reportKey]map[chain.AccountID]ReportParams // (era, operator) -> reporter -> params
	claimed        map[claimKey]bool

	stakingAmount   ledger.Balance
	dailyRewardPool ledger.Balance
	weightage       [5]uint32

	currentEra uint64
}

// New constructs an empty TEENetwork.
func New(cfg config.Config) *Pallet {
	return &Pallet{
		cfg:                 cfg,
		registrations:       make(map[chain.AccountID]*Enclave),
		enclaves:            make(map[chain.AccountID]*Enclave),
		enclaveIndex:        make(map[chain.AccountID]chain.AccountID),
		clusters:            make(map[uint64]*Cluster),
		operatorAssignedEra: make(map[chain.AccountID]uint64),
		unregistrations:     make(map[chain.AccountID]bool),
		pendingUpdates:      make(map[chain.AccountID]EnclaveUpdate),
		metricsServers:      make(map[chain.AccountID]bool),
		reports:             make(map[reportKey]map[chain.AccountID]ReportParams),
		claimed:             make(map[claimKey]bool),
		stakingAmount:       cfg.InitialStakingAmount,
		dailyRewardPool:     cfg.InitialDailyRewardPool,
		weightage:           cfg.ReportParamsWeightage,
	}
}

// ResolveEnclave implements nft.EnclaveResolver: NFTRegistry consults this
// to turn a shard-submitting caller's enclave address into (cluster,
// operator) without importing this package directly.
func (p *Pallet) ResolveEnclave(enclaveAddress chain.AccountID) (uint64, chain.AccountID, bool) {
	operator, ok := p.enclaveIndex[enclaveAddress]
	if !ok {
		return 0, "", false
	}
	e, ok := p.enclaves[operator]
	if !ok || e.State != StateActive {
		return 0, "", false
	}
	return e.ClusterID, operator, true
}

func (p *Pallet) enclaveAddressInUse(addr chain.AccountID) bool {
	if _, ok := p.registrations[addr]; ok {
		return true
	}
	if _, ok := p.enclaveIndex[addr]; ok {
		return true
	}
	return false
}

// RegisterEnclave locks StakingAmount and queues the operator for
// governance assignment (spec.md §4.6).
func (p *Pallet) RegisterEnclave(ctx *chain.Context, operator chain.AccountID, enclaveAddress chain.AccountID, attestation []byte) error {
	if p.enclaveAddressInUse(enclaveAddress) {
		return runtimeerrors.ErrEnclaveAlreadyRegistered
	}
	if _, ok := p.enclaves[operator]; ok {
		return runtimeerrors.ErrEnclaveAlreadyRegistered
	}

	if err := ctx.Ledger.Transfer(operator, chain.PalletAccount, p.stakingAmount, ledger.KeepAlive); err != nil {
		return runtimeerrors.ErrInsufficientBalanceToBond
	}
	p.registrations[enclaveAddress] = &Enclave{
		Address: enclaveAddress, Operator: operator, State: StateRegistered,
		Staked: uint64(p.stakingAmount), Attestation: attestation,
	}
	ctx.Events.Emit(chain.NewEvent("tee", "EnclaveRegistered", map[string]any{"operator": operator, "enclave_address": enclaveAddress}))
	return nil
}

// AssignEnclave moves a pending registration into an active cluster slot.
// Governance-only.
func (p *Pallet) AssignEnclave(ctx *chain.Context, origin chain.Origin, enclaveAddress chain.AccountID, clusterID uint64) error {
	if !origin.EnsureRoot() {
		return runtimeerrors.ErrBadOrigin
	}
	e, ok := p.registrations[enclaveAddress]
	if !ok {
		return runtimeerrors.ErrRegistrationNotFound
	}
	c, ok := p.clusters[clusterID]
	if !ok {
		return runtimeerrors.ErrClusterNotFound
	}
	if c.Full() {
		return runtimeerrors.ErrClusterIsFull
	}

	e.State = StateActive
	e.ClusterID = clusterID
	p.enclaves[e.Operator] = e
	p.enclaveIndex[e.Address] = e.Operator
	p.operatorAssignedEra[e.Operator] = p.currentEra
	c.Members = append(c.Members, e.Operator)
	delete(p.registrations, enclaveAddress)

	ctx.Events.Emit(chain.NewEvent("tee", "EnclaveAssigned", map[string]any{"operator": e.Operator, "cluster_id": clusterID, "era": p.currentEra}))
	return nil
}

// UnregisterEnclave starts the operator's exit. If still only Registered, the
// stake is refunded immediately; if Active, the request is queued and the
// stake begins unbonding.
func (p *Pallet) UnregisterEnclave(ctx *chain.Context, operator chain.AccountID) error {
	if e, ok := p.enclaves[operator]; ok {
		if e.State != StateActive {
			return runtimeerrors.ErrEnclaveNotActive
		}
		e.State = StateUnregistering
		p.unregistrations[operator] = true
		ctx.Events.Emit(chain.NewEvent("tee", "EnclaveUnregistering", map[string]any{"operator": operator}))
		return nil
	}
	for addr, e := range p.registrations {
		if e.Operator == operator {
			if err := ctx.Ledger.Transfer(chain.PalletAccount, operator, ledger.Balance(e.Staked), ledger.AllowDeath); err != nil {
				return err
			}
			delete(p.registrations, addr)
			ctx.Events.Emit(chain.NewEvent("tee", "EnclaveRegistrationWithdrawn", map[string]any{"operator": operator}))
			return nil
		}
	}
	return runtimeerrors.ErrEnclaveNotFound
}

func validateURI(cfg config.Config, uri []byte) error {
	if len(uri) == 0 {
		return runtimeerrors.ErrAPIUriIsEmpty
	}
	if len(uri) > cfg.MaxURILen {
		return runtimeerrors.ErrAPIUriTooLong
	}
	return nil
}

// RemoveRegistration discards a still-pending (not yet assigned)
// registration and refunds its stake. Governance-only — unlike
// UnregisterEnclave, the caller need not be the registering operator.
func (p *Pallet) RemoveRegistration(ctx *chain.Context, origin chain.Origin, operator chain.AccountID) error {
	if !origin.EnsureRoot() {
		return runtimeerrors.ErrBadOrigin
	}
	for addr, e := range p.registrations {
		if e.Operator == operator {
			if err := ctx.Ledger.Transfer(chain.PalletAccount, operator, ledger.Balance(e.Staked), ledger.AllowDeath); err != nil {
				return err
			}
			delete(p.registrations, addr)
			ctx.Events.Emit(chain.NewEvent("tee", "RegistrationRemoved", map[string]any{"operator": operator}))
			return nil
		}
	}
	return runtimeerrors.ErrRegistrationNotFound
}

// RequestEnclaveUpdate asks to move an Active operator's enclave to a new
// address/API URI. Takes effect only once governance approves it.
func (p *Pallet) RequestEnclaveUpdate(ctx *chain.Context, operator chain.AccountID, newEnclaveAddress chain.AccountID, uri []byte) error {
	if operator == newEnclaveAddress {
		return runtimeerrors.ErrOperatorAndEnclaveAreSame
	}
	if err := validateURI(p.cfg, uri); err != nil {
		return err
	}
	e, ok := p.enclaves[operator]
	if !ok {
		return runtimeerrors.ErrEnclaveNotFound
	}
	if _, ok := p.pendingUpdates[operator]; ok {
		return runtimeerrors.ErrUpdateRequestAlreadyExists
	}
	if e.Address != newEnclaveAddress && p.enclaveAddressInUse(newEnclaveAddress) {
		return runtimeerrors.ErrEnclaveAlreadyRegistered
	}
	p.pendingUpdates[operator] = EnclaveUpdate{Address: newEnclaveAddress, URI: uri}
	ctx.Events.Emit(chain.NewEvent("tee", "MovedForUpdate", map[string]any{"operator": operator, "new_enclave_address": newEnclaveAddress}))
	return nil
}

// CancelEnclaveUpdate withdraws the caller's own pending update request.
func (p *Pallet) CancelEnclaveUpdate(ctx *chain.Context, operator chain.AccountID) error {
	if _, ok := p.pendingUpdates[operator]; !ok {
		return runtimeerrors.ErrUpdateRequestNotFound
	}
	delete(p.pendingUpdates, operator)
	ctx.Events.Emit(chain.NewEvent("tee", "UpdateRequestCancelled", map[string]any{"operator": operator}))
	return nil
}

// RejectEnclaveUpdate discards a pending update request. Governance-only.
func (p *Pallet) RejectEnclaveUpdate(ctx *chain.Context, origin chain.Origin, operator chain.AccountID) error {
	if !origin.EnsureRoot() {
		return runtimeerrors.ErrBadOrigin
	}
	if _, ok := p.pendingUpdates[operator]; !ok {
		return runtimeerrors.ErrUpdateRequestNotFound
	}
	delete(p.pendingUpdates, operator)
	ctx.Events.Emit(chain.NewEvent("tee", "UpdateRequestRemoved", map[string]any{"operator": operator}))
	return nil
}

// ApproveEnclaveUpdate applies a pending update request, re-pointing
// enclaveIndex at the new address. Governance-only.
func (p *Pallet) ApproveEnclaveUpdate(ctx *chain.Context, origin chain.Origin, operator chain.AccountID) error {
	if !origin.EnsureRoot() {
		return runtimeerrors.ErrBadOrigin
	}
	upd, ok := p.pendingUpdates[operator]
	if !ok {
		return runtimeerrors.ErrUpdateRequestNotFound
	}
	e, ok := p.enclaves[operator]
	if !ok {
		return runtimeerrors.ErrEnclaveNotFound
	}
	if e.Address != upd.Address {
		if p.enclaveAddressInUse(upd.Address) {
			return runtimeerrors.ErrEnclaveAlreadyRegistered
		}
		delete(p.enclaveIndex, e.Address)
		p.enclaveIndex[upd.Address] = operator
	}
	e.Address = upd.Address
	e.URI = upd.URI
	delete(p.pendingUpdates, operator)
	ctx.Events.Emit(chain.NewEvent("tee", "EnclaveUpdated", map[string]any{"operator": operator, "new_enclave_address": upd.Address}))
	return nil
}

// ForceRemoveEnclave unassigns an operator's enclave from its cluster and
// queues the stake for unbonding, regardless of whether the operator asked
// to unregister first. Governance-only.
func (p *Pallet) ForceRemoveEnclave(ctx *chain.Context, origin chain.Origin, operator chain.AccountID) error {
	if !origin.EnsureRoot() {
		return runtimeerrors.ErrBadOrigin
	}
	e, ok := p.enclaves[operator]
	if !ok {
		return runtimeerrors.ErrEnclaveNotFound
	}
	if c, ok := p.clusters[e.ClusterID]; ok {
		for i, m := range c.Members {
			if m == operator {
				c.Members = append(c.Members[:i], c.Members[i+1:]...)
				break
			}
		}
	}
	delete(p.enclaveIndex, e.Address)
	delete(p.pendingUpdates, operator)
	delete(p.unregistrations, operator)
	e.State = StateUnregistering
	p.unregistrations[operator] = true
	ctx.Events.Emit(chain.NewEvent("tee", "EnclaveRemoved", map[string]any{"operator": operator}))
	return nil
}

// UpdateCluster changes an existing cluster's slot capacity. Governance-only.
func (p *Pallet) UpdateCluster(ctx *chain.Context, origin chain.Origin, id uint64, capacity int) error {
	if !origin.EnsureRoot() {
		return runtimeerrors.ErrBadOrigin
	}
	c, ok := p.clusters[id]
	if !ok {
		return runtimeerrors.ErrClusterNotFound
	}
	c.Capacity = capacity
	ctx.Events.Emit(chain.NewEvent("tee", "ClusterUpdated", map[string]any{"cluster_id": id, "capacity": capacity}))
	return nil
}

// BondExtra tops the caller's stake up to the current StakingAmount, for an
// operator who registered before a governance increase.
func (p *Pallet) BondExtra(ctx *chain.Context, operator chain.AccountID) error {
	e, ok := p.enclaves[operator]
	if !ok {
		return runtimeerrors.ErrEnclaveNotFound
	}
	if ledger.Balance(e.Staked) >= p.stakingAmount {
		return runtimeerrors.ErrBondExtraNotAllowed
	}
	extra := p.stakingAmount - ledger.Balance(e.Staked)
	if err := ctx.Ledger.Transfer(operator, chain.PalletAccount, extra, ledger.KeepAlive); err != nil {
		return runtimeerrors.ErrInsufficientBalanceToBond
	}
	e.Staked = uint64(p.stakingAmount)
	ctx.Events.Emit(chain.NewEvent("tee", "BondedExtra", map[string]any{"operator": operator, "amount": extra}))
	return nil
}

// RefundExcess returns the caller's stake down to the current StakingAmount,
// for an operator who registered before a governance decrease.
func (p *Pallet) RefundExcess(ctx *chain.Context, operator chain.AccountID) error {
	e, ok := p.enclaves[operator]
	if !ok {
		return runtimeerrors.ErrEnclaveNotFound
	}
	if ledger.Balance(e.Staked) <= p.stakingAmount {
		return runtimeerrors.ErrRefundExcessNotAllowed
	}
	excess := ledger.Balance(e.Staked) - p.stakingAmount
	if err := ctx.Ledger.Transfer(chain.PalletAccount, operator, excess, ledger.AllowDeath); err != nil {
		return err
	}
	e.Staked = uint64(p.stakingAmount)
	ctx.Events.Emit(chain.NewEvent("tee", "RefundedExcess", map[string]any{"operator": operator, "amount": excess}))
	return nil
}

// UnregisterMetricsServer revokes a metrics server's permission to submit
// reports. Governance-only.
func (p *Pallet) UnregisterMetricsServer(ctx *chain.Context, origin chain.Origin, server chain.AccountID) error {
	if !origin.EnsureRoot() {
		return runtimeerrors.ErrBadOrigin
	}
	if !p.metricsServers[server] {
		return runtimeerrors.ErrNotAMetricsServer
	}
	delete(p.metricsServers, server)
	ctx.Events.Emit(chain.NewEvent("tee", "MetricsServerRemoved", map[string]any{"server": server}))
	return nil
}

// ApproveEnclaveUnregistration tears down an Unregistering operator's
// cluster membership, leaving the stake to unbond. Governance-only.
func (p *Pallet) ApproveEnclaveUnregistration(ctx *chain.Context, origin chain.Origin, operator chain.AccountID) error {
	if !origin.EnsureRoot() {
		return runtimeerrors.ErrBadOrigin
	}
	e, ok := p.enclaves[operator]
	if !ok || !p.unregistrations[operator] {
		return runtimeerrors.ErrEnclaveNotFound
	}
	if c, ok := p.clusters[e.ClusterID]; ok {
		for i, m := range c.Members {
			if m == operator {
				c.Members = append(c.Members[:i], c.Members[i+1:]...)
				break
			}
		}
	}
	delete(p.enclaveIndex, e.Address)
	delete(p.unregistrations, operator)
	ctx.Events.Emit(chain.NewEvent("tee", "EnclaveUnregistrationApproved", map[string]any{"operator": operator}))
	return nil
}

// WithdrawUnbonded releases the stake of an Unregistering operator once
// TeeBondingDuration blocks have elapsed since unbondedAt, and deletes the
// operator's Enclave record. unbondedAt is supplied by the caller: the pallet
// does not record the block at which unbonding began.
func (p *Pallet) WithdrawUnbonded(ctx *chain.Context, operator chain.AccountID, unbondedAt chain.BlockNumber) error {
	e, ok := p.enclaves[operator]
	if !ok {
		return runtimeerrors.ErrEnclaveNotFound
	}
	if e.State != StateUnregistering {
		return runtimeerrors.ErrNotUnlocking
	}
	if uint64(ctx.Now()-unbondedAt) < p.cfg.TeeBondingDuration {
		return runtimeerrors.ErrBondingPeriodNotElapsed
	}
	if err := ctx.Ledger.Transfer(chain.PalletAccount, operator, ledger.Balance(e.Staked), ledger.AllowDeath); err != nil {
		return err
	}
	e.State = StateWithdrawn
	delete(p.enclaves, operator)
	ctx.Events.Emit(chain.NewEvent("tee", "EnclaveWithdrawn", map[string]any{"operator": operator}))
	return nil
}

// CreateCluster mints a new, empty cluster. Governance-only.
func (p *Pallet) CreateCluster(ctx *chain.Context, origin chain.Origin) (*Cluster, error) {
	if !origin.EnsureRoot() {
		return nil, runtimeerrors.ErrBadOrigin
	}
	id := p.nextClusterID
	p.nextClusterID++
	c := &Cluster{ID: id, Capacity: p.cfg.ClusterSize}
	p.clusters[id] = c
	ctx.Events.Emit(chain.NewEvent("tee", "ClusterCreated", map[string]any{"cluster_id": id}))
	return c, nil
}

// RemoveCluster deletes an empty cluster. Governance-only.
func (p *Pallet) RemoveCluster(ctx *chain.Context, origin chain.Origin, id uint64) error {
	if !origin.EnsureRoot() {
		return runtimeerrors.ErrBadOrigin
	}
	c, ok := p.clusters[id]
	if !ok {
		return runtimeerrors.ErrClusterNotFound
	}
	if len(c.Members) > 0 {
		return runtimeerrors.ErrClusterNotEmpty
	}
	delete(p.clusters, id)
	ctx.Events.Emit(chain.NewEvent("tee", "ClusterRemoved", map[string]any{"cluster_id": id}))
	return nil
}

// RegisterMetricsServer adds server to the metrics-server allow-list.
// Servers carry no cluster type: a registered server may report on any
// Active operator. Governance-only.
func (p *Pallet) RegisterMetricsServer(ctx *chain.Context, origin chain.Origin, server chain.AccountID) error {
	if !origin.EnsureRoot() {
		return runtimeerrors.ErrBadOrigin
	}
	p.metricsServers[server] = true
	ctx.Events.Emit(chain.NewEvent("tee", "MetricsServerRegistered", map[string]any{"server": server}))
	return nil
}

// SetReportParamsWeightage, SetStakingAmount, SetDailyRewardPool are
// governance-only parameter setters (spec.md §4.6).
func (p *Pallet) SetReportParamsWeightage(ctx *chain.Context, origin chain.Origin, w [5]uint32) error {
	if !origin.EnsureRoot() {
		return runtimeerrors.ErrBadOrigin
	}
	p.weightage = w
	ctx.Events.Emit(chain.NewEvent("tee", "ReportParamsWeightageSet", map[string]any{"weightage": w}))
	return nil
}

func (p *Pallet) SetStakingAmount(ctx *chain.Context, origin chain.Origin, amount ledger.Balance) error {
	if !origin.EnsureRoot() {
		return runtimeerrors.ErrBadOrigin
	}
	p.stakingAmount = amount
	ctx.Events.Emit(chain.NewEvent("tee", "StakingAmountSet", map[string]any{"amount": amount}))
	return nil
}

func (p *Pallet) SetDailyRewardPool(ctx *chain.Context, origin chain.Origin, amount ledger.Balance) error {
	if !origin.EnsureRoot() {
		return runtimeerrors.ErrBadOrigin
	}
	p.dailyRewardPool = amount
	ctx.Events.Emit(chain.NewEvent("tee", "DailyRewardPoolSet", map[string]any{"amount": amount}))
	return nil
}

// SubmitMetricsServerReport records one reporter's metric vector for the
// just-completed era (current_active_era - 1), replacing any prior report
// from the same reporter for that (era, operator) (spec.md §4.6).
func (p *Pallet) SubmitMetricsServerReport(ctx *chain.Context, reporter chain.AccountID, operator chain.AccountID, params ReportParams) error {
	if !p.metricsServers[reporter] {
		return runtimeerrors.ErrNotAMetricsServer
	}
	e, ok := p.enclaves[operator]
	if !ok || e.State != StateActive {
		return runtimeerrors.ErrEnclaveNotActive
	}
	if p.currentEra == 0 {
		return runtimeerrors.ErrReportEraMismatch
	}
	era := p.currentEra - 1
	key := reportKey{Era: era, Operator: operator}
	if p.reports[key] == nil {
		p.reports[key] = make(map[chain.AccountID]ReportParams)
	}
	p.reports[key][reporter] = params
	ctx.Events.Emit(chain.NewEvent("tee", "MetricsReportSubmitted", map[string]any{"era": era, "operator": operator, "reporter": reporter}))
	return nil
}

// activeOperatorCount counts operators currently in the Active state.
func (p *Pallet) activeOperatorCount() uint64 {
	var n uint64
	for _, e := range p.enclaves {
		if e.State == StateActive {
			n++
		}
	}
	return n
}

// ClaimRewards pays an operator its per-era metrics-weighted reward
// (spec.md §4.6 and §8 scenario S6).
func (p *Pallet) ClaimRewards(ctx *chain.Context, operator chain.AccountID, era uint64) error {
	if _, ok := p.enclaves[operator]; !ok {
		return runtimeerrors.ErrEnclaveNotFound
	}
	if p.currentEra < 2 || !(era < p.currentEra-2) {
		return runtimeerrors.ErrClaimEraTooRecent
	}
	// era > current_active_era - TeeHistoryDepth, without underflowing:
	// while TeeHistoryDepth exceeds the current era (e.g. early in a chain's
	// life) there is no lower bound — every era back to genesis is still
	// within the un-purged history window.
	if p.currentEra >= p.cfg.TeeHistoryDepth && !(era > p.currentEra-p.cfg.TeeHistoryDepth) {
		return runtimeerrors.ErrClaimEraTooOld
	}
	assignedEra, ok := p.operatorAssignedEra[operator]
	if !ok || era < assignedEra {
		return runtimeerrors.ErrClaimEraBeforeAssignment
	}
	ck := claimKey{Era: era, Operator: operator}
	if p.claimed[ck] {
		return runtimeerrors.ErrRewardsAlreadyClaimedForEra
	}

	activeOperators := p.activeOperatorCount()
	if activeOperators == 0 {
		return runtimeerrors.ErrInternalMathError
	}
	share := p.dailyRewardPool / ledger.Balance(activeOperators)

	var reward ledger.Balance
	if reporters, ok := p.reports[reportKey{Era: era, Operator: operator}]; ok && len(reporters) > 0 {
		var highest ReportParams
		for _, r := range reporters {
			for i := 0; i < 5; i++ {
				if r[i] > highest[i] {
					highest[i] = r[i]
				}
			}
		}
		var weightedSum uint64
		for i := 0; i < 5; i++ {
			weightedSum += highest[i] * uint64(p.weightage[i])
		}
		// [Open Question, spec.md §9] percent = weighted_sum/10000 is left
		// uncapped by design: mis-configured weightage summing above 100
		// can yield percent > 1 and a reward exceeding share. Multiply
		// before dividing — weightedSum is usually well under 10000, and
		// percent/share as a separate integer division would truncate to
		// zero for any legitimate sub-100% score.
		reward = ledger.Balance(weightedSum) * share / 10000
	} else {
		reward = share
	}

	if err := ctx.Ledger.Transfer(chain.PalletAccount, operator, reward, ledger.AllowDeath); err != nil {
		return err
	}
	p.claimed[ck] = true
	ctx.Metrics.TeeRewardsPaid.Inc()
	ctx.Events.Emit(chain.NewEvent("tee", "RewardsClaimed", map[string]any{"operator": operator, "era": era, "amount": reward}))
	return nil
}

// OnInitialize advances the era counter from the block number and purges
// metrics reports / claim records older than TeeHistoryDepth eras
// (spec.md §4.6 "Block drain").
func (p *Pallet) OnInitialize(ctx *chain.Context, now chain.BlockNumber) {
	if p.cfg.EraLength > 0 {
		p.currentEra = uint64(now) / p.cfg.EraLength
	}
	if p.currentEra < p.cfg.TeeHistoryDepth {
		return
	}
	purgeEra := p.currentEra - p.cfg.TeeHistoryDepth
	for k := range p.reports {
		if k.Era == purgeEra {
			delete(p.reports, k)
		}
	}
	for k := range p.claimed {
		if k.Era == purgeEra {
			delete(p.claimed, k)
		}
	}
}
