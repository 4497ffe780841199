package tee

import (
	"testing"

	"github.com/r3e-network/nft-runtime/chain"
	"github.com/r3e-network/nft-runtime/config"
	"github.com/r3e-network/nft-runtime/ledger"
	"github.com/r3e-network/nft-runtime/runtimeerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (config.Config, *ledger.InMemory, *chain.Context, *Pallet) {
	t.Helper()
	cfg := config.Default()
	cfg.ClusterSize = 2
	cfg.InitialStakingAmount = 1000
	cfg.TeeBondingDuration = 5
	cfg.TeeHistoryDepth = 5
	cfg.EraLength = 10
	cfg.InitialDailyRewardPool = 1000

	led := ledger.NewInMemory()
	ctx := chain.NewContext(led, nil, "")
	for _, acc := range []chain.AccountID{"alice", "bob", "carol"} {
		led.Mint(acc, 10_000)
	}
	return cfg, led, ctx, New(cfg)
}

func TestRegisterEnclaveLocksStake(t *testing.T) {
	_, led, ctx, p := newFixture(t)
	require.NoError(t, p.RegisterEnclave(ctx, "alice", "alice-enclave", []byte("attestation")))
	assert.Equal(t, ledger.Balance(10_000-1000), led.BalanceOf("alice"))
	assert.Equal(t, ledger.Balance(1000), led.BalanceOf(chain.PalletAccount))
}

func TestRegisterEnclaveRejectsDuplicateAddressOrOperator(t *testing.T) {
	_, _, ctx, p := newFixture(t)
	require.NoError(t, p.RegisterEnclave(ctx, "alice", "alice-enclave", nil))

	err := p.RegisterEnclave(ctx, "bob", "alice-enclave", nil)
	assert.ErrorIs(t, err, runtimeerrors.ErrEnclaveAlreadyRegistered)
}

func TestAssignEnclaveRequiresGovernanceAndCapacity(t *testing.T) {
	_, _, ctx, p := newFixture(t)
	require.NoError(t, p.RegisterEnclave(ctx, "alice", "alice-enclave", nil))

	err := p.AssignEnclave(ctx, chain.Signed("alice"), "alice-enclave", 0)
	assert.ErrorIs(t, err, runtimeerrors.ErrBadOrigin)

	_, err = p.CreateCluster(ctx, chain.Signed("alice"))
	assert.ErrorIs(t, err, runtimeerrors.ErrBadOrigin)

	c, err := p.CreateCluster(ctx, chain.Root())
	require.NoError(t, err)

	require.NoError(t, p.AssignEnclave(ctx, chain.Root(), "alice-enclave", c.ID))
	cluster, ok := p.clusters[c.ID]
	require.True(t, ok)
	assert.Contains(t, cluster.Members, chain.AccountID("alice"))

	resolvedCluster, operator, ok := p.ResolveEnclave("alice-enclave")
	assert.True(t, ok)
	assert.Equal(t, c.ID, resolvedCluster)
	assert.Equal(t, chain.AccountID("alice"), operator)
}

func TestAssignEnclaveRejectsFullCluster(t *testing.T) {
	_, _, ctx, p := newFixture(t)
	c, err := p.CreateCluster(ctx, chain.Root())
	require.NoError(t, err)

	require.NoError(t, p.RegisterEnclave(ctx, "alice", "alice-enclave", nil))
	require.NoError(t, p.RegisterEnclave(ctx, "bob", "bob-enclave", nil))
	require.NoError(t, p.RegisterEnclave(ctx, "carol", "carol-enclave", nil))
	require.NoError(t, p.AssignEnclave(ctx, chain.Root(), "alice-enclave", c.ID))
	require.NoError(t, p.AssignEnclave(ctx, chain.Root(), "bob-enclave", c.ID)) // ClusterSize == 2, now full

	err = p.AssignEnclave(ctx, chain.Root(), "carol-enclave", c.ID)
	assert.ErrorIs(t, err, runtimeerrors.ErrClusterIsFull)
}

func TestUnregisterEnclaveBeforeAssignmentRefundsStakeImmediately(t *testing.T) {
	_, led, ctx, p := newFixture(t)
	require.NoError(t, p.RegisterEnclave(ctx, "alice", "alice-enclave", nil))

	require.NoError(t, p.UnregisterEnclave(ctx, "alice"))
	assert.Equal(t, ledger.Balance(10_000), led.BalanceOf("alice"))

	err := p.UnregisterEnclave(ctx, "alice")
	assert.ErrorIs(t, err, runtimeerrors.ErrEnclaveNotFound)
}

func TestUnregisterActiveEnclaveQueuesForUnbonding(t *testing.T) {
	_, led, ctx, p := newFixture(t)
	c, err := p.CreateCluster(ctx, chain.Root())
	require.NoError(t, err)
	require.NoError(t, p.RegisterEnclave(ctx, "alice", "alice-enclave", nil))
	require.NoError(t, p.AssignEnclave(ctx, chain.Root(), "alice-enclave", c.ID))

	require.NoError(t, p.UnregisterEnclave(ctx, "alice"))
	// stake is not refunded yet, it is still locked pending the bonding period
	assert.Equal(t, ledger.Balance(10_000-1000), led.BalanceOf("alice"))

	err = p.UnregisterEnclave(ctx, "alice")
	assert.ErrorIs(t, err, runtimeerrors.ErrEnclaveNotActive)
}

func TestApproveEnclaveUnregistrationRemovesClusterMembership(t *testing.T) {
	_, _, ctx, p := newFixture(t)
	c, err := p.CreateCluster(ctx, chain.Root())
	require.NoError(t, err)
	require.NoError(t, p.RegisterEnclave(ctx, "alice", "alice-enclave", nil))
	require.NoError(t, p.AssignEnclave(ctx, chain.Root(), "alice-enclave", c.ID))
	require.NoError(t, p.UnregisterEnclave(ctx, "alice"))

	err = p.ApproveEnclaveUnregistration(ctx, chain.Signed("bob"), "alice")
	assert.ErrorIs(t, err, runtimeerrors.ErrBadOrigin)

	require.NoError(t, p.ApproveEnclaveUnregistration(ctx, chain.Root(), "alice"))
	cluster := p.clusters[c.ID]
	assert.NotContains(t, cluster.Members, chain.AccountID("alice"))

	_, _, ok := p.ResolveEnclave("alice-enclave")
	assert.False(t, ok)
}

func TestWithdrawUnbondedRequiresBondingPeriodElapsed(t *testing.T) {
	_, led, ctx, p := newFixture(t)
	c, err := p.CreateCluster(ctx, chain.Root())
	require.NoError(t, err)
	require.NoError(t, p.RegisterEnclave(ctx, "alice", "alice-enclave", nil))
	require.NoError(t, p.AssignEnclave(ctx, chain.Root(), "alice-enclave", c.ID))
	require.NoError(t, p.UnregisterEnclave(ctx, "alice"))
	require.NoError(t, p.ApproveEnclaveUnregistration(ctx, chain.Root(), "alice"))

	ctx.SetBlock(3)
	err = p.WithdrawUnbonded(ctx, "alice", 0)
	assert.ErrorIs(t, err, runtimeerrors.ErrBondingPeriodNotElapsed)

	ctx.SetBlock(5)
	require.NoError(t, p.WithdrawUnbonded(ctx, "alice", 0))
	assert.Equal(t, ledger.Balance(10_000), led.BalanceOf("alice"))
}

func TestRemoveClusterRequiresEmpty(t *testing.T) {
	_, _, ctx, p := newFixture(t)
	c, err := p.CreateCluster(ctx, chain.Root())
	require.NoError(t, err)
	require.NoError(t, p.RegisterEnclave(ctx, "alice", "alice-enclave", nil))
	require.NoError(t, p.AssignEnclave(ctx, chain.Root(), "alice-enclave", c.ID))

	err = p.RemoveCluster(ctx, chain.Root(), c.ID)
	assert.ErrorIs(t, err, runtimeerrors.ErrClusterNotEmpty)

	require.NoError(t, p.UnregisterEnclave(ctx, "alice"))
	require.NoError(t, p.ApproveEnclaveUnregistration(ctx, chain.Root(), "alice"))
	require.NoError(t, p.RemoveCluster(ctx, chain.Root(), c.ID))
}

func TestSubmitMetricsServerReportValidations(t *testing.T) {
	_, _, ctx, p := newFixture(t)
	c, err := p.CreateCluster(ctx, chain.Root())
	require.NoError(t, err)
	require.NoError(t, p.RegisterEnclave(ctx, "alice", "alice-enclave", nil))
	require.NoError(t, p.AssignEnclave(ctx, chain.Root(), "alice-enclave", c.ID))

	err = p.SubmitMetricsServerReport(ctx, "reporter1", "alice", ReportParams{})
	assert.ErrorIs(t, err, runtimeerrors.ErrNotAMetricsServer)

	require.NoError(t, p.RegisterMetricsServer(ctx, chain.Root(), "reporter1"))

	err = p.SubmitMetricsServerReport(ctx, "reporter1", "alice", ReportParams{})
	assert.ErrorIs(t, err, runtimeerrors.ErrReportEraMismatch) // currentEra == 0

	p.OnInitialize(ctx, 40) // currentEra -> 4
	require.NoError(t, p.SubmitMetricsServerReport(ctx, "reporter1", "alice", ReportParams{100, 100, 100, 100, 100}))

	err = p.SubmitMetricsServerReport(ctx, "reporter1", "bob", ReportParams{})
	assert.ErrorIs(t, err, runtimeerrors.ErrEnclaveNotActive)
}

// TestClaimRewardsEraValidityWindow exercises the era-boundary validity
// window a reward claim must fall in: strictly more than 2 eras old, and
// strictly less than TeeHistoryDepth eras old.
func TestClaimRewardsEraValidityWindow(t *testing.T) {
	_, led, ctx, p := newFixture(t)
	c, err := p.CreateCluster(ctx, chain.Root())
	require.NoError(t, err)
	require.NoError(t, p.RegisterEnclave(ctx, "alice", "alice-enclave", nil))
	require.NoError(t, p.AssignEnclave(ctx, chain.Root(), "alice-enclave", c.ID)) // assigned at era 0

	p.OnInitialize(ctx, 40) // currentEra -> 4
	require.NoError(t, p.RegisterMetricsServer(ctx, chain.Root(), "reporter1"))
	require.NoError(t, p.SubmitMetricsServerReport(ctx, "reporter1", "alice", ReportParams{100, 100, 100, 100, 100})) // era 3

	p.OnInitialize(ctx, 60) // currentEra -> 6: window is (currentEra-5, currentEra-2) = (1, 4) exclusive-exclusive

	err = p.ClaimRewards(ctx, "alice", 4)
	assert.ErrorIs(t, err, runtimeerrors.ErrClaimEraTooRecent)

	err = p.ClaimRewards(ctx, "alice", 1)
	assert.ErrorIs(t, err, runtimeerrors.ErrClaimEraTooOld)

	before := led.BalanceOf("alice")
	require.NoError(t, p.ClaimRewards(ctx, "alice", 3))
	// single active operator takes the full daily reward pool, scaled by
	// the submitted report hitting 100% of the configured weightage
	assert.Equal(t, before+ledger.Balance(1000), led.BalanceOf("alice"))

	err = p.ClaimRewards(ctx, "alice", 3)
	assert.ErrorIs(t, err, runtimeerrors.ErrRewardsAlreadyClaimedForEra)
}

func TestClaimRewardsRejectsEraBeforeAssignment(t *testing.T) {
	_, _, ctx, p := newFixture(t)
	c, err := p.CreateCluster(ctx, chain.Root())
	require.NoError(t, err)
	require.NoError(t, p.RegisterEnclave(ctx, "alice", "alice-enclave", nil))
	require.NoError(t, p.AssignEnclave(ctx, chain.Root(), "alice-enclave", c.ID))

	p.OnInitialize(ctx, 40) // currentEra -> 4

	c2, err := p.CreateCluster(ctx, chain.Root())
	require.NoError(t, err)
	require.NoError(t, p.RegisterEnclave(ctx, "bob", "bob-enclave", nil))
	require.NoError(t, p.AssignEnclave(ctx, chain.Root(), "bob-enclave", c2.ID)) // assigned at era 4

	p.OnInitialize(ctx, 60) // currentEra -> 6

	err = p.ClaimRewards(ctx, "bob", 3) // before bob's assignment era
	assert.ErrorIs(t, err, runtimeerrors.ErrClaimEraBeforeAssignment)
}

func TestOnInitializePurgesReportsAndClaimsAtHistoryDepthCursor(t *testing.T) {
	_, _, ctx, p := newFixture(t)
	c, err := p.CreateCluster(ctx, chain.Root())
	require.NoError(t, err)
	require.NoError(t, p.RegisterEnclave(ctx, "alice", "alice-enclave", nil))
	require.NoError(t, p.AssignEnclave(ctx, chain.Root(), "alice-enclave", c.ID))

	p.OnInitialize(ctx, 10) // currentEra -> 1
	require.NoError(t, p.RegisterMetricsServer(ctx, chain.Root(), "reporter1"))
	require.NoError(t, p.SubmitMetricsServerReport(ctx, "reporter1", "alice", ReportParams{})) // era 0

	p.OnInitialize(ctx, 40) // currentEra -> 4, purgeEra guard not yet met (4 < depth 5)
	_, stillThere := p.reports[reportKey{Era: 0, Operator: "alice"}]
	assert.True(t, stillThere)

	p.OnInitialize(ctx, 50) // currentEra -> 5, purgeEra = 5-5 = 0: era 0 is purged
	_, stillThere = p.reports[reportKey{Era: 0, Operator: "alice"}]
	assert.False(t, stillThere)
}

// TestScenario_TeeClaimRewards is spec.md §8 scenario S6, literally: 10
// active operators, TeeHistoryDepth=50, DailyRewardPool=1000, weightages all
// 20 (sum=100); one operator's era-7 metrics report is the highest-submitted
// {50,50,50,50,50}. share = 1000/10 = 100, weighted_sum = 50*100 = 5000,
// reward = weighted_sum*share/10000 = 50. This is the exact case that
// catches percent=weighted_sum/10000 (computed, then separately multiplied
// by share) truncating to zero for any sub-100% score.
func TestScenario_TeeClaimRewards(t *testing.T) {
	cfg := config.Default()
	cfg.ClusterSize = 10
	cfg.InitialStakingAmount = 0
	cfg.TeeHistoryDepth = 50
	cfg.EraLength = 1
	cfg.InitialDailyRewardPool = 1000
	cfg.ReportParamsWeightage = [5]uint32{20, 20, 20, 20, 20}

	led := ledger.NewInMemory()
	ctx := chain.NewContext(led, nil, "")
	p := New(cfg)
	led.Mint(chain.PalletAccount, cfg.InitialDailyRewardPool) // rewards are paid out of the pallet account

	c, err := p.CreateCluster(ctx, chain.Root())
	require.NoError(t, err)
	operators := []chain.AccountID{"op0", "op1", "op2", "op3", "op4", "op5", "op6", "op7", "op8", "op9"}
	for _, op := range operators {
		enclave := chain.AccountID(string(op) + "-enclave")
		led.Mint(op, 0)
		require.NoError(t, p.RegisterEnclave(ctx, op, enclave, nil))
		require.NoError(t, p.AssignEnclave(ctx, chain.Root(), enclave, c.ID)) // assigned at era 0
	}

	require.NoError(t, p.RegisterMetricsServer(ctx, chain.Root(), "reporter1"))
	p.OnInitialize(ctx, 8) // currentEra -> 8, era 7 is the just-completed one
	require.NoError(t, p.SubmitMetricsServerReport(ctx, "reporter1", "op0", ReportParams{50, 50, 50, 50, 50}))

	p.OnInitialize(ctx, 10) // currentEra -> 10 (spec.md's current_era); era 7 now claimable

	before := led.BalanceOf("op0")
	require.NoError(t, p.ClaimRewards(ctx, "op0", 7))
	assert.Equal(t, before+ledger.Balance(50), led.BalanceOf("op0"))

	err = p.ClaimRewards(ctx, "op0", 7)
	assert.ErrorIs(t, err, runtimeerrors.ErrRewardsAlreadyClaimedForEra)
}

func TestRemoveRegistrationRefundsStakeAndIsGovernanceOnly(t *testing.T) {
	_, led, ctx, p := newFixture(t)
	require.NoError(t, p.RegisterEnclave(ctx, "alice", "alice-enclave", nil))

	err := p.RemoveRegistration(ctx, chain.Signed("bob"), "alice")
	assert.ErrorIs(t, err, runtimeerrors.ErrBadOrigin)

	require.NoError(t, p.RemoveRegistration(ctx, chain.Root(), "alice"))
	assert.Equal(t, ledger.Balance(10_000), led.BalanceOf("alice"))

	err = p.RemoveRegistration(ctx, chain.Root(), "alice")
	assert.ErrorIs(t, err, runtimeerrors.ErrRegistrationNotFound)
}

func TestEnclaveUpdateLifecycle(t *testing.T) {
	_, _, ctx, p := newFixture(t)
	c, err := p.CreateCluster(ctx, chain.Root())
	require.NoError(t, err)
	require.NoError(t, p.RegisterEnclave(ctx, "alice", "alice-enclave", nil))
	require.NoError(t, p.AssignEnclave(ctx, chain.Root(), "alice-enclave", c.ID))

	err = p.RequestEnclaveUpdate(ctx, "alice", "alice-enclave-2", nil)
	assert.ErrorIs(t, err, runtimeerrors.ErrAPIUriIsEmpty)

	require.NoError(t, p.RequestEnclaveUpdate(ctx, "alice", "alice-enclave-2", []byte("https://alice.example")))

	err = p.RequestEnclaveUpdate(ctx, "alice", "alice-enclave-3", []byte("https://alice.example"))
	assert.ErrorIs(t, err, runtimeerrors.ErrUpdateRequestAlreadyExists)

	err = p.ApproveEnclaveUpdate(ctx, chain.Signed("bob"), "alice")
	assert.ErrorIs(t, err, runtimeerrors.ErrBadOrigin)

	require.NoError(t, p.CancelEnclaveUpdate(ctx, "alice"))
	err = p.CancelEnclaveUpdate(ctx, "alice")
	assert.ErrorIs(t, err, runtimeerrors.ErrUpdateRequestNotFound)

	require.NoError(t, p.RequestEnclaveUpdate(ctx, "alice", "alice-enclave-2", []byte("https://alice.example")))
	require.NoError(t, p.RejectEnclaveUpdate(ctx, chain.Root(), "alice"))
	err = p.ApproveEnclaveUpdate(ctx, chain.Root(), "alice")
	assert.ErrorIs(t, err, runtimeerrors.ErrUpdateRequestNotFound)

	require.NoError(t, p.RequestEnclaveUpdate(ctx, "alice", "alice-enclave-2", []byte("https://alice.example")))
	require.NoError(t, p.ApproveEnclaveUpdate(ctx, chain.Root(), "alice"))

	resolvedCluster, operator, ok := p.ResolveEnclave("alice-enclave-2")
	assert.True(t, ok)
	assert.Equal(t, c.ID, resolvedCluster)
	assert.Equal(t, chain.AccountID("alice"), operator)
	_, _, ok = p.ResolveEnclave("alice-enclave")
	assert.False(t, ok)
	assert.Equal(t, []byte("https://alice.example"), p.enclaves["alice"].URI)
}

func TestRequestEnclaveUpdateRejectsSameAddressAndInUseAddress(t *testing.T) {
	_, _, ctx, p := newFixture(t)
	c, err := p.CreateCluster(ctx, chain.Root())
	require.NoError(t, err)
	require.NoError(t, p.RegisterEnclave(ctx, "alice", "alice-enclave", nil))
	require.NoError(t, p.AssignEnclave(ctx, chain.Root(), "alice-enclave", c.ID))
	require.NoError(t, p.RegisterEnclave(ctx, "bob", "bob-enclave", nil))

	err = p.RequestEnclaveUpdate(ctx, "alice", "alice", []byte("https://alice.example"))
	assert.ErrorIs(t, err, runtimeerrors.ErrOperatorAndEnclaveAreSame)

	err = p.RequestEnclaveUpdate(ctx, "alice", "bob-enclave", []byte("https://alice.example"))
	assert.ErrorIs(t, err, runtimeerrors.ErrEnclaveAlreadyRegistered)
}

func TestForceRemoveEnclaveUnassignsAndQueuesUnbonding(t *testing.T) {
	_, led, ctx, p := newFixture(t)
	c, err := p.CreateCluster(ctx, chain.Root())
	require.NoError(t, err)
	require.NoError(t, p.RegisterEnclave(ctx, "alice", "alice-enclave", nil))
	require.NoError(t, p.AssignEnclave(ctx, chain.Root(), "alice-enclave", c.ID))
	require.NoError(t, p.RequestEnclaveUpdate(ctx, "alice", "alice-enclave-2", []byte("https://alice.example")))

	err = p.ForceRemoveEnclave(ctx, chain.Signed("bob"), "alice")
	assert.ErrorIs(t, err, runtimeerrors.ErrBadOrigin)

	require.NoError(t, p.ForceRemoveEnclave(ctx, chain.Root(), "alice"))
	assert.NotContains(t, p.clusters[c.ID].Members, chain.AccountID("alice"))
	_, _, ok := p.ResolveEnclave("alice-enclave")
	assert.False(t, ok)
	err = p.CancelEnclaveUpdate(ctx, "alice")
	assert.ErrorIs(t, err, runtimeerrors.ErrUpdateRequestNotFound) // pending update was discarded

	ctx.SetBlock(5)
	require.NoError(t, p.WithdrawUnbonded(ctx, "alice", 0))
	assert.Equal(t, ledger.Balance(10_000), led.BalanceOf("alice"))
}

func TestUpdateClusterChangesCapacityAndIsGovernanceOnly(t *testing.T) {
	_, _, ctx, p := newFixture(t)
	c, err := p.CreateCluster(ctx, chain.Root())
	require.NoError(t, err)

	err = p.UpdateCluster(ctx, chain.Signed("alice"), c.ID, 5)
	assert.ErrorIs(t, err, runtimeerrors.ErrBadOrigin)

	err = p.UpdateCluster(ctx, chain.Root(), 999, 5)
	assert.ErrorIs(t, err, runtimeerrors.ErrClusterNotFound)

	require.NoError(t, p.UpdateCluster(ctx, chain.Root(), c.ID, 5))
	assert.Equal(t, 5, p.clusters[c.ID].Capacity)
}

func TestBondExtraAndRefundExcessTrackStakingAmountChanges(t *testing.T) {
	_, led, ctx, p := newFixture(t)
	require.NoError(t, p.RegisterEnclave(ctx, "alice", "alice-enclave", nil))
	c, err := p.CreateCluster(ctx, chain.Root())
	require.NoError(t, err)
	require.NoError(t, p.AssignEnclave(ctx, chain.Root(), "alice-enclave", c.ID))

	err = p.BondExtra(ctx, "alice")
	assert.ErrorIs(t, err, runtimeerrors.ErrBondExtraNotAllowed)
	err = p.RefundExcess(ctx, "alice")
	assert.ErrorIs(t, err, runtimeerrors.ErrRefundExcessNotAllowed)

	require.NoError(t, p.SetStakingAmount(ctx, chain.Root(), 1500))
	require.NoError(t, p.BondExtra(ctx, "alice"))
	assert.Equal(t, ledger.Balance(10_000-1500), led.BalanceOf("alice"))
	assert.Equal(t, uint64(1500), p.enclaves["alice"].Staked)

	err = p.BondExtra(ctx, "alice")
	assert.ErrorIs(t, err, runtimeerrors.ErrBondExtraNotAllowed)

	require.NoError(t, p.SetStakingAmount(ctx, chain.Root(), 1000))
	require.NoError(t, p.RefundExcess(ctx, "alice"))
	assert.Equal(t, ledger.Balance(10_000-1000), led.BalanceOf("alice"))
	assert.Equal(t, uint64(1000), p.enclaves["alice"].Staked)
}

func TestUnregisterMetricsServerRevokesPermission(t *testing.T) {
	_, _, ctx, p := newFixture(t)
	require.NoError(t, p.RegisterMetricsServer(ctx, chain.Root(), "reporter1"))

	err := p.UnregisterMetricsServer(ctx, chain.Signed("alice"), "reporter1")
	assert.ErrorIs(t, err, runtimeerrors.ErrBadOrigin)

	require.NoError(t, p.UnregisterMetricsServer(ctx, chain.Root(), "reporter1"))
	err = p.UnregisterMetricsServer(ctx, chain.Root(), "reporter1")
	assert.ErrorIs(t, err, runtimeerrors.ErrNotAMetricsServer)

	p.OnInitialize(ctx, 40)
	err = p.SubmitMetricsServerReport(ctx, "reporter1", "alice", ReportParams{})
	assert.ErrorIs(t, err, runtimeerrors.ErrNotAMetricsServer)
}
