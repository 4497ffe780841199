package rent

import (
	"testing"

	"github.com/r3e-network/nft-runtime/chain"
	"github.com/r3e-network/nft-runtime/config"
	"github.com/r3e-network/nft-runtime/ledger"
	"github.com/r3e-network/nft-runtime/nft"
	"github.com/r3e-network/nft-runtime/runtimeerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopResolver struct{}

func (noopResolver) ResolveEnclave(chain.AccountID) (uint64, chain.AccountID, bool) { return 0, "", false }

type fixture struct {
	cfg      config.Config
	ledger   *ledger.InMemory
	ctx      *chain.Context
	registry *nft.Registry
	rent     *Pallet
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.ContractExpirationDuration = 20
	cfg.SimultaneousContractLimit = 2
	cfg.ActionsInBlockLimit = 10

	led := ledger.NewInMemory()
	ctx := chain.NewContext(led, nil, "")
	registry := nft.New(cfg, "fees", noopResolver{})
	r := New(cfg, registry)

	for _, acc := range []chain.AccountID{"creator", "alice", "bob"} {
		led.Mint(acc, 100_000)
	}
	return &fixture{cfg: cfg, ledger: led, ctx: ctx, registry: registry, rent: r}
}

func (f *fixture) mintNFT(t *testing.T) nft.ID {
	t.Helper()
	n, err := f.registry.CreateNFT(f.ctx, "creator", nil, 0, nil, false)
	require.NoError(t, err)
	return n.ID
}

func TestCreateContractRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	id := f.mintNFT(t)

	_, err := f.rent.CreateContract(f.ctx, "alice", id, Duration{Kind: Fixed, Blocks: 10}, Acceptance{}, Anytime, RentFee{}, CancellationFee{}, CancellationFee{})
	assert.ErrorIs(t, err, runtimeerrors.ErrNotTheNFTOwner)
}

func TestCreateContractRejectsSubscriptionWithNFTRentFee(t *testing.T) {
	f := newFixture(t)
	id := f.mintNFT(t)
	feeNFTID := f.mintNFT(t)

	_, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Subscription, Period: 10}, Acceptance{}, Anytime, RentFee{Kind: RentFeeNFT, NFTID: &feeNFTID}, CancellationFee{}, CancellationFee{})
	assert.ErrorIs(t, err, runtimeerrors.ErrDurationAndRentFeeMismatch)
}

func TestCreateContractAllowsSubscriptionWithTokenRentFee(t *testing.T) {
	f := newFixture(t)
	id := f.mintNFT(t)

	c, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Subscription, Period: 10}, Acceptance{}, Anytime, RentFee{Amount: 50}, CancellationFee{}, CancellationFee{})
	require.NoError(t, err)
	assert.Equal(t, ledger.Balance(50), c.RentFee.Amount)
}

func TestCreateContractRejectsOnSubscriptionChangeWithoutSubscription(t *testing.T) {
	f := newFixture(t)
	id := f.mintNFT(t)

	_, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Fixed, Blocks: 10}, Acceptance{}, OnSubscriptionChange, RentFee{}, CancellationFee{}, CancellationFee{})
	assert.ErrorIs(t, err, runtimeerrors.ErrDurationInvalid)
}

func TestCreateContractChargesRenterCancellationFeeAndListsNFT(t *testing.T) {
	f := newFixture(t)
	id := f.mintNFT(t)

	renterCancel := CancellationFee{Kind: FeeFixedTokens, Amount: 300}
	c, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Fixed, Blocks: 10}, Acceptance{}, Anytime, RentFee{Amount: 50}, renterCancel, CancellationFee{})
	require.NoError(t, err)
	assert.Equal(t, chain.AccountID("creator"), c.Renter)
	assert.Equal(t, ledger.Balance(100_000-300), f.ctx.Ledger.BalanceOf("creator"))
	assert.Equal(t, ledger.Balance(300), f.ctx.Ledger.BalanceOf(chain.PalletAccount))

	n, err := f.registry.Get(id)
	require.NoError(t, err)
	assert.True(t, n.Flags.IsRented)
}

func TestRentAutoAcceptanceStartsContractImmediately(t *testing.T) {
	f := newFixture(t)
	id := f.mintNFT(t)
	_, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Fixed, Blocks: 10}, Acceptance{Kind: AutoAcceptance}, Anytime, RentFee{Amount: 100}, CancellationFee{}, CancellationFee{})
	require.NoError(t, err)

	require.NoError(t, f.rent.Rent(f.ctx, "alice", id))

	c, err := f.rent.Get(id)
	require.NoError(t, err)
	assert.True(t, c.HasStarted)
	assert.Equal(t, chain.AccountID("alice"), c.Rentee)
	assert.Equal(t, ledger.Balance(100_000-100), f.ctx.Ledger.BalanceOf("alice"))
	assert.Equal(t, ledger.Balance(100_000+100), f.ctx.Ledger.BalanceOf("creator"))
}

func TestRentAutoAcceptanceWithNFTRentFeeTransfersOwnershipToRenter(t *testing.T) {
	f := newFixture(t)
	id := f.mintNFT(t)
	feeNFTID := f.mintNFT(t)
	_, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Fixed, Blocks: 10}, Acceptance{Kind: AutoAcceptance}, Anytime, RentFee{Kind: RentFeeNFT, NFTID: &feeNFTID}, CancellationFee{}, CancellationFee{})
	require.NoError(t, err)

	// the fee NFT must belong to the rentee at the moment the contract starts
	require.NoError(t, f.registry.TransferOwnership(feeNFTID, "alice"))
	require.NoError(t, f.rent.Rent(f.ctx, "alice", id))

	feeNFT, err := f.registry.Get(feeNFTID)
	require.NoError(t, err)
	assert.Equal(t, chain.AccountID("creator"), feeNFT.Owner)
}

func TestRentManualAcceptanceRecordsOfferUntilAccepted(t *testing.T) {
	f := newFixture(t)
	id := f.mintNFT(t)
	_, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Fixed, Blocks: 10}, Acceptance{Kind: ManualAcceptance}, Anytime, RentFee{Amount: 100}, CancellationFee{}, CancellationFee{})
	require.NoError(t, err)

	require.NoError(t, f.rent.Rent(f.ctx, "alice", id))
	c, err := f.rent.Get(id)
	require.NoError(t, err)
	assert.False(t, c.HasStarted)

	require.NoError(t, f.rent.AcceptRentOffer(f.ctx, "creator", id, "alice"))
	c, err = f.rent.Get(id)
	require.NoError(t, err)
	assert.True(t, c.HasStarted)
	assert.Equal(t, chain.AccountID("alice"), c.Rentee)
}

func TestRentRejectsNonWhitelistedCaller(t *testing.T) {
	f := newFixture(t)
	id := f.mintNFT(t)
	_, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Fixed, Blocks: 10},
		Acceptance{Kind: AutoAcceptance, Whitelist: []chain.AccountID{"bob"}}, Anytime, RentFee{}, CancellationFee{}, CancellationFee{})
	require.NoError(t, err)

	err = f.rent.Rent(f.ctx, "alice", id)
	assert.ErrorIs(t, err, runtimeerrors.ErrNotAuthorizedForRent)

	require.NoError(t, f.rent.Rent(f.ctx, "bob", id))
}

func TestRetractRentOfferRemovesOffer(t *testing.T) {
	f := newFixture(t)
	id := f.mintNFT(t)
	_, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Fixed, Blocks: 10}, Acceptance{Kind: ManualAcceptance}, Anytime, RentFee{}, CancellationFee{}, CancellationFee{})
	require.NoError(t, err)
	require.NoError(t, f.rent.Rent(f.ctx, "alice", id))

	require.NoError(t, f.rent.RetractRentOffer(f.ctx, "alice", id))
	err = f.rent.AcceptRentOffer(f.ctx, "creator", id, "alice")
	assert.ErrorIs(t, err, runtimeerrors.ErrNotAuthorizedForRent)
}

func TestRevokeContractBeforeStartReturnsRenterCancelFee(t *testing.T) {
	f := newFixture(t)
	id := f.mintNFT(t)
	renterCancel := CancellationFee{Kind: FeeFixedTokens, Amount: 300}
	_, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Fixed, Blocks: 10}, Acceptance{}, Anytime, RentFee{}, renterCancel, CancellationFee{})
	require.NoError(t, err)

	require.NoError(t, f.rent.RevokeContract(f.ctx, "creator", id))
	assert.Equal(t, ledger.Balance(100_000), f.ctx.Ledger.BalanceOf("creator"))
	_, err = f.rent.Get(id)
	assert.ErrorIs(t, err, runtimeerrors.ErrContractNotFound)

	n, err := f.registry.Get(id)
	require.NoError(t, err)
	assert.False(t, n.Flags.IsRented)
}

func TestRevokeContractByRenterPaysBothCancellationFeesToRentee(t *testing.T) {
	f := newFixture(t)
	id := f.mintNFT(t)
	renterCancel := CancellationFee{Kind: FeeFixedTokens, Amount: 300}
	renteeCancel := CancellationFee{Kind: FeeFixedTokens, Amount: 200}
	// Anytime forbids the renter from revoking a started contract;
	// OnSubscriptionChange does not.
	_, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Subscription, Period: 10}, Acceptance{}, OnSubscriptionChange, RentFee{}, renterCancel, renteeCancel)
	require.NoError(t, err)
	require.NoError(t, f.rent.Rent(f.ctx, "alice", id))

	require.NoError(t, f.rent.RevokeContract(f.ctx, "creator", id))
	// alice paid 200 renteeCancel up front, gets both 300+200=500 back
	assert.Equal(t, ledger.Balance(100_000-200+500), f.ctx.Ledger.BalanceOf("alice"))
}

// TestScenario_RentRevokeByRentee is spec.md §8 scenario S3, literally:
// Contract{Fixed(10), Auto, rent=Tokens(100), both cancel fees=FixedTokens(10),
// renter=Alice}. Bob rents at block 0: Alice +100, Bob -110, pallet +10 (the
// renter's own cancel fee already sat in the pallet since CreateContract).
// Bob revokes at block 5: Alice +10 (Bob's cancel fee), Alice also gets back
// her own 10 -- net Bob loss = 100+10, net Alice gain = 100+10.
func TestScenario_RentRevokeByRentee(t *testing.T) {
	f := newFixture(t)
	f.cfg.ProRataCancellationFees = false
	f.rent = New(f.cfg, f.registry) // rebuild with pro-rata disabled; newFixture baked the default in
	id := f.mintNFT(t)
	aliceStart := f.ctx.Ledger.BalanceOf("alice")
	bobStart := f.ctx.Ledger.BalanceOf("bob")

	cancelFee := CancellationFee{Kind: FeeFixedTokens, Amount: 10}
	_, err := f.rent.CreateContract(f.ctx, "alice", id, Duration{Kind: Fixed, Blocks: 10}, Acceptance{Kind: AutoAcceptance}, Anytime, RentFee{Kind: RentFeeTokens, Amount: 100}, cancelFee, cancelFee)
	require.NoError(t, err)
	assert.Equal(t, aliceStart-10, f.ctx.Ledger.BalanceOf("alice")) // renterCancel escrowed at creation

	aliceAfterCreate := f.ctx.Ledger.BalanceOf("alice")
	require.NoError(t, f.rent.Rent(f.ctx, "bob", id))
	assert.Equal(t, aliceAfterCreate+ledger.Balance(100), f.ctx.Ledger.BalanceOf("alice"))
	assert.Equal(t, bobStart-ledger.Balance(110), f.ctx.Ledger.BalanceOf("bob"))

	f.ctx.SetBlock(5)
	aliceBeforeRevoke := f.ctx.Ledger.BalanceOf("alice")
	require.NoError(t, f.rent.RevokeContract(f.ctx, "bob", id))
	assert.Equal(t, aliceBeforeRevoke+ledger.Balance(20), f.ctx.Ledger.BalanceOf("alice"))

	assert.Equal(t, aliceStart+ledger.Balance(110), f.ctx.Ledger.BalanceOf("alice"))
	assert.Equal(t, bobStart-ledger.Balance(110), f.ctx.Ledger.BalanceOf("bob"))
}

func TestRevokeContractByRenterBlockedWhenAnytimeAndRenterIsRenter(t *testing.T) {
	// Anytime revocation forbids the renter (not the rentee) from revoking
	// a started contract.
	f := newFixture(t)
	id := f.mintNFT(t)
	_, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Fixed, Blocks: 10}, Acceptance{}, Anytime, RentFee{}, CancellationFee{}, CancellationFee{})
	require.NoError(t, err)
	require.NoError(t, f.rent.Rent(f.ctx, "alice", id))

	err = f.rent.RevokeContract(f.ctx, "creator", id)
	assert.ErrorIs(t, err, runtimeerrors.ErrCannotRevoke)

	require.NoError(t, f.rent.RevokeContract(f.ctx, "alice", id))
}

func TestChangeAndAcceptSubscriptionTerms(t *testing.T) {
	f := newFixture(t)
	id := f.mintNFT(t)
	_, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Subscription, Period: 10}, Acceptance{}, OnSubscriptionChange, RentFee{}, CancellationFee{}, CancellationFee{})
	require.NoError(t, err)
	require.NoError(t, f.rent.Rent(f.ctx, "alice", id))

	newTerms := Duration{Kind: Subscription, Period: 20}
	require.NoError(t, f.rent.ChangeSubscriptionTerms(f.ctx, "creator", id, newTerms))

	err = f.rent.AcceptSubscriptionTerms(f.ctx, "creator", id)
	assert.ErrorIs(t, err, runtimeerrors.ErrNotTheRentee)

	require.NoError(t, f.rent.AcceptSubscriptionTerms(f.ctx, "alice", id))
	c, err := f.rent.Get(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), c.Duration.Period)
}

func TestOnInitializeDrainsAvailableOfferAndRefundsRenterCancelFee(t *testing.T) {
	f := newFixture(t)
	id := f.mintNFT(t)
	renterCancel := CancellationFee{Kind: FeeFixedTokens, Amount: 300}
	_, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Fixed, Blocks: 10}, Acceptance{}, Anytime, RentFee{}, renterCancel, CancellationFee{})
	require.NoError(t, err)

	f.ctx.SetBlock(chain.BlockNumber(f.cfg.ContractExpirationDuration))
	f.rent.OnInitialize(f.ctx, f.ctx.Now())

	_, err = f.rent.Get(id)
	assert.ErrorIs(t, err, runtimeerrors.ErrContractNotFound)
	assert.Equal(t, ledger.Balance(100_000), f.ctx.Ledger.BalanceOf("creator"))
}

func TestOnInitializeDrainsFixedContractAndReturnsBothCancellationFees(t *testing.T) {
	f := newFixture(t)
	id := f.mintNFT(t)
	renterCancel := CancellationFee{Kind: FeeFixedTokens, Amount: 300}
	renteeCancel := CancellationFee{Kind: FeeFixedTokens, Amount: 200}
	_, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Fixed, Blocks: 10}, Acceptance{}, Anytime, RentFee{}, renterCancel, renteeCancel)
	require.NoError(t, err)
	require.NoError(t, f.rent.Rent(f.ctx, "alice", id))

	f.ctx.SetBlock(10)
	f.rent.OnInitialize(f.ctx, 10)

	_, err = f.rent.Get(id)
	assert.ErrorIs(t, err, runtimeerrors.ErrContractNotFound)
	assert.Equal(t, ledger.Balance(100_000), f.ctx.Ledger.BalanceOf("creator"))
	assert.Equal(t, ledger.Balance(100_000), f.ctx.Ledger.BalanceOf("alice"))
}

func TestOnInitializeDrainsSubscriptionAndCollectsRentFee(t *testing.T) {
	f := newFixture(t)
	id := f.mintNFT(t)
	_, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Subscription, Period: 10}, Acceptance{Kind: AutoAcceptance}, Anytime, RentFee{}, CancellationFee{}, CancellationFee{})
	require.NoError(t, err)

	c, err := f.rent.Get(id)
	require.NoError(t, err)
	c.RentFee = RentFee{Amount: 50}
	require.NoError(t, f.rent.Rent(f.ctx, "alice", id))
	// starting the contract already collects the first period's rent fee
	assert.Equal(t, ledger.Balance(100_000-50), f.ctx.Ledger.BalanceOf("alice"))

	f.ctx.SetBlock(10)
	f.rent.OnInitialize(f.ctx, 10)

	// the drain at block 10 collects a second period's worth
	assert.Equal(t, ledger.Balance(100_000-50-50), f.ctx.Ledger.BalanceOf("alice"))
	assert.Equal(t, ledger.Balance(100_000+50+50), f.ctx.Ledger.BalanceOf("creator"))

	got, err := f.rent.Get(id)
	require.NoError(t, err)
	assert.True(t, got.HasStarted)
}

func TestOnInitializeDrainsSubscriptionPastMaxDurationRevokes(t *testing.T) {
	f := newFixture(t)
	id := f.mintNFT(t)
	_, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Subscription, Period: 10, MaxDuration: 5}, Acceptance{Kind: AutoAcceptance}, Anytime, RentFee{}, CancellationFee{}, CancellationFee{})
	require.NoError(t, err)
	require.NoError(t, f.rent.Rent(f.ctx, "alice", id))

	f.ctx.SetBlock(10)
	f.rent.OnInitialize(f.ctx, 10)

	_, err = f.rent.Get(id)
	assert.ErrorIs(t, err, runtimeerrors.ErrContractNotFound)
}

func TestProRataScalesFlexibleCancellationFeeByRemainingDuration(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.cfg.ProRataCancellationFees)
	id := f.mintNFT(t)
	renteeCancel := CancellationFee{Kind: FeeFlexibleTokens, Amount: 1000}
	_, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Fixed, Blocks: 10}, Acceptance{}, Anytime, RentFee{}, CancellationFee{}, renteeCancel)
	require.NoError(t, err)
	require.NoError(t, f.rent.Rent(f.ctx, "alice", id))
	assert.Equal(t, ledger.Balance(100_000-1000), f.ctx.Ledger.BalanceOf("alice"))

	// halfway through the 10-block contract: remaining/total = 5/10. Alice
	// (the rentee) is the one revoking, so her posted collateral is
	// forfeit to the renter rather than refunded to her, scaled down by
	// how much of the contract's term has already elapsed.
	f.ctx.SetBlock(5)
	require.NoError(t, f.rent.RevokeContract(f.ctx, "alice", id))
	assert.Equal(t, ledger.Balance(100_000-1000), f.ctx.Ledger.BalanceOf("alice"))
	assert.Equal(t, ledger.Balance(100_000+500), f.ctx.Ledger.BalanceOf("creator"))
}

func TestRevokeContractRejectsNonParty(t *testing.T) {
	f := newFixture(t)
	id := f.mintNFT(t)
	_, err := f.rent.CreateContract(f.ctx, "creator", id, Duration{Kind: Fixed, Blocks: 10}, Acceptance{}, Anytime, RentFee{}, CancellationFee{}, CancellationFee{})
	require.NoError(t, err)

	err = f.rent.RevokeContract(f.ctx, "bob", id)
	assert.ErrorIs(t, err, runtimeerrors.ErrNotTheContractOwner)
}
