// Package config holds the CORE's compile-time runtime constants
// (spec.md §6) plus optional .env-file loading for local/dev harnesses,
// grounded on the reference corpus's cmd/seed_supabase use of
// github.com/joho/godotenv for environment bootstrapping.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config bundles every named constant from spec.md §6. Fields are grouped
// by owning pallet. All are readable as part of the public interface, as
// the original spec requires.
type Config struct {
	// Auction
	MinAuctionDuration     uint64
	MaxAuctionDuration     uint64
	MaxAuctionDelay        uint64
	AuctionGracePeriod     uint64
	AuctionEndingPeriod    uint64
	BidderListLengthLimit  int
	ParallelAuctionLimit   int

	// Shared drain budget
	ActionsInBlockLimit int

	// Rent
	ContractExpirationDuration uint64
	SimultaneousContractLimit  int

	// Transmission
	MaxBlockDuration            uint64
	MaxConsentListSize          int
	SimultaneousTransmissionLimit int

	// TEE / shard sync
	ClusterSize        int
	MaxURILen          int
	InitialStakingAmount uint64
	TeeBondingDuration uint64
	TeeHistoryDepth    uint64
	ShardsNumber       int
	EraLength          uint64
	ReportParamsWeightage [5]uint32

	// Fees
	InitialMintFee            uint64
	InitialSecretMintFee      uint64
	InitialCapsuleMintFee     uint64
	InitialAtBlockFee         uint64
	InitialAtBlockWithResetFee uint64
	InitialOnConsentFee       uint64
	InitialOnConsentAtBlockFee uint64
	InitialDailyRewardPool    uint64

	// Collections
	CollectionSizeLimit int

	// [EXPANSION] pro-rata toggle for FlexibleTokens cancellation fees —
	// spec.md §9 Open Questions: "implementers should surface a
	// configuration flag to switch between both behaviors". true = scale by
	// remaining/total blocks (the spec's intended design); false reproduces
	// the disabled-scaling code path found in the original source (full
	// refund, no pro-rata).
	ProRataCancellationFees bool
}

// Default returns sensible constants for local development and tests. Block
// counts assume a short test cadence; production embedders override via
// LoadYAML or by constructing Config directly.
func Default() Config {
	return Config{
		MinAuctionDuration:    20,
		MaxAuctionDuration:    864000,
		MaxAuctionDelay:       14400,
		AuctionGracePeriod:    30,
		AuctionEndingPeriod:   5,
		BidderListLengthLimit: 50,
		ParallelAuctionLimit:  400,

		ActionsInBlockLimit: 10,

		ContractExpirationDuration: 100800,
		SimultaneousContractLimit:  100,

		MaxBlockDuration:              864000,
		MaxConsentListSize:            10,
		SimultaneousTransmissionLimit: 100,

		ClusterSize:          5,
		MaxURILen:            256,
		InitialStakingAmount: 100_000,
		TeeBondingDuration:   10_500,
		TeeHistoryDepth:      84,
		ShardsNumber:         5,
		EraLength:            14400,
		ReportParamsWeightage: [5]uint32{20, 20, 20, 20, 20},

		InitialMintFee:             100,
		InitialSecretMintFee:       150,
		InitialCapsuleMintFee:      200,
		InitialAtBlockFee:          10,
		InitialAtBlockWithResetFee: 15,
		InitialOnConsentFee:        10,
		InitialOnConsentAtBlockFee: 15,
		InitialDailyRewardPool:     1000,

		CollectionSizeLimit: 1000,

		ProRataCancellationFees: true,
	}
}

// LoadEnv loads a .env file into the process environment. It is a no-op
// when envFile is empty; a named file that cannot be read returns
// godotenv.Load's error. It does not change any Config value.
func LoadEnv(envFile string) error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return err
	}
	return nil
}

// LoadYAML reads a YAML overlay file and applies it on top of Default,
// letting an embedder override a subset of constants (e.g. a production
// ClusterSize or EraLength) without restating every field, grounded on
// internal/config.LoadServicesConfigFromPath's os.ReadFile + yaml.Unmarshal
// pattern in the reference corpus.
func LoadYAML(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config overlay: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config overlay: %w", err)
	}
	return cfg, nil
}

// LoadYAMLOrDefault is LoadYAML with a fallback to Default for the common
// "overlay file is optional" embedding case.
func LoadYAMLOrDefault(path string) Config {
	cfg, err := LoadYAML(path)
	if err != nil {
		return Default()
	}
	return cfg
}

// Blocks converts a duration to an approximate block count given a fixed
// block time — a convenience for embedders translating wall-clock SLAs
// (e.g. ContractExpirationDuration) into the block-number domain every
// deadline in this runtime is expressed in.
func Blocks(d time.Duration, blockTime time.Duration) uint64 {
	if blockTime <= 0 {
		return 0
	}
	return uint64(d / blockTime)
}
