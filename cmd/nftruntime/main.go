// Command nftruntime runs the NFT runtime as a standalone block-driven
// process for local development: it advances a block every tick, draining
// due auctions, rent contracts, transmissions, and TEE era bookkeeping, and
// logs every emitted event.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/r3e-network/nft-runtime/chain"
	"github.com/r3e-network/nft-runtime/config"
	"github.com/r3e-network/nft-runtime/ledger"
	"github.com/r3e-network/nft-runtime/runtime"
	"github.com/sirupsen/logrus"
)

func main() {
	envFile := flag.String("env", "", "Path to a .env file (optional)")
	blockTime := flag.Duration("block-time", time.Second, "Wall-clock duration of one simulated block")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := config.LoadEnv(*envFile); err != nil {
		log.WithError(err).Fatal("failed to load env file")
	}
	cfg := config.Default()

	led := ledger.NewInMemory()
	feesCollector := chain.AccountID("treasury")
	rt := runtime.New(cfg, led, log, feesCollector)

	log.Info("nft runtime starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*blockTime)
	defer ticker.Stop()

	var block chain.BlockNumber
	for {
		select {
		case <-sigCh:
			log.Info("nft runtime shutting down")
			cancel()
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			block++
			events := rt.AdvanceBlock(block)
			for _, e := range events {
				log.WithFields(logrus.Fields{"pallet": e.Pallet, "event": e.Name}).WithFields(e.Fields).Info("event")
			}
		}
	}
}
