package chain

import "github.com/prometheus/client_golang/prometheus"

// Metrics wraps a private prometheus.Registry with the counters/gauges the
// drain loops and extrinsics report through, grounded on
// internal/engine/metrics.Collector's per-subsystem vector layout in the
// reference corpus.
type Metrics struct {
	Registry *prometheus.Registry

	AuctionsCreated   prometheus.Counter
	BidsPlaced        prometheus.Counter
	AuctionsSettled   prometheus.Counter
	RentContractsOpen prometheus.Gauge
	TransmissionsDone prometheus.Counter
	ShardsSubmitted   prometheus.Counter
	TeeRewardsPaid    prometheus.Counter
	DrainIterations   *prometheus.CounterVec
}

// NewMetrics constructs and registers the runtime's metric set under the
// given namespace (defaults to "nftruntime" when empty).
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "nftruntime"
	}
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		AuctionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "auction", Name: "created_total",
			Help: "Total auctions created.",
		}),
		BidsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "auction", Name: "bids_placed_total",
			Help: "Total bids accepted across all auctions.",
		}),
		AuctionsSettled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "auction", Name: "settled_total",
			Help: "Total auctions settled by the deadline drain.",
		}),
		RentContractsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "rent", Name: "contracts_open",
			Help: "Rent contracts currently started and not yet revoked.",
		}),
		TransmissionsDone: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "transmission", Name: "completed_total",
			Help: "Total transmissions executed.",
		}),
		ShardsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "nft", Name: "shards_submitted_total",
			Help: "Total secret/capsule shard confirmations accepted.",
		}),
		TeeRewardsPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "tee", Name: "rewards_paid_total",
			Help: "Total era reward payouts to TEE operators.",
		}),
		DrainIterations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "block", Name: "drain_iterations_total",
			Help: "on_initialize drain iterations per queue.",
		}, []string{"queue"}),
	}

	reg.MustRegister(
		m.AuctionsCreated, m.BidsPlaced, m.AuctionsSettled,
		m.RentContractsOpen, m.TransmissionsDone, m.ShardsSubmitted,
		m.TeeRewardsPaid, m.DrainIterations,
	)
	return m
}
