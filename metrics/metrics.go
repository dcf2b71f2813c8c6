// Package metrics exposes Prometheus instrumentation for prover ingest
// operations, served over /metrics the same way the teacher's
// cmd/root.go:startHTTPServer wires promhttp.Handler() in front of its
// grpc_prometheus collectors — this module has no gRPC server, so these
// are the only collectors registered.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HeadersIngested counts headers successfully appended by prover.Service.Update.
	HeadersIngested = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "btcspv_headers_ingested_total",
		Help: "Total number of Bitcoin headers appended to the tracked MMR.",
	})

	// TipHeight tracks the prover's current chain tip height.
	TipHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "btcspv_mmr_tip_height",
		Help: "Current maximum height tracked by the prover's MMR accumulator.",
	})

	// PartialChainWork tracks the accumulated work of the tracked range,
	// as a float64 approximation (partial_chain_work is a uint256 and
	// Prometheus gauges carry float64; precision loss here is expected
	// and acceptable for observability, never for verification).
	PartialChainWork = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "btcspv_mmr_partial_chain_work",
		Help: "Approximate accumulated proof-of-work of the tracked header range.",
	})

	// VerifyTransactionDuration measures VerifyTransaction call latency.
	VerifyTransactionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "btcspv_verify_transaction_duration_seconds",
		Help:    "Time spent in spvclient.VerifyTransaction.",
		Buckets: prometheus.DefBuckets,
	})

	// BootstrapErrors counts Bootstrap calls that returned a non-OK error code.
	BootstrapErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "btcspv_bootstrap_errors_total",
		Help: "Total number of Bootstrap calls that failed.",
	})

	// UpdateErrors counts header-chain update failures under a "code" label.
	// Its only caller, cmd's header ingest loop, uses the label value
	// "ingest_rejected"; VerifyNewClient and prover.Update do not touch it.
	UpdateErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "btcspv_update_errors_total",
		Help: "Total number of header-chain update failures, labeled by code.",
	}, []string{"code"})
)

func init() {
	prometheus.MustRegister(
		HeadersIngested,
		TipHeight,
		PartialChainWork,
		VerifyTransactionDuration,
		BootstrapErrors,
		UpdateErrors,
	)
}
