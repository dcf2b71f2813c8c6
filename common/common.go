// Package common holds the process-wide scaffolding the cmd CLI shares
// with the rest of the module: version metadata, the logging idiom, and
// the CLI options struct, in the same shape the teacher's common/common.go
// holds them for lightwalletd.
package common

import (
	"time"

	"github.com/sirupsen/logrus"
)

// 'make build' will overwrite this string with the output of git-describe (tag)
var (
	Version   = "v0.0.0.0-dev"
	GitCommit = ""
	Branch    = ""
	BuildDate = ""
	BuildUser = ""
)

// Options collects the CLI configuration this module's cmd package binds
// to cobra flags and viper config. Unlike the teacher's Options (gRPC/TLS/
// zcashd-RPC fields for a wallet-facing service), this module runs no RPC
// server (its only listener is the /metrics HTTP endpoint) — see SPEC_FULL.md's
// Non-goals — so the surface here
// is limited to the bbolt-backed prover ingest loop plus the metrics
// endpoint.
type Options struct {
	HTTPBindAddr string `json:"http_bind_address,omitempty"`
	LogLevel     uint32 `json:"log_level,omitempty"`
	LogFile      string `json:"log_file,omitempty"`
	DataDir      string `json:"data_dir,omitempty"`
	ChainType    string `json:"chain_type,omitempty"`
	Flags        uint8  `json:"flags,omitempty"`

	// BootstrapHeight/BootstrapHeaderHex seed a fresh bbolt store from a
	// single trusted header (spvclient.Bootstrap), required on an empty
	// --data-dir and ignored otherwise.
	BootstrapHeight    uint64 `json:"bootstrap_height,omitempty"`
	BootstrapHeaderHex string `json:"bootstrap_header_hex,omitempty"`

	// HeadersDir is polled for new raw 80-byte header files to append via
	// prover.Service.Update, named by height ("000123.hdr") so they sort
	// and ingest in order.
	HeadersDir string `json:"headers_dir,omitempty"`
}

// Time allows time-related functions to be mocked for testing, so that
// tests can be deterministic and don't require real time to elapse. In
// production these point to the standard library `time` functions; unit
// tests may override them.
var Time struct {
	Sleep func(d time.Duration)
	Now   func() time.Time
}

func init() {
	Time.Sleep = time.Sleep
	Time.Now = time.Now
}

// Log as a package-level variable simplifies logging call sites across the
// cmd package, exactly the teacher's common.Log idiom. cmd's init assigns
// it before flags are parsed; the server startup later applies the
// --log-file and --log-level settings to the underlying logger.
var Log *logrus.Entry
