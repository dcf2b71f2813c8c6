package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nervosnetwork/btcspv/bitcoin"
	"github.com/nervosnetwork/btcspv/common"
	"github.com/nervosnetwork/btcspv/common/logging"
	"github.com/nervosnetwork/btcspv/metrics"
	"github.com/nervosnetwork/btcspv/prover"
	"github.com/nervosnetwork/btcspv/spvtypes"
	"github.com/nervosnetwork/btcspv/store"
	"github.com/nervosnetwork/btcspv/wire"
)

func chainTypeFromFlag(name string) bitcoin.ChainType {
	switch name {
	case "testnet":
		return bitcoin.ChainTestnet
	case "signet":
		return bitcoin.ChainSignet
	default:
		return bitcoin.ChainMainnet
	}
}

// openOrBootstrap opens the bbolt store under opts.DataDir, resuming a
// previously-tracked client if one exists, or seeding a fresh one from
// opts.BootstrapHeight/BootstrapHeaderHex.
func openOrBootstrap(opts *common.Options) (*prover.Service, *spvtypes.SpvClient, error) {
	dbPath := filepath.Join(opts.DataDir, "btcspv.db")
	boltStore, err := store.OpenBoltStore(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening bbolt store at %s: %w", dbPath, err)
	}

	svc := prover.NewService(boltStore, chainTypeFromFlag(opts.ChainType))

	if packed, baseHeight, ok, err := boltStore.LoadClientMeta(); err != nil {
		return nil, nil, fmt.Errorf("reading persisted client state: %w", err)
	} else if ok {
		wireClient, _, err := wire.UnpackSpvClient(packed)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding persisted client state: %w", err)
		}
		client := spvtypes.FromWireClient(wireClient)
		svc.Resume(&client, baseHeight)
		return svc, &client, nil
	}

	if opts.BootstrapHeaderHex == "" {
		return nil, nil, fmt.Errorf("store at %s is empty and --bootstrap-header was not supplied", dbPath)
	}
	headerBytes, err := hex.DecodeString(opts.BootstrapHeaderHex)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding --bootstrap-header: %w", err)
	}
	client, errCode := svc.Bootstrap(opts.BootstrapHeight, headerBytes)
	if errCode != spvtypes.BootstrapOK {
		metrics.BootstrapErrors.Inc()
		return nil, nil, fmt.Errorf("bootstrap failed: %s", errCode)
	}
	metrics.ObserveClient(client)
	return svc, client, nil
}

// runIngestLoop polls dir for new raw header files (named so they sort in
// height order, e.g. "000123.hdr") and appends each to svc in turn,
// mirroring the teacher's common.BlockIngestor polling loop but over a
// local directory instead of a zcashd RPC connection, since this module
// has no network transport (see SPEC_FULL.md's Non-goals).
func runIngestLoop(svc *prover.Service, dir string) {
	seen := make(map[string]bool)
	for {
		entries, err := os.ReadDir(dir)
		if err != nil {
			common.Log.WithFields(logrus.Fields{
				"dir":   dir,
				"error": err,
			}).Warning("couldn't list headers directory")
			common.Time.Sleep(5 * time.Second)
			continue
		}

		var names []string
		for _, e := range entries {
			if !e.IsDir() && !seen[e.Name()] {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			raw, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				common.Log.WithFields(logrus.Fields{
					"file":  name,
					"error": err,
				}).Warning("couldn't read header file")
				continue
			}
			var newClient *spvtypes.SpvClient
			wrapErr := logging.WrapOperation(common.Log, "ingest_header", func() error {
				var updateErr error
				_, newClient, updateErr = svc.Update([][]byte{raw})
				return updateErr
			})
			if wrapErr != nil {
				metrics.UpdateErrors.WithLabelValues("ingest_rejected").Inc()
				common.Log.WithFields(logrus.Fields{
					"file":  name,
					"error": wrapErr,
				}).Error("rejected header")
			} else {
				metrics.HeadersIngested.Inc()
				metrics.ObserveClient(newClient)
				common.Log.WithFields(logrus.Fields{
					"file":       name,
					"max_height": newClient.MaxHeight(),
				}).Info("ingested header")
			}
			seen[name] = true
		}

		common.Time.Sleep(5 * time.Second)
	}
}
