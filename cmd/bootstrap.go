package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nervosnetwork/btcspv/common"
	"github.com/nervosnetwork/btcspv/prover"
	"github.com/nervosnetwork/btcspv/spvtypes"
	"github.com/nervosnetwork/btcspv/store"
)

// bootstrapCmd seeds (or re-seeds) the bbolt store from a single trusted
// header, discarding anything previously tracked. Useful for scripted setup
// ahead of running the `btcspvd` server, mirroring the teacher's --redownload flag in
// spirit: an explicit, separate operation rather than an implicit one
// buried in the server's startup path.
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Seed the bbolt store from a single trusted header",
	Long: `Seed the bbolt store from a single trusted header, discarding any
         previously-tracked range. Run this once before 'btcspvd' on a
         fresh --data-dir.`,
	Run: func(cmd *cobra.Command, args []string) {
		dataDir := viper.GetString("data-dir")
		chain := viper.GetString("chain")
		height := viper.GetUint64("bootstrap-height")
		headerHex := viper.GetString("bootstrap-header")

		if headerHex == "" {
			common.Log.Fatal("--bootstrap-header is required")
		}
		headerBytes, err := hex.DecodeString(headerHex)
		if err != nil {
			common.Log.WithFields(map[string]interface{}{"error": err}).Fatal("invalid --bootstrap-header hex")
		}

		if err := os.MkdirAll(dataDir, 0755); err != nil {
			common.Log.WithFields(map[string]interface{}{"error": err}).Fatal("couldn't create data directory")
		}

		dbPath := filepath.Join(dataDir, "btcspv.db")
		boltStore, err := store.OpenBoltStore(dbPath)
		if err != nil {
			common.Log.WithFields(map[string]interface{}{"error": err}).Fatal("couldn't open bbolt store")
		}
		defer boltStore.Close()

		svc := prover.NewService(boltStore, chainTypeFromFlag(chain))
		client, errCode := svc.Bootstrap(height, headerBytes)
		if errCode != spvtypes.BootstrapOK {
			common.Log.WithFields(map[string]interface{}{"code": errCode.Code()}).Fatal("bootstrap failed")
		}

		fmt.Printf("bootstrapped at height %d, tip mmr root max_height=%d\n", height, client.MaxHeight())
	},
}
