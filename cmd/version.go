package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nervosnetwork/btcspv/common"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display btcspvd version",
	Long:  `Display btcspvd version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("btcspvd version", common.Version)
	},
}
