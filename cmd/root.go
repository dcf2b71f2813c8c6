package cmd

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nervosnetwork/btcspv/common"
	"github.com/nervosnetwork/btcspv/common/logging"
	"github.com/nervosnetwork/btcspv/hash32"
)

var cfgFile string
var logger = logrus.New()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "btcspvd",
	Short: "btcspvd is a Bitcoin SPV header-chain prover",
	Long: `btcspvd tracks a Bitcoin header chain in a bbolt-backed Merkle
         Mountain Range accumulator and serves Prometheus metrics for it,
         so a host chain's on-chain verifier can be fed SpvUpdate/
         TransactionProof witnesses out of band.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := &common.Options{
			HTTPBindAddr:       viper.GetString("http-bind-addr"),
			LogLevel:           viper.GetUint32("log-level"),
			LogFile:            viper.GetString("log-file"),
			DataDir:            viper.GetString("data-dir"),
			ChainType:          viper.GetString("chain"),
			Flags:              uint8(viper.GetUint32("flags")),
			BootstrapHeight:    viper.GetUint64("bootstrap-height"),
			BootstrapHeaderHex: viper.GetString("bootstrap-header"),
			HeadersDir:         viper.GetString("headers-dir"),
		}

		common.Log.Debugf("Options: %#v\n", opts)

		if err := startServer(opts); err != nil {
			common.Log.WithFields(logrus.Fields{
				"error": err,
			}).Fatal("couldn't start prover")
		}
	},
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}

// startServer wires up the bbolt-backed prover, seeds or resumes it, starts
// the header-ingest loop, and serves /metrics — the domain-specific
// replacement for the teacher's gRPC server bring-up in startServer.
func startServer(opts *common.Options) error {
	if opts.LogFile != "" {
		output, err := os.OpenFile(opts.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			common.Log.WithFields(logrus.Fields{
				"error": err,
				"path":  opts.LogFile,
			}).Fatal("couldn't open log file")
		}
		defer output.Close()
		logger.SetOutput(output)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger.SetLevel(logrus.Level(opts.LogLevel))
	logging.LogToStderr = true

	common.Log.WithFields(logrus.Fields{
		"gitCommit": common.GitCommit,
		"buildDate": common.BuildDate,
		"buildUser": common.BuildUser,
	}).Infof("Starting btcspvd version %s", common.Version)

	if err := os.MkdirAll(opts.DataDir, 0755); err != nil {
		return wrapStartErr("creating data directory", err)
	}

	svc, client, err := openOrBootstrap(opts)
	if err != nil {
		return wrapStartErr("opening prover store", err)
	}
	common.Log.WithFields(logrus.Fields{
		"id":         client.ID,
		"min_height": client.MinHeight(),
		"max_height": client.MaxHeight(),
		"tip":        hash32.Encode(client.TipBlockHash),
	}).Info("prover ready")

	go startHTTPServer(opts)

	if opts.HeadersDir != "" {
		go runIngestLoop(svc, opts.HeadersDir)
	}

	select {}
}

func wrapStartErr(step string, err error) error {
	return fmt.Errorf("%s: %w", step, err)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(bootstrapCmd)
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is current directory, btcspvd.yaml)")
	rootCmd.Flags().String("http-bind-addr", "127.0.0.1:9468", "the address to serve /metrics on")
	rootCmd.Flags().Int("log-level", int(logrus.InfoLevel), "log level (logrus 0-6)")
	rootCmd.Flags().String("log-file", "", "log file to write to (stderr if empty)")
	rootCmd.Flags().String("data-dir", "/var/lib/btcspvd", "data directory for the bbolt store")
	rootCmd.Flags().String("chain", "mainnet", "chain type: mainnet, testnet, or signet")
	rootCmd.Flags().Uint32("flags", 0, "the spv_type_args flags byte (parsed into Options.Flags; the prover does not read it)")
	rootCmd.Flags().Uint64("bootstrap-height", 0, "height of the trusted header to bootstrap from, if the store is empty")
	rootCmd.Flags().String("bootstrap-header", "", "hex-encoded 80-byte Bitcoin header to bootstrap from, if the store is empty")
	rootCmd.Flags().String("headers-dir", "", "directory polled for new raw header files to ingest (disabled if empty)")

	viper.BindPFlag("http-bind-addr", rootCmd.Flags().Lookup("http-bind-addr"))
	viper.SetDefault("http-bind-addr", "127.0.0.1:9468")
	viper.BindPFlag("log-level", rootCmd.Flags().Lookup("log-level"))
	viper.SetDefault("log-level", int(logrus.InfoLevel))
	viper.BindPFlag("log-file", rootCmd.Flags().Lookup("log-file"))
	viper.SetDefault("log-file", "")
	viper.BindPFlag("data-dir", rootCmd.Flags().Lookup("data-dir"))
	viper.SetDefault("data-dir", "/var/lib/btcspvd")
	viper.BindPFlag("chain", rootCmd.Flags().Lookup("chain"))
	viper.SetDefault("chain", "mainnet")
	viper.BindPFlag("flags", rootCmd.Flags().Lookup("flags"))
	viper.SetDefault("flags", 0)
	viper.BindPFlag("bootstrap-height", rootCmd.Flags().Lookup("bootstrap-height"))
	viper.SetDefault("bootstrap-height", 0)
	viper.BindPFlag("bootstrap-header", rootCmd.Flags().Lookup("bootstrap-header"))
	viper.BindPFlag("headers-dir", rootCmd.Flags().Lookup("headers-dir"))

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:          true,
		DisableLevelTruncation: true,
	})

	onexit := func() {
		fmt.Printf("btcspvd died with a Fatal error. Check logfile for details.\n")
	}

	common.Log = logger.WithFields(logrus.Fields{
		"app": "btcspvd",
	})

	logrus.RegisterExitHandler(onexit)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("btcspvd")
	}

	replacer := strings.NewReplacer("-", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func startHTTPServer(opts *common.Options) {
	http.Handle("/metrics", promhttp.Handler())
	http.ListenAndServe(opts.HTTPBindAddr, nil)
}
