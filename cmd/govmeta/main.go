// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the govmeta CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/govmeta/internal/fetch"
	"github.com/pdiddy/govmeta/internal/logger"
	"github.com/pdiddy/govmeta/internal/secrets"
	"github.com/pdiddy/govmeta/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds credentials loaded from the secrets directory at
	// startup.
	loadedSecrets = secrets.Secrets{}

	// log is the diagnostic logger; its level follows log.level.
	log = logger.New("info")
)

// rootCmd is the base command for the govmeta CLI.
var rootCmd = &cobra.Command{
	Use:   "govmeta",
	Short: "Fetch, validate and index Cardano governance metadata",
	Long: `govmeta retrieves governance metadata documents (CIP-100 and its
extensions) from HTTP, IPFS or local files, expands them as JSON-LD and
extracts a validated document: hash algorithm, cosigning authors with their
witnesses, and a body of references, comment and update locations.

Fetched documents can be archived, indexed in a local SQLite store with
full-text search, or served over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlag("log.level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
			return err
		}
		log.SetLevel(viper.GetString("log.level"))

		dir, _ := cmd.Root().PersistentFlags().GetString("secrets-dir")
		s, err := secrets.Load(dir, log)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if names := s.Names(); len(names) > 0 {
			log.Debug("loaded secrets", "names", names)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./govmeta.yaml or ~/.config/govmeta/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of credential files")
	rootCmd.PersistentFlags().String("log-level", "info", "diagnostic log level: debug, info, warn, error")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("govmeta")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "govmeta"))
		}
	}

	viper.SetEnvPrefix("GOVMETA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper(), types.DefaultConfig())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so environment variables and the
// config file can override each one.
func setDefaults(v *viper.Viper, d types.Config) {
	v.SetDefault("fetch.timeout", d.Fetch.Timeout)
	v.SetDefault("fetch.user_agent", d.Fetch.UserAgent)
	v.SetDefault("fetch.max_retries", d.Fetch.MaxRetries)
	v.SetDefault("fetch.max_body_bytes", d.Fetch.MaxBodyBytes)
	v.SetDefault("fetch.ipfs_gateway", d.Fetch.IPFSGateway)
	v.SetDefault("fetch.allow_remote_contexts", d.Fetch.AllowRemoteContexts)
	v.SetDefault("fetch.download_delay", d.Fetch.DownloadDelay)
	v.SetDefault("fetch.documents_dir", d.Fetch.DocumentsDir)
	v.SetDefault("store.store_dir", d.Store.StoreDir)
	v.SetDefault("store.max_results", d.Store.MaxResults)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("log.level", d.Log.Level)
}

// bindFlags binds a command's flags to config keys. Binding happens per
// command run because several commands share a key.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			return fmt.Errorf("unknown flag %q", flag)
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig resolves the effective configuration: defaults, then config
// file, then environment, then flags bound with bindFlags.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	return cfg, nil
}

// fetchFlags are the flags shared by commands that build a fetch client.
var fetchFlags = map[string]string{
	"timeout":               "fetch.timeout",
	"ipfs-gateway":          "fetch.ipfs_gateway",
	"allow-remote-contexts": "fetch.allow_remote_contexts",
	"max-body-bytes":        "fetch.max_body_bytes",
}

func addFetchFlags(fs *pflag.FlagSet) {
	d := types.DefaultConfig().Fetch
	fs.Duration("timeout", d.Timeout, "HTTP request timeout")
	fs.String("ipfs-gateway", d.IPFSGateway, "HTTP gateway for ipfs:// sources")
	fs.Bool("allow-remote-contexts", d.AllowRemoteContexts, "let JSON-LD expansion fetch remote @context documents")
	fs.Int64("max-body-bytes", d.MaxBodyBytes, "maximum payload size")
}

func newFetchClient(cfg types.FetchConfig) *fetch.Client {
	return fetch.NewClient(cfg,
		fetch.WithSecrets(loadedSecrets),
		fetch.WithLogger(log.With("component", "fetch")))
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
