package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joseph-ayodele/receipt-analytics/internal/common"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "receiptctl",
		Short: "Extract, query and summarize receipts",
		Long: `receiptctl ingests receipt documents, extracts vendor, date, amount and
category from them, and answers filter, sort and spending questions.

It works against a local store by default, or against a running receiptsd
when --server is given.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/receipts/config.yaml)")
	rootCmd.PersistentFlags().String("store", "", "store driver: memory, sqlite, bolt or postgres")
	rootCmd.PersistentFlags().String("store-path", "", "database file for sqlite and bolt")
	rootCmd.PersistentFlags().String("db-url", "", "postgres connection string")
	rootCmd.PersistentFlags().String("server", "", "receiptsd gRPC address; empty uses the local store")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")

	_ = viper.BindPFlag("store.driver", rootCmd.PersistentFlags().Lookup("store"))
	_ = viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("store-path"))
	_ = viper.BindPFlag("store.dsn", rootCmd.PersistentFlags().Lookup("db-url"))
	_ = viper.BindPFlag("server.addr", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(updateCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(seedCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home + "/.config/receipts")
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("receipts")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("RECEIPTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := loadConfig()
	logger, err := common.SetupLogger(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	slog.SetDefault(logger)
	return nil
}

// loadConfig starts from the environment defaults and applies whatever the
// config file, RECEIPTS_* variables or flags set.
func loadConfig() *common.Config {
	cfg := common.LoadConfig()
	cfg.Log.Level = "warn"
	set := func(key string, dst *string) {
		if v := viper.GetString(key); v != "" {
			*dst = v
		}
	}
	set("store.driver", &cfg.Store.Driver)
	set("store.path", &cfg.Store.Path)
	set("store.dsn", &cfg.Store.DSN)
	set("log.level", &cfg.Log.Level)
	set("log.format", &cfg.Log.Format)
	if viper.IsSet("ingest.workers") {
		cfg.Ingest.Workers = viper.GetInt("ingest.workers")
	}
	if viper.IsSet("extraction.min_confidence") {
		cfg.Extraction.MinConfidence = viper.GetFloat64("extraction.min_confidence")
	}
	return cfg
}
