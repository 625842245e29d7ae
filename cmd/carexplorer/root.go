package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/WessleyAI/car-explorer/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "carexplorer",
		Short:         "Car catalog query and comparison engine",
		Long:          "carexplorer loads a car catalog and filters, sorts, summarises and compares its records, either from the command line or over an HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default .carexplorer.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("catalog-source", "", "catalog source: embedded, file, http or neo4j")
	pf.String("catalog-path", "", "catalog file for the file source (.json or .toml)")
	pf.String("catalog-url", "", "catalog URL for the http source")
	_ = viper.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("catalog.source", pf.Lookup("catalog-source"))
	_ = viper.BindPFlag("catalog.path", pf.Lookup("catalog-path"))
	_ = viper.BindPFlag("catalog.url", pf.Lookup("catalog-url"))

	root.AddCommand(newServeCmd(), newQueryCmd(), newCompareCmd(), newSeedCmd())
	return root
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	viper.SetConfigName(".carexplorer")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}

	viper.SetEnvPrefix("CAREXPLORER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// No config file is fine; defaults apply.
	_ = viper.ReadInConfig()
}

// loadConfig reads the configuration after flags have been parsed. An explicit
// --config file must exist.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if f, _ := cmd.Flags().GetString("config"); f != "" {
		viper.SetConfigFile(f)
		if err := viper.ReadInConfig(); err != nil {
			return config.Config{}, fmt.Errorf("read config %s: %w", f, err)
		}
	}
	return config.Load()
}

func newLogger(w io.Writer, level string) *slog.Logger {
	l, err := config.ParseLevel(level)
	if err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l}))
}
