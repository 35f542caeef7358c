package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/metastore-labs/metasync/pkg/logging"
)

var (
	configFile string
	verbose    bool
	quiet      bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "metasync",
	Short: "Metadata-as-code management for DataHub",
	Long: `Metasync manages DataHub metadata (tags, glossaries, domains, structured
properties, data products, data contracts, assertions) as version-controlled
records that can be diffed against a live DataHub instance and pushed or
pulled through CI/CD.

Local records live in a SQLite store; the last pulled remote state is kept
as a baseline so drift can be attributed to the side that changed it.`,
}

// Execute runs the root command with the given context and version info.
func Execute(ctx context.Context, version, commit, date string) error {
	Version = version
	Commit = commit
	Date = date
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .metasync.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().String("datahub-url", "", "DataHub base URL")
	rootCmd.PersistentFlags().String("datahub-token", "", "DataHub access token")
	rootCmd.PersistentFlags().StringP("environment", "e", "", "environment name (dev, staging, prod)")
	rootCmd.PersistentFlags().StringP("mutation", "m", "", "mutation name applied to generated URNs")
	rootCmd.PersistentFlags().StringSlice("kinds", nil, "entity kinds to operate on (default all)")

	bindFlag("datahub.url", "datahub-url")
	bindFlag("datahub.token", "datahub-token")
	bindFlag("environment", "environment")
	bindFlag("mutation", "mutation")
	bindFlag("kinds", "kinds")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("Failed to bind %s flag: %v", flag, err))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".metasync")
	}

	// .env files load before viper's env binding so both see the values.
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}

	viper.SetEnvPrefix("METASYNC")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	switch {
	case verbose:
		logging.SetLevel("debug")
	case quiet:
		logging.SetLevel("warn")
	case os.Getenv("LOG_LEVEL") != "":
		logging.SetLevel(os.Getenv("LOG_LEVEL"))
	}
}
