// Package cli contains all coproctl commands.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	logger  *slog.Logger
	version = "dev"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "coproctl",
	Short: "CoproConnect property management CLI",
	Long: `coproctl is a terminal front-end for the CoproConnect backend.

It signs in against the backend (with optional MFA), keeps the session
credential in an encrypted local slot, and lists, edits, and exports the
resident and Happix badge records.

Example usage:
  coproctl login -u manager            # Open a session
  coproctl residents list --page 2     # Browse resident records
  coproctl happix list                 # Badge accounts across all lots
  coproctl export residents -o out.pdf # Download the PDF export`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .coproctl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("backend-url", "", "backend base URL")
	rootCmd.PersistentFlags().String("db", "", "local database path")

	_ = viper.BindPFlag("backend_url", rootCmd.PersistentFlags().Lookup("backend-url"))
	_ = viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))
}

// initConfig reads the config file and environment variables and sets up
// logging. Flags take priority over the environment, which takes priority
// over the config file.
func initConfig() error {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".coproctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/coproctl")
	}

	viper.SetEnvPrefix("COPRO")
	viper.AutomaticEnv()

	viper.SetDefault("backend_url", "http://127.0.0.1:8081")
	viper.SetDefault("db_path", "coproconnect.db")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return nil
}
