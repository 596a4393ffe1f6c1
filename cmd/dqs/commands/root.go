package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/dqs/pkg/config"
	"github.com/wonny/dqs/pkg/logger"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dqs",
	Short: "Data Quality Score - role-aware scoring for tabular data",
	Long: `DQS scores CSV tables on seven quality dimensions, combines them into a
weighted base score and reads that score through stakeholder role profiles.

Usage:
  dqs [command]

Examples:
  dqs score payments.csv
  dqs score https://example.com/exports/payments.csv --role "Fraud Analyst"
  dqs scan ./exports --recursive
  dqs roles
  dqs api --port 8080`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file to load (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads configuration and applies global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(configFile)
	if err != nil {
		return nil, err
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newCLILogger logs to the command's stderr so stdout stays clean for output.
// One-shot commands stay quiet unless --verbose is set.
func newCLILogger(cmd *cobra.Command, cfg *config.Config) *logger.Logger {
	c := *cfg
	c.LogFormat = "console"
	if !verbose {
		c.LogLevel = "warn"
	}
	return logger.NewTo(&c, cmd.ErrOrStderr())
}
