package main

import (
	"fmt"
	"mbs-hub/internal/config"
	"mbs-hub/internal/logger"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Global flags
	configFile string

	cfg *config.Config
	log logger.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mbs-hub",
	Short: "Mind / Body / Soul content hub",
	Long: `mbs-hub serves the Mind / Body / Soul article hub API.

Content is read from a headless CMS or from a relational database,
selected with content.backend. Run without a subcommand to start the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(viper.New(), configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		log = logger.New(cfg.Log)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: config.yml in ., ./configs, /etc/mbs-hub, $HOME/.mbs-hub)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// The logger may not be initialized yet.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
