package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dataloft-systems/dataloft-backend/internal/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "dashctl",
	Short: "DataLoft dashboard admin CLI",
	Long: `dashctl is the administration tool for the DataLoft dashboard backend.

Create user accounts and seed development data directly against the
configured database.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
}
