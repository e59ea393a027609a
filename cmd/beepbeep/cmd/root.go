// Package cmd implements the CLI commands for beepbeep.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "beepbeep",
	Short: "eBay listing assistant for media sellers",
	Long: "beepbeep stages draft listings, generates sequential SKUs, checks the\n" +
		"seller's inventory for duplicate UPCs, and publishes listings through\n" +
		"the eBay Sell Inventory API.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().
		String("api-url", "http://localhost:8080", "API server URL")

	cobra.CheckErr(viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url")))
	viper.SetEnvPrefix("BEEPBEEP")
	viper.AutomaticEnv()

	rootCmd.AddCommand(versionCommand())
	rootCmd.AddCommand(searchCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
