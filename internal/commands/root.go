// Package commands defines the reporting service CLI.
package commands

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "reporting",
	Short: "Contact-center reporting backend",
	Long: `reporting mirrors the Zoom Contact Center analytics API into Postgres
and serves bucketed, grouped, paginated reports from the local mirror.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resyncCmd)
}
