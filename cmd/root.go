package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "rosterd",
	Short: "Shift scheduling and overtime allocation solver",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
