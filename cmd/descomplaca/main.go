package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var nodeID int64

var rootCmd = &cobra.Command{
	Use:          "descomplaca",
	Short:        "Marketplace backend for vehicle and licence paperwork",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&nodeID, "node-id", 1, "Snowflake node id for this instance (0-1023)")

	pipelineCmd.AddCommand(pipelineRefreshCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(pipelineCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
