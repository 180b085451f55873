package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/subboxer"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of subboxer",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "subboxer version %s\n", strings.TrimSpace(subboxer.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
