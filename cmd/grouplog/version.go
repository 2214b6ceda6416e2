package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/grouplog"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of grouplog",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("grouplog version %s\n", strings.TrimSpace(grouplog.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
