package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/wxrmd"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of wxrmd",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wxrmd version %s\n", strings.TrimSpace(wxrmd.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
