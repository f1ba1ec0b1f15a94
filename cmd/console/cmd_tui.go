// cmd/console/cmd_tui.go
package main

import (
	"github.com/spf13/cobra"

	"github.com/unclebandit/smsleopard-console/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the interactive campaign console",
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(cfg, newClient(), newService(), log)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
