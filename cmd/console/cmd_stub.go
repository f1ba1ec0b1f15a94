// cmd/console/cmd_stub.go
package main

import (
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unclebandit/smsleopard-console/internal/stub"
)

var stubSeedFlag bool

// The stub serves the same routes and JSON shapes as the real campaign
// backend, with in-memory storage and simulated delivery, so the console
// can be tried without any infrastructure.
var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Run an in-memory stand-in for the campaign backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := stub.NewStore()
		if stubSeedFlag {
			stub.Seed(store)
		}
		server := stub.NewServer(store, 0.9, log)

		log.Info("stub backend listening", zap.String("addr", cfg.StubAddr))
		return http.ListenAndServe(cfg.StubAddr, server.Router())
	},
}

func init() {
	stubCmd.Flags().BoolVar(&stubSeedFlag, "seed", true, "seed demo campaigns and customers")
	rootCmd.AddCommand(stubCmd)
}
