// cmd/console/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unclebandit/smsleopard-console/internal/backend"
	"github.com/unclebandit/smsleopard-console/internal/config"
	"github.com/unclebandit/smsleopard-console/internal/logger"
	"github.com/unclebandit/smsleopard-console/internal/service"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "console",
	Short:         "Operator console for the SMS Leopard campaign service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		log = logger.New(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
}

func newClient() *backend.Client {
	return backend.NewClient(cfg.BackendURL, cfg.RequestTimeout, log)
}

func newService() *service.CampaignService {
	return service.NewCampaignService(newClient(), log)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
