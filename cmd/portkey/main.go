package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/portkey-logistics/portkey/internal/config"
	"github.com/portkey-logistics/portkey/internal/gate"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "portkey",
		Short: "Shipment tracking backend with a session-aware access gate",
		Long: `Portkey serves the shipment tracking API and guards page routes with an
access gate that validates hosted-auth sessions on every request.

Configuration is read from the environment (and a .env file when present).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		serveCmd(),
		migrateCmd(),
		checkRoutesCmd(),
	)
	return root
}

// loadConfig is shared by every subcommand.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newEngine(cfg config.GateConfig) *gate.Engine {
	policy := gate.NewRoutePolicy(cfg.ProtectedRoutes, cfg.GuestRoutes)
	return gate.NewEngine(policy, gate.EngineConfig{
		LoginPath:     cfg.LoginPath,
		DefaultPath:   cfg.DefaultPath,
		RedirectParam: cfg.RedirectParam,
	})
}
