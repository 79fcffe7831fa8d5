package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/portkey-logistics/portkey/internal/gate"
)

func checkRoutesCmd() *cobra.Command {
	var authenticated bool

	cmd := &cobra.Command{
		Use:   "check-routes [paths...]",
		Short: "Validate the gate route policy and classify paths",
		Long: `Validate the configured protected and guest-only prefixes and report
overlaps. Each path argument is classified and the gate's decision for it
is printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return checkRoutes(cmd.OutOrStdout(), newEngine(cfg.Gate), args, authenticated)
		},
	}

	cmd.Flags().BoolVarP(&authenticated, "authenticated", "a", false, "Decide as a signed-in user")

	return cmd
}

func checkRoutes(out io.Writer, engine *gate.Engine, paths []string, authenticated bool) error {
	policy := engine.Policy()
	fmt.Fprintf(out, "protected:  %s\n", strings.Join(policy.Protected(), ", "))
	fmt.Fprintf(out, "guest-only: %s\n", strings.Join(policy.GuestOnly(), ", "))

	for _, path := range paths {
		decision := engine.Decide(authenticated, path, "")
		line := fmt.Sprintf("%-30s %-13s %s", path, decision.Classification, decision.Outcome)
		if decision.Location != "" {
			line += " -> " + decision.Location
		}
		fmt.Fprintln(out, line)
	}

	if err := engine.Validate(); err != nil {
		return err
	}
	fmt.Fprintln(out, "route policy ok")
	return nil
}
