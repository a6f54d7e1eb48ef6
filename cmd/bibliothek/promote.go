package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PaperMC/bibliothek/catalog"
)

func newPromoteBuildCommand(c *cli) *cobra.Command {
	var (
		id       string
		promoted bool
	)

	cmd := &cobra.Command{
		Use:   "promote-build",
		Short: "Set the promoted flag of a build",
		Args:  cobra.NoArgs,
		RunE: action(func(cmd *cobra.Command) error {
			e, err := setup(c.configPath)
			if err != nil {
				return err
			}
			defer e.close()

			b, err := catalog.New(e.connector, catalog.WithLogger(e.logger)).Promote(cmd.Context(), id, promoted)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Build %s set promoted to %t\n", b.ID, b.Promoted)
			return nil
		}),
	}

	cmd.Flags().StringVar(&id, "build", "", "build id")
	cmd.Flags().BoolVar(&promoted, "promoted", false, "promoted flag to set")
	mustRequire(cmd, "build", "promoted")
	return cmd
}
