package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"finitefield.org/travel-web/internal/catalog"
)

func searchCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Case-insensitive search over name, description, location and cities",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			view := catalog.Searching(strings.Join(args, " "))
			res := catalog.Apply(snap.Catalog, view)
			if res.Empty == catalog.EmptySearch && !asJSON {
				fmt.Fprintf(cmd.OutOrStdout(), "no destinations match %q\n", view.Query)
				return nil
			}
			return printResult(cmd.OutOrStdout(), res, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
