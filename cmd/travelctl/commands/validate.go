package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"finitefield.org/travel-web/internal/catalog"
)

func validateCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the dataset and report records with missing required fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			c := snap.Catalog
			fmt.Fprintf(out, "%s: %d countries, %d temples, %d beaches\n", a.source, len(c.Countries), len(c.Temples), len(c.Beaches))
			issues := catalog.Validate(c)
			for _, is := range issues {
				fmt.Fprintln(out, is.String())
			}
			if strict && len(issues) > 0 {
				return fmt.Errorf("%d validation issue(s)", len(issues))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any record has issues")
	return cmd
}
