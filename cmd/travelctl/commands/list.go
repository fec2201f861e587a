package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"finitefield.org/travel-web/internal/catalog"
)

func listCmd(a *app) *cobra.Command {
	var (
		category string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List destinations, optionally limited to one category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			view := catalog.All()
			if category != "" {
				c, ok := catalog.ParseCategory(category)
				if !ok {
					return fmt.Errorf("unknown category %q (want countries, temples or beaches)", category)
				}
				view = catalog.InCategory(c)
			}
			return printResult(cmd.OutOrStdout(), catalog.Apply(snap.Catalog, view), asJSON)
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "countries, temples or beaches")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printResult(w io.Writer, res catalog.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		ds := res.Destinations
		if ds == nil {
			ds = []catalog.Destination{}
		}
		return enc.Encode(ds)
	}
	for _, d := range res.Destinations {
		if d.Location != "" {
			fmt.Fprintf(w, "%s\t%s\n", d.Name, d.Location)
			continue
		}
		fmt.Fprintln(w, d.Name)
	}
	return nil
}
