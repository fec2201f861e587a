package commands

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"finitefield.org/travel-web/internal/catalog"
	"finitefield.org/travel-web/internal/i18n"
	"finitefield.org/travel-web/internal/render"
	"finitefield.org/travel-web/locales"
)

func previewCmd(a *app) *cobra.Command {
	var (
		category string
		query    string
		lang     string
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the results fragment for a view as HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := i18n.LoadFS(locales.FS, a.cfg.Site.DefaultLang, a.cfg.Site.Languages)
			if err != nil {
				return err
			}
			if lang == "" || !bundle.IsSupported(lang) {
				lang = bundle.Fallback()
			}
			r, err := render.New(render.Options{Bundle: bundle})
			if err != nil {
				return err
			}
			// a failed load still renders, as the error block
			snap, _ := a.load(cmd.Context())
			view := catalog.ViewFromQuery(url.Values{"category": {category}, "q": {query}})
			html, err := render.RenderString(cmd.Context(), r.Results(r.BuildResults(lang, snap, view)))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), html)
			return err
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "category view")
	cmd.Flags().StringVarP(&query, "query", "q", "", "search view (wins over --category)")
	cmd.Flags().StringVar(&lang, "lang", "", "language (default TRAVEL_WEB_DEFAULT_LANG)")
	return cmd
}
