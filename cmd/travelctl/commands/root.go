package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/travel-web/internal/catalog"
	"finitefield.org/travel-web/internal/config"
	"finitefield.org/travel-web/internal/loader"
)

type app struct {
	envFile  string
	source   string
	logLevel string

	cfg    config.Config
	logger *zap.Logger
}

// Execute runs the travelctl root command.
func Execute() error {
	return NewRoot().Execute()
}

// NewRoot builds the command tree.
func NewRoot() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "travelctl",
		Short:         "Inspect and validate travel recommendation datasets",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// server-only settings may be invalid for offline use
			cfg, err := config.Load(config.WithEnvFile(a.envFile))
			var verr *config.ValidationError
			if err != nil && !errors.As(err, &verr) {
				return err
			}
			a.cfg = cfg
			if a.source == "" {
				a.source = cfg.Data.Source
			}
			if a.logLevel == "" {
				a.logger = zap.NewNop()
				return nil
			}
			a.logger, err = zap.NewDevelopment(zap.IncreaseLevel(parseLevel(a.logLevel)))
			return err
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to read")
	root.PersistentFlags().StringVar(&a.source, "source", "", "dataset location (default TRAVEL_WEB_DATA_SOURCE)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "emit loader logs at this level")

	root.AddCommand(validateCmd(a), listCmd(a), searchCmd(a), previewCmd(a))
	return root
}

// load fetches the dataset once. A failed load is returned as a *loader.LoadFailure.
func (a *app) load(ctx context.Context) (catalog.Snapshot, error) {
	store := catalog.NewStore()
	ld := loader.New(a.source, store, loader.OptionsFromConfig(a.cfg, a.logger)...)
	return ld.Load(ctx)
}
