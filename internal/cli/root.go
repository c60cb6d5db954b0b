package cli

import (
	"github.com/spf13/cobra"

	"github.com/alexanderramin/dayplan/internal/config"
)

// NewRootCmd creates the top-level "dayplan" command and registers all
// subcommands against app.
func NewRootCmd(app *App) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "dayplan",
		Short:         "Turn free-text plans into calendar events",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if app.Planner != nil {
				return nil
			}
			cfg, err := config.Load(config.ResolvePath(configPath))
			if err != nil {
				return err
			}
			logger := NewLogger(cmd.ErrOrStderr(), cfg, cmd.Name() == "serve")
			return Bootstrap(app, cfg, logger)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return app.Close()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default $"+config.EnvConfigPath+")")

	root.AddCommand(
		newServeCmd(app),
		newPlanCmd(app),
		newProvidersCmd(app),
	)
	return root
}
