package cli

import (
	"github.com/spf13/cobra"

	"github.com/alexanderramin/dayplan/internal/httpapi"
)

func newServeCmd(app *App) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := app.Config.Listen
			if listen != "" {
				addr = listen
			}
			for _, p := range app.Providers {
				app.Logger.Info("provider", "kind", p.Kind, "eligible", p.Eligible, "reason", p.Reason)
			}
			return httpapi.NewServer(addr, app.Handler, app.Logger).Serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	return cmd
}
