package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/dayplan/internal/cli/formatter"
	"github.com/alexanderramin/dayplan/internal/llm"
)

type providerOutput struct {
	Kind      string   `json:"kind"`
	Eligible  bool     `json:"eligible"`
	Reachable *bool    `json:"reachable,omitempty"`
	Models    []string `json:"models,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

func newProvidersCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Show which generation backends will be tried, in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos := providerStatus(cmd.Context(), app)
			if asJSON || !app.interactive() {
				out := make([]providerOutput, 0, len(infos))
				for _, p := range infos {
					out = append(out, providerOutput{
						Kind:      string(p.Kind),
						Eligible:  p.Eligible,
						Reachable: p.Reachable,
						Models:    p.Models,
						Reason:    p.Reason,
					})
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProviders(infos))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON even on a terminal")
	return cmd
}

// providerStatus copies the configured providers and fills in whether the
// local daemon currently answers.
func providerStatus(ctx context.Context, app *App) []llm.ProviderInfo {
	infos := append([]llm.ProviderInfo(nil), app.Providers...)
	if app.CheckLocal == nil {
		return infos
	}
	for i := range infos {
		if infos[i].Kind == llm.ProviderOllama && infos[i].Eligible {
			ok := app.CheckLocal(ctx)
			infos[i].Reachable = &ok
		}
	}
	return infos
}
