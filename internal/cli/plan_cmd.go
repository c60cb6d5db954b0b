package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/dayplan/internal/cli/formatter"
	"github.com/alexanderramin/dayplan/internal/domain"
)

type planOutput struct {
	Events  []domain.Event `json:"events"`
	Summary string         `json:"summary"`
	Source  string         `json:"source"`
	Saved   int            `json:"saved,omitempty"`
}

func newPlanCmd(app *App) *cobra.Command {
	var (
		asJSON bool
		saveTo string
	)

	cmd := &cobra.Command{
		Use:   "plan <text>...",
		Short: "Generate events from a free-text description",
		Example: `  dayplan plan "gym at 6pm and dinner after"
  dayplan plan --json "study 3 hours tomorrow"
  dayplan plan --save-to 3f1c... "pray all prayers"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			styled := !asJSON && app.interactive()

			stopSpinner := func() {}
			if styled {
				stopSpinner = formatter.StartSpinner(cmd.ErrOrStderr(), "planning...")
			}

			var (
				res       *domain.GenerationResult
				saved     = -1
				published int
			)
			if saveTo != "" {
				out, err := app.Planner.PlanAndSave(cmd.Context(), saveTo, text)
				stopSpinner()
				if err != nil {
					return err
				}
				res, saved, published = out.Result, len(out.Saved), out.Published
			} else {
				var err error
				res, err = app.Planner.Plan(cmd.Context(), text)
				stopSpinner()
				if err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			if !styled {
				out := planOutput{Events: res.Events, Summary: res.Summary, Source: string(res.Source)}
				if saved >= 0 {
					out.Saved = saved
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Fprint(w, formatter.FormatPlan(res))
			if saved >= 0 {
				fmt.Fprint(w, formatter.FormatSaved(saveTo, saved, published))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON even on a terminal")
	cmd.Flags().StringVar(&saveTo, "save-to", "", "store the events in this user's list")
	return cmd
}
