package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"crash-dash/internal/api"
	"crash-dash/internal/service/dashboard"
)

func newRowsCmd(opts *rootOptions, run serviceRunner) *cobra.Command {
	var limit int
	selections := make(map[string]*string, len(dashboard.Filters))

	cmd := &cobra.Command{
		Use:   "rows",
		Short: "Print the rows matching the filter selection",
		Example: `  dashctl rows --age-range 19-30
  dashctl rows --day 3 --limit 20 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			req := dashboard.Request{Selections: make(map[string]string, len(selections))}
			for _, f := range dashboard.Filters {
				if cmd.Flags().Changed(flagName(f)) {
					req.Selections[f.Param] = *selections[f.Param]
				}
			}

			return run(cmd, func(svc *dashboard.Service) error {
				view, err := svc.Build(cmd.Context(), req)
				if err != nil {
					return err
				}
				if view.Err != nil {
					return fmt.Errorf("fetching data: %w", view.Err)
				}
				for _, w := range view.Warnings {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning: "+w)
				}

				resp := api.NewRowsResponse(view)
				if limit > 0 && len(resp.Rows) > limit {
					resp.Rows = resp.Rows[:limit]
				}
				if opts.output == outputJSON {
					return printJSON(cmd.OutOrStdout(), resp)
				}

				t := view.Filtered
				rows := make([][]string, len(resp.Rows))
				for i := range rows {
					values := t.Values(i)
					row := make([]string, len(values))
					for j, v := range values {
						row[j] = displayValue(v)
					}
					rows[i] = row
				}
				printTable(cmd.OutOrStdout(), t.Columns(), rows)
				fmt.Fprintf(cmd.OutOrStdout(), "%d of %d rows shown (%d before filtering)\n", len(rows), t.Len(), view.BaseRows)
				return nil
			})
		},
	}

	for _, f := range dashboard.Filters {
		v := new(string)
		selections[f.Param] = v
		cmd.Flags().StringVar(v, flagName(f), "", f.Label+" to keep (default All)")
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many rows (0 shows all)")
	return cmd
}
