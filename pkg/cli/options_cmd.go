package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"crash-dash/internal/api"
	"crash-dash/internal/domain"
	"crash-dash/internal/service/dashboard"
)

func newOptionsCmd(opts *rootOptions, run serviceRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the filter options offered by the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(svc *dashboard.Service) error {
				controls, err := svc.Controls(cmd.Context())
				if err != nil {
					return err
				}
				if opts.output == outputJSON {
					return printJSON(cmd.OutOrStdout(), api.NewOptionsResponse(controls))
				}

				rows := make([][]string, 0, len(controls)+1)
				for _, c := range controls {
					names := make([]string, len(c.Options))
					for i, o := range c.Options {
						names[i] = displayValue(o)
					}
					rows = append(rows, []string{c.Label, "--" + flagName(c.Filter), strings.Join(names, ", ")})
				}
				charts := make([]string, len(domain.ChartTypes))
				for i, ct := range domain.ChartTypes {
					charts[i] = string(ct)
				}
				rows = append(rows, []string{"Chart Type", "", strings.Join(charts, ", ")})
				printTable(cmd.OutOrStdout(), []string{"FILTER", "FLAG", "OPTIONS"}, rows)
				return nil
			})
		},
	}
}

// flagName is the rows command flag for a dashboard filter.
func flagName(f dashboard.Filter) string {
	return strings.ReplaceAll(f.Param, "_", "-")
}

func displayValue(v domain.Value) string {
	if v == nil {
		return "(null)"
	}
	return domain.FormatValue(v)
}
