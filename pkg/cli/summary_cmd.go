package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"crash-dash/internal/api"
	"crash-dash/internal/service/dashboard"
)

func newSummaryCmd(opts *rootOptions, run serviceRunner) *cobra.Command {
	var column string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the category counts of a column over the whole table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(svc *dashboard.Service) error {
				dist, err := svc.Distribution(cmd.Context(), column)
				if err != nil {
					return err
				}
				if opts.output == outputJSON {
					return printJSON(cmd.OutOrStdout(), api.NewDistributionResponse(column, dist))
				}

				total := dist.Total()
				rows := make([][]string, len(dist))
				for i, b := range dist {
					share := 0.0
					if total > 0 {
						share = 100 * float64(b.Count) / float64(total)
					}
					rows[i] = []string{displayValue(b.Category), strconv.Itoa(b.Count), fmt.Sprintf("%.1f%%", share)}
				}
				printTable(cmd.OutOrStdout(), []string{column, "COUNT", "SHARE"}, rows)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&column, "column", dashboard.ChartColumn, "Column to summarize")
	return cmd
}
