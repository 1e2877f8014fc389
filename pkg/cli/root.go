// Package cli implements dashctl, a terminal front end to the crash
// dashboard. It runs the same fetch, filter and summarize pipeline as the
// server, once, and prints the result.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"crash-dash/internal/service/dashboard"
)

var (
	version = "dev"
	commit  = "none"
)

type rootOptions struct {
	output     outputFormat
	secretsURI string
	section    string
	verbose    bool
}

// loadFunc builds the dashboard service the commands query. The closer
// releases the data source.
type loadFunc func(ctx context.Context, opts *rootOptions) (*dashboard.Service, io.Closer, error)

// serviceRunner loads the dashboard for one command run and passes it to fn.
type serviceRunner func(cmd *cobra.Command, fn func(*dashboard.Service) error) error

// Execute runs dashctl and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd(loadDashboard)
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == string(outputJSON) {
			_ = printJSON(os.Stdout, map[string]string{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(load loadFunc) *cobra.Command {
	opts := &rootOptions{output: outputTable}

	rootCmd := &cobra.Command{
		Use:           "dashctl",
		Short:         "Traffic accident dashboard CLI",
		Long:          "Fetch the crash table once and print filter options, the age range distribution, or filtered rows.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().VarP(&opts.output, "output", "o", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVar(&opts.secretsURI, "secrets", "", "Read credentials from this secrets document (path, gs://, s3://, az://) instead of the env file")
	rootCmd.PersistentFlags().StringVar(&opts.section, "section", "", "Section of the secrets document holding the service account")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log progress to stderr")

	withService := func(cmd *cobra.Command, fn func(*dashboard.Service) error) error {
		svc, closer, err := load(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close() //nolint:errcheck
		}
		return fn(svc)
	}

	rootCmd.AddCommand(newOptionsCmd(opts, withService))
	rootCmd.AddCommand(newSummaryCmd(opts, withService))
	rootCmd.AddCommand(newRowsCmd(opts, withService))
	rootCmd.AddCommand(newVersionCmd(opts))
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
