package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/repo-preflight/internal/checks"
	"github.com/felixgeelhaar/repo-preflight/internal/rulepacks"
)

func newListChecksCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "list-checks",
		Short: "List every check id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !verbose {
				for _, id := range checks.Default().IDs() {
					fmt.Fprintln(out, id)
				}
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, c := range checks.Default().Checks() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Family, c.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show family and title for each check")
	return cmd
}

func newListRulePacksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-rule-packs",
		Short: "List the built-in rule packs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, pack := range rulepacks.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", pack.Name, pack.Description)
			}
			return nil
		},
	}
}
