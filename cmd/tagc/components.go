package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newComponentsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "components",
		Short: "List the component registry of the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newCompiler()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tHANDLER\tTAGS\tBINDINGS\tPRIORITY\tCACHE")
			for _, desc := range c.Matcher().Descriptors() {
				handler := desc.HandlerFor("")
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
					desc.Name,
					handler,
					strings.Join(desc.TagPatterns, ","),
					strings.Join(desc.PositionalBindings, ","),
					desc.Priority,
					desc.EffectiveCacheHint(),
				)
			}
			return tw.Flush()
		},
	}
}
