package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bound and aliased namespaces with the rule that serves them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			aliases := a.GetAliases()
			names := a.Namespaces()
			for key := range aliases {
				if !a.HasBinding(key) {
					names = append(names, key)
				}
			}
			sort.Strings(names)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAMESPACE\tSOURCE\tTARGET")
			for _, ns := range names {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", ns, a.Explain(ns), aliases[ns])
			}
			if rule, ok := a.GetAutoload(); ok {
				fmt.Fprintf(tw, "%s*\t%s\t%s\n", rule.Namespace, "autoload", rule.Directory)
			}
			return tw.Flush()
		},
	}
}
