package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newResolveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <namespace>",
		Short: "Resolve a namespace and print the value as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			v, err := a.Use(args[0])
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), v)
		},
	}
}

// printValue writes v as YAML, or its Go type when v has no YAML form
// (functions, channels, ...).
func printValue(w io.Writer, v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		_, err = fmt.Fprintf(w, "# %T\n", v)
		return err
	}
	_, err = w.Write(out)
	return err
}
