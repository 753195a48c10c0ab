package main

import (
	"fmt"

	"github.com/hupe1980/flexquery/operator"
	"github.com/spf13/cobra"
)

func newOperatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "operators",
		Short: "List the built-in operators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := operator.Default()
			for _, name := range reg.Names() {
				spec, _ := reg.Lookup(name)
				alias := ""
				if spec.Name != name {
					alias = " (alias of " + spec.Name + ")"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-8s values=%s%s\n", name, spec.Arity, alias); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
