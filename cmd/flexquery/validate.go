package main

import (
	"fmt"

	"github.com/hupe1980/flexquery"
	"github.com/hupe1980/flexquery/index"
	"github.com/hupe1980/flexquery/query"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newValidateCmd(v *viper.Viper, loadConfig func() (*config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [query]",
		Short: "Check a query against the operator registry and schema",
		Args:  cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, _ []string) {
			bind(v, cmd, "limit", "page")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sch, err := cfg.schema()
			if err != nil {
				return err
			}

			eng, err := flexquery.New(index.NewMemoryIndex(sch), flexquery.WithWorkers(1))
			if err != nil {
				return err
			}
			defer eng.Close()

			q := query.New(query.Raw(args[0])).WithPage(cfg.Limit, cfg.Page)
			plan, err := eng.Compile(q)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: %s (%d conditions)\n", plan, len(plan.Conditions()))
			return err
		},
	}

	f := cmd.Flags()
	f.Int("limit", query.DefaultLimit, "page size")
	f.Int("page", 1, "page number, starting at 1")
	return cmd
}
