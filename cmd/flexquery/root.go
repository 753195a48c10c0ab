package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	v := newViper()
	var cfgFile string

	root := &cobra.Command{
		Use:           "flexquery",
		Short:         "Query JSONL document dumps with flexquery conditions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	pf.StringSlice("schema", nil, "field types as field=type (keyword, text, int, float, date, bool)")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	bind(v, root, "schema", "log-level")

	loadConfig := func() (*config, error) { return load(v, cfgFile) }

	root.AddCommand(
		newSearchCmd(v, loadConfig),
		newValidateCmd(v, loadConfig),
		newOperatorsCmd(),
	)
	return root
}

// bind maps flags onto viper keys. A flag "s3-region" binds to "s3.region"
// when the key is given as "s3-region=s3.region".
func bind(v *viper.Viper, cmd *cobra.Command, names ...string) {
	for _, n := range names {
		flag, key, ok := strings.Cut(n, "=")
		if !ok {
			key = flag
		}
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			f = cmd.PersistentFlags().Lookup(flag)
		}
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	}
}
