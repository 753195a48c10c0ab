package main

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/hupe1980/flexquery"
	"github.com/hupe1980/flexquery/codec"
	"github.com/hupe1980/flexquery/index"
	"github.com/hupe1980/flexquery/internal/docsource"
	"github.com/hupe1980/flexquery/model"
	"github.com/hupe1980/flexquery/query"
	"github.com/hupe1980/flexquery/resource"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newSearchCmd(v *viper.Viper, loadConfig func() (*config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Load document dumps and print one page of matches as JSON",
		Example: `  flexquery search --docs sessions.jsonl "type = 'session'"
  flexquery search --docs s3://bucket/dump.jsonl.zst --schema age=int --columns '*' "age >= '18'"`,
		Args: cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, _ []string) {
			bind(v, cmd, "docs", "limit", "page", "columns", "workers",
				"load-rate", "load-concurrency", "codec", "output",
				"s3-region=s3.region", "s3-endpoint=s3.endpoint", "s3-path-style=s3.path-style",
				"minio-access-key=minio.access-key", "minio-secret-key=minio.secret-key", "minio-secure=minio.secure")
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
			logger, err := cfg.logger()
			if err != nil {
				return err
			}
			cd, err := cfg.codec()
			if err != nil {
				return err
			}
			if cfg.Output != "json" && cfg.Output != "jsonl" {
				return fmt.Errorf("unknown output %q: want json or jsonl", cfg.Output)
			}
			ctx := cmd.Context()

			ix := index.NewMemoryIndex(sch)
			locs := make([]docsource.Location, 0, len(cfg.Docs))
			for _, uri := range cfg.Docs {
				loc, err := docsource.Resolve(ctx, uri, cfg.source())
				if err != nil {
					return err
				}
				locs = append(locs, loc)
			}
			loader := docsource.New(
				docsource.WithLogger(logger.Logger),
				docsource.WithController(resource.NewController(resource.Config{LoadBytesPerSec: cfg.LoadRate})),
				docsource.WithConcurrency(cfg.Concurrency),
				docsource.WithCodec(cd),
			)
			if _, err := loader.LoadIndex(ctx, ix, locs...); err != nil {
				return fmt.Errorf("load documents: %w", err)
			}

			eng, err := flexquery.New(ix,
				flexquery.WithLogger(logger),
				flexquery.WithWorkers(cfg.Workers),
			)
			if err != nil {
				return err
			}
			defer eng.Close()

			rs, err := eng.SearchString(ctx, args[0], cfg.Limit, cfg.Page, cfg.Columns...)
			if err != nil {
				return err
			}
			return writeResults(cmd.OutOrStdout(), cd, cfg.Output, rs)
		},
	}

	f := cmd.Flags()
	f.StringSlice("docs", nil, "document dumps (path, file://, s3://bucket/key, minio://host/bucket/key)")
	f.Int("limit", query.DefaultLimit, "page size")
	f.Int("page", 1, "page number, starting at 1")
	f.StringSlice("columns", []string{"*"}, "fields to return")
	f.Int("workers", runtime.GOMAXPROCS(0), "evaluation workers")
	f.Int64("load-rate", 0, "maximum bytes per second read from dumps (0 = unlimited)")
	f.Int("load-concurrency", 4, "dumps read at once")
	f.String("codec", "go-json", "codec for dumps and output ("+strings.Join(codec.Names(), ", ")+")")
	f.String("output", "json", "output format: json (result set) or jsonl (one document per line)")
	f.String("s3-region", "", "S3 region")
	f.String("s3-endpoint", "", "custom S3 endpoint")
	f.Bool("s3-path-style", false, "use path-style S3 addressing")
	f.String("minio-access-key", "", "MinIO access key")
	f.String("minio-secret-key", "", "MinIO secret key")
	f.Bool("minio-secure", false, "use TLS for MinIO")
	return cmd
}

// writeResults prints rs as one result set, or as one document per line
// for jsonl.
func writeResults(w io.Writer, c codec.Codec, format string, rs *model.ResultSet) error {
	enc := codec.NewLineEncoder(w, c)
	if format == "json" {
		return enc.Encode(rs)
	}
	for _, d := range rs.Documents {
		if err := enc.Encode(d); err != nil {
			return err
		}
	}
	return nil
}
