package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hupe1980/flexquery"
	"github.com/hupe1980/flexquery/codec"
	"github.com/hupe1980/flexquery/internal/docsource"
	"github.com/hupe1980/flexquery/schema"
	"github.com/spf13/viper"
)

const envPrefix = "FLEXQUERY"

// config is the merged view of flags, FLEXQUERY_* variables and the
// optional config file.
type config struct {
	Docs        []string `mapstructure:"docs"`
	Schema      []string `mapstructure:"schema"`
	Limit       int      `mapstructure:"limit"`
	Page        int      `mapstructure:"page"`
	Columns     []string `mapstructure:"columns"`
	Workers     int      `mapstructure:"workers"`
	LogLevel    string   `mapstructure:"log-level"`
	LoadRate    int64    `mapstructure:"load-rate"`
	Concurrency int      `mapstructure:"load-concurrency"`
	Codec       string   `mapstructure:"codec"`
	Output      string   `mapstructure:"output"`

	S3 struct {
		Region    string `mapstructure:"region"`
		Endpoint  string `mapstructure:"endpoint"`
		PathStyle bool   `mapstructure:"path-style"`
	} `mapstructure:"s3"`

	MinIO struct {
		AccessKey string `mapstructure:"access-key"`
		SecretKey string `mapstructure:"secret-key"`
		Secure    bool   `mapstructure:"secure"`
	} `mapstructure:"minio"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// load reads the config file, if any, and unmarshals the merged settings.
func load(v *viper.Viper, file string) (*config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// schema parses "field=type" pairs.
func (c *config) schema() (schema.Schema, error) {
	if len(c.Schema) == 0 {
		return nil, nil
	}
	sch := make(schema.Schema, len(c.Schema))
	for _, pair := range c.Schema {
		field, typ, ok := strings.Cut(pair, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid schema entry %q: want field=type", pair)
		}
		ft, err := schema.ParseFieldType(typ)
		if err != nil {
			return nil, fmt.Errorf("schema entry %q: %w", pair, err)
		}
		sch[field] = ft
	}
	return sch, nil
}

func (c *config) level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return lvl, nil
}

func (c *config) logger() (*flexquery.Logger, error) {
	lvl, err := c.level()
	if err != nil {
		return nil, err
	}
	return flexquery.NewTextLogger(lvl), nil
}

// codec returns the codec used for dumps and output.
func (c *config) codec() (codec.Codec, error) {
	cd, ok := codec.ByName(c.Codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q: want one of %s", c.Codec, strings.Join(codec.Names(), ", "))
	}
	return cd, nil
}

func (c *config) source() docsource.Config {
	return docsource.Config{
		S3Region:       c.S3.Region,
		S3Endpoint:     c.S3.Endpoint,
		S3PathStyle:    c.S3.PathStyle,
		MinIOAccessKey: c.MinIO.AccessKey,
		MinIOSecretKey: c.MinIO.SecretKey,
		MinIOSecure:    c.MinIO.Secure,
	}
}
