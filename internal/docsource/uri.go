package docsource

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/hupe1980/flexquery/blobstore"
	"github.com/hupe1980/flexquery/blobstore/minio"
	"github.com/hupe1980/flexquery/blobstore/s3"
)

// Config holds the credentials and endpoints used to resolve remote URIs.
type Config struct {
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool

	MinIOAccessKey string
	MinIOSecretKey string
	MinIOSecure    bool
}

// Location is a resolved blob: the store holding it and its name there.
type Location struct {
	Store blobstore.Store
	Name  string
}

// Resolve maps a URI to a Location. Supported forms:
//
//	path/to/docs.jsonl             local file
//	file:///path/to/docs.jsonl     local file
//	s3://bucket/key                Amazon S3 (default credential chain)
//	minio://host:port/bucket/key   MinIO with static credentials
func Resolve(ctx context.Context, uri string, cfg Config) (Location, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return local(uri), nil
	}

	switch strings.ToLower(scheme) {
	case "file":
		u, err := url.Parse(uri)
		if err != nil {
			return Location{}, fmt.Errorf("invalid uri %q: %w", uri, err)
		}
		return local(u.Path), nil
	case "s3":
		bucket, key, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || key == "" {
			return Location{}, fmt.Errorf("invalid uri %q: want s3://bucket/key", uri)
		}
		opts := []s3.Option{s3.WithRegion(cfg.S3Region)}
		if cfg.S3Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(cfg.S3Endpoint))
		}
		if cfg.S3PathStyle {
			opts = append(opts, s3.WithPathStyle())
		}
		store, err := s3.New(ctx, bucket, opts...)
		if err != nil {
			return Location{}, fmt.Errorf("s3 config: %w", err)
		}
		return Location{Store: store, Name: key}, nil
	case "minio":
		parts := strings.SplitN(rest, "/", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return Location{}, fmt.Errorf("invalid uri %q: want minio://host/bucket/key", uri)
		}
		store, err := minio.Dial(parts[0], cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOSecure, parts[1], "")
		if err != nil {
			return Location{}, fmt.Errorf("minio client: %w", err)
		}
		return Location{Store: store, Name: parts[2]}, nil
	default:
		return Location{}, fmt.Errorf("unsupported uri scheme %q", scheme)
	}
}

func local(path string) Location {
	dir, file := filepath.Split(filepath.Clean(path))
	if dir == "" {
		dir = "."
	}
	return Location{Store: blobstore.NewLocalStore(dir), Name: file}
}
