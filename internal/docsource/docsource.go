// Package docsource loads JSONL document dumps into an index.
//
// Each line of a dump is one model.Document in its wire form:
//
//	{"Id":"s1","Fields":{"type":"session","sessionproperties":"{...}"}}
//
// Dumps may be zstd or LZ4 compressed and live on the local file system,
// S3 or MinIO.
package docsource

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hupe1980/flexquery/codec"
	"github.com/hupe1980/flexquery/index"
	"github.com/hupe1980/flexquery/model"
	"github.com/hupe1980/flexquery/resource"
	"golang.org/x/sync/errgroup"
)

// MaxLineSize bounds a single JSONL line.
const MaxLineSize = 16 << 20

// Loader reads document dumps.
type Loader struct {
	codec       codec.Codec
	rc          *resource.Controller
	logger      *slog.Logger
	concurrency int
	batchSize   int
}

// Option configures a Loader.
type Option func(*Loader)

// WithCodec sets the codec used to decode lines. Default: codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(l *Loader) { l.codec = c }
}

// WithController throttles reads with the controller's load limit.
func WithController(rc *resource.Controller) Option {
	return func(l *Loader) { l.rc = rc }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithConcurrency sets how many dumps LoadIndex reads at once. Default: 4.
func WithConcurrency(n int) Option {
	return func(l *Loader) { l.concurrency = n }
}

// WithBatchSize sets how many documents LoadIndex adds per batch.
// Default: 1024.
func WithBatchSize(n int) Option {
	return func(l *Loader) { l.batchSize = n }
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		codec:       codec.Default,
		logger:      slog.Default(),
		concurrency: 4,
		batchSize:   1024,
	}
	for _, o := range opts {
		o(l)
	}
	if l.codec == nil {
		l.codec = codec.Default
	}
	if l.logger == nil {
		l.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if l.concurrency <= 0 {
		l.concurrency = 1
	}
	if l.batchSize <= 0 {
		l.batchSize = 1
	}
	return l
}

// Read opens a blob and calls fn for every document in it, in order.
// Blank lines are skipped. It returns the number of documents read.
func (l *Loader) Read(ctx context.Context, loc Location, fn func(model.Document) error) (int, error) {
	raw, err := loc.Store.Open(ctx, loc.Name)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", loc.Name, err)
	}
	defer func() { _ = raw.Close() }()

	var src io.Reader = raw
	if l.rc != nil {
		src = resource.NewRateLimitedReader(ctx, raw, l.rc)
	}
	r, err := decompress(src, DetectCompression(loc.Name))
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", loc.Name, err)
	}
	defer func() { _ = r.Close() }()

	return l.Decode(ctx, r, func(line int, doc model.Document) error {
		if err := fn(doc); err != nil {
			return fmt.Errorf("%s:%d: %w", loc.Name, line, err)
		}
		return nil
	})
}

// Decode reads JSONL documents from r. fn receives the 1-based line number
// of each document.
func (l *Loader) Decode(ctx context.Context, r io.Reader, fn func(line int, doc model.Document) error) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), MaxLineSize)

	n, line := 0, 0
	for sc.Scan() {
		line++
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var doc model.Document
		if err := l.codec.Unmarshal(b, &doc); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(line, doc); err != nil {
			return n, err
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("line %d: %w", line+1, err)
	}
	return n, nil
}

// LoadIndex loads every location into ix. Dumps are read concurrently and
// added in batches; the first error cancels the remaining loads.
func (l *Loader) LoadIndex(ctx context.Context, ix *index.MemoryIndex, locs ...Location) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	counts := make([]int, len(locs))
	for i, loc := range locs {
		g.Go(func() error {
			start := time.Now()
			batch := make([]model.Document, 0, l.batchSize)
			flush := func() error {
				if len(batch) == 0 {
					return nil
				}
				if _, err := ix.AddBatch(batch); err != nil {
					return err
				}
				counts[i] += len(batch)
				batch = batch[:0]
				return nil
			}

			_, err := l.Read(gctx, loc, func(doc model.Document) error {
				batch = append(batch, doc)
				if len(batch) == l.batchSize {
					return flush()
				}
				return nil
			})
			if err == nil {
				err = flush()
			}
			if err != nil {
				return err
			}
			l.logger.LogAttrs(gctx, slog.LevelInfo, "documents loaded",
				slog.String("name", loc.Name),
				slog.Int("documents", counts[i]),
				slog.Duration("duration", time.Since(start)),
			)
			return nil
		})
	}

	err := g.Wait()
	total := 0
	for _, c := range counts {
		total += c
	}
	return total, err
}
