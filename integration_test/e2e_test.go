package integration_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hupe1980/flexquery"
	"github.com/hupe1980/flexquery/blobstore"
	"github.com/hupe1980/flexquery/codec"
	"github.com/hupe1980/flexquery/index"
	"github.com/hupe1980/flexquery/internal/docsource"
	"github.com/hupe1980/flexquery/operator"
	"github.com/hupe1980/flexquery/query"
	"github.com/hupe1980/flexquery/testutil"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var queries = []string{
	"type = 'session'",
	"type = 'session' AND age >= '30' {missing:'Ignore'}",
	"type in ['job','task'] AND NOT owner = 'alice' {missing:'Ignore'}",
	"owner = 'bob' {missing:'Ignore', boost:'3'} OR title = 'merge' {missing:'Ignore'}",
	"created range ['2024-03-01','2024-06-30'] {missing:'UseDefault', default:'2024-01-01'}",
	"title like 'dup*' {missing:'Ignore'} AND ratio < '0.5' {missing:'Ignore'}",
	"age > '10'",
	"type = 'audit' AND owner = 'carol'",
}

// TestE2E_LoadAndSearch loads a compressed dump through the document
// source and checks every query against a sequential reference scan.
func TestE2E_LoadAndSearch(t *testing.T) {
	ctx := context.Background()
	docs := testutil.NewRNG(7).Documents(5000, testutil.DocSpec{MissingRate: 0.1})

	var raw bytes.Buffer
	enc := codec.NewLineEncoder(&raw, nil)
	for _, d := range docs {
		require.NoError(t, enc.Encode(d))
	}
	var compressed bytes.Buffer
	w, err := zstd.NewWriter(&compressed)
	require.NoError(t, err)
	_, err = w.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	store := blobstore.NewMemoryStore()
	store.Put("dump.jsonl.zst", compressed.Bytes())

	sch := testutil.DocumentSchema()
	ix := index.NewMemoryIndex(sch)
	n, err := docsource.New().LoadIndex(ctx, ix, docsource.Location{Store: store, Name: "dump.jsonl.zst"})
	require.NoError(t, err)
	require.Equal(t, len(docs), n)

	e, err := flexquery.New(ix, flexquery.WithChunkSize(256))
	require.NoError(t, err)
	defer e.Close()

	for _, text := range queries {
		for _, page := range []int{1, 2, 7} {
			t.Run(fmt.Sprintf("%s/page=%d", text, page), func(t *testing.T) {
				q := query.New(query.Raw(text)).WithPage(25, page)
				plan, err := query.Compile(q, operator.Default(), sch, query.DefaultLimits())
				require.NoError(t, err)

				want, wantErr := testutil.ReferenceSearch(plan, docs)
				got, gotErr := e.Search(ctx, q)
				if wantErr != nil {
					require.Error(t, gotErr)
					assert.Equal(t, wantErr.Error(), gotErr.Error())
					assert.True(t, errors.Is(gotErr, flexquery.ErrMissingField))
					return
				}
				require.NoError(t, gotErr)
				assert.Equal(t, want.TotalAvailable, got.TotalAvailable)
				assert.Equal(t, want.IDs(), got.IDs())
			})
		}
	}
}
