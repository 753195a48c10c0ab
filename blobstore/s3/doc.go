// Package s3 provides an S3 implementation of the blobstore.Store interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("dumps/"),
//	    s3.WithRegion("us-east-1"),
//	)
//	rc, err := store.Open(ctx, "documents.jsonl.zst")
package s3
