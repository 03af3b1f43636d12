// Package s3 provides an S3 implementation of the blobstore.Store interface.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := s3blob.NewStore(s3.NewFromConfig(cfg), "my-bucket", "graphs/")
//
//	err = g.SaveToStore(ctx, store, "main.rett")
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//   - Narrow Client interface, easy to mock in tests
package s3
