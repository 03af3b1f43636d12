package blobstore

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// copyConcurrency bounds the number of parallel blob transfers.
const copyConcurrency = 4

// Copy transfers the named blobs from src to dst. Transfers run in
// parallel; the first failure cancels the remaining ones.
func Copy(ctx context.Context, dst, src Store, names ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(copyConcurrency)

	for _, name := range names {
		g.Go(func() error {
			if err := copyBlob(ctx, dst, src, name); err != nil {
				return fmt.Errorf("copy blob %q: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Mirror copies every blob under prefix from src to dst. Blobs already
// present in dst are overwritten.
func Mirror(ctx context.Context, dst, src Store, prefix string) error {
	names, err := src.List(ctx, prefix)
	if err != nil {
		return err
	}
	return Copy(ctx, dst, src, names...)
}

func copyBlob(ctx context.Context, dst, src Store, name string) error {
	blob, err := src.Open(ctx, name)
	if err != nil {
		return err
	}
	defer blob.Close()

	data := make([]byte, blob.Size())
	if _, err := io.ReadFull(io.NewSectionReader(blob, 0, blob.Size()), data); err != nil {
		return err
	}
	return dst.Put(ctx, name, data)
}
