// Package rett provides an embedded in-memory graph store for Go.
//
// A graph is a slab of elements addressed by stable indices. Three kinds
// of element exist:
//
//   - Atoms hold a text or integer value. Values are deduplicated: using
//     the same value twice yields the index of the existing atom.
//   - Links connect two elements in order, are deduplicated by endpoint
//     pair, and may target other links, so statements about statements
//     are ordinary data.
//   - Entities are identity-only. Two entities are never equal by value;
//     only their index tells them apart.
//
// # Quick Start
//
//	ctx := context.Background()
//	g := rett.New()
//
//	pj, _ := g.UseText(ctx, "PJ")
//	person := g.CreateEntity(ctx)
//	_ = g.SetDescription(ctx, person, "the person called PJ")
//	named, _ := g.UseLink(ctx, pj, person)
//
// Indices stay stable for the lifetime of an element. Removing an element
// frees its slot for reuse by later insertions; an element that is still
// an endpoint of live links refuses removal until those links are removed.
//
// # Snapshots
//
// A graph saves to a sectioned snapshot container with per-section
// checksums and optional LZ4 or zstd compression:
//
//	_ = g.SaveToFile("graph.rett")
//	g2, _ := rett.NewFromFile("graph.rett")
//
// Snapshots can also live in blob stores:
//
//	store, _ := blobstore.NewLocalStore("./data")
//	_ = g.SaveToStore(ctx, store, "graphs/main")
//	g3, _ := rett.NewFromStore(ctx, store, "graphs/main")
//
// MinIO and Amazon S3 backed stores are provided under blobstore/minio
// and blobstore/s3.
//
// # Key Features
//
//   - Stable element indices with slot recycling
//   - Atom and link deduplication
//   - Links about links
//   - Derived back-link sets with degree queries
//   - Atomic snapshot files, pluggable codecs, LZ4/zstd compression
//   - Local, in-memory, MinIO and S3 blob stores
package rett
