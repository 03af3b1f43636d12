package rett

import (
	"context"
	"io"
	"iter"
	"time"

	"github.com/lereldarion/rett/blobstore"
	"github.com/lereldarion/rett/codec"
	"github.com/lereldarion/rett/element"
	"github.com/lereldarion/rett/engine"
	"github.com/lereldarion/rett/persistence"
)

// Graph is an in-memory graph store of atoms, links and entities with
// stable indices and value deduplication.
//
// A Graph is not safe for concurrent use. Callers coordinate access the
// same way they would for a map; snapshots taken with the Save methods
// can be shared freely.
type Graph struct {
	store       *engine.Store
	codec       codec.Codec
	compression CompressionType
	metrics     MetricsCollector
	logger      *Logger
}

// New creates an empty graph.
func New(optFns ...Option) *Graph {
	opts := applyOptions(optFns)
	g := newFromOptions(opts)
	if opts.capacity > 0 {
		g.store = engine.NewStoreWithCapacity(opts.capacity)
	} else {
		g.store = engine.NewStore()
	}
	return g
}

// newFromOptions builds a Graph shell without a store.
func newFromOptions(opts options) *Graph {
	c := opts.codec
	if c == nil {
		c = codec.Default
	}
	return &Graph{
		codec:       c,
		compression: opts.compression,
		metrics:     opts.metricsCollector,
		logger:      opts.logger,
	}
}

// UseAtom returns the index of the atom holding value a, inserting it if
// absent. At most one live element exists per distinct atom value, so
// repeated calls with the same value return the same index.
func (g *Graph) UseAtom(ctx context.Context, a element.Atom) (element.Index, error) {
	start := time.Now()
	before := g.store.Len()
	i, err := g.store.UseAtom(a)
	created := g.store.Len() > before
	duration := time.Since(start)
	err = translateError(err)
	g.metrics.RecordUseAtom(duration, created, err)
	g.logger.LogUseAtom(ctx, i, created, err)
	return i, err
}

// UseText returns the index of the text atom holding s, inserting it if
// absent. Shorthand for UseAtom(ctx, element.Text(s)).
func (g *Graph) UseText(ctx context.Context, s string) (element.Index, error) {
	return g.UseAtom(ctx, element.Text(s))
}

// UseInt returns the index of the integer atom holding v, inserting it if
// absent. Shorthand for UseAtom(ctx, element.Int(v)).
func (g *Graph) UseInt(ctx context.Context, v int64) (element.Index, error) {
	return g.UseAtom(ctx, element.Int(v))
}

// UseLink returns the index of the link from -> to, inserting it if
// absent. Both endpoints must name live elements; links may target other
// links. A failed call leaves the graph unchanged.
func (g *Graph) UseLink(ctx context.Context, from, to element.Index) (element.Index, error) {
	start := time.Now()
	before := g.store.Len()
	i, err := g.store.UseLink(element.Link{From: from, To: to})
	created := g.store.Len() > before
	duration := time.Since(start)
	err = translateError(err)
	g.metrics.RecordUseLink(duration, created, err)
	g.logger.LogUseLink(ctx, i, created, err)
	return i, err
}

// CreateEntity inserts a fresh identity-only element and returns its
// index. Entities carry no value and are never deduplicated: every call
// creates a new element.
func (g *Graph) CreateEntity(ctx context.Context) element.Index {
	start := time.Now()
	i := g.store.CreateEntity()
	g.metrics.RecordCreateEntity(time.Since(start))
	g.logger.LogCreateEntity(ctx, i)
	return i
}

// SetDescription replaces the free-form description of the element at i.
// Descriptions are annotations only; they never participate in
// deduplication.
func (g *Graph) SetDescription(ctx context.Context, i element.Index, text string) error {
	start := time.Now()
	err := translateError(g.store.SetDescription(i, text))
	g.metrics.RecordSetDescription(time.Since(start), err)
	g.logger.LogSetDescription(ctx, i, err)
	return err
}

// Remove deletes the element at i and frees its slot for reuse by later
// insertions. An element that is still an endpoint of live links refuses
// removal whatever its kind; remove the links first.
func (g *Graph) Remove(ctx context.Context, i element.Index) error {
	start := time.Now()
	err := translateError(g.store.Remove(i))
	g.metrics.RecordRemove(time.Since(start), err)
	g.logger.LogRemove(ctx, i, err)
	return err
}

// Get returns a read view of the element at i. The view stays valid until
// the next mutation of the graph.
func (g *Graph) Get(i element.Index) (engine.Ref, error) {
	ref, err := g.store.Get(i)
	return ref, translateError(err)
}

// Contains reports whether i names a live element.
func (g *Graph) Contains(i element.Index) bool {
	return g.store.Contains(i)
}

// AtomIndex returns the index of the live atom holding value a, if any.
// No element is created.
func (g *Graph) AtomIndex(a element.Atom) (element.Index, bool) {
	return g.store.AtomIndex(a)
}

// TextIndex returns the index of the live text atom holding s, if any.
func (g *Graph) TextIndex(s string) (element.Index, bool) {
	return g.store.AtomIndex(element.Text(s))
}

// IntIndex returns the index of the live integer atom holding v, if any.
func (g *Graph) IntIndex(v int64) (element.Index, bool) {
	return g.store.AtomIndex(element.Int(v))
}

// LinkIndex returns the index of the live link from -> to, if any.
// No element is created.
func (g *Graph) LinkIndex(from, to element.Index) (element.Index, bool) {
	return g.store.LinkIndex(element.Link{From: from, To: to})
}

// Len returns the number of live elements.
func (g *Graph) Len() int { return g.store.Len() }

// Cap returns the total number of slots, live and free.
func (g *Graph) Cap() int { return g.store.Cap() }

// Stats returns current occupancy counters.
func (g *Graph) Stats() engine.Stats { return g.store.Stats() }

// Elements iterates over all live elements in ascending index order.
// Yielded refs are valid until the next mutation.
func (g *Graph) Elements() iter.Seq[engine.Ref] {
	return g.store.All()
}

// Atoms iterates over live atoms in ascending index order.
func (g *Graph) Atoms() iter.Seq[engine.Ref] {
	return g.kindSeq(element.KindAtom)
}

// Links iterates over live links in ascending index order.
func (g *Graph) Links() iter.Seq[engine.Ref] {
	return g.kindSeq(element.KindLink)
}

// Entities iterates over live entities in ascending index order.
func (g *Graph) Entities() iter.Seq[engine.Ref] {
	return g.kindSeq(element.KindEntity)
}

func (g *Graph) kindSeq(k element.Kind) iter.Seq[engine.Ref] {
	return func(yield func(engine.Ref) bool) {
		for ref := range g.store.All() {
			if ref.Kind() != k {
				continue
			}
			if !yield(ref) {
				return
			}
		}
	}
}

// SaveToWriter writes a snapshot of the graph to w.
// Uses a sectioned snapshot container: header + elements + directory + footer.
func (g *Graph) SaveToWriter(w io.Writer) error {
	_, err := g.saveSnapshot(w)
	return err
}

// SaveToFile saves the graph to a file, atomically: the snapshot is
// written to a temp file and renamed over the target.
func (g *Graph) SaveToFile(filename string) error {
	var bytes int64
	err := persistence.SaveToFile(filename, func(w io.Writer) error {
		var err error
		bytes, err = g.saveSnapshot(w)
		return err
	})
	g.logger.LogSnapshotSave(context.Background(), filename, bytes, err)
	return err
}

// SaveToStore uploads a snapshot of the graph to a blob store under the
// given name, replacing any previous snapshot with that name.
func (g *Graph) SaveToStore(ctx context.Context, store blobstore.Store, name string) error {
	start := time.Now()
	data, err := engine.EncodeSnapshot(g.store, g.codec, g.compression)
	if err == nil {
		err = store.Put(ctx, name, data)
	}
	duration := time.Since(start)
	err = translateError(err)
	g.metrics.RecordSnapshotSave(duration, int64(len(data)), err)
	g.logger.LogSnapshotSave(ctx, name, int64(len(data)), err)
	return err
}

func (g *Graph) saveSnapshot(w io.Writer) (int64, error) {
	start := time.Now()
	mw := &meteredWriter{w: w}
	err := translateError(engine.WriteSnapshot(mw, g.store, g.codec, g.compression))
	g.metrics.RecordSnapshotSave(time.Since(start), mw.n, err)
	return mw.n, err
}

// NewFromReader loads a graph snapshot from r.
//
// Options:
//   - WithCodec: decode with a fixed codec instead of the one recorded in
//     the snapshot header.
//   - WithCompression, WithMetricsCollector, WithLogger: configure the
//     returned graph.
func NewFromReader(r io.ReadSeeker, optFns ...Option) (*Graph, error) {
	opts := applyOptions(optFns)
	var size int64
	if n, err := r.Seek(0, io.SeekEnd); err == nil {
		size = n
	}
	return loadSnapshot(context.Background(), r, "", size, opts)
}

// NewFromFile loads a graph snapshot from a file.
func NewFromFile(filename string, optFns ...Option) (*Graph, error) {
	opts := applyOptions(optFns)
	var g *Graph
	err := persistence.LoadFromFile(filename, func(r io.ReadSeeker) error {
		var size int64
		if n, err := r.Seek(0, io.SeekEnd); err == nil {
			size = n
		}
		var err error
		g, err = loadSnapshot(context.Background(), r, filename, size, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// NewFromStore loads a graph snapshot from a blob store. The snapshot is
// read through range requests, so only the blob regions the container
// needs are fetched.
func NewFromStore(ctx context.Context, store blobstore.Store, name string, optFns ...Option) (*Graph, error) {
	opts := applyOptions(optFns)
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	r := io.NewSectionReader(blob, 0, blob.Size())
	return loadSnapshot(ctx, r, name, blob.Size(), opts)
}

func loadSnapshot(ctx context.Context, r io.ReadSeeker, name string, size int64, opts options) (*Graph, error) {
	g := newFromOptions(opts)

	start := time.Now()
	store, err := engine.ReadSnapshot(r, opts.codec)
	duration := time.Since(start)
	err = translateError(err)

	elements := 0
	if store != nil {
		elements = store.Len()
	}
	g.metrics.RecordSnapshotLoad(duration, size, err)
	g.logger.LogSnapshotLoad(ctx, name, elements, err)

	if err != nil {
		return nil, err
	}
	g.store = store
	return g, nil
}

// meteredWriter counts bytes written through it.
type meteredWriter struct {
	w io.Writer
	n int64
}

func (mw *meteredWriter) Write(p []byte) (int, error) {
	n, err := mw.w.Write(p)
	mw.n += int64(n)
	return n, err
}
