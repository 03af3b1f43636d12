package engine

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/lereldarion/rett/element"
)

// Ref is a read view of one live element.
//
// A Ref stays valid until the next mutation of the store; after that it
// must be re-fetched with Get. Indices held across mutations may have been
// recycled, so long-lived code keys on element.Index and re-validates.
type Ref struct {
	idx   element.Index
	data  *elementData
	store *Store
}

// Get returns a view of the element at i.
func (s *Store) Get(i element.Index) (Ref, error) {
	d, ok := s.slots.Get(uint32(i))
	if !ok {
		return Ref{}, &ErrIndexInvalid{Index: i, Op: "get"}
	}
	return Ref{idx: i, data: d, store: s}, nil
}

// Index returns the slot the element lives at.
func (r Ref) Index() element.Index { return r.idx }

// Kind returns the element variant.
func (r Ref) Kind() element.Kind { return r.data.elem.Kind }

// Element returns a copy of the stored element value.
func (r Ref) Element() element.Element { return r.data.elem }

// Atom returns the payload when the element is an atom.
func (r Ref) Atom() (element.Atom, bool) {
	if r.data.elem.Kind != element.KindAtom {
		return element.Atom{}, false
	}
	return r.data.elem.Atom, true
}

// Link returns the endpoint pair when the element is a link.
func (r Ref) Link() (element.Link, bool) {
	if r.data.elem.Kind != element.KindLink {
		return element.Link{}, false
	}
	return r.data.elem.Link, true
}

// Description returns the free-form description, empty by default.
func (r Ref) Description() string { return r.data.desc }

// From resolves the source endpoint when the element is a link.
func (r Ref) From() (Ref, bool) {
	l, ok := r.Link()
	if !ok {
		return Ref{}, false
	}
	ref, err := r.store.Get(l.From)
	return ref, err == nil
}

// To resolves the target endpoint when the element is a link.
func (r Ref) To() (Ref, bool) {
	l, ok := r.Link()
	if !ok {
		return Ref{}, false
	}
	ref, err := r.store.Get(l.To)
	return ref, err == nil
}

// InDegree returns the number of live links targeting this element.
func (r Ref) InDegree() int { return int(r.data.inLinks.GetCardinality()) }

// OutDegree returns the number of live links originating here.
func (r Ref) OutDegree() int { return int(r.data.outLinks.GetCardinality()) }

// InLinks iterates in ascending order over the indices of live links
// targeting this element.
func (r Ref) InLinks() iter.Seq[element.Index] {
	return bitmapIndices(r.data.inLinks)
}

// OutLinks iterates in ascending order over the indices of live links
// originating here.
func (r Ref) OutLinks() iter.Seq[element.Index] {
	return bitmapIndices(r.data.outLinks)
}

func bitmapIndices(bm *roaring.Bitmap) iter.Seq[element.Index] {
	return func(yield func(element.Index) bool) {
		it := bm.Iterator()
		for it.HasNext() {
			if !yield(element.Index(it.Next())) {
				return
			}
		}
	}
}
