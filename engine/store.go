package engine

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/lereldarion/rett/element"
	"github.com/lereldarion/rett/internal/slab"
)

// elementData is the per-slot state of one live element.
//
// inLinks and outLinks are derived from the live link set and are never
// serialized; snapshot decode rebuilds them.
type elementData struct {
	elem     element.Element
	desc     string
	inLinks  *roaring.Bitmap // live links whose To is this slot
	outLinks *roaring.Bitmap // live links whose From is this slot
}

// Store is the in-memory graph element store.
//
// It owns slot allocation, the uniqueness indices that deduplicate atoms
// and links, and the back-link sets of every element. Operations either
// succeed or leave the store unchanged.
type Store struct {
	slots *slab.Slab[elementData]
	atoms map[element.Atom]element.Index
	links map[element.Link]element.Index
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		slots: slab.New[elementData](),
		atoms: make(map[element.Atom]element.Index),
		links: make(map[element.Link]element.Index),
	}
}

// NewStoreWithCapacity creates an empty store with room for n elements
// before the first reallocation.
func NewStoreWithCapacity(n int) *Store {
	return &Store{
		slots: slab.NewWithCapacity[elementData](n),
		atoms: make(map[element.Atom]element.Index, n),
		links: make(map[element.Link]element.Index, n),
	}
}

func (s *Store) alloc(e element.Element) element.Index {
	return element.Index(s.slots.Insert(elementData{
		elem:     e,
		inLinks:  roaring.New(),
		outLinks: roaring.New(),
	}))
}

// UseAtom returns the index of the atom holding value a, inserting it if
// absent. At most one live element exists per distinct atom value, so
// repeated calls with the same value return the same index.
func (s *Store) UseAtom(a element.Atom) (element.Index, error) {
	if !a.Valid() {
		return 0, ErrInvalidAtom
	}
	if i, ok := s.atoms[a]; ok {
		return i, nil
	}
	i := s.alloc(element.AtomElement(a))
	s.atoms[a] = i
	return i, nil
}

// UseLink returns the index of the link with l's ordered endpoint pair,
// inserting it if absent. Both endpoints must name live elements; links
// may target other links. Endpoints are checked before anything is
// allocated, so a failed call leaves the store unchanged.
func (s *Store) UseLink(l element.Link) (element.Index, error) {
	if !s.Contains(l.From) {
		return 0, &ErrIndexInvalid{Index: l.From, Op: "use link"}
	}
	if !s.Contains(l.To) {
		return 0, &ErrIndexInvalid{Index: l.To, Op: "use link"}
	}
	if i, ok := s.links[l]; ok {
		return i, nil
	}
	i := s.alloc(element.LinkElement(l))
	s.attach(i, l)
	s.links[l] = i
	return i, nil
}

// CreateEntity inserts a fresh identity-only element and returns its index.
// Entities are never deduplicated: every call creates a new element.
func (s *Store) CreateEntity() element.Index {
	return s.alloc(element.EntityElement())
}

// SetDescription replaces the free-form description of the element at i.
// Descriptions do not participate in deduplication.
func (s *Store) SetDescription(i element.Index, text string) error {
	d, ok := s.slots.Get(uint32(i))
	if !ok {
		return &ErrIndexInvalid{Index: i, Op: "set description"}
	}
	d.desc = text
	return nil
}

// Remove deletes the element at i and frees its slot for reuse.
//
// An element that is still an endpoint of live links refuses removal
// whatever its kind; the links must be removed first. Removing a link
// detaches it from the back-link sets of its endpoints.
func (s *Store) Remove(i element.Index) error {
	d, ok := s.slots.Get(uint32(i))
	if !ok {
		return &ErrIndexInvalid{Index: i, Op: "remove"}
	}
	in, out := d.inLinks.GetCardinality(), d.outLinks.GetCardinality()
	if in > 0 || out > 0 {
		return &ErrRemoveLinked{Index: i, In: int(in), Out: int(out)}
	}

	removed, _ := s.slots.Remove(uint32(i))
	switch removed.elem.Kind {
	case element.KindAtom:
		delete(s.atoms, removed.elem.Atom)
	case element.KindLink:
		s.detach(i, removed.elem.Link)
		delete(s.links, removed.elem.Link)
	}
	return nil
}

// attach registers link i in the back-link sets of its endpoints.
// Must run after the link's slot is allocated: Insert may have moved the
// cell vector.
func (s *Store) attach(i element.Index, l element.Link) {
	if from, ok := s.slots.Get(uint32(l.From)); ok {
		from.outLinks.Add(uint32(i))
	}
	if to, ok := s.slots.Get(uint32(l.To)); ok {
		to.inLinks.Add(uint32(i))
	}
}

// detach drops link i from the back-link sets of its endpoints.
func (s *Store) detach(i element.Index, l element.Link) {
	if from, ok := s.slots.Get(uint32(l.From)); ok {
		from.outLinks.Remove(uint32(i))
	}
	if to, ok := s.slots.Get(uint32(l.To)); ok {
		to.inLinks.Remove(uint32(i))
	}
}

// Contains reports whether i names a live element.
func (s *Store) Contains(i element.Index) bool {
	return s.slots.Contains(uint32(i))
}

// AtomIndex returns the index of the live atom holding value a, if any.
// No element is created.
func (s *Store) AtomIndex(a element.Atom) (element.Index, bool) {
	i, ok := s.atoms[a]
	return i, ok
}

// LinkIndex returns the index of the live link with l's endpoint pair, if
// any. No element is created.
func (s *Store) LinkIndex(l element.Link) (element.Index, bool) {
	i, ok := s.links[l]
	return i, ok
}

// Len returns the number of live elements.
func (s *Store) Len() int { return s.slots.Len() }

// Cap returns the total number of slots, live and free.
func (s *Store) Cap() int { return s.slots.Cap() }

// All iterates over live elements in ascending index order. The sequence
// is restartable; yielded refs are valid until the next mutation.
func (s *Store) All() iter.Seq[Ref] {
	return func(yield func(Ref) bool) {
		for i, d := range s.slots.All() {
			if !yield(Ref{idx: element.Index(i), data: d, store: s}) {
				return
			}
		}
	}
}

// Stats summarizes store occupancy.
type Stats struct {
	Elements int // live elements
	Atoms    int
	Links    int
	Entities int
	Slots    int // total slots, live and free
	Free     int
}

// Stats returns current occupancy counters.
func (s *Store) Stats() Stats {
	n := s.slots.Len()
	return Stats{
		Elements: n,
		Atoms:    len(s.atoms),
		Links:    len(s.links),
		Entities: n - len(s.atoms) - len(s.links),
		Slots:    s.slots.Cap(),
		Free:     s.slots.Cap() - n,
	}
}
