// Package slab provides a generic slot allocator with stable indices and
// LIFO reuse of freed slots.
package slab

import "iter"

// Slab is a growable slot vector. Every slot is either occupied or free;
// freed slots are recycled most-recently-freed-first before the vector
// grows. The index of an occupied slot is stable for the lifetime of its
// occupant and may be handed out again after Remove.
//
// Slab is not safe for concurrent use.
type Slab[T any] struct {
	cells []cell[T]
	free  []uint32 // stack of free slot indices
	count int
}

type cell[T any] struct {
	value T
	live  bool
}

// New creates an empty Slab.
func New[T any]() *Slab[T] {
	return &Slab[T]{}
}

// NewWithCapacity creates an empty Slab with room for n slots before the
// first reallocation.
func NewWithCapacity[T any](n int) *Slab[T] {
	return &Slab[T]{
		cells: make([]cell[T], 0, n),
	}
}

// Rebuild replaces a Slab's contents with a dense slot image, where a nil
// entry marks a free slot. Free slots are stacked so the lowest index is
// reused first.
func Rebuild[T any](slots []*T) *Slab[T] {
	s := &Slab[T]{cells: make([]cell[T], len(slots))}
	for i := len(slots) - 1; i >= 0; i-- {
		if slots[i] == nil {
			s.free = append(s.free, uint32(i))
			continue
		}
		s.cells[i] = cell[T]{value: *slots[i], live: true}
		s.count++
	}
	return s
}

// Insert stores v in a free slot and returns its index. The most recently
// freed slot is reused first; the vector grows only when no free slot
// remains.
func (s *Slab[T]) Insert(v T) uint32 {
	if n := len(s.free); n > 0 {
		i := s.free[n-1]
		s.free = s.free[:n-1]
		s.cells[i] = cell[T]{value: v, live: true}
		s.count++
		return i
	}
	s.cells = append(s.cells, cell[T]{value: v, live: true})
	s.count++
	return uint32(len(s.cells) - 1)
}

// Remove frees slot i and returns its former value. It reports false when
// i is already free or out of range; the slab is unchanged in that case.
func (s *Slab[T]) Remove(i uint32) (T, bool) {
	if int(i) >= len(s.cells) || !s.cells[i].live {
		var zero T
		return zero, false
	}
	v := s.cells[i].value
	s.cells[i] = cell[T]{}
	s.free = append(s.free, i)
	s.count--
	return v, true
}

// Get returns a pointer to the value in slot i, or false when i is free or
// out of range. The pointer is valid until the next Insert.
func (s *Slab[T]) Get(i uint32) (*T, bool) {
	if int(i) >= len(s.cells) || !s.cells[i].live {
		return nil, false
	}
	return &s.cells[i].value, true
}

// Contains reports whether slot i is occupied.
func (s *Slab[T]) Contains(i uint32) bool {
	return int(i) < len(s.cells) && s.cells[i].live
}

// Len returns the number of occupied slots.
func (s *Slab[T]) Len() int { return s.count }

// Cap returns the total number of slots, occupied and free.
func (s *Slab[T]) Cap() int { return len(s.cells) }

// All iterates over occupied slots in ascending index order. The sequence
// is restartable; yielded pointers are valid until the next mutation.
func (s *Slab[T]) All() iter.Seq2[uint32, *T] {
	return func(yield func(uint32, *T) bool) {
		for i := range s.cells {
			if !s.cells[i].live {
				continue
			}
			if !yield(uint32(i), &s.cells[i].value) {
				return
			}
		}
	}
}
