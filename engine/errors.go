package engine

import (
	"errors"
	"fmt"

	"github.com/lereldarion/rett/element"
)

var (
	// ErrInvalidIndex is returned when an operation names a slot that does
	// not hold a live element.
	ErrInvalidIndex = errors.New("invalid element index")

	// ErrCannotRemoveLinked is returned when removing an element that is
	// still an endpoint of live links.
	ErrCannotRemoveLinked = errors.New("element is referenced by live links")

	// ErrInvalidAtom is returned when inserting a zero-valued atom.
	ErrInvalidAtom = errors.New("invalid atom value")

	// ErrCodecMismatch is returned when a snapshot was written with a codec
	// other than the one requested for reading.
	ErrCodecMismatch = errors.New("snapshot codec mismatch")
)

// ErrIndexInvalid reports an operation on a slot without a live element.
//
// The underlying sentinel can be matched with errors.Is(err, ErrInvalidIndex).
type ErrIndexInvalid struct {
	Index element.Index
	Op    string
}

func (e *ErrIndexInvalid) Error() string {
	return fmt.Sprintf("%s: no live element at slot %s", e.Op, e.Index)
}

func (e *ErrIndexInvalid) Unwrap() error { return ErrInvalidIndex }

// ErrRemoveLinked reports a removal refused because live links still
// reference the element.
//
// The underlying sentinel can be matched with
// errors.Is(err, ErrCannotRemoveLinked).
type ErrRemoveLinked struct {
	Index element.Index
	In    int
	Out   int
}

func (e *ErrRemoveLinked) Error() string {
	return fmt.Sprintf("remove: slot %s is an endpoint of live links (in=%d, out=%d)", e.Index, e.In, e.Out)
}

func (e *ErrRemoveLinked) Unwrap() error { return ErrCannotRemoveLinked }

// DecodeError reports a snapshot payload that violates graph invariants.
// Slot and Field identify the offending record.
type DecodeError struct {
	Slot   element.Index
	Field  string // "kind", "atom", "link", "link.from" or "link.to"
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("snapshot decode: slot %s: %s: %s", e.Slot, e.Field, e.Reason)
}
