package rett

import (
	"errors"
	"fmt"

	"github.com/lereldarion/rett/engine"
	"github.com/lereldarion/rett/persistence"
)

var (
	// ErrNotFound is returned when an index names no live element.
	ErrNotFound = errors.New("not found")

	// ErrCannotRemoveLinked is returned when removing an element that is
	// still an endpoint of live links. Remove the links first.
	ErrCannotRemoveLinked = errors.New("element is referenced by live links")

	// ErrInvalidAtom is returned when inserting a zero-valued atom.
	ErrInvalidAtom = errors.New("invalid atom value")

	// ErrSnapshotCorrupt is returned when a snapshot fails integrity or
	// graph invariant checks during load.
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")

	// ErrCodecMismatch is returned when loading with a codec other than the
	// one recorded in the snapshot header. Load with a nil codec to use the
	// recorded one.
	ErrCodecMismatch = engine.ErrCodecMismatch
)

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, engine.ErrInvalidIndex) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	// Argument and state normalization.
	if errors.Is(err, engine.ErrCannotRemoveLinked) {
		return fmt.Errorf("%w: %w", ErrCannotRemoveLinked, err)
	}
	if errors.Is(err, engine.ErrInvalidAtom) {
		return fmt.Errorf("%w: %w", ErrInvalidAtom, err)
	}

	// Snapshot corruption: invariant violations and checksum mismatches.
	var de *engine.DecodeError
	if errors.As(err, &de) {
		return fmt.Errorf("%w: %w", ErrSnapshotCorrupt, err)
	}
	if persistence.IsChecksumMismatch(err) {
		return fmt.Errorf("%w: %w", ErrSnapshotCorrupt, err)
	}

	return err
}
