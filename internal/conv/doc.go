// Package conv provides safe integer type conversion utilities.
//
// These functions perform bounds checking to prevent integer overflow when
// converting between Go's int (platform-dependent) and the fixed-width
// types used by the snapshot container (header fields, section lengths,
// payload block sizes).
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead.
package conv
