// Package persistence provides checksummed, atomic file helpers for
// snapshot storage on the local filesystem.
package persistence
