// Package crc provides the CRC32-Castagnoli checksum used for snapshot
// and file integrity.
//
// CRC32C is hardware accelerated on x86 (SSE4.2) and ARM (CRC extension)
// and detects storage corruption reliably. It is NOT cryptographically
// secure; it catches accidental corruption, not tampering.
package crc

import (
	"hash"
	"hash/crc32"
)

// table is pre-computed for the Castagnoli polynomial so repeated
// Checksum calls avoid MakeTable.
var table = crc32.MakeTable(crc32.Castagnoli)

// Checksum computes the CRC32-Castagnoli checksum of data.
func Checksum(data []byte) uint32 {
	return crc32.Checksum(data, table)
}

// New returns a streaming CRC32-Castagnoli hash.Hash32.
func New() hash.Hash32 {
	return crc32.New(table)
}
