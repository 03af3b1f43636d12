package engine

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/lereldarion/rett/codec"
	"github.com/lereldarion/rett/element"
	"github.com/lereldarion/rett/internal/conv"
	"github.com/lereldarion/rett/internal/slab"
	"github.com/lereldarion/rett/persistence"
)

var (
	snapshotMagic         = [4]byte{'R', 'G', 'S', '1'}
	snapshotDirMagic      = [4]byte{'R', 'G', 'D', '1'}
	snapshotFooterMagic   = [4]byte{'R', 'G', 'F', '1'}
	snapshotFormatVersion = uint16(1)
)

const snapshotSectionElements = uint16(1)

type snapshotSectionEntry struct {
	Type     uint16
	Offset   uint64
	Len      uint64
	Checksum uint32 // CRC32-C checksum of section data
}

// record is the wire form of one occupied slot. The payload of an element
// rides in the field matching its kind; entities carry no payload. A nil
// record marks a free slot, so the position of each record in the encoded
// sequence is the element's Index.
//
// Back-link sets and uniqueness indices are derived state and never appear
// on the wire; decode rebuilds them.
type record struct {
	Kind element.Kind  `json:"k"`
	Atom *element.Atom `json:"a,omitempty"`
	Link *element.Link `json:"l,omitempty"`
	Desc string        `json:"d,omitempty"`
}

func (s *Store) encodeRecords() []*record {
	out := make([]*record, s.slots.Cap())
	for i, d := range s.slots.All() {
		rec := &record{Kind: d.elem.Kind, Desc: d.desc}
		switch d.elem.Kind {
		case element.KindAtom:
			a := d.elem.Atom
			rec.Atom = &a
		case element.KindLink:
			l := d.elem.Link
			rec.Link = &l
		}
		out[i] = rec
	}
	return out
}

// WriteSnapshot writes the store to w.
//
// Format:
//  1. snapshot header (magic/version/compression/codec name)
//  2. elements section: one compressed block of codec-marshaled slot
//     records, position = Index, null = free slot
//  3. directory (offset/length/checksum for each section)
//  4. footer (directory offset/length)
func WriteSnapshot(w io.Writer, s *Store, c codec.Codec, compression CompressionType) error {
	if w == nil {
		return fmt.Errorf("snapshot: writer is nil")
	}
	if s == nil {
		return fmt.Errorf("snapshot: store is nil")
	}
	if c == nil {
		c = codec.Default
	}

	codecName := c.Name()
	nameLen, err := conv.IntToUint16(len(codecName))
	if err != nil {
		return fmt.Errorf("snapshot codec name too long: %w", err)
	}

	// Header (16 bytes + codec name)
	// [0:4]   magic
	// [4:6]   version
	// [6]     compression type
	// [7]     reserved
	// [8:10]  codec name len
	// [10:12] section count
	// [12:16] reserved
	var hdr [16]byte
	copy(hdr[0:4], snapshotMagic[:])
	binary.LittleEndian.PutUint16(hdr[4:6], snapshotFormatVersion)
	hdr[6] = byte(compression)
	binary.LittleEndian.PutUint16(hdr[8:10], nameLen)
	binary.LittleEndian.PutUint16(hdr[10:12], 1)
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(codecName) > 0 {
		if _, err := w.Write([]byte(codecName)); err != nil {
			return err
		}
	}

	cw := &countingWriter{w: w}
	cw.n = int64(len(hdr)) + int64(len(codecName))

	// Elements section: codec-marshaled slot records in one framed block.
	payload, err := c.Marshal(s.encodeRecords())
	if err != nil {
		return fmt.Errorf("failed to encode elements: %w", err)
	}
	block, err := compressBlock(payload, compression)
	if err != nil {
		return fmt.Errorf("failed to compress elements: %w", err)
	}

	elemOff := uint64(cw.n)
	elemChecksum := persistence.ComputeChecksum(block)
	if _, err := cw.Write(block); err != nil {
		return err
	}
	elemLen := uint64(len(block))

	// Directory
	dirOff := uint64(cw.n)
	if err := writeSnapshotDirectory(cw, []snapshotSectionEntry{
		{Type: snapshotSectionElements, Offset: elemOff, Len: elemLen, Checksum: elemChecksum},
	}); err != nil {
		return err
	}
	dirLen := uint64(cw.n) - dirOff

	// Footer
	return writeSnapshotFooter(cw, dirOff, dirLen)
}

// EncodeSnapshot is an in-memory WriteSnapshot.
func EncodeSnapshot(s *Store, c codec.Codec, compression CompressionType) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, s, c, compression); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadSnapshot loads a store from r.
//
// The container requires random access (io.ReadSeeker) to locate the
// footer and directory before parsing sections by offset/length. Decode
// re-validates every graph invariant: a payload with dangling link
// endpoints, duplicate atom values or duplicate endpoint pairs fails with
// a *DecodeError naming the offending slot and field, and no partial store
// is returned.
//
// If c is nil, the codec is selected from the snapshot header by name.
func ReadSnapshot(r io.ReadSeeker, c codec.Codec) (*Store, error) {
	if r == nil {
		return nil, fmt.Errorf("snapshot: reader is nil")
	}

	codecName, compression, sections, err := readSnapshotDirectory(r)
	if err != nil {
		return nil, err
	}

	if c == nil {
		if codecName != "" {
			cc, ok := codec.ByName(codecName)
			if !ok {
				return nil, fmt.Errorf("unsupported snapshot codec %q", codecName)
			}
			c = cc
		} else {
			c = codec.Default
		}
	}
	if codecName != "" && c.Name() != codecName {
		return nil, fmt.Errorf("%w: snapshot uses %q, requested %q", ErrCodecMismatch, codecName, c.Name())
	}

	elemEntry, ok := sections[snapshotSectionElements]
	if !ok {
		return nil, fmt.Errorf("snapshot missing elements section")
	}
	if _, err := r.Seek(int64(elemEntry.Offset), io.SeekStart); err != nil {
		return nil, err
	}
	blockLen, err := conv.Uint64ToInt(elemEntry.Len)
	if err != nil {
		return nil, fmt.Errorf("invalid elements section length: %w", err)
	}
	block := make([]byte, blockLen)
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, fmt.Errorf("failed to read elements section: %w", err)
	}
	if actual := persistence.ComputeChecksum(block); actual != elemEntry.Checksum {
		return nil, &persistence.ChecksumMismatchError{
			Expected: elemEntry.Checksum,
			Actual:   actual,
		}
	}

	payload, err := decompressBlock(block, compression)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress elements: %w", err)
	}

	var records []*record
	if err := c.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("failed to decode elements: %w", err)
	}

	return rebuildStore(records)
}

// DecodeSnapshot is an in-memory ReadSnapshot.
func DecodeSnapshot(data []byte, c codec.Codec) (*Store, error) {
	return ReadSnapshot(bytes.NewReader(data), c)
}

// rebuildStore materializes a store from decoded slot records.
//
// Slots are filled first so links may reference any position, forward
// included; the second pass validates endpoints and rebuilds the derived
// back-link sets and uniqueness indices.
func rebuildStore(records []*record) (*Store, error) {
	slots := make([]*elementData, len(records))
	for i, rec := range records {
		if rec == nil {
			continue
		}
		d := &elementData{
			desc:     rec.Desc,
			inLinks:  roaring.New(),
			outLinks: roaring.New(),
		}
		switch rec.Kind {
		case element.KindAtom:
			if rec.Atom == nil {
				return nil, &DecodeError{Slot: element.Index(i), Field: "atom", Reason: "missing payload"}
			}
			if !rec.Atom.Valid() {
				return nil, &DecodeError{Slot: element.Index(i), Field: "atom", Reason: "invalid value"}
			}
			d.elem = element.AtomElement(*rec.Atom)
		case element.KindLink:
			if rec.Link == nil {
				return nil, &DecodeError{Slot: element.Index(i), Field: "link", Reason: "missing payload"}
			}
			d.elem = element.LinkElement(*rec.Link)
		case element.KindEntity:
			d.elem = element.EntityElement()
		default:
			return nil, &DecodeError{Slot: element.Index(i), Field: "kind", Reason: fmt.Sprintf("unknown kind %d", rec.Kind)}
		}
		slots[i] = d
	}

	st := &Store{
		slots: slab.Rebuild(slots),
		atoms: make(map[element.Atom]element.Index),
		links: make(map[element.Link]element.Index),
	}

	for i, d := range st.slots.All() {
		idx := element.Index(i)
		switch d.elem.Kind {
		case element.KindAtom:
			if prev, exists := st.atoms[d.elem.Atom]; exists {
				return nil, &DecodeError{Slot: idx, Field: "atom", Reason: fmt.Sprintf("duplicate of slot %s", prev)}
			}
			st.atoms[d.elem.Atom] = idx
		case element.KindLink:
			l := d.elem.Link
			if !st.slots.Contains(uint32(l.From)) {
				return nil, &DecodeError{Slot: idx, Field: "link.from", Reason: fmt.Sprintf("no element at slot %s", l.From)}
			}
			if !st.slots.Contains(uint32(l.To)) {
				return nil, &DecodeError{Slot: idx, Field: "link.to", Reason: fmt.Sprintf("no element at slot %s", l.To)}
			}
			if prev, exists := st.links[l]; exists {
				return nil, &DecodeError{Slot: idx, Field: "link", Reason: fmt.Sprintf("duplicate of slot %s", prev)}
			}
			st.attach(idx, l)
			st.links[l] = idx
		}
	}

	return st, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

func writeSnapshotDirectory(w io.Writer, entries []snapshotSectionEntry) error {
	// Directory header (12 bytes)
	// [0:4]  magic
	// [4:6]  version
	// [6:8]  reserved
	// [8:12] entry count
	var hdr [12]byte
	copy(hdr[0:4], snapshotDirMagic[:])
	binary.LittleEndian.PutUint16(hdr[4:6], snapshotFormatVersion)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(entries)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	// Each entry is 32 bytes
	// [0:2]   type
	// [2:4]   reserved
	// [4:8]   checksum (CRC32-C)
	// [8:16]  offset
	// [16:24] length
	// [24:32] reserved
	for _, e := range entries {
		var b [32]byte
		binary.LittleEndian.PutUint16(b[0:2], e.Type)
		binary.LittleEndian.PutUint32(b[4:8], e.Checksum)
		binary.LittleEndian.PutUint64(b[8:16], e.Offset)
		binary.LittleEndian.PutUint64(b[16:24], e.Len)
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}

func writeSnapshotFooter(w io.Writer, dirOffset, dirLen uint64) error {
	// Footer is 24 bytes
	// [0:4]   magic
	// [4:6]   version
	// [6:8]   reserved
	// [8:16]  directory offset
	// [16:24] directory length
	var b [24]byte
	copy(b[0:4], snapshotFooterMagic[:])
	binary.LittleEndian.PutUint16(b[4:6], snapshotFormatVersion)
	binary.LittleEndian.PutUint64(b[8:16], dirOffset)
	binary.LittleEndian.PutUint64(b[16:24], dirLen)
	_, err := w.Write(b[:])
	return err
}

func readSnapshotDirectory(r io.ReadSeeker) (codecName string, compression CompressionType, sections map[uint16]snapshotSectionEntry, err error) {
	// Header
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", 0, nil, err
	}
	var hdr [16]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return "", 0, nil, err
	}
	if [4]byte(hdr[0:4]) != snapshotMagic {
		return "", 0, nil, fmt.Errorf("unsupported snapshot format: bad magic")
	}
	ver := binary.LittleEndian.Uint16(hdr[4:6])
	if ver != snapshotFormatVersion {
		return "", 0, nil, fmt.Errorf("unsupported snapshot format version: %d", ver)
	}
	compression = CompressionType(hdr[6])
	nameLen := int(binary.LittleEndian.Uint16(hdr[8:10]))
	sectionCount := int(binary.LittleEndian.Uint16(hdr[10:12]))
	if sectionCount <= 0 {
		return "", 0, nil, fmt.Errorf("invalid section count: %d", sectionCount)
	}

	nameBytes := make([]byte, nameLen)
	if nameLen > 0 {
		if _, err := io.ReadFull(r, nameBytes); err != nil {
			return "", 0, nil, err
		}
	}
	codecName = string(nameBytes)

	// Footer (last 24 bytes)
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return "", 0, nil, err
	}
	if end < 24 {
		return "", 0, nil, fmt.Errorf("truncated snapshot")
	}
	if _, err := r.Seek(end-24, io.SeekStart); err != nil {
		return "", 0, nil, err
	}
	var foot [24]byte
	if _, err := io.ReadFull(r, foot[:]); err != nil {
		return "", 0, nil, err
	}
	if [4]byte(foot[0:4]) != snapshotFooterMagic {
		return "", 0, nil, fmt.Errorf("unsupported snapshot format: missing footer")
	}
	fver := binary.LittleEndian.Uint16(foot[4:6])
	if fver != snapshotFormatVersion {
		return "", 0, nil, fmt.Errorf("unsupported snapshot footer version: %d", fver)
	}

	const maxInt64u = uint64(^uint64(0) >> 1)
	dirOffsetU := binary.LittleEndian.Uint64(foot[8:16])
	dirLenU := binary.LittleEndian.Uint64(foot[16:24])
	if dirOffsetU > maxInt64u || dirLenU > maxInt64u {
		return "", 0, nil, fmt.Errorf("invalid directory offsets")
	}
	dataEndU := uint64(end - 24)
	if dirLenU < 12 || dirOffsetU > dataEndU || dirLenU > dataEndU-dirOffsetU {
		return "", 0, nil, fmt.Errorf("invalid directory range")
	}

	// Directory header
	if _, err := r.Seek(int64(dirOffsetU), io.SeekStart); err != nil {
		return "", 0, nil, err
	}
	var dh [12]byte
	if _, err := io.ReadFull(r, dh[:]); err != nil {
		return "", 0, nil, err
	}
	if [4]byte(dh[0:4]) != snapshotDirMagic {
		return "", 0, nil, fmt.Errorf("invalid snapshot directory magic")
	}
	dver := binary.LittleEndian.Uint16(dh[4:6])
	if dver != snapshotFormatVersion {
		return "", 0, nil, fmt.Errorf("unsupported snapshot directory version: %d", dver)
	}
	entryCount := int(binary.LittleEndian.Uint32(dh[8:12]))
	if entryCount != sectionCount {
		return "", 0, nil, fmt.Errorf("directory entry count %d does not match header section count %d", entryCount, sectionCount)
	}

	sections = make(map[uint16]snapshotSectionEntry, entryCount)
	for i := 0; i < entryCount; i++ {
		var eb [32]byte
		if _, err := io.ReadFull(r, eb[:]); err != nil {
			return "", 0, nil, err
		}
		typ := binary.LittleEndian.Uint16(eb[0:2])
		checksum := binary.LittleEndian.Uint32(eb[4:8])
		off := binary.LittleEndian.Uint64(eb[8:16])
		ln := binary.LittleEndian.Uint64(eb[16:24])
		if _, exists := sections[typ]; exists {
			return "", 0, nil, fmt.Errorf("duplicate snapshot section type %d", typ)
		}

		// Sections must not point into the header (including codec name).
		headerEndU := uint64(16 + nameLen)
		if off < headerEndU {
			return "", 0, nil, fmt.Errorf("invalid snapshot section offset")
		}
		// Sections must be before the directory.
		if off > dirOffsetU || ln > dirOffsetU-off {
			return "", 0, nil, fmt.Errorf("invalid snapshot section range")
		}
		sections[typ] = snapshotSectionEntry{Type: typ, Offset: off, Len: ln, Checksum: checksum}
	}

	return codecName, compression, sections, nil
}
