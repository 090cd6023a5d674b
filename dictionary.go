package bej

import (
	"os"
	"strings"
)

// Dictionary holds a loaded schema (or annotation) dictionary: a
// contiguous byte buffer with a 12-byte header followed by packed 10-byte
// entries and a trailing name table. Once loaded it is immutable and may
// be shared across concurrent codec invocations without locking.
type Dictionary struct {
	buf []byte
}

const (
	dictHeaderSize = 12
	dictEntrySize  = 10
	rootOffset     = dictHeaderSize

	// childCountUnbounded marks an array element archetype: the parent
	// ARRAY entry's sole child, whose own sequence number is ignored.
	childCountUnbounded = 0xFFFF
	// noNameOffset marks an entry with no associated name.
	noNameOffset = 0xFFFF
)

// LoadDictionary reads path into memory and validates its header. A path
// ending in ".map" is resolved to its sibling ".bin" file first; any other
// extension is loaded verbatim.
func LoadDictionary(path string) (*Dictionary, error) {
	if strings.HasSuffix(path, ".map") {
		path = strings.TrimSuffix(path, ".map") + ".bin"
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewDictionary(buf)
}

// NewDictionary validates and wraps a raw dictionary buffer already held
// in memory.
func NewDictionary(buf []byte) (*Dictionary, error) {
	if len(buf) < dictHeaderSize {
		return nil, ErrDictTooSmall
	}

	count := readU16LE(buf[2:4])
	size := readU32LE(buf[4:8])
	if uint64(dictHeaderSize)+uint64(count)*dictEntrySize > uint64(len(buf)) {
		return nil, ErrDictOutOfBounds
	}
	if uint64(size) > uint64(len(buf)) {
		return nil, ErrDictOutOfBounds
	}

	return &Dictionary{buf: buf}, nil
}

// EntryCount returns the dictionary's declared count of packed entries
// (header offset 2).
func (d *Dictionary) EntryCount() uint16 {
	return readU16LE(d.buf[2:4])
}

// Entry describes one packed dictionary record: its format code and BEJ
// flags, sequence number, child pointer/count, and resolved name.
type Entry struct {
	Format      FormatCode
	Flags       byte
	Sequence    uint16
	ChildOffset uint16
	ChildCount  uint16
	Name        string
	HasName     bool
}

// IsArrayArchetypeSet reports whether e is an ARRAY entry whose single
// child is the element archetype (ChildCount == 0xFFFF).
func (e Entry) IsArrayArchetypeSet() bool {
	return e.ChildCount == childCountUnbounded
}

// IsAnnotation reports whether e's name begins with '@', routing lookups
// to the annotation dictionary rather than the schema dictionary.
func (e Entry) IsAnnotation() bool {
	return e.HasName && strings.HasPrefix(e.Name, "@")
}

// cursor iterates a bounded or unbounded subset of packed entries, reused
// both for full top-level walks and bounded child subsets. An unbounded
// cursor (count == 0xFFFF) proceeds until the buffer ends;
// used only to search the annotation dictionary globally by sequence.
type cursor struct {
	dict      *Dictionary
	offset    uint
	remaining uint32 // 1<<32-1 sentinel value means unbounded
}

const cursorUnbounded = 1<<32 - 1

// newCursor starts a bounded walk of count entries at byte offset off; a
// count of 0xFFFF starts an unbounded walk instead.
func newCursor(d *Dictionary, off uint, count uint16) cursor {
	if count == childCountUnbounded {
		return cursor{dict: d, offset: off, remaining: cursorUnbounded}
	}
	return cursor{dict: d, offset: off, remaining: uint32(count)}
}

// next decodes the entry at the cursor's current position and advances.
// It returns ok=false once the subset (or buffer, if unbounded) is
// exhausted.
func (c *cursor) next() (Entry, bool, error) {
	if c.remaining != cursorUnbounded && c.remaining == 0 {
		return Entry{}, false, nil
	}
	if c.offset+dictEntrySize > uint(len(c.dict.buf)) {
		if c.remaining == cursorUnbounded {
			return Entry{}, false, nil
		}
		return Entry{}, false, ErrDictOutOfBounds
	}

	e, err := c.dict.decodeEntryAt(c.offset)
	if err != nil {
		return Entry{}, false, err
	}

	c.offset += dictEntrySize
	if c.remaining != cursorUnbounded {
		c.remaining--
	}
	return e, true, nil
}

// decodeEntryAt decodes the 10-byte entry record at the given absolute
// byte offset and resolves its name, if any.
func (d *Dictionary) decodeEntryAt(off uint) (Entry, error) {
	if off+dictEntrySize > uint(len(d.buf)) {
		return Entry{}, ErrDictOutOfBounds
	}
	rec := d.buf[off : off+dictEntrySize]

	e := Entry{
		Format:      FormatCode(rec[0] >> 4),
		Flags:       rec[0] & 0x0F,
		Sequence:    readU16LE(rec[1:3]),
		ChildOffset: readU16LE(rec[3:5]),
		ChildCount:  readU16LE(rec[5:7]),
	}

	nameLen := rec[7]
	nameOff := readU16LE(rec[8:10])
	if nameLen > 0 && nameOff != noNameOffset {
		name, err := d.readName(uint(nameOff), uint(nameLen))
		if err != nil {
			return Entry{}, err
		}
		e.Name = name
		e.HasName = true
	}

	if e.ChildCount != 0 && !e.IsArrayArchetypeSet() {
		end := uint64(e.ChildOffset) + uint64(e.ChildCount)*dictEntrySize
		if end > uint64(len(d.buf)) {
			return Entry{}, ErrDictOutOfBounds
		}
	}

	return e, nil
}

// readName reads a NUL-terminated (or length-bounded) name from the name
// table at the given offset.
func (d *Dictionary) readName(off, length uint) (string, error) {
	if off+length > uint(len(d.buf)) {
		return "", ErrDictOutOfBounds
	}
	raw := d.buf[off : off+length]
	// name length includes the NUL terminator
	if n := strings.IndexByte(string(raw), 0); n >= 0 {
		raw = raw[:n]
	}
	return string(raw), nil
}

// Root returns the dictionary's root entry, at the fixed offset of 12.
// The root describes the whole schema's top-level object.
func (d *Dictionary) Root() (Entry, error) {
	return d.decodeEntryAt(rootOffset)
}

// FindBySequence performs a linear scan of the subset [offset, offset +
// count*10) for an entry whose sequence number equals seq. A count of
// 0xFFFF scans unbounded, used for annotation-dictionary lookups.
func (d *Dictionary) FindBySequence(offset uint, count uint16, seq uint16) (Entry, bool, error) {
	c := newCursor(d, offset, count)
	for {
		e, ok, err := c.next()
		if err != nil {
			return Entry{}, false, err
		}
		if !ok {
			return Entry{}, false, nil
		}
		if e.Sequence == seq {
			return e, true, nil
		}
	}
}

// FindByName performs a linear scan of the subset for an entry whose name
// exactly matches name, used by the encoder to resolve a JSON property
// key to a dictionary entry.
func (d *Dictionary) FindByName(offset uint, count uint16, name string) (Entry, bool, error) {
	c := newCursor(d, offset, count)
	for {
		e, ok, err := c.next()
		if err != nil {
			return Entry{}, false, err
		}
		if !ok {
			return Entry{}, false, nil
		}
		if e.HasName && e.Name == name {
			return e, true, nil
		}
	}
}

// Archetype returns the sole element-archetype child of an ARRAY entry:
// the parent has exactly one child with ChildCount == 0xFFFF marking it,
// but the archetype child itself is an ordinary entry describing the
// element's format.
func (d *Dictionary) Archetype(arrayEntry Entry) (Entry, error) {
	if arrayEntry.ChildCount == 0 {
		return Entry{}, ErrNoArchetype
	}
	c := newCursor(d, uint(arrayEntry.ChildOffset), 1)
	e, ok, err := c.next()
	if err != nil {
		return Entry{}, err
	}
	if !ok {
		return Entry{}, ErrNoArchetype
	}
	return e, nil
}
