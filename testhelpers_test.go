package bej

// Test-only dictionary builder; there is no dictionary authoring tool in
// this codec, so tests construct valid packed dictionaries in memory
// instead of checking in binary fixtures, mirroring how the teacher's
// tests build schemas programmatically rather than from files on disk.

// entrySpec describes one dictionary entry to be laid out by
// buildDictionary. Children of the same parent are packed contiguously
// immediately after all of the current breadth-first level, matching the
// dictionary's packed-run-per-parent layout.
type entrySpec struct {
	format   FormatCode
	flags    byte
	sequence uint16
	name     string
	noName   bool // true for an entry that carries no name at all
	children []entrySpec

	// archetype marks this entry's ChildCount field as the 0xFFFF
	// array-archetype sentinel instead of a literal count.
	archetype bool
}

// buildDictionary lays out root and its descendants into a valid
// dictionary buffer: a 12-byte header, packed 10-byte entries in
// breadth-first order, and a trailing NUL-terminated name table.
func buildDictionary(root entrySpec) []byte {
	var bfs []*entrySpec
	queue := []*entrySpec{&root}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		bfs = append(bfs, e)
		for k := range e.children {
			queue = append(queue, &e.children[k])
		}
	}

	entriesStart := uint32(dictHeaderSize)
	nameTableStart := entriesStart + uint32(len(bfs))*dictEntrySize

	offsetOf := make(map[*entrySpec]uint16, len(bfs))
	for idx, e := range bfs {
		offsetOf[e] = uint16(entriesStart) + uint16(idx*dictEntrySize)
	}

	var names []byte
	nameOffset := make(map[*entrySpec]uint16, len(bfs))
	for _, e := range bfs {
		if e.noName || e.name == "" {
			continue
		}
		nameOffset[e] = uint16(uint32(len(names)) + nameTableStart)
		names = append(names, []byte(e.name)...)
		names = append(names, 0)
	}

	buf := make([]byte, nameTableStart)
	buf[0] = 1 // version tag
	buf[1] = 0 // flags
	putU16(buf[2:4], uint16(len(bfs)))
	putU32(buf[4:8], nameTableStart+uint32(len(names)))

	for idx, e := range bfs {
		off := entriesStart + uint32(idx*dictEntrySize)
		rec := buf[off : off+dictEntrySize]

		rec[0] = byte(e.format)<<4 | e.flags&0x0F
		putU16(rec[1:3], e.sequence)

		if len(e.children) > 0 {
			childOff := offsetOf[&e.children[0]]
			putU16(rec[3:5], childOff)
			if e.archetype {
				putU16(rec[5:7], childCountUnbounded)
			} else {
				putU16(rec[5:7], uint16(len(e.children)))
			}
		}

		if e.noName || e.name == "" {
			rec[7] = 0
			putU16(rec[8:10], noNameOffset)
		} else {
			rec[7] = byte(len(e.name) + 1)
			putU16(rec[8:10], nameOffset[e])
		}
	}

	return append(buf, names...)
}

func putU16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func mustDict(spec entrySpec) *Dictionary {
	d, err := NewDictionary(buildDictionary(spec))
	if err != nil {
		panic(err)
	}
	return d
}
