package bej

import "sync"

// Buffer accumulates encoded data during serialization. Supports only
// append operations, matching the teacher's Buffer shape but trading
// LEB128 varints for BEJ's NNINT framing.
type Buffer struct {
	Bytes []byte
}

// Reset clears the buffer contents but preserves allocated memory.
func (b *Buffer) Reset() {
	b.Bytes = b.Bytes[:0]
}

var bufpool = sync.Pool{
	New: func() any { return &Buffer{} },
}

// newScratchBuffer obtains a reset Buffer from the pool. Used by the
// encoder's two-pass length computation: each recursion frame buffers its
// payload here before its length is known, then is released once the
// payload has been copied into the parent frame.
func newScratchBuffer() *Buffer {
	b := bufpool.Get().(*Buffer)
	b.Reset()
	return b
}

func (b *Buffer) release() {
	bufpool.Put(b)
}

// AppendNNINT writes v using the NNINT length-prefixed little-endian form:
// one length byte L (1 <= L <= 8), then L little-endian payload bytes.
// Zero always encodes as L=1, b0=0, never L=0.
func (b *Buffer) AppendNNINT(v uint64) {
	if v == 0 {
		b.Bytes = append(b.Bytes, 1, 0)
		return
	}

	var tmp [8]byte
	n := 0
	for x := v; x != 0; x >>= 8 {
		tmp[n] = byte(x)
		n++
	}

	b.Bytes = append(b.Bytes, byte(n))
	b.Bytes = append(b.Bytes, tmp[:n]...)
}

// AppendU8 appends a single byte.
func (b *Buffer) AppendU8(v uint8) {
	b.Bytes = append(b.Bytes, v)
}

// AppendBytes appends raw bytes with no length prefix.
func (b *Buffer) AppendBytes(v []byte) {
	b.Bytes = append(b.Bytes, v...)
}

// AppendU16LE appends a fixed-width little-endian uint16. ENUM payloads
// do not use it; they go through AppendUnsignedMinimal.
func (b *Buffer) AppendU16LE(v uint16) {
	b.Bytes = append(b.Bytes, byte(v), byte(v>>8))
}

// AppendUnsignedMinimal writes NNINT(width) followed by v's minimal
// little-endian byte representation (at least 1 byte). Used for ENUM
// sequence payloads, which are plain unsigned values with no
// sign-extension rule, unlike INTEGER payloads.
func (b *Buffer) AppendUnsignedMinimal(v uint16) {
	if v <= 0xFF {
		b.AppendNNINT(1)
		b.AppendU8(byte(v))
		return
	}
	b.AppendNNINT(2)
	b.AppendU8(byte(v))
	b.AppendU8(byte(v >> 8))
}

// AppendSignedMinimal packs i using the minimal-width two's-complement
// representation: start from the full 8-byte little-endian form and drop
// leading bytes that are pure sign extension of the byte below them, down
// to a floor of 1 byte.
func (b *Buffer) AppendSignedMinimal(i int64) {
	var tmp [8]byte
	u := uint64(i)
	for k := 0; k < 8; k++ {
		tmp[k] = byte(u >> (8 * k))
	}

	n := 8
	for n > 1 {
		top := tmp[n-1]
		next := tmp[n-2]
		if top == 0x00 && next&0x80 == 0 {
			n--
			continue
		}
		if top == 0xFF && next&0x80 != 0 {
			n--
			continue
		}
		break
	}

	b.AppendNNINT(uint64(n))
	b.AppendBytes(tmp[:n])
}
