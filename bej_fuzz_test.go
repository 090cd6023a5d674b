package bej

import (
	"testing"

	"github.com/kungfusheep/bej/bejvalue"
)

// FuzzNNINTRoundTrip fuzzes the NNINT codec over raw uint64 values.
// Grounded on the teacher's FuzzPrimitiveTypesRoundtrip seed-corpus style.
func FuzzNNINTRoundTrip(f *testing.F) {
	f.Add(uint64(0))
	f.Add(uint64(1))
	f.Add(uint64(0xFF))
	f.Add(uint64(0x100))
	f.Add(^uint64(0))
	f.Add(uint64(1) << 32)

	f.Fuzz(func(t *testing.T, v uint64) {
		buf := &Buffer{}
		buf.AppendNNINT(v)

		r := NewReader(buf.Bytes)
		got, err := r.ReadNNINT()
		if err != nil {
			t.Fatalf("read failed for %d: %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip mismatch: wrote %d, read %d", v, got)
		}
		if r.BytesLeft() != 0 {
			t.Fatalf("trailing bytes after reading %d", v)
		}
	})
}

// FuzzSignedMinimalRoundTrip fuzzes the minimal-width signed integer
// packing used for INTEGER payloads.
func FuzzSignedMinimalRoundTrip(f *testing.F) {
	f.Add(int64(0))
	f.Add(int64(-1))
	f.Add(int64(127))
	f.Add(int64(-128))
	f.Add(int64(1) << 40)

	f.Fuzz(func(t *testing.T, v int64) {
		buf := &Buffer{}
		buf.AppendSignedMinimal(v)

		r := NewReader(buf.Bytes)
		width, err := r.ReadNNINT()
		if err != nil {
			t.Fatalf("width read failed for %d: %v", v, err)
		}
		if width < 1 || width > 8 {
			t.Fatalf("width %d out of range for %d", width, v)
		}

		raw, err := r.Read(uint(width))
		if err != nil {
			t.Fatalf("payload read failed for %d: %v", v, err)
		}

		var u uint64
		for i, b := range raw {
			u |= uint64(b) << (8 * uint(i))
		}
		shift := 64 - width*8
		got := int64(u<<shift) >> shift
		if got != v {
			t.Fatalf("round trip mismatch: wrote %d, read %d", v, got)
		}
	})
}

// FuzzDecodeNeverPanics feeds structurally-mutated byte streams into
// Decode against a small fixed dictionary. Any malformed input must abort
// cleanly, never panic or produce partial output.
func FuzzDecodeNeverPanics(f *testing.F) {
	schema := mustDict(entrySpec{
		format: FormatSet,
		children: []entrySpec{
			{format: FormatInteger, sequence: 0, name: "X"},
		},
	})
	dec := NewDecoder(schema, nil)

	enc := NewEncoder(schema, nil)
	doc := bejvalue.NewObject()
	doc.Set("X", bejvalue.Number(1))
	seed, err := enc.Encode(doc)
	if err != nil {
		f.Fatalf("seed encode failed: %v", err)
	}
	f.Add(seed)
	f.Add([]byte{})
	f.Add([]byte{0x00, 0xF0, 0xF1, 0xF1})

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = dec.Decode(data) // must not panic; error is an acceptable outcome
	})
}
