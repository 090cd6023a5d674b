package bej

// FormatCode identifies the shape of an SFL payload. The numeric values
// match the BEJ wire protocol exactly; gaps (8, 9, 11, 12, 13) are
// reserved formats this codec does not implement and are handled via the
// decoder's unknown-format skip path.
type FormatCode uint8

const (
	FormatSet                FormatCode = 0
	FormatArray              FormatCode = 1
	FormatNull               FormatCode = 2
	FormatInteger            FormatCode = 3
	FormatEnum               FormatCode = 4
	FormatString             FormatCode = 5
	FormatReal               FormatCode = 6
	FormatBoolean            FormatCode = 7
	FormatPropertyAnnotation FormatCode = 10
	FormatResourceLink       FormatCode = 14
)

func (f FormatCode) String() string {
	switch f {
	case FormatSet:
		return "SET"
	case FormatArray:
		return "ARRAY"
	case FormatNull:
		return "NULL"
	case FormatInteger:
		return "INTEGER"
	case FormatEnum:
		return "ENUM"
	case FormatString:
		return "STRING"
	case FormatReal:
		return "REAL"
	case FormatBoolean:
		return "BOOLEAN"
	case FormatPropertyAnnotation:
		return "PROPERTY_ANNOTATION"
	case FormatResourceLink:
		return "RESOURCE_LINK"
	default:
		return "UNKNOWN"
	}
}

// BEJ flags live in the low nibble of the format byte. Neither is
// interpreted beyond recognition: deferred bindings are recognised but
// not resolved.
const (
	bejFlagDeferredBinding  byte = 1 << 0
	bejFlagNestedAnnotation byte = 1 << 1
)

// fileHeader is the fixed 7-byte prefix every encoded document carries:
// magic (4 bytes), reserved flags (2 bytes), schema class (1 byte, 0x00 =
// major schema).
var fileHeader = [7]byte{0x00, 0xF0, 0xF1, 0xF1, 0x00, 0x00, 0x00}

// sfl is the decoded form of a Sequence/FormatFlags/Length header.
type sfl struct {
	sequence uint16     // sequence number, selector bit already stripped
	selector byte       // 0 = schema dictionary, 1 = annotation dictionary
	format   FormatCode
	flags    byte
	length   uint64
}

// writeSFL emits Sequence, FormatFlags, Length into b: the sequence NNINT
// packs (sequence<<1)|selector in its low bit.
func writeSFL(b *Buffer, sequence uint16, selector byte, format FormatCode, length uint64) {
	seqWithSelector := (uint64(sequence) << 1) | uint64(selector&1)
	b.AppendNNINT(seqWithSelector)
	b.AppendU8(byte(format)<<4 | 0)
	b.AppendNNINT(length)
}

// readSFL parses one SFL tuple from r.
func readSFL(r *Reader) (sfl, error) {
	raw, err := r.ReadNNINT()
	if err != nil {
		return sfl{}, err
	}
	selector := byte(raw & 1)
	sequence := uint16(raw >> 1)

	fb, err := r.ReadByte()
	if err != nil {
		return sfl{}, err
	}

	length, err := r.ReadNNINT()
	if err != nil {
		return sfl{}, err
	}

	return sfl{
		sequence: sequence,
		selector: selector,
		format:   FormatCode(fb >> 4),
		flags:    fb & 0x0F,
		length:   length,
	}, nil
}
