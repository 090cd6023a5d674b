package bej

import (
	"github.com/kungfusheep/bej/bejvalue"
)

// Decoder streams a BEJ byte sequence against a schema (and optional
// annotation) dictionary and produces a JSON value tree. Grounded on the
// teacher's decoderImpl / Walker: a single pass over the wire bytes,
// recursing into SET and ARRAY the way Walker.walk recurses into structs
// and slices, but driven by dictionary lookups instead of a static
// reflect-built instruction list.
type Decoder struct {
	schema *Dictionary
	annot  *Dictionary
	limits Limits
}

// NewDecoder builds a Decoder using DefaultLimits.
func NewDecoder(schema, annot *Dictionary) *Decoder {
	return NewDecoderWithLimits(schema, annot, DefaultLimits)
}

// NewDecoderWithLimits builds a Decoder with custom resource bounds,
// guarding against memory exhaustion from an untrusted wire stream.
func NewDecoderWithLimits(schema, annot *Dictionary, limits Limits) *Decoder {
	return &Decoder{schema: schema, annot: annot, limits: limits}
}

// Decode consumes the 7-byte file header, reads one outer SFL, validates
// it is a SET, and decodes its body against the schema dictionary's root
// entry. Any error aborts the decode and returns no partial JSON.
func (d *Decoder) Decode(data []byte) (bejvalue.Value, error) {
	r := NewReader(data)

	header, err := r.Read(7)
	if err != nil {
		return bejvalue.Value{}, err
	}
	if header[0] != fileHeader[0] || header[1] != fileHeader[1] ||
		header[2] != fileHeader[2] || header[3] != fileHeader[3] {
		return bejvalue.Value{}, ErrFramingBadMagic
	}

	outer, err := readSFL(&r)
	if err != nil {
		return bejvalue.Value{}, err
	}
	if outer.format != FormatSet {
		return bejvalue.Value{}, ErrWrongOuterForm
	}
	if err := checkLimit(uint(outer.length), d.limits.MaxPayloadLen, ErrPayloadTooLarge); err != nil {
		return bejvalue.Value{}, err
	}

	body, err := r.Read(uint(outer.length))
	if err != nil {
		return bejvalue.Value{}, err
	}

	rootEntry, err := d.schema.Root()
	if err != nil {
		return bejvalue.Value{}, err
	}

	bodyReader := NewReader(body)
	return d.decodeSet(&bodyReader, rootEntry, d.schema, 0)
}

// decodeSet decodes a SET payload. entry is the containing dictionary
// entry P; dict is P's own dictionary (schema unless P was itself reached
// via the annotation selector). The expected child dictionary D is schema
// by default, annotation iff P.Name begins with '@'. For each of the
// NNINT-prefixed property count's fields: read an SFL, split (sequence,
// selector); selector 0 resolves against the bounded subset (D,
// P.ChildOffset, P.ChildCount), selector 1 resolves against the
// annotation dictionary searched unbounded.
func (d *Decoder) decodeSet(r *Reader, entry Entry, dict *Dictionary, depth uint) (bejvalue.Value, error) {
	if err := checkLimit(depth, d.limits.MaxNestingDepth, ErrNestingTooDeep); err != nil {
		return bejvalue.Value{}, err
	}

	childDict := dict
	if entry.IsAnnotation() {
		childDict = d.annot
	}

	n, err := r.ReadNNINT()
	if err != nil {
		return bejvalue.Value{}, err
	}
	if err := checkLimit(uint(n), d.limits.MaxPropertyCount, ErrTooManyProperty); err != nil {
		return bejvalue.Value{}, err
	}

	obj := bejvalue.NewObject()
	for i := uint64(0); i < n; i++ {
		field, err := readSFL(r)
		if err != nil {
			return bejvalue.Value{}, err
		}
		if err := checkLimit(uint(field.length), d.limits.MaxPayloadLen, ErrPayloadTooLarge); err != nil {
			return bejvalue.Value{}, err
		}

		payload, err := r.Read(uint(field.length))
		if err != nil {
			return bejvalue.Value{}, err
		}

		var child Entry
		var resolveErr error
		if field.selector == 1 {
			if d.annot == nil {
				return bejvalue.Value{}, ErrSequenceNotFound
			}
			child, _, resolveErr = lookupOrMiss(d.annot.FindBySequence(rootOffset, childCountUnbounded, field.sequence))
		} else {
			if childDict == nil {
				return bejvalue.Value{}, ErrSequenceNotFound
			}
			child, _, resolveErr = lookupOrMiss(childDict.FindBySequence(uint(entry.ChildOffset), entry.ChildCount, field.sequence))
		}
		if resolveErr != nil {
			return bejvalue.Value{}, resolveErr
		}

		resolveDict := childDict
		if field.selector == 1 {
			resolveDict = d.annot
		}

		payloadReader := NewReader(payload)
		val, emitted, err := d.decodeValue(&payloadReader, field.format, child, resolveDict, depth)
		if err != nil {
			return bejvalue.Value{}, err
		}

		if emitted && child.HasName {
			obj.Set(child.Name, val)
		}
	}

	return obj, nil
}

// lookupOrMiss turns a (Entry, bool, error) dictionary lookup result into
// an error of ErrSequenceNotFound when the entry was not found, so
// callers have a single error path to check.
func lookupOrMiss(e Entry, ok bool, err error) (Entry, bool, error) {
	if err != nil {
		return Entry{}, false, err
	}
	if !ok {
		return Entry{}, false, ErrSequenceNotFound
	}
	return e, true, nil
}

// decodeValue dispatches on the wire format code. The bool result reports
// whether a value was actually produced: unknown format codes are
// tolerated for forward compatibility by skipping the payload entirely
// (it has already been sliced out of the parent reader by the caller), and
// callers must not mistake that skip for a decoded null.
func (d *Decoder) decodeValue(r *Reader, format FormatCode, entry Entry, dict *Dictionary, depth uint) (bejvalue.Value, bool, error) {
	switch format {
	case FormatSet:
		v, err := d.decodeSet(r, entry, dict, depth+1)
		return v, true, err

	case FormatArray:
		v, err := d.decodeArray(r, entry, dict, depth+1)
		return v, true, err

	case FormatNull:
		return bejvalue.Null(), true, nil

	case FormatInteger:
		v, err := d.decodeInteger(r)
		return v, true, err

	case FormatString:
		v, err := d.decodeString(r)
		return v, true, err

	case FormatBoolean:
		v, err := d.decodeBoolean(r)
		return v, true, err

	case FormatEnum:
		v, err := d.decodeEnum(r, entry, dict)
		return v, true, err

	default:
		// unknown format: skip, emitting nothing
		return bejvalue.Value{}, false, nil
	}
}

// decodeInteger reads NNINT len in [1..8], reads len little-endian bytes,
// and sign-extends from bit len*8-1 to 64 bits.
func (d *Decoder) decodeInteger(r *Reader) (bejvalue.Value, error) {
	length, err := r.ReadNNINT()
	if err != nil {
		return bejvalue.Value{}, err
	}
	if length == 0 || length > 8 {
		return bejvalue.Value{}, ErrFramingOverrun
	}

	raw, err := r.Read(uint(length))
	if err != nil {
		return bejvalue.Value{}, err
	}

	var u uint64
	for i, b := range raw {
		u |= uint64(b) << (8 * uint(i))
	}

	shift := 64 - length*8
	signed := int64(u<<shift) >> shift
	return bejvalue.Number(float64(signed)), nil
}

// decodeString reads NNINT len, reads len bytes, and strips the trailing
// NUL the on-wire byte count includes.
func (d *Decoder) decodeString(r *Reader) (bejvalue.Value, error) {
	length, err := r.ReadNNINT()
	if err != nil {
		return bejvalue.Value{}, err
	}
	if length == 0 {
		return bejvalue.Value{}, ErrFramingOverrun
	}

	raw, err := r.Read(uint(length))
	if err != nil {
		return bejvalue.Value{}, err
	}
	return bejvalue.String(string(raw[:len(raw)-1])), nil
}

// decodeBoolean reads NNINT len (must equal 1) and one byte.
func (d *Decoder) decodeBoolean(r *Reader) (bejvalue.Value, error) {
	length, err := r.ReadNNINT()
	if err != nil {
		return bejvalue.Value{}, err
	}
	if length != 1 {
		return bejvalue.Value{}, ErrFramingOverrun
	}

	b, err := r.ReadByte()
	if err != nil {
		return bejvalue.Value{}, err
	}
	return bejvalue.Bool(b != 0), nil
}

// decodeEnum reads NNINT width, then width little-endian bytes holding
// the sequence value, mirroring INTEGER's framing (the encode side emits
// NNINT(width) + width raw bytes). It resolves entry's children in dict
// for a child whose sequence equals that value. Missing child is an
// error.
func (d *Decoder) decodeEnum(r *Reader, entry Entry, dict *Dictionary) (bejvalue.Value, error) {
	width, err := r.ReadNNINT()
	if err != nil {
		return bejvalue.Value{}, err
	}
	if width == 0 || width > 8 {
		return bejvalue.Value{}, ErrFramingOverrun
	}

	raw, err := r.Read(uint(width))
	if err != nil {
		return bejvalue.Value{}, err
	}

	var seq uint64
	for i, b := range raw {
		seq |= uint64(b) << (8 * uint(i))
	}

	child, ok, err := dict.FindBySequence(uint(entry.ChildOffset), entry.ChildCount, uint16(seq))
	if err != nil {
		return bejvalue.Value{}, err
	}
	if !ok || !child.HasName {
		return bejvalue.Value{}, ErrEnumNotFound
	}
	return bejvalue.String(child.Name), nil
}

// decodeArray reads NNINT element count, obtains the sole element
// archetype, then for each element reads an SFL header (ignoring its
// sequence, which is just the element's index) and decodes its payload
// using the archetype entry. Elements whose archetype format is unknown
// are skipped rather than appended as null.
func (d *Decoder) decodeArray(r *Reader, entry Entry, dict *Dictionary, depth uint) (bejvalue.Value, error) {
	if err := checkLimit(depth, d.limits.MaxNestingDepth, ErrNestingTooDeep); err != nil {
		return bejvalue.Value{}, err
	}

	n, err := r.ReadNNINT()
	if err != nil {
		return bejvalue.Value{}, err
	}
	if err := checkLimit(uint(n), d.limits.MaxPropertyCount, ErrTooManyProperty); err != nil {
		return bejvalue.Value{}, err
	}

	archetype, err := dict.Archetype(entry)
	if err != nil {
		return bejvalue.Value{}, err
	}

	elements := make([]bejvalue.Value, 0, n)
	for i := uint64(0); i < n; i++ {
		field, err := readSFL(r)
		if err != nil {
			return bejvalue.Value{}, err
		}
		if err := checkLimit(uint(field.length), d.limits.MaxPayloadLen, ErrPayloadTooLarge); err != nil {
			return bejvalue.Value{}, err
		}

		payload, err := r.Read(uint(field.length))
		if err != nil {
			return bejvalue.Value{}, err
		}

		payloadReader := NewReader(payload)
		val, emitted, err := d.decodeValue(&payloadReader, archetype.Format, archetype, dict, depth)
		if err != nil {
			return bejvalue.Value{}, err
		}
		if emitted {
			elements = append(elements, val)
		}
	}

	return bejvalue.Array(elements), nil
}
