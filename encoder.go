package bej

import (
	"strings"

	"github.com/kungfusheep/bej/bejvalue"
)

// Encoder walks a JSON value tree against a schema (and optional
// annotation) dictionary and produces a BEJ byte stream. Grounded on the
// teacher's encoderImpl: one long-lived value built from the
// dictionaries, reused across many Encode calls (dictionaries are
// read-only and safe to share across calls).
type Encoder struct {
	schema *Dictionary
	annot  *Dictionary
	limits Limits
}

// NewEncoder builds an Encoder using DefaultLimits.
func NewEncoder(schema, annot *Dictionary) *Encoder {
	return NewEncoderWithLimits(schema, annot, DefaultLimits)
}

// NewEncoderWithLimits builds an Encoder with custom resource bounds.
func NewEncoderWithLimits(schema, annot *Dictionary, limits Limits) *Encoder {
	return &Encoder{schema: schema, annot: annot, limits: limits}
}

// Encode writes the 7-byte file header followed by a single outer SFL
// (sequence 0, format SET) whose payload is the encoded root object.
// Fails if root is not an object or if a value's JSON type disagrees with
// its dictionary format. Properties whose names are not in the dictionary
// are skipped, not reported as errors.
func (e *Encoder) Encode(root bejvalue.Value) ([]byte, error) {
	if root.Kind() != bejvalue.KindObject {
		return nil, ErrNotObject
	}

	rootEntry, err := e.schema.Root()
	if err != nil {
		return nil, err
	}

	payload := newScratchBuffer()
	defer payload.release()

	if err := e.encodeSet(payload, rootEntry, e.schema, root, 0); err != nil {
		return nil, err
	}

	out := &Buffer{}
	out.AppendBytes(fileHeader[:])
	writeSFL(out, 0, 0, FormatSet, uint64(len(payload.Bytes)))
	out.AppendBytes(payload.Bytes)
	return out.Bytes, nil
}

type resolvedProperty struct {
	child    Entry
	selector byte
	dict     *Dictionary
	val      bejvalue.Value
}

// encodeSet walks the object's (key, value) pairs in JSON order, resolves
// each key against the appropriate dictionary, silently skips unresolved
// properties for forward compatibility, and emits NNINT(resolvedCount)
// followed by each resolved property's SFL + payload.
func (e *Encoder) encodeSet(dst *Buffer, entry Entry, dict *Dictionary, value bejvalue.Value, depth uint) error {
	if err := checkLimit(depth, e.limits.MaxNestingDepth, ErrNestingTooDeep); err != nil {
		return err
	}
	if value.Kind() != bejvalue.KindObject {
		return ErrTypeMismatch
	}

	members := value.Members()
	if err := checkLimit(uint(len(members)), e.limits.MaxPropertyCount, ErrTooManyProperty); err != nil {
		return err
	}

	var props []resolvedProperty
	for _, m := range members {
		resolved, ok, err := e.resolveProperty(entry, dict, m)
		if err != nil {
			return err
		}
		if ok {
			props = append(props, resolved)
		}
	}

	dst.AppendNNINT(uint64(len(props)))
	for _, p := range props {
		if err := e.encodeProperty(dst, p.child, p.dict, p.selector, p.val, depth); err != nil {
			return err
		}
	}
	return nil
}

// resolveProperty picks the lookup dictionary by key prefix and resolves
// m.Key to a child entry. ok is false for properties the dictionary
// doesn't know about; those are silently skipped.
func (e *Encoder) resolveProperty(entry Entry, dict *Dictionary, m bejvalue.Member) (resolvedProperty, bool, error) {
	isAnnotation := strings.HasPrefix(m.Key, "@")

	var lookupDict *Dictionary
	var off uint
	var count uint16
	var selector byte

	if isAnnotation {
		if e.annot == nil {
			return resolvedProperty{}, false, nil
		}
		lookupDict = e.annot
		off = rootOffset
		count = childCountUnbounded
		selector = 1
	} else {
		lookupDict = dict
		off = uint(entry.ChildOffset)
		count = entry.ChildCount
		selector = 0
	}

	child, ok, err := lookupDict.FindByName(off, count, m.Key)
	if err != nil || !ok {
		return resolvedProperty{}, false, err
	}

	return resolvedProperty{child: child, selector: selector, dict: lookupDict, val: m.Value}, true, nil
}

// encodeProperty emits one property's SFL header followed by its payload,
// buffering the payload first so its length is known before the header is
// written.
func (e *Encoder) encodeProperty(dst *Buffer, entry Entry, dict *Dictionary, selector byte, value bejvalue.Value, depth uint) error {
	scratch := newScratchBuffer()
	defer scratch.release()

	if err := e.encodeValue(scratch, entry, dict, selector, value, depth); err != nil {
		return err
	}

	if err := checkLimit(uint(len(scratch.Bytes)), e.limits.MaxPayloadLen, ErrPayloadTooLarge); err != nil {
		return err
	}

	writeSFL(dst, entry.Sequence, selector, entry.Format, uint64(len(scratch.Bytes)))
	dst.AppendBytes(scratch.Bytes)
	return nil
}

// encodeValue dispatches on entry.Format to produce one payload.
func (e *Encoder) encodeValue(dst *Buffer, entry Entry, dict *Dictionary, selector byte, value bejvalue.Value, depth uint) error {
	switch entry.Format {
	case FormatSet:
		return e.encodeSet(dst, entry, dict, value, depth+1)

	case FormatArray:
		return e.encodeArray(dst, entry, dict, selector, value, depth+1)

	case FormatNull:
		if !value.IsNull() {
			return ErrTypeMismatch
		}
		return nil

	case FormatInteger:
		if value.Kind() != bejvalue.KindNumber {
			return ErrTypeMismatch
		}
		dst.AppendSignedMinimal(int64(value.Number()))
		return nil

	case FormatString:
		if value.Kind() != bejvalue.KindString {
			return ErrTypeMismatch
		}
		s := value.String()
		dst.AppendNNINT(uint64(len(s) + 1))
		dst.AppendBytes([]byte(s))
		dst.AppendU8(0)
		return nil

	case FormatBoolean:
		if value.Kind() != bejvalue.KindBool {
			return ErrTypeMismatch
		}
		dst.AppendNNINT(1)
		if value.Bool() {
			dst.AppendU8(1)
		} else {
			dst.AppendU8(0)
		}
		return nil

	case FormatEnum:
		if value.Kind() != bejvalue.KindString {
			return ErrTypeMismatch
		}
		child, ok, err := dict.FindByName(uint(entry.ChildOffset), entry.ChildCount, value.String())
		if err != nil {
			return err
		}
		if !ok {
			return ErrEnumNotFound
		}
		dst.AppendUnsignedMinimal(child.Sequence)
		return nil

	default:
		return ErrUnknownFormat
	}
}

// encodeArray obtains the sole element archetype from the appropriate
// dictionary, emits NNINT(elementCount), then each element using a
// synthesised child entry whose sequence is the element's zero-based
// index.
func (e *Encoder) encodeArray(dst *Buffer, entry Entry, dict *Dictionary, selector byte, value bejvalue.Value, depth uint) error {
	if value.Kind() != bejvalue.KindArray {
		return ErrTypeMismatch
	}

	elements := value.Array()
	if err := checkLimit(uint(len(elements)), e.limits.MaxPropertyCount, ErrTooManyProperty); err != nil {
		return err
	}

	archetype, err := dict.Archetype(entry)
	if err != nil {
		return err
	}

	dst.AppendNNINT(uint64(len(elements)))
	for i, el := range elements {
		elEntry := archetype
		elEntry.Sequence = uint16(i)

		if err := e.encodeProperty(dst, elEntry, dict, selector, el, depth); err != nil {
			return err
		}
	}
	return nil
}
