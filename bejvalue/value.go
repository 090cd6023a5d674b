// Package bejvalue provides the JSON value tree the bej codec encodes
// from and decodes into: type tag discovery, string/bool/number reads,
// array iteration, and ordered object iteration.
package bejvalue

// Kind tags the dynamic type a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Member is one (key, value) pair of an Object, kept in a slice rather
// than a map so insertion order survives encode: JSON object property
// order is preserved.
type Member struct {
	Key   string
	Value Value
}

// Value is a tagged JSON tree node. Each node owns its children;
// freeing a Value frees its whole subtree (there are no back-references).
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	str     string
	array   []Value
	object  []Member
}

// Null returns the JSON null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Number wraps a float64, BEJ/JSON's sole numeric representation.
func Number(n float64) Value { return Value{kind: KindNumber, number: n} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Array wraps a slice of values, preserving index order.
func Array(items []Value) Value { return Value{kind: KindArray, array: items} }

// Object wraps ordered members.
func Object(members []Member) Value { return Value{kind: KindObject, object: members} }

// NewObject starts an empty object a caller appends members to with Set.
func NewObject() Value { return Value{kind: KindObject} }

// Kind reports v's dynamic type.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns v's boolean value; only meaningful if Kind() == KindBool.
func (v Value) Bool() bool { return v.boolean }

// Number returns v's numeric value; only meaningful if Kind() == KindNumber.
func (v Value) Number() float64 { return v.number }

// String returns v's string value; only meaningful if Kind() == KindString.
func (v Value) String() string { return v.str }

// Array returns v's elements in index order; only meaningful if Kind() ==
// KindArray.
func (v Value) Array() []Value { return v.array }

// Len returns the element count of an array, or 0 for any other kind.
func (v Value) Len() int { return len(v.array) }

// Members returns v's (key, value) pairs in wire/insertion order; only
// meaningful if Kind() == KindObject.
func (v Value) Members() []Member { return v.object }

// Get returns the first member value matching key, and whether it was
// found. Linear scan: objects in this domain carry tens of properties,
// not thousands.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.object {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Set appends or replaces a member, preserving the position of an
// existing key and the insertion order of a new one.
func (v *Value) Set(key string, val Value) {
	for i := range v.object {
		if v.object[i].Key == key {
			v.object[i].Value = val
			return
		}
	}
	v.kind = KindObject
	v.object = append(v.object, Member{Key: key, Value: val})
}

// Append adds an element to an array value, converting a zero Value into
// an empty array first.
func (v *Value) Append(item Value) {
	v.kind = KindArray
	v.array = append(v.array, item)
}

// Equal performs the deep comparison a codec round trip requires: object
// keys compare order-insensitively, array elements compare
// order-sensitively.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolean == b.boolean
	case KindNumber:
		return a.number == b.number
	case KindString:
		return a.str == b.str
	case KindArray:
		if len(a.array) != len(b.array) {
			return false
		}
		for i := range a.array {
			if !Equal(a.array[i], b.array[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.object) != len(b.object) {
			return false
		}
		for _, am := range a.object {
			bv, ok := b.Get(am.Key)
			if !ok || !Equal(am.Value, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
