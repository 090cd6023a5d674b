package bej

import "errors"

// Sentinel errors, grouped by kind: framing, schema mismatch, type
// mismatch, dictionary corruption, resource. Callers use errors.Is to
// test for a specific kind; fmt.Errorf("...: %w", ...) adds call-site
// context without losing the sentinel.
var (
	// Framing
	ErrFramingBadMagic  = errors.New("bej: bad file header magic")
	ErrFramingShortRead = errors.New("bej: short read")
	ErrFramingOverrun   = errors.New("bej: payload length overrun")
	ErrNNINTTooWide     = errors.New("bej: nnint length byte exceeds 8")
	ErrNNINTZeroLength  = errors.New("bej: nnint has zero length prefix")

	// Schema mismatch
	ErrSequenceNotFound = errors.New("bej: sequence number not found in dictionary subset")
	ErrNameNotFound     = errors.New("bej: property name not found in dictionary")
	ErrEnumNotFound     = errors.New("bej: enum value not found in dictionary")
	ErrNoArchetype      = errors.New("bej: array entry has no element archetype")

	// Type mismatch
	ErrTypeMismatch   = errors.New("bej: json value type disagrees with dictionary format")
	ErrNotObject      = errors.New("bej: root json value is not an object")
	ErrUnknownFormat  = errors.New("bej: unsupported bej format code")
	ErrWrongOuterForm = errors.New("bej: outer SFL is not a SET")

	// Dictionary corruption
	ErrDictTooSmall    = errors.New("bej: dictionary buffer smaller than header")
	ErrDictOutOfBounds = errors.New("bej: dictionary entry or child range out of bounds")

	// Resource
	ErrNestingTooDeep  = errors.New("bej: nesting depth exceeds configured limit")
	ErrPayloadTooLarge = errors.New("bej: payload length exceeds configured limit")
	ErrTooManyProperty = errors.New("bej: property count exceeds configured limit")
)
