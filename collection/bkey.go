package collection

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// BKeyKind tells which variant a BKey holds.
type BKeyKind uint8

const (
	// BKeyUint is a 64-bit unsigned integer bkey
	BKeyUint BKeyKind = iota + 1

	// BKeyBytes is a byte-array bkey of 1 to MaxBKeyLength bytes
	BKeyBytes
)

func (k BKeyKind) String() string {
	switch k {
	case BKeyUint:
		return "uint"
	case BKeyBytes:
		return "bytes"
	default:
		return "invalid"
	}
}

// BKey is the key of an element inside a B+Tree: either an unsigned integer
// or a byte array. The zero value is not a valid BKey.
//
// A BKey is immutable once constructed. All elements of one B+Tree share the
// same variant; the server answers BKEY_MISMATCH otherwise.
type BKey struct {
	kind  BKeyKind
	num   uint64
	bytes []byte
	text  string
}

// UintBKey returns an integer bkey.
func UintBKey(n uint64) BKey {
	return BKey{kind: BKeyUint, num: n, text: strconv.FormatUint(n, 10)}
}

// BytesBKey returns a byte-array bkey. It fails when b is empty or longer
// than MaxBKeyLength.
func BytesBKey(b []byte) (BKey, error) {
	if len(b) == 0 {
		return BKey{}, &PreconditionError{Message: "byte-array bkey is empty"}
	}
	if len(b) > MaxBKeyLength {
		return BKey{}, &PreconditionError{Message: "byte-array bkey exceeds " + strconv.Itoa(MaxBKeyLength) + " bytes"}
	}

	owned := append([]byte(nil), b...)
	return BKey{kind: BKeyBytes, bytes: owned, text: hexToken(owned)}, nil
}

// MustBytesBKey is like BytesBKey but panics on invalid input.
// Intended for constants and tests.
func MustBytesBKey(b []byte) BKey {
	k, err := BytesBKey(b)
	if err != nil {
		panic(err)
	}
	return k
}

// ParseBKey parses the wire form of a bkey: decimal digits, or 0x followed by
// an even number of hex digits.
func ParseBKey(s string) (BKey, error) {
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		b, err := hex.DecodeString(rest)
		if err != nil {
			return BKey{}, &PreconditionError{Message: "invalid hex bkey " + strconv.Quote(s)}
		}
		return BytesBKey(b)
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return BKey{}, &PreconditionError{Message: "invalid bkey " + strconv.Quote(s)}
	}
	return UintBKey(n), nil
}

// Kind returns the variant of k.
func (k BKey) Kind() BKeyKind {
	return k.kind
}

// IsValid reports whether k was built by one of the constructors.
func (k BKey) IsValid() bool {
	return k.kind == BKeyUint || k.kind == BKeyBytes
}

// Uint returns the integer value of an integer bkey.
func (k BKey) Uint() (uint64, bool) {
	return k.num, k.kind == BKeyUint
}

// Bytes returns a copy of the bytes of a byte-array bkey.
func (k BKey) Bytes() ([]byte, bool) {
	if k.kind != BKeyBytes {
		return nil, false
	}
	return append([]byte(nil), k.bytes...), true
}

// String renders k in wire form. The text is computed at construction.
func (k BKey) String() string {
	return k.text
}

// Equal reports whether both bkeys have the same variant and value.
func (k BKey) Equal(o BKey) bool {
	return k.kind == o.kind && k.text == o.text
}

// BKeyRange is an inclusive bkey range, rendered as <from>..<to>.
// A range with equal bounds renders as a single bkey.
type BKeyRange struct {
	From BKey
	To   BKey
}

func (r BKeyRange) String() string {
	if r.From.Equal(r.To) {
		return r.From.String()
	}
	return r.From.String() + TokenRange + r.To.String()
}

// hexToken renders b as 0x followed by uppercase hex digits.
func hexToken(b []byte) string {
	const digits = "0123456789ABCDEF"

	buf := make([]byte, 2+len(b)*2)
	buf[0], buf[1] = '0', 'x'
	for i, c := range b {
		buf[2+i*2] = digits[c>>4]
		buf[3+i*2] = digits[c&0x0f]
	}
	return string(buf)
}
