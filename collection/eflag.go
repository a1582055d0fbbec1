package collection

import "strconv"

// BitwiseOp is a bitwise operator applied between an existing element flag
// and a literal.
type BitwiseOp uint8

const (
	BitwiseAND BitwiseOp = iota + 1
	BitwiseOR
	BitwiseXOR
)

// Token returns the wire token of op.
func (op BitwiseOp) Token() string {
	switch op {
	case BitwiseAND:
		return "&"
	case BitwiseOR:
		return "|"
	case BitwiseXOR:
		return "^"
	default:
		return ""
	}
}

// validateEFlag checks an element flag literal.
func validateEFlag(flag []byte) error {
	if len(flag) == 0 {
		return &PreconditionError{Message: "element flag is empty"}
	}
	if len(flag) > MaxEFlagLength {
		return &PreconditionError{Message: "element flag exceeds " + strconv.Itoa(MaxEFlagLength) + " bytes"}
	}
	return nil
}

// FlagUpdateKind tells which variant an ElementFlagUpdate holds.
type FlagUpdateKind uint8

const (
	// FlagReplace replaces the element flag with a literal
	FlagReplace FlagUpdateKind = iota + 1

	// FlagBitwise applies a bitwise operator at a byte offset of the element flag
	FlagBitwise

	// FlagReset removes the element flag
	FlagReset
)

// ElementFlagUpdate describes how a piped update changes an element flag.
// Build it with ReplaceFlag, BitwiseFlag or ResetFlag.
type ElementFlagUpdate struct {
	kind   FlagUpdateKind
	offset int
	op     BitwiseOp
	value  []byte
}

// ReplaceFlag replaces the element flag with value.
func ReplaceFlag(value []byte) (ElementFlagUpdate, error) {
	if err := validateEFlag(value); err != nil {
		return ElementFlagUpdate{}, err
	}
	return ElementFlagUpdate{kind: FlagReplace, value: append([]byte(nil), value...)}, nil
}

// BitwiseFlag applies op between the flag bytes starting at offset and value.
func BitwiseFlag(offset int, op BitwiseOp, value []byte) (ElementFlagUpdate, error) {
	if offset < 0 || offset >= MaxEFlagLength {
		return ElementFlagUpdate{}, &PreconditionError{Message: "element flag offset out of range"}
	}
	if op.Token() == "" {
		return ElementFlagUpdate{}, &PreconditionError{Message: "unknown bitwise operator"}
	}
	if err := validateEFlag(value); err != nil {
		return ElementFlagUpdate{}, err
	}
	return ElementFlagUpdate{kind: FlagBitwise, offset: offset, op: op, value: append([]byte(nil), value...)}, nil
}

// ResetFlag removes the element flag.
func ResetFlag() ElementFlagUpdate {
	return ElementFlagUpdate{kind: FlagReset}
}

// Kind returns the variant of u.
func (u ElementFlagUpdate) Kind() FlagUpdateKind {
	return u.kind
}

// String renders u in wire form:
//   - replace: 0x<value>
//   - bitwise: <offset> <op> 0x<value>
//   - reset:   0
func (u ElementFlagUpdate) String() string {
	switch u.kind {
	case FlagReplace:
		return hexToken(u.value)
	case FlagBitwise:
		return strconv.Itoa(u.offset) + Space + u.op.Token() + Space + hexToken(u.value)
	case FlagReset:
		return "0"
	default:
		return ""
	}
}
