package collection

// Shape is the result shape of a command family.
type Shape uint8

const (
	// ShapeStatus delivers a single status (existence check)
	ShapeStatus Shape = iota + 1

	// ShapeValue delivers a status and a non-negative integer (position, count)
	ShapeValue

	// ShapeBulk delivers an index to status map of failed items (piped commands)
	ShapeBulk
)

func (s Shape) String() string {
	switch s {
	case ShapeStatus:
		return "status"
	case ShapeValue:
		return "value"
	case ShapeBulk:
		return "bulk"
	default:
		return "invalid"
	}
}

// descriptor is the data that drives the operation state machine for one
// command family.
type descriptor struct {
	shape Shape

	// accepts is the ordered status vocabulary for a single outcome (status and
	// value shapes) or for each item line (bulk shape).
	accepts []ResponseCode

	// valuePrefix precedes the integer of a value line. A bare integer is
	// accepted too.
	valuePrefix string

	// valueThenEnd is set when a value line is followed by END.
	valueThenEnd bool

	// wholeKey lists the codes a server may send once for all items of a
	// piped request when the key itself cannot be operated on.
	wholeKey []ResponseCode
}

var (
	existDescriptor = &descriptor{
		shape: ShapeStatus,
		accepts: []ResponseCode{
			ResponseExist, ResponseNotExist, ResponseNotFound,
			ResponseTypeMismatch, ResponseUnreadable,
		},
	}

	positionDescriptor = &descriptor{
		shape:        ShapeValue,
		valuePrefix:  PrefixPosition,
		valueThenEnd: true,
		accepts: []ResponseCode{
			ResponseNotFound, ResponseUnreadable, ResponseBKeyMismatch,
			ResponseTypeMismatch, ResponseNotFoundElement,
		},
	}

	countDescriptor = &descriptor{
		shape:       ShapeValue,
		valuePrefix: PrefixCount,
		accepts: []ResponseCode{
			ResponseNotFound, ResponseTypeMismatch, ResponseBKeyMismatch,
			ResponseUnreadable,
		},
	}

	bopInsertDescriptor = &descriptor{
		shape: ShapeBulk,
		accepts: []ResponseCode{
			ResponseStored, ResponseCreatedStored, ResponseNotFound,
			ResponseTypeMismatch, ResponseBKeyMismatch, ResponseOverflowed,
			ResponseOutOfRange, ResponseElementExists, ResponseNotSupported,
		},
		wholeKey: []ResponseCode{ResponseNotFound, ResponseTypeMismatch},
	}

	sopInsertDescriptor = &descriptor{
		shape: ShapeBulk,
		accepts: []ResponseCode{
			ResponseStored, ResponseCreatedStored, ResponseNotFound,
			ResponseTypeMismatch, ResponseOverflowed, ResponseElementExists,
			ResponseNotSupported,
		},
		wholeKey: []ResponseCode{ResponseNotFound, ResponseTypeMismatch},
	}

	lopInsertDescriptor = &descriptor{
		shape: ShapeBulk,
		accepts: []ResponseCode{
			ResponseStored, ResponseCreatedStored, ResponseNotFound,
			ResponseTypeMismatch, ResponseOverflowed, ResponseOutOfRange,
			ResponseNotSupported,
		},
		wholeKey: []ResponseCode{ResponseNotFound, ResponseTypeMismatch},
	}

	bopUpdateDescriptor = &descriptor{
		shape: ShapeBulk,
		accepts: []ResponseCode{
			ResponseUpdated, ResponseNotFound, ResponseNotFoundElement,
			ResponseNothingToUpdate, ResponseTypeMismatch, ResponseBKeyMismatch,
			ResponseEFlagMismatch, ResponseNotSupported,
		},
		wholeKey: []ResponseCode{ResponseNotFound, ResponseTypeMismatch},
	}

	bopDeleteDescriptor = &descriptor{
		shape: ShapeBulk,
		accepts: []ResponseCode{
			ResponseDeleted, ResponseDeletedDropped, ResponseNotFound,
			ResponseNotFoundElement, ResponseTypeMismatch, ResponseBKeyMismatch,
		},
		wholeKey: []ResponseCode{ResponseNotFound, ResponseTypeMismatch},
	}
)

// isWholeKey reports whether code may stand for every item of a piped request.
func (d *descriptor) isWholeKey(code ResponseCode) bool {
	for _, c := range d.wholeKey {
		if c == code {
			return true
		}
	}
	return false
}

// Command is a rendered collection request. The set of implementations is
// closed: Exist, FindPosition, Count, PipedInsert, PipedUpdate and PipedDelete.
//
// Commands are not safe for concurrent use; they are owned by the caller
// until handed to NewOperation.
type Command interface {
	// CommandName returns the command verb, e.g. "bop position".
	CommandName() CmdType

	// Key returns the item key the command operates on.
	Key() string

	// ItemCount returns the number of items: 1 for single-outcome commands.
	ItemCount() int

	// RequestSize returns the exact size of the rendered request in bytes.
	RequestSize() int

	// Validate checks the command against limits. It is called by NewOperation.
	Validate(limits Limits) error

	// AppendRequest appends the full wire request to buf.
	AppendRequest(buf []byte) []byte

	descriptor() *descriptor
}

// appendHead appends "<verb> <key>" to buf.
func appendHead(buf []byte, verb CmdType, key string) []byte {
	buf = append(buf, verb...)
	buf = append(buf, ' ')
	buf = append(buf, key...)
	return buf
}

// appendData appends "<data>\r\n" to buf.
func appendData(buf []byte, data []byte) []byte {
	buf = append(buf, data...)
	buf = append(buf, CRLF...)
	return buf
}
