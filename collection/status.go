package collection

import "strings"

// ResponseCode is the semantic code of a collection response.
type ResponseCode uint8

// Response codes. The String form of a server-origin code is its wire token.
const (
	ResponseUndefined ResponseCode = iota

	// Membership / existence
	ResponseExist
	ResponseNotExist

	// Key and element lookup
	ResponseNotFound
	ResponseNotFoundElement
	ResponseTypeMismatch
	ResponseBKeyMismatch
	ResponseEFlagMismatch
	ResponseUnreadable

	// Terminators
	ResponseEnd

	// Mutations
	ResponseStored
	ResponseCreatedStored
	ResponseUpdated
	ResponseDeleted
	ResponseDeletedDropped
	ResponseNothingToUpdate
	ResponseElementExists
	ResponseOverflowed
	ResponseOutOfRange
	ResponseNotSupported

	// Server-side failure reported with a free-form message
	ResponseServerError

	// Client-side outcomes, never sent by a server
	ResponseCanceled
	ResponseProtocolViolation
)

var responseTokens = [...]string{
	ResponseUndefined:         "UNDEFINED",
	ResponseExist:             "EXIST",
	ResponseNotExist:          "NOT_EXIST",
	ResponseNotFound:          "NOT_FOUND",
	ResponseNotFoundElement:   "NOT_FOUND_ELEMENT",
	ResponseTypeMismatch:      "TYPE_MISMATCH",
	ResponseBKeyMismatch:      "BKEY_MISMATCH",
	ResponseEFlagMismatch:     "EFLAG_MISMATCH",
	ResponseUnreadable:        "UNREADABLE",
	ResponseEnd:               "END",
	ResponseStored:            "STORED",
	ResponseCreatedStored:     "CREATED_STORED",
	ResponseUpdated:           "UPDATED",
	ResponseDeleted:           "DELETED",
	ResponseDeletedDropped:    "DELETED_DROPPED",
	ResponseNothingToUpdate:   "NOTHING_TO_UPDATE",
	ResponseElementExists:     "ELEMENT_EXISTS",
	ResponseOverflowed:        "OVERFLOWED",
	ResponseOutOfRange:        "OUT_OF_RANGE",
	ResponseNotSupported:      "NOT_SUPPORTED",
	ResponseServerError:       "SERVER_ERROR",
	ResponseCanceled:          "CANCELED",
	ResponseProtocolViolation: "PROTOCOL_VIOLATION",
}

func (c ResponseCode) String() string {
	if int(c) < len(responseTokens) {
		return responseTokens[c]
	}
	return responseTokens[ResponseUndefined]
}

// Status is the decoded outcome of a response line.
//
// Server-reported failures (NOT_FOUND, TYPE_MISMATCH, ...) are statuses with
// Success false, not errors: the caller inspects Code to decide what to do.
type Status struct {
	Success bool
	Message string
	Code    ResponseCode
}

func (s Status) String() string {
	return s.Message
}

// statuses is the read-only table of server-origin statuses, indexed by code.
// It is filled once at package initialisation and never written afterwards.
var statuses = func() [ResponseCanceled + 1]Status {
	var t [ResponseCanceled + 1]Status

	success := map[ResponseCode]bool{
		ResponseExist:          true,
		ResponseNotExist:       true,
		ResponseEnd:            true,
		ResponseStored:         true,
		ResponseCreatedStored:  true,
		ResponseUpdated:        true,
		ResponseDeleted:        true,
		ResponseDeletedDropped: true,
	}

	for code := ResponseExist; code < ResponseCanceled; code++ {
		t[code] = Status{Success: success[code], Message: code.String(), Code: code}
	}
	t[ResponseCanceled] = Status{Success: false, Message: "collection canceled", Code: ResponseCanceled}

	return t
}()

// StatusOf returns the table entry for a server-origin code or the
// canceled status. Other codes yield an undefined failure.
func StatusOf(code ResponseCode) Status {
	if code > ResponseUndefined && int(code) < len(statuses) {
		return statuses[code]
	}
	return Status{Success: false, Message: ResponseUndefined.String(), Code: ResponseUndefined}
}

// CanceledStatus is delivered to operations that were cancelled.
func CanceledStatus() Status {
	return statuses[ResponseCanceled]
}

// protocolViolation builds the status delivered along with a ProtocolError.
func protocolViolation(err *ProtocolError) Status {
	return Status{Success: false, Message: err.Error(), Code: ResponseProtocolViolation}
}

// MatchStatus matches line against the candidate codes in order and returns
// the first entry whose token equals line exactly.
//
// A SERVER_ERROR line always matches and keeps its message.
// ok is false for any other line.
func MatchStatus(line string, candidates ...ResponseCode) (Status, bool) {
	for _, code := range candidates {
		if code.String() == line {
			return StatusOf(code), true
		}
	}

	if line == PrefixServerError || strings.HasPrefix(line, PrefixServerError+Space) {
		return Status{Success: false, Message: line, Code: ResponseServerError}, true
	}

	return Status{}, false
}
