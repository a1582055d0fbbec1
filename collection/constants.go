package collection

// CmdType is a collection command verb, including its collection prefix.
type CmdType string

// Protocol delimiters
const (
	// CRLF is the line terminator for the ASCII protocol
	CRLF = "\r\n"

	// Space separates command tokens
	Space = " "
)

// Command verbs
const (
	// CmdSopExist checks whether a value is a member of a set.
	//
	// Wire format: sop exist <key> <bytes>\r\n<data>\r\n
	//
	// Response statuses: EXIST, NOT_EXIST, NOT_FOUND, TYPE_MISMATCH, UNREADABLE
	CmdSopExist CmdType = "sop exist"

	// CmdBopPosition asks for the rank of a bkey within a B+Tree.
	//
	// Wire format: bop position <key> <bkey> <order>\r\n
	//
	// Response: POSITION=<position>\r\n END\r\n, or one of
	// NOT_FOUND, UNREADABLE, BKEY_MISMATCH, TYPE_MISMATCH, NOT_FOUND_ELEMENT
	CmdBopPosition CmdType = "bop position"

	// CmdBopCount counts the elements of a B+Tree within a bkey range.
	//
	// Wire format: bop count <key> <bkey or bkey range>\r\n
	//
	// Response: COUNT=<count>\r\n, or one of
	// NOT_FOUND, TYPE_MISMATCH, BKEY_MISMATCH, UNREADABLE
	CmdBopCount CmdType = "bop count"

	// CmdBopInsert inserts an element into a B+Tree.
	//
	// Wire format: bop insert <key> <bkey> [<eflag>] <bytes> [create <attributes>] [pipe]\r\n<data>\r\n
	CmdBopInsert CmdType = "bop insert"

	// CmdSopInsert inserts a value into a set.
	//
	// Wire format: sop insert <key> <bytes> [create <attributes>] [pipe]\r\n<data>\r\n
	CmdSopInsert CmdType = "sop insert"

	// CmdLopInsert inserts a value into a list at an index.
	//
	// Wire format: lop insert <key> <index> <bytes> [create <attributes>] [pipe]\r\n<data>\r\n
	CmdLopInsert CmdType = "lop insert"

	// CmdBopUpdate updates the value and/or element flag of a B+Tree element.
	//
	// Wire format: bop update <key> <bkey> [<eflag-update>] <bytes> [pipe]\r\n[<data>\r\n]
	//
	// A length of -1 keeps the stored value and carries no data line.
	CmdBopUpdate CmdType = "bop update"

	// CmdBopDelete deletes a B+Tree element.
	//
	// Wire format: bop delete <key> <bkey> [drop] [pipe]\r\n
	CmdBopDelete CmdType = "bop delete"
)

// Request tokens
const (
	// TokenPipe marks every line of a piped request except the last
	TokenPipe = "pipe"

	// TokenCreate introduces creation attributes on insert
	TokenCreate = "create"

	// TokenDrop asks the server to drop the collection once it becomes empty
	TokenDrop = "drop"

	// TokenUnreadable creates the collection in unreadable state
	TokenUnreadable = "unreadable"

	// TokenRange separates the bounds of a bkey range
	TokenRange = ".."

	// keepValue is the update length that leaves the stored value unchanged
	keepValue = "-1"
)

// Response line prefixes that carry a value or a free-form message.
const (
	// PrefixPosition precedes the position in a bop position response
	PrefixPosition = "POSITION="

	// PrefixCount precedes the count in a bop count response
	PrefixCount = "COUNT="

	// PrefixResponse is the optional header of a piped response: RESPONSE <count>
	PrefixResponse = "RESPONSE "

	// PrefixPipeError terminates a piped response the server gave up on
	PrefixPipeError = "PIPE_ERROR"

	// PrefixClientError indicates the server rejected the request syntax
	PrefixClientError = "CLIENT_ERROR"

	// PrefixServerError indicates a server-side failure
	PrefixServerError = "SERVER_ERROR"

	// TokenEnd terminates multi-line responses
	TokenEnd = "END"
)

// Protocol limits fixed by the server.
const (
	// MaxBKeyLength is the maximum length in bytes of a byte-array bkey
	MaxBKeyLength = 31

	// MaxEFlagLength is the maximum length in bytes of an element flag
	MaxEFlagLength = 31

	// MinKeyLength is the minimum key length in bytes
	MinKeyLength = 1

	// MaxLineLength bounds a response line, terminator included
	MaxLineLength = 64 << 10
)
