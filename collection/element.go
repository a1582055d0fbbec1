package collection

import "strconv"

// Element is one item of a piped B+Tree request.
//
// Insert uses BKey, Value and the optional EFlag.
// Update uses BKey, the optional Value (nil keeps the stored value) and the
// optional FlagUpdate.
// Elements are owned by the request that carries them.
type Element struct {
	BKey       BKey
	Value      []byte
	EFlag      []byte
	FlagUpdate *ElementFlagUpdate
}

// Attributes are the collection attributes used when an insert creates the
// collection.
//
// Wire format: create <flags> <exptime> <maxcount> [<ovflaction>] [unreadable]
type Attributes struct {
	Flags          uint32
	ExpireTime     int
	MaxCount       int64
	OverflowAction string // e.g. "error", "head_trim", "smallest_trim"; empty for server default
	Unreadable     bool
}

// appendTo appends " create <attributes>" to buf.
func (a *Attributes) appendTo(buf []byte) []byte {
	buf = append(buf, ' ')
	buf = append(buf, TokenCreate...)
	buf = append(buf, ' ')
	buf = strconv.AppendUint(buf, uint64(a.Flags), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(a.ExpireTime), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, a.MaxCount, 10)
	if a.OverflowAction != "" {
		buf = append(buf, ' ')
		buf = append(buf, a.OverflowAction...)
	}
	if a.Unreadable {
		buf = append(buf, ' ')
		buf = append(buf, TokenUnreadable...)
	}
	return buf
}
