package collection

// FindPosition asks for the 0-based rank of a bkey inside a B+Tree under
// the given order.
//
// Wire format: bop position <key> <bkey> <asc|desc>\r\n
type FindPosition struct {
	key   string
	bkey  BKey
	order Order

	args string
}

// NewFindPosition builds a position query.
func NewFindPosition(key string, bkey BKey, order Order) *FindPosition {
	return &FindPosition{key: key, bkey: bkey, order: order}
}

func (c *FindPosition) CommandName() CmdType { return CmdBopPosition }
func (c *FindPosition) Key() string          { return c.key }
func (c *FindPosition) ItemCount() int       { return 1 }
func (c *FindPosition) descriptor() *descriptor {
	return positionDescriptor
}

// StringifyArguments returns "<bkey> <order>".
func (c *FindPosition) StringifyArguments() string {
	if c.args == "" {
		c.args = c.bkey.String() + Space + c.order.Token()
	}
	return c.args
}

func (c *FindPosition) Validate(limits Limits) error {
	if err := limits.ValidateKey(c.key); err != nil {
		return err
	}
	if !c.bkey.IsValid() {
		return &PreconditionError{Message: "bkey is not set"}
	}
	if c.order != Ascending && c.order != Descending {
		return &PreconditionError{Message: "unknown order"}
	}
	return nil
}

func (c *FindPosition) RequestSize() int {
	return len(CmdBopPosition) + 1 + len(c.key) + 1 + len(c.StringifyArguments()) + len(CRLF)
}

func (c *FindPosition) AppendRequest(buf []byte) []byte {
	buf = appendHead(buf, CmdBopPosition, c.key)
	buf = append(buf, ' ')
	buf = append(buf, c.StringifyArguments()...)
	return append(buf, CRLF...)
}
