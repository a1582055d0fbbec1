package collection

// Count counts the elements of a B+Tree whose bkey falls in a range.
//
// Wire format: bop count <key> <bkey or from..to>\r\n
type Count struct {
	key   string
	bkeys BKeyRange

	args string
}

// NewCount counts the elements in the inclusive range [from, to].
func NewCount(key string, from, to BKey) *Count {
	return &Count{key: key, bkeys: BKeyRange{From: from, To: to}}
}

func (c *Count) CommandName() CmdType { return CmdBopCount }
func (c *Count) Key() string          { return c.key }
func (c *Count) ItemCount() int       { return 1 }
func (c *Count) descriptor() *descriptor {
	return countDescriptor
}

// StringifyArguments returns the rendered bkey range.
func (c *Count) StringifyArguments() string {
	if c.args == "" {
		c.args = c.bkeys.String()
	}
	return c.args
}

func (c *Count) Validate(limits Limits) error {
	if err := limits.ValidateKey(c.key); err != nil {
		return err
	}
	if !c.bkeys.From.IsValid() || !c.bkeys.To.IsValid() {
		return &PreconditionError{Message: "bkey range is not set"}
	}
	return nil
}

func (c *Count) RequestSize() int {
	return len(CmdBopCount) + 1 + len(c.key) + 1 + len(c.StringifyArguments()) + len(CRLF)
}

func (c *Count) AppendRequest(buf []byte) []byte {
	buf = appendHead(buf, CmdBopCount, c.key)
	buf = append(buf, ' ')
	buf = append(buf, c.StringifyArguments()...)
	return append(buf, CRLF...)
}
