package collection

import "strconv"

// Exist is the membership check of a value in a set.
//
// Wire format: sop exist <key> [<subkey>] <bytes>\r\n<data>\r\n
type Exist struct {
	key    string
	subkey string
	data   []byte
}

// NewSetExist checks whether value is a member of the set at key.
func NewSetExist(key string, value []byte) *Exist {
	return &Exist{key: key, data: value}
}

// NewExist is NewSetExist with a subkey identifying the element inside the
// collection. subkey may be empty.
func NewExist(key, subkey string, data []byte) *Exist {
	return &Exist{key: key, subkey: subkey, data: data}
}

func (c *Exist) CommandName() CmdType { return CmdSopExist }
func (c *Exist) Key() string          { return c.key }
func (c *Exist) ItemCount() int       { return 1 }
func (c *Exist) descriptor() *descriptor {
	return existDescriptor
}

// StringifyArguments returns the arguments following the data length.
// A set membership check has none.
func (c *Exist) StringifyArguments() string {
	return ""
}

func (c *Exist) Validate(limits Limits) error {
	limits = limits.WithDefaults()

	if err := limits.ValidateKey(c.key); err != nil {
		return err
	}
	if c.subkey != "" {
		if err := limits.ValidateKey(c.subkey); err != nil {
			return err
		}
	}
	if len(c.data) > limits.MaxValueSize {
		return &PreconditionError{Message: "value exceeds maximum size"}
	}
	return nil
}

func (c *Exist) RequestSize() int {
	n := len(CmdSopExist) + 1 + len(c.key) + 1 + countDigits(len(c.data)) + len(CRLF) + len(c.data) + len(CRLF)
	if c.subkey != "" {
		n += 1 + len(c.subkey)
	}
	return n
}

func (c *Exist) AppendRequest(buf []byte) []byte {
	buf = appendHead(buf, CmdSopExist, c.key)
	if c.subkey != "" {
		buf = append(buf, ' ')
		buf = append(buf, c.subkey...)
	}
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(len(c.data)), 10)
	buf = append(buf, CRLF...)
	return appendData(buf, c.data)
}

// countDigits returns the number of decimal digits of a non-negative n.
func countDigits(n int) int {
	d := 1
	for n >= 10 {
		n /= 10
		d++
	}
	return d
}
