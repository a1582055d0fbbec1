package collection

import "strconv"

// Piped requests send N item lines in one write. Every line but the last
// ends with the pipe token, and the server answers with one status line per
// item followed by END:
//
//	bop insert k1 1 5 pipe\r\nhello\r\n
//	bop insert k1 2 5\r\nworld\r\n
//
//	RESPONSE 2\r\n
//	STORED\r\n
//	ELEMENT_EXISTS\r\n
//	END\r\n

// pipedLines holds the rendered item argument tails and their data blocks.
// A nil data block sends no data line.
type pipedLines struct {
	verb   CmdType
	key    string
	tails  []string
	values [][]byte
}

func (p *pipedLines) size() int {
	n := 0
	last := len(p.tails) - 1
	for i, tail := range p.tails {
		n += len(p.verb) + 1 + len(p.key) + 1 + len(tail)
		if i != last {
			n += 1 + len(TokenPipe)
		}
		n += len(CRLF)
		if p.values[i] != nil {
			n += len(p.values[i]) + len(CRLF)
		}
	}
	return n
}

func (p *pipedLines) appendTo(buf []byte) []byte {
	last := len(p.tails) - 1
	for i, tail := range p.tails {
		buf = appendHead(buf, p.verb, p.key)
		buf = append(buf, ' ')
		buf = append(buf, tail...)
		if i != last {
			buf = append(buf, ' ')
			buf = append(buf, TokenPipe...)
		}
		buf = append(buf, CRLF...)
		if p.values[i] != nil {
			buf = appendData(buf, p.values[i])
		}
	}
	return buf
}

// validatePiped runs the checks shared by all piped requests.
func validatePiped(key string, items, maxItems int, values [][]byte, size int, limits Limits) error {
	if err := limits.ValidateKey(key); err != nil {
		return err
	}
	if items == 0 {
		return &PreconditionError{Message: "piped request has no items"}
	}
	if items > maxItems {
		return &PreconditionError{Message: "piped request has " + strconv.Itoa(items) + " items, maximum is " + strconv.Itoa(maxItems)}
	}
	for i, v := range values {
		if len(v) > limits.MaxValueSize {
			return &PreconditionError{Message: "value of item " + strconv.Itoa(i) + " exceeds maximum size"}
		}
	}
	if size > limits.MaxPipedPayloadSize {
		return &PreconditionError{Message: "piped request exceeds maximum payload size"}
	}
	return nil
}

// PipedInsert inserts many elements into one B+Tree, set or list.
type PipedInsert struct {
	verb     CmdType
	key      string
	index    int
	elements []Element
	attrs    *Attributes

	lines *pipedLines
}

// NewBopPipedInsert inserts elements into the B+Tree at key. When attrs is
// not nil the B+Tree is created if missing.
func NewBopPipedInsert(key string, elements []Element, attrs *Attributes) *PipedInsert {
	return &PipedInsert{verb: CmdBopInsert, key: key, elements: elements, attrs: attrs}
}

// NewSopPipedInsert inserts values into the set at key.
func NewSopPipedInsert(key string, values [][]byte, attrs *Attributes) *PipedInsert {
	return &PipedInsert{verb: CmdSopInsert, key: key, elements: valueElements(values), attrs: attrs}
}

// NewLopPipedInsert inserts values into the list at key, each at index.
// Index -1 appends to the tail, 0 prepends to the head.
func NewLopPipedInsert(key string, index int, values [][]byte, attrs *Attributes) *PipedInsert {
	return &PipedInsert{verb: CmdLopInsert, key: key, index: index, elements: valueElements(values), attrs: attrs}
}

func valueElements(values [][]byte) []Element {
	elements := make([]Element, len(values))
	for i, v := range values {
		elements[i].Value = v
	}
	return elements
}

func (c *PipedInsert) CommandName() CmdType { return c.verb }
func (c *PipedInsert) Key() string          { return c.key }
func (c *PipedInsert) ItemCount() int       { return len(c.elements) }

func (c *PipedInsert) descriptor() *descriptor {
	switch c.verb {
	case CmdSopInsert:
		return sopInsertDescriptor
	case CmdLopInsert:
		return lopInsertDescriptor
	default:
		return bopInsertDescriptor
	}
}

// StringifyArguments returns the argument tail of every item line, without
// the pipe token.
func (c *PipedInsert) StringifyArguments() []string {
	return c.render().tails
}

func (c *PipedInsert) render() *pipedLines {
	if c.lines != nil {
		return c.lines
	}

	var create []byte
	if c.attrs != nil {
		create = c.attrs.appendTo(nil)
	}

	lines := &pipedLines{
		verb:   c.verb,
		key:    c.key,
		tails:  make([]string, len(c.elements)),
		values: make([][]byte, len(c.elements)),
	}

	buf := make([]byte, 0, 64)
	for i, e := range c.elements {
		buf = buf[:0]
		switch c.verb {
		case CmdBopInsert:
			buf = append(buf, e.BKey.String()...)
			buf = append(buf, ' ')
			if len(e.EFlag) > 0 {
				buf = append(buf, hexToken(e.EFlag)...)
				buf = append(buf, ' ')
			}
		case CmdLopInsert:
			buf = strconv.AppendInt(buf, int64(c.index), 10)
			buf = append(buf, ' ')
		}
		buf = strconv.AppendInt(buf, int64(len(e.Value)), 10)
		buf = append(buf, create...)

		lines.tails[i] = string(buf)
		lines.values[i] = e.Value
		if lines.values[i] == nil {
			lines.values[i] = []byte{}
		}
	}

	c.lines = lines
	return lines
}

func (c *PipedInsert) Validate(limits Limits) error {
	limits = limits.WithDefaults()

	if c.verb == CmdBopInsert {
		for i, e := range c.elements {
			if !e.BKey.IsValid() {
				return &PreconditionError{Message: "bkey of item " + strconv.Itoa(i) + " is not set"}
			}
			if len(e.EFlag) > 0 {
				if err := validateEFlag(e.EFlag); err != nil {
					return err
				}
			}
		}
	}

	lines := c.render()
	return validatePiped(c.key, len(c.elements), limits.MaxPipedItemCount, lines.values, lines.size(), limits)
}

func (c *PipedInsert) RequestSize() int {
	return c.render().size()
}

func (c *PipedInsert) AppendRequest(buf []byte) []byte {
	return c.render().appendTo(buf)
}

// PipedUpdate updates the value and/or element flag of many B+Tree elements.
//
// An element with a nil Value keeps its stored value and is sent with a
// length of -1 and no data line; an element with a nil FlagUpdate keeps its
// element flag. At least one of them must be set.
type PipedUpdate struct {
	key      string
	elements []Element

	lines *pipedLines
}

// NewBopPipedUpdate updates elements of the B+Tree at key.
func NewBopPipedUpdate(key string, elements []Element) *PipedUpdate {
	return &PipedUpdate{key: key, elements: elements}
}

func (c *PipedUpdate) CommandName() CmdType { return CmdBopUpdate }
func (c *PipedUpdate) Key() string          { return c.key }
func (c *PipedUpdate) ItemCount() int       { return len(c.elements) }
func (c *PipedUpdate) descriptor() *descriptor {
	return bopUpdateDescriptor
}

// StringifyArguments returns the argument tail of every item line, without
// the pipe token.
func (c *PipedUpdate) StringifyArguments() []string {
	return c.render().tails
}

func (c *PipedUpdate) render() *pipedLines {
	if c.lines != nil {
		return c.lines
	}

	lines := &pipedLines{
		verb:   CmdBopUpdate,
		key:    c.key,
		tails:  make([]string, len(c.elements)),
		values: make([][]byte, len(c.elements)),
	}

	buf := make([]byte, 0, 64)
	for i, e := range c.elements {
		buf = append(buf[:0], e.BKey.String()...)
		if e.FlagUpdate != nil {
			buf = append(buf, ' ')
			buf = append(buf, e.FlagUpdate.String()...)
		}
		buf = append(buf, ' ')
		if e.Value != nil {
			buf = strconv.AppendInt(buf, int64(len(e.Value)), 10)
		} else {
			buf = append(buf, keepValue...)
		}
		lines.tails[i] = string(buf)
		lines.values[i] = e.Value
	}

	c.lines = lines
	return lines
}

func (c *PipedUpdate) Validate(limits Limits) error {
	limits = limits.WithDefaults()

	for i, e := range c.elements {
		if !e.BKey.IsValid() {
			return &PreconditionError{Message: "bkey of item " + strconv.Itoa(i) + " is not set"}
		}
		if e.Value == nil && e.FlagUpdate == nil {
			return &PreconditionError{Message: "item " + strconv.Itoa(i) + " updates neither value nor element flag"}
		}
		if e.FlagUpdate != nil && e.FlagUpdate.Kind() == 0 {
			return &PreconditionError{Message: "element flag update of item " + strconv.Itoa(i) + " is not set"}
		}
	}

	lines := c.render()
	return validatePiped(c.key, len(c.elements), limits.MaxPipedUpdateCount, lines.values, lines.size(), limits)
}

func (c *PipedUpdate) RequestSize() int {
	return c.render().size()
}

func (c *PipedUpdate) AppendRequest(buf []byte) []byte {
	return c.render().appendTo(buf)
}

// PipedDelete deletes many B+Tree elements by bkey. With drop set, the
// server removes the B+Tree once it becomes empty.
type PipedDelete struct {
	key   string
	bkeys []BKey
	drop  bool

	lines *pipedLines
}

// NewBopPipedDelete deletes the elements with the given bkeys from the B+Tree at key.
func NewBopPipedDelete(key string, bkeys []BKey, drop bool) *PipedDelete {
	return &PipedDelete{key: key, bkeys: bkeys, drop: drop}
}

func (c *PipedDelete) CommandName() CmdType { return CmdBopDelete }
func (c *PipedDelete) Key() string          { return c.key }
func (c *PipedDelete) ItemCount() int       { return len(c.bkeys) }
func (c *PipedDelete) descriptor() *descriptor {
	return bopDeleteDescriptor
}

// StringifyArguments returns the argument tail of every item line, without
// the pipe token.
func (c *PipedDelete) StringifyArguments() []string {
	return c.render().tails
}

func (c *PipedDelete) render() *pipedLines {
	if c.lines != nil {
		return c.lines
	}

	lines := &pipedLines{
		verb:   CmdBopDelete,
		key:    c.key,
		tails:  make([]string, len(c.bkeys)),
		values: make([][]byte, len(c.bkeys)),
	}
	for i, bkey := range c.bkeys {
		if c.drop {
			lines.tails[i] = bkey.String() + Space + TokenDrop
		} else {
			lines.tails[i] = bkey.String()
		}
	}

	c.lines = lines
	return lines
}

func (c *PipedDelete) Validate(limits Limits) error {
	limits = limits.WithDefaults()

	for i, bkey := range c.bkeys {
		if !bkey.IsValid() {
			return &PreconditionError{Message: "bkey of item " + strconv.Itoa(i) + " is not set"}
		}
	}

	lines := c.render()
	return validatePiped(c.key, len(c.bkeys), limits.MaxPipedItemCount, nil, lines.size(), limits)
}

func (c *PipedDelete) RequestSize() int {
	return c.render().size()
}

func (c *PipedDelete) AppendRequest(buf []byte) []byte {
	return c.render().appendTo(buf)
}
