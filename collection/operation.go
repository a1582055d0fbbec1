package collection

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/pior/arcus/internal"
)

// requestBuffers recycles rendered requests once written.
var requestBuffers = internal.NewBufferPool(256, 64<<10)

// State is the lifecycle state of an Operation.
type State uint8

const (
	StateNotStarted State = iota
	StateWriting
	StateReading
	StateComplete
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateWriting:
		return "WRITING"
	case StateReading:
		return "READING"
	case StateComplete:
		return "COMPLETE"
	case StateCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateCancelled
}

// Operation drives one command through
//
//	NOT_STARTED -> WRITING -> READING -> COMPLETE | CANCELLED
//
// The transport calls Buffer, writes it, calls WriteComplete, then feeds
// response lines to HandleLine until the operation is terminal. Cancel and
// Abort may be called from any goroutine at any time.
//
// The first terminal transition wins: natural completion, protocol
// violation or cancellation. The callback is invoked exactly once, after the
// internal lock is released, on the goroutine that caused the transition.
type Operation struct {
	cmd  Command
	desc *descriptor
	cb   Callback
	done chan struct{}

	mu     sync.Mutex
	state  State
	buf    []byte
	res    result
	index  int    // next unfilled item index of a bulk response
	header int    // item count announced by RESPONSE, -1 when absent
	first  Status // status of item 0 of a bulk response
}

// NewOperation validates cmd against limits and returns an operation in the
// NOT_STARTED state. cb may be nil when the caller only uses Wait and the
// accessors; otherwise its shape must match the command family.
//
// Validation failures are returned as *PreconditionError and no operation
// is created.
func NewOperation(cmd Command, limits Limits, cb Callback) (*Operation, error) {
	if cmd == nil {
		return nil, &PreconditionError{Message: "command is nil"}
	}
	if err := cmd.Validate(limits); err != nil {
		return nil, err
	}

	desc := cmd.descriptor()
	if cb != nil && cb.shape() != desc.shape {
		return nil, &PreconditionError{Message: "a " + cb.shape().String() + " callback cannot receive a " + desc.shape.String() + " result"}
	}

	return &Operation{
		cmd:    cmd,
		desc:   desc,
		cb:     cb,
		done:   make(chan struct{}),
		header: -1,
	}, nil
}

// Command returns the command the operation carries.
func (o *Operation) Command() Command {
	return o.cmd
}

// State returns the current state.
func (o *Operation) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Buffer renders the request and moves the operation to WRITING. The
// request is rendered once; later calls while WRITING return the same bytes.
// The transport must not modify the returned slice.
func (o *Operation) Buffer() ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case StateNotStarted:
		o.buf = o.cmd.AppendRequest(requestBuffers.Get(o.cmd.RequestSize()))
		o.state = StateWriting
		return o.buf, nil
	case StateWriting:
		return o.buf, nil
	case StateComplete, StateCancelled:
		return nil, ErrOperationDone
	default:
		return nil, ErrInvalidState
	}
}

// WriteComplete reports that the whole buffer was written and moves the
// operation to READING. The buffer is released and must not be used
// afterwards.
func (o *Operation) WriteComplete() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case StateWriting:
		o.state = StateReading
		requestBuffers.Put(o.buf)
		o.buf = nil
		return nil
	case StateComplete, StateCancelled:
		return ErrOperationDone
	default:
		return ErrInvalidState
	}
}

// HandleLine decodes one response line, without its line terminator.
//
// It returns ErrOperationDone when the operation is already terminal (the
// line is not decoded), ErrInvalidState before WriteComplete, and a
// *ProtocolError when the line violates the protocol. In the latter case
// the operation is complete and its callback received the same error.
func (o *Operation) HandleLine(line []byte) error {
	o.mu.Lock()

	switch o.state {
	case StateReading:
	case StateComplete, StateCancelled:
		o.mu.Unlock()
		return ErrOperationDone
	default:
		o.mu.Unlock()
		return ErrInvalidState
	}

	var (
		finished bool
		perr     *ProtocolError
	)
	text := string(line)
	switch o.desc.shape {
	case ShapeStatus:
		finished, perr = o.decodeStatus(text)
	case ShapeValue:
		finished, perr = o.decodeValue(text)
	default:
		finished, perr = o.decodeBulk(text)
	}

	if !finished {
		o.mu.Unlock()
		return nil
	}

	if perr != nil {
		o.res = result{status: protocolViolation(perr), err: perr}
	}
	o.state = StateComplete
	r := o.res
	close(o.done)
	o.mu.Unlock()

	if o.cb != nil {
		o.cb.deliver(&r)
	}

	if perr != nil {
		return perr
	}
	return nil
}

// Cancel moves a non-terminal operation to CANCELLED and delivers the
// canceled status. It returns false when the operation was already terminal.
func (o *Operation) Cancel() bool {
	return o.cancel(nil)
}

// Abort is Cancel for transport failures: the callback receives the
// canceled status along with err.
func (o *Operation) Abort(err error) bool {
	return o.cancel(err)
}

func (o *Operation) cancel(err error) bool {
	o.mu.Lock()
	if o.state.Terminal() {
		o.mu.Unlock()
		return false
	}

	o.state = StateCancelled
	o.buf = nil
	o.res = result{status: CanceledStatus(), err: err}
	r := o.res
	close(o.done)
	o.mu.Unlock()

	if o.cb != nil {
		o.cb.deliver(&r)
	}
	return true
}

// Done is closed once the operation is terminal.
func (o *Operation) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until the operation is terminal or ctx is done. It does not
// cancel the operation when ctx expires.
func (o *Operation) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the overall status. It is the zero Status until the
// operation is terminal.
func (o *Operation) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.res.status
}

// Err returns the protocol violation or transport failure that ended the
// operation, if any.
func (o *Operation) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.res.err
}

func (o *Operation) violation(line, message string) *ProtocolError {
	return &ProtocolError{Command: o.cmd.CommandName(), Line: line, Message: message}
}

// classify names the violation for lines outside the command vocabulary.
func (o *Operation) classify(line string) *ProtocolError {
	switch {
	case strings.HasPrefix(line, PrefixClientError):
		return o.violation(line, "client error")
	case strings.HasPrefix(line, PrefixPipeError):
		return o.violation(line, "pipe error")
	default:
		return o.violation(line, "unexpected response")
	}
}

func (o *Operation) decodeStatus(line string) (bool, *ProtocolError) {
	if st, ok := MatchStatus(line, o.desc.accepts...); ok {
		o.res.status = st
		return true, nil
	}
	return true, o.classify(line)
}

func (o *Operation) decodeValue(line string) (bool, *ProtocolError) {
	if o.res.hasValue {
		if line == TokenEnd {
			o.res.status = StatusOf(ResponseEnd)
			return true, nil
		}
		return true, o.violation(line, "expected END after value")
	}

	if v, matched, ok := parseValue(line, o.desc.valuePrefix); matched {
		if !ok {
			return true, o.violation(line, "invalid value")
		}
		o.res.value = v
		o.res.hasValue = true
		if o.desc.valueThenEnd {
			return false, nil
		}
		o.res.status = StatusOf(ResponseEnd)
		return true, nil
	}

	if st, ok := MatchStatus(line, o.desc.accepts...); ok {
		o.res.status = st
		return true, nil
	}
	return true, o.classify(line)
}

func (o *Operation) decodeBulk(line string) (bool, *ProtocolError) {
	n := o.cmd.ItemCount()

	if line == TokenEnd {
		if o.index == n && (o.header < 0 || o.header == n) {
			o.res.status = StatusOf(ResponseEnd)
			return true, nil
		}
		if o.index == 1 && n > 1 && o.header <= 1 && o.desc.isWholeKey(o.first.Code) {
			failed := make(map[int]Status, n)
			for i := 0; i < n; i++ {
				failed[i] = o.first
			}
			o.res.failed = failed
			o.res.status = o.first
			return true, nil
		}
		if o.header >= 0 && o.header != o.index {
			return true, o.violation(line, "received "+strconv.Itoa(o.index)+" item responses, RESPONSE announced "+strconv.Itoa(o.header))
		}
		return true, o.violation(line, "received "+strconv.Itoa(o.index)+" of "+strconv.Itoa(n)+" item responses")
	}

	if rest, ok := strings.CutPrefix(line, PrefixResponse); ok {
		if o.index != 0 || o.header >= 0 {
			return true, o.violation(line, "unexpected RESPONSE header")
		}
		count, err := strconv.Atoi(rest)
		if err != nil || count < 0 || count > n {
			return true, o.violation(line, "invalid RESPONSE count")
		}
		o.header = count
		return false, nil
	}

	if o.index >= n {
		return true, o.violation(line, "more item responses than items")
	}
	if o.header >= 0 && o.index >= o.header {
		return true, o.violation(line, "more item responses than RESPONSE announced")
	}

	st, ok := MatchStatus(line, o.desc.accepts...)
	if !ok {
		return true, o.classify(line)
	}

	if o.index == 0 {
		o.first = st
	}
	if !st.Success {
		if o.res.failed == nil {
			o.res.failed = make(map[int]Status)
		}
		o.res.failed[o.index] = st
	}
	o.index++
	return false, nil
}

// parseValue reads "<prefix><n>" or a bare "<n>". matched reports whether
// the line has the shape of a value line, ok whether n is a valid
// non-negative integer.
func parseValue(line, prefix string) (value int, matched, ok bool) {
	digits := line
	if prefix != "" {
		if rest, found := strings.CutPrefix(line, prefix); found {
			digits = rest
			matched = true
		}
	}

	if !matched {
		if line == "" || line[0] < '0' || line[0] > '9' {
			return 0, false, false
		}
		matched = true
	}

	if digits == "" {
		return 0, true, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, true, false
		}
	}

	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, true, false
	}
	return v, true, true
}
