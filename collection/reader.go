package collection

import (
	"bufio"
	"bytes"
)

var crlfBytes = []byte(CRLF)

// ReadLine reads one response line from r and returns it without its line
// terminator. A bare LF terminator is accepted. Lines over MaxLineLength
// fail with ErrLineTooLong.
//
// The returned slice points into the reader buffer and is only valid until
// the next read.
func ReadLine(r *bufio.Reader) ([]byte, error) {
	// ReadSlice does not allocate; lines longer than the buffer are copied
	// chunk by chunk up to MaxLineLength
	line, err := r.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		long := append([]byte(nil), line...)
		for err == bufio.ErrBufferFull {
			if len(long) > MaxLineLength {
				return nil, ErrLineTooLong
			}
			line, err = r.ReadSlice('\n')
			long = append(long, line...)
		}
		line = long
	}
	if err != nil {
		return nil, err
	}
	if len(line) > MaxLineLength {
		return nil, ErrLineTooLong
	}

	if bytes.HasSuffix(line, crlfBytes) {
		return line[:len(line)-len(crlfBytes)], nil
	}
	return line[:len(line)-1], nil
}

// ReadResponse feeds lines from r to op until op is terminal.
//
// I/O errors are returned as *ConnectionError and leave op untouched; the
// caller decides whether to abort it. A protocol violation completes op and
// is returned as *ProtocolError. ErrOperationDone is returned when op was
// cancelled before its response was fully read, leaving unread bytes on r.
func ReadResponse(r *bufio.Reader, op *Operation) error {
	for {
		line, err := ReadLine(r)
		if err != nil {
			return &ConnectionError{Op: "read", Err: err}
		}

		if err := op.HandleLine(line); err != nil {
			return err
		}

		if op.State().Terminal() {
			return nil
		}
	}
}
