package testutils

import (
	"bytes"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"time"
)

// ConnectionMock is a mock implementation of net.Conn for testing.
//
// Reads are served from scripted response data. Once the data is exhausted,
// Read returns io.EOF, or blocks until the deadline or Close when the mock
// was created with NewBlockingConnectionMock.
type ConnectionMock struct {
	mu       sync.Mutex
	readBuf  *bytes.Buffer
	writeBuf *bytes.Buffer
	closed   bool
	blocking bool
	deadline time.Time
	wake     chan struct{}
}

// NewConnectionMock creates a new mock connection with pre-configured response data
func NewConnectionMock(responseData ...string) *ConnectionMock {
	return &ConnectionMock{
		readBuf:  bytes.NewBufferString(strings.Join(responseData, "")),
		writeBuf: &bytes.Buffer{},
		wake:     make(chan struct{}),
	}
}

// NewBlockingConnectionMock is like NewConnectionMock but Read blocks once
// the response data is exhausted, like a server that never answers.
func NewBlockingConnectionMock(responseData ...string) *ConnectionMock {
	m := NewConnectionMock(responseData...)
	m.blocking = true
	return m
}

func (m *ConnectionMock) Read(b []byte) (int, error) {
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return 0, net.ErrClosed
		}
		if m.readBuf.Len() > 0 {
			n, err := m.readBuf.Read(b)
			m.mu.Unlock()
			return n, err
		}
		if !m.blocking {
			m.mu.Unlock()
			return 0, io.EOF
		}
		deadline := m.deadline
		wake := m.wake
		m.mu.Unlock()

		if deadline.IsZero() {
			<-wake
			continue
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, os.ErrDeadlineExceeded
		}
		timer := time.NewTimer(remaining)
		select {
		case <-wake:
			timer.Stop()
		case <-timer.C:
			return 0, os.ErrDeadlineExceeded
		}
	}
}

func (m *ConnectionMock) Write(b []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, net.ErrClosed
	}
	return m.writeBuf.Write(b)
}

func (m *ConnectionMock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		m.notify()
	}
	return nil
}

// IsClosed reports whether Close was called.
func (m *ConnectionMock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *ConnectionMock) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0}
}

func (m *ConnectionMock) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 11211}
}

func (m *ConnectionMock) SetDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deadline = t
	m.notify()
	return nil
}

func (m *ConnectionMock) SetReadDeadline(t time.Time) error {
	return m.SetDeadline(t)
}

func (m *ConnectionMock) SetWriteDeadline(t time.Time) error { return nil }

// notify wakes up blocked readers. Must be called with mu held.
func (m *ConnectionMock) notify() {
	close(m.wake)
	m.wake = make(chan struct{})
}

// GetWrittenRequest returns the raw request bytes written to the mock connection
func (m *ConnectionMock) GetWrittenRequest() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeBuf.String()
}
